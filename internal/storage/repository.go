package storage

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/mmynk/tandas/internal/models"
)

// Event describes a committed change to a group.
type Event struct {
	GroupID string
	Kind    string
	At      time.Time
}

// Notifier receives an Event after every committed mutation.
type Notifier interface {
	Notify(ctx context.Context, event Event)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, event Event)

func (f NotifierFunc) Notify(ctx context.Context, event Event) { f(ctx, event) }

// LogNotifier logs every event.
type LogNotifier struct{}

func (LogNotifier) Notify(ctx context.Context, event Event) {
	slog.InfoContext(ctx, "group updated", "group_id", event.GroupID, "event", event.Kind)
}

// Repository owns the groups in a Store and serializes mutations per group.
// Operations on different groups never block each other.
type Repository struct {
	store    Store
	locks    *xsync.MapOf[string, *sync.Mutex]
	notifier Notifier
	now      func() time.Time
}

// NewRepository wraps store. A nil notifier discards events.
func NewRepository(store Store, notifier Notifier) *Repository {
	if notifier == nil {
		notifier = NotifierFunc(func(context.Context, Event) {})
	}
	return &Repository{
		store:    store,
		locks:    xsync.NewMapOf[string, *sync.Mutex](),
		notifier: notifier,
		now:      time.Now,
	}
}

func (r *Repository) lock(groupID string) func() {
	mu, _ := r.locks.LoadOrCompute(groupID, func() *sync.Mutex { return &sync.Mutex{} })
	mu.Lock()
	return mu.Unlock
}

// Create persists a new group.
func (r *Repository) Create(ctx context.Context, group *models.Group) error {
	if err := r.store.CreateGroup(ctx, group); err != nil {
		return err
	}
	r.notifier.Notify(ctx, Event{GroupID: group.ID, Kind: "group_created", At: r.now()})
	return nil
}

// Get returns a snapshot of the group.
func (r *Repository) Get(ctx context.Context, groupID string) (*models.Group, error) {
	return r.store.GetGroup(ctx, groupID)
}

// List returns snapshots of every group.
func (r *Repository) List(ctx context.Context) ([]*models.Group, error) {
	return r.store.ListGroups(ctx)
}

// Delete removes a group once no mutation on it is in flight.
func (r *Repository) Delete(ctx context.Context, groupID string) error {
	unlock := r.lock(groupID)
	defer unlock()

	if _, err := r.store.GetGroup(ctx, groupID); err != nil {
		return err
	}
	if err := r.store.DeleteGroup(ctx, groupID); err != nil {
		return err
	}
	r.notifier.Notify(ctx, Event{GroupID: groupID, Kind: "group_deleted", At: r.now()})
	return nil
}

// Mutate loads the group under its lock and passes a working copy to fn.
// When fn reports a change the copy is saved and event is emitted; when it
// reports no change or fails, nothing is written. The returned group is the
// state after the call.
func (r *Repository) Mutate(ctx context.Context, groupID, event string, fn func(g *models.Group) (bool, error)) (*models.Group, error) {
	unlock := r.lock(groupID)
	defer unlock()

	group, err := r.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	working := group.Clone()
	changed, err := fn(working)
	if err != nil {
		return nil, err
	}
	if !changed {
		return group, nil
	}

	if err := r.store.SaveGroup(ctx, working); err != nil {
		return nil, fmt.Errorf("failed to save group %s: %w", groupID, err)
	}
	r.notifier.Notify(ctx, Event{GroupID: groupID, Kind: event, At: r.now()})
	return working, nil
}
