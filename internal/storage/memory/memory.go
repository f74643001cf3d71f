// Package memory provides an in-process implementation of storage.Store.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/tandas/internal/models"
	"github.com/mmynk/tandas/internal/storage"
)

var _ storage.Store = (*Store)(nil)

// Store keeps groups in a map. Groups are cloned on the way in and out so
// callers never share memory with the stored copy.
type Store struct {
	mu     sync.RWMutex
	groups map[string]*models.Group
}

func New() *Store {
	return &Store{groups: make(map[string]*models.Group)}
}

func (s *Store) CreateGroup(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().Unix()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.groups[group.ID]; ok {
		return fmt.Errorf("group already exists: %s", group.ID)
	}
	s.groups[group.ID] = group.Clone()
	return nil
}

func (s *Store) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.groups[groupID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", storage.ErrGroupNotFound, groupID)
	}
	return g.Clone(), nil
}

func (s *Store) SaveGroup(ctx context.Context, group *models.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.groups[group.ID]; !ok {
		return fmt.Errorf("%w: %s", storage.ErrGroupNotFound, group.ID)
	}
	s.groups[group.ID] = group.Clone()
	return nil
}

func (s *Store) ListGroups(ctx context.Context) ([]*models.Group, error) {
	s.mu.RLock()
	out := make([]*models.Group, 0, len(s.groups))
	for _, g := range s.groups {
		out = append(out, g.Clone())
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt < out[j].CreatedAt
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) DeleteGroup(ctx context.Context, groupID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.groups, groupID)
	return nil
}

func (s *Store) Close() error { return nil }
