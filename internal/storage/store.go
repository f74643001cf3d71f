// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/tandas/internal/models"
)

// ErrGroupNotFound is returned when no group exists with the requested ID.
var ErrGroupNotFound = errors.New("group not found")

// Store defines the interface for tanda group storage operations.
// A group is persisted as one aggregate: its members, payments, schedule,
// transfer log and consensus log are always read and written together.
type Store interface {
	// CreateGroup persists a new group.
	// The group.ID and CreatedAt fields are populated by the store when empty.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group by its ID.
	// Returns ErrGroupNotFound (wrapped) if the group does not exist.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// SaveGroup replaces the stored aggregate with group.
	// Returns ErrGroupNotFound (wrapped) if the group does not exist.
	SaveGroup(ctx context.Context, group *models.Group) error

	// ListGroups returns every group ordered by creation time.
	ListGroups(ctx context.Context) ([]*models.Group, error)

	// DeleteGroup removes a group and everything it owns.
	DeleteGroup(ctx context.Context, groupID string) error

	// Close releases any resources held by the store.
	Close() error
}
