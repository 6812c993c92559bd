// Package store provides the record store behind the component tree engine.
// The engine only depends on the ComponentStore interface; the gorm-backed
// implementation is used in production and the in-memory one in tests.
package store

import (
	"errors"

	"feature-service/internal/model"
)

// ErrNotFound is returned when a component root with the requested id does
// not exist. Callers distinguish it from storage failures with errors.Is.
var ErrNotFound = errors.New("component not found")

// ComponentStore is the persistence contract for root components. Children
// are embedded in the root document, so there are no child-level operations
// here; the tree engine mutates children by rewriting the whole root.
type ComponentStore interface {
	// ListRoots returns the full forest ordered by createdAt descending.
	ListRoots() ([]model.Component, error)
	// ListByFeature returns roots with the given featureId, newest first.
	// Roots without a featureId are excluded.
	ListByFeature(featureID string) ([]model.Component, error)
	// Get returns the root with the given id or ErrNotFound.
	Get(id string) (*model.Component, error)
	// Insert persists a new root, allocating its id if unset.
	Insert(c *model.Component) error
	// Save writes back the full root document.
	Save(c *model.Component) error
	// Delete removes the root and its embedded subtree, returning the number
	// of documents removed (0 or 1).
	Delete(id string) (int64, error)
}
