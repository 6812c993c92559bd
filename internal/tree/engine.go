// Package tree implements the component tree engine: create, edit, toggle
// and remove operations over a forest of root components, each owning an
// embedded ordered child list persisted as one document.
package tree

import (
	"errors"
	"sync"
	"time"

	"feature-service/internal/model"
	"feature-service/internal/store"

	"github.com/google/uuid"
)

// ErrNameRequired is returned when a create or update payload has no name.
var ErrNameRequired = errors.New("component name is required")

// RootInput carries the scalar fields of a root component. Children are
// never set through it; they are only mutated by the child operations.
type RootInput struct {
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	Description string  `json:"description"`
	Completed   bool    `json:"completed"`
	FeatureID   *string `json:"featureId"`
	AssigneeID  *string `json:"assigneeId"`
}

// ChildInput carries the scalar fields of a child component.
type ChildInput struct {
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	Description string  `json:"description"`
	Completed   bool    `json:"completed"`
	AssigneeID  *string `json:"assigneeId"`
}

// DeleteFailure records one id that could not be deleted during a bulk
// delete, together with the reason.
type DeleteFailure struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

// DeleteSelectedResult reports the outcome of a bulk delete. The batch is
// not transactional: earlier removals stand even when later ids fail.
type DeleteSelectedResult struct {
	Removed []string        `json:"removed"`
	Failed  []DeleteFailure `json:"failed"`
}

// Engine owns the component tree semantics. Every mutation is a
// read-modify-write of one root document, serialized per root so concurrent
// child-list mutations on the same root cannot drop each other. Mutations on
// different roots proceed in parallel.
type Engine struct {
	store store.ComponentStore

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewEngine creates an engine on top of an explicitly injected store.
func NewEngine(st store.ComponentStore) *Engine {
	return &Engine{
		store: st,
		locks: make(map[string]*sync.Mutex),
	}
}

// lockRoot acquires the per-root mutex and returns its release func.
// Entries are kept for the process lifetime; root ids are low-cardinality.
func (e *Engine) lockRoot(id string) func() {
	e.mu.Lock()
	m, ok := e.locks[id]
	if !ok {
		m = &sync.Mutex{}
		e.locks[id] = m
	}
	e.mu.Unlock()
	m.Lock()
	return m.Unlock
}

// ListRoots returns the full forest, newest roots first, children inline.
func (e *Engine) ListRoots() ([]model.Component, error) {
	return e.store.ListRoots()
}

// ListRootsByFeature returns the roots owned by the given feature.
func (e *Engine) ListRootsByFeature(featureID string) ([]model.Component, error) {
	return e.store.ListByFeature(featureID)
}

// GetRoot returns one root with its subtree, or store.ErrNotFound.
func (e *Engine) GetRoot(id string) (*model.Component, error) {
	return e.store.Get(id)
}

// CreateRoot persists a new root component with defaulted fields.
func (e *Engine) CreateRoot(in RootInput) (*model.Component, error) {
	if in.Name == "" {
		return nil, ErrNameRequired
	}
	now := time.Now()
	component := model.Component{
		Name:        in.Name,
		Type:        in.Type,
		Description: in.Description,
		Completed:   in.Completed,
		FeatureID:   in.FeatureID,
		AssigneeID:  in.AssigneeID,
		Children:    model.ComponentList{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := e.store.Insert(&component); err != nil {
		return nil, err
	}
	return &component, nil
}

// UpdateRoot replaces the scalar fields of a root. The child list is kept
// exactly as stored.
func (e *Engine) UpdateRoot(id string, in RootInput) (*model.Component, error) {
	if in.Name == "" {
		return nil, ErrNameRequired
	}
	unlock := e.lockRoot(id)
	defer unlock()

	root, err := e.store.Get(id)
	if err != nil {
		return nil, err
	}
	root.Name = in.Name
	root.Type = in.Type
	root.Description = in.Description
	root.Completed = in.Completed
	root.FeatureID = in.FeatureID
	root.AssigneeID = in.AssigneeID
	root.UpdatedAt = time.Now()
	if err := e.store.Save(root); err != nil {
		return nil, err
	}
	return root, nil
}

// DeleteRoot removes a root and its whole subtree, returning the number of
// documents removed (0 or 1). Callers map 0 to not-found.
func (e *Engine) DeleteRoot(id string) (int64, error) {
	unlock := e.lockRoot(id)
	defer unlock()
	return e.store.Delete(id)
}

// ToggleRootCompletion flips the stored completed flag. The flip reads the
// latest persisted value rather than trusting a client-supplied state, so
// two racing toggles cannot lose one flip.
func (e *Engine) ToggleRootCompletion(id string) (*model.Component, error) {
	unlock := e.lockRoot(id)
	defer unlock()

	root, err := e.store.Get(id)
	if err != nil {
		return nil, err
	}
	root.Completed = !root.Completed
	root.UpdatedAt = time.Now()
	if err := e.store.Save(root); err != nil {
		return nil, err
	}
	return root, nil
}

// AddChild appends a new child to the end of the parent's child list and
// returns the updated root. Insertion order is preserved, never re-sorted.
func (e *Engine) AddChild(parentID string, in ChildInput) (*model.Component, error) {
	if in.Name == "" {
		return nil, ErrNameRequired
	}
	unlock := e.lockRoot(parentID)
	defer unlock()

	parent, err := e.store.Get(parentID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	child := model.Component{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Type:        in.Type,
		Description: in.Description,
		Completed:   in.Completed,
		AssigneeID:  in.AssigneeID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	parent.Children = append(parent.Children, child)
	parent.UpdatedAt = now
	if err := e.store.Save(parent); err != nil {
		return nil, err
	}
	return parent, nil
}

// UpdateChild replaces the scalar fields of one immediate child, keeping its
// id, createdAt and any grandchildren. Both the child and the root get a
// fresh updatedAt.
func (e *Engine) UpdateChild(parentID, childID string, in ChildInput) (*model.Component, error) {
	if in.Name == "" {
		return nil, ErrNameRequired
	}
	unlock := e.lockRoot(parentID)
	defer unlock()

	parent, err := e.store.Get(parentID)
	if err != nil {
		return nil, err
	}
	idx := findChild(parent.Children, childID)
	if idx < 0 {
		return nil, store.ErrNotFound
	}
	now := time.Now()
	child := &parent.Children[idx]
	child.Name = in.Name
	child.Type = in.Type
	child.Description = in.Description
	child.Completed = in.Completed
	child.AssigneeID = in.AssigneeID
	child.UpdatedAt = now
	parent.UpdatedAt = now
	if err := e.store.Save(parent); err != nil {
		return nil, err
	}
	return parent, nil
}

// ToggleChildCompletion flips the completed flag of one immediate child.
// It does not recurse into grandchildren.
func (e *Engine) ToggleChildCompletion(parentID, childID string) (*model.Component, error) {
	unlock := e.lockRoot(parentID)
	defer unlock()

	parent, err := e.store.Get(parentID)
	if err != nil {
		return nil, err
	}
	idx := findChild(parent.Children, childID)
	if idx < 0 {
		return nil, store.ErrNotFound
	}
	now := time.Now()
	parent.Children[idx].Completed = !parent.Children[idx].Completed
	parent.Children[idx].UpdatedAt = now
	parent.UpdatedAt = now
	if err := e.store.Save(parent); err != nil {
		return nil, err
	}
	return parent, nil
}

// RemoveChild filters the named child out of the parent's immediate child
// list. Removing an id that is not present succeeds and changes nothing.
func (e *Engine) RemoveChild(parentID, childID string) (*model.Component, error) {
	unlock := e.lockRoot(parentID)
	defer unlock()

	parent, err := e.store.Get(parentID)
	if err != nil {
		return nil, err
	}
	parent.Children, _ = removeByID(parent.Children, childID)
	parent.UpdatedAt = time.Now()
	if err := e.store.Save(parent); err != nil {
		return nil, err
	}
	return parent, nil
}

// DeleteSelected deletes each id independently: a root match cascades, a
// child match removes that child from its parent, and as a last resort the
// grandchild level is scanned. Failures are collected per id; earlier
// deletions are never rolled back.
func (e *Engine) DeleteSelected(ids []string) DeleteSelectedResult {
	result := DeleteSelectedResult{
		Removed: []string{},
		Failed:  []DeleteFailure{},
	}
	for _, id := range ids {
		if err := e.deleteAnywhere(id); err != nil {
			result.Failed = append(result.Failed, DeleteFailure{ID: id, Error: err.Error()})
			continue
		}
		result.Removed = append(result.Removed, id)
	}
	return result
}

func (e *Engine) deleteAnywhere(id string) error {
	// Root level.
	_, err := e.store.Get(id)
	if err == nil {
		count, err := e.DeleteRoot(id)
		if err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		// Deleted out from under us between the read and the delete; keep
		// scanning the child levels.
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	roots, err := e.store.ListRoots()
	if err != nil {
		return err
	}

	// Immediate children.
	for _, root := range roots {
		if findChild(root.Children, id) >= 0 {
			_, err := e.RemoveChild(root.ID, id)
			return err
		}
	}

	// Grandchildren, best effort.
	for _, root := range roots {
		for _, child := range root.Children {
			if findChild(child.Children, id) >= 0 {
				return e.removeGrandchild(root.ID, child.ID, id)
			}
		}
	}

	return store.ErrNotFound
}

// removeGrandchild re-reads the root under its lock before filtering, since
// the scan above ran on an unlocked snapshot.
func (e *Engine) removeGrandchild(rootID, childID, grandchildID string) error {
	unlock := e.lockRoot(rootID)
	defer unlock()

	root, err := e.store.Get(rootID)
	if err != nil {
		return err
	}
	idx := findChild(root.Children, childID)
	if idx < 0 {
		return store.ErrNotFound
	}
	filtered, removed := removeByID(root.Children[idx].Children, grandchildID)
	if !removed {
		return store.ErrNotFound
	}
	now := time.Now()
	root.Children[idx].Children = filtered
	root.Children[idx].UpdatedAt = now
	root.UpdatedAt = now
	return e.store.Save(root)
}

// findChild returns the index of the child with the given id, or -1.
func findChild(children model.ComponentList, id string) int {
	for i, child := range children {
		if child.ID == id {
			return i
		}
	}
	return -1
}

// removeByID returns the list without the named child and whether anything
// was removed.
func removeByID(children model.ComponentList, id string) (model.ComponentList, bool) {
	idx := findChild(children, id)
	if idx < 0 {
		return children, false
	}
	filtered := make(model.ComponentList, 0, len(children)-1)
	filtered = append(filtered, children[:idx]...)
	filtered = append(filtered, children[idx+1:]...)
	return filtered, true
}
