package store

import (
	"errors"
	"fmt"

	"feature-service/internal/model"

	"gorm.io/gorm"
)

// GormComponentStore persists component roots in the components table with
// the child list in a JSONB column.
type GormComponentStore struct {
	db *gorm.DB
}

// NewGormComponentStore creates a store on top of an initialized gorm handle.
func NewGormComponentStore(db *gorm.DB) *GormComponentStore {
	return &GormComponentStore{db: db}
}

func (s *GormComponentStore) ListRoots() ([]model.Component, error) {
	var components []model.Component
	result := s.db.Order("created_at DESC").Find(&components)
	if result.Error != nil {
		return nil, fmt.Errorf("listing components: %w", result.Error)
	}
	return components, nil
}

func (s *GormComponentStore) ListByFeature(featureID string) ([]model.Component, error) {
	var components []model.Component
	result := s.db.Where("feature_id = ?", featureID).Order("created_at DESC").Find(&components)
	if result.Error != nil {
		return nil, fmt.Errorf("listing components for feature %s: %w", featureID, result.Error)
	}
	return components, nil
}

func (s *GormComponentStore) Get(id string) (*model.Component, error) {
	var component model.Component
	result := s.db.First(&component, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting component %s: %w", id, result.Error)
	}
	return &component, nil
}

func (s *GormComponentStore) Insert(c *model.Component) error {
	if result := s.db.Create(c); result.Error != nil {
		return fmt.Errorf("inserting component: %w", result.Error)
	}
	return nil
}

func (s *GormComponentStore) Save(c *model.Component) error {
	if result := s.db.Save(c); result.Error != nil {
		return fmt.Errorf("saving component %s: %w", c.ID, result.Error)
	}
	return nil
}

func (s *GormComponentStore) Delete(id string) (int64, error) {
	result := s.db.Delete(&model.Component{}, "id = ?", id)
	if result.Error != nil {
		return 0, fmt.Errorf("deleting component %s: %w", id, result.Error)
	}
	return result.RowsAffected, nil
}
