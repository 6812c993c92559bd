package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Feature is the top-level grouping entity. Components, endpoints, database
// changes and images reference it through their featureId.
type Feature struct {
	ID          string    `json:"id" gorm:"type:varchar(36);primarykey"`
	Name        string    `json:"name" gorm:"type:varchar(255);not null"`
	Description string    `json:"description" gorm:"type:text"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (f *Feature) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}
