package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DatabaseChange is a tracked database-change task under a feature.
type DatabaseChange struct {
	ID          string    `json:"id" gorm:"type:varchar(36);primarykey"`
	Type        string    `json:"type" gorm:"type:varchar(50);not null"`
	Name        string    `json:"name" gorm:"type:varchar(255);not null"`
	Description string    `json:"description" gorm:"type:text"`
	Icon        string    `json:"icon" gorm:"type:varchar(100)"`
	Completed   bool      `json:"completed" gorm:"default:false"`
	AssigneeID  *string   `json:"assigneeId" gorm:"type:varchar(36)"`
	FeatureID   *string   `json:"featureId" gorm:"type:varchar(36);index"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (d *DatabaseChange) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}
