package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Image is a reference image attached to a feature. The file itself lives on
// disk under the configured upload directory; URL is computed per request and
// never stored.
type Image struct {
	ID           string    `json:"id" gorm:"type:varchar(36);primarykey"`
	Name         string    `json:"name" gorm:"type:varchar(255)"`
	Filename     string    `json:"filename" gorm:"type:varchar(255);not null"`
	OriginalName string    `json:"originalName" gorm:"type:varchar(255)"`
	MimeType     string    `json:"mimeType" gorm:"type:varchar(100)"`
	Size         int64     `json:"size"`
	FeatureID    *string   `json:"featureId" gorm:"type:varchar(36);index"`
	URL          string    `json:"url,omitempty" gorm:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (i *Image) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}
