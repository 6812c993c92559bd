package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a team member that components, endpoints and database changes can
// be assigned to.
type User struct {
	ID        string    `json:"id" gorm:"type:varchar(36);primarykey"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null"`
	Email     string    `json:"email" gorm:"type:varchar(255);unique;not null"`
	Role      string    `json:"role" gorm:"type:varchar(100)"`
	Avatar    string    `json:"avatar" gorm:"type:varchar(255)"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
