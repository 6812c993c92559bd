package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Component represents a node in the component tree. Root components are
// persisted as rows; their child list is embedded in the row as JSONB, so a
// child never has storage identity outside its root document.
type Component struct {
	ID          string        `json:"id" gorm:"type:varchar(36);primarykey"`
	Name        string        `json:"name" gorm:"type:varchar(255);not null"`
	Type        string        `json:"type" gorm:"type:varchar(50)"`
	Description string        `json:"description" gorm:"type:text"`
	Completed   bool          `json:"completed" gorm:"default:false"`
	FeatureID   *string       `json:"featureId" gorm:"type:varchar(36);index"`
	AssigneeID  *string       `json:"assigneeId" gorm:"type:varchar(36)"`
	Children    ComponentList `json:"children" gorm:"type:jsonb"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// BeforeCreate allocates the primary key when the store inserts a new root.
func (c *Component) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// ComponentList is an ordered child list stored as a single JSONB value.
// Order is insertion order and is never re-sorted.
type ComponentList []Component

// Value implements driver.Valuer for JSONB serialization.
func (l ComponentList) Value() (driver.Value, error) {
	if l == nil {
		l = ComponentList{}
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner for JSONB deserialization.
func (l *ComponentList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("unsupported type %T for ComponentList", value)
	}
}
