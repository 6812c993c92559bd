package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Endpoint is an API endpoint specification tracked under a feature.
// Request and response bodies are opaque text and are never parsed.
type Endpoint struct {
	ID           string         `json:"id" gorm:"type:varchar(36);primarykey"`
	Method       string         `json:"method" gorm:"type:varchar(10);not null"`
	Path         string         `json:"path" gorm:"type:varchar(255);not null"`
	QueryParams  QueryParamList `json:"queryParams" gorm:"type:jsonb"`
	RequestBody  string         `json:"requestBody" gorm:"type:text"`
	ResponseBody string         `json:"responseBody" gorm:"type:text"`
	Description  string         `json:"description" gorm:"type:text"`
	Completed    bool           `json:"completed" gorm:"default:false"`
	AssigneeID   *string        `json:"assigneeId" gorm:"type:varchar(36)"`
	FeatureID    *string        `json:"featureId" gorm:"type:varchar(36);index"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

func (e *Endpoint) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

// QueryParam is a single key/value pair of an endpoint's query string.
type QueryParam struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// QueryParamList is an ordered list of query params stored as JSONB.
type QueryParamList []QueryParam

func (l QueryParamList) Value() (driver.Value, error) {
	if l == nil {
		l = QueryParamList{}
	}
	return json.Marshal(l)
}

func (l *QueryParamList) Scan(value interface{}) error {
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
		return fmt.Errorf("unsupported type %T for QueryParamList", value)
	}
}
