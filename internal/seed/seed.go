// Package seed populates an empty database with the sample project data the
// dashboard starts from: a default feature, its component tree, two endpoint
// specs and a small team.
package seed

import (
	"fmt"
	"time"

	"feature-service/internal/model"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Run seeds initial data when the features table is empty. It is a no-op on
// a populated database.
func Run(db *gorm.DB, log *zap.Logger) error {
	var count int64
	if result := db.Model(&model.Feature{}).Count(&count); result.Error != nil {
		return fmt.Errorf("counting features: %w", result.Error)
	}
	if count > 0 {
		return nil
	}

	feature := model.Feature{
		Name:        "Dashboard Creation",
		Description: "Main dashboard creation feature",
	}
	if result := db.Create(&feature); result.Error != nil {
		return fmt.Errorf("seeding feature: %w", result.Error)
	}

	if err := seedComponents(db, feature.ID); err != nil {
		return err
	}
	if err := seedEndpoints(db, feature.ID); err != nil {
		return err
	}
	if err := seedUsers(db); err != nil {
		return err
	}

	log.Info("Seed data created", zap.String("feature_id", feature.ID))
	return nil
}

// seedComponents inserts the sample tree as one root document, the same way
// runtime writes do: the whole child list lives inside the root row.
func seedComponents(db *gorm.DB, featureID string) error {
	now := time.Now()
	component := model.Component{
		Name:        "DashboardContext",
		Type:        "context",
		Description: "Provides state and context for the dashboard features",
		FeatureID:   &featureID,
		CreatedAt:   now,
		UpdatedAt:   now,
		Children: model.ComponentList{
			{
				ID:          uuid.NewString(),
				Name:        "DashboardProvider",
				Type:        "provider",
				Description: "Provider implementation for Dashboard context",
				CreatedAt:   now,
				UpdatedAt:   now,
				Children: model.ComponentList{
					{
						ID:          uuid.NewString(),
						Name:        "ActionTable",
						Type:        "component",
						Description: "Table component for displaying dashboard actions",
						CreatedAt:   now,
						UpdatedAt:   now,
					},
					{
						ID:          uuid.NewString(),
						Name:        "Snapshot",
						Type:        "component",
						Description: "Component for displaying dashboard snapshots",
						CreatedAt:   now,
						UpdatedAt:   now,
					},
				},
			},
		},
	}
	if result := db.Create(&component); result.Error != nil {
		return fmt.Errorf("seeding components: %w", result.Error)
	}
	return nil
}

func seedEndpoints(db *gorm.DB, featureID string) error {
	endpoints := []model.Endpoint{
		{
			Method:       "POST",
			Path:         "/api/auth/endpoint",
			QueryParams:  model.QueryParamList{},
			Description:  "Authentication endpoint for user login",
			RequestBody:  "{\n  \"json\": {}\n}",
			ResponseBody: "{\n  \"json\": {}\n}",
			FeatureID:    &featureID,
		},
		{
			Method: "GET",
			Path:   "/api/auth/endpoint",
			QueryParams: model.QueryParamList{
				{Key: "sort", Value: "true"},
				{Key: "limit", Value: "10"},
				{Key: "filter", Value: "org"},
			},
			Description:  "Retrieves user authentication status",
			RequestBody:  "{}",
			ResponseBody: "{}",
			FeatureID:    &featureID,
		},
	}
	for i := range endpoints {
		if result := db.Create(&endpoints[i]); result.Error != nil {
			return fmt.Errorf("seeding endpoint: %w", result.Error)
		}
	}
	return nil
}

func seedUsers(db *gorm.DB) error {
	users := []model.User{
		{Name: "Pol", Email: "pol@example.com", Role: "Developer", Avatar: "user1.png"},
		{Name: "Jackie", Email: "jackie@example.com", Role: "Designer", Avatar: "user2.png"},
		{Name: "Chinna", Email: "chinna@example.com", Role: "Developer", Avatar: "user3.png"},
	}
	for i := range users {
		if result := db.Create(&users[i]); result.Error != nil {
			return fmt.Errorf("seeding user: %w", result.Error)
		}
	}
	return nil
}
