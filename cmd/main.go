package main

import (
	"net/http"

	"feature-service/internal/handler"
	mid "feature-service/internal/middleware"
	"feature-service/internal/model"
	"feature-service/internal/seed"
	"feature-service/internal/store"
	"feature-service/internal/tree"
	"feature-service/pkg/config"
	"feature-service/pkg/database"
	"feature-service/pkg/logger"
	"feature-service/prometheus"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// Load configuration (reads .env when present)
	appConfig, err := config.Load()
	if err != nil {
		// Can't use structured logger yet since it's not initialized
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	if err := logger.InitLogger(appConfig); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting feature-service", appConfig.LogFields()...)

	// Initialize Prometheus metrics
	prometheus.InitMetrics(appConfig)
	log.Info("Prometheus metrics initialized",
		zap.String("metrics_prefix", appConfig.Metrics.Prefix))

	// Initialize database
	db, err := database.InitDB(appConfig)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	if err := database.MigrateModels(db,
		&model.Component{},
		&model.Feature{},
		&model.Endpoint{},
		&model.DatabaseChange{},
		&model.Image{},
		&model.User{},
	); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Seed sample data on first run
	if err := seed.Run(db, log); err != nil {
		log.Fatal("Failed to seed database", zap.Error(err))
	}

	// Wire the component tree engine on top of its store
	componentStore := store.NewGormComponentStore(db)
	engine := tree.NewEngine(componentStore)

	componentHandler := handler.NewComponentHandler(engine)
	featureHandler := handler.NewFeatureHandler(db, engine)
	endpointHandler := handler.NewEndpointHandler(db)
	changeHandler := handler.NewDatabaseChangeHandler(db)
	imageHandler := handler.NewImageHandler(db, appConfig)
	userHandler := handler.NewUserHandler(db)

	// Initialize Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(mid.RequestIDMiddleware)
	e.Use(mid.MetricsMiddleware)

	// Metrics endpoint
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Component API routes
	componentAPI := e.Group("/api/components")
	componentAPI.GET("", componentHandler.List)
	componentAPI.POST("", componentHandler.Create)
	componentAPI.POST("/delete-selected", componentHandler.DeleteSelected)
	componentAPI.GET("/:id", componentHandler.Get)
	componentAPI.PUT("/:id", componentHandler.Update)
	componentAPI.DELETE("/:id", componentHandler.Delete)
	componentAPI.PATCH("/:id/toggle-completion", componentHandler.ToggleCompletion)
	componentAPI.POST("/:id/children", componentHandler.AddChild)
	componentAPI.PUT("/:id/children/:childId", componentHandler.UpdateChild)
	componentAPI.DELETE("/:id/children/:childId", componentHandler.RemoveChild)
	componentAPI.PATCH("/:id/children/:childId/toggle-completion", componentHandler.ToggleChildCompletion)

	// Feature API routes
	featureAPI := e.Group("/api/features")
	featureAPI.GET("", featureHandler.List)
	featureAPI.POST("", featureHandler.Create)
	featureAPI.GET("/:id", featureHandler.Get)
	featureAPI.PUT("/:id", featureHandler.Update)
	featureAPI.DELETE("/:id", featureHandler.Delete)
	featureAPI.GET("/:id/components", featureHandler.ListComponents)
	featureAPI.GET("/:id/endpoints", featureHandler.ListEndpoints)
	featureAPI.GET("/:id/database-changes", featureHandler.ListDatabaseChanges)
	featureAPI.GET("/:id/images", featureHandler.ListImages)

	// Endpoint API routes
	endpointAPI := e.Group("/api/endpoints")
	endpointAPI.GET("", endpointHandler.List)
	endpointAPI.POST("", endpointHandler.Create)
	endpointAPI.GET("/:id", endpointHandler.Get)
	endpointAPI.PUT("/:id", endpointHandler.Update)
	endpointAPI.DELETE("/:id", endpointHandler.Delete)
	endpointAPI.PATCH("/:id/toggle-completion", endpointHandler.ToggleCompletion)

	// Database change API routes
	changeAPI := e.Group("/api/database-changes")
	changeAPI.GET("", changeHandler.List)
	changeAPI.POST("", changeHandler.Create)
	changeAPI.GET("/:id", changeHandler.Get)
	changeAPI.PUT("/:id", changeHandler.Update)
	changeAPI.DELETE("/:id", changeHandler.Delete)
	changeAPI.PATCH("/:id/complete", changeHandler.MarkCompleted)

	// Image API routes
	imageAPI := e.Group("/api/images")
	imageAPI.GET("", imageHandler.List)
	imageAPI.POST("", imageHandler.Upload)
	imageAPI.GET("/:id", imageHandler.Get)
	imageAPI.DELETE("/:id", imageHandler.Delete)

	// User API routes
	userAPI := e.Group("/api/users")
	userAPI.GET("", userHandler.List)
	userAPI.POST("", userHandler.Create)
	userAPI.GET("/search/:query", userHandler.Search)
	userAPI.GET("/:id", userHandler.Get)
	userAPI.PUT("/:id", userHandler.Update)
	userAPI.DELETE("/:id", userHandler.Delete)

	// Uploaded images are served directly from disk
	e.Static("/uploads", appConfig.Upload.Dir)

	// Start server
	port := appConfig.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Server error", zap.Error(err))
	}
}
