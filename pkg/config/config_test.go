package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "feature-service", cfg.ServiceName)
	assert.Equal(t, "localhost", cfg.DB.Host)
	assert.Equal(t, "5432", cfg.DB.Port)
	assert.Equal(t, "feature-service", cfg.DB.DBName)
	assert.Equal(t, "6969", cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Env)
	assert.Equal(t, "feature_service", cfg.Metrics.Prefix)
	assert.Equal(t, "uploads", cfg.Upload.Dir)
	assert.Equal(t, int64(5*1024*1024), cfg.Upload.MaxBytes)
	assert.Equal(t, time.Hour, cfg.DB.ConnMaxLifetime)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVICE_NAME", "feature-svc-test")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_MAX_IDLE_CONNS", "3")
	t.Setenv("DB_CONN_MAX_LIFETIME", "30m")
	t.Setenv("DB_LOG_LEVEL", "silent")
	t.Setenv("SERVER_PORT", "8080")
	t.Setenv("UPLOAD_MAX_BYTES", "1024")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "feature-svc-test", cfg.ServiceName)
	assert.Equal(t, "db.internal", cfg.DB.Host)
	assert.Equal(t, "feature-svc-test", cfg.DB.DBName, "db name defaults to the service name")
	assert.Equal(t, 3, cfg.DB.MaxIdleConns)
	assert.Equal(t, 30*time.Minute, cfg.DB.ConnMaxLifetime)
	assert.Equal(t, logger.Silent, cfg.DB.LogLevel)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, int64(1024), cfg.Upload.MaxBytes)
}

func TestGetDSN(t *testing.T) {
	db := DBConfig{
		Host:     "localhost",
		Port:     "5432",
		User:     "postgres",
		Password: "secret",
		DBName:   "features",
		SSLMode:  "disable",
	}
	assert.Equal(t,
		"host=localhost port=5432 user=postgres password=secret dbname=features sslmode=disable",
		db.GetDSN())
}
