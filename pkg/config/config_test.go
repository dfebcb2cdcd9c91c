package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "staffingd", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Mode)
	assert.Equal(t, 8080, cfg.API.Port)
	assert.Equal(t, 15*time.Second, cfg.API.ReadTimeout)
	assert.Equal(t, 0.8, cfg.Planner.ServiceLevelGoal)
	assert.Equal(t, 20.0, cfg.Planner.AnswerWaitTime)
	assert.Equal(t, 0.9, cfg.Planner.OccupancyAlert)
	assert.Equal(t, 100, cfg.Events.BufferSize)
}

func TestLoad_DefaultsValidate(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg, err := Load("")
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty app name", func(c *Config) { c.App.Name = "" }},
		{"bad mode", func(c *Config) { c.App.Mode = "staging" }},
		{"bad log level", func(c *Config) { c.App.LogLevel = "trace" }},
		{"bad database port", func(c *Config) { c.Database.Port = 70000 }},
		{"zero max connections", func(c *Config) { c.Database.MaxConnections = 0 }},
		{"service level goal above one", func(c *Config) { c.Planner.ServiceLevelGoal = 1.5 }},
		{"negative answer wait", func(c *Config) { c.Planner.AnswerWaitTime = -1 }},
		{"zero occupancy alert", func(c *Config) { c.Planner.OccupancyAlert = 0 }},
		{"bad api port", func(c *Config) { c.API.Port = 0 }},
		{"default jwt secret in production", func(c *Config) { c.App.Mode = "production" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db.internal",
		Port:     5432,
		Name:     "staffing",
		User:     "planner",
		Password: "secret",
	}

	dsn := cfg.DSN()
	assert.Contains(t, dsn, "host=db.internal")
	assert.Contains(t, dsn, "dbname=staffing")
	assert.Contains(t, dsn, "sslmode=disable")
}
