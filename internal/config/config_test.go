package config

import (
	"testing"
	"time"

	"github.com/Aaditya88888/netwin-tournament-sub001/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "4000", cfg.Server.Port)
	assert.Equal(t, StoreDriverMongoDB, cfg.StoreDriver)
	assert.Equal(t, models.DefaultSettlementPolicy, cfg.DefaultPolicy())
	assert.Equal(t, 30*time.Second, cfg.Settlement.LockTTL)
	assert.Equal(t, 5*time.Minute, cfg.Reconciliation.Interval)
	assert.Equal(t, []string{"admin", "super_admin"}, cfg.JWT.AdminRoles)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("STOREDRIVER", "memory")
	t.Setenv("SETTLEMENT_KILLPOOLPOLICY", "percentage")
	t.Setenv("SETTLEMENT_PERKILLPOLICY", "eliminations")
	t.Setenv("RECONCILIATION_GRACEPERIOD", "2h")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("LOGLEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoreDriverMemory, cfg.StoreDriver)
	assert.Equal(t, models.SettlementPolicy{KillPool: models.KillPoolPercentage, PerKill: models.PerKillEliminations}, cfg.DefaultPolicy())
	assert.Equal(t, 2*time.Hour, cfg.Reconciliation.GracePeriod)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
}

func TestValidate(t *testing.T) {
	valid := Config{
		JWT:            JWTConfig{Secret: "s"},
		Settlement:     SettlementConfig{KillPoolPolicy: "remainder", PerKillPolicy: "recorded_kills"},
		Reconciliation: ReconciliationConfig{Enabled: true, Interval: time.Minute},
		StoreDriver:    StoreDriverMemory,
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing secret", func(c *Config) { c.JWT.Secret = "" }},
		{"unknown kill pool policy", func(c *Config) { c.Settlement.KillPoolPolicy = "split" }},
		{"unknown store", func(c *Config) { c.StoreDriver = "postgres" }},
		{"archive without bucket", func(c *Config) { c.Archive.Enabled = true }},
		{"zero interval", func(c *Config) { c.Reconciliation.Interval = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
