package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hotelops/backend/internal/domain/cashier"
	"github.com/hotelops/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		cfg, err := load(t.TempDir())
		require.NoError(t, err)

		assert.Equal(t, "cashier-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.Server.Port)
		assert.Equal(t, "postgres", cfg.Database.Driver)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "cashier", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
		assert.Equal(t, 200*time.Millisecond, cfg.Database.SlowQueryThresh)
		assert.False(t, cfg.Redis.Enabled)
		assert.Equal(t, "cashier-backend", cfg.Telemetry.ServiceName)
		assert.Equal(t, "0.00", cfg.Cashier.Tolerance)
		assert.Equal(t, 5*time.Minute, cfg.Cashier.ReportCacheTTL)
		assert.Equal(t, []string{"night", "morning", "afternoon", "closing"}, cfg.Cashier.Roster)
	})

	t.Run("loads values from environment variables with CASHIER prefix", func(t *testing.T) {
		t.Setenv("CASHIER_APP_NAME", "front-desk")
		t.Setenv("CASHIER_SERVER_PORT", "9000")
		t.Setenv("CASHIER_DATABASE_DRIVER", "sqlite")
		t.Setenv("CASHIER_DATABASE_PATH", ":memory:")
		t.Setenv("CASHIER_DATABASE_MAX_OPEN_CONNS", "1")
		t.Setenv("CASHIER_DATABASE_MAX_IDLE_CONNS", "1")
		t.Setenv("CASHIER_REDIS_ENABLED", "true")
		t.Setenv("CASHIER_CASHIER_TOLERANCE", "0.50")
		t.Setenv("CASHIER_CASHIER_ROSTER", "morning,afternoon")

		cfg, err := load(t.TempDir())
		require.NoError(t, err)

		assert.Equal(t, "front-desk", cfg.App.Name)
		assert.Equal(t, "9000", cfg.Server.Port)
		assert.Equal(t, "sqlite", cfg.Database.Driver)
		assert.Equal(t, ":memory:", cfg.Database.DSN())
		assert.Equal(t, 1, cfg.Database.MaxOpenConns)
		assert.True(t, cfg.Redis.Enabled)
		assert.Equal(t, "0.50", cfg.Cashier.Tolerance)
		assert.Equal(t, []string{"morning", "afternoon"}, cfg.Cashier.Roster)
	})

	t.Run("reads config.toml", func(t *testing.T) {
		dir := t.TempDir()
		content := `
[database]
driver = "sqlite"
path = "local.db"

[cashier]
tolerance = "1.00"
block_threshold = "20.00"
roster = ["morning", "closing"]
`
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0o600))

		cfg, err := load(dir)
		require.NoError(t, err)

		assert.Equal(t, "local.db", cfg.Database.DSN())
		policy, err := cfg.Cashier.ClosePolicy()
		require.NoError(t, err)
		assert.True(t, policy.Tolerance.Equals(valueobject.MustMoney("1.00")))
		assert.True(t, policy.BlockThreshold.Equals(valueobject.MustMoney("20.00")))

		roster, err := cfg.Cashier.ShiftRoster()
		require.NoError(t, err)
		assert.Equal(t, []cashier.ShiftType{cashier.ShiftTypeMorning, cashier.ShiftTypeClosing}, roster)
	})

	t.Run("rejects unknown driver", func(t *testing.T) {
		t.Setenv("CASHIER_DATABASE_DRIVER", "mysql")
		_, err := load(t.TempDir())
		assert.ErrorContains(t, err, "database.driver")
	})

	t.Run("rejects idle conns above open conns", func(t *testing.T) {
		t.Setenv("CASHIER_DATABASE_MAX_OPEN_CONNS", "2")
		t.Setenv("CASHIER_DATABASE_MAX_IDLE_CONNS", "3")
		_, err := load(t.TempDir())
		assert.ErrorContains(t, err, "max_idle_conns")
	})

	t.Run("production requires a database password", func(t *testing.T) {
		t.Setenv("CASHIER_APP_ENV", "production")
		_, err := load(t.TempDir())
		assert.ErrorContains(t, err, "database.password")
	})

	t.Run("rejects sampling ratio out of range", func(t *testing.T) {
		t.Setenv("CASHIER_TELEMETRY_SAMPLING_RATIO", "1.5")
		_, err := load(t.TempDir())
		assert.ErrorContains(t, err, "sampling_ratio")
	})
}

func TestCashierConfig(t *testing.T) {
	t.Run("negative tolerance is rejected", func(t *testing.T) {
		c := CashierConfig{Tolerance: "-1.00", BlockThreshold: "0"}
		_, err := c.ClosePolicy()
		assert.Error(t, err)
	})

	t.Run("threshold below tolerance is rejected", func(t *testing.T) {
		c := CashierConfig{Tolerance: "5.00", BlockThreshold: "1.00"}
		_, err := c.ClosePolicy()
		assert.Error(t, err)
	})

	t.Run("more than two decimals is rejected", func(t *testing.T) {
		c := CashierConfig{Tolerance: "0.001", BlockThreshold: "0"}
		_, err := c.ClosePolicy()
		assert.Error(t, err)
	})

	t.Run("roster rejects unknown and duplicate types", func(t *testing.T) {
		_, err := (&CashierConfig{Roster: []string{"brunch"}}).ShiftRoster()
		assert.ErrorContains(t, err, "unknown shift type")

		_, err = (&CashierConfig{Roster: []string{"night", "night"}}).ShiftRoster()
		assert.ErrorContains(t, err, "duplicate shift type")

		_, err = (&CashierConfig{}).ShiftRoster()
		assert.Error(t, err)
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("escapes credentials", func(t *testing.T) {
		d := DatabaseConfig{
			Driver:   "postgres",
			Host:     "db",
			Port:     5432,
			User:     "cashier",
			Password: "p@ss/word",
			DBName:   "cashier",
			SSLMode:  "disable",
		}
		assert.Equal(t, "postgres://cashier:p%40ss%2Fword@db:5432/cashier?sslmode=disable", d.DSN())
	})

	t.Run("redis address", func(t *testing.T) {
		r := RedisConfig{Host: "cache", Port: 6380}
		assert.Equal(t, "cache:6380", r.Addr())
	})
}
