package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "DELIVERY_FEE", "PAYMENT_DELAY", "STAGE_INTERVAL", "GEMINI_MODEL", "MYSQL_HOST", "MYSQL_DATABASE", "REDIS_DB"} {
		t.Setenv(k, "")
	}

	cfg, _ := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "49", cfg.DeliveryFee.String())
	assert.Equal(t, 2*time.Second, cfg.PaymentDelay)
	assert.Equal(t, 3500*time.Millisecond, cfg.StageInterval)
	assert.Equal(t, "gemini-2.5-flash", cfg.GeminiModel)
	assert.Equal(t, "order.exchange", cfg.RabbitMQExchange)
	assert.Equal(t, 0, cfg.RedisDB)
	assert.False(t, cfg.MySQL.Enabled())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DELIVERY_FEE", "59.5")
	t.Setenv("PAYMENT_DELAY", "10ms")
	t.Setenv("STAGE_INTERVAL", "1s")
	t.Setenv("MYSQL_HOST", "db")
	t.Setenv("MYSQL_DATABASE", "pizza")
	t.Setenv("REDIS_DB", "3")

	cfg, _ := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "59.5", cfg.DeliveryFee.String())
	assert.Equal(t, 10*time.Millisecond, cfg.PaymentDelay)
	assert.Equal(t, time.Second, cfg.StageInterval)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.True(t, cfg.MySQL.Enabled())
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("DELIVERY_FEE", "-3")
	t.Setenv("PAYMENT_DELAY", "soon")
	t.Setenv("REDIS_DB", "x")

	cfg, _ := Load()

	assert.Equal(t, "49", cfg.DeliveryFee.String())
	assert.Equal(t, 2*time.Second, cfg.PaymentDelay)
	assert.Equal(t, 0, cfg.RedisDB)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("GEMINI_MODEL=gemini-test\n"), 0o600))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	// godotenv never overrides variables that are already set.
	t.Setenv("GEMINI_MODEL", "")
	require.NoError(t, os.Unsetenv("GEMINI_MODEL"))

	cfg, loaded := Load()

	assert.True(t, loaded)
	assert.Equal(t, "gemini-test", cfg.GeminiModel)
}
