package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allKeys = []string{
	"PORT", "LOG_MODE", "CORS_ALLOWED_ORIGINS",
	"ARK_API_KEY", "ARK_ACCESS_KEY", "ARK_SECRET_KEY", "ARK_MODEL", "ARK_CHAT_MODEL",
	"ARK_BASE_URL", "ARK_REGION", "ARK_TEMPERATURE", "ARK_TOP_P", "ARK_MAX_TOKENS",
	"AI_GENERATION_TIMEOUT", "JWT_SECRET", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
	"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "BOLT_PATH", "FILE_FETCH_TIMEOUT", "FILE_MAX_BYTES",
	"SEARCH_URL", "SEARCH_TIMEOUT", "SEARCH_MAX_RESULTS",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range allKeys {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:5173"}, cfg.Server.AllowedOrigins)
	assert.False(t, cfg.AI.Enabled())
	assert.Equal(t, 60*time.Second, cfg.AI.GenerationTimeout)
	assert.Nil(t, cfg.AI.Temperature)
	assert.False(t, cfg.Auth.Required())
	assert.Equal(t, 0.5, cfg.Auth.RateLimitRPS)
	assert.Equal(t, 5, cfg.Auth.RateLimitBurst)
	assert.False(t, cfg.Store.UseRedis())
	assert.False(t, cfg.Store.UseBolt())
	assert.Equal(t, 15*time.Second, cfg.Files.FetchTimeout)
	assert.Equal(t, int64(10<<20), cfg.Files.MaxBytes)
	assert.False(t, cfg.Search.Enabled())
	assert.Equal(t, 10*time.Second, cfg.Search.Timeout)
	assert.Equal(t, 5, cfg.Search.MaxResults)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "127.0.0.1:9000")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("ARK_API_KEY", "key")
	t.Setenv("ARK_MODEL", "default-model")
	t.Setenv("ARK_TEMPERATURE", "0.3")
	t.Setenv("ARK_MAX_TOKENS", "2048")
	t.Setenv("AI_GENERATION_TIMEOUT", "30")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("RATE_LIMIT_BURST", "0")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("FILE_FETCH_TIMEOUT", "2s")
	t.Setenv("SEARCH_URL", "http://searx:8080")
	t.Setenv("SEARCH_MAX_RESULTS", "3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
	assert.True(t, cfg.AI.Enabled())
	assert.Equal(t, "default-model", cfg.AI.ChatModelID())
	require.NotNil(t, cfg.AI.Temperature)
	assert.InDelta(t, 0.3, *cfg.AI.Temperature, 1e-9)
	require.NotNil(t, cfg.AI.MaxTokens)
	assert.Equal(t, 2048, *cfg.AI.MaxTokens)
	assert.Equal(t, 30*time.Second, cfg.AI.GenerationTimeout)
	assert.True(t, cfg.Auth.Required())
	assert.Equal(t, 1, cfg.Auth.RateLimitBurst)
	assert.True(t, cfg.Store.UseRedis())
	assert.Equal(t, 2, cfg.Store.RedisDB)
	assert.Equal(t, 2*time.Second, cfg.Files.FetchTimeout)
	assert.True(t, cfg.Search.Enabled())
	assert.Equal(t, 3, cfg.Search.MaxResults)
}

func TestRedisWinsOverBolt(t *testing.T) {
	assert.True(t, StoreConfig{BoltPath: "data.db"}.UseBolt())
	assert.False(t, StoreConfig{BoltPath: "data.db", RedisAddr: "localhost:6379"}.UseBolt())
}

func TestChatModelOverride(t *testing.T) {
	cfg := AIConfig{Model: "a", ChatModel: "b"}
	assert.Equal(t, "b", cfg.ChatModelID())
}

func TestEnabledWithAccessKeyPair(t *testing.T) {
	assert.True(t, AIConfig{Model: "m", AccessKey: "ak", SecretKey: "sk"}.Enabled())
	assert.False(t, AIConfig{Model: "m", AccessKey: "ak"}.Enabled())
	assert.False(t, AIConfig{APIKey: "key"}.Enabled())
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"PORT":                  "80 80",
		"ARK_TEMPERATURE":       "warm",
		"AI_GENERATION_TIMEOUT": "-5",
		"REDIS_DB":              "one",
		"FILE_FETCH_TIMEOUT":    "soon",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)

			_, err := Load()

			assert.Error(t, err)
		})
	}
}
