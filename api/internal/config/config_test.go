package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(envMap(map[string]string{"GEMINI_API_KEY": "k"}))
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, "k", cfg.GeminiAPIKey)
	assert.Equal(t, "gemini-1.5-flash", cfg.GeminiModel)
	assert.Equal(t, "multimodalart/Ip-Adapter-FaceID", cfg.GradioSpace)
	assert.Equal(t, "/generate_image", cfg.GradioAPIName)
	assert.Equal(t, "photos", cfg.PhotosDir)
	assert.Equal(t, "static/images", cfg.ImagesDir())
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 5*time.Minute, cfg.GenerationTimeout)
	assert.Equal(t, 30*time.Second, cfg.LLMTimeout)
	assert.Zero(t, cfg.TelegramChatID)
}

func TestFromEnv_MissingKey(t *testing.T) {
	_, err := FromEnv(envMap(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
}

func TestFromEnv_Overrides(t *testing.T) {
	cfg, err := FromEnv(envMap(map[string]string{
		"GEMINI_API_KEY":       "k",
		"PORT":                 "9000",
		"CORS_ALLOWED_ORIGINS": "https://a.example, https://b.example,,",
		"GENERATION_TIMEOUT":   "90s",
		"TELEGRAM_BOT_TOKEN":   "tok",
		"TELEGRAM_CHAT_ID":     "-100123",
	}))
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 90*time.Second, cfg.GenerationTimeout)
	assert.Equal(t, int64(-100123), cfg.TelegramChatID)
}

func TestFromEnv_BadValues(t *testing.T) {
	cases := map[string]map[string]string{
		"duration":     {"GEMINI_API_KEY": "k", "LLM_TIMEOUT": "soon"},
		"negative":     {"GEMINI_API_KEY": "k", "GENERATION_TIMEOUT": "-1s"},
		"chat id":      {"GEMINI_API_KEY": "k", "TELEGRAM_BOT_TOKEN": "t", "TELEGRAM_CHAT_ID": "abc"},
		"chat missing": {"GEMINI_API_KEY": "k", "TELEGRAM_BOT_TOKEN": "t"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := FromEnv(envMap(env))
			assert.Error(t, err)
		})
	}
}

func TestSplitOrigins(t *testing.T) {
	assert.Equal(t, []string{"*"}, SplitOrigins(""))
	assert.Equal(t, []string{"*"}, SplitOrigins(" , "))
	assert.Equal(t, []string{"a", "b"}, SplitOrigins("a,b"))
}

func TestResolveDSN(t *testing.T) {
	assert.Empty(t, resolveDSN(envMap(nil)))

	assert.Equal(t, "postgres://x", resolveDSN(envMap(map[string]string{"DATABASE_URL": "postgres://x"})))

	dsn := resolveDSN(envMap(map[string]string{
		"POSTGRES_PASSWORD": "p@ss",
		"PGHOST":            "pg",
	}))
	assert.Equal(t, "postgres://selfie:p%40ss@pg:5432/selfie?sslmode=disable", dsn)
}
