package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	GeminiAPIKey string
	GeminiModel  string
	LLMTimeout   time.Duration

	GradioSpace       string
	GradioURL         string
	GradioAPIName     string
	HFToken           string
	GenerationTimeout time.Duration

	PhotosDir string
	StaticDir string
	BotsFile  string

	CORSAllowedOrigins []string

	DatabaseURL string

	TelegramBotToken string
	TelegramChatID   int64

	LogLevel  string
	LogFormat string
}

// ImagesDir: куда складываются сгенерированные картинки.
func (c *Config) ImagesDir() string {
	return filepath.Join(c.StaticDir, "images")
}

func mustEnv(getenv func(string) string, k string) (string, error) {
	v := strings.TrimSpace(getenv(k))
	if v == "" {
		return "", fmt.Errorf("missing required env %s", k)
	}
	return v, nil
}

func getEnv(getenv func(string) string, k, def string) string {
	if v := strings.TrimSpace(getenv(k)); v != "" {
		return v
	}
	return def
}

func getDuration(getenv func(string) string, k string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(getenv(k))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("bad %s: %w", k, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("bad %s: must be > 0", k)
	}
	return d, nil
}

// SplitOrigins разбирает CORS_ALLOWED_ORIGINS ("a,b , c"), пустые элементы выбрасываются.
func SplitOrigins(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

// Load reads .env (if any) and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

func FromEnv(getenv func(string) string) (*Config, error) {
	key, err := mustEnv(getenv, "GEMINI_API_KEY")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port: getEnv(getenv, "PORT", "8000"),

		GeminiAPIKey: key,
		GeminiModel:  getEnv(getenv, "GEMINI_MODEL", "gemini-1.5-flash"),

		GradioSpace:   getEnv(getenv, "GRADIO_SPACE", "multimodalart/Ip-Adapter-FaceID"),
		GradioURL:     getEnv(getenv, "GRADIO_URL", ""),
		GradioAPIName: getEnv(getenv, "GRADIO_API_NAME", "/generate_image"),
		HFToken:       getEnv(getenv, "HF_TOKEN", ""),

		PhotosDir: getEnv(getenv, "PHOTOS_DIR", "photos"),
		StaticDir: getEnv(getenv, "STATIC_DIR", "static"),
		BotsFile:  getEnv(getenv, "BOTS_FILE", ""),

		CORSAllowedOrigins: SplitOrigins(getEnv(getenv, "CORS_ALLOWED_ORIGINS", "*")),

		DatabaseURL: resolveDSN(getenv),

		TelegramBotToken: getEnv(getenv, "TELEGRAM_BOT_TOKEN", ""),

		LogLevel:  getEnv(getenv, "LOG_LEVEL", "info"),
		LogFormat: getEnv(getenv, "LOG_FORMAT", "json"),
	}

	if cfg.LLMTimeout, err = getDuration(getenv, "LLM_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.GenerationTimeout, err = getDuration(getenv, "GENERATION_TIMEOUT", 5*time.Minute); err != nil {
		return nil, err
	}

	if s := strings.TrimSpace(getenv("TELEGRAM_CHAT_ID")); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad TELEGRAM_CHAT_ID: %w", err)
		}
		cfg.TelegramChatID = id
	}
	if cfg.TelegramBotToken != "" && cfg.TelegramChatID == 0 {
		return nil, errors.New("TELEGRAM_CHAT_ID is required when TELEGRAM_BOT_TOKEN is set")
	}

	return cfg, nil
}

// resolveDSN: DATABASE_URL, иначе собираем из POSTGRES_* / PG*.
// Без пароля и без DATABASE_URL журнал генераций отключён (пустая строка).
func resolveDSN(getenv func(string) string) string {
	if v := strings.TrimSpace(getenv("DATABASE_URL")); v != "" {
		return v
	}
	pass := getenv("POSTGRES_PASSWORD")
	if pass == "" {
		return ""
	}
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(getEnv(getenv, "POSTGRES_USER", "selfie"), pass),
		Host:     net.JoinHostPort(getEnv(getenv, "PGHOST", "db"), getEnv(getenv, "PGPORT", "5432")),
		Path:     "/" + getEnv(getenv, "POSTGRES_DB", "selfie"),
		RawQuery: "sslmode=disable",
	}
	return u.String()
}
