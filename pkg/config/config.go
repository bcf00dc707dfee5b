package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env string

	API      APIConfig
	Realtime RealtimeConfig
	Session  SessionConfig
	Cache    CacheConfig
	Chat     ChatConfig
	Log      LogConfig
	Stub     StubConfig
}

// APIConfig points the client at the backend REST API.
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

// RealtimeConfig governs the WebSocket transport.
type RealtimeConfig struct {
	URL              string
	ReconnectMin     time.Duration
	ReconnectMax     time.Duration
	HandshakeTimeout time.Duration
}

// SessionConfig locates the persisted bearer token.
type SessionConfig struct {
	File string
}

// CacheConfig locates the local sqlite cache.
type CacheConfig struct {
	Path string
}

// ChatConfig tunes chat presentation behaviour.
type ChatConfig struct {
	TypingTTL   time.Duration
	HistoryPage int
}

type LogConfig struct {
	Level  string
	Format string
}

// StubConfig configures the bundled stub backend.
type StubConfig struct {
	Port      int
	JWTSecret string
	JWTExpiry time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.SetEnvPrefix("STUDENTLINK")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")

	cfg.API = APIConfig{
		BaseURL: strings.TrimRight(v.GetString("API_BASE_URL"), "/"),
		Timeout: parseDuration(v.GetString("API_TIMEOUT"), 30*time.Second),
	}

	cfg.Realtime = RealtimeConfig{
		URL:              v.GetString("WS_URL"),
		ReconnectMin:     parseDuration(v.GetString("WS_RECONNECT_MIN"), time.Second),
		ReconnectMax:     parseDuration(v.GetString("WS_RECONNECT_MAX"), 30*time.Second),
		HandshakeTimeout: parseDuration(v.GetString("WS_HANDSHAKE_TIMEOUT"), 10*time.Second),
	}

	cfg.Session = SessionConfig{File: expandHome(v.GetString("SESSION_FILE"))}
	cfg.Cache = CacheConfig{Path: expandHome(v.GetString("CACHE_PATH"))}

	cfg.Chat = ChatConfig{
		TypingTTL:   parseDuration(v.GetString("TYPING_TTL"), 8*time.Second),
		HistoryPage: v.GetInt("CHAT_HISTORY_PAGE"),
	}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Stub = StubConfig{
		Port:      v.GetInt("STUB_PORT"),
		JWTSecret: v.GetString("STUB_JWT_SECRET"),
		JWTExpiry: parseDuration(v.GetString("STUB_JWT_EXPIRY"), 24*time.Hour),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)

	v.SetDefault("API_BASE_URL", "http://localhost:8080/api/v1")
	v.SetDefault("API_TIMEOUT", "30s")

	v.SetDefault("WS_URL", "ws://localhost:8080/ws")
	v.SetDefault("WS_RECONNECT_MIN", "1s")
	v.SetDefault("WS_RECONNECT_MAX", "30s")
	v.SetDefault("WS_HANDSHAKE_TIMEOUT", "10s")

	v.SetDefault("SESSION_FILE", "~/.studentlink/session.json")
	v.SetDefault("CACHE_PATH", "~/.studentlink/cache.db")

	v.SetDefault("TYPING_TTL", "8s")
	v.SetDefault("CHAT_HISTORY_PAGE", 50)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")

	v.SetDefault("STUB_PORT", 8080)
	v.SetDefault("STUB_JWT_SECRET", "dev_secret")
	v.SetDefault("STUB_JWT_EXPIRY", "24h")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
