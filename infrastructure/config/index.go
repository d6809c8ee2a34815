package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type StoreDriver string

const (
	StoreMongo  StoreDriver = "mongo"
	StoreMemory StoreDriver = "memory"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Biometric  BiometricConfig
	AuditQueue bool
}

type ServerConfig struct {
	Port        string
	GinMode     string
	CORSOrigins []string
	MaxUploadMB int64
	// RateLimit is the per-IP request budget per second.
	RateLimit int
}

type DatabaseConfig struct {
	Driver StoreDriver
	URL    string
	Name   string
}

type RedisConfig struct {
	Addr     string
	Password string
	// CacheTTL bounds how long the identity directory is served from redis.
	CacheTTL time.Duration
}

func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

type BiometricConfig struct {
	ModelsDir      string
	BackendTimeout time.Duration
}

// Load reads the process environment. Values are read on every call so tests
// can use t.Setenv.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8001"),
			GinMode:     getEnv("GIN_MODE", "debug"),
			CORSOrigins: getList("CORS_ORIGINS", []string{"http://localhost:5173"}),
			MaxUploadMB: int64(getInt("MAX_UPLOAD_MB", 15)),
			RateLimit:   getInt("RATE_LIMIT_PER_SECOND", 10),
		},
		Database: DatabaseConfig{
			Driver: StoreDriver(strings.ToLower(getEnv("STORE_DRIVER", string(StoreMongo)))),
			URL:    getEnv("DB_URL", "mongodb://localhost:27017"),
			Name:   getEnv("DB_NAME", "face_recognition"),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			CacheTTL: time.Duration(getInt("IDENTITY_CACHE_TTL_SECONDS", 600)) * time.Second,
		},
		Biometric: BiometricConfig{
			ModelsDir:      getEnv("MODELS_DIR", "./models"),
			BackendTimeout: time.Duration(getInt("BACKEND_TIMEOUT_SECONDS", 20)) * time.Second,
		},
		AuditQueue: getBool("AUDIT_QUEUE_ENABLED", false),
	}
}

// ModelPath joins parts under the models directory.
func (b BiometricConfig) ModelPath(parts ...string) string {
	return filepath.Join(append([]string{b.ModelsDir}, parts...)...)
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func getBool(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getList(key string, fallback []string) []string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
