package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	DefaultEncKey  = "b3r4sput"
	DefaultLogDir  = "logs"
	DefaultPort    = "8080"
	DefaultMongoDB = "nagatech"
)

// Settings is the resolved process configuration. Values come from the environment
// (optionally seeded from .env).
type Settings struct {
	MongoURI      string `validate:"required_unless=Offline true"`
	MongoDBName   string `validate:"required"`
	EncKey        string `validate:"required,min=2"`
	LogDir        string `validate:"required"`
	Timezone      string `validate:"omitempty,timezone"`
	Port          string `validate:"required,numeric"`
	RedisAddress  string `validate:"omitempty,hostname_port"`
	PubSubTopic   string
	GCSBucket     string
	Offline       bool
	CorsOrigins   []string
	IsProduction  bool
	MongoMaxPool  uint64 `validate:"gte=0,lte=1000"`
	MongoSelectMs int    `validate:"gte=0"`
}

var validate = validator.New()

func init() {
	// Load env from .env
	godotenv.Load()
}

// LoadSettings reads the environment. Offline runs (fixture replays) do not need MONGO_URI.
func LoadSettings(offline bool) (*Settings, error) {
	s := &Settings{
		MongoURI:      strings.TrimSpace(os.Getenv("MONGO_URI")),
		MongoDBName:   envOr("MONGO_DB_NAME", DefaultMongoDB),
		EncKey:        envOr("ENC_KEY", DefaultEncKey),
		LogDir:        envOr("AUDIT_LOG_DIR", DefaultLogDir),
		Timezone:      strings.TrimSpace(os.Getenv("AUDIT_TIMEZONE")),
		Port:          envOr("PORT", DefaultPort),
		RedisAddress:  strings.TrimSpace(os.Getenv("REDIS_ADDRESS")),
		PubSubTopic:   strings.TrimSpace(os.Getenv("PUBSUB_AUDIT_TOPIC")),
		GCSBucket:     strings.TrimSpace(os.Getenv("GCS_BUCKET")),
		Offline:       offline,
		CorsOrigins:   splitAndTrim(os.Getenv("CORS_ALLOWED_ORIGINS")),
		IsProduction:  strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production"),
		MongoMaxPool:  uint64(intFromEnv("MONGO_MAX_POOL_SIZE", 50)),
		MongoSelectMs: intFromEnv("MONGO_SERVER_SELECTION_TIMEOUT_MS", 5000),
	}
	if err := validate.Struct(s); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return s, nil
}

// Location resolves the zone the audit date is locked in.
func (s *Settings) Location() *time.Location {
	if s == nil || s.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func envOr(key string, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func splitAndTrim(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
