package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the relay service settings, read from the environment (and a
// .env file loaded beforehand).
type Config struct {
	Port string

	GeminiAPIKey  string
	GeminiModel   string
	GeminiTimeout time.Duration

	JWTSecret   string
	// DevTokenKey unlocks POST /api/v1/auth/token. Empty leaves the route off.
	DevTokenKey string

	DatabaseDriver string
	DatabaseDSN    string

	RateLimit float64
	BodyLimit string

	Debug   bool
	LogFile string
}

const (
	DefaultModel             = "gemini-2.5-flash"
	DefaultStreamBufferLimit = 1 << 20
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("GEMINI_MODEL", DefaultModel)
	v.SetDefault("GEMINI_TIMEOUT", "0s")
	v.SetDefault("DATABASE_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "mentor.db")
	v.SetDefault("RATE_LIMIT", 20)
	v.SetDefault("BODY_LIMIT", "1MB")
	v.SetDefault("DEBUG", false)
}

// Load reads the configuration from the process environment.
func Load() Config {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	// AutomaticEnv only covers keys viper already knows about.
	for _, key := range []string{"GEMINI_API_KEY", "JWT_SECRET", "DEV_TOKEN_KEY", "LOG_FILE"} {
		_ = v.BindEnv(key)
	}

	return Config{
		Port:           v.GetString("PORT"),
		GeminiAPIKey:   strings.TrimSpace(v.GetString("GEMINI_API_KEY")),
		GeminiModel:    v.GetString("GEMINI_MODEL"),
		GeminiTimeout:  v.GetDuration("GEMINI_TIMEOUT"),
		JWTSecret:      v.GetString("JWT_SECRET"),
		DevTokenKey:    v.GetString("DEV_TOKEN_KEY"),
		DatabaseDriver: strings.ToLower(v.GetString("DATABASE_DRIVER")),
		DatabaseDSN:    v.GetString("DATABASE_DSN"),
		RateLimit:      v.GetFloat64("RATE_LIMIT"),
		BodyLimit:      v.GetString("BODY_LIMIT"),
		Debug:          v.GetBool("DEBUG"),
		LogFile:        v.GetString("LOG_FILE"),
	}
}

// ClientConfig holds the terminal client settings.
type ClientConfig struct {
	URL   string
	Token string

	// StreamBufferLimit caps the bytes the stream decoder holds while
	// waiting for a frame to complete. 0 disables the cap.
	StreamBufferLimit int
}

func LoadClient() ClientConfig {
	v := viper.New()
	v.SetDefault("MENTOR_URL", "http://localhost:8080")
	v.SetDefault("STREAM_BUFFER_LIMIT", DefaultStreamBufferLimit)
	v.AutomaticEnv()
	_ = v.BindEnv("MENTOR_TOKEN")

	return ClientConfig{
		URL:               strings.TrimRight(v.GetString("MENTOR_URL"), "/"),
		Token:             v.GetString("MENTOR_TOKEN"),
		StreamBufferLimit: v.GetInt("STREAM_BUFFER_LIMIT"),
	}
}
