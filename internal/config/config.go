package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port            int           `envconfig:"PORT" default:"8080"`
	JWTSecret       string        `envconfig:"JWT_SECRET" default:"dev-secret-change-in-production"`
	APIKey          string        `envconfig:"API_KEY" default:"dev-api-key"`
	AuthRequired    bool          `envconfig:"AUTH_REQUIRED" default:"false"`
	AllowedOrigins  string        `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`
	ExportDelay     time.Duration `envconfig:"EXPORT_DELAY" default:"30ms"`
	MaxConcurrency  int           `envconfig:"MAX_CONCURRENCY" default:"4"`
	GradientWidth   int           `envconfig:"GRADIENT_WIDTH" default:"400"`
	GradientHeight  int           `envconfig:"GRADIENT_HEIGHT" default:"200"`
	GradientMode    string        `envconfig:"GRADIENT_MODE" default:"local"`
	ClassMode       bool          `envconfig:"CLASS_MODE" default:"false"`
	MaxDocumentSize int64         `envconfig:"MAX_DOCUMENT_SIZE" default:"10485760"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
}

// Gradient modes.
const (
	GradientLocal  = "local"
	GradientRemote = "remote"
)

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.GradientMode != GradientLocal && c.GradientMode != GradientRemote {
		return fmt.Errorf("GRADIENT_MODE must be %q or %q, got %q", GradientLocal, GradientRemote, c.GradientMode)
	}
	if c.MaxConcurrency < 1 {
		return fmt.Errorf("MAX_CONCURRENCY must be at least 1, got %d", c.MaxConcurrency)
	}
	if c.GradientWidth < 1 || c.GradientHeight < 1 {
		return fmt.Errorf("gradient size must be positive, got %dx%d", c.GradientWidth, c.GradientHeight)
	}
	return nil
}

// Origins splits AllowedOrigins into websocket origin patterns. Scheme
// prefixes are dropped since patterns match against the host.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		o = strings.TrimSpace(o)
		o = strings.TrimPrefix(o, "http://")
		o = strings.TrimPrefix(o, "https://")
		if o != "" {
			out = append(out, o)
		}
	}
	return out
}

// Level maps LogLevel onto a slog level; unknown names mean info.
func (c *Config) Level() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}
