// Package config loads service configuration from defaults, an optional YAML
// file, a .env file and INVITECARD_* environment variables, in that order.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration values.
type Config struct {
	Port            string   `yaml:"port"`
	Environment     string   `yaml:"environment"`
	LogLevel        string   `yaml:"log_level"`
	UploadDir       string   `yaml:"upload_dir"`
	OutputDir       string   `yaml:"output_dir"`
	MaxUploadBytes  int64    `yaml:"max_upload_bytes"`
	FontPath        string   `yaml:"font_path"`
	TitleFontSize   float64  `yaml:"title_font_size"`
	BodyFontSize    float64  `yaml:"body_font_size"`
	QRSize          int      `yaml:"qr_size"`
	QRRecoveryLevel string   `yaml:"qr_recovery_level"`
	KeepArtifacts   bool     `yaml:"keep_artifacts"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
}

// Duration is a time.Duration that unmarshals from strings like "10s".
type Duration struct {
	time.Duration
}

// UnmarshalYAML implements the yaml.Unmarshaler interface for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

// MarshalYAML implements the yaml.Marshaler interface for Duration.
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

// Defaults returns a Config populated with the stock values.
func Defaults() *Config {
	return &Config{
		Port:            "8080",
		Environment:     "development",
		LogLevel:        "info",
		UploadDir:       "uploads",
		OutputDir:       "static",
		MaxUploadBytes:  16 << 20,
		FontPath:        "arial.ttf",
		TitleFontSize:   50,
		BodyFontSize:    30,
		QRSize:          256,
		QRRecoveryLevel: "medium",
		ShutdownTimeout: Duration{10 * time.Second},
	}
}

// Load builds the configuration. A missing file at path is not an error;
// an empty path skips the file entirely. The .env file in the working
// directory is read unless GO_ENV is "production".
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if os.Getenv("GO_ENV") != "production" {
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			slog.Warn("could not load .env file", "error", err)
		}
	}

	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies INVITECARD_* overrides (and the conventional
// PORT and GO_ENV) to cfg. Unparseable numbers are ignored.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("GO_ENV"); v != "" {
		cfg.Environment = v
	}
	str := map[string]*string{
		"INVITECARD_PORT":              &cfg.Port,
		"INVITECARD_ENVIRONMENT":       &cfg.Environment,
		"INVITECARD_LOG_LEVEL":         &cfg.LogLevel,
		"INVITECARD_UPLOAD_DIR":        &cfg.UploadDir,
		"INVITECARD_OUTPUT_DIR":        &cfg.OutputDir,
		"INVITECARD_FONT_PATH":         &cfg.FontPath,
		"INVITECARD_QR_RECOVERY_LEVEL": &cfg.QRRecoveryLevel,
	}
	for k, dst := range str {
		if v := os.Getenv(k); v != "" {
			*dst = v
		}
	}
	if v := os.Getenv("INVITECARD_MAX_UPLOAD_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.MaxUploadBytes = n
		}
	}
	if v := os.Getenv("INVITECARD_TITLE_FONT_SIZE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.TitleFontSize = f
		}
	}
	if v := os.Getenv("INVITECARD_BODY_FONT_SIZE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.BodyFontSize = f
		}
	}
	if v := os.Getenv("INVITECARD_QR_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.QRSize = n
		}
	}
	if v := os.Getenv("INVITECARD_SHUTDOWN_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.ShutdownTimeout = Duration{d}
		}
	}
	if v := os.Getenv("INVITECARD_KEEP_ARTIFACTS"); v != "" {
		switch strings.ToLower(v) {
		case "true", "1", "yes":
			cfg.KeepArtifacts = true
		case "false", "0", "no":
			cfg.KeepArtifacts = false
		}
	}
}

// Validate rejects values the service cannot run with.
func (c *Config) Validate() error {
	if c.UploadDir == "" || c.OutputDir == "" {
		return fmt.Errorf("config: upload_dir and output_dir must be set")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("config: max_upload_bytes must be positive, got %d", c.MaxUploadBytes)
	}
	if c.QRSize <= 0 {
		return fmt.Errorf("config: qr_size must be positive, got %d", c.QRSize)
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	if strings.Contains(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}
