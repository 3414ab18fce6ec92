// Package config loads service settings from the environment and engine
// parameters from an optional YAML file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the service configuration.
type Config struct {
	Port       string
	DBPath     string
	JWTSecret  string
	TokenTTL   time.Duration
	EnginePath string
	Engine     Engine
}

// engineFile is the on-disk shape of ENGINE_CONFIG.
type engineFile struct {
	DefaultCurrency string         `yaml:"default_currency"`
	Categories      []string       `yaml:"categories,omitempty"`
	Currencies      []string       `yaml:"currencies,omitempty"`
	Ranges          map[string]int `yaml:"ranges,omitempty"`
	Timezone        string         `yaml:"timezone,omitempty"`
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:       getEnv("PORT", "8080"),
		DBPath:     getEnv("DB_PATH", "./data/spendboard.db"),
		JWTSecret:  getEnv("JWT_SECRET", ""),
		TokenTTL:   getEnvDuration("TOKEN_TTL", 24*time.Hour),
		EnginePath: getEnv("ENGINE_CONFIG", ""),
		Engine:     DefaultEngine(),
	}

	if cur := os.Getenv("DEFAULT_CURRENCY"); cur != "" {
		cfg.Engine.DefaultCurrency = strings.ToUpper(cur)
	}

	if cfg.EnginePath != "" {
		eng, err := LoadEngine(cfg.EnginePath, cfg.Engine)
		if err != nil {
			return nil, err
		}
		cfg.Engine = eng
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}
	if c.DBPath == "" {
		problems = append(problems, "DB_PATH must not be empty")
	}
	if len(c.Engine.DefaultCurrency) != 3 {
		problems = append(problems, fmt.Sprintf("invalid default currency '%s': must be a 3-letter code", c.Engine.DefaultCurrency))
	}
	if len(c.Engine.Categories) == 0 {
		problems = append(problems, "at least one category is required")
	}
	for key, days := range c.Engine.Ranges {
		if days < 0 {
			problems = append(problems, fmt.Sprintf("range %s: negative lookback %d", key, days))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(problems, "; "))
	}
	return nil
}

// LoadEngine overlays the YAML file at path onto base.
func LoadEngine(path string, base Engine) (Engine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("reading engine config: %w", err)
	}
	return ParseEngine(data, base)
}

// ParseEngine overlays YAML engine settings onto base. Fields absent from
// the document keep their base values.
func ParseEngine(data []byte, base Engine) (Engine, error) {
	var f engineFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return base, fmt.Errorf("parsing engine config: %w", err)
	}

	eng := base
	if f.DefaultCurrency != "" {
		eng.DefaultCurrency = strings.ToUpper(f.DefaultCurrency)
	}
	if len(f.Categories) > 0 {
		eng.Categories = withMiscellaneous(f.Categories)
	}
	if len(f.Currencies) > 0 {
		eng.Currencies = f.Currencies
	}
	if len(f.Ranges) > 0 {
		eng.Ranges = f.Ranges
	}
	if f.Timezone != "" {
		loc, err := time.LoadLocation(f.Timezone)
		if err != nil {
			return base, fmt.Errorf("loading timezone %q: %w", f.Timezone, err)
		}
		eng.Location = loc
	}
	return eng, nil
}

// withMiscellaneous appends the fallback category when the list lacks it.
func withMiscellaneous(categories []string) []string {
	for _, c := range categories {
		if FoldKey(c) == FoldKey(Miscellaneous) {
			return categories
		}
	}
	out := make([]string, 0, len(categories)+1)
	out = append(out, categories...)
	return append(out, Miscellaneous)
}
