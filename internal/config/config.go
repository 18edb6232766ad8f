package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"
)

const configFileBase = "cooking_rota_config"

// Closure is a recurring day on which nobody cooks (team days, closing days)
type Closure struct {
	RRule string `yaml:"rrule" validate:"required"`
	Name  string `yaml:"name" validate:"required"`
}

// RedisConfig configures the shared plan lock; an empty Addr selects the in-process lock
type RedisConfig struct {
	Addr     string        `yaml:"addr,omitempty" validate:"omitempty,hostname_port"`
	Password string        `yaml:"password,omitempty"`
	DB       int           `yaml:"db,omitempty" validate:"min=0"`
	LockTTL  time.Duration `yaml:"lockTTL,omitempty" validate:"min=0"`
}

// HTTPConfig configures the serve command
type HTTPConfig struct {
	Addr string `yaml:"addr,omitempty"`
}

// Config represents the application configuration
type Config struct {
	DatabaseURL string      `yaml:"databaseURL" validate:"required"`
	Redis       RedisConfig `yaml:"redis,omitempty"`
	HTTP        HTTPConfig  `yaml:"http,omitempty"`
	PlanSheetID string      `yaml:"planSheetID,omitempty"`
	Closures    []Closure   `yaml:"closures,omitempty" validate:"dive"`
	// Timezone decides which calendar day is "today"; empty means the local zone
	Timezone string `yaml:"timezone,omitempty"`
}

const defaultHTTPAddr = ":8080"

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Load loads and validates the configuration for an environment.
// It looks for cooking_rota_config.<env>.yaml, then cooking_rota_config.yaml,
// in the current directory first and the user's home directory second.
func Load(env string) (*Config, error) {
	configPath, err := findConfigFile(env)
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path.
// DATABASE_URL, REDIS_ADDR, REDIS_PASSWORD and HTTP_ADDR override the file.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyEnvOverrides(&cfg)

	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = defaultHTTPAddr
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
}

// Validate validates the configuration struct, the closure rules and the timezone
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	for i, closure := range cfg.Closures {
		if _, err := rrule.StrToRRule(closure.RRule); err != nil {
			return fmt.Errorf("invalid rrule in closures[%d]: %w", i, err)
		}
	}

	if _, err := cfg.Location(); err != nil {
		return err
	}

	return nil
}

// Location returns the configured timezone
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// findConfigFile searches for the config file in the current directory and the home directory
func findConfigFile(env string) (string, error) {
	candidates := []string{configFileBase + ".yaml"}
	if env != "" {
		candidates = append([]string{configFileBase + "." + env + ".yaml"}, candidates...)
	}

	return findFile(candidates)
}

// findFile returns the first candidate present in the current directory, then in the home directory
func findFile(candidates []string) (string, error) {
	for _, name := range candidates {
		if _, err := os.Stat(name); err == nil {
			return name, nil
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	for _, name := range candidates {
		homePath := filepath.Join(homeDir, name)
		if _, err := os.Stat(homePath); err == nil {
			return homePath, nil
		}
	}

	return "", fmt.Errorf("none of %v found in current directory or home directory", candidates)
}
