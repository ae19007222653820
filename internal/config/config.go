package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"

	"runcoach/internal/analysis"
)

// EnvPrefix prefixes every environment override, e.g. RUNCOACH_FIT_FILES_PATH.
const EnvPrefix = "RUNCOACH_"

// Config represents the application configuration
type Config struct {
	FitFilesPath string         `json:"fit_files_path" env:"FIT_FILES_PATH"`
	WorkoutsPath string         `json:"workouts_path" env:"WORKOUTS_PATH"`
	Server       ServerConfig   `json:"server" envPrefix:"SERVER_"`
	Connect      ConnectConfig  `json:"connect" envPrefix:"CONNECT_"`
	Analysis     AnalysisConfig `json:"analysis" envPrefix:"ANALYSIS_"`
	Display      DisplayConfig  `json:"display" envPrefix:"DISPLAY_"`
	Log          LogConfig      `json:"log" envPrefix:"LOG_"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Addr string `json:"addr" env:"ADDR"`
}

// ConnectConfig holds credentials for the workout calendar platform.
// Leaving ClientID empty disables the platform; workouts then come from WorkoutsPath.
type ConnectConfig struct {
	ClientID     string `json:"client_id" env:"CLIENT_ID"`
	ClientSecret string `json:"client_secret" env:"CLIENT_SECRET"`
	BaseURL      string `json:"base_url" env:"BASE_URL"`
	AuthURL      string `json:"auth_url" env:"AUTH_URL"`
	TokenURL     string `json:"token_url" env:"TOKEN_URL"`
}

// Enabled reports whether platform credentials are configured.
func (c ConnectConfig) Enabled() bool {
	return c.ClientID != "" && c.ClientID != exampleClientID
}

// AnalysisConfig holds matcher and fatigue tunables
type AnalysisConfig struct {
	DistanceFill   float64 `json:"distance_fill" env:"DISTANCE_FILL"`
	DurationFill   float64 `json:"duration_fill" env:"DURATION_FILL"`
	PartialBand    float64 `json:"partial_band" env:"PARTIAL_BAND"`
	FatigueEpsilon float64 `json:"fatigue_epsilon" env:"FATIGUE_EPSILON"`
}

// Options converts the tunables into analysis options.
func (a AnalysisConfig) Options() analysis.Options {
	opts := analysis.DefaultOptions()
	opts.Match.DistanceFill = a.DistanceFill
	opts.Match.DurationFill = a.DurationFill
	opts.Match.PartialBand = a.PartialBand
	opts.FatigueEpsilon = a.FatigueEpsilon
	return opts
}

// DisplayConfig holds display preferences
type DisplayConfig struct {
	DistanceUnit string `json:"distance_unit" env:"DISTANCE_UNIT"`
	PaceUnit     string `json:"pace_unit" env:"PACE_UNIT"`
}

// LogConfig holds logging preferences
type LogConfig struct {
	Level  string `json:"level" env:"LEVEL"`
	Format string `json:"format" env:"FORMAT"`
}

// ErrNoConfig is returned when the config file doesn't exist
var ErrNoConfig = errors.New("config file not found")

const (
	exampleClientID     = "YOUR_CLIENT_ID"
	exampleClientSecret = "YOUR_CLIENT_SECRET"
)

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	match := analysis.DefaultMatchOptions()
	return Config{
		FitFilesPath: "~/.runcoach/fit-files",
		WorkoutsPath: "~/.runcoach/workouts",
		Server: ServerConfig{
			Addr: ":8080",
		},
		Analysis: AnalysisConfig{
			DistanceFill:   match.DistanceFill,
			DurationFill:   match.DurationFill,
			PartialBand:    match.PartialBand,
			FatigueEpsilon: analysis.DefaultFatigueEpsilon,
		},
		Display: DisplayConfig{
			DistanceUnit: "km",
			PaceUnit:     "min/km",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the configuration from ~/.runcoach/config.json and applies
// RUNCOACH_* environment overrides.
func Load() (*Config, error) {
	path, err := getConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile reads the configuration from path and applies environment overrides.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, ErrNoConfig
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	cfg.applyDefaults()

	if cfg.FitFilesPath, err = expandHome(cfg.FitFilesPath); err != nil {
		return nil, err
	}
	if cfg.WorkoutsPath, err = expandHome(cfg.WorkoutsPath); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyDefaults fills missing values
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.FitFilesPath == "" {
		c.FitFilesPath = defaults.FitFilesPath
	}
	if c.WorkoutsPath == "" {
		c.WorkoutsPath = defaults.WorkoutsPath
	}
	if c.Server.Addr == "" {
		c.Server.Addr = defaults.Server.Addr
	}
	if c.Analysis.DistanceFill == 0 {
		c.Analysis.DistanceFill = defaults.Analysis.DistanceFill
	}
	if c.Analysis.DurationFill == 0 {
		c.Analysis.DurationFill = defaults.Analysis.DurationFill
	}
	if c.Analysis.PartialBand == 0 {
		c.Analysis.PartialBand = defaults.Analysis.PartialBand
	}
	if c.Analysis.FatigueEpsilon == 0 {
		c.Analysis.FatigueEpsilon = defaults.Analysis.FatigueEpsilon
	}
	if c.Display.DistanceUnit == "" {
		c.Display.DistanceUnit = defaults.Display.DistanceUnit
	}
	if c.Display.PaceUnit == "" {
		c.Display.PaceUnit = defaults.Display.PaceUnit
	}
	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = defaults.Log.Format
	}
}

// Save writes the configuration to ~/.runcoach/config.json
func Save(cfg *Config) error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}
	return SaveFile(path, cfg)
}

// SaveFile writes the configuration to path.
func SaveFile(path string, cfg *Config) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// CreateExample creates an example config file if none exists
func CreateExample() error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}

	// Check if config already exists
	if _, err := os.Stat(path); err == nil {
		return nil // Config exists, don't overwrite
	}

	example := DefaultConfig()
	example.Connect = ConnectConfig{
		ClientID:     exampleClientID,
		ClientSecret: exampleClientSecret,
		BaseURL:      "https://connect.example.com/api",
		AuthURL:      "https://connect.example.com/oauth/authorize",
		TokenURL:     "https://connect.example.com/oauth/token",
	}

	return Save(&example)
}

// Validate checks if the config has required fields
func (c *Config) Validate() error {
	if c.FitFilesPath == "" {
		return errors.New("fit_files_path is required")
	}

	if c.Connect.Enabled() {
		if c.Connect.ClientSecret == "" || c.Connect.ClientSecret == exampleClientSecret {
			return errors.New("connect.client_secret is required when connect.client_id is set")
		}
		if c.Connect.BaseURL == "" || c.Connect.AuthURL == "" || c.Connect.TokenURL == "" {
			return errors.New("connect.base_url, connect.auth_url and connect.token_url are required when connect.client_id is set")
		}
	}

	// Validate display units
	if c.Display.DistanceUnit != "" && c.Display.DistanceUnit != "km" && c.Display.DistanceUnit != "mi" {
		return fmt.Errorf("display.distance_unit must be \"km\" or \"mi\", got %q", c.Display.DistanceUnit)
	}
	if c.Display.PaceUnit != "" && c.Display.PaceUnit != "min/km" && c.Display.PaceUnit != "min/mi" {
		return fmt.Errorf("display.pace_unit must be \"min/km\" or \"min/mi\", got %q", c.Display.PaceUnit)
	}

	if err := validateFraction("analysis.distance_fill", c.Analysis.DistanceFill); err != nil {
		return err
	}
	if err := validateFraction("analysis.duration_fill", c.Analysis.DurationFill); err != nil {
		return err
	}
	if c.Analysis.PartialBand < 0 {
		return fmt.Errorf("analysis.partial_band must not be negative, got %v", c.Analysis.PartialBand)
	}
	if c.Analysis.FatigueEpsilon < 0 {
		return fmt.Errorf("analysis.fatigue_epsilon must not be negative, got %v", c.Analysis.FatigueEpsilon)
	}

	if c.Log.Format != "" && c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("log.format must be \"text\" or \"json\", got %q", c.Log.Format)
	}

	return nil
}

func validateFraction(name string, v float64) error {
	if v <= 0 || v > 1 {
		return fmt.Errorf("%s must be in (0, 1], got %v", name, v)
	}
	return nil
}

// expandHome replaces a leading ~ with the user's home directory
func expandHome(path string) (string, error) {
	if path != "~" && !hasHomePrefix(path) {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}

func hasHomePrefix(path string) bool {
	return len(path) >= 2 && path[0] == '~' && (path[1] == '/' || path[1] == filepath.Separator)
}

// getConfigPath returns the path to the config file
func getConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// GetConfigDir returns the path to the config directory
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".runcoach"), nil
}
