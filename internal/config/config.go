// Package config provides Viper-based configuration loading for the arena runner.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
	// Transitions logs every agent state transition at info level when true.
	Transitions bool `mapstructure:"transitions"`
}

// ArenaConfig holds the headless duel settings.
type ArenaConfig struct {
	// Count is the number of arenas run concurrently.
	Count int `mapstructure:"count"`
	// Step is the simulated time advanced by each tick.
	Step time.Duration `mapstructure:"step"`
	// TickInterval is the wall-clock period between ticks; zero runs unpaced.
	TickInterval time.Duration `mapstructure:"tick_interval"`
	// MaxDuration is the simulated length after which a duel is called a draw.
	MaxDuration time.Duration `mapstructure:"max_duration"`
	// Width and Height bound the arena floor.
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`
	// CellSize is the broad-phase cell size of the arena space.
	CellSize int `mapstructure:"cell_size"`
	// Spacing is the distance between the two fighters at the start.
	Spacing float64 `mapstructure:"spacing"`
	// Seed seeds the arena randomness; zero uses crypto randomness.
	Seed uint64 `mapstructure:"seed"`
	// Fighters names the two profile IDs that duel.
	Fighters []string `mapstructure:"fighters"`
}

// ContentConfig locates the profile and script content.
type ContentConfig struct {
	// ProfilesDir holds the profile YAML files.
	ProfilesDir string `mapstructure:"profiles_dir"`
	// ScriptsDir is the root that profile script directories are relative to.
	ScriptsDir string `mapstructure:"scripts_dir"`
	// InstructionLimit caps the Lua instructions of one hook call; zero is unlimited.
	InstructionLimit int `mapstructure:"instruction_limit"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Arena   ArenaConfig   `mapstructure:"arena"`
	Content ContentConfig `mapstructure:"content"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateArena(c.Arena); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateContent(c.Content); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateArena(a ArenaConfig) error {
	var errs []string
	if a.Count < 1 {
		errs = append(errs, fmt.Sprintf("arena.count must be >= 1, got %d", a.Count))
	}
	if a.Step <= 0 {
		errs = append(errs, "arena.step must be positive")
	}
	if a.TickInterval < 0 {
		errs = append(errs, "arena.tick_interval must not be negative")
	}
	if a.MaxDuration < a.Step {
		errs = append(errs, "arena.max_duration must be at least one step")
	}
	if a.Width < 1 || a.Height < 1 {
		errs = append(errs, fmt.Sprintf("arena.width and arena.height must be >= 1, got %dx%d", a.Width, a.Height))
	}
	if a.CellSize < 1 {
		errs = append(errs, fmt.Sprintf("arena.cell_size must be >= 1, got %d", a.CellSize))
	}
	if a.Spacing <= 0 {
		errs = append(errs, "arena.spacing must be positive")
	} else if a.Spacing >= float64(a.Width) {
		errs = append(errs, "arena.spacing must be less than arena.width")
	}
	if len(a.Fighters) != 2 {
		errs = append(errs, fmt.Sprintf("arena.fighters must name exactly 2 profiles, got %d", len(a.Fighters)))
	}
	for i, f := range a.Fighters {
		if f == "" {
			errs = append(errs, fmt.Sprintf("arena.fighters[%d] must not be empty", i))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateContent(c ContentConfig) error {
	var errs []string
	if c.ProfilesDir == "" {
		errs = append(errs, "content.profiles_dir must not be empty")
	}
	if c.InstructionLimit < 0 {
		errs = append(errs, fmt.Sprintf("content.instruction_limit must be >= 0, got %d", c.InstructionLimit))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// Open builds a Viper instance for the file at path with defaults and
// environment overrides applied, and loads the Config from it.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns the Viper instance and a valid Config, or a non-nil error.
func Open(path string) (*viper.Viper, Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with DUELIST_ prefix
	v.SetEnvPrefix("DUELIST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, Config{}, fmt.Errorf("reading config file: %w", err)
	}
	cfg, err := LoadFromViper(v)
	if err != nil {
		return nil, Config{}, err
	}
	return v, cfg, nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	_, cfg, err := Open(path)
	return cfg, err
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Watch re-reads the configuration whenever the backing file changes and
// passes the result, or the validation error, to fn.
//
// Precondition: v must come from Open; fn must not be nil.
func Watch(v *viper.Viper, fn func(Config, error)) {
	if v == nil {
		panic("config.Watch: viper must not be nil")
	}
	if fn == nil {
		panic("config.Watch: fn must not be nil")
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		fn(LoadFromViper(v))
	})
	v.WatchConfig()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.transitions", false)

	v.SetDefault("arena.count", 1)
	v.SetDefault("arena.step", "50ms")
	v.SetDefault("arena.tick_interval", "0s")
	v.SetDefault("arena.max_duration", "2m")
	v.SetDefault("arena.width", 40)
	v.SetDefault("arena.height", 40)
	v.SetDefault("arena.cell_size", 2)
	v.SetDefault("arena.spacing", 12.0)
	v.SetDefault("arena.seed", 0)

	v.SetDefault("content.profiles_dir", "content/profiles")
	v.SetDefault("content.scripts_dir", "content/scripts")
	v.SetDefault("content.instruction_limit", 100000)
}
