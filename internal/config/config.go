package config

import (
	"fmt"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Config holds the entire application configuration. Fields are plain exported
// structs so each component receives only the section it needs; nothing reads
// configuration through globals.
type Config struct {
	Logger   LoggerConfig   `mapstructure:"logger" yaml:"logger"`
	Plane    PlaneConfig    `mapstructure:"plane" yaml:"plane"`
	Profile  ProfileConfig  `mapstructure:"profile" yaml:"profile"`
	Movement MovementConfig `mapstructure:"movement" yaml:"movement"`
	Timing   TimingConfig   `mapstructure:"timing" yaml:"timing"`
	Batch    BatchConfig    `mapstructure:"batch" yaml:"batch"`
	Paths    PathsConfig    `mapstructure:"paths" yaml:"paths"`
	Backend  BackendConfig  `mapstructure:"backend" yaml:"backend"`
	History  HistoryConfig  `mapstructure:"history" yaml:"history"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color names for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// PlaneConfig bounds the interaction plane all coordinates are clamped to.
type PlaneConfig struct {
	Width  int `mapstructure:"width" yaml:"width"`
	Height int `mapstructure:"height" yaml:"height"`
}

// ProfileConfig selects or describes the behavior persona. When Preset is set
// it wins; otherwise the explicit trait fields are used as given.
type ProfileConfig struct {
	Preset             string  `mapstructure:"preset" yaml:"preset"`
	ActivityLevel      string  `mapstructure:"activity_level" yaml:"activity_level"`
	TypingStyle        string  `mapstructure:"typing_style" yaml:"typing_style"`
	MistakeProneness   float64 `mapstructure:"mistake_proneness" yaml:"mistake_proneness"`
	HesitationTendency float64 `mapstructure:"hesitation_tendency" yaml:"hesitation_tendency"`
	MultitaskingLevel  float64 `mapstructure:"multitasking_level" yaml:"multitasking_level"`
	AttentionSpan      float64 `mapstructure:"attention_span" yaml:"attention_span"`
	FatigueFactor      float64 `mapstructure:"fatigue_factor" yaml:"fatigue_factor"`
	Consistency        float64 `mapstructure:"consistency" yaml:"consistency"`
}

// MovementConfig tunes pointer movement pacing and targeting.
type MovementConfig struct {
	// Speed scales the per-step delay of trajectory playback; 1.0 is normal,
	// larger is faster.
	Speed float64 `mapstructure:"speed" yaml:"speed"`
	// SafeMargin shrinks click regions by this many pixels per side before a
	// target point is drawn.
	SafeMargin int `mapstructure:"safe_margin" yaml:"safe_margin"`
	// MaxOffset bounds the random jitter applied to targeted points.
	MaxOffset int `mapstructure:"max_offset" yaml:"max_offset"`
}

// TimingConfig bounds the base delays the behavior generator samples from.
type TimingConfig struct {
	ClickDelayMin  time.Duration `mapstructure:"click_delay_min" yaml:"click_delay_min"`
	ClickDelayMax  time.Duration `mapstructure:"click_delay_max" yaml:"click_delay_max"`
	TypingDelayMin time.Duration `mapstructure:"typing_delay_min" yaml:"typing_delay_min"`
	TypingDelayMax time.Duration `mapstructure:"typing_delay_max" yaml:"typing_delay_max"`
	RetryAttempts  int           `mapstructure:"retry_attempts" yaml:"retry_attempts"`
}

// BatchConfig defines the numbered range a batch run covers.
type BatchConfig struct {
	StartNumber int `mapstructure:"start_number" yaml:"start_number"`
	Total       int `mapstructure:"total" yaml:"total"`
}

// PathsConfig names the input definition files.
type PathsConfig struct {
	Areas     string `mapstructure:"areas" yaml:"areas"`
	Sequences string `mapstructure:"sequences" yaml:"sequences"`
}

// BackendConfig selects and tunes the input backend implementation.
type BackendConfig struct {
	// Kind is "logsink" (dry run, default) or "cdp".
	Kind string    `mapstructure:"kind" yaml:"kind"`
	CDP  CDPConfig `mapstructure:"cdp" yaml:"cdp"`
}

// CDPConfig holds settings for the Chrome DevTools Protocol backend.
type CDPConfig struct {
	Headless bool `mapstructure:"headless" yaml:"headless"`
	// EventsPerSecond caps the dispatch rate of input events; 0 disables the
	// throttle.
	EventsPerSecond float64 `mapstructure:"events_per_second" yaml:"events_per_second"`
	// StartURL is navigated to before the first interaction.
	StartURL string `mapstructure:"start_url" yaml:"start_url"`
}

// HistoryConfig enables batch run persistence when DSN is non-empty.
type HistoryConfig struct {
	DSN string `mapstructure:"dsn" yaml:"dsn"`
}

// NewDefaultConfig creates a configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// Cannot happen with the defaults above.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for all configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "ghosthand")
	v.SetDefault("logger.log_file", "ghosthand.log")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	// -- Plane --
	v.SetDefault("plane.width", 1920)
	v.SetDefault("plane.height", 1080)

	// -- Profile --
	v.SetDefault("profile.preset", "casual")

	// -- Movement --
	v.SetDefault("movement.speed", 1.0)
	v.SetDefault("movement.safe_margin", 5)
	v.SetDefault("movement.max_offset", 5)

	// -- Timing --
	v.SetDefault("timing.click_delay_min", 100*time.Millisecond)
	v.SetDefault("timing.click_delay_max", 500*time.Millisecond)
	v.SetDefault("timing.typing_delay_min", 50*time.Millisecond)
	v.SetDefault("timing.typing_delay_max", 150*time.Millisecond)
	v.SetDefault("timing.retry_attempts", 3)

	// -- Batch --
	v.SetDefault("batch.start_number", 1)
	v.SetDefault("batch.total", 1)

	// -- Paths --
	v.SetDefault("paths.areas", "areas.json")
	v.SetDefault("paths.sequences", "sequences.json")

	// -- Backend --
	v.SetDefault("backend.kind", "logsink")
	v.SetDefault("backend.cdp.headless", true)
	v.SetDefault("backend.cdp.events_per_second", 0.0)

	// -- History --
	v.SetDefault("history.dsn", "")
}

// NewConfigFromViper creates a validated configuration instance from a viper
// object. Configured paths get ~ expanded.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	for _, p := range []*string{&cfg.Paths.Areas, &cfg.Paths.Sequences, &cfg.Logger.LogFile} {
		if *p == "" {
			continue
		}
		expanded, err := homedir.Expand(*p)
		if err != nil {
			return nil, fmt.Errorf("cannot expand path %q: %w", *p, err)
		}
		*p = expanded
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if c.Plane.Width <= 0 || c.Plane.Height <= 0 {
		return fmt.Errorf("plane dimensions must be positive, got %dx%d", c.Plane.Width, c.Plane.Height)
	}
	if c.Movement.Speed <= 0 {
		return fmt.Errorf("movement.speed must be positive, got %v", c.Movement.Speed)
	}
	if c.Movement.SafeMargin < 0 || c.Movement.MaxOffset < 0 {
		return fmt.Errorf("movement margins must not be negative")
	}
	if c.Timing.ClickDelayMin < 0 || c.Timing.ClickDelayMax < c.Timing.ClickDelayMin {
		return fmt.Errorf("timing click delay bounds are invalid: [%v, %v]", c.Timing.ClickDelayMin, c.Timing.ClickDelayMax)
	}
	if c.Timing.TypingDelayMin < 0 || c.Timing.TypingDelayMax < c.Timing.TypingDelayMin {
		return fmt.Errorf("timing typing delay bounds are invalid: [%v, %v]", c.Timing.TypingDelayMin, c.Timing.TypingDelayMax)
	}
	if c.Timing.RetryAttempts < 1 {
		return fmt.Errorf("timing.retry_attempts must be at least 1, got %d", c.Timing.RetryAttempts)
	}
	if c.Batch.StartNumber < 0 || c.Batch.Total < 1 {
		return fmt.Errorf("batch range is invalid: start %d, total %d", c.Batch.StartNumber, c.Batch.Total)
	}
	switch c.Backend.Kind {
	case "logsink", "cdp":
	default:
		return fmt.Errorf("backend.kind must be logsink or cdp, got %q", c.Backend.Kind)
	}
	if c.Backend.CDP.EventsPerSecond < 0 {
		return fmt.Errorf("backend.cdp.events_per_second must not be negative")
	}
	return nil
}
