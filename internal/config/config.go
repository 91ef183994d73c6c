package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port     string `yaml:"port"`
	LogLevel string `yaml:"log_level"`

	// Auth
	APIKey string `yaml:"api_key"`

	// Target navigator
	TargetURL string `yaml:"target_url"`
	RootTitle string `yaml:"root_title"`
	Scope     string `yaml:"scope"`
	DocPrefix string `yaml:"doc_prefix"`

	// Output
	OutputPath string `yaml:"output_path"`
	OutputDir  string `yaml:"output_dir"`

	// Browser
	Headless        bool          `yaml:"headless"`
	ChromePath      string        `yaml:"chrome_path"`
	NavTimeout      time.Duration `yaml:"nav_timeout"`
	SelectorTimeout time.Duration `yaml:"selector_timeout"`
	InitialSettle   time.Duration `yaml:"initial_settle"`
	ExpandSettle    time.Duration `yaml:"expand_settle"`
	ScrollFraction  float64       `yaml:"scroll_fraction"`

	// Collection
	SettleDelay        time.Duration `yaml:"settle_delay"`
	StabilityThreshold int           `yaml:"stability_threshold"`
	MaxCycles          int           `yaml:"max_cycles"`
	SweepAtBottom      bool          `yaml:"sweep_at_bottom"`
	ReplayViewport     int           `yaml:"replay_viewport"`

	// Worker pool
	WorkerCount  int `yaml:"worker_count"`
	MaxQueueSize int `yaml:"max_queue_size"`

	// Upload limits
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`

	// Job state
	JobTTL time.Duration `yaml:"job_ttl"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		Port:     "8090",
		LogLevel: "info",

		TargetURL: "https://developer.apple.com/documentation/swiftui",
		RootTitle: "SwiftUI",
		Scope:     "/swiftui",
		DocPrefix: "/documentation/",

		OutputPath: "output/swiftui-sidebar.json",
		OutputDir:  "output/jobs",

		Headless:        true,
		NavTimeout:      60 * time.Second,
		SelectorTimeout: 30 * time.Second,
		InitialSettle:   2 * time.Second,
		ExpandSettle:    300 * time.Millisecond,
		ScrollFraction:  0.8,

		SettleDelay:        500 * time.Millisecond,
		StabilityThreshold: 3,
		MaxCycles:          100,
		SweepAtBottom:      true,
		ReplayViewport:     30,

		WorkerCount:  2,
		MaxQueueSize: 100,

		MaxUploadBytes: 52428800, // 50MB

		JobTTL: 1 * time.Hour,
	}
}

// Load reads configuration from the environment on top of Defaults.
func Load() Config {
	return fromEnv(Defaults())
}

// LoadFile reads a YAML file on top of Defaults, then applies the
// environment, which wins over the file.
func LoadFile(path string) (Config, error) {
	base := Defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &base); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return fromEnv(base), nil
}

func fromEnv(base Config) Config {
	cfg := Config{
		Port:     envOr("PORT", base.Port),
		LogLevel: envOr("LOG_LEVEL", base.LogLevel),

		APIKey: envOr("DOCNAV_API_KEY", base.APIKey),

		TargetURL: envOr("TARGET_URL", base.TargetURL),
		RootTitle: envOr("ROOT_TITLE", base.RootTitle),
		Scope:     envOr("SCOPE", base.Scope),
		DocPrefix: envOr("DOC_PREFIX", base.DocPrefix),

		OutputPath: envOr("OUTPUT_PATH", base.OutputPath),
		OutputDir:  envOr("OUTPUT_DIR", base.OutputDir),

		Headless:        envBool("HEADLESS", base.Headless),
		ChromePath:      envOr("CHROME_PATH", base.ChromePath),
		NavTimeout:      envDuration("NAV_TIMEOUT", base.NavTimeout),
		SelectorTimeout: envDuration("SELECTOR_TIMEOUT", base.SelectorTimeout),
		InitialSettle:   envDuration("INITIAL_SETTLE", base.InitialSettle),
		ExpandSettle:    envDuration("EXPAND_SETTLE", base.ExpandSettle),
		ScrollFraction:  envFloat("SCROLL_FRACTION", base.ScrollFraction),

		SettleDelay:        envDuration("SETTLE_DELAY", base.SettleDelay),
		StabilityThreshold: envInt("STABILITY_THRESHOLD", base.StabilityThreshold),
		MaxCycles:          envInt("MAX_CYCLES", base.MaxCycles),
		SweepAtBottom:      envBool("SWEEP_AT_BOTTOM", base.SweepAtBottom),
		ReplayViewport:     envInt("REPLAY_VIEWPORT", base.ReplayViewport),

		WorkerCount:  envInt("WORKER_COUNT", base.WorkerCount),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", base.MaxQueueSize),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", base.MaxUploadBytes),

		JobTTL: envDuration("JOB_TTL", base.JobTTL),
	}

	def := Defaults()
	if cfg.ScrollFraction <= 0 || cfg.ScrollFraction > 1 {
		cfg.ScrollFraction = def.ScrollFraction
	}
	if cfg.SettleDelay < 0 {
		cfg.SettleDelay = 0
	}
	if cfg.StabilityThreshold <= 0 {
		cfg.StabilityThreshold = def.StabilityThreshold
	}
	if cfg.MaxCycles <= 0 {
		cfg.MaxCycles = def.MaxCycles
	}
	if cfg.ReplayViewport <= 0 {
		cfg.ReplayViewport = def.ReplayViewport
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = def.WorkerCount
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = def.MaxQueueSize
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = def.MaxUploadBytes
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = def.JobTTL
	}

	return cfg
}

// Validate checks the settings a collection run needs.
func (c Config) Validate() error {
	u, err := url.Parse(c.TargetURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("TARGET_URL must be an absolute http(s) URL, got %q", c.TargetURL)
	}
	if c.OutputPath == "" {
		return fmt.Errorf("OUTPUT_PATH is required")
	}
	return nil
}

// ValidateServer checks the settings the HTTP service needs on top of
// Validate.
func (c Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.APIKey == "" {
		return fmt.Errorf("DOCNAV_API_KEY is required")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("OUTPUT_DIR is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
