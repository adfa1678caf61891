package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration: a mapping of ATS provider family to
// listing-page URLs, plus the politeness/retry/concurrency knobs. Read
// once at run start and treated as immutable afterwards.
type Config struct {
	App        AppConfig
	Targets    map[string][]string
	Politeness PolitenessConfig
	Fetch      FetchConfig
	Workers    int
}

type AppConfig struct {
	Addr string `yaml:"addr"`
}

// PolitenessConfig controls the per-origin inter-request gap — the only
// intentional delay in the system.
type PolitenessConfig struct {
	MinInterval time.Duration
}

type FetchConfig struct {
	Timeout       time.Duration
	MaxAttempts   int
	BaseDelay     time.Duration
	UserAgent     string
	Render        bool // enable the headless browser for rendered providers
	RenderTimeout time.Duration
}

// rawConfig mirrors the YAML shape (snake_case, durations as strings).
type rawConfig struct {
	App     AppConfig           `yaml:"app"`
	Targets map[string][]string `yaml:"targets"`

	Politeness struct {
		MinInterval string `yaml:"min_interval"`
	} `yaml:"politeness"`

	Fetch struct {
		Timeout       string `yaml:"timeout"`
		MaxAttempts   int    `yaml:"max_attempts"`
		BaseDelay     string `yaml:"base_delay"`
		UserAgent     string `yaml:"user_agent"`
		Render        *bool  `yaml:"render"`
		RenderTimeout string `yaml:"render_timeout"`
	} `yaml:"fetch"`

	Workers int `yaml:"workers"`
}

// Load reads, parses and validates the YAML config at path.
func Load(path string) (Config, error) {
	var cfg Config

	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	var raw rawConfig
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	cfg.App = raw.App
	if cfg.App.Addr == "" {
		cfg.App.Addr = "127.0.0.1:38491"
	}
	cfg.Targets = raw.Targets

	cfg.Politeness.MinInterval, err = duration(raw.Politeness.MinInterval, 2*time.Second)
	if err != nil {
		return cfg, fmt.Errorf("parse politeness.min_interval: %w", err)
	}

	cfg.Fetch.Timeout, err = duration(raw.Fetch.Timeout, 20*time.Second)
	if err != nil {
		return cfg, fmt.Errorf("parse fetch.timeout: %w", err)
	}
	cfg.Fetch.BaseDelay, err = duration(raw.Fetch.BaseDelay, time.Second)
	if err != nil {
		return cfg, fmt.Errorf("parse fetch.base_delay: %w", err)
	}
	cfg.Fetch.RenderTimeout, err = duration(raw.Fetch.RenderTimeout, 30*time.Second)
	if err != nil {
		return cfg, fmt.Errorf("parse fetch.render_timeout: %w", err)
	}

	cfg.Fetch.MaxAttempts = raw.Fetch.MaxAttempts
	if cfg.Fetch.MaxAttempts <= 0 {
		cfg.Fetch.MaxAttempts = 3
	}
	cfg.Fetch.UserAgent = raw.Fetch.UserAgent
	cfg.Fetch.Render = true
	if raw.Fetch.Render != nil {
		cfg.Fetch.Render = *raw.Fetch.Render
	}

	cfg.Workers = raw.Workers
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}

	if err := validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func duration(s string, def time.Duration) (time.Duration, error) {
	if s == "" {
		return def, nil
	}
	return time.ParseDuration(s)
}

func validate(cfg Config) error {
	if len(cfg.Targets) == 0 {
		return fmt.Errorf("no targets configured")
	}
	for provider, urls := range cfg.Targets {
		if provider == "" {
			return fmt.Errorf("empty provider key in targets")
		}
		for _, u := range urls {
			if u == "" {
				return fmt.Errorf("empty url under targets.%s", provider)
			}
		}
	}
	if cfg.Politeness.MinInterval < 0 {
		return fmt.Errorf("politeness.min_interval must not be negative")
	}
	return nil
}
