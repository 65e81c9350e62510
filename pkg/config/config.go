package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the full gateway configuration
type Config struct {
	ListenAddr string `yaml:"listenAddr"`
	DataDir    string `yaml:"dataDir"`

	Log LogConfig `yaml:"log"`

	// AuthTokens are the bearer tokens accepted at websocket handshake.
	// Each token maps to a principal (user id).
	AuthTokens map[string]string `yaml:"authTokens"`

	Jobs JobsConfig `yaml:"jobs"`

	// Dependencies are the downstream systems probed by the health
	// aggregator. A failed required dependency makes the gateway unhealthy.
	Dependencies []DependencyConfig `yaml:"dependencies"`

	// Services are the monitored services sampled by the telemetry
	// collector and the health prober.
	Services []ServiceConfig `yaml:"services"`

	// LogDir points the log summarizer at a directory of *.log files.
	// Empty disables the log summary job.
	LogDir string `yaml:"logDir"`

	Automation AutomationConfig `yaml:"automation"`
}

// LogConfig controls log output
type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// JobsConfig holds the cadence for each scheduled job
type JobsConfig struct {
	Telemetry           time.Duration `yaml:"telemetry"`
	AlertSweep          time.Duration `yaml:"alertSweep"`
	HealthProbe         time.Duration `yaml:"healthProbe"`
	PerformanceAnalysis time.Duration `yaml:"performanceAnalysis"`
	LogSummary          time.Duration `yaml:"logSummary"`
	SecurityScan        time.Duration `yaml:"securityScan"`
}

// DependencyConfig describes one health-checked dependency
type DependencyConfig struct {
	Name     string        `yaml:"name"`
	Type     string        `yaml:"type"` // "http" or "tcp"
	Address  string        `yaml:"address"`
	Required bool          `yaml:"required"`
	Timeout  time.Duration `yaml:"timeout"`
}

// ServiceConfig describes one monitored service
type ServiceConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	HealthURL   string `yaml:"healthUrl"`
}

// AutomationConfig holds the automation collaborator endpoints
type AutomationConfig struct {
	DeployURL string        `yaml:"deployUrl"`
	ScaleURL  string        `yaml:"scaleUrl"`
	Timeout   time.Duration `yaml:"timeout"`
}

// Default returns a Config with sensible defaults
func Default() *Config {
	return &Config{
		ListenAddr: "127.0.0.1:8080",
		DataDir:    "./lookout-data",
		Log: LogConfig{
			Level: "info",
		},
		Jobs: JobsConfig{
			Telemetry:           30 * time.Second,
			AlertSweep:          60 * time.Second,
			HealthProbe:         60 * time.Second,
			PerformanceAnalysis: 5 * time.Minute,
			LogSummary:          10 * time.Minute,
			SecurityScan:        time.Hour,
		},
		Automation: AutomationConfig{
			Timeout: 30 * time.Second,
		},
	}
}

// Load reads a YAML config file, applying defaults for missing values
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration for obvious mistakes
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("listenAddr is required")
	}
	if c.DataDir == "" {
		return fmt.Errorf("dataDir is required")
	}

	for _, dep := range c.Dependencies {
		if dep.Name == "" {
			return fmt.Errorf("dependency name is required")
		}
		if dep.Type != "http" && dep.Type != "tcp" {
			return fmt.Errorf("dependency %s: type must be \"http\" or \"tcp\"", dep.Name)
		}
		if dep.Address == "" {
			return fmt.Errorf("dependency %s: address is required", dep.Name)
		}
	}

	cadences := map[string]time.Duration{
		"telemetry":           c.Jobs.Telemetry,
		"alertSweep":          c.Jobs.AlertSweep,
		"healthProbe":         c.Jobs.HealthProbe,
		"performanceAnalysis": c.Jobs.PerformanceAnalysis,
		"logSummary":          c.Jobs.LogSummary,
		"securityScan":        c.Jobs.SecurityScan,
	}
	for name, d := range cadences {
		if d <= 0 {
			return fmt.Errorf("job cadence %s must be positive", name)
		}
	}

	return nil
}
