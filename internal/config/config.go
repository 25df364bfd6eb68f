package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/devtud/jobsupervisor/internal/cronutil"
)

// Load loads configuration from the default YAML file location and
// environment variables. Priority: environment variables > YAML file >
// defaults. Default path resolution: JOBSUPERVISOR_CONFIG env var,
// falling back to /etc/jobsupervisor/jobsupervisor.yaml, falling back to
// ./jobsupervisor.yaml.
func Load() (*Config, error) {
	return LoadPath("")
}

// LoadPath loads configuration the same way Load does, except path, when
// non-empty, takes priority over JOBSUPERVISOR_CONFIG and the built-in
// defaults — the shape a CLI's --config flag needs.
func LoadPath(path string) (*Config, error) {
	configPath := path
	if configPath == "" {
		configPath = os.Getenv("JOBSUPERVISOR_CONFIG")
	}
	if configPath == "" {
		configPath = "/etc/jobsupervisor/jobsupervisor.yaml"
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "jobsupervisor.yaml"
		}
	}

	cfg := &Config{
		Jobs: make(map[string]*Job),
	}

	if _, err := os.Stat(configPath); err == nil {
		if err := loadYAML(configPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to load YAML config: %w", err)
		}
	} else if path != "" {
		return nil, fmt.Errorf("config file not found: %s", path)
	} else {
		fmt.Fprintln(os.Stderr, "no config file found, using environment variables only")
	}

	cfg.SetDefaults()
	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func loadYAML(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	expanded := ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return err
	}
	if cfg.Jobs == nil {
		cfg.Jobs = make(map[string]*Job)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides following the
// pattern JOBSUPERVISOR_GLOBAL_<KEY> and JOBSUPERVISOR_JOB_<NAME>_<KEY>.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("JOBSUPERVISOR_GLOBAL_TICK_INTERVAL_MS"); v != "" {
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			cfg.Global.TickIntervalMS = n
		}
	}
	if v := os.Getenv("JOBSUPERVISOR_GLOBAL_SHUTDOWN_GRACE"); v != "" {
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			cfg.Global.ShutdownGrace = n
		}
	}
	if v := os.Getenv("JOBSUPERVISOR_GLOBAL_LOG_LEVEL"); v != "" {
		cfg.Global.LogLevel = v
	}
	if v := os.Getenv("JOBSUPERVISOR_GLOBAL_LOG_FORMAT"); v != "" {
		cfg.Global.LogFormat = v
	}
	if v := os.Getenv("JOBSUPERVISOR_GLOBAL_METRICS_ENABLED"); v != "" {
		cfg.Global.MetricsEnabled = v == "true"
	}
	if v := os.Getenv("JOBSUPERVISOR_GLOBAL_METRICS_PORT"); v != "" {
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			cfg.Global.MetricsPort = n
		}
	}
	if v := os.Getenv("JOBSUPERVISOR_GLOBAL_API_ENABLED"); v != "" {
		cfg.Global.APIEnabled = v == "true"
	}
	if v := os.Getenv("JOBSUPERVISOR_GLOBAL_API_PORT"); v != "" {
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			cfg.Global.APIPort = n
		}
	}
	if v := os.Getenv("JOBSUPERVISOR_GLOBAL_API_AUTH"); v != "" {
		cfg.Global.APIAuth = v
	}
	if v := os.Getenv("JOBSUPERVISOR_GLOBAL_TRACING_ENABLED"); v != "" {
		cfg.Global.TracingEnabled = v == "true"
	}
	if v := os.Getenv("JOBSUPERVISOR_GLOBAL_TRACING_EXPORTER"); v != "" {
		cfg.Global.TracingExporter = v
	}
	if v := os.Getenv("JOBSUPERVISOR_GLOBAL_TRACING_ENDPOINT"); v != "" {
		cfg.Global.TracingEndpoint = v
	}

	for name, job := range cfg.Jobs {
		prefix := fmt.Sprintf("JOBSUPERVISOR_JOB_%s_", strings.ToUpper(strings.ReplaceAll(name, "-", "_")))
		if v := os.Getenv(prefix + "ENABLED"); v != "" {
			enabled := v == "true"
			job.Enabled = &enabled
		}
		if v := os.Getenv(prefix + "CRON"); v != "" {
			job.Cron = v
		}
	}
}

// Validate checks the configuration for internally inconsistent or
// out-of-range values. It does not know about jobs registered purely from
// Go code, only the ones declared in the file.
func (c *Config) Validate() error {
	if c.Global.TickIntervalMS <= 0 {
		return fmt.Errorf("tick_interval_ms must be positive")
	}
	if c.Global.ShutdownGrace < 0 {
		return fmt.Errorf("shutdown_grace must be non-negative")
	}
	if !isOneOf(c.Global.LogLevel, "debug", "info", "warn", "error") {
		return fmt.Errorf("invalid log_level: %s", c.Global.LogLevel)
	}
	if !isOneOf(c.Global.LogFormat, "json", "text") {
		return fmt.Errorf("invalid log_format: %s", c.Global.LogFormat)
	}
	if c.Global.MetricsEnabled && (c.Global.MetricsPort <= 0 || c.Global.MetricsPort > 65535) {
		return fmt.Errorf("invalid metrics_port: %d", c.Global.MetricsPort)
	}
	if c.Global.APIEnabled && (c.Global.APIPort <= 0 || c.Global.APIPort > 65535) {
		return fmt.Errorf("invalid api_port: %d", c.Global.APIPort)
	}
	if c.Global.TracingEnabled && !isOneOf(c.Global.TracingExporter, "otlp", "stdout") {
		return fmt.Errorf("invalid tracing_exporter: %s", c.Global.TracingExporter)
	}
	if c.Global.TracingSampleRate < 0 || c.Global.TracingSampleRate > 1 {
		return fmt.Errorf("tracing_sample_rate must be between 0 and 1")
	}

	for name, job := range c.Jobs {
		if job.Cron != "" {
			if err := cronutil.Validate(job.Cron); err != nil {
				return fmt.Errorf("job %s has invalid cron expression: %w", name, err)
			}
		}
	}

	return nil
}

func isOneOf(v string, choices ...string) bool {
	for _, c := range choices {
		if v == c {
			return true
		}
	}
	return false
}
