package config

// Config represents the complete jobsupervisor configuration.
type Config struct {
	Version string             `yaml:"version" json:"version"`
	Global  GlobalConfig       `yaml:"global" json:"global"`
	Jobs    map[string]*Job `yaml:"jobs" json:"jobs"`
}

// GlobalConfig contains supervisor-wide settings.
type GlobalConfig struct {
	TickIntervalMS   int     `yaml:"tick_interval_ms" json:"tick_interval_ms"`
	ShutdownGrace    int     `yaml:"shutdown_grace" json:"shutdown_grace"` // seconds, grace period for in-flight jobs at shutdown
	LogFormat        string  `yaml:"log_format" json:"log_format"`             // json | text
	LogLevel         string  `yaml:"log_level" json:"log_level"`               // debug | info | warn | error
	MetricsEnabled   bool    `yaml:"metrics_enabled" json:"metrics_enabled"`
	MetricsPort      int     `yaml:"metrics_port" json:"metrics_port"`
	MetricsPath      string  `yaml:"metrics_path" json:"metrics_path"`
	APIEnabled       bool    `yaml:"api_enabled" json:"api_enabled"`
	APIPort          int     `yaml:"api_port" json:"api_port"`
	APIAuth          string  `yaml:"api_auth" json:"api_auth"` // Bearer token, empty disables auth
	TracingEnabled   bool    `yaml:"tracing_enabled" json:"tracing_enabled"`
	TracingExporter  string  `yaml:"tracing_exporter" json:"tracing_exporter"` // otlp | stdout
	TracingEndpoint  string  `yaml:"tracing_endpoint" json:"tracing_endpoint"`
	TracingSampleRate float64 `yaml:"tracing_sample_rate" json:"tracing_sample_rate"`
	ServiceName      string  `yaml:"service_name" json:"service_name"`
}

// Job declares a job the supervisor should register at startup. The body a
// job runs is registered from Go code (it is an opaque JobBody, not a shell
// command), so this only carries the metadata the supervisor itself tracks:
// whether a job participates in cron scheduling and whether it is enabled.
type Job struct {
	Cron    string `yaml:"cron" json:"cron"`       // empty: explicit start only
	Enabled *bool  `yaml:"enabled" json:"enabled"` // nil defaults to true
}

// SetDefaults fills in sensible defaults for zero-valued fields.
func (c *Config) SetDefaults() {
	if c.Version == "" {
		c.Version = "1.0"
	}
	if c.Global.TickIntervalMS == 0 {
		c.Global.TickIntervalMS = 1500
	}
	if c.Global.ShutdownGrace == 0 {
		c.Global.ShutdownGrace = 5
	}
	if c.Global.LogFormat == "" {
		c.Global.LogFormat = "json"
	}
	if c.Global.LogLevel == "" {
		c.Global.LogLevel = "info"
	}
	if c.Global.MetricsPort == 0 {
		c.Global.MetricsPort = 9090
	}
	if c.Global.MetricsPath == "" {
		c.Global.MetricsPath = "/metrics"
	}
	if c.Global.APIPort == 0 {
		c.Global.APIPort = 8080
	}
	if c.Global.TracingExporter == "" {
		c.Global.TracingExporter = "stdout"
	}
	if c.Global.TracingSampleRate == 0 {
		c.Global.TracingSampleRate = 1.0
	}
	if c.Global.ServiceName == "" {
		c.Global.ServiceName = "jobsupervisor"
	}

	for _, job := range c.Jobs {
		if job.Enabled == nil {
			enabled := true
			job.Enabled = &enabled
		}
	}
}

// EnabledOrDefault reports whether the job is enabled, defaulting to true
// when unset.
func (j *Job) EnabledOrDefault() bool {
	if j.Enabled == nil {
		return true
	}
	return *j.Enabled
}
