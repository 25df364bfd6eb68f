package config

import "testing"

func TestSetDefaults_FillsZeroValues(t *testing.T) {
	cfg := &Config{Jobs: map[string]*Job{"cleanup": {Cron: "0 * * * *"}}}
	cfg.SetDefaults()

	if cfg.Version != "1.0" {
		t.Errorf("Version = %q, want %q", cfg.Version, "1.0")
	}
	if cfg.Global.TickIntervalMS != 1500 {
		t.Errorf("TickIntervalMS = %d, want 1500", cfg.Global.TickIntervalMS)
	}
	if cfg.Global.ShutdownGrace != 5 {
		t.Errorf("ShutdownGrace = %d, want 5", cfg.Global.ShutdownGrace)
	}
	if cfg.Global.LogFormat != "json" || cfg.Global.LogLevel != "info" {
		t.Errorf("LogFormat/LogLevel = %q/%q, want json/info", cfg.Global.LogFormat, cfg.Global.LogLevel)
	}
	if cfg.Global.MetricsPort != 9090 || cfg.Global.APIPort != 8080 {
		t.Errorf("MetricsPort/APIPort = %d/%d, want 9090/8080", cfg.Global.MetricsPort, cfg.Global.APIPort)
	}
	if cfg.Global.ServiceName != "jobsupervisor" {
		t.Errorf("ServiceName = %q, want jobsupervisor", cfg.Global.ServiceName)
	}

	job := cfg.Jobs["cleanup"]
	if job.Enabled == nil || !*job.Enabled {
		t.Error("job.Enabled should default to true")
	}
}

func TestSetDefaults_DoesNotOverrideExplicitValues(t *testing.T) {
	disabled := false
	cfg := &Config{
		Version: "2.0",
		Global:  GlobalConfig{TickIntervalMS: 500, LogLevel: "debug"},
		Jobs:    map[string]*Job{"task": {Enabled: &disabled}},
	}
	cfg.SetDefaults()

	if cfg.Version != "2.0" {
		t.Errorf("Version = %q, want 2.0", cfg.Version)
	}
	if cfg.Global.TickIntervalMS != 500 {
		t.Errorf("TickIntervalMS = %d, want 500", cfg.Global.TickIntervalMS)
	}
	if cfg.Global.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.Global.LogLevel)
	}
	if cfg.Jobs["task"].EnabledOrDefault() {
		t.Error("explicit Enabled: false should not be overridden")
	}
}

func TestJob_EnabledOrDefault(t *testing.T) {
	j := &Job{}
	if !j.EnabledOrDefault() {
		t.Error("EnabledOrDefault() should be true when Enabled is nil")
	}

	enabled := false
	j.Enabled = &enabled
	if j.EnabledOrDefault() {
		t.Error("EnabledOrDefault() should reflect the explicit false")
	}
}
