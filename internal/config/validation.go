package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/devtud/jobsupervisor/internal/cronutil"
)

// ValidationSeverity represents the severity level of a validation issue.
type ValidationSeverity string

const (
	SeverityError      ValidationSeverity = "error"      // Blocking, must be fixed
	SeverityWarning    ValidationSeverity = "warning"    // Non-blocking, should review
	SeveritySuggestion ValidationSeverity = "suggestion" // Best practice recommendation
)

// ValidationIssue represents a single validation problem.
type ValidationIssue struct {
	Severity   ValidationSeverity
	Field      string // Config field path (e.g., "global.log_level", "jobs.cleanup.cron")
	Message    string
	Suggestion string
	JobName    string // Optional: which job this relates to
}

// ValidationResult contains all validation issues found.
type ValidationResult struct {
	Errors      []ValidationIssue
	Warnings    []ValidationIssue
	Suggestions []ValidationIssue
}

func NewValidationResult() *ValidationResult {
	return &ValidationResult{
		Errors:      []ValidationIssue{},
		Warnings:    []ValidationIssue{},
		Suggestions: []ValidationIssue{},
	}
}

func (vr *ValidationResult) AddError(field, message, suggestion string) {
	vr.Errors = append(vr.Errors, ValidationIssue{Severity: SeverityError, Field: field, Message: message, Suggestion: suggestion})
}

func (vr *ValidationResult) AddWarning(field, message, suggestion string) {
	vr.Warnings = append(vr.Warnings, ValidationIssue{Severity: SeverityWarning, Field: field, Message: message, Suggestion: suggestion})
}

func (vr *ValidationResult) AddSuggestion(field, message, suggestion string) {
	vr.Suggestions = append(vr.Suggestions, ValidationIssue{Severity: SeveritySuggestion, Field: field, Message: message, Suggestion: suggestion})
}

func (vr *ValidationResult) AddJobError(jobName, field, message, suggestion string) {
	vr.Errors = append(vr.Errors, ValidationIssue{Severity: SeverityError, Field: fmt.Sprintf("jobs.%s.%s", jobName, field), Message: message, Suggestion: suggestion, JobName: jobName})
}

func (vr *ValidationResult) AddJobWarning(jobName, field, message, suggestion string) {
	vr.Warnings = append(vr.Warnings, ValidationIssue{Severity: SeverityWarning, Field: fmt.Sprintf("jobs.%s.%s", jobName, field), Message: message, Suggestion: suggestion, JobName: jobName})
}

func (vr *ValidationResult) AddJobSuggestion(jobName, field, message, suggestion string) {
	vr.Suggestions = append(vr.Suggestions, ValidationIssue{Severity: SeveritySuggestion, Field: fmt.Sprintf("jobs.%s.%s", jobName, field), Message: message, Suggestion: suggestion, JobName: jobName})
}

func (vr *ValidationResult) HasErrors() bool      { return len(vr.Errors) > 0 }
func (vr *ValidationResult) HasWarnings() bool    { return len(vr.Warnings) > 0 }
func (vr *ValidationResult) HasSuggestions() bool { return len(vr.Suggestions) > 0 }
func (vr *ValidationResult) TotalIssues() int {
	return len(vr.Errors) + len(vr.Warnings) + len(vr.Suggestions)
}

// ToError converts the result into an error, or nil if there are no errors.
func (vr *ValidationResult) ToError() error {
	if !vr.HasErrors() {
		return nil
	}

	var lines []string
	lines = append(lines, fmt.Sprintf("configuration validation failed with %d error(s):", len(vr.Errors)))
	for _, e := range vr.Errors {
		lines = append(lines, fmt.Sprintf("  - [%s] %s", e.Field, e.Message))
		if e.Suggestion != "" {
			lines = append(lines, fmt.Sprintf("    -> %s", e.Suggestion))
		}
	}

	return fmt.Errorf("%s", strings.Join(lines, "\n"))
}

// ValidateComprehensive runs every check and collects errors, warnings, and
// suggestions instead of stopping at the first problem. Used by the
// check-config command; Validate (in config.go) is the fast path Load uses.
func (c *Config) ValidateComprehensive() (*ValidationResult, error) {
	result := NewValidationResult()

	c.validateGlobalSettings(result)
	c.validateJobs(result)
	c.lintConfiguration(result)

	if result.HasErrors() {
		return result, result.ToError()
	}
	return result, nil
}

func (c *Config) validateGlobalSettings(result *ValidationResult) {
	if c.Global.TickIntervalMS <= 0 {
		result.AddError("global.tick_interval_ms", "must be positive", "set to at least 250ms (recommended: 1000-2000ms)")
	} else if c.Global.TickIntervalMS < 100 {
		result.AddWarning("global.tick_interval_ms", fmt.Sprintf("very frequent ticking (%dms) increases CPU overhead", c.Global.TickIntervalMS), "consider 1000-2000ms for most workloads")
	}

	if c.Global.ShutdownGrace < 0 {
		result.AddError("global.shutdown_grace", "must be a non-negative number", "set to at least 1 second (recommended: 5)")
	} else if c.Global.ShutdownGrace == 0 {
		result.AddWarning("global.shutdown_grace", "zero shutdown grace gives in-flight jobs no time to observe cancellation", "consider 5 seconds or more")
	}

	if !isOneOf(c.Global.LogLevel, "debug", "info", "warn", "error") {
		result.AddError("global.log_level", fmt.Sprintf("invalid log level: %s", c.Global.LogLevel), "must be one of: debug, info, warn, error")
	} else if c.Global.LogLevel == "debug" {
		result.AddWarning("global.log_level", "debug logging in production may impact performance", "use 'info' for production deployments")
	}

	if !isOneOf(c.Global.LogFormat, "json", "text") {
		result.AddError("global.log_format", fmt.Sprintf("invalid log format: %s", c.Global.LogFormat), "must be one of: json, text")
	} else if c.Global.LogFormat == "text" {
		result.AddSuggestion("global.log_format", "text format is not ideal for log aggregation", "consider 'json' for centralized logging")
	}

	if c.Global.APIEnabled {
		if c.Global.APIPort < 1024 && os.Getuid() != 0 {
			result.AddError("global.api_port", fmt.Sprintf("privileged port %d requires root", c.Global.APIPort), "use a port >= 1024 or run as root")
		}
		if c.Global.APIAuth == "" {
			result.AddWarning("global.api_auth", "API running without authentication", "consider enabling a bearer token for production")
		}
	}

	if c.Global.MetricsEnabled && c.Global.MetricsPort < 1024 && os.Getuid() != 0 {
		result.AddError("global.metrics_port", fmt.Sprintf("privileged port %d requires root", c.Global.MetricsPort), "use a port >= 1024 or run as root")
	}

	if c.Global.TracingEnabled {
		if !isOneOf(c.Global.TracingExporter, "otlp", "stdout") {
			result.AddError("global.tracing_exporter", fmt.Sprintf("invalid exporter: %s", c.Global.TracingExporter), "must be one of: otlp, stdout")
		}
		if c.Global.TracingExporter == "otlp" && c.Global.TracingEndpoint == "" {
			result.AddError("global.tracing_endpoint", "otlp exporter requires an endpoint", "set tracing_endpoint to the collector address")
		}
		if c.Global.TracingSampleRate >= 1.0 {
			result.AddSuggestion("global.tracing_sample_rate", "sampling every trace adds overhead at scale", "consider a fraction below 1.0 in high-throughput deployments")
		}
	}
}

func (c *Config) validateJobs(result *ValidationResult) {
	for name, job := range c.Jobs {
		if job.Cron == "" {
			continue
		}
		if err := cronutil.Validate(job.Cron); err != nil {
			result.AddJobError(name, "cron", fmt.Sprintf("invalid cron expression %q: %v", job.Cron, err), "use standard 5-field cron syntax")
		}
	}
}

func (c *Config) lintConfiguration(result *ValidationResult) {
	if !c.Global.APIEnabled && !c.Global.MetricsEnabled {
		result.AddSuggestion("global", "neither the API nor metrics are enabled", "enable the API for runtime management or metrics for monitoring")
	}

	for name, job := range c.Jobs {
		if !job.EnabledOrDefault() {
			result.AddJobSuggestion(name, "enabled", "job declared but disabled", "remove it from the config or enable it to reduce clutter")
		}
	}
}
