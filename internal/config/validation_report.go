package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/devtud/jobsupervisor/internal/cronutil"
)

// FormatValidationReport formats validation results as a human-readable
// report. When cfg is non-nil, a "SCHEDULED JOBS" section previews each
// cron-bearing job's next computed firing time, so an operator can catch a
// cron expression that parses but fires somewhere unexpected before it
// ever reaches the running supervisor.
func FormatValidationReport(result *ValidationResult, cfg *Config) string {
	if result.TotalIssues() == 0 && (cfg == nil || !hasCronJobs(cfg)) {
		return "✅ Configuration validation passed with no issues"
	}

	var lines []string

	// Header
	lines = append(lines, "")
	lines = append(lines, "═══════════════════════════════════════════════════════════════")
	lines = append(lines, "  Configuration Validation Report")
	lines = append(lines, "═══════════════════════════════════════════════════════════════")
	lines = append(lines, "")

	// Summary
	summary := fmt.Sprintf("  Total Issues: %d  ", result.TotalIssues())
	if len(result.Errors) > 0 {
		summary += fmt.Sprintf("❌ %d Error(s)  ", len(result.Errors))
	}
	if len(result.Warnings) > 0 {
		summary += fmt.Sprintf("⚠️  %d Warning(s)  ", len(result.Warnings))
	}
	if len(result.Suggestions) > 0 {
		summary += fmt.Sprintf("💡 %d Suggestion(s)", len(result.Suggestions))
	}
	lines = append(lines, summary)
	lines = append(lines, "")

	// Errors section (blocking)
	if len(result.Errors) > 0 {
		lines = append(lines, "❌ ERRORS (must be fixed):")
		lines = append(lines, strings.Repeat("─", 63))
		for i, err := range result.Errors {
			lines = append(lines, fmt.Sprintf("  %d. [%s]", i+1, err.Field))
			lines = append(lines, fmt.Sprintf("     %s", err.Message))
			if err.Suggestion != "" {
				lines = append(lines, fmt.Sprintf("     → Fix: %s", err.Suggestion))
			}
			if i < len(result.Errors)-1 {
				lines = append(lines, "")
			}
		}
		lines = append(lines, "")
	}

	// Warnings section (should review)
	if len(result.Warnings) > 0 {
		lines = append(lines, "⚠️  WARNINGS (should be reviewed):")
		lines = append(lines, strings.Repeat("─", 63))
		for i, warn := range result.Warnings {
			lines = append(lines, fmt.Sprintf("  %d. [%s]", i+1, warn.Field))
			lines = append(lines, fmt.Sprintf("     %s", warn.Message))
			if warn.Suggestion != "" {
				lines = append(lines, fmt.Sprintf("     → Recommendation: %s", warn.Suggestion))
			}
			if i < len(result.Warnings)-1 {
				lines = append(lines, "")
			}
		}
		lines = append(lines, "")
	}

	// Suggestions section (best practices)
	if len(result.Suggestions) > 0 {
		lines = append(lines, "💡 SUGGESTIONS (best practices):")
		lines = append(lines, strings.Repeat("─", 63))
		for i, sugg := range result.Suggestions {
			lines = append(lines, fmt.Sprintf("  %d. [%s]", i+1, sugg.Field))
			lines = append(lines, fmt.Sprintf("     %s", sugg.Message))
			if sugg.Suggestion != "" {
				lines = append(lines, fmt.Sprintf("     → Consider: %s", sugg.Suggestion))
			}
			if i < len(result.Suggestions)-1 {
				lines = append(lines, "")
			}
		}
		lines = append(lines, "")
	}

	// Scheduled jobs preview (this repo's own section: the teacher's
	// process-manager config has no notion of a cron schedule to preview).
	if cfg != nil && hasCronJobs(cfg) {
		lines = append(lines, "🕐 SCHEDULED JOBS (next computed run):")
		lines = append(lines, strings.Repeat("─", 63))
		lines = append(lines, formatSchedulePreview(cfg)...)
		lines = append(lines, "")
	}

	// Footer
	lines = append(lines, "═══════════════════════════════════════════════════════════════")

	switch {
	case result.HasErrors():
		lines = append(lines, "  ❌ Validation failed: please fix errors before starting")
	case result.HasWarnings():
		lines = append(lines, "  ✅ Validation passed (with warnings)")
	case result.HasSuggestions():
		lines = append(lines, "  ✅ Validation passed (with suggestions)")
	default:
		lines = append(lines, "  ✅ Validation passed")
	}

	lines = append(lines, "═══════════════════════════════════════════════════════════════")
	lines = append(lines, "")

	return strings.Join(lines, "\n")
}

// hasCronJobs reports whether cfg declares at least one job with a cron
// expression, enabled or not — a disabled cron job is still worth
// previewing so an operator can see what enabling it would schedule.
func hasCronJobs(cfg *Config) bool {
	for _, job := range cfg.Jobs {
		if job.Cron != "" {
			return true
		}
	}
	return false
}

// formatSchedulePreview renders one line per cron-bearing job, in sorted
// name order, showing when it would next fire from now. A job whose cron
// expression fails to parse is still listed (its validation error is
// already covered by the ERRORS section above) rather than silently
// omitted from the preview.
func formatSchedulePreview(cfg *Config) []string {
	names := make([]string, 0, len(cfg.Jobs))
	for name, job := range cfg.Jobs {
		if job.Cron != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	now := cronutil.Now()
	lines := make([]string, 0, len(names))
	for _, name := range names {
		job := cfg.Jobs[name]
		status := "enabled"
		if !job.EnabledOrDefault() {
			status = "disabled"
		}
		next, err := cronutil.NextRun(job.Cron, now)
		if err != nil {
			lines = append(lines, fmt.Sprintf("  %-20s %-9s %q (invalid: %v)", name, status, job.Cron, err))
			continue
		}
		lines = append(lines, fmt.Sprintf("  %-20s %-9s %q -> next at %s", name, status, job.Cron, next.Format("2006-01-02T15:04:05Z")))
	}
	return lines
}

// FormatValidationSummary formats a brief validation summary (one line)
func FormatValidationSummary(result *ValidationResult) string {
	if result.TotalIssues() == 0 {
		return "✅ Validation passed"
	}

	parts := []string{}
	if len(result.Errors) > 0 {
		parts = append(parts, fmt.Sprintf("❌ %d error(s)", len(result.Errors)))
	}
	if len(result.Warnings) > 0 {
		parts = append(parts, fmt.Sprintf("⚠️  %d warning(s)", len(result.Warnings)))
	}
	if len(result.Suggestions) > 0 {
		parts = append(parts, fmt.Sprintf("💡 %d suggestion(s)", len(result.Suggestions)))
	}

	return strings.Join(parts, ", ")
}

// FormatValidationJSON formats validation results as JSON (for API/programmatic use)
func FormatValidationJSON(result *ValidationResult) map[string]interface{} {
	return map[string]interface{}{
		"passed": !result.HasErrors(),
		"summary": map[string]int{
			"errors":      len(result.Errors),
			"warnings":    len(result.Warnings),
			"suggestions": len(result.Suggestions),
			"total":       result.TotalIssues(),
		},
		"errors":      formatIssuesJSON(result.Errors),
		"warnings":    formatIssuesJSON(result.Warnings),
		"suggestions": formatIssuesJSON(result.Suggestions),
	}
}

func formatIssuesJSON(issues []ValidationIssue) []map[string]string {
	result := make([]map[string]string, len(issues))
	for i, issue := range issues {
		result[i] = map[string]string{
			"severity":   string(issue.Severity),
			"field":      issue.Field,
			"message":    issue.Message,
			"suggestion": issue.Suggestion,
		}
		if issue.JobName != "" {
			result[i]["job"] = issue.JobName
		}
	}
	return result
}
