package config

import "testing"

func TestFormatValidationReport_NoIssues(t *testing.T) {
	result := NewValidationResult()
	report := FormatValidationReport(result, nil)
	if report == "" {
		t.Fatal("report should not be empty")
	}
}

func TestFormatValidationReport_IncludesErrorsAndSuggestions(t *testing.T) {
	result := NewValidationResult()
	result.AddError("global.log_level", "invalid level", "use info")
	result.AddSuggestion("global", "enable metrics", "set metrics_enabled: true")

	report := FormatValidationReport(result, nil)
	if !contains(report, "invalid level") {
		t.Errorf("report missing error message: %s", report)
	}
	if !contains(report, "enable metrics") {
		t.Errorf("report missing suggestion message: %s", report)
	}
}

func TestFormatValidationReport_PreviewsScheduledJobs(t *testing.T) {
	result := NewValidationResult()
	enabled := true
	disabled := false
	cfg := &Config{Jobs: map[string]*Job{
		"cleanup": {Cron: "0 3 * * *", Enabled: &enabled},
		"report":  {Cron: "invalid cron", Enabled: &disabled},
		"ad-hoc":  {Enabled: &enabled}, // no cron: explicit-start only, not previewed
	}}

	report := FormatValidationReport(result, cfg)
	if !contains(report, "SCHEDULED JOBS") {
		t.Errorf("report missing scheduled jobs section: %s", report)
	}
	if !contains(report, "cleanup") || !contains(report, "next at") {
		t.Errorf("report missing cleanup job's next-run preview: %s", report)
	}
	if !contains(report, "invalid") {
		t.Errorf("report missing invalid cron note for 'report' job: %s", report)
	}
	if contains(report, "ad-hoc") {
		t.Errorf("report should not preview a job with no cron expression: %s", report)
	}
}

func TestFormatValidationReport_NoCronJobsOmitsSchedulePreview(t *testing.T) {
	result := NewValidationResult()
	cfg := &Config{Jobs: map[string]*Job{"ad-hoc": {}}}

	report := FormatValidationReport(result, cfg)
	if report == "" {
		t.Fatal("report should not be empty")
	}
	if contains(report, "SCHEDULED JOBS") {
		t.Errorf("report should omit the schedule preview section with no cron jobs: %s", report)
	}
}

func TestFormatValidationSummary(t *testing.T) {
	result := NewValidationResult()
	result.AddWarning("global.log_format", "text format", "use json")
	summary := FormatValidationSummary(result)
	if !contains(summary, "warning") {
		t.Errorf("summary missing warning count: %s", summary)
	}
}

func TestFormatValidationJSON_ReflectsPassState(t *testing.T) {
	result := NewValidationResult()
	out := FormatValidationJSON(result)
	if out["passed"] != true {
		t.Errorf("passed = %v, want true", out["passed"])
	}

	result.AddError("global.log_level", "invalid", "fix it")
	out = FormatValidationJSON(result)
	if out["passed"] != false {
		t.Errorf("passed = %v, want false after an error", out["passed"])
	}
}

func contains(s, substr string) bool {
	return len(s) >= len(substr) && indexOf(s, substr) >= 0
}

func indexOf(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}
	return -1
}
