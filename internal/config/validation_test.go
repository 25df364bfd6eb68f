package config

import "testing"

func TestValidateComprehensive_PassesOnDefaults(t *testing.T) {
	cfg := baseConfig()
	result, err := cfg.ValidateComprehensive()
	if err != nil {
		t.Fatalf("ValidateComprehensive() error = %v", err)
	}
	if result.HasErrors() {
		t.Errorf("expected no errors, got %+v", result.Errors)
	}
}

func TestValidateComprehensive_FlagsDebugLogLevel(t *testing.T) {
	cfg := baseConfig()
	cfg.Global.LogLevel = "debug"
	result, _ := cfg.ValidateComprehensive()
	if !result.HasWarnings() {
		t.Error("expected a warning about debug logging in production")
	}
}

func TestValidateComprehensive_FlagsMissingAPIAuth(t *testing.T) {
	cfg := baseConfig()
	cfg.Global.APIEnabled = true
	cfg.Global.APIPort = 8080
	result, _ := cfg.ValidateComprehensive()
	found := false
	for _, w := range result.Warnings {
		if w.Field == "global.api_auth" {
			found = true
		}
	}
	if !found {
		t.Error("expected a warning about missing API auth")
	}
}

func TestValidateComprehensive_SuggestsEnablingSomething(t *testing.T) {
	cfg := baseConfig()
	cfg.Global.APIEnabled = false
	cfg.Global.MetricsEnabled = false
	result, _ := cfg.ValidateComprehensive()
	if !result.HasSuggestions() {
		t.Error("expected a suggestion when neither API nor metrics are enabled")
	}
}

func TestValidateComprehensive_ReturnsErrorOnBadJobCron(t *testing.T) {
	cfg := baseConfig()
	cfg.Jobs["broken"] = &Job{Cron: "??"}
	result, err := cfg.ValidateComprehensive()
	if err == nil {
		t.Fatal("expected an error for an invalid cron expression")
	}
	if !result.HasErrors() {
		t.Error("result should record the error too")
	}
}

func TestValidationResult_ToError_NilWhenNoErrors(t *testing.T) {
	result := NewValidationResult()
	result.AddWarning("global.log_level", "debug logging enabled", "use info")
	if err := result.ToError(); err != nil {
		t.Errorf("ToError() = %v, want nil (warnings aren't blocking)", err)
	}
}

func TestValidationResult_ToError_NonNilWithErrors(t *testing.T) {
	result := NewValidationResult()
	result.AddError("global.log_level", "invalid", "fix it")
	if err := result.ToError(); err == nil {
		t.Error("ToError() = nil, want an error")
	}
}
