package config

import (
	"os"
	"testing"
)

func TestExpandEnv_SubstitutesSetVariable(t *testing.T) {
	os.Setenv("JOBSUPERVISOR_TEST_VAR", "hello")
	defer os.Unsetenv("JOBSUPERVISOR_TEST_VAR")

	got := ExpandEnv("value: ${JOBSUPERVISOR_TEST_VAR}")
	if got != "value: hello" {
		t.Errorf("ExpandEnv() = %q, want %q", got, "value: hello")
	}
}

func TestExpandEnv_FallsBackToDefault(t *testing.T) {
	os.Unsetenv("JOBSUPERVISOR_MISSING_VAR")

	got := ExpandEnv("value: ${JOBSUPERVISOR_MISSING_VAR:-fallback}")
	if got != "value: fallback" {
		t.Errorf("ExpandEnv() = %q, want %q", got, "value: fallback")
	}
}

func TestExpandEnv_EmptyDefaultWhenOmitted(t *testing.T) {
	os.Unsetenv("JOBSUPERVISOR_MISSING_VAR")

	got := ExpandEnv("value: ${JOBSUPERVISOR_MISSING_VAR}")
	if got != "value: " {
		t.Errorf("ExpandEnv() = %q, want %q", got, "value: ")
	}
}

func TestExpandEnv_SetValueWinsOverDefault(t *testing.T) {
	os.Setenv("JOBSUPERVISOR_TEST_VAR", "actual")
	defer os.Unsetenv("JOBSUPERVISOR_TEST_VAR")

	got := ExpandEnv("value: ${JOBSUPERVISOR_TEST_VAR:-fallback}")
	if got != "value: actual" {
		t.Errorf("ExpandEnv() = %q, want %q", got, "value: actual")
	}
}
