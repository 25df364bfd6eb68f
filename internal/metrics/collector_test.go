package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordJobRun_IncrementsCounterAndObservesDuration(t *testing.T) {
	before := testutil.ToFloat64(JobRuns.WithLabelValues("task1", "finished"))
	RecordJobRun("task1", "finished", 1.5)
	after := testutil.ToFloat64(JobRuns.WithLabelValues("task1", "finished"))

	if after != before+1 {
		t.Errorf("JobRuns counter = %v, want %v", after, before+1)
	}
}

func TestRecordJobStatus_ClearsOtherStatuses(t *testing.T) {
	RecordJobStatus("task1", "running")
	if v := testutil.ToFloat64(JobStatus.WithLabelValues("task1", "running")); v != 1 {
		t.Errorf("running gauge = %v, want 1", v)
	}
	if v := testutil.ToFloat64(JobStatus.WithLabelValues("task1", "pending")); v != 0 {
		t.Errorf("pending gauge = %v, want 0", v)
	}

	RecordJobStatus("task1", "finished")
	if v := testutil.ToFloat64(JobStatus.WithLabelValues("task1", "running")); v != 0 {
		t.Errorf("running gauge after transition = %v, want 0", v)
	}
	if v := testutil.ToFloat64(JobStatus.WithLabelValues("task1", "finished")); v != 1 {
		t.Errorf("finished gauge = %v, want 1", v)
	}
}

func TestSetRegisteredJobs(t *testing.T) {
	SetRegisteredJobs(3)
	if v := testutil.ToFloat64(RegisteredJobs); v != 3 {
		t.Errorf("RegisteredJobs = %v, want 3", v)
	}
}

func TestSetEventLogSize(t *testing.T) {
	SetEventLogSize(42)
	if v := testutil.ToFloat64(EventLogSize); v != 42 {
		t.Errorf("EventLogSize = %v, want 42", v)
	}
}

func TestRecordTickAndShutdownDuration(t *testing.T) {
	// Histograms aren't single scalar values; just verify no panic, matching
	// the teacher's original depth for its own histogram-recording tests.
	RecordTickDuration(0.002)
	RecordShutdownDuration(0.5)
}

func TestSetBuildInfo(t *testing.T) {
	SetBuildInfo("v1.0.0", "go1.24")
	if v := testutil.ToFloat64(BuildInfo.WithLabelValues("v1.0.0", "go1.24")); v != 1 {
		t.Errorf("BuildInfo = %v, want 1", v)
	}
}
