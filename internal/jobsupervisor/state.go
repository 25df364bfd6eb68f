package jobsupervisor

import "time"

// JobInfo is the flattened, serializable view of a JobRecord's observable
// fields. Field names are part of the wire contract and must not change:
// in particular "last_status" here carries the record's
// *current* status, a naming quirk preserved for wire compatibility with
// the system this was modeled on — it is not the same as the engine's
// internal previous-terminal-status bookkeeping.
type JobInfo struct {
	Name       string     `json:"name"`
	LastStatus JobStatus  `json:"last_status"`
	Enabled    bool       `json:"enabled"`
	Crontab    *string    `json:"crontab"`
	CreatedAt  time.Time  `json:"created_at"`
	StartedAt  *time.Time `json:"started_at"`
	StoppedAt  *time.Time `json:"stopped_at"`
	NextRunIn  *float64   `json:"next_run_in"`
}

// toJobInfo flattens a record snapshot into its wire representation. now is
// passed in explicitly so next_run_in is computed against a single
// consistent instant even when building a list of many JobInfo values.
func toJobInfo(rec JobRecord, now time.Time) JobInfo {
	info := JobInfo{
		Name:      rec.Definition.Name,
		LastStatus: rec.Status,
		Enabled:   rec.Definition.Enabled,
		Crontab:   rec.Definition.Cron,
		CreatedAt: rec.CreatedAt,
		StartedAt: rec.LastStart,
		StoppedAt: rec.LastFinish,
	}
	if rec.NextStartTS != nil {
		secs := float64(*rec.NextStartTS-now.Unix())
		info.NextRunIn = &secs
	}
	return info
}

// StateSnapshot is the best-effort consistent read returned by
// Supervisor.State().
type StateSnapshot struct {
	CreatedAt time.Time `json:"created_at"`
	Jobs      []JobInfo `json:"jobs"`
}

// InitialState is the bootstrap value Run() may hydrate the registry from.
// Jobs listed but unknown to the registry are ignored with a warning; new
// records are never created by hydration.
type InitialState struct {
	CreatedAt time.Time `json:"created_at"`
	JobsInfo  []JobInfo `json:"jobs_info"`
}
