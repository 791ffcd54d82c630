package schemas

import "time"

// -- Batch Run Schemas --

// EarlyTermination records a batch run that stopped before its configured end.
type EarlyTermination struct {
	// AfterNumber is the last unit number that was attempted.
	AfterNumber int `json:"after_number"`
	// Remaining is how many configured units were never attempted.
	Remaining int `json:"remaining"`
}

// BatchSummary is the immutable record of one batch run. It is produced once,
// when the run completes or is stopped, and never mutated afterwards.
type BatchSummary struct {
	RunID        string `json:"run_id"`
	SequenceName string `json:"sequence_name,omitempty"`

	// Configured range.
	StartNumber     int `json:"start_number"`
	TotalConfigured int `json:"total_configured"`
	EndConfigured   int `json:"end_configured"`

	// Actually processed range. EndActual is StartNumber-1 when the run
	// stopped before completing a single unit.
	EndActual int `json:"end_actual"`

	Successful  int     `json:"successful"`
	Failed      int     `json:"failed"`
	SuccessRate float64 `json:"success_rate"`

	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"duration"`
	AvgPerUnit time.Duration `json:"avg_per_unit"`

	EarlyTermination *EarlyTermination `json:"early_termination,omitempty"`
}

// Attempted returns how many units were actually run.
func (s *BatchSummary) Attempted() int {
	return s.Successful + s.Failed
}

// Remaining returns how many configured units were never attempted.
func (s *BatchSummary) Remaining() int {
	return s.TotalConfigured - s.Attempted()
}
