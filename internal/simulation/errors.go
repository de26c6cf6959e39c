package simulation

import "errors"

var (
	// ErrTimeout is returned when the batch exceeds its wall-clock budget.
	// Completed partial results are discarded rather than returned as a
	// statistically biased ensemble.
	ErrTimeout = errors.New("simulation exceeded its time budget; retry with fewer iterations")

	// ErrTrialFailed is returned when an individual trial faults and the
	// one-shot retry with fresh randomness faulted as well.
	ErrTrialFailed = errors.New("simulation trial failed; please retry")
)
