package sim

import "errors"

// Kernel errors. Both are fatal: the run aborts and no ledger is produced.
var (
	// ErrInvalidDelay reports a negative scheduling delay, which is a
	// programming error rather than a data problem.
	ErrInvalidDelay = errors.New("invalid delay")

	// ErrSchedulerStalled reports that the kernel exceeded its event
	// safety bound without draining the queue, or that cases were left
	// suspended when the queue drained. Either way the scenario is
	// misconfigured (typically a resource pool that can never satisfy
	// pending demand).
	ErrSchedulerStalled = errors.New("scheduler stalled")
)
