package sim

// PriorityClass is a triage-assigned category determining queue order at a
// resource pool. Higher values dispatch first. It never affects global
// event ordering.
type PriorityClass int

const (
	PriorityRoutine PriorityClass = iota
	PriorityMedium
	PriorityHigh
	PriorityUrgent
)

// PriorityClasses lists all classes in ascending order.
var PriorityClasses = []PriorityClass{PriorityRoutine, PriorityMedium, PriorityHigh, PriorityUrgent}

func (p PriorityClass) String() string {
	switch p {
	case PriorityRoutine:
		return "routine"
	case PriorityMedium:
		return "medium"
	case PriorityHigh:
		return "high"
	case PriorityUrgent:
		return "urgent"
	default:
		return "unknown"
	}
}

// CaseState is the lifecycle state of a case.
type CaseState string

const (
	CaseStateCreated   CaseState = "CREATED"
	CaseStateQueued    CaseState = "QUEUED"
	CaseStateInStage   CaseState = "IN_STAGE"
	CaseStateCompleted CaseState = "COMPLETED"
)

// StageRecord captures one executed stage: its sampled (effective) duration
// and any time spent queued for the stage's resource, both in days.
type StageRecord struct {
	Name     string
	Duration float64
	Wait     float64
}

// Case is one entity traversing the pipeline. It is created by the cohort
// generator, mutated only by the coordination process that owns it, and
// finalized into an immutable CaseRecord when appended to the ledger.
type Case struct {
	// Identity and static attributes.
	ID                  int
	Age                 int
	Diagnosis           string
	UrgentFlag          bool
	HasIntegratedRecord bool

	// Assigned during simulation.
	ArrivalTime    float64
	Priority       PriorityClass
	State          CaseState
	Stages         []StageRecord // execution order
	CompletionTime float64
	TotalLatency   float64
}

// CaseRecord is the finalized, immutable form of a Case as it appears in
// the completed-case ledger.
type CaseRecord struct {
	ID                  int
	Age                 int
	Diagnosis           string
	UrgentFlag          bool
	HasIntegratedRecord bool
	Priority            PriorityClass
	ArrivalTime         float64
	CompletionTime      float64
	TotalLatency        float64
	Stages              []StageRecord
}

// finalize snapshots a completed case into its immutable ledger form.
func (c *Case) finalize() CaseRecord {
	stages := make([]StageRecord, len(c.Stages))
	copy(stages, c.Stages)
	return CaseRecord{
		ID:                  c.ID,
		Age:                 c.Age,
		Diagnosis:           c.Diagnosis,
		UrgentFlag:          c.UrgentFlag,
		HasIntegratedRecord: c.HasIntegratedRecord,
		Priority:            c.Priority,
		ArrivalTime:         c.ArrivalTime,
		CompletionTime:      c.CompletionTime,
		TotalLatency:        c.TotalLatency,
		Stages:              stages,
	}
}

// StageDuration returns the recorded duration for a named stage,
// or 0 if the stage was not executed.
func (r *CaseRecord) StageDuration(name string) float64 {
	for _, st := range r.Stages {
		if st.Name == name {
			return st.Duration
		}
	}
	return 0
}

// TotalWait sums the resource-queue wait time accrued across all stages.
func (r *CaseRecord) TotalWait() float64 {
	var total float64
	for _, st := range r.Stages {
		total += st.Wait
	}
	return total
}

// SumStageDurations sums the recorded stage durations.
func (r *CaseRecord) SumStageDurations() float64 {
	var total float64
	for _, st := range r.Stages {
		total += st.Duration
	}
	return total
}
