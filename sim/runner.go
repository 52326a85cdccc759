package sim

import (
	"fmt"
	"math/rand/v2"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/careflow-sim/careflow-sim/scenario"
)

// defaultInterArrivalDays staggers arrivals when the scenario does not set
// an inter-arrival spacing. Nonzero so arrivals never collide in time.
const defaultInterArrivalDays = 0.01

// RunScenario executes a full simulation of the given scenario over a
// synthetic cohort of caseCount cases and returns the completed-case
// ledger in arrival order. Two calls with identical arguments produce
// bit-identical ledgers.
func RunScenario(spec *scenario.Spec, caseCount int, seed int64) (*Ledger, error) {
	if caseCount <= 0 {
		return nil, fmt.Errorf("%w: case count must be positive, got %d", scenario.ErrInvalidScenarioConfig, caseCount)
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	rng := NewPartitionedRNG(NewSimulationKey(seed))
	kernel := NewKernel(spec.MaxEvents)

	pools, err := buildPools(spec)
	if err != nil {
		return nil, err
	}
	stages, err := bindStages(spec, pools, rng)
	if err != nil {
		return nil, err
	}

	classifier := NewClassifier(spec.Triage, rng.ForSubsystem(SubsystemTriage))
	cases := generateCohort(spec.Cohort, caseCount, rng.ForSubsystem(SubsystemCohort))

	interArrival := spec.InterArrivalDays
	if interArrival <= 0 {
		interArrival = defaultInterArrivalDays
	}

	records := make([]CaseRecord, caseCount)
	completed := 0
	done := func(c *Case, now float64) {
		records[c.ID] = c.finalize()
		completed++
	}

	for i, c := range cases {
		c := c
		proc := &caseProcess{k: kernel, c: c, stages: stages, done: done}
		arrival := float64(i) * interArrival
		if err := kernel.ScheduleAfter(arrival, func(now float64) {
			c.Priority = classifier.Classify(c)
			logrus.Debugf("[t=%0.4f] case %d arrives, priority=%s", now, c.ID, c.Priority)
			proc.start(now)
		}); err != nil {
			return nil, err
		}
	}

	logrus.Infof("running scenario %q: %d cases, seed %d", spec.Name, caseCount, seed)
	if err := kernel.Run(); err != nil {
		return nil, err
	}
	if completed < caseCount {
		return nil, fmt.Errorf("%w: only %d of %d cases completed", ErrSchedulerStalled, completed, caseCount)
	}
	logrus.Infof("scenario %q complete: %d cases in %d events, final t=%0.4f days",
		spec.Name, completed, kernel.Executed(), kernel.Now())

	return &Ledger{Scenario: spec.Name, Seed: seed, Cases: records}, nil
}

// buildPools constructs resource pools in sorted name order so pool
// construction is independent of map iteration.
func buildPools(spec *scenario.Spec) (map[string]*ResourcePool, error) {
	names := make([]string, 0, len(spec.Resources))
	for name := range spec.Resources {
		names = append(names, name)
	}
	sort.Strings(names)

	pools := make(map[string]*ResourcePool, len(names))
	for _, name := range names {
		pool, err := NewResourcePool(name, spec.Resources[name])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", scenario.ErrInvalidScenarioConfig, err)
		}
		pools[name] = pool
	}
	return pools, nil
}

// bindStages resolves each stage definition into a bound stage with a
// seeded sampler and a live pool reference. All samplers share the delay
// subsystem stream so stage draws interleave deterministically.
func bindStages(spec *scenario.Spec, pools map[string]*ResourcePool, rng *PartitionedRNG) ([]boundStage, error) {
	src := rng.SourceFor(SubsystemDelay)
	stages := make([]boundStage, 0, len(spec.Stages))
	for _, st := range spec.Stages {
		sampler, err := scenario.NewDelaySampler(st.Dist, src)
		if err != nil {
			return nil, fmt.Errorf("stage %q: %w", st.Name, err)
		}
		mult := st.Multiplier
		if mult == 0 {
			mult = 1.0
		}
		var pool *ResourcePool
		if st.Resource != "" {
			pool = pools[st.Resource]
		}
		stages = append(stages, boundStage{
			name:           st.Name,
			sampler:        sampler,
			multiplier:     mult,
			integratedMult: st.IntegratedMultiplier,
			leadDays:       st.LeadDays,
			pool:           pool,
		})
	}
	return stages, nil
}

// generateCohort draws caseCount synthetic cases from the cohort spec.
// The per-case draw order is fixed (age, diagnosis, urgent flag, record
// flag) so cohorts replay identically for a given stream.
func generateCohort(spec scenario.CohortSpec, caseCount int, rng *rand.Rand) []*Case {
	cases := make([]*Case, caseCount)
	ageSpan := spec.AgeMax - spec.AgeMin + 1
	for i := 0; i < caseCount; i++ {
		cases[i] = &Case{
			ID:                  i,
			Age:                 spec.AgeMin + rng.IntN(ageSpan),
			Diagnosis:           spec.Diagnoses[rng.IntN(len(spec.Diagnoses))],
			UrgentFlag:          rng.Float64() < spec.UrgentFraction,
			HasIntegratedRecord: rng.Float64() < spec.IntegratedRecordRate,
			State:               CaseStateCreated,
		}
	}
	return cases
}
