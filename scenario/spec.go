package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Configuration errors. All of them surface eagerly from Validate/Load,
// before any simulation time advances.
var (
	ErrInvalidScenarioConfig         = errors.New("invalid scenario config")
	ErrInvalidDistributionParameters = errors.New("invalid distribution parameters")
)

// Spec is the full, immutable configuration of one policy variant:
// its pipeline stages, resource capacities, triage rule, and cohort
// attribute generators. Loaded from YAML via Load(path) or built in Go
// (see scenarios.go for the built-in presets). Read-only during a run.
type Spec struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description,omitempty"`
	Stages      []StageSpec    `yaml:"stages"`
	Resources   map[string]int `yaml:"resources,omitempty"`
	Triage      TriageSpec     `yaml:"triage"`
	Cohort      CohortSpec     `yaml:"cohort"`

	// InterArrivalDays staggers case starts to avoid simultaneous-time
	// ties. 0 means the runner default (0.01 days).
	InterArrivalDays float64 `yaml:"inter_arrival_days,omitempty"`

	// MaxEvents bounds the kernel event count as a stall safety net.
	// 0 means the kernel default bound.
	MaxEvents int `yaml:"max_events,omitempty"`
}

// StageSpec defines one named pipeline step.
type StageSpec struct {
	Name string   `yaml:"name"`
	Dist DistSpec `yaml:"distribution"`

	// Resource names a pool the case must hold for the stage's duration.
	// Empty means the stage is unbound (pure delay).
	Resource string `yaml:"resource,omitempty"`

	// Multiplier is the policy's automation speedup/slowdown applied to
	// each sampled duration. 0 means 1.0. The calibration values are a
	// modeling choice carried as data, never derived in code.
	Multiplier float64 `yaml:"multiplier,omitempty"`

	// IntegratedMultiplier, when positive, replaces Multiplier for cases
	// whose record system is integrated with the facility.
	IntegratedMultiplier float64 `yaml:"integrated_multiplier,omitempty"`

	// LeadDays lets this stage begin a fixed offset before its
	// predecessor fully elapses. The stage's recorded duration shrinks by
	// the lead (floored at the minimum delay), so total latency still
	// decomposes exactly into stage durations plus waits. Invalid on the
	// first stage.
	LeadDays float64 `yaml:"lead_days,omitempty"`
}

// DistSpec parameterizes a stage delay distribution.
type DistSpec struct {
	Family string             `yaml:"family"`
	Params map[string]float64 `yaml:"params"`
}

// TriageSpec selects and parameterizes the priority classifier.
type TriageSpec struct {
	// Mode is "rules" or "simulated_classifier".
	Mode string `yaml:"mode"`

	// Accuracy is the probability the simulated classifier returns the
	// rule-based class; otherwise it draws uniformly from the remaining
	// classes. Only meaningful in simulated_classifier mode.
	Accuracy float64 `yaml:"accuracy,omitempty"`

	// Rule set, checked in fixed precedence order (see sim.RuleClassifier).
	AgeThreshold     int      `yaml:"age_threshold,omitempty"`
	UrgentKeywords   []string `yaml:"urgent_keywords,omitempty"`
	ElevatedKeywords []string `yaml:"elevated_keywords,omitempty"`
}

// CohortSpec configures per-case attribute generators.
type CohortSpec struct {
	AgeMin    int      `yaml:"age_min"`
	AgeMax    int      `yaml:"age_max"`
	Diagnoses []string `yaml:"diagnoses"`

	// UrgentFraction is the probability a case carries an explicit urgent
	// indicator. IntegratedRecordRate is the probability its record
	// system is integrated with the facility.
	UrgentFraction       float64 `yaml:"urgent_fraction,omitempty"`
	IntegratedRecordRate float64 `yaml:"integrated_record_rate,omitempty"`
}

// Triage modes.
const (
	TriageModeRules     = "rules"
	TriageModeSimulated = "simulated_classifier"
)

var validTriageModes = map[string]bool{
	TriageModeRules:     true,
	TriageModeSimulated: true,
}

// Load reads and parses a YAML scenario file.
// Uses strict parsing: unrecognized keys (typos) are rejected.
// The result is validated before being returned.
func Load(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	var spec Spec
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&spec); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", ErrInvalidScenarioConfig, path, err)
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return &spec, nil
}

// Validate checks every field of the spec. It returns an error wrapping
// ErrInvalidScenarioConfig (structural problems) or
// ErrInvalidDistributionParameters (bad distribution domains).
func (s *Spec) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: scenario name required", ErrInvalidScenarioConfig)
	}
	if len(s.Stages) == 0 {
		return fmt.Errorf("%w: at least one stage required", ErrInvalidScenarioConfig)
	}
	seen := make(map[string]bool, len(s.Stages))
	for i, st := range s.Stages {
		prefix := fmt.Sprintf("stage[%d]", i)
		if st.Name == "" {
			return fmt.Errorf("%w: %s: name required", ErrInvalidScenarioConfig, prefix)
		}
		if seen[st.Name] {
			return fmt.Errorf("%w: duplicate stage name %q", ErrInvalidScenarioConfig, st.Name)
		}
		seen[st.Name] = true
		if err := ValidateDist(st.Dist); err != nil {
			return fmt.Errorf("%s (%s): %w", prefix, st.Name, err)
		}
		if st.Multiplier < 0 || math.IsNaN(st.Multiplier) || math.IsInf(st.Multiplier, 0) {
			return fmt.Errorf("%w: %s: multiplier must be positive, got %f", ErrInvalidScenarioConfig, prefix, st.Multiplier)
		}
		if st.IntegratedMultiplier < 0 || math.IsNaN(st.IntegratedMultiplier) || math.IsInf(st.IntegratedMultiplier, 0) {
			return fmt.Errorf("%w: %s: integrated_multiplier must be positive, got %f", ErrInvalidScenarioConfig, prefix, st.IntegratedMultiplier)
		}
		if st.LeadDays < 0 {
			return fmt.Errorf("%w: %s: lead_days must be non-negative, got %f", ErrInvalidScenarioConfig, prefix, st.LeadDays)
		}
		if st.LeadDays > 0 && i == 0 {
			return fmt.Errorf("%w: %s: lead_days on the first stage has no predecessor to overlap", ErrInvalidScenarioConfig, prefix)
		}
		if st.Resource != "" {
			if _, ok := s.Resources[st.Resource]; !ok {
				return fmt.Errorf("%w: %s references unknown resource %q", ErrInvalidScenarioConfig, prefix, st.Resource)
			}
		}
	}
	for name, capacity := range s.Resources {
		if capacity <= 0 {
			return fmt.Errorf("%w: resource %q capacity must be positive, got %d", ErrInvalidScenarioConfig, name, capacity)
		}
	}
	if err := s.Triage.validate(); err != nil {
		return err
	}
	if err := s.Cohort.validate(); err != nil {
		return err
	}
	if s.InterArrivalDays < 0 {
		return fmt.Errorf("%w: inter_arrival_days must be non-negative, got %f", ErrInvalidScenarioConfig, s.InterArrivalDays)
	}
	if s.MaxEvents < 0 {
		return fmt.Errorf("%w: max_events must be non-negative, got %d", ErrInvalidScenarioConfig, s.MaxEvents)
	}
	return nil
}

func (t *TriageSpec) validate() error {
	if !validTriageModes[t.Mode] {
		return fmt.Errorf("%w: unknown triage mode %q; valid: rules, simulated_classifier", ErrInvalidScenarioConfig, t.Mode)
	}
	if t.Mode == TriageModeSimulated {
		if t.Accuracy < 0 || t.Accuracy > 1 || math.IsNaN(t.Accuracy) {
			return fmt.Errorf("%w: triage accuracy must be in [0, 1], got %f", ErrInvalidScenarioConfig, t.Accuracy)
		}
	}
	if t.AgeThreshold < 0 {
		return fmt.Errorf("%w: triage age_threshold must be non-negative, got %d", ErrInvalidScenarioConfig, t.AgeThreshold)
	}
	return nil
}

func (c *CohortSpec) validate() error {
	if c.AgeMin <= 0 || c.AgeMax < c.AgeMin {
		return fmt.Errorf("%w: cohort age range [%d, %d] is invalid", ErrInvalidScenarioConfig, c.AgeMin, c.AgeMax)
	}
	if len(c.Diagnoses) == 0 {
		return fmt.Errorf("%w: cohort needs at least one diagnosis label", ErrInvalidScenarioConfig)
	}
	for _, frac := range []float64{c.UrgentFraction, c.IntegratedRecordRate} {
		if frac < 0 || frac > 1 || math.IsNaN(frac) {
			return fmt.Errorf("%w: cohort fractions must be in [0, 1], got %f", ErrInvalidScenarioConfig, frac)
		}
	}
	return nil
}
