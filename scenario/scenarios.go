package scenario

import (
	"fmt"
	"sort"
)

// Built-in policy presets. Each returns a valid Spec ready for
// sim.RunScenario. Stage means/sigmas carry the calibration values of the
// underlying care-coordination study (hours for the lognormal pipelines,
// days elsewhere); automation multipliers are data, not derived quantities.

const hoursPerDay = 24.0

func defaultCohort() CohortSpec {
	return CohortSpec{
		AgeMin: 35,
		AgeMax: 84,
		Diagnoses: []string{
			"diabetes type 2",
			"hypertension",
			"acute coronary syndrome",
			"cancer staging",
			"chronic kidney disease",
		},
		UrgentFraction:       0.15,
		IntegratedRecordRate: 0.85,
	}
}

func defaultResources() map[string]int {
	return map[string]int{
		"radiology":  120,
		"specialist": 40,
	}
}

func keywordTriage() TriageSpec {
	return TriageSpec{
		Mode:           TriageModeRules,
		UrgentKeywords: []string{"cancer", "acute", "emergency", "critical"},
	}
}

func fullRuleTriage() TriageSpec {
	return TriageSpec{
		Mode:             TriageModeRules,
		AgeThreshold:     65,
		UrgentKeywords:   []string{"cancer", "acute", "emergency", "critical", "urgent"},
		ElevatedKeywords: []string{"diabetes", "hypertension", "coronary"},
	}
}

// ScenarioManual is the fully manual baseline: six sequential lognormal
// stages with literature-derived long-tailed human delays and no shared
// resource contention.
func ScenarioManual() *Spec {
	return &Spec{
		Name:        "manual",
		Description: "Paper- and phone-based coordination, fully manual",
		Stages: []StageSpec{
			{Name: "radiologist_report", Dist: lognormalHours(4.0, 0.5)},
			{Name: "pcp_ack", Dist: lognormalHours(48.0, 1.0)},
			{Name: "referral_gen", Dist: lognormalHours(72.0, 0.8)},
			{Name: "prior_auth_prep", Dist: lognormalHours(96.0, 0.5)},
			{Name: "payer_decision", Dist: lognormalHours(120.0, 0.4)},
			{Name: "scheduling", Dist: lognormalHours(168.0, 0.6)},
		},
		Triage: keywordTriage(),
		Cohort: defaultCohort(),
	}
}

// ScenarioFIFO adds basic urgent/normal triage and shared radiology and
// specialist pools, but no automation: every stage runs at its baseline
// sampled duration.
func ScenarioFIFO() *Spec {
	return &Spec{
		Name:        "fifo",
		Description: "First-in-first-out coordination with basic priority triage",
		Stages:      pipelineStages(nil),
		Resources:   defaultResources(),
		Triage:      keywordTriage(),
		Cohort:      defaultCohort(),
	}
}

// ScenarioRuleBased applies deterministic keyword/threshold automation:
// fixed per-stage speedups and the full rule set, no learning.
func ScenarioRuleBased() *Spec {
	spec := &Spec{
		Name:        "rulebased",
		Description: "Keyword matching, fixed rules, template automation",
		Stages: pipelineStages(map[string]float64{
			"radiology_report":      0.80,
			"pcp_acknowledgment":    0.85,
			"referral_processing":   0.75,
			"prior_authorization":   0.80,
			"specialist_scheduling": 0.85,
			"patient_confirmation":  0.67,
		}),
		Resources: defaultResources(),
		Triage:    fullRuleTriage(),
		Cohort:    defaultCohort(),
	}
	return spec
}

// ScenarioPartial models hybrid automation: electronic record integration
// speeds up reporting for integrated cases, prior authorization overlaps
// referral processing by one day, and triage runs through a simulated
// classifier at 85% accuracy.
func ScenarioPartial() *Spec {
	spec := &Spec{
		Name:        "partial",
		Description: "Hybrid automation: EHR integration, e-PA, limited ML triage",
		Stages: pipelineStages(map[string]float64{
			"pcp_acknowledgment":    0.60,
			"referral_processing":   0.65,
			"prior_authorization":   0.70,
			"payer_review":          0.90,
			"specialist_scheduling": 0.75,
			"patient_confirmation":  0.50,
		}),
		Resources: defaultResources(),
		Triage: TriageSpec{
			Mode:             TriageModeSimulated,
			Accuracy:         0.85,
			AgeThreshold:     65,
			UrgentKeywords:   []string{"cancer", "acute", "emergency", "critical", "urgent"},
			ElevatedKeywords: []string{"diabetes", "hypertension", "coronary"},
		},
		Cohort: defaultCohort(),
	}
	for i := range spec.Stages {
		switch spec.Stages[i].Name {
		case "radiology_report":
			spec.Stages[i].IntegratedMultiplier = 0.70
		case "prior_authorization":
			spec.Stages[i].LeadDays = 1.0
		}
	}
	return spec
}

// ScenarioOrchestrator is the fully orchestrated pipeline: machine-speed
// generation and packet assembly, near-immediate acknowledgment, and a
// simulated classifier at 95% accuracy. Human-bound stages (radiologist
// interpretation, payer review) keep their baseline long-tailed delays.
func ScenarioOrchestrator() *Spec {
	return &Spec{
		Name:        "orchestrator",
		Description: "Fully orchestrated coordination with automated hand-offs",
		Stages: []StageSpec{
			{Name: "radiologist_report", Dist: lognormalHours(4.0, 0.5), Resource: "radiology"},
			{Name: "pcp_ack", Dist: lognormalHours(2.0, 0.2)},
			{Name: "referral_gen", Dist: normalHours(0.05, 0.01)},
			{Name: "prior_auth_prep", Dist: normalHours(0.1, 0.01)},
			{Name: "payer_decision", Dist: lognormalHours(120.0, 0.4)},
			{Name: "scheduling", Dist: lognormalHours(24.0, 4.0), Resource: "specialist"},
		},
		Resources: defaultResources(),
		Triage: TriageSpec{
			Mode:             TriageModeSimulated,
			Accuracy:         0.95,
			AgeThreshold:     65,
			UrgentKeywords:   []string{"cancer", "acute", "emergency", "critical", "urgent"},
			ElevatedKeywords: []string{"diabetes", "hypertension", "coronary"},
		},
		Cohort: defaultCohort(),
	}
}

// pipelineStages builds the seven-stage queued pipeline shared by the
// fifo, rulebased, and partial presets. multipliers maps stage name to its
// automation multiplier; missing entries run at baseline speed.
func pipelineStages(multipliers map[string]float64) []StageSpec {
	stages := []StageSpec{
		{Name: "radiology_report", Resource: "radiology",
			Dist: DistSpec{Family: FamilyUniform, Params: map[string]float64{
				"min": 3.2 / hoursPerDay, "max": 4.8 / hoursPerDay}}},
		{Name: "pcp_acknowledgment",
			Dist: DistSpec{Family: FamilyExponential, Params: map[string]float64{
				"rate": 0.125}}},
		{Name: "referral_processing",
			Dist: DistSpec{Family: FamilyNormal, Params: map[string]float64{
				"mean": 10.5, "sigma": 2.1}}},
		{Name: "prior_authorization",
			Dist: DistSpec{Family: FamilyGamma, Params: map[string]float64{
				"shape": 2.5, "scale": 1.2}}},
		{Name: "payer_review",
			Dist: DistSpec{Family: FamilyTriangular, Params: map[string]float64{
				"min": 1, "mode": 2, "max": 5}}},
		{Name: "specialist_scheduling", Resource: "specialist",
			Dist: DistSpec{Family: FamilyWeibull, Params: map[string]float64{
				"shape": 1.8, "scale": 28}}},
		{Name: "patient_confirmation",
			Dist: DistSpec{Family: FamilyTriangular, Params: map[string]float64{
				"min": 0.25, "mode": 0.5, "max": 1.5}}},
	}
	for i := range stages {
		if m, ok := multipliers[stages[i].Name]; ok {
			stages[i].Multiplier = m
		}
	}
	return stages
}

func lognormalHours(mean, sigma float64) DistSpec {
	return DistSpec{Family: FamilyLognormal, Params: map[string]float64{
		"mean": mean / hoursPerDay, "sigma": sigma / hoursPerDay}}
}

func normalHours(mean, sigma float64) DistSpec {
	return DistSpec{Family: FamilyNormal, Params: map[string]float64{
		"mean": mean / hoursPerDay, "sigma": sigma / hoursPerDay}}
}

var presets = map[string]func() *Spec{
	"manual":       ScenarioManual,
	"fifo":         ScenarioFIFO,
	"rulebased":    ScenarioRuleBased,
	"partial":      ScenarioPartial,
	"orchestrator": ScenarioOrchestrator,
}

// presetOrder is the canonical least-to-most automated ordering used by
// PresetNames and the compare command.
var presetOrder = []string{"manual", "fifo", "rulebased", "partial", "orchestrator"}

// Preset returns a fresh copy of the named built-in scenario.
func Preset(name string) (*Spec, error) {
	build, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown preset %q; valid: %v", ErrInvalidScenarioConfig, name, PresetNames())
	}
	return build(), nil
}

// PresetNames lists the built-in scenarios from least to most automated.
func PresetNames() []string {
	names := make([]string, len(presetOrder))
	copy(names, presetOrder)
	if len(names) != len(presets) {
		// keep registry and ordering in sync if one is edited without the other
		names = names[:0]
		for name := range presets {
			names = append(names, name)
		}
		sort.Strings(names)
	}
	return names
}
