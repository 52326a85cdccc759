package sim

import (
	"math/rand/v2"
	"strings"

	"github.com/careflow-sim/careflow-sim/scenario"
)

// Classifier assigns a case exactly one priority class.
// Implementations MUST NOT modify the case and may keep no hidden state
// beyond an RNG stream; the result is a pure function of case attributes
// and RNG draws.
type Classifier interface {
	Classify(c *Case) PriorityClass
}

// RuleClassifier applies deterministic keyword/threshold rules in fixed
// precedence order; the first matching rule wins:
//
//  1. explicit urgent indicator        → urgent
//  2. diagnosis contains urgent keyword → urgent
//  3. age >= threshold (if threshold > 0) → high
//  4. diagnosis contains elevated keyword → medium
//  5. otherwise                         → routine
type RuleClassifier struct {
	AgeThreshold     int
	UrgentKeywords   []string
	ElevatedKeywords []string
}

func (r *RuleClassifier) Classify(c *Case) PriorityClass {
	if c.UrgentFlag {
		return PriorityUrgent
	}
	diagnosis := strings.ToLower(c.Diagnosis)
	for _, kw := range r.UrgentKeywords {
		if strings.Contains(diagnosis, kw) {
			return PriorityUrgent
		}
	}
	if r.AgeThreshold > 0 && c.Age >= r.AgeThreshold {
		return PriorityHigh
	}
	for _, kw := range r.ElevatedKeywords {
		if strings.Contains(diagnosis, kw) {
			return PriorityMedium
		}
	}
	return PriorityRoutine
}

// SimulatedClassifier models an imperfect learned classifier without
// implementing one: with probability Accuracy it returns the rule-based
// class; otherwise it returns a uniformly random class drawn from the
// remaining classes only (so accuracy 0 never matches the rules).
type SimulatedClassifier struct {
	Accuracy float64
	Rules    *RuleClassifier
	rng      *rand.Rand
}

// NewSimulatedClassifier wraps rules with a simulated accuracy using draws
// from rng.
func NewSimulatedClassifier(accuracy float64, rules *RuleClassifier, rng *rand.Rand) *SimulatedClassifier {
	return &SimulatedClassifier{Accuracy: accuracy, Rules: rules, rng: rng}
}

func (s *SimulatedClassifier) Classify(c *Case) PriorityClass {
	correct := s.Rules.Classify(c)
	if s.rng.Float64() < s.Accuracy {
		return correct
	}
	others := make([]PriorityClass, 0, len(PriorityClasses)-1)
	for _, class := range PriorityClasses {
		if class != correct {
			others = append(others, class)
		}
	}
	return others[s.rng.IntN(len(others))]
}

// NewClassifier builds the classifier described by a validated TriageSpec.
// rng is consumed only in simulated_classifier mode.
func NewClassifier(spec scenario.TriageSpec, rng *rand.Rand) Classifier {
	rules := &RuleClassifier{
		AgeThreshold:     spec.AgeThreshold,
		UrgentKeywords:   spec.UrgentKeywords,
		ElevatedKeywords: spec.ElevatedKeywords,
	}
	if spec.Mode == scenario.TriageModeSimulated {
		return NewSimulatedClassifier(spec.Accuracy, rules, rng)
	}
	return rules
}
