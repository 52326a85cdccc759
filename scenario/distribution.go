package scenario

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// MinDelayDays is the floor applied to every sampled stage duration,
// regardless of family. Distributions with support near (or below) zero
// must never produce a zero or negative stage time.
const MinDelayDays = 0.01

// DelaySampler produces one non-negative stage duration per call.
// Sampling never fails: parameter domains are checked by ValidateDist at
// scenario validation time. Each call consumes RNG state deterministically,
// so call order across a run must be stable for reproducibility.
type DelaySampler interface {
	// Sample returns a duration in days, always >= MinDelayDays.
	Sample() float64
}

// rander is the sampling surface shared by all distuv distributions.
type rander interface {
	Rand() float64
}

type flooredSampler struct {
	dist rander
}

func (s *flooredSampler) Sample() float64 {
	v := s.dist.Rand()
	if v < MinDelayDays || math.IsNaN(v) {
		return MinDelayDays
	}
	return v
}

// Supported distribution families.
const (
	FamilyNormal      = "normal"
	FamilyLognormal   = "lognormal"
	FamilyExponential = "exponential"
	FamilyGamma       = "gamma"
	FamilyTriangular  = "triangular"
	FamilyWeibull     = "weibull"
	FamilyUniform     = "uniform"
)

// requireParams checks that all required keys exist and are finite.
func requireParams(params map[string]float64, keys ...string) error {
	for _, k := range keys {
		v, ok := params[k]
		if !ok {
			return fmt.Errorf("%w: missing parameter %q", ErrInvalidDistributionParameters, k)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: parameter %q must be finite, got %f", ErrInvalidDistributionParameters, k, v)
		}
	}
	return nil
}

func requirePositive(params map[string]float64, keys ...string) error {
	for _, k := range keys {
		if params[k] <= 0 {
			return fmt.Errorf("%w: parameter %q must be positive, got %f", ErrInvalidDistributionParameters, k, params[k])
		}
	}
	return nil
}

// ValidateDist checks a DistSpec's family and parameter domains without
// constructing a sampler. Invalid specs fail fast here so that sampling
// itself cannot fail mid-run.
func ValidateDist(spec DistSpec) error {
	p := spec.Params
	switch spec.Family {
	case FamilyNormal:
		if err := requireParams(p, "mean", "sigma"); err != nil {
			return err
		}
		return requirePositive(p, "sigma")

	case FamilyLognormal:
		if err := requireParams(p, "mean", "sigma"); err != nil {
			return err
		}
		return requirePositive(p, "mean", "sigma")

	case FamilyExponential:
		if err := requireParams(p, "rate"); err != nil {
			return err
		}
		return requirePositive(p, "rate")

	case FamilyGamma:
		if err := requireParams(p, "shape", "scale"); err != nil {
			return err
		}
		return requirePositive(p, "shape", "scale")

	case FamilyTriangular:
		if err := requireParams(p, "min", "mode", "max"); err != nil {
			return err
		}
		if p["min"] > p["mode"] || p["mode"] > p["max"] || p["min"] >= p["max"] {
			return fmt.Errorf("%w: triangular needs min <= mode <= max and min < max, got (%f, %f, %f)",
				ErrInvalidDistributionParameters, p["min"], p["mode"], p["max"])
		}
		return nil

	case FamilyWeibull:
		if err := requireParams(p, "shape", "scale"); err != nil {
			return err
		}
		return requirePositive(p, "shape", "scale")

	case FamilyUniform:
		if err := requireParams(p, "min", "max"); err != nil {
			return err
		}
		if p["min"] >= p["max"] {
			return fmt.Errorf("%w: uniform needs min < max, got (%f, %f)",
				ErrInvalidDistributionParameters, p["min"], p["max"])
		}
		return nil

	default:
		return fmt.Errorf("%w: unknown family %q", ErrInvalidDistributionParameters, spec.Family)
	}
}

// NewDelaySampler builds a DelaySampler bound to src.
//
// The lognormal family is parameterized by target arithmetic mean and
// standard deviation; the underlying location/scale are derived here so
// scenario files can carry literature values directly.
func NewDelaySampler(spec DistSpec, src rand.Source) (DelaySampler, error) {
	if err := ValidateDist(spec); err != nil {
		return nil, err
	}
	p := spec.Params
	var dist rander
	switch spec.Family {
	case FamilyNormal:
		dist = distuv.Normal{Mu: p["mean"], Sigma: p["sigma"], Src: src}

	case FamilyLognormal:
		mu, sigma := lognormalParams(p["mean"], p["sigma"])
		dist = distuv.LogNormal{Mu: mu, Sigma: sigma, Src: src}

	case FamilyExponential:
		dist = distuv.Exponential{Rate: p["rate"], Src: src}

	case FamilyGamma:
		// distuv parameterizes Gamma by rate; scenario files carry scale.
		dist = distuv.Gamma{Alpha: p["shape"], Beta: 1 / p["scale"], Src: src}

	case FamilyTriangular:
		dist = distuv.NewTriangle(p["min"], p["max"], p["mode"], src)

	case FamilyWeibull:
		dist = distuv.Weibull{K: p["shape"], Lambda: p["scale"], Src: src}

	case FamilyUniform:
		dist = distuv.Uniform{Min: p["min"], Max: p["max"], Src: src}
	}
	return &flooredSampler{dist: dist}, nil
}

// lognormalParams converts a target arithmetic mean m and standard
// deviation s into the underlying normal location mu and scale sigma:
//
//	mu    = ln(m² / sqrt(s² + m²))
//	sigma = sqrt(ln(1 + s²/m²))
func lognormalParams(m, s float64) (mu, sigma float64) {
	mu = math.Log(m * m / math.Sqrt(s*s+m*m))
	sigma = math.Sqrt(math.Log(1 + (s*s)/(m*m)))
	return mu, sigma
}
