package scenario

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSource(seed uint64) rand.Source {
	return rand.NewPCG(seed, 0)
}

func TestValidateDistRejectsBadParams(t *testing.T) {
	cases := []struct {
		name string
		spec DistSpec
	}{
		{"unknown family", DistSpec{Family: "cauchy", Params: map[string]float64{"x": 1}}},
		{"normal missing sigma", DistSpec{Family: FamilyNormal, Params: map[string]float64{"mean": 1}}},
		{"normal zero sigma", DistSpec{Family: FamilyNormal, Params: map[string]float64{"mean": 1, "sigma": 0}}},
		{"lognormal negative mean", DistSpec{Family: FamilyLognormal, Params: map[string]float64{"mean": -2, "sigma": 0.5}}},
		{"exponential zero rate", DistSpec{Family: FamilyExponential, Params: map[string]float64{"rate": 0}}},
		{"gamma negative scale", DistSpec{Family: FamilyGamma, Params: map[string]float64{"shape": 2, "scale": -1}}},
		{"triangular mode below min", DistSpec{Family: FamilyTriangular, Params: map[string]float64{"min": 2, "mode": 1, "max": 5}}},
		{"triangular degenerate", DistSpec{Family: FamilyTriangular, Params: map[string]float64{"min": 3, "mode": 3, "max": 3}}},
		{"weibull zero shape", DistSpec{Family: FamilyWeibull, Params: map[string]float64{"shape": 0, "scale": 28}}},
		{"uniform inverted", DistSpec{Family: FamilyUniform, Params: map[string]float64{"min": 5, "max": 1}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateDist(tc.spec)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidDistributionParameters), "got %v", err)
		})
	}
}

func TestValidateDistAcceptsAllFamilies(t *testing.T) {
	cases := []DistSpec{
		{Family: FamilyNormal, Params: map[string]float64{"mean": 10.5, "sigma": 2.1}},
		{Family: FamilyLognormal, Params: map[string]float64{"mean": 2.0, "sigma": 1.0}},
		{Family: FamilyExponential, Params: map[string]float64{"rate": 0.125}},
		{Family: FamilyGamma, Params: map[string]float64{"shape": 2.5, "scale": 1.2}},
		{Family: FamilyTriangular, Params: map[string]float64{"min": 1, "mode": 2, "max": 5}},
		{Family: FamilyWeibull, Params: map[string]float64{"shape": 1.8, "scale": 28}},
		{Family: FamilyUniform, Params: map[string]float64{"min": 0.1, "max": 0.2}},
	}
	for _, spec := range cases {
		if err := ValidateDist(spec); err != nil {
			t.Errorf("family %s: unexpected error: %v", spec.Family, err)
		}
	}
}

func TestSamplerFloorsAtMinDelay(t *testing.T) {
	// A normal centered far below zero samples negative almost surely;
	// every draw must still come back at the floor.
	sampler, err := NewDelaySampler(DistSpec{
		Family: FamilyNormal,
		Params: map[string]float64{"mean": -100, "sigma": 1},
	}, testSource(1))
	require.NoError(t, err)

	for i := 0; i < 1000; i++ {
		if got := sampler.Sample(); got != MinDelayDays {
			t.Fatalf("draw %d: got %f, want floor %f", i, got, MinDelayDays)
		}
	}
}

func TestSamplerAlwaysPositive(t *testing.T) {
	specs := []DistSpec{
		{Family: FamilyNormal, Params: map[string]float64{"mean": 0.05, "sigma": 0.5}},
		{Family: FamilyLognormal, Params: map[string]float64{"mean": 2.0, "sigma": 1.0}},
		{Family: FamilyExponential, Params: map[string]float64{"rate": 8}},
		{Family: FamilyGamma, Params: map[string]float64{"shape": 0.5, "scale": 0.1}},
		{Family: FamilyWeibull, Params: map[string]float64{"shape": 0.3, "scale": 0.05}},
	}
	for _, spec := range specs {
		sampler, err := NewDelaySampler(spec, testSource(2))
		require.NoError(t, err, spec.Family)
		for i := 0; i < 5000; i++ {
			if got := sampler.Sample(); got < MinDelayDays {
				t.Fatalf("%s draw %d: %f below floor", spec.Family, i, got)
			}
		}
	}
}

func TestUniformSamplesWithinBounds(t *testing.T) {
	sampler, err := NewDelaySampler(DistSpec{
		Family: FamilyUniform,
		Params: map[string]float64{"min": 3.2, "max": 4.8},
	}, testSource(3))
	require.NoError(t, err)

	for i := 0; i < 2000; i++ {
		v := sampler.Sample()
		if v < 3.2 || v > 4.8 {
			t.Fatalf("draw %d: %f outside [3.2, 4.8]", i, v)
		}
	}
}

// The lognormal family is parameterized by arithmetic mean, not the
// underlying location. The empirical mean of many draws must track the
// requested mean.
func TestLognormalArithmeticMeanParameterization(t *testing.T) {
	const wantMean = 3.0
	sampler, err := NewDelaySampler(DistSpec{
		Family: FamilyLognormal,
		Params: map[string]float64{"mean": wantMean, "sigma": 1.0},
	}, testSource(4))
	require.NoError(t, err)

	const n = 200000
	var sum float64
	for i := 0; i < n; i++ {
		sum += sampler.Sample()
	}
	got := sum / n
	assert.InEpsilon(t, wantMean, got, 0.02, "empirical mean %f", got)
}

// Shrinking a family's scale parameter must not raise its sampled mean.
func TestSmallerScaleDoesNotIncreaseMeanDuration(t *testing.T) {
	empiricalMean := func(spec DistSpec, seed uint64) float64 {
		sampler, err := NewDelaySampler(spec, testSource(seed))
		require.NoError(t, err)
		const n = 50000
		var sum float64
		for i := 0; i < n; i++ {
			sum += sampler.Sample()
		}
		return sum / n
	}

	cases := []struct {
		name    string
		larger  DistSpec
		smaller DistSpec
	}{
		{"normal mean",
			DistSpec{Family: FamilyNormal, Params: map[string]float64{"mean": 10, "sigma": 1}},
			DistSpec{Family: FamilyNormal, Params: map[string]float64{"mean": 6, "sigma": 1}}},
		{"gamma scale",
			DistSpec{Family: FamilyGamma, Params: map[string]float64{"shape": 2.5, "scale": 1.2}},
			DistSpec{Family: FamilyGamma, Params: map[string]float64{"shape": 2.5, "scale": 0.6}}},
		{"weibull scale",
			DistSpec{Family: FamilyWeibull, Params: map[string]float64{"shape": 1.8, "scale": 28}},
			DistSpec{Family: FamilyWeibull, Params: map[string]float64{"shape": 1.8, "scale": 14}}},
		{"lognormal mean",
			DistSpec{Family: FamilyLognormal, Params: map[string]float64{"mean": 5, "sigma": 1}},
			DistSpec{Family: FamilyLognormal, Params: map[string]float64{"mean": 2, "sigma": 1}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			big := empiricalMean(tc.larger, 9)
			small := empiricalMean(tc.smaller, 9)
			if small > big {
				t.Errorf("smaller scale sampled larger mean: %f > %f", small, big)
			}
		})
	}
}

func TestSamplerDeterministicPerSource(t *testing.T) {
	spec := DistSpec{Family: FamilyGamma, Params: map[string]float64{"shape": 2.5, "scale": 1.2}}
	a, err := NewDelaySampler(spec, testSource(7))
	require.NoError(t, err)
	b, err := NewDelaySampler(spec, testSource(7))
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		if av, bv := a.Sample(), b.Sample(); av != bv {
			t.Fatalf("draw %d diverged: %f vs %f", i, av, bv)
		}
	}
}
