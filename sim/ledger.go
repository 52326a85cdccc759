package sim

import (
	"fmt"
	"io"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Ledger is the completed-case record of one scenario run, ordered by
// case arrival (case ID). For a fixed (scenario, caseCount, seed) triple
// the ledger is bit-identical across runs.
type Ledger struct {
	Scenario string
	Seed     int64
	Cases    []CaseRecord
}

// Latencies returns the end-to-end latency of every case, in arrival
// order, in days.
func (l *Ledger) Latencies() []float64 {
	out := make([]float64, len(l.Cases))
	for i, c := range l.Cases {
		out[i] = c.TotalLatency
	}
	return out
}

// StageSummary aggregates one stage across the ledger.
type StageSummary struct {
	Name         string
	MeanDuration float64
	MeanWait     float64
}

// Summary holds descriptive statistics over a ledger's latencies, all in
// days.
type Summary struct {
	Count       int
	MeanLatency float64
	StdDev      float64
	Median      float64
	P90         float64
	Min         float64
	Max         float64
	MeanWait    float64
	Stages      []StageSummary
}

// Summarize computes descriptive statistics over the ledger.
func (l *Ledger) Summarize() Summary {
	n := len(l.Cases)
	if n == 0 {
		return Summary{}
	}

	latencies := l.Latencies()
	sorted := make([]float64, n)
	copy(sorted, latencies)
	sort.Float64s(sorted)

	waits := make([]float64, n)
	for i, c := range l.Cases {
		waits[i] = c.TotalWait()
	}

	s := Summary{
		Count:       n,
		MeanLatency: stat.Mean(latencies, nil),
		Median:      stat.Quantile(0.5, stat.Empirical, sorted, nil),
		P90:         stat.Quantile(0.9, stat.Empirical, sorted, nil),
		Min:         sorted[0],
		Max:         sorted[n-1],
		MeanWait:    stat.Mean(waits, nil),
	}
	if n > 1 {
		s.StdDev = stat.StdDev(latencies, nil)
	}
	s.Stages = l.stageSummaries()
	return s
}

// stageSummaries averages duration and wait per stage, in first-seen
// stage order.
func (l *Ledger) stageSummaries() []StageSummary {
	type acc struct {
		duration float64
		wait     float64
		count    int
	}
	var order []string
	byName := make(map[string]*acc)
	for _, c := range l.Cases {
		for _, st := range c.Stages {
			a, ok := byName[st.Name]
			if !ok {
				a = &acc{}
				byName[st.Name] = a
				order = append(order, st.Name)
			}
			a.duration += st.Duration
			a.wait += st.Wait
			a.count++
		}
	}
	out := make([]StageSummary, 0, len(order))
	for _, name := range order {
		a := byName[name]
		out = append(out, StageSummary{
			Name:         name,
			MeanDuration: a.duration / float64(a.count),
			MeanWait:     a.wait / float64(a.count),
		})
	}
	return out
}

// Print writes a human-readable summary table.
func (s Summary) Print(w io.Writer) {
	fmt.Fprintf(w, "cases:        %d\n", s.Count)
	fmt.Fprintf(w, "mean latency: %9.3f days\n", s.MeanLatency)
	fmt.Fprintf(w, "std dev:      %9.3f days\n", s.StdDev)
	fmt.Fprintf(w, "median:       %9.3f days\n", s.Median)
	fmt.Fprintf(w, "p90:          %9.3f days\n", s.P90)
	fmt.Fprintf(w, "min / max:    %9.3f / %.3f days\n", s.Min, s.Max)
	fmt.Fprintf(w, "mean wait:    %9.3f days\n", s.MeanWait)
	if len(s.Stages) > 0 {
		fmt.Fprintf(w, "stages:\n")
		for _, st := range s.Stages {
			fmt.Fprintf(w, "  %-24s duration %8.3f  wait %8.3f\n", st.Name, st.MeanDuration, st.MeanWait)
		}
	}
}
