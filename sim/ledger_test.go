package sim

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/careflow-sim/careflow-sim/sim/internal/testutil"
)

func testLedger() *Ledger {
	mkCase := func(id int, stages []StageRecord) CaseRecord {
		var total float64
		for _, st := range stages {
			total += st.Duration + st.Wait
		}
		return CaseRecord{
			ID:           id,
			ArrivalTime:  float64(id) * 0.01,
			TotalLatency: total,
			Stages:       stages,
		}
	}
	return &Ledger{
		Scenario: "test",
		Seed:     1,
		Cases: []CaseRecord{
			mkCase(0, []StageRecord{{Name: "review", Duration: 2.0, Wait: 0.0}}),
			mkCase(1, []StageRecord{{Name: "review", Duration: 3.0, Wait: 1.0}}),
			mkCase(2, []StageRecord{{Name: "review", Duration: 4.0, Wait: 2.0}}),
			mkCase(3, []StageRecord{{Name: "review", Duration: 5.0, Wait: 3.0}}),
		},
	}
}

func TestLedgerLatencies(t *testing.T) {
	got := testLedger().Latencies()
	assert.Equal(t, []float64{2.0, 4.0, 6.0, 8.0}, got)
}

func TestSummarizeStatistics(t *testing.T) {
	s := testLedger().Summarize()

	assert.Equal(t, 4, s.Count)
	testutil.AssertFloat64Equal(t, "mean latency", 5.0, s.MeanLatency, 1e-9)
	testutil.AssertFloat64Equal(t, "mean wait", 1.5, s.MeanWait, 1e-9)
	assert.Equal(t, 2.0, s.Min)
	assert.Equal(t, 8.0, s.Max)
	assert.GreaterOrEqual(t, s.P90, s.Median)

	if len(s.Stages) != 1 || s.Stages[0].Name != "review" {
		t.Fatalf("stage summaries %v", s.Stages)
	}
	testutil.AssertFloat64Equal(t, "stage duration", 3.5, s.Stages[0].MeanDuration, 1e-9)
	testutil.AssertFloat64Equal(t, "stage wait", 1.5, s.Stages[0].MeanWait, 1e-9)
}

func TestSummarizeEmptyLedger(t *testing.T) {
	s := (&Ledger{Scenario: "empty"}).Summarize()
	assert.Equal(t, 0, s.Count)
	assert.Zero(t, s.MeanLatency)
}

func TestSummarizeSingleCaseHasZeroStdDev(t *testing.T) {
	l := &Ledger{Cases: []CaseRecord{{ID: 0, TotalLatency: 3.0}}}
	s := l.Summarize()
	assert.Equal(t, 1, s.Count)
	assert.Zero(t, s.StdDev)
	assert.Equal(t, 3.0, s.Min)
	assert.Equal(t, 3.0, s.Max)
}

func TestSummaryPrint(t *testing.T) {
	var buf bytes.Buffer
	testLedger().Summarize().Print(&buf)

	out := buf.String()
	for _, want := range []string{"cases:", "mean latency:", "p90:", "review"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary output missing %q:\n%s", want, out)
		}
	}
}
