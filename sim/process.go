package sim

import (
	"github.com/sirupsen/logrus"

	"github.com/careflow-sim/careflow-sim/scenario"
)

// boundStage is a stage definition resolved against the running scenario:
// its sampler is seeded, multipliers are concrete, and the resource name
// is bound to a live pool (nil when the stage is uncontended).
type boundStage struct {
	name           string
	sampler        scenario.DelaySampler
	multiplier     float64
	integratedMult float64
	leadDays       float64
	pool           *ResourcePool
}

// caseProcess drives one case through the stage sequence: for each stage,
// acquire the bound resource (if any), elapse the sampled service time,
// release, record, advance. All steps run as kernel events; the process
// itself holds no goroutine.
type caseProcess struct {
	k      *Kernel
	c      *Case
	stages []boundStage
	idx    int

	waitStart float64
	ticket    *Ticket

	done func(c *Case, now float64)
}

// start begins the pipeline at the case's arrival time.
func (p *caseProcess) start(now float64) {
	p.c.ArrivalTime = now
	p.beginStage(now)
}

// beginStage either requests the stage's resource or, for uncontended
// stages, runs the service time directly.
func (p *caseProcess) beginStage(now float64) {
	if p.idx >= len(p.stages) {
		p.complete(now)
		return
	}
	st := p.stages[p.idx]
	if st.pool == nil {
		p.runStage(now, 0)
		return
	}
	p.c.State = CaseStateQueued
	p.waitStart = now
	st.pool.Acquire(now, p.c.Priority, func(grantedAt float64, tk *Ticket) {
		p.ticket = tk
		p.runStage(grantedAt, grantedAt-p.waitStart)
	})
}

// runStage samples the effective service time and schedules completion.
// The recorded duration is the sampled base value scaled by the stage's
// multiplier (the integrated-record variant when the case carries one),
// reduced by any lead-time overlap with the preceding stage, and floored
// so virtual time always advances.
func (p *caseProcess) runStage(now float64, waited float64) {
	st := p.stages[p.idx]
	p.c.State = CaseStateInStage

	d := st.sampler.Sample()
	mult := st.multiplier
	if p.c.HasIntegratedRecord && st.integratedMult > 0 {
		mult = st.integratedMult
	}
	d *= mult
	if p.idx > 0 && st.leadDays > 0 {
		d -= st.leadDays
	}
	if d < scenario.MinDelayDays {
		d = scenario.MinDelayDays
	}

	logrus.Debugf("[t=%0.4f] case %d stage %q starts: duration=%0.4f waited=%0.4f",
		now, p.c.ID, st.name, d, waited)

	p.k.mustScheduleAfter(d, func(doneAt float64) {
		p.stageDone(doneAt, d, waited)
	})
}

// stageDone releases the stage's resource, records the stage, and moves
// to the next one at the same instant.
func (p *caseProcess) stageDone(now float64, duration, waited float64) {
	st := p.stages[p.idx]
	if p.ticket != nil {
		st.pool.Release(now, p.ticket)
		p.ticket = nil
	}
	p.c.Stages = append(p.c.Stages, StageRecord{Name: st.name, Duration: duration, Wait: waited})
	p.idx++
	p.beginStage(now)
}

// complete finalizes latency accounting and hands the case to the runner.
func (p *caseProcess) complete(now float64) {
	p.c.State = CaseStateCompleted
	p.c.CompletionTime = now
	p.c.TotalLatency = now - p.c.ArrivalTime
	logrus.Debugf("[t=%0.4f] case %d completed, latency=%0.4f days", now, p.c.ID, p.c.TotalLatency)
	p.done(p.c, now)
}
