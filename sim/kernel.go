package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// DefaultMaxEvents bounds kernels constructed with maxEvents <= 0.
const DefaultMaxEvents = 1 << 20

// Kernel is the discrete-event core: it advances a single global virtual
// clock (in days) and resumes suspended case processes in deterministic
// order. There is no parallel execution; concurrency is purely logical.
type Kernel struct {
	// Clock is the current virtual time in days. Monotonically
	// non-decreasing; never moves backward.
	Clock float64

	queue       *EventHeap
	nextEventID uint64
	maxEvents   int
	executed    int
}

// NewKernel creates a kernel with the given event safety bound.
// maxEvents <= 0 selects DefaultMaxEvents.
func NewKernel(maxEvents int) *Kernel {
	if maxEvents <= 0 {
		maxEvents = DefaultMaxEvents
	}
	return &Kernel{
		queue:     NewEventHeap(),
		maxEvents: maxEvents,
	}
}

// Now returns the current virtual time in days.
func (k *Kernel) Now() float64 {
	return k.Clock
}

// newEventID generates the next creation-sequence id. Per-kernel, so two
// kernels built from the same seed replay identically.
func (k *Kernel) newEventID() uint64 {
	k.nextEventID++
	return k.nextEventID
}

// Schedule pushes an event onto the kernel's queue.
func (k *Kernel) Schedule(e Event) {
	k.queue.Schedule(e)
}

// ScheduleAfter enqueues a continuation at Clock + delay.
// A negative delay is a programming error and fails with ErrInvalidDelay.
func (k *Kernel) ScheduleAfter(delay float64, fn func(now float64)) error {
	if delay < 0 {
		return fmt.Errorf("%w: %f", ErrInvalidDelay, delay)
	}
	k.Schedule(&callbackEvent{
		BaseEvent: BaseEvent{timestamp: k.Clock + delay, eventID: k.newEventID()},
		fn:        fn,
	})
	return nil
}

// mustScheduleAfter is ScheduleAfter for internal call sites whose delays
// are floored non-negative by construction.
func (k *Kernel) mustScheduleAfter(delay float64, fn func(now float64)) {
	if err := k.ScheduleAfter(delay, fn); err != nil {
		panic(err)
	}
}

// Run pops and executes events in (time, sequence) order until the queue
// drains. It fails with ErrSchedulerStalled once the event safety bound is
// exceeded, which indicates a configuration that can never complete.
func (k *Kernel) Run() error {
	for k.queue.Len() > 0 {
		ev := k.queue.PopNext()

		if ev.Timestamp() < k.Clock {
			panic(fmt.Sprintf("clock went backwards: %f < %f", ev.Timestamp(), k.Clock))
		}
		k.Clock = ev.Timestamp()

		k.executed++
		if k.executed > k.maxEvents {
			return fmt.Errorf("%w: exceeded %d events at t=%.4f with %d pending",
				ErrSchedulerStalled, k.maxEvents, k.Clock, k.queue.Len())
		}

		logrus.Debugf("[t=%0.4f] executing %T (seq %d)", k.Clock, ev, ev.EventID())
		ev.Execute(k)
	}
	logrus.Debugf("[t=%0.4f] event queue drained after %d events", k.Clock, k.executed)
	return nil
}

// Executed reports how many events have run, for stall diagnostics.
func (k *Kernel) Executed() int {
	return k.executed
}
