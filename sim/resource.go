package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Ticket represents one held unit of a resource pool's capacity.
// A ticket is released exactly once; releasing twice is a programming
// error.
type Ticket struct {
	pool     *ResourcePool
	released bool
}

// waiter is a suspended acquire: the continuation runs when a slot is
// granted. seq preserves arrival order among equal priorities.
type waiter struct {
	priority   PriorityClass
	seq        uint64
	enqueuedAt float64
	grant      func(now float64, tk *Ticket)
}

// ResourcePool is a finite shared capacity (e.g. imaging slots) with a
// priority-ordered waiting queue. Requests are granted immediately while
// free capacity exists; otherwise they suspend until Release hands their
// continuation a slot. Grants are never revoked (non-preemptive).
//
// All mutation happens synchronously inside one kernel execution step, so
// no other process can observe a transient holder count.
type ResourcePool struct {
	Name     string
	Capacity int

	held     int
	peakHeld int
	nextSeq  uint64
	waiters  []waiter
}

// NewResourcePool creates a pool. Zero or negative capacity is a
// configuration error.
func NewResourcePool(name string, capacity int) (*ResourcePool, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("resource %q: capacity must be positive, got %d", name, capacity)
	}
	return &ResourcePool{Name: name, Capacity: capacity}, nil
}

// Acquire requests one unit at the given priority. If free capacity
// exists the grant continuation runs synchronously at now; otherwise the
// request joins the wait queue ordered by (priority descending, arrival
// ascending) and the continuation runs when Release dispatches it.
func (p *ResourcePool) Acquire(now float64, priority PriorityClass, grant func(now float64, tk *Ticket)) {
	if p.held < p.Capacity {
		p.grantSlot(now, grant)
		return
	}
	p.nextSeq++
	p.waiters = append(p.waiters, waiter{
		priority:   priority,
		seq:        p.nextSeq,
		enqueuedAt: now,
		grant:      grant,
	})
	logrus.Debugf("[t=%0.4f] %s at capacity (%d/%d), queued priority=%s depth=%d",
		now, p.Name, p.held, p.Capacity, priority, len(p.waiters))
}

// Release frees one unit and, if waiters exist, grants it to the highest
// priority waiter (FIFO among equals), resuming its continuation at the
// current virtual time.
func (p *ResourcePool) Release(now float64, tk *Ticket) {
	if tk == nil || tk.pool != p {
		panic(fmt.Sprintf("resource %q: release of foreign ticket", p.Name))
	}
	if tk.released {
		panic(fmt.Sprintf("resource %q: double release", p.Name))
	}
	tk.released = true
	p.held--
	if p.held < 0 {
		panic(fmt.Sprintf("resource %q: negative holder count", p.Name))
	}
	if len(p.waiters) == 0 {
		return
	}
	next := p.takeNextWaiter()
	p.grantSlot(now, next.grant)
}

// grantSlot increments the holder count, checks the capacity invariant,
// and runs the continuation with a fresh ticket.
func (p *ResourcePool) grantSlot(now float64, grant func(now float64, tk *Ticket)) {
	p.held++
	if p.held > p.Capacity {
		panic(fmt.Sprintf("resource %q: holder count %d exceeds capacity %d", p.Name, p.held, p.Capacity))
	}
	if p.held > p.peakHeld {
		p.peakHeld = p.held
	}
	grant(now, &Ticket{pool: p})
}

// takeNextWaiter removes and returns the waiter with the highest priority,
// breaking ties by arrival sequence. Linear scan: the queue mutates only
// here and in Acquire, and relative order of the rest is preserved.
func (p *ResourcePool) takeNextWaiter() waiter {
	best := 0
	for i := 1; i < len(p.waiters); i++ {
		w, b := p.waiters[i], p.waiters[best]
		if w.priority > b.priority || (w.priority == b.priority && w.seq < b.seq) {
			best = i
		}
	}
	next := p.waiters[best]
	p.waiters = append(p.waiters[:best], p.waiters[best+1:]...)
	return next
}

// Held reports the current holder count.
func (p *ResourcePool) Held() int {
	return p.held
}

// PeakHeld reports the maximum concurrent holder count observed.
func (p *ResourcePool) PeakHeld() int {
	return p.peakHeld
}

// Waiting reports the current wait-queue depth.
func (p *ResourcePool) Waiting() int {
	return len(p.waiters)
}
