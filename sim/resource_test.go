package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewResourcePoolRejectsNonPositiveCapacity(t *testing.T) {
	for _, capacity := range []int{0, -1} {
		if _, err := NewResourcePool("x", capacity); err == nil {
			t.Errorf("capacity %d: expected error", capacity)
		}
	}
}

func TestAcquireGrantsImmediatelyUnderCapacity(t *testing.T) {
	pool, err := NewResourcePool("slots", 2)
	require.NoError(t, err)

	granted := 0
	for i := 0; i < 2; i++ {
		pool.Acquire(0, PriorityRoutine, func(now float64, tk *Ticket) {
			granted++
		})
	}
	assert.Equal(t, 2, granted)
	assert.Equal(t, 2, pool.Held())
	assert.Equal(t, 0, pool.Waiting())
}

func TestAcquireQueuesAtCapacity(t *testing.T) {
	pool, err := NewResourcePool("slots", 1)
	require.NoError(t, err)

	var first *Ticket
	pool.Acquire(0, PriorityRoutine, func(now float64, tk *Ticket) { first = tk })
	require.NotNil(t, first)

	queuedRan := false
	pool.Acquire(0, PriorityRoutine, func(now float64, tk *Ticket) { queuedRan = true })
	assert.False(t, queuedRan)
	assert.Equal(t, 1, pool.Waiting())

	pool.Release(1.0, first)
	assert.True(t, queuedRan)
	assert.Equal(t, 1, pool.Held())
	assert.Equal(t, 0, pool.Waiting())
}

func TestReleaseDispatchesByPriorityThenArrival(t *testing.T) {
	pool, err := NewResourcePool("slots", 1)
	require.NoError(t, err)

	var held *Ticket
	pool.Acquire(0, PriorityRoutine, func(now float64, tk *Ticket) { held = tk })

	var order []string
	enqueue := func(name string, pri PriorityClass) {
		pool.Acquire(0, pri, func(now float64, tk *Ticket) {
			order = append(order, name)
			held = tk
		})
	}
	enqueue("routine-1", PriorityRoutine)
	enqueue("urgent", PriorityUrgent)
	enqueue("routine-2", PriorityRoutine)
	enqueue("high", PriorityHigh)

	for i := 0; i < 4; i++ {
		pool.Release(float64(i+1), held)
	}
	assert.Equal(t, []string{"urgent", "high", "routine-1", "routine-2"}, order)
}

func TestGrantsAreNotPreempted(t *testing.T) {
	pool, err := NewResourcePool("slots", 1)
	require.NoError(t, err)

	var held *Ticket
	pool.Acquire(0, PriorityRoutine, func(now float64, tk *Ticket) { held = tk })

	// An urgent request arriving later must wait; the routine holder keeps
	// its slot until it releases.
	urgentRan := false
	pool.Acquire(0.5, PriorityUrgent, func(now float64, tk *Ticket) { urgentRan = true })
	assert.False(t, urgentRan)
	assert.Equal(t, 1, pool.Held())

	pool.Release(2.0, held)
	assert.True(t, urgentRan)
}

func TestDoubleReleasePanics(t *testing.T) {
	pool, err := NewResourcePool("slots", 1)
	require.NoError(t, err)

	var held *Ticket
	pool.Acquire(0, PriorityRoutine, func(now float64, tk *Ticket) { held = tk })
	pool.Release(1.0, held)

	assert.Panics(t, func() { pool.Release(2.0, held) })
}

func TestPeakHeldTracksHighWater(t *testing.T) {
	pool, err := NewResourcePool("slots", 3)
	require.NoError(t, err)

	tickets := make([]*Ticket, 0, 3)
	for i := 0; i < 3; i++ {
		pool.Acquire(0, PriorityRoutine, func(now float64, tk *Ticket) {
			tickets = append(tickets, tk)
		})
	}
	for _, tk := range tickets {
		pool.Release(1.0, tk)
	}
	assert.Equal(t, 3, pool.PeakHeld())
	assert.Equal(t, 0, pool.Held())
}
