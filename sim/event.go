package sim

// Event is a pending resumption in the kernel: a (virtual time, sequence id,
// continuation) triple. Ordering is by time, ties broken by the sequence id
// assigned at creation. Case priority never participates; it affects only
// resource queueing.
type Event interface {
	Timestamp() float64
	EventID() uint64
	Execute(k *Kernel)
}

// BaseEvent provides the common timestamp and sequence id fields.
type BaseEvent struct {
	timestamp float64
	eventID   uint64
}

func (e *BaseEvent) Timestamp() float64 {
	return e.timestamp
}

func (e *BaseEvent) EventID() uint64 {
	return e.eventID
}

// callbackEvent resumes an arbitrary continuation. ScheduleAfter wraps
// suspended-process continuations in these.
type callbackEvent struct {
	BaseEvent
	fn func(now float64)
}

func (e *callbackEvent) Execute(_ *Kernel) {
	e.fn(e.timestamp)
}
