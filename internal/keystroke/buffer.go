package keystroke

import "github.com/rossmatican/thoughtleaderai/internal/model"

// DefaultCapacity matches the analysis window.
const DefaultCapacity = Window

// Buffer is a fixed-capacity ring of keystroke events. The oldest event is
// dropped once the buffer is full. A Buffer is not safe for concurrent use.
type Buffer struct {
	events []model.KeystrokeEvent
	start  int
	size   int
	total  int
	lastAt int64
}

// NewBuffer creates a ring holding at most capacity events.
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{events: make([]model.KeystrokeEvent, capacity)}
}

// Record stamps a key press at now (milliseconds) and appends it. The delta
// is measured from the previous recorded event; the first delta is 0 and a
// clock that moved backwards yields 0.
func (b *Buffer) Record(key string, now int64, isBackspace bool, contentLength int) model.KeystrokeEvent {
	var delta int64
	if b.total > 0 {
		delta = now - b.lastAt
		if delta < 0 {
			delta = 0
		}
	}
	ev := model.KeystrokeEvent{
		Key:           key,
		Timestamp:     now,
		TimeDelta:     delta,
		IsBackspace:   isBackspace,
		ContentLength: contentLength,
	}
	b.Push(ev)
	return ev
}

// Push appends an event as given.
func (b *Buffer) Push(ev model.KeystrokeEvent) {
	capacity := len(b.events)
	if b.size < capacity {
		b.events[(b.start+b.size)%capacity] = ev
		b.size++
	} else {
		b.events[b.start] = ev
		b.start = (b.start + 1) % capacity
	}
	b.total++
	if ev.Timestamp > b.lastAt || b.total == 1 {
		b.lastAt = ev.Timestamp
	}
}

// Snapshot copies the buffered events from oldest to newest.
func (b *Buffer) Snapshot() []model.KeystrokeEvent {
	out := make([]model.KeystrokeEvent, b.size)
	for i := 0; i < b.size; i++ {
		out[i] = b.events[(b.start+i)%len(b.events)]
	}
	return out
}

// Len returns the number of buffered events.
func (b *Buffer) Len() int {
	return b.size
}

// Total returns the number of events ever pushed.
func (b *Buffer) Total() int {
	return b.total
}
