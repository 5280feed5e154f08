package mailbox

import "context"

// Mailbox is a single-slot buffer where the latest value always wins.
// It is NOT a queue: a Put while a value is pending replaces it, so a slow
// consumer sees one coalesced request instead of a backlog.
type Mailbox[T any] struct {
	slot chan T
}

// New creates an empty mailbox.
func New[T any]() *Mailbox[T] {
	return &Mailbox[T]{slot: make(chan T, 1)}
}

// Put stores v, replacing any pending value. It never blocks.
func (m *Mailbox[T]) Put(v T) {
	for {
		select {
		case m.slot <- v:
			return
		default:
		}
		select {
		case <-m.slot:
		default:
		}
	}
}

// Take blocks until a value is available or ctx is done.
func (m *Mailbox[T]) Take(ctx context.Context) (T, bool) {
	select {
	case v := <-m.slot:
		return v, true
	case <-ctx.Done():
		var zero T
		return zero, false
	}
}

// HasJob reports whether a value is currently waiting.
func (m *Mailbox[T]) HasJob() bool {
	return len(m.slot) > 0
}
