package bus

import (
	"sync"

	"github.com/jkaberg/vertiv-boss/internal/check"
)

// Bus provides fan-out pub/sub semantics for *check.Report* messages.
// Each Subscribe call gets its own channel that receives every future
// publication. Past messages are not replayed. The implementation is safe for
// concurrent publishers and subscribers.
type Bus struct {
	mu          sync.RWMutex
	subscribers []chan *check.Report
}

// New creates a ready-to-use Bus.
func New() *Bus { return &Bus{} }

// Subscribe returns a read-only channel that will receive all future reports.
func (b *Bus) Subscribe() <-chan *check.Report {
	ch := make(chan *check.Report, 1) // small buffer avoids blocking
	b.mu.Lock()
	b.subscribers = append(b.subscribers, ch)
	b.mu.Unlock()
	return ch
}

// Publish delivers the report to all subscribers in a best-effort,
// non-blocking way. A subscriber whose buffer is full skips this report and
// receives the next one.
func (b *Bus) Publish(r *check.Report) {
	b.mu.RLock()
	subs := make([]chan *check.Report, len(b.subscribers))
	copy(subs, b.subscribers)
	b.mu.RUnlock()

	for _, ch := range subs {
		select {
		case ch <- r:
		default:
			continue
		}
	}
}

// Close closes every subscriber channel. Publish must not be called after
// Close.
func (b *Bus) Close() {
	b.mu.Lock()
	for _, ch := range b.subscribers {
		close(ch)
	}
	b.subscribers = nil
	b.mu.Unlock()
}
