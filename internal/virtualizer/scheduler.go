package virtualizer

// Scheduler defers work to the host's next frame. Implementations must not run fn synchronously inside Schedule
type Scheduler interface {
	Schedule(fn func())
}

// FrameQueue is a Scheduler whose work runs when the host calls Flush, typically once per rendered frame
type FrameQueue struct {
	queue []func()
}

// NewFrameQueue creates an empty FrameQueue
func NewFrameQueue() *FrameQueue {
	return &FrameQueue{}
}

// Schedule queues fn for the next Flush
func (q *FrameQueue) Schedule(fn func()) {
	if fn == nil {
		return
	}
	q.queue = append(q.queue, fn)
}

// Pending returns true if work is waiting for the next Flush
func (q *FrameQueue) Pending() bool {
	return len(q.queue) > 0
}

// Flush runs everything queued before the call and returns how many functions ran.
// Work scheduled while flushing waits for the following Flush
func (q *FrameQueue) Flush() int {
	batch := q.queue
	q.queue = nil
	for _, fn := range batch {
		fn()
	}
	return len(batch)
}

// assert FrameQueue implements Scheduler
var _ Scheduler = (*FrameQueue)(nil)
