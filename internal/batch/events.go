package batch

import "time"

// EventType names a progress event. Every target that starts reaches exactly
// one of cache_hit, failed or complete; skipped targets emit no events.
type EventType string

const (
	EventStart        EventType = "start"
	EventTargetStart  EventType = "database:start"
	EventCacheHit     EventType = "database:cache_hit"
	EventRetry        EventType = "database:retry"
	EventTargetFailed EventType = "database:failed"
	EventTargetDone   EventType = "database:complete"
	EventComplete     EventType = "complete"
)

// Event is one progress notification. Target is nil for batch-level events;
// Attempt and Err are set on retry and failure events.
type Event struct {
	Type    EventType
	Target  *Target
	Attempt int
	Err     string
	Time    time.Time
}

// EventSink receives progress events. Sinks are called from worker
// goroutines and must not block.
type EventSink func(Event)

// ChannelSink returns a sink forwarding events to a channel of the given
// capacity. When the channel is full the event is dropped, so a slow
// consumer never stalls the batch.
func ChannelSink(size int) (EventSink, <-chan Event) {
	ch := make(chan Event, size)
	sink := func(ev Event) {
		select {
		case ch <- ev:
		default:
		}
	}
	return sink, ch
}
