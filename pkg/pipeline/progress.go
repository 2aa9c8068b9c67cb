package pipeline

import (
	"sync"
	"time"
)

// DefaultProgressCapacity bounds the in-memory progress log.
const DefaultProgressCapacity = 256

// Event is one progress notification emitted while a run executes.
type Event struct {
	Time       time.Time `json:"time"`
	Stage      string    `json:"stage"`
	Collection string    `json:"collection,omitempty"`
	Message    string    `json:"message"`
}

const (
	StageRunStarted         = "run_started"
	StageCollectionStarted  = "collection_started"
	StageCollectionFinished = "collection_finished"
	StageCollectionFailed   = "collection_failed"
	StageRunFinished        = "run_finished"
)

// progressLog is a bounded event log. When full, the oldest event is
// evicted. An optional subscriber sees every event as it is recorded,
// including ones that later fall out of the buffer.
type progressLog struct {
	mu         sync.Mutex
	capacity   int
	events     []Event
	subscriber func(Event)
}

func newProgressLog(capacity int) *progressLog {
	if capacity <= 0 {
		capacity = DefaultProgressCapacity
	}
	return &progressLog{capacity: capacity}
}

func (p *progressLog) record(stage, collection, message string) {
	e := Event{Time: time.Now(), Stage: stage, Collection: collection, Message: message}

	p.mu.Lock()
	if len(p.events) == p.capacity {
		p.events = append(p.events[:0], p.events[1:]...)
		p.events = p.events[:p.capacity-1]
	}
	p.events = append(p.events, e)
	fn := p.subscriber
	p.mu.Unlock()

	if fn != nil {
		fn(e)
	}
}

func (p *progressLog) snapshot() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Event, len(p.events))
	copy(out, p.events)
	return out
}

func (p *progressLog) subscribe(fn func(Event)) {
	p.mu.Lock()
	p.subscriber = fn
	p.mu.Unlock()
}
