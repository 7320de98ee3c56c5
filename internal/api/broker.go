package api

import "sync"

// RunEvent is one progress or lifecycle event of a solve run.
type RunEvent struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data"`
}

// EventBroker fans run events out to stream subscribers.
type EventBroker interface {
	Subscribe(runID string) chan RunEvent
	Unsubscribe(runID string, ch chan RunEvent)
	Publish(runID string, evt RunEvent)
}

// Broker is the in-memory EventBroker.
type Broker struct {
	mu   sync.Mutex
	subs map[string]map[chan RunEvent]struct{} // runId -> set of channels
}

func NewBroker() *Broker {
	return &Broker{subs: map[string]map[chan RunEvent]struct{}{}}
}

func (b *Broker) Subscribe(runID string) chan RunEvent {
	ch := make(chan RunEvent, 8)
	b.mu.Lock()
	if b.subs[runID] == nil {
		b.subs[runID] = map[chan RunEvent]struct{}{}
	}
	b.subs[runID][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *Broker) Unsubscribe(runID string, ch chan RunEvent) {
	b.mu.Lock()
	if m := b.subs[runID]; m != nil {
		delete(m, ch)
		if len(m) == 0 {
			delete(b.subs, runID)
		}
	}
	b.mu.Unlock()
	close(ch)
}

func (b *Broker) Publish(runID string, evt RunEvent) {
	b.mu.Lock()
	for ch := range b.subs[runID] {
		select {
		case ch <- evt:
		default:
		}
	}
	b.mu.Unlock()
}
