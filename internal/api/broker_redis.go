package api

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// RedisBroker implements EventBroker over Redis Pub/Sub so progress streams
// work across replicas.
type RedisBroker struct {
	rdb  *redis.Client
	mu   sync.Mutex
	subs map[chan RunEvent]*redis.PubSub
}

func NewRedisBroker() (*RedisBroker, error) {
	opt, err := redis.ParseURL(os.Getenv("REDIS_URL"))
	if err != nil {
		return nil, err
	}
	return &RedisBroker{rdb: redis.NewClient(opt), subs: map[chan RunEvent]*redis.PubSub{}}, nil
}

func (b *RedisBroker) Subscribe(runID string) chan RunEvent {
	ch := make(chan RunEvent, 16)
	ctx := context.Background()
	ps := b.rdb.Subscribe(ctx, b.chanName(runID))
	// initial consume to ensure subscription
	_, _ = ps.Receive(ctx)
	b.mu.Lock()
	b.subs[ch] = ps
	b.mu.Unlock()
	go pumpEvents(ps.Channel(), ch)
	return ch
}

// pumpEvents forwards decoded pub/sub payloads until msgs closes. It is the
// only closer of ch; Unsubscribe ends it by closing the subscription.
func pumpEvents(msgs <-chan *redis.Message, ch chan RunEvent) {
	defer close(ch)
	for msg := range msgs {
		var evt RunEvent
		if err := json.Unmarshal([]byte(msg.Payload), &evt); err == nil {
			select {
			case ch <- evt:
			default:
			}
		}
	}
}

func (b *RedisBroker) Unsubscribe(_ string, ch chan RunEvent) {
	b.mu.Lock()
	ps := b.subs[ch]
	delete(b.subs, ch)
	b.mu.Unlock()
	if ps != nil {
		// Ends the message stream; the pump goroutine then closes ch.
		_ = ps.Close()
	}
}

func (b *RedisBroker) Publish(runID string, evt RunEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	data, _ := json.Marshal(evt)
	_ = b.rdb.Publish(ctx, b.chanName(runID), data).Err()
}

func (b *RedisBroker) chanName(runID string) string { return "run:" + runID }
