package events

import (
	"context"
	"sync"

	"github.com/go-redis/redis/v8"

	"vehiclecore/logging"
)

// channelPrefix keeps event channels in their own Redis namespace,
// distinct from metrics/redisstore.go's per-metric channels.
const channelPrefix = "vehicle-event:"

// RedisBus is a Bus backed by Redis pub/sub, generalizing the teacher's
// diag.go fault-channel publish (a fixed "battery-faults" channel per
// physical battery) to an arbitrary event name.
type RedisBus struct {
	log    logging.Logger
	client *redis.Client
	ctx    context.Context

	mu   sync.Mutex
	subs map[string][]func(string)
}

func NewRedisBus(logger logging.Logger, client *redis.Client) *RedisBus {
	return &RedisBus{
		log:    logger,
		client: client,
		ctx:    context.Background(),
		subs:   make(map[string][]func(string)),
	}
}

func (b *RedisBus) Publish(name string, payload string) {
	if err := b.client.Publish(b.ctx, channelPrefix+name, payload).Err(); err != nil {
		b.log.Error("failed to publish event %s: %v", name, err)
	}
}

func (b *RedisBus) Subscribe(name string, fn func(string)) func() {
	b.mu.Lock()
	_, already := b.subs[name]
	b.subs[name] = append(b.subs[name], fn)
	idx := len(b.subs[name]) - 1
	b.mu.Unlock()

	if !already {
		go b.watch(name)
	}

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		subs := b.subs[name]
		if idx < len(subs) {
			subs[idx] = nil
		}
	}
}

func (b *RedisBus) watch(name string) {
	pubsub := b.client.Subscribe(b.ctx, channelPrefix+name)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for msg := range ch {
		b.mu.Lock()
		handlers := append([]func(string){}, b.subs[name]...)
		b.mu.Unlock()

		for _, fn := range handlers {
			if fn != nil {
				fn(msg.Payload)
			}
		}
	}
}

var _ Bus = (*RedisBus)(nil)
