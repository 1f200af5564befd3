package metrics

import (
	"context"
	"strconv"
	"sync"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"

	"vehiclecore/logging"
)

// RedisHashName is the single hash every metric is written into, keyed by
// metric Key. Grounded on the teacher's ipc_tx.go, which wrote one fixed
// hash ("engine-ecu") per status group; this generalizes that to an
// arbitrary metric key space.
const RedisHashName = "vehicle-metrics"

// RedisStore is a Store backed by Redis, generalizing the teacher's
// SendStatusN (HSet + Publish) / subscription-driven refresh (ipc_rx.go)
// pair from a handful of fixed struct fields to any metrics.Key.
type RedisStore struct {
	log    logging.Logger
	client *redis.Client
	ctx    context.Context

	mu   sync.Mutex
	subs map[Key][]func(Value)
}

func NewRedisStore(logger logging.Logger, client *redis.Client) *RedisStore {
	return &RedisStore{
		log:    logger,
		client: client,
		ctx:    context.Background(),
		subs:   make(map[Key][]func(Value)),
	}
}

// encodeValue renders v with an explicit type tag as its first field,
// so a zero-valued float or int round-trips as its own kind rather than
// collapsing onto the bool branch (a bare "0" and "false" both render
// to the Go zero value once decoded with no tag to tell them apart).
func encodeValue(v Value) string {
	if !v.Set {
		return ""
	}
	switch v.Kind {
	case KindString:
		return "s:" + v.String
	case KindFloat:
		return "f:" + strconv.FormatFloat(v.Float, 'g', -1, 64)
	case KindInt:
		return "i:" + strconv.FormatInt(v.Int, 10)
	default:
		return "b:" + strconv.FormatBool(v.Bool)
	}
}

func decodeValue(raw string) Value {
	if len(raw) < 2 || raw[1] != ':' {
		return Value{}
	}
	payload := raw[2:]
	switch raw[0] {
	case 's':
		return Value{Kind: KindString, String: payload, Set: true}
	case 'f':
		f, _ := strconv.ParseFloat(payload, 64)
		return Value{Kind: KindFloat, Float: f, Set: true}
	case 'i':
		i, _ := strconv.ParseInt(payload, 10, 64)
		return Value{Kind: KindInt, Int: i, Set: true}
	case 'b':
		b, _ := strconv.ParseBool(payload)
		return Value{Kind: KindBool, Bool: b, Set: true}
	default:
		return Value{}
	}
}

// set writes v to the hash and publishes the change, but only when v
// differs from whatever is currently stored, matching MemStore and the
// Subscribe contract: a re-write of an unchanged value must not re-fire
// subscribers (the charge-state debouncer in particular must not rearm
// on a same-value rewrite).
func (s *RedisStore) set(key Key, v Value) {
	prevRaw, err := s.client.HGet(s.ctx, RedisHashName, string(key)).Result()
	if err != nil && err != redis.Nil {
		s.log.Error("failed to read metric %s: %v", key, err)
	} else if err == nil && decodeValue(prevRaw) == v {
		return
	}

	encoded := encodeValue(v)

	pipe := s.client.Pipeline()
	pipe.HSet(s.ctx, RedisHashName, string(key), encoded)
	pipe.Publish(s.ctx, "vehicle-metrics:"+string(key), encoded)
	if _, err := pipe.Exec(s.ctx); err != nil {
		s.log.Error("failed to write metric %s: %v", key, err)
		return
	}

	s.mu.Lock()
	handlers := append([]func(Value){}, s.subs[key]...)
	s.mu.Unlock()

	for _, fn := range handlers {
		if fn != nil {
			fn(v)
		}
	}
}

func (s *RedisStore) SetBool(key Key, v bool) {
	s.set(key, Value{Kind: KindBool, Bool: v, Set: true})
}
func (s *RedisStore) SetFloat(key Key, v float64) {
	s.set(key, Value{Kind: KindFloat, Float: v, Set: true})
}
func (s *RedisStore) SetString(key Key, v string) {
	s.set(key, Value{Kind: KindString, String: v, Set: true})
}
func (s *RedisStore) SetInt(key Key, v int64) {
	s.set(key, Value{Kind: KindInt, Int: v, Set: true})
}

func (s *RedisStore) Get(key Key) (Value, bool) {
	raw, err := s.client.HGet(s.ctx, RedisHashName, string(key)).Result()
	if err != nil {
		if err != redis.Nil {
			s.log.Error("failed to read metric %s: %v", key, err)
		}
		return Value{}, false
	}
	v := decodeValue(raw)
	return v, v.Set
}

// Subscribe registers fn locally and, the first time key is subscribed,
// starts a goroutine reading the Redis pub/sub channel for that key so
// changes made by other processes are observed too (grounded on the
// teacher's ipc_rx.go handleVehicleSubscription/handleBatterySubscription
// pattern).
func (s *RedisStore) Subscribe(key Key, fn func(Value)) func() {
	s.mu.Lock()
	_, already := s.subs[key]
	s.subs[key] = append(s.subs[key], fn)
	idx := len(s.subs[key]) - 1
	s.mu.Unlock()

	if !already {
		go s.watch(key)
	}

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		subs := s.subs[key]
		if idx < len(subs) {
			subs[idx] = nil
		}
	}
}

func (s *RedisStore) watch(key Key) {
	channel := "vehicle-metrics:" + string(key)
	pubsub := s.client.Subscribe(s.ctx, channel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for msg := range ch {
		v := decodeValue(msg.Payload)

		s.mu.Lock()
		handlers := append([]func(Value){}, s.subs[key]...)
		s.mu.Unlock()

		for _, fn := range handlers {
			if fn != nil {
				fn(v)
			}
		}
	}
}

// Ping verifies connectivity at construction time, matching the teacher's
// NewEngineApp Redis-connect-with-timeout pattern.
func Ping(ctx context.Context, client *redis.Client) error {
	if err := client.Ping(ctx).Err(); err != nil {
		return errors.Wrap(err, "failed to connect to redis")
	}
	return nil
}

var _ Store = (*RedisStore)(nil)
