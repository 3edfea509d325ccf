package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrSlotEmpty is returned by SessionSlot.Get when nothing is stored under the key
var ErrSlotEmpty = errors.New("session slot empty")

// SessionSlot is the external key-value slot holding serialized session principals
type SessionSlot interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

type redisSlot struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSlot stores sessions in Redis. A zero ttl keeps keys until logout.
func NewRedisSlot(client *redis.Client, ttl time.Duration) SessionSlot {
	return &redisSlot{client: client, ttl: ttl}
}

func (s *redisSlot) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSlotEmpty
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

func (s *redisSlot) Set(ctx context.Context, key string, value []byte) error {
	return s.client.Set(ctx, key, value, s.ttl).Err()
}

func (s *redisSlot) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

type memorySlot struct {
	mu     sync.Mutex
	values map[string][]byte
}

// NewMemorySlot keeps sessions in process memory; they do not survive restarts.
func NewMemorySlot() SessionSlot {
	return &memorySlot{values: make(map[string][]byte)}
}

func (s *memorySlot) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	val, ok := s.values[key]
	if !ok {
		return nil, ErrSlotEmpty
	}
	return append([]byte(nil), val...), nil
}

func (s *memorySlot) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = append([]byte(nil), value...)
	return nil
}

func (s *memorySlot) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, key)
	return nil
}
