// Package redisstore keeps databoy return values in Redis so that
// generated keys can be shared between sessions and test processes.
//
//	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	reg := databoy.NewRegistry(databoy.WithValueStore(redisstore.New(client)))
//	s := databoy.NewSession(databoy.WithProvider(drv), databoy.WithRegistry(reg))
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/syssam/databoy"
)

// DefaultPrefix namespaces the keys written by a Store.
const DefaultPrefix = "databoy:rv:"

// Store is a databoy.ValueStore backed by Redis. Values are encoded with
// msgpack.
type Store struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// Option configures a Store.
type Option func(*Store)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) { s.prefix = prefix }
}

// WithTTL expires stored values after ttl. Zero keeps them until Clear.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) { s.ttl = ttl }
}

// New returns a Store using client.
func New(client redis.UniversalClient, opts ...Option) *Store {
	s := &Store{client: client, prefix: DefaultPrefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Put stores value under key unless the key already holds a value.
func (s *Store) Put(ctx context.Context, key string, value any) error {
	b, err := msgpack.Marshal(value)
	if err != nil {
		return fmt.Errorf("redisstore: encode %q: %w", key, err)
	}
	ok, err := s.client.SetNX(ctx, s.prefix+key, b, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("redisstore: put %q: %w", key, err)
	}
	if !ok {
		return &databoy.DuplicateReturnKeyError{Key: key}
	}
	return nil
}

// Get returns the value stored under key.
func (s *Store) Get(ctx context.Context, key string) (any, bool, error) {
	b, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redisstore: get %q: %w", key, err)
	}
	var v any
	if err := msgpack.Unmarshal(b, &v); err != nil {
		return nil, false, fmt.Errorf("redisstore: decode %q: %w", key, err)
	}
	return v, true, nil
}

// Clear deletes every key under the store prefix.
func (s *Store) Clear(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redisstore: scan: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redisstore: clear: %w", err)
	}
	return nil
}

var _ databoy.ValueStore = (*Store)(nil)
