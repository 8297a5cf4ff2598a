// Package redisstore keeps browser session tokens in Redis so that they survive
// restarts of the web server and can be shared between replicas.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jrsteele09/fewv-learns/tokens"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

var (
	_ tokens.Store   = (*Store)(nil)
	_ tokens.Factory = (*Factory)(nil)
)

// Store holds the two token keys of one browser session.
type Store struct {
	rdb    redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// New builds a store whose keys live under prefix. A zero ttl never expires keys.
func New(rdb redis.UniversalClient, prefix string, ttl time.Duration) *Store {
	return &Store{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (s *Store) key(kind tokens.Kind) string {
	return s.prefix + ":" + kind.Key()
}

func (s *Store) Get(ctx context.Context, kind tokens.Kind) (string, bool) {
	v, err := s.rdb.Get(ctx, s.key(kind)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false
	}
	if err != nil {
		log.Err(err).Str("key", s.key(kind)).Msg("redis token read failed")
		return "", false
	}
	return v, v != ""
}

func (s *Store) Set(ctx context.Context, kind tokens.Kind, value string) {
	var err error
	if value == "" {
		err = s.rdb.Del(ctx, s.key(kind)).Err()
	} else {
		err = s.rdb.Set(ctx, s.key(kind), value, s.ttl).Err()
	}
	if err != nil {
		log.Err(err).Str("key", s.key(kind)).Msg("redis token write failed")
	}
}

func (s *Store) Clear(ctx context.Context) {
	keys := make([]string, 0, len(tokens.Kinds))
	for _, kind := range tokens.Kinds {
		keys = append(keys, s.key(kind))
	}
	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		log.Err(err).Str("prefix", s.prefix).Msg("redis token clear failed")
	}
}

// Factory namespaces each browser session under "<prefix>:<sessionID>".
type Factory struct {
	rdb    redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewFactory(rdb redis.UniversalClient, prefix string, ttl time.Duration) *Factory {
	return &Factory{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (f *Factory) Open(sessionID string) tokens.Store {
	return New(f.rdb, fmt.Sprintf("%s:%s", f.prefix, sessionID), f.ttl)
}

// Forget is a no-op: stores hold no local state.
func (f *Factory) Forget(string) {}

// Connect creates a client and verifies the server is reachable.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return rdb, nil
}
