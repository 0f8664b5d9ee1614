package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/men16922/brandy-serverless-sub000/pkg/lifecycle"
)

type redisStore struct {
	client *redis.Client
	logger *slog.Logger
}

func newRedisStore(cfg *Config, logger *slog.Logger) System {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &redisStore{
		client: client,
		logger: logger.With("system", "kvstore", "kind", "redis"),
	}
}

func (s *redisStore) Start(lc *lifecycle.Coordinator) error {
	s.logger.Info("starting kvstore")

	lc.OnStartup(func() {
		if err := s.client.Ping(lc.Context()).Err(); err != nil {
			s.logger.Error("kvstore ping failed", "error", err)
			return
		}
		s.logger.Info("kvstore ready")
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		if err := s.client.Close(); err != nil {
			s.logger.Error("kvstore close failed", "error", err)
		}
	})

	return nil
}

func (s *redisStore) Get(ctx context.Context, key string) (*Record, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}

	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get %s: %w", key, err)
	}

	return decodeEnvelope(key, data)
}

func (s *redisStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" {
		return ErrEmptyKey
	}

	version := int64(1)
	if rec, err := s.Get(ctx, key); err == nil {
		version = rec.Version + 1
	}

	data, err := encodeEnvelope(version, value)
	if err != nil {
		return err
	}

	if err := s.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}

	return nil
}

// PutVersioned performs a compare-and-swap through a WATCH transaction:
// the write aborts if the key changes between the version check and the SET.
func (s *redisStore) PutVersioned(
	ctx context.Context,
	key string,
	value []byte,
	ttl time.Duration,
	expect int64,
) (int64, error) {
	if key == "" {
		return 0, ErrEmptyKey
	}

	next := expect + 1

	txn := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
			if expect != 0 {
				return ErrNotFound
			}
		case err != nil:
			return fmt.Errorf("get %s: %w", key, err)
		default:
			rec, err := decodeEnvelope(key, current)
			if err != nil {
				return err
			}
			if rec.Version != expect {
				return ErrVersionConflict
			}
		}

		data, err := encodeEnvelope(next, value)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, ttl)
			return nil
		})
		return err
	}

	if err := s.client.Watch(ctx, txn, key); err != nil {
		if errors.Is(err, redis.TxFailedErr) {
			return 0, ErrVersionConflict
		}
		return 0, err
	}

	return next, nil
}

func (s *redisStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}

	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}

	return nil
}

func encodeEnvelope(version int64, value []byte) ([]byte, error) {
	data, err := json.Marshal(envelope{Version: version, Value: value})
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	return data, nil
}

func decodeEnvelope(key string, data []byte) (*Record, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode record %s: %w", key, err)
	}
	return &Record{Version: env.Version, Value: env.Value}, nil
}
