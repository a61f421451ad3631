// Package redisstore keeps snapshots as JSON strings in Redis, one key per
// session plus a sorted-set index for listing.
package redisstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/maxviazov/hoops-tagging-service/internal/model"
	"github.com/maxviazov/hoops-tagging-service/internal/repository"
)

// DefaultKeyPrefix namespaces keys when none is configured.
const DefaultKeyPrefix = "hoops:save:"

// Store is a SaveStore and Pinger over a Redis client.
type Store struct {
	client *redis.Client
	prefix string
}

// New wraps an existing client. Keys look like <prefix><handle>.
func New(client *redis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &Store{client: client, prefix: prefix}
}

func (s *Store) key(handle string) string { return s.prefix + handle }
func (s *Store) indexKey() string { return s.prefix + "_index" }

func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return repository.Unavailable("redis ping", err)
	}
	return nil
}

func (s *Store) Save(ctx context.Context, sessionID string, data model.SaveData) (string, error) {
	b, err := repository.EncodeSave(data)
	if err != nil {
		return "", err
	}
	score, err := s.client.Time(ctx).Result()
	if err != nil {
		return "", repository.Unavailable("redis time", err)
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key(sessionID), b, 0)
		// NX keeps the first-save position in listings
		pipe.ZAddNX(ctx, s.indexKey(), redis.Z{Score: float64(score.UnixNano()), Member: sessionID})
		return nil
	})
	if err != nil {
		return "", repository.Unavailable("redis save", err)
	}
	return sessionID, nil
}

func (s *Store) Load(ctx context.Context, handle string) (model.SaveData, error) {
	b, err := s.client.Get(ctx, s.key(handle)).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.SaveData{}, repository.ErrNotFound
	}
	if err != nil {
		return model.SaveData{}, repository.Unavailable("redis load", err)
	}
	return repository.DecodeSave(b)
}

func (s *Store) Delete(ctx context.Context, handle string) error {
	var del *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, s.key(handle))
		pipe.ZRem(ctx, s.indexKey(), handle)
		return nil
	})
	if err != nil {
		return repository.Unavailable("redis delete", err)
	}
	if del.Val() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (s *Store) List(ctx context.Context) ([]repository.SaveInfo, error) {
	handles, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, repository.Unavailable("redis list", err)
	}
	if len(handles) == 0 {
		return nil, nil
	}
	cmds, err := s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, h := range handles {
			pipe.Get(ctx, s.key(h))
		}
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, repository.Unavailable("redis list", err)
	}

	out := make([]repository.SaveInfo, 0, len(handles))
	for i, cmd := range cmds {
		b, err := cmd.(*redis.StringCmd).Bytes()
		if errors.Is(err, redis.Nil) {
			continue // index entry outlived its key
		}
		if err != nil {
			return nil, repository.Unavailable("redis list", err)
		}
		data, err := repository.DecodeSave(b)
		if err != nil {
			return nil, fmt.Errorf("snapshot %s: %w", handles[i], err)
		}
		out = append(out, repository.InfoOf(handles[i], data))
	}
	return out, nil
}

var (
	_ repository.SaveStore = (*Store)(nil)
	_ repository.Pinger    = (*Store)(nil)
)
