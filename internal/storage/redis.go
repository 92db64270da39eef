package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/go-redis/redis/v8"

	"github.com/gravitas-games/domino/internal/board"
)

// Redis keeps each board as a JSON string under <prefix><id> and tracks
// the known ids in the set <prefix>~index. "~" cannot appear in an id.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis wraps an existing client.
func NewRedis(client *redis.Client, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

func (s *Redis) key(id string) string { return s.prefix + id }

func (s *Redis) indexKey() string { return s.prefix + "~index" }

// Save stores doc and records id in the index.
func (s *Redis) Save(ctx context.Context, id string, doc board.Document) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	data, err := board.Encode(doc)
	if err != nil {
		return fmt.Errorf("failed to encode board %s: %w", id, err)
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key(id), data, 0)
		pipe.SAdd(ctx, s.indexKey(), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save board %s: %w", id, err)
	}
	return nil
}

// Load fetches and decodes the document for id.
func (s *Redis) Load(ctx context.Context, id string) (board.Document, error) {
	if err := ValidateID(id); err != nil {
		return board.Document{}, err
	}
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return board.Document{}, ErrNotFound
		}
		return board.Document{}, fmt.Errorf("failed to load board %s: %w", id, err)
	}
	return board.Decode(data)
}

// List returns the stored ids in sorted order.
func (s *Redis) List(ctx context.Context) ([]string, error) {
	ids, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list boards: %w", err)
	}
	sort.Strings(ids)
	return ids, nil
}

// Delete removes the document and its index entry.
func (s *Redis) Delete(ctx context.Context, id string) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	var del *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, s.key(id))
		pipe.SRem(ctx, s.indexKey(), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete board %s: %w", id, err)
	}
	if del.Val() == 0 {
		return ErrNotFound
	}
	return nil
}
