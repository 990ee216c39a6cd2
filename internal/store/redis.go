package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/radical-ticket/internal/model"
)

// countKey holds the number of populated tickets.
const countKey = "ticket-count"

// casScript performs the version-guarded write on the server so the
// comparison and the write cannot interleave with another client.
// Versions are compared as decimal strings to avoid Lua number precision
// loss on large counters.
//
// Returns 1 when the record was replaced, 0 when the key is absent or
// the version did not match.
var casScript = redis.NewScript(`
	local cur = redis.call('HGET', KEYS[1], 'version')
	if not cur then
		return 0
	end
	if cur ~= ARGV[1] then
		return 0
	end
	redis.call('HSET', KEYS[1], 'version', ARGV[2], 'record', ARGV[3])
	return 1
`)

// Redis is a Backend storing each record as a hash with a "version" and
// a "record" field.  All keys are namespaced by prefix.
type Redis struct {
	rdb    *redis.Client
	prefix string
}

// NewRedis returns a Redis backend using rdb.  prefix may be empty.
func NewRedis(rdb *redis.Client, prefix string) *Redis {
	return &Redis{rdb: rdb, prefix: prefix}
}

func (r *Redis) key(k string) string { return r.prefix + k }

func (r *Redis) Get(ctx context.Context, key string) (model.Record, bool, error) {
	raw, err := r.rdb.HGet(ctx, r.key(key), "record").Bytes()
	if errors.Is(err, redis.Nil) {
		return model.Record{}, false, nil
	}
	if err != nil {
		return model.Record{}, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	var rec model.Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return model.Record{}, false, fmt.Errorf("redis decode %s: %w", key, err)
	}
	return rec, true, nil
}

func (r *Redis) PutIfVersion(ctx context.Context, key string, expected uint64, rec model.Record) (bool, error) {
	body, err := json.Marshal(rec)
	if err != nil {
		return false, fmt.Errorf("redis encode %s: %w", key, err)
	}
	n, err := casScript.Run(ctx, r.rdb, []string{r.key(key)},
		strconv.FormatUint(expected, 10),
		strconv.FormatUint(rec.Version, 10),
		body,
	).Int64()
	if err != nil {
		return false, fmt.Errorf("redis cas %s: %w", key, err)
	}
	return n == 1, nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.rdb.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("redis delete %s: %w", key, err)
	}
	return nil
}

func (r *Redis) Put(ctx context.Context, rec model.Record) error {
	return r.PutAll(ctx, []model.Record{rec})
}

// PutAll writes every record in a single MULTI/EXEC pipeline.
func (r *Redis) PutAll(ctx context.Context, recs []model.Record) error {
	if len(recs) == 0 {
		return nil
	}
	_, err := r.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		for _, rec := range recs {
			body, err := json.Marshal(rec)
			if err != nil {
				return fmt.Errorf("redis encode %s: %w", rec.Key, err)
			}
			p.HSet(ctx, r.key(rec.Key), "version", strconv.FormatUint(rec.Version, 10), "record", body)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis put: %w", err)
	}
	return nil
}

func (r *Redis) Count(ctx context.Context) (uint64, error) {
	s, err := r.rdb.Get(ctx, r.key(countKey)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis count: %w", err)
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("redis count %q: %w", s, err)
	}
	return n, nil
}

func (r *Redis) SetCount(ctx context.Context, n uint64) error {
	if err := r.rdb.Set(ctx, r.key(countKey), strconv.FormatUint(n, 10), 0).Err(); err != nil {
		return fmt.Errorf("redis set count: %w", err)
	}
	return nil
}
