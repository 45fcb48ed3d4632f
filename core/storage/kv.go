package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/EchoCog/atomspace/core/atomspace"
)

// KV is a Backend over Redis (spec §4.4 "kv"). Keys are namespaced
// under a single set (kvIndexKey) so IterateAtoms and Stats don't need
// a KEYS/SCAN sweep of the whole keyspace.
type KV struct {
	opts   *redis.Options
	prefix string
	client *redis.Client
}

// NewKV constructs a KV backend. prefix namespaces all keys this
// backend touches, so multiple AtomSpaces can share one Redis.
func NewKV(opts *redis.Options, prefix string) *KV {
	if prefix == "" {
		prefix = "atomspace"
	}
	return &KV{opts: opts, prefix: prefix}
}

func (k *KV) atomKey(h atomspace.Handle) string { return k.prefix + ":atom:" + string(h) }
func (k *KV) indexKey() string                  { return k.prefix + ":index" }

// Open implements Backend.
func (k *KV) Open(ctx context.Context) error {
	k.client = redis.NewClient(k.opts)
	if err := k.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("kv backend open: %w: %v", atomspace.ErrBackendUnavailable, err)
	}
	return nil
}

// Close implements Backend.
func (k *KV) Close() error {
	if k.client == nil {
		return nil
	}
	return k.client.Close()
}

func encodeRecord(r Record) (string, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("%w: %v", atomspace.ErrSerializationFailed, err)
	}
	return string(b), nil
}

func decodeRecord(s string) (Record, error) {
	var r Record
	if err := json.Unmarshal([]byte(s), &r); err != nil {
		return Record{}, fmt.Errorf("%w: %v", atomspace.ErrSerializationFailed, err)
	}
	return r, nil
}

// StoreAtom implements Backend.
func (k *KV) StoreAtom(ctx context.Context, r Record) error {
	payload, err := encodeRecord(r)
	if err != nil {
		return err
	}
	pipe := k.client.TxPipeline()
	pipe.Set(ctx, k.atomKey(r.Handle), payload, 0)
	pipe.SAdd(ctx, k.indexKey(), string(r.Handle))
	_, err = pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("store atom %s: %w", r.Handle, err)
	}
	return nil
}

// StoreAtoms implements Backend via a single pipelined MULTI/EXEC
// round trip (spec §4.4 "store_batch" — a transactional pipeline is
// go-redis's equivalent of a SQL transaction for this workload).
func (k *KV) StoreAtoms(ctx context.Context, rs []Record) error {
	pipe := k.client.TxPipeline()
	for _, r := range rs {
		payload, err := encodeRecord(r)
		if err != nil {
			return err
		}
		pipe.Set(ctx, k.atomKey(r.Handle), payload, 0)
		pipe.SAdd(ctx, k.indexKey(), string(r.Handle))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store atoms batch: %w", err)
	}
	return nil
}

// FetchAtom implements Backend.
func (k *KV) FetchAtom(ctx context.Context, h atomspace.Handle) (Record, bool, error) {
	s, err := k.client.Get(ctx, k.atomKey(h)).Result()
	if err == redis.Nil {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("fetch atom %s: %w", h, err)
	}
	r, err := decodeRecord(s)
	if err != nil {
		return Record{}, false, err
	}
	return r, true, nil
}

// FetchAtoms implements Backend via MGET. The result has one entry per
// input handle, nil where no record exists, so callers can align
// results to hs by index.
func (k *KV) FetchAtoms(ctx context.Context, hs []atomspace.Handle) ([]*Record, error) {
	if len(hs) == 0 {
		return nil, nil
	}
	keys := make([]string, len(hs))
	for i, h := range hs {
		keys[i] = k.atomKey(h)
	}
	vals, err := k.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("fetch atoms batch: %w", err)
	}
	out := make([]*Record, len(vals))
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		r, err := decodeRecord(s)
		if err != nil {
			return nil, err
		}
		out[i] = &r
	}
	return out, nil
}

// RemoveAtom implements Backend.
func (k *KV) RemoveAtom(ctx context.Context, h atomspace.Handle) error {
	pipe := k.client.TxPipeline()
	pipe.Del(ctx, k.atomKey(h))
	pipe.SRem(ctx, k.indexKey(), string(h))
	_, err := pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("remove atom %s: %w", h, err)
	}
	return nil
}

// IterateAtoms implements Backend over the index set membership.
func (k *KV) IterateAtoms(ctx context.Context, fn func(Record) bool) error {
	handles, err := k.client.SMembers(ctx, k.indexKey()).Result()
	if err != nil {
		return fmt.Errorf("iterate atoms: %w", err)
	}
	for _, h := range handles {
		s, err := k.client.Get(ctx, k.atomKey(atomspace.Handle(h))).Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return fmt.Errorf("iterate atoms: %w", err)
		}
		r, err := decodeRecord(s)
		if err != nil {
			return err
		}
		if !fn(r) {
			break
		}
	}
	return nil
}

// Stats implements Backend.
func (k *KV) Stats(ctx context.Context) (Stats, error) {
	count, err := k.client.SCard(ctx, k.indexKey()).Result()
	if err != nil {
		return Stats{}, fmt.Errorf("kv stats: %w", err)
	}
	st := Stats{AtomCount: count, BackendTag: "kv"}
	_ = k.IterateAtoms(ctx, func(r Record) bool {
		if r.IsLink {
			st.LinkCount++
		} else {
			st.NodeCount++
		}
		return true
	})
	return st, nil
}
