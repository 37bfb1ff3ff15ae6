// Package cache adapts the resolver's in-process response cache to an
// optional distributed tier backed by Redis, following the teacher's
// server/redis.go pattern: one client, string keys prefixed by
// namespace, pub/sub invalidation for multi-node deployments.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	rescache "github.com/poyrazK/resolvercore/internal/dns/cache"
	"github.com/poyrazK/resolvercore/internal/dns/wire"
)

// InvalidationChannel is published to on every Set, so peer nodes can
// drop their own local copy instead of serving stale data until TTL
// expiry. Local evictions are not published.
const InvalidationChannel = "resolvercore:cache:invalidate"

// RedisTier implements cache.SecondaryTier against a Redis instance.
// A nil *RedisTier is never constructed; callers that want to run
// without a secondary tier simply omit cache.WithSecondaryTier.
type RedisTier struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisTier builds a RedisTier. ttl bounds how long an entry can
// live in Redis regardless of the cached records' own TTL, guarding
// against a misbehaving upstream advertising an unreasonably large TTL.
func NewRedisTier(addr, password string, db int, ttl time.Duration) *RedisTier {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisTier{client: rdb, ttl: ttl}
}

func (r *RedisTier) redisKey(sectionName string, key rescache.Key) string {
	return fmt.Sprintf("resolvercore:%s:%s", sectionName, key.String())
}

// Get satisfies cache.SecondaryTier.
func (r *RedisTier) Get(ctx context.Context, sectionName string, key rescache.Key) ([]rescache.StoredRR, bool, error) {
	raw, err := r.client.Get(ctx, r.redisKey(sectionName, key)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	rrs, err := unmarshalStoredRRs(raw)
	if err != nil {
		return nil, false, err
	}
	return rrs, true, nil
}

// Set satisfies cache.SecondaryTier and publishes an invalidation event
// so other nodes sharing this Redis instance drop their local copy.
func (r *RedisTier) Set(ctx context.Context, sectionName string, key rescache.Key, rrs []rescache.StoredRR) error {
	raw, err := marshalStoredRRs(rrs)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.redisKey(sectionName, key), raw, r.ttl).Err(); err != nil {
		return err
	}
	return r.client.Publish(ctx, InvalidationChannel, r.redisKey(sectionName, key)).Err()
}

// Ping verifies connectivity to the Redis instance.
func (r *RedisTier) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Subscribe returns a channel of invalidation keys published by any node
// writing through this RedisTier.
func (r *RedisTier) Subscribe(ctx context.Context) <-chan *redis.Message {
	return r.client.Subscribe(ctx, InvalidationChannel).Channel()
}

// wireEntry is the JSON envelope persisted per cached record: the
// bookkeeping fields as plain JSON, the resource record itself encoded
// through the wire codec (so RedisTier never needs to know about
// individual rdata variants).
type wireEntry struct {
	Rcode         wire.Rcode `json:"rcode"`
	ResponseMs    int64      `json:"response_ms"`
	CreatedUnixNs int64      `json:"created_unix_ns"`
	RR            []byte     `json:"rr"`
}

func marshalStoredRRs(rrs []rescache.StoredRR) ([]byte, error) {
	entries := make([]wireEntry, 0, len(rrs))
	for _, s := range rrs {
		msg := wire.Message{Answer: []wire.ResourceRecord{s.ResourceRecord}}
		raw, err := msg.Encode()
		if err != nil {
			return nil, err
		}
		entries = append(entries, wireEntry{
			Rcode:         s.Rcode,
			ResponseMs:    s.MeasuredResponseTimeMs,
			CreatedUnixNs: s.CreationTimestamp.UnixNano(),
			RR:            raw,
		})
	}
	return json.Marshal(entries)
}

func unmarshalStoredRRs(raw []byte) ([]rescache.StoredRR, error) {
	var entries []wireEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, err
	}
	out := make([]rescache.StoredRR, 0, len(entries))
	for _, e := range entries {
		msg, err := wire.Decode(e.RR)
		if err != nil {
			return nil, err
		}
		if len(msg.Answer) != 1 {
			return nil, fmt.Errorf("resolvercore/adapters/cache: expected exactly one answer RR, got %d", len(msg.Answer))
		}
		out = append(out, rescache.StoredRR{
			Rcode:                  e.Rcode,
			ResourceRecord:         msg.Answer[0],
			MeasuredResponseTimeMs: e.ResponseMs,
			CreationTimestamp:      time.Unix(0, e.CreatedUnixNs),
		})
	}
	return out, nil
}
