// Package cache implements the three-section TTL-aware response cache:
// independent bounded LRU maps for the answer, authority and additional
// sections, with negative-answer caching keyed on the authority SOA
// MINIMUM field. It is the only shared mutable state in the resolver;
// every exported method holds its lock for exactly one map operation.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/poyrazK/resolvercore/internal/dns/wire"
	"github.com/poyrazK/resolvercore/internal/infrastructure/metrics"
)

// DefaultMaxEntries is the default per-section bounded-LRU capacity.
const DefaultMaxEntries = 1667

// SecondaryTier is an optional distributed cache consulted on a local
// miss and written through on insert (see adapters/cache.RedisTier). A
// nil SecondaryTier degrades the cache to the in-process tier only.
type SecondaryTier interface {
	Get(ctx context.Context, sectionName string, key Key) ([]StoredRR, bool, error)
	Set(ctx context.Context, sectionName string, key Key, rrs []StoredRR) error
}

// Cache is the shared interface the design notes call for:
// {get, insert, evict_expired}. Concurrent resolutions take mu only
// around a single map operation.
type Cache struct {
	mu         sync.Mutex
	answer     *section
	authority  *section
	additional *section

	secondary SecondaryTier

	now func() time.Time
}

// Option configures a Cache at construction.
type Option func(*Cache)

// WithSecondaryTier attaches an optional distributed cache tier.
func WithSecondaryTier(t SecondaryTier) Option {
	return func(c *Cache) { c.secondary = t }
}

// WithMaxEntries overrides DefaultMaxEntries for all three sections.
func WithMaxEntries(n int) Option {
	return func(c *Cache) {
		c.answer = newSection(n)
		c.authority = newSection(n)
		c.additional = newSection(n)
	}
}

// New builds a Cache with three DefaultMaxEntries-capacity sections.
func New(opts ...Option) *Cache {
	c := &Cache{
		answer:     newSection(DefaultMaxEntries),
		authority:  newSection(DefaultMaxEntries),
		additional: newSection(DefaultMaxEntries),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SectionName identifies one of the three independent cache sections.
type SectionName int

const (
	SectionAnswer SectionName = iota
	SectionAuthority
	SectionAdditional
)

func (c *Cache) sectionFor(name SectionName) *section {
	switch name {
	case SectionAnswer:
		return c.answer
	case SectionAuthority:
		return c.authority
	default:
		return c.additional
	}
}

func (n SectionName) String() string {
	switch n {
	case SectionAnswer:
		return "answer"
	case SectionAuthority:
		return "authority"
	default:
		return "additional"
	}
}

// Get sweeps expired entries from the target section, then returns the
// RRset under key. The returned bool distinguishes "no entry" (miss)
// from "entry present but empty" so callers never confuse the two.
func (c *Cache) Get(ctx context.Context, name SectionName, key Key) ([]StoredRR, bool) {
	c.mu.Lock()
	sec := c.sectionFor(name)
	sec.deleteExpired(c.now())
	rrs, ok := sec.get(key)
	c.mu.Unlock()

	if ok {
		metrics.CacheOperations.WithLabelValues("local", name.String(), "hit").Inc()
		return rrs, true
	}
	metrics.CacheOperations.WithLabelValues("local", name.String(), "miss").Inc()
	if c.secondary == nil {
		return nil, false
	}
	remote, found, err := c.secondary.Get(ctx, name.String(), key)
	if err != nil || !found {
		metrics.CacheOperations.WithLabelValues("secondary", name.String(), "miss").Inc()
		return nil, false
	}
	metrics.CacheOperations.WithLabelValues("secondary", name.String(), "hit").Inc()
	c.mu.Lock()
	sec.set(key, remote)
	c.mu.Unlock()
	return remote, true
}

// Insert stores rrs under key in the named section, first removing
// duplicates within rrs itself (by full ResourceRecord equality, TTL
// included). Any entry already present under that key is replaced, not
// merged.
func (c *Cache) Insert(ctx context.Context, name SectionName, key Key, rrs []StoredRR) {
	deduped := dedup(rrs)

	c.mu.Lock()
	sec := c.sectionFor(name)
	sec.set(key, deduped)
	c.mu.Unlock()

	if c.secondary != nil {
		_ = c.secondary.Set(ctx, name.String(), key, deduped)
	}
}

func dedup(rrs []StoredRR) []StoredRR {
	out := make([]StoredRR, 0, len(rrs))
	for _, rr := range rrs {
		dup := false
		for _, kept := range out {
			if kept.equalRecord(rr) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, rr)
		}
	}
	return out
}

// EvictExpired sweeps every section for expired entries without
// requiring a lookup first.
func (c *Cache) EvictExpired() {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.answer.deleteExpired(now)
	c.authority.deleteExpired(now)
	c.additional.deleteExpired(now)
}

// InsertResponse applies the full insertion contract to one decoded
// response message: positive RRs (ttl > 0, or an authority-section SOA) are cached under
// their natural section and Primary(key); a negative rcode instead
// caches every answer+authority RR under Secondary(rclass, name) with
// TTL overridden to the authority SOA's MINIMUM field.
func (c *Cache) InsertResponse(ctx context.Context, qname wire.Name, qclass wire.Rclass, msg wire.Message, rtt time.Duration) {
	rcode := msg.EffectiveRcode()
	if isNegative(rcode) {
		c.insertNegative(ctx, qname, qclass, msg, rtt)
		return
	}
	c.insertSection(ctx, SectionAnswer, msg.Answer, rcode, rtt)
	c.insertSection(ctx, SectionAuthority, msg.Authority, rcode, rtt)
	c.insertSection(ctx, SectionAdditional, msg.Additional, rcode, rtt)
}

func isNegative(rcode wire.Rcode) bool {
	return rcode == wire.RcodeNXDomain
}

func (c *Cache) insertSection(ctx context.Context, name SectionName, rrs []wire.ResourceRecord, rcode wire.Rcode, rtt time.Duration) {
	byKey := make(map[Key][]StoredRR)
	order := make([]Key, 0)
	for _, rr := range rrs {
		if rr.Rtype == wire.TypeOPT {
			continue // OPT pseudo-RRs are never cached.
		}
		if rr.TTL == 0 && !(name == SectionAuthority && rr.Rtype == wire.TypeSOA) {
			continue // zero TTL is only storable for an authority-section SOA (negative caching).
		}
		key := PrimaryKey(rr.Rtype, rr.Rclass, rr.Name)
		if _, ok := byKey[key]; !ok {
			order = append(order, key)
		}
		byKey[key] = append(byKey[key], StoredRR{
			Rcode:                  rcode,
			ResourceRecord:         rr,
			MeasuredResponseTimeMs: rtt.Milliseconds(),
			CreationTimestamp:      c.now(),
		})
	}
	for _, key := range order {
		c.Insert(ctx, name, key, byKey[key])
	}
}

func (c *Cache) insertNegative(ctx context.Context, qname wire.Name, qclass wire.Rclass, msg wire.Message, rtt time.Duration) {
	minimum := uint32(0)
	for _, rr := range msg.Authority {
		if soa, ok := rr.Rdata.(wire.SOARdata); ok {
			minimum = soa.Minimum
			break
		}
	}

	key := SecondaryKey(qclass, qname)
	now := c.now()
	var stored []StoredRR
	for _, rr := range append(append([]wire.ResourceRecord{}, msg.Answer...), msg.Authority...) {
		negRR := rr
		negRR.TTL = minimum
		stored = append(stored, StoredRR{
			Rcode:                  msg.EffectiveRcode(),
			ResourceRecord:         negRR,
			MeasuredResponseTimeMs: rtt.Milliseconds(),
			CreationTimestamp:      now,
		})
	}
	c.Insert(ctx, SectionAuthority, key, stored)
}
