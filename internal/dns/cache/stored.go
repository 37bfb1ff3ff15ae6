package cache

import (
	"reflect"
	"time"

	"github.com/poyrazK/resolvercore/internal/dns/wire"
)

// StoredRR is one cached resource record plus the bookkeeping needed for
// TTL expiry and RTT-informed server preference. Equality (used to
// dedup on insert) is the full ResourceRecord, TTL included.
type StoredRR struct {
	Rcode                  wire.Rcode
	ResourceRecord         wire.ResourceRecord
	MeasuredResponseTimeMs int64
	CreationTimestamp      time.Time
}

// ExpiresAt is CreationTimestamp + ttl seconds.
func (s StoredRR) ExpiresAt() time.Time {
	return s.CreationTimestamp.Add(time.Duration(s.ResourceRecord.TTL) * time.Second)
}

// Expired reports whether now is past ExpiresAt.
func (s StoredRR) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt())
}

func (s StoredRR) equalRecord(other StoredRR) bool {
	return reflect.DeepEqual(s.ResourceRecord, other.ResourceRecord)
}
