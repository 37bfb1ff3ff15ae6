package cache

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	rescache "github.com/poyrazK/resolvercore/internal/dns/cache"
	"github.com/poyrazK/resolvercore/internal/dns/wire"
)

func TestRedisTier_SetThenGetRoundTrips(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	tier := NewRedisTier(mr.Addr(), "", 0, time.Minute)
	ctx := context.Background()

	name, err := wire.NewName("example.com.")
	require.NoError(t, err)
	key := rescache.PrimaryKey(wire.TypeA, wire.ClassIN, name)
	rrs := []rescache.StoredRR{{
		ResourceRecord: wire.ResourceRecord{
			Name: name, Rtype: wire.TypeA, Rclass: wire.ClassIN, TTL: 300,
			Rdata: wire.ARdata{Addr: net.ParseIP("93.184.216.34").To4()},
		},
		CreationTimestamp: time.Now(),
	}}

	require.NoError(t, tier.Set(ctx, rescache.SectionAnswer.String(), key, rrs))

	got, ok, err := tier.Get(ctx, rescache.SectionAnswer.String(), key)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got, 1)
	require.Equal(t, rrs[0].ResourceRecord, got[0].ResourceRecord)
}

func TestRedisTier_GetMiss(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	tier := NewRedisTier(mr.Addr(), "", 0, time.Minute)
	name, err := wire.NewName("nowhere.invalid.")
	require.NoError(t, err)
	key := rescache.PrimaryKey(wire.TypeA, wire.ClassIN, name)

	_, ok, err := tier.Get(context.Background(), rescache.SectionAnswer.String(), key)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRedisTier_Ping(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	tier := NewRedisTier(mr.Addr(), "", 0, time.Minute)
	require.NoError(t, tier.Ping(context.Background()))
}
