package routing

import (
	"context"
	"net"
	"testing"
	"time"

	api "github.com/osrg/gobgp/v4/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poyrazK/resolvercore/internal/dns/resolve"
)

type fakePathLister struct {
	prefixes []string
	err      error
}

func (f *fakePathLister) ListPath(_ context.Context, _ *api.ListPathRequest, fn func(*api.Destination)) error {
	if f.err != nil {
		return f.err
	}
	for _, p := range f.prefixes {
		fn(&api.Destination{Prefix: p})
	}
	return nil
}

func TestPeerHealthMonitor_MarksReachableServersHealthy(t *testing.T) {
	up := resolve.NewServerInfo(net.ParseIP("192.0.2.1"), 53, resolve.ProtocolUDP)
	down := resolve.NewServerInfo(net.ParseIP("192.0.2.2"), 53, resolve.ProtocolUDP)
	require.True(t, up.Healthy())
	require.True(t, down.Healthy())

	bgp := &fakePathLister{prefixes: []string{"192.0.2.1/32"}}
	mon := NewPeerHealthMonitor(bgp, []*resolve.ServerInfo{up, down}, time.Second, nil)

	mon.poll(context.Background())

	assert.True(t, up.Healthy())
	assert.False(t, down.Healthy())
}

func TestPeerHealthMonitor_PollErrorLeavesHealthUnchanged(t *testing.T) {
	server := resolve.NewServerInfo(net.ParseIP("192.0.2.1"), 53, resolve.ProtocolUDP)
	server.SetHealthy(false)

	bgp := &fakePathLister{err: assertErr{}}
	mon := NewPeerHealthMonitor(bgp, []*resolve.ServerInfo{server}, time.Second, nil)
	mon.poll(context.Background())

	assert.False(t, server.Healthy(), "a failed RIB poll must not overwrite existing health state")
}

type assertErr struct{}

func (assertErr) Error() string { return "rib unavailable" }
