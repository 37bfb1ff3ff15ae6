package routing

import (
	"context"
	"log/slog"
	"time"

	api "github.com/osrg/gobgp/v4/api"

	"github.com/poyrazK/resolvercore/internal/dns/resolve"
)

// pathLister is the subset of the GoBGP speaker PeerHealthMonitor needs:
// listing the currently-installed paths for a family, so it can tell
// whether a peer's advertised route to an upstream resolver is still
// reachable.
type pathLister interface {
	ListPath(ctx context.Context, r *api.ListPathRequest, fn func(*api.Destination)) error
}

// PeerHealthMonitor polls a GoBGP speaker's RIB and reflects route
// reachability onto the matching resolve.ServerInfo.SetHealthy, so the
// resolution engine's cyclic server selection can deprioritize a
// resolver whose anycast route has been withdrawn upstream. A server
// with no matching BGP route is marked unhealthy; a failed RIB poll
// leaves every server at its last known health (BGP health is additive
// to, never a replacement for, transport-level failure detection
// already in the resolution engine itself).
type PeerHealthMonitor struct {
	bgp      pathLister
	servers  []*resolve.ServerInfo
	interval time.Duration
	logger   *slog.Logger
}

// NewPeerHealthMonitor builds a monitor over servers, polling bgp's RIB
// every interval.
func NewPeerHealthMonitor(bgp pathLister, servers []*resolve.ServerInfo, interval time.Duration, logger *slog.Logger) *PeerHealthMonitor {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &PeerHealthMonitor{bgp: bgp, servers: servers, interval: interval, logger: logger}
}

// Run polls until ctx is done.
func (m *PeerHealthMonitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.poll(ctx)
		}
	}
}

func (m *PeerHealthMonitor) poll(ctx context.Context) {
	reachable := make(map[string]bool, len(m.servers))

	err := m.bgp.ListPath(ctx, &api.ListPathRequest{
		TableType: api.TableType_GLOBAL,
		Family:    &api.Family{Afi: api.Family_AFI_IP, Safi: api.Family_SAFI_UNICAST},
	}, func(dst *api.Destination) {
		for _, s := range m.servers {
			if dst.Prefix == s.Addr.String()+"/32" {
				reachable[s.Addr.String()] = true
			}
		}
	})
	if err != nil {
		m.logger.Warn("BGP RIB poll failed, leaving server health unchanged", "error", err)
		return
	}

	for _, s := range m.servers {
		healthy := reachable[s.Addr.String()]
		if s.Healthy() != healthy {
			m.logger.Info("server health changed via BGP route state", "server", s.Addr.String(), "healthy", healthy)
		}
		s.SetHealthy(healthy)
	}
}
