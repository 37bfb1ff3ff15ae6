// Package routing adapts the resolver's server health signal to BGP:
// GoBGPAdapter announces and withdraws this node's own anycast VIP on
// request, and PeerHealthMonitor polls the RIB's /32 paths to
// deprioritize upstream resolve.ServerInfo entries whose BGP-advertised
// route has gone down.
package routing

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	api "github.com/osrg/gobgp/v4/api"
	"github.com/osrg/gobgp/v4/pkg/server"
	"google.golang.org/protobuf/types/known/anypb"
)

// bgpBackend is the subset of *server.BgpServer GoBGPAdapter drives,
// narrowed to an interface so tests can substitute a mock speaker.
type bgpBackend interface {
	Serve()
	StartBgp(ctx context.Context, r *api.StartBgpRequest) error
	StopBgp(ctx context.Context, r *api.StopBgpRequest) error
	AddPeer(ctx context.Context, r *api.AddPeerRequest) error
	AddPath(ctx context.Context, r *api.AddPathRequest) (*api.AddPathResponse, error)
	DeletePath(ctx context.Context, r *api.DeletePathRequest) error
}

// GoBGPAdapter announces and withdraws an anycast VIP for this resolver
// node via a GoBGP speaker.
type GoBGPAdapter struct {
	bgpServer bgpBackend
	logger    *slog.Logger

	routerID   string
	listenPort uint32
	nextHop    string
}

// NewGoBGPAdapter initializes a new GoBGPAdapter with sensible loopback
// defaults; call SetConfig before Start in any real deployment.
func NewGoBGPAdapter(logger *slog.Logger) *GoBGPAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &GoBGPAdapter{
		bgpServer:  server.NewBgpServer(),
		logger:     logger,
		routerID:   "127.0.0.1",
		listenPort: 179,
		nextHop:    "127.0.0.1",
	}
}

// SetConfig overrides the router ID, listen port and next-hop used by
// Start/Announce. A zero-valued argument leaves the existing setting in
// place, so callers can update one field at a time.
func (a *GoBGPAdapter) SetConfig(routerID string, listenPort uint32, nextHop string) {
	if routerID != "" {
		a.routerID = routerID
	}
	if listenPort != 0 {
		a.listenPort = listenPort
	}
	if nextHop != "" {
		a.nextHop = nextHop
	}
}

// Start initializes the GoBGP server and establishes a peering session.
func (a *GoBGPAdapter) Start(ctx context.Context, localASN, peerASN uint32, peerIP string) error {
	go a.bgpServer.Serve()

	if err := a.bgpServer.StartBgp(ctx, &api.StartBgpRequest{
		Global: &api.Global{
			Asn:        localASN,
			RouterId:   a.routerID,
			ListenPort: int32(a.listenPort),
		},
	}); err != nil {
		return fmt.Errorf("failed to start BGP server: %w", err)
	}

	if err := a.bgpServer.AddPeer(ctx, &api.AddPeerRequest{
		Peer: &api.Peer{
			Conf: &api.PeerConf{
				NeighborAddress: peerIP,
				PeerAsn:         peerASN,
			},
		},
	}); err != nil {
		return fmt.Errorf("failed to add BGP peer: %w", err)
	}

	a.logger.Info("GoBGP speaker started", "local_asn", localASN, "peer_asn", peerASN, "peer_ip", peerIP)
	return nil
}

// Announce advertises a VIP prefix via BGP.
func (a *GoBGPAdapter) Announce(ctx context.Context, vip string) error {
	if a.bgpServer == nil {
		return fmt.Errorf("gobgp speaker not started")
	}
	if net.ParseIP(vip) == nil {
		return fmt.Errorf("invalid VIP address: %s", vip)
	}

	nlri, _ := anypb.New(&api.IPAddressPrefix{Prefix: vip, PrefixLen: 32})
	attrs, _ := anypb.New(&api.NextHopAttribute{NextHop: a.nextHop})

	_, err := a.bgpServer.AddPath(ctx, &api.AddPathRequest{
		Path: &api.Path{
			Family: &api.Family{Afi: api.Family_AFI_IP, Safi: api.Family_SAFI_UNICAST},
			Nlri:   nlri,
			Pattrs: []*anypb.Any{attrs},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to announce route %s: %w", vip, err)
	}

	a.logger.Info("announced anycast VIP", "vip", vip)
	return nil
}

// Withdraw removes a VIP advertisement from BGP.
func (a *GoBGPAdapter) Withdraw(ctx context.Context, vip string) error {
	if a.bgpServer == nil {
		return fmt.Errorf("gobgp speaker not started")
	}
	if net.ParseIP(vip) == nil {
		return fmt.Errorf("invalid VIP address: %s", vip)
	}

	nlri, _ := anypb.New(&api.IPAddressPrefix{Prefix: vip, PrefixLen: 32})

	err := a.bgpServer.DeletePath(ctx, &api.DeletePathRequest{
		Path: &api.Path{
			Family: &api.Family{Afi: api.Family_AFI_IP, Safi: api.Family_SAFI_UNICAST},
			Nlri:   nlri,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to withdraw route %s: %w", vip, err)
	}

	a.logger.Warn("withdrew anycast VIP", "vip", vip)
	return nil
}

// Stop gracefully shuts down the BGP server. A nil backend (never
// started) is a no-op.
func (a *GoBGPAdapter) Stop() error {
	if a.bgpServer == nil {
		return nil
	}
	return a.bgpServer.StopBgp(context.Background(), &api.StopBgpRequest{})
}

// RIB exposes the underlying speaker's route listing for
// PeerHealthMonitor, which needs ListPath but nothing else from
// bgpBackend. Returns nil if the backend doesn't expose it (e.g. a test
// mock narrower than the real speaker).
func (a *GoBGPAdapter) RIB() pathLister {
	if lister, ok := a.bgpServer.(pathLister); ok {
		return lister
	}
	return nil
}
