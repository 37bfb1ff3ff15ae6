package resolve

import (
	"net"
	"sync/atomic"

	"github.com/poyrazK/resolvercore/internal/infrastructure/metrics"
)

// ServerInfo is a configured name server. It is constructed once and
// shared read-only across concurrent resolutions — never mutated after
// ResolverConfig builds it — so StateBlocks hold a *ServerInfo handle
// rather than copying the connection identity.
type ServerInfo struct {
	Addr      net.IP
	Port      uint16
	Transport Protocol

	// Key/Algorithm name a TSIG key for this server, if any. Either both
	// are set or neither is.
	Key       []byte
	KeyName   string
	Algorithm string

	// Healthy is read by cyclic server selection to deprioritize a
	// server an external health signal (e.g. BGP route withdrawal, see
	// adapters/routing) has marked down. It defaults to true and is the
	// one field ServerInfo allows to be updated post-construction, via
	// SetHealthy, since health is observed out-of-band from any single
	// resolution.
	healthy atomic.Bool
}

// NewServerInfo builds a ServerInfo bound to addr:port over transport.
func NewServerInfo(addr net.IP, port uint16, transport Protocol) *ServerInfo {
	s := &ServerInfo{Addr: addr, Port: port, Transport: transport}
	s.healthy.Store(true)
	metrics.ServerHealthy.WithLabelValues(addr.String()).Set(1)
	return s
}

// WithTSIG attaches a TSIG key to s and returns s for chaining.
func (s *ServerInfo) WithTSIG(keyName, algorithm string, key []byte) *ServerInfo {
	s.KeyName, s.Algorithm, s.Key = keyName, algorithm, key
	return s
}

// Healthy reports whether the last external health signal considered
// this server reachable. Absent any signal, a server is always healthy.
func (s *ServerInfo) Healthy() bool { return s.healthy.Load() }

// SetHealthy updates the health signal; called by
// internal/adapters/routing when a BGP-withdrawn peer is detected.
func (s *ServerInfo) SetHealthy(v bool) {
	s.healthy.Store(v)
	value := 0.0
	if v {
		value = 1.0
	}
	metrics.ServerHealthy.WithLabelValues(s.Addr.String()).Set(value)
}

// UDPAddr returns the net.Addr transport clients dial.
func (s *ServerInfo) UDPAddr() net.Addr {
	return &net.UDPAddr{IP: s.Addr, Port: int(s.Port)}
}

// TCPAddr returns the net.Addr transport clients dial for TCP/TLS.
func (s *ServerInfo) TCPAddr() net.Addr {
	return &net.TCPAddr{IP: s.Addr, Port: int(s.Port)}
}

// ServerEntry is a per-request handle to a shared ServerInfo plus a
// per-server work counter, decremented on each transmission to that
// server.
type ServerEntry struct {
	Info              *ServerInfo
	RemainingAttempts int
}

func newServerEntry(info *ServerInfo, attempts int) *ServerEntry {
	return &ServerEntry{Info: info, RemainingAttempts: attempts}
}

// exhausted reports whether e has spent its per-server attempt budget.
// Health is deliberately not considered here: an unhealthy server is
// skipped by StateBlock.advance's caller only while a healthy
// alternative remains, and must still be tried once a cycle exhausts
// every healthy server (spec: skipped on the first pass, tried once
// the cycle runs out of healthy servers).
func (e *ServerEntry) exhausted() bool {
	return e.RemainingAttempts <= 0
}
