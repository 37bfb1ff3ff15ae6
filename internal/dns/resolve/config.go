package resolve

import (
	"net"
	"time"
)

// Defaults match spec §6's enumerated configuration.
const (
	DefaultBindAddr                   = "127.0.0.1:5333"
	DefaultRetransmissionLoopAttempts = 3
	DefaultGlobalRetransmissionLimit  = 30
	DefaultTimeout                    = 45 * time.Second
	DefaultMaxRetryInterval           = 10 * time.Second
	DefaultCacheEnabled               = true
	DefaultRecursiveAvailable         = false
)

// ResolverConfig is the enumerated configuration surface named in spec
// §6. A zero-value ResolverConfig is not usable; build one with
// NewResolverConfig.
type ResolverConfig struct {
	NameServers []*ServerInfo

	BindAddr                   string
	RetransmissionLoopAttempts int
	GlobalRetransmissionLimit  int
	Timeout                    time.Duration
	MinRetryInterval           time.Duration
	MaxRetryInterval           time.Duration
	CacheEnabled               bool
	RecursiveAvailable         bool
	Protocol                   Protocol
}

// NewResolverConfig returns a config carrying every spec-named default.
// If nameServers is empty, the built-in seed list (Google, Cloudflare,
// OpenDNS, Quad9) is used instead, per spec §6.
func NewResolverConfig(nameServers []*ServerInfo) *ResolverConfig {
	if len(nameServers) == 0 {
		nameServers = SeedServers()
	}
	cfg := &ResolverConfig{
		NameServers:                nameServers,
		BindAddr:                   DefaultBindAddr,
		RetransmissionLoopAttempts: DefaultRetransmissionLoopAttempts,
		GlobalRetransmissionLimit:  DefaultGlobalRetransmissionLimit,
		Timeout:                    DefaultTimeout,
		MaxRetryInterval:           DefaultMaxRetryInterval,
		CacheEnabled:               DefaultCacheEnabled,
		RecursiveAvailable:         DefaultRecursiveAvailable,
		Protocol:                   ProtocolUDP,
	}
	cfg.MinRetryInterval = minRetryInterval(len(cfg.NameServers))
	return cfg
}

// AddServer appends a name server to cfg and recomputes
// MinRetryInterval, which depends on the server count.
func (c *ResolverConfig) AddServer(s *ServerInfo) {
	c.NameServers = append(c.NameServers, s)
	c.MinRetryInterval = minRetryInterval(len(c.NameServers))
}

// RemoveServers clears the configured name server list. It does not
// repopulate SeedServers and leaves MinRetryInterval unchanged; until
// AddServer is called, Resolve answers with a synthesized SERVFAIL and
// ErrEmptyQuery.
func (c *ResolverConfig) RemoveServers() {
	c.NameServers = nil
}

// minRetryInterval implements spec §6's max(1, 5/N_servers) rule.
func minRetryInterval(numServers int) time.Duration {
	if numServers <= 0 {
		numServers = 1
	}
	seconds := 5 / numServers
	if seconds < 1 {
		seconds = 1
	}
	return time.Duration(seconds) * time.Second
}

// SeedServers returns the built-in fallback server list: Google,
// Cloudflare, OpenDNS and Quad9, primary and secondary, over UDP.
func SeedServers() []*ServerInfo {
	return []*ServerInfo{
		NewServerInfo(net.ParseIP("8.8.8.8"), 53, ProtocolUDP),
		NewServerInfo(net.ParseIP("8.8.4.4"), 53, ProtocolUDP),
		NewServerInfo(net.ParseIP("1.1.1.1"), 53, ProtocolUDP),
		NewServerInfo(net.ParseIP("1.0.0.1"), 53, ProtocolUDP),
		NewServerInfo(net.ParseIP("208.67.222.222"), 53, ProtocolUDP),
		NewServerInfo(net.ParseIP("208.67.220.220"), 53, ProtocolUDP),
		NewServerInfo(net.ParseIP("9.9.9.9"), 53, ProtocolUDP),
		NewServerInfo(net.ParseIP("149.112.112.112"), 53, ProtocolUDP),
	}
}
