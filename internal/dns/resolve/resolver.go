package resolve

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"log/slog"
	"time"

	"github.com/poyrazK/resolvercore/internal/dns/cache"
	"github.com/poyrazK/resolvercore/internal/dns/transport"
	"github.com/poyrazK/resolvercore/internal/dns/wire"
	"github.com/poyrazK/resolvercore/internal/infrastructure/metrics"
)

// Resolver is the public facade: new, lookup, add_edns0, sign_message.
// It composes the cache and the resolution engine; callers never drive
// the state machine directly.
type Resolver struct {
	config *ResolverConfig
	cache  *cache.Cache
	engine *Engine
	logger *slog.Logger
}

// New constructs a resolver bound to the shared cache, wiring default
// UDP/TCP/TLS transport clients unless overridden via WithClients, and
// logging to slog.Default() unless overridden via WithLogger.
func New(cfg *ResolverConfig, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		config: cfg,
		cache:  cache.New(),
		logger: slog.Default(),
	}
	clients := Clients{
		UDP: transport.NewUDPClient(transport.MaxUDPPayloadNoEDNS0),
		TCP: transport.NewTCPClient(),
		TLS: transport.NewTLSClient(""),
	}
	for _, opt := range opts {
		opt(r, &clients)
	}
	r.engine = NewEngine(cfg, clients)
	r.engine.Logger = r.logger
	return r
}

// ResolverOption configures a Resolver at construction.
type ResolverOption func(*Resolver, *Clients)

// WithCache overrides the resolver's shared cache.
func WithCache(c *cache.Cache) ResolverOption {
	return func(r *Resolver, _ *Clients) { r.cache = c }
}

// WithClients replaces all three of the resolver's transport clients;
// a field left unset in clients becomes nil.
func WithClients(clients Clients) ResolverOption {
	return func(_ *Resolver, c *Clients) { *c = clients }
}

// WithLogger overrides the resolver's structured logger.
func WithLogger(logger *slog.Logger) ResolverOption {
	return func(r *Resolver, _ *Clients) { r.logger = logger }
}

// Lookup builds a recursion-desired query for (name, qtype, qclass),
// consults the cache, and on miss drives a Resolution over transport.
func (r *Resolver) Lookup(ctx context.Context, name wire.Name, transportProto Protocol, qtype wire.Rrtype, qclass wire.Rclass) (wire.Message, error) {
	lookupStart := time.Now()
	if r.config.CacheEnabled {
		if cached, ok := r.lookupCache(ctx, qtype, qclass, name); ok {
			metrics.LookupDuration.WithLabelValues("cache").Observe(time.Since(lookupStart).Seconds())
			metrics.LookupsTotal.WithLabelValues(qtype.String(), cached.Header.Rcode.String()).Inc()
			return cached, nil
		}
	}

	query := wire.Message{
		Header: wire.Header{
			ID: NewQueryID(),
			RD: true,
		},
		Question: []wire.Question{{Name: name, Qtype: qtype, Qclass: qclass}},
	}

	cfg := *r.config
	cfg.Protocol = transportProto
	engine := r.engine
	if transportProto != r.config.Protocol {
		engine = NewEngine(&cfg, r.engine.Clients)
		engine.Logger = r.logger
	}

	start := time.Now()
	resp, err := engine.Resolve(ctx, query)
	rtt := time.Since(start)

	if r.config.CacheEnabled {
		r.cache.InsertResponse(ctx, name, qclass, resp, rtt)
	}

	metrics.LookupDuration.WithLabelValues("network").Observe(time.Since(lookupStart).Seconds())
	metrics.LookupsTotal.WithLabelValues(qtype.String(), resp.Header.Rcode.String()).Inc()
	return resp, err
}

// lookupCache checks the authority section under Secondary(qclass, name),
// then the answer section under Primary(qtype, qclass, name): a negative
// (Secondary) hit short-circuits before even checking the positive
// (Primary) key, since NXDOMAIN covers the whole name regardless of qtype.
func (r *Resolver) lookupCache(ctx context.Context, qtype wire.Rrtype, qclass wire.Rclass, name wire.Name) (wire.Message, bool) {
	if negRRs, ok := r.cache.Get(ctx, cache.SectionAuthority, cache.SecondaryKey(qclass, name)); ok {
		return buildCachedMessage(negRRs, name, qtype, qclass), true
	}
	if rrs, ok := r.cache.Get(ctx, cache.SectionAnswer, cache.PrimaryKey(qtype, qclass, name)); ok {
		return buildCachedMessage(rrs, name, qtype, qclass), true
	}
	return wire.Message{}, false
}

func buildCachedMessage(stored []cache.StoredRR, name wire.Name, qtype wire.Rrtype, qclass wire.Rclass) wire.Message {
	msg := wire.Message{
		Header:   wire.Header{ID: NewQueryID(), QR: true, RD: true, RA: true},
		Question: []wire.Question{{Name: name, Qtype: qtype, Qclass: qclass}},
	}
	for _, s := range stored {
		msg.Header.Rcode = s.Rcode
		if s.Rcode == wire.RcodeNXDomain {
			msg.Authority = append(msg.Authority, s.ResourceRecord)
		} else {
			msg.Answer = append(msg.Answer, s.ResourceRecord)
		}
	}
	return msg
}

// AddEDNS0 appends an OPT pseudo-RR to msg's additional section,
// incrementing its implicit ARCount (derived at encode time from the
// slice length, per wire.Message.Encode).
func AddEDNS0(msg *wire.Message, payloadSize uint16, extendedRcode, version uint8, do bool, options []wire.OptOption) {
	opt := wire.OPTRdata{
		ExtendedRcode: extendedRcode,
		Version:       version,
		DO:            do,
		Options:       options,
	}
	msg.Additional = append(msg.Additional, wire.ResourceRecord{
		Name:   wire.RootName(),
		Rtype:  wire.TypeOPT,
		Rclass: wire.Rclass(payloadSize),
		TTL:    opt.TTL(),
		Rdata:  opt,
	})
}

// SignMessage appends a TSIG RR computed over the canonical message
// bytes, per spec §4.5: an opaque MAC over the wire bytes, not a claim
// of full RFC 8945 cryptographic correctness.
func SignMessage(msg wire.Message, key []byte, algorithm, keyName string, fudge uint16, timeSigned uint64) (wire.Message, error) {
	canonical, err := msg.Encode()
	if err != nil {
		return msg, err
	}

	mac := computeMAC(key, canonical)
	tsig := wire.TSIGRdata{
		Algorithm:  wire.MustName(algorithm),
		TimeSigned: timeSigned,
		Fudge:      fudge,
		MAC:        mac,
		OriginalID: msg.Header.ID,
		Error:      0,
	}
	msg.Additional = append(msg.Additional, wire.ResourceRecord{
		Name:   wire.MustName(keyName),
		Rtype:  wire.TypeTSIG,
		Rclass: wire.ClassANY,
		TTL:    0,
		Rdata:  tsig,
	})
	return msg, nil
}

// computeMAC is an HMAC-SHA256 keyed MAC over the canonical message
// bytes. Production TSIG requires negotiating the algorithm named in
// the RR; this resolver treats the MAC as opaque per §4.5/§9.
func computeMAC(key, message []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(message)
	return mac.Sum(nil)
}
