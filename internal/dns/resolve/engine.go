// Package resolve implements the resolution state machine: cyclic
// server selection, RFC 6298 RTT/RTO smoothing, UDP->TCP escalation, and
// the SERVFAIL/NOTIMP acceptance policy driving retry across a
// configured set of name servers.
package resolve

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"log/slog"
	"time"

	"github.com/poyrazK/resolvercore/internal/core/domain"
	"github.com/poyrazK/resolvercore/internal/dns/transport"
	"github.com/poyrazK/resolvercore/internal/dns/wire"
	"github.com/poyrazK/resolvercore/internal/infrastructure/metrics"
)

// Clients bundles the three transport clients the engine drives. TCP is
// always present even when the configured default protocol is UDP,
// since UDP->TCP escalation requires it.
type Clients struct {
	UDP transport.Client
	TCP transport.Client
	TLS transport.Client
}

func (c Clients) forProtocol(p Protocol) transport.Client {
	switch p {
	case ProtocolTCP:
		return c.TCP
	case ProtocolTLS:
		return c.TLS
	default:
		return c.UDP
	}
}

// outcome classifies one exchange's result for the state machine.
type outcome int

const (
	outcomeAccepted outcome = iota
	outcomeRetryable
	outcomeFatal
	outcomeEscalate
	outcomeAdvance
)

// Engine drives one resolution to completion against a ResolverConfig
// and a set of transport clients.
type Engine struct {
	Config  *ResolverConfig
	Clients Clients
	Logger  *slog.Logger
}

// NewEngine builds an Engine bound to cfg and clients, logging to
// slog.Default() unless overridden by setting Logger directly.
func NewEngine(cfg *ResolverConfig, clients Clients) *Engine {
	return &Engine{Config: cfg, Clients: clients, Logger: slog.Default()}
}

// Resolve drives query through the full state machine: Idle ->
// Transmitting -> AwaitingResponse -> {Accepted | RetryableFailure |
// FatalFailure | Escalate}, cycling over state.Servers until an
// appropriate response is accepted or the global work budget is spent.
//
// It always returns a well-formed wire.Message: on success, the
// accepted response; on exhaustion, a synthesized SERVFAIL alongside
// the terminal error, per the design's resolved open question.
func (e *Engine) Resolve(ctx context.Context, query wire.Message) (wire.Message, error) {
	state := newStateBlock(e.Config)
	if len(state.Servers) == 0 {
		return synthesizeServfail(query), newResolverError(domain.ErrEmptyQuery, "")
	}

	rtt := newRTTEstimator(e.Config.Timeout)
	protocol := e.Config.Protocol

	qname, qtype := "", wire.Rrtype(0)
	if len(query.Question) > 0 {
		qname, qtype = query.Question[0].Name.String(), query.Question[0].Qtype
	}
	requestID := domain.NewRequestID()

	for {
		accepted, resp, err := e.runCycle(ctx, query, state, rtt, protocol)
		if accepted {
			e.Logger.Info("resolution accepted", "request_id", requestID, "qname", qname, "qtype", qtype.String(), "rcode", resp.Header.Rcode.String())
			return resp, nil
		}
		if err != nil {
			e.Logger.Warn("resolution terminated", "request_id", requestID, "qname", qname, "qtype", qtype.String(), "error", err)
			return resp, err
		}

		// Full cycle completed with no appropriate response: back off
		// before starting the next cycle (spec §4.4 rule 7).
		rtt.backoff(e.Config.MaxRetryInterval)
		delay := e.Config.MinRetryInterval
		if rtt.rto > delay {
			delay = rtt.rto
		}
		select {
		case <-ctx.Done():
			return synthesizeServfail(query), newResolverError(domain.ErrTimeout, "")
		case <-time.After(delay):
		}
		state.resetServerBudgets(e.Config.RetransmissionLoopAttempts)
	}
}

// runCycle walks the server list once (cyclic, wrapping modulo the list
// length) until either an appropriate response is accepted, the global
// work budget is spent, or a full cycle completes without success.
func (e *Engine) runCycle(ctx context.Context, query wire.Message, state *StateBlock, rtt *rttEstimator, protocol Protocol) (accepted bool, resp wire.Message, err error) {
	for {
		entry := state.current()
		if entry.exhausted() {
			if cycleComplete := state.advance(); cycleComplete {
				return false, wire.Message{}, nil
			}
			continue
		}
		if !entry.Info.Healthy() && state.anyHealthyAvailable() {
			// Skip this unhealthy server while a healthy one still has
			// attempts left; it gets its turn once none do.
			if cycleComplete := state.advance(); cycleComplete {
				return false, wire.Message{}, nil
			}
			continue
		}

		state.decrementGlobal()
		if state.globalExhausted() {
			metrics.RetriesLimitExceededTotal.Inc()
			return false, synthesizeServfail(query), newResolverError(domain.ErrRetriesLimitExceeded, entry.Info.Addr.String())
		}

		out, response, took, _ := e.exchange(ctx, query, entry.Info, protocol)
		rtt.update(took)

		switch out {
		case outcomeAccepted:
			return true, response, nil

		case outcomeEscalate:
			// UDP->TCP escalation: one additional attempt to the same
			// server over TCP before advancing (spec §4.4 rule 6).
			metrics.EscalationsTotal.Inc()
			state.decrementGlobal()
			if state.globalExhausted() {
				metrics.RetriesLimitExceededTotal.Inc()
				return false, synthesizeServfail(query), newResolverError(domain.ErrRetriesLimitExceeded, entry.Info.Addr.String())
			}
			out2, response2, took2, _ := e.exchange(ctx, query, entry.Info, ProtocolTCP)
			rtt.update(took2)
			if out2 == outcomeAccepted {
				return true, response2, nil
			}
			entry.RemainingAttempts--
			if state.advance() {
				return false, wire.Message{}, nil
			}

		case outcomeRetryable:
			entry.RemainingAttempts--
			if entry.RemainingAttempts <= 0 {
				if state.advance() {
					return false, wire.Message{}, nil
				}
			}

		case outcomeFatal:
			// FatalFailure is not retried against the same server.
			if state.advance() {
				return false, wire.Message{}, nil
			}

		case outcomeAdvance:
			// An inappropriate response with nothing left to escalate
			// to (non-UDP protocol) always advances past this server.
			entry.RemainingAttempts--
			if state.advance() {
				return false, wire.Message{}, nil
			}

		default:
			if state.advance() {
				return false, wire.Message{}, nil
			}
		}
	}
}

// exchange performs one transmission/response cycle against server over
// protocol, validates the response, and classifies the outcome.
func (e *Engine) exchange(ctx context.Context, query wire.Message, server *ServerInfo, protocol Protocol) (outcome, wire.Message, time.Duration, error) {
	encoded, err := query.Encode()
	if err != nil {
		return outcomeFatal, wire.Message{}, 0, err
	}

	opCtx, cancel := context.WithTimeout(ctx, e.Config.Timeout)
	defer cancel()

	client := e.Clients.forProtocol(protocol)
	addr := server.UDPAddr()
	if protocol != ProtocolUDP {
		addr = server.TCPAddr()
	}

	protoLabel := protocolLabel(protocol)

	start := time.Now()
	result, sendErr := client.Send(opCtx, encoded, addr)
	elapsed := time.Since(start)
	if sendErr != nil {
		// Any transport-layer I/O error or timeout is a RetryableFailure
		// on this server (spec §4.4 rule 3).
		cause := domain.ErrIO
		if errors.Is(sendErr, transport.ErrTimeout) {
			cause = domain.ErrTimeout
		}
		metrics.TransmissionsTotal.WithLabelValues(protoLabel, "retryable").Inc()
		return outcomeRetryable, wire.Message{}, elapsed, newResolverError(cause, server.Addr.String())
	}

	resp, decErr := wire.Decode(result.Response)
	if decErr != nil {
		metrics.TransmissionsTotal.WithLabelValues(protoLabel, "fatal").Inc()
		return outcomeFatal, wire.Message{}, elapsed, newResolverError(domain.ErrFormat, server.Addr.String())
	}

	if resp.Header.ID != query.Header.ID {
		metrics.TransmissionsTotal.WithLabelValues(protoLabel, "fatal").Inc()
		return outcomeFatal, wire.Message{}, elapsed, newResolverError(domain.ErrFormat, server.Addr.String())
	}
	if !resp.Header.QR {
		metrics.TransmissionsTotal.WithLabelValues(protoLabel, "fatal").Inc()
		return outcomeFatal, wire.Message{}, elapsed, newResolverError(domain.ErrFormat, server.Addr.String())
	}

	if protocol == ProtocolUDP && (resp.Header.TC || !appropriate(resp.Header.Rcode)) {
		metrics.TransmissionsTotal.WithLabelValues(protoLabel, "escalate").Inc()
		return outcomeEscalate, resp, elapsed, nil
	}

	if !appropriate(resp.Header.Rcode) {
		metrics.TransmissionsTotal.WithLabelValues(protoLabel, "advance").Inc()
		return outcomeAdvance, resp, elapsed, nil
	}

	metrics.TransmissionsTotal.WithLabelValues(protoLabel, "accepted").Inc()
	return outcomeAccepted, resp, elapsed, nil
}

// protocolLabel renders protocol as a metrics label value.
func protocolLabel(p Protocol) string {
	switch p {
	case ProtocolTCP:
		return "tcp"
	case ProtocolTLS:
		return "tls"
	default:
		return "udp"
	}
}

// appropriate implements spec §4.4 rule 5: a response is appropriate
// unless its rcode is SERVFAIL or NOTIMP.
func appropriate(rcode wire.Rcode) bool {
	return rcode != wire.RcodeServFail && rcode != wire.RcodeNotImp
}

// synthesizeServfail builds the well-formed placeholder message
// returned whenever a resolution ends without an accepted response, per
// the design's resolved open question.
func synthesizeServfail(query wire.Message) wire.Message {
	h := query.Header
	h.QR = true
	h.RA = false
	h.Rcode = wire.RcodeServFail
	h.ANCount, h.NSCount, h.ARCount = 0, 0, 0
	return wire.Message{Header: h, Question: query.Question}
}

// NewQueryID returns a random 16-bit transaction id, per the facade's
// lookup contract.
func NewQueryID() uint16 {
	var b [2]byte
	_, _ = rand.Read(b[:])
	return binary.BigEndian.Uint16(b[:])
}
