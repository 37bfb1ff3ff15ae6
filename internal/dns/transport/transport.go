// Package transport implements the UDP, TCP and TLS-over-TCP send/receive
// contracts the resolution engine drives: one logical exchange per call,
// bounded by a caller-supplied timeout, returning raw response octets for
// the wire codec to decode.
package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrClient is the sentinel every ClientError wraps.
var ErrClient = errors.New("transport error")

// ClientErrorKind enumerates the unified transport error taxonomy named
// in the component design.
type ClientErrorKind int

const (
	KindIO ClientErrorKind = iota
	KindFormatError
	KindServerFailure
	KindNameError
	KindNotImplemented
	KindRefused
	KindTemporaryError
	KindResponseError
	KindMessage
)

// ClientError carries the transport-layer failure kind plus the
// underlying cause, if any.
type ClientError struct {
	Kind ClientErrorKind
	Msg  string
	Err  error
}

func (e *ClientError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *ClientError) Unwrap() error {
	if e.Err != nil {
		return errors.Join(ErrClient, e.Err)
	}
	return ErrClient
}

func newClientError(kind ClientErrorKind, msg string, cause error) *ClientError {
	return &ClientError{Kind: kind, Msg: msg, Err: cause}
}

// ErrTimeout is returned by UDPClient (wrapped in a ClientError of kind
// KindIO) when the per-operation deadline elapses with no response.
// TCPClient and TLSClient wrap the underlying net error instead.
var ErrTimeout = errors.New("transport: timed out waiting for response")

// Result is one exchange's response octets plus the address that sent
// them, matching the Three-transports contract: send(query, timeout) ->
// Result<(response_octets, peer_addr), TransportError>.
type Result struct {
	Response []byte
	Peer     net.Addr
}

// Client is the contract all three transports share. query is the
// already-encoded wire message; deadline bounds both the connect (where
// applicable) and the exchange.
type Client interface {
	Send(ctx context.Context, query []byte, server net.Addr) (Result, error)
}
