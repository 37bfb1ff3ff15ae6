package transport

import (
	"context"
	"errors"
	"net"
)

// MaxUDPPayloadNoEDNS0 is the historical plain-DNS UDP payload ceiling
// (RFC 1035 §4.2.1); callers that attached an EDNS0 OPT record may read
// up to its advertised payload size instead.
const MaxUDPPayloadNoEDNS0 = 512

// UDPClient sends one datagram per Send call and awaits exactly one
// reply. A single instance may be reused across calls; each call binds
// its own ephemeral socket and tears it down on return, matching the
// "sockets are not pooled" resource model.
type UDPClient struct {
	// MaxPayload bounds the receive buffer; 512 unless the caller
	// advertised a larger EDNS0 UDP payload size.
	MaxPayload int
}

// NewUDPClient returns a client that reads up to maxPayload octets per
// response (at least MaxUDPPayloadNoEDNS0).
func NewUDPClient(maxPayload int) *UDPClient {
	if maxPayload < MaxUDPPayloadNoEDNS0 {
		maxPayload = MaxUDPPayloadNoEDNS0
	}
	return &UDPClient{MaxPayload: maxPayload}
}

func (c *UDPClient) Send(ctx context.Context, query []byte, server net.Addr) (Result, error) {
	conn, err := net.ListenUDP("udp", nil)
	if err != nil {
		return Result{}, newClientError(KindIO, "udp: bind ephemeral socket", err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return Result{}, newClientError(KindIO, "udp: set deadline", err)
		}
	}

	udpAddr, ok := server.(*net.UDPAddr)
	if !ok {
		resolved, err := net.ResolveUDPAddr("udp", server.String())
		if err != nil {
			return Result{}, newClientError(KindIO, "udp: resolve server address", err)
		}
		udpAddr = resolved
	}

	if _, err := conn.WriteToUDP(query, udpAddr); err != nil {
		return Result{}, newClientError(KindIO, "udp: send query", err)
	}

	buf := make([]byte, c.MaxPayload)
	n, peer, err := conn.ReadFromUDP(buf)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeoutErr(err) {
			return Result{}, newClientError(KindIO, "udp: await response", ErrTimeout)
		}
		return Result{}, newClientError(KindIO, "udp: await response", err)
	}
	return Result{Response: buf[:n], Peer: peer}, nil
}

func isTimeoutErr(err error) bool {
	var nerr net.Error
	return errors.As(err, &nerr) && nerr.Timeout()
}
