package transport

import (
	"context"
	"encoding/binary"
	"io"
	"net"
)

// TCPClient dials a fresh connection per Send call and frames the query
// and response with a preceding u16 length in network byte order, per
// RFC 1035 §4.2.2. A single connection serves exactly one query/response
// exchange in this design.
type TCPClient struct{}

func NewTCPClient() *TCPClient { return &TCPClient{} }

func (c *TCPClient) Send(ctx context.Context, query []byte, server net.Addr) (Result, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", server.String())
	if err != nil {
		return Result{}, newClientError(KindIO, "tcp: dial", err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return Result{}, newClientError(KindIO, "tcp: set deadline", err)
		}
	}

	if len(query) > 0xFFFF {
		return Result{}, newClientError(KindFormatError, "tcp: query exceeds 65535 octets", nil)
	}
	if err := writeFramed(conn, query); err != nil {
		return Result{}, newClientError(KindIO, "tcp: send query", err)
	}

	response, err := readFramed(conn)
	if err != nil {
		return Result{}, newClientError(KindIO, "tcp: read response", err)
	}
	return Result{Response: response, Peer: conn.RemoteAddr()}, nil
}

func writeFramed(w io.Writer, msg []byte) error {
	var lenBuf [2]byte
	binary.BigEndian.PutUint16(lenBuf[:], uint16(len(msg)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err := w.Write(msg)
	return err
}

func readFramed(r io.Reader) ([]byte, error) {
	var lenBuf [2]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint16(lenBuf[:])
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}
