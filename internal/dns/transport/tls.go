package transport

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"
)

// ErrPermissionDenied is returned when the TLS server's certificate does
// not match the configured server's hostname.
var ErrPermissionDenied = &ClientError{Kind: KindRefused, Msg: "tls: certificate does not match server hostname"}

// TLSClient is framed identically to TCPClient, wrapped in TLS on port
// 853 with the platform trust store, using ServerName for SNI.
type TLSClient struct {
	// ServerName is the hostname used for SNI and certificate
	// verification; it must be set to the configured server's resolved
	// hostname, not its bare IP address.
	ServerName string
}

func NewTLSClient(serverName string) *TLSClient {
	return &TLSClient{ServerName: serverName}
}

func (c *TLSClient) Send(ctx context.Context, query []byte, server net.Addr) (Result, error) {
	var d net.Dialer
	tlsConf := &tls.Config{ServerName: c.ServerName, MinVersion: tls.VersionTLS12}

	rawConn, err := d.DialContext(ctx, "tcp", server.String())
	if err != nil {
		return Result{}, newClientError(KindIO, "tls: dial", err)
	}
	defer rawConn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		if err := rawConn.SetDeadline(deadline); err != nil {
			return Result{}, newClientError(KindIO, "tls: set deadline", err)
		}
	}

	conn := tls.Client(rawConn, tlsConf)
	if err := conn.HandshakeContext(ctx); err != nil {
		if isHostnameMismatch(err) {
			return Result{}, ErrPermissionDenied
		}
		return Result{}, newClientError(KindIO, "tls: handshake", err)
	}

	if len(query) > 0xFFFF {
		return Result{}, newClientError(KindFormatError, "tls: query exceeds 65535 octets", nil)
	}
	if err := writeFramed(conn, query); err != nil {
		return Result{}, newClientError(KindIO, "tls: send query", err)
	}

	response, err := readFramed(conn)
	if err != nil {
		return Result{}, newClientError(KindIO, "tls: read response", err)
	}
	return Result{Response: response, Peer: rawConn.RemoteAddr()}, nil
}

func isHostnameMismatch(err error) bool {
	var hostErr x509.HostnameError
	return errors.As(err, &hostErr)
}
