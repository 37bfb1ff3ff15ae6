package transport

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestListener_UDP_RoundTrip(t *testing.T) {
	handle := func(_ context.Context, query []byte, _ net.Addr) []byte {
		resp := make([]byte, len(query))
		copy(resp, query)
		resp[0] = 0xFF
		return resp
	}

	l := NewListener("127.0.0.1:0", handle, nil)
	l.Workers = 2

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// NewListener binds a fixed address; use an ephemeral port via a
	// pre-bound conn to discover one, then point the listener at it.
	probe, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := probe.LocalAddr().String()
	require.NoError(t, probe.Close())
	l.Addr = addr

	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()
	time.Sleep(50 * time.Millisecond)

	conn, err := net.Dial("udp", addr)
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte{0x00, 0x01, 0x02})
	require.NoError(t, err)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	buf := make([]byte, 16)
	n, err := conn.Read(buf)
	require.NoError(t, err)
	require.Equal(t, byte(0xFF), buf[0])
	require.Equal(t, 3, n)

	cancel()
	<-done
}
