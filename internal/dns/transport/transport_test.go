package transport

import (
	"bytes"
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFramedReadWrite_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	msg := []byte("hello dns")
	require.NoError(t, writeFramed(&buf, msg))

	got, err := readFramed(&buf)
	require.NoError(t, err)
	assert.Equal(t, msg, got)
}

func TestUDPClient_SendAndReceive(t *testing.T) {
	server, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	defer server.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		buf := make([]byte, 512)
		n, addr, err := server.ReadFromUDP(buf)
		if err != nil {
			return
		}
		echo := append([]byte("echo:"), buf[:n]...)
		_, _ = server.WriteToUDP(echo, addr)
	}()

	client := NewUDPClient(512)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	result, err := client.Send(ctx, []byte("ping"), server.LocalAddr())
	require.NoError(t, err)
	assert.Equal(t, "echo:ping", string(result.Response))
	<-done
}

func TestUDPClient_TimesOutWhenServerSilent(t *testing.T) {
	silent, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	defer silent.Close()

	client := NewUDPClient(512)
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err = client.Send(ctx, []byte("ping"), silent.LocalAddr())
	require.Error(t, err)
	var clientErr *ClientError
	require.ErrorAs(t, err, &clientErr)
	assert.ErrorIs(t, clientErr, ErrClient)
}

func TestTCPClient_SendAndReceive(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		msg, err := readFramed(conn)
		if err != nil {
			return
		}
		_ = writeFramed(conn, append([]byte("echo:"), msg...))
	}()

	client := NewTCPClient()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	result, err := client.Send(ctx, []byte("ping"), ln.Addr())
	require.NoError(t, err)
	assert.Equal(t, "echo:ping", string(result.Response))
}
