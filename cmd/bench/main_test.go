package main

import (
	"net"
	"testing"
	"time"

	"github.com/poyrazK/resolvercore/internal/dns/wire"
)

func TestPrintReport(t *testing.T) {
	stats := &Stats{
		TotalQueries:  10,
		Success:       8,
		Errors:        2,
		BytesSent:     100,
		BytesReceived: 200,
		Latencies:     make(chan time.Duration, 10),
	}
	stats.Latencies <- 10 * time.Millisecond
	stats.Latencies <- 20 * time.Millisecond
	close(stats.Latencies)

	// Verify it doesn't panic.
	printReport(1*time.Second, stats, 1)
}

func TestRunBenchmark(t *testing.T) {
	addr, _ := net.ResolveUDPAddr("udp", "127.0.0.1:0")
	conn, _ := net.ListenUDP("udp", addr)
	defer func() { _ = conn.Close() }()

	serverAddr := conn.LocalAddr().String()

	go func() {
		buf := make([]byte, 512)
		for {
			n, remote, err := conn.ReadFromUDP(buf)
			if err != nil {
				return
			}
			msg, err := wire.Decode(buf[:n])
			if err != nil {
				continue
			}
			resp := wire.Message{
				Header:   wire.Header{ID: msg.Header.ID, QR: true, Rcode: wire.RcodeNoError},
				Question: msg.Question,
			}
			encoded, err := resp.Encode()
			if err != nil {
				continue
			}
			_, _ = conn.WriteToUDP(encoded, remote)
		}
	}()

	runBenchmark(serverAddr, 10, 2, 100, 1.1, 100)
}

func TestRunWorker_ConnError(t *testing.T) {
	stats := &Stats{Latencies: make(chan time.Duration, 1)}
	// Port 1 with no listener behind it dials fine but every read times out;
	// an unroutable address fails the dial outright. Either way runWorker
	// must not panic.
	runWorker("127.0.0.1:1", 1, 0, 10, 1.1, 100, stats)
	close(stats.Latencies)
}
