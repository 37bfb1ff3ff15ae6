package transport

import (
	"context"
	"log/slog"
	"net"
	"runtime"
	"syscall"
)

// Handler answers one client query, returning the encoded response to
// write back. It never blocks past ctx's deadline.
type Handler func(ctx context.Context, query []byte, from net.Addr) []byte

// Listener runs cmd/resolved's client-facing forwarding front-end: N
// SO_REUSEPORT UDP listeners feeding a bounded worker pool, plus one TCP
// listener, matching the teacher's server.Run parallel-listener shape
// generalized away from any authoritative-server dependency (a plain
// Handler callback, not a zone repository).
type Listener struct {
	Addr       string
	Workers    int
	Logger     *slog.Logger
	Handle     Handler
	MaxUDPSize int
	udpQueue   chan udpTask
}

type udpTask struct {
	addr net.Addr
	data []byte
	conn net.PacketConn
}

// NewListener builds a Listener bound to addr, defaulting Workers to
// runtime.NumCPU()*8 and MaxUDPSize to MaxUDPPayloadNoEDNS0.
func NewListener(addr string, handle Handler, logger *slog.Logger) *Listener {
	if logger == nil {
		logger = slog.Default()
	}
	return &Listener{
		Addr:       addr,
		Workers:    runtime.NumCPU() * 8,
		Logger:     logger,
		Handle:     handle,
		MaxUDPSize: MaxUDPPayloadNoEDNS0,
		udpQueue:   make(chan udpTask, 10000),
	}
}

// Run starts the UDP and TCP listeners and blocks until ctx is done.
func (l *Listener) Run(ctx context.Context) error {
	lc := net.ListenConfig{
		Control: func(_, _ string, c syscall.RawConn) error {
			return c.Control(func(fd uintptr) {
				if err := setReusePort(fd); err != nil {
					l.Logger.Warn("setReusePort failed", "error", err)
				}
			})
		},
	}

	numListeners := runtime.NumCPU()
	if runtime.GOOS == "windows" {
		numListeners = 1
	}
	for i := 0; i < numListeners; i++ {
		conn, err := lc.ListenPacket(ctx, "udp", l.Addr)
		if err != nil {
			return newClientError(KindIO, "listener: bind udp", err)
		}
		go l.readUDP(ctx, conn)
	}

	for i := 0; i < l.Workers; i++ {
		go l.udpWorker(ctx)
	}

	tcpListener, err := lc.Listen(ctx, "tcp", l.Addr)
	if err != nil {
		return newClientError(KindIO, "listener: bind tcp", err)
	}
	go func() {
		<-ctx.Done()
		_ = tcpListener.Close()
	}()
	go l.acceptTCP(ctx, tcpListener)

	<-ctx.Done()
	return nil
}

func (l *Listener) readUDP(ctx context.Context, conn net.PacketConn) {
	defer conn.Close()
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()
	buf := make([]byte, l.MaxUDPSize)
	for {
		n, addr, err := conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			continue
		}
		data := make([]byte, n)
		copy(data, buf[:n])
		select {
		case l.udpQueue <- udpTask{addr: addr, data: data, conn: conn}:
		default:
			l.Logger.Warn("udp queue full, dropping query", "from", addr.String())
		}
	}
}

func (l *Listener) udpWorker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case task := <-l.udpQueue:
			resp := l.Handle(ctx, task.data, task.addr)
			if resp != nil {
				_, _ = task.conn.WriteTo(resp, task.addr)
			}
		}
	}
}

func (l *Listener) acceptTCP(ctx context.Context, ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			continue
		}
		go l.handleTCPConn(ctx, conn)
	}
}

func (l *Listener) handleTCPConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	query, err := readFramed(conn)
	if err != nil {
		return
	}
	resp := l.Handle(ctx, query, conn.RemoteAddr())
	if resp == nil {
		return
	}
	_ = writeFramed(conn, resp)
}
