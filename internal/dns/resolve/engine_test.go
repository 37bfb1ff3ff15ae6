package resolve

import (
	"context"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poyrazK/resolvercore/internal/dns/transport"
	"github.com/poyrazK/resolvercore/internal/dns/wire"
)

// fakeClient implements transport.Client with a caller-supplied
// responder, so the state machine can be driven deterministically
// without real sockets.
type fakeClient struct {
	calls    atomic.Int32
	respond  func(query []byte) (transport.Result, error)
}

func (f *fakeClient) Send(_ context.Context, query []byte, _ net.Addr) (transport.Result, error) {
	f.calls.Add(1)
	return f.respond(query)
}

func silentClient() *fakeClient {
	return &fakeClient{respond: func([]byte) (transport.Result, error) {
		return transport.Result{}, &transport.ClientError{Kind: transport.KindIO, Msg: "timed out", Err: transport.ErrTimeout}
	}}
}

func answerClient(t *testing.T, rcode wire.Rcode, tc bool, answer []wire.ResourceRecord) *fakeClient {
	t.Helper()
	return &fakeClient{respond: func(query []byte) (transport.Result, error) {
		q, err := wire.Decode(query)
		require.NoError(t, err)
		resp := wire.Message{
			Header: wire.Header{
				ID:    q.Header.ID,
				QR:    true,
				RD:    q.Header.RD,
				RA:    true,
				TC:    tc,
				Rcode: rcode,
			},
			Question: q.Question,
			Answer:   answer,
		}
		raw, err := resp.Encode()
		require.NoError(t, err)
		return transport.Result{Response: raw}, nil
	}}
}

func mustName(t *testing.T, s string) wire.Name {
	t.Helper()
	n, err := wire.NewName(s)
	require.NoError(t, err)
	return n
}

func testQuery(t *testing.T) wire.Message {
	t.Helper()
	name := mustName(t, "example.com.")
	return wire.Message{
		Header:   wire.Header{ID: 0x1234, RD: true},
		Question: []wire.Question{{Name: name, Qtype: wire.TypeA, Qclass: wire.ClassIN}},
	}
}

func baseConfig(servers ...*ServerInfo) *ResolverConfig {
	cfg := NewResolverConfig(servers)
	cfg.RetransmissionLoopAttempts = 1
	cfg.GlobalRetransmissionLimit = len(servers)
	cfg.Timeout = 2 * time.Second
	cfg.MinRetryInterval = 10 * time.Millisecond
	cfg.MaxRetryInterval = 20 * time.Millisecond
	return cfg
}

func TestEngine_RetryCounting_AllServersSilent(t *testing.T) {
	const limit = 4
	server := NewServerInfo(net.ParseIP("127.0.0.1"), 53, ProtocolUDP)
	cfg := baseConfig(server)
	cfg.GlobalRetransmissionLimit = limit
	cfg.RetransmissionLoopAttempts = limit // so the per-server budget never forces an early advance

	client := silentClient()
	engine := NewEngine(cfg, Clients{UDP: client, TCP: client, TLS: client})

	_, err := engine.Resolve(context.Background(), testQuery(t))
	require.Error(t, err)
	assert.True(t, IsRetriesLimitExceeded(err))
	assert.EqualValues(t, limit, client.calls.Load(), "exactly the global limit's worth of transmissions should occur")
}

func TestEngine_UDPToTCPEscalation_OnTruncatedResponse(t *testing.T) {
	server := NewServerInfo(net.ParseIP("127.0.0.1"), 53, ProtocolUDP)
	cfg := baseConfig(server)
	cfg.GlobalRetransmissionLimit = 5 // covers the UDP try plus its TCP escalation

	udpClient := answerClient(t, wire.RcodeNoError, true, nil) // TC=1, forces escalation
	tcpClient := answerClient(t, wire.RcodeNoError, false, []wire.ResourceRecord{
		{Name: mustName(t, "example.com."), Rtype: wire.TypeA, Rclass: wire.ClassIN, TTL: 300, Rdata: wire.ARdata{Addr: net.ParseIP("93.184.216.34")}},
	})
	engine := NewEngine(cfg, Clients{UDP: udpClient, TCP: tcpClient, TLS: tcpClient})

	resp, err := engine.Resolve(context.Background(), testQuery(t))
	require.NoError(t, err)
	require.Len(t, resp.Answer, 1)
	assert.EqualValues(t, 1, udpClient.calls.Load())
	assert.EqualValues(t, 1, tcpClient.calls.Load(), "exactly one additional TCP attempt to the same server")
}

func TestEngine_AppropriateResponseGate_NXDomainTerminatesImmediately(t *testing.T) {
	live := NewServerInfo(net.ParseIP("127.0.0.1"), 53, ProtocolUDP)
	second := NewServerInfo(net.ParseIP("127.0.0.2"), 53, ProtocolUDP)
	cfg := baseConfig(live, second)

	nxClient := answerClient(t, wire.RcodeNXDomain, false, nil)
	unreached := silentClient()
	engine := NewEngine(cfg, Clients{UDP: nxClient, TCP: unreached, TLS: unreached})

	resp, err := engine.Resolve(context.Background(), testQuery(t))
	require.NoError(t, err)
	assert.Equal(t, wire.RcodeNXDomain, resp.Header.Rcode)
	assert.EqualValues(t, 1, nxClient.calls.Load(), "NXDOMAIN from the first server must terminate without trying the second")
}

func TestEngine_AppropriateResponseGate_SERVFAILAdvancesPastServer(t *testing.T) {
	failing := NewServerInfo(net.ParseIP("127.0.0.1"), 53, ProtocolUDP)
	live := NewServerInfo(net.ParseIP("127.0.0.2"), 53, ProtocolUDP)
	cfg := baseConfig(failing, live)
	cfg.GlobalRetransmissionLimit = 10 // enough budget to cover the failing server's UDP try, its TCP escalation, and the live server

	var idx atomic.Int32
	servfail := answerClient(t, wire.RcodeServFail, false, nil)
	ok := answerClient(t, wire.RcodeNoError, false, []wire.ResourceRecord{
		{Name: mustName(t, "example.com."), Rtype: wire.TypeA, Rclass: wire.ClassIN, TTL: 60, Rdata: wire.ARdata{Addr: net.ParseIP("1.2.3.4")}},
	})
	// Route by call count: first caller (failing server) gets SERVFAIL,
	// any subsequent caller gets the live answer. Since both servers
	// share the same UDP client slot, dispatch on address isn't
	// available here, so use a sequencing fake instead.
	seq := &fakeClient{}
	seq.respond = func(query []byte) (transport.Result, error) {
		n := idx.Add(1)
		if n <= 2 { // initial UDP try + its TCP escalation both see SERVFAIL
			return servfail.respond(query)
		}
		return ok.respond(query)
	}
	engine := NewEngine(cfg, Clients{UDP: seq, TCP: seq, TLS: seq})

	resp, err := engine.Resolve(context.Background(), testQuery(t))
	require.NoError(t, err)
	require.Len(t, resp.Answer, 1)
}

func TestEngine_TwoServers_OneSilentOneLive(t *testing.T) {
	silent := NewServerInfo(net.ParseIP("127.0.0.1"), 53, ProtocolUDP)
	live := NewServerInfo(net.ParseIP("127.0.0.2"), 53, ProtocolUDP)
	cfg := baseConfig(silent, live)
	cfg.RetransmissionLoopAttempts = 1
	cfg.Timeout = 200 * time.Millisecond

	liveClient := answerClient(t, wire.RcodeNoError, false, []wire.ResourceRecord{
		{Name: mustName(t, "example.com."), Rtype: wire.TypeA, Rclass: wire.ClassIN, TTL: 60, Rdata: wire.ARdata{Addr: net.ParseIP("5.6.7.8")}},
	})

	var calls atomic.Int32
	dispatch := &fakeClient{}
	dispatch.respond = func(query []byte) (transport.Result, error) {
		n := calls.Add(1)
		if n == 1 {
			// first transmission goes to the silent server
			return transport.Result{}, &transport.ClientError{Kind: transport.KindIO, Msg: "timeout", Err: transport.ErrTimeout}
		}
		return liveClient.respond(query)
	}
	engine := NewEngine(cfg, Clients{UDP: dispatch, TCP: dispatch, TLS: dispatch})

	resp, err := engine.Resolve(context.Background(), testQuery(t))
	require.NoError(t, err)
	require.Len(t, resp.Answer, 1)
	assert.EqualValues(t, 2, calls.Load(), "times out on the silent server, then succeeds on the second within one cycle")
}

func TestEngine_UnhealthyServer_SkippedWhileHealthyAlternativeRemains(t *testing.T) {
	unhealthy := NewServerInfo(net.ParseIP("127.0.0.1"), 53, ProtocolUDP)
	unhealthy.SetHealthy(false)
	healthy := NewServerInfo(net.ParseIP("127.0.0.2"), 53, ProtocolUDP)

	cfg := baseConfig(unhealthy, healthy)
	cfg.RetransmissionLoopAttempts = 1
	cfg.GlobalRetransmissionLimit = 1
	cfg.Timeout = 200 * time.Millisecond

	client := silentClient()
	engine := NewEngine(cfg, Clients{UDP: client, TCP: client, TLS: client})

	_, err := engine.Resolve(context.Background(), testQuery(t))
	require.Error(t, err)
	assert.True(t, IsRetriesLimitExceeded(err))
	assert.EqualValues(t, 1, client.calls.Load(), "the healthy server is tried and exhausts its one attempt; the unhealthy one is skipped and the global budget runs out before it gets a turn")
}

func TestEngine_AllServersUnhealthy_StillTried(t *testing.T) {
	server := NewServerInfo(net.ParseIP("127.0.0.1"), 53, ProtocolUDP)
	server.SetHealthy(false)
	cfg := baseConfig(server)
	cfg.RetransmissionLoopAttempts = 1
	cfg.GlobalRetransmissionLimit = 2

	client := answerClient(t, wire.RcodeNoError, false, []wire.ResourceRecord{
		{Name: mustName(t, "example.com."), Rtype: wire.TypeA, Rclass: wire.ClassIN, TTL: 60, Rdata: wire.ARdata{Addr: net.ParseIP("1.2.3.4")}},
	})
	engine := NewEngine(cfg, Clients{UDP: client, TCP: client, TLS: client})

	resp, err := engine.Resolve(context.Background(), testQuery(t))
	require.NoError(t, err, "an unhealthy server with no healthy alternative must still be tried")
	require.Len(t, resp.Answer, 1)
}
