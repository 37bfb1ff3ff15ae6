// Command resolved is the long-running resolver daemon: it accepts
// client queries over UDP/TCP, forwards them through the resolution
// engine, and optionally persists configuration/audit to Postgres,
// backs the cache with Redis, and announces an anycast VIP over BGP.
// Configuration is environment-variable driven, matching cmd/clouddns/
// main.go's os.Getenv + typed-default pattern.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/poyrazK/resolvercore/internal/adapters/cache"
	"github.com/poyrazK/resolvercore/internal/adapters/routing"
	"github.com/poyrazK/resolvercore/internal/adapters/storage"
	rescache "github.com/poyrazK/resolvercore/internal/dns/cache"
	"github.com/poyrazK/resolvercore/internal/dns/resolve"
	"github.com/poyrazK/resolvercore/internal/dns/transport"
	"github.com/poyrazK/resolvercore/internal/dns/wire"
	"github.com/poyrazK/resolvercore/internal/infrastructure/logging"
	"github.com/poyrazK/resolvercore/internal/infrastructure/metrics"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("application failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	logger := logging.New(logging.LevelFromString(os.Getenv("RESOLVER_LOG_LEVEL")))
	slog.SetDefault(logger)

	bindAddr := os.Getenv("RESOLVER_BIND_ADDR")
	if bindAddr == "" {
		bindAddr = resolve.DefaultBindAddr
	}

	timeout := resolve.DefaultTimeout
	if v := os.Getenv("RESOLVER_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			timeout = d
		}
	}

	servers, err := parseNameServers(os.Getenv("RESOLVER_NAME_SERVERS"))
	if err != nil {
		return fmt.Errorf("resolved: parse RESOLVER_NAME_SERVERS: %w", err)
	}

	cfg := resolve.NewResolverConfig(servers)
	cfg.BindAddr = bindAddr
	cfg.Timeout = timeout

	var opts []resolve.ResolverOption
	opts = append(opts, resolve.WithLogger(logger))

	var store *storage.Store
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL != "" && dbURL != "none" {
		store, err = storage.Open(dbURL)
		if err != nil {
			return fmt.Errorf("resolved: open storage: %w", err)
		}
		defer store.Close()

		if persisted, err := store.ListServers(ctx); err != nil {
			logger.Warn("failed to load persisted servers, using configured/seed list", "error", err)
		} else if len(persisted) > 0 {
			cfg.NameServers = persisted
		}

		go reportDBConnections(ctx, store)
	}

	localCache := rescache.New()
	redisURL := os.Getenv("REDIS_URL")
	if redisURL != "" {
		redisTier := cache.NewRedisTier(redisURL, os.Getenv("REDIS_PASSWORD"), 0, 24*time.Hour)
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := redisTier.Ping(pingCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("resolved: connect to redis at %s: %w", redisURL, err)
		}
		localCache = rescache.New(rescache.WithSecondaryTier(redisTier))
		logger.Info("connected to redis secondary cache", "url", redisURL)
	}
	opts = append(opts, resolve.WithCache(localCache))

	resolver := resolve.New(cfg, opts...)

	var bgpAdapter *routing.GoBGPAdapter
	if os.Getenv("ANYCAST_ENABLED") == "true" {
		bgpAdapter, err = startAnycast(ctx, logger, cfg)
		if err != nil {
			return err
		}
		defer bgpAdapter.Stop()
	}

	listenHandler := func(ctx context.Context, query []byte, from net.Addr) []byte {
		return handleQuery(ctx, resolver, query, from, timeout, logger)
	}
	listener := transport.NewListener(bindAddr, listenHandler, logger)

	errCh := make(chan error, 1)
	go func() {
		if err := listener.Run(ctx); err != nil {
			errCh <- err
		}
	}()

	metricsAddr := os.Getenv("METRICS_ADDR")
	if metricsAddr == "" {
		metricsAddr = ":9153"
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	metricsServer := &http.Server{
		Addr:              metricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server failed", "error", err)
		}
	}()

	logger.Info("resolvercore daemon started", "bind_addr", bindAddr, "metrics_addr", metricsAddr, "servers", len(cfg.NameServers))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return metricsServer.Shutdown(shutdownCtx)
}

// handleQuery decodes one client query, resolves it, and re-encodes the
// response; a malformed query drops silently, the same as the teacher's
// udpWorker does for bad input, and an encode failure is logged and
// dropped. The lookup is
// bounded by its own deadline derived from ctx rather than inheriting
// the listener's process-lifetime context directly: an upstream health
// signal that (transiently) marks every configured server unhealthy
// must not be able to hang a worker-pool goroutine forever.
func handleQuery(ctx context.Context, resolver *resolve.Resolver, query []byte, from net.Addr, timeout time.Duration, logger *slog.Logger) []byte {
	msg, err := wire.Decode(query)
	if err != nil || len(msg.Question) == 0 {
		return nil
	}
	q := msg.Question[0]

	// Mirrors cmd/dig's own bound: timeout is the per-exchange budget
	// the engine already enforces per attempt, plus a second of slack
	// for the cyclic retry/backoff loop across servers.
	lookupCtx, cancel := context.WithTimeout(ctx, timeout+time.Second)
	defer cancel()

	resp, err := resolver.Lookup(lookupCtx, q.Name, resolve.ProtocolUDP, q.Qtype, q.Qclass)
	if err != nil {
		logger.Warn("lookup failed", "from", from.String(), "qname", q.Name.String(), "error", err)
	}
	resp.Header.ID = msg.Header.ID

	encoded, err := resp.Encode()
	if err != nil {
		logger.Error("failed to encode response", "error", err)
		return nil
	}
	return encoded
}

func reportDBConnections(ctx context.Context, store *storage.Store) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.DBConnectionsActive.Set(float64(store.Stats().InUse))
		}
	}
}

func startAnycast(ctx context.Context, logger *slog.Logger, cfg *resolve.ResolverConfig) (*routing.GoBGPAdapter, error) {
	vip := os.Getenv("ANYCAST_VIP")
	peerIP := os.Getenv("BGP_PEER_IP")
	if vip == "" || peerIP == "" {
		return nil, fmt.Errorf("ANYCAST_VIP and BGP_PEER_IP must be set when ANYCAST_ENABLED=true")
	}

	bgpAdapter := routing.NewGoBGPAdapter(logger)
	vipAdapter := routing.NewSystemVIPAdapter(logger)

	iface := os.Getenv("ANYCAST_INTERFACE")
	if iface == "" {
		iface = "lo"
	}

	localASN := getEnvUint32("ANYCAST_LOCAL_ASN", 65001)
	peerASN := getEnvUint32("BGP_PEER_ASN", 65000)
	bgpAdapter.SetConfig(os.Getenv("BGP_ROUTER_ID"), 179, os.Getenv("BGP_NEXT_HOP"))

	if err := bgpAdapter.Start(ctx, localASN, peerASN, peerIP); err != nil {
		return nil, fmt.Errorf("failed to start BGP speaker: %w", err)
	}
	if err := bgpAdapter.Announce(ctx, vip); err != nil {
		return nil, fmt.Errorf("failed to announce anycast VIP: %w", err)
	}
	if err := vipAdapter.Bind(ctx, vip, iface); err != nil {
		logger.Warn("failed to bind anycast VIP locally", "error", err)
	}

	if rib := bgpAdapter.RIB(); rib != nil && len(cfg.NameServers) > 0 {
		monitor := routing.NewPeerHealthMonitor(rib, cfg.NameServers, 30*time.Second, logger)
		go monitor.Run(ctx)
	}

	return bgpAdapter, nil
}

func getEnvUint32(key string, def uint32) uint32 {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	u, err := strconv.ParseUint(val, 10, 32)
	if err != nil {
		return def
	}
	return uint32(u)
}

// parseNameServers parses a comma-separated ip[:port] list, e.g.
// "8.8.8.8,1.1.1.1:53". An empty string yields a nil slice, which
// resolve.NewResolverConfig interprets as "use the seed list".
func parseNameServers(raw string) ([]*resolve.ServerInfo, error) {
	if raw == "" {
		return nil, nil
	}
	var servers []*resolve.ServerInfo
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		host, portStr, err := net.SplitHostPort(entry)
		port := uint16(53)
		if err != nil {
			host = entry
		} else {
			p, err := strconv.ParseUint(portStr, 10, 16)
			if err != nil {
				return nil, fmt.Errorf("invalid port in %q: %w", entry, err)
			}
			port = uint16(p)
		}
		ip := net.ParseIP(host)
		if ip == nil {
			return nil, fmt.Errorf("not an IP address: %s", host)
		}
		servers = append(servers, resolve.NewServerInfo(ip, port, resolve.ProtocolUDP))
	}
	return servers, nil
}
