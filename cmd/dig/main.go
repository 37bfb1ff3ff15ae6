// Command dig is a single-shot CLI client over the resolver library,
// matching spec.md's §6 dig contract: resolve one name/type/class
// against a chosen server (or the built-in seed list) and print the
// response.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/poyrazK/resolvercore/internal/dns/resolve"
	"github.com/poyrazK/resolvercore/internal/dns/wire"
	"github.com/poyrazK/resolvercore/internal/infrastructure/logging"
)

func main() {
	var (
		server   = flag.String("server", "", "name server to query as ip[:port] (default: built-in seed list)")
		qtypeStr = flag.String("type", "A", "query type (A, AAAA, MX, TXT, NS, ...)")
		useTCP   = flag.Bool("tcp", false, "use TCP instead of UDP")
		timeout  = flag.Duration("timeout", 5*time.Second, "per-resolution timeout")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <name>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	logger := logging.New(slog.LevelWarn)
	slog.SetDefault(logger)

	qtype, ok := wire.ParseRrtype(*qtypeStr)
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown query type %q\n", *qtypeStr)
		os.Exit(2)
	}

	name, err := wire.NewName(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid name %q: %v\n", flag.Arg(0), err)
		os.Exit(2)
	}

	var servers []*resolve.ServerInfo
	if *server != "" {
		srv, err := parseServerFlag(*server)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid -server: %v\n", err)
			os.Exit(2)
		}
		servers = []*resolve.ServerInfo{srv}
	}

	cfg := resolve.NewResolverConfig(servers)
	cfg.Timeout = *timeout
	if *useTCP {
		cfg.Protocol = resolve.ProtocolTCP
	}

	r := resolve.New(cfg, resolve.WithLogger(logger))

	ctx, cancel := context.WithTimeout(context.Background(), *timeout+time.Second)
	defer cancel()

	proto := resolve.ProtocolUDP
	if *useTCP {
		proto = resolve.ProtocolTCP
	}

	start := time.Now()
	resp, err := r.Lookup(ctx, name, proto, qtype, wire.ClassIN)
	elapsed := time.Since(start)
	if err != nil {
		fmt.Fprintf(os.Stderr, "resolution failed: %v\n", err)
	}

	printResponse(resp, elapsed)
}

func parseServerFlag(s string) (*resolve.ServerInfo, error) {
	host, portStr, err := net.SplitHostPort(s)
	port := uint16(53)
	if err != nil {
		host = s
	} else {
		p, err := strconv.ParseUint(portStr, 10, 16)
		if err != nil {
			return nil, fmt.Errorf("invalid port %q: %w", portStr, err)
		}
		port = uint16(p)
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return nil, fmt.Errorf("not an IP address: %s", host)
	}
	return resolve.NewServerInfo(ip, port, resolve.ProtocolUDP), nil
}

func printResponse(msg wire.Message, elapsed time.Duration) {
	fmt.Printf(";; ->>HEADER<<- opcode: %d, status: %s, id: %d\n", msg.Header.Opcode, msg.Header.Rcode, msg.Header.ID)
	fmt.Printf(";; flags: qr=%v rd=%v ra=%v; QUERY: %d, ANSWER: %d, AUTHORITY: %d, ADDITIONAL: %d\n",
		msg.Header.QR, msg.Header.RD, msg.Header.RA, len(msg.Question), len(msg.Answer), len(msg.Authority), len(msg.Additional))
	fmt.Println()

	if len(msg.Question) > 0 {
		fmt.Println(";; QUESTION SECTION:")
		for _, q := range msg.Question {
			fmt.Printf(";%s\t\t%s\t%s\n", q.Name, classString(q.Qclass), q.Qtype)
		}
		fmt.Println()
	}

	printSection("ANSWER", msg.Answer)
	printSection("AUTHORITY", msg.Authority)
	printSection("ADDITIONAL", msg.Additional)

	fmt.Printf(";; Query time: %d msec\n", elapsed.Milliseconds())
}

func printSection(title string, rrs []wire.ResourceRecord) {
	if len(rrs) == 0 {
		return
	}
	fmt.Printf(";; %s SECTION:\n", title)
	for _, rr := range rrs {
		fmt.Printf("%s\t%d\t%s\t%s\t%s\n", rr.Name, rr.TTL, classString(rr.Rclass), rr.Rtype, formatRdata(rr.Rdata))
	}
	fmt.Println()
}

func classString(c wire.Rclass) string {
	if c == wire.ClassIN {
		return "IN"
	}
	return fmt.Sprintf("CLASS%d", uint16(c))
}

func formatRdata(d wire.Rdata) string {
	switch v := d.(type) {
	case wire.ARdata:
		return v.Addr.String()
	case wire.AAAARdata:
		return v.Addr.String()
	case wire.NameRdata:
		return v.Name.String()
	case wire.SOARdata:
		return fmt.Sprintf("%s %s %d %d %d %d %d", v.MName, v.RName, v.Serial, v.Refresh, v.Retry, v.Expire, v.Minimum)
	case wire.MXRdata:
		return fmt.Sprintf("%d %s", v.Preference, v.Exchange)
	case wire.TXTRdata:
		parts := make([]string, len(v.Strings))
		for i, s := range v.Strings {
			parts[i] = fmt.Sprintf("%q", string(s))
		}
		return fmt.Sprint(parts)
	default:
		return fmt.Sprintf("%+v", d)
	}
}
