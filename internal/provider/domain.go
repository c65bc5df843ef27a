package provider

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"time"

	"golang.org/x/net/proxy"

	"github.com/osintlab/personscan/internal/model"
)

// domainTLDs are the top-level domains candidate domains are generated
// against.
var domainTLDs = []string{".com", ".in", ".org", ".net"}

// whoisTimeout bounds a single WHOIS conversation.
const whoisTimeout = 10 * time.Second

// Domain probes for personal domains derived from the subject's name.
// Domains that resolve get DNS record sets collected and the first one
// gets a WHOIS lookup.
type Domain struct {
	resolver   *net.Resolver
	dialer     *net.Dialer
	socksProxy string
	logger     *slog.Logger
}

// NewDomain creates the domain provider. A non-empty socksProxy routes
// WHOIS conversations through the given SOCKS5 proxy.
func NewDomain(socksProxy string, logger *slog.Logger) *Domain {
	return &Domain{
		resolver:   net.DefaultResolver,
		dialer:     &net.Dialer{Timeout: whoisTimeout},
		socksProxy: socksProxy,
		logger:     logger,
	}
}

// dialWhois opens the TCP connection for a WHOIS conversation, through
// the SOCKS5 proxy when one is configured.
func (d *Domain) dialWhois(ctx context.Context, address string) (net.Conn, error) {
	if d.socksProxy == "" {
		return d.dialer.DialContext(ctx, "tcp", address)
	}
	socks, err := proxy.SOCKS5("tcp", d.socksProxy, nil, d.dialer)
	if err != nil {
		return nil, err
	}
	if cd, ok := socks.(proxy.ContextDialer); ok {
		return cd.DialContext(ctx, "tcp", address)
	}
	return socks.Dial("tcp", address)
}

// Name implements Provider.
func (d *Domain) Name() string {
	return "domain"
}

// Search implements Provider.
func (d *Domain) Search(ctx context.Context, query model.Query) (Payload, error) {
	var data model.DomainData

	for _, candidate := range searchDomains(query) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		addrs, err := d.resolver.LookupHost(ctx, candidate)
		if err != nil || len(addrs) == 0 {
			continue
		}

		data.Domains = append(data.Domains, candidate)

		// Record sets and WHOIS only for the first live domain; the
		// rest are listed by name.
		if len(data.Domains) == 1 {
			data.DNS = d.collectDNS(ctx, candidate, addrs)
			data.Whois = d.whois(ctx, candidate)
		}
	}

	return DomainPayload{Data: data}, nil
}

// searchDomains is the ordered probe list for one query: a domain
// supplied in the query metadata comes first, then candidates derived
// from the name.
func searchDomains(query model.Query) []string {
	candidates := domainCandidates(query.Name)

	supplied, _ := query.AttachedMetadata["domain"].(string)
	supplied = strings.ToLower(strings.TrimSpace(supplied))
	if supplied == "" {
		return candidates
	}

	out := []string{supplied}
	for _, c := range candidates {
		if c != supplied {
			out = append(out, c)
		}
	}
	return out
}

// domainCandidates derives plausible personal domains from a name.
// "Ravi Kumar" produces ravikumar.com, ravi-kumar.com, and so on.
func domainCandidates(name string) []string {
	fields := strings.Fields(strings.ToLower(name))
	if len(fields) == 0 {
		return nil
	}

	var cleaned []string
	for _, f := range fields {
		if s := sanitizeLocal(f); s != "" {
			cleaned = append(cleaned, s)
		}
	}
	if len(cleaned) == 0 {
		return nil
	}

	bases := []string{strings.Join(cleaned, "")}
	if len(cleaned) > 1 {
		bases = append(bases, strings.Join(cleaned, "-"))
	}

	var out []string
	for _, base := range bases {
		for _, tld := range domainTLDs {
			out = append(out, base+tld)
		}
	}
	return out
}

// collectDNS gathers common record sets for a live domain. Individual
// lookup failures leave that record set empty.
func (d *Domain) collectDNS(ctx context.Context, domain string, addrs []string) model.DNSInfo {
	info := model.DNSInfo{A: addrs}

	if mxs, err := d.resolver.LookupMX(ctx, domain); err == nil {
		for _, mx := range mxs {
			info.MX = append(info.MX, strings.TrimSuffix(mx.Host, "."))
		}
	}
	if nss, err := d.resolver.LookupNS(ctx, domain); err == nil {
		for _, ns := range nss {
			info.NS = append(info.NS, strings.TrimSuffix(ns.Host, "."))
		}
	}
	if txts, err := d.resolver.LookupTXT(ctx, domain); err == nil {
		info.TXT = txts
	}

	return info
}

// whois queries the IANA-delegated WHOIS server for the domain's TLD
// and reduces the response to the fields the report carries. WHOIS
// failures return an empty record; registration data is best-effort.
func (d *Domain) whois(ctx context.Context, domain string) model.WhoisInfo {
	server := whoisServer(domain)
	if server == "" {
		return model.WhoisInfo{}
	}

	conn, err := d.dialWhois(ctx, net.JoinHostPort(server, "43"))
	if err != nil {
		d.logger.DebugContext(ctx, "whois dial failed", slog.String("domain", domain), slog.String("error", err.Error()))
		return model.WhoisInfo{}
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(whoisTimeout))

	if _, err := fmt.Fprintf(conn, "%s\r\n", domain); err != nil {
		return model.WhoisInfo{}
	}

	return parseWhois(conn)
}

// whoisServer maps a domain to its TLD WHOIS server.
func whoisServer(domain string) string {
	switch {
	case strings.HasSuffix(domain, ".com"), strings.HasSuffix(domain, ".net"):
		return "whois.verisign-grs.com"
	case strings.HasSuffix(domain, ".org"):
		return "whois.publicinterestregistry.org"
	case strings.HasSuffix(domain, ".in"):
		return "whois.registry.in"
	}
	return ""
}

// parseWhois reduces a WHOIS response stream to the report fields.
func parseWhois(r io.Reader) model.WhoisInfo {
	var info model.WhoisInfo

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}

		switch key {
		case "registrar":
			if info.Registrar == "" {
				info.Registrar = value
			}
		case "creation date", "created":
			if info.Created == "" {
				info.Created = value
			}
		case "registry expiry date", "expiry date", "expiration date":
			if info.Expires == "" {
				info.Expires = value
			}
		case "name server":
			info.Nameservers = append(info.Nameservers, strings.ToLower(value))
		case "domain status", "status":
			if info.Status == "" {
				info.Status = value
			}
		}
	}

	return info
}
