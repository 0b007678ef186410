package http

import (
	"net"
	"net/http"
	"strings"
)

// IPConfig holds the CIDR ranges of proxies whose forwarding headers we trust.
type IPConfig struct {
	TrustedProxies []string
}

// ExtractClientIP resolves the real client IP for a request. Forwarding
// headers (X-Forwarded-For, X-Real-IP) are honored only when the direct peer
// is a trusted proxy, otherwise a client could spoof its way past IP-keyed
// rate limits by setting the header itself.
func ExtractClientIP(r *http.Request, config *IPConfig) string {
	remoteIP := peerAddr(r)

	if config != nil && isTrustedProxy(remoteIP, config.TrustedProxies) {
		// X-Forwarded-For may carry a chain; take the first parseable hop
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			for _, hop := range strings.Split(xff, ",") {
				hop = strings.TrimSpace(hop)
				if net.ParseIP(hop) != nil {
					return hop
				}
			}
		}

		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			if net.ParseIP(xri) != nil {
				return xri
			}
		}
	}

	return remoteIP
}

// peerAddr extracts the IP from RemoteAddr, dropping the port when present.
func peerAddr(r *http.Request) string {
	if r.RemoteAddr == "" {
		return "unknown"
	}
	if ip, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return ip
	}
	return r.RemoteAddr
}

func isTrustedProxy(ip string, trustedProxies []string) bool {
	if len(trustedProxies) == 0 {
		return false
	}

	peer := net.ParseIP(ip)
	if peer == nil {
		return false
	}

	for _, cidr := range trustedProxies {
		_, ipNet, err := net.ParseCIDR(cidr)
		if err != nil {
			continue
		}
		if ipNet.Contains(peer) {
			return true
		}
	}

	return false
}
