package conninfo

import (
	"net"
	"net/http"
	"strings"
)

// ClientAddress resolves the address of the client that sent r. With trustForwarded set the standard forwarding
// headers are consulted first, in order: Forwarded, X-Forwarded-For, X-Real-Ip. Only values that parse as an IP are
// accepted from headers. The peer address comes next and fallback is returned when all of them are missing.
func ClientAddress(r *http.Request, trustForwarded bool, fallback string) string {
	if trustForwarded {
		if addr := forwardedFor(r.Header.Get("Forwarded")); addr != "" {
			return addr
		}

		if addr := validIP(firstElement(r.Header.Get("X-Forwarded-For"))); addr != "" {
			return addr
		}

		if addr := validIP(r.Header.Get("X-Real-Ip")); addr != "" {
			return addr
		}
	}

	if addr := stripPort(strings.TrimSpace(r.RemoteAddr)); addr != "" {
		return addr
	}

	return fallback
}

// forwardedFor extracts the for= node of the first hop in an RFC 7239 Forwarded header. Obfuscated identifiers
// ("unknown", "_secret") yield an empty string.
func forwardedFor(header string) string {
	for _, pair := range strings.Split(firstElement(header), ";") {
		eq := strings.IndexByte(pair, '=')

		if eq == -1 {
			continue
		}

		if !strings.EqualFold(strings.TrimSpace(pair[:eq]), "for") {
			continue
		}

		return validIP(strings.Trim(strings.TrimSpace(pair[eq+1:]), `"`))
	}

	return ""
}

func firstElement(header string) string {
	if i := strings.IndexByte(header, ','); i != -1 {
		header = header[:i]
	}

	return strings.TrimSpace(header)
}

func validIP(s string) string {
	host := stripPort(strings.TrimSpace(s))

	if net.ParseIP(host) == nil {
		return ""
	}

	return host
}

// stripPort removes the port and IPv6 brackets from a host[:port] string. Bare addresses are returned unchanged.
func stripPort(s string) string {
	if host, _, err := net.SplitHostPort(s); err == nil {
		return host
	}

	return strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")
}
