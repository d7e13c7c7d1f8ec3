// Package conninfo turns the live state of an inbound request into the ordered list of
// (key, value) pairs that every presentation of the service is rendered from.
package conninfo

import (
	"net/http"
)

// Synthetic keys, i.e. entries that aren't copied from a request header.
const (
	KeyIPAddress = "ip_address"
	KeyVersion   = "version"
	KeyMethod    = "method"
)

// IsSynthetic reports whether key is one of the synthetic entry keys.
func IsSynthetic(key string) bool {
	return key == KeyIPAddress || key == KeyVersion || key == KeyMethod
}

type Entry struct {
	Key   string
	Value string
}

// List is the canonical, ordered view of one request. The first entry is always the client address, the last is
// always the method and the protocol version sits right before it.
type List []Entry

// Get returns the value stored under key.
func (l List) Get(key string) (string, bool) {
	for _, e := range l {
		if e.Key == key {
			return e.Value, true
		}
	}

	return "", false
}

func (l List) Keys() []string {
	keys := make([]string, len(l))

	for i, e := range l {
		keys[i] = e.Key
	}

	return keys
}

// Builder assembles a List from a request. A Builder is immutable once constructed and safe for concurrent use.
type Builder struct {
	// Canonicalizer selects and orders the allow-listed request headers.
	Canonicalizer *Canonicalizer

	// TrustForwarded lets Forwarded, X-Forwarded-For and X-Real-Ip override the peer address.
	TrustForwarded bool

	// Fallback is reported as the client address when nothing better is available.
	Fallback string

	// VersionHeader names the request header a reverse proxy uses to report the protocol version it negotiated with
	// the client.
	VersionHeader string
}

func (b *Builder) Build(r *http.Request) List {
	headers := b.Canonicalizer.Canonicalize(r.Header, r.Host)

	list := make(List, 0, len(headers)+3)
	list = append(list, Entry{Key: KeyIPAddress, Value: ClientAddress(r, b.TrustForwarded, b.Fallback)})
	list = append(list, headers...)

	var override string

	if b.VersionHeader != "" {
		override = r.Header.Get(b.VersionHeader)
	}

	list = append(list, Entry{Key: KeyVersion, Value: ResolveVersion(override, r.ProtoMajor, r.ProtoMinor)})

	method := r.Method

	// net/http treats an empty method as GET.
	if method == "" {
		method = http.MethodGet
	}

	return append(list, Entry{Key: KeyMethod, Value: method})
}
