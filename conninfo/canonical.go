package conninfo

import (
	"net/http"
	"net/textproto"
	"sort"
	"strings"
)

// DefaultAllowList is the set of request headers reported back to the client, in display order.
var DefaultAllowList = []string{
	"Accept",
	"Accept-Encoding",
	"Accept-Language",
	"Accept-Charset",
	"Accept-Ranges",
	"User-Agent",
	"Host",
	"Server",
}

// Canonicalizer filters request headers down to an allow-list. Ranks are computed once so a request only costs a
// map lookup per header plus a sort of the survivors.
type Canonicalizer struct {
	names []string
	rank  map[string]int
}

// NewCanonicalizer builds a Canonicalizer for the given header names. Names are canonicalized; duplicates and names
// clashing with a synthetic key are ignored.
func NewCanonicalizer(allow []string) *Canonicalizer {
	c := &Canonicalizer{rank: make(map[string]int, len(allow))}

	for _, name := range allow {
		name = textproto.CanonicalMIMEHeaderKey(strings.TrimSpace(name))

		if name == "" || IsSynthetic(strings.ToLower(name)) {
			continue
		}

		if _, ok := c.rank[name]; ok {
			continue
		}

		c.rank[name] = len(c.names)
		c.names = append(c.names, name)
	}

	return c
}

// Names returns the allow-list in rank order.
func (c *Canonicalizer) Names() []string {
	return append([]string(nil), c.names...)
}

type candidate struct {
	rank      int
	canonical bool
	name      string
	value     string
}

// Canonicalize returns the allow-listed headers of h in allow-list order. host stands in for the Host header, which
// net/http moves out of the header map.
//
// A header sent more than once contributes its first value only. Empty values and values that aren't plain visible
// ASCII are dropped.
func (c *Canonicalizer) Canonicalize(h http.Header, host string) []Entry {
	candidates := make([]candidate, 0, len(c.names))

	for name, values := range h {
		canonical := textproto.CanonicalMIMEHeaderKey(name)
		rank, ok := c.rank[canonical]

		if !ok || canonical == "Host" || len(values) == 0 {
			continue
		}

		candidates = append(candidates, candidate{rank, canonical == name, name, values[0]})
	}

	if rank, ok := c.rank["Host"]; ok {
		candidates = append(candidates, candidate{rank, true, "Host", host})
	}

	// Keys differing only in case can both be present in a hand-built header map. The canonical spelling wins, then
	// the lexically smallest one, so the result never depends on map iteration order.
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]

		if a.rank != b.rank {
			return a.rank < b.rank
		}

		if a.canonical != b.canonical {
			return a.canonical
		}

		return a.name < b.name
	})

	entries := make([]Entry, 0, len(candidates))
	last := -1

	for _, cand := range candidates {
		if cand.rank == last {
			continue
		}

		last = cand.rank

		if !validValue(cand.value) {
			continue
		}

		entries = append(entries, Entry{Key: strings.ToLower(c.names[cand.rank]), Value: cand.value})
	}

	return entries
}

// validValue reports whether v is non-blank and made only of visible ASCII, spaces and tabs.
func validValue(v string) bool {
	if strings.TrimSpace(v) == "" {
		return false
	}

	for i := 0; i < len(v); i++ {
		if c := v[i]; c != '\t' && (c < 0x20 || c > 0x7e) {
			return false
		}
	}

	return true
}
