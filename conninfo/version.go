package conninfo

import (
	"fmt"
)

// ResolveVersion returns the protocol version reported to the client. A reverse proxy that terminates HTTP/2 or
// HTTP/3 talks HTTP/1.1 to us, so it can pass the real version in override, which wins when well formed.
func ResolveVersion(override string, protoMajor, protoMinor int) string {
	if validValue(override) {
		return override
	}

	if protoMajor == 0 && protoMinor == 0 {
		return "HTTP/1.1"
	}

	return fmt.Sprintf("HTTP/%d.%d", protoMajor, protoMinor)
}
