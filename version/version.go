// Package version reports the build identifier stamped in by the linker:
//
//	go build -ldflags "-X github.com/johndistasio/ifconfig/version.describe=$(git describe --tags --long)"
package version

import (
	"fmt"
	"strconv"
	"strings"
)

var describe string

// Git is a parsed `git describe --long` string.
type Git struct {
	Tag          string
	CommitsAhead int
	Sha          string
}

// Current returns the build's version information.
func Current() Git {
	return Parse(describe)
}

// String returns "dev" for builds without version information.
func String() string {
	return Current().String()
}

func (g Git) String() string {
	switch {
	case g == Git{}:
		return "dev"
	case g.CommitsAhead != 0:
		return fmt.Sprintf("%s (%s, +%d)", g.Sha, g.Tag, g.CommitsAhead)
	default:
		return g.Tag
	}
}

// Short is the form used in the Server response header: the tag alone, or "dev".
func (g Git) Short() string {
	if g.Tag == "" {
		return "dev"
	}

	return g.Tag
}

// Parse reads "<tag>-<commits>-g<sha>". The tag itself may contain dashes. Anything else yields the zero Git.
func Parse(v string) Git {
	parts := strings.Split(v, "-")
	l := len(parts)

	if l < 3 || !strings.HasPrefix(parts[l-1], "g") {
		return Git{}
	}

	commits, err := strconv.Atoi(parts[l-2])

	if err != nil {
		return Git{}
	}

	return Git{
		Tag:          strings.Join(parts[:l-2], "-"),
		CommitsAhead: commits,
		Sha:          strings.TrimPrefix(parts[l-1], "g"),
	}
}
