package osc

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
)

const (
	bit32Size = 4

	// MaxPacketSize is the largest UDP payload a single frame may occupy.
	MaxPacketSize = 65507
)

var (
	// ErrMalformedFrame is returned when a frame cannot be decoded.
	ErrMalformedFrame = errors.New("osc: malformed frame")

	// ErrUnsupportedType is returned when an argument is neither int32 nor float32.
	ErrUnsupportedType = errors.New("osc: unsupported argument type")
)

////
// Utility and helper functions
////
var (
	bufPool = sync.Pool{
		New: func() interface{} {
			return new(bytes.Buffer)
		},
	}
	empty = [bit32Size]byte{}
)

func unsupportedType(arg interface{}) error {
	return fmt.Errorf("%w: %T", ErrUnsupportedType, arg)
}

// getRegEx compiles and returns a regular expression object for the given
// address `pattern`.
func getRegEx(pattern string) (*regexp.Regexp, error) {
	r := strings.NewReplacer(
		".", `\.`,
		"(", `\(`,
		")", `\)`,
		"*", "[^/]*",
		"{", "(",
		",", "|",
		"}", ")",
		"?", "[^/]",
		"!", "^",
	)

	return regexp.Compile("^" + r.Replace(pattern) + "$")
}

// Match reports whether the OSC address pattern matches addr. The match is
// case sensitive and a wildcard never crosses a '/'.
func Match(pattern, addr string) bool {
	re, err := getRegEx(pattern)
	if err != nil {
		return false
	}
	return re.MatchString(addr)
}
