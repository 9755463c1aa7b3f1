package osc

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

////
// De/Encoding functions
////

// writePaddedString writes a string, its NUL terminator and the padding bytes
// needed to reach the next 4 byte boundary. Returns the number of written bytes.
func writePaddedString(str string, b *bytes.Buffer) int {
	n, _ := b.WriteString(str)
	n++
	pad := padBytesNeeded(n)
	b.Write(empty[:1+pad])

	return n + pad
}

// readPaddedString reads the NUL-terminated string starting at data[0] and
// returns it together with the offset of the next 4 byte boundary past the NUL.
func readPaddedString(data []byte) (string, int, error) {
	pos := bytes.IndexByte(data, 0)
	if pos == -1 {
		return "", 0, fmt.Errorf("readPaddedString: missing terminator: %w", ErrMalformedFrame)
	}

	return string(data[:pos]), pos + 1 + padBytesNeeded(pos+1), nil
}

// writeArgument writes one argument as 4 big-endian bytes.
func writeArgument(arg interface{}, b *bytes.Buffer) error {
	var buf [bit32Size]byte
	switch t := arg.(type) {
	case int32:
		binary.BigEndian.PutUint32(buf[:], uint32(t))
	case float32:
		binary.BigEndian.PutUint32(buf[:], math.Float32bits(t))
	default:
		return unsupportedType(arg)
	}
	b.Write(buf[:])
	return nil
}

// readArgument decodes the 4 byte value for the type tag c.
func readArgument(c byte, data []byte) (interface{}, error) {
	if len(data) < bit32Size {
		return nil, fmt.Errorf("readArgument: need %d bytes for '%c', have %d: %w", bit32Size, c, len(data), ErrMalformedFrame)
	}
	v := binary.BigEndian.Uint32(data[:bit32Size])
	switch TypeTag(c) {
	case TypeInt32:
		return int32(v), nil
	case TypeFloat32:
		return math.Float32frombits(v), nil
	default:
		return nil, fmt.Errorf("readArgument: unsupported typetag '%c': %w", c, ErrMalformedFrame)
	}
}

// padBytesNeeded determines how many bytes are needed to fill up to the next 4
// byte length.
func padBytesNeeded(elementLen int) int {
	return (4 - (elementLen % 4)) % 4
}
