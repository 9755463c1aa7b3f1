package osc

import (
	"bytes"
	"encoding"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Message represents a single OSC message. An OSC message consists of an OSC
// address pattern and zero or more int32 or float32 arguments.
type Message struct {
	Address   string
	Arguments []interface{}
}

// Verify that Message round-trips through the binary encoding interfaces.
var (
	_ encoding.BinaryMarshaler   = (*Message)(nil)
	_ encoding.BinaryUnmarshaler = (*Message)(nil)
)

// NewMessage returns a new Message. The address parameter is the OSC address.
func NewMessage(addr string, args ...interface{}) *Message {
	return &Message{Address: addr, Arguments: args}
}

// Encode returns the frame for a single-argument message.
func Encode(addr string, value interface{}) ([]byte, error) {
	return NewMessage(addr, value).MarshalBinary()
}

// Append appends the given arguments to the arguments list.
func (m *Message) Append(args ...interface{}) error {
	for _, a := range args {
		if ToTypeTag(a) == TypeInvalid {
			return fmt.Errorf("Append: %w", unsupportedType(a))
		}
	}
	m.Arguments = append(m.Arguments, args...)
	return nil
}

// Equals returns true if the given OSC Message `m` is equal to the current OSC
// Message.
func (m *Message) Equals(o *Message) bool {
	return reflect.DeepEqual(m, o)
}

// Clear clears the OSC address and all arguments.
func (m *Message) Clear() {
	m.Address = ""
	m.Arguments = m.Arguments[:0]
}

// Match returns true, if the OSC address pattern of the OSC Message matches the given
// address. The match is case sensitive!
func (m *Message) Match(addr string) bool {
	return Match(m.Address, addr)
}

// TypeTags returns the type tag string.
func (m *Message) TypeTags() (string, error) {
	if m == nil {
		return "", fmt.Errorf("TypeTags: message is nil")
	}

	tags := make([]byte, 0, len(m.Arguments)+1)
	tags = append(tags, ',')
	for _, arg := range m.Arguments {
		t := ToTypeTag(arg)
		if t == TypeInvalid {
			return "", fmt.Errorf("TypeTags: %w", unsupportedType(arg))
		}
		tags = append(tags, byte(t))
	}

	return string(tags), nil
}

// String implements the fmt.Stringer interface.
func (m *Message) String() string {
	if m == nil {
		return ""
	}

	tags, _ := m.TypeTags()

	var sb strings.Builder
	sb.WriteString(m.Address)
	sb.WriteByte(' ')
	sb.WriteString(tags)

	for _, arg := range m.Arguments {
		sb.WriteByte(' ')
		sb.WriteString(FormatArgument(arg))
	}

	return sb.String()
}

// FormatArgument renders an argument the way it is shown in transcripts.
// Floats use the shortest representation that round-trips as float32.
func FormatArgument(arg interface{}) string {
	switch t := arg.(type) {
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case float32:
		return strconv.FormatFloat(float64(t), 'g', -1, 32)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// MarshalBinary serializes the OSC message to a byte buffer. The byte buffer
// has the following format:
// 1. OSC Address Pattern
// 2. OSC Type Tag String
// 3. OSC Arguments
func (m *Message) MarshalBinary() ([]byte, error) {
	data := bufPool.Get().(*bytes.Buffer)
	defer bufPool.Put(data)
	data.Reset()

	if err := m.LightMarshalBinary(data); err != nil {
		return nil, err
	}
	return append([]byte(nil), data.Bytes()...), nil
}

// LightMarshalBinary writes the encoded message into data.
func (m *Message) LightMarshalBinary(data *bytes.Buffer) error {
	typetags, err := m.TypeTags()
	if err != nil {
		return fmt.Errorf("LightMarshalBinary: %w", err)
	}

	writePaddedString(m.Address, data)
	writePaddedString(typetags, data)

	for _, arg := range m.Arguments {
		if err := writeArgument(arg, data); err != nil {
			return fmt.Errorf("LightMarshalBinary: %w", err)
		}
	}

	if data.Len() > MaxPacketSize {
		return fmt.Errorf("LightMarshalBinary: packet too large: %d", data.Len())
	}

	return nil
}

// ParseMessage decodes a frame into a new Message.
func ParseMessage(data []byte) (*Message, error) {
	msg := &Message{}
	if err := msg.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return msg, nil
}

// UnmarshalBinary implements the encoding.BinaryUnmarshaler interface.
//
// The address runs up to the first NUL. The type tag string starts at the
// first ',' found at or after the next 4 byte boundary and runs up to its NUL.
// Arguments start at the 4 byte boundary after that, 4 bytes per tag.
func (m *Message) UnmarshalBinary(data []byte) error {
	addr, n, err := readPaddedString(data)
	if err != nil {
		return fmt.Errorf("UnmarshalBinary: address: %w", err)
	}
	if n > len(data) {
		return fmt.Errorf("UnmarshalBinary: address padding runs past end of frame: %w", ErrMalformedFrame)
	}

	comma := bytes.IndexByte(data[n:], ',')
	if comma == -1 {
		return fmt.Errorf("UnmarshalBinary: no typetag string: %w", ErrMalformedFrame)
	}
	n += comma

	typetags, next, err := readPaddedString(data[n:])
	if err != nil {
		return fmt.Errorf("UnmarshalBinary: typetags: %w", err)
	}
	n += next

	args := make([]interface{}, 0, len(typetags)-1)
	for i := 1; i < len(typetags); i++ {
		var rest []byte
		if n < len(data) {
			rest = data[n:]
		}
		arg, err := readArgument(typetags[i], rest)
		if err != nil {
			return fmt.Errorf("UnmarshalBinary: argument %d: %w", i-1, err)
		}
		args = append(args, arg)
		n += bit32Size
	}

	m.Address = addr
	m.Arguments = args
	return nil
}
