package routing

import (
	"fmt"

	"github.com/mxa-live/mxa/osc"
)

// Command sets one console parameter. Value is an int32 or a float32.
type Command struct {
	Address string
	Value   interface{}
}

func (c Command) String() string {
	return c.Address + " " + osc.FormatArgument(c.Value)
}

// Message returns the OSC message carrying c.
func (c Command) Message() *osc.Message {
	return osc.NewMessage(c.Address, c.Value)
}

// Encode returns one frame per command, in command order.
func Encode(cmds []Command) ([][]byte, error) {
	frames := make([][]byte, 0, len(cmds))
	for i, c := range cmds {
		b, err := osc.Encode(c.Address, c.Value)
		if err != nil {
			return nil, fmt.Errorf("command %d (%s): %w", i+1, c.Address, err)
		}
		frames = append(frames, b)
	}
	return frames, nil
}
