package routing

import "fmt"

// Console parameter address templates.
const (
	AddressFader     = "/sd/Input_Channels/%d/fader"
	AddressMute      = "/sd/Input_Channels/%d/mute"
	AddressSendOn    = "/sd/Input_Channels/%d/Aux_Send/%d/send_on"
	AddressSendLevel = "/sd/Input_Channels/%d/Aux_Send/%d/send_level"
)

// Fader returns the fader address of an input channel.
func Fader(ch int) string { return fmt.Sprintf(AddressFader, ch) }

// Mute returns the mute address of an input channel.
func Mute(ch int) string { return fmt.Sprintf(AddressMute, ch) }

// SendOn returns the address of the on switch of the send from ch to aux.
func SendOn(ch, aux int) string { return fmt.Sprintf(AddressSendOn, ch, aux) }

// SendLevel returns the address of the level of the send from ch to aux.
func SendLevel(ch, aux int) string { return fmt.Sprintf(AddressSendLevel, ch, aux) }
