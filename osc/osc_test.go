package osc

const zero = string(byte(0))

// nulls returns a string of `i` nulls.
func nulls(i int) string {
	s := ""
	for j := 0; j < i; j++ {
		s += zero
	}
	return s
}

type testCase struct {
	name    string
	obj     *Message
	raw     []byte
	wantErr bool
}

var messageTestCases = []testCase{
	{
		"fader_float",
		NewMessage("/sd/Input_Channels/1/fader", float32(0.76)),
		[]byte("/sd/Input_Channels/1/fader" + nulls(2) + ",f" + nulls(2) + "\x3f\x42\x8f\x5c"),
		false,
	},
	{
		"mute_int",
		NewMessage("/sd/Input_Channels/12/mute", int32(1)),
		[]byte("/sd/Input_Channels/12/mute" + nulls(2) + ",i" + nulls(2) + "\x00\x00\x00\x01"),
		false,
	},
	{
		"address_on_boundary",
		NewMessage("/abc", int32(-1)),
		[]byte("/abc" + nulls(4) + ",i" + nulls(2) + "\xff\xff\xff\xff"),
		false,
	},
	{
		"send_level_zero",
		NewMessage("/sd/Input_Channels/3/Aux_Send/7/send_level", float32(0)),
		[]byte("/sd/Input_Channels/3/Aux_Send/7/send_level" + nulls(2) + ",f" + nulls(2) + nulls(4)),
		false,
	},
	{
		"two_arguments",
		NewMessage("/a", int32(1122), float32(1)),
		[]byte("/a" + nulls(2) + ",if" + zero +"\x00\x00\x04\x62" + "\x3f\x80\x00\x00"),
		false,
	},
	{
		"three_arguments",
		NewMessage("/ab", int32(1), int32(2), int32(3)),
		[]byte("/ab" + zero + ",iii" + nulls(4) + "\x00\x00\x00\x01\x00\x00\x00\x02\x00\x00\x00\x03"),
		false,
	},
}
