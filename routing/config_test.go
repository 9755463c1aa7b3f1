package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddresses(t *testing.T) {
	assert.Equal(t, "/sd/Input_Channels/1/fader", Fader(1))
	assert.Equal(t, "/sd/Input_Channels/12/mute", Mute(12))
	assert.Equal(t, "/sd/Input_Channels/3/Aux_Send/7/send_on", SendOn(3, 7))
	assert.Equal(t, "/sd/Input_Channels/3/Aux_Send/7/send_level", SendLevel(3, 7))
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, fullConfig().Validate())
	require.NoError(t, (&Config{}).Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"artist fx unit past the end", func(c *Config) { c.Artists[0].FXUnit = 3 }},
		{"negative artist fx unit", func(c *Config) { c.Artists[0].FXUnit = -1 }},
		{"negative aux map", func(c *Config) { c.Artists[2].AuxMap = -4 }},
		{"negative instrument channel", func(c *Config) { c.Instruments[0].ChannelMap = -1 }},
		{"negative fx channel", func(c *Config) { c.FXUnits[1].ChannelMap = -1 }},
		{"too many artists", func(c *Config) { c.Artists = make([]Artist, Limit+1) }},
		{"send port out of range", func(c *Config) { c.Console.SendPort = 70000 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := fullConfig()
			tt.mutate(c)
			assert.ErrorIs(t, c.Validate(), ErrInvalidConfig)
		})
	}
}

func TestConfigClone(t *testing.T) {
	orig := fullConfig()
	cp := orig.Clone()
	cp.Artists[0].Name = "changed"
	cp.FXUnits[0].AuxMap = 99
	cp.Instruments = append(cp.Instruments, Instrument{Name: "new"})

	assert.Equal(t, "A1", orig.Artists[0].Name)
	assert.Equal(t, 10, orig.FXUnits[0].AuxMap)
	assert.Len(t, orig.Instruments, 2)
}

func TestToggles(t *testing.T) {
	cfg := fullConfig()

	off := NewToggles(cfg)
	require.NoError(t, off.Check(cfg))
	assert.Equal(t, []bool{false, false, false}, off.Artists)

	short := Toggles{Artists: []bool{true}, Instruments: []bool{false, true, true}}
	assert.ErrorIs(t, short.Check(cfg), ErrToggleMismatch)

	resized := short.Resize(cfg)
	require.NoError(t, resized.Check(cfg))
	assert.Equal(t, []bool{true, false, false}, resized.Artists)
	assert.Equal(t, []bool{false, true}, resized.Instruments)

	cp := resized.Clone()
	cp.Artists[0] = false
	assert.True(t, resized.Artists[0])
}
