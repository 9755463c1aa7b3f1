package session

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mxa-live/mxa/routing"
)

func TestFromFlat_Defaults(t *testing.T) {
	sess := FromFlat(map[string]interface{}{})

	assert.Len(t, sess.Routing.Artists, 1, "one artist when num_toggles is absent")
	assert.Equal(t, routing.Artist{}, sess.Routing.Artists[0])
	assert.Empty(t, sess.Routing.Instruments)
	assert.Empty(t, sess.Routing.FXUnits)
	assert.Equal(t, []bool{false}, sess.Live.Artists)
}

func TestFromFlat_MistypedFieldsReadAsZero(t *testing.T) {
	sess := FromFlat(map[string]interface{}{
		"num_toggles":           "1",
		"ch_map1":               "five",
		"aux_map1":              true,
		"co_artists_ref_level1": "-7.5",
		"effects_ref_level1":    []interface{}{1},
		"toggle_page2_1":        "true",
	})

	require.Len(t, sess.Routing.Artists, 1)
	a := sess.Routing.Artists[0]
	assert.Zero(t, a.ChannelMap)
	assert.Zero(t, a.AuxMap)
	assert.Equal(t, -7.5, a.CoArtistRefLevelDB)
	assert.Zero(t, a.FXRefLevelDB)
	assert.Equal(t, []bool{true}, sess.Live.Artists)
}

func TestFromFlat_InputFallbackKeys(t *testing.T) {
	sess := FromFlat(map[string]interface{}{
		"co_artists_ref_level_input1": -3.0,
		"effects_ref_level_input1":    -4.0,
	})
	assert.Equal(t, -3.0, sess.Routing.Artists[0].CoArtistRefLevelDB)
	assert.Equal(t, -4.0, sess.Routing.Artists[0].FXRefLevelDB)
}

func TestFromFlat_CountsAreClamped(t *testing.T) {
	sess := FromFlat(map[string]interface{}{
		"num_toggles":     -2.0,
		"num_instruments": 1000.0,
	})
	assert.Empty(t, sess.Routing.Artists)
	assert.Len(t, sess.Routing.Instruments, routing.Limit)
}

func TestFlatRoundTrip(t *testing.T) {
	want := sampleSession()

	// Through JSON, as the files are read.
	b, err := json.Marshal(ToFlat(want))
	require.NoError(t, err)
	var flat map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &flat))

	got := FromFlat(flat)
	assert.Equal(t, want.Name, got.Name)
	assert.Equal(t, want.Routing, got.Routing)
	assert.Equal(t, want.Live, got.Live)

	assert.Equal(t, want.Routing, FromFlat(ToFlat(want)).Routing)
}

func TestFromFlat_DanglingFXReferencesReadAsNone(t *testing.T) {
	sess := FromFlat(map[string]interface{}{
		"num_toggles":     2.0,
		"effects_unit1":   2.0,
		"effects_unit2":   -1.0,
		"ch_map2":         -4.0,
		"num_instruments": 1.0,
		"inst_fx_unit1":   9.0,
		"num_fx_units":    1.0,
		"fx_ch_map1":      20.0,
		"fx_aux_map1":     -3.0,
		"send_port":       70000.0,
	})

	require.NoError(t, sess.Routing.Validate())
	assert.Zero(t, sess.Routing.Artists[0].FXUnit)
	assert.Zero(t, sess.Routing.Artists[1].FXUnit)
	assert.Zero(t, sess.Routing.Artists[1].ChannelMap)
	assert.Zero(t, sess.Routing.Instruments[0].FXUnit)
	assert.Equal(t, routing.FXUnit{ChannelMap: 20}, sess.Routing.FXUnits[0])
	assert.Zero(t, sess.Routing.Console.SendPort)
}

func TestFromFlat_HugeNumbersReadAsDefault(t *testing.T) {
	sess := FromFlat(map[string]interface{}{
		"num_toggles": 1e300,
		"ch_map1":     -1e19,
		"aux_map1":    "99999999999999999999",
	})

	require.Len(t, sess.Routing.Artists, 1, "num_toggles falls back to its default")
	assert.Zero(t, sess.Routing.Artists[0].ChannelMap)
	assert.Zero(t, sess.Routing.Artists[0].AuxMap)
}
