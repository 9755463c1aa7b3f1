package session

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mxa-live/mxa/routing"
)

// Defaults for counts absent from a legacy session.
const (
	legacyDefaultArtists     = 1
	legacyDefaultInstruments = 0
	legacyDefaultFXUnits     = 0
)

// flatFields reads typed values out of a legacy key/value session. Missing or
// mistyped fields read as the given default.
type flatFields map[string]interface{}

// FromFlat converts the legacy flat session format, where every field of every
// entity is its own numbered key ("ch_map1", "fx_aux_map2", ...).
func FromFlat(m map[string]interface{}) Session {
	f := flatFields(m)

	sess := Session{
		Name: f.str("session_name"),
		Routing: routing.Config{
			Console: routing.Endpoint{
				Host:        strings.TrimSpace(f.str("console_ip")),
				SendPort:    f.int("send_port", 0),
				ReceivePort: f.int("receive_port", 0),
			},
		},
	}

	artists := f.count("num_toggles", legacyDefaultArtists)
	for i := 1; i <= artists; i++ {
		sess.Routing.Artists = append(sess.Routing.Artists, routing.Artist{
			Name:               f.str(key("name", i)),
			ChannelMap:         f.int(key("ch_map", i), 0),
			AuxMap:             f.int(key("aux_map", i), 0),
			CoArtistRefLevelDB: f.float(key("co_artists_ref_level", i), f.float(key("co_artists_ref_level_input", i), 0)),
			FXUnit:             f.int(key("effects_unit", i), 0),
			FXRefLevelDB:       f.float(key("effects_ref_level", i), f.float(key("effects_ref_level_input", i), 0)),
		})
		sess.Live.Artists = append(sess.Live.Artists, f.bool(key("toggle_page2_", i)))
	}

	instruments := f.count("num_instruments", legacyDefaultInstruments)
	for i := 1; i <= instruments; i++ {
		sess.Routing.Instruments = append(sess.Routing.Instruments, routing.Instrument{
			Name:         f.str(key("inst_name", i)),
			ChannelMap:   f.int(key("inst_ch_map", i), 0),
			FXUnit:       f.int(key("inst_fx_unit", i), 0),
			FXRefLevelDB: f.float(key("inst_fx_lvl", i), 0),
		})
		sess.Live.Instruments = append(sess.Live.Instruments, f.bool(key("inst_toggle_", i)))
	}

	fxUnits := f.count("num_fx_units", legacyDefaultFXUnits)
	for i := 1; i <= fxUnits; i++ {
		sess.Routing.FXUnits = append(sess.Routing.FXUnits, routing.FXUnit{
			Label:      f.str(key("fx_unit", i)),
			ChannelMap: f.int(key("fx_ch_map", i), 0),
			AuxMap:     f.int(key("fx_aux_map", i), 0),
		})
	}

	clampRefs(&sess.Routing)
	return sess
}

// clampRefs zeroes negative maps and FX references past the last FX unit.
// The legacy editor changes num_fx_units without touching the references.
func clampRefs(cfg *routing.Config) {
	n := len(cfg.FXUnits)
	for i := range cfg.Artists {
		a := &cfg.Artists[i]
		a.ChannelMap = nonNegative(a.ChannelMap)
		a.AuxMap = nonNegative(a.AuxMap)
		if a.FXUnit < 0 || a.FXUnit > n {
			a.FXUnit = 0
		}
	}
	for i := range cfg.Instruments {
		in := &cfg.Instruments[i]
		in.ChannelMap = nonNegative(in.ChannelMap)
		if in.FXUnit < 0 || in.FXUnit > n {
			in.FXUnit = 0
		}
	}
	for i := range cfg.FXUnits {
		fx := &cfg.FXUnits[i]
		fx.ChannelMap = nonNegative(fx.ChannelMap)
		fx.AuxMap = nonNegative(fx.AuxMap)
	}
	if cfg.Console.SendPort < 0 || cfg.Console.SendPort > 65535 {
		cfg.Console.SendPort = 0
	}
	if cfg.Console.ReceivePort < 0 || cfg.Console.ReceivePort > 65535 {
		cfg.Console.ReceivePort = 0
	}
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

func key(prefix string, i int) string {
	return prefix + strconv.Itoa(i)
}

func (f flatFields) str(k string) string {
	switch v := f[k].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

func (f flatFields) int(k string, def int) int {
	switch v := f[k].(type) {
	case float64:
		// NaN fails both comparisons.
		if !(v >= math.MinInt32 && v <= math.MaxInt32) {
			return def
		}
		return int(v)
	case int:
		return v
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 32)
		if err != nil {
			return def
		}
		return int(n)
	default:
		return def
	}
}

func (f flatFields) float(k string, def float64) float64 {
	switch v := f[k].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case string:
		x, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return def
		}
		return x
	default:
		return def
	}
}

func (f flatFields) bool(k string) bool {
	switch v := f[k].(type) {
	case bool:
		return v
	case float64:
		return v != 0
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	default:
		return false
	}
}

// count reads an entity count, clamped to 0..routing.Limit.
func (f flatFields) count(k string, def int) int {
	n := f.int(k, def)
	if n < 0 {
		return 0
	}
	if n > routing.Limit {
		return routing.Limit
	}
	return n
}

// ToFlat renders sess in the legacy flat key format.
func ToFlat(sess Session) map[string]interface{} {
	m := map[string]interface{}{
		"session_name":    sess.Name,
		"console_ip":      sess.Routing.Console.Host,
		"send_port":       portString(sess.Routing.Console.SendPort),
		"receive_port":    portString(sess.Routing.Console.ReceivePort),
		"num_toggles":     len(sess.Routing.Artists),
		"num_instruments": len(sess.Routing.Instruments),
		"num_fx_units":    len(sess.Routing.FXUnits),
	}
	for i, a := range sess.Routing.Artists {
		n := i + 1
		m[key("name", n)] = a.Name
		m[key("ch_map", n)] = a.ChannelMap
		m[key("aux_map", n)] = a.AuxMap
		m[key("co_artists_ref_level", n)] = a.CoArtistRefLevelDB
		m[key("co_artists_ref_level_input", n)] = a.CoArtistRefLevelDB
		m[key("effects_unit", n)] = a.FXUnit
		m[key("effects_ref_level", n)] = a.FXRefLevelDB
		m[key("effects_ref_level_input", n)] = a.FXRefLevelDB
		m[key("toggle_page2_", n)] = i < len(sess.Live.Artists) && sess.Live.Artists[i]
	}
	for i, in := range sess.Routing.Instruments {
		n := i + 1
		m[key("inst_name", n)] = in.Name
		m[key("inst_ch_map", n)] = in.ChannelMap
		m[key("inst_fx_unit", n)] = in.FXUnit
		m[key("inst_fx_lvl", n)] = in.FXRefLevelDB
		m[key("inst_toggle_", n)] = i < len(sess.Live.Instruments) && sess.Live.Instruments[i]
	}
	for i, fx := range sess.Routing.FXUnits {
		n := i + 1
		m[key("fx_unit", n)] = fx.Label
		m[key("fx_ch_map", n)] = fx.ChannelMap
		m[key("fx_aux_map", n)] = fx.AuxMap
	}
	return m
}

func portString(p int) string {
	if p == 0 {
		return ""
	}
	return fmt.Sprint(p)
}
