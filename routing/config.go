package routing

import (
	"errors"
	"fmt"
)

// Limit is the largest number of artists, instruments or FX units a
// configuration may hold.
const Limit = 32

var (
	// ErrInvalidConfig is returned by Validate.
	ErrInvalidConfig = errors.New("routing: invalid configuration")
	// ErrToggleMismatch is returned when a toggle vector does not line up with
	// the configuration it is applied to.
	ErrToggleMismatch = errors.New("routing: toggle vector does not match configuration")
)

// Endpoint is the console's network address.
type Endpoint struct {
	Host        string `json:"host"`
	SendPort    int    `json:"send_port"`
	ReceivePort int    `json:"receive_port,omitempty"`
}

// Artist is a performer with an input channel and a monitor aux bus.
type Artist struct {
	Name               string  `json:"name"`
	ChannelMap         int     `json:"channel_map"`
	AuxMap             int     `json:"aux_map"`
	CoArtistRefLevelDB float64 `json:"co_artist_ref_level_db"`
	// FXUnit is the 1-based index into Config.FXUnits, 0 for none.
	FXUnit       int     `json:"fx_unit"`
	FXRefLevelDB float64 `json:"fx_ref_level_db"`
}

// Instrument is a featured instrument channel feeding one FX unit.
type Instrument struct {
	Name         string  `json:"name"`
	ChannelMap   int     `json:"channel_map"`
	FXUnit       int     `json:"fx_unit"`
	FXRefLevelDB float64 `json:"fx_ref_level_db"`
}

// FXUnit is an effects bus: FX sends go out on AuxMap, the return comes back
// on ChannelMap.
type FXUnit struct {
	Label      string `json:"label"`
	ChannelMap int    `json:"channel_map"`
	AuxMap     int    `json:"aux_map"`
}

// Config is the routing snapshot synthesis works from. The 1-based index of a
// record is its position in its slice plus one.
type Config struct {
	Console     Endpoint     `json:"console"`
	Artists     []Artist     `json:"artists"`
	Instruments []Instrument `json:"instruments"`
	FXUnits     []FXUnit     `json:"fx_units"`
}

// Validate checks the structural invariants synthesis relies on.
func (c *Config) Validate() error {
	if len(c.Artists) > Limit || len(c.Instruments) > Limit || len(c.FXUnits) > Limit {
		return fmt.Errorf("%w: at most %d artists, instruments and FX units (have %d, %d, %d)",
			ErrInvalidConfig, Limit, len(c.Artists), len(c.Instruments), len(c.FXUnits))
	}
	for i, a := range c.Artists {
		if a.FXUnit < 0 || a.FXUnit > len(c.FXUnits) {
			return fmt.Errorf("%w: artist %d (%s): fx unit %d not in 0..%d", ErrInvalidConfig, i+1, a.Name, a.FXUnit, len(c.FXUnits))
		}
		if a.ChannelMap < 0 || a.AuxMap < 0 {
			return fmt.Errorf("%w: artist %d (%s): negative channel or aux map", ErrInvalidConfig, i+1, a.Name)
		}
	}
	for i, in := range c.Instruments {
		if in.ChannelMap < 0 {
			return fmt.Errorf("%w: instrument %d (%s): negative channel map", ErrInvalidConfig, i+1, in.Name)
		}
	}
	for i, fx := range c.FXUnits {
		if fx.ChannelMap < 0 || fx.AuxMap < 0 {
			return fmt.Errorf("%w: fx unit %d (%s): negative channel or aux map", ErrInvalidConfig, i+1, fx.Label)
		}
	}
	if c.Console.SendPort < 0 || c.Console.SendPort > 65535 {
		return fmt.Errorf("%w: send port %d out of range", ErrInvalidConfig, c.Console.SendPort)
	}
	return nil
}

// Clone returns a deep copy, so that a caller can hold a private snapshot.
func (c *Config) Clone() *Config {
	out := *c
	out.Artists = append([]Artist(nil), c.Artists...)
	out.Instruments = append([]Instrument(nil), c.Instruments...)
	out.FXUnits = append([]FXUnit(nil), c.FXUnits...)
	return &out
}

// fxUnit resolves a 1-based FX index. Index 0 and out-of-range indexes resolve
// to the zero FXUnit, i.e. channel and aux map 0.
func (c *Config) fxUnit(index int) FXUnit {
	if index < 1 || index > len(c.FXUnits) {
		return FXUnit{}
	}
	return c.FXUnits[index-1]
}

// Toggles holds the live state: one flag per artist and one per instrument,
// in configuration order.
type Toggles struct {
	Artists     []bool `json:"artists"`
	Instruments []bool `json:"instruments"`
}

// NewToggles returns an all-off vector sized for cfg.
func NewToggles(cfg *Config) Toggles {
	return Toggles{
		Artists:     make([]bool, len(cfg.Artists)),
		Instruments: make([]bool, len(cfg.Instruments)),
	}
}

// Check verifies that t lines up with cfg.
func (t Toggles) Check(cfg *Config) error {
	if len(t.Artists) != len(cfg.Artists) {
		return fmt.Errorf("%w: %d artist toggles for %d artists", ErrToggleMismatch, len(t.Artists), len(cfg.Artists))
	}
	if len(t.Instruments) != len(cfg.Instruments) {
		return fmt.Errorf("%w: %d instrument toggles for %d instruments", ErrToggleMismatch, len(t.Instruments), len(cfg.Instruments))
	}
	return nil
}

// Resize returns a copy of t sized for cfg, keeping existing flags by position.
func (t Toggles) Resize(cfg *Config) Toggles {
	out := NewToggles(cfg)
	copy(out.Artists, t.Artists)
	copy(out.Instruments, t.Instruments)
	return out
}

// Clone returns a deep copy of t.
func (t Toggles) Clone() Toggles {
	return Toggles{
		Artists:     append([]bool(nil), t.Artists...),
		Instruments: append([]bool(nil), t.Instruments...),
	}
}

// liveCount returns the number of enabled artists.
func (t Toggles) liveCount() int {
	n := 0
	for _, on := range t.Artists {
		if on {
			n++
		}
	}
	return n
}
