// Package routing turns a routing configuration and the live toggles into the
// ordered list of console commands that realizes them.
package routing

import (
	"errors"
	"fmt"

	"github.com/mxa-live/mxa/level"
)

// LevelMapper converts a decibel value into a normalized console level.
// *level.Table implements it.
type LevelMapper interface {
	Map(db float64) (float64, error)
}

// Options adjusts how commands are produced.
type Options struct {
	// NestedInstrumentPass re-evaluates the instrument rules after every
	// artist instead of once after all artists. The output then repeats the
	// instrument block once per artist and is empty for instruments when there
	// are no artists. Kept for byte-compatibility with earlier releases.
	NestedInstrumentPass bool `yaml:"nested_instrument_pass" json:"nested_instrument_pass"`

	// FloatFlags sends mute and send_on flags as float32 instead of int32.
	FloatFlags bool `yaml:"float_flags" json:"float_flags"`
}

// Synthesizer computes the full command set from scratch on every call. It
// holds no state between calls and is safe for concurrent use.
type Synthesizer struct {
	Levels  LevelMapper
	Options Options
}

// NewSynthesizer returns a Synthesizer using levels for dB lookups.
func NewSynthesizer(levels LevelMapper, opts Options) *Synthesizer {
	return &Synthesizer{Levels: levels, Options: opts}
}

// Synthesize returns the commands for cfg with the given live state. The same
// inputs always yield the same commands in the same order. If any level
// lookup fails no commands are returned.
func (s *Synthesizer) Synthesize(cfg *Config, live Toggles) ([]Command, error) {
	if s.Levels == nil {
		return nil, errors.New("routing: synthesizer has no level mapper")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := live.Check(cfg); err != nil {
		return nil, err
	}

	p := &plan{s: s, cfg: cfg, live: live}
	for i := range cfg.Artists {
		var err error
		if live.Artists[i] {
			err = p.artistLive(i)
		} else {
			p.artistOff(i)
		}
		if err != nil {
			return nil, err
		}
		if s.Options.NestedInstrumentPass {
			if err := p.instruments(); err != nil {
				return nil, err
			}
		}
	}
	if !s.Options.NestedInstrumentPass {
		if err := p.instruments(); err != nil {
			return nil, err
		}
	}
	return p.cmds, nil
}

// plan accumulates the commands of one Synthesize call.
type plan struct {
	s    *Synthesizer
	cfg  *Config
	live Toggles
	cmds []Command
}

func (p *plan) emit(addr string, v interface{}) {
	p.cmds = append(p.cmds, Command{Address: addr, Value: v})
}

func (p *plan) flag(on bool) interface{} {
	var v int32
	if on {
		v = 1
	}
	if p.s.Options.FloatFlags {
		return float32(v)
	}
	return v
}

func (p *plan) fader(ch int, lvl float64) {
	p.emit(Fader(ch), float32(lvl))
}

func (p *plan) mute(ch int, muted bool) {
	p.emit(Mute(ch), p.flag(muted))
}

// send sets the on switch and the level of the send from ch to aux.
func (p *plan) send(ch, aux int, on bool, lvl float64) {
	p.emit(SendOn(ch, aux), p.flag(on))
	p.emit(SendLevel(ch, aux), float32(lvl))
}

func (p *plan) level(db float64, what string) (float64, error) {
	v, err := p.s.Levels.Map(db)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", what, err)
	}
	return v, nil
}

// artistLive opens artist i: its channel, its sends into the other artists'
// mixes, and the FX unit it uses.
func (p *plan) artistLive(i int) error {
	a := p.cfg.Artists[i]
	p.fader(a.ChannelMap, level.Unity)
	p.mute(a.ChannelMap, false)

	for j, o := range p.cfg.Artists {
		if j == i {
			continue
		}
		if !p.live.Artists[j] {
			p.send(a.ChannelMap, o.AuxMap, false, level.Silence)
			continue
		}
		lvl, err := p.level(a.CoArtistRefLevelDB, fmt.Sprintf("artist %d (%s) co-artist level", i+1, a.Name))
		if err != nil {
			return err
		}
		p.send(a.ChannelMap, o.AuxMap, true, lvl)
	}

	for k, fx := range p.cfg.FXUnits {
		if a.FXUnit != k+1 {
			// Unreachable: artist i is live here. The legacy rule table
			// cuts the FX return to a disabled artist's mix at this point;
			// artistOff covers that case.
			if !p.live.Artists[i] {
				p.send(fx.ChannelMap, a.AuxMap, false, level.Silence)
			}
			continue
		}
		if err := p.artistFX(i, fx); err != nil {
			return err
		}
	}
	return nil
}

// artistFX routes live artist i through its FX unit and feeds the FX return
// to every mix that should hear it.
func (p *plan) artistFX(i int, fx FXUnit) error {
	a := p.cfg.Artists[i]
	p.fader(fx.ChannelMap, level.Unity)
	p.mute(fx.ChannelMap, false)
	p.send(a.ChannelMap, fx.AuxMap, true, level.Unity)

	lvl, err := p.level(a.FXRefLevelDB, fmt.Sprintf("artist %d (%s) fx level", i+1, a.Name))
	if err != nil {
		return err
	}
	p.send(fx.ChannelMap, a.AuxMap, true, lvl)

	if p.live.liveCount() == 1 {
		for j, o := range p.cfg.Artists {
			if j != i {
				p.send(fx.ChannelMap, o.AuxMap, false, level.Silence)
			}
		}
		return nil
	}

	for j, o := range p.cfg.Artists {
		if j == i || !p.live.Artists[j] || o.FXUnit == a.FXUnit {
			continue
		}
		lvl, err := p.level(o.CoArtistRefLevelDB+o.FXRefLevelDB, fmt.Sprintf("artist %d (%s) fx return level", j+1, o.Name))
		if err != nil {
			return err
		}
		p.send(fx.ChannelMap, o.AuxMap, true, lvl)
	}
	return nil
}

// artistOff silences artist i's channel and cuts every send to and from it.
// The mute flag is left off; only the fader closes.
func (p *plan) artistOff(i int) {
	a := p.cfg.Artists[i]
	p.fader(a.ChannelMap, level.Silence)
	p.mute(a.ChannelMap, false)

	for j, o := range p.cfg.Artists {
		if j != i {
			p.send(a.ChannelMap, o.AuxMap, false, level.Silence)
		}
	}
	for _, fx := range p.cfg.FXUnits {
		p.send(a.ChannelMap, fx.AuxMap, false, level.Silence)
		p.send(fx.ChannelMap, a.AuxMap, false, level.Silence)
	}
}

// instruments applies the featured instrument rules. They do not depend on
// which artists are live.
func (p *plan) instruments() error {
	for m, in := range p.cfg.Instruments {
		fx := p.cfg.fxUnit(in.FXUnit)
		if !p.live.Instruments[m] {
			p.fader(in.ChannelMap, level.Silence)
			p.mute(in.ChannelMap, true)
			p.send(in.ChannelMap, fx.AuxMap, false, level.Silence)
			continue
		}

		lvl, err := p.level(in.FXRefLevelDB, fmt.Sprintf("instrument %d (%s) fx level", m+1, in.Name))
		if err != nil {
			return err
		}
		p.fader(in.ChannelMap, level.Unity)
		p.mute(in.ChannelMap, false)
		p.fader(fx.ChannelMap, level.Unity)
		p.mute(fx.ChannelMap, false)
		p.send(in.ChannelMap, fx.AuxMap, true, lvl)
	}
	return nil
}
