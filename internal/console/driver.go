// Package console applies synthesized routing to a console over UDP.
package console

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mxa-live/mxa/internal/logging"
	"github.com/mxa-live/mxa/osc"
	"github.com/mxa-live/mxa/routing"
)

// ErrNoEndpoint is returned by Send when the batch has no host or send port.
var ErrNoEndpoint = errors.New("console: no endpoint configured")

// Sender delivers frames to host:port, one datagram per frame, in order. It
// returns how many frames were handed to the network.
type Sender interface {
	SendBatch(host string, port int, frames [][]byte) (int, error)
}

// UDPSender opens a socket per batch.
type UDPSender struct{}

// SendBatch implements Sender.
func (UDPSender) SendBatch(host string, port int, frames [][]byte) (int, error) {
	c, err := osc.DialHostPort(host, port)
	if err != nil {
		return 0, err
	}
	defer c.Close()
	return c.SendBatch(frames)
}

// Batch is one synthesized, encoded command set bound for one console.
type Batch struct {
	ID       uuid.UUID
	Endpoint routing.Endpoint
	Commands []routing.Command
	Frames   [][]byte
}

// Report describes a Send.
type Report struct {
	BatchID    uuid.UUID `json:"batch_id"`
	Sent       int       `json:"sent"`
	Total      int       `json:"total"`
	Transcript []Line    `json:"transcript"`
}

// Driver plans and sends batches.
type Driver struct {
	Synth  *routing.Synthesizer
	Sender Sender
	Logger *zap.Logger
}

// NewDriver returns a Driver sending over UDP.
func NewDriver(synth *routing.Synthesizer, logger *zap.Logger) *Driver {
	return &Driver{Synth: synth, Sender: UDPSender{}, Logger: logger}
}

// Plan synthesizes and encodes the commands for cfg and live. It does no I/O.
func (d *Driver) Plan(cfg *routing.Config, live routing.Toggles) (*Batch, error) {
	cmds, err := d.Synth.Synthesize(cfg, live)
	if err != nil {
		return nil, err
	}
	frames, err := routing.Encode(cmds)
	if err != nil {
		return nil, err
	}
	b := &Batch{
		ID:       uuid.New(),
		Endpoint: cfg.Console,
		Commands: cmds,
		Frames:   frames,
	}
	logging.OrNop(d.Logger).Debug("batch planned",
		zap.Stringer("batch", b.ID),
		zap.Int("commands", len(cmds)))
	return b, nil
}

// Send delivers b. On a network error the report still carries the number of
// frames sent before the failure.
func (d *Driver) Send(b *Batch) (*Report, error) {
	log := logging.OrNop(d.Logger).With(zap.Stringer("batch", b.ID))
	ep := b.Endpoint
	if ep.Host == "" || ep.SendPort == 0 {
		return nil, ErrNoEndpoint
	}

	lines, bad := Transcript(ep, b.Frames)
	for _, err := range bad {
		log.Warn("undecodable frame in batch", zap.Error(err))
	}
	rep := &Report{BatchID: b.ID, Total: len(b.Frames), Transcript: lines}

	sender := d.Sender
	if sender == nil {
		sender = UDPSender{}
	}
	n, err := sender.SendBatch(ep.Host, ep.SendPort, b.Frames)
	rep.Sent = n
	for _, c := range b.Commands[:min(n, len(b.Commands))] {
		log.Debug("TX",
			zap.String("host", ep.Host),
			zap.Int("port", ep.SendPort),
			zap.String("address", c.Address),
			zap.String("value", osc.FormatArgument(c.Value)))
	}
	if err != nil {
		log.Error("batch send failed",
			zap.String("host", ep.Host),
			zap.Int("port", ep.SendPort),
			zap.Int("sent", n),
			zap.Int("total", rep.Total),
			zap.Error(err))
		return rep, fmt.Errorf("console: send to %s:%d: %w", ep.Host, ep.SendPort, err)
	}
	log.Info("batch sent",
		zap.String("host", ep.Host),
		zap.Int("port", ep.SendPort),
		zap.Int("frames", n))
	return rep, nil
}

// Apply plans and sends in one step.
func (d *Driver) Apply(cfg *routing.Config, live routing.Toggles) (*Report, error) {
	b, err := d.Plan(cfg, live)
	if err != nil {
		return nil, err
	}
	return d.Send(b)
}
