package console

import (
	"errors"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mxa-live/mxa/level"
	"github.com/mxa-live/mxa/osc"
	"github.com/mxa-live/mxa/routing"
)

type fakeSender struct {
	host   string
	port   int
	frames [][]byte
	limit  int // frames accepted before failing; <0 never fails
	err    error
}

func (f *fakeSender) SendBatch(host string, port int, frames [][]byte) (int, error) {
	f.host, f.port = host, port
	if f.limit >= 0 && f.limit < len(frames) {
		f.frames = append(f.frames, frames[:f.limit]...)
		return f.limit, f.err
	}
	f.frames = append(f.frames, frames...)
	return len(frames), nil
}

func soloConfig() *routing.Config {
	return &routing.Config{
		Console: routing.Endpoint{Host: "10.0.0.20", SendPort: 8000},
		Artists: []routing.Artist{{Name: "Vox", ChannelMap: 5, AuxMap: 3}},
	}
}

func newDriver(s Sender, logger *zap.Logger) *Driver {
	synth := routing.NewSynthesizer(level.NewTable(map[int]float64{-10: 0.5}), routing.Options{})
	return &Driver{Synth: synth, Sender: s, Logger: logger}
}

func TestPlan(t *testing.T) {
	d := newDriver(nil, nil)
	b, err := d.Plan(soloConfig(), routing.Toggles{Artists: []bool{true}, Instruments: []bool{}})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, b.ID)
	assert.Equal(t, soloConfig().Console, b.Endpoint)
	require.Len(t, b.Commands, 2)
	require.Len(t, b.Frames, 2)

	want, err := osc.Encode("/sd/Input_Channels/5/fader", float32(0.76))
	require.NoError(t, err)
	assert.Equal(t, want, b.Frames[0])
}

func TestPlan_MappingFailure(t *testing.T) {
	d := newDriver(nil, nil)
	cfg := soloConfig()
	cfg.Artists = append(cfg.Artists, routing.Artist{Name: "Gtr", ChannelMap: 6, AuxMap: 4, CoArtistRefLevelDB: -99})

	b, err := d.Plan(cfg, routing.Toggles{Artists: []bool{true, true}, Instruments: []bool{}})
	assert.ErrorIs(t, err, level.ErrMappingNotFound)
	assert.Nil(t, b)
}

func TestSend(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	fs := &fakeSender{limit: -1}
	d := newDriver(fs, zap.New(core))

	rep, err := d.Apply(soloConfig(), routing.Toggles{Artists: []bool{true}, Instruments: []bool{}})
	require.NoError(t, err)

	assert.Equal(t, "10.0.0.20", fs.host)
	assert.Equal(t, 8000, fs.port)
	assert.Len(t, fs.frames, 2)
	assert.Equal(t, 2, rep.Sent)
	assert.Equal(t, 2, rep.Total)
	require.Len(t, rep.Transcript, 2)
	assert.Equal(t, "10.0.0.20 8000 /sd/Input_Channels/5/mute ,i 0", rep.Transcript[1].String())

	assert.Equal(t, 2, logs.FilterMessage("TX").Len())
	assert.Equal(t, 1, logs.FilterMessage("batch sent").Len())
}

func TestSend_RefusesMissingEndpoint(t *testing.T) {
	for name, ep := range map[string]routing.Endpoint{
		"no host": {SendPort: 8000},
		"no port": {Host: "10.0.0.20"},
	} {
		t.Run(name, func(t *testing.T) {
			fs := &fakeSender{limit: -1}
			d := newDriver(fs, nil)
			cfg := soloConfig()
			cfg.Console = ep

			rep, err := d.Apply(cfg, routing.Toggles{Artists: []bool{false}, Instruments: []bool{}})
			assert.ErrorIs(t, err, ErrNoEndpoint)
			assert.Nil(t, rep)
			assert.Empty(t, fs.frames, "nothing is sent")
		})
	}
}

func TestSend_PartialFailure(t *testing.T) {
	boom := errors.New("network unreachable")
	fs := &fakeSender{limit: 1, err: boom}
	d := newDriver(fs, nil)

	rep, err := d.Apply(soloConfig(), routing.Toggles{Artists: []bool{true}, Instruments: []bool{}})
	assert.ErrorIs(t, err, boom)
	require.NotNil(t, rep)
	assert.Equal(t, 1, rep.Sent)
	assert.Equal(t, 2, rep.Total)
}

func TestUDPSender_Loopback(t *testing.T) {
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer pc.Close()
	port := pc.LocalAddr().(*net.UDPAddr).Port

	d := newDriver(UDPSender{}, nil)
	cfg := soloConfig()
	cfg.Console = routing.Endpoint{Host: "127.0.0.1", SendPort: port}
	rep, err := d.Apply(cfg, routing.Toggles{Artists: []bool{true}, Instruments: []bool{}})
	require.NoError(t, err)
	require.Equal(t, 2, rep.Sent)

	buf := make([]byte, osc.MaxPacketSize)
	var got []string
	for i := 0; i < 2; i++ {
		require.NoError(t, pc.SetReadDeadline(time.Now().Add(2*time.Second)))
		n, _, err := pc.ReadFrom(buf)
		require.NoError(t, err)
		msg, err := osc.ParseMessage(buf[:n])
		require.NoError(t, err)
		got = append(got, msg.String())
	}
	assert.Equal(t, []string{
		"/sd/Input_Channels/5/fader ,f 0.76",
		"/sd/Input_Channels/5/mute ,i 0",
	}, got)
}

func TestUDPSender_UnreachableConsoleGetsWholeBatch(t *testing.T) {
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	port := pc.LocalAddr().(*net.UDPAddr).Port
	require.NoError(t, pc.Close())

	d := newDriver(UDPSender{}, nil)
	cfg := soloConfig()
	cfg.Console = routing.Endpoint{Host: "127.0.0.1", SendPort: port}
	for i := 0; i < 2; i++ {
		rep, err := d.Apply(cfg, routing.Toggles{Artists: []bool{true}, Instruments: []bool{}})
		require.NoError(t, err)
		assert.Equal(t, rep.Total, rep.Sent)
	}
}
