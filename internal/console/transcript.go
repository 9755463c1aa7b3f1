package console

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mxa-live/mxa/osc"
	"github.com/mxa-live/mxa/routing"
)

// Line is one decoded frame of a batch.
type Line struct {
	Host    string   `json:"host"`
	Port    int      `json:"port"`
	Address string   `json:"address"`
	Tags    string   `json:"tags"`
	Values  []string `json:"values"`
}

func (l Line) String() string {
	var sb strings.Builder
	sb.WriteString(l.Host)
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(l.Port))
	sb.WriteByte(' ')
	sb.WriteString(l.Address)
	sb.WriteByte(' ')
	sb.WriteString(l.Tags)
	for _, v := range l.Values {
		sb.WriteByte(' ')
		sb.WriteString(v)
	}
	return sb.String()
}

// Transcript decodes frames for display. A frame that does not decode is
// reported in the error list and left out of the lines; the rest still
// render.
func Transcript(ep routing.Endpoint, frames [][]byte) ([]Line, []error) {
	lines := make([]Line, 0, len(frames))
	var errs []error
	for i, f := range frames {
		msg, err := osc.ParseMessage(f)
		if err != nil {
			errs = append(errs, fmt.Errorf("frame %d: %w", i+1, err))
			continue
		}
		tags, err := msg.TypeTags()
		if err != nil {
			errs = append(errs, fmt.Errorf("frame %d: %w", i+1, err))
			continue
		}
		l := Line{Host: ep.Host, Port: ep.SendPort, Address: msg.Address, Tags: tags}
		for _, arg := range msg.Arguments {
			l.Values = append(l.Values, osc.FormatArgument(arg))
		}
		lines = append(lines, l)
	}
	return lines, errs
}
