package main

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/mxa-live/mxa/internal/console"
	"github.com/mxa-live/mxa/internal/session"
	"github.com/mxa-live/mxa/level"
	"github.com/mxa-live/mxa/routing"
)

func openStore() (*session.Store, error) {
	return session.Open(cfg.Paths.Session, logger)
}

func loadLevels() (*level.Table, error) {
	t, err := level.Load(cfg.Paths.Mapping)
	if err != nil {
		return nil, err
	}
	if t.Len() == 0 {
		logger.Warn("level mapping is empty; every send that needs a level will fail",
			zap.String("path", cfg.Paths.Mapping))
	}
	if skipped := t.Skipped(); len(skipped) > 0 {
		logger.Warn("level mapping keys ignored", zap.Strings("keys", skipped))
	}
	return t, nil
}

func newDriver(levels *level.Table) *console.Driver {
	return console.NewDriver(routing.NewSynthesizer(levels, cfg.Synthesis), logger)
}

// applyOverrides sets toggles from "index=on|off" pairs, 1-based.
func applyOverrides(flags []bool, specs []string, what string) error {
	for _, spec := range specs {
		idx, state, ok := strings.Cut(spec, "=")
		if !ok {
			return fmt.Errorf("--%s %q: want index=on|off", what, spec)
		}
		i, err := strconv.Atoi(strings.TrimSpace(idx))
		if err != nil || i < 1 || i > len(flags) {
			return fmt.Errorf("--%s %q: index must be 1..%d", what, spec, len(flags))
		}
		switch strings.ToLower(strings.TrimSpace(state)) {
		case "on", "true", "1":
			flags[i-1] = true
		case "off", "false", "0":
			flags[i-1] = false
		default:
			return fmt.Errorf("--%s %q: state must be on or off", what, spec)
		}
	}
	return nil
}
