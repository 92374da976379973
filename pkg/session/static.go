package session

import (
	"context"
	"fmt"

	"github.com/mpapenbr/motorsport-analytics/pkg/model"
)

// LapRef identifies the lap of a driver
type LapRef struct {
	Driver    string
	LapNumber int
}

// Static is a fully materialized session, e.g. for replays and tests
type Static struct {
	SessionKey   model.SessionKey
	LapData      []model.Lap
	TelemetryMap map[LapRef][]model.TelemetrySample
}

var _ model.Session = (*Static)(nil)

func (s *Static) Key() model.SessionKey {
	return s.SessionKey
}

func (s *Static) Laps() []model.Lap {
	return s.LapData
}

//nolint:whitespace // editor/linter issue
func (s *Static) Telemetry(
	ctx context.Context, lap *model.Lap,
) ([]model.TelemetrySample, error) {
	if lap == nil {
		return nil, fmt.Errorf("no lap given: %w", model.ErrTelemetryUnavailable)
	}
	samples, ok := s.TelemetryMap[LapRef{Driver: lap.Driver, LapNumber: lap.LapNumber}]
	if !ok {
		return nil, fmt.Errorf("%s lap %d: %w",
			lap.Driver, lap.LapNumber, model.ErrTelemetryUnavailable)
	}
	return samples, nil
}
