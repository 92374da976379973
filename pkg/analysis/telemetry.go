package analysis

import (
	"context"
	"errors"
	"fmt"

	"github.com/mpapenbr/motorsport-analytics/pkg/model"
)

// DriverTelemetry extracts the telemetry of the fastest lap of driver.
// model.ErrNotFound is returned if the driver has no such lap or the session
// has no telemetry for it.
//
//nolint:whitespace // editor/linter issue
func DriverTelemetry(
	ctx context.Context, s model.Session, driver string,
) (*model.DriverTelemetry, error) {
	lap := FastestLap(DriverLaps(s.Laps(), driver))
	if lap == nil {
		return nil, fmt.Errorf("no fastest lap for driver %s: %w", driver, model.ErrNotFound)
	}
	samples, err := s.Telemetry(ctx, lap)
	if err != nil {
		if errors.Is(err, model.ErrTelemetryUnavailable) {
			return nil, fmt.Errorf("driver %s: %w (%w)", driver, model.ErrNotFound, err)
		}
		return nil, err
	}
	return &model.DriverTelemetry{
		LapInfo: model.LapInfo{
			Driver:      lap.Driver,
			LapTime:     lap.LapTime.Seconds(),
			Compound:    lap.Compound,
			TyreLife:    lap.TyreLife,
			Sector1Time: model.Seconds(lap.Sector1Time),
			Sector2Time: model.Seconds(lap.Sector2Time),
			Sector3Time: model.Seconds(lap.Sector3Time),
		},
		Telemetry: channels(samples),
	}, nil
}

// CompareTelemetry extracts the telemetry of the fastest laps of two drivers.
// Drivers without telemetry are mapped to nil.
//
//nolint:whitespace // editor/linter issue
func CompareTelemetry(
	ctx context.Context, s model.Session, driver1, driver2 string,
) (map[string]*model.DriverTelemetry, error) {
	ret := map[string]*model.DriverTelemetry{}
	for _, driver := range []string{driver1, driver2} {
		t, err := DriverTelemetry(ctx, s, driver)
		if err != nil && !errors.Is(err, model.ErrNotFound) {
			return nil, err
		}
		ret[driver] = t
	}
	return ret, nil
}

func channels(samples []model.TelemetrySample) model.TelemetryChannels {
	n := len(samples)
	ret := model.TelemetryChannels{
		Time:     make([]float64, n),
		Distance: make([]float64, n),
		Speed:    make([]float64, n),
		RPM:      make([]float64, n),
		Gear:     make([]int, n),
		Throttle: make([]float64, n),
		Brake:    make([]float64, n),
		X:        make([]float64, n),
		Y:        make([]float64, n),
		Z:        make([]float64, n),
	}
	for i := range samples {
		ret.Time[i] = samples[i].Time.Seconds()
		ret.Distance[i] = samples[i].Distance
		ret.Speed[i] = samples[i].Speed
		ret.RPM[i] = samples[i].RPM
		ret.Gear[i] = samples[i].Gear
		ret.Throttle[i] = samples[i].Throttle
		ret.Brake[i] = samples[i].Brake
		ret.X[i] = samples[i].X
		ret.Y[i] = samples[i].Y
		ret.Z[i] = samples[i].Z
	}
	return ret
}
