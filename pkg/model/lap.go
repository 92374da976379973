package model

import (
	"context"
	"time"
)

type (
	// Lap is one row of the lap table of a session.
	// Nil pointers denote missing values.
	Lap struct {
		Driver         string
		LapNumber      int
		Stint          *int
		Compound       string
		TyreLife       *float64
		LapTime        *time.Duration
		Sector1Time    *time.Duration
		Sector2Time    *time.Duration
		Sector3Time    *time.Duration
		Sector1Session *time.Duration // session time when sector 1 was completed
		Sector2Session *time.Duration // session time when sector 2 was completed
		SpeedI1        *float64
		SpeedI2        *float64
		SpeedFL        *float64
		SpeedST        *float64
		IsPersonalBest *bool
		Deleted        bool
	}

	// TelemetrySample is a single telemetry record of a lap.
	// Missing numeric channels are NaN.
	TelemetrySample struct {
		SessionTime time.Duration
		Time        time.Duration // relative to lap start
		Distance    float64
		Speed       float64
		RPM         float64
		Gear        int
		Throttle    float64 // 0-100
		Brake       float64 // 0-100
		X           float64
		Y           float64
		Z           float64
	}

	// Session is a loaded session as delivered by the session loader
	Session interface {
		Key() SessionKey
		Laps() []Lap
		// Telemetry extracts the telemetry of a single lap. This is expensive.
		Telemetry(ctx context.Context, lap *Lap) ([]TelemetrySample, error)
	}
)

func (l *Lap) SectorTime(sector int) *time.Duration {
	switch sector {
	case 1:
		return l.Sector1Time
	case 2:
		return l.Sector2Time
	case 3:
		return l.Sector3Time
	}
	return nil
}

// Seconds converts an optional duration into optional seconds
func Seconds(d *time.Duration) *float64 {
	if d == nil {
		return nil
	}
	s := d.Seconds()
	return &s
}
