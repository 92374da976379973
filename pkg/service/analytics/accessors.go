package analytics

import (
	"context"
	"fmt"
	"strings"

	"github.com/mpapenbr/motorsport-analytics/log"
	"github.com/mpapenbr/motorsport-analytics/pkg/analysis"
	"github.com/mpapenbr/motorsport-analytics/pkg/model"
)

func (s *Service) Stints(ctx context.Context, key model.SessionKey) ([]model.StintSummary, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	return s.stints(ctx, s.lazy(key))
}

func (s *Service) AllLaps(ctx context.Context, key model.SessionKey) ([]model.LapRecord, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	return cachedResult(ctx, s.lazy(key), model.MetricAllLaps, []model.LapRecord{},
		func(_ context.Context, sess model.Session) ([]model.LapRecord, error) {
			return analysis.AllLaps(sess.Laps()), nil
		})
}

//nolint:whitespace // editor/linter issue
func (s *Service) SpeedTraps(
	ctx context.Context, key model.SessionKey,
) ([]model.SpeedTrapRecord, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	return s.speedTraps(ctx, s.lazy(key))
}

//nolint:whitespace // editor/linter issue
func (s *Service) BestSectors(
	ctx context.Context, key model.SessionKey,
) ([]model.SectorRecord, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	return s.bestSectors(ctx, s.lazy(key))
}

// Minisectors returns the fastest driver per track segment.
// With segments == 0 the three timing sectors are used, otherwise the lap is
// split into segments of equal distance.
//
//nolint:whitespace // editor/linter issue
func (s *Service) Minisectors(
	ctx context.Context, key model.SessionKey, segments int,
) ([]model.MinisectorRecord, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	if segments < 0 {
		return nil, &model.ValidationError{
			Field:  "segments",
			Reason: fmt.Sprintf("must not be negative, got %d", segments),
		}
	}
	ls := s.lazy(key)
	if segments == 0 {
		return s.minisectors(ctx, ls)
	}
	return cachedResult(ctx, ls, model.MinisectorsByDistance(segments),
		[]model.MinisectorRecord{},
		func(ctx context.Context, sess model.Session) ([]model.MinisectorRecord, error) {
			return analysis.MinisectorsByDistance(ctx, sess, segments)
		})
}

// Telemetry returns the telemetry of the fastest lap of driver.
// Telemetry is not cached.
//
//nolint:whitespace // editor/linter issue
func (s *Service) Telemetry(
	ctx context.Context, key model.SessionKey, driver string,
) (*model.DriverTelemetry, error) {
	driver, err := validateDriver(key, "driver", driver)
	if err != nil {
		return nil, err
	}
	sess, err := s.lazy(key).get(ctx)
	if err != nil {
		return nil, err
	}
	return analysis.DriverTelemetry(ctx, sess, driver)
}

// CompareTelemetry returns the telemetry of the fastest laps of both drivers.
// A driver without telemetry is mapped to nil.
//
//nolint:whitespace // editor/linter issue
func (s *Service) CompareTelemetry(
	ctx context.Context, key model.SessionKey, driver1, driver2 string,
) (map[string]*model.DriverTelemetry, error) {
	driver1, err := validateDriver(key, "driver1", driver1)
	if err != nil {
		return nil, err
	}
	if driver2, err = validateDriver(key, "driver2", driver2); err != nil {
		return nil, err
	}
	sess, err := s.lazy(key).get(ctx)
	if err != nil {
		return nil, err
	}
	return analysis.CompareTelemetry(ctx, sess, driver1, driver2)
}

// Summary combines stints, speed traps, minisectors and best sectors.
// The session is loaded at most once. If it cannot be loaded all parts are
// empty.
//
//nolint:whitespace // editor/linter issue
func (s *Service) Summary(
	ctx context.Context, key model.SessionKey,
) (*model.Summary, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	ret := model.EmptySummary()
	if s.cache.Get(ctx, key, model.MetricStints, &ret.Stints) &&
		s.cache.Get(ctx, key, model.MetricSpeedTraps, &ret.SpeedTraps) &&
		s.cache.Get(ctx, key, model.MetricMinisectors, &ret.Minisectors) &&
		s.cache.Get(ctx, key, model.MetricBestSectors, &ret.BestSectors) {
		return ret, nil
	}

	ls := s.lazy(key)
	if _, err := ls.get(ctx); err != nil {
		s.log.Error("could not load session for summary",
			log.String("session", key.String()), log.ErrorField(err))
		return model.EmptySummary(), nil
	}
	var err error
	if ret.Stints, err = s.stints(ctx, ls); err != nil {
		return nil, err
	}
	if ret.SpeedTraps, err = s.speedTraps(ctx, ls); err != nil {
		return nil, err
	}
	if ret.Minisectors, err = s.minisectors(ctx, ls); err != nil {
		return nil, err
	}
	if ret.BestSectors, err = s.bestSectors(ctx, ls); err != nil {
		return nil, err
	}
	return ret, nil
}

func (s *Service) stints(ctx context.Context, ls *lazySession) ([]model.StintSummary, error) {
	return cachedResult(ctx, ls, model.MetricStints, []model.StintSummary{},
		func(_ context.Context, sess model.Session) ([]model.StintSummary, error) {
			return analysis.Stints(sess.Laps()), nil
		})
}

//nolint:whitespace // editor/linter issue
func (s *Service) speedTraps(
	ctx context.Context, ls *lazySession,
) ([]model.SpeedTrapRecord, error) {
	return cachedResult(ctx, ls, model.MetricSpeedTraps, []model.SpeedTrapRecord{},
		func(_ context.Context, sess model.Session) ([]model.SpeedTrapRecord, error) {
			return analysis.SpeedTraps(sess.Laps()), nil
		})
}

//nolint:whitespace // editor/linter issue
func (s *Service) bestSectors(
	ctx context.Context, ls *lazySession,
) ([]model.SectorRecord, error) {
	return cachedResult(ctx, ls, model.MetricBestSectors, []model.SectorRecord{},
		func(_ context.Context, sess model.Session) ([]model.SectorRecord, error) {
			return analysis.BestSectors(sess.Laps()), nil
		})
}

//nolint:whitespace // editor/linter issue
func (s *Service) minisectors(
	ctx context.Context, ls *lazySession,
) ([]model.MinisectorRecord, error) {
	return cachedResult(ctx, ls, model.MetricMinisectors, []model.MinisectorRecord{},
		func(ctx context.Context, sess model.Session) ([]model.MinisectorRecord, error) {
			best, err := s.bestSectors(ctx, ls)
			if err != nil {
				return nil, err
			}
			return analysis.Minisectors(ctx, sess, best)
		})
}

func validateDriver(key model.SessionKey, field, driver string) (string, error) {
	if err := key.Validate(); err != nil {
		return "", err
	}
	driver = strings.TrimSpace(driver)
	if driver == "" {
		return "", &model.ValidationError{Field: field, Reason: "must not be empty"}
	}
	return driver, nil
}
