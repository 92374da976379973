package analysis

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/samber/lo"

	"github.com/mpapenbr/motorsport-analytics/log"
	"github.com/mpapenbr/motorsport-analytics/pkg/model"
)

// UnknownDriver is the owner of a sector nobody has a time for
const UnknownDriver = "Unknown"

// SectorOwners returns the driver with the fastest time for each of the three
// sectors. On equal times the first driver wins.
func SectorOwners(best []model.SectorRecord) [3]string {
	ret := [3]string{UnknownDriver, UnknownDriver, UnknownDriver}
	pick := []func(r model.SectorRecord) *float64{
		func(r model.SectorRecord) *float64 { return r.S1 },
		func(r model.SectorRecord) *float64 { return r.S2 },
		func(r model.SectorRecord) *float64 { return r.S3 },
	}
	for s, value := range pick {
		var fastest *float64
		for _, r := range best {
			if v := value(r); v != nil && (fastest == nil || *v < *fastest) {
				fastest = v
				ret[s] = r.Driver
			}
		}
	}
	return ret
}

// SectorOf assigns a session time to one of the three sectors of a lap.
// Missing sector boundaries extend the previous sector.
func SectorOf(t time.Duration, s1, s2 *time.Duration) int {
	if s1 == nil || t <= *s1 {
		return 1
	}
	if s2 == nil || t <= *s2 {
		return 2
	}
	return 3
}

// Minisectors maps the sector owners computed from best onto the track
// geometry of the session's fastest lap.
// Sectors without owner or without telemetry samples are omitted.
//
//nolint:whitespace // editor/linter issue
func Minisectors(
	ctx context.Context, s model.Session, best []model.SectorRecord,
) ([]model.MinisectorRecord, error) {
	ret := []model.MinisectorRecord{}
	if len(best) == 0 {
		return ret, nil
	}
	owners := SectorOwners(best)
	ref := FastestLap(s.Laps())
	if ref == nil {
		return ret, nil
	}
	samples, err := s.Telemetry(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("reference lap %s/%d: %w", ref.Driver, ref.LapNumber, err)
	}
	var points [3][][2]float64
	for i := range samples {
		sector := SectorOf(samples[i].SessionTime, ref.Sector1Session, ref.Sector2Session)
		points[sector-1] = append(points[sector-1], [2]float64{samples[i].X, samples[i].Y})
	}
	for sector := range 3 {
		if owners[sector] == UnknownDriver || len(points[sector]) == 0 {
			continue
		}
		ret = append(ret, model.MinisectorRecord{
			Minisector:    sector + 1,
			FastestDriver: owners[sector],
			Points:        points[sector],
		})
	}
	return ret, nil
}

// SegmentOf assigns a distance to one of n segments of length segLen.
// The result is clamped to [1,n].
func SegmentOf(distance, segLen float64, n int) int {
	seg := int(math.Floor(distance/segLen)) + 1
	return max(1, min(seg, n))
}

// MinisectorsByDistance splits the fastest lap of the session into n segments
// of equal distance. The owner of a segment is the driver with the highest mean
// speed in that segment on the driver's fastest lap.
// Drivers whose telemetry cannot be extracted do not take part.
//
//nolint:whitespace,funlen // editor/linter issue
func MinisectorsByDistance(
	ctx context.Context, s model.Session, n int,
) ([]model.MinisectorRecord, error) {
	if n < 1 {
		return nil, &model.ValidationError{
			Field:  "segments",
			Reason: fmt.Sprintf("must be at least 1, got %d", n),
		}
	}
	ret := []model.MinisectorRecord{}
	laps := s.Laps()
	ref := FastestLap(laps)
	if ref == nil {
		return ret, nil
	}
	refSamples, err := s.Telemetry(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("reference lap %s/%d: %w", ref.Driver, ref.LapNumber, err)
	}
	trackLen := lo.MaxBy(refSamples, func(a, b model.TelemetrySample) bool {
		return a.Distance > b.Distance || math.IsNaN(b.Distance)
	}).Distance
	if len(refSamples) == 0 || math.IsNaN(trackLen) || trackLen <= 0 {
		return ret, nil
	}
	segLen := trackLen / float64(n)

	type best struct {
		driver string
		speed  float64
	}
	owners := make([]*best, n)
	for _, driver := range Drivers(laps) {
		var samples []model.TelemetrySample
		if driver == ref.Driver {
			samples = refSamples
		} else {
			lap := FastestLap(DriverLaps(laps, driver))
			if lap == nil {
				continue
			}
			if samples, err = s.Telemetry(ctx, lap); err != nil {
				log.GetFromContext(ctx).Warn("skipping driver for minisectors",
					log.String("driver", driver), log.ErrorField(err))
				continue
			}
		}
		for seg, speed := range segmentSpeeds(samples, segLen, n) {
			if owners[seg] == nil || speed > owners[seg].speed {
				owners[seg] = &best{driver: driver, speed: speed}
			}
		}
	}

	points := make([][][2]float64, n)
	seg := 1
	for i := range refSamples {
		if d := refSamples[i].Distance; !math.IsNaN(d) {
			seg = SegmentOf(d, segLen, n)
		}
		points[seg-1] = append(points[seg-1], [2]float64{refSamples[i].X, refSamples[i].Y})
	}
	for i := range n {
		if owners[i] == nil || len(points[i]) == 0 {
			continue
		}
		ret = append(ret, model.MinisectorRecord{
			Minisector:    i + 1,
			FastestDriver: owners[i].driver,
			Points:        points[i],
		})
	}
	return ret, nil
}

// segmentSpeeds computes the mean speed per segment (0-based) of samples.
// Samples with missing distance or speed are ignored.
func segmentSpeeds(samples []model.TelemetrySample, segLen float64, n int) map[int]float64 {
	sum := map[int]float64{}
	count := map[int]int{}
	for i := range samples {
		d, v := samples[i].Distance, samples[i].Speed
		if math.IsNaN(d) || math.IsNaN(v) {
			continue
		}
		seg := SegmentOf(d, segLen, n) - 1
		sum[seg] += v
		count[seg]++
	}
	ret := make(map[int]float64, len(sum))
	for seg, total := range sum {
		ret[seg] = total / float64(count[seg])
	}
	return ret
}
