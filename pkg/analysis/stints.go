package analysis

import (
	"cmp"
	"slices"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/mpapenbr/motorsport-analytics/pkg/model"
)

const (
	unknownCompound = "UNKNOWN"
	// laps slower than this factor times the fastest lap of a stint are outliers
	paceCutoff = "1.07"
	// stints need more than this number of representative laps for a pace value
	minPaceLaps = 3
)

type stintKey struct {
	driver string
	stint  int
}

// Stints summarizes the tyre stints of all drivers ordered by driver and stint.
// Laps without stint number are ignored.
func Stints(laps []model.Lap) []model.StintSummary {
	grouped := lo.GroupBy(
		lo.Filter(laps, func(l model.Lap, _ int) bool { return l.Stint != nil }),
		func(l model.Lap) stintKey {
			return stintKey{driver: l.Driver, stint: *l.Stint}
		})
	keys := lo.Keys(grouped)
	slices.SortFunc(keys, func(a, b stintKey) int {
		return cmp.Or(cmp.Compare(a.driver, b.driver), cmp.Compare(a.stint, b.stint))
	})

	ret := make([]model.StintSummary, 0, len(keys))
	for _, k := range keys {
		group := grouped[k]
		compound := group[0].Compound
		if compound == "" {
			compound = unknownCompound
		}
		ret = append(ret, model.StintSummary{
			Driver:     k.driver,
			Stint:      k.stint,
			Compound:   compound,
			Laps:       len(group),
			AvgLapTime: stintPace(group),
		})
	}
	return ret
}

// stintPace computes the mean lap time of the representative laps of a stint.
// Representative laps are within 107% of the fastest lap of the stint.
func stintPace(group []model.Lap) *float64 {
	valid := lo.FilterMap(group, func(l model.Lap, _ int) (decimal.Decimal, bool) {
		if l.LapTime == nil {
			return decimal.Zero, false
		}
		return decimal.New(int64(*l.LapTime), -9), true
	})
	if len(valid) == 0 {
		return nil
	}
	limit := decimal.Min(valid[0], valid[1:]...).Mul(decimal.RequireFromString(paceCutoff))
	filtered := lo.Filter(valid, func(d decimal.Decimal, _ int) bool {
		return d.LessThanOrEqual(limit)
	})
	if len(filtered) <= minPaceLaps {
		return nil
	}
	avg := decimal.Avg(filtered[0], filtered[1:]...).InexactFloat64()
	return &avg
}
