package analysis

import (
	"github.com/samber/lo"

	"github.com/mpapenbr/motorsport-analytics/pkg/model"
)

// FastestLap returns the fastest lap of laps or nil if there is none.
//
// Only laps with a lap time which are not deleted are considered.
// When the personal best flag is present on any of these laps only the flagged
// laps qualify. On equal lap times the earlier lap wins.
func FastestLap(laps []model.Lap) *model.Lap {
	candidates := lo.Filter(laps, func(l model.Lap, _ int) bool {
		return l.LapTime != nil && !l.Deleted
	})
	hasFlags := lo.SomeBy(candidates, func(l model.Lap) bool {
		return l.IsPersonalBest != nil
	})
	if hasFlags {
		candidates = lo.Filter(candidates, func(l model.Lap, _ int) bool {
			return l.IsPersonalBest != nil && *l.IsPersonalBest
		})
	}
	if len(candidates) == 0 {
		return nil
	}
	ret := lo.MinBy(candidates, func(a, b model.Lap) bool {
		return *a.LapTime < *b.LapTime
	})
	return &ret
}

// DriverLaps returns the laps of driver in session order
func DriverLaps(laps []model.Lap, driver string) []model.Lap {
	return lo.Filter(laps, func(l model.Lap, _ int) bool {
		return l.Driver == driver
	})
}

// Drivers returns the drivers in order of their first appearance
func Drivers(laps []model.Lap) []string {
	return lo.Uniq(lo.Map(laps, func(l model.Lap, _ int) string {
		return l.Driver
	}))
}
