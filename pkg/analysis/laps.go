package analysis

import (
	"github.com/samber/lo"

	"github.com/mpapenbr/motorsport-analytics/pkg/model"
)

// AllLaps lists every lap which has a lap time
func AllLaps(laps []model.Lap) []model.LapRecord {
	return lo.FilterMap(laps, func(l model.Lap, _ int) (model.LapRecord, bool) {
		if l.LapTime == nil {
			return model.LapRecord{}, false
		}
		sec := l.LapTime.Seconds()
		return model.LapRecord{
			Driver:         l.Driver,
			LapNumber:      l.LapNumber,
			LapTime:        sec,
			LapTimeSec:     sec,
			Compound:       l.Compound,
			Stint:          l.Stint,
			IsPersonalBest: l.IsPersonalBest,
			TyreLife:       l.TyreLife,
		}, true
	})
}
