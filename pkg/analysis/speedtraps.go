package analysis

import (
	"cmp"
	"math"
	"slices"

	"github.com/samber/lo"

	"github.com/mpapenbr/motorsport-analytics/pkg/model"
)

// SpeedTraps collects the maximum speeds per measurement point for each driver
// sorted by top speed descending.
// The top speed is taken from the speed trap, the finish line, intermediate 2
// and intermediate 1 (in this order). Drivers without any of them are omitted.
func SpeedTraps(laps []model.Lap) []model.SpeedTrapRecord {
	ret := []model.SpeedTrapRecord{}
	for _, driver := range Drivers(laps) {
		dl := DriverLaps(laps, driver)
		rec := model.SpeedTrapRecord{
			Driver:  driver,
			SpeedST: maxSpeed(dl, func(l *model.Lap) *float64 { return l.SpeedST }),
			SpeedI1: maxSpeed(dl, func(l *model.Lap) *float64 { return l.SpeedI1 }),
			SpeedI2: maxSpeed(dl, func(l *model.Lap) *float64 { return l.SpeedI2 }),
			SpeedFL: maxSpeed(dl, func(l *model.Lap) *float64 { return l.SpeedFL }),
		}
		top, ok := lo.Find(
			[]*float64{rec.SpeedST, rec.SpeedFL, rec.SpeedI2, rec.SpeedI1},
			func(v *float64) bool { return v != nil && *v != 0 })
		if !ok {
			continue
		}
		rec.TopSpeed = *top
		ret = append(ret, rec)
	}
	slices.SortStableFunc(ret, func(a, b model.SpeedTrapRecord) int {
		return cmp.Compare(b.TopSpeed, a.TopSpeed)
	})
	return ret
}

func maxSpeed(laps []model.Lap, channel func(l *model.Lap) *float64) *float64 {
	var ret *float64
	for i := range laps {
		v := channel(&laps[i])
		if v == nil || math.IsNaN(*v) {
			continue
		}
		if ret == nil || *v > *ret {
			x := *v
			ret = &x
		}
	}
	return ret
}
