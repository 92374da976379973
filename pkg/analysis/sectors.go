package analysis

import (
	"time"

	"github.com/mpapenbr/motorsport-analytics/pkg/model"
)

// sector times within this tolerance of a best time count as equal
const sectorEpsilon = 0.001

// BestSectors reports the sector times of each driver's fastest lap together
// with their classification against the session and personal bests.
// Drivers are reported in order of their first appearance.
func BestSectors(laps []model.Lap) []model.SectorRecord {
	sessionBest := [3]*float64{}
	for s := range 3 {
		sessionBest[s] = minSector(laps, s+1)
	}
	ret := []model.SectorRecord{}
	for _, driver := range Drivers(laps) {
		dl := DriverLaps(laps, driver)
		fastest := FastestLap(dl)
		if fastest == nil {
			continue
		}
		var values [3]*float64
		var colors [3]model.SectorColor
		for s := range 3 {
			values[s] = model.Seconds(fastest.SectorTime(s + 1))
			colors[s] = ClassifySector(values[s], minSector(dl, s+1), sessionBest[s])
		}
		ret = append(ret, model.SectorRecord{
			Driver:  driver,
			S1:      values[0],
			S1Color: colors[0],
			S2:      values[1],
			S2Color: colors[1],
			S3:      values[2],
			S3Color: colors[2],
		})
	}
	return ret
}

// ClassifySector rates a sector time against the personal and the session best.
// A missing value is always SectorYellow.
func ClassifySector(value, personalBest, sessionBest *float64) model.SectorColor {
	if value == nil {
		return model.SectorYellow
	}
	if sessionBest != nil && *value <= *sessionBest+sectorEpsilon {
		return model.SectorPurple
	}
	if personalBest != nil && *value <= *personalBest+sectorEpsilon {
		return model.SectorGreen
	}
	return model.SectorYellow
}

// minSector returns the minimum time in seconds for a sector over all laps
func minSector(laps []model.Lap, sector int) *float64 {
	var best *time.Duration
	for i := range laps {
		d := laps[i].SectorTime(sector)
		if d != nil && (best == nil || *d < *best) {
			best = d
		}
	}
	return model.Seconds(best)
}
