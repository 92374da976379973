package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Metric names one cached analysis of a session
type Metric string

const (
	MetricStints      Metric = "stints"
	MetricAllLaps     Metric = "all_laps"
	MetricSpeedTraps  Metric = "speed_traps"
	MetricMinisectors Metric = "minisectors"
	MetricBestSectors Metric = "best_sectors"
)

const distanceMinisectorPrefix = "minisectors_d"

// MinisectorsByDistance is the metric for the distance based minisector
// partition with n segments
func MinisectorsByDistance(n int) Metric {
	return Metric(fmt.Sprintf("%s%d", distanceMinisectorPrefix, n))
}

// Segments returns the segment count of a distance based minisector metric
func (m Metric) Segments() (int, bool) {
	rest, ok := strings.CutPrefix(string(m), distanceMinisectorPrefix)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

func ParseMetric(s string) (Metric, error) {
	m := Metric(s)
	switch m {
	case MetricStints, MetricAllLaps, MetricSpeedTraps,
		MetricMinisectors, MetricBestSectors:
		return m, nil
	default:
	}
	if _, ok := m.Segments(); ok {
		return m, nil
	}
	return "", &ValidationError{Field: "metric", Reason: fmt.Sprintf("unknown metric %q", s)}
}
