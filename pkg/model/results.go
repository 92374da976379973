package model

//nolint:tagliatelle // external API
type (
	StintSummary struct {
		Driver     string   `json:"driver"`
		Stint      int      `json:"stint"`
		Compound   string   `json:"compound"`
		Laps       int      `json:"laps"`
		AvgLapTime *float64 `json:"avg_lap_time"`
	}

	SpeedTrapRecord struct {
		Driver   string   `json:"driver"`
		TopSpeed float64  `json:"top_speed"`
		SpeedST  *float64 `json:"SpeedST"`
		SpeedI1  *float64 `json:"SpeedI1"`
		SpeedI2  *float64 `json:"SpeedI2"`
		SpeedFL  *float64 `json:"SpeedFL"`
	}

	SectorColor int

	SectorRecord struct {
		Driver  string      `json:"driver"`
		S1      *float64    `json:"s1"`
		S1Color SectorColor `json:"s1_color"`
		S2      *float64    `json:"s2"`
		S2Color SectorColor `json:"s2_color"`
		S3      *float64    `json:"s3"`
		S3Color SectorColor `json:"s3_color"`
	}

	MinisectorRecord struct {
		Minisector    int          `json:"minisector"`
		FastestDriver string       `json:"fastest_driver"`
		Points        [][2]float64 `json:"points"`
	}

	LapRecord struct {
		Driver         string   `json:"Driver"`
		LapNumber      int      `json:"LapNumber"`
		LapTime        float64  `json:"LapTime"`
		LapTimeSec     float64  `json:"LapTimeSec"`
		Compound       string   `json:"Compound"`
		Stint          *int     `json:"Stint"`
		IsPersonalBest *bool    `json:"IsPersonalBest"`
		TyreLife       *float64 `json:"TyreLife"`
	}

	LapInfo struct {
		Driver      string   `json:"Driver"`
		LapTime     float64  `json:"LapTime"`
		Compound    string   `json:"Compound"`
		TyreLife    *float64 `json:"TyreLife"`
		Sector1Time *float64 `json:"Sector1Time"`
		Sector2Time *float64 `json:"Sector2Time"`
		Sector3Time *float64 `json:"Sector3Time"`
	}

	TelemetryChannels struct {
		Time     []float64 `json:"Time"`
		Distance []float64 `json:"Distance"`
		Speed    []float64 `json:"Speed"`
		RPM      []float64 `json:"RPM"`
		Gear     []int     `json:"Gear"`
		Throttle []float64 `json:"Throttle"`
		Brake    []float64 `json:"Brake"`
		X        []float64 `json:"X"`
		Y        []float64 `json:"Y"`
		Z        []float64 `json:"Z"`
	}

	DriverTelemetry struct {
		LapInfo   LapInfo           `json:"lap_info"`
		Telemetry TelemetryChannels `json:"telemetry"`
	}

	Summary struct {
		Stints      []StintSummary     `json:"stints"`
		SpeedTraps  []SpeedTrapRecord  `json:"speed_traps"`
		Minisectors []MinisectorRecord `json:"minisectors"`
		BestSectors []SectorRecord     `json:"best_sectors"`
	}
)

const (
	SectorYellow SectorColor = iota // slower than personal best
	SectorGreen                     // personal best
	SectorPurple                    // session best
)

func EmptySummary() *Summary {
	return &Summary{
		Stints:      []StintSummary{},
		SpeedTraps:  []SpeedTrapRecord{},
		Minisectors: []MinisectorRecord{},
		BestSectors: []SectorRecord{},
	}
}
