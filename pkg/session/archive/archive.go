// Package archive loads sessions from exported session tables on disk.
//
// Layout:
//
//	<root>/<year>/<round>/<session>/laps.json
//	<root>/<year>/<round>/<session>/telemetry/<driver>_<lap>.json
//
// Both files are column oriented JSON objects (column name -> list of values).
// Times are given in seconds, missing values as null.
package archive

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/ohler55/ojg/oj"

	"github.com/mpapenbr/motorsport-analytics/log"
	"github.com/mpapenbr/motorsport-analytics/pkg/model"
	"github.com/mpapenbr/motorsport-analytics/pkg/session"
)

var ErrSessionNotFound = errors.New("session not found in archive")

type (
	Option func(*Loader)
	Loader struct {
		root string
		log  *log.Logger
	}
	archivedSession struct {
		key  model.SessionKey
		dir  string
		laps []model.Lap
		log  *log.Logger
	}
)

var (
	_ session.Loader = (*Loader)(nil)
	_ model.Session  = (*archivedSession)(nil)
)

func WithLogger(l *log.Logger) Option {
	return func(a *Loader) {
		a.log = l
	}
}

func NewLoader(root string, opts ...Option) *Loader {
	ret := &Loader{root: root, log: log.Default().Named("archive")}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

func (a *Loader) Load(ctx context.Context, key model.SessionKey) (model.Session, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	dir := filepath.Join(a.root,
		strconv.Itoa(key.Year), strconv.Itoa(key.Round), string(key.Session))
	a.log.Debug("loading session", log.String("key", key.String()), log.String("dir", dir))
	start := time.Now()

	raw, err := readJSON(filepath.Join(dir, "laps.json"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			err = ErrSessionNotFound
		}
		return nil, &model.LoadError{Key: key, Err: err}
	}
	laps, err := parseLaps(raw)
	if err != nil {
		return nil, &model.LoadError{Key: key, Err: fmt.Errorf("laps.json: %w", err)}
	}
	a.log.Debug("session loaded",
		log.String("key", key.String()),
		log.Int("laps", len(laps)),
		log.Duration("duration", time.Since(start)))
	return &archivedSession{key: key, dir: dir, laps: laps, log: a.log}, nil
}

func (s *archivedSession) Key() model.SessionKey {
	return s.key
}

func (s *archivedSession) Laps() []model.Lap {
	return s.laps
}

//nolint:whitespace // editor/linter issue
func (s *archivedSession) Telemetry(
	ctx context.Context, lap *model.Lap,
) ([]model.TelemetrySample, error) {
	if lap == nil {
		return nil, model.ErrTelemetryUnavailable
	}
	file := filepath.Join(s.dir, "telemetry",
		fmt.Sprintf("%s_%d.json", lap.Driver, lap.LapNumber))
	raw, err := readJSON(file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s lap %d: %w",
				lap.Driver, lap.LapNumber, model.ErrTelemetryUnavailable)
		}
		return nil, err
	}
	samples, err := parseTelemetry(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(file), err)
	}
	return samples, nil
}

func readJSON(file string) (any, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return oj.ParseReader(f)
}

func parseLaps(raw any) ([]model.Lap, error) {
	cols, err := newColumns(raw, "Driver", "LapNumber")
	if err != nil {
		return nil, err
	}
	ret := make([]model.Lap, 0, cols.rows)
	for i := range cols.rows {
		driver := cols.str("Driver", i)
		lapNo, ok := cols.float("LapNumber", i)
		if driver == "" || !ok {
			continue
		}
		lap := model.Lap{
			Driver:         driver,
			LapNumber:      int(lapNo),
			Stint:          cols.intPtr("Stint", i),
			Compound:       cols.str("Compound", i),
			TyreLife:       cols.floatPtr("TyreLife", i),
			LapTime:        cols.seconds("LapTime", i),
			Sector1Time:    cols.seconds("Sector1Time", i),
			Sector2Time:    cols.seconds("Sector2Time", i),
			Sector3Time:    cols.seconds("Sector3Time", i),
			Sector1Session: cols.seconds("Sector1SessionTime", i),
			Sector2Session: cols.seconds("Sector2SessionTime", i),
			SpeedI1:        cols.floatPtr("SpeedI1", i),
			SpeedI2:        cols.floatPtr("SpeedI2", i),
			SpeedFL:        cols.floatPtr("SpeedFL", i),
			SpeedST:        cols.floatPtr("SpeedST", i),
			IsPersonalBest: cols.boolPtr("IsPersonalBest", i),
		}
		if deleted := cols.boolPtr("Deleted", i); deleted != nil {
			lap.Deleted = *deleted
		}
		ret = append(ret, lap)
	}
	return ret, nil
}

func parseTelemetry(raw any) ([]model.TelemetrySample, error) {
	cols, err := newColumns(raw, "Time")
	if err != nil {
		return nil, err
	}
	// the timing feed names the gear channel nGear, some exports use Gear
	gearCol := "nGear"
	if !cols.has(gearCol) {
		gearCol = "Gear"
	}
	ret := make([]model.TelemetrySample, cols.rows)
	for i := range cols.rows {
		sample := model.TelemetrySample{
			Distance: cols.floatOrNaN("Distance", i),
			Speed:    cols.floatOrNaN("Speed", i),
			RPM:      cols.floatOrNaN("RPM", i),
			Throttle: cols.floatOrNaN("Throttle", i),
			Brake:    cols.floatOrNaN("Brake", i),
			X:        cols.floatOrNaN("X", i),
			Y:        cols.floatOrNaN("Y", i),
			Z:        cols.floatOrNaN("Z", i),
		}
		if d := cols.seconds("SessionTime", i); d != nil {
			sample.SessionTime = *d
		}
		if d := cols.seconds("Time", i); d != nil {
			sample.Time = *d
		}
		if g, ok := cols.float(gearCol, i); ok {
			sample.Gear = int(g)
		}
		ret[i] = sample
	}
	return ret, nil
}
