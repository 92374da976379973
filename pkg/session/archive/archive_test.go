//nolint:lll,funlen // ok for tests
package archive

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/motorsport-analytics/log"
	"github.com/mpapenbr/motorsport-analytics/pkg/model"
)

const lapsJSON = `{
	"Driver": ["VER", "VER", "HAM"],
	"LapNumber": [1, 2, 1],
	"Stint": [1, 1, null],
	"Compound": ["SOFT", "SOFT", null],
	"TyreLife": [1, 2, 5],
	"LapTime": [91.5, null, 92],
	"Sector1Time": [30.1, 30.2, 30.3],
	"Sector2Time": [30.4, null, 30.5],
	"Sector3Time": [31.0, 31.1, 31.2],
	"Sector1SessionTime": [1000.1, 1091.6, 1000.3],
	"Sector2SessionTime": [1030.5, null, 1030.8],
	"SpeedST": [310.5, 0, null],
	"IsPersonalBest": [true, false, null],
	"Deleted": [false, true, false]
}`

const telemetryJSON = `{
	"SessionTime": [1000.0, 1000.5],
	"Time": [0.0, 0.5],
	"Distance": [0, 40.5],
	"Speed": [280, null],
	"RPM": [11000, 11200],
	"nGear": [7, 8],
	"Throttle": [100, 99],
	"Brake": [false, true],
	"X": [1, 2], "Y": [3, 4], "Z": [5, 6]
}`

func writeFile(t *testing.T, file, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(file), 0o755))
	require.NoError(t, os.WriteFile(file, []byte(content), 0o600))
}

func setupArchive(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "2023", "1", "R")
	writeFile(t, filepath.Join(dir, "laps.json"), lapsJSON)
	writeFile(t, filepath.Join(dir, "telemetry", "VER_1.json"), telemetryJSON)
	return root
}

func dur(sec float64) *time.Duration {
	d := time.Duration(math.Round(sec * float64(time.Second)))
	return &d
}

func TestLoad(t *testing.T) {
	l := NewLoader(setupArchive(t), WithLogger(log.Nop()))
	s, err := l.Load(context.Background(),
		model.SessionKey{Year: 2023, Round: 1, Session: model.SessionRace})
	require.NoError(t, err)

	laps := s.Laps()
	require.Len(t, laps, 3)

	ver1 := laps[0]
	assert.Equal(t, "VER", ver1.Driver)
	assert.Equal(t, 1, ver1.LapNumber)
	assert.Equal(t, 1, *ver1.Stint)
	assert.Equal(t, "SOFT", ver1.Compound)
	assert.Equal(t, dur(91.5), ver1.LapTime)
	assert.Equal(t, dur(1030.5), ver1.Sector2Session)
	assert.InDelta(t, 310.5, *ver1.SpeedST, 1e-9)
	assert.Nil(t, ver1.SpeedI1)
	assert.True(t, *ver1.IsPersonalBest)
	assert.False(t, ver1.Deleted)

	ver2 := laps[1]
	assert.Nil(t, ver2.LapTime)
	assert.Nil(t, ver2.Sector2Time)
	assert.True(t, ver2.Deleted)

	ham := laps[2]
	assert.Nil(t, ham.Stint)
	assert.Equal(t, "", ham.Compound)
	assert.Nil(t, ham.IsPersonalBest)
}

func TestTelemetry(t *testing.T) {
	l := NewLoader(setupArchive(t), WithLogger(log.Nop()))
	s, err := l.Load(context.Background(),
		model.SessionKey{Year: 2023, Round: 1, Session: model.SessionRace})
	require.NoError(t, err)

	laps := s.Laps()
	samples, err := s.Telemetry(context.Background(), &laps[0])
	require.NoError(t, err)
	require.Len(t, samples, 2)
	assert.Equal(t, 1000*time.Second, samples[0].SessionTime)
	assert.Equal(t, 500*time.Millisecond, samples[1].Time)
	assert.Equal(t, 8, samples[1].Gear)
	assert.True(t, math.IsNaN(samples[1].Speed))
	assert.InDelta(t, 0.0, samples[0].Brake, 1e-9)
	assert.InDelta(t, 100.0, samples[1].Brake, 1e-9)

	_, err = s.Telemetry(context.Background(), &laps[2])
	assert.ErrorIs(t, err, model.ErrTelemetryUnavailable)
}

func TestLoadErrors(t *testing.T) {
	root := setupArchive(t)
	writeFile(t, filepath.Join(root, "2023", "2", "Q", "laps.json"),
		`{"Driver": ["VER"], "LapNumber": [1, 2]}`)
	l := NewLoader(root, WithLogger(log.Nop()))
	ctx := context.Background()

	_, err := l.Load(ctx, model.SessionKey{Year: 2023, Round: 3, Session: model.SessionRace})
	var loadErr *model.LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = l.Load(ctx, model.SessionKey{Year: 2023, Round: 2, Session: model.SessionQualifying})
	assert.True(t, model.IsLoadError(err))

	_, err = l.Load(ctx, model.SessionKey{Year: 2017, Round: 1, Session: model.SessionRace})
	assert.True(t, model.IsValidationError(err))
}
