//nolint:funlen,lll // ok for tests
package analyze

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/motorsport-analytics/log"
	"github.com/mpapenbr/motorsport-analytics/pkg/model"
	"github.com/mpapenbr/motorsport-analytics/pkg/resultcache"
	"github.com/mpapenbr/motorsport-analytics/pkg/resultcache/impl/memory"
	"github.com/mpapenbr/motorsport-analytics/pkg/service/analytics"
	"github.com/mpapenbr/motorsport-analytics/pkg/session"
)

func dur(sec float64) *time.Duration {
	d := time.Duration(sec * float64(time.Second))
	return &d
}

func newService(t *testing.T) *analytics.Service {
	t.Helper()
	one := 1
	speed := 318.5
	laps := []model.Lap{
		{
			Driver: "LEC", LapNumber: 1, Stint: &one, Compound: "SOFT",
			LapTime: dur(88.5), Sector1Time: dur(28), Sector2Time: dur(30), Sector3Time: dur(30.5),
			SpeedST: &speed,
		},
	}
	telemetry := []model.TelemetrySample{
		{Time: 0, Distance: 0, Speed: 280, Gear: 7},
		{Time: time.Second, Distance: 80, Speed: 290, Gear: 8},
	}
	static := &session.Static{
		SessionKey: model.SessionKey{Year: 2024, Round: 8, Session: model.SessionRace},
		LapData:    laps,
		TelemetryMap: map[session.LapRef][]model.TelemetrySample{
			{Driver: "LEC", LapNumber: 1}: telemetry,
		},
	}
	loader := session.LoaderFunc(func(context.Context, model.SessionKey) (model.Session, error) {
		return static, nil
	})
	store, err := memory.New(nil, nil)
	require.NoError(t, err)
	return analytics.New(loader,
		resultcache.New(store, resultcache.WithLogger(log.Nop())),
		analytics.WithLogger(log.Nop()))
}

func TestAnalyze(t *testing.T) {
	svc := newService(t)
	tests := []struct {
		name    string
		metric  string
		drivers []string
		check   func(t *testing.T, out []byte)
	}{
		{
			name:   "stints",
			metric: "stints",
			check: func(t *testing.T, out []byte) {
				var got []map[string]any
				require.NoError(t, json.Unmarshal(out, &got))
				require.Len(t, got, 1)
				assert.Equal(t, "LEC", got[0]["driver"])
				assert.Equal(t, "SOFT", got[0]["compound"])
			},
		},
		{
			name:   "speed traps",
			metric: "speed-traps",
			check: func(t *testing.T, out []byte) {
				var got []map[string]any
				require.NoError(t, json.Unmarshal(out, &got))
				require.Len(t, got, 1)
				assert.InDelta(t, 318.5, got[0]["top_speed"], 1e-9)
			},
		},
		{
			name:    "single telemetry",
			metric:  "telemetry",
			drivers: []string{"LEC"},
			check: func(t *testing.T, out []byte) {
				var got map[string]any
				require.NoError(t, json.Unmarshal(out, &got))
				assert.Equal(t, []any{280.0, 290.0}, got["Speed"])
			},
		},
		{
			name:    "compare telemetry",
			metric:  "telemetry",
			drivers: []string{"LEC", "SAI"},
			check: func(t *testing.T, out []byte) {
				var got map[string]any
				require.NoError(t, json.Unmarshal(out, &got))
				assert.Contains(t, got, "LEC")
				assert.Nil(t, got["SAI"])
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &request{
				key:     model.SessionKey{Year: 2024, Round: 8},
				session: "r",
				drivers: tt.drivers,
			}
			var out bytes.Buffer
			require.NoError(t, analyze(context.Background(), svc, tt.metric, req, &out))
			tt.check(t, out.Bytes())
		})
	}
}

func TestAnalyzeValidation(t *testing.T) {
	svc := newService(t)
	tests := []struct {
		name   string
		metric string
		req    *request
	}{
		{"unknown metric", "lap-chart", &request{key: model.SessionKey{Year: 2024, Round: 8}, session: "R"}},
		{"unknown session", "stints", &request{key: model.SessionKey{Year: 2024, Round: 8}, session: "FP4"}},
		{"invalid round", "stints", &request{key: model.SessionKey{Year: 2024}, session: "R"}},
		{"telemetry without driver", "telemetry", &request{key: model.SessionKey{Year: 2024, Round: 8}, session: "R"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := analyze(context.Background(), svc, tt.metric, tt.req, &out)
			assert.True(t, model.IsValidationError(err), "got %v", err)
			assert.Zero(t, out.Len())
		})
	}
}

func TestMetricNamesSorted(t *testing.T) {
	assert.Equal(t,
		[]string{"best-sectors", "laps", "minisectors", "speed-traps", "stints", "summary", "telemetry"},
		metricNames())
}
