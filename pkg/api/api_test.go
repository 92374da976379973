//nolint:funlen,lll // ok for tests
package api

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/motorsport-analytics/log"
	"github.com/mpapenbr/motorsport-analytics/pkg/catalog"
	"github.com/mpapenbr/motorsport-analytics/pkg/jobs"
	"github.com/mpapenbr/motorsport-analytics/pkg/model"
)

type fakeAnalytics struct {
	err      error
	segments atomic.Int32
}

func (f *fakeAnalytics) Stints(ctx context.Context, key model.SessionKey) ([]model.StintSummary, error) {
	if f.err != nil {
		return nil, f.err
	}
	avg := 80.15
	return []model.StintSummary{{Driver: "VER", Stint: 1, Compound: "SOFT", Laps: 5, AvgLapTime: &avg}}, nil
}

func (f *fakeAnalytics) AllLaps(ctx context.Context, key model.SessionKey) ([]model.LapRecord, error) {
	return []model.LapRecord{}, f.err
}

func (f *fakeAnalytics) SpeedTraps(ctx context.Context, key model.SessionKey) ([]model.SpeedTrapRecord, error) {
	nan := math.NaN()
	return []model.SpeedTrapRecord{{Driver: "VER", TopSpeed: 330.5, SpeedI1: &nan}}, f.err
}

func (f *fakeAnalytics) BestSectors(ctx context.Context, key model.SessionKey) ([]model.SectorRecord, error) {
	return []model.SectorRecord{}, f.err
}

func (f *fakeAnalytics) Minisectors(ctx context.Context, key model.SessionKey, segments int) ([]model.MinisectorRecord, error) {
	f.segments.Store(int32(segments))
	return []model.MinisectorRecord{}, f.err
}

func (f *fakeAnalytics) Telemetry(ctx context.Context, key model.SessionKey, driver string) (*model.DriverTelemetry, error) {
	if driver != "VER" {
		return nil, model.ErrNotFound
	}
	return &model.DriverTelemetry{LapInfo: model.LapInfo{Driver: "VER", LapTime: 90.1}}, nil
}

func (f *fakeAnalytics) CompareTelemetry(ctx context.Context, key model.SessionKey, driver1, driver2 string) (map[string]*model.DriverTelemetry, error) {
	ver, _ := f.Telemetry(ctx, key, "VER")
	return map[string]*model.DriverTelemetry{driver1: ver, driver2: nil}, nil
}

func (f *fakeAnalytics) Summary(ctx context.Context, key model.SessionKey) (*model.Summary, error) {
	return model.EmptySummary(), nil
}

type fakeCatalog struct{}

func (fakeCatalog) ListDrivers(ctx context.Context, query catalog.DriverQuery) (*catalog.DriverPage, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	return &catalog.DriverPage{
		Drivers: []catalog.Driver{{ID: "max-verstappen", Name: "Max Verstappen", FullName: "Max Emilian Verstappen"}},
		Total:   1,
		Limit:   query.Limit,
		Offset:  query.Offset,
	}, nil
}

func (fakeCatalog) GetDriver(ctx context.Context, id string) (*catalog.Driver, error) {
	return nil, model.ErrNotFound
}

func (fakeCatalog) DriverResults(ctx context.Context, driverID string, year int) ([]catalog.RaceResult, error) {
	return []catalog.RaceResult{}, nil
}

func (fakeCatalog) GetRace(ctx context.Context, year, round int) (*catalog.Race, error) {
	return &catalog.Race{ID: 1081, Year: year, Round: round}, nil
}

func (fakeCatalog) RaceResults(ctx context.Context, year, round int) ([]catalog.RaceResult, error) {
	return []catalog.RaceResult{}, nil
}

func (fakeCatalog) QualifyingResults(ctx context.Context, year, round int) ([]catalog.QualifyingResult, error) {
	return nil, errors.New("connection reset")
}

func newTestServer(a *fakeAnalytics) (*httptest.Server, *jobs.Manager) {
	m := jobs.New(jobs.WithLogger(log.Nop()))
	srv := NewServer(
		WithAnalytics(a),
		WithCatalog(fakeCatalog{}),
		WithJobs(m),
		WithLogger(log.Nop()))
	return httptest.NewServer(srv.Handler()), m
}

func doRequest(t *testing.T, method, url string) (int, map[string]any) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), method, url, http.NoBody)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestSessionRoutes(t *testing.T) {
	a := &fakeAnalytics{}
	ts, _ := newTestServer(a)
	defer ts.Close()
	base := ts.URL + Prefix + "/sessions/2023/1/"

	tests := []struct {
		name       string
		url        string
		wantStatus int
		wantKey    string
	}{
		{"stints", base + "R/stints", http.StatusOK, "stints"},
		{"lower case session", base + "q/stints", http.StatusOK, "stints"},
		{"laps", base + "R/laps", http.StatusOK, "laps"},
		{"speed traps", base + "R/speed-traps", http.StatusOK, "speed_traps"},
		{"minisectors", base + "R/minisectors", http.StatusOK, "minisectors"},
		{"best sectors", base + "R/best-sectors", http.StatusOK, "best_sectors"},
		{"summary", base + "R/fastf1-summary", http.StatusOK, "best_sectors"},
		{"unknown session", base + "XX/stints", http.StatusBadRequest, "detail"},
		{"year too early", ts.URL + Prefix + "/sessions/2017/1/R/stints", http.StatusBadRequest, "detail"},
		{"round not a number", ts.URL + Prefix + "/sessions/2023/x/R/stints", http.StatusBadRequest, "detail"},
		{"segments not a number", base + "R/minisectors?segments=abc", http.StatusBadRequest, "detail"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := doRequest(t, http.MethodGet, tt.url)
			assert.Equal(t, tt.wantStatus, status)
			assert.Contains(t, body, tt.wantKey)
		})
	}
}

func TestResponsesAreSanitized(t *testing.T) {
	ts, _ := newTestServer(&fakeAnalytics{})
	defer ts.Close()

	status, body := doRequest(t, http.MethodGet, ts.URL+Prefix+"/sessions/2023/1/R/speed-traps")
	require.Equal(t, http.StatusOK, status)
	traps := body["speed_traps"].([]any)
	require.Len(t, traps, 1)
	rec := traps[0].(map[string]any)
	assert.InDelta(t, 330.5, rec["top_speed"], 1e-9)
	assert.Contains(t, rec, "SpeedI1")
	assert.Nil(t, rec["SpeedI1"])
}

func TestMinisectorSegments(t *testing.T) {
	a := &fakeAnalytics{}
	ts, _ := newTestServer(a)
	defer ts.Close()

	status, _ := doRequest(t, http.MethodGet, ts.URL+Prefix+"/sessions/2023/1/R/minisectors?segments=25")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, int32(25), a.segments.Load())
}

func TestErrorMapping(t *testing.T) {
	key := model.SessionKey{Year: 2023, Round: 1, Session: model.SessionRace}
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"load error", &model.LoadError{Key: key, Err: errors.New("timeout")}, http.StatusBadGateway},
		{"validation error", &model.ValidationError{Field: "x", Reason: "bad"}, http.StatusBadRequest},
		{"not found", model.ErrNotFound, http.StatusNotFound},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, _ := newTestServer(&fakeAnalytics{err: tt.err})
			defer ts.Close()
			status, body := doRequest(t, http.MethodGet, ts.URL+Prefix+"/sessions/2023/1/R/stints")
			assert.Equal(t, tt.wantStatus, status)
			assert.NotEmpty(t, body["detail"])
		})
	}
}

func TestTelemetryRoutes(t *testing.T) {
	ts, _ := newTestServer(&fakeAnalytics{})
	defer ts.Close()
	base := ts.URL + Prefix + "/telemetry/2023/1/Q/"

	status, body := doRequest(t, http.MethodGet, base+"VER")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "lap_info")
	assert.Contains(t, body, "telemetry")

	status, body = doRequest(t, http.MethodGet, base+"ALO")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Telemetry not found for this driver/session", body["detail"])

	status, body = doRequest(t, http.MethodGet, base+"compare?driver1=VER&driver2=ALO")
	assert.Equal(t, http.StatusOK, status)
	assert.NotNil(t, body["VER"])
	assert.Contains(t, body, "ALO")
	assert.Nil(t, body["ALO"])

	status, _ = doRequest(t, http.MethodGet, base+"compare?driver1=VER")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestJobRoutes(t *testing.T) {
	ts, m := newTestServer(&fakeAnalytics{})
	defer ts.Close()

	status, body := doRequest(t, http.MethodPost, ts.URL+Prefix+"/sessions/2023/1/R/stints/job")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "pending", body["status"])
	id, ok := body["job_id"].(string)
	require.True(t, ok)
	m.Wait()

	status, body = doRequest(t, http.MethodGet, ts.URL+Prefix+"/jobs/"+id)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "completed", body["status"])
	assert.Nil(t, body["error"])
	_, err := time.Parse(time.RFC3339, body["created_at"].(string))
	require.NoError(t, err)
	result := body["result"].([]any)
	require.Len(t, result, 1)
	assert.Equal(t, "VER", result[0].(map[string]any)["driver"])

	status, body = doRequest(t, http.MethodGet, ts.URL+Prefix+"/jobs/unknown")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Job not found or expired", body["detail"])

	// invalid parameters are rejected before a job is created
	status, _ = doRequest(t, http.MethodPost, ts.URL+Prefix+"/sessions/2016/1/R/stints/job")
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = doRequest(t, http.MethodPost, ts.URL+Prefix+"/telemetry/2023/1/R/compare/job?driver1=VER&driver2=HAM")
	require.Equal(t, http.StatusOK, status)
	m.Wait()
	status, body = doRequest(t, http.MethodGet, ts.URL+Prefix+"/jobs/"+body["job_id"].(string))
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "completed", body["status"])
}

func TestCatalogRoutes(t *testing.T) {
	ts, _ := newTestServer(&fakeAnalytics{})
	defer ts.Close()

	status, body := doRequest(t, http.MethodGet, ts.URL+Prefix+"/drivers?limit=10&offset=5&search=verst")
	require.Equal(t, http.StatusOK, status)
	assert.InDelta(t, 1, body["total"], 0)
	assert.InDelta(t, 10, body["limit"], 0)
	assert.InDelta(t, 5, body["offset"], 0)
	assert.Len(t, body["drivers"], 1)

	status, _ = doRequest(t, http.MethodGet, ts.URL+Prefix+"/drivers?limit=500")
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = doRequest(t, http.MethodGet, ts.URL+Prefix+"/drivers/nobody")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Driver 'nobody' not found", body["detail"])

	status, body = doRequest(t, http.MethodGet, ts.URL+Prefix+"/drivers/max-verstappen/results?year=2023")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "max-verstappen", body["driver_id"])

	status, body = doRequest(t, http.MethodGet, ts.URL+Prefix+"/races/2023/1")
	assert.Equal(t, http.StatusOK, status)
	assert.InDelta(t, 1081, body["id"], 0)

	status, body = doRequest(t, http.MethodGet, ts.URL+Prefix+"/races/2023/1/results")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "No results found for 2023 Round 1", body["detail"])

	status, _ = doRequest(t, http.MethodGet, ts.URL+Prefix+"/races/2023/1/qualifying")
	assert.Equal(t, http.StatusInternalServerError, status)
}
