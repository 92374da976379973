package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/mpapenbr/motorsport-analytics/log"
	"github.com/mpapenbr/motorsport-analytics/pkg/catalog"
	"github.com/mpapenbr/motorsport-analytics/pkg/jobs"
	"github.com/mpapenbr/motorsport-analytics/pkg/model"
	"github.com/mpapenbr/motorsport-analytics/pkg/sanitize"
)

const Prefix = "/api/v1"

type (
	// Analytics is the session analysis used by the API
	Analytics interface {
		Stints(ctx context.Context, key model.SessionKey) ([]model.StintSummary, error)
		AllLaps(ctx context.Context, key model.SessionKey) ([]model.LapRecord, error)
		SpeedTraps(ctx context.Context, key model.SessionKey) ([]model.SpeedTrapRecord, error)
		BestSectors(ctx context.Context, key model.SessionKey) ([]model.SectorRecord, error)
		Minisectors(ctx context.Context, key model.SessionKey, segments int) (
			[]model.MinisectorRecord, error)
		Telemetry(ctx context.Context, key model.SessionKey, driver string) (
			*model.DriverTelemetry, error)
		CompareTelemetry(ctx context.Context, key model.SessionKey, driver1, driver2 string) (
			map[string]*model.DriverTelemetry, error)
		Summary(ctx context.Context, key model.SessionKey) (*model.Summary, error)
	}

	// Catalog is the historical data used by the API
	Catalog interface {
		ListDrivers(ctx context.Context, query catalog.DriverQuery) (*catalog.DriverPage, error)
		GetDriver(ctx context.Context, id string) (*catalog.Driver, error)
		DriverResults(ctx context.Context, driverID string, year int) ([]catalog.RaceResult, error)
		GetRace(ctx context.Context, year, round int) (*catalog.Race, error)
		RaceResults(ctx context.Context, year, round int) ([]catalog.RaceResult, error)
		QualifyingResults(ctx context.Context, year, round int) ([]catalog.QualifyingResult, error)
	}

	// Jobs executes analyses in the background
	Jobs interface {
		Submit(name string, op jobs.Op) string
		Poll(id string) (jobs.Job, error)
	}

	Option func(*Server)
	Server struct {
		analytics Analytics
		catalog   Catalog
		jobs      Jobs
		log       *log.Logger
	}
)

func WithAnalytics(a Analytics) Option {
	return func(s *Server) {
		s.analytics = a
	}
}

// WithCatalog enables the driver and race routes
func WithCatalog(c Catalog) Option {
	return func(s *Server) {
		s.catalog = c
	}
}

func WithJobs(j Jobs) Option {
	return func(s *Server) {
		s.jobs = j
	}
}

func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		s.log = l
	}
}

func NewServer(opts ...Option) *Server {
	ret := &Server{
		log: log.Default().Named("api"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// Handler returns the instrumented handler for all routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.health)
	if s.analytics != nil {
		s.registerSessionRoutes(mux)
		s.registerTelemetryRoutes(mux)
	}
	if s.jobs != nil {
		mux.HandleFunc("GET "+Prefix+"/jobs/{id}", s.getJob)
	}
	if s.catalog != nil {
		s.registerCatalogRoutes(mux)
	}
	return otelhttp.NewHandler(mux, "msa.api",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			if r.Pattern != "" {
				return r.Pattern
			}
			return r.Method + " " + r.URL.Path
		}))
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "motorsport analytics service",
	})
}

//nolint:tagliatelle // external API
type jobView struct {
	ID        string  `json:"id"`
	Status    string  `json:"status"`
	CreatedAt string  `json:"created_at"`
	Result    any     `json:"result"`
	Error     *string `json:"error"`
}

func (s *Server) getJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.jobs.Poll(r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	view := jobView{
		ID:        job.ID,
		Status:    string(job.Status),
		CreatedAt: job.CreatedAt.Format("2006-01-02T15:04:05.000000Z07:00"),
		Result:    job.Result,
	}
	if job.Status == jobs.StatusFailed {
		view.Error = &job.Error
	}
	s.writeJSON(w, http.StatusOK, view)
}

// submit starts op as background job and reports the job id
func (s *Server) submit(w http.ResponseWriter, name string, op jobs.Op) {
	id := s.jobs.Submit(name, op)
	s.writeJSON(w, http.StatusOK, map[string]string{
		"job_id": id,
		"status": string(jobs.StatusPending),
	})
}

// writeJSON sanitizes v before encoding it
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(sanitize.Clean(v)); err != nil {
		s.log.Warn("could not write response", log.ErrorField(err))
	}
}

// errorStatus maps errors to http status codes
func errorStatus(err error) int {
	var le *model.LoadError
	switch {
	case model.IsValidationError(err):
		return http.StatusBadRequest
	case errors.As(err, &le):
		return http.StatusBadGateway
	case errors.Is(err, model.ErrNotFound), errors.Is(err, jobs.ErrJobNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	s.writeErrorDetail(w, err, "")
}

// writeErrorDetail reports err. detail replaces the error message for
// not found errors.
func (s *Server) writeErrorDetail(w http.ResponseWriter, err error, detail string) {
	status := errorStatus(err)
	msg := err.Error()
	switch {
	case errors.Is(err, jobs.ErrJobNotFound):
		msg = "Job not found or expired"
	case status == http.StatusNotFound && detail != "":
		msg = detail
	case status == http.StatusInternalServerError:
		s.log.Error("request failed", log.ErrorField(err))
		msg = http.StatusText(status)
	}
	s.writeJSON(w, status, map[string]string{"detail": msg})
}

func pathInt(r *http.Request, name string) (int, error) {
	v, err := strconv.Atoi(r.PathValue(name))
	if err != nil {
		return 0, &model.ValidationError{
			Field:  name,
			Reason: fmt.Sprintf("not a number: %q", r.PathValue(name)),
		}
	}
	return v, nil
}

func queryInt(r *http.Request, name string, defaultVal int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return defaultVal, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &model.ValidationError{
			Field:  name,
			Reason: fmt.Sprintf("not a number: %q", raw),
		}
	}
	return v, nil
}

// sessionKey extracts year, round and session from the request path
func sessionKey(r *http.Request) (model.SessionKey, error) {
	year, err := pathInt(r, "year")
	if err != nil {
		return model.SessionKey{}, err
	}
	round, err := pathInt(r, "round")
	if err != nil {
		return model.SessionKey{}, err
	}
	session, err := model.ParseSessionID(r.PathValue("session"))
	if err != nil {
		return model.SessionKey{}, err
	}
	key := model.SessionKey{Year: year, Round: round, Session: session}
	return key, key.Validate()
}
