package api

import (
	"context"
	"net/http"

	"github.com/mpapenbr/motorsport-analytics/pkg/jobs"
	"github.com/mpapenbr/motorsport-analytics/pkg/model"
)

// sessionOp validates the request parameters and returns the operation
// to execute for the session.
type sessionOp func(r *http.Request, key model.SessionKey) (jobs.Op, error)

type sessionRoute struct {
	path     string
	field    string // wraps the result in an object with this key if set
	notFound string
	op       sessionOp
}

//nolint:funlen // route table
func (s *Server) registerSessionRoutes(mux *http.ServeMux) {
	routes := []sessionRoute{
		{
			path: "stints", field: "stints",
			op: func(_ *http.Request, key model.SessionKey) (jobs.Op, error) {
				return func(ctx context.Context) (any, error) {
					return s.analytics.Stints(ctx, key)
				}, nil
			},
		},
		{
			path: "laps", field: "laps",
			op: func(_ *http.Request, key model.SessionKey) (jobs.Op, error) {
				return func(ctx context.Context) (any, error) {
					return s.analytics.AllLaps(ctx, key)
				}, nil
			},
		},
		{
			path: "speed-traps", field: "speed_traps",
			op: func(_ *http.Request, key model.SessionKey) (jobs.Op, error) {
				return func(ctx context.Context) (any, error) {
					return s.analytics.SpeedTraps(ctx, key)
				}, nil
			},
		},
		{
			path: "minisectors", field: "minisectors",
			op: func(r *http.Request, key model.SessionKey) (jobs.Op, error) {
				segments, err := queryInt(r, "segments", 0)
				if err != nil {
					return nil, err
				}
				return func(ctx context.Context) (any, error) {
					return s.analytics.Minisectors(ctx, key, segments)
				}, nil
			},
		},
		{
			path: "best-sectors", field: "best_sectors",
			op: func(_ *http.Request, key model.SessionKey) (jobs.Op, error) {
				return func(ctx context.Context) (any, error) {
					return s.analytics.BestSectors(ctx, key)
				}, nil
			},
		},
		{
			path: "fastf1-summary",
			op: func(_ *http.Request, key model.SessionKey) (jobs.Op, error) {
				return func(ctx context.Context) (any, error) {
					return s.analytics.Summary(ctx, key)
				}, nil
			},
		},
	}
	for _, rt := range routes {
		path := Prefix + "/sessions/{year}/{round}/{session}/" + rt.path
		s.registerSessionRoute(mux, path, rt)
	}
}

func (s *Server) registerTelemetryRoutes(mux *http.ServeMux) {
	const notFound = "Telemetry not found for this driver/session"
	base := Prefix + "/telemetry/{year}/{round}/{session}/"
	s.registerSessionRoute(mux, base+"compare", sessionRoute{
		path:     "compare",
		notFound: notFound,
		op: func(r *http.Request, key model.SessionKey) (jobs.Op, error) {
			q := r.URL.Query()
			driver1, driver2 := q.Get("driver1"), q.Get("driver2")
			if driver1 == "" || driver2 == "" {
				return nil, &model.ValidationError{
					Field:  "driver1/driver2",
					Reason: "both drivers are required",
				}
			}
			return func(ctx context.Context) (any, error) {
				return s.analytics.CompareTelemetry(ctx, key, driver1, driver2)
			}, nil
		},
	})
	s.registerSessionRoute(mux, base+"{driver}", sessionRoute{
		path:     "telemetry",
		notFound: notFound,
		op: func(r *http.Request, key model.SessionKey) (jobs.Op, error) {
			driver := r.PathValue("driver")
			return func(ctx context.Context) (any, error) {
				return s.analytics.Telemetry(ctx, key, driver)
			}, nil
		},
	})
}

// registerSessionRoute adds GET path which runs the operation synchronously
// and POST path/job which runs it as background job.
func (s *Server) registerSessionRoute(mux *http.ServeMux, path string, rt sessionRoute) {
	mux.HandleFunc("GET "+path, func(w http.ResponseWriter, r *http.Request) {
		op, err := s.prepare(r, rt.op)
		if err != nil {
			s.writeError(w, err)
			return
		}
		result, err := op(r.Context())
		if err != nil {
			s.writeErrorDetail(w, err, rt.notFound)
			return
		}
		if rt.field != "" {
			result = map[string]any{rt.field: result}
		}
		s.writeJSON(w, http.StatusOK, result)
	})
	if s.jobs == nil {
		return
	}
	mux.HandleFunc("POST "+path+"/job", func(w http.ResponseWriter, r *http.Request) {
		op, err := s.prepare(r, rt.op)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.submit(w, rt.path, op)
	})
}

func (s *Server) prepare(r *http.Request, op sessionOp) (jobs.Op, error) {
	key, err := sessionKey(r)
	if err != nil {
		return nil, err
	}
	return op(r, key)
}
