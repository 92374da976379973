package api

import (
	"fmt"
	"net/http"

	"github.com/mpapenbr/motorsport-analytics/pkg/catalog"
	"github.com/mpapenbr/motorsport-analytics/pkg/model"
)

func (s *Server) registerCatalogRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET "+Prefix+"/drivers", s.listDrivers)
	mux.HandleFunc("GET "+Prefix+"/drivers/{id}", s.getDriver)
	mux.HandleFunc("GET "+Prefix+"/drivers/{id}/results", s.driverResults)
	mux.HandleFunc("GET "+Prefix+"/races/{year}/{round}", s.getRace)
	mux.HandleFunc("GET "+Prefix+"/races/{year}/{round}/results", s.raceResults)
	mux.HandleFunc("GET "+Prefix+"/races/{year}/{round}/qualifying", s.qualifyingResults)
}

func (s *Server) listDrivers(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", catalog.DefaultLimit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		s.writeError(w, err)
		return
	}
	page, err := s.catalog.ListDrivers(r.Context(), catalog.DriverQuery{
		Limit:  limit,
		Offset: offset,
		Search: r.URL.Query().Get("search"),
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, page)
}

func (s *Server) getDriver(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	driver, err := s.catalog.GetDriver(r.Context(), id)
	if err != nil {
		s.writeErrorDetail(w, err, fmt.Sprintf("Driver '%s' not found", id))
		return
	}
	s.writeJSON(w, http.StatusOK, driver)
}

func (s *Server) driverResults(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	year, err := queryInt(r, "year", 0)
	if err != nil {
		s.writeError(w, err)
		return
	}
	results, err := s.catalog.DriverResults(r.Context(), id, year)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"driver_id":     id,
		"total_results": len(results),
		"results":       results,
	})
}

func (s *Server) getRace(w http.ResponseWriter, r *http.Request) {
	year, round, err := yearRound(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	race, err := s.catalog.GetRace(r.Context(), year, round)
	if err != nil {
		s.writeErrorDetail(w, err, fmt.Sprintf("Race %d Round %d not found", year, round))
		return
	}
	s.writeJSON(w, http.StatusOK, race)
}

func (s *Server) raceResults(w http.ResponseWriter, r *http.Request) {
	year, round, err := yearRound(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	results, err := s.catalog.RaceResults(r.Context(), year, round)
	if err == nil && len(results) == 0 {
		err = model.ErrNotFound
	}
	if err != nil {
		s.writeErrorDetail(w, err, fmt.Sprintf("No results found for %d Round %d", year, round))
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"year":    year,
		"round":   round,
		"total":   len(results),
		"results": results,
	})
}

func (s *Server) qualifyingResults(w http.ResponseWriter, r *http.Request) {
	year, round, err := yearRound(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	results, err := s.catalog.QualifyingResults(r.Context(), year, round)
	if err == nil && len(results) == 0 {
		err = model.ErrNotFound
	}
	if err != nil {
		s.writeErrorDetail(w, err, fmt.Sprintf("No qualifying data for %d Round %d", year, round))
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"year":       year,
		"round":      round,
		"total":      len(results),
		"qualifying": results,
	})
}

func yearRound(r *http.Request) (year, round int, err error) {
	if year, err = pathInt(r, "year"); err != nil {
		return 0, 0, err
	}
	if round, err = pathInt(r, "round"); err != nil {
		return 0, 0, err
	}
	return year, round, nil
}
