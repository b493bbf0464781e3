package server

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/FSXAC/Emulsion/lib/emulsiondb"
	"github.com/FSXAC/Emulsion/lib/filmapi"
)

func (s *Server) handleListDevChart(w http.ResponseWriter, r *http.Request) error {
	q := r.URL.Query()

	skip, limit, err := s.pagination(q.Get("skip"), q.Get("limit"))
	if err != nil {
		return err
	}

	opts := emulsiondb.ListDevChartOptions{
		Skip:      skip,
		Limit:     limit,
		FilmStock: q.Get("film_stock"),
		Developer: q.Get("developer"),
	}

	if isoStr := q.Get("iso_rating"); isoStr != "" {
		iso, err := strconv.Atoi(isoStr)
		if err != nil {
			return badRequest("iso_rating must be an integer")
		}
		opts.ISORating = &iso
	}

	entries, total, err := s.db.ListDevChartEntries(r.Context(), opts)
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, filmapi.NewDevChartList(entries, total))
}

func (s *Server) handleCreateDevChartEntry(w http.ResponseWriter, r *http.Request) error {
	var request filmapi.DevChartRequest
	if err := decodeBody(r, &request); err != nil {
		return err
	}
	if err := request.Validate(); err != nil {
		return badRequest(err.Error())
	}

	entry := request.ToModel()
	if err := s.db.CreateDevChartEntry(r.Context(), entry); err != nil {
		return err
	}

	return writeJSON(w, http.StatusCreated, filmapi.NewDevChartItem(entry))
}

func (s *Server) handleGetDevChartEntry(w http.ResponseWriter, r *http.Request) error {
	entry, err := s.db.GetDevChartEntry(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, filmapi.NewDevChartItem(entry))
}

func (s *Server) handleUpdateDevChartEntry(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var update filmapi.DevChartUpdate
	if err := decodeBody(r, &update); err != nil {
		return err
	}

	entry, err := s.db.GetDevChartEntry(ctx, mux.Vars(r)["id"])
	if err != nil {
		return err
	}

	update.ApplyTo(entry)

	if err := s.db.UpdateDevChartEntry(ctx, entry); err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, filmapi.NewDevChartItem(entry))
}

func (s *Server) handleDeleteDevChartEntry(w http.ResponseWriter, r *http.Request) error {
	if err := s.db.DeleteDevChartEntry(r.Context(), mux.Vars(r)["id"]); err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, filmapi.OkResponse{Ok: true})
}

type devTimeLookupRequest struct {
	FilmStock          string   `json:"film_stock"`
	Developer          string   `json:"developer"`
	ISORating          int      `json:"iso_rating"`
	DilutionRatio      string   `json:"dilution_ratio"`
	TemperatureCelsius *float64 `json:"temperature_celsius"`
}

func (s *Server) handleDevTimeLookup(w http.ResponseWriter, r *http.Request) error {
	var request devTimeLookupRequest
	if err := decodeBody(r, &request); err != nil {
		return err
	}
	if request.FilmStock == "" || request.Developer == "" {
		return badRequest("film_stock and developer are required")
	}

	match, suggestions, err := s.db.LookupDevTime(r.Context(), emulsiondb.DevTimeLookup{
		FilmStock:          request.FilmStock,
		Developer:          request.Developer,
		ISORating:          request.ISORating,
		DilutionRatio:      request.DilutionRatio,
		TemperatureCelsius: request.TemperatureCelsius,
	})
	if err != nil {
		return err
	}

	response := filmapi.DevTimeLookupResponse{
		Suggestions: make([]filmapi.DevChartItem, 0, len(suggestions)),
	}
	if match != nil {
		item := filmapi.NewDevChartItem(match)
		response.Match = &item
	}
	for _, entry := range suggestions {
		response.Suggestions = append(response.Suggestions, filmapi.NewDevChartItem(entry))
	}

	return writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleAutocompleteFilms(w http.ResponseWriter, r *http.Request) error {
	return s.autocomplete(w, r, s.db.AutocompleteFilmStocks)
}

func (s *Server) handleAutocompleteDevelopers(w http.ResponseWriter, r *http.Request) error {
	return s.autocomplete(w, r, s.db.AutocompleteDevelopers)
}

func (s *Server) autocomplete(w http.ResponseWriter, r *http.Request, query func(ctx context.Context, q string, limit int) ([]string, error)) error {
	params := r.URL.Query()

	limit := s.cfg.Limits.AutocompleteLimit
	if limitStr := params.Get("limit"); limitStr != "" {
		v, err := strconv.Atoi(limitStr)
		if err != nil || v <= 0 {
			return badRequest("limit must be a positive integer")
		}
		if v < limit {
			limit = v
		}
	}

	values, err := query(r.Context(), params.Get("q"), limit)
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, filmapi.AutocompleteResponse{Values: values})
}
