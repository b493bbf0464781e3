package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/FSXAC/Emulsion/lib/emulsiondb"
	"github.com/FSXAC/Emulsion/lib/filmapi"
	"github.com/FSXAC/Emulsion/lib/search"
)

// handleListRolls serves both plain listing and query search. A non-empty
// search parameter runs the filter pipeline and returns every match with
// pagination suspended; otherwise skip/limit paging applies, with optional
// status and order_id filters.
func (s *Server) handleListRolls(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	q := r.URL.Query()

	if query := q.Get("search"); query != "" {
		tokens := search.Parse(query)

		compiler := search.NewCompiler(s.db)
		filters, computed, err := compiler.BuildFilters(ctx, tokens)
		if err != nil {
			return badRequest(err.Error())
		}

		rolls, _, err := s.db.SearchRolls(ctx, filters)
		if err != nil {
			return err
		}

		rolls = search.ApplyComputedFilters(rolls, computed)
		return writeJSON(w, http.StatusOK, filmapi.NewFilmRollList(rolls, len(rolls)))
	}

	skip, limit, err := s.pagination(q.Get("skip"), q.Get("limit"))
	if err != nil {
		return err
	}

	opts := emulsiondb.ListRollsOptions{
		Skip:    skip,
		Limit:   limit,
		OrderID: q.Get("order_id"),
	}

	rolls, total, err := s.db.ListRolls(ctx, opts)
	if err != nil {
		return err
	}

	// Status is derived, so the filter runs in memory over the page.
	if status := q.Get("status"); status != "" {
		filtered := rolls[:0]
		for _, roll := range rolls {
			if strings.EqualFold(roll.Status(), status) {
				filtered = append(filtered, roll)
			}
		}
		rolls = filtered
		total = len(rolls)
	}

	return writeJSON(w, http.StatusOK, filmapi.NewFilmRollList(rolls, total))
}

func (s *Server) handleCreateRoll(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var request filmapi.FilmRollRequest
	if err := decodeBody(r, &request); err != nil {
		return err
	}
	if err := request.Validate(); err != nil {
		return badRequest(err.Error())
	}

	roll := request.ToModel()

	if roll.ChemistryID != nil {
		if _, err := s.db.GetChemistryBatch(ctx, *roll.ChemistryID); err != nil {
			return err
		}
	}

	if err := s.db.CreateRoll(ctx, roll); err != nil {
		return err
	}

	return writeJSON(w, http.StatusCreated, filmapi.NewFilmRollItem(roll))
}

func (s *Server) handleGetRoll(w http.ResponseWriter, r *http.Request) error {
	roll, err := s.db.GetRoll(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, filmapi.NewFilmRollItem(roll))
}

func (s *Server) handleUpdateRoll(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var update filmapi.FilmRollUpdate
	if err := decodeBody(r, &update); err != nil {
		return err
	}

	roll, err := s.db.GetRoll(ctx, mux.Vars(r)["id"])
	if err != nil {
		return err
	}

	update.ApplyTo(roll)

	if update.ChemistryID != nil && roll.ChemistryID != nil {
		if _, err := s.db.GetChemistryBatch(ctx, *roll.ChemistryID); err != nil {
			return err
		}
	}

	if err := s.db.UpdateRoll(ctx, roll); err != nil {
		return err
	}

	return s.respondWithRoll(w, r, roll.ID)
}

func (s *Server) handleDeleteRoll(w http.ResponseWriter, r *http.Request) error {
	if err := s.db.DeleteRoll(r.Context(), mux.Vars(r)["id"]); err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, filmapi.OkResponse{Ok: true})
}

func (s *Server) handleLoadRoll(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var request filmapi.LoadRollRequest
	if err := decodeBody(r, &request); err != nil {
		return err
	}

	roll, err := s.db.GetRoll(ctx, mux.Vars(r)["id"])
	if err != nil {
		return err
	}

	loaded := request.DateLoaded.Value
	roll.DateLoaded = &loaded

	if err := s.db.UpdateRoll(ctx, roll); err != nil {
		return err
	}
	return s.respondWithRoll(w, r, roll.ID)
}

func (s *Server) handleUnloadRoll(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var request filmapi.UnloadRollRequest
	if err := decodeBody(r, &request); err != nil {
		return err
	}

	roll, err := s.db.GetRoll(ctx, mux.Vars(r)["id"])
	if err != nil {
		return err
	}

	unloaded := request.DateUnloaded.Value
	roll.DateUnloaded = &unloaded

	if err := s.db.UpdateRoll(ctx, roll); err != nil {
		return err
	}
	return s.respondWithRoll(w, r, roll.ID)
}

// handleAssignChemistry marks a roll developed, either with a batch or a
// flat lab cost. Assigning one clears the other.
func (s *Server) handleAssignChemistry(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var request filmapi.AssignChemistryRequest
	if err := decodeBody(r, &request); err != nil {
		return err
	}
	if err := request.Validate(); err != nil {
		return badRequest(err.Error())
	}

	roll, err := s.db.GetRoll(ctx, mux.Vars(r)["id"])
	if err != nil {
		return err
	}

	if request.ChemistryID != nil {
		if _, err := s.db.GetChemistryBatch(ctx, *request.ChemistryID); err != nil {
			return err
		}
		roll.ChemistryID = request.ChemistryID
		roll.LabDevCost = nil
	} else {
		roll.LabDevCost = request.LabDevCost
		roll.ChemistryID = nil
	}

	if err := s.db.UpdateRoll(ctx, roll); err != nil {
		return err
	}
	return s.respondWithRoll(w, r, roll.ID)
}

func (s *Server) handleRateRoll(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var request filmapi.RateRollRequest
	if err := decodeBody(r, &request); err != nil {
		return err
	}
	if err := request.Validate(); err != nil {
		return badRequest(err.Error())
	}

	roll, err := s.db.GetRoll(ctx, mux.Vars(r)["id"])
	if err != nil {
		return err
	}

	stars := request.Stars
	roll.Stars = &stars
	if request.ActualExposures != nil {
		roll.ActualExposures = request.ActualExposures
	}

	if err := s.db.UpdateRoll(ctx, roll); err != nil {
		return err
	}
	return s.respondWithRoll(w, r, roll.ID)
}

// respondWithRoll re-reads the roll so derived attributes reflect the
// stored state, including freshly attached chemistry.
func (s *Server) respondWithRoll(w http.ResponseWriter, r *http.Request, rollID string) error {
	roll, err := s.db.GetRoll(r.Context(), rollID)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, filmapi.NewFilmRollItem(roll))
}

func (s *Server) pagination(skipStr, limitStr string) (int, int, error) {
	skip := 0
	limit := s.cfg.Limits.DefaultPageSize

	if skipStr != "" {
		v, err := strconv.Atoi(skipStr)
		if err != nil || v < 0 {
			return 0, 0, badRequest("skip must be a non-negative integer")
		}
		skip = v
	}
	if limitStr != "" {
		v, err := strconv.Atoi(limitStr)
		if err != nil || v <= 0 {
			return 0, 0, badRequest("limit must be a positive integer")
		}
		limit = v
	}
	if limit > s.cfg.Limits.MaxPageSize {
		limit = s.cfg.Limits.MaxPageSize
	}

	return skip, limit, nil
}
