package server

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/FSXAC/Emulsion/lib/emulsiondb"
	"github.com/FSXAC/Emulsion/lib/filmapi"
)

func (s *Server) handleListChemistry(w http.ResponseWriter, r *http.Request) error {
	q := r.URL.Query()

	skip, limit, err := s.pagination(q.Get("skip"), q.Get("limit"))
	if err != nil {
		return err
	}

	opts := emulsiondb.ListChemistryBatchesOptions{
		Skip:          skip,
		Limit:         limit,
		ActiveOnly:    q.Get("active_only") == "true",
		ChemistryType: q.Get("chemistry_type"),
	}

	batches, total, err := s.db.ListChemistryBatches(r.Context(), opts)
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, filmapi.NewChemistryBatchList(batches, total))
}

func (s *Server) handleCreateChemistry(w http.ResponseWriter, r *http.Request) error {
	var request filmapi.ChemistryBatchRequest
	if err := decodeBody(r, &request); err != nil {
		return err
	}
	if err := request.Validate(); err != nil {
		return badRequest(err.Error())
	}

	batch := request.ToModel()
	if err := s.db.CreateChemistryBatch(r.Context(), batch); err != nil {
		return err
	}

	return writeJSON(w, http.StatusCreated, filmapi.NewChemistryBatchItem(batch))
}

func (s *Server) handleGetChemistry(w http.ResponseWriter, r *http.Request) error {
	batch, err := s.db.GetChemistryBatch(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, filmapi.NewChemistryBatchItem(batch))
}

func (s *Server) handleUpdateChemistry(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var update filmapi.ChemistryBatchUpdate
	if err := decodeBody(r, &update); err != nil {
		return err
	}

	batch, err := s.db.GetChemistryBatch(ctx, mux.Vars(r)["id"])
	if err != nil {
		return err
	}

	update.ApplyTo(batch)

	if err := s.db.UpdateChemistryBatch(ctx, batch); err != nil {
		return err
	}

	batch, err = s.db.GetChemistryBatch(ctx, batch.ID)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, filmapi.NewChemistryBatchItem(batch))
}

func (s *Server) handleDeleteChemistry(w http.ResponseWriter, r *http.Request) error {
	if err := s.db.DeleteChemistryBatch(r.Context(), mux.Vars(r)["id"]); err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, filmapi.OkResponse{Ok: true})
}
