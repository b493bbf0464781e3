// Package server exposes the inventory over HTTP. Handlers return errors;
// a shared adapter converts them to JSON error responses.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/FSXAC/Emulsion/lib/config"
	"github.com/FSXAC/Emulsion/lib/emulsiondb"
	"github.com/FSXAC/Emulsion/lib/filmapi"
	"github.com/FSXAC/Emulsion/lib/filmerror"
	"github.com/FSXAC/Emulsion/lib/logging"
	"github.com/FSXAC/Emulsion/lib/version"
)

type Server struct {
	cfg *config.Config
	db  *emulsiondb.DB
}

func New(cfg *config.Config, db *emulsiondb.DB) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("no config provided")
	}
	if db == nil {
		return nil, fmt.Errorf("no database provided")
	}
	return &Server{cfg: cfg, db: db}, nil
}

// apiHandlerFunc is the handler shape used throughout; returned errors are
// converted through filmerror into JSON responses.
type apiHandlerFunc func(w http.ResponseWriter, r *http.Request) error

func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.loggingMiddleware)
	r.Use(s.corsMiddleware)

	r.Handle("/", s.handler(s.handleRoot)).Methods("GET")
	r.Handle("/health", s.handler(s.handleHealth)).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.Handle("/stats", s.handler(s.handleStats)).Methods("GET")

	rolls := api.PathPrefix("/rolls").Subrouter()
	rolls.Handle("", s.handler(s.handleListRolls)).Methods("GET")
	rolls.Handle("", s.handler(s.handleCreateRoll)).Methods("POST")
	rolls.Handle("/{id}", s.handler(s.handleGetRoll)).Methods("GET")
	rolls.Handle("/{id}", s.handler(s.handleUpdateRoll)).Methods("PUT")
	rolls.Handle("/{id}", s.handler(s.handleDeleteRoll)).Methods("DELETE")
	rolls.Handle("/{id}/load", s.handler(s.handleLoadRoll)).Methods("PATCH")
	rolls.Handle("/{id}/unload", s.handler(s.handleUnloadRoll)).Methods("PATCH")
	rolls.Handle("/{id}/chemistry", s.handler(s.handleAssignChemistry)).Methods("PATCH")
	rolls.Handle("/{id}/rating", s.handler(s.handleRateRoll)).Methods("PATCH")

	chemistry := api.PathPrefix("/chemistry").Subrouter()
	chemistry.Handle("", s.handler(s.handleListChemistry)).Methods("GET")
	chemistry.Handle("", s.handler(s.handleCreateChemistry)).Methods("POST")
	chemistry.Handle("/{id}", s.handler(s.handleGetChemistry)).Methods("GET")
	chemistry.Handle("/{id}", s.handler(s.handleUpdateChemistry)).Methods("PUT")
	chemistry.Handle("/{id}", s.handler(s.handleDeleteChemistry)).Methods("DELETE")

	devchart := api.PathPrefix("/devchart").Subrouter()
	devchart.Handle("", s.handler(s.handleListDevChart)).Methods("GET")
	devchart.Handle("", s.handler(s.handleCreateDevChartEntry)).Methods("POST")
	devchart.Handle("/lookup", s.handler(s.handleDevTimeLookup)).Methods("POST")
	devchart.Handle("/autocomplete/films", s.handler(s.handleAutocompleteFilms)).Methods("GET")
	devchart.Handle("/autocomplete/developers", s.handler(s.handleAutocompleteDevelopers)).Methods("GET")
	devchart.Handle("/{id}", s.handler(s.handleGetDevChartEntry)).Methods("GET")
	devchart.Handle("/{id}", s.handler(s.handleUpdateDevChartEntry)).Methods("PUT")
	devchart.Handle("/{id}", s.handler(s.handleDeleteDevChartEntry)).Methods("DELETE")

	return r
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	logger := logging.FromContext(ctx)

	address := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)

	httpServer := &http.Server{
		Addr:    address,
		Handler: s.Router(),
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("address", address))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) handler(handler apiHandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := handler(w, r); err != nil {
			s.writeError(w, r, err)
		}
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t0 := time.Now()
		next.ServeHTTP(w, r)
		logging.FromContext(r.Context()).Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(t0)))
	})
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowed := s.allowedOrigin(origin); allowed != "" {
			w.Header().Set("Access-Control-Allow-Origin", allowed)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) allowedOrigin(origin string) string {
	for _, allowed := range s.cfg.CORSOrigins {
		if allowed == "*" {
			return "*"
		}
		if allowed == origin {
			return origin
		}
	}
	return ""
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) error {
	return writeJSON(w, http.StatusOK, map[string]string{
		"service": "emulsion",
		"version": version.Version(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) error {
	return writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) error {
	stats, err := s.db.GetStats(r.Context())
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, filmapi.StatsResponse{
		Rolls:            stats.NumRolls,
		ChemistryBatches: stats.NumChemistryBatches,
		DevChartEntries:  stats.NumDevChartEntries,
		RollsByStatus:    stats.RollsByStatus,
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, value interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(value)
}

// writeError converts any error into a JSON error response. Store errors
// are mapped to their HTTP statuses; everything else becomes a 500 with
// the detail kept out of the public payload.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	logger := logging.FromContext(r.Context())

	var notFound emulsiondb.NotFoundError
	if errors.As(err, &notFound) {
		err = filmerror.New(
			filmerror.WithHTTPCode(http.StatusNotFound),
			filmerror.WithErrorID("not_found"),
			filmerror.WithPublicMessage(notFound.Error()),
		)
	}

	var duplicate emulsiondb.DuplicateEntryError
	if errors.As(err, &duplicate) {
		err = filmerror.New(
			filmerror.WithHTTPCode(http.StatusConflict),
			filmerror.WithErrorID("duplicate_entry"),
			filmerror.WithPublicMessage(duplicate.Error()),
			filmerror.WithPublicData("existing_id", duplicate.ExistingID),
		)
	}

	filmErr := filmerror.AsFilmError(err)

	internal := filmErr.InternalErrorDetail()
	logger.Error("request failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", filmErr.HTTPStatusCode()),
		zap.String("error_id", internal.ErrorID),
		zap.Error(err))

	response := filmapi.ErrorResponse{Error: filmErr.PublicErrorDetail()}
	if writeErr := writeJSON(w, filmErr.HTTPStatusCode(), response); writeErr != nil {
		logger.Error("error writing error response", zap.Error(writeErr))
	}
}

func badRequest(message string) error {
	return filmerror.New(
		filmerror.WithHTTPCode(http.StatusBadRequest),
		filmerror.WithErrorID("bad_request"),
		filmerror.WithPublicMessage(message),
	)
}

func decodeBody(r *http.Request, into interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(into); err != nil {
		return badRequest(fmt.Sprintf("malformed request body: %v", err))
	}
	return nil
}
