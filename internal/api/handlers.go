package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/guimove/trainfit/internal/events"
	"github.com/guimove/trainfit/internal/model"
	"github.com/guimove/trainfit/internal/optimizer"
	"github.com/guimove/trainfit/internal/store"
)

func (s *Server) PingHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "environment": s.Env})
}

func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) ReadyHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
	defer cancel()
	if err := s.Store.Ping(ctx); err != nil {
		writeProblem(w, http.StatusServiceUnavailable, "Not Ready", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) ListTrainlinesHandler(w http.ResponseWriter, r *http.Request) {
	lines, err := s.Store.ListTrainlines(r.Context())
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lines)
}

func (s *Server) CreateTrainlineHandler(w http.ResponseWriter, r *http.Request) {
	var in model.TrainlineInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Request", err.Error(), r.URL.Path)
		return
	}
	if err := validateTrainline(&in); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Request", err.Error(), r.URL.Path)
		return
	}
	line, err := s.Store.CreateTrainline(r.Context(), in)
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, line)
}

func (s *Server) ListTrainsHandler(w http.ResponseWriter, r *http.Request) {
	trains, err := s.Store.ListTrains(r.Context())
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, trains)
}

func (s *Server) CreateTrainHandler(w http.ResponseWriter, r *http.Request) {
	var in model.TrainInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Request", err.Error(), r.URL.Path)
		return
	}
	if err := validateTrain(&in, s.Orch.Optimizer); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Request", err.Error(), r.URL.Path)
		return
	}
	train, err := s.Store.CreateTrain(r.Context(), in)
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	s.publish(r.Context(), events.New(events.TrainCreated, map[string]any{"train": train.ID}))
	writeJSON(w, http.StatusCreated, train)
}

func (s *Server) GetTrainHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Request", "train id must be an integer", r.URL.Path)
		return
	}
	train, err := s.Store.GetTrain(r.Context(), id)
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, train)
}

func (s *Server) BookTrainsHandler(w http.ResponseWriter, r *http.Request) {
	booked, err := s.Orch.Book(r.Context())
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, booked)
}

func (s *Server) ListParcelsHandler(w http.ResponseWriter, r *http.Request) {
	parcels, err := s.Store.ListParcels(r.Context())
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, parcels)
}

func (s *Server) CreateParcelHandler(w http.ResponseWriter, r *http.Request) {
	var in model.ParcelInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Request", err.Error(), r.URL.Path)
		return
	}
	if err := validateParcel(&in, s.Orch.Optimizer); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Request", err.Error(), r.URL.Path)
		return
	}
	parcel, err := s.Store.CreateParcel(r.Context(), in)
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	s.publish(r.Context(), events.New(events.ParcelCreated, map[string]any{"parcel": parcel.ID}))
	writeJSON(w, http.StatusCreated, parcel)
}

func (s *Server) FillParcelsHandler(w http.ResponseWriter, r *http.Request) {
	summary, err := s.Orch.Fill(r.Context())
	if err != nil {
		s.optimizeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

type optimizeResponse struct {
	*model.Result
	LoadReport model.LoadReport `json:"load_report"`
}

// OptimizeHandler assigns a posted snapshot without touching the store.
func (s *Server) OptimizeHandler(w http.ResponseWriter, r *http.Request) {
	var snap model.Snapshot
	if err := decodeJSON(w, r, &snap); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Request", err.Error(), r.URL.Path)
		return
	}
	res, err := s.Orch.Optimize(r.Context(), snap)
	if err != nil {
		s.optimizeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, optimizeResponse{Result: res, LoadReport: optimizer.AnalyzeLoads(res.Loads)})
}

// optimizeError maps optimizer and store failures to problem responses.
func (s *Server) optimizeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, optimizer.ErrInvalidInput):
		writeProblem(w, http.StatusBadRequest, "Invalid Input", err.Error(), r.URL.Path)
	case errors.Is(err, optimizer.ErrCapacityOverflow):
		writeProblem(w, http.StatusBadRequest, "Capacity Overflow", err.Error(), r.URL.Path)
	case errors.Is(err, optimizer.ErrInfeasible):
		writeProblem(w, http.StatusUnprocessableEntity, "Infeasible Assignment", err.Error(), r.URL.Path)
	default:
		s.storeError(w, r, err)
	}
}

func (s *Server) storeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", err.Error(), r.URL.Path)
	case errors.Is(err, store.ErrConflict):
		writeProblem(w, http.StatusConflict, "Conflict", err.Error(), r.URL.Path)
	default:
		s.Log.Error().Err(err).Str("request_id", RequestID(r.Context())).Msg("request failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "", r.URL.Path)
	}
}

func (s *Server) publish(ctx context.Context, evt events.Event) {
	if s.Broker == nil {
		return
	}
	if err := s.Broker.Publish(ctx, evt); err != nil {
		s.Log.Warn().Err(err).Str("event", evt.Type).Msg("publishing event failed")
	}
}
