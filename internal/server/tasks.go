package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/wolfeidau/taskscope/internal/auth"
	"github.com/wolfeidau/taskscope/internal/store"
	"github.com/wolfeidau/taskscope/internal/tasks"
)

var (
	errBadRequest      = errors.New("bad request")
	errPayloadTooLarge = errors.New("request body too large")
)

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOrReject(w, r)
	if !ok {
		return
	}

	result, err := s.tasks.List(r.Context(), caller)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) getTask(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOrReject(w, r)
	if !ok {
		return
	}

	taskID, err := taskIDFromPath(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	task, err := s.tasks.Get(r.Context(), caller, taskID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOrReject(w, r)
	if !ok {
		return
	}

	var input tasks.CreateInput
	if err := decodeBody(r, &input); err != nil {
		writeError(w, r, err)
		return
	}

	task, err := s.tasks.Create(r.Context(), caller, input)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, task)
}

func (s *Server) updateTask(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOrReject(w, r)
	if !ok {
		return
	}

	taskID, err := taskIDFromPath(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var input tasks.UpdateInput
	if err := decodeBody(r, &input); err != nil {
		writeError(w, r, err)
		return
	}

	task, err := s.tasks.Update(r.Context(), caller, taskID, input)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOrReject(w, r)
	if !ok {
		return
	}

	taskID, err := taskIDFromPath(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.tasks.Delete(r.Context(), caller, taskID); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) auditLog(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOrReject(w, r)
	if !ok {
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, r, fmt.Errorf("%w: limit must be a non-negative integer", errBadRequest))
			return
		}
		limit = n
	}

	entries, err := s.tasks.AuditLog(r.Context(), caller, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

func callerOrReject(w http.ResponseWriter, r *http.Request) (auth.Caller, bool) {
	caller, ok := auth.CallerFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
	}
	return caller, ok
}

func taskIDFromPath(r *http.Request) (uuid.UUID, error) {
	taskID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid task id", errBadRequest)
	}
	return taskID, nil
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return fmt.Errorf("%w: limit is %d bytes", errPayloadTooLarge, maxErr.Limit)
		}
		return fmt.Errorf("%w: invalid JSON body: %v", errBadRequest, err)
	}
	return nil
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps service errors to HTTP status codes. Internal errors are
// logged and reported with a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrTaskNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "task not found"})
	case errors.Is(err, auth.ErrPermissionDenied):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "permission denied"})
	case errors.Is(err, errPayloadTooLarge):
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: err.Error()})
	case errors.Is(err, tasks.ErrInvalidTask), errors.Is(err, errBadRequest):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("Request failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
