package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/taskx/internal/models"
	"github.com/desertthunder/taskx/internal/shared"
	"github.com/desertthunder/taskx/internal/tasks"
)

// TaskHandler exposes a [tasks.Store] as a JSON API.
type TaskHandler struct {
	store  *tasks.Store
	logger *log.Logger
	mux    *http.ServeMux
	routes map[string]http.HandlerFunc
}

// NewTaskHandler creates the handler and its route table.
func NewTaskHandler(store *tasks.Store, logger *log.Logger) *TaskHandler {
	h := &TaskHandler{store: store, logger: logger, mux: http.NewServeMux()}
	h.routes = map[string]http.HandlerFunc{
		"GET /tasks":              h.list,
		"POST /tasks":             h.create,
		"GET /tasks/{id}":         h.get,
		"PATCH /tasks/{id}":       h.update,
		"DELETE /tasks/{id}":      h.delete,
		"POST /tasks/{id}/toggle": h.toggle,
		"POST /tasks/reorder":     h.reorderAll,
		"POST /tasks/move":        h.move,
		"GET /query":              h.getQuery,
		"PUT /query":              h.setQuery,
		"GET /stats":              h.stats,
		"GET /categories":         h.categories,
		"GET /filters":            h.filters,
		"POST /load":              h.load,
	}
	for pattern, fn := range h.routes {
		h.mux.HandleFunc(pattern, fn)
	}
	return h
}

// Routes implements [Handler].
func (h *TaskHandler) Routes() []string {
	routes := make([]string, 0, len(h.routes))
	for pattern := range h.routes {
		routes = append(routes, pattern)
	}
	return routes
}

func (h *TaskHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// list returns visible tasks. The filter and q parameters override the store's query.
func (h *TaskHandler) list(w http.ResponseWriter, r *http.Request) {
	q := h.store.Query()
	params := r.URL.Query()
	if params.Has("filter") {
		q.Filter = tasks.Filter(params.Get("filter"))
	}
	if params.Has("q") {
		q.Search = params.Get("q")
	}

	writeJSON(w, http.StatusOK, tasks.Visible(h.store.Tasks(), q, time.Now()))
}

type createRequest struct {
	Title    string `json:"title"`
	Category string `json:"category"`
	Due      string `json:"due"` // today, tomorrow, week, 2006-01-02 or RFC3339
}

func (h *TaskHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if !decode(w, r, &req) {
		return
	}

	due, err := shared.ParseDueDate(req.Due, time.Now())
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation", err.Error())
		return
	}

	task, err := h.store.Create(r.Context(), models.TaskInput{Title: req.Title, Category: req.Category, DueDate: due})
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) get(w http.ResponseWriter, r *http.Request) {
	task, err := h.store.Get(r.PathValue("id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) update(w http.ResponseWriter, r *http.Request) {
	var patch models.TaskPatch
	if !decode(w, r, &patch) {
		return
	}

	task, err := h.store.Update(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) toggle(w http.ResponseWriter, r *http.Request) {
	task, err := h.store.Toggle(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type reorderRequest struct {
	IDs []string `json:"ids"`
}

func (h *TaskHandler) reorderAll(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if !decode(w, r, &req) {
		return
	}

	if err := h.store.ReorderAll(r.Context(), req.IDs); err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.store.Tasks())
}

// move applies a [tasks.MoveRequest] against the store's current query.
func (h *TaskHandler) move(w http.ResponseWriter, r *http.Request) {
	var req tasks.MoveRequest
	if !decode(w, r, &req) {
		return
	}

	if err := h.store.Reorder(r.Context(), req); err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.store.VisibleTasks())
}

func (h *TaskHandler) getQuery(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Query())
}

func (h *TaskHandler) setQuery(w http.ResponseWriter, r *http.Request) {
	var q tasks.Query
	if !decode(w, r, &q) {
		return
	}

	h.store.SetFilter(q.Filter)
	h.store.SetSearch(q.Search)
	writeJSON(w, http.StatusOK, h.store.Query())
}

func (h *TaskHandler) stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Stats())
}

func (h *TaskHandler) categories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Categories())
}

func (h *TaskHandler) filters(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.FilterCounts())
}

func (h *TaskHandler) load(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Load(r.Context()); err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.store.Tasks())
}

// fail maps store error kinds to status codes.
func (h *TaskHandler) fail(w http.ResponseWriter, err error) {
	status, kind := http.StatusInternalServerError, "internal"
	switch {
	case errors.Is(err, tasks.ErrValidation):
		status, kind = http.StatusBadRequest, "validation"
	case errors.Is(err, tasks.ErrNotFound):
		status, kind = http.StatusNotFound, "not_found"
	case errors.Is(err, tasks.ErrPersistence):
		status, kind = http.StatusBadGateway, "persistence"
	case errors.Is(err, tasks.ErrLoad):
		status, kind = http.StatusServiceUnavailable, "load"
	}

	if status >= http.StatusInternalServerError {
		h.logger.Warn("request failed", "kind", kind, "error", err)
	}
	writeError(w, status, kind, err.Error())
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "validation", fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, kind, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, Kind: kind})
}
