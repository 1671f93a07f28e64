package controllers

import (
	"errors"
	json "github.com/goccy/go-json"
	"net/http"
	"portal/internal/archive"
	"portal/internal/providers"
	"portal/internal/services"

	"github.com/go-chi/chi/v5"
)

const maxRequestBodySize = 1 << 20 // 1 MB

// ArchiveController serves the archive lifecycle. Lists are read from the
// store on every request; another portal process may have changed them.
type ArchiveController struct {
	logger  providers.Logger
	service services.ArchiveServiceInterface
}

func NewArchiveController(logger providers.Logger, service services.ArchiveServiceInterface) *ArchiveController {
	return &ArchiveController{
		logger:  logger,
		service: service,
	}
}

func (ac *ArchiveController) ListAll(w http.ResponseWriter, r *http.Request) {
	ac.list(w, r, r.URL.Query().Get("entity"))
}

func (ac *ArchiveController) ListEntity(w http.ResponseWriter, r *http.Request) {
	ac.list(w, r, chi.URLParam(r, "entity"))
}

func (ac *ArchiveController) list(w http.ResponseWriter, r *http.Request, entity string) {
	entries, err := ac.service.List(r.Context(), entity)
	if err != nil {
		ac.writeError(w, r, err)
		return
	}
	ac.writeJSON(w, r, http.StatusOK, entries)
}

func (ac *ArchiveController) Archive(w http.ResponseWriter, r *http.Request) {
	entity, id := chi.URLParam(r, "entity"), chi.URLParam(r, "id")

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var req services.ArchiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ac.logger.Debugf(providers.TypePost, "archive %s/%s: bad body: %v", entity, id, err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if actor, ok := providers.ActorFromContext(r.Context()); ok {
		req.ArchivedBy = actor
	}

	entry, err := ac.service.Archive(r.Context(), entity, id, &req)
	if err != nil {
		ac.writeError(w, r, err)
		return
	}
	ac.writeJSON(w, r, http.StatusCreated, entry)
}

func (ac *ArchiveController) Restore(w http.ResponseWriter, r *http.Request) {
	entity, id := chi.URLParam(r, "entity"), chi.URLParam(r, "id")

	entry, err := ac.service.Restore(r.Context(), entity, id)
	if err != nil {
		ac.writeError(w, r, err)
		return
	}
	ac.writeJSON(w, r, http.StatusOK, entry)
}

func (ac *ArchiveController) Delete(w http.ResponseWriter, r *http.Request) {
	entity, id := chi.URLParam(r, "entity"), chi.URLParam(r, "id")

	entry, err := ac.service.Delete(r.Context(), entity, id)
	if err != nil {
		ac.writeError(w, r, err)
		return
	}
	ac.writeJSON(w, r, http.StatusOK, entry)
}

func (ac *ArchiveController) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	gson, err := json.Marshal(v)
	if err != nil {
		ac.writeError(w, r, err)
		return
	}
	writeJSONBytes(w, status, gson)
}

// writeError maps the archive error taxonomy to a status. Details stay in
// the log.
func (ac *ArchiveController) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, archive.ErrInvalidArgument):
		http.Error(w, "Bad Request", http.StatusBadRequest)
	case errors.Is(err, archive.ErrNotFound):
		http.Error(w, "Not Found", http.StatusNotFound)
	default:
		ac.logger.Errorf(providers.GetLogTypeByRequestType(r.Method), "%s %s: %v", r.Method, r.URL.Path, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func writeJSONBytes(w http.ResponseWriter, status int, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
