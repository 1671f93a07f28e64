package controllers

import (
	"io"
	"net/http"
	"portal/internal/models"
	"portal/internal/providers"
	"portal/internal/services"
)

// TreeController gives admins raw access to the tree for seeding and
// inspection. Errors are mapped the same way as for archive routes.
type TreeController struct {
	logger   providers.Logger
	service  services.ArchiveServiceInterface
	archives *ArchiveController
}

func NewTreeController(logger providers.Logger, service services.ArchiveServiceInterface, archives *ArchiveController) *TreeController {
	return &TreeController{
		logger:   logger,
		service:  service,
		archives: archives,
	}
}

func (tc *TreeController) Get(w http.ResponseWriter, r *http.Request) {
	node, err := tc.service.GetNode(r.Context(), r.URL.Query().Get("path"))
	if err != nil {
		tc.archives.writeError(w, r, err)
		return
	}
	gson, err := node.MarshalJSON()
	if err != nil {
		tc.archives.writeError(w, r, err)
		return
	}
	writeJSONBytes(w, http.StatusOK, gson)
}

// Set writes the request body at ?path=. A null body deletes.
func (tc *TreeController) Set(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBodySize))
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	value, err := models.ParseNode(body)
	if err != nil {
		tc.logger.Debugf(providers.TypePost, "tree write %q: bad body: %v", path, err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if err := tc.service.SetNode(r.Context(), path, value); err != nil {
		tc.archives.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
