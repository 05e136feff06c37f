package api

import (
	"errors"
	"net/http"

	"github.com/okian/rankwatch/internal/adapters/repository"
)

// SnapshotHandler serves the persisted record.
type SnapshotHandler struct {
	reader SnapshotReader
}

// NewSnapshotHandler creates a new snapshot handler.
func NewSnapshotHandler(reader SnapshotReader) *SnapshotHandler {
	return &SnapshotHandler{reader: reader}
}

// HandleSnapshot handles GET /snapshot requests.
func (h *SnapshotHandler) HandleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}

	rec, err := h.reader.Load(r.Context())
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, rec)
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, repository.ErrCorrupt):
		writeError(w, http.StatusConflict, "corrupt", err)
	default:
		writeError(w, http.StatusServiceUnavailable, "unavailable", ErrStoreRead)
	}
}
