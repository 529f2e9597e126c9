package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/cryptolog/registry/internal/compute"
	"github.com/cryptolog/registry/internal/domain"
	"github.com/cryptolog/registry/internal/export"
	"github.com/cryptolog/registry/internal/registry"
)

// Handler provides HTTP endpoints for the transaction registry API.
type Handler struct {
	entries *registry.Service
}

// NewHandler creates a new API handler.
func NewHandler(entries *registry.Service) *Handler {
	return &Handler{entries: entries}
}

// ListEntries handles GET /api/v1/entries.
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.entries.List(r.Context()))
}

// GetEntry handles GET /api/v1/entries/{id}.
func (h *Handler) GetEntry(w http.ResponseWriter, r *http.Request) {
	entry, err := h.entries.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			writeError(w, http.StatusNotFound, "entry not found")
			return
		}
		slog.Error("failed to get entry", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// CreateEntry handles POST /api/v1/entries.
func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	entry, ok := decodeEntry(w, r)
	if !ok {
		return
	}

	created, err := h.entries.Create(r.Context(), entry)
	if err != nil {
		if errors.Is(err, registry.ErrInvalidEntry) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.Error("failed to create entry", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// UpdateEntry handles PUT /api/v1/entries/{id}. The stored record is
// replaced wholesale with the request body.
func (h *Handler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	entry, ok := decodeEntry(w, r)
	if !ok {
		return
	}
	entry.ID = r.PathValue("id")

	updated, err := h.entries.Update(r.Context(), entry)
	if err != nil {
		switch {
		case errors.Is(err, registry.ErrNotFound):
			writeError(w, http.StatusNotFound, "entry not found")
		case errors.Is(err, registry.ErrInvalidEntry):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			slog.Error("failed to update entry", "id", entry.ID, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DeleteEntry handles DELETE /api/v1/entries/{id}.
func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.entries.Delete(r.Context(), id); err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			writeError(w, http.StatusNotFound, "entry not found")
			return
		}
		slog.Error("failed to delete entry", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeriveEntry handles POST /api/v1/entries/derive. It fills historical
// prices and totals for a draft entry without storing anything.
func (h *Handler) DeriveEntry(w http.ResponseWriter, r *http.Request) {
	entry, ok := decodeEntry(w, r)
	if !ok {
		return
	}

	derived, err := h.entries.Derive(r.Context(), entry)
	if err != nil {
		switch {
		case errors.Is(err, registry.ErrBusy):
			writeError(w, http.StatusConflict, "a price lookup is already running")
		case errors.Is(err, compute.ErrMissingTimestamp),
			errors.Is(err, compute.ErrNoPriceAvailable):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			slog.Error("failed to derive entry fields", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	writeJSON(w, http.StatusOK, derived)
}

// ExportEntries handles GET /api/v1/entries/export. The default download
// is a tab-separated .xls file; ?format=xlsx switches to a real workbook.
func (h *Handler) ExportEntries(w http.ResponseWriter, r *http.Request) {
	entries := h.entries.List(r.Context())

	if r.URL.Query().Get("format") == "xlsx" {
		data, err := export.WriteWorkbook(entries)
		if err != nil {
			slog.Error("failed to build workbook", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.WorkbookName))
		_, _ = w.Write(data)
		return
	}

	w.Header().Set("Content-Type", export.FileContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName))
	_, _ = w.Write(export.FileTSV(entries))
}

// ClipboardEntry handles GET /api/v1/entries/{id}/clipboard, returning a
// header-plus-row TSV payload with comma decimals for spreadsheet pasting.
func (h *Handler) ClipboardEntry(w http.ResponseWriter, r *http.Request) {
	entry, err := h.entries.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			writeError(w, http.StatusNotFound, "entry not found")
			return
		}
		slog.Error("failed to get entry", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.Header().Set("Content-Type", "text/tab-separated-values; charset=utf-8")
	_, _ = w.Write([]byte(export.ClipboardTSV(entry)))
}

func decodeEntry(w http.ResponseWriter, r *http.Request) (domain.TransactionEntry, bool) {
	var entry domain.TransactionEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return domain.TransactionEntry{}, false
	}
	return entry, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("failed to marshal JSON response", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		slog.Warn("failed to write HTTP response body", "error", err)
		return
	}
	_, _ = w.Write([]byte("\n"))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
