package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/cryptolog/registry/internal/registry"
)

// NewServer creates an HTTP server with all routes configured.
// When adminAPIKey is non-empty, mutating routes require a bearer token.
func NewServer(port string, entries *registry.Service, adminAPIKey string) *http.Server {
	return &http.Server{
		Addr:         ":" + port,
		Handler:      newMux(entries, adminAPIKey),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func newMux(entries *registry.Service, adminAPIKey string) *http.ServeMux {
	handler := NewHandler(entries)

	protect := func(h http.HandlerFunc) http.Handler {
		if adminAPIKey == "" {
			return h
		}
		return requireAuth(adminAPIKey, h)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/entries", handler.ListEntries)
	mux.HandleFunc("GET /api/v1/entries/export", handler.ExportEntries)
	mux.HandleFunc("GET /api/v1/entries/{id}", handler.GetEntry)
	mux.HandleFunc("GET /api/v1/entries/{id}/clipboard", handler.ClipboardEntry)

	mux.Handle("POST /api/v1/entries", protect(handler.CreateEntry))
	mux.Handle("PUT /api/v1/entries/{id}", protect(handler.UpdateEntry))
	mux.Handle("DELETE /api/v1/entries/{id}", protect(handler.DeleteEntry))
	mux.Handle("POST /api/v1/entries/derive", protect(handler.DeriveEntry))

	return mux
}

func requireAuth(apiKey string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		token := strings.TrimPrefix(auth, "Bearer ")
		if !strings.HasPrefix(auth, "Bearer ") || subtle.ConstantTimeCompare([]byte(token), []byte(apiKey)) != 1 {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}
