package theme

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
)

// Handler serves the theme and platform catalog.
type Handler struct {
	loader *Loader
}

func NewHandler(loader *Loader) *Handler {
	return &Handler{
		loader: loader,
	}
}

// Register mounts the catalog routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/themes", h.HandleThemes)
	mux.HandleFunc("/api/themes/", h.HandleThemeByID)
	mux.HandleFunc("/api/platforms", h.HandlePlatforms)
	mux.HandleFunc("/api/platforms/categories", h.HandlePlatformCategories)
}

// HandleThemes lists every loaded theme.
func (h *Handler) HandleThemes(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	writeCached(w, h.loader.Themes())
}

// HandleThemeByID returns a single theme.
func (h *Handler) HandleThemeByID(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/themes/")
	t, ok := h.loader.Theme(id)
	if !ok {
		http.Error(w, "theme not found", http.StatusNotFound)
		return
	}
	writeCached(w, t)
}

// HandlePlatforms lists every platform.
func (h *Handler) HandlePlatforms(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	writeCached(w, h.loader.Platforms())
}

// HandlePlatformCategories returns platforms grouped by category.
func (h *Handler) HandlePlatformCategories(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	writeCached(w, h.loader.PlatformsByCategory())
}

func allowGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return false
	}
	return true
}

// The catalog never changes after startup.
func writeCached(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[theme] encode response: %v", err)
	}
}
