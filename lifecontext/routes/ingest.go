package routes

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"lifecontext/lifecontext/controllers"
	"lifecontext/lifecontext/crawler"
)

// IngestRoutes wires the ingestion endpoints mounted under /api. The
// upload route accepts both application/json and the relay's no-cors
// text/plain fallback, which carries the same JSON body.
func IngestRoutes(ctrl *controllers.IngestController) chi.Router {
	r := chi.NewRouter()
	r.Post("/upload_web_data", func(w http.ResponseWriter, r *http.Request) {
		var payload crawler.CrawlPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		resp, err := ctrl.Ingest(r.Context(), payload)
		if err != nil {
			if errors.Is(err, controllers.ErrContentTooShort) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	})
	r.Get("/web_data", func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		source := r.URL.Query().Get("source")
		items, err := ctrl.Recent(r.Context(), limit, source)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(items)
	})
	return r
}
