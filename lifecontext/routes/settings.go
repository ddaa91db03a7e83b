package routes

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"lifecontext/lifecontext/config"
	"lifecontext/lifecontext/controllers"
)

func SettingsRoutes(ctrl *controllers.SettingsController) chi.Router {
	r := chi.NewRouter()
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(ctrl.Get())
	})
	r.Put("/", func(w http.ResponseWriter, r *http.Request) {
		var next config.Settings
		if err := json.NewDecoder(r.Body).Decode(&next); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := ctrl.Update(next); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(ctrl.Get())
	})
	return r
}
