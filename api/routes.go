package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"criticdeck/handlers"
)

// Register mounts the API routes on the router.
func Register(r *mux.Router, scores *handlers.ScoresHandler) {
	apiRouter := r.PathPrefix("/api").Subrouter()

	apiRouter.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	apiRouter.HandleFunc("/scores", scores.GetScore).Methods(http.MethodGet)
	apiRouter.HandleFunc("/scores/cache/clear", scores.ClearCache).Methods(http.MethodPost)
}
