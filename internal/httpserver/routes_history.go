// internal/httpserver/routes_history.go
//
// Read-only match history:
//   - GET /history?limit=n            → most recent finished rounds
//   - GET /history/players/{id}       → aggregate stats for one player

package httpserver

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

func (s *Server) mountHistory() {
	s.r.Route("/history", func(r chi.Router) {
		r.Get("/", s.handleRecent)
		r.Get("/players/{id}", s.handlePlayerStats)
	})
}

func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	out, err := s.deps.History.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handlePlayerStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.deps.History.PlayerStats(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}
