package http

import (
	"net/http"

	"kharcha/internal/core"
)

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	st, err := s.store.GetSettings(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, st)
}

// handleUpdateSettings merges the posted fields into the singleton; absent
// fields keep their current value.
func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var p core.SettingsPatch
	if !decodeBody(w, r, &p) {
		return
	}
	st, err := s.store.UpdateSettings(r.Context(), p)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, st)
}
