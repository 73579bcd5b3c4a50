package http

import (
	"net/http"

	"kharcha/internal/services"
)

type importRequest struct {
	Transactions []services.ImportRow `json:"transactions"`
}

// handleImportTransactions loads rows in bulk. Rows commit independently, so
// the response is 200 with per-row errors rather than all-or-nothing.
func (s *Server) handleImportTransactions(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.Transactions) == 0 {
		badRequest(w, "transactions is required")
		return
	}

	result, err := s.importer.Import(r.Context(), req.Transactions)
	if err != nil {
		respondError(w, r, err)
		return
	}

	s.invalidateStats()
	respondJSON(w, http.StatusOK, result)
}
