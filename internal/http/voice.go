package http

import (
	"net/http"
	"strings"

	"kharcha/internal/voice"
)

type voiceParseRequest struct {
	Transcript string `json:"transcript"`
}

// handleVoiceParse turns a transcript into a draft transaction. The draft is
// never stored here; the client confirms it and posts a real transaction. A
// transcript with no recognizable amount is rejected with 422 since there is
// nothing useful to confirm.
func (s *Server) handleVoiceParse(w http.ResponseWriter, r *http.Request) {
	var req voiceParseRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Transcript) == "" {
		badRequest(w, "transcript is required")
		return
	}

	cats, err := s.store.ListCategories(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	draft := voice.Parse(req.Transcript, cats, s.now())
	if draft.Amount == 0 {
		respondJSON(w, http.StatusUnprocessableEntity, errorResponse{Message: "no amount found in transcript"})
		return
	}
	respondJSON(w, http.StatusOK, draft)
}
