package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"kharcha/internal/core"
)

type errorResponse struct {
	Message string   `json:"message"`
	Fields  []string `json:"fields,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		if err := json.NewEncoder(w).Encode(body); err != nil {
			slog.Error("Failed to encode response", "error", err)
		}
	}
}

// respondError maps the domain error taxonomy onto HTTP statuses: validation
// and consistency failures are the client's fault (400), missing ids are 404,
// anything else is a 500 with a generic message.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *core.ValidationError
	if errors.As(err, &ve) {
		respondJSON(w, http.StatusBadRequest, errorResponse{Message: ve.Error(), Fields: ve.Fields})
		return
	}
	if core.IsConsistency(err) {
		respondJSON(w, http.StatusBadRequest, errorResponse{Message: err.Error()})
		return
	}
	if core.IsNotFound(err) {
		respondJSON(w, http.StatusNotFound, errorResponse{Message: err.Error()})
		return
	}

	slog.ErrorContext(r.Context(), "Request failed", "error", err, "path", r.URL.Path)
	respondJSON(w, http.StatusInternalServerError, errorResponse{Message: "Internal server error"})
}

func badRequest(w http.ResponseWriter, message string) {
	respondJSON(w, http.StatusBadRequest, errorResponse{Message: message})
}

// pathID reads the {id} route variable as a positive integer.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		badRequest(w, "invalid JSON body")
		return false
	}
	return true
}

// clientIP resolves the caller's address, trusting proxy headers when set.
func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}
