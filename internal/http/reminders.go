package http

import (
	"net/http"

	"kharcha/internal/core"
)

func (s *Server) handleListReminders(w http.ResponseWriter, r *http.Request) {
	rems, err := s.store.ListReminders(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	if rems == nil {
		rems = []core.Reminder{}
	}
	respondJSON(w, http.StatusOK, rems)
}

func (s *Server) handleGetReminder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid reminder id")
		return
	}
	rem, err := s.store.GetReminder(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, rem)
}

func (s *Server) handleCreateReminder(w http.ResponseWriter, r *http.Request) {
	var n core.NewReminder
	if !decodeBody(w, r, &n) {
		return
	}
	rem, err := s.store.CreateReminder(r.Context(), n)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, rem)
}

func (s *Server) handleUpdateReminder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid reminder id")
		return
	}
	var p core.ReminderPatch
	if !decodeBody(w, r, &p) {
		return
	}
	rem, err := s.store.UpdateReminder(r.Context(), id, p)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, rem)
}

func (s *Server) handleDeleteReminder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid reminder id")
		return
	}
	if err := s.store.DeleteReminder(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
