package http

import (
	"net/http"

	"kharcha/internal/core"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.store.ListCategories(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	if cats == nil {
		cats = []core.Category{}
	}
	respondJSON(w, http.StatusOK, cats)
}

func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid category id")
		return
	}
	cat, err := s.store.GetCategory(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, cat)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var n core.NewCategory
	if !decodeBody(w, r, &n) {
		return
	}
	cat, err := s.store.CreateCategory(r.Context(), n)
	if err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateStats()
	respondJSON(w, http.StatusCreated, cat)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid category id")
		return
	}
	var p core.CategoryPatch
	if !decodeBody(w, r, &p) {
		return
	}
	cat, err := s.store.UpdateCategory(r.Context(), id, p)
	if err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateStats()
	respondJSON(w, http.StatusOK, cat)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid category id")
		return
	}
	if err := s.store.DeleteCategory(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateStats()
	w.WriteHeader(http.StatusNoContent)
}
