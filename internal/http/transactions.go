package http

import (
	"net/http"
	"sort"

	"kharcha/internal/core"
)

// handleListTransactions returns all transactions newest first: date
// descending, id descending on equal dates. Stores hand back id order, so the
// presentation sort lives here.
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.store.ListTransactions(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	if txs == nil {
		txs = []core.Transaction{}
	}
	sort.Slice(txs, func(i, j int) bool {
		if !txs[i].Date.Equal(txs[j].Date) {
			return txs[i].Date.After(txs[j].Date)
		}
		return txs[i].ID > txs[j].ID
	})
	respondJSON(w, http.StatusOK, txs)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid transaction id")
		return
	}
	t, err := s.store.GetTransaction(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, t)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var n core.NewTransaction
	if !decodeBody(w, r, &n) {
		return
	}
	t, err := s.txService.Create(r.Context(), n)
	if err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateStats()
	respondJSON(w, http.StatusCreated, t)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid transaction id")
		return
	}
	var p core.TransactionPatch
	if !decodeBody(w, r, &p) {
		return
	}
	t, err := s.txService.Update(r.Context(), id, p)
	if err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateStats()
	respondJSON(w, http.StatusOK, t)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid transaction id")
		return
	}
	if err := s.txService.Delete(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateStats()
	w.WriteHeader(http.StatusNoContent)
}
