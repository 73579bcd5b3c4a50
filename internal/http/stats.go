package http

import (
	"net/http"

	"kharcha/internal/stats"
)

const (
	cacheKeySummary    = "summary"
	cacheKeyTop        = "top-categories"
	cacheKeyComparison = "comparison"
)

func (s *Server) handleStatsSummary(w http.ResponseWriter, r *http.Request) {
	if cached, ok := s.summaryCache.Get(cacheKeySummary); ok {
		respondJSON(w, http.StatusOK, cached)
		return
	}

	txs, err := s.store.ListTransactions(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	summary := stats.Summarize(txs, s.now())
	s.summaryCache.Set(cacheKeySummary, summary)
	respondJSON(w, http.StatusOK, summary)
}

func (s *Server) handleStatsTopCategories(w http.ResponseWriter, r *http.Request) {
	if cached, ok := s.sharesCache.Get(cacheKeyTop); ok {
		respondJSON(w, http.StatusOK, cached)
		return
	}

	txs, err := s.store.ListTransactions(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	cats, err := s.store.ListCategories(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	top := stats.TopCategories(txs, cats, s.now())
	if top == nil {
		top = []stats.CategoryShare{}
	}
	s.sharesCache.Set(cacheKeyTop, top)
	respondJSON(w, http.StatusOK, top)
}

// handleStatsBreakdown accepts ?range=month|year, defaulting to month.
func (s *Server) handleStatsBreakdown(w http.ResponseWriter, r *http.Request) {
	rng := stats.Range(r.URL.Query().Get("range"))
	if rng == "" {
		rng = stats.RangeMonth
	}
	if !rng.Valid() {
		badRequest(w, "range must be 'month' or 'year'")
		return
	}

	key := "breakdown:" + string(rng)
	if cached, ok := s.sharesCache.Get(key); ok {
		respondJSON(w, http.StatusOK, cached)
		return
	}

	txs, err := s.store.ListTransactions(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	cats, err := s.store.ListCategories(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	breakdown := stats.Breakdown(txs, cats, rng, s.now())
	s.sharesCache.Set(key, breakdown)
	respondJSON(w, http.StatusOK, breakdown)
}

func (s *Server) handleStatsComparison(w http.ResponseWriter, r *http.Request) {
	if cached, ok := s.comparisonCache.Get(cacheKeyComparison); ok {
		respondJSON(w, http.StatusOK, cached)
		return
	}

	txs, err := s.store.ListTransactions(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	comparison := stats.MonthlyComparison(txs, s.now())
	s.comparisonCache.Set(cacheKeyComparison, comparison)
	respondJSON(w, http.StatusOK, comparison)
}
