package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"kharcha/internal/core"
	"kharcha/internal/services"
	"kharcha/internal/stats"
	"kharcha/internal/storage/memory"
	"kharcha/internal/voice"
)

func newTestServer(t *testing.T, now time.Time) *Server {
	t.Helper()
	store := memory.New()
	svc := services.NewTransactionService(store, nil)
	imp := services.NewImporter(store, svc)
	s := NewServer(":0", store, svc, imp, Options{})
	s.now = func() time.Time { return now }
	t.Cleanup(func() { s.limiter.Stop() })
	return s
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rdr = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rdr)
	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeInto(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(dst); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

var testNow = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t, testNow)

	if rec := doJSON(t, s, http.MethodGet, "/healthz", nil); rec.Code != http.StatusOK {
		t.Errorf("healthz status = %d, want 200", rec.Code)
	}
	if rec := doJSON(t, s, http.MethodGet, "/readyz", nil); rec.Code != http.StatusOK {
		t.Errorf("readyz status = %d, want 200", rec.Code)
	}
}

func TestCreateCategoryAssignsNextID(t *testing.T) {
	s := newTestServer(t, testNow)

	rec := doJSON(t, s, http.MethodPost, "/api/categories", map[string]any{
		"name": "Rent",
		"type": "expense",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body)
	}

	var cat core.Category
	decodeInto(t, rec, &cat)
	if cat.ID != 6 {
		t.Errorf("ID = %d, want 6 (after the 5 seeded categories)", cat.ID)
	}
	if cat.Icon != core.DefaultIcon {
		t.Errorf("Icon = %q, want default %q", cat.Icon, core.DefaultIcon)
	}
}

func TestCategoryNotFound(t *testing.T) {
	s := newTestServer(t, testNow)

	rec := doJSON(t, s, http.MethodGet, "/api/categories/99", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestCreateTransactionValidation(t *testing.T) {
	s := newTestServer(t, testNow)

	rec := doJSON(t, s, http.MethodPost, "/api/transactions", map[string]any{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	var resp errorResponse
	decodeInto(t, rec, &resp)
	if len(resp.Fields) == 0 {
		t.Error("expected invalid fields to be listed")
	}
}

func TestCreateTransactionTypeMismatch(t *testing.T) {
	s := newTestServer(t, testNow)

	// Groceries (id 1) is an expense category.
	rec := doJSON(t, s, http.MethodPost, "/api/transactions", map[string]any{
		"type":        "income",
		"amount":      500,
		"description": "mystery deposit",
		"categoryId":  1,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", rec.Code, rec.Body)
	}

	var resp errorResponse
	decodeInto(t, rec, &resp)
	if resp.Message == "" {
		t.Error("expected an error message")
	}
}

func TestTransactionLifecycle(t *testing.T) {
	s := newTestServer(t, testNow)

	rec := doJSON(t, s, http.MethodPost, "/api/transactions", map[string]any{
		"type":        "expense",
		"amount":      250,
		"description": "weekly shop",
		"categoryId":  1,
		"date":        "2025-06-10T00:00:00Z",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body)
	}
	var created core.Transaction
	decodeInto(t, rec, &created)
	if created.ID != 1 {
		t.Errorf("ID = %d, want 1", created.ID)
	}

	rec = doJSON(t, s, http.MethodPatch, "/api/transactions/1", map[string]any{
		"amount": 300,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d: %s", rec.Code, rec.Body)
	}
	var updated core.Transaction
	decodeInto(t, rec, &updated)
	if updated.Amount != 300 {
		t.Errorf("Amount = %v, want 300", updated.Amount)
	}
	if updated.Description != "weekly shop" {
		t.Errorf("Description = %q, want untouched original", updated.Description)
	}

	if rec = doJSON(t, s, http.MethodDelete, "/api/transactions/1", nil); rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", rec.Code)
	}
	if rec = doJSON(t, s, http.MethodGet, "/api/transactions/1", nil); rec.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", rec.Code)
	}
}

func TestListTransactionsNewestFirst(t *testing.T) {
	s := newTestServer(t, testNow)

	// Creation order deliberately disagrees with date order.
	postTx(t, s, "expense", 10, 1, "2025-06-10T00:00:00Z")
	postTx(t, s, "expense", 20, 1, "2025-06-12T00:00:00Z")
	postTx(t, s, "expense", 30, 1, "2025-06-01T00:00:00Z")
	postTx(t, s, "expense", 40, 1, "2025-06-12T00:00:00Z") // same date as id 2

	rec := doJSON(t, s, http.MethodGet, "/api/transactions", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}

	var txs []core.Transaction
	decodeInto(t, rec, &txs)
	got := make([]int64, len(txs))
	for i, tx := range txs {
		got[i] = tx.ID
	}
	// Date descending, newer id first on equal dates.
	want := []int64{4, 2, 1, 3}
	for i := range want {
		if i >= len(got) || got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestDeleteCategoryKeepsTransactions(t *testing.T) {
	s := newTestServer(t, testNow)

	rec := doJSON(t, s, http.MethodPost, "/api/transactions", map[string]any{
		"type":        "expense",
		"amount":      90,
		"description": "bus pass",
		"categoryId":  2,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body)
	}

	if rec = doJSON(t, s, http.MethodDelete, "/api/categories/2", nil); rec.Code != http.StatusNoContent {
		t.Fatalf("delete category status = %d, want 204", rec.Code)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/transactions/1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("transaction gone after category delete: status = %d", rec.Code)
	}
	var tx core.Transaction
	decodeInto(t, rec, &tx)
	if tx.CategoryID != 2 {
		t.Errorf("CategoryID = %d, want dangling reference 2", tx.CategoryID)
	}
}

func TestSettingsMerge(t *testing.T) {
	s := newTestServer(t, testNow)

	rec := doJSON(t, s, http.MethodPost, "/api/settings", map[string]any{
		"darkMode": true,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}

	var st core.Settings
	decodeInto(t, rec, &st)
	if !st.DarkMode {
		t.Error("DarkMode not applied")
	}
	if st.Currency != "PKR" {
		t.Errorf("Currency = %q, want seed value preserved", st.Currency)
	}
}

func TestReminderLifecycle(t *testing.T) {
	s := newTestServer(t, testNow)

	rec := doJSON(t, s, http.MethodPost, "/api/reminders", map[string]any{
		"title":    "Log receipts",
		"message":  "Enter today's receipts",
		"time":     "21:30",
		"isActive": true,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body)
	}
	var rem core.Reminder
	decodeInto(t, rec, &rem)
	if rem.ID != 2 {
		t.Errorf("ID = %d, want 2 (after the seeded reminder)", rem.ID)
	}

	rec = doJSON(t, s, http.MethodPatch, "/api/reminders/2", map[string]any{
		"isActive": false,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d: %s", rec.Code, rec.Body)
	}
	decodeInto(t, rec, &rem)
	if rem.IsActive {
		t.Error("IsActive should be false after patch")
	}
	if rem.Title != "Log receipts" {
		t.Errorf("Title = %q, want untouched original", rem.Title)
	}

	if rec = doJSON(t, s, http.MethodDelete, "/api/reminders/2", nil); rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", rec.Code)
	}
}

func postTx(t *testing.T, s *Server, typ string, amount float64, catID int64, date string) {
	t.Helper()
	rec := doJSON(t, s, http.MethodPost, "/api/transactions", map[string]any{
		"type":        typ,
		"amount":      amount,
		"description": "stats fixture",
		"categoryId":  catID,
		"date":        date,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("fixture create status = %d: %s", rec.Code, rec.Body)
	}
}

func TestStatsSummary(t *testing.T) {
	s := newTestServer(t, testNow)

	postTx(t, s, "income", 1000, 4, "2025-06-01T00:00:00Z")
	postTx(t, s, "expense", 400, 1, "2025-06-05T00:00:00Z")
	postTx(t, s, "expense", 100, 1, "2025-05-05T00:00:00Z") // prior month

	rec := doJSON(t, s, http.MethodGet, "/api/stats/summary", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}

	var sum stats.Summary
	decodeInto(t, rec, &sum)
	if sum.Balance != 500 {
		t.Errorf("Balance = %v, want 500", sum.Balance)
	}
	if sum.MonthlyIncome != 1000 || sum.MonthlyExpenses != 400 {
		t.Errorf("month totals = %v/%v, want 1000/400", sum.MonthlyIncome, sum.MonthlyExpenses)
	}
	if sum.Savings != 600 {
		t.Errorf("Savings = %v, want 600", sum.Savings)
	}
}

func TestStatsSummaryCacheInvalidatedOnWrite(t *testing.T) {
	s := newTestServer(t, testNow)

	postTx(t, s, "expense", 100, 1, "2025-06-05T00:00:00Z")

	rec := doJSON(t, s, http.MethodGet, "/api/stats/summary", nil)
	var before stats.Summary
	decodeInto(t, rec, &before)
	if before.MonthlyExpenses != 100 {
		t.Fatalf("MonthlyExpenses = %v, want 100", before.MonthlyExpenses)
	}

	postTx(t, s, "expense", 50, 1, "2025-06-06T00:00:00Z")

	rec = doJSON(t, s, http.MethodGet, "/api/stats/summary", nil)
	var after stats.Summary
	decodeInto(t, rec, &after)
	if after.MonthlyExpenses != 150 {
		t.Errorf("MonthlyExpenses = %v after write, want 150 (cache must be purged)", after.MonthlyExpenses)
	}
}

func TestStatsTopCategories(t *testing.T) {
	s := newTestServer(t, testNow)

	postTx(t, s, "expense", 600, 1, "2025-06-03T00:00:00Z") // Groceries
	postTx(t, s, "expense", 300, 2, "2025-06-04T00:00:00Z") // Transport
	postTx(t, s, "expense", 100, 3, "2025-06-05T00:00:00Z") // Dining

	rec := doJSON(t, s, http.MethodGet, "/api/stats/top-categories", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}

	var top []stats.CategoryShare
	decodeInto(t, rec, &top)
	if len(top) != 3 {
		t.Fatalf("len = %d, want 3", len(top))
	}
	if top[0].Name != "Groceries" || top[0].Percentage != 60 {
		t.Errorf("top[0] = %q/%d%%, want Groceries/60%%", top[0].Name, top[0].Percentage)
	}
}

func TestStatsBreakdownRange(t *testing.T) {
	s := newTestServer(t, testNow)

	postTx(t, s, "expense", 200, 1, "2025-06-03T00:00:00Z")
	postTx(t, s, "expense", 800, 2, "2025-01-10T00:00:00Z") // same year, other month

	rec := doJSON(t, s, http.MethodGet, "/api/stats/breakdown", nil)
	var monthly []stats.CategoryShare
	decodeInto(t, rec, &monthly)
	if len(monthly) != 1 {
		t.Fatalf("month breakdown len = %d, want 1", len(monthly))
	}

	rec = doJSON(t, s, http.MethodGet, "/api/stats/breakdown?range=year", nil)
	var yearly []stats.CategoryShare
	decodeInto(t, rec, &yearly)
	if len(yearly) != 2 {
		t.Fatalf("year breakdown len = %d, want 2", len(yearly))
	}
	if yearly[0].Name != "Transport" || yearly[0].Percentage != 80 {
		t.Errorf("yearly[0] = %q/%d%%, want Transport/80%%", yearly[0].Name, yearly[0].Percentage)
	}

	if rec = doJSON(t, s, http.MethodGet, "/api/stats/breakdown?range=weekly", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("invalid range status = %d, want 400", rec.Code)
	}
}

func TestStatsComparisonCoversFiveMonths(t *testing.T) {
	s := newTestServer(t, testNow)

	rec := doJSON(t, s, http.MethodGet, "/api/stats/comparison", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}

	var months []stats.MonthTotal
	decodeInto(t, rec, &months)
	if len(months) != 5 {
		t.Fatalf("len = %d, want 5", len(months))
	}
	if months[0].Month != "Feb" || months[4].Month != "Jun" {
		t.Errorf("months span %s..%s, want Feb..Jun", months[0].Month, months[4].Month)
	}
	if !months[4].CurrentMonth {
		t.Error("last entry should be flagged as the current month")
	}
}

func TestVoiceParse(t *testing.T) {
	s := newTestServer(t, testNow)

	rec := doJSON(t, s, http.MethodPost, "/api/voice/parse", map[string]any{
		"transcript": "spent 500 on groceries yesterday",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}

	var draft voice.Draft
	decodeInto(t, rec, &draft)
	if draft.Type != core.Expense {
		t.Errorf("Type = %q, want expense", draft.Type)
	}
	if draft.Amount != 500 {
		t.Errorf("Amount = %v, want 500", draft.Amount)
	}
	if draft.CategoryID != 1 {
		t.Errorf("CategoryID = %d, want 1 (Groceries)", draft.CategoryID)
	}
	if want := testNow.AddDate(0, 0, -1); !draft.Date.Equal(want) {
		t.Errorf("Date = %v, want %v", draft.Date, want)
	}

	if rec = doJSON(t, s, http.MethodPost, "/api/voice/parse", map[string]any{"transcript": "  "}); rec.Code != http.StatusBadRequest {
		t.Errorf("empty transcript status = %d, want 400", rec.Code)
	}
}

func TestVoiceParseWithoutAmount(t *testing.T) {
	s := newTestServer(t, testNow)

	rec := doJSON(t, s, http.MethodPost, "/api/voice/parse", map[string]any{
		"transcript": "bought some snacks",
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422 when no amount found: %s", rec.Code, rec.Body)
	}

	var resp errorResponse
	decodeInto(t, rec, &resp)
	if resp.Message == "" {
		t.Error("expected an error message")
	}
}

func TestImportTransactions(t *testing.T) {
	s := newTestServer(t, testNow)

	rec := doJSON(t, s, http.MethodPost, "/api/import/transactions", map[string]any{
		"transactions": []map[string]any{
			{"type": "expense", "amount": 120, "description": "rent", "category": "Rent", "date": "2025-06-01T00:00:00Z"},
			{"type": "expense", "amount": 0, "description": "bad row", "category": "Rent"},
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}

	var result services.ImportResult
	decodeInto(t, rec, &result)
	if result.Imported != 1 || result.Skipped != 1 {
		t.Errorf("imported/skipped = %d/%d, want 1/1", result.Imported, result.Skipped)
	}
	if len(result.Errors) != 1 || result.Errors[0].Row != 1 {
		t.Errorf("Errors = %+v, want one error on row 1", result.Errors)
	}

	// The unknown category name was created on the fly.
	rec = doJSON(t, s, http.MethodGet, "/api/categories/6", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("imported category missing: status = %d", rec.Code)
	}
	var cat core.Category
	decodeInto(t, rec, &cat)
	if cat.Name != "Rent" {
		t.Errorf("Name = %q, want Rent", cat.Name)
	}
}
