// Package voice turns a free-text transcript into a draft transaction using
// a small keyword grammar. It is a heuristic helper, not a language engine:
// the caller shows the draft for confirmation before anything is stored.
package voice

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"kharcha/internal/core"
)

// Draft is the parser's best guess. Amount 0 or CategoryID 0 mean the
// transcript did not yield that field and the user must fill it in.
type Draft struct {
	Type        core.TxType `json:"type"`
	Amount      float64     `json:"amount"`
	Description string      `json:"description"`
	CategoryID  int64       `json:"categoryId"`
	Date        time.Time   `json:"date"`
}

var (
	expenseKeywords = []string{"spent", "paid", "bought", "gave"}
	incomeKeywords  = []string{"received", "earned", "salary", "got"}

	// First decimal number, optionally preceded by a currency word.
	amountPattern = regexp.MustCompile(`(?i)(?:rs\.?|rupees?|pkr)?\s*(\d+(?:\.\d+)?)`)
)

// categorySynonyms maps common spoken words to seed category names.
var categorySynonyms = map[string]string{
	"grocery":    "Groceries",
	"groceries":  "Groceries",
	"food":       "Dining",
	"lunch":      "Dining",
	"dinner":     "Dining",
	"restaurant": "Dining",
	"fuel":       "Transport",
	"petrol":     "Transport",
	"taxi":       "Transport",
	"bus":        "Transport",
	"fare":       "Transport",
	"salary":     "Salary",
	"wage":       "Salary",
	"dividend":   "Investments",
	"profit":     "Investments",
}

// Parse extracts a draft transaction from transcript, matching categories
// against the provided set. now anchors the relative-date keywords.
func Parse(transcript string, categories []core.Category, now time.Time) Draft {
	text := strings.TrimSpace(transcript)
	lower := strings.ToLower(text)

	draft := Draft{
		Type:        detectType(lower),
		Description: text,
		Date:        detectDate(lower, now),
	}
	draft.Amount = detectAmount(lower)
	draft.CategoryID = detectCategory(lower, categories, draft.Type)
	return draft
}

// detectType picks income only on an explicit income keyword; everything
// else is treated as spending.
func detectType(lower string) core.TxType {
	for _, kw := range incomeKeywords {
		if containsWord(lower, kw) {
			return core.Income
		}
	}
	for _, kw := range expenseKeywords {
		if containsWord(lower, kw) {
			return core.Expense
		}
	}
	return core.Expense
}

func detectAmount(lower string) float64 {
	m := amountPattern.FindStringSubmatch(lower)
	if m == nil {
		return 0
	}
	amount, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	return amount
}

func detectDate(lower string, now time.Time) time.Time {
	switch {
	case strings.Contains(lower, "yesterday"):
		return now.AddDate(0, 0, -1)
	case strings.Contains(lower, "last week"):
		return now.AddDate(0, 0, -7)
	default:
		return now
	}
}

// detectCategory tries category names first, then the synonym table. Only
// categories of the detected type are considered, so "salary" in an expense
// sentence does not land on an income category.
func detectCategory(lower string, categories []core.Category, typ core.TxType) int64 {
	for _, c := range categories {
		if c.Type == typ && containsWord(lower, strings.ToLower(c.Name)) {
			return c.ID
		}
	}
	for word, name := range categorySynonyms {
		if !containsWord(lower, word) {
			continue
		}
		for _, c := range categories {
			if c.Type == typ && strings.EqualFold(c.Name, name) {
				return c.ID
			}
		}
	}
	return 0
}

func containsWord(text, word string) bool {
	idx := 0
	for {
		i := strings.Index(text[idx:], word)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(word)
		beforeOK := start == 0 || !isWordChar(text[start-1])
		afterOK := end == len(text) || !isWordChar(text[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordChar(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}
