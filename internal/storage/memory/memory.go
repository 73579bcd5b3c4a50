// Package memory is the map-backed storage engine. State lives for the
// process lifetime only; every instance starts from the default seed, which
// makes it the backend of choice for tests and local runs.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"kharcha/internal/core"
)

type Store struct {
	mu sync.Mutex

	categories   map[int64]core.Category
	transactions map[int64]core.Transaction
	settings     map[int64]core.Settings
	reminders    map[int64]core.Reminder

	// Per-collection counters; ids are never reused after deletes.
	categoryID    int64
	transactionID int64
	reminderID    int64

	now func() time.Time
}

// New returns a store seeded with the 5 default categories, the settings
// singleton and one default daily reminder.
func New() *Store {
	s := &Store{
		categories:   make(map[int64]core.Category),
		transactions: make(map[int64]core.Transaction),
		settings:     make(map[int64]core.Settings),
		reminders:    make(map[int64]core.Reminder),
		now:          time.Now,
	}
	s.seed()
	return s
}

func (s *Store) seed() {
	defaults := []core.NewCategory{
		{Name: "Groceries", Type: core.Expense, Icon: "ri-shopping-basket-2-line", Description: strptr("Essential items")},
		{Name: "Transport", Type: core.Expense, Icon: "ri-car-line", Description: strptr("Fuel, fare, maintenance")},
		{Name: "Dining", Type: core.Expense, Icon: "ri-restaurant-line", Description: strptr("Restaurants, takeout")},
		{Name: "Salary", Type: core.Income, Icon: "ri-briefcase-line", Description: strptr("Regular employment")},
		{Name: "Investments", Type: core.Income, Icon: "ri-bank-line", Description: strptr("Returns & dividends")},
	}
	for _, c := range defaults {
		s.categoryID++
		s.categories[s.categoryID] = core.Category{
			ID:          s.categoryID,
			Name:        c.Name,
			Type:        c.Type,
			Description: c.Description,
			Icon:        c.Icon,
		}
	}

	s.settings[core.SettingsID] = core.Settings{
		ID:                 core.SettingsID,
		Currency:           "PKR",
		DarkMode:           false,
		FingerprintEnabled: true,
		PIN:                "1234",
		ReminderEnabled:    true,
		ReminderTime:       "20:00",
	}

	s.reminderID++
	s.reminders[s.reminderID] = core.Reminder{
		ID:       s.reminderID,
		Title:    "Daily expense check",
		Message:  "Don't forget to record today's expenses",
		Time:     "20:00",
		IsActive: true,
	}
}

// Categories

func (s *Store) ListCategories(_ context.Context) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) GetCategory(_ context.Context, id int64) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[id]
	if !ok {
		return core.Category{}, core.NotFound("category", id)
	}
	return c, nil
}

func (s *Store) CreateCategory(_ context.Context, n core.NewCategory) (core.Category, error) {
	if err := n.Validate(); err != nil {
		return core.Category{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	icon := n.Icon
	if icon == "" {
		icon = core.DefaultIcon
	}
	s.categoryID++
	c := core.Category{
		ID:          s.categoryID,
		Name:        n.Name,
		Type:        n.Type,
		Description: n.Description,
		Icon:        icon,
		Color:       n.Color,
	}
	s.categories[c.ID] = c
	return c, nil
}

func (s *Store) UpdateCategory(_ context.Context, id int64, p core.CategoryPatch) (core.Category, error) {
	if err := p.Validate(); err != nil {
		return core.Category{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.categories[id]
	if !ok {
		return core.Category{}, core.NotFound("category", id)
	}
	c = c.Apply(p)
	s.categories[id] = c
	return c, nil
}

// DeleteCategory removes the category only. Transactions referencing it keep
// their categoryId; there is no cascade.
func (s *Store) DeleteCategory(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[id]; !ok {
		return core.NotFound("category", id)
	}
	delete(s.categories, id)
	return nil
}

// Transactions

func (s *Store) ListTransactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, 0, len(s.transactions))
	for _, t := range s.transactions {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) GetTransaction(_ context.Context, id int64) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transactions[id]
	if !ok {
		return core.Transaction{}, core.NotFound("transaction", id)
	}
	return t, nil
}

func (s *Store) CreateTransaction(_ context.Context, n core.NewTransaction) (core.Transaction, error) {
	if err := n.Validate(); err != nil {
		return core.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.categories[n.CategoryID]; !ok {
		return core.Transaction{}, &core.ConsistencyError{Reason: "invalid category id"}
	}

	date := n.Date
	if date.IsZero() {
		date = s.now()
	}
	s.transactionID++
	t := core.Transaction{
		ID:          s.transactionID,
		Type:        n.Type,
		Amount:      n.Amount,
		Description: n.Description,
		CategoryID:  n.CategoryID,
		Date:        date,
	}
	s.transactions[t.ID] = t
	return t, nil
}

func (s *Store) UpdateTransaction(_ context.Context, id int64, p core.TransactionPatch) (core.Transaction, error) {
	if err := p.Validate(); err != nil {
		return core.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.transactions[id]
	if !ok {
		return core.Transaction{}, core.NotFound("transaction", id)
	}
	if p.CategoryID != nil {
		if _, ok := s.categories[*p.CategoryID]; !ok {
			return core.Transaction{}, &core.ConsistencyError{Reason: "invalid category id"}
		}
	}
	t = t.Apply(p)
	s.transactions[id] = t
	return t, nil
}

func (s *Store) DeleteTransaction(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.transactions[id]; !ok {
		return core.NotFound("transaction", id)
	}
	delete(s.transactions, id)
	return nil
}

// Settings

func (s *Store) GetSettings(_ context.Context) (core.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.settings[core.SettingsID]
	if !ok {
		return core.Settings{}, core.NotFound("settings", core.SettingsID)
	}
	return st, nil
}

func (s *Store) UpdateSettings(_ context.Context, p core.SettingsPatch) (core.Settings, error) {
	if err := p.Validate(); err != nil {
		return core.Settings{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.settings[core.SettingsID]
	if !ok {
		return core.Settings{}, core.NotFound("settings", core.SettingsID)
	}
	st = st.Apply(p)
	s.settings[core.SettingsID] = st
	return st, nil
}

// Reminders

func (s *Store) ListReminders(_ context.Context) ([]core.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Reminder, 0, len(s.reminders))
	for _, r := range s.reminders {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) GetReminder(_ context.Context, id int64) (core.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reminders[id]
	if !ok {
		return core.Reminder{}, core.NotFound("reminder", id)
	}
	return r, nil
}

func (s *Store) CreateReminder(_ context.Context, n core.NewReminder) (core.Reminder, error) {
	if err := n.Validate(); err != nil {
		return core.Reminder{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reminderID++
	r := core.Reminder{
		ID:       s.reminderID,
		Title:    n.Title,
		Message:  n.Message,
		Time:     n.Time,
		IsActive: n.IsActive,
	}
	s.reminders[r.ID] = r
	return r, nil
}

func (s *Store) UpdateReminder(_ context.Context, id int64, p core.ReminderPatch) (core.Reminder, error) {
	if err := p.Validate(); err != nil {
		return core.Reminder{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reminders[id]
	if !ok {
		return core.Reminder{}, core.NotFound("reminder", id)
	}
	r = r.Apply(p)
	s.reminders[id] = r
	return r, nil
}

func (s *Store) DeleteReminder(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reminders[id]; !ok {
		return core.NotFound("reminder", id)
	}
	delete(s.reminders, id)
	return nil
}

func strptr(s string) *string { return &s }
