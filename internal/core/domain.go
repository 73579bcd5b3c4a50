package core

import (
	"strings"
	"time"
)

const (
	Expense TxType = "expense"
	Income  TxType = "income"
)

// DefaultIcon is assigned to categories created without an explicit icon.
const DefaultIcon = "ri-file-list-line"

// SettingsID is the id of the singleton settings record.
const SettingsID int64 = 1

type (
	TxType string

	Category struct {
		ID          int64   `json:"id"`
		Name        string  `json:"name"`
		Type        TxType  `json:"type"`
		Description *string `json:"description"`
		Icon        string  `json:"icon"`
		Color       *string `json:"color"`
	}

	Transaction struct {
		ID          int64     `json:"id"`
		Type        TxType    `json:"type"`
		Amount      float64   `json:"amount"`
		Description string    `json:"description"`
		CategoryID  int64     `json:"categoryId"`
		Date        time.Time `json:"date"`
	}

	Settings struct {
		ID                 int64  `json:"id"`
		Currency           string `json:"currency"`
		DarkMode           bool   `json:"darkMode"`
		FingerprintEnabled bool   `json:"fingerprintEnabled"`
		PIN                string `json:"pin"`
		ReminderEnabled    bool   `json:"reminderEnabled"`
		ReminderTime       string `json:"reminderTime"`
	}

	Reminder struct {
		ID            int64      `json:"id"`
		Title         string     `json:"title"`
		Message       string     `json:"message"`
		Time          string     `json:"time"`
		IsActive      bool       `json:"isActive"`
		LastTriggered *time.Time `json:"lastTriggered"`
	}
)

func (t TxType) Valid() bool {
	return t == Expense || t == Income
}

// NewCategory is a category creation payload; the id is assigned by storage.
type NewCategory struct {
	Name        string  `json:"name"`
	Type        TxType  `json:"type"`
	Description *string `json:"description"`
	Icon        string  `json:"icon"`
	Color       *string `json:"color"`
}

func (n NewCategory) Validate() error {
	var fields []string
	if strings.TrimSpace(n.Name) == "" {
		fields = append(fields, "name")
	}
	if !n.Type.Valid() {
		fields = append(fields, "type")
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// NewTransaction is a transaction creation payload. A zero Date means
// "now at creation time".
type NewTransaction struct {
	Type        TxType    `json:"type"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description"`
	CategoryID  int64     `json:"categoryId"`
	Date        time.Time `json:"date"`
}

func (n NewTransaction) Validate() error {
	var fields []string
	if !n.Type.Valid() {
		fields = append(fields, "type")
	}
	if n.Amount <= 0 {
		fields = append(fields, "amount")
	}
	if strings.TrimSpace(n.Description) == "" {
		fields = append(fields, "description")
	}
	if n.CategoryID <= 0 {
		fields = append(fields, "categoryId")
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// NewReminder is a reminder creation payload.
type NewReminder struct {
	Title    string `json:"title"`
	Message  string `json:"message"`
	Time     string `json:"time"`
	IsActive bool   `json:"isActive"`
}

func (n NewReminder) Validate() error {
	var fields []string
	if strings.TrimSpace(n.Title) == "" {
		fields = append(fields, "title")
	}
	if strings.TrimSpace(n.Message) == "" {
		fields = append(fields, "message")
	}
	if !validClockTime(n.Time) {
		fields = append(fields, "time")
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// validClockTime reports whether s is a wall-clock time in HH:MM form.
func validClockTime(s string) bool {
	_, err := time.Parse("15:04", s)
	return err == nil
}
