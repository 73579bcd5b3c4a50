package core

import (
	"strings"
	"time"
)

// Patch types carry partial updates. A nil field keeps the prior value, so a
// shallow merge can tell "absent" apart from a zero value. Apply never
// touches the record id.

type CategoryPatch struct {
	Name        *string `json:"name"`
	Type        *TxType `json:"type"`
	Description *string `json:"description"`
	Icon        *string `json:"icon"`
	Color       *string `json:"color"`
}

func (p CategoryPatch) Validate() error {
	var fields []string
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		fields = append(fields, "name")
	}
	if p.Type != nil && !p.Type.Valid() {
		fields = append(fields, "type")
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func (c Category) Apply(p CategoryPatch) Category {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Type != nil {
		c.Type = *p.Type
	}
	if p.Description != nil {
		c.Description = p.Description
	}
	if p.Icon != nil {
		c.Icon = *p.Icon
	}
	if p.Color != nil {
		c.Color = p.Color
	}
	return c
}

type TransactionPatch struct {
	Type        *TxType    `json:"type"`
	Amount      *float64   `json:"amount"`
	Description *string    `json:"description"`
	CategoryID  *int64     `json:"categoryId"`
	Date        *time.Time `json:"date"`
}

func (p TransactionPatch) Validate() error {
	var fields []string
	if p.Type != nil && !p.Type.Valid() {
		fields = append(fields, "type")
	}
	if p.Amount != nil && *p.Amount <= 0 {
		fields = append(fields, "amount")
	}
	if p.Description != nil && strings.TrimSpace(*p.Description) == "" {
		fields = append(fields, "description")
	}
	if p.CategoryID != nil && *p.CategoryID <= 0 {
		fields = append(fields, "categoryId")
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func (t Transaction) Apply(p TransactionPatch) Transaction {
	if p.Type != nil {
		t.Type = *p.Type
	}
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.CategoryID != nil {
		t.CategoryID = *p.CategoryID
	}
	if p.Date != nil {
		t.Date = *p.Date
	}
	return t
}

type SettingsPatch struct {
	Currency           *string `json:"currency"`
	DarkMode           *bool   `json:"darkMode"`
	FingerprintEnabled *bool   `json:"fingerprintEnabled"`
	PIN                *string `json:"pin"`
	ReminderEnabled    *bool   `json:"reminderEnabled"`
	ReminderTime       *string `json:"reminderTime"`
}

func (p SettingsPatch) Validate() error {
	var fields []string
	if p.Currency != nil && strings.TrimSpace(*p.Currency) == "" {
		fields = append(fields, "currency")
	}
	if p.PIN != nil && !validPIN(*p.PIN) {
		fields = append(fields, "pin")
	}
	if p.ReminderTime != nil && !validClockTime(*p.ReminderTime) {
		fields = append(fields, "reminderTime")
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func (s Settings) Apply(p SettingsPatch) Settings {
	if p.Currency != nil {
		s.Currency = *p.Currency
	}
	if p.DarkMode != nil {
		s.DarkMode = *p.DarkMode
	}
	if p.FingerprintEnabled != nil {
		s.FingerprintEnabled = *p.FingerprintEnabled
	}
	if p.PIN != nil {
		s.PIN = *p.PIN
	}
	if p.ReminderEnabled != nil {
		s.ReminderEnabled = *p.ReminderEnabled
	}
	if p.ReminderTime != nil {
		s.ReminderTime = *p.ReminderTime
	}
	return s
}

type ReminderPatch struct {
	Title         *string    `json:"title"`
	Message       *string    `json:"message"`
	Time          *string    `json:"time"`
	IsActive      *bool      `json:"isActive"`
	LastTriggered *time.Time `json:"lastTriggered"`
}

func (p ReminderPatch) Validate() error {
	var fields []string
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		fields = append(fields, "title")
	}
	if p.Message != nil && strings.TrimSpace(*p.Message) == "" {
		fields = append(fields, "message")
	}
	if p.Time != nil && !validClockTime(*p.Time) {
		fields = append(fields, "time")
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func (r Reminder) Apply(p ReminderPatch) Reminder {
	if p.Title != nil {
		r.Title = *p.Title
	}
	if p.Message != nil {
		r.Message = *p.Message
	}
	if p.Time != nil {
		r.Time = *p.Time
	}
	if p.IsActive != nil {
		r.IsActive = *p.IsActive
	}
	if p.LastTriggered != nil {
		r.LastTriggered = p.LastTriggered
	}
	return r
}

// validPIN reports whether s is a 4-digit PIN.
func validPIN(s string) bool {
	if len(s) != 4 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
