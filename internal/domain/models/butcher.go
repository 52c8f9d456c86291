package models

import (
	"strings"
	"time"
)

// Butcher is a contact shared by every user of the installation.
type Butcher struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Phone      string    `json:"phone"`
	Address    string    `json:"address"`
	Experience *int      `json:"experience,omitempty"`
	Notes      string    `json:"notes"`
	CreatedAt  time.Time `json:"created_at"`
}

// Matches reports whether the name, phone or address contains search, ignoring case.
func (b Butcher) Matches(search string) bool {
	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return true
	}
	return strings.Contains(strings.ToLower(b.Name), search) ||
		strings.Contains(strings.ToLower(b.Phone), search) ||
		strings.Contains(strings.ToLower(b.Address), search)
}

// NewButcher is the input accepted when registering a butcher.
type NewButcher struct {
	Name       string `json:"name" validate:"required,max=128"`
	Phone      string `json:"phone" validate:"required,max=32"`
	Address    string `json:"address" validate:"max=256"`
	Experience *int   `json:"experience" validate:"omitempty,gte=0,lte=80"`
	Notes      string `json:"notes" validate:"max=1024"`
}

// ButcherUpdate lists the butcher fields a caller may change.
type ButcherUpdate struct {
	Name       *string `json:"name" validate:"omitempty,min=1,max=128"`
	Phone      *string `json:"phone" validate:"omitempty,min=1,max=32"`
	Address    *string `json:"address" validate:"omitempty,max=256"`
	Experience *int    `json:"experience" validate:"omitempty,gte=0,lte=80"`
	Notes      *string `json:"notes" validate:"omitempty,max=1024"`
}

// Apply copies the supplied fields onto b.
func (u ButcherUpdate) Apply(b *Butcher) {
	if u.Name != nil {
		b.Name = *u.Name
	}
	if u.Phone != nil {
		b.Phone = *u.Phone
	}
	if u.Address != nil {
		b.Address = *u.Address
	}
	if u.Experience != nil {
		exp := *u.Experience
		b.Experience = &exp
	}
	if u.Notes != nil {
		b.Notes = *u.Notes
	}
}
