package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AnimalStatus enumerates the lifecycle states of an animal.
type AnimalStatus string

const (
	AnimalActive   AnimalStatus = "active"
	AnimalSold     AnimalStatus = "sold"
	AnimalDeceased AnimalStatus = "deceased"
)

// Valid reports whether s is a known status.
func (s AnimalStatus) Valid() bool {
	switch s {
	case AnimalActive, AnimalSold, AnimalDeceased:
		return true
	}
	return false
}

// Animal is a purchased head of livestock owned by one user.
type Animal struct {
	ID            int64            `json:"id"`
	UserID        int64            `json:"user_id"`
	Type          string           `json:"type"`
	Breed         string           `json:"breed"`
	Gender        string           `json:"gender"`
	BirthDate     *Date            `json:"birth_date,omitempty"`
	Weight        *decimal.Decimal `json:"weight,omitempty"`
	PurchasePrice decimal.Decimal  `json:"purchase_price"`
	PurchaseDate  Date             `json:"purchase_date"`
	Status        AnimalStatus     `json:"status"`
	CreatedAt     time.Time        `json:"created_at"`
}

// NewAnimal is the input accepted when recording an animal purchase.
type NewAnimal struct {
	Type          string           `json:"type" validate:"required,max=64"`
	Breed         string           `json:"breed" validate:"max=64"`
	Gender        string           `json:"gender" validate:"omitempty,oneof=male female"`
	BirthDate     *Date            `json:"birth_date"`
	Weight        *decimal.Decimal `json:"weight" validate:"omitempty,gte=0"`
	PurchasePrice *decimal.Decimal `json:"purchase_price" validate:"required,gte=0"`
	PurchaseDate  Date             `json:"purchase_date" validate:"required"`
}

// AnimalUpdate lists the animal fields a caller may change. Nil fields are left
// untouched. Purchase price and date are fixed once the purchase is in the ledger.
type AnimalUpdate struct {
	Type      *string          `json:"type" validate:"omitempty,min=1,max=64"`
	Breed     *string          `json:"breed" validate:"omitempty,max=64"`
	Gender    *string          `json:"gender" validate:"omitempty,oneof=male female"`
	BirthDate *Date            `json:"birth_date"`
	Weight    *decimal.Decimal `json:"weight" validate:"omitempty,gte=0"`
	Status    *AnimalStatus    `json:"status" validate:"omitempty,oneof=active deceased"`
}

// Apply copies the supplied fields onto a.
func (u AnimalUpdate) Apply(a *Animal) {
	if u.Type != nil {
		a.Type = *u.Type
	}
	if u.Breed != nil {
		a.Breed = *u.Breed
	}
	if u.Gender != nil {
		a.Gender = *u.Gender
	}
	if u.BirthDate != nil {
		a.BirthDate = OptionalDate(u.BirthDate)
	}
	if u.Weight != nil {
		a.Weight = MoneyPtr(*u.Weight)
	}
	if u.Status != nil {
		a.Status = *u.Status
	}
}

// TypeCount is the number of animals of one type.
type TypeCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}
