package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Vaccination records a treatment given to an animal.
type Vaccination struct {
	ID              int64            `json:"id"`
	UserID          int64            `json:"user_id"`
	AnimalID        int64            `json:"animal_id"`
	VaccineName     string           `json:"vaccine_name"`
	VaccinationDate Date             `json:"vaccination_date"`
	NextDate        *Date            `json:"next_date,omitempty"`
	Veterinarian    string           `json:"veterinarian"`
	Cost            *decimal.Decimal `json:"cost,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
}

// HasCost reports whether the vaccination carries a positive cost.
func (v Vaccination) HasCost() bool {
	return v.Cost != nil && v.Cost.IsPositive()
}

// NewVaccination is the input accepted when recording a vaccination.
type NewVaccination struct {
	AnimalID        int64            `json:"animal_id" validate:"required,gt=0"`
	VaccineName     string           `json:"vaccine_name" validate:"required,max=128"`
	VaccinationDate Date             `json:"vaccination_date" validate:"required"`
	NextDate        *Date            `json:"next_date"`
	Veterinarian    string           `json:"veterinarian" validate:"max=128"`
	Cost            *decimal.Decimal `json:"cost" validate:"omitempty,gte=0"`
}

// VaccinationUpdate lists the vaccination fields a caller may change. Edits never
// touch the ledger.
type VaccinationUpdate struct {
	VaccineName     *string          `json:"vaccine_name" validate:"omitempty,min=1,max=128"`
	VaccinationDate *Date            `json:"vaccination_date"`
	NextDate        *Date            `json:"next_date"`
	Veterinarian    *string          `json:"veterinarian" validate:"omitempty,max=128"`
	Cost            *decimal.Decimal `json:"cost" validate:"omitempty,gte=0"`
}

// Apply copies the supplied fields onto v.
func (u VaccinationUpdate) Apply(v *Vaccination) {
	if u.VaccineName != nil {
		v.VaccineName = *u.VaccineName
	}
	if u.VaccinationDate != nil {
		v.VaccinationDate = *u.VaccinationDate
	}
	if u.NextDate != nil {
		// An empty next_date clears the reminder.
		v.NextDate = OptionalDate(u.NextDate)
	}
	if u.Veterinarian != nil {
		v.Veterinarian = *u.Veterinarian
	}
	if u.Cost != nil {
		v.Cost = MoneyPtr(*u.Cost)
	}
}

// VaccinationDetail joins a vaccination with the animal it was given to.
type VaccinationDetail struct {
	Vaccination
	AnimalType  string `json:"animal_type"`
	AnimalBreed string `json:"breed"`
}
