package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// FinanceKind separates income from expense entries.
type FinanceKind string

const (
	FinanceIncome  FinanceKind = "income"
	FinanceExpense FinanceKind = "expense"
)

// Valid reports whether k is a known kind.
func (k FinanceKind) Valid() bool {
	return k == FinanceIncome || k == FinanceExpense
}

// Category tags a ledger entry with what the money was spent on or earned from.
type Category string

const (
	CategoryAnimalPurchase Category = "animal_purchase"
	CategoryAnimalSale     Category = "animal_sale"
	CategoryFeedPurchase   Category = "feed_purchase"
	CategoryMedicine       Category = "medicine"
	CategoryEquipment      Category = "equipment"
	CategoryLabor          Category = "labor"
	CategoryTransport      Category = "transport"
	CategoryOther          Category = "other"
)

// Categories lists every known category in display order.
var Categories = []Category{
	CategoryAnimalPurchase,
	CategoryAnimalSale,
	CategoryFeedPurchase,
	CategoryMedicine,
	CategoryEquipment,
	CategoryLabor,
	CategoryTransport,
	CategoryOther,
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Derived reports whether entries in this category are only ever produced by a
// domain record and must not be created or removed by hand.
func (c Category) Derived() bool {
	switch c {
	case CategoryAnimalPurchase, CategoryAnimalSale, CategoryFeedPurchase, CategoryMedicine:
		return true
	}
	return false
}

// SourceKind names the kind of domain record that produced a ledger entry.
type SourceKind string

const (
	SourceAnimal      SourceKind = "animal"
	SourceFeed        SourceKind = "feed"
	SourceVaccination SourceKind = "vaccination"
	SourceSale        SourceKind = "sale"
)

// Valid reports whether k is a known source kind.
func (k SourceKind) Valid() bool {
	switch k {
	case SourceAnimal, SourceFeed, SourceVaccination, SourceSale:
		return true
	}
	return false
}

// Source identifies the domain record a ledger entry was derived from.
type Source struct {
	Kind SourceKind `json:"kind"`
	ID   int64      `json:"id"`
}

func (s Source) String() string {
	return fmt.Sprintf("%s:%d", s.Kind, s.ID)
}

// FinanceRecord is a single ledger entry. Source is nil for manual entries.
type FinanceRecord struct {
	ID          int64           `json:"id"`
	UserID      int64           `json:"user_id"`
	Kind        FinanceKind     `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Category    Category        `json:"category"`
	Description string          `json:"description"`
	Date        Date            `json:"date"`
	Source      *Source         `json:"source,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Signed returns the amount with expenses negated.
func (r FinanceRecord) Signed() decimal.Decimal {
	if r.Kind == FinanceExpense {
		return r.Amount.Neg()
	}
	return r.Amount
}

// CheckFinanceRecord applies the ledger's own rules: a known kind and a
// non-negative amount.
func CheckFinanceRecord(r FinanceRecord) error {
	if !r.Kind.Valid() {
		return &ValidationError{Field: "type", Message: fmt.Sprintf("unknown kind %q", r.Kind)}
	}
	if r.Amount.IsNegative() {
		return &ValidationError{Field: "amount", Message: "must not be negative"}
	}
	if r.Source != nil && !r.Source.Kind.Valid() {
		return &ValidationError{Field: "source", Message: fmt.Sprintf("unknown source kind %q", r.Source.Kind)}
	}
	return nil
}

// NewFinanceEntry is the input accepted for a manual ledger entry.
type NewFinanceEntry struct {
	Kind        FinanceKind      `json:"type" validate:"required,oneof=income expense"`
	Amount      *decimal.Decimal `json:"amount" validate:"required,gte=0"`
	Category    Category         `json:"category" validate:"required,oneof=equipment labor transport other"`
	Description string           `json:"description" validate:"max=512"`
	Date        Date             `json:"date" validate:"required"`
}
