package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Feed is a feed purchase. TotalCost is fixed when the purchase is recorded.
type Feed struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"user_id"`
	Name      string          `json:"name"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	TotalCost decimal.Decimal `json:"total_cost"`
	Supplier  string          `json:"supplier"`
	FeedDate  Date            `json:"feed_date"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewFeed is the input accepted when recording a feed purchase.
type NewFeed struct {
	Name      string           `json:"name" validate:"required,max=128"`
	Quantity  *decimal.Decimal `json:"quantity" validate:"required,gte=0"`
	UnitPrice *decimal.Decimal `json:"unit_price" validate:"required,gte=0"`
	Supplier  string           `json:"supplier" validate:"max=128"`
	FeedDate  Date             `json:"feed_date" validate:"required"`
}

// FeedUpdate lists the feed fields a caller may change. Edits never touch the
// ledger entry or the stored total cost.
type FeedUpdate struct {
	Name      *string          `json:"name" validate:"omitempty,min=1,max=128"`
	Quantity  *decimal.Decimal `json:"quantity" validate:"omitempty,gte=0"`
	UnitPrice *decimal.Decimal `json:"unit_price" validate:"omitempty,gte=0"`
	Supplier  *string          `json:"supplier" validate:"omitempty,max=128"`
	FeedDate  *Date            `json:"feed_date"`
}

// Apply copies the supplied fields onto f.
func (u FeedUpdate) Apply(f *Feed) {
	if u.Name != nil {
		f.Name = *u.Name
	}
	if u.Quantity != nil {
		f.Quantity = *u.Quantity
	}
	if u.UnitPrice != nil {
		f.UnitPrice = *u.UnitPrice
	}
	if u.Supplier != nil {
		f.Supplier = *u.Supplier
	}
	if u.FeedDate != nil {
		f.FeedDate = *u.FeedDate
	}
}
