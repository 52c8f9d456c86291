package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentType enumerates how a buyer settled a sale.
type PaymentType string

const (
	PaymentCash     PaymentType = "cash"
	PaymentCard     PaymentType = "card"
	PaymentTransfer PaymentType = "transfer"
)

// Sale records the sale of one animal. Profit is sale price minus the animal's
// purchase price, fixed when the sale is recorded.
type Sale struct {
	ID          int64           `json:"id"`
	UserID      int64           `json:"user_id"`
	AnimalID    int64           `json:"animal_id"`
	ButcherID   *int64          `json:"butcher_id,omitempty"`
	SaleDate    Date            `json:"sale_date"`
	SalePrice   decimal.Decimal `json:"sale_price"`
	Profit      decimal.Decimal `json:"profit"`
	BuyerName   string          `json:"buyer_name"`
	BuyerPhone  string          `json:"buyer_phone"`
	PaymentType PaymentType     `json:"payment_type"`
	CreatedAt   time.Time       `json:"created_at"`
}

// NewSale is the input accepted when selling an animal.
type NewSale struct {
	AnimalID    int64            `json:"animal_id" validate:"required,gt=0"`
	ButcherID   *int64           `json:"butcher_id" validate:"omitempty,gt=0"`
	SaleDate    Date             `json:"sale_date" validate:"required"`
	SalePrice   *decimal.Decimal `json:"sale_price" validate:"required,gte=0"`
	BuyerName   string           `json:"buyer_name" validate:"max=128"`
	BuyerPhone  string           `json:"buyer_phone" validate:"max=32"`
	PaymentType PaymentType      `json:"payment_type" validate:"omitempty,oneof=cash card transfer"`
}

// SaleDetail joins a sale with its animal and butcher.
type SaleDetail struct {
	Sale
	AnimalType    string          `json:"animal_type"`
	AnimalBreed   string          `json:"breed"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	ButcherName   string          `json:"butcher_name,omitempty"`
}
