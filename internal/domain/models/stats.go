package models

import "github.com/shopspring/decimal"

// AnimalStats counts a user's animals by status.
type AnimalStats struct {
	Total    int `json:"total"`
	Active   int `json:"active"`
	Sold     int `json:"sold"`
	Deceased int `json:"deceased"`
}

// FinanceStats sums a user's ledger. Profit may be negative.
type FinanceStats struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Profit  decimal.Decimal `json:"profit"`
}

// MonthlyTotals is one month of the income/expense trend, keyed as YYYY-MM.
type MonthlyTotals struct {
	Month   string          `json:"month"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

// CategoryTotal is the summed amount of one category over a period.
type CategoryTotal struct {
	Category Category        `json:"category"`
	Kind     FinanceKind     `json:"type"`
	Amount   decimal.Decimal `json:"amount"`
}

// Dashboard bundles the figures shown on a user's overview.
type Dashboard struct {
	Animals       AnimalStats     `json:"animals"`
	Finance       FinanceStats    `json:"finance"`
	AnimalsByType []TypeCount     `json:"animals_by_type"`
	MonthlyTrend  []MonthlyTotals `json:"monthly_trend"`
}
