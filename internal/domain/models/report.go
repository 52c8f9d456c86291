package models

import "time"

// FinanceReport is the weekly per-user summary stored in MongoDB and appended to the
// reporting sheet. Amounts are two-place decimal strings.
type FinanceReport struct {
	UserID      int64        `bson:"user_id" json:"user_id"`
	PeriodStart time.Time    `bson:"period_start" json:"period_start"`
	PeriodEnd   time.Time    `bson:"period_end" json:"period_end"`
	Income      string       `bson:"income" json:"income"`
	Expense     string       `bson:"expense" json:"expense"`
	Profit      string       `bson:"profit" json:"profit"`
	Entries     int          `bson:"entries" json:"entries"`
	ByCategory  []ReportLine `bson:"by_category" json:"by_category"`
	Animals     AnimalStats  `bson:"animals" json:"animals"`
	CreatedAt   time.Time    `bson:"created_at" json:"created_at"`
}

// ReportLine is one category row of a FinanceReport.
type ReportLine struct {
	Category Category    `bson:"category" json:"category"`
	Kind     FinanceKind `bson:"type" json:"type"`
	Amount   string      `bson:"amount" json:"amount"`
}
