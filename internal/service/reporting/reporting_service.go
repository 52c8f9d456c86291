package reporting

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/repository"
)

const (
	monthLayout       = "2006-01"
	defaultTrendMonth = 6
)

// Service computes per-user statistics from the domain and ledger stores. Nothing
// is cached: every call reads the current state.
type Service struct {
	repo   repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires a new reporting service instance.
func NewService(repo repository.Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// FinanceFilter narrows ListFinance. Zero fields do not filter.
type FinanceFilter struct {
	Kind     models.FinanceKind
	Category models.Category
	From     models.Date
	To       models.Date
	Limit    int
}

// Match reports whether r passes the filter's field conditions. Limit is applied by
// the caller.
func (f FinanceFilter) Match(r models.FinanceRecord) bool {
	if f.Kind != "" && r.Kind != f.Kind {
		return false
	}
	if f.Category != "" && r.Category != f.Category {
		return false
	}
	if !f.From.IsZero() && r.Date.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && r.Date.After(f.To) {
		return false
	}
	return true
}

// FinanceStats sums the user's income and expenses. Unknown users get zeros.
func (s *Service) FinanceStats(ctx context.Context, userID int64) (models.FinanceStats, error) {
	var stats models.FinanceStats
	err := s.repo.View(ctx, userID, func(r repository.Reader) error {
		var err error
		stats, err = financeStats(ctx, r)
		return err
	})
	if err != nil {
		return models.FinanceStats{}, fmt.Errorf("finance stats: %w", err)
	}
	return stats, nil
}

// AnimalStats counts the user's animals by status.
func (s *Service) AnimalStats(ctx context.Context, userID int64) (models.AnimalStats, error) {
	var stats models.AnimalStats
	err := s.repo.View(ctx, userID, func(r repository.Reader) error {
		var err error
		stats, err = animalStats(ctx, r)
		return err
	})
	if err != nil {
		return models.AnimalStats{}, fmt.Errorf("animal stats: %w", err)
	}
	return stats, nil
}

// ListFinance returns the user's ledger, newest first.
func (s *Service) ListFinance(ctx context.Context, userID int64, filter FinanceFilter) ([]models.FinanceRecord, error) {
	if filter.Kind != "" && !filter.Kind.Valid() {
		return nil, &models.ValidationError{Field: "type", Message: "must be one of: income, expense"}
	}
	if filter.Category != "" && !filter.Category.Valid() {
		return nil, &models.ValidationError{Field: "category", Message: fmt.Sprintf("unknown category %q", filter.Category)}
	}

	out := []models.FinanceRecord{}
	err := s.repo.View(ctx, userID, func(r repository.Reader) error {
		records, err := r.ListFinance(ctx)
		if err != nil {
			return err
		}
		for _, rec := range records {
			if !filter.Match(rec) {
				continue
			}
			out = append(out, rec)
			if filter.Limit > 0 && len(out) == filter.Limit {
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list finance: %w", err)
	}
	return out, nil
}

// AnimalsByType counts the user's active animals per type, largest group first.
func (s *Service) AnimalsByType(ctx context.Context, userID int64) ([]models.TypeCount, error) {
	var out []models.TypeCount
	err := s.repo.View(ctx, userID, func(r repository.Reader) error {
		var err error
		out, err = animalsByType(ctx, r)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("animals by type: %w", err)
	}
	return out, nil
}

// MonthlyTrend returns income and expense per calendar month for the last months
// months, oldest first. Months without entries are present with zero totals.
func (s *Service) MonthlyTrend(ctx context.Context, userID int64, months int) ([]models.MonthlyTotals, error) {
	var out []models.MonthlyTotals
	err := s.repo.View(ctx, userID, func(r repository.Reader) error {
		var err error
		out, err = monthlyTrend(ctx, r, s.now(), months)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("monthly trend: %w", err)
	}
	return out, nil
}

// CategoryTotals sums the user's ledger per category over [from, to]. Zero dates
// leave that side open.
func (s *Service) CategoryTotals(ctx context.Context, userID int64, from, to models.Date) ([]models.CategoryTotal, error) {
	var out []models.CategoryTotal
	err := s.repo.View(ctx, userID, func(r repository.Reader) error {
		records, err := r.ListFinance(ctx)
		if err != nil {
			return err
		}
		out = categoryTotals(records, FinanceFilter{From: from, To: to})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("category totals: %w", err)
	}
	return out, nil
}

// Snapshot gathers the dashboard figures from one consistent view of the user's
// data.
func (s *Service) Snapshot(ctx context.Context, userID int64) (models.Dashboard, error) {
	var dash models.Dashboard
	err := s.repo.View(ctx, userID, func(r repository.Reader) error {
		var err error
		if dash.Animals, err = animalStats(ctx, r); err != nil {
			return err
		}
		if dash.Finance, err = financeStats(ctx, r); err != nil {
			return err
		}
		if dash.AnimalsByType, err = animalsByType(ctx, r); err != nil {
			return err
		}
		dash.MonthlyTrend, err = monthlyTrend(ctx, r, s.now(), defaultTrendMonth)
		return err
	})
	if err != nil {
		return models.Dashboard{}, fmt.Errorf("dashboard: %w", err)
	}
	return dash, nil
}

func financeStats(ctx context.Context, r repository.Reader) (models.FinanceStats, error) {
	income, err := r.SumFinance(ctx, models.FinanceIncome)
	if err != nil {
		return models.FinanceStats{}, err
	}
	expense, err := r.SumFinance(ctx, models.FinanceExpense)
	if err != nil {
		return models.FinanceStats{}, err
	}
	return models.FinanceStats{
		Income:  income,
		Expense: expense,
		Profit:  income.Sub(expense),
	}, nil
}

func animalStats(ctx context.Context, r repository.Reader) (models.AnimalStats, error) {
	animals, err := r.ListAnimals(ctx)
	if err != nil {
		return models.AnimalStats{}, err
	}
	var stats models.AnimalStats
	for _, a := range animals {
		stats.Total++
		switch a.Status {
		case models.AnimalActive:
			stats.Active++
		case models.AnimalSold:
			stats.Sold++
		case models.AnimalDeceased:
			stats.Deceased++
		}
	}
	return stats, nil
}

func animalsByType(ctx context.Context, r repository.Reader) ([]models.TypeCount, error) {
	animals, err := r.ListAnimals(ctx)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for _, a := range animals {
		if a.Status == models.AnimalActive {
			counts[a.Type]++
		}
	}
	out := make([]models.TypeCount, 0, len(counts))
	for t, n := range counts {
		out = append(out, models.TypeCount{Type: t, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Type < out[j].Type
	})
	return out, nil
}

func monthlyTrend(ctx context.Context, r repository.Reader, now time.Time, months int) ([]models.MonthlyTotals, error) {
	if months <= 0 {
		months = defaultTrendMonth
	}
	records, err := r.ListFinance(ctx)
	if err != nil {
		return nil, err
	}

	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(months - 1), 0)
	out := make([]models.MonthlyTotals, months)
	index := make(map[string]int, months)
	for i := range out {
		key := first.AddDate(0, i, 0).Format(monthLayout)
		out[i] = models.MonthlyTotals{Month: key, Income: decimal.Zero, Expense: decimal.Zero}
		index[key] = i
	}

	for _, rec := range records {
		i, ok := index[rec.Date.Format(monthLayout)]
		if !ok {
			continue
		}
		if rec.Kind == models.FinanceIncome {
			out[i].Income = out[i].Income.Add(rec.Amount)
		} else {
			out[i].Expense = out[i].Expense.Add(rec.Amount)
		}
	}
	return out, nil
}

func categoryTotals(records []models.FinanceRecord, filter FinanceFilter) []models.CategoryTotal {
	type key struct {
		category models.Category
		kind     models.FinanceKind
	}
	sums := make(map[key]decimal.Decimal)
	for _, rec := range records {
		if !filter.Match(rec) {
			continue
		}
		k := key{rec.Category, rec.Kind}
		sums[k] = sums[k].Add(rec.Amount)
	}

	out := make([]models.CategoryTotal, 0, len(sums))
	for _, c := range models.Categories {
		for _, kind := range []models.FinanceKind{models.FinanceIncome, models.FinanceExpense} {
			if amount, ok := sums[key{c, kind}]; ok {
				out = append(out, models.CategoryTotal{Category: c, Kind: kind, Amount: amount})
			}
		}
	}
	return out
}
