package reporting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/repository"
)

// ReportDays is the length of the weekly reporting period, ending on the run date.
const ReportDays = 7

// Owners lists the users that have any data to report on.
func (s *Service) Owners(ctx context.Context) ([]int64, error) {
	owners, err := s.repo.ListOwners(ctx)
	if err != nil {
		return nil, fmt.Errorf("list owners: %w", err)
	}
	return owners, nil
}

// WeeklySummary builds the user's report for the ReportDays days ending on the
// calendar day of at.
func (s *Service) WeeklySummary(ctx context.Context, userID int64, at time.Time) (models.FinanceReport, error) {
	end := models.NewDate(at)
	start := models.NewDate(end.AddDate(0, 0, -(ReportDays - 1)))
	filter := FinanceFilter{From: start, To: end}

	report := models.FinanceReport{
		UserID:      userID,
		PeriodStart: start.Time,
		PeriodEnd:   end.Time,
		CreatedAt:   s.now().UTC(),
	}

	err := s.repo.View(ctx, userID, func(r repository.Reader) error {
		records, err := r.ListFinance(ctx)
		if err != nil {
			return err
		}
		income, expense := decimal.Zero, decimal.Zero
		for _, rec := range records {
			if !filter.Match(rec) {
				continue
			}
			report.Entries++
			if rec.Kind == models.FinanceIncome {
				income = income.Add(rec.Amount)
			} else {
				expense = expense.Add(rec.Amount)
			}
		}
		report.Income = income.StringFixed(models.MoneyScale)
		report.Expense = expense.StringFixed(models.MoneyScale)
		report.Profit = income.Sub(expense).StringFixed(models.MoneyScale)

		for _, line := range categoryTotals(records, filter) {
			report.ByCategory = append(report.ByCategory, models.ReportLine{
				Category: line.Category,
				Kind:     line.Kind,
				Amount:   line.Amount.StringFixed(models.MoneyScale),
			})
		}

		report.Animals, err = animalStats(ctx, r)
		return err
	})
	if err != nil {
		return models.FinanceReport{}, fmt.Errorf("weekly summary for user %d: %w", userID, err)
	}
	return report, nil
}

// FormatReport renders a report as a chat message.
func FormatReport(report models.FinanceReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*Weekly report* %s to %s\n\n",
		report.PeriodStart.Format(models.DateLayout), report.PeriodEnd.Format(models.DateLayout))

	if report.Entries == 0 {
		b.WriteString("No income or expenses recorded this week.\n")
	} else {
		fmt.Fprintf(&b, "Income: %s\n", formatAmount(report.Income))
		fmt.Fprintf(&b, "Expense: %s\n", formatAmount(report.Expense))
		fmt.Fprintf(&b, "Profit: %s\n", formatAmount(report.Profit))
		fmt.Fprintf(&b, "Entries: %d\n", report.Entries)
		if len(report.ByCategory) > 0 {
			b.WriteString("\nBy category:\n")
			for _, line := range report.ByCategory {
				fmt.Fprintf(&b, "- %s (%s): %s\n", line.Category, line.Kind, formatAmount(line.Amount))
			}
		}
	}

	fmt.Fprintf(&b, "\nHerd: %d active, %d sold, %d deceased",
		report.Animals.Active, report.Animals.Sold, report.Animals.Deceased)
	return b.String()
}

func formatAmount(value string) string {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return value
	}
	return models.FormatMoney(d)
}
