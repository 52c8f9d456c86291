package reporting

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/repository"
)

const (
	ledgerSheet  = "Ledger"
	summarySheet = "Summary"
)

var ledgerHeadings = []string{"ID", "Date", "Type", "Category", "Amount", "Description", "Source"}

// ExportWorkbook writes the user's ledger and totals as an XLSX workbook to w.
func (s *Service) ExportWorkbook(ctx context.Context, userID int64, w io.Writer) error {
	var (
		records []models.FinanceRecord
		stats   models.FinanceStats
		totals  []models.CategoryTotal
	)
	err := s.repo.View(ctx, userID, func(r repository.Reader) error {
		var err error
		if records, err = r.ListFinance(ctx); err != nil {
			return err
		}
		if stats, err = financeStats(ctx, r); err != nil {
			return err
		}
		totals = categoryTotals(records, FinanceFilter{})
		return nil
	})
	if err != nil {
		return fmt.Errorf("load ledger for export: %w", err)
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("close workbook", zap.Error(err))
		}
	}()

	if err := f.SetSheetName("Sheet1", ledgerSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeLedgerSheet(f, records); err != nil {
		return err
	}
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}
	if err := writeSummarySheet(f, stats, totals); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeLedgerSheet(f *excelize.File, records []models.FinanceRecord) error {
	for i, h := range ledgerHeadings {
		if err := setCell(f, ledgerSheet, i+1, 1, h); err != nil {
			return err
		}
	}
	for i, rec := range records {
		source := ""
		if rec.Source != nil {
			source = rec.Source.String()
		}
		row := []interface{}{
			rec.ID,
			rec.Date.String(),
			string(rec.Kind),
			string(rec.Category),
			rec.Amount.InexactFloat64(),
			rec.Description,
			source,
		}
		for col, value := range row {
			if err := setCell(f, ledgerSheet, col+1, i+2, value); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeSummarySheet(f *excelize.File, stats models.FinanceStats, totals []models.CategoryTotal) error {
	rows := [][]interface{}{
		{"Income", stats.Income.InexactFloat64()},
		{"Expense", stats.Expense.InexactFloat64()},
		{"Profit", stats.Profit.InexactFloat64()},
		{},
		{"Category", "Type", "Amount"},
	}
	for _, t := range totals {
		rows = append(rows, []interface{}{string(t.Category), string(t.Kind), t.Amount.InexactFloat64()})
	}
	for r, row := range rows {
		for c, value := range row {
			if err := setCell(f, summarySheet, c+1, r+1, value); err != nil {
				return err
			}
		}
	}
	return nil
}

func setCell(f *excelize.File, sheet string, col, row int, value interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("cell name: %w", err)
	}
	if err := f.SetCellValue(sheet, cell, value); err != nil {
		return fmt.Errorf("set %s!%s: %w", sheet, cell, err)
	}
	return nil
}
