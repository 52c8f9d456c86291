package sheets

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/mamadbah2/herdbook/internal/config"
	"github.com/mamadbah2/herdbook/internal/domain/models"
)

// ReportRange is the sheet tab weekly reports are appended to.
const ReportRange = "Reports!A:I"

// Repository defines the persistence operations supported by the Google Sheets adapter.
type Repository interface {
	AppendReport(ctx context.Context, report models.FinanceReport) error
}

// GoogleSheetRepository implements the Repository interface using the official Google Sheets API.
type GoogleSheetRepository struct {
	service       *sheetsapi.Service
	spreadsheetID string
	logger        *zap.Logger
}

// NewGoogleSheetRepository builds a Google Sheets backed repository instance.
func NewGoogleSheetRepository(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (*GoogleSheetRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &GoogleSheetRepository{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		logger:        logger,
	}, nil
}

// AppendReport writes one row summarizing the report.
func (r *GoogleSheetRepository) AppendReport(ctx context.Context, report models.FinanceReport) error {
	return r.writeRow(ctx, ReportRange, ReportRow(report))
}

// ReportRow lays out a report as a sheet row: period, user, income, expense, profit,
// entry count and animal counts.
func ReportRow(report models.FinanceReport) []interface{} {
	return []interface{}{
		report.PeriodStart.Format(models.DateLayout),
		report.PeriodEnd.Format(models.DateLayout),
		report.UserID,
		report.Income,
		report.Expense,
		report.Profit,
		report.Entries,
		report.Animals.Active,
		report.Animals.Sold,
	}
}

func (r *GoogleSheetRepository) writeRow(ctx context.Context, sheetRange string, values []interface{}) error {
	if sheetRange == "" {
		return fmt.Errorf("sheetRange must not be empty")
	}

	payload := &sheetsapi.ValueRange{Values: [][]interface{}{values}}

	call := r.service.Spreadsheets.Values.Append(r.spreadsheetID, sheetRange, payload).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("append row into range %s: %w", sheetRange, err)
	}

	r.logger.Debug("row appended to sheet", zap.String("range", sheetRange))
	return nil
}
