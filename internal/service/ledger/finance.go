package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/repository"
)

// AddFinanceEntry records a manual income or expense that no domain record
// produces, such as equipment or labor.
func (s *Service) AddFinanceEntry(ctx context.Context, userID int64, in models.NewFinanceEntry) (models.FinanceRecord, error) {
	if err := checkUser(userID); err != nil {
		return models.FinanceRecord{}, err
	}
	if err := s.check(in); err != nil {
		return models.FinanceRecord{}, err
	}

	record := models.FinanceRecord{
		Kind:        in.Kind,
		Amount:      models.RoundMoney(*in.Amount),
		Category:    in.Category,
		Description: strings.TrimSpace(in.Description),
		Date:        in.Date,
	}
	err := s.mutate(ctx, "add_finance_entry", userID, func(tx repository.Tx, fx *effects) error {
		stored, err := tx.AppendFinance(ctx, record)
		if err != nil {
			return err
		}
		record = stored
		fx.appended = append(fx.appended, stored)
		return nil
	})
	if err != nil {
		return models.FinanceRecord{}, err
	}
	return record, nil
}

// DeleteFinanceEntry removes a manual entry. Entries derived from a domain record
// are removed only by deleting that record. Unknown ids are a no-op.
func (s *Service) DeleteFinanceEntry(ctx context.Context, userID, id int64) error {
	if err := checkUser(userID); err != nil {
		return err
	}
	return s.mutate(ctx, "delete_finance_entry", userID, func(tx repository.Tx, _ *effects) error {
		record, err := tx.GetFinanceRecord(ctx, id)
		if errors.Is(err, models.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if record.Source != nil {
			return &models.ConflictError{
				Entity: "finance record",
				ID:     id,
				Reason: fmt.Sprintf("derived from %s %d; delete that record instead", record.Source.Kind, record.Source.ID),
			}
		}
		if record.Category.Derived() {
			return &models.ConflictError{Entity: "finance record", ID: id, Reason: fmt.Sprintf("%s entries are managed automatically", record.Category)}
		}
		_, err = tx.RemoveFinance(ctx, id)
		return err
	})
}
