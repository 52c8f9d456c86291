package ledger

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/repository"
)

func animalLabel(a models.Animal) string {
	if a.Breed == "" {
		return a.Type
	}
	return a.Type + " - " + a.Breed
}

func (s *Service) appendDerived(ctx context.Context, tx repository.Tx, fx *effects, record models.FinanceRecord) error {
	stored, err := tx.AppendFinance(ctx, record)
	if err != nil {
		return fmt.Errorf("append %s entry for %s: %w", record.Category, record.Source, err)
	}
	fx.appended = append(fx.appended, stored)
	return nil
}

func (s *Service) recordAnimalPurchase(ctx context.Context, tx repository.Tx, fx *effects, a models.Animal) error {
	return s.appendDerived(ctx, tx, fx, models.FinanceRecord{
		Kind:        models.FinanceExpense,
		Category:    models.CategoryAnimalPurchase,
		Amount:      a.PurchasePrice,
		Description: animalLabel(a),
		Date:        a.PurchaseDate,
		Source:      &models.Source{Kind: models.SourceAnimal, ID: a.ID},
	})
}

func (s *Service) recordFeedPurchase(ctx context.Context, tx repository.Tx, fx *effects, f models.Feed) error {
	return s.appendDerived(ctx, tx, fx, models.FinanceRecord{
		Kind:        models.FinanceExpense,
		Category:    models.CategoryFeedPurchase,
		Amount:      f.TotalCost,
		Description: fmt.Sprintf("%s (%s kg)", f.Name, f.Quantity.String()),
		Date:        f.FeedDate,
		Source:      &models.Source{Kind: models.SourceFeed, ID: f.ID},
	})
}

// recordVaccinationCost appends an expense only for a positive cost. A zero or
// missing cost means the cost was not recorded, not that it was free.
func (s *Service) recordVaccinationCost(ctx context.Context, tx repository.Tx, fx *effects, v models.Vaccination) error {
	if !v.HasCost() {
		return nil
	}
	return s.appendDerived(ctx, tx, fx, models.FinanceRecord{
		Kind:        models.FinanceExpense,
		Category:    models.CategoryMedicine,
		Amount:      *v.Cost,
		Description: v.VaccineName,
		Date:        v.VaccinationDate,
		Source:      &models.Source{Kind: models.SourceVaccination, ID: v.ID},
	})
}

func (s *Service) recordSale(ctx context.Context, tx repository.Tx, fx *effects, sale models.Sale, a models.Animal) error {
	var desc strings.Builder
	fmt.Fprintf(&desc, "Sale: %s (profit: %s)", animalLabel(a), models.FormatMoney(sale.Profit))
	if sale.BuyerName != "" {
		fmt.Fprintf(&desc, ", buyer %s", sale.BuyerName)
	}
	return s.appendDerived(ctx, tx, fx, models.FinanceRecord{
		Kind:        models.FinanceIncome,
		Category:    models.CategoryAnimalSale,
		Amount:      sale.SalePrice,
		Description: desc.String(),
		Date:        sale.SaleDate,
		Source:      &models.Source{Kind: models.SourceSale, ID: sale.ID},
	})
}

// reverse removes every entry tagged with source.
func (s *Service) reverse(ctx context.Context, tx repository.Tx, fx *effects, source models.Source) error {
	records, err := tx.FindFinanceBySource(ctx, source)
	if err != nil {
		return fmt.Errorf("find entries for %s: %w", source, err)
	}
	if len(records) == 0 {
		// Expected for vaccinations without a cost.
		if source.Kind != models.SourceVaccination {
			s.logger.Warn("no ledger entry to reverse", zap.Stringer("source", source), zap.Int64("scope", tx.Scope()))
		}
		return nil
	}
	for _, r := range records {
		if _, err := tx.RemoveFinance(ctx, r.ID); err != nil {
			return fmt.Errorf("remove entry %d for %s: %w", r.ID, source, err)
		}
		fx.reversed = append(fx.reversed, source)
	}
	return nil
}
