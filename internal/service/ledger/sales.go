package ledger

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/repository"
)

// CreateSale sells one of the user's active animals. Inserting the sale, marking
// the animal sold and appending the income entry commit together or not at all.
func (s *Service) CreateSale(ctx context.Context, userID int64, in models.NewSale) (models.Sale, error) {
	if err := checkUser(userID); err != nil {
		return models.Sale{}, err
	}
	if err := s.check(in); err != nil {
		return models.Sale{}, err
	}

	sale := models.Sale{
		AnimalID:    in.AnimalID,
		ButcherID:   in.ButcherID,
		SaleDate:    in.SaleDate,
		SalePrice:   models.RoundMoney(*in.SalePrice),
		BuyerName:   strings.TrimSpace(in.BuyerName),
		BuyerPhone:  strings.TrimSpace(in.BuyerPhone),
		PaymentType: in.PaymentType,
	}
	if sale.PaymentType == "" {
		sale.PaymentType = models.PaymentCash
	}

	err := s.mutate(ctx, "create_sale", userID, func(tx repository.Tx, fx *effects) error {
		animal, err := tx.LockAnimal(ctx, in.AnimalID)
		if err != nil {
			return err
		}
		switch animal.Status {
		case models.AnimalSold:
			return &models.ConflictError{Entity: "animal", ID: animal.ID, Reason: "already sold"}
		case models.AnimalDeceased:
			return &models.ConflictError{Entity: "animal", ID: animal.ID, Reason: "animal is deceased"}
		}
		if sale.ButcherID != nil {
			if _, err := tx.GetButcher(ctx, *sale.ButcherID); err != nil {
				return err
			}
		}

		sale.Profit = sale.SalePrice.Sub(animal.PurchasePrice)
		stored, err := tx.InsertSale(ctx, sale)
		if err != nil {
			return err
		}
		sale = stored

		animal.Status = models.AnimalSold
		if err := tx.UpdateAnimal(ctx, animal); err != nil {
			return err
		}
		return s.recordSale(ctx, tx, fx, stored, animal)
	})
	if err != nil {
		return models.Sale{}, err
	}
	return sale, nil
}

// DeleteSale removes the sale and its income entry and returns the animal to
// active. Unknown ids are a no-op.
func (s *Service) DeleteSale(ctx context.Context, userID, id int64) error {
	if err := checkUser(userID); err != nil {
		return err
	}
	return s.mutate(ctx, "delete_sale", userID, func(tx repository.Tx, fx *effects) error {
		sale, err := tx.GetSale(ctx, id)
		if errors.Is(err, models.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		animal, err := tx.LockAnimal(ctx, sale.AnimalID)
		switch {
		case errors.Is(err, models.ErrNotFound):
			s.logger.Warn("sale references a missing animal", zap.Int64("sale_id", id), zap.Int64("animal_id", sale.AnimalID))
		case err != nil:
			return err
		case animal.Status == models.AnimalSold:
			animal.Status = models.AnimalActive
			if err := tx.UpdateAnimal(ctx, animal); err != nil {
				return err
			}
		}

		if _, err := tx.DeleteSale(ctx, id); err != nil {
			return err
		}
		return s.reverse(ctx, tx, fx, models.Source{Kind: models.SourceSale, ID: id})
	})
}

// GetSale returns one of the user's sales.
func (s *Service) GetSale(ctx context.Context, userID, id int64) (models.Sale, error) {
	if err := checkUser(userID); err != nil {
		return models.Sale{}, err
	}
	var sale models.Sale
	err := s.view(ctx, userID, func(r repository.Reader) error {
		var err error
		sale, err = r.GetSale(ctx, id)
		return err
	})
	return sale, err
}

// ListSales returns the user's sales joined with animal and butcher details. A
// deleted butcher reads as no butcher.
func (s *Service) ListSales(ctx context.Context, userID int64) ([]models.SaleDetail, error) {
	if err := checkUser(userID); err != nil {
		return nil, err
	}
	var out []models.SaleDetail
	err := s.view(ctx, userID, func(r repository.Reader) error {
		sales, err := r.ListSales(ctx)
		if err != nil {
			return err
		}
		out = make([]models.SaleDetail, 0, len(sales))
		for _, sale := range sales {
			detail := models.SaleDetail{Sale: sale}
			animal, err := r.GetAnimal(ctx, sale.AnimalID)
			switch {
			case err == nil:
				detail.AnimalType = animal.Type
				detail.AnimalBreed = animal.Breed
				detail.PurchasePrice = animal.PurchasePrice
			case !errors.Is(err, models.ErrNotFound):
				return err
			}
			if sale.ButcherID != nil {
				butcher, err := r.GetButcher(ctx, *sale.ButcherID)
				switch {
				case err == nil:
					detail.ButcherName = butcher.Name
				case errors.Is(err, models.ErrNotFound):
					detail.ButcherID = nil
				default:
					return err
				}
			}
			out = append(out, detail)
		}
		return nil
	})
	return out, err
}
