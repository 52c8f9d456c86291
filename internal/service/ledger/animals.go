package ledger

import (
	"context"
	"errors"
	"strings"

	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/repository"
)

// CreateAnimal stores a purchased animal and its purchase expense.
func (s *Service) CreateAnimal(ctx context.Context, userID int64, in models.NewAnimal) (models.Animal, error) {
	if err := checkUser(userID); err != nil {
		return models.Animal{}, err
	}
	if err := s.check(in); err != nil {
		return models.Animal{}, err
	}

	animal := models.Animal{
		Type:          strings.TrimSpace(in.Type),
		Breed:         strings.TrimSpace(in.Breed),
		Gender:        in.Gender,
		BirthDate:     models.OptionalDate(in.BirthDate),
		PurchasePrice: models.RoundMoney(*in.PurchasePrice),
		PurchaseDate:  in.PurchaseDate,
		Status:        models.AnimalActive,
	}
	if in.Weight != nil {
		animal.Weight = models.MoneyPtr(models.RoundMoney(*in.Weight))
	}
	if animal.Type == "" {
		return models.Animal{}, &models.ValidationError{Field: "type", Message: "is required"}
	}

	err := s.mutate(ctx, "create_animal", userID, func(tx repository.Tx, fx *effects) error {
		stored, err := tx.InsertAnimal(ctx, animal)
		if err != nil {
			return err
		}
		animal = stored
		return s.recordAnimalPurchase(ctx, tx, fx, stored)
	})
	if err != nil {
		return models.Animal{}, err
	}
	return animal, nil
}

// UpdateAnimal applies the supplied fields. A sold animal's status only changes
// through its sale.
func (s *Service) UpdateAnimal(ctx context.Context, userID, id int64, upd models.AnimalUpdate) (models.Animal, error) {
	if err := checkUser(userID); err != nil {
		return models.Animal{}, err
	}
	if err := s.check(upd); err != nil {
		return models.Animal{}, err
	}

	var updated models.Animal
	err := s.mutate(ctx, "update_animal", userID, func(tx repository.Tx, _ *effects) error {
		current, err := tx.LockAnimal(ctx, id)
		if err != nil {
			return err
		}
		if upd.Status != nil && current.Status == models.AnimalSold {
			return &models.ConflictError{Entity: "animal", ID: id, Reason: "sold animal; delete its sale to change its status"}
		}
		upd.Apply(&current)
		if err := tx.UpdateAnimal(ctx, current); err != nil {
			return err
		}
		updated = current
		return nil
	})
	if err != nil {
		return models.Animal{}, err
	}
	return updated, nil
}

// DeleteAnimal removes the animal and its purchase expense. Sold animals cannot be
// deleted until their sale is. Unknown ids are a no-op.
func (s *Service) DeleteAnimal(ctx context.Context, userID, id int64) error {
	if err := checkUser(userID); err != nil {
		return err
	}
	return s.mutate(ctx, "delete_animal", userID, func(tx repository.Tx, fx *effects) error {
		animal, err := tx.LockAnimal(ctx, id)
		if errors.Is(err, models.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if animal.Status == models.AnimalSold {
			return &models.ConflictError{Entity: "animal", ID: id, Reason: "animal is sold; delete the sale first"}
		}
		if _, err := tx.DeleteAnimal(ctx, id); err != nil {
			return err
		}
		return s.reverse(ctx, tx, fx, models.Source{Kind: models.SourceAnimal, ID: id})
	})
}

// GetAnimal returns one of the user's animals.
func (s *Service) GetAnimal(ctx context.Context, userID, id int64) (models.Animal, error) {
	if err := checkUser(userID); err != nil {
		return models.Animal{}, err
	}
	var animal models.Animal
	err := s.view(ctx, userID, func(r repository.Reader) error {
		var err error
		animal, err = r.GetAnimal(ctx, id)
		return err
	})
	return animal, err
}

// ListAnimals returns the user's animals, optionally filtered by status.
func (s *Service) ListAnimals(ctx context.Context, userID int64, status models.AnimalStatus) ([]models.Animal, error) {
	if err := checkUser(userID); err != nil {
		return nil, err
	}
	if status != "" && !status.Valid() {
		return nil, &models.ValidationError{Field: "status", Message: "must be one of: active, sold, deceased"}
	}
	var out []models.Animal
	err := s.view(ctx, userID, func(r repository.Reader) error {
		animals, err := r.ListAnimals(ctx)
		if err != nil {
			return err
		}
		out = make([]models.Animal, 0, len(animals))
		for _, a := range animals {
			if status == "" || a.Status == status {
				out = append(out, a)
			}
		}
		return nil
	})
	return out, err
}
