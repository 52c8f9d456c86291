package ledger

import (
	"context"
	"errors"
	"strings"

	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/repository"
)

// CreateVaccination stores a vaccination, plus a medicine expense when it carries a
// positive cost. The animal id is a weak reference: it is not checked here and
// listings show the animal's details only while it exists.
func (s *Service) CreateVaccination(ctx context.Context, userID int64, in models.NewVaccination) (models.Vaccination, error) {
	if err := checkUser(userID); err != nil {
		return models.Vaccination{}, err
	}
	if err := s.check(in); err != nil {
		return models.Vaccination{}, err
	}

	vac := models.Vaccination{
		AnimalID:        in.AnimalID,
		VaccineName:     strings.TrimSpace(in.VaccineName),
		VaccinationDate: in.VaccinationDate,
		NextDate:        models.OptionalDate(in.NextDate),
		Veterinarian:    strings.TrimSpace(in.Veterinarian),
	}
	if err := checkNextDate(vac); err != nil {
		return models.Vaccination{}, err
	}
	if in.Cost != nil {
		vac.Cost = models.MoneyPtr(models.RoundMoney(*in.Cost))
	}

	err := s.mutate(ctx, "create_vaccination", userID, func(tx repository.Tx, fx *effects) error {
		stored, err := tx.InsertVaccination(ctx, vac)
		if err != nil {
			return err
		}
		vac = stored
		return s.recordVaccinationCost(ctx, tx, fx, stored)
	})
	if err != nil {
		return models.Vaccination{}, err
	}
	return vac, nil
}

// UpdateVaccination applies the supplied fields without touching the ledger.
func (s *Service) UpdateVaccination(ctx context.Context, userID, id int64, upd models.VaccinationUpdate) (models.Vaccination, error) {
	if err := checkUser(userID); err != nil {
		return models.Vaccination{}, err
	}
	if err := s.check(upd); err != nil {
		return models.Vaccination{}, err
	}
	if upd.Cost != nil {
		upd.Cost = models.MoneyPtr(models.RoundMoney(*upd.Cost))
	}

	var updated models.Vaccination
	err := s.mutate(ctx, "update_vaccination", userID, func(tx repository.Tx, _ *effects) error {
		current, err := tx.GetVaccination(ctx, id)
		if err != nil {
			return err
		}
		upd.Apply(&current)
		if err := checkNextDate(current); err != nil {
			return err
		}
		if err := tx.UpdateVaccination(ctx, current); err != nil {
			return err
		}
		updated = current
		return nil
	})
	if err != nil {
		return models.Vaccination{}, err
	}
	return updated, nil
}

// DeleteVaccination removes the vaccination and its expense, if any. Unknown ids
// are a no-op.
func (s *Service) DeleteVaccination(ctx context.Context, userID, id int64) error {
	if err := checkUser(userID); err != nil {
		return err
	}
	return s.mutate(ctx, "delete_vaccination", userID, func(tx repository.Tx, fx *effects) error {
		removed, err := tx.DeleteVaccination(ctx, id)
		if err != nil || !removed {
			return err
		}
		return s.reverse(ctx, tx, fx, models.Source{Kind: models.SourceVaccination, ID: id})
	})
}

// ListVaccinations returns the user's vaccinations joined with their animals.
// Vaccinations of deleted animals are kept with empty animal fields.
func (s *Service) ListVaccinations(ctx context.Context, userID int64) ([]models.VaccinationDetail, error) {
	if err := checkUser(userID); err != nil {
		return nil, err
	}
	var out []models.VaccinationDetail
	err := s.view(ctx, userID, func(r repository.Reader) error {
		vaccinations, err := r.ListVaccinations(ctx)
		if err != nil {
			return err
		}
		out = make([]models.VaccinationDetail, 0, len(vaccinations))
		for _, v := range vaccinations {
			detail := models.VaccinationDetail{Vaccination: v}
			animal, err := r.GetAnimal(ctx, v.AnimalID)
			switch {
			case err == nil:
				detail.AnimalType, detail.AnimalBreed = animal.Type, animal.Breed
			case !errors.Is(err, models.ErrNotFound):
				return err
			}
			out = append(out, detail)
		}
		return nil
	})
	return out, err
}

// checkNextDate rejects a reminder scheduled before the vaccination itself.
func checkNextDate(v models.Vaccination) error {
	if v.NextDate == nil || v.NextDate.IsZero() {
		return nil
	}
	if v.NextDate.Before(v.VaccinationDate) {
		return &models.ValidationError{Field: "next_date", Message: "must not be before vaccination_date"}
	}
	return nil
}
