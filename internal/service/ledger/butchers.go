package ledger

import (
	"context"
	"strings"

	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/repository"
)

// CreateButcher adds a contact to the shared butcher directory.
func (s *Service) CreateButcher(ctx context.Context, in models.NewButcher) (models.Butcher, error) {
	if err := s.check(in); err != nil {
		return models.Butcher{}, err
	}
	butcher := models.Butcher{
		Name:       strings.TrimSpace(in.Name),
		Phone:      strings.TrimSpace(in.Phone),
		Address:    strings.TrimSpace(in.Address),
		Experience: in.Experience,
		Notes:      strings.TrimSpace(in.Notes),
	}
	err := s.mutate(ctx, "create_butcher", repository.SharedScope, func(tx repository.Tx, _ *effects) error {
		stored, err := tx.InsertButcher(ctx, butcher)
		if err != nil {
			return err
		}
		butcher = stored
		return nil
	})
	if err != nil {
		return models.Butcher{}, err
	}
	return butcher, nil
}

// UpdateButcher applies the supplied fields.
func (s *Service) UpdateButcher(ctx context.Context, id int64, upd models.ButcherUpdate) (models.Butcher, error) {
	if err := s.check(upd); err != nil {
		return models.Butcher{}, err
	}
	var updated models.Butcher
	err := s.mutate(ctx, "update_butcher", repository.SharedScope, func(tx repository.Tx, _ *effects) error {
		current, err := tx.GetButcher(ctx, id)
		if err != nil {
			return err
		}
		upd.Apply(&current)
		if err := tx.UpdateButcher(ctx, current); err != nil {
			return err
		}
		updated = current
		return nil
	})
	if err != nil {
		return models.Butcher{}, err
	}
	return updated, nil
}

// DeleteButcher removes a butcher. Sales that named the butcher keep their data
// and read as having no butcher. Unknown ids are a no-op.
func (s *Service) DeleteButcher(ctx context.Context, id int64) error {
	return s.mutate(ctx, "delete_butcher", repository.SharedScope, func(tx repository.Tx, _ *effects) error {
		_, err := tx.DeleteButcher(ctx, id)
		return err
	})
}

// GetButcher returns a butcher from the directory.
func (s *Service) GetButcher(ctx context.Context, id int64) (models.Butcher, error) {
	var butcher models.Butcher
	err := s.view(ctx, repository.SharedScope, func(r repository.Reader) error {
		var err error
		butcher, err = r.GetButcher(ctx, id)
		return err
	})
	return butcher, err
}

// ListButchers returns the butchers whose name, phone or address contains search.
// An empty search returns the whole directory.
func (s *Service) ListButchers(ctx context.Context, search string) ([]models.Butcher, error) {
	var out []models.Butcher
	err := s.view(ctx, repository.SharedScope, func(r repository.Reader) error {
		butchers, err := r.ListButchers(ctx)
		if err != nil {
			return err
		}
		out = make([]models.Butcher, 0, len(butchers))
		for _, b := range butchers {
			if b.Matches(search) {
				out = append(out, b)
			}
		}
		return nil
	})
	return out, err
}
