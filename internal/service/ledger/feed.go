package ledger

import (
	"context"
	"strings"

	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/repository"
)

// CreateFeed stores a feed purchase and its expense. The total cost is fixed here.
func (s *Service) CreateFeed(ctx context.Context, userID int64, in models.NewFeed) (models.Feed, error) {
	if err := checkUser(userID); err != nil {
		return models.Feed{}, err
	}
	if err := s.check(in); err != nil {
		return models.Feed{}, err
	}

	feed := models.Feed{
		Name:      strings.TrimSpace(in.Name),
		Quantity:  *in.Quantity,
		UnitPrice: models.RoundMoney(*in.UnitPrice),
		Supplier:  strings.TrimSpace(in.Supplier),
		FeedDate:  in.FeedDate,
	}
	feed.TotalCost = models.RoundMoney(feed.Quantity.Mul(feed.UnitPrice))

	err := s.mutate(ctx, "create_feed", userID, func(tx repository.Tx, fx *effects) error {
		stored, err := tx.InsertFeed(ctx, feed)
		if err != nil {
			return err
		}
		feed = stored
		return s.recordFeedPurchase(ctx, tx, fx, stored)
	})
	if err != nil {
		return models.Feed{}, err
	}
	return feed, nil
}

// UpdateFeed applies the supplied fields. The stored total and the ledger entry
// keep the values fixed at purchase time.
func (s *Service) UpdateFeed(ctx context.Context, userID, id int64, upd models.FeedUpdate) (models.Feed, error) {
	if err := checkUser(userID); err != nil {
		return models.Feed{}, err
	}
	if err := s.check(upd); err != nil {
		return models.Feed{}, err
	}
	if upd.UnitPrice != nil {
		upd.UnitPrice = models.MoneyPtr(models.RoundMoney(*upd.UnitPrice))
	}

	var updated models.Feed
	err := s.mutate(ctx, "update_feed", userID, func(tx repository.Tx, _ *effects) error {
		current, err := tx.GetFeed(ctx, id)
		if err != nil {
			return err
		}
		upd.Apply(&current)
		if err := tx.UpdateFeed(ctx, current); err != nil {
			return err
		}
		updated = current
		return nil
	})
	if err != nil {
		return models.Feed{}, err
	}
	return updated, nil
}

// DeleteFeed removes the purchase and its expense. Unknown ids are a no-op.
func (s *Service) DeleteFeed(ctx context.Context, userID, id int64) error {
	if err := checkUser(userID); err != nil {
		return err
	}
	return s.mutate(ctx, "delete_feed", userID, func(tx repository.Tx, fx *effects) error {
		removed, err := tx.DeleteFeed(ctx, id)
		if err != nil || !removed {
			return err
		}
		return s.reverse(ctx, tx, fx, models.Source{Kind: models.SourceFeed, ID: id})
	})
}

// GetFeed returns one of the user's feed purchases.
func (s *Service) GetFeed(ctx context.Context, userID, id int64) (models.Feed, error) {
	if err := checkUser(userID); err != nil {
		return models.Feed{}, err
	}
	var feed models.Feed
	err := s.view(ctx, userID, func(r repository.Reader) error {
		var err error
		feed, err = r.GetFeed(ctx, id)
		return err
	})
	return feed, err
}

// ListFeed returns the user's feed purchases, newest first.
func (s *Service) ListFeed(ctx context.Context, userID int64) ([]models.Feed, error) {
	if err := checkUser(userID); err != nil {
		return nil, err
	}
	var out []models.Feed
	err := s.view(ctx, userID, func(r repository.Reader) error {
		var err error
		out, err = r.ListFeed(ctx)
		return err
	})
	return out, err
}
