// Package ledger is the only entry point for domain mutations. Every mutation that
// moves money derives its ledger entry in the same transaction, tagged with the
// source record it came from, and deleting the source removes that entry.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/lock"
	"github.com/mamadbah2/herdbook/internal/metrics"
	"github.com/mamadbah2/herdbook/internal/repository"
)

// Service coordinates domain and ledger writes.
type Service struct {
	repo     repository.Repository
	locker   lock.Locker
	validate *validator.Validate
	metrics  *metrics.Metrics
	logger   *zap.Logger
	now      func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithLocker replaces the default in-process user lock.
func WithLocker(l lock.Locker) Option {
	return func(s *Service) {
		if l != nil {
			s.locker = l
		}
	}
}

// WithMetrics enables ledger and mutation counters.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithClock overrides the clock used for default dates.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService constructs the synchronizer over repo.
func NewService(repo repository.Repository, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		repo:     repo,
		locker:   lock.NewLocal(),
		validate: NewValidator(),
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// effects collects ledger changes made inside one transaction so they can be
// reported once it commits.
type effects struct {
	appended []models.FinanceRecord
	reversed []models.Source
}

func (s *Service) mutate(ctx context.Context, op string, scope int64, fn func(tx repository.Tx, fx *effects) error) error {
	unlock, err := s.locker.Lock(ctx, lock.UserKey(scope))
	if err != nil {
		return fmt.Errorf("%s: acquire lock: %w", op, err)
	}
	defer unlock()

	fx := &effects{}
	err = s.repo.RunInTx(ctx, scope, func(tx repository.Tx) error {
		return fn(tx, fx)
	})
	s.metrics.Mutation(op, err)
	if err != nil {
		if !models.IsClientError(err) {
			s.logger.Error("mutation failed", zap.String("op", op), zap.Int64("scope", scope), zap.Error(err))
		}
		return err
	}

	for _, r := range fx.appended {
		s.metrics.LedgerEntry(r.Category, r.Kind)
	}
	for _, src := range fx.reversed {
		s.metrics.Reversal(src.Kind, 1)
	}
	s.logger.Debug("mutation committed",
		zap.String("op", op),
		zap.Int64("scope", scope),
		zap.Int("entries_appended", len(fx.appended)),
		zap.Int("entries_reversed", len(fx.reversed)),
	)
	return nil
}

func (s *Service) view(ctx context.Context, scope int64, fn func(r repository.Reader) error) error {
	return s.repo.View(ctx, scope, fn)
}

func checkUser(userID int64) error {
	if userID <= 0 {
		return &models.ValidationError{Field: "user_id", Message: "must be a positive integer"}
	}
	return nil
}

func checkID(field string, id int64) error {
	if id <= 0 {
		return &models.ValidationError{Field: field, Message: "must be a positive integer"}
	}
	return nil
}
