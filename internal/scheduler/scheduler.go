package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/herdbook/internal/config"
	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/service/reporting"
)

const runTimeout = 2 * time.Minute

// ReportSource builds weekly reports. *reporting.Service implements it.
type ReportSource interface {
	Owners(ctx context.Context) ([]int64, error)
	WeeklySummary(ctx context.Context, userID int64, at time.Time) (models.FinanceReport, error)
}

// ReportStore keeps report snapshots, e.g. MongoDB.
type ReportStore interface {
	SaveFinanceReport(ctx context.Context, report models.FinanceReport) error
}

// ReportSheet appends reports to a spreadsheet.
type ReportSheet interface {
	AppendReport(ctx context.Context, report models.FinanceReport) error
}

// Notifier delivers the formatted report to its owner.
type Notifier interface {
	SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error
}

// Sinks lists where a weekly report goes. Nil sinks are skipped.
type Sinks struct {
	Store    ReportStore
	Sheet    ReportSheet
	Notifier Notifier
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron     *cron.Cron
	schedule string
	location *time.Location
	reports  ReportSource
	sinks    Sinks
	logger   *zap.Logger
	now      func() time.Time
}

// NewScheduler creates a scheduler running in the configured timezone.
func NewScheduler(cfg config.ReportingConfig, reports ReportSource, sinks Sinks, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		schedule: cfg.CronSchedule,
		location: loc,
		reports:  reports,
		sinks:    sinks,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// Start registers the weekly report job and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.sendWeeklyReports); err != nil {
		return fmt.Errorf("schedule weekly report %q: %w", s.schedule, err)
	}
	s.logger.Info("starting scheduler", zap.String("schedule", s.schedule), zap.String("timezone", s.location.String()))
	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) sendWeeklyReports() {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	if err := s.RunWeeklyReport(ctx, s.now().In(s.location)); err != nil {
		s.logger.Error("weekly report run finished with errors", zap.Error(err))
	}
}

// RunWeeklyReport builds and distributes the report ending on at's calendar day
// for every owner. A failing owner or sink does not stop the others; all errors
// are returned joined.
func (s *Scheduler) RunWeeklyReport(ctx context.Context, at time.Time) error {
	owners, err := s.reports.Owners(ctx)
	if err != nil {
		return fmt.Errorf("list owners: %w", err)
	}
	s.logger.Info("generating weekly reports", zap.Int("owners", len(owners)), zap.Time("at", at))

	var errs []error
	sent := 0
	for _, userID := range owners {
		if err := s.reportFor(ctx, userID, at); err != nil {
			errs = append(errs, fmt.Errorf("user %d: %w", userID, err))
			continue
		}
		sent++
	}

	s.logger.Info("weekly reports distributed", zap.Int("ok", sent), zap.Int("failed", len(errs)))
	return errors.Join(errs...)
}

func (s *Scheduler) reportFor(ctx context.Context, userID int64, at time.Time) error {
	report, err := s.reports.WeeklySummary(ctx, userID, at)
	if err != nil {
		return fmt.Errorf("build report: %w", err)
	}

	var errs []error
	if s.sinks.Store != nil {
		if err := s.sinks.Store.SaveFinanceReport(ctx, report); err != nil {
			errs = append(errs, fmt.Errorf("save snapshot: %w", err))
		}
	}
	if s.sinks.Sheet != nil {
		if err := s.sinks.Sheet.AppendReport(ctx, report); err != nil {
			errs = append(errs, fmt.Errorf("append to sheet: %w", err))
		}
	}
	if s.sinks.Notifier != nil {
		req := models.OutboundMessageRequest{
			To:      strconv.FormatInt(userID, 10),
			Message: reporting.FormatReport(report),
		}
		if err := s.sinks.Notifier.SendOutbound(ctx, req); err != nil {
			errs = append(errs, fmt.Errorf("send message: %w", err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		s.logger.Warn("weekly report partially delivered", zap.Int64("user_id", userID), zap.Error(err))
		return err
	}
	s.logger.Debug("weekly report delivered", zap.Int64("user_id", userID))
	return nil
}
