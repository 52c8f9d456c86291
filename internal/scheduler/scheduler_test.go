package scheduler

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mamadbah2/herdbook/internal/config"
	"github.com/mamadbah2/herdbook/internal/domain/models"
)

type fakeSource struct {
	owners []int64
	broken int64
	calls  []time.Time
}

func (f *fakeSource) Owners(context.Context) ([]int64, error) {
	return f.owners, nil
}

func (f *fakeSource) WeeklySummary(_ context.Context, userID int64, at time.Time) (models.FinanceReport, error) {
	f.calls = append(f.calls, at)
	if userID == f.broken {
		return models.FinanceReport{}, errors.New("store offline")
	}
	end := models.NewDate(at)
	return models.FinanceReport{
		UserID:      userID,
		PeriodStart: end.AddDate(0, 0, -6),
		PeriodEnd:   end.Time,
		Income:      "7000000.00",
		Expense:     "0.00",
		Profit:      "7000000.00",
		Entries:     1,
	}, nil
}

type recordingSinks struct {
	saved    []int64
	appended []int64
	messages []models.OutboundMessageRequest
	sheetErr error
}

func (r *recordingSinks) SaveFinanceReport(_ context.Context, report models.FinanceReport) error {
	r.saved = append(r.saved, report.UserID)
	return nil
}

func (r *recordingSinks) AppendReport(_ context.Context, report models.FinanceReport) error {
	if r.sheetErr != nil {
		return r.sheetErr
	}
	r.appended = append(r.appended, report.UserID)
	return nil
}

func (r *recordingSinks) SendOutbound(_ context.Context, req models.OutboundMessageRequest) error {
	r.messages = append(r.messages, req)
	return nil
}

func reportingConfig() config.ReportingConfig {
	return config.ReportingConfig{CronSchedule: "0 20 * * 5", Timezone: "Africa/Conakry"}
}

func TestRunWeeklyReportDeliversToEverySink(t *testing.T) {
	source := &fakeSource{owners: []int64{224600000001, 224600000002}}
	sinks := &recordingSinks{}
	s, err := NewScheduler(reportingConfig(), source, Sinks{Store: sinks, Sheet: sinks, Notifier: sinks}, nil)
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}

	at := time.Date(2024, 6, 14, 20, 0, 0, 0, time.UTC)
	if err := s.RunWeeklyReport(context.Background(), at); err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(sinks.saved) != 2 || len(sinks.appended) != 2 || len(sinks.messages) != 2 {
		t.Fatalf("expected every owner in every sink, got %+v", sinks)
	}
	msg := sinks.messages[0]
	if msg.To != "224600000001" {
		t.Fatalf("expected report addressed to the owner, got %q", msg.To)
	}
	if !strings.Contains(msg.Message, "2024-06-08 to 2024-06-14") || !strings.Contains(msg.Message, "7,000,000") {
		t.Fatalf("unexpected report text:\n%s", msg.Message)
	}
}

func TestRunWeeklyReportContinuesPastFailures(t *testing.T) {
	source := &fakeSource{owners: []int64{1, 2, 3}, broken: 2}
	sinks := &recordingSinks{}
	s, err := NewScheduler(reportingConfig(), source, Sinks{Store: sinks, Notifier: sinks}, nil)
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}

	err = s.RunWeeklyReport(context.Background(), time.Date(2024, 6, 14, 20, 0, 0, 0, time.UTC))
	if err == nil || !strings.Contains(err.Error(), "user 2") {
		t.Fatalf("expected failure for user 2, got %v", err)
	}
	if len(sinks.saved) != 2 || len(sinks.messages) != 2 {
		t.Fatalf("expected the other owners to be served, got %+v", sinks)
	}
}

func TestSinkFailureIsReportedButOthersRun(t *testing.T) {
	source := &fakeSource{owners: []int64{1}}
	sinks := &recordingSinks{sheetErr: errors.New("quota exceeded")}
	s, err := NewScheduler(reportingConfig(), source, Sinks{Store: sinks, Sheet: sinks, Notifier: sinks}, nil)
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}

	err = s.RunWeeklyReport(context.Background(), time.Now())
	if err == nil || !strings.Contains(err.Error(), "quota exceeded") {
		t.Fatalf("expected sheet error, got %v", err)
	}
	if len(sinks.saved) != 1 || len(sinks.messages) != 1 {
		t.Fatalf("expected store and notifier to run, got %+v", sinks)
	}
}

func TestScheduledRunUsesConfiguredTimezone(t *testing.T) {
	source := &fakeSource{owners: []int64{1}}
	s, err := NewScheduler(config.ReportingConfig{CronSchedule: "0 20 * * 5", Timezone: "Asia/Tashkent"}, source, Sinks{}, nil)
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	// 21:30 UTC on Friday is already Saturday in Tashkent.
	s.now = func() time.Time { return time.Date(2024, 6, 14, 21, 30, 0, 0, time.UTC) }

	s.sendWeeklyReports()

	if len(source.calls) != 1 {
		t.Fatalf("expected one summary, got %d", len(source.calls))
	}
	if got := models.NewDate(source.calls[0]).String(); got != "2024-06-15" {
		t.Fatalf("expected the local calendar day, got %s", got)
	}
}

func TestStartRejectsBadSchedule(t *testing.T) {
	if _, err := NewScheduler(config.ReportingConfig{CronSchedule: "0 20 * * 5", Timezone: "Nowhere/City"}, &fakeSource{}, Sinks{}, nil); err == nil {
		t.Fatal("expected timezone error")
	}

	s, err := NewScheduler(config.ReportingConfig{CronSchedule: "fridays", Timezone: "UTC"}, &fakeSource{}, Sinks{}, nil)
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	if err := s.Start(); err == nil {
		s.Stop()
		t.Fatal("expected schedule error")
	}
}
