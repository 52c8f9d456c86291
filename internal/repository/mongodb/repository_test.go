package mongodb

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/mamadbah2/herdbook/internal/domain/models"
)

func TestSaveAndListFinanceReports(t *testing.T) {
	uri := os.Getenv("HERDBOOK_TEST_MONGODB_URI")
	if uri == "" {
		t.Skip("HERDBOOK_TEST_MONGODB_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repo, err := NewMongoDBRepository(ctx, uri, "herdbook_test")
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer func() { _ = repo.Close(ctx) }()

	user := time.Now().UnixNano()
	week := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	for _, profit := range []string{"1.00", "2.00"} {
		report := models.FinanceReport{UserID: user, PeriodStart: week, PeriodEnd: week.AddDate(0, 0, 6), Profit: profit, CreatedAt: time.Now().UTC()}
		if err := repo.SaveFinanceReport(ctx, report); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	reports, err := repo.ListFinanceReports(ctx, user, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(reports) != 1 || reports[0].Profit != "2.00" {
		t.Fatalf("expected the re-run to replace the week's report, got %+v", reports)
	}
}
