package postgres

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/repository"
)

type recordingExec struct {
	execs []string
	fail  bool
}

func (r *recordingExec) ExecContext(_ context.Context, query string, _ ...any) (sql.Result, error) {
	if r.fail {
		return nil, errors.New("exec failed")
	}
	r.execs = append(r.execs, query)
	return nil, nil
}

func TestApplySchemaRunsEveryStatement(t *testing.T) {
	rec := &recordingExec{}
	if err := applySchema(context.Background(), rec); err != nil {
		t.Fatalf("applySchema: %v", err)
	}
	if len(rec.execs) != len(schema) {
		t.Fatalf("expected %d statements, got %d", len(schema), len(rec.execs))
	}
	var sawSource bool
	for _, stmt := range rec.execs {
		if strings.Contains(stmt, "finance_source_idx") {
			sawSource = true
		}
	}
	if !sawSource {
		t.Fatalf("provenance index missing from schema")
	}

	if err := applySchema(context.Background(), &recordingExec{fail: true}); err == nil {
		t.Fatalf("expected error from failing exec")
	}
}

func TestNotFoundMapping(t *testing.T) {
	if err := notFound(sql.ErrNoRows, "animal", 3, "get"); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := notFound(errors.New("conn reset"), "animal", 3, "get"); !errors.Is(err, models.ErrStorage) {
		t.Fatalf("expected storage error, got %v", err)
	}
	if notFound(nil, "animal", 3, "get") != nil {
		t.Fatalf("nil must stay nil")
	}
}

func TestArgHelpers(t *testing.T) {
	if dateArg(nil) != nil || decimalArg(nil) != nil || intArg(nil) != nil {
		t.Fatalf("nil pointers must become SQL NULL")
	}
	d := models.NewDate(time.Date(2024, 5, 6, 13, 0, 0, 0, time.UTC))
	if got, ok := dateArg(&d).(time.Time); !ok || !got.Equal(d.Time) {
		t.Fatalf("unexpected date arg %v", dateArg(&d))
	}
	years := 4
	if intArg(&years) != int64(4) {
		t.Fatalf("unexpected int arg")
	}
}

// openIntegrationStore connects to the database named by HERDBOOK_TEST_DATABASE_URL
// and skips the test when it is unset.
func openIntegrationStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("HERDBOOK_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("HERDBOOK_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	store, err := NewStore(ctx, dsn, nil)
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	t.Cleanup(func() { _ = store.Close(ctx) })
	return store
}

func TestIntegrationSaleIsExclusive(t *testing.T) {
	store := openIntegrationStore(t)
	ctx := context.Background()
	user := time.Now().UnixNano() % 1_000_000_000

	var animal models.Animal
	err := store.RunInTx(ctx, user, func(tx repository.Tx) error {
		var err error
		animal, err = tx.InsertAnimal(ctx, models.Animal{
			Type:          "cow",
			PurchasePrice: decimal.NewFromInt(5000000),
			PurchaseDate:  models.NewDate(time.Now()),
			Status:        models.AnimalActive,
		})
		return err
	})
	if err != nil {
		t.Fatalf("insert animal: %v", err)
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		conflicts int
		successes int
	)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := store.RunInTx(ctx, user, func(tx repository.Tx) error {
				a, err := tx.LockAnimal(ctx, animal.ID)
				if err != nil {
					return err
				}
				if a.Status != models.AnimalActive {
					return &models.ConflictError{Entity: "animal", ID: a.ID, Reason: "already sold"}
				}
				if _, err := tx.InsertSale(ctx, models.Sale{AnimalID: a.ID, SaleDate: models.NewDate(time.Now()), SalePrice: decimal.NewFromInt(7000000), PaymentType: models.PaymentCash}); err != nil {
					return err
				}
				a.Status = models.AnimalSold
				return tx.UpdateAnimal(ctx, a)
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, models.ErrConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()
	if successes != 1 || conflicts != 1 {
		t.Fatalf("expected one sale and one conflict, got %d/%d", successes, conflicts)
	}
}

func TestIntegrationFinanceRoundTrip(t *testing.T) {
	store := openIntegrationStore(t)
	ctx := context.Background()
	user := time.Now().UnixNano()%1_000_000_000 + 1

	source := models.Source{Kind: models.SourceFeed, ID: 77}
	err := store.RunInTx(ctx, user, func(tx repository.Tx) error {
		_, err := tx.AppendFinance(ctx, models.FinanceRecord{
			Kind:     models.FinanceExpense,
			Amount:   decimal.RequireFromString("1234.56"),
			Category: models.CategoryFeedPurchase,
			Date:     models.NewDate(time.Now()),
			Source:   &source,
		})
		return err
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	err = store.View(ctx, user, func(r repository.Reader) error {
		found, err := r.FindFinanceBySource(ctx, source)
		if err != nil {
			return err
		}
		if len(found) != 1 || !found[0].Amount.Equal(decimal.RequireFromString("1234.56")) {
			t.Fatalf("unexpected records %+v", found)
		}
		total, err := r.SumFinance(ctx, models.FinanceExpense)
		if err != nil {
			return err
		}
		if !total.Equal(decimal.RequireFromString("1234.56")) {
			t.Fatalf("unexpected total %s", total)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("view: %v", err)
	}
}
