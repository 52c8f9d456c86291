package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/repository"
	"github.com/mamadbah2/herdbook/internal/service/ledger"
)

func openStore(t *testing.T, path string) *Store {
	t.Helper()
	store, err := NewStore(context.Background(), path, nil)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	return store
}

func mustDay(t *testing.T, value string) models.Date {
	t.Helper()
	d, err := models.ParseDate(value)
	if err != nil {
		t.Fatalf("parse date %q: %v", value, err)
	}
	return d
}

func TestSchemaIsRelational(t *testing.T) {
	ctx := context.Background()
	store := openStore(t, filepath.Join(t.TempDir(), "herdbook.db"))
	defer func() { _ = store.Close(ctx) }()

	rows, err := store.db.QueryContext(ctx, `SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		t.Fatalf("list tables: %v", err)
	}
	defer func() { _ = rows.Close() }()
	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("scan: %v", err)
		}
		tables = append(tables, name)
	}
	want := []string{"animals", "butchers", "feed", "finance_records", "sales", "vaccinations"}
	if strings.Join(tables, ",") != strings.Join(want, ",") {
		t.Fatalf("tables = %v, want %v", tables, want)
	}

	var foreignKeys int
	if err := store.db.QueryRowContext(ctx, `PRAGMA foreign_keys`).Scan(&foreignKeys); err != nil {
		t.Fatalf("read pragma: %v", err)
	}
	if foreignKeys != 1 {
		t.Fatalf("foreign keys disabled")
	}
}

func TestStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "herdbook.db")
	store := openStore(t, path)

	source := models.Source{Kind: models.SourceAnimal}
	err := store.RunInTx(ctx, 7, func(tx repository.Tx) error {
		a, err := tx.InsertAnimal(ctx, models.Animal{
			Type:          "cow",
			BirthDate:     models.DatePtr(mustDay(t, "2021-04-02")),
			PurchasePrice: decimal.RequireFromString("5000000.10"),
			PurchaseDate:  mustDay(t, "2024-03-01"),
			Status:        models.AnimalActive,
		})
		if err != nil {
			return err
		}
		source.ID = a.ID
		_, err = tx.AppendFinance(ctx, models.FinanceRecord{
			Kind:     models.FinanceExpense,
			Category: models.CategoryAnimalPurchase,
			Amount:   a.PurchasePrice,
			Date:     a.PurchaseDate,
			Source:   &source,
		})
		return err
	})
	if err != nil {
		t.Fatalf("tx: %v", err)
	}
	if err := store.RunInTx(ctx, repository.SharedScope, func(tx repository.Tx) error {
		_, err := tx.InsertButcher(ctx, models.Butcher{Name: "Aziz", Phone: "1"})
		return err
	}); err != nil {
		t.Fatalf("butcher: %v", err)
	}
	if err := store.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened := openStore(t, path)
	defer func() { _ = reopened.Close(ctx) }()

	err = reopened.View(ctx, 7, func(r repository.Reader) error {
		animals, err := r.ListAnimals(ctx)
		if err != nil {
			return err
		}
		if len(animals) != 1 || animals[0].PurchasePrice.String() != "5000000.1" {
			t.Errorf("unexpected animals after reopen: %+v", animals)
		}
		if len(animals) == 1 && (animals[0].BirthDate == nil || animals[0].BirthDate.String() != "2021-04-02") {
			t.Errorf("birth date lost: %+v", animals[0].BirthDate)
		}
		found, err := r.FindFinanceBySource(ctx, source)
		if err != nil {
			return err
		}
		if len(found) != 1 || found[0].Date.String() != "2024-03-01" {
			t.Errorf("provenance tag lost across reopen: %+v", found)
		}
		butchers, err := r.ListButchers(ctx)
		if err != nil {
			return err
		}
		if len(butchers) != 1 {
			t.Errorf("shared butchers lost across reopen")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("view: %v", err)
	}

	owners, err := reopened.ListOwners(ctx)
	if err != nil {
		t.Fatalf("owners: %v", err)
	}
	if len(owners) != 1 || owners[0] != 7 {
		t.Fatalf("unexpected owners %v", owners)
	}
}

func TestFailedTransactionIsNotPersisted(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "herdbook.db")
	store := openStore(t, path)

	boom := errors.New("boom")
	err := store.RunInTx(ctx, 1, func(tx repository.Tx) error {
		if _, err := tx.InsertFeed(ctx, models.Feed{Name: "hay", FeedDate: mustDay(t, "2024-06-01")}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	// The connection must be usable again after the rollback.
	if err := store.RunInTx(ctx, 2, func(tx repository.Tx) error {
		_, err := tx.InsertFeed(ctx, models.Feed{Name: "bran", FeedDate: mustDay(t, "2024-06-01")})
		return err
	}); err != nil {
		t.Fatalf("tx after rollback: %v", err)
	}
	_ = store.Close(ctx)

	reopened := openStore(t, path)
	defer func() { _ = reopened.Close(ctx) }()
	owners, err := reopened.ListOwners(ctx)
	if err != nil {
		t.Fatalf("owners: %v", err)
	}
	if len(owners) != 1 || owners[0] != 2 {
		t.Fatalf("rolled back scope was persisted: %v", owners)
	}
}

func TestDeletedIDsAreNotReused(t *testing.T) {
	ctx := context.Background()
	store := openStore(t, filepath.Join(t.TempDir(), "herdbook.db"))
	defer func() { _ = store.Close(ctx) }()

	insert := func() int64 {
		var id int64
		if err := store.RunInTx(ctx, 3, func(tx repository.Tx) error {
			a, err := tx.InsertAnimal(ctx, models.Animal{Type: "goat", PurchaseDate: mustDay(t, "2024-01-01"), Status: models.AnimalActive})
			id = a.ID
			return err
		}); err != nil {
			t.Fatalf("insert: %v", err)
		}
		return id
	}

	first := insert()
	if err := store.RunInTx(ctx, 3, func(tx repository.Tx) error {
		_, err := tx.DeleteAnimal(ctx, first)
		return err
	}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if second := insert(); second <= first {
		t.Fatalf("id %d reused after delete (first %d)", second, first)
	}
}

func TestSecondSaleOfAnimalConflicts(t *testing.T) {
	ctx := context.Background()
	store := openStore(t, filepath.Join(t.TempDir(), "herdbook.db"))
	defer func() { _ = store.Close(ctx) }()

	err := store.RunInTx(ctx, 4, func(tx repository.Tx) error {
		a, err := tx.InsertAnimal(ctx, models.Animal{Type: "cow", PurchaseDate: mustDay(t, "2024-01-01"), Status: models.AnimalActive})
		if err != nil {
			return err
		}
		sale := models.Sale{AnimalID: a.ID, SaleDate: mustDay(t, "2024-02-01"), SalePrice: decimal.NewFromInt(10), PaymentType: models.PaymentCash}
		if _, err := tx.InsertSale(ctx, sale); err != nil {
			return err
		}
		_, err = tx.InsertSale(ctx, sale)
		return err
	})
	if !errors.Is(err, models.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestDeletedButcherDetachesSales(t *testing.T) {
	ctx := context.Background()
	store := openStore(t, filepath.Join(t.TempDir(), "herdbook.db"))
	defer func() { _ = store.Close(ctx) }()

	var butcher models.Butcher
	if err := store.RunInTx(ctx, repository.SharedScope, func(tx repository.Tx) error {
		var err error
		butcher, err = tx.InsertButcher(ctx, models.Butcher{Name: "Aziz", Phone: "1"})
		return err
	}); err != nil {
		t.Fatalf("butcher: %v", err)
	}

	var saleID int64
	if err := store.RunInTx(ctx, 5, func(tx repository.Tx) error {
		a, err := tx.InsertAnimal(ctx, models.Animal{Type: "sheep", PurchaseDate: mustDay(t, "2024-01-01"), Status: models.AnimalActive})
		if err != nil {
			return err
		}
		s, err := tx.InsertSale(ctx, models.Sale{AnimalID: a.ID, ButcherID: &butcher.ID, SaleDate: mustDay(t, "2024-02-01"), PaymentType: models.PaymentCash})
		saleID = s.ID
		return err
	}); err != nil {
		t.Fatalf("sale: %v", err)
	}

	if err := store.RunInTx(ctx, repository.SharedScope, func(tx repository.Tx) error {
		_, err := tx.DeleteButcher(ctx, butcher.ID)
		return err
	}); err != nil {
		t.Fatalf("delete butcher: %v", err)
	}

	err := store.View(ctx, 5, func(r repository.Reader) error {
		s, err := r.GetSale(ctx, saleID)
		if err != nil {
			return err
		}
		if s.ButcherID != nil {
			t.Errorf("sale still names deleted butcher %d", *s.ButcherID)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("view: %v", err)
	}
}

func TestLedgerTotalsStayExact(t *testing.T) {
	ctx := context.Background()
	store := openStore(t, filepath.Join(t.TempDir(), "herdbook.db"))
	defer func() { _ = store.Close(ctx) }()
	svc := ledger.NewService(store, nil)

	price := decimal.RequireFromString("0.10")
	cow, err := svc.CreateAnimal(ctx, 9, models.NewAnimal{Type: "cow", PurchasePrice: &price, PurchaseDate: mustDay(t, "2024-03-01")})
	if err != nil {
		t.Fatalf("create animal: %v", err)
	}
	fee := decimal.RequireFromString("0.20")
	if _, err := svc.AddFinanceEntry(ctx, 9, models.NewFinanceEntry{
		Kind:     models.FinanceExpense,
		Amount:   &fee,
		Category: models.CategoryTransport,
		Date:     mustDay(t, "2024-03-02"),
	}); err != nil {
		t.Fatalf("add entry: %v", err)
	}
	salePrice := decimal.RequireFromString("1000000.30")
	sale, err := svc.CreateSale(ctx, 9, models.NewSale{AnimalID: cow.ID, SaleDate: mustDay(t, "2024-06-01"), SalePrice: &salePrice})
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}
	if !sale.Profit.Equal(decimal.RequireFromString("1000000.2")) {
		t.Fatalf("profit = %s", sale.Profit)
	}

	var income, expense decimal.Decimal
	if err := store.View(ctx, 9, func(r repository.Reader) error {
		var err error
		if income, err = r.SumFinance(ctx, models.FinanceIncome); err != nil {
			return err
		}
		expense, err = r.SumFinance(ctx, models.FinanceExpense)
		return err
	}); err != nil {
		t.Fatalf("sum: %v", err)
	}
	if !expense.Equal(decimal.RequireFromString("0.3")) || !income.Equal(salePrice) {
		t.Fatalf("income %s expense %s", income, expense)
	}

	if err := svc.DeleteSale(ctx, 9, sale.ID); err != nil {
		t.Fatalf("delete sale: %v", err)
	}
	var records []models.FinanceRecord
	if err := store.View(ctx, 9, func(r repository.Reader) error {
		var err error
		records, err = r.ListFinance(ctx)
		return err
	}); err != nil {
		t.Fatalf("list finance: %v", err)
	}
	var categories []string
	for _, r := range records {
		categories = append(categories, string(r.Category))
	}
	sort.Strings(categories)
	if strings.Join(categories, ",") != "animal_purchase,transport" {
		t.Fatalf("unexpected ledger after sale deletion: %v", categories)
	}
}
