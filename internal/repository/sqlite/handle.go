package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	sqlitedrv "modernc.org/sqlite"
	sqlitelib "modernc.org/sqlite/lib"

	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/repository"
)

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

// handle binds one connection's open transaction to a scope.
type handle struct {
	q     querier
	scope int64
	now   func() time.Time
}

func (h *handle) Scope() int64 { return h.scope }

func (h *handle) stamp() (time.Time, string) {
	t := h.now().UTC()
	return t, t.Format(time.RFC3339Nano)
}

// insert runs an INSERT and returns the new row id.
func (h *handle) insert(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := h.q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const animalColumns = `id, user_id, type, breed, gender, birth_date, weight, purchase_price, purchase_date, status, created_at`

func scanAnimal(row scanner) (models.Animal, error) {
	var (
		a         models.Animal
		birth     sql.NullString
		weight    decimal.NullDecimal
		purchased string
		created   string
	)
	if err := row.Scan(&a.ID, &a.UserID, &a.Type, &a.Breed, &a.Gender, &birth, &weight, &a.PurchasePrice, &purchased, &a.Status, &created); err != nil {
		return models.Animal{}, err
	}
	var err error
	if a.BirthDate, err = nullDate(birth); err != nil {
		return models.Animal{}, err
	}
	if a.PurchaseDate, err = models.ParseDate(purchased); err != nil {
		return models.Animal{}, err
	}
	a.Weight = nullDecimal(weight)
	a.CreatedAt, err = parseStamp(created)
	return a, err
}

func (h *handle) GetAnimal(ctx context.Context, id int64) (models.Animal, error) {
	row := h.q.QueryRowContext(ctx, `SELECT `+animalColumns+` FROM animals WHERE id = ? AND user_id = ?`, id, h.scope)
	a, err := scanAnimal(row)
	return a, notFound(err, "animal", id, "get animal")
}

// LockAnimal is a plain read: BEGIN IMMEDIATE already holds the write lock.
func (h *handle) LockAnimal(ctx context.Context, id int64) (models.Animal, error) {
	return h.GetAnimal(ctx, id)
}

func (h *handle) ListAnimals(ctx context.Context) ([]models.Animal, error) {
	rows, err := h.q.QueryContext(ctx, `SELECT `+animalColumns+` FROM animals WHERE user_id = ? ORDER BY id`, h.scope)
	if err != nil {
		return nil, models.NewStorageError("list animals", err)
	}
	return collect(rows, scanAnimal, "list animals")
}

func (h *handle) InsertAnimal(ctx context.Context, a models.Animal) (models.Animal, error) {
	a.UserID = h.scope
	var created string
	a.CreatedAt, created = h.stamp()
	id, err := h.insert(ctx, `
		INSERT INTO animals (user_id, type, breed, gender, birth_date, weight, purchase_price, purchase_date, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.UserID, a.Type, a.Breed, a.Gender, dateArg(a.BirthDate), decimalArg(a.Weight), a.PurchasePrice.String(), dayText(a.PurchaseDate), string(a.Status), created)
	if err != nil {
		return models.Animal{}, models.NewStorageError("insert animal", err)
	}
	a.ID = id
	return a, nil
}

func (h *handle) UpdateAnimal(ctx context.Context, a models.Animal) error {
	res, err := h.q.ExecContext(ctx, `
		UPDATE animals SET type = ?, breed = ?, gender = ?, birth_date = ?, weight = ?,
			purchase_price = ?, purchase_date = ?, status = ?
		WHERE id = ? AND user_id = ?`,
		a.Type, a.Breed, a.Gender, dateArg(a.BirthDate), decimalArg(a.Weight), a.PurchasePrice.String(), dayText(a.PurchaseDate), string(a.Status),
		a.ID, h.scope)
	return affectedOrNotFound(res, err, "animal", a.ID)
}

func (h *handle) DeleteAnimal(ctx context.Context, id int64) (bool, error) {
	return h.delete(ctx, "animals", id)
}

const feedColumns = `id, user_id, name, quantity, unit_price, total_cost, supplier, feed_date, created_at`

func scanFeed(row scanner) (models.Feed, error) {
	var (
		f       models.Feed
		day     string
		created string
	)
	if err := row.Scan(&f.ID, &f.UserID, &f.Name, &f.Quantity, &f.UnitPrice, &f.TotalCost, &f.Supplier, &day, &created); err != nil {
		return models.Feed{}, err
	}
	var err error
	if f.FeedDate, err = models.ParseDate(day); err != nil {
		return models.Feed{}, err
	}
	f.CreatedAt, err = parseStamp(created)
	return f, err
}

func (h *handle) GetFeed(ctx context.Context, id int64) (models.Feed, error) {
	row := h.q.QueryRowContext(ctx, `SELECT `+feedColumns+` FROM feed WHERE id = ? AND user_id = ?`, id, h.scope)
	f, err := scanFeed(row)
	return f, notFound(err, "feed", id, "get feed")
}

func (h *handle) ListFeed(ctx context.Context) ([]models.Feed, error) {
	rows, err := h.q.QueryContext(ctx, `SELECT `+feedColumns+` FROM feed WHERE user_id = ? ORDER BY feed_date DESC, id`, h.scope)
	if err != nil {
		return nil, models.NewStorageError("list feed", err)
	}
	return collect(rows, scanFeed, "list feed")
}

func (h *handle) InsertFeed(ctx context.Context, f models.Feed) (models.Feed, error) {
	f.UserID = h.scope
	var created string
	f.CreatedAt, created = h.stamp()
	id, err := h.insert(ctx, `
		INSERT INTO feed (user_id, name, quantity, unit_price, total_cost, supplier, feed_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		f.UserID, f.Name, f.Quantity.String(), f.UnitPrice.String(), f.TotalCost.String(), f.Supplier, dayText(f.FeedDate), created)
	if err != nil {
		return models.Feed{}, models.NewStorageError("insert feed", err)
	}
	f.ID = id
	return f, nil
}

func (h *handle) UpdateFeed(ctx context.Context, f models.Feed) error {
	res, err := h.q.ExecContext(ctx, `
		UPDATE feed SET name = ?, quantity = ?, unit_price = ?, total_cost = ?, supplier = ?, feed_date = ?
		WHERE id = ? AND user_id = ?`,
		f.Name, f.Quantity.String(), f.UnitPrice.String(), f.TotalCost.String(), f.Supplier, dayText(f.FeedDate), f.ID, h.scope)
	return affectedOrNotFound(res, err, "feed", f.ID)
}

func (h *handle) DeleteFeed(ctx context.Context, id int64) (bool, error) {
	return h.delete(ctx, "feed", id)
}

const vaccinationColumns = `id, user_id, animal_id, vaccine_name, vaccination_date, next_date, veterinarian, cost, created_at`

func scanVaccination(row scanner) (models.Vaccination, error) {
	var (
		v       models.Vaccination
		day     string
		next    sql.NullString
		cost    decimal.NullDecimal
		created string
	)
	if err := row.Scan(&v.ID, &v.UserID, &v.AnimalID, &v.VaccineName, &day, &next, &v.Veterinarian, &cost, &created); err != nil {
		return models.Vaccination{}, err
	}
	var err error
	if v.VaccinationDate, err = models.ParseDate(day); err != nil {
		return models.Vaccination{}, err
	}
	if v.NextDate, err = nullDate(next); err != nil {
		return models.Vaccination{}, err
	}
	v.Cost = nullDecimal(cost)
	v.CreatedAt, err = parseStamp(created)
	return v, err
}

func (h *handle) GetVaccination(ctx context.Context, id int64) (models.Vaccination, error) {
	row := h.q.QueryRowContext(ctx, `SELECT `+vaccinationColumns+` FROM vaccinations WHERE id = ? AND user_id = ?`, id, h.scope)
	v, err := scanVaccination(row)
	return v, notFound(err, "vaccination", id, "get vaccination")
}

func (h *handle) ListVaccinations(ctx context.Context) ([]models.Vaccination, error) {
	rows, err := h.q.QueryContext(ctx, `SELECT `+vaccinationColumns+` FROM vaccinations WHERE user_id = ? ORDER BY vaccination_date DESC, id`, h.scope)
	if err != nil {
		return nil, models.NewStorageError("list vaccinations", err)
	}
	return collect(rows, scanVaccination, "list vaccinations")
}

func (h *handle) InsertVaccination(ctx context.Context, v models.Vaccination) (models.Vaccination, error) {
	v.UserID = h.scope
	var created string
	v.CreatedAt, created = h.stamp()
	id, err := h.insert(ctx, `
		INSERT INTO vaccinations (user_id, animal_id, vaccine_name, vaccination_date, next_date, veterinarian, cost, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		v.UserID, v.AnimalID, v.VaccineName, dayText(v.VaccinationDate), dateArg(v.NextDate), v.Veterinarian, decimalArg(v.Cost), created)
	if err != nil {
		return models.Vaccination{}, models.NewStorageError("insert vaccination", err)
	}
	v.ID = id
	return v, nil
}

func (h *handle) UpdateVaccination(ctx context.Context, v models.Vaccination) error {
	res, err := h.q.ExecContext(ctx, `
		UPDATE vaccinations SET vaccine_name = ?, vaccination_date = ?, next_date = ?, veterinarian = ?, cost = ?
		WHERE id = ? AND user_id = ?`,
		v.VaccineName, dayText(v.VaccinationDate), dateArg(v.NextDate), v.Veterinarian, decimalArg(v.Cost), v.ID, h.scope)
	return affectedOrNotFound(res, err, "vaccination", v.ID)
}

func (h *handle) DeleteVaccination(ctx context.Context, id int64) (bool, error) {
	return h.delete(ctx, "vaccinations", id)
}

const saleColumns = `id, user_id, animal_id, butcher_id, sale_date, sale_price, profit, buyer_name, buyer_phone, payment_type, created_at`

func scanSale(row scanner) (models.Sale, error) {
	var (
		s       models.Sale
		butcher sql.NullInt64
		day     string
		created string
	)
	if err := row.Scan(&s.ID, &s.UserID, &s.AnimalID, &butcher, &day, &s.SalePrice, &s.Profit, &s.BuyerName, &s.BuyerPhone, &s.PaymentType, &created); err != nil {
		return models.Sale{}, err
	}
	if butcher.Valid {
		id := butcher.Int64
		s.ButcherID = &id
	}
	var err error
	if s.SaleDate, err = models.ParseDate(day); err != nil {
		return models.Sale{}, err
	}
	s.CreatedAt, err = parseStamp(created)
	return s, err
}

func (h *handle) GetSale(ctx context.Context, id int64) (models.Sale, error) {
	row := h.q.QueryRowContext(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = ? AND user_id = ?`, id, h.scope)
	s, err := scanSale(row)
	return s, notFound(err, "sale", id, "get sale")
}

func (h *handle) ListSales(ctx context.Context) ([]models.Sale, error) {
	rows, err := h.q.QueryContext(ctx, `SELECT `+saleColumns+` FROM sales WHERE user_id = ? ORDER BY sale_date DESC, id`, h.scope)
	if err != nil {
		return nil, models.NewStorageError("list sales", err)
	}
	return collect(rows, scanSale, "list sales")
}

func (h *handle) InsertSale(ctx context.Context, s models.Sale) (models.Sale, error) {
	s.UserID = h.scope
	var butcher any
	if s.ButcherID != nil {
		butcher = *s.ButcherID
	}
	var created string
	s.CreatedAt, created = h.stamp()
	id, err := h.insert(ctx, `
		INSERT INTO sales (user_id, animal_id, butcher_id, sale_date, sale_price, profit, buyer_name, buyer_phone, payment_type, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.UserID, s.AnimalID, butcher, dayText(s.SaleDate), s.SalePrice.String(), s.Profit.String(), s.BuyerName, s.BuyerPhone, string(s.PaymentType), created)
	if err != nil {
		if uniqueViolation(err) {
			return models.Sale{}, &models.ConflictError{Entity: "animal", ID: s.AnimalID, Reason: "already sold"}
		}
		return models.Sale{}, models.NewStorageError("insert sale", err)
	}
	s.ID = id
	return s, nil
}

func (h *handle) DeleteSale(ctx context.Context, id int64) (bool, error) {
	return h.delete(ctx, "sales", id)
}

const butcherColumns = `id, name, phone, address, experience, notes, created_at`

func scanButcher(row scanner) (models.Butcher, error) {
	var (
		b       models.Butcher
		exp     sql.NullInt64
		created string
	)
	if err := row.Scan(&b.ID, &b.Name, &b.Phone, &b.Address, &exp, &b.Notes, &created); err != nil {
		return models.Butcher{}, err
	}
	if exp.Valid {
		years := int(exp.Int64)
		b.Experience = &years
	}
	var err error
	b.CreatedAt, err = parseStamp(created)
	return b, err
}

func (h *handle) GetButcher(ctx context.Context, id int64) (models.Butcher, error) {
	row := h.q.QueryRowContext(ctx, `SELECT `+butcherColumns+` FROM butchers WHERE id = ?`, id)
	b, err := scanButcher(row)
	return b, notFound(err, "butcher", id, "get butcher")
}

func (h *handle) ListButchers(ctx context.Context) ([]models.Butcher, error) {
	rows, err := h.q.QueryContext(ctx, `SELECT `+butcherColumns+` FROM butchers ORDER BY id`)
	if err != nil {
		return nil, models.NewStorageError("list butchers", err)
	}
	return collect(rows, scanButcher, "list butchers")
}

func (h *handle) InsertButcher(ctx context.Context, b models.Butcher) (models.Butcher, error) {
	if h.scope != repository.SharedScope {
		return models.Butcher{}, repository.ErrButcherScope
	}
	var created string
	b.CreatedAt, created = h.stamp()
	id, err := h.insert(ctx, `
		INSERT INTO butchers (name, phone, address, experience, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		b.Name, b.Phone, b.Address, intArg(b.Experience), b.Notes, created)
	if err != nil {
		return models.Butcher{}, models.NewStorageError("insert butcher", err)
	}
	b.ID = id
	return b, nil
}

func (h *handle) UpdateButcher(ctx context.Context, b models.Butcher) error {
	if h.scope != repository.SharedScope {
		return repository.ErrButcherScope
	}
	res, err := h.q.ExecContext(ctx, `
		UPDATE butchers SET name = ?, phone = ?, address = ?, experience = ?, notes = ?
		WHERE id = ?`,
		b.Name, b.Phone, b.Address, intArg(b.Experience), b.Notes, b.ID)
	return affectedOrNotFound(res, err, "butcher", b.ID)
}

func (h *handle) DeleteButcher(ctx context.Context, id int64) (bool, error) {
	if h.scope != repository.SharedScope {
		return false, repository.ErrButcherScope
	}
	res, err := h.q.ExecContext(ctx, `DELETE FROM butchers WHERE id = ?`, id)
	return affected(res, err, "delete butcher")
}

const financeColumns = `id, user_id, kind, amount, category, description, record_date, source_kind, source_id, created_at`

func scanFinance(row scanner) (models.FinanceRecord, error) {
	var (
		r          models.FinanceRecord
		day        string
		sourceKind sql.NullString
		sourceID   sql.NullInt64
		created    string
	)
	if err := row.Scan(&r.ID, &r.UserID, &r.Kind, &r.Amount, &r.Category, &r.Description, &day, &sourceKind, &sourceID, &created); err != nil {
		return models.FinanceRecord{}, err
	}
	if sourceKind.Valid && sourceID.Valid {
		r.Source = &models.Source{Kind: models.SourceKind(sourceKind.String), ID: sourceID.Int64}
	}
	var err error
	if r.Date, err = models.ParseDate(day); err != nil {
		return models.FinanceRecord{}, err
	}
	r.CreatedAt, err = parseStamp(created)
	return r, err
}

func (h *handle) GetFinanceRecord(ctx context.Context, id int64) (models.FinanceRecord, error) {
	row := h.q.QueryRowContext(ctx, `SELECT `+financeColumns+` FROM finance_records WHERE id = ? AND user_id = ?`, id, h.scope)
	r, err := scanFinance(row)
	return r, notFound(err, "finance record", id, "get finance record")
}

func (h *handle) ListFinance(ctx context.Context) ([]models.FinanceRecord, error) {
	rows, err := h.q.QueryContext(ctx, `SELECT `+financeColumns+` FROM finance_records WHERE user_id = ? ORDER BY record_date DESC, id DESC`, h.scope)
	if err != nil {
		return nil, models.NewStorageError("list finance", err)
	}
	return collect(rows, scanFinance, "list finance")
}

func (h *handle) FindFinanceBySource(ctx context.Context, source models.Source) ([]models.FinanceRecord, error) {
	rows, err := h.q.QueryContext(ctx,
		`SELECT `+financeColumns+` FROM finance_records WHERE user_id = ? AND source_kind = ? AND source_id = ? ORDER BY id`,
		h.scope, string(source.Kind), source.ID)
	if err != nil {
		return nil, models.NewStorageError("find finance by source", err)
	}
	return collect(rows, scanFinance, "find finance by source")
}

// SumFinance adds the amounts in Go. SQLite's SUM would go through floating point.
func (h *handle) SumFinance(ctx context.Context, kind models.FinanceKind) (decimal.Decimal, error) {
	rows, err := h.q.QueryContext(ctx, `SELECT amount FROM finance_records WHERE user_id = ? AND kind = ?`, h.scope, string(kind))
	if err != nil {
		return decimal.Zero, models.NewStorageError("sum finance", err)
	}
	amounts, err := collect(rows, func(row scanner) (decimal.Decimal, error) {
		var d decimal.Decimal
		err := row.Scan(&d)
		return d, err
	}, "sum finance")
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, d := range amounts {
		total = total.Add(d)
	}
	return total, nil
}

func (h *handle) AppendFinance(ctx context.Context, r models.FinanceRecord) (models.FinanceRecord, error) {
	if err := models.CheckFinanceRecord(r); err != nil {
		return models.FinanceRecord{}, err
	}
	r.UserID = h.scope
	var sourceKind, sourceID any
	if r.Source != nil {
		sourceKind, sourceID = string(r.Source.Kind), r.Source.ID
	}
	var created string
	r.CreatedAt, created = h.stamp()
	id, err := h.insert(ctx, `
		INSERT INTO finance_records (user_id, kind, amount, category, description, record_date, source_kind, source_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.UserID, string(r.Kind), r.Amount.String(), string(r.Category), r.Description, dayText(r.Date), sourceKind, sourceID, created)
	if err != nil {
		return models.FinanceRecord{}, models.NewStorageError("append finance", err)
	}
	r.ID = id
	return r, nil
}

func (h *handle) RemoveFinance(ctx context.Context, id int64) (bool, error) {
	return h.delete(ctx, "finance_records", id)
}

// delete removes a user-owned row. table is always one of the package's constants.
func (h *handle) delete(ctx context.Context, table string, id int64) (bool, error) {
	res, err := h.q.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ? AND user_id = ?`, id, h.scope)
	return affected(res, err, "delete "+strings.TrimSuffix(table, "s"))
}

func collect[T any](rows *sql.Rows, scan func(scanner) (T, error), op string) ([]T, error) {
	defer func() { _ = rows.Close() }()
	out := []T{}
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, models.NewStorageError(op, err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, models.NewStorageError(op, err)
	}
	return out, nil
}

func notFound(err error, entity string, id int64, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return &models.NotFoundError{Entity: entity, ID: id}
	}
	return models.NewStorageError(op, err)
}

func affected(res sql.Result, err error, op string) (bool, error) {
	if err != nil {
		return false, models.NewStorageError(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, models.NewStorageError(op, err)
	}
	return n > 0, nil
}

func affectedOrNotFound(res sql.Result, err error, entity string, id int64) error {
	ok, err := affected(res, err, "update "+entity)
	if err != nil {
		return err
	}
	if !ok {
		return &models.NotFoundError{Entity: entity, ID: id}
	}
	return nil
}

func uniqueViolation(err error) bool {
	var se *sqlitedrv.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Code() == sqlitelib.SQLITE_CONSTRAINT_UNIQUE || strings.Contains(se.Error(), "UNIQUE constraint failed")
}

func dayText(d models.Date) string {
	return d.Format(models.DateLayout)
}

func dateArg(d *models.Date) any {
	if d == nil || d.IsZero() {
		return nil
	}
	return dayText(*d)
}

func nullDate(s sql.NullString) (*models.Date, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	d, err := models.ParseDate(s.String)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func decimalArg(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return d.String()
}

func nullDecimal(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	return models.MoneyPtr(d.Decimal)
}

func intArg(v *int) any {
	if v == nil {
		return nil
	}
	return int64(*v)
}

func parseStamp(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("created_at %q: %w", value, err)
	}
	return t, nil
}
