// Package postgres implements the repository on relational Postgres tables. Each
// transaction takes a transaction-scoped advisory lock on its scope, so writes for
// one user are serialized while different users proceed in parallel.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/repository"
)

var _ repository.Repository = (*Store)(nil)

const (
	defaultDriver = "pgx"
	defaultDSN    = "postgres://localhost/herdbook?sslmode=disable"

	uniqueViolation = "23505"
)

// Store is the Postgres-backed repository.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewStore connects, pings and applies the schema.
func NewStore(ctx context.Context, dsn string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dsn == "" {
		dsn = defaultDSN
	}
	db, err := sql.Open(defaultDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := applySchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.Info("postgres store ready")
	return &Store{db: db, logger: logger}, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func applySchema(ctx context.Context, db execer) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("execute ddl: %w", err)
		}
	}
	return nil
}

// RunInTx runs fn in a database transaction holding the scope's advisory lock.
func (s *Store) RunInTx(ctx context.Context, scope int64, fn func(tx repository.Tx) error) (retErr error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.NewStorageError("begin", err)
	}
	defer func() {
		if retErr != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				s.logger.Warn("rollback failed", zap.Int64("scope", scope), zap.Error(rbErr))
			}
		}
	}()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, scope); err != nil {
		return models.NewStorageError("lock scope", err)
	}
	if err := fn(&handle{q: tx, scope: scope}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return models.NewStorageError("commit", err)
	}
	return nil
}

// View runs fn inside a read-only repeatable-read transaction.
func (s *Store) View(ctx context.Context, scope int64, fn func(r repository.Reader) error) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return models.NewStorageError("begin view", err)
	}
	defer func() { _ = tx.Rollback() }()
	return fn(&handle{q: tx, scope: scope})
}

// ListOwners returns every user id that owns at least one record.
func (s *Store) ListOwners(ctx context.Context) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id FROM animals
		UNION SELECT user_id FROM feed
		UNION SELECT user_id FROM vaccinations
		UNION SELECT user_id FROM sales
		UNION SELECT user_id FROM finance_records
		ORDER BY 1`)
	if err != nil {
		return nil, models.NewStorageError("list owners", err)
	}
	defer func() { _ = rows.Close() }()

	var owners []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, models.NewStorageError("scan owner", err)
		}
		owners = append(owners, id)
	}
	if err := rows.Err(); err != nil {
		return nil, models.NewStorageError("list owners", err)
	}
	return owners, nil
}

// Close closes the connection pool.
func (s *Store) Close(context.Context) error {
	return s.db.Close()
}

// DB exposes the underlying sql.DB for integration tests.
func (s *Store) DB() *sql.DB { return s.db }

type querier interface {
	execer
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

type handle struct {
	q     querier
	scope int64
}

func (h *handle) Scope() int64 { return h.scope }

const animalColumns = `id, user_id, type, breed, gender, birth_date, weight, purchase_price, purchase_date, status, created_at`

func scanAnimal(row scanner) (models.Animal, error) {
	var (
		a         models.Animal
		birth     sql.NullTime
		weight    decimal.NullDecimal
		purchased time.Time
	)
	if err := row.Scan(&a.ID, &a.UserID, &a.Type, &a.Breed, &a.Gender, &birth, &weight, &a.PurchasePrice, &purchased, &a.Status, &a.CreatedAt); err != nil {
		return models.Animal{}, err
	}
	a.BirthDate = nullDate(birth)
	a.Weight = nullDecimal(weight)
	a.PurchaseDate = models.NewDate(purchased)
	return a, nil
}

func (h *handle) GetAnimal(ctx context.Context, id int64) (models.Animal, error) {
	row := h.q.QueryRowContext(ctx, `SELECT `+animalColumns+` FROM animals WHERE id = $1 AND user_id = $2`, id, h.scope)
	a, err := scanAnimal(row)
	return a, notFound(err, "animal", id, "get animal")
}

func (h *handle) LockAnimal(ctx context.Context, id int64) (models.Animal, error) {
	row := h.q.QueryRowContext(ctx, `SELECT `+animalColumns+` FROM animals WHERE id = $1 AND user_id = $2 FOR UPDATE`, id, h.scope)
	a, err := scanAnimal(row)
	return a, notFound(err, "animal", id, "lock animal")
}

func (h *handle) ListAnimals(ctx context.Context) ([]models.Animal, error) {
	rows, err := h.q.QueryContext(ctx, `SELECT `+animalColumns+` FROM animals WHERE user_id = $1 ORDER BY id`, h.scope)
	if err != nil {
		return nil, models.NewStorageError("list animals", err)
	}
	return collect(rows, scanAnimal, "list animals")
}

func (h *handle) InsertAnimal(ctx context.Context, a models.Animal) (models.Animal, error) {
	a.UserID = h.scope
	row := h.q.QueryRowContext(ctx, `
		INSERT INTO animals (user_id, type, breed, gender, birth_date, weight, purchase_price, purchase_date, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`,
		a.UserID, a.Type, a.Breed, a.Gender, dateArg(a.BirthDate), decimalArg(a.Weight), a.PurchasePrice, a.PurchaseDate.Time, string(a.Status))
	if err := row.Scan(&a.ID, &a.CreatedAt); err != nil {
		return models.Animal{}, models.NewStorageError("insert animal", err)
	}
	return a, nil
}

func (h *handle) UpdateAnimal(ctx context.Context, a models.Animal) error {
	res, err := h.q.ExecContext(ctx, `
		UPDATE animals SET type = $3, breed = $4, gender = $5, birth_date = $6, weight = $7,
			purchase_price = $8, purchase_date = $9, status = $10
		WHERE id = $1 AND user_id = $2`,
		a.ID, h.scope, a.Type, a.Breed, a.Gender, dateArg(a.BirthDate), decimalArg(a.Weight), a.PurchasePrice, a.PurchaseDate.Time, string(a.Status))
	return affectedOrNotFound(res, err, "animal", a.ID)
}

func (h *handle) DeleteAnimal(ctx context.Context, id int64) (bool, error) {
	return h.delete(ctx, "animals", id)
}

const feedColumns = `id, user_id, name, quantity, unit_price, total_cost, supplier, feed_date, created_at`

func scanFeed(row scanner) (models.Feed, error) {
	var (
		f   models.Feed
		day time.Time
	)
	if err := row.Scan(&f.ID, &f.UserID, &f.Name, &f.Quantity, &f.UnitPrice, &f.TotalCost, &f.Supplier, &day, &f.CreatedAt); err != nil {
		return models.Feed{}, err
	}
	f.FeedDate = models.NewDate(day)
	return f, nil
}

func (h *handle) GetFeed(ctx context.Context, id int64) (models.Feed, error) {
	row := h.q.QueryRowContext(ctx, `SELECT `+feedColumns+` FROM feed WHERE id = $1 AND user_id = $2`, id, h.scope)
	f, err := scanFeed(row)
	return f, notFound(err, "feed", id, "get feed")
}

func (h *handle) ListFeed(ctx context.Context) ([]models.Feed, error) {
	rows, err := h.q.QueryContext(ctx, `SELECT `+feedColumns+` FROM feed WHERE user_id = $1 ORDER BY feed_date DESC, id`, h.scope)
	if err != nil {
		return nil, models.NewStorageError("list feed", err)
	}
	return collect(rows, scanFeed, "list feed")
}

func (h *handle) InsertFeed(ctx context.Context, f models.Feed) (models.Feed, error) {
	f.UserID = h.scope
	row := h.q.QueryRowContext(ctx, `
		INSERT INTO feed (user_id, name, quantity, unit_price, total_cost, supplier, feed_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`,
		f.UserID, f.Name, f.Quantity, f.UnitPrice, f.TotalCost, f.Supplier, f.FeedDate.Time)
	if err := row.Scan(&f.ID, &f.CreatedAt); err != nil {
		return models.Feed{}, models.NewStorageError("insert feed", err)
	}
	return f, nil
}

func (h *handle) UpdateFeed(ctx context.Context, f models.Feed) error {
	res, err := h.q.ExecContext(ctx, `
		UPDATE feed SET name = $3, quantity = $4, unit_price = $5, total_cost = $6, supplier = $7, feed_date = $8
		WHERE id = $1 AND user_id = $2`,
		f.ID, h.scope, f.Name, f.Quantity, f.UnitPrice, f.TotalCost, f.Supplier, f.FeedDate.Time)
	return affectedOrNotFound(res, err, "feed", f.ID)
}

func (h *handle) DeleteFeed(ctx context.Context, id int64) (bool, error) {
	return h.delete(ctx, "feed", id)
}

const vaccinationColumns = `id, user_id, animal_id, vaccine_name, vaccination_date, next_date, veterinarian, cost, created_at`

func scanVaccination(row scanner) (models.Vaccination, error) {
	var (
		v    models.Vaccination
		day  time.Time
		next sql.NullTime
		cost decimal.NullDecimal
	)
	if err := row.Scan(&v.ID, &v.UserID, &v.AnimalID, &v.VaccineName, &day, &next, &v.Veterinarian, &cost, &v.CreatedAt); err != nil {
		return models.Vaccination{}, err
	}
	v.VaccinationDate = models.NewDate(day)
	v.NextDate = nullDate(next)
	v.Cost = nullDecimal(cost)
	return v, nil
}

func (h *handle) GetVaccination(ctx context.Context, id int64) (models.Vaccination, error) {
	row := h.q.QueryRowContext(ctx, `SELECT `+vaccinationColumns+` FROM vaccinations WHERE id = $1 AND user_id = $2`, id, h.scope)
	v, err := scanVaccination(row)
	return v, notFound(err, "vaccination", id, "get vaccination")
}

func (h *handle) ListVaccinations(ctx context.Context) ([]models.Vaccination, error) {
	rows, err := h.q.QueryContext(ctx, `SELECT `+vaccinationColumns+` FROM vaccinations WHERE user_id = $1 ORDER BY vaccination_date DESC, id`, h.scope)
	if err != nil {
		return nil, models.NewStorageError("list vaccinations", err)
	}
	return collect(rows, scanVaccination, "list vaccinations")
}

func (h *handle) InsertVaccination(ctx context.Context, v models.Vaccination) (models.Vaccination, error) {
	v.UserID = h.scope
	row := h.q.QueryRowContext(ctx, `
		INSERT INTO vaccinations (user_id, animal_id, vaccine_name, vaccination_date, next_date, veterinarian, cost)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`,
		v.UserID, v.AnimalID, v.VaccineName, v.VaccinationDate.Time, dateArg(v.NextDate), v.Veterinarian, decimalArg(v.Cost))
	if err := row.Scan(&v.ID, &v.CreatedAt); err != nil {
		return models.Vaccination{}, models.NewStorageError("insert vaccination", err)
	}
	return v, nil
}

func (h *handle) UpdateVaccination(ctx context.Context, v models.Vaccination) error {
	res, err := h.q.ExecContext(ctx, `
		UPDATE vaccinations SET vaccine_name = $3, vaccination_date = $4, next_date = $5, veterinarian = $6, cost = $7
		WHERE id = $1 AND user_id = $2`,
		v.ID, h.scope, v.VaccineName, v.VaccinationDate.Time, dateArg(v.NextDate), v.Veterinarian, decimalArg(v.Cost))
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
		day     time.Time
	)
	if err := row.Scan(&s.ID, &s.UserID, &s.AnimalID, &butcher, &day, &s.SalePrice, &s.Profit, &s.BuyerName, &s.BuyerPhone, &s.PaymentType, &s.CreatedAt); err != nil {
		return models.Sale{}, err
	}
	if butcher.Valid {
		id := butcher.Int64
		s.ButcherID = &id
	}
	s.SaleDate = models.NewDate(day)
	return s, nil
}

func (h *handle) GetSale(ctx context.Context, id int64) (models.Sale, error) {
	row := h.q.QueryRowContext(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1 AND user_id = $2`, id, h.scope)
	s, err := scanSale(row)
	return s, notFound(err, "sale", id, "get sale")
}

func (h *handle) ListSales(ctx context.Context) ([]models.Sale, error) {
	rows, err := h.q.QueryContext(ctx, `SELECT `+saleColumns+` FROM sales WHERE user_id = $1 ORDER BY sale_date DESC, id`, h.scope)
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
	row := h.q.QueryRowContext(ctx, `
		INSERT INTO sales (user_id, animal_id, butcher_id, sale_date, sale_price, profit, buyer_name, buyer_phone, payment_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`,
		s.UserID, s.AnimalID, butcher, s.SaleDate.Time, s.SalePrice, s.Profit, s.BuyerName, s.BuyerPhone, string(s.PaymentType))
	if err := row.Scan(&s.ID, &s.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return models.Sale{}, &models.ConflictError{Entity: "animal", ID: s.AnimalID, Reason: "already sold"}
		}
		return models.Sale{}, models.NewStorageError("insert sale", err)
	}
	return s, nil
}

func (h *handle) DeleteSale(ctx context.Context, id int64) (bool, error) {
	return h.delete(ctx, "sales", id)
}

const butcherColumns = `id, name, phone, address, experience, notes, created_at`

func scanButcher(row scanner) (models.Butcher, error) {
	var (
		b   models.Butcher
		exp sql.NullInt32
	)
	if err := row.Scan(&b.ID, &b.Name, &b.Phone, &b.Address, &exp, &b.Notes, &b.CreatedAt); err != nil {
		return models.Butcher{}, err
	}
	if exp.Valid {
		years := int(exp.Int32)
		b.Experience = &years
	}
	return b, nil
}

func (h *handle) GetButcher(ctx context.Context, id int64) (models.Butcher, error) {
	row := h.q.QueryRowContext(ctx, `SELECT `+butcherColumns+` FROM butchers WHERE id = $1`, id)
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
	row := h.q.QueryRowContext(ctx, `
		INSERT INTO butchers (name, phone, address, experience, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		b.Name, b.Phone, b.Address, intArg(b.Experience), b.Notes)
	if err := row.Scan(&b.ID, &b.CreatedAt); err != nil {
		return models.Butcher{}, models.NewStorageError("insert butcher", err)
	}
	return b, nil
}

func (h *handle) UpdateButcher(ctx context.Context, b models.Butcher) error {
	if h.scope != repository.SharedScope {
		return repository.ErrButcherScope
	}
	res, err := h.q.ExecContext(ctx, `
		UPDATE butchers SET name = $2, phone = $3, address = $4, experience = $5, notes = $6
		WHERE id = $1`,
		b.ID, b.Name, b.Phone, b.Address, intArg(b.Experience), b.Notes)
	return affectedOrNotFound(res, err, "butcher", b.ID)
}

func (h *handle) DeleteButcher(ctx context.Context, id int64) (bool, error) {
	if h.scope != repository.SharedScope {
		return false, repository.ErrButcherScope
	}
	res, err := h.q.ExecContext(ctx, `DELETE FROM butchers WHERE id = $1`, id)
	return affected(res, err, "delete butcher")
}

const financeColumns = `id, user_id, kind, amount, category, description, record_date, source_kind, source_id, created_at`

func scanFinance(row scanner) (models.FinanceRecord, error) {
	var (
		r          models.FinanceRecord
		day        time.Time
		sourceKind sql.NullString
		sourceID   sql.NullInt64
	)
	if err := row.Scan(&r.ID, &r.UserID, &r.Kind, &r.Amount, &r.Category, &r.Description, &day, &sourceKind, &sourceID, &r.CreatedAt); err != nil {
		return models.FinanceRecord{}, err
	}
	r.Date = models.NewDate(day)
	if sourceKind.Valid && sourceID.Valid {
		r.Source = &models.Source{Kind: models.SourceKind(sourceKind.String), ID: sourceID.Int64}
	}
	return r, nil
}

func (h *handle) GetFinanceRecord(ctx context.Context, id int64) (models.FinanceRecord, error) {
	row := h.q.QueryRowContext(ctx, `SELECT `+financeColumns+` FROM finance_records WHERE id = $1 AND user_id = $2`, id, h.scope)
	r, err := scanFinance(row)
	return r, notFound(err, "finance record", id, "get finance record")
}

func (h *handle) ListFinance(ctx context.Context) ([]models.FinanceRecord, error) {
	rows, err := h.q.QueryContext(ctx, `SELECT `+financeColumns+` FROM finance_records WHERE user_id = $1 ORDER BY record_date DESC, id DESC`, h.scope)
	if err != nil {
		return nil, models.NewStorageError("list finance", err)
	}
	return collect(rows, scanFinance, "list finance")
}

func (h *handle) FindFinanceBySource(ctx context.Context, source models.Source) ([]models.FinanceRecord, error) {
	rows, err := h.q.QueryContext(ctx,
		`SELECT `+financeColumns+` FROM finance_records WHERE user_id = $1 AND source_kind = $2 AND source_id = $3 ORDER BY id`,
		h.scope, string(source.Kind), source.ID)
	if err != nil {
		return nil, models.NewStorageError("find finance by source", err)
	}
	return collect(rows, scanFinance, "find finance by source")
}

func (h *handle) SumFinance(ctx context.Context, kind models.FinanceKind) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := h.q.QueryRowContext(ctx, `SELECT COALESCE(SUM(amount), 0) FROM finance_records WHERE user_id = $1 AND kind = $2`, h.scope, string(kind)).Scan(&total)
	if err != nil {
		return decimal.Zero, models.NewStorageError("sum finance", err)
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
	row := h.q.QueryRowContext(ctx, `
		INSERT INTO finance_records (user_id, kind, amount, category, description, record_date, source_kind, source_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`,
		r.UserID, string(r.Kind), r.Amount, string(r.Category), r.Description, r.Date.Time, sourceKind, sourceID)
	if err := row.Scan(&r.ID, &r.CreatedAt); err != nil {
		return models.FinanceRecord{}, models.NewStorageError("append finance", err)
	}
	return r, nil
}

func (h *handle) RemoveFinance(ctx context.Context, id int64) (bool, error) {
	return h.delete(ctx, "finance_records", id)
}

// delete removes a user-owned row. table is always one of the package's constants.
func (h *handle) delete(ctx context.Context, table string, id int64) (bool, error) {
	res, err := h.q.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = $1 AND user_id = $2`, id, h.scope)
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

func nullDate(t sql.NullTime) *models.Date {
	if !t.Valid {
		return nil
	}
	return models.DatePtr(models.NewDate(t.Time))
}

func nullDecimal(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	return models.MoneyPtr(d.Decimal)
}

func dateArg(d *models.Date) any {
	if d == nil || d.IsZero() {
		return nil
	}
	return d.Time
}

func decimalArg(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return *d
}

func intArg(v *int) any {
	if v == nil {
		return nil
	}
	return int64(*v)
}
