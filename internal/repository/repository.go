// Package repository defines the storage contract shared by the memory, SQLite and
// Postgres backends. Every read and write happens through a handle bound to one
// scope: a user id, or SharedScope for the butcher directory.
package repository

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/herdbook/internal/domain/models"
)

// SharedScope is the scope that owns records shared by every user.
const SharedScope int64 = 0

// Reader exposes the read side of one scope.
type Reader interface {
	// Scope returns the user id the handle is bound to.
	Scope() int64

	GetAnimal(ctx context.Context, id int64) (models.Animal, error)
	ListAnimals(ctx context.Context) ([]models.Animal, error)

	GetFeed(ctx context.Context, id int64) (models.Feed, error)
	ListFeed(ctx context.Context) ([]models.Feed, error)

	GetVaccination(ctx context.Context, id int64) (models.Vaccination, error)
	ListVaccinations(ctx context.Context) ([]models.Vaccination, error)

	GetSale(ctx context.Context, id int64) (models.Sale, error)
	ListSales(ctx context.Context) ([]models.Sale, error)

	// Butchers are shared: every scope reads the same directory.
	GetButcher(ctx context.Context, id int64) (models.Butcher, error)
	ListButchers(ctx context.Context) ([]models.Butcher, error)

	GetFinanceRecord(ctx context.Context, id int64) (models.FinanceRecord, error)
	// ListFinance returns entries ordered by date descending, then id descending.
	ListFinance(ctx context.Context) ([]models.FinanceRecord, error)
	FindFinanceBySource(ctx context.Context, source models.Source) ([]models.FinanceRecord, error)
	SumFinance(ctx context.Context, kind models.FinanceKind) (decimal.Decimal, error)
}

// Tx is a unit of work over one scope. Writes become visible to other handles only
// when the surrounding RunInTx returns nil.
//
// Get and Update methods return *models.NotFoundError for unknown ids. Delete and
// Remove methods report whether a row was removed and treat unknown ids as a no-op.
type Tx interface {
	Reader

	// LockAnimal reads the animal and holds it against concurrent writers until the
	// transaction ends.
	LockAnimal(ctx context.Context, id int64) (models.Animal, error)
	InsertAnimal(ctx context.Context, animal models.Animal) (models.Animal, error)
	UpdateAnimal(ctx context.Context, animal models.Animal) error
	DeleteAnimal(ctx context.Context, id int64) (bool, error)

	InsertFeed(ctx context.Context, feed models.Feed) (models.Feed, error)
	UpdateFeed(ctx context.Context, feed models.Feed) error
	DeleteFeed(ctx context.Context, id int64) (bool, error)

	InsertVaccination(ctx context.Context, v models.Vaccination) (models.Vaccination, error)
	UpdateVaccination(ctx context.Context, v models.Vaccination) error
	DeleteVaccination(ctx context.Context, id int64) (bool, error)

	InsertSale(ctx context.Context, sale models.Sale) (models.Sale, error)
	DeleteSale(ctx context.Context, id int64) (bool, error)

	// Butcher writes are only valid in SharedScope.
	InsertButcher(ctx context.Context, b models.Butcher) (models.Butcher, error)
	UpdateButcher(ctx context.Context, b models.Butcher) error
	DeleteButcher(ctx context.Context, id int64) (bool, error)

	AppendFinance(ctx context.Context, record models.FinanceRecord) (models.FinanceRecord, error)
	RemoveFinance(ctx context.Context, id int64) (bool, error)
}

// Repository is implemented by every storage backend.
type Repository interface {
	// RunInTx runs fn in a transaction bound to scope. Transactions on the same scope
	// are serialized. The memory and Postgres stores never make different scopes
	// wait on each other; SQLite has one writer and queues them.
	RunInTx(ctx context.Context, scope int64, fn func(tx Tx) error) error
	// View runs fn against a consistent read-only view of scope.
	View(ctx context.Context, scope int64, fn func(r Reader) error) error
	// ListOwners returns the ids of users owning at least one record.
	ListOwners(ctx context.Context) ([]int64, error)
	Close(ctx context.Context) error
}

// ErrButcherScope is returned when butcher writes are attempted outside SharedScope.
var ErrButcherScope = errors.New("butcher writes require the shared scope")
