// Package memory provides an in-memory implementation of the repository used for
// tests and ephemeral environments.
package memory

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/repository"
)

var _ repository.Repository = (*Store)(nil)

// Snapshot is a point-in-time copy of one scope's records. Records are stored by
// value; pointer fields are replaced on update and never written through, so a
// shallow map copy is a full clone.
type Snapshot struct {
	Animals      map[int64]models.Animal
	Feed         map[int64]models.Feed
	Vaccinations map[int64]models.Vaccination
	Sales        map[int64]models.Sale
	Butchers     map[int64]models.Butcher
	Finance      map[int64]models.FinanceRecord
}

// NewSnapshot returns an empty snapshot with every map allocated.
func NewSnapshot() Snapshot {
	return Snapshot{
		Animals:      make(map[int64]models.Animal),
		Feed:         make(map[int64]models.Feed),
		Vaccinations: make(map[int64]models.Vaccination),
		Sales:        make(map[int64]models.Sale),
		Butchers:     make(map[int64]models.Butcher),
		Finance:      make(map[int64]models.FinanceRecord),
	}
}

// Clone copies every map of the snapshot. Nil maps come back allocated.
func (s Snapshot) Clone() Snapshot {
	return Snapshot{
		Animals:      cloneMap(s.Animals),
		Feed:         cloneMap(s.Feed),
		Vaccinations: cloneMap(s.Vaccinations),
		Sales:        cloneMap(s.Sales),
		Butchers:     cloneMap(s.Butchers),
		Finance:      cloneMap(s.Finance),
	}
}

// Empty reports whether the snapshot holds no records.
func (s Snapshot) Empty() bool {
	return len(s.Animals) == 0 && len(s.Feed) == 0 && len(s.Vaccinations) == 0 &&
		len(s.Sales) == 0 && len(s.Butchers) == 0 && len(s.Finance) == 0
}

func cloneMap[V any](in map[int64]V) map[int64]V {
	out := make(map[int64]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the clock used for created-at timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

type partition struct {
	mu    sync.RWMutex
	state Snapshot
}

type sequences struct {
	animal      atomic.Int64
	feed        atomic.Int64
	vaccination atomic.Int64
	sale        atomic.Int64
	butcher     atomic.Int64
	finance     atomic.Int64
}

// Store keeps one partition per scope. Each partition has its own lock, so
// transactions for different users run in parallel.
type Store struct {
	mu         sync.Mutex
	partitions map[int64]*partition

	seq sequences
	now func() time.Time
}

// NewStore constructs an empty in-memory store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		partitions: make(map[int64]*partition),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// lookup returns the scope's partition without creating it.
func (s *Store) lookup(scope int64) (*partition, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.partitions[scope]
	return p, ok
}

func (s *Store) partition(scope int64) *partition {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.partitions[scope]
	if !ok {
		p = &partition{state: NewSnapshot()}
		s.partitions[scope] = p
	}
	return p
}

// RunInTx executes fn against a private copy of the scope's state and swaps it in
// when fn succeeds.
func (s *Store) RunInTx(ctx context.Context, scope int64, fn func(tx repository.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p := s.partition(scope)
	p.mu.Lock()
	defer p.mu.Unlock()

	tx := &txn{view: view{store: s, scope: scope, state: p.state.Clone()}}
	if err := fn(tx); err != nil {
		return err
	}
	p.state = tx.state
	return nil
}

// View executes fn against a read-only snapshot of the scope's state. Reading a
// scope that was never written sees an empty snapshot and leaves no partition.
func (s *Store) View(ctx context.Context, scope int64, fn func(r repository.Reader) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	state := NewSnapshot()
	if p, ok := s.lookup(scope); ok {
		p.mu.RLock()
		state = p.state.Clone()
		p.mu.RUnlock()
	}
	return fn(&view{store: s, scope: scope, state: state})
}

// ListOwners returns every user scope holding at least one record, ascending.
func (s *Store) ListOwners(ctx context.Context) ([]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	scopes := s.snapshotPartitions()
	owners := make([]int64, 0, len(scopes))
	for scope, p := range scopes {
		if scope == repository.SharedScope {
			continue
		}
		p.mu.RLock()
		empty := p.state.Empty()
		p.mu.RUnlock()
		if !empty {
			owners = append(owners, scope)
		}
	}
	sort.Slice(owners, func(i, j int) bool { return owners[i] < owners[j] })
	return owners, nil
}

// Close is a no-op for the memory store.
func (s *Store) Close(context.Context) error { return nil }

// ExportState returns a copy of every partition keyed by scope.
func (s *Store) ExportState() map[int64]Snapshot {
	out := make(map[int64]Snapshot)
	for scope, p := range s.snapshotPartitions() {
		p.mu.RLock()
		out[scope] = p.state.Clone()
		p.mu.RUnlock()
	}
	return out
}

// snapshotPartitions copies the partition index so that partition locks are never
// taken while s.mu is held.
func (s *Store) snapshotPartitions() map[int64]*partition {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[int64]*partition, len(s.partitions))
	for k, v := range s.partitions {
		out[k] = v
	}
	return out
}

func (s *Store) shared() Snapshot {
	p, ok := s.lookup(repository.SharedScope)
	if !ok {
		return Snapshot{Butchers: map[int64]models.Butcher{}}
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return Snapshot{Butchers: cloneMap(p.state.Butchers)}
}

type view struct {
	store *Store
	scope int64
	state Snapshot
}

func (v *view) Scope() int64 { return v.scope }

func (v *view) butchers() map[int64]models.Butcher {
	if v.scope == repository.SharedScope {
		return v.state.Butchers
	}
	return v.store.shared().Butchers
}

func (v *view) GetAnimal(_ context.Context, id int64) (models.Animal, error) {
	a, ok := v.state.Animals[id]
	if !ok {
		return models.Animal{}, &models.NotFoundError{Entity: "animal", ID: id}
	}
	return a, nil
}

func (v *view) ListAnimals(context.Context) ([]models.Animal, error) {
	return sortedByID(v.state.Animals, func(a models.Animal) int64 { return a.ID }), nil
}

func (v *view) GetFeed(_ context.Context, id int64) (models.Feed, error) {
	f, ok := v.state.Feed[id]
	if !ok {
		return models.Feed{}, &models.NotFoundError{Entity: "feed", ID: id}
	}
	return f, nil
}

func (v *view) ListFeed(context.Context) ([]models.Feed, error) {
	out := sortedByID(v.state.Feed, func(f models.Feed) int64 { return f.ID })
	sort.SliceStable(out, func(i, j int) bool { return out[i].FeedDate.After(out[j].FeedDate) })
	return out, nil
}

func (v *view) GetVaccination(_ context.Context, id int64) (models.Vaccination, error) {
	vac, ok := v.state.Vaccinations[id]
	if !ok {
		return models.Vaccination{}, &models.NotFoundError{Entity: "vaccination", ID: id}
	}
	return vac, nil
}

func (v *view) ListVaccinations(context.Context) ([]models.Vaccination, error) {
	out := sortedByID(v.state.Vaccinations, func(x models.Vaccination) int64 { return x.ID })
	sort.SliceStable(out, func(i, j int) bool { return out[i].VaccinationDate.After(out[j].VaccinationDate) })
	return out, nil
}

func (v *view) GetSale(_ context.Context, id int64) (models.Sale, error) {
	sale, ok := v.state.Sales[id]
	if !ok {
		return models.Sale{}, &models.NotFoundError{Entity: "sale", ID: id}
	}
	return sale, nil
}

func (v *view) ListSales(context.Context) ([]models.Sale, error) {
	out := sortedByID(v.state.Sales, func(x models.Sale) int64 { return x.ID })
	sort.SliceStable(out, func(i, j int) bool { return out[i].SaleDate.After(out[j].SaleDate) })
	return out, nil
}

func (v *view) GetButcher(_ context.Context, id int64) (models.Butcher, error) {
	b, ok := v.butchers()[id]
	if !ok {
		return models.Butcher{}, &models.NotFoundError{Entity: "butcher", ID: id}
	}
	return b, nil
}

func (v *view) ListButchers(context.Context) ([]models.Butcher, error) {
	return sortedByID(v.butchers(), func(b models.Butcher) int64 { return b.ID }), nil
}

func (v *view) GetFinanceRecord(_ context.Context, id int64) (models.FinanceRecord, error) {
	r, ok := v.state.Finance[id]
	if !ok {
		return models.FinanceRecord{}, &models.NotFoundError{Entity: "finance record", ID: id}
	}
	return r, nil
}

func (v *view) ListFinance(context.Context) ([]models.FinanceRecord, error) {
	out := make([]models.FinanceRecord, 0, len(v.state.Finance))
	for _, r := range v.state.Finance {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (v *view) FindFinanceBySource(_ context.Context, source models.Source) ([]models.FinanceRecord, error) {
	var out []models.FinanceRecord
	for _, r := range v.state.Finance {
		if r.Source != nil && *r.Source == source {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (v *view) SumFinance(_ context.Context, kind models.FinanceKind) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, r := range v.state.Finance {
		if r.Kind == kind {
			total = total.Add(r.Amount)
		}
	}
	return total, nil
}

func sortedByID[V any](in map[int64]V, id func(V) int64) []V {
	out := make([]V, 0, len(in))
	for _, v := range in {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return id(out[i]) < id(out[j]) })
	return out
}

type txn struct {
	view
}

func (t *txn) stamp(created time.Time) time.Time {
	if created.IsZero() {
		return t.store.now().UTC()
	}
	return created
}

func (t *txn) LockAnimal(ctx context.Context, id int64) (models.Animal, error) {
	// The partition lock held by RunInTx already excludes other writers.
	return t.GetAnimal(ctx, id)
}

func (t *txn) InsertAnimal(_ context.Context, a models.Animal) (models.Animal, error) {
	a.ID = t.store.seq.animal.Add(1)
	a.UserID = t.scope
	a.CreatedAt = t.stamp(a.CreatedAt)
	t.state.Animals[a.ID] = a
	return a, nil
}

func (t *txn) UpdateAnimal(_ context.Context, a models.Animal) error {
	existing, ok := t.state.Animals[a.ID]
	if !ok {
		return &models.NotFoundError{Entity: "animal", ID: a.ID}
	}
	a.UserID = existing.UserID
	a.CreatedAt = existing.CreatedAt
	t.state.Animals[a.ID] = a
	return nil
}

func (t *txn) DeleteAnimal(_ context.Context, id int64) (bool, error) {
	return remove(t.state.Animals, id), nil
}

func (t *txn) InsertFeed(_ context.Context, f models.Feed) (models.Feed, error) {
	f.ID = t.store.seq.feed.Add(1)
	f.UserID = t.scope
	f.CreatedAt = t.stamp(f.CreatedAt)
	t.state.Feed[f.ID] = f
	return f, nil
}

func (t *txn) UpdateFeed(_ context.Context, f models.Feed) error {
	existing, ok := t.state.Feed[f.ID]
	if !ok {
		return &models.NotFoundError{Entity: "feed", ID: f.ID}
	}
	f.UserID = existing.UserID
	f.CreatedAt = existing.CreatedAt
	t.state.Feed[f.ID] = f
	return nil
}

func (t *txn) DeleteFeed(_ context.Context, id int64) (bool, error) {
	return remove(t.state.Feed, id), nil
}

func (t *txn) InsertVaccination(_ context.Context, v models.Vaccination) (models.Vaccination, error) {
	v.ID = t.store.seq.vaccination.Add(1)
	v.UserID = t.scope
	v.CreatedAt = t.stamp(v.CreatedAt)
	t.state.Vaccinations[v.ID] = v
	return v, nil
}

func (t *txn) UpdateVaccination(_ context.Context, v models.Vaccination) error {
	existing, ok := t.state.Vaccinations[v.ID]
	if !ok {
		return &models.NotFoundError{Entity: "vaccination", ID: v.ID}
	}
	v.UserID = existing.UserID
	v.CreatedAt = existing.CreatedAt
	t.state.Vaccinations[v.ID] = v
	return nil
}

func (t *txn) DeleteVaccination(_ context.Context, id int64) (bool, error) {
	return remove(t.state.Vaccinations, id), nil
}

func (t *txn) InsertSale(_ context.Context, sale models.Sale) (models.Sale, error) {
	for _, existing := range t.state.Sales {
		if existing.AnimalID == sale.AnimalID {
			return models.Sale{}, &models.ConflictError{Entity: "animal", ID: sale.AnimalID, Reason: "already sold"}
		}
	}
	sale.ID = t.store.seq.sale.Add(1)
	sale.UserID = t.scope
	sale.CreatedAt = t.stamp(sale.CreatedAt)
	t.state.Sales[sale.ID] = sale
	return sale, nil
}

func (t *txn) DeleteSale(_ context.Context, id int64) (bool, error) {
	return remove(t.state.Sales, id), nil
}

func (t *txn) InsertButcher(_ context.Context, b models.Butcher) (models.Butcher, error) {
	if t.scope != repository.SharedScope {
		return models.Butcher{}, repository.ErrButcherScope
	}
	b.ID = t.store.seq.butcher.Add(1)
	b.CreatedAt = t.stamp(b.CreatedAt)
	t.state.Butchers[b.ID] = b
	return b, nil
}

func (t *txn) UpdateButcher(_ context.Context, b models.Butcher) error {
	if t.scope != repository.SharedScope {
		return repository.ErrButcherScope
	}
	existing, ok := t.state.Butchers[b.ID]
	if !ok {
		return &models.NotFoundError{Entity: "butcher", ID: b.ID}
	}
	b.CreatedAt = existing.CreatedAt
	t.state.Butchers[b.ID] = b
	return nil
}

func (t *txn) DeleteButcher(_ context.Context, id int64) (bool, error) {
	if t.scope != repository.SharedScope {
		return false, repository.ErrButcherScope
	}
	return remove(t.state.Butchers, id), nil
}

func (t *txn) AppendFinance(_ context.Context, r models.FinanceRecord) (models.FinanceRecord, error) {
	if err := models.CheckFinanceRecord(r); err != nil {
		return models.FinanceRecord{}, err
	}
	if r.Source != nil {
		src := *r.Source
		r.Source = &src
	}
	r.ID = t.store.seq.finance.Add(1)
	r.UserID = t.scope
	r.CreatedAt = t.stamp(r.CreatedAt)
	t.state.Finance[r.ID] = r
	return r, nil
}

func (t *txn) RemoveFinance(_ context.Context, id int64) (bool, error) {
	return remove(t.state.Finance, id), nil
}

func remove[V any](m map[int64]V, id int64) bool {
	if _, ok := m[id]; !ok {
		return false
	}
	delete(m, id)
	return true
}
