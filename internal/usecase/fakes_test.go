package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/SparshM8/Farm-Technology/internal/domain"
	"github.com/SparshM8/Farm-Technology/pkg/db"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func newTestDatabase(t *testing.T) *db.Database {
	t.Helper()
	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "usecase.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	require.NoError(t, db.Migrate(context.Background(), database, nil))
	return database
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type publishedEvent struct {
	name string
	data any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) Publish(event string, data any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{name: event, data: data})
}

func (p *recordingPublisher) named(name string) []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []publishedEvent
	for _, e := range p.events {
		if e.name == name {
			out = append(out, e)
		}
	}
	return out
}

type fakeProductRepo struct {
	products map[int64]domain.Product
	nextID   int64
	batchErr error
	batches  int
}

func newFakeProductRepo(products ...domain.Product) *fakeProductRepo {
	r := &fakeProductRepo{products: map[int64]domain.Product{}, nextID: 100}
	for _, p := range products {
		r.products[p.ID] = p
	}
	return r
}

func (r *fakeProductRepo) Create(_ context.Context, p *domain.Product) (*domain.Product, error) {
	if p.ID == 0 {
		r.nextID++
		p.ID = r.nextID
	}
	r.products[p.ID] = *p
	return p, nil
}

func (r *fakeProductRepo) GetByID(_ context.Context, id int64) (*domain.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("%w: product %d", domain.ErrNotFound, id)
	}
	return &p, nil
}

func (r *fakeProductRepo) GetByIDs(_ context.Context, ids []int64) (map[int64]domain.Product, error) {
	r.batches++
	if r.batchErr != nil {
		return nil, r.batchErr
	}
	out := map[int64]domain.Product{}
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (r *fakeProductRepo) GetByTitle(_ context.Context, title string) (*domain.Product, error) {
	for _, p := range r.products {
		if p.Title == title {
			return &p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeProductRepo) Update(ctx context.Context, id int64, updates map[string]any) (*domain.Product, error) {
	return nil, errors.New("not used")
}

func (r *fakeProductRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.products[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *fakeProductRepo) List(_ context.Context) ([]domain.Product, error) {
	out := make([]domain.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeProductRepo) Count(_ context.Context) (int, error) {
	return len(r.products), nil
}

type fakeOrderRepo struct {
	orders    map[int64]domain.Order
	nextID    int64
	createErr error
	updateErr error
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: map[int64]domain.Order{}}
}

func (r *fakeOrderRepo) Create(_ context.Context, o *domain.Order) (*domain.Order, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	r.nextID++
	o.ID = r.nextID
	o.OrderDate = 1700000000000
	o.UpdatedAt = o.OrderDate
	r.orders[o.ID] = *o
	return o, nil
}

func (r *fakeOrderRepo) GetByID(_ context.Context, id int64) (*domain.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("%w: order %d", domain.ErrNotFound, id)
	}
	return &o, nil
}

func (r *fakeOrderRepo) List(_ context.Context) ([]domain.Order, error) {
	out := []domain.Order{}
	for _, o := range r.orders {
		out = append(out, o)
	}
	return out, nil
}

func (r *fakeOrderRepo) UpdateStatus(_ context.Context, id int64, status domain.OrderStatus) (*domain.Order, error) {
	if r.updateErr != nil {
		return nil, r.updateErr
	}
	o, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("%w: order %d", domain.ErrNotFound, id)
	}
	o.Status = status
	r.orders[id] = o
	return &o, nil
}

// fakeAdmin reports every notification on a channel.
type fakeAdmin struct {
	newOrders chan domain.Order
	changes   chan domain.OrderStatus
	err       error
}

func newFakeAdmin() *fakeAdmin {
	return &fakeAdmin{newOrders: make(chan domain.Order, 4), changes: make(chan domain.OrderStatus, 4)}
}

func (a *fakeAdmin) NotifyNewOrder(_ context.Context, order *domain.Order) error {
	a.newOrders <- *order
	return a.err
}

func (a *fakeAdmin) NotifyStatusChange(_ context.Context, _ *domain.Order, previous domain.OrderStatus) error {
	a.changes <- previous
	return a.err
}
