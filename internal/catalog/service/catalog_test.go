package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	catalogerrors "shopbooking/internal/catalog/errors"
	"shopbooking/internal/catalog/validator"
	"shopbooking/pkg/config"
	mongotx "shopbooking/pkg/db/mongo"
	apperrors "shopbooking/pkg/errors"
	"shopbooking/pkg/logger"
	"shopbooking/pkg/model"
)

// memRepository keeps catalog items in memory. Transactions restore the
// previous contents when fn fails.
type memRepository[T any] struct {
	mu       sync.Mutex
	items    map[string]T
	ordering func(*T) (string, int)
	setOrder func(*T, int)
	active   func(*T) bool

	setOrderErr error
	lastActive  *bool
}

func newServicesRepo() *memRepository[model.ServiceItem] {
	return &memRepository[model.ServiceItem]{
		items:    map[string]model.ServiceItem{},
		ordering: (*model.ServiceItem).Ordering,
		setOrder: func(s *model.ServiceItem, o int) { s.Order = o },
		active:   func(s *model.ServiceItem) bool { return s.Active },
	}
}

func newPricingRepo() *memRepository[model.PriceItem] {
	return &memRepository[model.PriceItem]{
		items:    map[string]model.PriceItem{},
		ordering: (*model.PriceItem).Ordering,
		setOrder: func(p *model.PriceItem, o int) { p.Order = o },
		active:   func(p *model.PriceItem) bool { return p.Active },
	}
}

func (m *memRepository[T]) sorted() []*T {
	var out []*T
	for _, item := range m.items {
		c := item
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		_, a := m.ordering(out[i])
		_, b := m.ordering(out[j])
		return a < b
	})
	return out
}

func (m *memRepository[T]) List(ctx context.Context, activeOnly bool) ([]*T, error) {
	m.lastActive = &activeOnly
	var out []*T
	for _, item := range m.sorted() {
		if activeOnly && !m.active(item) {
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

func (m *memRepository[T]) FindByID(ctx context.Context, id string) (*T, error) {
	item, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", catalogerrors.ErrNotFound, id)
	}
	return &item, nil
}

func (m *memRepository[T]) MaxOrder(ctx context.Context) (int, error) {
	highest := 0
	for _, item := range m.items {
		if _, o := m.ordering(&item); o > highest {
			highest = o
		}
	}
	return highest, nil
}

func (m *memRepository[T]) Neighbour(ctx context.Context, order int, dir model.MoveDirection) (*T, error) {
	items := m.sorted()
	if dir == model.MoveUp {
		for i := len(items) - 1; i >= 0; i-- {
			if _, o := m.ordering(items[i]); o < order {
				return items[i], nil
			}
		}
	} else {
		for _, item := range items {
			if _, o := m.ordering(item); o > order {
				return item, nil
			}
		}
	}
	return nil, catalogerrors.ErrNoNeighbour
}

func (m *memRepository[T]) Create(ctx context.Context, item *T) error {
	id, _ := m.ordering(item)
	m.items[id] = *item
	return nil
}

func (m *memRepository[T]) Replace(ctx context.Context, id string, item *T) error {
	if _, ok := m.items[id]; !ok {
		return fmt.Errorf("%w: %s", catalogerrors.ErrNotFound, id)
	}
	m.items[id] = *item
	return nil
}

func (m *memRepository[T]) SetOrder(ctx context.Context, id string, order int) error {
	item, ok := m.items[id]
	if !ok {
		return fmt.Errorf("%w: %s", catalogerrors.ErrNotFound, id)
	}
	m.setOrder(&item, order)
	m.items[id] = item
	if m.setOrderErr != nil {
		return m.setOrderErr
	}
	return nil
}

func (m *memRepository[T]) Delete(ctx context.Context, id string) error {
	if _, ok := m.items[id]; !ok {
		return fmt.Errorf("%w: %s", catalogerrors.ErrNotFound, id)
	}
	delete(m.items, id)
	return nil
}

func (m *memRepository[T]) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := make(map[string]T, len(m.items))
	for k, v := range m.items {
		snapshot[k] = v
	}
	if err := fn(ctx); err != nil {
		m.items = snapshot
		return err
	}
	return nil
}

func newTestConfig() *config.Config {
	return &config.Config{Log: logger.New(logger.Config{Level: "error", Output: io.Discard})}
}

func newTestServiceCatalog(repo *memRepository[model.ServiceItem]) *serviceCatalog {
	cfg := newTestConfig()
	svc := NewServiceCatalog(repo, validator.NewCatalogValidator(cfg.Log), cfg).(*serviceCatalog)
	n := 0
	svc.newID = func() string {
		n++
		return fmt.Sprintf("svc-%d", n)
	}
	svc.now = func() time.Time { return time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC) }
	return svc
}

func newTestPricingCatalog(repo *memRepository[model.PriceItem]) *pricingCatalog {
	cfg := newTestConfig()
	svc := NewPricingCatalog(repo, validator.NewCatalogValidator(cfg.Log), cfg).(*pricingCatalog)
	n := 0
	svc.newID = func() string {
		n++
		return fmt.Sprintf("price-%d", n)
	}
	return svc
}

func orders(repo *memRepository[model.ServiceItem]) []string {
	var ids []string
	for _, item := range repo.sorted() {
		ids = append(ids, item.ID)
	}
	return ids
}

func TestServiceCatalog_CreateAppendsAtEnd(t *testing.T) {
	repo := newServicesRepo()
	svc := newTestServiceCatalog(repo)
	ctx := context.Background()

	first, err := svc.Create(ctx, &model.ServiceItem{IconKey: "Wrench", Title: "  Oil change "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.Create(ctx, &model.ServiceItem{IconKey: "Car", Title: "Tire swap"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.Order != 1000 || second.Order != 2000 {
		t.Errorf("expected orders 1000 and 2000, got %d and %d", first.Order, second.Order)
	}
	if first.Title != "Oil change" {
		t.Errorf("expected sanitized title, got %q", first.Title)
	}
	if !first.Active {
		t.Errorf("new services should be active")
	}
}

func TestServiceCatalog_CreateValidation(t *testing.T) {
	repo := newServicesRepo()
	svc := newTestServiceCatalog(repo)

	_, err := svc.Create(context.Background(), &model.ServiceItem{IconKey: "Rocket", Title: "Launch"})
	if !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
	if len(repo.items) != 0 {
		t.Errorf("invalid service must not be stored")
	}
}

func TestServiceCatalog_Move(t *testing.T) {
	tests := []struct {
		name string
		id   string
		dir  model.MoveDirection
		want []string
	}{
		{"middle up", "b", model.MoveUp, []string{"b", "a", "c"}},
		{"middle down", "b", model.MoveDown, []string{"a", "c", "b"}},
		{"top up stays", "a", model.MoveUp, []string{"a", "b", "c"}},
		{"bottom down stays", "c", model.MoveDown, []string{"a", "b", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newServicesRepo()
			for i, id := range []string{"a", "b", "c"} {
				repo.items[id] = model.ServiceItem{ID: id, Order: (i + 1) * 1000}
			}
			svc := newTestServiceCatalog(repo)

			if err := svc.Move(context.Background(), tt.id, tt.dir); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			got := orders(repo)
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Fatalf("expected %v, got %v", tt.want, got)
				}
			}
		})
	}
}

func TestServiceCatalog_MoveRollsBack(t *testing.T) {
	repo := newServicesRepo()
	repo.items["a"] = model.ServiceItem{ID: "a", Order: 1000}
	repo.items["b"] = model.ServiceItem{ID: "b", Order: 2000}
	repo.setOrderErr = errors.New("write failed")
	svc := newTestServiceCatalog(repo)

	if err := svc.Move(context.Background(), "b", model.MoveUp); err == nil {
		t.Fatal("expected error")
	}
	if repo.items["a"].Order != 1000 || repo.items["b"].Order != 2000 {
		t.Errorf("orders should be unchanged after a failed move, got %+v", repo.items)
	}
}

func TestServiceCatalog_MoveErrors(t *testing.T) {
	repo := newServicesRepo()
	svc := newTestServiceCatalog(repo)

	if err := svc.Move(context.Background(), "a", "sideways"); !apperrors.HasCode(err, apperrors.CodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}
	if err := svc.Move(context.Background(), "missing", model.MoveUp); !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}

func TestServiceCatalog_UpdateAndToggle(t *testing.T) {
	repo := newServicesRepo()
	repo.items["a"] = model.ServiceItem{ID: "a", IconKey: "Wrench", Title: "Oil", Description: "Full synthetic", Active: true, Order: 1000}
	svc := newTestServiceCatalog(repo)
	ctx := context.Background()

	title := "Oil change"
	updated, err := svc.Update(ctx, "a", &model.ServiceItemUpdate{Title: &title})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Title != "Oil change" || updated.Description != "Full synthetic" {
		t.Errorf("expected partial merge, got %+v", updated)
	}

	toggled, err := svc.SetActive(ctx, "a", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if toggled.Active || repo.items["a"].Active {
		t.Errorf("expected service to be disabled")
	}

	visible, _ := svc.List(ctx, true)
	if len(visible) != 0 {
		t.Errorf("disabled service should not be listed as active, got %d", len(visible))
	}
}

func TestServiceCatalog_DeleteMissing(t *testing.T) {
	svc := newTestServiceCatalog(newServicesRepo())

	err := svc.Delete(context.Background(), "missing")
	if !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}

func TestPricingCatalog_CreateNormalizes(t *testing.T) {
	tests := []struct {
		name         string
		details      []string
		currency     string
		wantDetails  []string
		wantCurrency string
	}{
		{"pads details and defaults currency", []string{"Oil"}, "", []string{"Oil", "", ""}, "CAD"},
		{"truncates details", []string{"a", "b", "c", "d"}, "usd", []string{"a", "b", "c"}, "USD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestPricingCatalog(newPricingRepo())

			got, err := svc.Create(context.Background(), &model.PriceItem{
				Name:     "Basic",
				Price:    "$49",
				Details:  tt.details,
				Currency: tt.currency,
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got.Details) != model.PriceDetailCount {
				t.Fatalf("expected %d details, got %v", model.PriceDetailCount, got.Details)
			}
			for i := range tt.wantDetails {
				if got.Details[i] != tt.wantDetails[i] {
					t.Errorf("expected details %v, got %v", tt.wantDetails, got.Details)
					break
				}
			}
			if got.Currency != tt.wantCurrency {
				t.Errorf("expected currency %s, got %s", tt.wantCurrency, got.Currency)
			}
		})
	}
}

func TestPricingCatalog_UpdateDetails(t *testing.T) {
	repo := newPricingRepo()
	repo.items["p"] = model.PriceItem{ID: "p", Name: "Basic", Price: "$49", Details: []string{"a", "b", "c"}, Currency: "CAD", Order: 1000}
	svc := newTestPricingCatalog(repo)

	details := []string{"only one"}
	got, err := svc.Update(context.Background(), "p", &model.PriceItemUpdate{Details: &details})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Details[0] != "only one" || got.Details[1] != "" || got.Details[2] != "" {
		t.Errorf("expected padded details, got %v", got.Details)
	}
}

func TestPricingCatalog_ListPassesFilter(t *testing.T) {
	repo := newPricingRepo()
	svc := newTestPricingCatalog(repo)

	if _, err := svc.List(context.Background(), true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.lastActive == nil || !*repo.lastActive {
		t.Errorf("expected activeOnly to reach the repository")
	}
}
