package service

import (
	"context"
	"sort"
	"strings"
	"sync"

	"inventory-api/internal/domain"
	"inventory-api/internal/repository"

	"github.com/google/uuid"
)

// In-memory repository fakes. The mutex in mockTxRunner stands in for the
// row locking a real transaction provides: callbacks run one at a time.

type mockProductRepository struct {
	mu       sync.Mutex
	products map[uuid.UUID]*domain.Product
}

func newMockProductRepository() *mockProductRepository {
	return &mockProductRepository{products: make(map[uuid.UUID]*domain.Product)}
}

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.products {
		if p.SKU == product.SKU {
			return repository.ErrProductSKUExists
		}
	}
	clone := *product
	m.products[product.ID] = &clone
	return nil
}

func (m *mockProductRepository) Update(ctx context.Context, product *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[product.ID]; !ok {
		return repository.ErrProductNotFound
	}
	for _, p := range m.products {
		if p.SKU == product.SKU && p.ID != product.ID {
			return repository.ErrProductSKUExists
		}
	}
	clone := *product
	m.products[product.ID] = &clone
	return nil
}

func (m *mockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[id]; !ok {
		return repository.ErrProductNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *mockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	clone := *p
	return &clone, nil
}

func (m *mockProductRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return m.FindByID(ctx, id)
}

func (m *mockProductRepository) UpdateStock(ctx context.Context, id uuid.UUID, stockQuantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return repository.ErrProductNotFound
	}
	p.StockQuantity = stockQuantity
	return nil
}

func (m *mockProductRepository) List(ctx context.Context, filter repository.ProductFilter) ([]*domain.Product, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []*domain.Product
	for _, p := range m.products {
		if filter.CategoryID != nil && p.CategoryID != *filter.CategoryID {
			continue
		}
		if filter.Status != nil && p.Status != *filter.Status {
			continue
		}
		if filter.Search != "" && !matchesSearch(p, filter.Search) {
			continue
		}
		if filter.LowStock && !p.NeedsReorder() {
			continue
		}
		clone := *p
		matched = append(matched, &clone)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].SKU < matched[j].SKU
	})

	count := len(matched)
	start, end := pageWindow(count, filter.Page, filter.PageSize)
	return matched[start:end], count, nil
}

func matchesSearch(p *domain.Product, search string) bool {
	s := strings.ToLower(search)
	return strings.Contains(strings.ToLower(p.Name), s) ||
		strings.Contains(strings.ToLower(p.SKU), s) ||
		strings.Contains(strings.ToLower(p.Description), s)
}

func pageWindow(count, page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = count
	}
	start := (page - 1) * pageSize
	if start > count {
		start = count
	}
	end := start + pageSize
	if end > count || pageSize == 0 {
		end = count
	}
	return start, end
}

type mockMovementRepository struct {
	mu        sync.Mutex
	movements []*domain.StockMovement
}

func newMockMovementRepository() *mockMovementRepository {
	return &mockMovementRepository{}
}

func (m *mockMovementRepository) Create(ctx context.Context, movement *domain.StockMovement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *movement
	m.movements = append(m.movements, &clone)
	return nil
}

func (m *mockMovementRepository) List(ctx context.Context, filter repository.MovementFilter) ([]*domain.StockMovement, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []*domain.StockMovement
	for _, mv := range m.movements {
		if filter.ProductID != nil && mv.ProductID != *filter.ProductID {
			continue
		}
		if filter.MovementType != nil && mv.MovementType != *filter.MovementType {
			continue
		}
		clone := *mv
		matched = append(matched, &clone)
	}

	count := len(matched)
	start, end := pageWindow(count, filter.Page, filter.PageSize)
	return matched[start:end], count, nil
}

func (m *mockMovementRepository) CountForProduct(ctx context.Context, productID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, mv := range m.movements {
		if mv.ProductID == productID {
			count++
		}
	}
	return count, nil
}

type mockCategoryRepository struct {
	mu         sync.Mutex
	categories map[uuid.UUID]*domain.Category
	inUse      map[uuid.UUID]bool
}

func newMockCategoryRepository() *mockCategoryRepository {
	return &mockCategoryRepository{
		categories: make(map[uuid.UUID]*domain.Category),
		inUse:      make(map[uuid.UUID]bool),
	}
}

func (m *mockCategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.categories {
		if c.Name == category.Name {
			return repository.ErrCategoryAlreadyExists
		}
	}
	clone := *category
	m.categories[category.ID] = &clone
	return nil
}

func (m *mockCategoryRepository) Update(ctx context.Context, category *domain.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.categories[category.ID]; !ok {
		return repository.ErrCategoryNotFound
	}
	for _, c := range m.categories {
		if c.Name == category.Name && c.ID != category.ID {
			return repository.ErrCategoryAlreadyExists
		}
	}
	clone := *category
	m.categories[category.ID] = &clone
	return nil
}

func (m *mockCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.categories[id]; !ok {
		return repository.ErrCategoryNotFound
	}
	if m.inUse[id] {
		return repository.ErrCategoryInUse
	}
	delete(m.categories, id)
	return nil
}

func (m *mockCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.categories[id]
	if !ok {
		return nil, repository.ErrCategoryNotFound
	}
	clone := *c
	return &clone, nil
}

func (m *mockCategoryRepository) List(ctx context.Context, filter repository.CategoryFilter) ([]*domain.Category, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []*domain.Category
	for _, c := range m.categories {
		if filter.Search != "" && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(filter.Search)) {
			continue
		}
		clone := *c
		matched = append(matched, &clone)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].Name < matched[j].Name
	})

	count := len(matched)
	start, end := pageWindow(count, filter.Page, filter.PageSize)
	return matched[start:end], count, nil
}

// mockTxRunner serializes callbacks with a mutex, standing in for the
// serialization the database provides through row locks
type mockTxRunner struct {
	mu           sync.Mutex
	productRepo  repository.ProductRepository
	movementRepo repository.StockMovementRepository
}

func newMockTxRunner(products repository.ProductRepository, movements repository.StockMovementRepository) *mockTxRunner {
	return &mockTxRunner{productRepo: products, movementRepo: movements}
}

func (m *mockTxRunner) Run(ctx context.Context, fn func(products repository.ProductRepository, movements repository.StockMovementRepository) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(m.productRepo, m.movementRepo)
}
