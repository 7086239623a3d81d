package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"inventory-api/internal/domain"

	"github.com/google/uuid"
)

func TestCategoryCRUD(t *testing.T) {
	resetInventoryTables(t)
	repo := NewCategoryRepository(testDB)
	ctx := context.Background()

	category := &domain.Category{
		ID:          uuid.New(),
		Name:        "Electronics",
		Description: "Devices and accessories",
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := repo.Create(ctx, category); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	found, err := repo.FindByID(ctx, category.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if found.Name != "Electronics" {
		t.Errorf("Expected name Electronics, got %s", found.Name)
	}

	found.Name = "Consumer Electronics"
	found.UpdatedAt = time.Now()
	if err := repo.Update(ctx, found); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	updated, err := repo.FindByID(ctx, category.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if updated.Name != "Consumer Electronics" {
		t.Errorf("Expected updated name, got %s", updated.Name)
	}

	if err := repo.Delete(ctx, category.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := repo.FindByID(ctx, category.ID); !errors.Is(err, ErrCategoryNotFound) {
		t.Errorf("Expected ErrCategoryNotFound after delete, got %v", err)
	}
}

func TestCategoryDuplicateNameRejected(t *testing.T) {
	resetInventoryTables(t)
	repo := NewCategoryRepository(testDB)
	ctx := context.Background()

	first := &domain.Category{ID: uuid.New(), Name: "Hardware", CreatedAt: time.Now(), UpdatedAt: time.Now()}
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	second := &domain.Category{ID: uuid.New(), Name: "Hardware", CreatedAt: time.Now(), UpdatedAt: time.Now()}
	if err := repo.Create(ctx, second); !errors.Is(err, ErrCategoryAlreadyExists) {
		t.Errorf("Expected ErrCategoryAlreadyExists, got %v", err)
	}
}

func TestCategoryDeleteRestrictedWhileReferenced(t *testing.T) {
	resetInventoryTables(t)
	category := createTestCategory(t, "Protected")
	createTestProduct(t, category.ID, "PROT-001", 5, 10, domain.ProductStatusActive)

	repo := NewCategoryRepository(testDB)
	ctx := context.Background()

	if err := repo.Delete(ctx, category.ID); !errors.Is(err, ErrCategoryInUse) {
		t.Fatalf("Expected ErrCategoryInUse, got %v", err)
	}

	// The category must survive the rejected delete
	if _, err := repo.FindByID(ctx, category.ID); err != nil {
		t.Errorf("Expected category to remain, got %v", err)
	}
}

func TestCategoryListIncludesProductCount(t *testing.T) {
	resetInventoryTables(t)
	electronics := createTestCategory(t, "Electronics")
	createTestCategory(t, "Empty")
	createTestProduct(t, electronics.ID, "CNT-A", 5, 10, domain.ProductStatusActive)
	createTestProduct(t, electronics.ID, "CNT-B", 5, 10, domain.ProductStatusActive)

	repo := NewCategoryRepository(testDB)
	categories, total, err := repo.List(context.Background(), CategoryFilter{OrderBy: "name", Page: 1, PageSize: 20})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 2 {
		t.Fatalf("Expected 2 categories, got %d", total)
	}

	counts := map[string]int{}
	for _, c := range categories {
		counts[c.Name] = c.ProductCount
	}
	if counts["Electronics"] != 2 {
		t.Errorf("Expected Electronics product_count 2, got %d", counts["Electronics"])
	}
	if counts["Empty"] != 0 {
		t.Errorf("Expected Empty product_count 0, got %d", counts["Empty"])
	}
}

func TestCategoryListSearch(t *testing.T) {
	resetInventoryTables(t)
	createTestCategory(t, "Office Supplies")
	createTestCategory(t, "Kitchen")

	repo := NewCategoryRepository(testDB)
	_, total, err := repo.List(context.Background(), CategoryFilter{Search: "office", Page: 1, PageSize: 20})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 1 {
		t.Errorf("Expected 1 match for case-insensitive search, got %d", total)
	}
}
