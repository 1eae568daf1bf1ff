package dictionary

import (
	"context"
	"errors"
	"testing"
	"time"
)

func seededRepository(t *testing.T) *InMemoryRepository {
	t.Helper()
	repo := NewInMemoryRepository()
	repo.now = func() time.Time { return time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC) }
	ctx := context.Background()
	for _, draft := range []Draft{
		{Type: "status", Label: "Active", Value: "1", Sort: 1},
		{Type: "gender", Label: "Female", Value: "f", Sort: 2},
		{Type: "gender", Label: "Male", Value: "m", Sort: 1},
	} {
		if _, err := repo.Create(ctx, draft); err != nil {
			t.Fatalf("Create returned error: %v", err)
		}
	}
	return repo
}

func TestInMemoryRepositoryListOrdersAndPages(t *testing.T) {
	repo := seededRepository(t)
	result, err := repo.List(context.Background(), ListQuery{Page: 1, PageSize: 2})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if result.Total != 3 || len(result.Dictionaries) != 2 {
		t.Fatalf("unexpected page %+v", result)
	}
	if result.Dictionaries[0].Label != "Male" || result.Dictionaries[1].Label != "Female" {
		t.Fatalf("expected type/sort ordering, got %+v", result.Dictionaries)
	}
	second, _ := repo.List(context.Background(), ListQuery{Page: 2, PageSize: 2})
	if len(second.Dictionaries) != 1 || second.Dictionaries[0].Type != "status" {
		t.Fatalf("unexpected second page %+v", second)
	}
	beyond, _ := repo.List(context.Background(), ListQuery{Page: 9, PageSize: 2})
	if len(beyond.Dictionaries) != 0 || beyond.Total != 3 {
		t.Fatalf("expected empty page beyond range, got %+v", beyond)
	}
}

func TestInMemoryRepositoryFilters(t *testing.T) {
	repo := seededRepository(t)
	result, _ := repo.List(context.Background(), ListQuery{Type: "gen", Label: "ale"})
	if result.Total != 2 {
		t.Fatalf("expected substring match on type and label, got %+v", result)
	}
	result, _ = repo.List(context.Background(), ListQuery{Label: "Fem"})
	if result.Total != 1 || result.Dictionaries[0].Value != "f" {
		t.Fatalf("unexpected label filter result %+v", result)
	}
	result, _ = repo.List(context.Background(), ListQuery{Type: "GEN", Label: "fEm"})
	if result.Total != 1 || result.Dictionaries[0].Value != "f" {
		t.Fatalf("expected filters to ignore case, got %+v", result)
	}
}

func TestInMemoryRepositoryDuplicateAndMissing(t *testing.T) {
	repo := seededRepository(t)
	ctx := context.Background()
	if _, err := repo.Create(ctx, Draft{Type: "gender", Label: "M", Value: "m"}); !errors.Is(err, ErrDuplicateValue) {
		t.Fatalf("expected ErrDuplicateValue, got %v", err)
	}
	if _, err := repo.Create(ctx, Draft{Type: "status", Label: "M", Value: "m"}); err != nil {
		t.Fatalf("expected same value under another type to be allowed, got %v", err)
	}
	if _, err := repo.Update(ctx, Draft{ID: 2, Type: "gender", Label: "F", Value: "m"}); !errors.Is(err, ErrDuplicateValue) {
		t.Fatalf("expected duplicate on update, got %v", err)
	}
	if _, err := repo.Update(ctx, Draft{ID: 99, Type: "x", Label: "x", Value: "x"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := repo.Delete(ctx, 99); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on delete, got %v", err)
	}
}

func TestInMemoryRepositoryUpdateTouchesTimestamp(t *testing.T) {
	repo := seededRepository(t)
	repo.now = func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }
	item, err := repo.Update(context.Background(), Draft{ID: 1, Type: "status", Label: "Enabled", Value: "1", Sort: 5})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if item.CreatedAt != "2024-05-06T07:08:09Z" || item.UpdatedAt != "2024-06-01T00:00:00Z" {
		t.Fatalf("unexpected timestamps %+v", item)
	}
	if item.Label != "Enabled" || item.Sort != 5 {
		t.Fatalf("unexpected item %+v", item)
	}
}
