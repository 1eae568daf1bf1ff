package dictionary

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// InMemoryRepository is a concurrency-safe Repository used for demos and tests.
type InMemoryRepository struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]Item
	now    func() time.Time
}

// NewInMemoryRepository creates an empty repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		items: make(map[int64]Item),
		now:   time.Now,
	}
}

// List filters by case-insensitive type/label substrings, matching SQL LIKE,
// and pages the result ordered by type, sort, id.
func (r *InMemoryRepository) List(_ context.Context, query ListQuery) (ListResult, error) {
	query = NormalizeListQuery(query)
	typeFilter, labelFilter := strings.ToLower(query.Type), strings.ToLower(query.Label)
	r.mu.RLock()
	matched := make([]Item, 0, len(r.items))
	for _, item := range r.items {
		if typeFilter != "" && !strings.Contains(strings.ToLower(item.Type), typeFilter) {
			continue
		}
		if labelFilter != "" && !strings.Contains(strings.ToLower(item.Label), labelFilter) {
			continue
		}
		matched = append(matched, item)
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		if a.Sort != b.Sort {
			return a.Sort < b.Sort
		}
		return a.ID < b.ID
	})

	total := len(matched)
	start := (query.Page - 1) * query.PageSize
	if start > total {
		start = total
	}
	end := start + query.PageSize
	if end > total {
		end = total
	}
	return ListResult{Dictionaries: append([]Item{}, matched[start:end]...), Total: total}, nil
}

// Create stores a new item, rejecting duplicate (type, value) pairs.
func (r *InMemoryRepository) Create(_ context.Context, draft Draft) (Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.duplicateLocked(draft.Type, draft.Value, 0) {
		return Item{}, ErrDuplicateValue
	}
	r.nextID++
	stamp := FormatTimestamp(r.now())
	item := Item{
		ID:          r.nextID,
		Type:        draft.Type,
		Label:       draft.Label,
		Value:       draft.Value,
		Sort:        draft.Sort,
		Description: draft.Description,
		CreatedAt:   stamp,
		UpdatedAt:   stamp,
	}
	r.items[item.ID] = item
	return item, nil
}

// Update replaces the editable fields of an existing item.
func (r *InMemoryRepository) Update(_ context.Context, draft Draft) (Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[draft.ID]
	if !ok {
		return Item{}, ErrNotFound
	}
	if r.duplicateLocked(draft.Type, draft.Value, draft.ID) {
		return Item{}, ErrDuplicateValue
	}
	item.Type = draft.Type
	item.Label = draft.Label
	item.Value = draft.Value
	item.Sort = draft.Sort
	item.Description = draft.Description
	item.UpdatedAt = FormatTimestamp(r.now())
	r.items[item.ID] = item
	return item, nil
}

// Delete removes an item by id.
func (r *InMemoryRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *InMemoryRepository) duplicateLocked(typ, value string, exceptID int64) bool {
	for id, item := range r.items {
		if id != exceptID && item.Type == typ && item.Value == value {
			return true
		}
	}
	return false
}
