package queries

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-dictadmin/components/dictionary"
)

type stubListService struct {
	calls  int
	last   dictionary.ListQuery
	result dictionary.ListResult
	err    error
}

func (s *stubListService) List(_ context.Context, query dictionary.ListQuery) (dictionary.ListResult, error) {
	s.calls++
	s.last = query
	return s.result, s.err
}

func TestListDictionariesQuery(t *testing.T) {
	service := &stubListService{result: dictionary.ListResult{Total: 4}}
	query := NewListDictionariesQuery(service)
	result, err := query.Query(context.Background(), dictionary.ListQuery{Page: 2, PageSize: 10, Type: "gender"})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if service.calls != 1 || service.last.Page != 2 || service.last.Type != "gender" {
		t.Fatalf("unexpected service call %+v", service.last)
	}
	if result.Total != 4 {
		t.Fatalf("expected total 4, got %d", result.Total)
	}
}

func TestGroupedDictionariesQuery(t *testing.T) {
	service := &stubListService{result: dictionary.ListResult{
		Dictionaries: []dictionary.Item{
			{ID: 1, Type: "gender", Value: "m"},
			{ID: 2, Type: "status", Value: "active"},
			{ID: 3, Type: "gender", Value: "f"},
		},
		Total: 3,
	}}
	query := NewGroupedDictionariesQuery(service)
	result, err := query.Query(context.Background(), dictionary.ListQuery{Page: 1, PageSize: 50})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if len(result.Groups) != 2 || result.Groups[0].Type != "gender" || result.Groups[0].Count != 2 {
		t.Fatalf("unexpected groups %+v", result.Groups)
	}
	if result.Total != 3 {
		t.Fatalf("expected total 3, got %d", result.Total)
	}
}

func TestGroupedDictionariesQueryError(t *testing.T) {
	service := &stubListService{err: errors.New("offline")}
	if _, err := NewGroupedDictionariesQuery(service).Query(context.Background(), dictionary.ListQuery{}); err == nil {
		t.Fatalf("expected error")
	}
}
