package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-dictadmin/components/dictionary"
)

type listService interface {
	List(ctx context.Context, query dictionary.ListQuery) (dictionary.ListResult, error)
}

// ListDictionariesQuery executes read-only, paged listing.
type ListDictionariesQuery struct {
	service listService
}

// NewListDictionariesQuery builds the query.
func NewListDictionariesQuery(service listService) *ListDictionariesQuery {
	return &ListDictionariesQuery{service: service}
}

var _ gocommand.Querier[dictionary.ListQuery, dictionary.ListResult] = (*ListDictionariesQuery)(nil)

// Query returns one page of items.
func (q *ListDictionariesQuery) Query(ctx context.Context, query dictionary.ListQuery) (dictionary.ListResult, error) {
	return q.service.List(ctx, query)
}

// GroupedDictionariesQuery lists a page and folds it by type, used by tooling.
type GroupedDictionariesQuery struct {
	service listService
}

// GroupedResult is a page folded by type.
type GroupedResult struct {
	Groups []dictionary.Group
	Total  int
}

// NewGroupedDictionariesQuery builds the query.
func NewGroupedDictionariesQuery(service listService) *GroupedDictionariesQuery {
	return &GroupedDictionariesQuery{service: service}
}

var _ gocommand.Querier[dictionary.ListQuery, GroupedResult] = (*GroupedDictionariesQuery)(nil)

// Query lists and groups one page.
func (q *GroupedDictionariesQuery) Query(ctx context.Context, query dictionary.ListQuery) (GroupedResult, error) {
	result, err := q.service.List(ctx, query)
	if err != nil {
		return GroupedResult{}, err
	}
	return GroupedResult{Groups: dictionary.GroupByType(result.Dictionaries), Total: result.Total}, nil
}
