package dictionary

import "testing"

func TestGroupByTypeKeepsFirstSeenOrder(t *testing.T) {
	groups := GroupByType([]Item{
		{ID: 1, Type: "b"},
		{ID: 2, Type: "a"},
		{ID: 3, Type: "b"},
	})
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if groups[0].Type != "b" || groups[0].Count != 2 || groups[0].Items[1].ID != 3 {
		t.Fatalf("unexpected first group %+v", groups[0])
	}
	if groups[1].Type != "a" || groups[1].Count != 1 {
		t.Fatalf("unexpected second group %+v", groups[1])
	}
}

func TestGroupByTypeEmpty(t *testing.T) {
	groups := GroupByType(nil)
	if groups == nil || len(groups) != 0 {
		t.Fatalf("expected empty non-nil groups, got %#v", groups)
	}
}

func TestFindItemAcrossGroups(t *testing.T) {
	groups := GroupByType(sampleItems())
	item, ok := FindItem(groups, 2)
	if !ok || item.Label != "Active" {
		t.Fatalf("expected item 2, got %+v %v", item, ok)
	}
	if _, ok := FindItem(groups, 99); ok {
		t.Fatalf("expected missing item")
	}
	if _, ok := FindGroup(groups, "nope"); ok {
		t.Fatalf("expected missing group")
	}
}

func TestCloneGroupsIsIndependent(t *testing.T) {
	groups := GroupByType(sampleItems())
	cloned := cloneGroups(groups)
	cloned[0].Items[0].Label = "changed"
	if groups[0].Items[0].Label == "changed" {
		t.Fatalf("expected clone not to share item storage")
	}
}
