package dictionary

// GroupByType folds a flat list into groups keyed by type. Groups appear in
// first-seen order and keep the item order of the input.
func GroupByType(items []Item) []Group {
	if len(items) == 0 {
		return []Group{}
	}
	index := make(map[string]int, len(items))
	groups := make([]Group, 0)
	for _, item := range items {
		pos, ok := index[item.Type]
		if !ok {
			pos = len(groups)
			index[item.Type] = pos
			groups = append(groups, Group{Type: item.Type, Items: []Item{}})
		}
		groups[pos].Items = append(groups[pos].Items, item)
		groups[pos].Count++
	}
	return groups
}

// FindGroup returns the group for the type, if present.
func FindGroup(groups []Group, typ string) (Group, bool) {
	for _, g := range groups {
		if g.Type == typ {
			return g, true
		}
	}
	return Group{}, false
}

// FindItem looks up an item by id across groups.
func FindItem(groups []Group, id int64) (Item, bool) {
	for _, g := range groups {
		for _, item := range g.Items {
			if item.ID == id {
				return item, true
			}
		}
	}
	return Item{}, false
}

func cloneGroups(groups []Group) []Group {
	if groups == nil {
		return []Group{}
	}
	out := make([]Group, len(groups))
	for i, g := range groups {
		out[i] = Group{
			Type:  g.Type,
			Items: append([]Item(nil), g.Items...),
			Count: g.Count,
		}
	}
	return out
}
