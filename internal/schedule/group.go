package schedule

import "sort"

// Group is a set of items sharing a presentation key, with counts
// recomputed from its members on every derivation.
type Group[T any] struct {
	Key       string `json:"key"`
	Items     []T    `json:"items"`
	Total     int    `json:"total"`
	Completed int    `json:"completed"`
}

// FullyComplete reports whether every member is completed.
func (g *Group[T]) FullyComplete() bool {
	return g.Total > 0 && g.Completed == g.Total
}

// PartiallyComplete reports whether some but not all members are completed.
func (g *Group[T]) PartiallyComplete() bool {
	return g.Completed > 0 && g.Completed < g.Total
}

// GroupBy partitions items by key, preserving first-seen group order
// and the input order within each group. completed decides which items
// count toward Group.Completed.
func GroupBy[T any](items []T, key func(T) string, completed func(T) bool) []Group[T] {
	index := make(map[string]int)
	var groups []Group[T]

	for _, item := range items {
		k := key(item)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, Group[T]{Key: k})
		}
		groups[i].Items = append(groups[i].Items, item)
		groups[i].Total++
		if completed(item) {
			groups[i].Completed++
		}
	}

	return groups
}

// GroupByTime groups due items by their time slot. Items arrive sorted
// by time of day, so first-seen order yields ascending slots.
func GroupByTime(items []DueItem) []Group[DueItem] {
	return GroupBy(items,
		func(i DueItem) string { return i.TimeOfDay },
		func(i DueItem) bool { return i.Administered },
	)
}

// sortGroupsWithLast orders groups alphabetically by key, forcing the
// group with key last to the end. Presentation tie-break only.
func sortGroupsWithLast[T any](groups []Group[T], last string) {
	sort.SliceStable(groups, func(a, b int) bool {
		if groups[a].Key == last {
			return false
		}
		if groups[b].Key == last {
			return true
		}
		return groups[a].Key < groups[b].Key
	})
}
