package metadata

// Merge composes metadata sources by precedence: later lists win. For
// every item, any entry with the same key already accumulated is removed
// and the new item is appended. Inputs are never mutated, and the result
// holds at most one item per key.
func Merge(lists ...List) List {
	var merged List
	for _, list := range lists {
		for _, item := range list {
			merged = merged.without(item.Key)
			merged = append(merged, item)
		}
	}
	return merged
}
