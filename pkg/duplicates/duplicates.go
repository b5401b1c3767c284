// Package duplicates finds manifest entries that collide on their target
// filename before anything touches the filesystem.
//
// Two Downloadables with the same filename but different sources are a real
// conflict: only one of them can live on disk. The detector keeps one
// representative per filename group (the last one in stable filename order,
// which is the one listed last in the manifest) and reports the rest so the
// caller can drop them and warn about it.
package duplicates

import (
	"sort"

	"github.com/uklient/uklient/pkg/types"
)

// FindDuplicates returns the indices of all but one member of every group of
// items sharing a filename, in ascending order. items is not reordered.
func FindDuplicates(items []types.Downloadable) []int {
	return FindDuplicatesByKey(items, func(d types.Downloadable) string { return d.Filename })
}

// FindDuplicatesByKey is FindDuplicates for an arbitrary key
func FindDuplicatesByKey[T any](items []T, key func(T) string) []int {
	if len(items) < 2 {
		return nil
	}

	order := make([]int, len(items))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return key(items[order[a]]) < key(items[order[b]])
	})

	var dupes []int
	for i := 0; i < len(order)-1; i++ {
		if key(items[order[i]]) == key(items[order[i+1]]) {
			dupes = append(dupes, order[i])
		}
	}
	sort.Ints(dupes)
	return dupes
}

// Filter splits items into survivors and dropped duplicates. Survivors keep
// their relative manifest order.
func Filter(items []types.Downloadable) (kept, dropped []types.Downloadable) {
	dupes := FindDuplicates(items)
	if len(dupes) == 0 {
		return items, nil
	}

	drop := make(map[int]struct{}, len(dupes))
	for _, i := range dupes {
		drop[i] = struct{}{}
	}

	kept = make([]types.Downloadable, 0, len(items)-len(dupes))
	for i, item := range items {
		if _, ok := drop[i]; ok {
			dropped = append(dropped, item)
			continue
		}
		kept = append(kept, item)
	}
	return kept, dropped
}

// Names returns the filenames of items
func Names(items []types.Downloadable) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Filename)
	}
	return out
}
