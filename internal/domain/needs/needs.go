// Package needs holds structured requirement sets parsed from teacher
// instructions.
package needs

import (
	"sort"

	"github.com/recitevault/recitevault/internal/domain/taxonomy"
)

// Set maps each category to the item indices a teacher asked for.
type Set map[taxonomy.Category][]int

// Normalized returns a copy with duplicates removed, indices clamped to
// the taxonomy's valid range and sorted ascending. Every fixed category
// is present, possibly empty.
func (s Set) Normalized(store *taxonomy.Store) Set {
	out := make(Set, len(taxonomy.Categories()))
	for _, c := range taxonomy.Categories() {
		seen := make(map[int]struct{})
		indices := []int{}
		for _, idx := range s[c] {
			if _, dup := seen[idx]; dup || !store.ValidIndex(c, idx) {
				continue
			}
			seen[idx] = struct{}{}
			indices = append(indices, idx)
		}
		sort.Ints(indices)
		out[c] = indices
	}
	return out
}

// Add records an index for a category.
func (s Set) Add(c taxonomy.Category, idx int) {
	s[c] = append(s[c], idx)
}
