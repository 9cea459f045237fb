package corerack

/*------------------------------------------------------------------
 *
 * Purpose:	Catalog queries over the registry: list all grouped by
 *		category, filter by category, and a scored free-text
 *		search.
 *
 *------------------------------------------------------------------*/

import (
	"sort"
	"strings"
)

// CatalogResponse is the JSON-shaped catalog payload returned to clients.
type CatalogResponse struct {
	Modules    []CatalogEntry
	Categories []string
}

// Catalog lists every registered module type grouped by category, with
// categories in first-seen order.
func (r *Registry) Catalog() CatalogResponse {
	entries := r.entriesInOrder()
	rank := make(map[string]int)
	var categories []string
	for _, e := range entries {
		if _, ok := rank[e.Category]; !ok {
			rank[e.Category] = len(categories)
			categories = append(categories, e.Category)
		}
	}
	// Group by category; registration order is kept within a category.
	sort.SliceStable(entries, func(i, j int) bool {
		return rank[entries[i].Category] < rank[entries[j].Category]
	})
	return CatalogResponse{Modules: entries, Categories: categories}
}

// ByCategory returns every entry in the given category, in registration
// order.
func (r *Registry) ByCategory(category string) []CatalogEntry {
	var out []CatalogEntry
	for _, e := range r.entriesInOrder() {
		if e.Category == category {
			out = append(out, e)
		}
	}
	return out
}

// searchHit pairs an entry with its relevance score for sorting.
type searchHit struct {
	entry CatalogEntry
	score int
}

// Search ranks every registered module type against query q: an exact
// type-id match scores highest, then a name match, then description,
// then keywords, then category. Entries scoring zero are excluded. Ties
// preserve registration order (Go's sort.SliceStable).
func (r *Registry) Search(q string) []CatalogEntry {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return r.entriesInOrder()
	}

	var hits []searchHit
	for _, e := range r.entriesInOrder() {
		score := 0

		typeIDLower := strings.ToLower(e.TypeID)
		if typeIDLower == q {
			score = 100
		} else if strings.Contains(typeIDLower, q) {
			// A partial type-id match is still a strong signal, but
			// weaker than the exact match above.
			score = max(score, 85)
		}

		nameLower := strings.ToLower(e.Name)
		if nameLower == q {
			score = max(score, 90)
		} else if strings.Contains(nameLower, q) {
			score = max(score, 80)
		}

		if strings.Contains(strings.ToLower(e.Description), q) {
			score = max(score, 60)
		}

		for _, kw := range e.Keywords {
			kwLower := strings.ToLower(kw)
			if kwLower == q {
				score = max(score, 50)
			} else if strings.Contains(kwLower, q) {
				score = max(score, 40)
			}
		}

		if strings.Contains(strings.ToLower(e.Category), q) {
			score = max(score, 10)
		}

		if score > 0 {
			hits = append(hits, searchHit{entry: e, score: score})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].score > hits[j].score
	})

	out := make([]CatalogEntry, len(hits))
	for i, h := range hits {
		out[i] = h.entry
	}
	return out
}
