// Package domain contains core business entities and rules.
package domain

import (
	"strconv"
	"strings"
)

// CategoryAll is the filter value that selects every quote.
const CategoryAll = "all"

// Quote represents a user-authored quotation.
// This is a domain entity - it has no knowledge of external systems.
type Quote struct {
	// ID is the stable identifier. Legacy snapshots and some remote records
	// have none, in which case identity falls back to content equality.
	ID string `json:"id,omitempty"`

	// Text is the body of the quote.
	Text string `json:"text"`

	// Author is the optional attribution.
	Author string `json:"author,omitempty"`

	// Category is the free-text label used for filtering.
	Category string `json:"category"`
}

// Validate checks the required fields of a quote.
// Returns a ValidationError naming the first missing field.
func (q Quote) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return NewValidationError("text", "is required")
	}

	if strings.TrimSpace(q.Category) == "" {
		return NewValidationError("category", "is required")
	}

	return nil
}

// Normalized returns a copy with surrounding whitespace removed from every field.
func (q Quote) Normalized() Quote {
	return Quote{
		ID:       strings.TrimSpace(q.ID),
		Text:     strings.TrimSpace(q.Text),
		Author:   strings.TrimSpace(q.Author),
		Category: strings.TrimSpace(q.Category),
	}
}

// HasID reports whether the quote carries an explicit identifier.
func (q Quote) HasID() bool {
	return q.ID != ""
}

// Key returns the identity used to match records across collections.
// Explicit IDs are the primary path; content equality (text + category)
// is the degraded mode for records without one.
func (q Quote) Key() string {
	if q.HasID() {
		return "id:" + q.ID
	}

	return "content:" + q.ContentKey()
}

// ContentKey identifies a quote by text and category alone. Both parts are
// quoted so that no pair of values can run together into the same key.
func (q Quote) ContentKey() string {
	return strconv.Quote(q.Text) + ":" + strconv.Quote(q.Category)
}

// DiffFields lists the fields whose values differ between q and other.
// IDs are not compared.
func (q Quote) DiffFields(other Quote) []string {
	var fields []string

	if q.Text != other.Text {
		fields = append(fields, "text")
	}

	if q.Author != other.Author {
		fields = append(fields, "author")
	}

	if q.Category != other.Category {
		fields = append(fields, "category")
	}

	return fields
}

// MatchesCategory reports whether the quote passes a category filter.
// Matching is case-insensitive; an empty filter or "all" matches everything.
func (q Quote) MatchesCategory(category string) bool {
	category = strings.TrimSpace(category)
	if category == "" || strings.EqualFold(category, CategoryAll) {
		return true
	}

	return strings.EqualFold(q.Category, category)
}

// Collection is an ordered sequence of quotes.
// Order matters for display, not for merge semantics.
type Collection []Quote

// Clone returns an independent copy of the collection.
// A nil collection clones to an empty, non-nil one so it serializes as [].
func (c Collection) Clone() Collection {
	out := make(Collection, len(c))
	copy(out, c)

	return out
}

// IndexOf returns the position of the first quote with the given key, or -1.
func (c Collection) IndexOf(key string) int {
	for i := range c {
		if c[i].Key() == key {
			return i
		}
	}

	return -1
}

// IndexOfID returns the position of the quote with the given ID, or -1.
func (c Collection) IndexOfID(id string) int {
	if id == "" {
		return -1
	}

	return c.IndexOf("id:" + id)
}

// Filter returns the quotes matching the category filter, preserving order.
func (c Collection) Filter(category string) Collection {
	out := make(Collection, 0, len(c))

	for _, q := range c {
		if q.MatchesCategory(category) {
			out = append(out, q)
		}
	}

	return out
}

// Categories returns the category index of the collection.
func (c Collection) Categories() CategoryIndex {
	return NewCategoryIndex(c)
}

// CategoryIndex is the set of distinct categories in a collection, in order of
// first appearance. It is always derived, never stored.
type CategoryIndex []string

// NewCategoryIndex derives the category index from a collection.
func NewCategoryIndex(c Collection) CategoryIndex {
	seen := make(map[string]struct{}, len(c))
	index := make(CategoryIndex, 0, len(c))

	for _, q := range c {
		if _, ok := seen[q.Category]; ok {
			continue
		}

		seen[q.Category] = struct{}{}
		index = append(index, q.Category)
	}

	return index
}

// Contains reports whether the index holds the category (case-insensitive).
func (ci CategoryIndex) Contains(category string) bool {
	for _, c := range ci {
		if strings.EqualFold(c, category) {
			return true
		}
	}

	return false
}
