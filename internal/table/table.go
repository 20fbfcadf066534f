// Package table is the shared search, filter and pagination engine behind
// every list view.
//
// A Table holds the full ordered row set in memory and derives the
// visible page on demand:
//
//	filtered = rows matching search AND filter AND every enabled toggle
//	page     = clamp(page, 1, max(1, ceil(len(filtered)/pageSize)))
//	visible  = filtered[(page-1)*pageSize : page*pageSize]
//
// Changing the search term, the filter selection or a toggle resets the
// page to 1.
package table

import (
	"fmt"
	"slices"
	"strings"
)

// DefaultPageSize is the number of rows per page.
const DefaultPageSize = 10

// Config describes one table instance.
type Config[T any] struct {
	// Noun is the plural row name used in summaries ("answers").
	Noun string

	// PageSize defaults to DefaultPageSize.
	PageSize int

	// SearchFields returns the strings a search term is matched against.
	SearchFields func(T) []string

	// FilterValue returns the attribute the filter selection applies to.
	FilterValue func(T) string

	// OnFilterChange, when set, switches the filter to remote mode: the
	// selection is dispatched upward and rows are not filtered locally.
	OnFilterChange func(selected []string)

	// SingleSelect limits the selection to one value. Selecting another
	// value replaces it; selecting the active value clears it.
	SingleSelect bool

	// Toggles are named boolean predicates (e.g. "bookmarked") that
	// restrict rows while enabled.
	Toggles map[string]func(T) bool
}

// Table is a paginated, searchable, filterable view over rows.
type Table[T any] struct {
	cfg      Config[T]
	rows     []T
	search   string
	selected []string
	enabled  map[string]bool
	page     int
}

// New creates an empty table.
func New[T any](cfg Config[T]) *Table[T] {
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	return &Table[T]{
		cfg:     cfg,
		enabled: make(map[string]bool),
		page:    1,
	}
}

// SetRows replaces the row set, keeping search, filter and page. The page
// is re-clamped on read.
func (t *Table[T]) SetRows(rows []T) {
	t.rows = rows
}

// Rows returns the unfiltered row set.
func (t *Table[T]) Rows() []T {
	return t.rows
}

// Noun returns the plural row name.
func (t *Table[T]) Noun() string {
	return t.cfg.Noun
}

// PageSize returns the rows per page.
func (t *Table[T]) PageSize() int {
	return t.cfg.PageSize
}

// SetSearch changes the search term and resets to page 1.
func (t *Table[T]) SetSearch(term string) {
	if term == t.search {
		return
	}
	t.search = term
	t.page = 1
}

// Search returns the current search term.
func (t *Table[T]) Search() string {
	return t.search
}

// SetFilter replaces the selected filter values and resets to page 1. A
// single-select table keeps only the last value.
func (t *Table[T]) SetFilter(values ...string) {
	if t.cfg.SingleSelect && len(values) > 1 {
		values = values[len(values)-1:]
	}
	t.selected = slices.Clone(values)
	t.filterChanged()
}

// ToggleFilter adds or removes one value from the selection.
func (t *Table[T]) ToggleFilter(value string) {
	i := slices.Index(t.selected, value)
	switch {
	case i >= 0:
		t.selected = slices.Delete(t.selected, i, i+1)
	case t.cfg.SingleSelect:
		t.selected = []string{value}
	default:
		t.selected = append(t.selected, value)
	}
	t.filterChanged()
}

// ClearFilter empties the selection.
func (t *Table[T]) ClearFilter() {
	if len(t.selected) == 0 {
		return
	}
	t.selected = nil
	t.filterChanged()
}

// Filter returns the selected values.
func (t *Table[T]) Filter() []string {
	return slices.Clone(t.selected)
}

// IsSelected reports whether value is part of the selection.
func (t *Table[T]) IsSelected(value string) bool {
	return slices.Contains(t.selected, value)
}

// RemoteFilter reports whether the filter is applied server-side.
func (t *Table[T]) RemoteFilter() bool {
	return t.cfg.OnFilterChange != nil
}

func (t *Table[T]) filterChanged() {
	t.page = 1
	if t.cfg.OnFilterChange != nil {
		t.cfg.OnFilterChange(t.Filter())
	}
}

// FilterValues returns the distinct filter attribute values present in
// the rows, in first-seen order.
func (t *Table[T]) FilterValues() []string {
	if t.cfg.FilterValue == nil {
		return nil
	}
	var out []string
	seen := make(map[string]bool)
	for _, r := range t.rows {
		v := t.cfg.FilterValue(r)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// SetToggle enables or disables a named toggle and resets to page 1.
func (t *Table[T]) SetToggle(name string, on bool) {
	if _, ok := t.cfg.Toggles[name]; !ok {
		return
	}
	if t.enabled[name] == on {
		return
	}
	t.enabled[name] = on
	t.page = 1
}

// Toggle reports whether a named toggle is enabled.
func (t *Table[T]) Toggle(name string) bool {
	return t.enabled[name]
}

// Filtered returns every row passing search, filter and toggles.
func (t *Table[T]) Filtered() []T {
	out := make([]T, 0, len(t.rows))
	for _, r := range t.rows {
		if t.matches(r) {
			out = append(out, r)
		}
	}
	return out
}

func (t *Table[T]) matches(r T) bool {
	if t.search != "" && t.cfg.SearchFields != nil {
		term := strings.ToLower(t.search)
		found := false
		for _, f := range t.cfg.SearchFields(r) {
			if strings.Contains(strings.ToLower(f), term) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if len(t.selected) > 0 && t.cfg.FilterValue != nil && t.cfg.OnFilterChange == nil {
		if !slices.Contains(t.selected, t.cfg.FilterValue(r)) {
			return false
		}
	}

	for name, pred := range t.cfg.Toggles {
		if t.enabled[name] && !pred(r) {
			return false
		}
	}
	return true
}

// TotalPages is ceil(filtered/pageSize); 0 when nothing matches.
func (t *Table[T]) TotalPages() int {
	n := len(t.Filtered())
	return (n + t.cfg.PageSize - 1) / t.cfg.PageSize
}

// Page returns the current page, clamped to [1, max(1, TotalPages)].
func (t *Table[T]) Page() int {
	return t.clamp(t.page)
}

func (t *Table[T]) clamp(p int) int {
	last := max(1, t.TotalPages())
	return min(max(p, 1), last)
}

// SetPage moves to page p, clamped into range.
func (t *Table[T]) SetPage(p int) {
	t.page = t.clamp(p)
}

// HasPrev reports whether a previous page exists.
func (t *Table[T]) HasPrev() bool {
	return t.Page() > 1
}

// HasNext reports whether a next page exists.
func (t *Table[T]) HasNext() bool {
	return t.Page() < t.TotalPages()
}

// PrevPage moves back one page; a no-op on the first page.
func (t *Table[T]) PrevPage() {
	if t.HasPrev() {
		t.page = t.Page() - 1
	}
}

// NextPage moves forward one page; a no-op on the last page.
func (t *Table[T]) NextPage() {
	if t.HasNext() {
		t.page = t.Page() + 1
	}
}

// Visible returns the rows of the current page.
func (t *Table[T]) Visible() []T {
	filtered := t.Filtered()
	start := (t.clamp(t.page) - 1) * t.cfg.PageSize
	if start >= len(filtered) {
		return nil
	}
	end := min(start+t.cfg.PageSize, len(filtered))
	return filtered[start:end]
}

// Empty reports whether no row passes the current search and filter.
func (t *Table[T]) Empty() bool {
	return len(t.Filtered()) == 0
}

// EmptyMessage is the placeholder row shown when Empty.
func (t *Table[T]) EmptyMessage() string {
	return fmt.Sprintf("No %s found matching your filters.", t.cfg.Noun)
}

// Summary describes the visible slice relative to the filtered and full sets.
func (t *Table[T]) Summary() string {
	return fmt.Sprintf("Showing %d of %d filtered %s (total %d).",
		len(t.Visible()), len(t.Filtered()), t.cfg.Noun, len(t.rows))
}

// PageLabel renders "Page N of M".
func (t *Table[T]) PageLabel() string {
	return fmt.Sprintf("Page %d of %d", t.Page(), max(1, t.TotalPages()))
}
