package tui

import (
	"context"
	"fmt"
	"strings"

	btable "github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/felixgeelhaar/rezai-admin/internal/auth"
	"github.com/felixgeelhaar/rezai-admin/internal/cache"
	"github.com/felixgeelhaar/rezai-admin/internal/errors"
	"github.com/felixgeelhaar/rezai-admin/internal/table"
	"github.com/felixgeelhaar/rezai-admin/internal/views"
)

// loadedMsg carries the result of a resource fetch.
type loadedMsg struct {
	route auth.Route
	data  any
	err   error
}

// filterOption is one entry of the filter menu.
type filterOption struct {
	Value string
	Label string
}

// screen is a table view the console can drive without knowing its row type.
type screen interface {
	route() auth.Route
	fetch(ctx context.Context) tea.Cmd
	loaded(data any, err error)
	// showCached renders whatever the cache holds now, e.g. a list a
	// delete has already pruned.
	showCached()
	busy() bool
	search() string
	setSearch(term string)
	filterOptions() []filterOption
	filterSelection() []string
	isSelected(value string) bool
	// toggleFilter and clearFilter report whether the view must refetch.
	toggleFilter(value string) bool
	clearFilter() bool
	toggle(name string) bool
	setToggle(name string, on bool)
	prevPage()
	nextPage()
	selectedID() (string, bool)
	updateGrid(msg tea.Msg) tea.Cmd
	view(st Styles, spin string) string
}

// resourceView renders a table.Table through a bubbles table.
type resourceView[T any] struct {
	r       auth.Route
	tbl     *table.Table[T]
	cols    []views.Column
	row     func(T) []string
	id      func(T) string
	load    func(ctx context.Context, param string) ([]T, error)
	cached  func(param string) ([]T, bool)
	label   func(value string) string
	options func() []filterOption

	// param is passed to load; the answers view keeps its question id here.
	param   string
	grid    btable.Model
	loading bool
	err     error
	stale   bool
}

func newResourceView[T any](r auth.Route, tbl *table.Table[T], cols []views.Column, row func(T) []string, id func(T) string, load func(context.Context, string) ([]T, error)) *resourceView[T] {
	columns := make([]btable.Column, len(cols))
	for i, c := range cols {
		columns[i] = btable.Column{Title: c.Title, Width: c.Width}
	}
	grid := btable.New(
		btable.WithColumns(columns),
		btable.WithFocused(true),
		btable.WithHeight(table.DefaultPageSize+1),
	)
	v := &resourceView[T]{r: r, tbl: tbl, cols: cols, row: row, id: id, load: load, grid: grid}
	v.refresh()
	return v
}

func (v *resourceView[T]) route() auth.Route { return v.r }

func (v *resourceView[T]) busy() bool { return v.loading }

func (v *resourceView[T]) fetch(ctx context.Context) tea.Cmd {
	v.loading = true
	v.stale = false
	load, r, param := v.load, v.r, v.param
	return func() tea.Msg {
		rows, err := load(ctx, param)
		return loadedMsg{route: r, data: rows, err: err}
	}
}

// loaded keeps the previous rows when the fetch failed and returned nothing.
func (v *resourceView[T]) loaded(data any, err error) {
	v.loading = false
	v.err = err
	if rows, ok := data.([]T); ok && (err == nil || rows != nil) {
		v.tbl.SetRows(rows)
	}
	v.refresh()
}

func (v *resourceView[T]) showCached() {
	if v.cached == nil {
		return
	}
	if rows, ok := v.cached(v.param); ok {
		v.tbl.SetRows(rows)
		v.refresh()
	}
}

// cachedRows reads the list the service caches for resource.
func cachedRows[T any](c *cache.Cache, resource string) func(string) ([]T, bool) {
	return func(param string) ([]T, bool) {
		return cache.Get[[]T](c, cache.Key{Resource: resource, Params: param})
	}
}

func (v *resourceView[T]) search() string { return v.tbl.Search() }

func (v *resourceView[T]) setSearch(term string) {
	v.tbl.SetSearch(term)
	v.refresh()
}

func (v *resourceView[T]) filterOptions() []filterOption {
	if v.options != nil {
		return v.options()
	}
	values := v.tbl.FilterValues()
	out := make([]filterOption, 0, len(values))
	for _, val := range values {
		label := val
		if v.label != nil {
			label = v.label(val)
		}
		out = append(out, filterOption{Value: val, Label: label})
	}
	return out
}

func (v *resourceView[T]) filterSelection() []string { return v.tbl.Filter() }

func (v *resourceView[T]) isSelected(value string) bool { return v.tbl.IsSelected(value) }

func (v *resourceView[T]) toggleFilter(value string) bool {
	v.tbl.ToggleFilter(value)
	v.refresh()
	return v.consumeStale()
}

func (v *resourceView[T]) clearFilter() bool {
	v.tbl.ClearFilter()
	v.refresh()
	return v.consumeStale()
}

func (v *resourceView[T]) consumeStale() bool {
	stale := v.stale
	v.stale = false
	return stale
}

func (v *resourceView[T]) toggle(name string) bool { return v.tbl.Toggle(name) }

func (v *resourceView[T]) setToggle(name string, on bool) {
	v.tbl.SetToggle(name, on)
	v.refresh()
}

func (v *resourceView[T]) prevPage() {
	v.tbl.PrevPage()
	v.refresh()
}

func (v *resourceView[T]) nextPage() {
	v.tbl.NextPage()
	v.refresh()
}

func (v *resourceView[T]) current() (T, bool) {
	var zero T
	visible := v.tbl.Visible()
	i := v.grid.Cursor()
	if i < 0 || i >= len(visible) {
		return zero, false
	}
	return visible[i], true
}

func (v *resourceView[T]) selectedID() (string, bool) {
	item, ok := v.current()
	if !ok {
		return "", false
	}
	return v.id(item), true
}

func (v *resourceView[T]) updateGrid(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	v.grid, cmd = v.grid.Update(msg)
	return cmd
}

// refresh rebuilds the grid rows from the current page.
func (v *resourceView[T]) refresh() {
	if v.tbl.Empty() {
		empty := make(btable.Row, len(v.cols))
		empty[0] = v.tbl.EmptyMessage()
		v.grid.SetRows([]btable.Row{empty})
		v.grid.SetCursor(0)
		return
	}

	visible := v.tbl.Visible()
	rows := make([]btable.Row, len(visible))
	for i, item := range visible {
		cells := v.row(item)
		for j := range cells {
			if j < len(v.cols) {
				cells[j] = views.Truncate(cells[j], v.cols[j].Width)
			}
		}
		rows[i] = cells
	}
	v.grid.SetRows(rows)
	if v.grid.Cursor() >= len(rows) {
		v.grid.SetCursor(len(rows) - 1)
	}
}

func (v *resourceView[T]) view(st Styles, spin string) string {
	var b strings.Builder

	b.WriteString(st.Title.Render(v.r.Title()))
	b.WriteString("\n")

	var status []string
	if term := v.tbl.Search(); term != "" {
		status = append(status, fmt.Sprintf("Search: %q", term))
	}
	if sel := v.tbl.Filter(); len(sel) > 0 {
		labels := make([]string, len(sel))
		for i, s := range sel {
			labels[i] = v.filterLabel(s)
		}
		status = append(status, "Filter: "+strings.Join(labels, ", "))
	}
	if v.tbl.Toggle(views.ToggleBookmarked) {
		status = append(status, "Bookmarked only")
	}
	if len(status) > 0 {
		b.WriteString(st.Badge.Render(strings.Join(status, " · ")))
		b.WriteString("\n")
	}

	if v.loading {
		b.WriteString(spin + " Loading " + v.tbl.Noun() + "...\n")
	}
	b.WriteString(v.grid.View())
	b.WriteString("\n")

	b.WriteString(st.Muted.Render(v.tbl.Summary()))
	b.WriteString("  ")
	b.WriteString(v.pager(st))
	b.WriteString("\n")

	if v.err != nil {
		b.WriteString(st.Error.Render(fmt.Sprintf("Failed to load %s: %s", v.tbl.Noun(), errors.UserMessage(fetchCause(v.err)))))
		b.WriteString("\n")
	}
	return b.String()
}

func (v *resourceView[T]) filterLabel(value string) string {
	for _, o := range v.filterOptions() {
		if o.Value == value {
			return o.Label
		}
	}
	return value
}

func (v *resourceView[T]) pager(st Styles) string {
	prev, next := "◀", "▶"
	if !v.tbl.HasPrev() {
		prev = st.Muted.Render(prev)
	}
	if !v.tbl.HasNext() {
		next = st.Muted.Render(next)
	}
	return prev + " " + v.tbl.PageLabel() + " " + next
}

// fetchCause unwraps a fetch error to the server or transport error
// beneath it.
func fetchCause(err error) error {
	type unwrapper interface{ Unwrap() error }
	if u, ok := err.(unwrapper); ok && u.Unwrap() != nil {
		return u.Unwrap()
	}
	return err
}
