package cmd

import (
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/rezai-admin/internal/table"
	"github.com/felixgeelhaar/rezai-admin/internal/ux"
	"github.com/felixgeelhaar/rezai-admin/internal/views"
)

// listFlags are the search, filter and paging flags shared by list commands.
type listFlags struct {
	search  string
	filters []string
	page    int
}

func (l *listFlags) bind(cmd *cobra.Command, filterFlag, filterUsage string) {
	cmd.Flags().StringVar(&l.search, "search", "", "case-insensitive search term")
	if filterFlag != "" {
		cmd.Flags().StringSliceVar(&l.filters, filterFlag, nil, filterUsage)
	}
	cmd.Flags().IntVar(&l.page, "page", 1, "page to show")
}

// apply loads rows into tbl and applies the flags in the order the
// console does: search and filter reset to page 1, then the page is set.
func (l *listFlags) apply(tbl applier) {
	tbl.SetSearch(l.search)
	if len(l.filters) > 0 {
		tbl.SetFilter(l.filters...)
	}
	tbl.SetPage(l.page)
}

type applier interface {
	SetSearch(term string)
	SetFilter(values ...string)
	SetPage(p int)
}

// listOutput renders the current page of tbl. Structured formats get every
// filtered row, not just the page.
func listOutput[T any](tbl *table.Table[T], cols []views.Column, row func(T) []string) ux.Table {
	visible := tbl.Visible()
	rows := make([][]string, len(visible))
	for i, item := range visible {
		rows[i] = row(item)
	}

	data := tbl.Filtered()
	if data == nil {
		data = []T{}
	}

	return ux.Table{
		Headers: views.Titles(cols),
		Rows:    rows,
		Empty:   tbl.EmptyMessage(),
		Footer:  []string{tbl.Summary() + "  " + tbl.PageLabel()},
		Data:    data,
	}
}
