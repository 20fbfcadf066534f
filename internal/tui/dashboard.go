package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/felixgeelhaar/rezai-admin/internal/auth"
	"github.com/felixgeelhaar/rezai-admin/internal/dashboard"
	"github.com/felixgeelhaar/rezai-admin/internal/domain"
	"github.com/felixgeelhaar/rezai-admin/internal/errors"
	"github.com/felixgeelhaar/rezai-admin/internal/resource"
)

type dashboardScreen struct {
	stats   *domain.DashboardStats
	loading bool
	err     error
}

func (d *dashboardScreen) fetch(ctx context.Context, svc *resource.Service) tea.Cmd {
	d.loading = true
	return func() tea.Msg {
		stats, err := svc.Dashboard(ctx)
		return loadedMsg{route: auth.RouteDashboard, data: stats, err: err}
	}
}

func (d *dashboardScreen) loaded(data any, err error) {
	d.loading = false
	d.err = err
	if stats, ok := data.(*domain.DashboardStats); ok && stats != nil {
		d.stats = stats
	}
}

func (d *dashboardScreen) view(st Styles, spin string, width int) string {
	var b strings.Builder
	b.WriteString(st.Title.Render("Dashboard"))
	b.WriteString("\n")
	b.WriteString(st.Subtitle.Render(dashboard.Headline))
	b.WriteString("\n\n")

	if d.loading && d.stats == nil {
		b.WriteString(spin + " Loading statistics...")
		return b.String()
	}
	if d.err != nil {
		b.WriteString(st.Error.Render("Failed to load statistics: " + errors.UserMessage(fetchCause(d.err))))
		b.WriteString("\n\n")
	}
	if d.stats == nil {
		return b.String()
	}

	perRow := 4
	if width > 0 && width < 130 {
		perRow = 2
	}
	b.WriteString(dashboard.Render(dashboard.Cards(*d.stats), perRow))
	return b.String()
}
