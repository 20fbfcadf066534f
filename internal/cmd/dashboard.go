package cmd

import (
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/rezai-admin/internal/auth"
	"github.com/felixgeelhaar/rezai-admin/internal/dashboard"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show platform statistics",
	Long: `Show the totals and weekly growth of questions, answers, recipes and users.

Examples:
  rezai-admin dashboard
  rezai-admin dashboard --format json`,
	Args: cobra.NoArgs,
	RunE: runDashboard,
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

// dashboardView prints the cards in text mode and the card data otherwise.
type dashboardView struct {
	Cards []dashboard.Card `json:"cards" yaml:"cards"`
}

func (d dashboardView) String() string {
	return dashboard.Headline + "\n\n" + dashboard.Render(d.Cards, 2)
}

func runDashboard(cmd *cobra.Command, args []string) error {
	a, err := newProtectedApp(cmd, auth.RouteDashboard)
	if err != nil {
		return err
	}
	defer a.Close()

	stats, err := a.Service.Dashboard(cmd.Context())
	if err != nil {
		return err
	}
	return a.Print(dashboardView{Cards: dashboard.Cards(*stats)})
}
