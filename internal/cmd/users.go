package cmd

import (
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/rezai-admin/internal/auth"
	"github.com/felixgeelhaar/rezai-admin/internal/resource"
	"github.com/felixgeelhaar/rezai-admin/internal/views"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List and delete users",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users",
	Long: `List users, ten per page.

Search matches name, email and role. --provider keeps users who signed up
with any of the given providers (email, google, apple).

Examples:
  rezai-admin users list --search ada
  rezai-admin users list --provider google,apple --page 2`,
	Args: cobra.NoArgs,
	RunE: runUsersList,
}

var usersDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a user",
	Long: `Delete a user by id. Asks for confirmation unless --yes is given.

Examples:
  rezai-admin users delete 64f1c2 --yes`,
	Args: cobra.ExactArgs(1),
	RunE: runUsersDelete,
}

var (
	usersList listFlags
	usersYes  bool
)

func init() {
	usersList.bind(usersListCmd, "provider", "only users with these sign-in providers")
	usersDeleteCmd.Flags().BoolVarP(&usersYes, "yes", "y", false, "skip the confirmation prompt")

	usersCmd.AddCommand(usersListCmd)
	usersCmd.AddCommand(usersDeleteCmd)
	rootCmd.AddCommand(usersCmd)
}

func runUsersList(cmd *cobra.Command, args []string) error {
	a, err := newProtectedApp(cmd, auth.RouteUsers)
	if err != nil {
		return err
	}
	defer a.Close()

	users, err := a.Service.Users(cmd.Context())
	if err != nil {
		return err
	}

	tbl := views.NewUsersTable()
	tbl.SetRows(users)
	usersList.apply(tbl)
	return a.Print(listOutput(tbl, views.UserColumns, views.UserRow))
}

func runUsersDelete(cmd *cobra.Command, args []string) error {
	a, err := newProtectedApp(cmd, auth.RouteUsers)
	if err != nil {
		return err
	}
	defer a.Close()

	return confirmDelete(cmd, a, resource.KindUser, args[0], usersYes)
}
