package cmd

import (
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/rezai-admin/internal/auth"
	"github.com/felixgeelhaar/rezai-admin/internal/views"
)

var recipesCmd = &cobra.Command{
	Use:   "recipes",
	Short: "Browse recipes",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var recipesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recipes",
	Long: `List recipes, ten per page.

Search matches meal type, ingredients and cooking time. --meal-type keeps
recipes of any of the given meal types; --bookmarked keeps bookmarked ones.

Examples:
  rezai-admin recipes list --meal-type Breakfast --bookmarked
  rezai-admin recipes list --search garlic --format json`,
	Args: cobra.NoArgs,
	RunE: runRecipesList,
}

var (
	recipesList       listFlags
	recipesBookmarked bool
)

func init() {
	recipesList.bind(recipesListCmd, "meal-type", "only recipes of these meal types")
	recipesListCmd.Flags().BoolVar(&recipesBookmarked, "bookmarked", false, "only bookmarked recipes")

	recipesCmd.AddCommand(recipesListCmd)
	rootCmd.AddCommand(recipesCmd)
}

func runRecipesList(cmd *cobra.Command, args []string) error {
	a, err := newProtectedApp(cmd, auth.RouteRecipes)
	if err != nil {
		return err
	}
	defer a.Close()

	recipes, err := a.Service.Recipes(cmd.Context())
	if err != nil {
		return err
	}

	tbl := views.NewRecipesTable()
	tbl.SetRows(recipes)
	tbl.SetToggle(views.ToggleBookmarked, recipesBookmarked)
	recipesList.apply(tbl)
	return a.Print(listOutput(tbl, views.RecipeColumns, views.RecipeRow))
}
