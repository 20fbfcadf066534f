package cmd

import (
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/rezai-admin/internal/auth"
	"github.com/felixgeelhaar/rezai-admin/internal/views"
)

var answersCmd = &cobra.Command{
	Use:   "answers",
	Short: "Browse survey answers",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var answersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List answers",
	Long: `List survey answers, ten per page.

--question asks the API for the answers to one question. Search matches the
user name, question text and answer.

Examples:
  rezai-admin answers list --question 64f1c2
  rezai-admin answers list --search vegan`,
	Args: cobra.NoArgs,
	RunE: runAnswersList,
}

var (
	answersList     listFlags
	answersQuestion string
)

func init() {
	answersList.bind(answersListCmd, "", "")
	answersListCmd.Flags().StringVar(&answersQuestion, "question", "", "only answers to this question id")

	answersCmd.AddCommand(answersListCmd)
	rootCmd.AddCommand(answersCmd)
}

func runAnswersList(cmd *cobra.Command, args []string) error {
	a, err := newProtectedApp(cmd, auth.RouteAnswers)
	if err != nil {
		return err
	}
	defer a.Close()

	answers, err := a.Service.Answers(cmd.Context(), answersQuestion)
	if err != nil {
		return err
	}

	tbl := views.NewAnswersTable(nil)
	tbl.SetRows(answers)
	answersList.apply(tbl)
	return a.Print(listOutput(tbl, views.AnswerColumns, views.AnswerRow))
}
