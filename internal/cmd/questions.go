package cmd

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/rezai-admin/internal/auth"
	"github.com/felixgeelhaar/rezai-admin/internal/domain"
	"github.com/felixgeelhaar/rezai-admin/internal/errors"
	"github.com/felixgeelhaar/rezai-admin/internal/form"
	"github.com/felixgeelhaar/rezai-admin/internal/notify"
	"github.com/felixgeelhaar/rezai-admin/internal/resource"
	"github.com/felixgeelhaar/rezai-admin/internal/tui"
	"github.com/felixgeelhaar/rezai-admin/internal/views"
)

var questionsCmd = &cobra.Command{
	Use:   "questions",
	Short: "Manage survey questions",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var questionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List questions",
	Long: `List survey questions, ten per page.

Search matches question text and option labels. --type keeps questions of
the given types (single, multiple).

Examples:
  rezai-admin questions list --type multiple
  rezai-admin questions list --search cuisine`,
	Args: cobra.NoArgs,
	RunE: runQuestionsList,
}

var questionsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Add a question",
	Long: `Add a survey question.

Each --option is "Label" or "Label=icon", where icon is a hosted image URL or
a local image file that is uploaded to the configured image host first.
At least two options with a label are required.

Examples:
  rezai-admin questions create --text "Favourite cuisine?" \
    --option Italian=./icons/italian.png --option Thai
  rezai-admin questions create --interactive`,
	Args: cobra.NoArgs,
	RunE: runQuestionsCreate,
}

var questionsEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a question",
	Long: `Edit a survey question. Only the given flags change; --option replaces
the whole option list.

Examples:
  rezai-admin questions edit 64f1c2 --live=false
  rezai-admin questions edit 64f1c2 --interactive`,
	Args: cobra.ExactArgs(1),
	RunE: runQuestionsEdit,
}

var questionsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a question",
	Args:  cobra.ExactArgs(1),
	RunE:  runQuestionsDelete,
}

var (
	questionsList listFlags

	questionText        string
	questionType        string
	questionLive        bool
	questionOptions     []string
	questionInteractive bool
	questionStrictIcons bool

	questionsYes bool
)

func init() {
	questionsList.bind(questionsListCmd, "type", "only questions of these types (single, multiple)")

	for _, c := range []*cobra.Command{questionsCreateCmd, questionsEditCmd} {
		c.Flags().StringVar(&questionText, "text", "", "question text")
		c.Flags().StringVar(&questionType, "type", string(domain.QuestionTypeSingle), "question type: single or multiple")
		c.Flags().BoolVar(&questionLive, "live", true, "publish the question")
		c.Flags().StringArrayVar(&questionOptions, "option", nil, "option as Label or Label=icon (repeatable)")
		c.Flags().BoolVarP(&questionInteractive, "interactive", "i", false, "edit the question in a form")
		c.Flags().BoolVar(&questionStrictIcons, "strict-icons", false, "do not save when an icon upload fails")
	}
	questionsDeleteCmd.Flags().BoolVarP(&questionsYes, "yes", "y", false, "skip the confirmation prompt")

	questionsCmd.AddCommand(questionsListCmd)
	questionsCmd.AddCommand(questionsCreateCmd)
	questionsCmd.AddCommand(questionsEditCmd)
	questionsCmd.AddCommand(questionsDeleteCmd)
	rootCmd.AddCommand(questionsCmd)
}

func runQuestionsList(cmd *cobra.Command, args []string) error {
	a, err := newProtectedApp(cmd, auth.RouteQuestions)
	if err != nil {
		return err
	}
	defer a.Close()

	questions, err := a.Service.Questions(cmd.Context())
	if err != nil {
		return err
	}

	for i, t := range questionsList.filters {
		questionsList.filters[i] = strings.ToUpper(strings.TrimSpace(t))
	}

	tbl := views.NewQuestionsTable()
	tbl.SetRows(questions)
	questionsList.apply(tbl)
	return a.Print(listOutput(tbl, views.QuestionColumns, views.QuestionRow))
}

func runQuestionsCreate(cmd *cobra.Command, args []string) error {
	a, err := newProtectedApp(cmd, auth.RouteQuestions)
	if err != nil {
		return err
	}
	defer a.Close()

	f := form.NewQuestionForm(a.Notifier)
	f.OpenCreate()
	return editQuestion(cmd, a, f)
}

func runQuestionsEdit(cmd *cobra.Command, args []string) error {
	a, err := newProtectedApp(cmd, auth.RouteQuestions)
	if err != nil {
		return err
	}
	defer a.Close()

	questions, err := a.Service.Questions(cmd.Context())
	if err != nil {
		return err
	}
	q, ok := findQuestion(questions, args[0])
	if !ok {
		return QuestionNotFoundError(args[0])
	}

	f := form.NewQuestionForm(a.Notifier)
	f.OpenEdit(q)
	return editQuestion(cmd, a, f)
}

func runQuestionsDelete(cmd *cobra.Command, args []string) error {
	a, err := newProtectedApp(cmd, auth.RouteQuestions)
	if err != nil {
		return err
	}
	defer a.Close()

	return confirmDelete(cmd, a, resource.KindQuestion, args[0], questionsYes)
}

func findQuestion(questions []domain.Question, id string) (domain.Question, bool) {
	for _, q := range questions {
		if q.ID == id {
			return q, true
		}
	}
	return domain.Question{}, false
}

// editQuestion applies the flags to the open form, optionally runs the
// interactive form, and submits. In interactive mode a validation failure
// reopens the form with the errors shown.
func editQuestion(cmd *cobra.Command, a *App, f *form.QuestionForm) error {
	paths, err := applyQuestionFlags(cmd, f)
	if err != nil {
		return err
	}

	if !questionInteractive {
		return submitQuestion(cmd.Context(), a, f, paths)
	}

	if !tui.ShouldPrompt() {
		return NonInteractiveError("--interactive", "Pass --text and --option flags instead")
	}

	draft := tui.NewQuestionDraft(f.Fields())
	var errs map[form.Field]string
	for {
		if err := tui.PromptQuestion(draft, f.Title(), errs); err != nil {
			return err
		}
		err := submitQuestion(cmd.Context(), a, f, draft.Apply(f))
		if err == nil || errors.CategoryOf(err) != errors.CategoryValidation {
			return err
		}
		errs = f.Errors()
	}
}

// applyQuestionFlags copies the flags the user set onto f and returns the
// local icon files to upload, keyed by option index.
func applyQuestionFlags(cmd *cobra.Command, f *form.QuestionForm) (map[int]string, error) {
	flags := cmd.Flags()
	if flags.Changed("text") {
		f.SetText(questionText)
	}
	if flags.Changed("type") {
		t, err := domain.NewQuestionType(questionType)
		if err != nil {
			return nil, InvalidQuestionTypeError(questionType)
		}
		f.SetType(t)
	}
	if flags.Changed("live") {
		f.SetLive(questionLive)
	}
	if flags.Changed("option") {
		return form.ApplyOptions(f, questionOptions), nil
	}
	return nil, nil
}

// submitQuestion uploads pending icons and saves. A failed upload leaves
// that option without an icon; with --strict-icons nothing is saved.
func submitQuestion(ctx context.Context, a *App, f *form.QuestionForm, paths map[int]string) error {
	if len(paths) > 0 {
		if a.Config.UploadTarget().URL() == "" {
			if questionStrictIcons {
				return UploadNotConfiguredError()
			}
			a.Logger.Warn("icon uploads not configured; saving without icons", "icons", len(paths))
			notify.Error(a.Notifier, form.MsgUploadFailed)
		} else if failed := form.UploadIcons(ctx, f, a.Uploader, paths); failed > 0 {
			if questionStrictIcons {
				return UploadFailedError(failed)
			}
			a.Logger.Warn("saving question without failed icons", "failed", failed)
		}
	}
	return f.Submit(ctx, a.Service)
}
