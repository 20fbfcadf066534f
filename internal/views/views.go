// Package views defines the four resource tables: which fields search
// covers, what the filter applies to, and how each row renders.
package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/felixgeelhaar/rezai-admin/internal/domain"
	"github.com/felixgeelhaar/rezai-admin/internal/table"
)

// Column is a rendered table column.
type Column struct {
	Title string
	Width int
}

// DateLayout is the display format of created-at columns.
const DateLayout = "Jan 02, 2006"

// FormatDate renders t with DateLayout, or "-" for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(DateLayout)
}

// RelativeDate renders t relative to now ("3 days ago").
func RelativeDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.Time(t)
}

// Preview joins the first n items and appends "+N more" for the rest.
func Preview(items []string, n int) string {
	if len(items) <= n {
		return strings.Join(items, ", ")
	}
	return fmt.Sprintf("%s +%d more", strings.Join(items[:n], ", "), len(items)-n)
}

// Truncate shortens s to width runes, ending with an ellipsis.
func Truncate(s string, width int) string {
	r := []rune(s)
	if width <= 0 || len(r) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(r[:width-1]) + "…"
}

// UserColumns are the users table headers.
var UserColumns = []Column{
	{Title: "Name", Width: 22},
	{Title: "Email", Width: 28},
	{Title: "Role", Width: 8},
	{Title: "Provider", Width: 10},
	{Title: "Created At", Width: 14},
}

// NewUsersTable searches name, email and role and filters by provider.
func NewUsersTable() *table.Table[domain.User] {
	return table.New(table.Config[domain.User]{
		Noun:         "users",
		SearchFields: func(u domain.User) []string { return []string{u.Name, u.Email, u.Role} },
		FilterValue:  func(u domain.User) string { return string(u.Provider) },
	})
}

// UserRow renders one user.
func UserRow(u domain.User) []string {
	return []string{u.Name, u.Email, u.Role, u.Provider.Label(), FormatDate(u.CreatedAt)}
}

// ToggleBookmarked restricts recipes to bookmarked ones.
const ToggleBookmarked = "bookmarked"

// RecipeColumns are the recipes table headers.
var RecipeColumns = []Column{
	{Title: "Meal Type", Width: 14},
	{Title: "Ingredients", Width: 36},
	{Title: "Cooking Time", Width: 14},
	{Title: "Created At", Width: 14},
	{Title: "Bookmarked", Width: 10},
}

// NewRecipesTable searches meal type, ingredients and cooking time,
// filters by meal type and offers the bookmarked-only toggle.
func NewRecipesTable() *table.Table[domain.Recipe] {
	return table.New(table.Config[domain.Recipe]{
		Noun: "recipes",
		SearchFields: func(r domain.Recipe) []string {
			fields := make([]string, 0, len(r.Ingredients)+2)
			fields = append(fields, r.MealType, r.CookingTime)
			return append(fields, r.Ingredients...)
		},
		FilterValue: func(r domain.Recipe) string { return r.MealType },
		Toggles: map[string]func(domain.Recipe) bool{
			ToggleBookmarked: func(r domain.Recipe) bool { return r.IsBookmark },
		},
	})
}

// RecipeRow renders one recipe.
func RecipeRow(r domain.Recipe) []string {
	bookmarked := "No"
	if r.IsBookmark {
		bookmarked = "Yes"
	}
	return []string{r.MealType, Preview(r.Ingredients, 3), r.CookingTime, FormatDate(r.CreatedAt), bookmarked}
}

// QuestionColumns are the questions table headers.
var QuestionColumns = []Column{
	{Title: "Question", Width: 36},
	{Title: "Type", Width: 16},
	{Title: "Status", Width: 9},
	{Title: "Options", Width: 28},
	{Title: "Created At", Width: 14},
}

// NewQuestionsTable searches question text and option labels and filters
// by question type.
func NewQuestionsTable() *table.Table[domain.Question] {
	return table.New(table.Config[domain.Question]{
		Noun: "questions",
		SearchFields: func(q domain.Question) []string {
			return append([]string{q.Text}, domain.OptionLabels(q.Options)...)
		},
		FilterValue: func(q domain.Question) string { return string(q.QuestionType) },
	})
}

// QuestionRow renders one question.
func QuestionRow(q domain.Question) []string {
	return []string{
		q.Text,
		q.QuestionType.Label(),
		q.Status(),
		Preview(domain.OptionLabels(q.Options), 2),
		FormatDate(q.CreatedAt),
	}
}

// AnswerColumns are the answers table headers.
var AnswerColumns = []Column{
	{Title: "User", Width: 20},
	{Title: "Question", Width: 36},
	{Title: "Answer", Width: 24},
	{Title: "Created At", Width: 14},
}

// NewAnswersTable searches user name, question text and answer. The
// question filter is single-select and remote: onQuestion receives the
// selected question id ("" for all) and is expected to refetch.
func NewAnswersTable(onQuestion func(questionID string)) *table.Table[domain.Answer] {
	cfg := table.Config[domain.Answer]{
		Noun:         "answers",
		SingleSelect: true,
		SearchFields: func(a domain.Answer) []string {
			var fields []string
			if a.User != nil {
				fields = append(fields, a.User.Name)
			}
			if a.Question != nil {
				fields = append(fields, a.Question.Text)
			}
			return append(fields, a.Answer)
		},
		FilterValue: func(a domain.Answer) string {
			if a.Question == nil {
				return ""
			}
			return a.Question.ID
		},
	}
	if onQuestion != nil {
		cfg.OnFilterChange = func(selected []string) {
			onQuestion(SelectedQuestion(selected))
		}
	}
	return table.New(cfg)
}

// SelectedQuestion maps a filter selection to the question id the
// answers endpoint accepts.
func SelectedQuestion(selected []string) string {
	if len(selected) == 0 {
		return ""
	}
	return selected[0]
}

// AnswerRow renders one answer.
func AnswerRow(a domain.Answer) []string {
	return []string{a.UserName(), a.QuestionText(), a.Answer, FormatDate(a.CreatedAt)}
}

// Titles returns the column titles.
func Titles(cols []Column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Title
	}
	return out
}
