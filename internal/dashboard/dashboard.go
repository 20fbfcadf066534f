// Package dashboard turns aggregate statistics into summary cards.
package dashboard

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/felixgeelhaar/rezai-admin/internal/domain"
)

// Headline is the text shown under the dashboard title.
const Headline = "Overview of your application statistics and performance."

// Card is one statistic with its weekly delta.
type Card struct {
	Title       string `json:"title" yaml:"title"`
	Value       int    `json:"value" yaml:"value"`
	NewValue    int    `json:"newValue" yaml:"newValue"`
	Description string `json:"description" yaml:"description"`
	Insight     string `json:"insight" yaml:"insight"`
	Percentage  int    `json:"percentage" yaml:"percentage"`
}

// Positive reports whether anything new arrived this week.
func (c Card) Positive() bool {
	return c.NewValue > 0
}

// Badge is the trend badge text: "+N" or "0".
func (c Card) Badge() string {
	if c.Positive() {
		return fmt.Sprintf("+%d", c.NewValue)
	}
	return "0"
}

// Footer is the "<new> <description>" line.
func (c Card) Footer() string {
	return fmt.Sprintf("%d %s", c.NewValue, strings.ToLower(c.Description))
}

// FormattedValue renders the total with thousands separators.
func (c Card) FormattedValue() string {
	return humanize.Comma(int64(c.Value))
}

// Percentage is round(newCount/total*100), 0 when total is 0.
func Percentage(total, newCount int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(newCount) / float64(total) * 100))
}

// Cards builds the four dashboard cards in display order.
func Cards(s domain.DashboardStats) []Card {
	questionsInsight := "New questions added this week"
	if s.NewQuestionsWeek == 0 {
		questionsInsight = "No new questions this week"
	}

	cards := []Card{
		{Title: "Total Questions", Value: s.TotalQuestions, NewValue: s.NewQuestionsWeek, Description: "New questions this week", Insight: questionsInsight},
		{Title: "Total Answers", Value: s.TotalAnswers, NewValue: s.NewAnswersWeek, Description: "New answers this week", Insight: "Strong engagement from users"},
		{Title: "Total Recipes", Value: s.TotalRecipes, NewValue: s.NewRecipesWeek, Description: "New recipes this week", Insight: "Recipe collection growing steadily"},
		{Title: "Total Users", Value: s.TotalUsers, NewValue: s.NewUsersWeek, Description: "New users this week", Insight: "User acquisition on target"},
	}
	for i := range cards {
		cards[i].Percentage = Percentage(cards[i].Value, cards[i].NewValue)
	}
	return cards
}

// FormatLabel turns a camelCase key into Title Case words.
func FormatLabel(key string) string {
	var b strings.Builder
	for i, r := range key {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteByte(' ')
		}
		if i == 0 && r >= 'a' && r <= 'z' {
			r -= 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

var (
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1).
			Width(30)
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	valueStyle = lipgloss.NewStyle().Bold(true)
	upStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	flatStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

// RenderCard draws one card as a bordered box.
func RenderCard(c Card) string {
	trend := flatStyle.Render("↘ " + c.Badge())
	if c.Positive() {
		trend = upStyle.Render("↗ " + c.Badge())
	}

	body := strings.Join([]string{
		titleStyle.Render(c.Title) + "  " + trend,
		valueStyle.Render(c.FormattedValue()),
		c.Insight,
		titleStyle.Render(fmt.Sprintf("%s (%d%%)", c.Footer(), c.Percentage)),
	}, "\n")
	return cardStyle.Render(body)
}

// Render lays the cards out in rows of perRow.
func Render(cards []Card, perRow int) string {
	if perRow <= 0 {
		perRow = 2
	}
	var rows []string
	for i := 0; i < len(cards); i += perRow {
		end := min(i+perRow, len(cards))
		rendered := make([]string, 0, end-i)
		for _, c := range cards[i:end] {
			rendered = append(rendered, RenderCard(c))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, rendered...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
