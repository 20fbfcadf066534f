package domain

import (
	"strings"
	"time"
)

// Provider is the sign-in method a user registered with.
type Provider string

const (
	ProviderEmail  Provider = "email"
	ProviderGoogle Provider = "google"
	ProviderApple  Provider = "apple"
)

// Label capitalizes the provider for display. Unknown providers are kept verbatim.
func (p Provider) Label() string {
	if p == "" {
		return ""
	}
	s := string(p)
	return strings.ToUpper(s[:1]) + s[1:]
}

// RoleAdmin is the role rendered with the destructive badge.
const RoleAdmin = "admin"

// User is an account of the consumer app.
type User struct {
	ID        string    `json:"_id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Email     string    `json:"email" yaml:"email"`
	Role      string    `json:"role" yaml:"role"`
	Provider  Provider  `json:"provider" yaml:"provider"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
}

// IsAdmin reports whether the user carries the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UserRef is the embedded user summary on answers and recipes.
type UserRef struct {
	ID    string `json:"_id,omitempty" yaml:"id,omitempty"`
	Name  string `json:"name" yaml:"name"`
	Email string `json:"email,omitempty" yaml:"email,omitempty"`
}

// Recipe is a generated recipe saved by a user. Read-only for admins.
type Recipe struct {
	ID          string    `json:"_id" yaml:"id"`
	MealType    string    `json:"mealType" yaml:"mealType"`
	Ingredients []string  `json:"ingredients" yaml:"ingredients"`
	CookingTime string    `json:"cookingTime" yaml:"cookingTime"`
	ImageURL    string    `json:"imageUrl,omitempty" yaml:"imageUrl,omitempty"`
	IsBookmark  bool      `json:"isBookmark" yaml:"isBookmark"`
	User        *UserRef  `json:"user,omitempty" yaml:"user,omitempty"`
	CreatedAt   time.Time `json:"createdAt" yaml:"createdAt"`
}

// CreatedBy returns the owner's name, or "" when the owner is unknown.
func (r Recipe) CreatedBy() string {
	if r.User == nil {
		return ""
	}
	return r.User.Name
}

// Question is a survey question shown to app users.
type Question struct {
	ID           string       `json:"_id" yaml:"id"`
	Text         string       `json:"text" yaml:"text"`
	QuestionType QuestionType `json:"questionType" yaml:"questionType"`
	IsLive       bool         `json:"isLive" yaml:"isLive"`
	Options      []Option     `json:"options" yaml:"options"`
	CreatedAt    time.Time    `json:"createdAt" yaml:"createdAt"`
}

// Status renders the live flag.
func (q Question) Status() string {
	if q.IsLive {
		return "Live"
	}
	return "Inactive"
}

// Input returns the full update payload for q.
func (q Question) Input() QuestionInput {
	opts := make([]Option, len(q.Options))
	copy(opts, q.Options)
	return QuestionInput{
		Text:         q.Text,
		QuestionType: q.QuestionType,
		IsLive:       q.IsLive,
		Options:      opts,
	}
}

// QuestionInput is the body of question create and update requests.
// Updates always send every field.
type QuestionInput struct {
	Text         string       `json:"text"`
	QuestionType QuestionType `json:"questionType"`
	IsLive       bool         `json:"isLive"`
	Options      []Option     `json:"options"`
}

// QuestionRef is the embedded question summary on answers.
type QuestionRef struct {
	ID           string       `json:"_id,omitempty" yaml:"id,omitempty"`
	Text         string       `json:"text" yaml:"text"`
	QuestionType QuestionType `json:"questionType,omitempty" yaml:"questionType,omitempty"`
	IsLive       bool         `json:"isLive" yaml:"isLive"`
	Options      []Option     `json:"options,omitempty" yaml:"options,omitempty"`
}

// Answer is one user's response to a question. Both references may
// dangle after their targets are deleted.
type Answer struct {
	ID        string       `json:"_id" yaml:"id"`
	User      *UserRef     `json:"user" yaml:"user"`
	Question  *QuestionRef `json:"question" yaml:"question"`
	Answer    string       `json:"answer" yaml:"answer"`
	CreatedAt time.Time    `json:"createdAt" yaml:"createdAt"`
}

// UserName returns the answering user's name or "No name".
func (a Answer) UserName() string {
	if a.User == nil || a.User.Name == "" {
		return "No name"
	}
	return a.User.Name
}

// QuestionText returns the answered question's text or "No question".
func (a Answer) QuestionText() string {
	if a.Question == nil || a.Question.Text == "" {
		return "No question"
	}
	return a.Question.Text
}

// DashboardStats are the aggregate counters behind the dashboard cards.
type DashboardStats struct {
	TotalQuestions   int `json:"totalQuestions" yaml:"totalQuestions"`
	NewQuestionsWeek int `json:"newQuestionsWeek" yaml:"newQuestionsWeek"`
	TotalAnswers     int `json:"totalAnswers" yaml:"totalAnswers"`
	NewAnswersWeek   int `json:"newAnswersWeek" yaml:"newAnswersWeek"`
	TotalRecipes     int `json:"totalRecipes" yaml:"totalRecipes"`
	NewRecipesWeek   int `json:"newRecipesWeek" yaml:"newRecipesWeek"`
	TotalUsers       int `json:"totalUsers" yaml:"totalUsers"`
	NewUsersWeek     int `json:"newUsersWeek" yaml:"newUsersWeek"`
}
