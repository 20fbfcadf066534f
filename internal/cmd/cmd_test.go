package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/rezai-admin/internal/domain"
	"github.com/felixgeelhaar/rezai-admin/internal/errors"
	"github.com/felixgeelhaar/rezai-admin/internal/exitcode"
	"github.com/felixgeelhaar/rezai-admin/internal/form"
	"github.com/felixgeelhaar/rezai-admin/internal/session"
)

// fakeAdminAPI serves the admin endpoints from memory.
type fakeAdminAPI struct {
	mu        sync.Mutex
	users     []domain.User
	recipes   []domain.Recipe
	questions []domain.Question
	created   []domain.QuestionInput
	updated   map[string]domain.QuestionInput
	deleted   []string
	queries   []string
	uploads   []string
	token     string
}

func newFakeAdminAPI(t *testing.T) (*fakeAdminAPI, *httptest.Server) {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "admin",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
	}).SignedString([]byte("test-key"))
	require.NoError(t, err)

	f := &fakeAdminAPI{updated: make(map[string]domain.QuestionInput), token: token}
	for i := 1; i <= 12; i++ {
		provider := domain.ProviderEmail
		if i%4 == 0 {
			provider = domain.ProviderGoogle
		}
		f.users = append(f.users, domain.User{
			ID:       fmt.Sprintf("u%d", i),
			Name:     fmt.Sprintf("User %02d", i),
			Email:    fmt.Sprintf("user%d@example.com", i),
			Role:     "user",
			Provider: provider,
		})
	}
	f.recipes = []domain.Recipe{
		{ID: "r1", MealType: "Breakfast", Ingredients: []string{"eggs"}, IsBookmark: true},
		{ID: "r2", MealType: "Dinner", Ingredients: []string{"garlic", "pasta"}},
	}
	f.questions = []domain.Question{
		{ID: "q1", Text: "Favourite cuisine?", QuestionType: domain.QuestionTypeSingle, IsLive: true,
			Options: []domain.Option{{Label: "Italian"}, {Label: "Thai"}}},
		{ID: "q2", Text: "Diet?", QuestionType: domain.QuestionTypeMultiple, IsLive: true,
			Options: []domain.Option{{Label: "Vegan"}, {Label: "Keto"}}},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", f.login)
	mux.HandleFunc("DELETE /auth/{id}", f.deleteUser)
	mux.HandleFunc("GET /admin/users", func(w http.ResponseWriter, r *http.Request) { f.reply(w, f.users) })
	mux.HandleFunc("GET /admin/recipes", func(w http.ResponseWriter, r *http.Request) { f.reply(w, f.recipes) })
	mux.HandleFunc("GET /admin/dashboard", func(w http.ResponseWriter, r *http.Request) {
		f.reply(w, domain.DashboardStats{TotalQuestions: 2, NewQuestionsWeek: 1, TotalUsers: 1200, NewUsersWeek: 12})
	})
	mux.HandleFunc("GET /admin/answers", f.listAnswers)
	mux.HandleFunc("GET /questions", func(w http.ResponseWriter, r *http.Request) { f.reply(w, f.questions) })
	mux.HandleFunc("POST /questions", f.createQuestion)
	mux.HandleFunc("PUT /questions/{id}", f.updateQuestion)
	mux.HandleFunc("DELETE /questions/{id}", f.deleteQuestion)
	mux.HandleFunc("POST /upload", f.upload)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeAdminAPI) reply(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"data": data})
}

func (f *fakeAdminAPI) login(w http.ResponseWriter, r *http.Request) {
	var body struct{ Email, Password string }
	_ = json.NewDecoder(r.Body).Decode(&body)
	if body.Password != "secret" {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"message":"Invalid credentials"}`)
		return
	}
	f.reply(w, map[string]any{
		"user":  domain.User{ID: "admin", Name: "Admin", Email: body.Email, Role: "admin"},
		"token": f.token,
	})
}

func (f *fakeAdminAPI) deleteUser(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.deleted = append(f.deleted, "user:"+r.PathValue("id"))
	f.mu.Unlock()
	f.reply(w, nil)
}

func (f *fakeAdminAPI) deleteQuestion(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.deleted = append(f.deleted, "question:"+r.PathValue("id"))
	f.mu.Unlock()
	f.reply(w, nil)
}

func (f *fakeAdminAPI) listAnswers(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.queries = append(f.queries, r.URL.RawQuery)
	f.mu.Unlock()
	f.reply(w, []domain.Answer{
		{ID: "a1", User: &domain.UserRef{Name: "Ada"}, Question: &domain.QuestionRef{ID: "q1", Text: "Favourite cuisine?"}, Answer: "Thai"},
		{ID: "a2", Answer: "Italian"},
	})
}

func (f *fakeAdminAPI) createQuestion(w http.ResponseWriter, r *http.Request) {
	var in domain.QuestionInput
	_ = json.NewDecoder(r.Body).Decode(&in)
	f.mu.Lock()
	f.created = append(f.created, in)
	f.mu.Unlock()
	f.reply(w, domain.Question{ID: "q9", Text: in.Text})
}

func (f *fakeAdminAPI) updateQuestion(w http.ResponseWriter, r *http.Request) {
	var in domain.QuestionInput
	_ = json.NewDecoder(r.Body).Decode(&in)
	f.mu.Lock()
	f.updated[r.PathValue("id")] = in
	f.mu.Unlock()
	f.reply(w, domain.Question{ID: r.PathValue("id"), Text: in.Text})
}

func (f *fakeAdminAPI) upload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	defer file.Close()
	f.mu.Lock()
	f.uploads = append(f.uploads, header.Filename+":"+r.FormValue("upload_preset"))
	f.mu.Unlock()
	_ = json.NewEncoder(w).Encode(map[string]string{"secure_url": "https://cdn.example.com/" + header.Filename})
}

// resetFlags restores every flag to its default so runs of the shared
// command tree do not leak into each other.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

type cliEnv struct {
	t    *testing.T
	api  *fakeAdminAPI
	srv  *httptest.Server
	home string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	t.Setenv("CI", "1")
	t.Setenv("REZAI_PASSWORD", "")
	api, srv := newFakeAdminAPI(t)
	return &cliEnv{t: t, api: api, srv: srv, home: t.TempDir()}
}

// run executes the CLI with stdin and returns stdout and stderr.
func (e *cliEnv) run(stdin string, args ...string) (string, string, error) {
	e.t.Helper()
	resetFlags(rootCmd)

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(append([]string{"--home", e.home, "--api-url", e.srv.URL}, args...))

	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func (e *cliEnv) login() {
	e.t.Helper()
	store := session.NewFileStore(filepath.Join(e.home, "session.json"))
	sess := session.New(domain.User{ID: "admin", Name: "Admin", Email: "admin@rezai.io", Role: "admin"}, e.api.token, time.Now(), session.DefaultTTL)
	require.NoError(e.t, store.Set(context.Background(), sess))
}

func TestProtectedCommandsRequireSession(t *testing.T) {
	env := newCLIEnv(t)

	for _, args := range [][]string{
		{"dashboard"},
		{"users", "list"},
		{"recipes", "list"},
		{"questions", "list"},
		{"answers", "list"},
		{"auth", "status"},
	} {
		_, _, err := env.run("", args...)
		require.Error(t, err, args)
		assert.True(t, errors.Is(err, errors.ErrCodeAuthNotLoggedIn), args)
		assert.Equal(t, exitcode.AuthError, exitcode.DetermineExitCode(err))
	}
}

func TestAuthLoginStatusLogout(t *testing.T) {
	env := newCLIEnv(t)

	out, stderr, err := env.run("", "auth", "login", "--email", "admin@rezai.io", "--password", "secret", "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Login successful!")

	var status statusData
	require.NoError(t, json.Unmarshal([]byte(out), &status))
	assert.Equal(t, "admin@rezai.io", status.Email)
	assert.WithinDuration(t, time.Now().Add(session.DefaultTTL), status.SessionExpiresAt, time.Minute)
	assert.FileExists(t, filepath.Join(env.home, "session.json"))

	out, _, err = env.run("", "auth", "status", "--format", "json")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &status))
	assert.Equal(t, "Admin", status.Name)
	assert.NotEmpty(t, status.TokenExpires)

	_, stderr, err = env.run("", "auth", "logout")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Logged out successfully.")

	_, _, err = env.run("", "auth", "status")
	assert.True(t, errors.Is(err, errors.ErrCodeAuthNotLoggedIn))
}

func TestAuthLoginRejected(t *testing.T) {
	env := newCLIEnv(t)

	_, stderr, err := env.run("", "auth", "login", "--email", "admin@rezai.io", "--password", "wrong")
	require.Error(t, err)
	assert.Equal(t, "Invalid credentials", errors.UserMessage(err))
	assert.Equal(t, exitcode.AuthError, exitcode.DetermineExitCode(err))
	assert.Contains(t, stderr, "Invalid credentials")
	assert.NoFileExists(t, filepath.Join(env.home, "session.json"))
}

func TestAuthLoginWithoutPasswordNonInteractive(t *testing.T) {
	env := newCLIEnv(t)

	_, _, err := env.run("", "auth", "login", "--email", "admin@rezai.io")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--password is required")
}

func TestUsersListPagesAndFilters(t *testing.T) {
	env := newCLIEnv(t)
	env.login()

	out, _, err := env.run("", "users", "list", "--page", "2", "--no-color")
	require.NoError(t, err)
	assert.Contains(t, out, "User 11")
	assert.Contains(t, out, "User 12")
	assert.NotContains(t, out, "User 01")
	assert.Contains(t, out, "Showing 2 of 12 filtered users (total 12).")
	assert.Contains(t, out, "Page 2 of 2")

	out, _, err = env.run("", "users", "list", "--provider", "google", "--format", "json")
	require.NoError(t, err)
	var users []domain.User
	require.NoError(t, json.Unmarshal([]byte(out), &users))
	require.Len(t, users, 3)
	for _, u := range users {
		assert.Equal(t, domain.ProviderGoogle, u.Provider)
	}

	out, _, err = env.run("", "users", "list", "--search", "nobody")
	require.NoError(t, err)
	assert.Contains(t, out, "No users found matching your filters.")
}

func TestUsersDelete(t *testing.T) {
	env := newCLIEnv(t)
	env.login()

	_, stderr, err := env.run("n\n", "users", "delete", "u3")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Are you sure you want to delete this user?")
	assert.Contains(t, stderr, "Cancelled.")
	assert.Empty(t, env.api.deleted)

	_, stderr, err = env.run("y\n", "users", "delete", "u3")
	require.NoError(t, err)
	assert.Contains(t, stderr, "User deleted")
	assert.Equal(t, []string{"user:u3"}, env.api.deleted)

	_, _, err = env.run("", "users", "delete", "u4", "--yes")
	require.NoError(t, err)
	assert.Equal(t, []string{"user:u3", "user:u4"}, env.api.deleted)
}

func TestRecipesListBookmarked(t *testing.T) {
	env := newCLIEnv(t)
	env.login()

	out, _, err := env.run("", "recipes", "list", "--bookmarked", "--format", "json")
	require.NoError(t, err)
	var recipes []domain.Recipe
	require.NoError(t, json.Unmarshal([]byte(out), &recipes))
	require.Len(t, recipes, 1)
	assert.Equal(t, "r1", recipes[0].ID)

	out, _, err = env.run("", "recipes", "list", "--meal-type", "Dinner", "--format", "json")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &recipes))
	require.Len(t, recipes, 1)
	assert.Equal(t, "r2", recipes[0].ID)
}

func TestQuestionsListByType(t *testing.T) {
	env := newCLIEnv(t)
	env.login()

	out, _, err := env.run("", "questions", "list", "--type", "multiple", "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "Diet?")
	assert.NotContains(t, out, "Favourite cuisine?")
}

func TestQuestionsCreateUploadsIcons(t *testing.T) {
	env := newCLIEnv(t)
	env.login()

	icon := filepath.Join(t.TempDir(), "mild.png")
	require.NoError(t, os.WriteFile(icon, []byte("png"), 0o600))
	cfg := fmt.Sprintf("upload:\n  endpoint: %s/upload\n  preset: test-preset\n", env.srv.URL)
	require.NoError(t, os.WriteFile(filepath.Join(env.home, "config.yaml"), []byte(cfg), 0o600))

	_, stderr, err := env.run("", "questions", "create",
		"--text", "  Spice level?  ",
		"--type", "multiple",
		"--option", "Mild="+icon,
		"--option", "Hot=https://cdn.example.com/hot.png",
		"--option", "  ",
	)
	require.NoError(t, err)
	assert.Contains(t, stderr, "Question Added Successfully")

	assert.Equal(t, []string{"mild.png:test-preset"}, env.api.uploads)
	require.Len(t, env.api.created, 1)
	in := env.api.created[0]
	assert.Equal(t, "Spice level?", in.Text)
	assert.Equal(t, domain.QuestionTypeMultiple, in.QuestionType)
	assert.True(t, in.IsLive)
	assert.Equal(t, []domain.Option{
		{Label: "Mild", Icon: "https://cdn.example.com/mild.png"},
		{Label: "Hot", Icon: "https://cdn.example.com/hot.png"},
	}, in.Options)
}

func TestQuestionsCreateSavesDespiteFailedUpload(t *testing.T) {
	env := newCLIEnv(t)
	env.login()

	cfg := fmt.Sprintf("upload:\n  endpoint: %s/upload\n  preset: test-preset\n", env.srv.URL)
	require.NoError(t, os.WriteFile(filepath.Join(env.home, "config.yaml"), []byte(cfg), 0o600))
	missing := filepath.Join(t.TempDir(), "missing.png")

	_, stderr, err := env.run("", "questions", "create",
		"--text", "Spice level?",
		"--option", "Mild="+missing,
		"--option", "1+1=2",
	)
	require.NoError(t, err)
	assert.Contains(t, stderr, form.MsgUploadFailed)
	require.Len(t, env.api.created, 1)
	assert.Equal(t, []domain.Option{{Label: "Mild"}, {Label: "1+1=2"}}, env.api.created[0].Options)

	_, _, err = env.run("", "questions", "create",
		"--text", "Spice level?",
		"--option", "Mild="+missing,
		"--option", "Hot",
		"--strict-icons",
	)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeUploadFailed))
	assert.Len(t, env.api.created, 1)
}

func TestQuestionsCreateValidation(t *testing.T) {
	env := newCLIEnv(t)
	env.login()

	_, stderr, err := env.run("", "questions", "create", "--text", "Spice?", "--option", "Only")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeValidationOptions))
	assert.Equal(t, exitcode.ValidationFailed, exitcode.DetermineExitCode(err))
	assert.Contains(t, stderr, "Please fix the errors before submitting.")
	assert.Empty(t, env.api.created)

	_, _, err = env.run("", "questions", "create", "--text", "Spice?", "--type", "many", "--option", "A", "--option", "B")
	assert.True(t, errors.Is(err, errors.ErrCodeValidationType))
	assert.Empty(t, env.api.created)
}

func TestQuestionsEditKeepsUnchangedFields(t *testing.T) {
	env := newCLIEnv(t)
	env.login()

	_, stderr, err := env.run("", "questions", "edit", "q1", "--live=false")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Question Updated Successfully")

	in, ok := env.api.updated["q1"]
	require.True(t, ok)
	assert.Equal(t, "Favourite cuisine?", in.Text)
	assert.Equal(t, domain.QuestionTypeSingle, in.QuestionType)
	assert.False(t, in.IsLive)
	assert.Equal(t, []domain.Option{{Label: "Italian"}, {Label: "Thai"}}, in.Options)

	_, _, err = env.run("", "questions", "edit", "missing", "--text", "x")
	assert.True(t, errors.Is(err, errors.ErrCodeMutationNotFound))
}

func TestQuestionsDelete(t *testing.T) {
	env := newCLIEnv(t)
	env.login()

	_, stderr, err := env.run("", "questions", "delete", "q2", "-y")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Question Deleted Successfully")
	assert.Equal(t, []string{"question:q2"}, env.api.deleted)
}

func TestAnswersListByQuestion(t *testing.T) {
	env := newCLIEnv(t)
	env.login()

	out, _, err := env.run("", "answers", "list", "--question", "q1", "--no-color")
	require.NoError(t, err)
	assert.Contains(t, out, "Ada")
	assert.Contains(t, out, "No name")
	assert.Contains(t, out, "No question")
	require.Len(t, env.api.queries, 1)
	assert.Contains(t, env.api.queries[0], "questionId=q1")
	assert.Contains(t, env.api.queries[0], "limit=1000")
}

func TestDashboard(t *testing.T) {
	env := newCLIEnv(t)
	env.login()

	out, _, err := env.run("", "dashboard", "--format", "json")
	require.NoError(t, err)
	var view dashboardView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	require.Len(t, view.Cards, 4)
	assert.Equal(t, "Total Users", view.Cards[3].Title)
	assert.Equal(t, 1200, view.Cards[3].Value)
	assert.Equal(t, 1, view.Cards[3].Percentage)

	out, _, err = env.run("", "dashboard")
	require.NoError(t, err)
	assert.Contains(t, out, "1,200")
	assert.Contains(t, out, "Overview of your application statistics")
}

func TestConfigPathAndView(t *testing.T) {
	env := newCLIEnv(t)

	out, _, err := env.run("", "config", "path")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(env.home, "config.yaml"), strings.TrimSpace(out))

	out, _, err = env.run("", "config", "view", "--format", "json")
	require.NoError(t, err)
	var cfg struct {
		API struct {
			BaseURL string `json:"baseUrl"`
		} `json:"api"`
		Upload struct {
			CloudName string `json:"cloudName"`
		} `json:"upload"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &cfg))
	assert.Equal(t, env.srv.URL, cfg.API.BaseURL)
	assert.Equal(t, "dekm9hhq1", cfg.Upload.CloudName)
}

func TestVersion(t *testing.T) {
	env := newCLIEnv(t)

	out, _, err := env.run("", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "rezai-admin "))

	out, _, err = env.run("", "version", "--json")
	require.NoError(t, err)
	var info map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Contains(t, info, "version")
	assert.Contains(t, info, "goVersion")
}

func TestCommandTree(t *testing.T) {
	want := map[string][]string{
		"auth":      {"login", "logout", "status"},
		"users":     {"list", "delete"},
		"recipes":   {"list"},
		"questions": {"list", "create", "edit", "delete"},
		"answers":   {"list"},
		"config":    {"view", "edit", "path"},
		"doctor":    nil,
	}
	for parent, subs := range want {
		c, _, err := rootCmd.Find([]string{parent})
		require.NoError(t, err, parent)
		for _, sub := range subs {
			found, _, err := c.Find([]string{sub})
			require.NoError(t, err)
			assert.Equal(t, sub, found.Name(), "%s %s", parent, sub)
		}
	}
}

func TestDoctor(t *testing.T) {
	env := newCLIEnv(t)

	out, _, err := env.run("", "doctor", "--format", "json")
	require.NoError(t, err)
	var report struct {
		Overall string `json:"overall"`
		Checks  []struct {
			Name   string `json:"name"`
			Status string `json:"status"`
		} `json:"checks"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "degraded", report.Overall)
	require.Len(t, report.Checks, 5)
	assert.Equal(t, "config", report.Checks[0].Name)
	assert.Equal(t, "healthy", report.Checks[1].Status)
	assert.Equal(t, "session", report.Checks[2].Name)
	assert.Equal(t, "degraded", report.Checks[2].Status)

	env.login()
	out, _, err = env.run("", "doctor")
	require.NoError(t, err)
	assert.Contains(t, out, "Overall: healthy")

	dead := httptest.NewServer(http.NotFoundHandler())
	dead.Close()
	_, _, err = env.run("", "--api-url", dead.URL, "doctor")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "checks failed")
}
