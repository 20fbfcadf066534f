// Package tui is the interactive admin console built on Bubble Tea.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/felixgeelhaar/rezai-admin/internal/auth"
	"github.com/felixgeelhaar/rezai-admin/internal/cache"
	"github.com/felixgeelhaar/rezai-admin/internal/domain"
	"github.com/felixgeelhaar/rezai-admin/internal/errors"
	"github.com/felixgeelhaar/rezai-admin/internal/form"
	"github.com/felixgeelhaar/rezai-admin/internal/log"
	"github.com/felixgeelhaar/rezai-admin/internal/notify"
	"github.com/felixgeelhaar/rezai-admin/internal/resource"
	"github.com/felixgeelhaar/rezai-admin/internal/views"
)

// ToastDuration is how long a notification stays on screen.
const ToastDuration = 4 * time.Second

type mode int

const (
	modeBrowse mode = iota
	modeSearch
	modeFilter
	modeConfirm
	modeForm
)

// Deps are the collaborators the console drives. Gateway, Service and the
// question form must report to the same Toasts recorder.
type Deps struct {
	Gateway  *auth.Gateway
	Service  *resource.Service
	Uploader form.BatchUploader
	Toasts   *notify.Recorder
	Logger   *log.Logger
}

// Messages produced by console commands.
type (
	mutationDoneMsg struct {
		route auth.Route
		err   error
	}
	questionSavedMsg struct {
		err error
	}
	logoutDoneMsg struct {
		err error
	}
	toastExpiredMsg struct {
		seq int
	}
)

// Model is the console state.
type Model struct {
	ctx  context.Context
	deps Deps

	route   auth.Route
	mode    mode
	login   loginScreen
	dash    dashboardScreen
	screens map[auth.Route]screen

	searchInput  textinput.Model
	filterCursor int

	form      *form.QuestionForm
	draft     *QuestionDraft
	huh       *huh.Form
	saving    bool
	uploading bool

	spinner  spinner.Model
	help     help.Model
	toast    *notify.Toast
	toastSeq int
	user     *domain.User

	width    int
	height   int
	quitting bool
	styles   Styles
}

// New creates the console. The initial route is derived from the session.
func New(ctx context.Context, deps Deps) *Model {
	if deps.Toasts == nil {
		deps.Toasts = &notify.Recorder{}
	}
	if deps.Logger == nil {
		deps.Logger = log.Discard()
	}

	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "Search..."

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := &Model{
		ctx:         ctx,
		deps:        deps,
		login:       newLoginScreen(),
		searchInput: search,
		form:        form.NewQuestionForm(deps.Toasts),
		spinner:     sp,
		help:        help.New(),
		styles:      DefaultStyles(),
	}
	m.screens = m.newScreens()
	m.route = deps.Gateway.Guard().Resolve(auth.RouteDashboard)
	if u, ok := deps.Gateway.CurrentUser(ctx); ok {
		m.user = u
	}
	return m
}

func (m *Model) newScreens() map[auth.Route]screen {
	svc := m.deps.Service

	users := newResourceView(auth.RouteUsers, views.NewUsersTable(), views.UserColumns, views.UserRow,
		func(u domain.User) string { return u.ID },
		func(ctx context.Context, _ string) ([]domain.User, error) { return svc.Users(ctx) })
	users.label = func(v string) string { return domain.Provider(v).Label() }
	users.cached = cachedRows[domain.User](svc.Cache(), resource.Users)

	recipes := newResourceView(auth.RouteRecipes, views.NewRecipesTable(), views.RecipeColumns, views.RecipeRow,
		func(r domain.Recipe) string { return r.ID },
		func(ctx context.Context, _ string) ([]domain.Recipe, error) { return svc.Recipes(ctx) })

	questions := newResourceView(auth.RouteQuestions, views.NewQuestionsTable(), views.QuestionColumns, views.QuestionRow,
		func(q domain.Question) string { return q.ID },
		func(ctx context.Context, _ string) ([]domain.Question, error) { return svc.Questions(ctx) })
	questions.label = func(v string) string { return domain.QuestionType(v).Label() }
	questions.cached = cachedRows[domain.Question](svc.Cache(), resource.Questions)

	var answers *resourceView[domain.Answer]
	answersTable := views.NewAnswersTable(func(questionID string) {
		answers.param = questionID
		answers.stale = true
	})
	answers = newResourceView(auth.RouteAnswers, answersTable, views.AnswerColumns, views.AnswerRow,
		func(a domain.Answer) string { return a.ID },
		svc.Answers)
	answers.options = func() []filterOption {
		qs, _ := cache.Get[[]domain.Question](svc.Cache(), cache.Key{Resource: resource.Questions})
		out := make([]filterOption, 0, len(qs))
		for _, q := range qs {
			out = append(out, filterOption{Value: q.ID, Label: views.Truncate(q.Text, 48)})
		}
		return out
	}

	return map[auth.Route]screen{
		auth.RouteUsers:     users,
		auth.RouteRecipes:   recipes,
		auth.RouteQuestions: questions,
		auth.RouteAnswers:   answers,
	}
}

// Route is the view currently rendered.
func (m *Model) Route() auth.Route { return m.route }

// Toast is the notification currently shown, if any.
func (m *Model) Toast() (notify.Toast, bool) {
	if m.toast == nil {
		return notify.Toast{}, false
	}
	return *m.toast, true
}

// Init starts the spinner and loads the initial view.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.enter())
}

// navigate re-derives the guard state and moves to the route it allows.
func (m *Model) navigate(target auth.Route) tea.Cmd {
	guard := m.deps.Gateway.Guard()
	guard.Refresh(m.ctx)
	m.route = guard.Resolve(target)
	m.mode = modeBrowse
	m.searchInput.Blur()
	m.filterCursor = 0
	return m.enter()
}

func (m *Model) enter() tea.Cmd {
	if m.route == auth.RouteLogin {
		m.user = nil
		m.login.setFocus(0)
		return textinput.Blink
	}
	if u, ok := m.deps.Gateway.CurrentUser(m.ctx); ok {
		m.user = u
	}
	return m.load(m.route)
}

// load fetches the data behind route. Answers also load the question list
// that feeds its filter menu.
func (m *Model) load(route auth.Route) tea.Cmd {
	if route == auth.RouteDashboard {
		return m.dash.fetch(m.ctx, m.deps.Service)
	}
	s, ok := m.screens[route]
	if !ok {
		return nil
	}
	cmd := s.fetch(m.ctx)
	if route == auth.RouteAnswers {
		svc, ctx := m.deps.Service, m.ctx
		cmd = tea.Batch(cmd, func() tea.Msg {
			qs, err := svc.Questions(ctx)
			return loadedMsg{route: auth.RouteQuestions, data: qs, err: err}
		})
	}
	return cmd
}

func (m *Model) reload(route auth.Route) tea.Cmd {
	switch route {
	case auth.RouteDashboard:
		m.deps.Service.Refetch(resource.Dashboard)
	case auth.RouteUsers:
		m.deps.Service.Refetch(resource.Users)
	case auth.RouteRecipes:
		m.deps.Service.Refetch(resource.Recipes)
	case auth.RouteQuestions:
		m.deps.Service.Refetch(resource.Questions)
	case auth.RouteAnswers:
		m.deps.Service.Refetch(resource.Answers)
	}
	return m.load(route)
}

// Update handles messages and updates the model state (required by Bubble Tea)
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := m.update(msg)
	if t := m.collectToasts(); t != nil {
		cmd = tea.Batch(cmd, t)
	}
	return m, cmd
}

func (m *Model) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m.forwardToForm(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return cmd

	case toastExpiredMsg:
		if msg.seq == m.toastSeq {
			m.toast = nil
		}
		return nil

	case loginDoneMsg:
		m.login.busy = false
		if msg.err != nil {
			m.login.err = errors.UserMessage(msg.err)
			return nil
		}
		m.login.reset()
		m.screens = m.newScreens()
		return m.navigate(auth.RouteDashboard)

	case logoutDoneMsg:
		if msg.err != nil {
			m.deps.Logger.WithError(msg.err).Warn("logout failed")
		}
		m.screens = m.newScreens()
		m.dash = dashboardScreen{}
		return m.navigate(auth.RouteLogin)

	case loadedMsg:
		if m.deps.Gateway.Guard().State() != auth.Authenticated {
			return nil
		}
		if msg.route == auth.RouteDashboard {
			m.dash.loaded(msg.data, msg.err)
			return nil
		}
		if s, ok := m.screens[msg.route]; ok {
			s.loaded(msg.data, msg.err)
		}
		return nil

	case mutationDoneMsg:
		if msg.err != nil {
			return nil
		}
		m.mode = modeBrowse
		if s, ok := m.screens[msg.route]; ok {
			s.showCached()
		}
		return m.load(msg.route)

	case questionSavedMsg:
		m.saving = false
		m.uploading = false
		if msg.err != nil && m.form.IsOpen() {
			return m.openForm()
		}
		m.closeForm()
		if msg.err == nil {
			return m.load(auth.RouteQuestions)
		}
		return nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.forwardToForm(msg)
}

func (m *Model) forwardToForm(msg tea.Msg) tea.Cmd {
	if m.mode != modeForm || m.huh == nil || m.saving {
		return nil
	}
	model, cmd := m.huh.Update(msg)
	if f, ok := model.(*huh.Form); ok {
		m.huh = f
	}

	switch m.huh.State {
	case huh.StateCompleted:
		return m.saveQuestion()
	case huh.StateAborted:
		m.form.Cancel()
		m.closeForm()
		return nil
	}
	return cmd
}

func (m *Model) collectToasts() tea.Cmd {
	toasts := m.deps.Toasts.Drain()
	if len(toasts) == 0 {
		return nil
	}
	last := toasts[len(toasts)-1]
	m.toast = &last
	m.toastSeq++
	seq := m.toastSeq
	return tea.Tick(ToastDuration, func(time.Time) tea.Msg { return toastExpiredMsg{seq: seq} })
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "ctrl+c" {
		m.quitting = true
		return tea.Quit
	}

	switch m.mode {
	case modeSearch:
		return m.handleSearchKey(msg)
	case modeFilter:
		return m.handleFilterKey(msg)
	case modeConfirm:
		return m.handleConfirmKey(msg)
	case modeForm:
		if msg.String() == "esc" && !m.saving {
			m.form.Cancel()
			m.closeForm()
			return nil
		}
		return m.forwardToForm(msg)
	}

	if m.route == auth.RouteLogin {
		return m.login.update(m.ctx, msg, m.deps.Gateway)
	}

	s := m.screens[m.route]
	switch {
	case key.Matches(msg, keys.Quit):
		m.quitting = true
		return tea.Quit
	case key.Matches(msg, keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return nil
	case key.Matches(msg, keys.Next):
		return m.navigate(m.step(1))
	case key.Matches(msg, keys.Prev):
		return m.navigate(m.step(-1))
	case key.Matches(msg, keys.Logout):
		gw, ctx := m.deps.Gateway, m.ctx
		return func() tea.Msg { return logoutDoneMsg{err: gw.Logout(ctx)} }
	case key.Matches(msg, keys.Refresh):
		return m.reload(m.route)
	}

	if r, ok := routeForDigit(msg.String()); ok {
		return m.navigate(r)
	}
	if s == nil {
		return nil
	}

	switch {
	case key.Matches(msg, keys.Search):
		m.mode = modeSearch
		m.searchInput.SetValue(s.search())
		m.searchInput.CursorEnd()
		return m.searchInput.Focus()
	case key.Matches(msg, keys.Filter):
		m.mode = modeFilter
		m.filterCursor = 0
		return nil
	case key.Matches(msg, keys.Bookmark) && m.route == auth.RouteRecipes:
		s.setToggle(views.ToggleBookmarked, !s.toggle(views.ToggleBookmarked))
		return nil
	case key.Matches(msg, keys.PrevPage):
		s.prevPage()
		return nil
	case key.Matches(msg, keys.NextPage):
		s.nextPage()
		return nil
	case key.Matches(msg, keys.Delete):
		return m.selectDelete(s)
	case key.Matches(msg, keys.New) && m.route == auth.RouteQuestions:
		m.form.OpenCreate()
		return m.openForm()
	case key.Matches(msg, keys.Edit) && m.route == auth.RouteQuestions:
		if qv, ok := s.(*resourceView[domain.Question]); ok {
			if q, ok := qv.current(); ok {
				m.form.OpenEdit(q)
				return m.openForm()
			}
		}
		return nil
	}

	return s.updateGrid(msg)
}

func (m *Model) step(delta int) auth.Route {
	routes := auth.ProtectedRoutes
	for i, r := range routes {
		if r == m.route {
			return routes[(i+delta+len(routes))%len(routes)]
		}
	}
	return routes[0]
}

func routeForDigit(s string) (auth.Route, bool) {
	if len(s) != 1 || s[0] < '1' || s[0] > '9' {
		return "", false
	}
	i := int(s[0] - '1')
	if i >= len(auth.ProtectedRoutes) {
		return "", false
	}
	return auth.ProtectedRoutes[i], true
}

func (m *Model) handleSearchKey(msg tea.KeyMsg) tea.Cmd {
	s := m.screens[m.route]
	switch msg.String() {
	case "esc":
		m.searchInput.SetValue("")
		s.setSearch("")
		m.mode = modeBrowse
		m.searchInput.Blur()
		return nil
	case "enter":
		m.mode = modeBrowse
		m.searchInput.Blur()
		return nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	s.setSearch(m.searchInput.Value())
	return cmd
}

func (m *Model) handleFilterKey(msg tea.KeyMsg) tea.Cmd {
	s := m.screens[m.route]
	opts := s.filterOptions()

	refetch := false
	switch msg.String() {
	case "esc", "f", "q":
		m.mode = modeBrowse
	case "up", "k":
		if m.filterCursor > 0 {
			m.filterCursor--
		}
	case "down", "j":
		if m.filterCursor < len(opts)-1 {
			m.filterCursor++
		}
	case " ", "enter", "x":
		if m.filterCursor < len(opts) {
			refetch = s.toggleFilter(opts[m.filterCursor].Value)
		}
	case "c":
		refetch = s.clearFilter()
	}

	if refetch {
		return s.fetch(m.ctx)
	}
	return nil
}

func (m *Model) selectDelete(s screen) tea.Cmd {
	var kind resource.Kind
	switch m.route {
	case auth.RouteUsers:
		kind = resource.KindUser
	case auth.RouteQuestions:
		kind = resource.KindQuestion
	default:
		return nil
	}
	id, ok := s.selectedID()
	if !ok {
		return nil
	}
	m.deps.Service.SelectDelete(kind, id)
	m.mode = modeConfirm
	return nil
}

func (m *Model) handleConfirmKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "y", "Y", "enter":
		svc, ctx, route := m.deps.Service, m.ctx, m.route
		return func() tea.Msg {
			return mutationDoneMsg{route: route, err: svc.ConfirmDelete(ctx)}
		}
	case "n", "N", "esc":
		m.deps.Service.CancelDelete()
		m.mode = modeBrowse
	}
	return nil
}

func (m *Model) openForm() tea.Cmd {
	m.draft = NewQuestionDraft(m.form.Fields())
	m.huh = m.draft.Form(m.form.Title(), m.form.Errors()).WithShowHelp(true)
	m.mode = modeForm
	return m.huh.Init()
}

func (m *Model) closeForm() {
	m.huh = nil
	m.draft = nil
	m.mode = modeBrowse
}

// saveQuestion uploads pending icons and submits the form. The form stays
// open when validation or the save fails.
func (m *Model) saveQuestion() tea.Cmd {
	if m.draft == nil {
		return nil
	}
	m.saving = true
	f, up, svc, ctx := m.form, m.deps.Uploader, m.deps.Service, m.ctx
	paths := m.draft.Apply(f)
	m.uploading = up != nil && len(paths) > 0
	return func() tea.Msg {
		if up != nil {
			form.UploadIcons(ctx, f, up, paths)
		}
		return questionSavedMsg{err: f.Submit(ctx, svc)}
	}
}

// View renders the console (required by Bubble Tea)
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	spin := m.spinner.View()
	if m.route == auth.RouteLogin {
		return lipgloss.JoinVertical(lipgloss.Left, m.login.view(m.styles, spin), m.renderToast())
	}

	var body string
	switch {
	case m.mode == modeForm && m.huh != nil:
		body = m.renderForm(spin)
	case m.route == auth.RouteDashboard:
		body = m.dash.view(m.styles, spin, m.width)
	default:
		if s, ok := m.screens[m.route]; ok {
			body = s.view(m.styles, spin)
		}
	}

	switch m.mode {
	case modeSearch:
		body += "\n" + m.searchInput.View()
	case modeFilter:
		body += "\n" + m.renderFilterMenu()
	case modeConfirm:
		body += "\n" + m.renderConfirm()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		body,
		m.renderToast(),
		m.help.View(keys),
	)
}

func (m *Model) renderHeader() string {
	tabs := make([]string, 0, len(auth.ProtectedRoutes))
	for i, r := range auth.ProtectedRoutes {
		label := fmt.Sprintf("%d %s", i+1, r.Title())
		if r == m.route {
			tabs = append(tabs, m.styles.ActiveTab.Render(label))
		} else {
			tabs = append(tabs, m.styles.Tab.Render(label))
		}
	}
	header := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
	if m.user != nil {
		who := m.user.Name
		if who == "" {
			who = m.user.Email
		}
		header += "  " + m.styles.Muted.Render(who)
	}
	return header + "\n"
}

func (m *Model) renderFilterMenu() string {
	s := m.screens[m.route]
	opts := s.filterOptions()

	var b strings.Builder
	b.WriteString(m.styles.Subtitle.Render("Filter (space to toggle, c to clear, esc to close)"))
	b.WriteString("\n")
	if len(opts) == 0 {
		b.WriteString(m.styles.Muted.Render("  nothing to filter by"))
	}
	for i, o := range opts {
		cursor := "  "
		if i == m.filterCursor {
			cursor = "> "
		}
		check := "[ ]"
		if s.isSelected(o.Value) {
			check = "[x]"
		}
		b.WriteString(fmt.Sprintf("%s%s %s\n", cursor, check, o.Label))
	}
	return b.String()
}

func (m *Model) renderConfirm() string {
	p, ok := m.deps.Service.Pending()
	if !ok {
		return ""
	}
	return m.styles.Dialog.Render(p.Prompt() + "\n\n" + m.styles.Muted.Render("y delete • n cancel"))
}

func (m *Model) renderForm(spin string) string {
	var b strings.Builder
	b.WriteString(m.huh.View())
	if m.saving {
		b.WriteString("\n")
		if m.uploading {
			b.WriteString(spin + " Uploading icons...")
		} else {
			b.WriteString(spin + " Saving...")
		}
	}
	return b.String()
}

func (m *Model) renderToast() string {
	if m.toast == nil {
		return ""
	}
	return notify.Render(*m.toast)
}

// Run starts the console and blocks until the user quits.
func Run(ctx context.Context, deps Deps) error {
	p := tea.NewProgram(New(ctx, deps), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run console: %w", err)
	}
	return nil
}
