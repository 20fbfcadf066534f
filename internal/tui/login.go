package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/felixgeelhaar/rezai-admin/internal/auth"
	"github.com/felixgeelhaar/rezai-admin/internal/errors"
)

// loginDoneMsg carries the outcome of a login attempt.
type loginDoneMsg struct {
	err error
}

// loginScreen holds the email and password inputs.
type loginScreen struct {
	email    textinput.Model
	password textinput.Model
	focus    int
	busy     bool
	err      string
}

func newLoginScreen() loginScreen {
	email := textinput.New()
	email.Placeholder = "admin@example.com"
	email.Prompt = "Email    "
	email.CharLimit = 254

	password := textinput.New()
	password.Placeholder = "password"
	password.Prompt = "Password "
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	l := loginScreen{email: email, password: password}
	l.setFocus(0)
	return l
}

func (l *loginScreen) setFocus(i int) {
	l.focus = i
	if i == 0 {
		l.email.Focus()
		l.password.Blur()
		return
	}
	l.email.Blur()
	l.password.Focus()
}

func (l *loginScreen) reset() {
	l.email.Reset()
	l.password.Reset()
	l.err = ""
	l.busy = false
	l.setFocus(0)
}

func (l *loginScreen) credentials() auth.Credentials {
	return auth.Credentials{Email: strings.TrimSpace(l.email.Value()), Password: l.password.Value()}
}

// submit starts a login with the entered credentials.
func (l *loginScreen) submit(ctx context.Context, gw *auth.Gateway) tea.Cmd {
	if l.busy {
		return nil
	}
	creds := l.credentials()
	if err := creds.Validate(); err != nil {
		l.err = errors.UserMessage(err)
		return nil
	}
	l.busy = true
	l.err = ""
	return func() tea.Msg {
		_, err := gw.Login(ctx, creds)
		return loginDoneMsg{err: err}
	}
}

func (l *loginScreen) update(ctx context.Context, msg tea.KeyMsg, gw *auth.Gateway) tea.Cmd {
	switch msg.String() {
	case "tab", "shift+tab", "up", "down":
		l.setFocus(1 - l.focus)
		return nil
	case "enter":
		if l.focus == 0 {
			l.setFocus(1)
			return nil
		}
		return l.submit(ctx, gw)
	}

	var cmd tea.Cmd
	if l.focus == 0 {
		l.email, cmd = l.email.Update(msg)
	} else {
		l.password, cmd = l.password.Update(msg)
	}
	return cmd
}

func (l *loginScreen) view(st Styles, spin string) string {
	var b strings.Builder
	b.WriteString(st.Title.Render("Rezai Admin"))
	b.WriteString("\n")
	b.WriteString(st.Subtitle.Render("Sign in to your admin account"))
	b.WriteString("\n\n")
	b.WriteString(l.email.View())
	b.WriteString("\n")
	b.WriteString(l.password.View())
	b.WriteString("\n\n")

	switch {
	case l.busy:
		b.WriteString(spin + " Signing in...")
	case l.err != "":
		b.WriteString(st.Error.Render(l.err))
	default:
		b.WriteString(st.Muted.Render("enter to sign in • tab to switch fields • ctrl+c to quit"))
	}
	return st.Border.Render(b.String())
}
