package view

import (
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/invoicer/internal/auth"
	"github.com/MrJamesThe3rd/invoicer/internal/kv"
)

// sessionKey is where the signed-in token is kept between runs.
const sessionKey = "session"

const (
	modeSignIn = "signin"
	modeSignUp = "signup"
)

// SignedInMsg carries the session of a successful sign-in or restore.
type SignedInMsg struct {
	Session *auth.Session
}

// SignedOutMsg is sent once the session has been revoked and forgotten.
type SignedOutMsg struct {
	Err error
}

type storedSession struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type AuthModel struct {
	CommonModel
	authService *auth.Service
	local       kv.Store

	form  *huh.Form
	creds *credentials

	busy bool
	err  error
}

// credentials holds the form bindings; a pointer so they survive model copies.
type credentials struct {
	mode    string
	email   string
	pass    string
	confirm string
}

func NewAuthModel(svc *auth.Service, local kv.Store) AuthModel {
	m := AuthModel{authService: svc, local: local, creds: &credentials{mode: modeSignIn}}
	m.form = m.buildForm()

	return m
}

func (m AuthModel) Title() string { return "Sign In" }

func (m AuthModel) ShortHelp() string { return "Tab: next field | Enter: submit | Ctrl+C: quit" }

func (m AuthModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m AuthModel) buildForm() *huh.Form {
	c := m.creds

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("mode").
				Title("Account").
				Options(
					huh.NewOption("Sign in", modeSignIn),
					huh.NewOption("Create account", modeSignUp),
				).
				Value(&c.mode),
		),
		huh.NewGroup(
			huh.NewInput().
				Key("email").
				Title("Email").
				Value(&c.email),
			huh.NewInput().
				Key("password").
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&c.pass),
		),
		huh.NewGroup(
			huh.NewInput().
				Key("confirm").
				Title("Confirm password").
				EchoMode(huh.EchoModePassword).
				Value(&c.confirm),
		).WithHideFunc(func() bool { return c.mode != modeSignUp }),
	).WithWidth(50).WithShowHelp(false)
}

func (m AuthModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if res, ok := msg.(authResultMsg); ok {
		m.busy = false
		if res.err != nil {
			m.err = res.err
			m.creds.pass = ""
			m.creds.confirm = ""
			m.form = m.buildForm()

			return m, m.form.Init()
		}

		return m, func() tea.Msg { return SignedInMsg{Session: res.session} }
	}

	if m.busy {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.busy = true
	m.err = nil

	return m, m.submitCmd(*m.creds)
}

func (m AuthModel) View() string {
	header := titleStyle.Render("Invoicer")

	body := m.form.View()
	if m.busy {
		body = "Signing in..."
	}

	content := lipgloss.JoinVertical(lipgloss.Left, header, "", body)
	if m.err != nil {
		content = lipgloss.JoinVertical(lipgloss.Left, content, "", errorText(m.err))
	}

	return lipgloss.NewStyle().Padding(2).Render(content)
}

type authResultMsg struct {
	session *auth.Session
	err     error
}

func (m AuthModel) submitCmd(c credentials) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if c.mode == modeSignUp {
			if _, err := m.authService.SignUp(ctx, c.email, c.pass, c.confirm); err != nil {
				return authResultMsg{err: err}
			}
		}

		session, err := m.authService.SignIn(ctx, c.email, c.pass)
		if err != nil {
			return authResultMsg{err: err}
		}

		stored := storedSession{Token: session.Token, ExpiresAt: session.ExpiresAt}
		if err := m.local.Set(ctx, sessionKey, stored, time.Until(session.ExpiresAt)); err != nil {
			return authResultMsg{err: fmt.Errorf("saving session: %w", err)}
		}

		return authResultMsg{session: session}
	}
}

// RestoreSession signs in with the token saved by a previous run, if it is
// still valid. It yields nil when there is nothing to restore.
func RestoreSession(svc *auth.Service, local kv.Store) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		var stored storedSession

		found, err := local.Get(ctx, sessionKey, &stored)
		if err != nil || !found {
			return nil
		}

		u, err := svc.Authenticate(ctx, stored.Token)
		if err != nil {
			_ = local.Delete(ctx, sessionKey)
			return nil
		}

		return SignedInMsg{Session: &auth.Session{Token: stored.Token, ExpiresAt: stored.ExpiresAt, User: u}}
	}
}

// SignOut revokes the token and forgets the saved session.
func SignOut(svc *auth.Service, local kv.Store, token string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		err := svc.SignOut(ctx, token)
		if errors.Is(err, auth.ErrInvalidToken) {
			err = nil
		}

		if derr := local.Delete(ctx, sessionKey); err == nil {
			err = derr
		}

		return SignedOutMsg{Err: err}
	}
}
