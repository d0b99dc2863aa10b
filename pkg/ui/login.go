package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/vanderheijden86/stockpile/pkg/api"
	"github.com/vanderheijden86/stockpile/pkg/debug"
)

// LoginPage holds the sign-in form shown while no session is active.
type LoginPage struct {
	form       FormModel
	submitting bool
	lastUser   string // prefilled after sign-out or expiry
}

// showLogin drops cached data and shows the sign-in form, keeping the
// last known username.
func (m Model) showLogin(reason string) (Model, tea.Cmd) {
	m.queries.Forget()
	if m.session != nil {
		if u := m.session.User(); u != nil {
			m.login.lastUser = u.Email
		}
	}
	m.login.form = NewLoginForm(m.login.lastUser, m.theme)
	m.login.form.SetSize(m.width, m.height-1)
	m.login.submitting = false
	if reason != "" {
		m.login.form.SetError(reason)
	}
	m.showForm = false
	m.showLabelPicker = false
	m.page = pageLogin
	return m, nil
}

func (m Model) handleLoginUpdate(msg tea.Msg) (Model, tea.Cmd) {
	if m.login.submitting {
		return m, nil
	}
	var cmd tea.Cmd
	m.login.form, cmd = m.login.form.Update(msg)
	if m.login.form.IsCancelRequested() {
		return m, tea.Quit
	}
	if m.login.form.IsSaveRequested() {
		m.login.submitting = true
		return m, loginCmd(m.ctx, m.backend, m.session, m.login.form.LoginInput())
	}
	return m, cmd
}

func (m Model) handleLoginResult(msg loginResultMsg) (Model, tea.Cmd) {
	m.login.submitting = false
	if msg.err != nil {
		debug.Log("ui: login failed: %v", msg.err)
		m.login.form.SetError(api.Message(msg.err, api.InvalidLoginMessage))
		return m, nil
	}
	name := msg.user.Name
	if name == "" {
		name = msg.user.Email
	}
	m.setStatus("Signed in as "+name, false)
	return m.switchPage(m.defaultPage())
}

func (m Model) renderLogin() string {
	if m.login.submitting {
		return m.spinner.View() + " " + m.theme.MutedText.Render("Signing in…")
	}
	return m.login.form.View()
}
