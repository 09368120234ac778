package view

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
	"github.com/MrJamesThe3rd/invoicer/internal/settings"
)

// SettingsModel edits the local company profile printed on new invoices.
type SettingsModel struct {
	CommonModel
	store *settings.Store

	info    *invoice.CompanyInfo
	form    *huh.Form
	loading bool
	saved   bool
	err     error
}

func NewSettingsModel(store *settings.Store) SettingsModel {
	return SettingsModel{store: store, loading: true}
}

func (m SettingsModel) Title() string { return "Company Settings" }

func (m SettingsModel) ShortHelp() string { return "Tab: next field | Enter: save | Esc: back" }

func (m SettingsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m SettingsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadSettingsMsg:
		m.loading = false
		m.err = msg.err
		m.info = &msg.info
		m.form = m.buildForm()

		return m, m.form.Init()

	case saveSettingsMsg:
		m.err = msg.err
		m.saved = msg.err == nil
		m.form = m.buildForm()

		return m, m.form.Init()

	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m, Back
		}
	}

	if m.form == nil {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.saveCmd(*m.info)
}

func (m SettingsModel) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("name").
				Title("Company name").
				Placeholder(settings.DefaultName).
				Value(&m.info.Name),
			huh.NewInput().
				Key("address").
				Title("Address").
				Value(&m.info.Address),
			huh.NewInput().
				Key("phone").
				Title("Phone").
				Value(&m.info.Phone),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m SettingsModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading settings...")
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Company Settings"),
		faintStyle.Render("Printed on every invoice created from now on."),
		"",
		m.form.View(),
	)

	if m.err != nil {
		content = lipgloss.JoinVertical(lipgloss.Left, content, "", errorText(m.err))
	} else if m.saved {
		content = lipgloss.JoinVertical(lipgloss.Left, content, "", successStyle.Render("Saved."))
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

type loadSettingsMsg struct {
	info invoice.CompanyInfo
	err  error
}

type saveSettingsMsg struct {
	err error
}

// The terminal client keeps a single local profile, so the scope is empty.
func (m SettingsModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		info, err := m.store.Get(ctx, "")
		if err != nil {
			return loadSettingsMsg{info: settings.Default(), err: err}
		}

		return loadSettingsMsg{info: info}
	}
}

func (m SettingsModel) saveCmd(info invoice.CompanyInfo) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		return saveSettingsMsg{err: m.store.Save(ctx, "", info)}
	}
}
