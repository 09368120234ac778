package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/invoicer/internal/auth"
	"github.com/MrJamesThe3rd/invoicer/internal/client"
	"github.com/MrJamesThe3rd/invoicer/internal/render"
)

type ClientsModel struct {
	CommonModel
	user      *auth.User
	clientSvc *client.Service
	formatter render.Formatter

	table   table.Model
	clients []client.Client
	loading bool
	err     error
}

func NewClientsModel(user *auth.User, svc *client.Service, f render.Formatter) ClientsModel {
	return ClientsModel{
		user:      user,
		clientSvc: svc,
		formatter: f,
		table: newTable([]table.Column{
			{Title: "Name", Width: 28},
			{Title: "Phone", Width: 18},
			{Title: "Address", Width: 32},
			{Title: "Invoices", Width: 9},
			{Title: "Last", Width: 12},
		}, 15),
		loading: true,
	}
}

func (m ClientsModel) Title() string { return "Clients" }

func (m ClientsModel) ShortHelp() string { return "Esc: back | r: refresh" }

func (m ClientsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m ClientsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadClientsMsg:
		m.loading = false
		m.err = msg.err
		m.clients = msg.clients
		m.refreshTable()

		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(max(msg.Height-10, 5))
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m *ClientsModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.clients))
	for _, c := range m.clients {
		rows = append(rows, table.Row{
			c.Name,
			m.formatter.Phone(c.Phone),
			c.Address,
			fmt.Sprint(c.InvoiceCount),
			FormatDate(c.LastInvoiceAt),
		})
	}

	m.table.SetRows(rows)
}

func (m ClientsModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading clients...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorText(m.err) + "\n\n(r to retry, Esc to go back)")
	}

	if len(m.clients) == 0 {
		return lipgloss.NewStyle().Padding(2).Render("No clients yet.\n\n(Esc to go back)")
	}

	return lipgloss.NewStyle().Padding(1).Render(lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(fmt.Sprintf("Clients (%d)", len(m.clients))),
		"",
		boxed(m.table.View()),
	))
}

type loadClientsMsg struct {
	clients []client.Client
	err     error
}

func (m ClientsModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		clients, err := m.clientSvc.List(ctx, m.user)

		return loadClientsMsg{clients: clients, err: err}
	}
}
