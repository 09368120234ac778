package view

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/invoicer/internal/auth"
	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
	"github.com/MrJamesThe3rd/invoicer/internal/render"
)

// DashboardModel shows revenue totals and the most recent invoices.
type DashboardModel struct {
	CommonModel
	user       *auth.User
	invoiceSvc *invoice.Service
	formatter  render.Formatter

	summary invoice.Summary
	cursor  int
	loading bool
	err     error
}

func NewDashboardModel(user *auth.User, svc *invoice.Service, f render.Formatter) DashboardModel {
	return DashboardModel{user: user, invoiceSvc: svc, formatter: f, loading: true}
}

func (m DashboardModel) Title() string { return "Dashboard" }

func (m DashboardModel) ShortHelp() string { return "Esc: back | Up/Down: select | Enter: open | r: refresh" }

func (m DashboardModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadSummaryMsg:
		m.loading = false
		m.err = msg.err
		m.summary = msg.summary
		m.cursor = 0

		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.summary.Recent)-1 {
				m.cursor++
			}
		case "enter":
			if m.cursor < len(m.summary.Recent) {
				return m, OpenInvoice(m.summary.Recent[m.cursor].InvoiceNumber)
			}
		}
	}

	return m, nil
}

func (m DashboardModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading dashboard...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorText(m.err) + "\n\n(r to retry, Esc to go back)")
	}

	f := m.formatter

	card := func(label, value string) string {
		return panelStyle.Width(22).Render(faintStyle.Render(label) + "\n" + activeStyle(value))
	}

	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		card("Invoices", fmt.Sprint(m.summary.Count)),
		card("Revenue", f.Money(m.summary.Revenue)),
		card("Average", f.Money(m.summary.Average)),
	)

	var recent strings.Builder
	for i, inv := range m.summary.Recent {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}

		fmt.Fprintf(&recent, "%s%-18s %-12s %-24s %14s\n",
			cursor, inv.InvoiceNumber, FormatDate(inv.CreatedAt), inv.CustomerName, f.Money(inv.TotalAmount))
	}

	if len(m.summary.Recent) == 0 {
		recent.WriteString(faintStyle.Render("No invoices yet."))
	}

	return lipgloss.NewStyle().Padding(1).Render(lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Dashboard"),
		"",
		cards,
		"",
		"Recent invoices:",
		recent.String(),
	))
}

type loadSummaryMsg struct {
	summary invoice.Summary
	err     error
}

func (m DashboardModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		invs, err := m.invoiceSvc.List(ctx, m.user)
		if err != nil {
			return loadSummaryMsg{err: err}
		}

		return loadSummaryMsg{summary: invoice.Summarize(invs)}
	}
}
