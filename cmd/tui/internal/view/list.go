package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/invoicer/internal/auth"
	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
	"github.com/MrJamesThe3rd/invoicer/internal/render"
)

type listState int

const (
	listStateBrowse listState = iota
	listStateSearch
	listStateConfirm
)

type ListModel struct {
	CommonModel
	user       *auth.User
	invoiceSvc *invoice.Service
	formatter  render.Formatter

	state  listState
	table  table.Model
	search textinput.Model
	form   *huh.Form
	invs   []*invoice.Invoice

	query invoice.Query

	// Confirmation bindings; pointers so they survive model copies.
	confirmed *bool
	clearAll  bool

	loading bool
	err     error
	status  string
}

func NewListModel(user *auth.User, svc *invoice.Service, f render.Formatter) ListModel {
	ti := textinput.New()
	ti.Placeholder = "customer or invoice number"
	ti.Width = 40

	return ListModel{
		user:       user,
		invoiceSvc: svc,
		formatter:  f,
		table: newTable([]table.Column{
			{Title: "Number", Width: 18},
			{Title: "Date", Width: 12},
			{Title: "Customer", Width: 28},
			{Title: "Items", Width: 6},
			{Title: "Total", Width: 16},
		}, 15),
		search:  ti,
		query:   invoice.Query{SortBy: invoice.SortByDate},
		loading: true,
	}
}

func (m ListModel) Title() string { return "Invoices" }

func (m ListModel) ShortHelp() string {
	switch m.state {
	case listStateSearch:
		return "Enter: apply | Esc: cancel"
	case listStateConfirm:
		return "Left/Right: choose | Enter: confirm | Esc: cancel"
	}

	return "Esc: back | Enter: open | /: search | s: sort | d: delete | D: clear all | r: refresh"
}

func (m ListModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m ListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadListMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.invs = msg.invs
		m.refreshTable()

		return m, nil

	case deleteMsg:
		m.state = listStateBrowse
		m.form = nil
		m.table.Focus()

		if msg.err != nil {
			m.status = fmt.Sprintf("Error deleting: %v", msg.err)
			return m, nil
		}

		m.status = fmt.Sprintf("Deleted %d invoice(s).", msg.count)

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(max(msg.Height-10, 5))
		return m, nil
	}

	switch m.state {
	case listStateSearch:
		return m.updateSearch(msg)
	case listStateConfirm:
		return m.updateConfirm(msg)
	}

	return m.updateBrowse(msg)
}

func (m ListModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "/":
			m.state = listStateSearch
			m.table.Blur()
			m.search.SetValue(m.query.Search)

			return m, m.search.Focus()
		case "s":
			if m.query.SortBy == invoice.SortByAmount {
				m.query.SortBy = invoice.SortByDate
			} else {
				m.query.SortBy = invoice.SortByAmount
			}

			m.invs = invoice.Sort(m.invs, m.query.SortBy)
			m.refreshTable()

			return m, nil
		case "enter":
			if inv := m.selected(); inv != nil {
				return m, OpenInvoice(inv.InvoiceNumber)
			}

			return m, nil
		case "d":
			if inv := m.selected(); inv != nil {
				return m.enterConfirm(false, fmt.Sprintf("Delete invoice %s?", inv.InvoiceNumber))
			}

			return m, nil
		case "D":
			if len(m.invs) > 0 {
				return m.enterConfirm(true, "Delete ALL invoices? This cannot be undone.")
			}

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m ListModel) updateSearch(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.Type {
		case tea.KeyEsc:
			m.state = listStateBrowse
			m.search.Blur()
			m.table.Focus()

			return m, nil
		case tea.KeyEnter:
			m.state = listStateBrowse
			m.query.Search = m.search.Value()
			m.search.Blur()
			m.table.Focus()
			m.loading = true

			return m, m.loadCmd()
		}
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)

	return m, cmd
}

func (m ListModel) enterConfirm(all bool, title string) (tea.Model, tea.Cmd) {
	confirmed := false
	m.confirmed = &confirmed
	m.clearAll = all

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Delete").
				Negative("Cancel").
				Value(m.confirmed),
		),
	).WithWidth(50).WithShowHelp(false)

	m.state = listStateConfirm
	m.table.Blur()

	return m, m.form.Init()
}

func (m ListModel) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = listStateBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	if !*m.confirmed {
		m.state = listStateBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	if m.clearAll {
		return m, m.deleteAllCmd()
	}

	return m, m.deleteCmd(m.selected())
}

func (m ListModel) selected() *invoice.Invoice {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.invs) {
		return nil
	}

	return m.invs[idx]
}

func (m *ListModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.invs))
	for _, inv := range m.invs {
		rows = append(rows, table.Row{
			inv.InvoiceNumber,
			FormatDate(inv.CreatedAt),
			inv.CustomerName,
			fmt.Sprint(len(inv.Items)),
			m.formatter.Money(inv.TotalAmount),
		})
	}

	m.table.SetRows(rows)
}

func (m ListModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading invoices...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorText(m.err) + "\n\n(r to retry, Esc to go back)")
	}

	search := m.query.Search
	if search == "" {
		search = "none"
	}

	header := fmt.Sprintf(
		"[/] Search: %s | [s] Sort: %s | %d invoice(s)",
		activeStyle(search),
		activeStyle(string(m.query.SortBy)),
		len(m.invs),
	)

	if m.state == listStateSearch {
		header = "Search: " + m.search.View()
	}

	body := boxed(m.table.View())
	if len(m.invs) == 0 {
		body = faintStyle.Render("No invoices yet. Create one from the menu.")
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		body,
	)

	if m.state == listStateConfirm && m.form != nil {
		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panelStyle.Width(54).Render(m.form.View()))
	}

	if m.status != "" {
		content = faintStyle.Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

// Messages

type loadListMsg struct {
	invs []*invoice.Invoice
	err  error
}

func (m ListModel) loadCmd() tea.Cmd {
	q := m.query

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		invs, err := m.invoiceSvc.Query(ctx, m.user, q)

		return loadListMsg{invs: invs, err: err}
	}
}

type deleteMsg struct {
	count int64
	err   error
}

func (m ListModel) deleteCmd(inv *invoice.Invoice) tea.Cmd {
	if inv == nil {
		return nil
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if err := m.invoiceSvc.Delete(ctx, m.user, inv.ID); err != nil {
			return deleteMsg{err: err}
		}

		return deleteMsg{count: 1}
	}
}

func (m ListModel) deleteAllCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		n, err := m.invoiceSvc.DeleteAll(ctx, m.user)

		return deleteMsg{count: n, err: err}
	}
}
