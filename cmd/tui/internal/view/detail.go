package view

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/invoicer/internal/auth"
	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
	"github.com/MrJamesThe3rd/invoicer/internal/render"
)

// editFields holds the detail edit form bindings.
type editFields struct {
	name    string
	phone   string
	address string
	notes   string
}

// DetailModel shows one invoice and writes its printable forms to disk.
type DetailModel struct {
	CommonModel
	user       *auth.User
	invoiceSvc *invoice.Service
	formatter  render.Formatter

	number  string
	inv     *invoice.Invoice
	form    *huh.Form
	fields  *editFields
	outDir  string
	loading bool
	err     error
	status  string
}

func NewDetailModel(user *auth.User, svc *invoice.Service, f render.Formatter, number string) DetailModel {
	dir, _ := os.Getwd()

	return DetailModel{
		user:       user,
		invoiceSvc: svc,
		formatter:  f,
		number:     number,
		outDir:     dir,
		loading:    true,
	}
}

func (m DetailModel) Title() string { return "Invoice " + m.number }

func (m DetailModel) ShortHelp() string {
	if m.form != nil {
		return "Tab: next field | Enter: save | Esc: cancel"
	}

	return "Esc: back | p: save PDF | h: save HTML | e: edit"
}

func (m DetailModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m DetailModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadDetailMsg:
		m.loading = false
		m.form = nil
		m.err = msg.err
		if msg.inv != nil {
			m.inv = msg.inv
		}

		return m, nil

	case writtenMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}

		m.status = "Saved " + msg.path

		return m, nil
	}

	if m.form != nil {
		return m.updateEdit(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || m.inv == nil {
		if ok && keyMsg.Type == tea.KeyEsc {
			return m, Back
		}

		return m, nil
	}

	switch keyMsg.String() {
	case "esc":
		return m, Back
	case "p":
		return m, m.writeCmd(render.PDFName(m.inv), func(f *os.File) error {
			return render.PDF(f, m.inv, m.formatter)
		})
	case "h":
		return m, m.writeCmd(m.inv.InvoiceNumber+".html", func(f *os.File) error {
			return render.HTML(f, m.inv, m.formatter)
		})
	case "e":
		return m.enterEdit()
	}

	return m, nil
}

func (m DetailModel) enterEdit() (tea.Model, tea.Cmd) {
	m.fields = &editFields{
		name:    m.inv.CustomerName,
		phone:   m.inv.CustomerPhone,
		address: m.inv.CustomerAddress,
		notes:   m.inv.Notes,
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("customer_name").
				Title("Customer name").
				Value(&m.fields.name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("customer name required")
					}

					return nil
				}),
			huh.NewInput().
				Key("customer_phone").
				Title("Phone").
				Value(&m.fields.phone),
			huh.NewInput().
				Key("customer_address").
				Title("Address").
				Value(&m.fields.address),
			huh.NewText().
				Key("notes").
				Title("Notes").
				Lines(3).
				Value(&m.fields.notes),
		),
	).WithWidth(60).WithShowHelp(false)

	return m, m.form.Init()
}

func (m DetailModel) updateEdit(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.form = nil
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.saveCmd(*m.fields)
}

func (m DetailModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading invoice...")
	}

	if m.inv == nil {
		msg := "Invoice not found."
		if m.err != nil {
			msg = errorText(m.err)
		}

		return lipgloss.NewStyle().Padding(2).Render(msg + "\n\n(Esc to go back)")
	}

	inv := m.inv
	f := m.formatter

	company := settingsName(inv.CompanyInfo)

	var items strings.Builder
	fmt.Fprintf(&items, "%-32s %5s %14s %14s\n", "Product", "Qty", "Unit Price", "Total")

	for _, it := range inv.Items {
		fmt.Fprintf(&items, "%-32s %5d %14s %14s\n", it.ProductName, it.Quantity, f.Money(it.UnitPrice), f.Money(it.Total))
	}

	totals := lipgloss.JoinVertical(lipgloss.Right,
		fmt.Sprintf("Subtotal: %s", f.Money(inv.Subtotal)),
		fmt.Sprintf("Tax (%s): %s", f.Percent(inv.Tax), f.Money(inv.TaxAmount)),
		activeStyle(fmt.Sprintf("Total: %s", f.Money(inv.TotalAmount))),
	)

	parts := []string{
		titleStyle.Render(company),
		"",
		fmt.Sprintf("Invoice %s  |  %s", inv.InvoiceNumber, f.Date(inv.CreatedAt)),
		"",
		"Bill to:",
		"  " + inv.CustomerName,
	}

	if inv.CustomerPhone != "" {
		parts = append(parts, "  "+f.Phone(inv.CustomerPhone))
	}

	if inv.CustomerAddress != "" {
		parts = append(parts, "  "+inv.CustomerAddress)
	}

	parts = append(parts, "", boxed(strings.TrimRight(items.String(), "\n")), totals)

	if inv.Notes != "" {
		parts = append(parts, "", "Notes:", faintStyle.Render(inv.Notes))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, parts...)

	if m.form != nil {
		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panelStyle.Width(64).Render(m.form.View()))
	}

	if m.err != nil {
		content = errorText(m.err) + "\n" + content
	} else if m.status != "" {
		content = successStyle.Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func settingsName(c *invoice.CompanyInfo) string {
	if c == nil || strings.TrimSpace(c.Name) == "" {
		return "Invoice"
	}

	return c.Name
}

// Messages

type loadDetailMsg struct {
	inv *invoice.Invoice
	err error
}

func (m DetailModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		inv, err := m.invoiceSvc.GetByNumber(ctx, m.user, m.number)

		return loadDetailMsg{inv: inv, err: err}
	}
}

func (m DetailModel) saveCmd(fields editFields) tea.Cmd {
	id := m.inv.ID

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		inv, err := m.invoiceSvc.Update(ctx, m.user, id, invoice.UpdateParams{
			CustomerName:    &fields.name,
			CustomerPhone:   &fields.phone,
			CustomerAddress: &fields.address,
			Notes:           &fields.notes,
		})

		return loadDetailMsg{inv: inv, err: err}
	}
}

type writtenMsg struct {
	path string
	err  error
}

func (m DetailModel) writeCmd(name string, write func(f *os.File) error) tea.Cmd {
	path := filepath.Join(m.outDir, name)

	return func() tea.Msg {
		f, err := os.Create(path)
		if err != nil {
			return writtenMsg{err: err}
		}

		if err := write(f); err != nil {
			f.Close()
			return writtenMsg{err: err}
		}

		return writtenMsg{path: path, err: f.Close()}
	}
}
