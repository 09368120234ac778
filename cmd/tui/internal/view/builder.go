package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/invoicer/internal/auth"
	"github.com/MrJamesThe3rd/invoicer/internal/builder"
	"github.com/MrJamesThe3rd/invoicer/internal/catalog"
	"github.com/MrJamesThe3rd/invoicer/internal/client"
	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
	"github.com/MrJamesThe3rd/invoicer/internal/render"
)

type builderState int

const (
	builderStateItems builderState = iota
	builderStateDetails
	builderStatePick
	builderStateSubmitting
)

// BuilderModel composes a new invoice from catalog products.
type BuilderModel struct {
	CommonModel
	user      *auth.User
	submitter *builder.Submitter
	clients   *client.Service
	formatter render.Formatter

	state  builderState
	draft  *builder.Draft
	picker *builder.Picker
	table  table.Model
	form   *huh.Form

	// Details form binding; a pointer so it survives model copies.
	formTax *string

	status string
	err    error
}

func NewBuilderModel(user *auth.User, submitter *builder.Submitter, clients *client.Service, f render.Formatter) BuilderModel {
	return BuilderModel{
		user:      user,
		submitter: submitter,
		clients:   clients,
		formatter: f,
		draft:     builder.NewDraft(),
		picker:    builder.NewPicker(),
		table: newTable([]table.Column{
			{Title: "Product", Width: 36},
			{Title: "Qty", Width: 5},
			{Title: "Unit Price", Width: 14},
			{Title: "Total", Width: 14},
		}, 10),
	}
}

func (m BuilderModel) Title() string { return "New Invoice" }

func (m BuilderModel) ShortHelp() string {
	switch m.state {
	case builderStateDetails, builderStatePick:
		return "Tab: next field | Enter: confirm | Esc: cancel"
	case builderStateSubmitting:
		return "Saving..."
	}

	return "Esc: back | c: customer | a: add item | +/-: quantity | x: remove | s: save"
}

func (m BuilderModel) Init() tea.Cmd {
	return nil
}

func (m BuilderModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case suggestMsg:
		if msg.client != nil {
			if m.draft.CustomerPhone == "" {
				m.draft.CustomerPhone = msg.client.Phone
			}

			if m.draft.CustomerAddress == "" {
				m.draft.CustomerAddress = msg.client.Address
			}

			m.status = fmt.Sprintf("Filled contact details from %s's last invoice.", msg.client.Name)
		}

		return m, nil

	case submitMsg:
		m.state = builderStateItems
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		return m, OpenInvoice(msg.invoice.InvoiceNumber)

	case tea.WindowSizeMsg:
		m.table.SetHeight(max(msg.Height-16, 5))
		return m, nil
	}

	switch m.state {
	case builderStateDetails:
		return m.updateDetails(msg)
	case builderStatePick:
		return m.updatePick(msg)
	case builderStateItems:
		return m.updateItems(msg)
	}

	return m, nil
}

func (m BuilderModel) updateItems(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "c":
			return m.enterDetails()
		case "a":
			return m.enterPick()
		case "+", "=":
			m.changeQuantity(1)
			return m, nil
		case "-":
			m.changeQuantity(-1)
			return m, nil
		case "x":
			if it, ok := m.selectedItem(); ok {
				m.draft.RemoveItem(it.ID)
				m.refreshTable()
			}

			return m, nil
		case "s":
			if err := builder.Validate(m.draft); err != nil {
				m.err = err
				return m, nil
			}

			m.err = nil
			m.state = builderStateSubmitting

			return m, m.submitCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m *BuilderModel) selectedItem() (invoice.LineItem, bool) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.draft.Items) {
		return invoice.LineItem{}, false
	}

	return m.draft.Items[idx], true
}

// changeQuantity never lets a quantity drop below one; removal is explicit.
func (m *BuilderModel) changeQuantity(delta int) {
	it, ok := m.selectedItem()
	if !ok {
		return
	}

	if m.draft.UpdateItem(it.ID, it.Quantity+delta) {
		m.refreshTable()
	}
}

func (m BuilderModel) enterDetails() (tea.Model, tea.Cmd) {
	tax := m.draft.Tax.String()
	m.formTax = &tax

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("customer_name").
				Title("Customer name").
				Value(&m.draft.CustomerName).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return builder.ErrCustomerNameRequired
					}

					return nil
				}),
			huh.NewInput().
				Key("customer_phone").
				Title("Phone").
				Description("Left blank, filled from the client's last invoice").
				Value(&m.draft.CustomerPhone),
			huh.NewInput().
				Key("customer_address").
				Title("Address").
				Value(&m.draft.CustomerAddress),
		),
		huh.NewGroup(
			huh.NewInput().
				Key("tax").
				Title("Tax (%)").
				Placeholder("0").
				Value(m.formTax).
				Validate(func(s string) error {
					_, err := builder.ParseTax(s)
					return err
				}),
			huh.NewText().
				Key("notes").
				Title("Notes").
				Lines(3).
				Value(&m.draft.Notes),
		),
	).WithWidth(60).WithShowHelp(false)

	m.state = builderStateDetails
	m.table.Blur()

	return m, m.form.Init()
}

func (m BuilderModel) updateDetails(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		return m.leaveForm(), nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	tax, err := builder.ParseTax(*m.formTax)
	if err == nil {
		err = m.draft.SetTax(tax)
	}

	m.err = err

	var suggest tea.Cmd
	if m.draft.CustomerPhone == "" && m.draft.CustomerAddress == "" {
		suggest = m.suggestCmd(m.draft.CustomerName)
	}

	return m.leaveForm(), suggest
}

func (m BuilderModel) enterPick() (tea.Model, tea.Cmd) {
	categories := catalog.Categories()

	options := make([]huh.Option[string], len(categories))
	for i, c := range categories {
		options[i] = huh.NewOption(c.Label, c.Key)
	}

	if m.picker.Category == "" && len(categories) > 0 {
		m.picker.SelectCategory(categories[0].Key)
	}

	p := m.picker

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("category").
				Title("Category").
				Options(options...).
				Value(&p.Category),
			huh.NewSelect[string]().
				Key("product").
				Title("Product").
				OptionsFunc(func() []huh.Option[string] {
					products := p.Products()
					opts := make([]huh.Option[string], len(products))

					for i, prod := range products {
						opts[i] = huh.NewOption(fmt.Sprintf("%s  %s", prod.Name, m.formatter.Money(prod.Price)), prod.Name)
					}

					return opts
				}, &p.Category).
				Value(&p.Product),
			huh.NewInput().
				Key("quantity").
				Title("Quantity").
				Value(&p.Quantity).
				Validate(func(s string) error {
					if _, ok := builder.ParseQuantity(s); !ok {
						return fmt.Errorf("quantity must be a positive whole number")
					}

					return nil
				}),
		),
	).WithWidth(60).WithShowHelp(false)

	m.state = builderStatePick
	m.table.Blur()

	return m, m.form.Init()
}

func (m BuilderModel) updatePick(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		return m.leaveForm(), nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	if m.picker.Add(m.draft) {
		m.err = nil
		m.refreshTable()
	} else {
		m.err = fmt.Errorf("pick a product and a positive quantity")
	}

	return m.leaveForm(), nil
}

func (m BuilderModel) leaveForm() BuilderModel {
	m.state = builderStateItems
	m.form = nil
	m.table.Focus()

	return m
}

func (m *BuilderModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.draft.Items))
	for _, it := range m.draft.Items {
		rows = append(rows, table.Row{
			it.ProductName,
			fmt.Sprint(it.Quantity),
			m.formatter.Money(it.UnitPrice),
			m.formatter.Money(it.Total),
		})
	}

	m.table.SetRows(rows)
}

func (m BuilderModel) View() string {
	if m.state == builderStateSubmitting {
		return lipgloss.NewStyle().Padding(2).Render("Saving invoice...")
	}

	customer := m.draft.CustomerName
	if customer == "" {
		customer = faintStyle.Render("(press c to add customer)")
	}

	header := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("New Invoice"),
		"",
		fmt.Sprintf("Customer: %s", customer),
		fmt.Sprintf("Phone:    %s", m.formatter.Phone(m.draft.CustomerPhone)),
		fmt.Sprintf("Address:  %s", m.draft.CustomerAddress),
	)

	totals := m.draft.Totals()
	summary := lipgloss.JoinVertical(lipgloss.Right,
		fmt.Sprintf("Subtotal: %s", m.formatter.Money(totals.Subtotal)),
		fmt.Sprintf("Tax (%s): %s", m.formatter.Percent(m.draft.Tax), m.formatter.Money(totals.TaxAmount)),
		activeStyle(fmt.Sprintf("Total: %s", m.formatter.Money(totals.Total))),
	)

	content := lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		boxed(m.table.View()),
		summary,
	)

	if m.form != nil {
		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panelStyle.Width(64).Render(m.form.View()))
	}

	if m.err != nil {
		content = errorText(m.err) + "\n" + content
	} else if m.status != "" {
		content = faintStyle.Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

// Messages

type suggestMsg struct {
	client *client.Client
}

// suggestCmd looks for a past client with exactly this name.
func (m BuilderModel) suggestCmd(name string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		found, err := m.clients.Suggest(ctx, m.user, name)
		if err != nil {
			return suggestMsg{}
		}

		for _, c := range found {
			if strings.EqualFold(c.Name, strings.TrimSpace(name)) {
				return suggestMsg{client: &c}
			}
		}

		return suggestMsg{}
	}
}

type submitMsg struct {
	invoice *invoice.Invoice
	err     error
}

func (m BuilderModel) submitCmd() tea.Cmd {
	d := *m.draft

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		inv, err := m.submitter.Submit(ctx, m.user, &d)

		return submitMsg{invoice: inv, err: err}
	}
}
