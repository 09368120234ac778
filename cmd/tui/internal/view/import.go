package view

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/invoicer/internal/auth"
	"github.com/MrJamesThe3rd/invoicer/internal/importer"
	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
	"github.com/MrJamesThe3rd/invoicer/internal/render"
)

const importTimeout = 2 * time.Minute

type importStage int

const (
	importChoose importStage = iota
	importPick
	importRunning
	importReview
	importDone
)

var formatHelp = map[importer.Format]string{
	importer.FormatLegacy: "JSON export of the old web app",
	importer.FormatRows:   "JSON array of flat invoice rows",
	importer.FormatCSV:    "CSV, one line item per row",
	importer.FormatXLSX:   "Excel workbook, one line item per row",
}

type importFields struct {
	format importer.Format
}

type ImportModel struct {
	CommonModel
	user       *auth.User
	invoiceSvc *invoice.Service
	importSvc  *importer.Service
	formatter  render.Formatter

	stage   importStage
	form    *huh.Form
	fields  *importFields
	picker  filepicker.Model
	spinner spinner.Model

	// pending holds the non-conflicting invoices of a rejected batch.
	pending   []invoice.CreateParams
	conflicts table.Model
	skipped   int

	status string
	err    error
}

func NewImportModel(user *auth.User, invoiceSvc *invoice.Service, importSvc *importer.Service, f render.Formatter) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	s := spinner.New()
	s.Spinner = spinner.Dot

	m := ImportModel{
		user:       user,
		invoiceSvc: invoiceSvc,
		importSvc:  importSvc,
		formatter:  f,
		picker:     fp,
		spinner:    s,
		fields:     &importFields{format: importer.FormatCSV},
	}
	m.form = m.buildForm()

	return m
}

func (m ImportModel) Title() string { return "Import Invoices" }

func (m ImportModel) ShortHelp() string {
	switch m.stage {
	case importPick:
		return "Enter: open | Esc: change format"
	case importReview:
		return "Enter: import the rest | Esc: cancel"
	case importDone:
		return "Esc: import another"
	case importRunning:
		return "Importing..."
	}

	return "Esc: back | Enter: confirm"
}

func (m ImportModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m ImportModel) buildForm() *huh.Form {
	formats := m.importSvc.Formats()
	options := make([]huh.Option[importer.Format], len(formats))

	for i, f := range formats {
		options[i] = huh.NewOption(fmt.Sprintf("%-7s %s", f, formatHelp[f]), f)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[importer.Format]().
				Title("File format").
				Options(options...).
				Value(&m.fields.format),
		),
	).WithWidth(70).WithShowHelp(false)
}

// restart drops any pending batch and shows the format form again.
func (m ImportModel) restart() (tea.Model, tea.Cmd) {
	m.stage = importChoose
	m.pending = nil
	m.skipped = 0
	m.status = ""
	m.err = nil
	m.form = m.buildForm()

	return m, m.form.Init()
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.Type == tea.KeyEsc {
		if m.stage == importChoose {
			return m, Back
		}

		if m.stage != importRunning {
			return m.restart()
		}
	}

	switch msg := msg.(type) {
	case batchCheckedMsg:
		return m.onChecked(msg), nil
	case batchStoredMsg:
		m.stage = importDone
		m.err = msg.err

		if msg.err == nil {
			m.status = fmt.Sprintf("Imported %d invoices, skipped %d.", msg.count, m.skipped)
		}

		return m, nil
	}

	switch m.stage {
	case importChoose:
		form, cmd := m.form.Update(msg)
		if f, ok := form.(*huh.Form); ok {
			m.form = f
		}

		if m.form.State == huh.StateCompleted {
			m.stage = importPick
			return m, m.picker.Init()
		}

		return m, cmd

	case importPick:
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)

		if ok, path := m.picker.DidSelectFile(msg); ok {
			m.stage = importRunning
			return m, tea.Batch(m.spinner.Tick, m.checkCmd(m.fields.format, path))
		}

		return m, cmd

	case importRunning:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd

	case importReview:
		if key, ok := msg.(tea.KeyMsg); ok && key.Type == tea.KeyEnter {
			if len(m.pending) == 0 {
				m.stage = importDone
				m.status = "Nothing new to import."

				return m, nil
			}

			m.stage = importRunning

			return m, tea.Batch(m.spinner.Tick, m.storeCmd(m.pending))
		}

		var cmd tea.Cmd
		m.conflicts, cmd = m.conflicts.Update(msg)

		return m, cmd
	}

	return m, nil
}

func (m ImportModel) onChecked(msg batchCheckedMsg) ImportModel {
	if msg.err != nil {
		m.stage = importDone
		m.err = msg.err

		return m
	}

	if len(msg.result.Conflicts) == 0 {
		m.stage = importDone
		m.status = fmt.Sprintf("Imported %d invoices.", len(msg.result.Imported))

		return m
	}

	m.stage = importReview
	m.pending = msg.result.New
	m.skipped = len(msg.result.Conflicts)
	m.conflicts = newTable([]table.Column{
		{Title: "Number", Width: 20},
		{Title: "Customer", Width: 20},
		{Title: "In File", Width: 14},
		{Title: "Stored On", Width: 12},
		{Title: "Stored Total", Width: 14},
	}, 12)

	rows := make([]table.Row, len(msg.result.Conflicts))
	for i, c := range msg.result.Conflicts {
		incoming := invoice.ComputeTotals(c.Incoming.Items, c.Incoming.Tax)
		rows[i] = table.Row{
			c.Incoming.InvoiceNumber,
			c.Incoming.CustomerName,
			m.formatter.Money(incoming.Total),
			FormatDate(c.Existing.CreatedAt),
			m.formatter.Money(c.Existing.TotalAmount),
		}
	}
	m.conflicts.SetRows(rows)

	return m
}

func (m ImportModel) View() string {
	pad := lipgloss.NewStyle().Padding(1)

	switch m.stage {
	case importChoose:
		return pad.Render(m.form.View())
	case importPick:
		return pad.Render(fmt.Sprintf("Pick a %s file:\n\n%s", m.fields.format, m.picker.View()))
	case importRunning:
		return pad.Render(m.spinner.View() + " Importing...")
	case importReview:
		return pad.Render(lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render(fmt.Sprintf("%d invoice number(s) already in use, nothing was saved", m.skipped)),
			"",
			boxed(m.conflicts.View()),
			"",
			faintStyle.Render(fmt.Sprintf("%d other invoice(s) can be imported.", len(m.pending))),
		))
	case importDone:
		if m.err != nil {
			return pad.Render(errorText(m.err))
		}

		return pad.Render(successStyle.Render(m.status))
	}

	return ""
}

type batchCheckedMsg struct {
	result *invoice.ImportResult
	err    error
}

type batchStoredMsg struct {
	count int
	err   error
}

// checkCmd parses the file and tries to store it as one batch.
func (m ImportModel) checkCmd(format importer.Format, path string) tea.Cmd {
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return batchCheckedMsg{err: err}
		}
		defer f.Close()

		params, err := m.importSvc.Import(format, f)
		if err != nil {
			return batchCheckedMsg{err: err}
		}

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		result, err := m.invoiceSvc.ImportBatch(ctx, m.user, params)

		return batchCheckedMsg{result: result, err: err}
	}
}

// storeCmd imports the invoices left after skipping conflicts.
func (m ImportModel) storeCmd(params []invoice.CreateParams) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		result, err := m.invoiceSvc.ImportBatch(ctx, m.user, params)
		if err != nil {
			return batchStoredMsg{err: err}
		}

		if len(result.Conflicts) > 0 {
			return batchStoredMsg{err: fmt.Errorf("%d invoice(s) were created meanwhile, try again", len(result.Conflicts))}
		}

		return batchStoredMsg{count: len(result.Imported)}
	}
}
