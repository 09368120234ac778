package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/invoicer/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/invoicer/internal/auth"
	authStore "github.com/MrJamesThe3rd/invoicer/internal/auth/store"
	"github.com/MrJamesThe3rd/invoicer/internal/builder"
	"github.com/MrJamesThe3rd/invoicer/internal/client"
	clientStore "github.com/MrJamesThe3rd/invoicer/internal/client/store"
	"github.com/MrJamesThe3rd/invoicer/internal/config"
	"github.com/MrJamesThe3rd/invoicer/internal/database"
	"github.com/MrJamesThe3rd/invoicer/internal/export"
	"github.com/MrJamesThe3rd/invoicer/internal/importer"
	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
	invoiceStore "github.com/MrJamesThe3rd/invoicer/internal/invoice/store"
	"github.com/MrJamesThe3rd/invoicer/internal/kv"
	"github.com/MrJamesThe3rd/invoicer/internal/render"
	"github.com/MrJamesThe3rd/invoicer/internal/settings"
)

type model struct {
	authService    *auth.Service
	invoiceService *invoice.Service
	clientService  *client.Service
	importService  *importer.Service
	exportService  *export.Service
	submitter      *builder.Submitter
	settingsStore  *settings.Store
	local          kv.Store
	formatter      render.Formatter

	appName string
	session *auth.Session

	// current is nil on the menu.
	current view.View
}

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(context.Background(), cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	if cfg.DB.Migrate {
		if err := database.Migrate(db); err != nil {
			slog.Error("failed to migrate database", "error", err)
			os.Exit(1)
		}
	}

	path := cfg.TUI.StoragePath
	if path == "" {
		if path, err = kv.DefaultPath(cfg.App.Name); err != nil {
			slog.Error("failed to locate local storage", "error", err)
			os.Exit(1)
		}
	}

	local := kv.NewFile(path)
	invoiceSvc := invoice.NewService(invoiceStore.New(db))
	settingsSt := settings.New(local)
	formatter := render.NewFormatter(cfg.Invoice.CurrencySymbol, cfg.Invoice.CurrencyCode, cfg.Invoice.PhoneRegion)

	m := model{
		authService:    auth.NewService(authStore.New(db), auth.NewTokens(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.TokenTTL), local),
		invoiceService: invoiceSvc,
		clientService:  client.NewService(clientStore.New(db)),
		importService:  importer.NewService(),
		exportService:  export.NewService(invoiceSvc, formatter),
		submitter:      builder.NewSubmitter(invoiceSvc, settingsSt, builder.WithLocalSettings()),
		settingsStore:  settingsSt,
		local:          local,
		formatter:      formatter,
		appName:        cfg.App.Name,
	}
	m.current = view.NewAuthModel(m.authService, m.local)

	return m
}

func (m model) Init() tea.Cmd {
	return tea.Batch(view.RestoreSession(m.authService, m.local), m.current.Init())
}

func (m model) user() *auth.User {
	if m.session == nil {
		return nil
	}

	return m.session.User
}

func (m model) open(v view.View) (tea.Model, tea.Cmd) {
	m.current = v

	return m, v.Init()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}

		if m.current == nil {
			return m.updateMenu(msg)
		}

	case view.SignedInMsg:
		m.session = msg.Session
		m.current = nil

		return m, nil

	case view.SignedOutMsg:
		m.session = nil
		m.current = view.NewAuthModel(m.authService, m.local)

		if msg.Err != nil {
			slog.Warn("sign out failed", "error", msg.Err)
		}

		return m, m.current.Init()

	case view.OpenInvoiceMsg:
		return m.open(view.NewDetailModel(m.user(), m.invoiceService, m.formatter, msg.Number))

	case view.BackMsg:
		m.current = nil
		return m, nil
	}

	if m.current == nil {
		return m, nil
	}

	next, cmd := m.current.Update(msg)
	if v, ok := next.(view.View); ok {
		m.current = v
	}

	return m, cmd
}

func (m model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	u := m.user()

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "1":
		return m.open(view.NewBuilderModel(u, m.submitter, m.clientService, m.formatter))
	case "2":
		return m.open(view.NewListModel(u, m.invoiceService, m.formatter))
	case "3":
		return m.open(view.NewDashboardModel(u, m.invoiceService, m.formatter))
	case "4":
		return m.open(view.NewClientsModel(u, m.clientService, m.formatter))
	case "5":
		return m.open(view.NewImportModel(u, m.invoiceService, m.importService, m.formatter))
	case "6":
		return m.open(view.NewExportModel(u, m.exportService))
	case "7":
		return m.open(view.NewSettingsModel(m.settingsStore))
	case "o":
		return m, view.SignOut(m.authService, m.local, m.session.Token)
	}

	return m, nil
}

var helpStyle = lipgloss.NewStyle().Faint(true).PaddingLeft(2)

func (m model) View() string {
	if m.current != nil {
		return lipgloss.JoinVertical(lipgloss.Left, m.current.View(), helpStyle.Render(m.current.ShortHelp()))
	}

	menu := fmt.Sprintf("%s TUI\nSigned in as %s\n\n", m.appName, m.session.User.Email) +
		"1. New Invoice\n" +
		"2. Invoices\n" +
		"3. Dashboard\n" +
		"4. Clients\n" +
		"5. Import Invoices\n" +
		"6. Export Invoices\n" +
		"7. Company Settings\n\n" +
		"o. Sign Out\n" +
		"q. Quit"

	return lipgloss.NewStyle().Padding(2).Render(menu)
}

func main() {
	p := tea.NewProgram(initialModel(), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
