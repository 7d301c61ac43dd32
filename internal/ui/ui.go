// Package ui is the terminal dashboard: a sidebar of surfaces (Dashboard,
// Cases, MyNaga Sync, Google Sheets) over a shared store, with all API calls
// issued off the draw goroutine and results applied via QueueUpdateDraw.
package ui

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"golang.org/x/sync/errgroup"

	"github.com/nagacity/mynaga-console/internal/api"
	"github.com/nagacity/mynaga-console/internal/media"
	"github.com/nagacity/mynaga-console/internal/poll"
	"github.com/nagacity/mynaga-console/internal/store"
)

// Theme defines the color tokens used across widgets and text tags.
type Theme struct {
	Bg          tcell.Color
	Surface     tcell.Color
	Border      tcell.Color
	FocusBorder tcell.Color
	TextPrimary tcell.Color
	TextMuted   tcell.Color
	Accent      tcell.Color
	Header      tcell.Color

	StatusOpen      tcell.Color
	StatusResolved  tcell.Color
	StatusRerouting tcell.Color

	TagMuted   string
	TagAccent  string
	TagSuccess string
	TagWarning string
	TagError   string
}

func hex(s string) tcell.Color { return tcell.GetColor(s) }

func themeDark() Theme {
	return Theme{
		Bg:          hex("#0e1116"),
		Surface:     hex("#12161e"),
		Border:      hex("#2b3240"),
		FocusBorder: hex("#4aa8ff"),
		TextPrimary: hex("#e6edf3"),
		TextMuted:   hex("#8a939f"),
		Accent:      hex("#2dd4bf"),
		Header:      hex("#eab308"),

		StatusOpen:      hex("#f59e0b"),
		StatusResolved:  hex("#22c55e"),
		StatusRerouting: hex("#ef4444"),

		TagMuted:   "#8a939f",
		TagAccent:  "#2dd4bf",
		TagSuccess: "#22c55e",
		TagWarning: "#f59e0b",
		TagError:   "#ef4444",
	}
}

// Options configures the terminal dashboard.
type Options struct {
	Client         *api.Client
	Store          *store.Store
	StorageBase    string
	StatsInterval  time.Duration
	StatusInterval time.Duration
	Logger         *log.Logger
}

// page names for the main content area.
const (
	pageDashboard = "dashboard"
	pageCases     = "cases"
	pageMyNaga    = "mynaga"
	pageSheets    = "sheets"
)

// UI is the terminal dashboard application.
type UI struct {
	app      *tview.Application
	client   *api.Client
	store    *store.Store
	resolver media.Resolver
	logger   *log.Logger
	theme    Theme

	layout    *tview.Flex
	sidebar   *tview.List
	pages     *tview.Pages
	statusBar *tview.TextView

	dashboard *Dashboard
	cases     *CasesView
	mynaga    *MyNagaPanel
	sheets    *SheetsPanel

	statsPoller  *poll.Poller
	statusPoller *poll.Poller

	unsubscribe func()

	ctx    context.Context
	cancel context.CancelFunc
}

// New assembles the dashboard. Nothing talks to the API until Start.
func New(ctx context.Context, opts Options) *UI {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.Writer(), "[UI] ", log.LstdFlags)
	}
	if opts.StatsInterval <= 0 {
		opts.StatsInterval = 10 * time.Second
	}
	if opts.StatusInterval <= 0 {
		opts.StatusInterval = 10 * time.Second
	}

	uiCtx, cancel := context.WithCancel(ctx)

	ui := &UI{
		app:      tview.NewApplication(),
		client:   opts.Client,
		store:    opts.Store,
		resolver: media.Resolver{StorageBase: opts.StorageBase},
		logger:   logger,
		theme:    themeDark(),
		ctx:      uiCtx,
		cancel:   cancel,
	}

	ui.dashboard = newDashboard(ui)
	ui.cases = newCasesView(ui)
	ui.mynaga = newMyNagaPanel(ui)
	ui.sheets = newSheetsPanel(ui)

	ui.statsPoller = poll.New("stats", opts.StatsInterval, ui.dashboard.fetchStats, logger)
	ui.statusPoller = poll.New("mynaga-status", opts.StatusInterval, ui.dashboard.fetchBreakdown, logger)

	ui.setupLayout()
	ui.setupKeybindings()

	return ui
}

// Start fetches the office and cluster catalogs, launches the pollers, and
// runs the tview event loop until stopped.
func (ui *UI) Start() error {
	ui.logger.Println("starting dashboard")

	// Subscribe before any background load runs so no publish lands unheard.
	ui.unsubscribe = ui.store.Subscribe(ui.onStoreChange)

	// Catalogs load in parallel before any surface needs them. A failure is
	// reported but does not block startup.
	go func() {
		g, gctx := errgroup.WithContext(ui.ctx)
		g.Go(func() error {
			offices, err := ui.client.ListOffices(gctx)
			if err != nil {
				return fmt.Errorf("offices: %w", err)
			}
			ui.store.SetOffices(offices)
			return nil
		})
		g.Go(func() error {
			clusters, err := ui.client.ListClusters(gctx)
			if err != nil {
				return fmt.Errorf("clusters: %w", err)
			}
			ui.store.SetClusters(clusters)
			return nil
		})
		if err := g.Wait(); err != nil {
			ui.logger.Printf("[WARN] catalog load failed: %v", err)
			ui.setStatusAsync("[%s]catalog load failed: %v", ui.theme.TagError, err)
		}
	}()

	ui.statsPoller.Start(ui.ctx)
	ui.statusPoller.Start(ui.ctx)
	go ui.cases.reload(ui.ctx)

	go func() {
		<-ui.ctx.Done()
		ui.app.Stop()
	}()

	err := ui.app.Run()
	ui.teardown()
	return err
}

// Stop shuts the dashboard down from outside the event loop.
func (ui *UI) Stop() {
	ui.cancel()
}

func (ui *UI) teardown() {
	ui.cancel()
	ui.statsPoller.Stop()
	ui.statusPoller.Stop()
	if ui.unsubscribe != nil {
		ui.unsubscribe()
	}
	ui.logger.Println("dashboard stopped")
}

// onStoreChange re-renders the surfaces that display the changed container.
// Called on whatever goroutine mutated the store. That can be the draw
// goroutine itself (form handlers mutate the store directly), and
// QueueUpdateDraw blocks until the event loop runs the queued function, so
// the hand-off must come from a fresh goroutine to avoid deadlocking the
// loop against itself.
func (ui *UI) onStoreChange(topic store.Topic) {
	go ui.app.QueueUpdateDraw(func() {
		switch topic {
		case store.TopicCases, store.TopicFilters:
			ui.cases.render()
		case store.TopicStats:
			ui.dashboard.renderStats()
		case store.TopicOffices, store.TopicClusters:
			ui.cases.detail.renderIfOpen()
		}
	})
}

func (ui *UI) setupLayout() {
	ui.sidebar = tview.NewList().
		ShowSecondaryText(false).
		AddItem("Dashboard", "", 'd', func() { ui.showPage(pageDashboard) }).
		AddItem("Cases", "", 'c', func() { ui.showPage(pageCases) }).
		AddItem("MyNaga Sync", "", 'm', func() { ui.showPage(pageMyNaga) }).
		AddItem("Google Sheets", "", 'g', func() { ui.showPage(pageSheets) })
	ui.sidebar.SetTitle(" MyNaga Console ")
	ui.sidebar.SetBorder(true)
	ui.sidebar.SetTitleAlign(tview.AlignLeft)
	ui.sidebar.SetBorderColor(ui.theme.Border)
	ui.sidebar.SetTitleColor(ui.theme.Header)
	ui.sidebar.SetBackgroundColor(ui.theme.Bg)
	ui.sidebar.SetMainTextColor(ui.theme.TextPrimary)
	ui.sidebar.SetSelectedBackgroundColor(ui.theme.Accent)
	ui.sidebar.SetSelectedTextColor(ui.theme.Bg)

	ui.pages = tview.NewPages().
		AddPage(pageDashboard, ui.dashboard.root, true, true).
		AddPage(pageCases, ui.cases.root, true, false).
		AddPage(pageMyNaga, ui.mynaga.root, true, false).
		AddPage(pageSheets, ui.sheets.root, true, false)

	ui.statusBar = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)
	ui.statusBar.SetBackgroundColor(ui.theme.Surface)
	ui.statusBar.SetTextColor(ui.theme.TextMuted)
	ui.setStatus("d/c/m/g switch surface | r refresh | q quit")

	body := tview.NewFlex().
		AddItem(ui.sidebar, 22, 0, true).
		AddItem(ui.pages, 0, 1, false)

	ui.layout = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(body, 0, 1, true).
		AddItem(ui.statusBar, 1, 0, false)

	ui.app.SetRoot(ui.layout, true)
}

func (ui *UI) setupKeybindings() {
	ui.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		// Plain keys pass through while a form or input field has focus.
		if _, ok := ui.app.GetFocus().(*tview.InputField); ok {
			return event
		}
		if _, ok := ui.app.GetFocus().(*tview.Form); ok {
			return event
		}
		if ui.cases.detail.capturing() {
			return event
		}

		switch event.Rune() {
		case 'q':
			ui.Stop()
			return nil
		case 'r':
			ui.refreshAll()
			return nil
		case 'd':
			ui.showPage(pageDashboard)
			return nil
		case 'c':
			ui.showPage(pageCases)
			return nil
		case 'm':
			ui.showPage(pageMyNaga)
			return nil
		case 'g':
			ui.showPage(pageSheets)
			return nil
		}
		return event
	})
}

// navigate interprets an internal route of the form "page?query". The query
// carries cross-surface state, e.g. a MyNaga status picked on the dashboard
// travels to the cases surface as a URL-encoded parameter.
func (ui *UI) navigate(route string) {
	name := route
	rawQuery := ""
	if i := strings.Index(route, "?"); i >= 0 {
		name, rawQuery = route[:i], route[i+1:]
	}
	if name == pageCases {
		q, err := url.ParseQuery(rawQuery)
		if err != nil {
			ui.logger.Printf("[WARN] bad route %q: %v", route, err)
			q = url.Values{}
		}
		ui.cases.setMyNagaFilter(q.Get("mynaga_status"))
	}
	ui.showPage(name)
}

// showPage switches the content area and moves focus into the new surface.
// The dashboard pollers run only while the dashboard is showing.
func (ui *UI) showPage(name string) {
	ui.pages.SwitchToPage(name)
	if name == pageDashboard {
		ui.statsPoller.Start(ui.ctx)
		ui.statusPoller.Start(ui.ctx)
	} else {
		// Stop waits for the in-flight pass, which may itself be parked in
		// QueueUpdateDraw; waiting for it here, on the event loop, would
		// deadlock.
		go ui.statsPoller.Stop()
		go ui.statusPoller.Stop()
	}
	switch name {
	case pageDashboard:
		ui.app.SetFocus(ui.dashboard.breakdown)
	case pageCases:
		ui.app.SetFocus(ui.cases.table)
	case pageMyNaga:
		ui.app.SetFocus(ui.mynaga.form)
	case pageSheets:
		ui.app.SetFocus(ui.sheets.form)
	}
}

// refreshAll triggers an immediate pass of both pollers and a case reload.
func (ui *UI) refreshAll() {
	ui.statsPoller.Refresh()
	ui.statusPoller.Refresh()
	go ui.cases.reload(ui.ctx)
	ui.setStatus("refreshing...")
}

// setStatus updates the status bar. Only safe on the draw goroutine.
func (ui *UI) setStatus(format string, args ...interface{}) {
	ui.statusBar.SetText(fmt.Sprintf(" "+format, args...))
}

// setStatusAsync updates the status bar from any goroutine.
func (ui *UI) setStatusAsync(format string, args ...interface{}) {
	ui.app.QueueUpdateDraw(func() {
		ui.setStatus(format, args...)
	})
}
