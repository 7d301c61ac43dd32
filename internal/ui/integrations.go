package ui

import (
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/rivo/tview"

	"github.com/nagacity/mynaga-console/internal/api"
)

// MyNagaPanel drives the backend's MyNaga sync scheduler: configure it, test
// a token, trigger a manual pass, stop it, and watch its status. One request
// per action is in flight at a time.
type MyNagaPanel struct {
	ui *UI

	root   *tview.Flex
	form   *tview.Form
	status *tview.TextView

	token    string
	interval string

	busy atomic.Int32
}

func newMyNagaPanel(ui *UI) *MyNagaPanel {
	p := &MyNagaPanel{ui: ui, interval: "30"}

	p.status = tview.NewTextView().SetDynamicColors(true).SetWrap(true)
	p.status.SetTitle(" Sync Status ")
	p.status.SetBorder(true)
	p.status.SetTitleAlign(tview.AlignLeft)
	p.status.SetBorderColor(ui.theme.Border)
	p.status.SetTitleColor(ui.theme.Header)
	p.status.SetBackgroundColor(ui.theme.Bg)
	p.status.SetText(fmt.Sprintf("\n [%s]press Refresh Status[-]", ui.theme.TagMuted))

	p.form = tview.NewForm().
		AddPasswordField("Auth Token", "", 48, '*', func(text string) { p.token = text }).
		AddInputField("Interval (minutes)", p.interval, 8, tview.InputFieldInteger, func(text string) { p.interval = text }).
		AddButton("Test Connection", p.test).
		AddButton("Save & Start", p.configure).
		AddButton("Sync Now", p.syncNow).
		AddButton("Stop Sync", p.stop).
		AddButton("Refresh Status", p.refreshStatus)
	p.form.SetTitle(" MyNaga Integration ")
	p.form.SetBorder(true)
	p.form.SetTitleAlign(tview.AlignLeft)
	p.form.SetBorderColor(ui.theme.Border)
	p.form.SetTitleColor(ui.theme.Header)
	p.form.SetBackgroundColor(ui.theme.Bg)
	p.form.SetFieldBackgroundColor(ui.theme.Surface)

	p.root = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(p.form, 0, 1, true).
		AddItem(p.status, 8, 0, false)

	return p
}

// run guards each action with the busy flag so a slow backend cannot stack
// duplicate requests behind impatient keypresses.
func (p *MyNagaPanel) run(label string, fn func() (string, error)) {
	if !p.busy.CompareAndSwap(0, 1) {
		p.ui.setStatus("mynaga: %s already in progress", label)
		return
	}
	p.ui.setStatus("mynaga: %s...", label)
	go func() {
		defer p.busy.Store(0)
		msg, err := fn()
		if err != nil {
			p.ui.setStatusAsync("[%s]mynaga %s failed: %s", p.ui.theme.TagError, label, errorDetail(err))
			return
		}
		p.ui.setStatusAsync("[%s]mynaga %s: %s", p.ui.theme.TagSuccess, label, msg)
	}()
}

func (p *MyNagaPanel) test() {
	token := p.token
	p.run("test", func() (string, error) {
		res, err := p.ui.client.TestMyNagaConnection(p.ui.ctx, token)
		if err != nil {
			return "", err
		}
		if !res.Success {
			return "", fmt.Errorf("%s", res.Message)
		}
		return res.Message, nil
	})
}

func (p *MyNagaPanel) configure() {
	token := p.token
	minutes, _ := strconv.Atoi(p.interval)
	p.run("configure", func() (string, error) {
		res, err := p.ui.client.ConfigureMyNaga(p.ui.ctx, api.MyNagaConfig{
			AuthToken:           token,
			SyncIntervalMinutes: minutes,
		})
		if err != nil {
			return "", err
		}
		return res.Message, nil
	})
}

func (p *MyNagaPanel) syncNow() {
	token := p.token
	p.run("manual sync", func() (string, error) {
		res, err := p.ui.client.TriggerMyNagaSync(p.ui.ctx, token)
		if err != nil {
			return "", err
		}
		// A manual pass changes the case list; pull it fresh.
		go p.ui.cases.reload(p.ui.ctx)
		p.ui.statsPoller.Refresh()
		p.ui.statusPoller.Refresh()
		return fmt.Sprintf("%s (created %d, updated %d, errors %d)",
			res.Message, res.Stats.Created, res.Stats.Updated, res.Stats.Errors), nil
	})
}

func (p *MyNagaPanel) stop() {
	p.run("stop", func() (string, error) {
		res, err := p.ui.client.StopMyNagaSync(p.ui.ctx)
		if err != nil {
			return "", err
		}
		return res.Message, nil
	})
}

func (p *MyNagaPanel) refreshStatus() {
	p.run("status", func() (string, error) {
		st, err := p.ui.client.MyNagaSyncStatus(p.ui.ctx)
		if err != nil {
			return "", err
		}
		p.ui.app.QueueUpdateDraw(func() { p.renderStatus(st) })
		return "refreshed", nil
	})
}

func (p *MyNagaPanel) renderStatus(st *api.MyNagaSyncStatus) {
	t := p.ui.theme
	syncing := fmt.Sprintf("[%s]idle[-]", t.TagMuted)
	if st.IsSyncing {
		syncing = fmt.Sprintf("[%s]syncing[-]", t.TagWarning)
	}
	last := st.LastSyncTime
	if last == "" {
		last = "never"
	}
	text := fmt.Sprintf("\n Scheduler: %s\n Last sync: %s\n", syncing, last)
	if st.LastSyncStatus != nil {
		text += fmt.Sprintf(" Last pass: created %d, updated %d, errors %d\n",
			st.LastSyncStatus.Created, st.LastSyncStatus.Updated, st.LastSyncStatus.Errors)
	}
	p.status.SetText(text)
}

// SheetsPanel drives the Google Sheets import integration.
type SheetsPanel struct {
	ui *UI

	root   *tview.Flex
	form   *tview.Form
	status *tview.TextView

	sheetURL string
	credsRaw string
	interval string

	busy atomic.Int32
}

func newSheetsPanel(ui *UI) *SheetsPanel {
	p := &SheetsPanel{ui: ui, interval: "300"}

	p.status = tview.NewTextView().SetDynamicColors(true).SetWrap(true)
	p.status.SetTitle(" Sheets Status ")
	p.status.SetBorder(true)
	p.status.SetTitleAlign(tview.AlignLeft)
	p.status.SetBorderColor(ui.theme.Border)
	p.status.SetTitleColor(ui.theme.Header)
	p.status.SetBackgroundColor(ui.theme.Bg)
	p.status.SetText(fmt.Sprintf("\n [%s]press Refresh Status[-]", ui.theme.TagMuted))

	p.form = tview.NewForm().
		AddInputField("Sheet URL", "", 64, nil, func(text string) { p.sheetURL = text }).
		AddInputField("Service Account JSON", "", 64, nil, func(text string) { p.credsRaw = text }).
		AddInputField("Auto-sync (seconds)", p.interval, 8, tview.InputFieldInteger, func(text string) { p.interval = text }).
		AddButton("Test Connection", p.test).
		AddButton("Sync Now", p.syncNow).
		AddButton("Start Auto-Sync", p.startAuto).
		AddButton("Stop Auto-Sync", p.stopAuto).
		AddButton("Refresh Status", p.refreshStatus)
	p.form.SetTitle(" Google Sheets Integration ")
	p.form.SetBorder(true)
	p.form.SetTitleAlign(tview.AlignLeft)
	p.form.SetBorderColor(ui.theme.Border)
	p.form.SetTitleColor(ui.theme.Header)
	p.form.SetBackgroundColor(ui.theme.Bg)
	p.form.SetFieldBackgroundColor(ui.theme.Surface)

	p.root = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(p.form, 0, 1, true).
		AddItem(p.status, 7, 0, false)

	return p
}

func (p *SheetsPanel) config() api.SheetsConfig {
	seconds, _ := strconv.Atoi(p.interval)
	return api.SheetsConfig{
		SheetURL:        p.sheetURL,
		CredentialsJSON: p.credsRaw,
		IntervalSeconds: seconds,
	}
}

func (p *SheetsPanel) run(label string, fn func() (string, error)) {
	if !p.busy.CompareAndSwap(0, 1) {
		p.ui.setStatus("sheets: %s already in progress", label)
		return
	}
	p.ui.setStatus("sheets: %s...", label)
	go func() {
		defer p.busy.Store(0)
		msg, err := fn()
		if err != nil {
			p.ui.setStatusAsync("[%s]sheets %s failed: %s", p.ui.theme.TagError, label, errorDetail(err))
			return
		}
		p.ui.setStatusAsync("[%s]sheets %s: %s", p.ui.theme.TagSuccess, label, msg)
	}()
}

func (p *SheetsPanel) test() {
	cfg := p.config()
	p.run("test", func() (string, error) {
		res, err := p.ui.client.TestSheetsConnection(p.ui.ctx, cfg)
		if err != nil {
			return "", err
		}
		if !res.Success {
			return "", fmt.Errorf("%s", res.Message)
		}
		msg := res.Message
		if res.RowCount > 0 {
			msg = fmt.Sprintf("%s (%d rows)", msg, res.RowCount)
		}
		return msg, nil
	})
}

func (p *SheetsPanel) syncNow() {
	cfg := p.config()
	p.run("sync", func() (string, error) {
		res, err := p.ui.client.SyncSheets(p.ui.ctx, cfg)
		if err != nil {
			return "", err
		}
		go p.ui.cases.reload(p.ui.ctx)
		p.ui.statsPoller.Refresh()
		return fmt.Sprintf("created %d, updated %d, errors %d",
			res.Stats.Created, res.Stats.Updated, res.Stats.Errors), nil
	})
}

func (p *SheetsPanel) startAuto() {
	cfg := p.config()
	p.run("start auto-sync", func() (string, error) {
		res, err := p.ui.client.StartSheetsAutoSync(p.ui.ctx, cfg)
		if err != nil {
			return "", err
		}
		return res.Message, nil
	})
}

func (p *SheetsPanel) stopAuto() {
	p.run("stop auto-sync", func() (string, error) {
		res, err := p.ui.client.StopSheetsAutoSync(p.ui.ctx)
		if err != nil {
			return "", err
		}
		return res.Message, nil
	})
}

func (p *SheetsPanel) refreshStatus() {
	p.run("status", func() (string, error) {
		st, err := p.ui.client.SheetsStatus(p.ui.ctx)
		if err != nil {
			return "", err
		}
		p.ui.app.QueueUpdateDraw(func() { p.renderStatus(st) })
		return "refreshed", nil
	})
}

func (p *SheetsPanel) renderStatus(st *api.SheetsSyncStatus) {
	t := p.ui.theme
	state := fmt.Sprintf("[%s]not configured[-]", t.TagMuted)
	if st.Configured {
		state = fmt.Sprintf("[%s]configured[-]", t.TagSuccess)
	}
	if st.IsSyncing {
		state += fmt.Sprintf(" [%s](syncing)[-]", t.TagWarning)
	}
	last := st.LastSyncTime
	if last == "" {
		last = "never"
	}
	p.status.SetText(fmt.Sprintf("\n Sheet: %s\n Last sync: %s\n", state, last))
}
