package ui

import (
	"context"
	"fmt"
	"net/url"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/nagacity/mynaga-console/internal/api"
)

// Dashboard is the landing surface: aggregate stat cards plus the per-MyNaga-
// status breakdown table. Both refresh on their own poller cadence.
type Dashboard struct {
	ui *UI

	root      *tview.Flex
	cards     *tview.TextView
	breakdown *tview.Table

	// last fetched breakdown, rendered on the draw goroutine
	lastBreakdown *api.MyNagaStatusBreakdown
}

func newDashboard(ui *UI) *Dashboard {
	d := &Dashboard{ui: ui}

	d.cards = tview.NewTextView().SetDynamicColors(true)
	d.cards.SetTitle(" Overview ")
	d.cards.SetBorder(true)
	d.cards.SetTitleAlign(tview.AlignLeft)
	d.cards.SetBorderColor(ui.theme.Border)
	d.cards.SetTitleColor(ui.theme.Header)
	d.cards.SetBackgroundColor(ui.theme.Bg)

	d.breakdown = tview.NewTable()
	d.breakdown.SetTitle(" MyNaga Status Breakdown ")
	d.breakdown.SetBorder(true)
	d.breakdown.SetTitleAlign(tview.AlignLeft)
	d.breakdown.SetBorderColor(ui.theme.Border)
	d.breakdown.SetTitleColor(ui.theme.Header)
	d.breakdown.SetBackgroundColor(ui.theme.Bg)
	d.breakdown.SetSelectable(true, false)
	d.breakdown.SetFixed(1, 0)
	d.breakdown.SetSelectedFunc(func(row, col int) {
		if row < 1 {
			return
		}
		cell := d.breakdown.GetCell(row, 0)
		if cell == nil || cell.Text == "" {
			return
		}
		ui.navigate("cases?mynaga_status=" + url.QueryEscape(cell.Text))
	})

	d.root = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(d.cards, 9, 0, false).
		AddItem(d.breakdown, 0, 1, true)

	d.renderStats()
	d.renderBreakdown()
	return d
}

// fetchStats is the stats poller body.
func (d *Dashboard) fetchStats(ctx context.Context) error {
	stats, err := d.ui.client.Stats(ctx)
	if err != nil {
		return err
	}
	d.ui.store.SetStats(stats)
	return nil
}

// fetchBreakdown is the MyNaga-status poller body.
func (d *Dashboard) fetchBreakdown(ctx context.Context) error {
	b, err := d.ui.client.MyNagaStats(ctx)
	if err != nil {
		return err
	}
	d.ui.app.QueueUpdateDraw(func() {
		d.lastBreakdown = b
		d.renderBreakdown()
	})
	return nil
}

func (d *Dashboard) renderStats() {
	stats := d.ui.store.Stats()
	if stats == nil {
		d.cards.SetText(fmt.Sprintf("\n  [%s]loading statistics...", d.ui.theme.TagMuted))
		return
	}
	d.cards.SetText(fmt.Sprintf(
		"\n  Total Cases     %d\n"+
			"  [%s]Open[-]            %d\n"+
			"  [%s]Resolved[-]        %d  (%.1f%% resolution)\n"+
			"  [%s]For Rerouting[-]   %d\n\n"+
			"  Offices %d | Clusters %d | Avg Case Aging %.1f days",
		stats.TotalCases,
		d.ui.theme.TagWarning, stats.OpenCases,
		d.ui.theme.TagSuccess, stats.ResolvedCases,
		percentOfTotal(stats.ResolvedCases, stats.TotalCases),
		d.ui.theme.TagError, stats.ReroutingCases,
		stats.TotalOffices, stats.TotalClusters, stats.AverageCaseAging,
	))
}

func (d *Dashboard) renderBreakdown() {
	d.breakdown.Clear()
	for col, h := range []string{"MyNaga Status", "Cases", "Share"} {
		d.breakdown.SetCell(0, col, tview.NewTableCell(h).
			SetTextColor(d.ui.theme.Header).
			SetAttributes(tcell.AttrBold).
			SetSelectable(false))
	}

	if d.lastBreakdown == nil {
		d.breakdown.SetCell(1, 0, tview.NewTableCell("loading...").
			SetTextColor(d.ui.theme.TextMuted))
		return
	}

	row := 1
	for _, status := range api.MyNagaStatuses {
		count := d.lastBreakdown.Count(status)
		d.breakdown.SetCell(row, 0, tview.NewTableCell(status).
			SetTextColor(d.ui.theme.TextPrimary).
			SetExpansion(1))
		d.breakdown.SetCell(row, 1, tview.NewTableCell(fmt.Sprintf("%d", count)).
			SetTextColor(d.ui.theme.TextPrimary).
			SetAlign(tview.AlignRight))
		d.breakdown.SetCell(row, 2, tview.NewTableCell(
			fmt.Sprintf("%.1f%%", percentOfTotal(count, d.lastBreakdown.Total))).
			SetTextColor(d.ui.theme.TextMuted).
			SetAlign(tview.AlignRight))
		row++
	}
}

// percentOfTotal is the share of count in total. An empty total yields 0.0
// rather than NaN so the dashboard renders a plain zero.
func percentOfTotal(count, total int) float64 {
	if total == 0 {
		return 0.0
	}
	return float64(count) / float64(total) * 100
}
