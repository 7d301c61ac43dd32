package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/nagacity/mynaga-console/internal/api"
	"github.com/nagacity/mynaga-console/internal/store"
)

// CasesView is the case listing surface: a filterable table with the detail
// surface layered on top of it.
type CasesView struct {
	ui *UI

	root   *tview.Pages
	list   *tview.Flex
	search *tview.InputField
	chip   *tview.TextView
	table  *tview.Table
	detail *CaseDetail

	// mynagaStatus narrows the table client-side; the server list endpoint
	// has no MyNaga-status filter.
	mynagaStatus string

	// visible maps table rows to case IDs for selection handling.
	visible []int64
}

const (
	subpageList   = "list"
	subpageDetail = "detail"
)

func newCasesView(ui *UI) *CasesView {
	v := &CasesView{ui: ui}
	v.detail = newCaseDetail(ui, v)

	v.search = tview.NewInputField().
		SetLabel(" Search: ").
		SetFieldWidth(32)
	v.search.SetFieldBackgroundColor(ui.theme.Surface)
	v.search.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter || key == tcell.KeyEscape {
			term := v.search.GetText()
			ui.store.SetFilters(store.FilterPatch{Search: &term})
			go v.reload(ui.ctx)
			ui.app.SetFocus(v.table)
		}
	})

	v.chip = tview.NewTextView().SetDynamicColors(true)
	v.chip.SetBackgroundColor(ui.theme.Bg)

	filterBar := tview.NewFlex().
		AddItem(v.search, 42, 0, false).
		AddItem(v.chip, 0, 1, false)

	v.table = tview.NewTable()
	v.table.SetTitle(" Cases ")
	v.table.SetBorder(true)
	v.table.SetTitleAlign(tview.AlignLeft)
	v.table.SetBorderColor(ui.theme.Border)
	v.table.SetTitleColor(ui.theme.Header)
	v.table.SetBackgroundColor(ui.theme.Bg)
	v.table.SetSelectable(true, false)
	v.table.SetFixed(1, 0)
	v.table.SetSelectedFunc(func(row, col int) {
		if id, ok := v.caseIDAt(row); ok {
			v.detail.openView(id)
		}
	})
	v.table.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch {
		case event.Rune() == 'n':
			v.detail.openNew()
			return nil
		case event.Rune() == '/':
			ui.app.SetFocus(v.search)
			return nil
		case event.Rune() == 'x' || event.Key() == tcell.KeyDelete:
			if id, ok := v.caseIDAt(v.currentRow()); ok {
				v.confirmDelete(id)
			}
			return nil
		case event.Key() == tcell.KeyEscape:
			if v.mynagaStatus != "" {
				v.setMyNagaFilter("")
			}
			return nil
		}
		return event
	})

	v.list = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(filterBar, 1, 0, false).
		AddItem(v.table, 0, 1, true)

	v.root = tview.NewPages().
		AddPage(subpageList, v.list, true, true).
		AddPage(subpageDetail, v.detail.root, true, false)

	v.render()
	return v
}

func (v *CasesView) currentRow() int {
	row, _ := v.table.GetSelection()
	return row
}

func (v *CasesView) caseIDAt(row int) (int64, bool) {
	idx := row - 1
	if idx < 0 || idx >= len(v.visible) {
		return 0, false
	}
	return v.visible[idx], true
}

// reload fetches the case list under the store's current filters and replaces
// the collection. Safe off the draw goroutine.
func (v *CasesView) reload(ctx context.Context) {
	f := v.ui.store.Filters()
	cases, err := v.ui.client.ListCases(ctx, api.ListCasesOptions{
		Status:   f.Status,
		Category: f.Category,
		Barangay: f.Barangay,
		Search:   f.Search,
	})
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		v.ui.logger.Printf("[WARN] case reload failed: %v", err)
		v.ui.setStatusAsync("[%s]failed to load cases: %v", v.ui.theme.TagError, err)
		return
	}
	v.ui.store.SetCases(cases)
	v.ui.setStatusAsync("loaded %d cases", len(cases))
}

// setMyNagaFilter narrows or clears the client-side MyNaga status filter.
func (v *CasesView) setMyNagaFilter(status string) {
	v.mynagaStatus = status
	v.render()
}

// visibleCases applies the MyNaga status chip on top of the store contents.
func (v *CasesView) visibleCases() []api.Case {
	cases := v.ui.store.Cases()
	if v.mynagaStatus == "" {
		return cases
	}
	out := make([]api.Case, 0, len(cases))
	for _, c := range cases {
		if c.MyNagaAppStatus == v.mynagaStatus {
			out = append(out, c)
		}
	}
	return out
}

func (v *CasesView) render() {
	cases := v.visibleCases()

	if v.mynagaStatus == "" {
		v.chip.SetText("")
	} else {
		v.chip.SetText(fmt.Sprintf("  [%s]MyNaga: %s[-] (Esc clears)",
			v.ui.theme.TagAccent, v.mynagaStatus))
	}

	v.table.Clear()
	headers := []string{"Control No", "Date", "Category", "Barangay", "Office", "MyNaga Status", "Status"}
	for col, h := range headers {
		v.table.SetCell(0, col, tview.NewTableCell(h).
			SetTextColor(v.ui.theme.Header).
			SetAttributes(tcell.AttrBold).
			SetSelectable(false))
	}

	v.visible = v.visible[:0]
	for i, c := range cases {
		row := i + 1
		v.visible = append(v.visible, c.ID)

		date := ""
		if !c.DateCreated.IsZero() {
			date = c.DateCreated.Format("2006-01-02")
		}
		v.table.SetCell(row, 0, tview.NewTableCell(c.ControlNo).SetTextColor(v.ui.theme.TextPrimary))
		v.table.SetCell(row, 1, tview.NewTableCell(date).SetTextColor(v.ui.theme.TextMuted))
		v.table.SetCell(row, 2, tview.NewTableCell(c.Category).SetTextColor(v.ui.theme.TextPrimary))
		v.table.SetCell(row, 3, tview.NewTableCell(c.Barangay).SetTextColor(v.ui.theme.TextPrimary))
		v.table.SetCell(row, 4, tview.NewTableCell(c.Office).SetTextColor(v.ui.theme.TextMuted))
		v.table.SetCell(row, 5, tview.NewTableCell(c.MyNagaAppStatus).SetTextColor(v.ui.theme.TextMuted))
		v.table.SetCell(row, 6, tview.NewTableCell(c.Status).SetTextColor(v.statusColor(c.Status)))
	}
	v.table.SetTitle(fmt.Sprintf(" Cases (%d) ", len(cases)))
}

func (v *CasesView) statusColor(status string) tcell.Color {
	switch strings.ToLower(status) {
	case strings.ToLower(api.StatusResolved):
		return v.ui.theme.StatusResolved
	case strings.ToLower(api.StatusForRerouting):
		return v.ui.theme.StatusRerouting
	default:
		return v.ui.theme.StatusOpen
	}
}

// confirmDelete asks before deleting. The store entry is removed only after
// the API confirms the delete.
func (v *CasesView) confirmDelete(id int64) {
	c, ok := v.ui.store.CaseByID(id)
	if !ok {
		return
	}
	const page = "confirm-delete"
	modal := tview.NewModal().
		SetText(fmt.Sprintf("Delete case %s?", c.ControlNo)).
		AddButtons([]string{"Delete", "Cancel"}).
		SetDoneFunc(func(idx int, label string) {
			v.ui.pages.RemovePage(page)
			v.ui.app.SetFocus(v.table)
			if label != "Delete" {
				return
			}
			go func() {
				if err := v.ui.client.DeleteCase(v.ui.ctx, id); err != nil {
					v.ui.setStatusAsync("[%s]delete failed: %v", v.ui.theme.TagError, err)
					return
				}
				v.ui.store.DeleteCase(id)
				v.ui.setStatusAsync("deleted case %s", c.ControlNo)
			}()
		})
	v.ui.pages.AddPage(page, modal, true, true)
	v.ui.app.SetFocus(modal)
}

// showDetail/showList flip between the listing and the detail surface.
func (v *CasesView) showDetail() {
	v.root.SwitchToPage(subpageDetail)
	v.detail.focus()
}

func (v *CasesView) showList() {
	v.root.SwitchToPage(subpageList)
	v.ui.app.SetFocus(v.table)
}
