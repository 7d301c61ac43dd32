package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/nagacity/mynaga-console/internal/api"
	"github.com/nagacity/mynaga-console/internal/media"
)

type detailMode int

const (
	modeClosed detailMode = iota
	modeView
	modeEdit
)

// CaseDetail is the single-case surface. It is closed until a case is opened
// (read-only view) or a new case is started (edit). Editing an existing case
// returns to the view on cancel; cancelling a new case closes the surface.
type CaseDetail struct {
	ui    *UI
	cases *CasesView

	root     *tview.Pages
	viewBody *tview.TextView
	gallery  *tview.List
	viewFlex *tview.Flex
	form     *tview.Form

	mode       detailMode
	current    api.Case
	draft      api.Case
	reportLink string
	submitting bool
	errMsg     string
	mediaRefs  []string
}

const (
	detailPageView = "view"
	detailPageEdit = "edit"
)

func newCaseDetail(ui *UI, cases *CasesView) *CaseDetail {
	d := &CaseDetail{ui: ui, cases: cases}

	d.viewBody = tview.NewTextView().SetDynamicColors(true).SetWrap(true)
	d.viewBody.SetTitle(" Case ")
	d.viewBody.SetBorder(true)
	d.viewBody.SetTitleAlign(tview.AlignLeft)
	d.viewBody.SetBorderColor(ui.theme.Border)
	d.viewBody.SetTitleColor(ui.theme.Header)
	d.viewBody.SetBackgroundColor(ui.theme.Bg)

	d.gallery = tview.NewList().ShowSecondaryText(true)
	d.gallery.SetTitle(" Attached Media ")
	d.gallery.SetBorder(true)
	d.gallery.SetTitleAlign(tview.AlignLeft)
	d.gallery.SetBorderColor(ui.theme.Border)
	d.gallery.SetTitleColor(ui.theme.Header)
	d.gallery.SetBackgroundColor(ui.theme.Bg)
	d.gallery.SetSelectedFunc(func(idx int, main, secondary string, r rune) {
		d.openLightbox(idx)
	})

	d.viewFlex = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(d.viewBody, 0, 2, true).
		AddItem(d.gallery, 0, 1, false)
	d.viewFlex.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch {
		case event.Rune() == 'e':
			d.openEdit()
			return nil
		case event.Rune() == 'u':
			d.openUpdateForm()
			return nil
		case event.Key() == tcell.KeyEscape || event.Rune() == 'q':
			d.close()
			return nil
		case event.Key() == tcell.KeyTab:
			if d.ui.app.GetFocus() == d.gallery {
				d.ui.app.SetFocus(d.viewBody)
			} else {
				d.ui.app.SetFocus(d.gallery)
			}
			return nil
		}
		return event
	})

	d.form = tview.NewForm()

	d.root = tview.NewPages().
		AddPage(detailPageView, d.viewFlex, true, true).
		AddPage(detailPageEdit, d.form, true, false)

	return d
}

// capturing reports whether the detail surface wants plain keystrokes for
// itself, so global shortcuts must stand down.
func (d *CaseDetail) capturing() bool {
	return d.mode == modeEdit
}

// openNew starts a blank case in edit mode.
func (d *CaseDetail) openNew() {
	d.current = api.Case{}
	d.draft = api.Case{}
	d.reportLink = ""
	d.errMsg = ""
	d.mode = modeEdit
	d.buildForm()
	d.root.SwitchToPage(detailPageEdit)
	d.cases.showDetail()
}

// openView opens an existing case read-only and kicks off the report-link
// lookup in the background.
func (d *CaseDetail) openView(id int64) {
	c, ok := d.ui.store.CaseByID(id)
	if !ok {
		return
	}
	d.current = c
	d.reportLink = ""
	d.errMsg = ""
	d.mode = modeView
	d.renderView()
	d.root.SwitchToPage(detailPageView)
	d.cases.showDetail()

	if c.ControlNo != "" {
		go d.fetchReportLink(c.ControlNo)
	}
}

// fetchReportLink resolves the MyNaga deep link. An unknown report is a
// normal outcome, not an error.
func (d *CaseDetail) fetchReportLink(controlNo string) {
	res, err := d.ui.client.ReportLink(d.ui.ctx, controlNo)
	link := ""
	switch {
	case err != nil:
		d.ui.logger.Printf("[WARN] report link lookup failed for %s: %v", controlNo, err)
		link = "(lookup failed)"
	case !res.Success || res.Link == "":
		link = "(not available in MyNaga app)"
	default:
		link = res.Link
	}
	d.ui.app.QueueUpdateDraw(func() {
		if d.mode != modeClosed && d.current.ControlNo == controlNo {
			d.reportLink = link
			d.renderView()
		}
	})
}

// openEdit switches the currently viewed case into edit mode on a draft copy.
func (d *CaseDetail) openEdit() {
	if d.mode != modeView {
		return
	}
	d.draft = d.current
	d.errMsg = ""
	d.mode = modeEdit
	d.buildForm()
	d.root.SwitchToPage(detailPageEdit)
	d.focus()
}

// cancelEdit leaves edit mode: back to the view for an existing case, closed
// for a never-saved one.
func (d *CaseDetail) cancelEdit() {
	if d.submitting {
		return
	}
	if d.current.ID != 0 {
		d.mode = modeView
		d.renderView()
		d.root.SwitchToPage(detailPageView)
		d.focus()
		return
	}
	d.close()
}

func (d *CaseDetail) close() {
	d.mode = modeClosed
	d.cases.showList()
}

func (d *CaseDetail) focus() {
	switch d.mode {
	case modeEdit:
		d.ui.app.SetFocus(d.form)
	default:
		d.ui.app.SetFocus(d.viewFlex)
	}
}

// renderIfOpen re-renders the read-only view, e.g. after the office catalog
// arrives. Never touches an in-progress edit.
func (d *CaseDetail) renderIfOpen() {
	if d.mode == modeView {
		d.renderView()
	}
}

func (d *CaseDetail) renderView() {
	c := d.current
	t := d.ui.theme

	var b strings.Builder
	line := func(label, value string) {
		if value == "" {
			value = fmt.Sprintf("[%s]-[-]", t.TagMuted)
		}
		fmt.Fprintf(&b, " [%s]%-16s[-] %s\n", t.TagMuted, label, value)
	}

	fmt.Fprintf(&b, "\n [%s]%s[-]\n\n", t.TagAccent, c.ControlNo)
	line("Status", c.Status)
	line("MyNaga Status", c.MyNagaAppStatus)
	line("Category", c.Category)
	line("Refined", c.RefinedCategory)
	line("Barangay", c.Barangay)
	line("Location", c.SenderLocation)
	line("Cluster", c.Cluster)
	line("Office", c.Office)
	line("Reported By", c.ReportedBy)
	line("Contact", c.ContactNumber)
	if !c.DateCreated.IsZero() {
		line("Created", c.DateCreated.Format("2006-01-02 15:04"))
	}
	if c.CaseAging > 0 {
		line("Case Aging", fmt.Sprintf("%d days", c.CaseAging))
	}
	fmt.Fprintf(&b, "\n [%s]Description[-]\n %s\n", t.TagMuted, c.Description)
	if c.UpdatesSentToUser != "" {
		fmt.Fprintf(&b, "\n [%s]Updates Sent[-]\n %s\n", t.TagMuted, c.UpdatesSentToUser)
	}
	if len(c.Tags) > 0 {
		names := make([]string, 0, len(c.Tags))
		for _, tag := range c.Tags {
			names = append(names, tag.TagName)
		}
		line("Tags", strings.Join(names, ", "))
	}
	if d.reportLink != "" {
		fmt.Fprintf(&b, "\n [%s]MyNaga Link[-]  %s\n", t.TagMuted, d.reportLink)
	}
	if len(c.Updates) > 0 {
		fmt.Fprintf(&b, "\n [%s]Status Updates[-]\n", t.TagMuted)
		for _, u := range c.Updates {
			stamp := ""
			if !u.UpdateTimestamp.IsZero() {
				stamp = u.UpdateTimestamp.Format("2006-01-02 15:04")
			}
			fmt.Fprintf(&b, " [%s]%s %s[-] %s\n", t.TagMuted, stamp, u.UpdatedBy, u.UpdateText)
			if u.StatusAfterUpdate != "" {
				fmt.Fprintf(&b, "   [%s]-> %s[-]\n", t.TagAccent, u.StatusAfterUpdate)
			}
		}
	}
	fmt.Fprintf(&b, "\n [%s]e edit | u add update | Tab media | Esc back[-]\n", t.TagMuted)

	d.viewBody.SetTitle(fmt.Sprintf(" Case %s ", c.ControlNo))
	d.viewBody.SetText(b.String())

	d.renderGallery()
}

// renderGallery lists each media reference with its detected kind. A
// reference that cannot be resolved still renders as its own entry; one bad
// token never hides the rest.
func (d *CaseDetail) renderGallery() {
	d.gallery.Clear()
	d.mediaRefs = media.Split(d.current.AttachedMedia)
	if len(d.mediaRefs) == 0 {
		d.gallery.AddItem("(no attached media)", "", 0, nil)
		return
	}
	for _, ref := range d.mediaRefs {
		kind := media.DetectKind(ref)
		d.gallery.AddItem(
			fmt.Sprintf("[%s] %s", kind, media.Filename(ref)),
			d.ui.resolver.URL(ref),
			0, nil)
	}
}

// openLightbox shows a single media entry full-panel with the URL that a
// viewer would fetch, so a broken reference is inspectable.
func (d *CaseDetail) openLightbox(idx int) {
	if idx < 0 || idx >= len(d.mediaRefs) {
		return
	}
	ref := d.mediaRefs[idx]
	const page = "lightbox"
	modal := tview.NewModal().
		SetText(fmt.Sprintf("%s (%s)\n\n%s",
			media.Filename(ref), media.DetectKind(ref), d.ui.resolver.URL(ref))).
		AddButtons([]string{"Close"}).
		SetDoneFunc(func(int, string) {
			d.ui.pages.RemovePage(page)
			d.ui.app.SetFocus(d.gallery)
		})
	d.ui.pages.AddPage(page, modal, true, true)
	d.ui.app.SetFocus(modal)
}

// buildForm rebuilds the edit form from the draft. Dropdown options come from
// the live catalogs; office codes are never hardcoded client-side.
func (d *CaseDetail) buildForm() {
	d.form.Clear(true)

	title := " New Case "
	if d.draft.ID != 0 {
		title = fmt.Sprintf(" Edit Case %s ", d.draft.ControlNo)
	}
	d.form.SetTitle(title)
	d.form.SetBorder(true)
	d.form.SetTitleAlign(tview.AlignLeft)
	d.form.SetBorderColor(d.ui.theme.FocusBorder)
	d.form.SetTitleColor(d.ui.theme.Header)
	d.form.SetBackgroundColor(d.ui.theme.Bg)
	d.form.SetFieldBackgroundColor(d.ui.theme.Surface)

	if d.draft.ID == 0 {
		d.form.AddInputField("Control No", d.draft.ControlNo, 24, nil, func(text string) {
			d.draft.ControlNo = text
		})
	}
	d.form.AddInputField("Category", d.draft.Category, 32, nil, func(text string) {
		d.draft.Category = text
	})
	d.form.AddInputField("Refined Category", d.draft.RefinedCategory, 32, nil, func(text string) {
		d.draft.RefinedCategory = text
	})
	d.form.AddInputField("Barangay", d.draft.Barangay, 32, nil, func(text string) {
		d.draft.Barangay = text
	})
	d.form.AddInputField("Sender Location", d.draft.SenderLocation, 48, nil, func(text string) {
		d.draft.SenderLocation = text
	})
	d.form.AddInputField("Description", d.draft.Description, 64, nil, func(text string) {
		d.draft.Description = text
	})
	d.form.AddInputField("Reported By", d.draft.ReportedBy, 32, nil, func(text string) {
		d.draft.ReportedBy = text
	})
	d.form.AddInputField("Contact Number", d.draft.ContactNumber, 20, nil, func(text string) {
		d.draft.ContactNumber = text
	})

	officeOptions, officeIdx := officeChoices(d.ui.store.Offices(), d.draft.Office)
	d.form.AddDropDown("Office", officeOptions, officeIdx, func(option string, _ int) {
		if option == "(none)" {
			d.draft.Office = ""
		} else {
			d.draft.Office = option
		}
	})

	statusIdx := indexOf(api.CaseStatuses, d.draft.Status)
	if statusIdx < 0 {
		statusIdx = 0
	}
	d.form.AddDropDown("Status", api.CaseStatuses, statusIdx, func(option string, _ int) {
		d.draft.Status = option
	})

	mnOptions := append([]string{"(none)"}, api.MyNagaStatuses...)
	mnIdx := 0
	if i := indexOf(api.MyNagaStatuses, d.draft.MyNagaAppStatus); i >= 0 {
		mnIdx = i + 1
	}
	d.form.AddDropDown("MyNaga Status", mnOptions, mnIdx, func(option string, _ int) {
		if option == "(none)" {
			d.draft.MyNagaAppStatus = ""
		} else {
			d.draft.MyNagaAppStatus = option
		}
	})

	d.form.AddInputField("Updates Sent To User", d.draft.UpdatesSentToUser, 64, nil, func(text string) {
		d.draft.UpdatesSentToUser = text
	})

	d.form.AddButton("Save", d.submit)
	d.form.AddButton("Cancel", d.cancelEdit)
	d.form.SetCancelFunc(d.cancelEdit)

	if d.errMsg != "" {
		d.form.SetTitle(fmt.Sprintf("%s- [%s]%s[-] ", title, d.ui.theme.TagError, tview.Escape(d.errMsg)))
	}
}

func officeChoices(offices []api.Office, selected string) ([]string, int) {
	options := []string{"(none)"}
	idx := 0
	for _, o := range offices {
		label := o.Name
		if label == "" {
			label = o.Code
		}
		options = append(options, label)
		if label == selected {
			idx = len(options) - 1
		}
	}
	return options, idx
}

func indexOf(options []string, value string) int {
	for i, o := range options {
		if o == value {
			return i
		}
	}
	return -1
}

// submit saves the draft: a draft without an identity is created, one with an
// identity is updated. On success the store absorbs the result and the edit
// closes; on failure the edit stays open with the server's message.
func (d *CaseDetail) submit() {
	if d.submitting {
		return
	}
	d.submitting = true
	draft := d.draft

	go func() {
		saved, created, err := saveCase(d.ui.ctx, d.ui.client, draft)

		d.ui.app.QueueUpdateDraw(func() {
			d.submitting = false
			if err != nil {
				d.errMsg = errorDetail(err)
				d.buildForm()
				d.focus()
				return
			}
			if created {
				d.ui.store.AddCase(*saved)
				d.ui.setStatus("created case %s", saved.ControlNo)
				d.close()
				return
			}
			d.ui.store.UpdateCase(draft.ID, draft.Patch())
			if c, ok := d.ui.store.CaseByID(draft.ID); ok {
				d.current = c
			}
			d.ui.setStatus("updated case %s", d.current.ControlNo)
			d.mode = modeView
			d.renderView()
			d.root.SwitchToPage(detailPageView)
			d.focus()
		})
	}()
}

// openUpdateForm posts a progress note on the viewed case; an optional
// status-after moves the internal status server-side. On success the case is
// refetched so the timeline and any server-driven changes land in the store.
func (d *CaseDetail) openUpdateForm() {
	if d.mode != modeView {
		return
	}
	caseID := d.current.ID

	var text, updatedBy, statusAfter string
	const page = "status-update"

	form := tview.NewForm().
		AddInputField("Update", "", 64, nil, func(v string) { text = v }).
		AddInputField("Updated By", "", 32, nil, func(v string) { updatedBy = v }).
		AddDropDown("Status After", append([]string{"(unchanged)"}, api.CaseStatuses...), 0, func(option string, _ int) {
			if option == "(unchanged)" {
				statusAfter = ""
			} else {
				statusAfter = option
			}
		})
	form.SetTitle(" Add Status Update ")
	form.SetBorder(true)
	form.SetTitleAlign(tview.AlignLeft)
	form.SetBorderColor(d.ui.theme.FocusBorder)
	form.SetTitleColor(d.ui.theme.Header)
	form.SetBackgroundColor(d.ui.theme.Bg)
	form.SetFieldBackgroundColor(d.ui.theme.Surface)

	closeForm := func() {
		d.ui.pages.RemovePage(page)
		d.focus()
	}
	form.AddButton("Post", func() {
		if strings.TrimSpace(text) == "" {
			d.ui.setStatus("[%s]update text is required", d.ui.theme.TagError)
			return
		}
		closeForm()
		go func() {
			_, err := d.ui.client.AddStatusUpdate(d.ui.ctx, caseID, api.StatusUpdate{
				UpdateText:        text,
				UpdatedBy:         updatedBy,
				StatusAfterUpdate: statusAfter,
			})
			if err != nil {
				d.ui.setStatusAsync("[%s]status update failed: %s", d.ui.theme.TagError, errorDetail(err))
				return
			}
			fresh, err := d.ui.client.GetCase(d.ui.ctx, caseID)
			if err != nil {
				d.ui.setStatusAsync("posted update, refetch failed: %s", errorDetail(err))
				return
			}
			d.ui.store.UpdateCase(caseID, fresh.Patch())
			d.ui.app.QueueUpdateDraw(func() {
				if d.mode == modeView && d.current.ID == caseID {
					d.current.Updates = fresh.Updates
					if c, ok := d.ui.store.CaseByID(caseID); ok {
						c.Updates = fresh.Updates
						d.current = c
					}
					d.renderView()
				}
			})
			d.ui.setStatusAsync("posted status update")
		}()
	})
	form.AddButton("Cancel", closeForm)
	form.SetCancelFunc(closeForm)

	d.ui.pages.AddPage(page, modalWrap(form, 70, 11), true, true)
	d.ui.app.SetFocus(form)
}

// modalWrap centers a primitive at a fixed size over the current page.
func modalWrap(p tview.Primitive, width, height int) tview.Primitive {
	return tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().SetDirection(tview.FlexRow).
			AddItem(nil, 0, 1, false).
			AddItem(p, height, 0, true).
			AddItem(nil, 0, 1, false), width, 0, true).
		AddItem(nil, 0, 1, false)
}

// saveCase creates the draft when it has no identity yet and applies a
// partial update otherwise.
func saveCase(ctx context.Context, client *api.Client, draft api.Case) (saved *api.Case, created bool, err error) {
	if draft.ID == 0 {
		saved, err = client.CreateCase(ctx, draft)
		return saved, true, err
	}
	saved, err = client.UpdateCase(ctx, draft.ID, draft.Patch())
	return saved, false, err
}

// errorDetail prefers the server's detail message over the wrapped chain.
func errorDetail(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return apiErr.Detail
	}
	return err.Error()
}
