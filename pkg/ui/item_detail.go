package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/vanderheijden86/stockpile/pkg/api"
	"github.com/vanderheijden86/stockpile/pkg/model"
	"github.com/vanderheijden86/stockpile/pkg/query"
)

// Item detail tabs.
const (
	tabDetails = iota
	tabAttachments
	tabActivity
)

var itemTabs = []string{"Details", "Attachments", "Activity"}

// ItemDetailPage shows one item.
type ItemDetailPage struct {
	id      string
	from    page
	item    *model.Item
	err     error
	loading bool
	tab     int

	confirmDelete bool

	viewport   viewport.Model
	mdRenderer *glamour.TermRenderer
	mdWidth    int
}

// copyToClipboard is replaced in tests.
var copyToClipboard = clipboard.WriteAll

func (m Model) openItem(id string, from page) (Model, tea.Cmd) {
	d := &m.item
	if d.id != id {
		d.item = nil
		d.err = nil
		d.tab = tabDetails
		d.viewport.GotoTop()
		if v, ok := m.queries.Get(query.ItemKey(id)); ok {
			it := v.(model.Item)
			d.item = &it
		}
	}
	m.refreshItemViewport()
	d.id = id
	d.from = from
	d.confirmDelete = false
	m.prevPage = from
	m.page = pageItem
	key := query.ItemKey(id)
	if !m.queries.NeedsFetch(key) {
		d.loading = d.item == nil
		if d.item != nil {
			d.err = nil
		}
		return m, nil
	}
	d.loading = true
	t := m.queries.Begin(key)
	return m, fetchItemCmd(m.ctx, m.backend, t, id)
}

func (m Model) handleItemLoaded(msg itemLoadedMsg) (Model, tea.Cmd) {
	var v any
	if msg.err == nil {
		v = msg.item
	}
	if !m.queries.Commit(msg.ticket, v, msg.err) {
		return m, nil
	}
	d := &m.item
	if msg.ticket.Key != query.ItemKey(d.id) {
		return m, nil
	}
	d.loading = false
	if msg.err != nil {
		d.err = msg.err
		if errors.Is(msg.err, api.ErrNotFound) {
			d.item = nil
			return m, nil
		}
		return m.fetchFailed(msg.err, "Could not load item")
	}
	d.err = nil
	it := msg.item
	d.item = &it
	m.refreshItemViewport()
	return m, nil
}

func (m Model) handleItemKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	d := &m.item

	if d.confirmDelete {
		d.confirmDelete = false
		if msg.String() != "y" && msg.String() != "Y" {
			m.setStatus("Delete cancelled", false)
			return m, nil
		}
		del := m.deleteItems([]string{d.id})
		return m, func() tea.Msg {
			msg := del().(mutationDoneMsg)
			msg.leave = true
			return msg
		}
	}

	switch msg.String() {
	case "esc", "backspace", "b":
		back := d.from
		if back == pageItem || back == pageLogin {
			back = pageInventory
		}
		m.page = back
		return m, nil
	case "tab", "]":
		d.tab = (d.tab + 1) % len(itemTabs)
		m.refreshItemViewport()
		d.viewport.GotoTop()
	case "shift+tab", "[":
		d.tab = (d.tab - 1 + len(itemTabs)) % len(itemTabs)
		m.refreshItemViewport()
		d.viewport.GotoTop()
	case "r":
		m.queries.Invalidate(query.ItemKey(d.id))
		return m.openItem(d.id, d.from)
	case "d":
		if d.item != nil {
			d.confirmDelete = true
		}
	case "y":
		m.copyField("id", d.id)
	case "Y":
		if d.item != nil && d.item.AssetID != "" {
			m.copyField("asset id", d.item.AssetID)
		} else {
			m.setStatus("Item has no asset id", true)
		}
	case "o":
		if d.item != nil && d.item.Location != nil {
			id := d.item.Location.ID
			var cmd tea.Cmd
			m, cmd = m.switchPage(pageLocations)
			if !m.locations.tree.Select(id) {
				// the tree is still loading
				m.locations.pendingSelect = id
				return m, cmd
			}
			detail := m.showDetail(id)
			return m, tea.Batch(cmd, detail)
		}
	default:
		var cmd tea.Cmd
		d.viewport, cmd = d.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) copyField(what, value string) {
	if err := copyToClipboard(value); err != nil {
		m.setStatus(fmt.Sprintf("Clipboard error: %v", err), true)
		return
	}
	m.setStatus(fmt.Sprintf("Copied %s %s to clipboard", what, value), false)
}

// markdown renders text with glamour, falling back to the raw text.
func (d *ItemDetailPage) markdown(text string, width int) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	if d.mdRenderer == nil || d.mdWidth != width {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return text
		}
		d.mdRenderer = r
		d.mdWidth = width
	}
	out, err := d.mdRenderer.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}

func (m Model) renderItemDetail(width, height int) string {
	d := &m.item
	t := m.theme

	if d.item == nil {
		if d.err != nil {
			title := "Could not load item"
			if errors.Is(d.err, api.ErrNotFound) {
				title = "Item not found"
			}
			return m.renderPageError(width, height, title, d.err) + "\n" +
				t.MutedText.Render("  esc: back to inventory")
		}
		return m.spinner.View() + " " + t.MutedText.Render("Loading item…")
	}
	it := d.item

	var head strings.Builder
	icon, color := t.GetKindIcon(model.KindItem)
	head.WriteString(t.Renderer.NewStyle().Foreground(color).Render(icon) + " " + t.PrimaryBold.Render(it.Name))
	if d.loading {
		head.WriteString(" " + m.spinner.View())
	}
	if it.Archived {
		head.WriteString(" " + t.MutedText.Render("(archived)"))
	}
	head.WriteString("\n")

	var tabs []string
	for i, name := range itemTabs {
		if i == d.tab {
			tabs = append(tabs, t.Header.Render(name))
		} else {
			tabs = append(tabs, t.SecondaryText.Padding(0, 1).Render(name))
		}
	}
	head.WriteString(strings.Join(tabs, " "))
	head.WriteString("\n")
	head.WriteString(RenderDivider(width))

	footer := ""
	if d.err != nil {
		footer = t.ErrorText.Render("✗ " + api.Message(d.err, "refresh failed"))
	}
	if d.confirmDelete {
		footer = t.ErrorText.Render(fmt.Sprintf("Delete %s? ", it.Name)) +
			t.PrimaryBold.Render("y") + " delete   " + t.PrimaryBold.Render("any other key") + " cancel"
	}

	out := head.String() + "\n" + d.viewport.View()
	if footer != "" {
		out += "\n" + footer
	}
	return out
}

// refreshItemViewport renders the active tab into the viewport so that
// scrolling keys act on current content.
func (m *Model) refreshItemViewport() {
	d := &m.item
	if d.item == nil {
		return
	}
	width, height := m.bodySize()
	var body string
	switch d.tab {
	case tabAttachments:
		body = m.renderItemAttachments(d.item, width)
	case tabActivity:
		body = m.renderItemActivity(d.item)
	default:
		body = m.renderItemFields(d.item, width)
	}
	d.viewport.Width = width
	d.viewport.Height = max(height-4, 1) // title, tabs, divider, footer
	d.viewport.SetContent(body)
}

func (m *Model) renderItemFields(it *model.Item, width int) string {
	t := m.theme
	var sb strings.Builder
	row := func(label, value string) {
		if value == "" {
			value = "—"
		}
		sb.WriteString(t.SecondaryText.Render(padRight(label, 16)))
		sb.WriteString(value)
		sb.WriteString("\n")
	}

	loc := ""
	if it.Location != nil {
		loc = it.Location.Name
		if path := m.locations.tree.PathTo(it.Location.ID); len(path) > 1 {
			var names []string
			for _, n := range path {
				names = append(names, n.Name)
			}
			loc = strings.Join(names, " › ")
		}
	}
	row("Location", loc)

	var chips []string
	for _, l := range it.Labels {
		chips = append(chips, RenderLabelChip(l.Name, l.Color))
	}
	row("Labels", strings.Join(chips, " "))
	row("Quantity", fmt.Sprintf("%d", it.Quantity))
	row("Asset ID", it.AssetID)
	row("Purchase price", FormatPrice(it.PurchasePrice))
	row("Purchased", FormatDate(it.PurchaseTime))
	row("Warranty until", FormatDate(it.WarrantyExpires))
	row("Insured", yesNo(it.Insured))
	row("Manufacturer", it.Manufacturer)
	row("Model", it.ModelNumber)
	row("Serial", it.SerialNumber)
	updated := it.UpdatedAt
	row("Updated", FormatDate(&updated))

	for _, f := range it.Fields {
		row(f.Name, fieldValue(f))
	}

	if md := m.item.markdown(it.Description, width-2); md != "" {
		sb.WriteString("\n")
		sb.WriteString(t.SecondaryText.Render("Description"))
		sb.WriteString("\n")
		sb.WriteString(md)
		sb.WriteString("\n")
	}
	if md := m.item.markdown(it.Notes, width-2); md != "" {
		sb.WriteString("\n")
		sb.WriteString(t.SecondaryText.Render("Notes"))
		sb.WriteString("\n")
		sb.WriteString(md)
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m Model) renderItemAttachments(it *model.Item, width int) string {
	t := m.theme
	var sb strings.Builder
	if it.ImageID != "" {
		sb.WriteString(t.SecondaryText.Render(padRight("Image", 16)) + it.ImageID + "\n")
	}
	if it.ThumbnailID != "" {
		sb.WriteString(t.SecondaryText.Render(padRight("Thumbnail", 16)) + it.ThumbnailID + "\n")
	}
	if len(it.Attachments) == 0 && sb.Len() == 0 {
		return t.MutedText.Render("No attachments.")
	}
	for _, a := range it.Attachments {
		title := a.Title
		if title == "" {
			title = a.ID
		}
		created := a.CreatedAt
		sb.WriteString(fmt.Sprintf("%s %s %s\n",
			fit(title, width-30), fit(a.Type, 12), t.MutedText.Render(FormatDate(&created))))
	}
	return sb.String()
}

func (m Model) renderItemActivity(it *model.Item) string {
	t := m.theme
	var sb strings.Builder
	sb.WriteString(t.SecondaryText.Render(padRight("Created", 16)))
	sb.WriteString(fmt.Sprintf("%s (%s)\n", FormatDate(&it.CreatedAt), FormatTimeRel(it.CreatedAt)))
	sb.WriteString(t.SecondaryText.Render(padRight("Last updated", 16)))
	sb.WriteString(fmt.Sprintf("%s (%s)\n", FormatDate(&it.UpdatedAt), FormatTimeRel(it.UpdatedAt)))
	return sb.String()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func fieldValue(f model.ItemField) string {
	switch f.Type {
	case model.FieldNumber:
		return fmt.Sprintf("%g", f.NumberValue)
	case model.FieldBoolean:
		return yesNo(f.BooleanValue)
	default:
		return f.TextValue
	}
}
