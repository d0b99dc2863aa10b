package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/vanderheijden86/stockpile/pkg/api"
	"github.com/vanderheijden86/stockpile/pkg/model"
	"github.com/vanderheijden86/stockpile/pkg/query"
)

// InventoryPage is the paginated item listing.
type InventoryPage struct {
	search    textinput.Model
	searching bool

	page         int // 1-based
	pageSize     int
	labelIDs     []string
	locationID   string
	locationName string

	result  model.PaginationResult[model.ItemSummary]
	loaded  bool
	loading bool
	err     error

	cursor        int
	selected      map[string]bool
	confirmDelete bool
}

// NewInventoryPage creates the listing with the given page size.
func NewInventoryPage(pageSize int) InventoryPage {
	if pageSize <= 0 {
		pageSize = 8
	}
	ti := textinput.New()
	ti.Prompt = "/"
	ti.Placeholder = "search items"
	ti.CharLimit = 100
	return InventoryPage{
		search:   ti,
		page:     1,
		pageSize: pageSize,
		selected: make(map[string]bool),
	}
}

// Query returns the listing parameters for the current page.
func (ip InventoryPage) Query() model.ItemQuery {
	q := model.ItemQuery{
		Q:        strings.TrimSpace(ip.search.Value()),
		Page:     ip.page,
		PageSize: ip.pageSize,
		Labels:   ip.labelIDs,
	}
	if ip.locationID != "" {
		q.Locations = []string{ip.locationID}
	}
	return q
}

// TotalPages returns the number of pages for the current result.
func (ip InventoryPage) TotalPages() int {
	return ip.result.TotalPages(ip.pageSize)
}

// Items returns the rows of the current page.
func (ip InventoryPage) Items() []model.ItemSummary {
	return ip.result.Items
}

// SelectedIDs returns the checked item ids in row order.
func (ip InventoryPage) SelectedIDs() []string {
	var ids []string
	for _, it := range ip.result.Items {
		if ip.selected[it.ID] {
			ids = append(ids, it.ID)
		}
	}
	return ids
}

// AllSelected reports whether every row of the page is checked.
func (ip InventoryPage) AllSelected() bool {
	if len(ip.result.Items) == 0 {
		return false
	}
	for _, it := range ip.result.Items {
		if !ip.selected[it.ID] {
			return false
		}
	}
	return true
}

// ToggleAll checks every row, or clears them all when all are checked.
func (ip *InventoryPage) ToggleAll() {
	all := ip.AllSelected()
	ip.selected = make(map[string]bool)
	if all {
		return
	}
	for _, it := range ip.result.Items {
		ip.selected[it.ID] = true
	}
}

// ToggleCursor checks or unchecks the row under the cursor.
func (ip *InventoryPage) ToggleCursor() {
	it := ip.cursorItem()
	if it == nil {
		return
	}
	if ip.selected[it.ID] {
		delete(ip.selected, it.ID)
	} else {
		ip.selected[it.ID] = true
	}
}

func (ip InventoryPage) cursorItem() *model.ItemSummary {
	if ip.cursor < 0 || ip.cursor >= len(ip.result.Items) {
		return nil
	}
	return &ip.result.Items[ip.cursor]
}

// ══════════════════════════════════════════════════════════════════════════════
// FETCHING
// ══════════════════════════════════════════════════════════════════════════════

// fetchItems shows the current listing, fetching it unless the store
// holds a fresh copy.
func (m Model) fetchItems() (Model, tea.Cmd) {
	q := m.inventory.Query()
	key := q.Key()
	v, cached := m.queries.Get(key)
	if !m.queries.NeedsFetch(key) {
		if cached {
			m.inventory.setPage(v.(model.PaginationResult[model.ItemSummary]))
		} else {
			m.inventory.loading = true
		}
		return m, nil
	}
	t := m.queries.Begin(key)
	m.inventory.loading = true
	if cached {
		m.inventory.result = v.(model.PaginationResult[model.ItemSummary])
		m.inventory.loaded = true
	}
	return m, fetchItemsCmd(m.ctx, m.backend, t, q)
}

func (m Model) handleItemsPage(msg itemsPageMsg) (Model, tea.Cmd) {
	if !m.queries.Commit(msg.ticket, msg.page, msg.err) {
		return m, nil
	}
	ip := &m.inventory
	if msg.ticket.Key != ip.Query().Key() {
		// a different listing was asked for since; keep it cached only
		return m, nil
	}
	if msg.err != nil {
		ip.loading = false
		ip.err = msg.err
		return m.fetchFailed(msg.err, "Could not load items")
	}
	ip.setPage(msg.page)
	return m, nil
}

// setPage shows one committed page of the listing.
func (ip *InventoryPage) setPage(page model.PaginationResult[model.ItemSummary]) {
	ip.loading = false
	ip.err = nil
	ip.result = page
	ip.loaded = true
	if ip.result.Items == nil {
		ip.result.Items = []model.ItemSummary{}
	}
	if ip.cursor >= len(ip.result.Items) {
		ip.cursor = max(len(ip.result.Items)-1, 0)
	}
	// drop checks for rows no longer on the page
	onPage := make(map[string]bool, len(ip.result.Items))
	for _, it := range ip.result.Items {
		onPage[it.ID] = true
	}
	for id := range ip.selected {
		if !onPage[id] {
			delete(ip.selected, id)
		}
	}
}

// showInventoryFor switches to the listing filtered to one location.
func (m Model) showInventoryFor(locationID, name string) (Model, tea.Cmd) {
	m.inventory.locationID = locationID
	m.inventory.locationName = name
	m.inventory.page = 1
	m.inventory.cursor = 0
	return m.switchPage(pageInventory)
}

// ══════════════════════════════════════════════════════════════════════════════
// KEYS
// ══════════════════════════════════════════════════════════════════════════════

func (m Model) handleInventoryKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	ip := &m.inventory

	if ip.searching {
		switch msg.String() {
		case "enter":
			ip.searching = false
			ip.search.Blur()
			ip.page = 1
			ip.cursor = 0
			return m.fetchItems()
		case "esc":
			ip.searching = false
			ip.search.Blur()
			return m, nil
		}
		ip.search, _ = ip.search.Update(msg)
		return m, nil
	}

	if ip.confirmDelete {
		ip.confirmDelete = false
		if msg.String() != "y" && msg.String() != "Y" {
			m.setStatus("Delete cancelled", false)
			return m, nil
		}
		return m, m.deleteItems(m.deleteTargets())
	}

	switch msg.String() {
	case "j", "down":
		if ip.cursor < len(ip.result.Items)-1 {
			ip.cursor++
		}
	case "k", "up":
		if ip.cursor > 0 {
			ip.cursor--
		}
	case "g", "home":
		ip.cursor = 0
	case "G", "end":
		ip.cursor = max(len(ip.result.Items)-1, 0)
	case "right", "l", "]":
		if ip.page < ip.TotalPages() {
			ip.page++
			ip.cursor = 0
			return m.fetchItems()
		}
	case "left", "h", "[":
		if ip.page > 1 {
			ip.page--
			ip.cursor = 0
			return m.fetchItems()
		}
	case "/":
		ip.searching = true
		ip.search.Focus()
	case "esc":
		if ip.search.Value() != "" || ip.locationID != "" || len(ip.labelIDs) > 0 {
			return m.clearInventoryFilters()
		}
	case "x":
		return m.clearInventoryFilters()
	case " ":
		ip.ToggleCursor()
	case "A":
		ip.ToggleAll()
	case "enter":
		if it := ip.cursorItem(); it != nil {
			id := it.ID
			return m, func() tea.Msg { return openItemMsg{id: id, from: pageInventory} }
		}
	case "d":
		if len(m.deleteTargets()) > 0 {
			ip.confirmDelete = true
		}
	case "f":
		return m.openLabelPicker()
	case "r":
		m.setStatus("Reloading…", false)
		m.queries.Invalidate(ip.Query().Key())
		return m.fetchItems()
	}
	return m, nil
}

func (m Model) clearInventoryFilters() (Model, tea.Cmd) {
	ip := &m.inventory
	ip.search.SetValue("")
	ip.labelIDs = nil
	ip.locationID, ip.locationName = "", ""
	ip.page = 1
	ip.cursor = 0
	m.labelPicker.SetChecked(nil)
	return m.fetchItems()
}

// deleteTargets returns the checked items, or the item under the cursor.
func (m Model) deleteTargets() []string {
	if ids := m.inventory.SelectedIDs(); len(ids) > 0 {
		return ids
	}
	if it := m.inventory.cursorItem(); it != nil {
		return []string{it.ID}
	}
	return nil
}

func (m Model) deleteItems(ids []string) tea.Cmd {
	if len(ids) == 0 {
		return nil
	}
	status := fmt.Sprintf("Deleted %d items", len(ids))
	if len(ids) == 1 {
		status = "Deleted 1 item"
	}
	invalidate := []string{query.PrefixItems, query.PrefixItem, query.PrefixLocItems, query.KeyLocationsTree}
	return mutate(status, invalidate, func() (string, error) {
		for _, id := range ids {
			if err := m.backend.DeleteItem(m.ctx, id); err != nil {
				return "", err
			}
		}
		return "", nil
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// RENDERING
// ══════════════════════════════════════════════════════════════════════════════

func (m Model) renderInventory(width, height int) string {
	ip := &m.inventory
	t := m.theme

	if ip.err != nil && !ip.loaded {
		return m.renderPageError(width, height, "Could not load items", ip.err)
	}

	var sb strings.Builder

	// filter line
	var filters []string
	if q := strings.TrimSpace(ip.search.Value()); q != "" || ip.searching {
		if ip.searching {
			filters = append(filters, ip.search.View())
		} else {
			filters = append(filters, t.PrimaryBold.Render("/"+q))
		}
	}
	if ip.locationName != "" {
		filters = append(filters, t.SecondaryText.Render("in ")+ip.locationName)
	}
	for _, id := range ip.labelIDs {
		name, color := id, ""
		for _, l := range m.labels.labels {
			if l.ID == id {
				name, color = l.Name, l.Color
			}
		}
		filters = append(filters, RenderLabelChip(name, color))
	}
	if len(filters) == 0 {
		filters = append(filters, t.MutedText.Render("/ search   f labels"))
	}
	sb.WriteString(strings.Join(filters, "  "))
	sb.WriteString("\n")

	// header
	nameW := width - 4 - 6 - 24 - 12 - 4
	if nameW < 12 {
		nameW = 12
	}
	header := fmt.Sprintf(" %s %s %s %s %s",
		RenderCheckbox(ip.AllSelected()),
		fit("NAME", nameW), fit("QTY", 6), fit("LOCATION", 24), fit("PRICE", 12))
	sb.WriteString(t.Header.Width(width).Render(header))
	sb.WriteString("\n")

	if ip.loaded && len(ip.result.Items) == 0 {
		sb.WriteString(t.MutedText.Render("  No items found."))
		sb.WriteString("\n")
	}
	for i, it := range ip.result.Items {
		loc := "—"
		if it.Location != nil {
			loc = it.Location.Name
		}
		line := fmt.Sprintf(" %s %s %s %s %s",
			RenderCheckbox(ip.selected[it.ID]),
			fit(it.Name, nameW),
			fit(fmt.Sprintf("%d", it.Quantity), 6),
			fit(loc, 24),
			fit(FormatPrice(it.PurchasePrice), 12))
		if i == ip.cursor {
			line = t.Selected.Render(line)
		}
		sb.WriteString(line)
		sb.WriteString("\n")
		if len(it.Labels) > 0 && height > 2*len(ip.result.Items)+6 {
			var chips []string
			for _, l := range it.Labels {
				chips = append(chips, RenderLabelChip(l.Name, l.Color))
			}
			sb.WriteString("     " + strings.Join(chips, " "))
			sb.WriteString("\n")
		}
	}

	sb.WriteString("\n")
	pageInfo := fmt.Sprintf("Page %d/%d · %d items", ip.page, ip.TotalPages(), ip.result.Total)
	if n := len(ip.SelectedIDs()); n > 0 {
		pageInfo += fmt.Sprintf(" · %d selected", n)
	}
	if ip.loading {
		pageInfo = m.spinner.View() + " " + pageInfo
	}
	sb.WriteString(t.SecondaryText.Render(pageInfo))

	if ip.err != nil {
		sb.WriteString("\n")
		sb.WriteString(t.ErrorText.Render("✗ " + api.Message(ip.err, "refresh failed") + "  (r: retry)"))
	}

	if ip.confirmDelete {
		n := len(m.deleteTargets())
		what := "this item"
		if n > 1 {
			what = fmt.Sprintf("%d items", n)
		}
		box := t.Renderer.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Danger).
			Padding(1, 3).
			Render(t.ErrorText.Render("Delete "+what+"?") + "\n\n" +
				t.PrimaryBold.Render("y") + " delete   " + t.PrimaryBold.Render("any other key") + " cancel")
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
	}
	return sb.String()
}
