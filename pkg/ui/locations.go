package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/vanderheijden86/stockpile/pkg/api"
	"github.com/vanderheijden86/stockpile/pkg/model"
	"github.com/vanderheijden86/stockpile/pkg/query"
)

// LocationsPage is the location tree with its detail panel.
type LocationsPage struct {
	tree    TreeModel
	treeErr error

	// detail panel for the selected location
	detailID      string
	detail        *model.Location
	detailItems   []model.ItemSummary
	detailErr     error
	detailLoading bool

	confirmDelete bool
	detailOnly    bool   // narrow terminals show tree or detail, not both
	pendingSelect string // select once the next tree lands
}

// TotalValue sums quantity times purchase price over items.
func TotalValue(items []model.ItemSummary) float64 {
	var total float64
	for _, it := range items {
		qty := it.Quantity
		if qty <= 0 {
			qty = 1
		}
		total += float64(qty) * it.PurchasePrice
	}
	return total
}

// ══════════════════════════════════════════════════════════════════════════════
// FETCHING
// ══════════════════════════════════════════════════════════════════════════════

// mountLocations resets the page as a fresh mount. A cached tree is shown
// right away and refetched only when missing or invalidated.
func (m Model) mountLocations() (Model, tea.Cmd) {
	lp := &m.locations
	lp.confirmDelete = false
	lp.detailOnly = false
	lp.clearDetail()
	if v, ok := m.queries.Get(query.KeyLocationsTree); ok {
		lp.tree.SetNodes(v.([]model.TreeNode))
	}
	lp.tree.Reset()
	if !m.queries.NeedsFetch(query.KeyLocationsTree) {
		return m, nil
	}
	return m, m.fetchTree()
}

func (m Model) fetchTree() tea.Cmd {
	t := m.queries.Begin(query.KeyLocationsTree)
	return fetchTreeCmd(m.ctx, m.backend, t, m.cfg.Tree.IncludeItems)
}

func (m Model) fetchLocationDetail(id string) tea.Cmd {
	lt := m.queries.Begin(query.LocationKey(id))
	it := m.queries.Begin(query.LocationItemsKey(id))
	return fetchLocationDetailCmd(m.ctx, m.backend, id, lt, it)
}

func (lp *LocationsPage) clearDetail() {
	lp.detailID = ""
	lp.detail = nil
	lp.detailItems = nil
	lp.detailErr = nil
	lp.detailLoading = false
}

// showDetail points the panel at id, using cached data when present, and
// returns the fetch for whatever is missing or invalidated.
func (m *Model) showDetail(id string) tea.Cmd {
	lp := &m.locations
	if lp.detailID != id {
		lp.clearDetail()
		lp.detailID = id
		if v, ok := m.queries.Get(query.LocationKey(id)); ok {
			loc := v.(model.Location)
			lp.detail = &loc
		}
		if v, ok := m.queries.Get(query.LocationItemsKey(id)); ok {
			lp.detailItems = v.([]model.ItemSummary)
		}
	}
	if !m.queries.NeedsFetch(query.LocationKey(id)) && !m.queries.NeedsFetch(query.LocationItemsKey(id)) {
		return nil
	}
	lp.detailLoading = true
	return m.fetchLocationDetail(id)
}

func (m Model) handleTreeLoaded(msg treeLoadedMsg) (Model, tea.Cmd) {
	if !m.queries.Commit(msg.ticket, msg.nodes, msg.err) {
		return m, nil
	}
	lp := &m.locations
	if msg.err != nil {
		lp.treeErr = msg.err
		return m.fetchFailed(msg.err, "Could not load locations")
	}
	lp.treeErr = nil
	lp.tree.SetNodes(msg.nodes)
	if id := lp.pendingSelect; id != "" {
		lp.pendingSelect = ""
		if lp.tree.Select(id) {
			cmd := m.showDetail(id)
			return m, cmd
		}
	}
	if lp.detailID != "" {
		if _, ok := lp.tree.SelectedID(); !ok {
			lp.clearDetail()
		}
	}
	return m, nil
}

func (m Model) handleLocationDetail(msg locationDetailMsg) (Model, tea.Cmd) {
	// Commit each key on its own so the cache stays consistent even when
	// the panel has moved on to another location.
	var loc, items any
	if msg.err == nil {
		loc, items = msg.location, msg.items
	}
	okLoc := m.queries.Commit(msg.locTicket, loc, msg.err)
	okItems := m.queries.Commit(msg.itemsTicket, items, msg.err)
	lp := &m.locations
	if msg.id != lp.detailID || !(okLoc && okItems) {
		return m, nil
	}
	lp.detailLoading = false
	if msg.err != nil {
		lp.detailErr = msg.err
		return m.fetchFailed(msg.err, "Could not load location")
	}
	lp.detailErr = nil
	l := msg.location
	lp.detail = &l
	lp.detailItems = msg.items
	return m, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// KEYS
// ══════════════════════════════════════════════════════════════════════════════

func (m Model) handleLocationsKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	lp := &m.locations

	if lp.tree.IsSearching() {
		switch msg.String() {
		case "enter":
			lp.tree.CommitSearch()
		case "esc":
			lp.tree.CancelSearch()
		default:
			lp.tree.UpdateSearch(msg)
		}
		return m, nil
	}

	if lp.confirmDelete {
		lp.confirmDelete = false
		if msg.String() != "y" && msg.String() != "Y" {
			m.setStatus("Delete cancelled", false)
			return m, nil
		}
		return m, m.deleteLocation()
	}

	switch msg.String() {
	case "j", "down":
		lp.tree.MoveDown()
	case "k", "up":
		lp.tree.MoveUp()
	case "g", "home":
		lp.tree.JumpToTop()
	case "G", "end":
		lp.tree.JumpToBottom()
	case "l", "right":
		lp.tree.Expand()
	case "h", "left":
		lp.tree.Collapse()
	case "E":
		lp.tree.ExpandAll()
	case "C":
		lp.tree.CollapseAll()
	case "/":
		lp.tree.StartSearch()
	case "esc":
		if lp.detailOnly {
			lp.detailOnly = false
		} else if lp.tree.Query() != "" {
			lp.tree.CancelSearch()
		}
	case "tab":
		if lp.detailID != "" && !m.isSplit() {
			lp.detailOnly = !lp.detailOnly
		}

	case "enter", " ":
		node, res := lp.tree.Click()
		if node == nil {
			return m, nil
		}
		if !node.IsLocation() {
			return m, func() tea.Msg { return openItemMsg{id: node.ID, from: pageLocations} }
		}
		if res.Selected {
			cmd := m.showDetail(node.ID)
			return m, cmd
		}

	case "r":
		m.queries.Invalidate(query.KeyLocationsTree)
		cmds := []tea.Cmd{m.fetchTree()}
		if lp.detailID != "" {
			m.queries.Invalidate(query.LocationKey(lp.detailID), query.LocationItemsKey(lp.detailID))
			cmds = append(cmds, m.showDetail(lp.detailID))
		}
		m.setStatus("Reloading…", false)
		return m, tea.Batch(cmds...)

	case "n":
		m.openForm(NewLocationForm(nil, m.theme))
	case "a":
		if parent := m.selectedLocationNode(); parent != nil {
			m.openForm(NewLocationForm(parent, m.theme))
		} else {
			m.setStatus("Select a location first", true)
		}
	case "e":
		if lp.detail != nil {
			m.openForm(NewEditLocationForm(*lp.detail, m.theme))
		} else {
			m.setStatus("Select a location first", true)
		}
	case "i":
		if parent := m.selectedLocationNode(); parent != nil {
			m.openForm(NewItemForm(parent.ID, parent.Name, m.theme))
		} else {
			m.setStatus("Select a location first", true)
		}
	case "d":
		if m.selectedLocationNode() != nil {
			lp.confirmDelete = true
		} else {
			m.setStatus("Select a location first", true)
		}
	case "v":
		if n := m.selectedLocationNode(); n != nil {
			return m.showInventoryFor(n.ID, n.Name)
		}
	}
	return m, nil
}

func (m Model) selectedLocationNode() *model.TreeNode {
	id, ok := m.locations.tree.SelectedID()
	if !ok {
		return nil
	}
	path := m.locations.tree.PathTo(id)
	if len(path) == 0 {
		return nil
	}
	return path[len(path)-1]
}

func (m Model) deleteLocation() tea.Cmd {
	n := m.selectedLocationNode()
	if n == nil {
		return nil
	}
	id, name := n.ID, n.Name
	invalidate := []string{query.KeyLocationsTree, query.LocationKey(id), query.LocationItemsKey(id), query.PrefixItems}
	return mutate(fmt.Sprintf("Deleted location %s", name), invalidate, func() (string, error) {
		return "", m.backend.DeleteLocation(m.ctx, id)
	})
}

// submitLocationForm sends a create or update for the form's location.
func (m Model) submitLocationForm(f FormModel) tea.Cmd {
	in := f.LocationInput()
	if f.Kind == FormEditLocation {
		id := f.TargetID
		invalidate := []string{query.KeyLocationsTree, query.LocationKey(id), query.PrefixItems, query.PrefixItem}
		return mutate(fmt.Sprintf("Updated location %s", in.Name), invalidate, func() (string, error) {
			_, err := m.backend.UpdateLocation(m.ctx, id, in)
			return id, err
		})
	}
	invalidate := []string{query.KeyLocationsTree}
	if in.ParentID != nil {
		invalidate = append(invalidate, query.LocationKey(*in.ParentID))
	}
	return mutate(fmt.Sprintf("Created location %s", in.Name), invalidate, func() (string, error) {
		loc, err := m.backend.CreateLocation(m.ctx, in)
		return loc.ID, err
	})
}

// submitItemForm creates an item in the form's location.
func (m Model) submitItemForm(f FormModel) tea.Cmd {
	in := f.ItemInput()
	locID := in.LocationID
	invalidate := []string{query.KeyLocationsTree, query.LocationItemsKey(locID), query.PrefixItems}
	return mutate(fmt.Sprintf("Created item %s", in.Name), invalidate, func() (string, error) {
		_, err := m.backend.CreateItem(m.ctx, in)
		return locID, err
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// RENDERING
// ══════════════════════════════════════════════════════════════════════════════

func (m Model) renderLocations(width, height int) string {
	lp := &m.locations
	if lp.treeErr != nil && !lp.tree.IsBuilt() {
		return m.renderPageError(width, height, "Could not load locations", lp.treeErr)
	}

	if !m.isSplit() {
		if lp.detailOnly && lp.detailID != "" {
			return PanelStyle.Width(width - 2).Height(height - 2).MaxHeight(height).
				Render(m.renderLocationDetail(width-4, height-2))
		}
		lp.tree.SetSize(width-2, height-2)
		return FocusedPanelStyle.Width(width - 2).Height(height - 2).MaxHeight(height).
			Render(lp.tree.View())
	}

	treeWidth := width * 45 / 100
	detailWidth := width - treeWidth
	if detailWidth < MinDetailPaneWidth {
		detailWidth = MinDetailPaneWidth
		treeWidth = width - detailWidth
	}
	lp.tree.SetSize(treeWidth-2, height-2)
	treeView := FocusedPanelStyle.
		Width(treeWidth - 2).
		Height(height - 2).
		MaxHeight(height).
		Render(lp.tree.View())
	detailView := PanelStyle.
		Width(detailWidth - 2).
		Height(height - 2).
		MaxHeight(height).
		Render(m.renderLocationDetail(detailWidth-4, height-2))
	return lipgloss.JoinHorizontal(lipgloss.Top, treeView, detailView)
}

func (m Model) renderLocationDetail(width, height int) string {
	lp := &m.locations
	t := m.theme

	if lp.confirmDelete {
		if n := m.selectedLocationNode(); n != nil {
			return t.ErrorText.Render(fmt.Sprintf("Delete %s?", n.Name)) + "\n\n" +
				t.MutedText.Render("Child locations move to the top level.") + "\n\n" +
				t.PrimaryBold.Render("y") + " delete   " + t.PrimaryBold.Render("any other key") + " cancel"
		}
	}

	if lp.detailID == "" {
		return t.MutedText.Render("Select a location to see its details.\n\nenter: select   n: new location")
	}
	if lp.detail == nil {
		if lp.detailErr != nil {
			return t.ErrorText.Render("Could not load location") + "\n" +
				t.MutedText.Render(api.Message(lp.detailErr, "")) + "\n\n" +
				t.MutedText.Render("r: retry")
		}
		return m.spinner.View() + " " + t.MutedText.Render("Loading…")
	}

	loc := lp.detail
	var sb strings.Builder

	// breadcrumb from the tree path
	var crumbs []string
	for _, n := range lp.tree.PathTo(loc.ID) {
		crumbs = append(crumbs, n.Name)
	}
	if len(crumbs) > 1 {
		sb.WriteString(t.MutedText.Render(truncate(strings.Join(crumbs[:len(crumbs)-1], " › ")+" ›", width)))
		sb.WriteString("\n")
	}
	icon, color := t.GetKindIcon(model.KindLocation)
	sb.WriteString(t.Renderer.NewStyle().Foreground(color).Render(icon) + " " +
		t.PrimaryBold.Render(truncate(loc.Name, width-2)))
	if lp.detailLoading {
		sb.WriteString(" " + m.spinner.View())
	}
	sb.WriteString("\n")
	sb.WriteString(RenderDivider(width))
	sb.WriteString("\n")

	row := func(label, value string) {
		sb.WriteString(t.SecondaryText.Render(padRight(label, 12)))
		sb.WriteString(truncate(value, width-12))
		sb.WriteString("\n")
	}
	desc := loc.Description
	if desc == "" {
		desc = "—"
	}
	row("Description", desc)
	row("Items", fmt.Sprintf("%d", len(lp.detailItems)))
	row("Total value", FormatPrice(TotalValue(lp.detailItems)))
	created := loc.CreatedAt
	row("Created", FormatDate(&created))
	if loc.Parent != nil {
		row("Parent", loc.Parent.Name)
	}
	if len(loc.Children) > 0 {
		row("Sub-locations", fmt.Sprintf("%d", len(loc.Children)))
	}

	if lp.detailErr != nil {
		sb.WriteString("\n")
		sb.WriteString(t.ErrorText.Render("✗ " + api.Message(lp.detailErr, "refresh failed")))
		sb.WriteString("\n")
	}

	if len(lp.detailItems) > 0 {
		sb.WriteString("\n")
		sb.WriteString(t.SecondaryText.Render("Items in this location"))
		sb.WriteString("\n")
		max := height - strings.Count(sb.String(), "\n") - 2
		for i, it := range lp.detailItems {
			if i >= max {
				sb.WriteString(t.MutedText.Render(fmt.Sprintf("  … %d more (v: view in inventory)", len(lp.detailItems)-i)))
				sb.WriteString("\n")
				break
			}
			icon, color := t.GetKindIcon(model.KindItem)
			line := fmt.Sprintf(" %s %s", t.Renderer.NewStyle().Foreground(color).Render(icon), truncate(it.Name, width-16))
			sb.WriteString(padRight(line, width-10))
			sb.WriteString(t.MutedText.Render(fmt.Sprintf("×%d", it.Quantity)))
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
