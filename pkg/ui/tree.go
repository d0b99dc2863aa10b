package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/vanderheijden86/stockpile/pkg/model"
	"github.com/vanderheijden86/stockpile/pkg/tree"
)

// TreeModel renders the location tree with search filtering and
// expand/collapse. The source tree is kept as fetched; the filtered tree and
// the visible rows are derived from it on every change.
type TreeModel struct {
	source   []model.TreeNode
	filtered []model.TreeNode
	rows     []tree.Row
	guides   []string
	matches  map[string]bool

	exp    *tree.Expansion
	sel    tree.Selection
	policy tree.Policy
	built  bool

	cursor         int
	viewportOffset int
	width          int
	height         int

	search     textinput.Model
	searchMode bool

	theme Theme
}

// NewTreeModel creates an empty tree view.
func NewTreeModel(theme Theme, policy tree.Policy) TreeModel {
	ti := textinput.New()
	ti.Prompt = "/"
	ti.Placeholder = "search locations and items"
	ti.CharLimit = 100
	return TreeModel{
		policy:  policy,
		exp:     tree.NewExpansion(),
		search:  ti,
		matches: map[string]bool{},
		theme:   theme,
	}
}

// SetSize sets the area available for rows.
func (t *TreeModel) SetSize(width, height int) {
	t.width = width
	t.height = height
	t.ensureCursorVisible()
}

// SetNodes replaces the source tree. The first call creates the expansion
// state from the policy; later calls keep it, so a refetch does not fold
// the tree back up.
func (t *TreeModel) SetNodes(nodes []model.TreeNode) {
	if nodes == nil {
		nodes = []model.TreeNode{}
	}
	t.source = nodes
	if !t.built {
		t.exp = t.policy.NewExpansion(nodes)
		t.built = true
	}
	if id, ok := t.sel.Selected(); ok && tree.Find(nodes, id) == nil {
		t.sel.Clear()
	}
	t.rebuild()
}

// Reset forgets expansion, selection and search, as when the page is
// mounted again.
func (t *TreeModel) Reset() {
	t.built = false
	t.sel.Clear()
	t.search.SetValue("")
	t.searchMode = false
	t.cursor, t.viewportOffset = 0, 0
	if t.source != nil {
		t.SetNodes(t.source)
	}
}

// rebuild derives the filtered tree and visible rows from the source.
func (t *TreeModel) rebuild() {
	q := t.Query()
	t.filtered = tree.Filter(t.source, q)
	t.matches = tree.MatchIDs(t.filtered, q)
	t.rows = tree.Rows(t.filtered, t.exp, &t.sel)
	t.guides = tree.Guides(t.rows)
	if t.cursor >= len(t.rows) {
		t.cursor = len(t.rows) - 1
	}
	if t.cursor < 0 {
		t.cursor = 0
	}
	t.ensureCursorVisible()
}

// Query returns the current search text.
func (t *TreeModel) Query() string {
	return strings.TrimSpace(t.search.Value())
}

// ══════════════════════════════════════════════════════════════════════════════
// SEARCH
// ══════════════════════════════════════════════════════════════════════════════

// IsSearching reports whether the search input has focus.
func (t *TreeModel) IsSearching() bool {
	return t.searchMode
}

// StartSearch focuses the search input.
func (t *TreeModel) StartSearch() {
	t.searchMode = true
	t.search.Focus()
}

// UpdateSearch feeds a key to the search input and refilters.
func (t *TreeModel) UpdateSearch(msg interface{}) {
	before := t.search.Value()
	t.search, _ = t.search.Update(msg)
	if t.search.Value() != before {
		t.cursor = 0
		t.rebuild()
	}
}

// CommitSearch leaves the input and opens the ancestors of every match so
// the matches are on screen.
func (t *TreeModel) CommitSearch() {
	t.searchMode = false
	t.search.Blur()
	for id := range t.matches {
		t.exp.ExpandPath(t.filtered, id)
	}
	t.rebuild()
}

// CancelSearch leaves the input and clears the query.
func (t *TreeModel) CancelSearch() {
	t.searchMode = false
	t.search.Blur()
	t.search.SetValue("")
	t.rebuild()
}

// ══════════════════════════════════════════════════════════════════════════════
// NAVIGATION AND EXPANSION
// ══════════════════════════════════════════════════════════════════════════════

// MoveDown moves the cursor one row down.
func (t *TreeModel) MoveDown() {
	if t.cursor < len(t.rows)-1 {
		t.cursor++
		t.ensureCursorVisible()
	}
}

// MoveUp moves the cursor one row up.
func (t *TreeModel) MoveUp() {
	if t.cursor > 0 {
		t.cursor--
		t.ensureCursorVisible()
	}
}

// JumpToTop moves the cursor to the first row.
func (t *TreeModel) JumpToTop() {
	t.cursor = 0
	t.ensureCursorVisible()
}

// JumpToBottom moves the cursor to the last row.
func (t *TreeModel) JumpToBottom() {
	if len(t.rows) > 0 {
		t.cursor = len(t.rows) - 1
	}
	t.ensureCursorVisible()
}

// CursorNode returns the node under the cursor.
func (t *TreeModel) CursorNode() *model.TreeNode {
	if t.cursor < 0 || t.cursor >= len(t.rows) {
		return nil
	}
	return t.rows[t.cursor].Node
}

// Click activates the node under the cursor: a location is selected and a
// node with children toggles. The returned node is nil on an empty tree.
func (t *TreeModel) Click() (*model.TreeNode, tree.ClickResult) {
	n := t.CursorNode()
	if n == nil {
		return nil, tree.ClickResult{}
	}
	id := n.ID
	res := tree.Click(n, t.exp, &t.sel)
	t.rebuild()
	t.moveCursorTo(id)
	return tree.Find(t.filtered, id), res
}

// Expand opens the node under the cursor.
func (t *TreeModel) Expand() {
	if n := t.CursorNode(); n != nil && n.HasChildren() {
		t.exp.Expand(n.ID)
		t.rebuild()
	}
}

// Collapse closes the node under the cursor, or moves to its parent when it
// is already closed.
func (t *TreeModel) Collapse() {
	n := t.CursorNode()
	if n == nil {
		return
	}
	if n.HasChildren() && t.exp.IsExpanded(n.ID) {
		t.exp.Collapse(n.ID)
		t.rebuild()
		return
	}
	path := tree.PathTo(t.filtered, n.ID)
	if len(path) > 1 {
		t.moveCursorTo(path[len(path)-2].ID)
	}
}

// ExpandAll opens every node of the source tree.
func (t *TreeModel) ExpandAll() {
	t.exp.ExpandAll(t.source)
	t.rebuild()
}

// CollapseAll closes every node.
func (t *TreeModel) CollapseAll() {
	t.exp.CollapseAll()
	t.cursor = 0
	t.rebuild()
}

// Select makes id the selected node, opening its ancestors and moving the
// cursor onto it. It returns false if id is not in the tree.
func (t *TreeModel) Select(id string) bool {
	if tree.Find(t.source, id) == nil {
		return false
	}
	t.exp.ExpandPath(t.source, id)
	t.sel.Select(id)
	t.rebuild()
	t.moveCursorTo(id)
	return true
}

// SelectedID returns the selected location id.
func (t *TreeModel) SelectedID() (string, bool) {
	return t.sel.Selected()
}

// PathTo returns the chain of nodes from a root to id in the full tree.
func (t *TreeModel) PathTo(id string) []*model.TreeNode {
	return tree.PathTo(t.source, id)
}

// IsExpanded reports whether id is open.
func (t *TreeModel) IsExpanded(id string) bool {
	return t.exp.IsExpanded(id)
}

// Rows returns the visible rows.
func (t *TreeModel) Rows() []tree.Row {
	return t.rows
}

// IsBuilt reports whether a tree has been loaded.
func (t *TreeModel) IsBuilt() bool {
	return t.built
}

func (t *TreeModel) moveCursorTo(id string) {
	for i, r := range t.rows {
		if r.Node.ID == id {
			t.cursor = i
			break
		}
	}
	t.ensureCursorVisible()
}

func (t *TreeModel) effectiveVisibleCount() int {
	h := t.height - 1 // header
	if t.searchMode || t.Query() != "" {
		h--
	}
	if len(t.rows) > h {
		h-- // position indicator
	}
	if h < 1 {
		h = 1
	}
	return h
}

func (t *TreeModel) ensureCursorVisible() {
	if len(t.rows) == 0 {
		t.viewportOffset = 0
		return
	}
	visible := t.effectiveVisibleCount()
	if t.cursor < t.viewportOffset {
		t.viewportOffset = t.cursor
	}
	if t.cursor >= t.viewportOffset+visible {
		t.viewportOffset = t.cursor - visible + 1
	}
	maxOffset := len(t.rows) - visible
	if maxOffset < 0 {
		maxOffset = 0
	}
	if t.viewportOffset > maxOffset {
		t.viewportOffset = maxOffset
	}
	if t.viewportOffset < 0 {
		t.viewportOffset = 0
	}
}

func (t *TreeModel) visibleRange() (start, end int) {
	if len(t.rows) == 0 {
		return 0, 0
	}
	start = t.viewportOffset
	end = start + t.effectiveVisibleCount()
	if end > len(t.rows) {
		end = len(t.rows)
	}
	return start, end
}

// ══════════════════════════════════════════════════════════════════════════════
// RENDERING
// ══════════════════════════════════════════════════════════════════════════════

func expandIndicator(r tree.Row) string {
	if !r.HasChildren {
		return "•"
	}
	if r.Expanded {
		return "▾"
	}
	return "▸"
}

// View renders the header, the visible rows and the search bar.
func (t *TreeModel) View() string {
	var sb strings.Builder
	sb.WriteString(t.RenderHeader())
	sb.WriteString("\n")

	if len(t.rows) == 0 {
		sb.WriteString(t.renderEmptyState())
	} else {
		start, end := t.visibleRange()
		for i := start; i < end; i++ {
			line := t.renderRow(i)
			if i == t.cursor {
				line = t.theme.Selected.Render(line)
			}
			sb.WriteString(line)
			if i < end-1 {
				sb.WriteString("\n")
			}
		}
		if len(t.rows) > t.effectiveVisibleCount() {
			sb.WriteString("\n")
			sb.WriteString(t.theme.MutedText.Render(
				fmt.Sprintf(" %d-%d of %d", start+1, end, len(t.rows))))
		}
	}

	if t.searchMode || t.Query() != "" {
		sb.WriteString("\n")
		sb.WriteString(t.renderSearchBar())
	}
	return sb.String()
}

// RenderHeader renders the column header row.
func (t *TreeModel) RenderHeader() string {
	width := t.width
	if width <= 0 {
		width = 40
	}
	return t.theme.Header.Width(width).Render("LOCATIONS")
}

func (t *TreeModel) renderEmptyState() string {
	if t.Query() != "" {
		return t.theme.MutedText.Render(fmt.Sprintf("  No locations match %q.", t.Query()))
	}
	if !t.built {
		return t.theme.MutedText.Render("  Loading…")
	}
	return t.theme.MutedText.Render("  No locations yet. Press n to create one.")
}

func (t *TreeModel) renderRow(i int) string {
	r := t.rows[i]
	n := r.Node
	rend := t.theme.Renderer
	width := t.width
	if width <= 0 {
		width = 40
	}
	width-- // avoid wrapping on the exact edge

	var left strings.Builder
	left.WriteString(t.theme.MutedText.Render(t.guides[i]))
	left.WriteString(t.theme.SecondaryText.Render(expandIndicator(r)))
	left.WriteString(" ")
	icon, color := t.theme.GetKindIcon(n.Kind)
	left.WriteString(rend.NewStyle().Foreground(color).Render(icon))
	left.WriteString(" ")

	badge := ""
	if r.HasChildren && !r.Expanded {
		badge = " " + RenderCountBadge(r.ChildCount())
	}
	nameWidth := width - lipgloss.Width(left.String()) - lipgloss.Width(badge)
	if nameWidth < 5 {
		nameWidth = 5
	}
	name := truncate(n.Name, nameWidth)

	style := rend.NewStyle()
	switch {
	case r.Selected:
		style = t.theme.PrimaryBold
	case t.matches[n.ID]:
		style = t.theme.MatchText
	case t.Query() != "":
		style = t.theme.MutedText
	}
	left.WriteString(style.Render(name))
	left.WriteString(badge)

	return rend.NewStyle().MaxWidth(width).Render(left.String())
}

func (t *TreeModel) renderSearchBar() string {
	if t.searchMode {
		return t.theme.PrimaryBold.Render(t.search.View())
	}
	info := fmt.Sprintf("/%s [%d match", t.Query(), len(t.matches))
	if len(t.matches) != 1 {
		info += "es"
	}
	return t.theme.PrimaryBold.Render(info + "]")
}
