package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/vanderheijden86/stockpile/pkg/api"
	"github.com/vanderheijden86/stockpile/pkg/config"
	"github.com/vanderheijden86/stockpile/pkg/debug"
	"github.com/vanderheijden86/stockpile/pkg/query"
	"github.com/vanderheijden86/stockpile/pkg/session"
	"github.com/vanderheijden86/stockpile/pkg/watcher"
)

// page identifies the screen shown in the body.
type page int

const (
	pageInventory page = iota
	pageLocations
	pageLabels
	pageItem
	pageLogin
)

func (p page) String() string {
	switch p {
	case pageInventory:
		return "inventory"
	case pageLocations:
		return "locations"
	case pageLabels:
		return "labels"
	case pageItem:
		return "item"
	case pageLogin:
		return "login"
	default:
		return "unknown"
	}
}

// navPages are the pages reachable from the sidebar, in key order.
var navPages = []struct {
	key   string
	page  page
	title string
}{
	{"1", pageInventory, "Inventory"},
	{"2", pageLocations, "Locations"},
	{"3", pageLabels, "Labels"},
}

// statusTTL is how long a success message stays in the footer.
const statusTTL = 4 * time.Second

// Options configures NewModel.
type Options struct {
	Context context.Context
	Backend Backend
	Session *session.Store
	Config  config.Config
	Queries *query.Store // nil creates a fresh store
	Watcher *watcher.Watcher
	Theme   *Theme // nil uses DefaultTheme
}

// Model is the dashboard's root Bubble Tea model.
type Model struct {
	ctx     context.Context
	backend Backend
	queries *query.Store
	session *session.Store
	cfg     config.Config
	theme   Theme
	watcher *watcher.Watcher

	page     page
	prevPage page

	width  int
	height int

	// Pages
	inventory InventoryPage
	locations LocationsPage
	labels    LabelsPage
	item      ItemDetailPage
	login     LoginPage

	// Overlays
	form            FormModel
	showForm        bool
	labelPicker     LabelPickerModel
	showLabelPicker bool
	showHelp        bool

	// A failed mutation blocks input until acknowledged
	noticeTitle string
	noticeBody  string

	statusMsg     string
	statusIsError bool
	statusAt      time.Time

	spinner spinner.Model
}

// NewModel creates the dashboard.
func NewModel(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	qs := opts.Queries
	if qs == nil {
		qs = query.NewStore()
	}
	var theme Theme
	if opts.Theme != nil {
		theme = *opts.Theme
	} else {
		theme = DefaultTheme(lipgloss.DefaultRenderer())
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Renderer.NewStyle().Foreground(theme.Primary)

	m := Model{
		ctx:         ctx,
		backend:     opts.Backend,
		queries:     qs,
		session:     opts.Session,
		cfg:         opts.Config,
		theme:       theme,
		watcher:     opts.Watcher,
		width:       DefaultWindowWidth,
		height:      DefaultWindowHeight,
		inventory:   NewInventoryPage(opts.Config.UI.PageSize),
		locations:   LocationsPage{tree: NewTreeModel(theme, opts.Config.TreePolicy())},
		labelPicker: NewLabelPickerModel(nil, theme),
		login:       LoginPage{form: NewLoginForm("", theme)},
		spinner:     sp,
	}
	if m.session != nil {
		if u := m.session.User(); u != nil {
			m.login.lastUser = u.Email
		}
	}
	if m.session == nil || !m.session.IsAuthenticated() {
		m.page = pageLogin
	} else {
		m.page = m.defaultPage()
	}
	m.prevPage = m.page
	return m
}

// defaultPage is the page opened after start and sign-in.
func (m Model) defaultPage() page {
	switch m.cfg.UI.DefaultView {
	case config.ViewLocations:
		return pageLocations
	case config.ViewLabels:
		return pageLabels
	default:
		return pageInventory
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick}
	if m.watcher != nil {
		cmds = append(cmds, WatchSessionCmd(m.watcher))
	}
	if m.page == pageLogin {
		cmds = append(cmds, func() tea.Msg { return showLoginMsg{} })
	} else {
		cmds = append(cmds, func() tea.Msg { return mountMsg{page: m.page} })
	}
	return tea.Batch(cmds...)
}

// mountMsg mounts a page from Init, where the model cannot be changed.
type mountMsg struct{ page page }

// showLoginMsg shows the sign-in form from Init.
type showLoginMsg struct{}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		w, h := m.bodySize()
		m.form.SetSize(m.width, m.height-1)
		m.login.form.SetSize(m.width, m.height-1)
		m.labelPicker.SetSize(m.width, m.height-1)
		m.locations.tree.SetSize(w, h)
		if m.isSplit() {
			m.locations.detailOnly = false
		}
		m.refreshItemViewport()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case mountMsg:
		return m.switchPage(msg.page)

	case showLoginMsg:
		return m.showLogin("")

	case tea.KeyMsg:
		return m.handleKey(msg)

	case treeLoadedMsg:
		return m.handleTreeLoaded(msg)
	case locationDetailMsg:
		return m.handleLocationDetail(msg)
	case itemsPageMsg:
		return m.handleItemsPage(msg)
	case itemLoadedMsg:
		return m.handleItemLoaded(msg)
	case labelsLoadedMsg:
		return m.handleLabelsLoaded(msg)
	case openItemMsg:
		return m.openItem(msg.id, msg.from)

	case mutationDoneMsg:
		return m.handleMutationDone(msg)

	case loginResultMsg:
		return m.handleLoginResult(msg)

	case logoutDoneMsg:
		var cmd tea.Cmd
		m, cmd = m.showLogin("")
		m.setStatus("Signed out", false)
		return m, cmd

	case UnauthorizedMsg:
		if m.page == pageLogin {
			return m, nil
		}
		return m.showLogin("Your session has expired. Please sign in again.")

	case SessionChangedMsg:
		return m.handleSessionChanged()

	case clearStatusMsg:
		if msg.at.Equal(m.statusAt) && !m.statusIsError {
			m.statusMsg = ""
		}
		return m, nil
	}

	// Forms need every message, e.g. cursor blinks.
	var cmd tea.Cmd
	switch {
	case m.page == pageLogin:
		m.login.form, cmd = m.login.form.Update(msg)
	case m.showForm:
		m.form, cmd = m.form.Update(msg)
	}
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.noticeTitle != "" {
		m.noticeTitle, m.noticeBody = "", ""
		return m, nil
	}

	if m.page == pageLogin {
		return m.handleLoginUpdate(msg)
	}

	// Any key clears the status line
	m.statusMsg = ""

	if m.showForm {
		return m.handleFormKeys(msg)
	}
	if m.showLabelPicker {
		return m.handleLabelPickerKeys(msg)
	}
	if m.showHelp {
		if msg.String() == "?" || msg.String() == "esc" || msg.String() == "q" {
			m.showHelp = false
		}
		return m, nil
	}

	if !m.capturingInput() {
		switch msg.String() {
		case "q":
			if m.page == pageItem {
				return m.handleItemKeys(tea.KeyMsg{Type: tea.KeyEsc})
			}
			return m, tea.Quit
		case "?":
			m.showHelp = true
			return m, nil
		case "L":
			m.setStatus("Signing out…", false)
			return m, logoutCmd(m.ctx, m.backend, m.session)
		}
		for _, np := range navPages {
			if msg.String() == np.key {
				m.statusMsg = ""
				return m.switchPage(np.page)
			}
		}
	}

	switch m.page {
	case pageInventory:
		return m.handleInventoryKeys(msg)
	case pageLocations:
		return m.handleLocationsKeys(msg)
	case pageLabels:
		return m.handleLabelsKeys(msg)
	case pageItem:
		return m.handleItemKeys(msg)
	}
	return m, nil
}

// capturingInput reports whether keys go to a text input or a pending
// confirmation rather than the global bindings.
func (m Model) capturingInput() bool {
	switch m.page {
	case pageInventory:
		return m.inventory.searching || m.inventory.confirmDelete
	case pageLocations:
		return m.locations.tree.IsSearching() || m.locations.confirmDelete
	case pageLabels:
		return m.labels.confirmDelete
	case pageItem:
		return m.item.confirmDelete
	}
	return false
}

func (m Model) handleFormKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.form, cmd = m.form.Update(msg)
	if m.form.IsCancelRequested() {
		m.showForm = false
		return m, nil
	}
	if !m.form.IsSaveRequested() {
		return m, cmd
	}
	m.showForm = false
	switch m.form.Kind {
	case FormCreateLocation, FormEditLocation:
		return m, m.submitLocationForm(m.form)
	case FormCreateItem:
		return m, m.submitItemForm(m.form)
	case FormCreateLabel:
		return m, m.submitLabelForm(m.form)
	}
	return m, nil
}

// openForm shows f as a modal.
func (m *Model) openForm(f FormModel) {
	f.SetSize(m.width, m.height-1)
	m.form = f
	m.showForm = true
}

// handleMutationDone invalidates affected queries and refetches the page
// in view. Failures block with a notice; nothing was changed locally.
func (m Model) handleMutationDone(msg mutationDoneMsg) (Model, tea.Cmd) {
	if msg.err != nil {
		if errors.Is(msg.err, api.ErrUnauthorized) {
			return m.showLogin("Your session has expired. Please sign in again.")
		}
		m.noticeTitle = "Could not save changes"
		m.noticeBody = api.Message(msg.err, "The request failed.")
		return m, nil
	}

	keys := m.queries.Invalidate(msg.invalidate...)
	debug.Log("ui: %s; invalidated %d queries", msg.status, len(keys))
	m.setStatus(msg.status, false)
	cmds := []tea.Cmd{clearStatusAfter(m.statusAt, statusTTL)}

	if msg.leave && m.page == pageItem {
		back := m.item.from
		if back == pageItem || back == pageLogin {
			back = pageInventory
		}
		m.item = ItemDetailPage{}
		var cmd tea.Cmd
		m, cmd = m.refreshPage(back, "")
		return m, tea.Batch(append(cmds, cmd)...)
	}

	var cmd tea.Cmd
	m, cmd = m.refreshPage(m.page, msg.selectID)
	return m, tea.Batch(append(cmds, cmd)...)
}

// refreshPage shows p without resetting its view state, refetching the
// queries a mutation invalidated.
func (m Model) refreshPage(p page, selectID string) (Model, tea.Cmd) {
	m.page = p
	switch p {
	case pageInventory:
		return m.fetchItems()
	case pageLocations:
		lp := &m.locations
		var cmds []tea.Cmd
		if m.queries.NeedsFetch(query.KeyLocationsTree) {
			lp.pendingSelect = selectID
			cmds = append(cmds, m.fetchTree())
		} else if selectID != "" && lp.tree.Select(selectID) {
			cmds = append(cmds, m.showDetail(selectID))
		}
		if lp.detailID != "" && lp.detailID != selectID {
			cmds = append(cmds, m.showDetail(lp.detailID))
		}
		return m, tea.Batch(cmds...)
	case pageLabels:
		return m.fetchLabels()
	case pageItem:
		return m.openItem(m.item.id, m.item.from)
	}
	return m, nil
}

// switchPage mounts p. Cached data is shown right away; only queries that
// are missing, failed or invalidated are fetched.
func (m Model) switchPage(p page) (Model, tea.Cmd) {
	m.showHelp = false
	if m.page != p {
		m.prevPage = m.page
	}
	m.page = p
	switch p {
	case pageInventory:
		m.inventory.confirmDelete = false
		return m.fetchItems()
	case pageLocations:
		return m.mountLocations()
	case pageLabels:
		m.labels.confirmDelete = false
		return m.fetchLabels()
	case pageLogin:
		return m.showLogin("")
	}
	return m, nil
}

func (m Model) handleSessionChanged() (Model, tea.Cmd) {
	var cmd tea.Cmd
	if err := m.session.Load(); err != nil {
		debug.Log("ui: reload session: %v", err)
	}
	switch {
	case !m.session.IsAuthenticated() && m.page != pageLogin:
		m, cmd = m.showLogin("Signed out from another terminal.")
	case m.session.IsAuthenticated() && m.page == pageLogin && !m.login.submitting:
		m, cmd = m.switchPage(m.defaultPage())
	}
	return m, tea.Batch(cmd, WatchSessionCmd(m.watcher))
}

// fetchFailed reports a failed read. A rejected session goes back to the
// sign-in page; anything else leaves cached data on screen with an error
// in the footer.
func (m Model) fetchFailed(err error, title string) (Model, tea.Cmd) {
	if errors.Is(err, api.ErrUnauthorized) {
		return m.showLogin("Your session has expired. Please sign in again.")
	}
	if errors.Is(err, context.Canceled) {
		return m, nil
	}
	debug.Log("ui: %s: %v", title, err)
	m.setStatus(fmt.Sprintf("%s: %s", title, api.Message(err, "request failed")), true)
	return m, nil
}

// setStatus shows msg in the footer.
func (m *Model) setStatus(msg string, isError bool) {
	m.statusMsg = msg
	m.statusIsError = isError
	m.statusAt = time.Now()
}

// sidebarVisible reports whether the terminal is wide enough for the
// navigation sidebar.
func (m Model) sidebarVisible() bool {
	return m.width >= SplitViewThreshold
}

// isSplit reports whether the locations page shows tree and detail side
// by side.
func (m Model) isSplit() bool {
	return m.width >= SplitViewThreshold
}

// bodySize returns the space left for the page body.
func (m Model) bodySize() (int, int) {
	w := m.width
	h := m.height - 1 // footer
	if m.sidebarVisible() {
		w -= SidebarWidth
	} else {
		h-- // header
	}
	return max(w, 20), max(h, 5)
}

// ══════════════════════════════════════════════════════════════════════════════
// VIEW
// ══════════════════════════════════════════════════════════════════════════════

func (m Model) View() string {
	finalStyle := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		MaxHeight(m.height)

	footer := m.renderFooter()

	var overlay string
	switch {
	case m.noticeTitle != "":
		overlay = m.renderNotice()
	case m.page == pageLogin:
		overlay = m.renderLogin()
	case m.showForm:
		overlay = m.form.View()
	case m.showLabelPicker:
		overlay = m.labelPicker.View()
	case m.showHelp:
		overlay = m.renderHelpOverlay()
	}
	if overlay != "" {
		return finalStyle.Render(lipgloss.JoinVertical(lipgloss.Left, overlay, footer))
	}

	w, h := m.bodySize()
	var body string
	switch m.page {
	case pageInventory:
		body = m.renderInventory(w, h)
	case pageLocations:
		body = m.renderLocations(w, h)
	case pageLabels:
		body = m.renderLabels(w, h)
	case pageItem:
		body = m.renderItemDetail(w, h)
	}
	body = lipgloss.NewStyle().Width(w).Height(h).MaxHeight(h).Render(body)

	if m.sidebarVisible() {
		main := lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(h), body)
		return finalStyle.Render(lipgloss.JoinVertical(lipgloss.Left, main, footer))
	}
	return finalStyle.Render(lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), body, footer))
}

// activeNav maps the item page onto the page it was opened from.
func (m Model) activeNav() page {
	if m.page == pageItem {
		return m.item.from
	}
	return m.page
}

func (m Model) renderSidebar(height int) string {
	t := m.theme
	var sb strings.Builder
	sb.WriteString(t.PrimaryBold.Render("▣ stockpile"))
	sb.WriteString("\n\n")
	for _, np := range navPages {
		line := fmt.Sprintf("%s %s", t.MutedText.Render(np.key), np.title)
		if np.page == m.activeNav() {
			line = t.Selected.Render(np.title)
		} else {
			line = " " + line
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	user := ""
	if m.session != nil {
		if u := m.session.User(); u != nil {
			badge := t.Header.Render(u.Initial())
			user = badge + " " + truncate(u.Name, SidebarWidth-6)
		}
	}

	top := sb.String()
	gap := height - lipgloss.Height(top) - 1
	if gap < 1 {
		gap = 1
	}
	content := top + strings.Repeat("\n", gap) + user
	return PanelStyle.
		Width(SidebarWidth - 2).
		Height(height - 2).
		MaxHeight(height).
		Render(content)
}

func (m Model) renderHeader() string {
	t := m.theme
	parts := []string{t.PrimaryBold.Render("stockpile")}
	for _, np := range navPages {
		if np.page == m.activeNav() {
			parts = append(parts, t.Header.Render(np.key+" "+np.title))
		} else {
			parts = append(parts, t.MutedText.Render(np.key+" "+np.title))
		}
	}
	return strings.Join(parts, " ")
}

// renderPageError shows a page-level error with a reload hint.
func (m Model) renderPageError(width, height int, title string, err error) string {
	t := m.theme
	var sb strings.Builder
	sb.WriteString(t.ErrorText.Render("✗ " + title))
	sb.WriteString("\n")
	sb.WriteString(truncate(api.Message(err, err.Error()), width-2))
	sb.WriteString("\n\n")
	sb.WriteString(t.MutedText.Render("r: retry"))
	return lipgloss.NewStyle().Padding(1, 2).MaxHeight(height).Render(sb.String())
}

func (m Model) renderNotice() string {
	t := m.theme
	content := t.ErrorText.Render(m.noticeTitle) + "\n\n" +
		m.noticeBody + "\n\n" +
		t.MutedText.Render("Press any key to continue")
	box := t.Renderer.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Danger).
		Padding(1, 2).
		Width(min(60, m.width-4)).
		Render(content)
	return lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, box)
}

func (m Model) renderFooter() string {
	if m.statusMsg != "" {
		var msgStyle lipgloss.Style
		prefix := "✓ "
		if m.statusIsError {
			msgStyle = lipgloss.NewStyle().Foreground(ColorDanger).Bold(true).Padding(0, 2)
			prefix = "✗ "
		} else {
			msgStyle = lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true).Padding(0, 2)
		}
		msgSection := msgStyle.Render(prefix + m.statusMsg)
		remaining := max(m.width-lipgloss.Width(msgSection), 0)
		filler := lipgloss.NewStyle().Width(remaining).Render("")
		return lipgloss.JoinHorizontal(lipgloss.Bottom, msgSection, filler)
	}

	keyStyle := lipgloss.NewStyle().Foreground(ColorMuted)
	labelStyle := lipgloss.NewStyle().Foreground(ColorText)

	type hint struct {
		key   string
		label string
	}
	var hints []hint
	switch {
	case m.page == pageLogin:
		hints = []hint{{"tab", "next"}, {"enter", "sign in"}, {"esc", "quit"}}
	case m.page == pageLocations:
		hints = []hint{
			{"j/k", "nav"},
			{"enter", "select"},
			{"h/l", "fold"},
			{"/", "search"},
			{"n/a", "new"},
			{"i", "add item"},
			{"d", "delete"},
			{"?", "help"},
		}
	case m.page == pageLabels:
		hints = []hint{{"j/k", "nav"}, {"enter", "items"}, {"n", "new"}, {"d", "delete"}, {"?", "help"}}
	case m.page == pageItem:
		hints = []hint{{"esc", "back"}, {"tab", "tab"}, {"o", "location"}, {"y", "copy id"}, {"d", "delete"}, {"?", "help"}}
	default:
		hints = []hint{
			{"j/k", "nav"},
			{"←/→", "page"},
			{"/", "search"},
			{"f", "labels"},
			{"space", "select"},
			{"d", "delete"},
			{"?", "help"},
		}
	}
	if m.page != pageLogin {
		hints = append(hints, hint{"q", "quit"})
	}

	var hintParts []string
	for _, h := range hints {
		hintParts = append(hintParts, keyStyle.Render(h.key)+":"+labelStyle.Render(h.label))
	}
	shortcutBar := " " + strings.Join(hintParts, "  ")
	remaining := max(m.width-lipgloss.Width(shortcutBar), 0)
	filler := lipgloss.NewStyle().Width(remaining).Render("")
	return lipgloss.JoinHorizontal(lipgloss.Bottom, shortcutBar, filler)
}

func (m Model) renderHelpOverlay() string {
	t := m.theme

	numCols := 2
	if m.width < 80 {
		numCols = 1
	}
	colWidth := max((m.width-8-2*(numCols-1))/numCols, 28)

	colors := []lipgloss.AdaptiveColor{
		{Light: "#7D56F4", Dark: "#BD93F9"},
		{Light: "#FF79C6", Dark: "#FF79C6"},
		{Light: "#8BE9FD", Dark: "#8BE9FD"},
		{Light: "#50FA7B", Dark: "#50FA7B"},
		{Light: "#FFB86C", Dark: "#FFB86C"},
	}

	renderPanel := func(title string, colorIdx int, shortcuts []struct{ key, desc string }) string {
		color := colors[colorIdx%len(colors)]
		headerStyle := t.Renderer.NewStyle().
			Foreground(color).
			Bold(true).
			BorderStyle(lipgloss.Border{Bottom: "─"}).
			BorderBottom(true).
			BorderForeground(color).
			Width(colWidth-4).
			Padding(0, 1)
		keyStyle := t.Renderer.NewStyle().Foreground(color).Bold(true).Width(12)
		descStyle := t.Renderer.NewStyle().Foreground(t.Base.GetForeground()).Width(colWidth - 18)

		var content strings.Builder
		content.WriteString(headerStyle.Render(title))
		content.WriteString("\n")
		for _, s := range shortcuts {
			content.WriteString(keyStyle.Render(s.key))
			content.WriteString(descStyle.Render(s.desc))
			content.WriteString("\n")
		}
		return t.Renderer.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(color).
			Padding(0, 1).
			Width(colWidth).
			Render(content.String())
	}

	globalSection := []struct{ key, desc string }{
		{"1 / 2 / 3", "Inventory / Locations / Labels"},
		{"?", "This help"},
		{"L", "Sign out"},
		{"q", "Back / Quit"},
		{"Ctrl+c", "Force quit"},
	}
	locationsSection := []struct{ key, desc string }{
		{"j/k", "Move up/down"},
		{"Enter/Spc", "Select / toggle"},
		{"l / h", "Expand / collapse"},
		{"E / C", "Expand / collapse all"},
		{"/", "Search locations"},
		{"n / a", "New root / child"},
		{"e", "Edit location"},
		{"i", "Add item here"},
		{"v", "Items in location"},
		{"d", "Delete location"},
		{"Tab", "Toggle detail (narrow)"},
	}
	inventorySection := []struct{ key, desc string }{
		{"j/k", "Move up/down"},
		{"←/→", "Previous / next page"},
		{"/", "Search items"},
		{"f", "Filter by label"},
		{"x", "Clear filters"},
		{"Space", "Select row"},
		{"A", "Select page"},
		{"d", "Delete selected"},
		{"Enter", "Open item"},
	}
	itemSection := []struct{ key, desc string }{
		{"Tab / [ ]", "Switch tab"},
		{"y / Y", "Copy id / asset id"},
		{"o", "Show location"},
		{"d", "Delete item"},
		{"Esc", "Back"},
	}
	formSection := []struct{ key, desc string }{
		{"Tab", "Next field"},
		{"Ctrl+s", "Save"},
		{"Esc", "Cancel"},
	}

	panels := []string{
		renderPanel("Global", 0, globalSection),
		renderPanel("Inventory", 1, inventorySection),
		renderPanel("Locations", 2, locationsSection),
		renderPanel("Item", 3, itemSection),
		renderPanel("Forms", 4, formSection),
	}

	var columns []string
	perCol := (len(panels) + numCols - 1) / numCols
	for col := 0; col < numCols; col++ {
		start := col * perCol
		end := min(start+perCol, len(panels))
		if start >= len(panels) {
			break
		}
		columns = append(columns, lipgloss.JoinVertical(lipgloss.Left, panels[start:end]...))
	}
	grid := lipgloss.JoinHorizontal(lipgloss.Top, columns...)
	return lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, grid)
}

// ══════════════════════════════════════════════════════════════════════════════
// ACCESSORS
// ══════════════════════════════════════════════════════════════════════════════

// Page returns the name of the page in view.
func (m Model) Page() string { return m.page.String() }

// StatusMessage returns the footer status and whether it is an error.
func (m Model) StatusMessage() (string, bool) { return m.statusMsg, m.statusIsError }

// Notice returns the blocking notice, if any.
func (m Model) Notice() (string, string) { return m.noticeTitle, m.noticeBody }
