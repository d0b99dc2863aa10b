package ui

import (
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/vanderheijden86/stockpile/pkg/model"
)

// LabelPickerModel is a fuzzy search popup for choosing the labels that
// filter the inventory listing. Several labels can be checked at once.
type LabelPickerModel struct {
	allLabels     []model.Label
	filtered      []model.Label
	checked       map[string]bool
	input         textinput.Model
	selectedIndex int
	width         int
	height        int
	theme         Theme
}

// NewLabelPickerModel creates a picker over labels, sorted by name.
func NewLabelPickerModel(labels []model.Label, theme Theme) LabelPickerModel {
	ti := textinput.New()
	ti.Placeholder = "type to filter..."
	ti.CharLimit = 50
	ti.Width = 30
	ti.Focus()

	m := LabelPickerModel{
		checked: make(map[string]bool),
		input:   ti,
		theme:   theme,
	}
	m.SetLabels(labels)
	return m
}

// SetSize updates the picker dimensions
func (m *LabelPickerModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// SetLabels replaces the available labels. Checked ids that no longer
// exist are dropped.
func (m *LabelPickerModel) SetLabels(labels []model.Label) {
	sorted := make([]model.Label, len(labels))
	copy(sorted, labels)
	sort.SliceStable(sorted, func(i, j int) bool {
		return strings.ToLower(sorted[i].Name) < strings.ToLower(sorted[j].Name)
	})
	m.allLabels = sorted

	known := make(map[string]bool, len(sorted))
	for _, l := range sorted {
		known[l.ID] = true
	}
	for id := range m.checked {
		if !known[id] {
			delete(m.checked, id)
		}
	}
	m.filterLabels()
}

// SetChecked replaces the checked set.
func (m *LabelPickerModel) SetChecked(ids []string) {
	m.checked = make(map[string]bool, len(ids))
	for _, id := range ids {
		m.checked[id] = true
	}
}

// MoveUp moves selection up
func (m *LabelPickerModel) MoveUp() {
	if m.selectedIndex > 0 {
		m.selectedIndex--
	}
}

// MoveDown moves selection down
func (m *LabelPickerModel) MoveDown() {
	if m.selectedIndex < len(m.filtered)-1 {
		m.selectedIndex++
	}
}

// SelectedLabel returns the label under the cursor, if any.
func (m *LabelPickerModel) SelectedLabel() (model.Label, bool) {
	if len(m.filtered) == 0 || m.selectedIndex >= len(m.filtered) {
		return model.Label{}, false
	}
	return m.filtered[m.selectedIndex], true
}

// ToggleSelected checks or unchecks the label under the cursor.
func (m *LabelPickerModel) ToggleSelected() {
	l, ok := m.SelectedLabel()
	if !ok {
		return
	}
	if m.checked[l.ID] {
		delete(m.checked, l.ID)
	} else {
		m.checked[l.ID] = true
	}
}

// CheckedIDs returns the checked label ids in display order.
func (m *LabelPickerModel) CheckedIDs() []string {
	var ids []string
	for _, l := range m.allLabels {
		if m.checked[l.ID] {
			ids = append(ids, l.ID)
		}
	}
	return ids
}

// UpdateInput processes a key message for the text input
func (m *LabelPickerModel) UpdateInput(msg interface{}) {
	m.input, _ = m.input.Update(msg)
	m.filterLabels()
}

// Reset clears the input and resets selection
func (m *LabelPickerModel) Reset() {
	m.input.SetValue("")
	m.selectedIndex = 0
	m.filterLabels()
}

func (m *LabelPickerModel) filterLabels() {
	query := strings.ToLower(strings.TrimSpace(m.input.Value()))
	if query == "" {
		m.filtered = m.allLabels
		m.selectedIndex = clamp(m.selectedIndex, 0, max(len(m.filtered)-1, 0))
		return
	}

	type scored struct {
		label model.Label
		score int
	}
	var matches []scored
	for _, label := range m.allLabels {
		if score := fuzzyScore(label.Name, query); score > 0 {
			matches = append(matches, scored{label, score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].score != matches[j].score {
			return matches[i].score > matches[j].score
		}
		return matches[i].label.Name < matches[j].label.Name
	})

	m.filtered = make([]model.Label, len(matches))
	for i, match := range matches {
		m.filtered[i] = match.label
	}
	if m.selectedIndex >= len(m.filtered) {
		m.selectedIndex = len(m.filtered) - 1
	}
	if m.selectedIndex < 0 {
		m.selectedIndex = 0
	}
}

// fuzzyScore returns a score for how well query matches label (0 = no match)
// Uses fzf-style scoring: consecutive matches, word boundary bonuses
func fuzzyScore(label, query string) int {
	label = strings.ToLower(label)
	query = strings.ToLower(query)

	if label == query {
		return 1000
	}
	if strings.HasPrefix(label, query) {
		return 500 + len(query)
	}
	if strings.Contains(label, query) {
		return 200 + len(query)
	}

	li, qi := 0, 0
	score := 0
	consecutive := 0
	lastMatchIdx := -1

	for li < len(label) && qi < len(query) {
		if label[li] == query[qi] {
			qi++
			matchScore := 10

			if lastMatchIdx == li-1 {
				consecutive++
				matchScore += consecutive * 5
			} else {
				consecutive = 0
			}

			if li == 0 || !unicode.IsLetter(rune(label[li-1])) {
				matchScore += 15
			}

			score += matchScore
			lastMatchIdx = li
		}
		li++
	}

	if qi == len(query) {
		return score
	}
	return 0
}

// View renders the label picker overlay
func (m *LabelPickerModel) View() string {
	if m.width == 0 {
		m.width = 60
	}
	if m.height == 0 {
		m.height = 20
	}

	t := m.theme

	boxWidth := 40
	if m.width < 50 {
		boxWidth = m.width - 10
	}
	if boxWidth < 25 {
		boxWidth = 25
	}

	maxVisible := 10
	if m.height < 15 {
		maxVisible = m.height - 7
	}
	if maxVisible < 3 {
		maxVisible = 3
	}

	var lines []string

	titleStyle := t.Renderer.NewStyle().
		Foreground(t.Primary).
		Bold(true).
		MarginBottom(1)
	lines = append(lines, titleStyle.Render("Filter by Label"))
	lines = append(lines, "")

	inputStyle := t.Renderer.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(t.Secondary).
		Padding(0, 1).
		Width(boxWidth - 6)
	lines = append(lines, inputStyle.Render(m.input.View()))
	lines = append(lines, "")

	if len(m.filtered) == 0 {
		dimStyle := t.Renderer.NewStyle().
			Foreground(t.Secondary).
			Italic(true)
		lines = append(lines, dimStyle.Render("  No matching labels"))
	} else {
		start := 0
		if m.selectedIndex >= maxVisible {
			start = m.selectedIndex - maxVisible + 1
		}
		end := start + maxVisible
		if end > len(m.filtered) {
			end = len(m.filtered)
		}

		for i := start; i < end; i++ {
			label := m.filtered[i]
			isSelected := i == m.selectedIndex

			itemStyle := t.Renderer.NewStyle()
			if isSelected {
				itemStyle = itemStyle.Foreground(t.Primary).Bold(true)
			} else {
				itemStyle = itemStyle.Foreground(t.Base.GetForeground())
			}

			prefix := "  "
			if isSelected {
				prefix = "> "
			}
			box := "[ ] "
			if m.checked[label.ID] {
				box = "[x] "
			}

			displayLabel := truncateRunesHelper(label.Name, boxWidth-12, "...")
			lines = append(lines, itemStyle.Render(prefix+box+displayLabel))
		}

		if len(m.filtered) > maxVisible {
			countStyle := t.Renderer.NewStyle().
				Foreground(t.Secondary).
				Italic(true)
			lines = append(lines, "")
			lines = append(lines, countStyle.Render(
				"  ("+strconv.Itoa(m.selectedIndex+1)+"/"+strconv.Itoa(len(m.filtered))+")",
			))
		}
	}

	lines = append(lines, "")
	footerStyle := t.Renderer.NewStyle().
		Foreground(t.Secondary).
		Italic(true)
	lines = append(lines, footerStyle.Render("↑/↓: move | space: toggle | enter: apply | esc: cancel"))

	content := strings.Join(lines, "\n")

	boxStyle := t.Renderer.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Primary).
		Padding(1, 2).
		Width(boxWidth)

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		boxStyle.Render(content),
	)
}

// InputValue returns the current input value
func (m *LabelPickerModel) InputValue() string {
	return m.input.Value()
}

// FilteredCount returns the number of filtered labels
func (m *LabelPickerModel) FilteredCount() int {
	return len(m.filtered)
}
