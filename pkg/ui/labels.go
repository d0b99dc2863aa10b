package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/vanderheijden86/stockpile/pkg/model"
	"github.com/vanderheijden86/stockpile/pkg/query"
)

// LabelsPage lists labels with create and delete.
type LabelsPage struct {
	labels        []model.Label
	loaded        bool
	loading       bool
	err           error
	cursor        int
	confirmDelete bool

	// open the inventory label filter once labels arrive
	pickerPending bool
}

// fetchLabels shows the label list, fetching it unless the store holds a
// fresh copy.
func (m Model) fetchLabels() (Model, tea.Cmd) {
	if !m.queries.NeedsFetch(query.KeyLabels) {
		if v, ok := m.queries.Get(query.KeyLabels); ok {
			return m.handleLabelsLoaded(labelsLoadedMsg{labels: v.([]model.Label), committed: true})
		}
		m.labels.loading = true
		return m, nil
	}
	m.labels.loading = true
	return m, fetchLabelsCmd(m.ctx, m.backend, m.queries)
}

func (m Model) handleLabelsLoaded(msg labelsLoadedMsg) (Model, tea.Cmd) {
	if !msg.committed {
		return m, nil
	}
	lp := &m.labels
	lp.loading = false
	if msg.err != nil {
		lp.err = msg.err
		lp.pickerPending = false
		return m.fetchFailed(msg.err, "Could not load labels")
	}
	lp.err = nil
	lp.labels = msg.labels
	lp.loaded = true
	if lp.cursor >= len(lp.labels) {
		lp.cursor = max(len(lp.labels)-1, 0)
	}
	m.labelPicker.SetLabels(lp.labels)
	if lp.pickerPending {
		lp.pickerPending = false
		return m.openLabelPicker()
	}
	return m, nil
}

// openLabelPicker shows the label filter for the inventory listing,
// fetching labels first when none are loaded.
func (m Model) openLabelPicker() (Model, tea.Cmd) {
	if !m.labels.loaded {
		m.labels.pickerPending = true
		return m.fetchLabels()
	}
	m.labelPicker.SetLabels(m.labels.labels)
	m.labelPicker.SetChecked(m.inventory.labelIDs)
	m.labelPicker.Reset()
	m.labelPicker.SetSize(m.width, m.height-1)
	m.showLabelPicker = true
	return m, nil
}

func (m Model) handleLabelPickerKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.showLabelPicker = false
	case "enter":
		m.showLabelPicker = false
		m.inventory.labelIDs = m.labelPicker.CheckedIDs()
		m.inventory.page = 1
		m.inventory.cursor = 0
		return m.fetchItems()
	case "up", "ctrl+k":
		m.labelPicker.MoveUp()
	case "down", "ctrl+j":
		m.labelPicker.MoveDown()
	case " ":
		m.labelPicker.ToggleSelected()
	default:
		m.labelPicker.UpdateInput(msg)
	}
	return m, nil
}

func (m Model) handleLabelsKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	lp := &m.labels

	if lp.confirmDelete {
		lp.confirmDelete = false
		if msg.String() != "y" && msg.String() != "Y" {
			m.setStatus("Delete cancelled", false)
			return m, nil
		}
		if lp.cursor < len(lp.labels) {
			l := lp.labels[lp.cursor]
			return m, mutate(fmt.Sprintf("Deleted label %s", l.Name), []string{query.KeyLabels, query.PrefixItems, query.PrefixItem},
				func() (string, error) { return "", m.backend.DeleteLabel(m.ctx, l.ID) })
		}
		return m, nil
	}

	switch msg.String() {
	case "j", "down":
		if lp.cursor < len(lp.labels)-1 {
			lp.cursor++
		}
	case "k", "up":
		if lp.cursor > 0 {
			lp.cursor--
		}
	case "n":
		m.openForm(NewLabelForm(m.theme))
	case "d":
		if lp.cursor < len(lp.labels) {
			lp.confirmDelete = true
		}
	case "enter":
		if lp.cursor < len(lp.labels) {
			m.inventory.labelIDs = []string{lp.labels[lp.cursor].ID}
			m.inventory.page = 1
			m.inventory.cursor = 0
			m.labelPicker.SetChecked(m.inventory.labelIDs)
			return m.switchPage(pageInventory)
		}
	case "r":
		m.setStatus("Reloading…", false)
		m.queries.Invalidate(query.KeyLabels)
		return m.fetchLabels()
	}
	return m, nil
}

func (m Model) submitLabelForm(f FormModel) tea.Cmd {
	in := f.LabelInput()
	return mutate(fmt.Sprintf("Created label %s", in.Name), []string{query.KeyLabels}, func() (string, error) {
		l, err := m.backend.CreateLabel(m.ctx, in)
		return l.ID, err
	})
}

func (m Model) renderLabels(width, height int) string {
	lp := &m.labels
	t := m.theme

	if lp.err != nil && !lp.loaded {
		return m.renderPageError(width, height, "Could not load labels", lp.err)
	}
	if !lp.loaded {
		return m.spinner.View() + " " + t.MutedText.Render("Loading labels…")
	}

	var sb strings.Builder
	sb.WriteString(t.Header.Width(width).Render(fmt.Sprintf("LABELS (%d)", len(lp.labels))))
	sb.WriteString("\n")
	if len(lp.labels) == 0 {
		sb.WriteString(t.MutedText.Render("  No labels yet. Press n to create one."))
		return sb.String()
	}
	for i, l := range lp.labels {
		line := " " + RenderLabelChip(l.Name, l.Color)
		if l.Description != "" {
			line += "  " + t.MutedText.Render(truncate(l.Description, width-len(l.Name)-8))
		}
		if i == lp.cursor {
			line = t.Selected.Render(line)
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	if lp.confirmDelete && lp.cursor < len(lp.labels) {
		sb.WriteString("\n")
		sb.WriteString(t.ErrorText.Render(fmt.Sprintf("Delete label %s? ", lp.labels[lp.cursor].Name)))
		sb.WriteString(t.PrimaryBold.Render("y") + " delete   " + t.PrimaryBold.Render("any other key") + " cancel")
	}
	return sb.String()
}
