package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/vanderheijden86/stockpile/pkg/model"
)

// FormFieldType defines the type of form field
type FormFieldType int

const (
	FormFieldText FormFieldType = iota
	FormFieldTextArea
	FormFieldToggle
)

// FormField is a single editable field.
type FormField struct {
	Label    string
	Key      string
	Type     FormFieldType
	Input    textinput.Model
	TextArea textarea.Model
	Checked  bool
	Required bool
}

// FormKind says what a submitted form creates or changes.
type FormKind int

const (
	FormCreateLocation FormKind = iota
	FormEditLocation
	FormCreateItem
	FormCreateLabel
	FormLogin
)

// FormModel is a modal form for creating and editing locations, items and
// labels. Tab moves between fields, ctrl+s submits, esc cancels.
type FormModel struct {
	Kind     FormKind
	TargetID string  // location being edited, or the item's location
	ParentID *string // parent for a new location

	title        string
	fields       []FormField
	focusedField int
	err          string
	width        int
	height       int
	theme        Theme

	saveRequested   bool
	cancelRequested bool
}

func newForm(kind FormKind, title string, theme Theme, fields ...FormField) FormModel {
	f := FormModel{Kind: kind, title: title, fields: fields, theme: theme}
	f.fields[0] = f.focusField(f.fields[0])
	return f
}

// NewLocationForm creates a form for a new location under parent (nil for
// a root location).
func NewLocationForm(parent *model.TreeNode, theme Theme) FormModel {
	title := "New Location"
	var parentID *string
	if parent != nil {
		id := parent.ID
		parentID = &id
		title = fmt.Sprintf("New Location in %s", parent.Name)
	}
	f := newForm(FormCreateLocation, title, theme,
		makeFormText("Name", "name", "", true),
		makeFormTextArea("Description", "description", ""),
	)
	f.ParentID = parentID
	return f
}

// NewEditLocationForm creates a form pre-filled from loc.
func NewEditLocationForm(loc model.Location, theme Theme) FormModel {
	f := newForm(FormEditLocation, fmt.Sprintf("Edit Location: %s", loc.Name), theme,
		makeFormText("Name", "name", loc.Name, true),
		makeFormTextArea("Description", "description", loc.Description),
	)
	f.TargetID = loc.ID
	if loc.Parent != nil {
		id := loc.Parent.ID
		f.ParentID = &id
	}
	return f
}

// NewItemForm creates a form for a new item stored in location.
func NewItemForm(locationID, locationName string, theme Theme) FormModel {
	title := "New Item"
	if locationName != "" {
		title = fmt.Sprintf("New Item in %s", locationName)
	}
	f := newForm(FormCreateItem, title, theme,
		makeFormText("Name", "name", "", true),
		makeFormText("Quantity", "quantity", "1", false),
		makeFormTextArea("Description", "description", ""),
	)
	f.TargetID = locationID
	return f
}

// NewLabelForm creates a form for a new label.
func NewLabelForm(theme Theme) FormModel {
	return newForm(FormCreateLabel, "New Label", theme,
		makeFormText("Name", "name", "", true),
		makeFormText("Color", "color", "", false),
		makeFormTextArea("Description", "description", ""),
	)
}

// NewLoginForm creates the sign-in form.
func NewLoginForm(username string, theme Theme) FormModel {
	pw := makeFormText("Password", "password", "", true)
	pw.Input.EchoMode = textinput.EchoPassword
	pw.Input.EchoCharacter = '•'
	f := newForm(FormLogin, "Sign in", theme,
		makeFormText("Username", "username", username, true),
		pw,
		makeFormToggle("Stay in", "stay", false),
	)
	if username != "" {
		f.moveFocus(1)
	}
	return f
}

func makeFormText(label, key, value string, required bool) FormField {
	ti := textinput.New()
	ti.SetValue(value)
	ti.CharLimit = 200
	ti.Width = 40
	return FormField{Label: label, Key: key, Type: FormFieldText, Input: ti, Required: required}
}

func makeFormTextArea(label, key, value string) FormField {
	ta := textarea.New()
	ta.SetValue(value)
	ta.SetWidth(40)
	ta.SetHeight(3)
	ta.CharLimit = 2000
	ta.ShowLineNumbers = false
	return FormField{Label: label, Key: key, Type: FormFieldTextArea, TextArea: ta}
}

func makeFormToggle(label, key string, checked bool) FormField {
	return FormField{Label: label, Key: key, Type: FormFieldToggle, Checked: checked}
}

// Update handles input for the form.
func (m FormModel) Update(msg tea.Msg) (FormModel, tea.Cmd) {
	var cmd tea.Cmd

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch keyMsg.String() {
	case "ctrl+s":
		if err := m.validate(); err != nil {
			m.err = err.Error()
			return m, nil
		}
		m.saveRequested = true
		return m, nil

	case "esc":
		m.cancelRequested = true
		return m, nil

	case "tab", "down":
		m.moveFocus(1)
		return m, nil

	case "shift+tab", "up":
		m.moveFocus(-1)
		return m, nil

	case "enter":
		switch m.fields[m.focusedField].Type {
		case FormFieldText:
			if m.lastTextField() {
				return m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
			}
			m.moveFocus(1)
			return m, nil
		case FormFieldToggle:
			return m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
		}

	case " ", "x":
		if m.fields[m.focusedField].Type == FormFieldToggle {
			m.fields[m.focusedField].Checked = !m.fields[m.focusedField].Checked
			return m, nil
		}
	}

	field := &m.fields[m.focusedField]
	switch field.Type {
	case FormFieldText:
		field.Input, cmd = field.Input.Update(msg)
	case FormFieldTextArea:
		field.TextArea, cmd = field.TextArea.Update(msg)
	}
	m.err = ""
	return m, cmd
}

// lastTextField reports whether no text input follows the focused field.
func (m FormModel) lastTextField() bool {
	for _, f := range m.fields[m.focusedField+1:] {
		if f.Type != FormFieldToggle {
			return false
		}
	}
	return true
}

func (m *FormModel) moveFocus(delta int) {
	m.fields[m.focusedField] = m.blurField(m.fields[m.focusedField])
	m.focusedField = (m.focusedField + delta + len(m.fields)) % len(m.fields)
	m.fields[m.focusedField] = m.focusField(m.fields[m.focusedField])
}

func (m FormModel) focusField(field FormField) FormField {
	switch field.Type {
	case FormFieldText:
		field.Input.Focus()
	case FormFieldTextArea:
		field.TextArea.Focus()
	}
	return field
}

func (m FormModel) blurField(field FormField) FormField {
	switch field.Type {
	case FormFieldText:
		field.Input.Blur()
	case FormFieldTextArea:
		field.TextArea.Blur()
	}
	return field
}

// validate checks required fields before the form may be submitted.
func (m FormModel) validate() error {
	for _, f := range m.fields {
		if f.Required && strings.TrimSpace(m.Value(f.Key)) == "" {
			return fmt.Errorf("%s: %w", f.Label, model.ErrRequired)
		}
	}
	if m.Kind == FormCreateItem {
		if _, err := m.Int("quantity"); err != nil {
			return err
		}
	}
	return nil
}

// Value returns the current value of the field with key.
func (m FormModel) Value(key string) string {
	for _, f := range m.fields {
		if f.Key != key {
			continue
		}
		switch f.Type {
		case FormFieldText:
			return f.Input.Value()
		case FormFieldTextArea:
			return f.TextArea.Value()
		case FormFieldToggle:
			return strconv.FormatBool(f.Checked)
		}
	}
	return ""
}

// Int parses the field with key as a whole number. Blank is 0.
func (m FormModel) Int(key string) (int, error) {
	s := strings.TrimSpace(m.Value(key))
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s must be a whole number", key)
	}
	return n, nil
}

// SetValue sets a text field, for tests and prefilling.
func (m *FormModel) SetValue(key, value string) {
	for i := range m.fields {
		if m.fields[i].Key != key {
			continue
		}
		switch m.fields[i].Type {
		case FormFieldText:
			m.fields[i].Input.SetValue(value)
		case FormFieldTextArea:
			m.fields[i].TextArea.SetValue(value)
		}
	}
}

// LocationInput builds the create/update payload of a location form.
func (m FormModel) LocationInput() model.LocationCreate {
	return model.LocationCreate{
		Name:        strings.TrimSpace(m.Value("name")),
		Description: strings.TrimSpace(m.Value("description")),
		ParentID:    m.ParentID,
	}
}

// ItemInput builds the create payload of an item form.
func (m FormModel) ItemInput() model.ItemCreate {
	qty, _ := m.Int("quantity")
	return model.ItemCreate{
		Name:        strings.TrimSpace(m.Value("name")),
		Description: strings.TrimSpace(m.Value("description")),
		Quantity:    qty,
		LocationID:  m.TargetID,
	}
}

// LabelInput builds the create payload of a label form.
func (m FormModel) LabelInput() model.LabelCreate {
	return model.LabelCreate{
		Name:        strings.TrimSpace(m.Value("name")),
		Description: strings.TrimSpace(m.Value("description")),
		Color:       strings.TrimSpace(m.Value("color")),
	}
}

// LoginInput builds the login request of a sign-in form.
func (m FormModel) LoginInput() model.LoginRequest {
	return model.LoginRequest{
		Username:     strings.TrimSpace(m.Value("username")),
		Password:     m.Value("password"),
		StayLoggedIn: m.Value("stay") == "true",
	}
}

// SetError shows a message under the fields, e.g. a rejected submission.
func (m *FormModel) SetError(msg string) {
	m.err = msg
	m.saveRequested = false
}

// View renders the form.
func (m FormModel) View() string {
	r := m.theme.Renderer

	boxWidth := m.width - 10
	if boxWidth < 56 {
		boxWidth = 56
	}
	if boxWidth > 72 {
		boxWidth = 72
	}

	var content strings.Builder
	content.WriteString(r.NewStyle().Bold(true).Foreground(m.theme.Primary).Render(m.title))
	content.WriteString("\n\n")

	labelStyle := r.NewStyle().
		Foreground(m.theme.Secondary).
		Width(12).
		Align(lipgloss.Right)
	focusedLabelStyle := r.NewStyle().
		Foreground(m.theme.Primary).
		Bold(true).
		Width(12).
		Align(lipgloss.Right)

	for i, field := range m.fields {
		label := field.Label
		if field.Required {
			label += "*"
		}
		if i == m.focusedField {
			content.WriteString(focusedLabelStyle.Render(label + ":"))
		} else {
			content.WriteString(labelStyle.Render(label + ":"))
		}
		content.WriteString(" ")

		switch field.Type {
		case FormFieldText:
			content.WriteString(field.Input.View())
		case FormFieldTextArea:
			lines := strings.Split(field.TextArea.View(), "\n")
			for idx, line := range lines {
				if idx > 0 {
					content.WriteString(strings.Repeat(" ", 13))
				}
				content.WriteString(line)
				if idx < len(lines)-1 {
					content.WriteString("\n")
				}
			}
		case FormFieldToggle:
			content.WriteString(RenderCheckbox(field.Checked))
		}
		content.WriteString("\n")
	}

	if m.err != "" {
		content.WriteString("\n")
		content.WriteString(m.theme.ErrorText.Render(m.err))
		content.WriteString("\n")
	}

	content.WriteString("\n")
	content.WriteString(r.NewStyle().Foreground(m.theme.Subtext).Italic(true).
		Render("[Tab] Next field   [Ctrl+S] Save   [Esc] Cancel"))

	box := r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.theme.Primary).
		Padding(1, 2).
		Width(boxWidth).
		Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

// SetSize sets the form dimensions
func (m *FormModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// IsSaveRequested reports whether the form was submitted and passed validation.
func (m FormModel) IsSaveRequested() bool {
	return m.saveRequested
}

// IsCancelRequested reports whether esc was pressed.
func (m FormModel) IsCancelRequested() bool {
	return m.cancelRequested
}
