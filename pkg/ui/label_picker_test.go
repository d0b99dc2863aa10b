package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/vanderheijden86/stockpile/pkg/model"
)

func labelsNamed(names ...string) []model.Label {
	out := make([]model.Label, len(names))
	for i, n := range names {
		out[i] = model.Label{ID: "lbl-" + n, Name: n}
	}
	return out
}

func TestFuzzyScoreExactMatch(t *testing.T) {
	score := fuzzyScore("tools", "tools")
	if score != 1000 {
		t.Errorf("Expected exact match score 1000, got %d", score)
	}
}

func TestFuzzyScorePrefixMatch(t *testing.T) {
	score := fuzzyScore("electronics", "elec")
	if score < 500 {
		t.Errorf("Expected prefix match score >= 500, got %d", score)
	}
}

func TestFuzzyScoreContainsMatch(t *testing.T) {
	score := fuzzyScore("power-tools-garage", "tools")
	if score < 200 {
		t.Errorf("Expected contains match score >= 200, got %d", score)
	}
}

func TestFuzzyScoreSubsequenceMatch(t *testing.T) {
	score := fuzzyScore("kitchen", "ktn")
	if score <= 0 {
		t.Errorf("Expected subsequence match score > 0, got %d", score)
	}
}

func TestFuzzyScoreNoMatch(t *testing.T) {
	score := fuzzyScore("tools", "xyz")
	if score != 0 {
		t.Errorf("Expected no match score 0, got %d", score)
	}
}

func TestFuzzyScoreCaseInsensitive(t *testing.T) {
	score1 := fuzzyScore("TOOLS", "tools")
	score2 := fuzzyScore("tools", "TOOLS")
	if score1 != 1000 || score2 != 1000 {
		t.Errorf("Expected case-insensitive exact match, got scores %d and %d", score1, score2)
	}
}

func TestFuzzyScoreWordBoundaryBonus(t *testing.T) {
	score1 := fuzzyScore("hand-saw-set", "hs")
	score2 := fuzzyScore("handsawset", "hs")
	if score1 <= score2 {
		t.Errorf("Expected word boundary match to score higher: boundary=%d, no-boundary=%d", score1, score2)
	}
}

func TestNewLabelPickerModelSortsByName(t *testing.T) {
	picker := NewLabelPickerModel(labelsNamed("zebra", "Tools", "books", "camping"), TestTheme())

	if picker.allLabels[0].Name != "books" {
		t.Errorf("Expected first label 'books' (sorted), got %s", picker.allLabels[0].Name)
	}
	if picker.allLabels[1].Name != "camping" {
		t.Errorf("Expected second label 'camping', got %s", picker.allLabels[1].Name)
	}
	if picker.allLabels[3].Name != "zebra" {
		t.Errorf("Expected last label 'zebra' (sorted), got %s", picker.allLabels[3].Name)
	}
}

func TestLabelPickerSetLabelsDropsUnknownChecks(t *testing.T) {
	picker := NewLabelPickerModel(labelsNamed("a", "b"), TestTheme())
	picker.SetChecked([]string{"lbl-a", "lbl-b"})
	picker.SetLabels(labelsNamed("b", "c"))

	ids := picker.CheckedIDs()
	if len(ids) != 1 || ids[0] != "lbl-b" {
		t.Errorf("Expected only lbl-b to stay checked, got %v", ids)
	}
}

func TestLabelPickerNavigation(t *testing.T) {
	picker := NewLabelPickerModel(labelsNamed("books", "camping", "tools"), TestTheme())

	assertSelected := func(want string) {
		t.Helper()
		l, ok := picker.SelectedLabel()
		if !ok || l.Name != want {
			t.Errorf("Expected selection %q, got %q (ok=%v)", want, l.Name, ok)
		}
	}

	assertSelected("books")
	picker.MoveDown()
	assertSelected("camping")
	picker.MoveDown()
	assertSelected("tools")
	picker.MoveDown()
	assertSelected("tools")
	picker.MoveUp()
	assertSelected("camping")
}

func TestLabelPickerEmptySelection(t *testing.T) {
	picker := NewLabelPickerModel(nil, TestTheme())
	if _, ok := picker.SelectedLabel(); ok {
		t.Error("Expected no selection from empty labels")
	}
	picker.ToggleSelected()
	if len(picker.CheckedIDs()) != 0 {
		t.Error("Toggle on empty picker should not check anything")
	}
}

func TestLabelPickerToggleAndCheckedOrder(t *testing.T) {
	picker := NewLabelPickerModel(labelsNamed("tools", "books", "camping"), TestTheme())
	picker.MoveDown()
	picker.MoveDown()
	picker.ToggleSelected() // tools
	picker.MoveUp()
	picker.MoveUp()
	picker.ToggleSelected() // books

	ids := picker.CheckedIDs()
	if len(ids) != 2 || ids[0] != "lbl-books" || ids[1] != "lbl-tools" {
		t.Errorf("Expected [lbl-books lbl-tools], got %v", ids)
	}

	picker.ToggleSelected()
	ids = picker.CheckedIDs()
	if len(ids) != 1 || ids[0] != "lbl-tools" {
		t.Errorf("Expected second toggle to uncheck books, got %v", ids)
	}
}

func TestLabelPickerFiltering(t *testing.T) {
	picker := NewLabelPickerModel(labelsNamed("tools", "tool-box", "books", "camping"), TestTheme())
	if picker.FilteredCount() != 4 {
		t.Errorf("Expected 4 filtered labels initially, got %d", picker.FilteredCount())
	}

	for _, r := range "tool" {
		picker.UpdateInput(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	if picker.InputValue() != "tool" {
		t.Fatalf("Expected input 'tool', got %q", picker.InputValue())
	}
	if picker.FilteredCount() != 2 {
		t.Errorf("Expected 2 matches for 'tool', got %d", picker.FilteredCount())
	}
	l, _ := picker.SelectedLabel()
	if l.Name != "tool-box" && l.Name != "tools" {
		t.Errorf("Expected a tool label on top, got %s", l.Name)
	}
}

func TestLabelPickerReset(t *testing.T) {
	picker := NewLabelPickerModel(labelsNamed("books", "tools"), TestTheme())
	picker.MoveDown()
	picker.UpdateInput(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'o'}})
	picker.Reset()

	if picker.InputValue() != "" {
		t.Errorf("Expected empty input after Reset, got %s", picker.InputValue())
	}
	if picker.selectedIndex != 0 {
		t.Errorf("Expected selectedIndex 0 after Reset, got %d", picker.selectedIndex)
	}
	if picker.FilteredCount() != 2 {
		t.Errorf("Expected all labels after Reset, got %d", picker.FilteredCount())
	}
}
