package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"golang.org/x/term"

	"github.com/vanderheijden86/stockpile/pkg/api"
	"github.com/vanderheijden86/stockpile/pkg/metrics"
	"github.com/vanderheijden86/stockpile/pkg/model"
)

var errNotSignedIn = errors.New("not signed in: run `stk login` first")

// isTerminal checks if stdin is connected to a terminal.
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// newForm creates a form with settings based on TTY detection.
func newForm(groups ...*huh.Group) *huh.Form {
	form := huh.NewForm(groups...).WithTheme(huh.ThemeCharm())
	if !isTerminal() {
		form = form.WithAccessible(true)
	}
	return form
}

// backendError rewrites an unauthorized failure into a hint to sign in.
func backendError(err error) error {
	if errors.Is(err, api.ErrUnauthorized) {
		return errNotSignedIn
	}
	return err
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

func labelNames(labels []model.Label) string {
	names := make([]string, len(labels))
	for i, l := range labels {
		names[i] = l.Name
	}
	return strings.Join(names, ", ")
}

func locationName(l *model.LocationSummary) string {
	if l == nil {
		return ""
	}
	return l.Name
}

func formatPrice(p float64) string {
	return fmt.Sprintf("$%.2f", p)
}

func renderItems(w io.Writer, page model.PaginationResult[model.ItemSummary], pageSize int) {
	if len(page.Items) == 0 {
		_, _ = fmt.Fprintln(w, "(no items)")
		return
	}
	t := newTable(w)
	t.AppendHeader(table.Row{"Name", "Location", "Qty", "Price", "Labels", "ID"})
	for _, it := range page.Items {
		t.AppendRow(table.Row{it.Name, locationName(it.Location), it.Quantity, formatPrice(it.PurchasePrice), labelNames(it.Labels), it.ID})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
	})
	t.AppendFooter(table.Row{fmt.Sprintf("page %d/%d", max(page.Page, 1), page.TotalPages(pageSize)), "", page.Total, "", "", ""})
	t.Render()
}

func renderLabels(w io.Writer, labels []model.Label) {
	if len(labels) == 0 {
		_, _ = fmt.Fprintln(w, "(no labels)")
		return
	}
	t := newTable(w)
	t.AppendHeader(table.Row{"Name", "Description", "ID"})
	for _, l := range labels {
		t.AppendRow(table.Row{l.Name, l.Description, l.ID})
	}
	t.Render()
}

func renderItem(w io.Writer, it model.Item) {
	t := newTable(w)
	t.SetTitle(it.Name)
	row := func(k string, v any) { t.AppendRow(table.Row{k, v}) }

	loc := ""
	if it.Location != nil {
		loc = it.Location.Name
	}
	row("ID", it.ID)
	row("Location", loc)
	row("Labels", labelNames(it.Labels))
	row("Quantity", it.Quantity)
	row("Price", formatPrice(it.PurchasePrice))
	if it.PurchaseTime != nil && !it.PurchaseTime.IsZero() {
		row("Purchased", it.PurchaseTime.Format("Jan 2, 2006"))
	}
	if it.WarrantyExpires != nil && !it.WarrantyExpires.IsZero() {
		row("Warranty", it.WarrantyExpires.Format("Jan 2, 2006"))
	}
	for _, f := range []struct{ k, v string }{
		{"Manufacturer", it.Manufacturer},
		{"Model", it.ModelNumber},
		{"Serial", it.SerialNumber},
		{"Asset ID", it.AssetID},
		{"Notes", it.Notes},
	} {
		if f.v != "" {
			row(f.k, f.v)
		}
	}
	row("Updated", it.UpdatedAt.Format("Jan 2, 2006 15:04"))
	t.Render()
}

func printTimings(w io.Writer, stats []metrics.TimingStats) {
	if len(stats) == 0 {
		return
	}
	t := newTable(w)
	t.AppendHeader(table.Row{"Endpoint", "Calls", "Errors", "Avg ms", "Max ms"})
	for _, s := range stats {
		t.AppendRow(table.Row{s.Name, s.Count, s.Errors, fmt.Sprintf("%.1f", s.AvgMs), fmt.Sprintf("%.1f", s.MaxMs)})
	}
	t.Render()
}
