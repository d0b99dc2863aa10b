package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vanderheijden86/stockpile/internal/datasource"
	"github.com/vanderheijden86/stockpile/pkg/export"
)

func newExportCommand(a *app) *cobra.Command {
	var (
		out   string
		title string
		noFTS bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write an offline SQLite snapshot of the inventory",
		Long: `Fetch the location tree, locations, items, and labels and write them to a
single SQLite file. Without --out the file goes to the snapshot directory,
where 'stk tree --offline' finds it.`,
		Example: `  stk export
  stk export --out inventory.sqlite3`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			c, err := a.client()
			if err != nil {
				return err
			}
			snap, err := export.Collect(cmd.Context(), c)
			if err != nil {
				return backendError(err)
			}
			snap.Source = c.BaseURL()

			if out == "" {
				out = datasource.SnapshotPath(datasource.SnapshotDir(), snap.TakenAt)
			}
			e := export.NewSQLiteExporter(snap)
			e.Config.Title = title
			e.Config.FullText = !noFTS
			if err := e.Export(out); err != nil {
				return fmt.Errorf("export %s: %w", out, err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d locations, %d items, %d labels)\n",
				out, len(snap.Locations), len(snap.Items), len(snap.Labels))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default: timestamped file in the snapshot directory)")
	cmd.Flags().StringVar(&title, "title", "", "title stored in the snapshot")
	cmd.Flags().BoolVar(&noFTS, "no-fts", false, "skip the full-text item index")
	return cmd
}
