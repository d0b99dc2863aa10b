package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vanderheijden86/stockpile/internal/datasource"
	"github.com/vanderheijden86/stockpile/pkg/model"
	"github.com/vanderheijden86/stockpile/pkg/tree"
)

type treeOptions struct {
	query     string
	items     bool
	prune     bool
	collapsed bool
	snapshot  string
	offline   bool
	compare   string
	stats     bool
}

func newTreeCommand(a *app) *cobra.Command {
	var opts treeOptions
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the location tree",
		Long: `Print the location tree as an outline.

--query keeps matching nodes, their ancestors, and (unless --prune) the
whole subtree under a matching location. The tree is read from the backend,
or from a snapshot written by 'stk export'.`,
		Example: `  stk tree --items
  stk tree -q drill
  stk tree --items --stats
  stk tree --snapshot inventory.sqlite3
  stk tree --compare inventory.sqlite3`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTree(cmd, a, opts)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.query, "query", "q", "", "only show nodes matching this text")
	f.BoolVar(&opts.items, "items", false, "include items as leaves")
	f.BoolVar(&opts.prune, "prune", false, "with --query, drop non-matching children of matches")
	f.BoolVar(&opts.collapsed, "collapsed", false, "apply the configured expansion instead of expanding everything")
	f.StringVar(&opts.snapshot, "snapshot", "", "read the tree from a snapshot file")
	f.BoolVar(&opts.offline, "offline", false, "read the tree from the newest snapshot in the state directory")
	f.StringVar(&opts.compare, "compare", "", "compare the backend tree with a snapshot file")
	f.BoolVar(&opts.stats, "stats", false, "print location and item totals after the outline")
	cmd.MarkFlagsMutuallyExclusive("snapshot", "offline", "compare")
	return cmd
}

func runTree(cmd *cobra.Command, a *app, opts treeOptions) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	live := datasource.DataSource{Type: datasource.SourceTypeAPI, Path: a.cfg.Server.URL}

	if opts.compare != "" {
		if err := a.requireSession(); err != nil {
			return err
		}
		c, err := a.client()
		if err != nil {
			return err
		}
		diffOpts := datasource.DefaultDiffOptions()
		diffOpts.IgnoreItems = !opts.items
		diff, err := datasource.CompareSources(ctx, live, datasource.SnapshotSource(opts.compare), c, diffOpts)
		if err != nil {
			return backendError(err)
		}
		summary := diff.Summary()
		if !strings.HasSuffix(summary, "\n") {
			summary += "\n"
		}
		_, _ = fmt.Fprint(out, summary)
		return nil
	}

	var nodes []model.TreeNode
	switch {
	case opts.offline:
		var src datasource.DataSource
		var err error
		nodes, src, err = datasource.LoadLatestSnapshot(datasource.SnapshotDir(), opts.items)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Using snapshot %s\n", src.Path)

	case opts.snapshot != "":
		src := datasource.SnapshotSource(opts.snapshot)
		if err := datasource.ValidateSource(&src); err != nil {
			return fmt.Errorf("snapshot %s: %w", opts.snapshot, err)
		}
		var err error
		nodes, err = datasource.LoadTree(ctx, src, nil, opts.items)
		if err != nil {
			return err
		}

	default:
		if err := a.requireSession(); err != nil {
			return err
		}
		c, err := a.client()
		if err != nil {
			return err
		}
		nodes, err = datasource.LoadTree(ctx, live, c, opts.items)
		if err != nil {
			return backendError(err)
		}
	}

	if err := tree.Validate(nodes); err != nil {
		return err
	}

	var exp *tree.Expansion
	switch {
	case opts.query != "":
		if opts.prune {
			nodes = tree.Prune(nodes, opts.query)
		} else {
			nodes = tree.Filter(nodes, opts.query)
		}
		exp = tree.NewExpansion()
		exp.ExpandAll(nodes)
	case opts.collapsed:
		exp = a.cfg.TreePolicy().NewExpansion(nodes)
	default:
		exp = tree.NewExpansion()
		exp.ExpandAll(nodes)
	}

	if len(nodes) == 0 {
		if opts.query != "" {
			_, _ = fmt.Fprintf(out, "No locations match %q\n", opts.query)
		} else {
			_, _ = fmt.Fprintln(out, "No locations yet")
		}
		return nil
	}
	writeOutline(out, tree.Rows(nodes, exp, nil))
	if opts.stats {
		_, _ = fmt.Fprintf(out, "\n%s", treeStats(nodes, opts.items))
	}
	return nil
}

// treeStats totals the nodes of the printed tree, filtered or not.
func treeStats(nodes []model.TreeNode, withItems bool) string {
	s := plural(tree.CountKind(nodes, model.KindLocation), "location", "locations")
	if withItems {
		s += ", " + plural(tree.CountKind(nodes, model.KindItem), "item", "items")
	}
	return s + "\n"
}

func plural(n int, one, many string) string {
	if n == 1 {
		return "1 " + one
	}
	return fmt.Sprintf("%d %s", n, many)
}

// writeOutline prints rows with branch guides. Collapsed nodes with
// children get a trailing child count.
func writeOutline(w io.Writer, rows []tree.Row) {
	guides := tree.Guides(rows)
	for i, r := range rows {
		name := r.Node.Name
		if r.Node.Kind == model.KindItem {
			name = "· " + name
		}
		if r.HasChildren && !r.Expanded {
			name = fmt.Sprintf("%s (%d)", name, r.ChildCount())
		}
		_, _ = fmt.Fprintf(w, "%s%s\n", guides[i], name)
	}
}
