package cli

import (
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/vanderheijden86/stockpile/pkg/model"
)

func newItemsCommand(a *app) *cobra.Command {
	var (
		q         model.ItemQuery
		all       bool
		asJSON    bool
		labels    []string
		locations []string
	)
	cmd := &cobra.Command{
		Use:   "items",
		Short: "List items",
		Example: `  stk items
  stk items -q drill --page 2
  stk items --label <label-id> --location <location-id>`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			c, err := a.client()
			if err != nil {
				return err
			}
			q.Q = strings.TrimSpace(q.Q)
			q.Labels = labels
			q.Locations = locations
			if q.PageSize <= 0 {
				q.PageSize = a.cfg.UI.PageSize
			}
			if q.Page <= 0 {
				q.Page = 1
			}

			var page model.PaginationResult[model.ItemSummary]
			if all {
				items, err := c.AllItems(cmd.Context(), q)
				if err != nil {
					return backendError(err)
				}
				page = model.PaginationResult[model.ItemSummary]{Items: items, Page: 1, PageSize: len(items), Total: len(items)}
				q.PageSize = len(items)
			} else {
				page, err = c.GetItems(cmd.Context(), q)
				if err != nil {
					return backendError(err)
				}
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(page)
			}
			renderItems(cmd.OutOrStdout(), page, q.PageSize)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&q.Q, "query", "q", "", "search text")
	f.IntVar(&q.Page, "page", 1, "page number (1-based)")
	f.IntVar(&q.PageSize, "page-size", 0, "items per page (default: ui.page_size)")
	f.StringSliceVar(&labels, "label", nil, "only items with this label id (repeatable)")
	f.StringSliceVar(&locations, "location", nil, "only items in this location id (repeatable)")
	f.BoolVar(&all, "all", false, "fetch every page")
	f.BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func newItemCommand(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "item <id>",
		Short: "Show one item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			c, err := a.client()
			if err != nil {
				return err
			}
			it, err := c.GetItem(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("item %s: %w", args[0], backendError(err))
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(it)
			}
			renderItem(cmd.OutOrStdout(), it)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}
