package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/vanderheijden86/stockpile/pkg/model"
)

func newLocationCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "location",
		Aliases: []string{"loc"},
		Short:   "Create, rename, move, or delete locations",
	}
	cmd.AddCommand(newLocationCreateCommand(a))
	cmd.AddCommand(newLocationUpdateCommand(a))
	cmd.AddCommand(newLocationDeleteCommand(a))
	return cmd
}

func newLocationCreateCommand(a *app) *cobra.Command {
	var (
		in     model.LocationCreate
		parent string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a location",
		Example: `  stk location create --name Garage
  stk location create --name "Shelf 1" --parent <location-id>`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			if strings.TrimSpace(in.Name) == "" && a.interactive() {
				if err := locationForm(&in); err != nil {
					return err
				}
			}
			in.Name = strings.TrimSpace(in.Name)
			if parent != "" {
				in.ParentID = &parent
			}
			if err := in.Validate(); err != nil {
				return err
			}

			c, err := a.client()
			if err != nil {
				return err
			}
			loc, err := c.CreateLocation(cmd.Context(), in)
			if err != nil {
				return backendError(err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created location %s (%s)\n", loc.Name, loc.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Name, "name", "", "location name")
	cmd.Flags().StringVar(&in.Description, "description", "", "location description")
	cmd.Flags().StringVar(&parent, "parent", "", "parent location id (default: a root location)")
	return cmd
}

func locationForm(in *model.LocationCreate) error {
	form := newForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Value(&in.Name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name is required")
					}
					return nil
				}),
			huh.NewText().
				Title("Description").
				Value(&in.Description),
		),
	)
	return form.Run()
}

func newLocationUpdateCommand(a *app) *cobra.Command {
	var (
		name, description, parent string
		root                      bool
	)
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Rename, describe, or move a location",
		Long: `Update a location. Only the flags given are changed; --parent moves the
location under another one and --root makes it a root location.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			c, err := a.client()
			if err != nil {
				return err
			}
			id := args[0]
			cur, err := c.GetLocation(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("location %s: %w", id, backendError(err))
			}

			in := model.LocationCreate{Name: cur.Name, Description: cur.Description}
			if cur.Parent != nil {
				pid := cur.Parent.ID
				in.ParentID = &pid
			}
			f := cmd.Flags()
			if f.Changed("name") {
				in.Name = strings.TrimSpace(name)
			}
			if f.Changed("description") {
				in.Description = description
			}
			switch {
			case root:
				in.ParentID = nil
			case f.Changed("parent"):
				if parent == id {
					return fmt.Errorf("a location cannot be its own parent")
				}
				in.ParentID = &parent
			}
			if err := in.Validate(); err != nil {
				return err
			}

			loc, err := c.UpdateLocation(cmd.Context(), id, in)
			if err != nil {
				return backendError(err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Updated location %s\n", loc.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&description, "description", "", "new description")
	cmd.Flags().StringVar(&parent, "parent", "", "new parent location id")
	cmd.Flags().BoolVar(&root, "root", false, "make this a root location")
	cmd.MarkFlagsMutuallyExclusive("parent", "root")
	return cmd
}

func newLocationDeleteCommand(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a location",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			c, err := a.client()
			if err != nil {
				return err
			}
			id := args[0]
			loc, err := c.GetLocation(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("location %s: %w", id, backendError(err))
			}
			if !yes {
				if !a.interactive() {
					return fmt.Errorf("refusing to delete %q without --yes", loc.Name)
				}
				ok, err := confirm(fmt.Sprintf("Delete %q?", loc.Name), "Child locations are moved to the top level.")
				if err != nil {
					return err
				}
				if !ok {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
					return nil
				}
			}
			if err := c.DeleteLocation(cmd.Context(), id); err != nil {
				return backendError(err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted location %s\n", loc.Name)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation")
	return cmd
}

func confirm(title, description string) (bool, error) {
	ok := false
	form := newForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Value(&ok).
				Affirmative("Delete").
				Negative("Cancel"),
		),
	)
	if err := form.Run(); err != nil {
		return false, err
	}
	return ok, nil
}
