package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vanderheijden86/stockpile/pkg/model"
)

func newLabelsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "labels",
		Aliases: []string{"label"},
		Short:   "List, create, or delete labels",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			c, err := a.client()
			if err != nil {
				return err
			}
			labels, err := c.GetLabels(cmd.Context())
			if err != nil {
				return backendError(err)
			}
			renderLabels(cmd.OutOrStdout(), labels)
			return nil
		},
	}
	cmd.AddCommand(newLabelCreateCommand(a))
	cmd.AddCommand(newLabelDeleteCommand(a))
	return cmd
}

func newLabelCreateCommand(a *app) *cobra.Command {
	var in model.LabelCreate
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a label",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			in.Name = strings.TrimSpace(args[0])
			if err := in.Validate(); err != nil {
				return err
			}
			c, err := a.client()
			if err != nil {
				return err
			}
			l, err := c.CreateLabel(cmd.Context(), in)
			if err != nil {
				return backendError(err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created label %s (%s)\n", l.Name, l.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Description, "description", "", "label description")
	cmd.Flags().StringVar(&in.Color, "color", "", "label color, e.g. #ff8800")
	return cmd
}

func newLabelDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a label",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			c, err := a.client()
			if err != nil {
				return err
			}
			if err := c.DeleteLabel(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("label %s: %w", args[0], backendError(err))
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted label %s\n", args[0])
			return nil
		},
	}
}
