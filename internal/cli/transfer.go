package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scubot/tagbot/internal/tags"
	"github.com/scubot/tagbot/internal/ui"
)

func newImportCmd(o *rootOptions) *cobra.Command {
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import tags from a YAML file",
		Long: `Import tags from a YAML file written by "tagbot export".

Existing tags are left alone unless --overwrite is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			list, err := tags.ReadFile(args[0])
			if err != nil {
				return o.handleError(out, ErrFileReadError, err, "")
			}

			a, err := o.openApp()
			if err != nil {
				return o.appError(out, err)
			}
			defer a.Close()

			n, err := a.store.Import(cmd.Context(), list, overwrite)
			if err != nil {
				return o.handleError(out, ErrDatabaseError, err, "")
			}

			if o.jsonOutput {
				outputSuccess(out, map[string]int{"imported": n, "total": len(list)}, nil)
				return nil
			}
			fmt.Fprintln(out, ui.Successf("Imported %d of %d tags", n, len(list)))
			if skipped := len(list) - n; skipped > 0 {
				fmt.Fprintln(out, ui.Hint(fmt.Sprintf("%d existing tags skipped; use --overwrite to replace them", skipped)))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace tags that already exist")
	return cmd
}

func newExportCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file>",
		Short: "Export all tags to a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			a, err := o.openApp()
			if err != nil {
				return o.appError(out, err)
			}
			defer a.Close()

			list, err := a.store.List(cmd.Context(), 0, 0)
			if err != nil {
				return o.handleError(out, ErrDatabaseError, err, "")
			}
			if err := tags.WriteFile(args[0], list); err != nil {
				return o.handleError(out, ErrFileWriteError, err, "")
			}

			if o.jsonOutput {
				outputSuccess(out, map[string]any{"path": args[0], "exported": len(list)}, nil)
				return nil
			}
			fmt.Fprintln(out, ui.Successf("Exported %d tags to %s", len(list), args[0]))
			return nil
		},
	}
}
