package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newImportCommand(ctx *commandContext) *cobra.Command {
	var designatorColumn string

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Parse, normalize, and flatten a BOM file into the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.ensureService()
			if err != nil {
				return err
			}
			defer ctx.close()

			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			res, err := svc.Import(cmd.Context(), ctx.user(), ctx.project(), string(data), designatorColumn)
			if err != nil {
				return err
			}

			if ctx.json() {
				return writeJSON(cmd, res)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d components from %d rows (%d pending) using designator column %q\n",
				res.Imported, res.Rows, res.Pending, res.DesignatorColumn)
			if res.Imported > 0 {
				renderTable(cmd, componentHeaders, componentRows(res.Components))
			}
			if res.Pending > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%d rows need resolution; run 'partstash pending'\n", res.Pending)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&designatorColumn, "designator-column", "", "Force a source column for designators")
	return cmd
}
