package main

import (
	"github.com/spf13/cobra"

	"github.com/partstash/partstash/internal/bom"
)

var componentHeaders = []string{"ID", "Designator", "Value", "MPN", "LPN"}

func componentRows(comps []bom.Component) [][]string {
	rows := make([][]string, 0, len(comps))
	for _, comp := range comps {
		mpn, _, _ := comp.MPN()
		rows = append(rows, []string{
			shortID(comp.ID),
			comp.Field(bom.FieldDesignator),
			comp.Field("Value"),
			mpn,
			comp.LPN(),
		})
	}
	return rows
}

// shortID truncates a UUID for table display; JSON output keeps the full
// id.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func newListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the project's components",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.ensureService()
			if err != nil {
				return err
			}
			defer ctx.close()

			comps, err := svc.Components(cmd.Context(), ctx.user(), ctx.project())
			if err != nil {
				return err
			}

			if ctx.json() {
				return writeJSON(cmd, comps)
			}
			renderTable(cmd, componentHeaders, componentRows(comps))
			return nil
		},
	}
}
