package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/partstash/partstash/internal/bom"
)

func newPendingCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "pending",
		Short: "List rows parked for designator/quantity resolution",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.ensureService()
			if err != nil {
				return err
			}
			defer ctx.close()

			pending, err := svc.Pending(cmd.Context(), ctx.user(), ctx.project())
			if err != nil {
				return err
			}

			if ctx.json() {
				return writeJSON(cmd, pending)
			}

			rows := make([][]string, 0, len(pending))
			for _, amb := range pending {
				rows = append(rows, []string{
					shortID(amb.ID),
					amb.Field(bom.FieldDesignator),
					amb.OriginalQuantity,
					strings.Join(amb.Candidates, ", "),
				})
			}
			renderTable(cmd, []string{"ID", "Designator", "Qty", "Candidates"}, rows)
			return nil
		},
	}
}
