package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func newAssignCommand(ctx *commandContext) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "assign [ID...]",
		Short: "Assign local part numbers to components",
		Long: `Assign local part numbers to the named components (full ids or unique
prefixes). With --all, every component that has an MPN but no LPN yet is
processed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if all == (len(args) > 0) {
				return fmt.Errorf("specify either component ids or --all")
			}

			svc, err := ctx.ensureService()
			if err != nil {
				return err
			}
			defer ctx.close()

			comps, err := svc.Components(cmd.Context(), ctx.user(), ctx.project())
			if err != nil {
				return err
			}

			var ids []string
			if all {
				for _, comp := range comps {
					if _, _, ok := comp.MPN(); ok && comp.LPN() == "" {
						ids = append(ids, comp.ID)
					}
				}
				if len(ids) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Nothing to assign")
					return nil
				}
			} else {
				known := make([]string, 0, len(comps))
				for _, comp := range comps {
					known = append(known, comp.ID)
				}
				for _, arg := range args {
					id, err := expandID(arg, known)
					if err != nil {
						return err
					}
					ids = append(ids, id)
				}
			}

			res, err := svc.AssignLPNBatch(cmd.Context(), ctx.user(), ctx.project(), ids)
			if err != nil {
				return err
			}

			if ctx.json() {
				return writeJSON(cmd, res)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Assigned %d of %d components\n", len(res.Assigned), res.Total)
			rows := make([][]string, 0, len(res.Assigned)+len(res.Failures))
			for id, assigned := range res.Assigned {
				rows = append(rows, []string{shortID(id), assigned, ""})
			}
			for id, detail := range res.Failures {
				rows = append(rows, []string{shortID(id), "", detail})
			}
			sort.Slice(rows, func(i, j int) bool { return rows[i][0] < rows[j][0] })
			renderTable(cmd, []string{"ID", "LPN", "Error"}, rows)
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Assign every component with an MPN and no LPN")
	return cmd
}
