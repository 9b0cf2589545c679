package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/partstash/partstash/internal/bom"
)

func newResolveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve ID=POLICY [ID=POLICY...]",
		Short: "Apply flatten/keep/skip decisions to pending rows",
		Long: `Apply resolution decisions to pending ambiguous rows.

Each argument pairs a pending row id (full or unique prefix) with one of
the policies flatten, keep, or skip. Rows not named stay parked.`,
		Args: cobra.MinimumNArgs(1),
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
			pendingIDs := make([]string, 0, len(pending))
			for _, amb := range pending {
				pendingIDs = append(pendingIDs, amb.ID)
			}

			resolutions := make(map[string]bom.Policy, len(args))
			for _, arg := range args {
				idPart, policyPart, found := strings.Cut(arg, "=")
				if !found {
					return fmt.Errorf("argument %q must be ID=POLICY", arg)
				}
				id, err := expandID(idPart, pendingIDs)
				if err != nil {
					return err
				}
				resolutions[id] = bom.Policy(policyPart)
			}

			resolved, err := svc.Resolve(cmd.Context(), ctx.user(), ctx.project(), resolutions)
			if err != nil {
				return err
			}

			if ctx.json() {
				return writeJSON(cmd, resolved)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Resolved %d decisions into %d components\n", len(resolutions), len(resolved))
			if len(resolved) > 0 {
				renderTable(cmd, componentHeaders, componentRows(resolved))
			}
			return nil
		},
	}
}

// expandID resolves a full id or unique prefix against known ids.
func expandID(part string, known []string) (string, error) {
	var matches []string
	for _, id := range known {
		if id == part {
			return id, nil
		}
		if strings.HasPrefix(id, part) {
			matches = append(matches, id)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return "", fmt.Errorf("no row matches id %q", part)
	default:
		return "", fmt.Errorf("id %q is ambiguous (%d matches)", part, len(matches))
	}
}
