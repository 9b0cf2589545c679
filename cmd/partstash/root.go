package main

import (
	"github.com/spf13/cobra"

	"github.com/partstash/partstash/internal/logging"
)

func newRootCommand() *cobra.Command {
	var (
		storeFlag   string
		profileFlag string
		userFlag    string
		projectFlag string
		jsonFlag    bool
	)

	ctx := newCommandContext(&storeFlag, &profileFlag, &userFlag, &projectFlag, &jsonFlag)

	rootCmd := &cobra.Command{
		Use:           "partstash",
		Short:         "BOM import and local part numbering",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Keep interactive output clean; warnings and errors still
			// reach stderr.
			logging.Setup("warn", "text")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&storeFlag, "store", "partstash.db", "Path to the SQLite store")
	rootCmd.PersistentFlags().StringVar(&profileFlag, "profile", "", "Path to a TOML import profile")
	rootCmd.PersistentFlags().StringVar(&userFlag, "user", "local", "User scope for the component collections")
	rootCmd.PersistentFlags().StringVar(&projectFlag, "project", "default", "Project scope for the component collections")
	rootCmd.PersistentFlags().BoolVar(&jsonFlag, "json", false, "Emit JSON instead of tables")

	rootCmd.AddCommand(newImportCommand(ctx))
	rootCmd.AddCommand(newListCommand(ctx))
	rootCmd.AddCommand(newPendingCommand(ctx))
	rootCmd.AddCommand(newResolveCommand(ctx))
	rootCmd.AddCommand(newAssignCommand(ctx))

	return rootCmd
}
