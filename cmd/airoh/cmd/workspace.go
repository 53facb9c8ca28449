package cmd

import (
	"github.com/spf13/cobra"

	"github.com/airoh-project/airoh/internal/runtime"
	"github.com/airoh-project/airoh/internal/viper"
	"github.com/airoh-project/airoh/internal/workspace"
)

func ensureDirCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ensure-dir <key>",
		Short: "Create a configured project directory if it is missing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			cfg, err := runtime.NewConfigFrom(*viper.Instance())
			if err != nil {
				return err
			}
			return workspace.New(cfg).EnsureDir(cmd.Context(), args[0])
		},
	}
}

func cleanCmd() *cobra.Command {
	cleanCmd := &cobra.Command{
		Use:   "clean <key>",
		Short: "Remove a configured project directory or files within it",
		Long:  "Remove the directory configured under key, or only the files matching --pattern inside it.",
		Args:  cobra.ExactArgs(1),
		RunE:  runClean,
	}

	cleanCmd.Flags().String("pattern", "", "Remove only files matching this glob instead of the whole directory.")

	return cleanCmd
}

func runClean(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	cfg, err := runtime.NewConfigFrom(*viper.Instance())
	if err != nil {
		return err
	}
	pattern, _ := cmd.Flags().GetString("pattern")
	return workspace.New(cfg).Clean(cmd.Context(), args[0], pattern)
}
