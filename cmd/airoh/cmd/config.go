package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/airoh-project/airoh/internal/runtime"
	"github.com/airoh-project/airoh/internal/viper"
)

func configCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the effective airoh configuration",
		Args:  cobra.MinimumNArgs(1),
	}

	configCmd.AddCommand(configViewCmd())

	return configCmd
}

func configViewCmd() *cobra.Command {
	viewCmd := &cobra.Command{
		Use:   "view",
		Short: "Print the effective configuration after merging file, env, and flags",
		RunE:  runConfigView,
	}

	viewCmd.Flags().String("output", "yaml", "The format of the printed configuration. One of yaml or json.")

	return viewCmd
}

func runConfigView(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	cfg, err := runtime.NewConfigFrom(*viper.Instance())
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("output")
	var rendered []byte
	switch format {
	case "yaml":
		rendered, err = yaml.Marshal(cfg)
	case "json":
		rendered, err = json.MarshalIndent(cfg, "", "  ")
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
	if err != nil {
		return fmt.Errorf("unable to render configuration: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), string(rendered))
	return nil
}
