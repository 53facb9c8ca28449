package cmd

import (
	"github.com/spf13/cobra"

	"github.com/airoh-project/airoh/internal/engine"
	"github.com/airoh-project/airoh/internal/figures"
	"github.com/airoh-project/airoh/internal/runtime"
	"github.com/airoh-project/airoh/internal/viper"
)

func figuresCmd() *cobra.Command {
	figuresCmd := &cobra.Command{
		Use:   "figures",
		Short: "Generate the project's figures from Jupyter notebooks",
		Args:  cobra.MinimumNArgs(1),
	}

	viper := viper.Instance()
	figuresCmd.PersistentFlags().String("notebooks-dir", "", "Where the figure notebooks live. (env: AIROH_NOTEBOOKS_DIR)")
	_ = viper.BindPFlag("notebooks_dir", figuresCmd.PersistentFlags().Lookup("notebooks-dir"))

	figuresCmd.PersistentFlags().String("figures-dir", "", "Where generated figures are written. (env: AIROH_FIGURES_DIR)")
	_ = viper.BindPFlag("figures_dir", figuresCmd.PersistentFlags().Lookup("figures-dir"))

	figuresCmd.AddCommand(figuresRunCmd())

	return figuresCmd
}

func figuresRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Execute every figure notebook without existing output",
		Long:  "Execute each notebook in the notebooks directory in place, skipping notebooks whose output directory under the figures directory already exists.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			cfg, err := runtime.NewConfigFrom(*viper.Instance())
			if err != nil {
				return err
			}
			runner := figures.NewRunner(*engine.NewNotebookEngine(), cfg)
			return runner.Run(cmd.Context())
		},
	}
}
