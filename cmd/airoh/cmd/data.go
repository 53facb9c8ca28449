package cmd

import (
	"github.com/spf13/cobra"

	"github.com/airoh-project/airoh/internal/datasets"
	"github.com/airoh-project/airoh/internal/engine"
	"github.com/airoh-project/airoh/internal/runtime"
	"github.com/airoh-project/airoh/internal/viper"
)

func dataCmd() *cobra.Command {
	dataCmd := &cobra.Command{
		Use:   "data",
		Short: "Manage the project's DataLad datasets and tracked files",
		Args:  cobra.MinimumNArgs(1),
	}

	dataCmd.AddCommand(dataGetCmd())
	dataCmd.AddCommand(dataImportFileCmd())
	dataCmd.AddCommand(dataImportArchiveCmd())

	return dataCmd
}

func newDataManager() (*datasets.Manager, error) {
	cfg, err := runtime.NewConfigFrom(*viper.Instance())
	if err != nil {
		return nil, err
	}
	return datasets.NewManager(*engine.NewDataladEngine(), cfg), nil
}

func dataGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <dataset>",
		Short: "Install a configured subdataset and retrieve its content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			manager, err := newDataManager()
			if err != nil {
				return err
			}
			return manager.Get(cmd.Context(), args[0])
		},
	}
}

func dataImportFileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import-file <name>",
		Short: "Download a configured file entry via DataLad",
		Long:  "Download the file entry named in the configuration's files section, skipping the download when the output file already exists.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			manager, err := newDataManager()
			if err != nil {
				return err
			}
			return manager.ImportFile(cmd.Context(), args[0])
		},
	}
}

func dataImportArchiveCmd() *cobra.Command {
	importCmd := &cobra.Command{
		Use:   "import-archive <url>",
		Short: "Download a remote archive and extract it into the dataset",
		Args:  cobra.ExactArgs(1),
		RunE:  runDataImportArchive,
	}

	importCmd.Flags().String("archive-name", "", "Override the archive filename derived from the URL.")
	importCmd.Flags().String("target-dir", "", "The dataset directory to extract into. Defaults to the current directory.")
	importCmd.Flags().Bool("drop-archive", false, "Drop the archive from the annex after extraction.")

	return importCmd
}

func runDataImportArchive(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	manager, err := newDataManager()
	if err != nil {
		return err
	}

	archiveName, _ := cmd.Flags().GetString("archive-name")
	targetDir, _ := cmd.Flags().GetString("target-dir")
	drop, _ := cmd.Flags().GetBool("drop-archive")

	return manager.ImportArchive(cmd.Context(), args[0], datasets.ImportArchiveOptions{
		ArchiveName: archiveName,
		TargetDir:   targetDir,
		DropArchive: drop,
	})
}
