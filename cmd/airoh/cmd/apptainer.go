package cmd

import (
	"fmt"
	"os"

	"github.com/go-logr/logr"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/airoh-project/airoh/internal/cli"
	"github.com/airoh-project/airoh/internal/engine"
	"github.com/airoh-project/airoh/internal/provision"
	"github.com/airoh-project/airoh/internal/runtime"
	"github.com/airoh-project/airoh/internal/viper"
)

func apptainerCmd() *cobra.Command {
	apptainerCmd := &cobra.Command{
		Use:   "apptainer",
		Short: "Run the project image on HPC systems through Apptainer",
		Args:  cobra.MinimumNArgs(1),
	}

	viper := viper.Instance()
	apptainerCmd.PersistentFlags().String("sif-path", "", "Where the Apptainer .sif image lives. (env: AIROH_SIF_PATH)")
	_ = viper.BindPFlag("sif_path", apptainerCmd.PersistentFlags().Lookup("sif-path"))

	apptainerCmd.AddCommand(apptainerArchiveCmd())
	apptainerCmd.AddCommand(apptainerRunCmd())

	return apptainerCmd
}

func apptainerArchiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "archive",
		Short: "Convert the container image into an Apptainer .sif file",
		RunE:  runApptainerArchive,
	}
}

func runApptainerArchive(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := logr.FromContextOrDiscard(ctx)
	cmd.SilenceUsage = true

	cfg, err := runtime.NewConfigFrom(*viper.Instance())
	if err != nil {
		return err
	}
	image, err := cfg.ResolveImage("")
	if err != nil {
		return err
	}
	sifPath := cfg.SifFile(image)

	exists, err := afero.Exists(afero.NewOsFs(), sifPath)
	if err != nil {
		return err
	}
	if exists {
		logger.Info("sif image already exists, nothing to do", "path", sifPath)
		return nil
	}

	apptainerEngine := *engine.NewApptainerEngine()
	if err := apptainerEngine.Available(); err != nil {
		return fmt.Errorf("apptainer is not installed or not in PATH: %v", err)
	}

	// The image has to sit in the docker daemon before apptainer can
	// convert it.
	provisioner := provision.NewProvisioner(*engine.NewDockerEngine())
	if _, err := provisioner.EnsureLoaded(ctx, image, cfg.ArchivePath(image)); err != nil {
		return err
	}

	logger.Info("building sif image", "image", image, "path", sifPath)
	if _, err := apptainerEngine.Build(ctx, sifPath, fmt.Sprintf("docker-daemon:%s:latest", image)); err != nil {
		return fmt.Errorf("unable to build %s: %w", sifPath, err)
	}
	return nil
}

func apptainerRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run -- <command> [args...]",
		Short: "Run a command inside the Apptainer .sif image",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runApptainerRun,
	}
}

func runApptainerRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := logr.FromContextOrDiscard(ctx)
	cmd.SilenceUsage = true

	cfg, err := runtime.NewConfigFrom(*viper.Instance())
	if err != nil {
		return err
	}
	image, err := cfg.ResolveImage("")
	if err != nil {
		return err
	}
	sifPath := cfg.SifFile(image)

	exists, err := afero.Exists(afero.NewOsFs(), sifPath)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("sif image %s not found, run airoh apptainer archive first", sifPath)
	}

	apptainerEngine := *engine.NewApptainerEngine()
	if err := apptainerEngine.Available(); err != nil {
		return fmt.Errorf("apptainer is not installed or not in PATH: %v", err)
	}

	hostDir, err := os.Getwd()
	if err != nil {
		return err
	}

	logger.Info("running in sif image", "path", sifPath, "command", args)
	out, err := apptainerEngine.Exec(ctx, sifPath, cli.ApptainerExecOptions{
		HostDir: hostDir,
		WorkDir: cfg.ContainerWorkdir,
		Command: args,
	})
	if err != nil {
		return fmt.Errorf("apptainer command failed: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), out.Stdout)
	return nil
}
