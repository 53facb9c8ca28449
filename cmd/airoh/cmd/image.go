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
	"github.com/airoh-project/airoh/internal/workspace"
)

func imageCmd() *cobra.Command {
	imageCmd := &cobra.Command{
		Use:   "image",
		Short: "Manage the project's container image",
		Args:  cobra.MinimumNArgs(1),
	}

	viper := viper.Instance()
	imageCmd.PersistentFlags().String("image", "", "The container image the project runs in. (env: AIROH_IMAGE)")
	_ = viper.BindPFlag("image", imageCmd.PersistentFlags().Lookup("image"))

	imageCmd.AddCommand(imageBuildCmd())
	imageCmd.AddCommand(imageArchiveCmd())
	imageCmd.AddCommand(imageSetupCmd())
	imageCmd.AddCommand(imageRunCmd())

	return imageCmd
}

func imageBuildCmd() *cobra.Command {
	buildCmd := &cobra.Command{
		Use:   "build",
		Short: "Build the project's container image from its Dockerfile",
		RunE:  runImageBuild,
	}

	viper := viper.Instance()
	buildCmd.Flags().Bool("no-cache", false, "Build the image without using the layer cache.")
	_ = viper.BindPFlag("no_cache", buildCmd.Flags().Lookup("no-cache"))

	return buildCmd
}

func runImageBuild(cmd *cobra.Command, args []string) error {
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

	logger.Info("building image", "image", image)
	dockerEngine := *engine.NewDockerEngine()
	if err := dockerEngine.Available(); err != nil {
		return fmt.Errorf("%w: %v", provision.ErrToolingUnavailable, err)
	}

	out, err := dockerEngine.BuildImage(ctx, image, cli.ImageBuildOptions{
		NoCache: viper.Instance().GetBool("no_cache"),
	})
	if err != nil {
		return fmt.Errorf("unable to build %s: %w", image, err)
	}
	fmt.Fprint(cmd.OutOrStdout(), out.Stdout)
	return nil
}

func imageArchiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "archive",
		Short: "Save the container image as a compressed archive",
		Long:  "Save the project's container image to a gzip-compressed tar archive that can be attached to a data release.",
		RunE:  runImageArchive,
	}
}

func runImageArchive(cmd *cobra.Command, args []string) error {
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

	destination := cfg.ArchivePath(image)
	provisioner := provision.NewProvisioner(*engine.NewDockerEngine())
	if err := provisioner.SaveArchive(ctx, image, destination); err != nil {
		return err
	}
	logger.Info("image archived", "image", image, "destination", destination)
	return nil
}

func imageSetupCmd() *cobra.Command {
	setupCmd := &cobra.Command{
		Use:   "setup",
		Short: "Make the container image available in the local runtime",
		Long:  "Ensure the project's container image is loaded and tagged as latest, downloading and loading its archive when the runtime does not already have it.",
		RunE:  runImageSetup,
	}

	viper := viper.Instance()
	setupCmd.Flags().String("archive-url", "", "Where to download the image archive from when it is missing locally. (env: AIROH_ARCHIVE_URL)")
	_ = viper.BindPFlag("archive_url", setupCmd.Flags().Lookup("archive-url"))

	return setupCmd
}

func runImageSetup(cmd *cobra.Command, args []string) error {
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
	archive := cfg.ArchivePath(image)

	fs := afero.NewOsFs()
	exists, err := afero.Exists(fs, archive)
	if err != nil {
		return err
	}
	if !exists && cfg.ArchiveURL != "" {
		logger.Info("downloading image archive", "url", cfg.ArchiveURL, "destination", archive)
		if err := workspace.DownloadFile(fs, archive, cfg.ArchiveURL); err != nil {
			return fmt.Errorf("unable to download image archive: %w", err)
		}
	}

	provisioner := provision.NewProvisioner(*engine.NewDockerEngine())
	report, err := provisioner.EnsureLoaded(ctx, image, archive)
	if err != nil {
		return err
	}
	if report.TagWarning != nil {
		logger.Info("image is usable but could not be tagged as latest", "image", image, "reason", report.TagWarning.Error())
	}
	if report.AlreadyPresent {
		logger.Info("image already present", "image", image)
	} else {
		logger.Info("image loaded", "image", image, "archive", archive)
	}
	return nil
}

func imageRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run -- <command> [args...]",
		Short: "Run a command inside the project's container image",
		Long:  "Run a command in a disposable container with the current directory bind-mounted at the configured container workdir. The image is provisioned first when needed.",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runImageRun,
	}
}

func runImageRun(cmd *cobra.Command, args []string) error {
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

	dockerEngine := *engine.NewDockerEngine()
	provisioner := provision.NewProvisioner(dockerEngine)
	if _, err := provisioner.EnsureLoaded(ctx, image, cfg.ArchivePath(image)); err != nil {
		return err
	}

	hostDir, err := os.Getwd()
	if err != nil {
		return err
	}

	logger.Info("running in container", "image", image, "command", args)
	out, err := dockerEngine.RunContainer(ctx, image, cli.ImageRunOptions{
		HostDir: hostDir,
		WorkDir: cfg.ContainerWorkdir,
		Command: args,
	})
	if err != nil {
		return fmt.Errorf("container command failed: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), out.Stdout)
	return nil
}
