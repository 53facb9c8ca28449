package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/go-logr/logr"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/airoh-project/airoh/internal/cli"
	"github.com/airoh-project/airoh/internal/engine"
	"github.com/airoh-project/airoh/internal/runtime"
	"github.com/airoh-project/airoh/internal/viper"
)

func envCmd() *cobra.Command {
	envCmd := &cobra.Command{
		Use:   "env",
		Short: "Manage the project's Python environment and source checkouts",
		Args:  cobra.MinimumNArgs(1),
	}

	envCmd.AddCommand(envSetupPythonCmd())
	envCmd.AddCommand(envInstallLocalCmd())
	envCmd.AddCommand(envSubmoduleCmd())

	return envCmd
}

func envSetupPythonCmd() *cobra.Command {
	setupCmd := &cobra.Command{
		Use:   "setup-python",
		Short: "Install the project's Python dependencies with pip",
		RunE:  runEnvSetupPython,
	}

	viper := viper.Instance()
	setupCmd.Flags().String("requirements", "", "The pip requirements file to install from. (env: AIROH_REQUIREMENTS)")
	_ = viper.BindPFlag("requirements", setupCmd.Flags().Lookup("requirements"))

	return setupCmd
}

func runEnvSetupPython(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := logr.FromContextOrDiscard(ctx)
	cmd.SilenceUsage = true

	cfg, err := runtime.NewConfigFrom(*viper.Instance())
	if err != nil {
		return err
	}

	exists, err := afero.Exists(afero.NewOsFs(), cfg.Requirements)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("requirements file %s not found", cfg.Requirements)
	}

	pipEngine := *engine.NewPipEngine()
	if err := pipEngine.Available(); err != nil {
		return fmt.Errorf("pip is not installed or not in PATH: %v", err)
	}

	logger.Info("installing python dependencies", "requirements", cfg.Requirements)
	if _, err := pipEngine.InstallRequirements(ctx, cfg.Requirements); err != nil {
		return fmt.Errorf("unable to install %s: %w", cfg.Requirements, err)
	}
	return nil
}

func envInstallLocalCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "install-local <path>",
		Short: "Install a local Python package in editable mode",
		Args:  cobra.ExactArgs(1),
		RunE:  runEnvInstallLocal,
	}
}

func runEnvInstallLocal(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := logr.FromContextOrDiscard(ctx)
	cmd.SilenceUsage = true

	pkgPath := args[0]
	exists, err := afero.DirExists(afero.NewOsFs(), pkgPath)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("package directory %s not found", pkgPath)
	}

	pipEngine := *engine.NewPipEngine()
	if err := pipEngine.Available(); err != nil {
		return fmt.Errorf("pip is not installed or not in PATH: %v", err)
	}

	logger.Info("installing local package in editable mode", "path", pkgPath)
	if _, err := pipEngine.InstallEditable(ctx, pkgPath); err != nil {
		return fmt.Errorf("unable to install %s: %w", pkgPath, err)
	}
	return nil
}

func envSubmoduleCmd() *cobra.Command {
	submoduleCmd := &cobra.Command{
		Use:   "submodule <path>",
		Short: "Initialize or update a git submodule",
		Long:  "Initialize the submodule at path when it has not been checked out yet, otherwise update it to the latest remote-tracking commit.",
		Args:  cobra.ExactArgs(1),
		RunE:  runEnvSubmodule,
	}

	submoduleCmd.Flags().Bool("no-recursive", false, "Do not update nested submodules during initialization.")

	return submoduleCmd
}

func runEnvSubmodule(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := logr.FromContextOrDiscard(ctx)
	cmd.SilenceUsage = true

	subPath := args[0]
	noRecursive, _ := cmd.Flags().GetBool("no-recursive")

	gitEngine := *engine.NewGitEngine()
	if err := gitEngine.Available(); err != nil {
		return fmt.Errorf("git is not installed or not in PATH: %v", err)
	}

	// A submodule that has never been checked out has no .git entry.
	initialized, err := afero.Exists(afero.NewOsFs(), filepath.Join(subPath, ".git"))
	if err != nil {
		return err
	}

	opts := cli.SubmoduleUpdateOptions{}
	if initialized {
		opts.Remote = true
		logger.Info("updating submodule to latest remote commit", "path", subPath)
	} else {
		opts.Init = true
		opts.Recursive = !noRecursive
		logger.Info("initializing submodule", "path", subPath)
	}

	if _, err := gitEngine.SubmoduleUpdate(ctx, subPath, opts); err != nil {
		return fmt.Errorf("unable to update submodule %s: %w", subPath, err)
	}
	return nil
}
