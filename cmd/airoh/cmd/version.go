package cmd

import (
	"fmt"

	"github.com/google/go-github/v57/github"
	"github.com/spf13/cobra"

	"github.com/airoh-project/airoh/version"
)

func versionCmd() *cobra.Command {
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the airoh version",
		RunE:  runVersion,
	}

	versionCmd.Flags().Bool("check-latest", false, "Check GitHub for a newer released version.")

	return versionCmd
}

func runVersion(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	fmt.Fprintf(cmd.OutOrStdout(), "airoh version %s\n", version.Version.String())

	checkLatest, _ := cmd.Flags().GetBool("check-latest")
	if !checkLatest {
		return nil
	}

	release, err := version.Version.LatestReleasedVersion(cmd, github.NewClient(nil).Repositories)
	if err != nil {
		return fmt.Errorf("unable to check for a newer release: %w", err)
	}
	if release != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "A newer release is available: %s (%s)\n", *release.TagName, *release.HTMLURL)
	}
	return nil
}
