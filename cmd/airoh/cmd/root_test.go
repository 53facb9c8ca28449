package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	"github.com/airoh-project/airoh/internal/viper"
)

// executeCommand is used for cobra command testing. It is effectively what's seen here:
// https://github.com/spf13/cobra/blob/master/command_test.go#L34-L43. It should only
// be used in tests. Typically, you should pass rootCmd as the param for root, and your
// subcommand's invocation within args.
func executeCommand(root *cobra.Command, args ...string) (output string, err error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)

	err = root.ExecuteContext(context.Background())

	return buf.String(), err
}

var _ = Describe("cmd package utility functions", func() {
	BeforeEach(createAndCleanupDirForLogs)

	Describe("Get the root command", func() {
		Context("when calling the root command function", func() {
			It("should return a root command", func() {
				cmd := rootCmd()
				Expect(cmd).ToNot(BeNil())
				Expect(cmd.Commands()).ToNot(BeEmpty())
			})
		})
	})

	Describe("Initialize Viper configuration", func() {
		Context("when initConfig() is called", func() {
			Context("and no envvars are set", func() {
				It("should have defaults set correctly", func() {
					v := viper.Instance()
					initConfig(v)
					Expect(v.GetString("loglevel")).To(Equal(DefaultLogLevel))
					Expect(v.GetString("notebooks_dir")).To(Equal(DefaultNotebooksDir))
					Expect(v.GetString("figures_dir")).To(Equal(DefaultFiguresDir))
					Expect(v.GetString("container_workdir")).To(Equal(DefaultContainerWorkdir))
					Expect(v.GetString("requirements")).To(Equal(DefaultRequirements))
				})
			})
			Context("and envvars are set", func() {
				BeforeEach(func() {
					os.Setenv("AIROH_LOGLEVEL", "trace")
					os.Setenv("AIROH_NOTEBOOKS_DIR", "notebooks")
				})
				It("should have overrides in place", func() {
					v := viper.Instance()
					initConfig(v)
					Expect(v.GetString("loglevel")).To(Equal("trace"))
					Expect(v.GetString("notebooks_dir")).To(Equal("notebooks"))
					Expect(v.GetString("figures_dir")).To(Equal(DefaultFiguresDir))
				})
				AfterEach(func() {
					os.Unsetenv("AIROH_LOGLEVEL")
					os.Unsetenv("AIROH_NOTEBOOKS_DIR")
				})
			})
		})
	})

	Describe("Pre-run configuration", func() {
		var cmd *cobra.Command
		BeforeEach(func() {
			cmd = &cobra.Command{
				PersistentPreRun: preRunConfig,
				Run:              func(cmd *cobra.Command, args []string) {},
			}
		})
		Context("configuring a Cobra Command", func() {
			var tmpDir string
			BeforeEach(func() {
				var err error
				tmpDir, err = os.MkdirTemp("", "prerun-config-*")
				Expect(err).ToNot(HaveOccurred())
				DeferCleanup(os.RemoveAll, tmpDir)
			})
			It("should create the logfile", func() {
				viper.Instance().Set("logfile", filepath.Join(tmpDir, "foo.log"))
				DeferCleanup(func() { viper.Instance().Set("logfile", DefaultLogFile) })
				Expect(cmd.ExecuteContext(context.TODO())).To(Succeed())
				_, err := os.Stat(filepath.Join(tmpDir, "foo.log"))
				Expect(err).ToNot(HaveOccurred())
			})
		})
	})
})
