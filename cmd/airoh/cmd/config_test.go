package cmd

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/airoh-project/airoh/internal/viper"
)

var _ = Describe("config view command", func() {
	BeforeEach(createAndCleanupDirForLogs)

	BeforeEach(func() {
		viper.Instance().Set("image", "airoh-demo")
		DeferCleanup(func() { viper.Instance().Set("image", "") })
	})

	Context("when rendering the effective configuration as yaml", func() {
		It("should include the configured image", func() {
			out, err := executeCommand(rootCmd(), "config", "view")
			Expect(err).ToNot(HaveOccurred())
			Expect(out).To(ContainSubstring("image: airoh-demo"))
		})
	})

	Context("when rendering the effective configuration as json", func() {
		It("should include the configured image", func() {
			out, err := executeCommand(rootCmd(), "config", "view", "--output", "json")
			Expect(err).ToNot(HaveOccurred())
			Expect(out).To(ContainSubstring(`"image": "airoh-demo"`))
		})
	})

	Context("when asked for an unknown output format", func() {
		It("should throw an error", func() {
			_, err := executeCommand(rootCmd(), "config", "view", "--output", "toml")
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("unknown output format"))
		})
	})

	Context("when the configured image reference is invalid", func() {
		It("should throw an error", func() {
			viper.Instance().Set("image", "UPPER CASE not allowed")
			_, err := executeCommand(rootCmd(), "config", "view")
			Expect(err).To(HaveOccurred())
		})
	})
})
