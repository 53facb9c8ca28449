package version

import (
	"context"
	"errors"
	"reflect"
	"strings"

	"github.com/google/go-github/v57/github"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"
)

var _ = Describe("version package utility", func() {
	testContext := VersionContext{
		Name:    projectName,
		Version: "0.0.1",
		Commit:  "foobar",
	}

	Context("When printing the VersionContext", func() {
		It("should display the version and the commit information as a string", func() {
			Expect(strings.Contains(testContext.String(), "0.0.1")).To(BeTrue())
			Expect(strings.Contains(testContext.String(), "foobar")).To(BeTrue())
		})
	})

	Context("When using a VersionContext", func() {
		It("should have JSON struct tags on fields", func() {
			nf, nexists := reflect.TypeOf(&Version).Elem().FieldByName("Name")
			Expect(nexists).To(BeTrue())
			Expect(string(nf.Tag)).To(Equal(`json:"name"`))

			vf, vexists := reflect.TypeOf(&Version).Elem().FieldByName("Version")
			Expect(vexists).To(BeTrue())
			Expect(string(vf.Tag)).To(Equal(`json:"version"`))

			cf, cexists := reflect.TypeOf(&Version).Elem().FieldByName("Commit")
			Expect(cexists).To(BeTrue())
			Expect(string(cf.Tag)).To(Equal(`json:"commit"`))
		})

		It("should only have three struct keys for tests to be valid", func() {
			keys := reflect.TypeOf(Version).NumField()
			Expect(keys).To(Equal(3))
		})
	})

	Context("When retrieving latest available release from Github", func() {
		Context("When current version is older than the latest version", func() {
			It("should return a version", func() {
				client := &mockGhVersionClient{tag: "0.0.2"}
				release, err := testContext.LatestReleasedVersion(mockVersionCmd(), client)
				Expect(err).To(BeNil())
				Expect(release).ToNot(BeNil())
				Expect(*release.TagName).To(Equal("0.0.2"))
			})
		})
		Context("When current version matches the latest version", func() {
			It("should return nil", func() {
				client := &mockGhVersionClient{tag: "0.0.1"}
				release, err := testContext.LatestReleasedVersion(mockVersionCmd(), client)
				Expect(err).To(BeNil())
				Expect(release).To(BeNil())
			})
		})
		Context("When the latest version is not in semver format", func() {
			It("should return an error", func() {
				client := &mockGhVersionClient{tag: "foobar"}
				release, err := testContext.LatestReleasedVersion(mockVersionCmd(), client)
				Expect(err).To(Not(BeNil()))
				Expect(release).To(BeNil())
			})
		})
		Context("When there is an error fetching the latest release from github", func() {
			It("should return nil", func() {
				client := &mockGhVersionClient{err: errors.New("unspecified Error")}
				release, err := testContext.LatestReleasedVersion(mockVersionCmd(), client)
				Expect(err).To(Not(BeNil()))
				Expect(release).To(BeNil())
			})
		})
	})
})

func mockVersionCmd() *cobra.Command {
	cmd := cobra.Command{}
	cmd.SetContext(context.Background())
	return &cmd
}

type mockGhVersionClient struct {
	tag string
	err error
}

func (mc *mockGhVersionClient) GetLatestRelease(ctx context.Context, owner string, repo string) (*github.RepositoryRelease, *github.Response, error) {
	if mc.err != nil {
		return nil, nil, mc.err
	}
	url := "test.com/release/" + mc.tag
	release := github.RepositoryRelease{
		TagName: &mc.tag,
		HTMLURL: &url,
	}
	response := github.Response{
		Rate: github.Rate{
			Limit:     60,
			Remaining: 59,
		},
	}
	return &release, &response, nil
}
