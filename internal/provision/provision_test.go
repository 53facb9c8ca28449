package provision_test

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"os"

	"github.com/go-logr/logr"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/afero"

	"github.com/airoh-project/airoh/internal/cli"
	"github.com/airoh-project/airoh/internal/log"
	"github.com/airoh-project/airoh/internal/provision"
)

// fakeDockerEngine records the calls the provisioner makes. Load and
// save content flow through the same afero filesystem the provisioner
// uses, so the specs can observe temp file lifecycles.
type fakeDockerEngine struct {
	fs afero.Fs

	availableErr error
	images       []string
	listErr      error
	listCalls    int

	loadPaths []string
	loadErr   error

	tags   []string
	tagErr error

	savePaths []string
	saveErr   error
	saveBytes []byte
}

func (f *fakeDockerEngine) Available() error {
	return f.availableErr
}

func (f *fakeDockerEngine) ListImages(ctx context.Context, image string) ([]string, error) {
	f.listCalls++
	return f.images, f.listErr
}

func (f *fakeDockerEngine) LoadImage(ctx context.Context, path string) (*cli.DockerOutput, error) {
	f.loadPaths = append(f.loadPaths, path)
	if f.loadErr != nil {
		return &cli.DockerOutput{Stderr: f.loadErr.Error()}, f.loadErr
	}
	return &cli.DockerOutput{Stdout: "Loaded image"}, nil
}

func (f *fakeDockerEngine) TagImage(ctx context.Context, nameOrID string, tag string) error {
	f.tags = append(f.tags, tag)
	return f.tagErr
}

func (f *fakeDockerEngine) SaveImage(ctx context.Context, image string, destination string) error {
	f.savePaths = append(f.savePaths, destination)
	if f.saveErr != nil {
		return f.saveErr
	}
	return afero.WriteFile(f.fs, destination, f.saveBytes, 0o644)
}

func (f *fakeDockerEngine) BuildImage(ctx context.Context, image string, opts cli.ImageBuildOptions) (*cli.DockerOutput, error) {
	return &cli.DockerOutput{}, nil
}

func (f *fakeDockerEngine) RunContainer(ctx context.Context, image string, opts cli.ImageRunOptions) (*cli.DockerOutput, error) {
	return &cli.DockerOutput{}, nil
}

// fsEntries walks the filesystem and returns every regular file present.
func fsEntries(fs afero.Fs) []string {
	var entries []string
	_ = afero.Walk(fs, "/", func(path string, info os.FileInfo, err error) error {
		if err != nil || info == nil || info.IsDir() {
			return nil
		}
		entries = append(entries, path)
		return nil
	})
	return entries
}

func gzipBytes(payload []byte) []byte {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write(payload)
	Expect(err).ToNot(HaveOccurred())
	Expect(gz.Close()).To(Succeed())
	return buf.Bytes()
}

var _ = Describe("EnsureLoaded", func() {
	var engine *fakeDockerEngine
	var fs afero.Fs
	var p *provision.Provisioner
	ctx := context.Background()

	BeforeEach(func() {
		fs = afero.NewMemMapFs()
		engine = &fakeDockerEngine{fs: fs}
		p = provision.NewProvisioner(engine, provision.WithFS(fs))
	})

	Context("when the runtime executable is unreachable", func() {
		BeforeEach(func() {
			engine.availableErr = errors.New("exec: \"docker\": executable file not found in $PATH")
		})
		It("should fail before any other check", func() {
			report, err := p.EnsureLoaded(ctx, "demo", "/demo.tar.gz")
			Expect(err).To(MatchError(provision.ErrToolingUnavailable))
			Expect(report).To(BeNil())
			Expect(engine.listCalls).To(BeZero())
		})
	})

	Context("when the image is already present in the runtime", func() {
		BeforeEach(func() {
			engine.images = []string{"c0ffee"}
		})
		It("should only issue a tag command and succeed", func() {
			report, err := p.EnsureLoaded(ctx, "demo", "/demo.tar.gz")
			Expect(err).ToNot(HaveOccurred())
			Expect(report.AlreadyPresent).To(BeTrue())
			Expect(report.Loaded).To(BeFalse())
			Expect(report.TagWarning).To(BeNil())
			Expect(engine.tags).To(Equal([]string{"demo:latest"}))
			Expect(engine.loadPaths).To(BeEmpty())
			// the archive was never touched
			Expect(fsEntries(fs)).To(BeEmpty())
		})

		It("should still succeed when the tag command fails", func() {
			engine.tagErr = errors.New("refusing to overwrite latest")
			report, err := p.EnsureLoaded(ctx, "demo", "/demo.tar.gz")
			Expect(err).ToNot(HaveOccurred())
			Expect(report.AlreadyPresent).To(BeTrue())
			Expect(report.TagWarning).To(MatchError(engine.tagErr))
		})

		It("should log the failed tag attempt", func() {
			engine.tagErr = errors.New("refusing to overwrite latest")
			var buf bytes.Buffer
			logCtx := logr.NewContext(ctx, logr.New(log.NewBufferSink(&buf)))
			_, err := p.EnsureLoaded(logCtx, "demo", "/demo.tar.gz")
			Expect(err).ToNot(HaveOccurred())
			Expect(buf.String()).To(ContainSubstring("best-effort tag failed"))
			Expect(buf.String()).To(ContainSubstring("refusing to overwrite latest"))
		})
	})

	Context("when the image is absent and the archive does not exist", func() {
		It("should fail naming the expected path", func() {
			report, err := p.EnsureLoaded(ctx, "demo", "/demo.tar.gz")
			Expect(err).To(MatchError(provision.ErrArchiveMissing))
			Expect(err.Error()).To(ContainSubstring("demo.tar.gz"))
			Expect(report).To(BeNil())
			Expect(engine.loadPaths).To(BeEmpty())
			Expect(engine.tags).To(BeEmpty())
		})
	})

	Context("when loading from a .tar.gz archive", func() {
		BeforeEach(func() {
			Expect(afero.WriteFile(fs, "/demo.tar.gz", gzipBytes([]byte("tar payload")), 0o644)).To(Succeed())
		})

		It("should decompress to a temp file, load it, and remove it", func() {
			report, err := p.EnsureLoaded(ctx, "demo", "/demo.tar.gz")
			Expect(err).ToNot(HaveOccurred())
			Expect(report.Loaded).To(BeTrue())
			Expect(report.AlreadyPresent).To(BeFalse())

			Expect(engine.loadPaths).To(HaveLen(1))
			tmpPath := engine.loadPaths[0]
			Expect(tmpPath).ToNot(Equal("/demo.tar.gz"))

			exists, err := afero.Exists(fs, tmpPath)
			Expect(err).ToNot(HaveOccurred())
			Expect(exists).To(BeFalse())

			Expect(engine.tags).To(Equal([]string{"demo:latest"}))
		})

		It("should remove the temp file even when the load fails", func() {
			engine.loadErr = errors.New("load rejected")
			_, err := p.EnsureLoaded(ctx, "demo", "/demo.tar.gz")
			Expect(err).To(MatchError(provision.ErrLoadFailed))

			Expect(engine.loadPaths).To(HaveLen(1))
			exists, err := afero.Exists(fs, engine.loadPaths[0])
			Expect(err).ToNot(HaveOccurred())
			Expect(exists).To(BeFalse())
			Expect(engine.tags).To(BeEmpty())
		})

		It("should remove the temp file when decompression fails", func() {
			Expect(afero.WriteFile(fs, "/demo.tar.gz", []byte("not gzip data"), 0o644)).To(Succeed())
			_, err := p.EnsureLoaded(ctx, "demo", "/demo.tar.gz")
			Expect(err).To(HaveOccurred())
			Expect(engine.loadPaths).To(BeEmpty())
			// only the archive itself remains on disk
			Expect(fsEntries(fs)).To(ConsistOf("/demo.tar.gz"))
		})
	})

	Context("when loading from a .tar archive", func() {
		BeforeEach(func() {
			Expect(afero.WriteFile(fs, "/demo.tar", []byte("tar payload"), 0o644)).To(Succeed())
		})

		It("should load directly from the given path with no temp file", func() {
			report, err := p.EnsureLoaded(ctx, "demo", "/demo.tar")
			Expect(err).ToNot(HaveOccurred())
			Expect(report.Loaded).To(BeTrue())
			Expect(engine.loadPaths).To(Equal([]string{"/demo.tar"}))
			Expect(fsEntries(fs)).To(ConsistOf("/demo.tar"))
		})
	})

	Context("when the archive has an unsupported suffix", func() {
		BeforeEach(func() {
			Expect(afero.WriteFile(fs, "/demo.zip", []byte("zip payload"), 0o644)).To(Succeed())
		})

		It("should fail without invoking the load command", func() {
			_, err := p.EnsureLoaded(ctx, "demo", "/demo.zip")
			Expect(err).To(MatchError(provision.ErrUnsupportedFormat))
			Expect(engine.loadPaths).To(BeEmpty())
			Expect(engine.tags).To(BeEmpty())
			Expect(fsEntries(fs)).To(ConsistOf("/demo.zip"))
		})
	})

	Context("when no image reference is given", func() {
		It("should fail before any side effect", func() {
			_, err := p.EnsureLoaded(ctx, "", "/demo.tar.gz")
			Expect(err).To(HaveOccurred())
			Expect(engine.listCalls).To(BeZero())
		})

		It("should still report an unreachable runtime first", func() {
			engine.availableErr = errors.New("not found")
			_, err := p.EnsureLoaded(ctx, "", "/demo.tar.gz")
			Expect(err).To(MatchError(provision.ErrToolingUnavailable))
		})
	})
})

var _ = Describe("SaveArchive", func() {
	var engine *fakeDockerEngine
	var fs afero.Fs
	var p *provision.Provisioner
	ctx := context.Background()

	BeforeEach(func() {
		fs = afero.NewMemMapFs()
		engine = &fakeDockerEngine{fs: fs, saveBytes: []byte("saved tar payload")}
		p = provision.NewProvisioner(engine, provision.WithFS(fs))
	})

	It("should write a gzip archive and remove the intermediate tar", func() {
		Expect(p.SaveArchive(ctx, "demo", "/demo.tar.gz")).To(Succeed())

		Expect(engine.savePaths).To(HaveLen(1))
		Expect(fsEntries(fs)).To(ConsistOf("/demo.tar.gz"))

		f, err := fs.Open("/demo.tar.gz")
		Expect(err).ToNot(HaveOccurred())
		defer f.Close()
		gz, err := gzip.NewReader(f)
		Expect(err).ToNot(HaveOccurred())
		var out bytes.Buffer
		_, err = out.ReadFrom(gz)
		Expect(err).ToNot(HaveOccurred())
		Expect(out.Bytes()).To(Equal([]byte("saved tar payload")))
	})

	It("should clean up when the save command fails", func() {
		engine.saveErr = errors.New("no such image")
		err := p.SaveArchive(ctx, "demo", "/demo.tar.gz")
		Expect(err).To(MatchError(provision.ErrSaveFailed))
		Expect(fsEntries(fs)).To(BeEmpty())
	})

	It("should fail when the runtime executable is unreachable", func() {
		engine.availableErr = errors.New("not found")
		err := p.SaveArchive(ctx, "demo", "/demo.tar.gz")
		Expect(err).To(MatchError(provision.ErrToolingUnavailable))
		Expect(engine.savePaths).To(BeEmpty())
	})
})
