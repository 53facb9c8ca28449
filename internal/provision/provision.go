// Package provision guarantees that a container image is present and
// tagged as latest in the local runtime, loading it from a .tar or
// .tar.gz archive when the runtime does not already have it.
package provision

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/go-logr/logr"
	"github.com/spf13/afero"

	"github.com/airoh-project/airoh/internal/cli"
	"github.com/airoh-project/airoh/internal/log"
)

const latestTag = "latest"

// Report describes what EnsureLoaded did. TagWarning carries a failed
// best-effort tagging step: the image is loaded and usable by name or
// digest even when the latest tag could not be moved, so the failure is
// surfaced here instead of failing the call.
type Report struct {
	Image          string
	AlreadyPresent bool
	Loaded         bool
	TagWarning     error
}

// Provisioner drives a container runtime through the cli.DockerEngine
// interface. It holds no state across calls; presence is recomputed from
// the runtime's live state on every invocation.
type Provisioner struct {
	engine cli.DockerEngine
	fs     afero.Fs
}

// Option configures a Provisioner.
type Option func(*Provisioner)

// WithFS substitutes the filesystem used for archive access and
// temporary files. Tests use an in-memory filesystem.
func WithFS(fs afero.Fs) Option {
	return func(p *Provisioner) {
		p.fs = fs
	}
}

// NewProvisioner creates a Provisioner around the given engine.
func NewProvisioner(engine cli.DockerEngine, opts ...Option) *Provisioner {
	p := Provisioner{
		engine: engine,
		fs:     afero.NewOsFs(),
	}
	for _, opt := range opts {
		opt(&p)
	}
	return &p
}

// EnsureLoaded makes image available and tagged as latest in the local
// runtime, loading it from archive when absent. Concurrent invocations
// are not coordinated; the runtime's own semantics decide races.
func (p *Provisioner) EnsureLoaded(ctx context.Context, image string, archive string) (*Report, error) {
	logger := logr.FromContextOrDiscard(ctx)

	if err := p.engine.Available(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrToolingUnavailable, err)
	}
	if image == "" {
		return nil, fmt.Errorf("no image reference given")
	}

	ids, err := p.engine.ListImages(ctx, image)
	if err != nil {
		return nil, fmt.Errorf("unable to query the runtime for %s: %w", image, err)
	}

	report := &Report{Image: image}
	if len(ids) > 0 {
		logger.V(log.DBG).Info("image already present in the runtime", "image", image, "ids", ids)
		report.AlreadyPresent = true
		report.TagWarning = p.tagLatest(ctx, image)
		return report, nil
	}

	logger.Info("image not found locally, loading from archive", "image", image, "archive", archive)

	exists, err := afero.Exists(p.fs, archive)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrArchiveMissing, archive)
	}

	switch {
	case strings.HasSuffix(archive, ".tar.gz"):
		if err := p.loadCompressed(ctx, archive); err != nil {
			return nil, err
		}
	case strings.HasSuffix(archive, ".tar"):
		if _, err := p.engine.LoadImage(ctx, archive); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadFailed, err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, archive)
	}

	report.Loaded = true
	report.TagWarning = p.tagLatest(ctx, image)
	return report, nil
}

// loadCompressed decompresses a .tar.gz archive into a scoped temporary
// tar file and loads the runtime image from it. The temporary file is
// removed on every exit path.
func (p *Provisioner) loadCompressed(ctx context.Context, archive string) error {
	logger := logr.FromContextOrDiscard(ctx)

	tmp, err := afero.TempFile(p.fs, "", "airoh-image-*.tar")
	if err != nil {
		return fmt.Errorf("unable to create temporary tar file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if rmErr := p.fs.Remove(tmpName); rmErr != nil {
			logger.V(log.DBG).Info("unable to remove temporary tar file", "path", tmpName, "reason", rmErr.Error())
		}
	}()

	logger.V(log.DBG).Info("decompressing archive", "archive", archive, "tmp", tmpName)
	if err := p.decompress(archive, tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("unable to finalize temporary tar file: %w", err)
	}

	if _, err := p.engine.LoadImage(ctx, tmpName); err != nil {
		return fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}
	return nil
}

func (p *Provisioner) decompress(archive string, dst afero.File) error {
	src, err := p.fs.Open(archive)
	if err != nil {
		return fmt.Errorf("unable to open %s: %w", archive, err)
	}
	defer src.Close()

	gz, err := gzip.NewReader(src)
	if err != nil {
		return fmt.Errorf("unable to decompress %s: %w", archive, err)
	}
	defer gz.Close()

	if _, err := io.Copy(dst, gz); err != nil {
		return fmt.Errorf("unable to decompress %s: %w", archive, err)
	}
	return nil
}

// tagLatest tags image as <image>:latest. The runtime may refuse to move
// an existing latest pointer under some configurations, so failures are
// returned for the report rather than treated as fatal.
func (p *Provisioner) tagLatest(ctx context.Context, image string) error {
	logger := logr.FromContextOrDiscard(ctx)
	tag := fmt.Sprintf("%s:%s", image, latestTag)
	if err := p.engine.TagImage(ctx, image, tag); err != nil {
		logger.V(log.DBG).Info("best-effort tag failed", "image", image, "tag", tag, "reason", err.Error())
		return err
	}
	return nil
}
