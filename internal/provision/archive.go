package provision

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"

	"github.com/go-logr/logr"
	"github.com/spf13/afero"

	"github.com/airoh-project/airoh/internal/log"
)

// SaveArchive writes image to destination as a gzip-compressed tar,
// suitable for archiving or uploading to platforms such as Zenodo. The
// intermediate uncompressed tar is removed on every exit path.
func (p *Provisioner) SaveArchive(ctx context.Context, image string, destination string) error {
	logger := logr.FromContextOrDiscard(ctx)

	if err := p.engine.Available(); err != nil {
		return fmt.Errorf("%w: %v", ErrToolingUnavailable, err)
	}

	tmp, err := afero.TempFile(p.fs, "", "airoh-save-*.tar")
	if err != nil {
		return fmt.Errorf("unable to create temporary tar file: %w", err)
	}
	tmpName := tmp.Name()
	tmp.Close()
	defer func() {
		if rmErr := p.fs.Remove(tmpName); rmErr != nil {
			logger.V(log.DBG).Info("unable to remove temporary tar file", "path", tmpName, "reason", rmErr.Error())
		}
	}()

	logger.Info("saving image to archive", "image", image, "destination", destination)
	if err := p.engine.SaveImage(ctx, image, tmpName); err != nil {
		return fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}

	return p.compress(tmpName, destination)
}

func (p *Provisioner) compress(source string, destination string) error {
	src, err := p.fs.Open(source)
	if err != nil {
		return fmt.Errorf("unable to open %s: %w", source, err)
	}
	defer src.Close()

	dst, err := p.fs.Create(destination)
	if err != nil {
		return fmt.Errorf("unable to create %s: %w", destination, err)
	}

	gz := gzip.NewWriter(dst)
	if _, err := io.Copy(gz, src); err != nil {
		gz.Close()
		dst.Close()
		return fmt.Errorf("unable to compress %s: %w", source, err)
	}
	if err := gz.Close(); err != nil {
		dst.Close()
		return fmt.Errorf("unable to compress %s: %w", source, err)
	}
	return dst.Close()
}
