// Package datasets wraps DataLad to keep configured subdatasets and
// tracked files present and up to date.
package datasets

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/go-logr/logr"
	"github.com/spf13/afero"

	"github.com/airoh-project/airoh/internal/cli"
	"github.com/airoh-project/airoh/internal/log"
	"github.com/airoh-project/airoh/internal/runtime"
)

var (
	ErrDatasetNotFound    = errors.New("dataset not found in configuration under datasets")
	ErrFileEntryNotFound  = errors.New("no file entry found in configuration under files")
	ErrToolingUnavailable = errors.New("datalad is not installed or not in PATH")
)

// supportedArchiveExts are the suffixes add-archive-content can extract.
var supportedArchiveExts = []string{".zip", ".tar", ".tar.gz", ".tgz", ".tar.bz2", ".7z"}

// Manager resolves dataset and file entries from the runtime config and
// drives DataLad to materialize them.
type Manager struct {
	engine cli.DataladEngine
	fs     afero.Fs
	cfg    *runtime.Config
}

// Option configures a Manager.
type Option func(*Manager)

// WithFS substitutes the filesystem used for existence checks.
func WithFS(fs afero.Fs) Option {
	return func(m *Manager) {
		m.fs = fs
	}
}

// NewManager creates a Manager around the given engine and config.
func NewManager(engine cli.DataladEngine, cfg *runtime.Config, opts ...Option) *Manager {
	m := Manager{
		engine: engine,
		fs:     afero.NewOsFs(),
		cfg:    cfg,
	}
	for _, opt := range opts {
		opt(&m)
	}
	return &m
}

// Get installs the named subdataset when its path is absent, then
// retrieves all of its content.
func (m *Manager) Get(ctx context.Context, name string) error {
	logger := logr.FromContextOrDiscard(ctx)

	if err := m.engine.Available(); err != nil {
		return fmt.Errorf("%w: %v", ErrToolingUnavailable, err)
	}

	dsPath, ok := m.cfg.Datasets[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrDatasetNotFound, name)
	}
	logger.Info("checking dataset", "name", name, "path", dsPath)

	exists, err := afero.Exists(m.fs, dsPath)
	if err != nil {
		return err
	}
	if !exists {
		logger.Info("installing subdataset", "name", name)
		if _, err := m.engine.Install(ctx, dsPath); err != nil {
			return fmt.Errorf("unable to install dataset %s: %w", name, err)
		}
	}

	logger.Info("retrieving data", "name", name)
	if _, err := m.engine.Get(ctx, dsPath); err != nil {
		return fmt.Errorf("unable to retrieve dataset %s: %w", name, err)
	}
	return nil
}

// ImportFile downloads the named file entry via DataLad, skipping the
// download when the output file already exists.
func (m *Manager) ImportFile(ctx context.Context, name string) error {
	logger := logr.FromContextOrDiscard(ctx)

	if err := m.engine.Available(); err != nil {
		return fmt.Errorf("%w: %v", ErrToolingUnavailable, err)
	}

	entry, ok := m.cfg.Files[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrFileEntryNotFound, name)
	}

	exists, err := afero.Exists(m.fs, entry.OutputFile)
	if err != nil {
		return err
	}
	if exists {
		logger.V(log.DBG).Info("skipping download, output already exists", "name", name, "output", entry.OutputFile)
		return nil
	}

	if _, err := m.engine.DownloadURL(ctx, entry.OutputFile, entry.URL); err != nil {
		return fmt.Errorf("unable to download %s: %w", name, err)
	}
	logger.Info("downloaded file", "name", name, "output", entry.OutputFile)
	return nil
}

// ImportArchiveOptions configure ImportArchive.
type ImportArchiveOptions struct {
	// ArchiveName overrides the basename derived from the URL.
	ArchiveName string
	// TargetDir is the dataset directory to extract into. Defaults to ".".
	TargetDir string
	// DropArchive drops the archive from the annex after extraction.
	DropArchive bool
}

// ImportArchive downloads a remote archive via DataLad and extracts its
// contents into the target directory. Unsupported archive suffixes skip
// extraction rather than failing, since the download itself succeeded.
func (m *Manager) ImportArchive(ctx context.Context, url string, opts ImportArchiveOptions) error {
	logger := logr.FromContextOrDiscard(ctx)

	if err := m.engine.Available(); err != nil {
		return fmt.Errorf("%w: %v", ErrToolingUnavailable, err)
	}

	archiveName := opts.ArchiveName
	if archiveName == "" {
		archiveName = path.Base(url)
	}
	targetDir := opts.TargetDir
	if targetDir == "" {
		targetDir = "."
	}
	archivePath := path.Join(targetDir, archiveName)

	exists, err := afero.Exists(m.fs, archivePath)
	if err != nil {
		return err
	}
	if !exists {
		if _, err := m.engine.DownloadURL(ctx, archivePath, url); err != nil {
			return fmt.Errorf("unable to download archive %s: %w", url, err)
		}
	}

	if !isSupportedArchive(archivePath) {
		logger.V(log.DBG).Info("skipping extraction, file does not appear to be a supported archive", "path", archivePath)
		return nil
	}

	logger.Info("extracting archive content", "path", archivePath, "target", targetDir)
	if _, err := m.engine.AddArchiveContent(ctx, archivePath, cli.AddArchiveContentOptions{
		TargetDir: targetDir,
		Delete:    true,
	}); err != nil {
		return fmt.Errorf("unable to extract archive %s: %w", archivePath, err)
	}

	if opts.DropArchive {
		logger.Info("dropping archive from annex", "path", archivePath)
		if _, err := m.engine.Drop(ctx, archivePath); err != nil {
			return fmt.Errorf("unable to drop archive %s: %w", archivePath, err)
		}
	}
	return nil
}

func isSupportedArchive(archivePath string) bool {
	for _, ext := range supportedArchiveExts {
		if strings.HasSuffix(archivePath, ext) {
			return true
		}
	}
	return false
}
