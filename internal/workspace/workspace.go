// Package workspace manages the project's configured directories:
// creating them, cleaning them, and downloading files into them.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-logr/logr"
	"github.com/spf13/afero"

	"github.com/airoh-project/airoh/internal/runtime"
)

var ErrKeyNotConfigured = errors.New("key not found in configuration under dirs")

// Workspace resolves directory keys from the runtime config.
type Workspace struct {
	fs  afero.Fs
	cfg *runtime.Config
}

// Option configures a Workspace.
type Option func(*Workspace)

// WithFS substitutes the underlying filesystem.
func WithFS(fs afero.Fs) Option {
	return func(w *Workspace) {
		w.fs = fs
	}
}

// New creates a Workspace for the given config.
func New(cfg *runtime.Config, opts ...Option) *Workspace {
	w := Workspace{
		fs:  afero.NewOsFs(),
		cfg: cfg,
	}
	for _, opt := range opts {
		opt(&w)
	}
	return &w
}

// EnsureDir creates the directory configured under key if it does not
// exist yet.
func (w *Workspace) EnsureDir(ctx context.Context, key string) error {
	logger := logr.FromContextOrDiscard(ctx)

	dir, ok := w.cfg.Dirs[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrKeyNotConfigured, key)
	}

	exists, err := afero.DirExists(w.fs, dir)
	if err != nil {
		return err
	}
	if exists {
		logger.Info("directory already exists", "key", key, "path", dir)
		return nil
	}

	if err := w.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("unable to create %s: %w", dir, err)
	}
	logger.Info("created directory", "key", key, "path", dir)
	return nil
}

// Clean removes the directory configured under key, or only the files
// matching pattern inside it when pattern is non-empty.
func (w *Workspace) Clean(ctx context.Context, key string, pattern string) error {
	logger := logr.FromContextOrDiscard(ctx)

	dir, ok := w.cfg.Dirs[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrKeyNotConfigured, key)
	}

	exists, err := afero.DirExists(w.fs, dir)
	if err != nil {
		return err
	}
	if !exists {
		logger.Info("nothing to clean", "key", key, "path", dir)
		return nil
	}

	if pattern == "" {
		logger.Info("removing directory", "key", key, "path", dir)
		return w.fs.RemoveAll(dir)
	}

	matches, err := doublestar.Glob(afero.NewIOFS(w.fs), path.Join(dir, pattern))
	if err != nil {
		return fmt.Errorf("invalid pattern %s: %w", pattern, err)
	}
	if len(matches) == 0 {
		logger.Info("no files matching pattern", "pattern", pattern, "path", dir)
		return nil
	}
	for _, match := range matches {
		if err := w.fs.Remove(match); err != nil {
			return fmt.Errorf("unable to remove %s: %w", match, err)
		}
		logger.Info("removed", "path", match)
	}
	return nil
}

// DownloadFile fetches url into filename on fs. Fetching is plain HTTP;
// authentication and retries are the remote platform's concern.
func DownloadFile(fs afero.Fs, filename string, url string) error {
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s downloading %s", resp.Status, url)
	}

	if err := afero.WriteReader(fs, filename, resp.Body); err != nil {
		return fmt.Errorf("could not write %s: %w", filename, err)
	}
	return nil
}
