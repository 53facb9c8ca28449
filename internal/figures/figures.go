// Package figures executes the Jupyter notebooks that generate the
// project's figures, skipping notebooks whose output directory already
// exists.
package figures

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-logr/logr"
	"github.com/spf13/afero"

	"github.com/airoh-project/airoh/internal/cli"
	"github.com/airoh-project/airoh/internal/log"
	"github.com/airoh-project/airoh/internal/runtime"
)

var (
	ErrToolingUnavailable = errors.New("jupyter is not installed or not in PATH")
	ErrKeyNotConfigured   = errors.New("key not found in configuration under dirs")
)

// Runner discovers figure notebooks and executes the ones without
// existing output.
type Runner struct {
	engine cli.NotebookEngine
	fs     afero.Fs
	cfg    *runtime.Config
}

// Option configures a Runner.
type Option func(*Runner)

// WithFS substitutes the filesystem used for notebook discovery and
// output checks.
func WithFS(fs afero.Fs) Option {
	return func(r *Runner) {
		r.fs = fs
	}
}

// NewRunner creates a Runner around the given engine and config.
func NewRunner(engine cli.NotebookEngine, cfg *runtime.Config, opts ...Option) *Runner {
	r := Runner{
		engine: engine,
		fs:     afero.NewOsFs(),
		cfg:    cfg,
	}
	for _, opt := range opts {
		opt(&r)
	}
	return &r
}

// Run executes every notebook in the configured notebooks directory
// that does not yet have a corresponding output directory. Environment
// variables are injected from the configured env keys, resolved to
// absolute paths.
func (r *Runner) Run(ctx context.Context) error {
	logger := logr.FromContextOrDiscard(ctx)

	if err := r.engine.Available(); err != nil {
		return fmt.Errorf("%w: %v", ErrToolingUnavailable, err)
	}

	env, err := r.buildEnv()
	if err != nil {
		return err
	}

	exists, err := afero.DirExists(r.fs, r.cfg.NotebooksDir)
	if err != nil {
		return err
	}
	if !exists {
		logger.Info("notebooks directory not found, nothing to do", "path", r.cfg.NotebooksDir)
		return nil
	}

	notebooks, err := doublestar.Glob(afero.NewIOFS(r.fs), path.Join(r.cfg.NotebooksDir, "*.ipynb"))
	if err != nil {
		return fmt.Errorf("unable to list notebooks in %s: %w", r.cfg.NotebooksDir, err)
	}
	sort.Strings(notebooks)

	if len(notebooks) == 0 {
		logger.Info("no notebooks found", "path", r.cfg.NotebooksDir)
		return nil
	}

	for _, nb := range notebooks {
		stem := strings.TrimSuffix(path.Base(nb), ".ipynb")
		outputDir := path.Join(r.cfg.FiguresDir, stem)

		outputExists, err := afero.DirExists(r.fs, outputDir)
		if err != nil {
			return err
		}
		if outputExists {
			logger.V(log.DBG).Info("skipping notebook, output exists", "notebook", nb, "output", outputDir)
			continue
		}

		logger.Info("running notebook", "notebook", nb)
		if _, err := r.engine.Execute(ctx, nb, env); err != nil {
			return fmt.Errorf("unable to execute notebook %s: %w", nb, err)
		}
	}
	return nil
}

// buildEnv converts the configured env keys into environment variables,
// resolving each configured directory as an absolute path under an
// uppercase variable name.
func (r *Runner) buildEnv() (map[string]string, error) {
	if len(r.cfg.EnvKeys) == 0 {
		return nil, nil
	}

	env := make(map[string]string, len(r.cfg.EnvKeys))
	for _, key := range r.cfg.EnvKeys {
		val, ok := r.cfg.Dirs[key]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrKeyNotConfigured, key)
		}
		abs, err := filepath.Abs(val)
		if err != nil {
			return nil, err
		}
		env[strings.ToUpper(key)] = abs
	}
	return env, nil
}
