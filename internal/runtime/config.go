// Package runtime renders the viper configuration into a typed Config
// that commands validate once, up front, instead of looking keys up ad
// hoc at each call site.
package runtime

import (
	"errors"
	"fmt"

	"github.com/google/go-containerregistry/pkg/name"
	"github.com/spf13/viper"
)

var (
	ErrImageNotConfigured  = errors.New("no container image specified; set image in airoh.yaml or pass it explicitly")
	ErrInvalidImageRef     = errors.New("invalid container image reference")
	ErrFileEntryIncomplete = errors.New("file entry must define both url and output_file")
)

// FileEntry describes a single remotely tracked file under the `files`
// configuration section.
type FileEntry struct {
	URL        string `json:"url"`
	OutputFile string `json:"output_file"`
}

// Config contains configuration details for running airoh tasks.
type Config struct {
	Image            string               `json:"image,omitempty"`
	Archive          string               `json:"archive,omitempty"`
	ArchiveURL       string               `json:"archive_url,omitempty"`
	ContainerWorkdir string               `json:"container_workdir,omitempty"`
	SifPath          string               `json:"sif_path,omitempty"`
	LogFile          string               `json:"logfile,omitempty"`
	LogLevel         string               `json:"loglevel,omitempty"`
	NotebooksDir     string               `json:"notebooks_dir,omitempty"`
	FiguresDir       string               `json:"figures_dir,omitempty"`
	Requirements     string               `json:"requirements,omitempty"`
	EnvKeys          []string             `json:"env_keys,omitempty"`
	Datasets         map[string]string    `json:"datasets,omitempty"`
	Files            map[string]FileEntry `json:"files,omitempty"`
	Dirs             map[string]string    `json:"dirs,omitempty"`
}

// NewConfigFrom will return a runtime.Config based on the stored inputs in
// the provided viper.Viper. Defaults should be set before this is called.
func NewConfigFrom(vcfg viper.Viper) (*Config, error) {
	cfg := Config{}
	cfg.Image = vcfg.GetString("image")
	cfg.Archive = vcfg.GetString("archive")
	cfg.ArchiveURL = vcfg.GetString("archive_url")
	cfg.ContainerWorkdir = vcfg.GetString("container_workdir")
	cfg.SifPath = vcfg.GetString("sif_path")
	cfg.LogFile = vcfg.GetString("logfile")
	cfg.LogLevel = vcfg.GetString("loglevel")
	cfg.NotebooksDir = vcfg.GetString("notebooks_dir")
	cfg.FiguresDir = vcfg.GetString("figures_dir")
	cfg.Requirements = vcfg.GetString("requirements")
	cfg.EnvKeys = vcfg.GetStringSlice("env_keys")
	cfg.Datasets = vcfg.GetStringMapString("datasets")
	cfg.Dirs = vcfg.GetStringMapString("dirs")

	cfg.Files = map[string]FileEntry{}
	for fname, raw := range vcfg.GetStringMap("files") {
		entry, ok := raw.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrFileEntryIncomplete, fname)
		}
		url, _ := entry["url"].(string)
		output, _ := entry["output_file"].(string)
		cfg.Files[fname] = FileEntry{URL: url, OutputFile: output}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration in a single pass so that malformed
// settings surface before any task performs a side effect.
func (c *Config) Validate() error {
	if c.Image != "" {
		if _, err := name.ParseReference(c.Image, name.WeakValidation); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidImageRef, c.Image, err)
		}
	}
	for fname, entry := range c.Files {
		if entry.URL == "" || entry.OutputFile == "" {
			return fmt.Errorf("%w: %s", ErrFileEntryIncomplete, fname)
		}
	}
	return nil
}

// ResolveImage returns the image reference from the override when given,
// falling back to the configured image.
func (c *Config) ResolveImage(override string) (string, error) {
	image := override
	if image == "" {
		image = c.Image
	}
	if image == "" {
		return "", ErrImageNotConfigured
	}
	return image, nil
}

// ArchivePath is the fallback archive location for the configured image,
// defaulting to <image>.tar.gz alongside the working directory.
func (c *Config) ArchivePath(image string) string {
	if c.Archive != "" {
		return c.Archive
	}
	return image + ".tar.gz"
}

// SifFile is the Apptainer image path for the given docker image,
// defaulting to <image>.sif.
func (c *Config) SifFile(image string) string {
	if c.SifPath != "" {
		return c.SifPath
	}
	return image + ".sif"
}
