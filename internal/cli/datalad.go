package cli

import "context"

// DataladOutput carries the raw command output of a datalad invocation.
type DataladOutput struct {
	Stdout string
	Stderr string
}

// AddArchiveContentOptions configure archive extraction into a dataset.
type AddArchiveContentOptions struct {
	// TargetDir is the dataset directory to extract into.
	TargetDir string
	// Delete removes the archive content from the annex after extraction.
	Delete bool
}

// DataladEngine is the DataLad surface airoh consumes.
type DataladEngine interface {
	Available() error
	// Install recursively installs the subdataset at path.
	Install(ctx context.Context, path string) (*DataladOutput, error)
	// Get retrieves the content of the dataset at path.
	Get(ctx context.Context, path string) (*DataladOutput, error)
	// DownloadURL downloads url into output and tracks it with the annex.
	DownloadURL(ctx context.Context, output string, url string) (*DataladOutput, error)
	// AddArchiveContent extracts a tracked archive into the dataset.
	AddArchiveContent(ctx context.Context, archivePath string, opts AddArchiveContentOptions) (*DataladOutput, error)
	// Drop drops the given path from the annex.
	Drop(ctx context.Context, path string) (*DataladOutput, error)
}
