package cli

import "context"

// NotebookOutput carries the raw command output of a notebook execution.
type NotebookOutput struct {
	Stdout string
	Stderr string
}

// NotebookEngine executes Jupyter notebooks in place.
type NotebookEngine interface {
	Available() error
	// Execute runs the notebook at path with the given extra environment
	// variables, rewriting the notebook with its outputs.
	Execute(ctx context.Context, path string, env map[string]string) (*NotebookOutput, error)
}
