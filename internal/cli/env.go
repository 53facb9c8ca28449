package cli

import "context"

// PipOutput carries the raw command output of a pip invocation.
type PipOutput struct {
	Stdout string
	Stderr string
}

// PipEngine is the Python package manager surface airoh consumes.
type PipEngine interface {
	Available() error
	// InstallRequirements installs the dependencies of a requirements file.
	InstallRequirements(ctx context.Context, requirementsFile string) (*PipOutput, error)
	// InstallEditable installs a local package in editable mode.
	InstallEditable(ctx context.Context, path string) (*PipOutput, error)
}

// GitOutput carries the raw command output of a git invocation.
type GitOutput struct {
	Stdout string
	Stderr string
}

// SubmoduleUpdateOptions configure a git submodule update.
type SubmoduleUpdateOptions struct {
	// Init initializes the submodule before updating.
	Init bool
	// Recursive updates nested submodules as well.
	Recursive bool
	// Remote updates to the latest remote-tracking commit.
	Remote bool
}

// GitEngine is the git surface airoh consumes.
type GitEngine interface {
	Available() error
	// SubmoduleUpdate updates the submodule at path.
	SubmoduleUpdate(ctx context.Context, path string, opts SubmoduleUpdateOptions) (*GitOutput, error)
}
