package cli

import "context"

// ApptainerOutput carries the raw command output of an apptainer invocation.
type ApptainerOutput struct {
	Stdout string
	Stderr string
}

// ApptainerExecOptions configure running a command inside a .sif image.
type ApptainerExecOptions struct {
	// HostDir is bound at WorkDir inside the container.
	HostDir string
	WorkDir string
	Command []string
}

// ApptainerEngine is the Apptainer surface airoh consumes.
type ApptainerEngine interface {
	Available() error
	// Build converts a docker-daemon image reference into a .sif file.
	Build(ctx context.Context, sifPath string, dockerRef string) (*ApptainerOutput, error)
	// Exec runs opts.Command inside the .sif with a clean environment.
	Exec(ctx context.Context, sifPath string, opts ApptainerExecOptions) (*ApptainerOutput, error)
}
