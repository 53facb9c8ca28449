// Package cli defines the interfaces and report types for the external
// tools airoh drives. Implementations live in internal/engine.
package cli

import "context"

// DockerOutput carries the raw command output of a docker invocation.
type DockerOutput struct {
	Stdout string
	Stderr string
}

// ImageBuildOptions configure a docker build invocation.
type ImageBuildOptions struct {
	// NoCache disables layer caching for the build.
	NoCache bool
	// ContextDir is the build context. Defaults to the current directory.
	ContextDir string
}

// ImageRunOptions configure running a command inside a container.
type ImageRunOptions struct {
	// HostDir is bind-mounted at WorkDir inside the container.
	HostDir string
	WorkDir string
	Command []string
}

// DockerEngine is the container runtime surface airoh consumes. Every
// method blocks until the underlying command exits.
type DockerEngine interface {
	// Available reports whether the runtime executable is reachable.
	Available() error
	// ListImages returns the image IDs matching the given name, one per
	// line of the runtime's output. An empty result means not present.
	ListImages(ctx context.Context, image string) ([]string, error)
	// LoadImage loads an image from an uncompressed tar archive.
	LoadImage(ctx context.Context, path string) (*DockerOutput, error)
	// TagImage assigns tag to the image named nameOrID.
	TagImage(ctx context.Context, nameOrID string, tag string) error
	// SaveImage writes the image to destination as an uncompressed tar.
	SaveImage(ctx context.Context, image string, destination string) error
	// BuildImage builds the project Dockerfile and tags it as image.
	BuildImage(ctx context.Context, image string, opts ImageBuildOptions) (*DockerOutput, error)
	// RunContainer runs opts.Command in a disposable container of image.
	RunContainer(ctx context.Context, image string, opts ImageRunOptions) (*DockerOutput, error)
}
