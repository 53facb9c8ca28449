// Package engine provides exec-based implementations of the tool
// interfaces defined in internal/cli.
package engine

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/go-logr/logr"

	"github.com/airoh-project/airoh/internal/cli"
	"github.com/airoh-project/airoh/internal/log"
)

// dockerBinary is resolved from PATH at call time so that environments
// can substitute a compatible runtime (e.g. podman with a docker shim).
const dockerBinary = "docker"

func NewDockerEngine() *cli.DockerEngine {
	var e cli.DockerEngine = dockerEngine{}
	return &e
}

type dockerEngine struct{}

func (e dockerEngine) Available() error {
	if _, err := exec.LookPath(dockerBinary); err != nil {
		return fmt.Errorf("%s executable not found in PATH: %w", dockerBinary, err)
	}
	return nil
}

func (e dockerEngine) ListImages(ctx context.Context, image string) ([]string, error) {
	logger := logr.FromContextOrDiscard(ctx)
	cmdArgs := []string{"images", "--quiet", image}

	logger.V(log.TRC).Info("running docker with the following invocation", "args", cmdArgs)
	cmd := exec.CommandContext(ctx, dockerBinary, cmdArgs...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("unable to list images: %w: %s", err, stderr.String())
	}

	out := strings.TrimSpace(stdout.String())
	if out == "" {
		return nil, nil
	}
	return strings.Split(out, "\n"), nil
}

func (e dockerEngine) LoadImage(ctx context.Context, path string) (*cli.DockerOutput, error) {
	logger := logr.FromContextOrDiscard(ctx)
	cmdArgs := []string{"load", "--input", path}

	logger.V(log.TRC).Info("running docker with the following invocation", "args", cmdArgs)
	cmd := exec.CommandContext(ctx, dockerBinary, cmdArgs...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return &cli.DockerOutput{Stdout: stdout.String(), Stderr: stderr.String()}, err
	}
	return &cli.DockerOutput{Stdout: stdout.String(), Stderr: stderr.String()}, nil
}

func (e dockerEngine) TagImage(ctx context.Context, nameOrID string, tag string) error {
	logger := logr.FromContextOrDiscard(ctx)
	cmdArgs := []string{"tag", nameOrID, tag}

	logger.V(log.TRC).Info("running docker with the following invocation", "args", cmdArgs)
	stdouterr, err := exec.CommandContext(ctx, dockerBinary, cmdArgs...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("unable to tag %s as %s: %w: %s", nameOrID, tag, err, string(stdouterr))
	}
	return nil
}

func (e dockerEngine) SaveImage(ctx context.Context, image string, destination string) error {
	logger := logr.FromContextOrDiscard(ctx)
	cmdArgs := []string{"save", "--output", destination, image}

	logger.V(log.TRC).Info("running docker with the following invocation", "args", cmdArgs)
	stdouterr, err := exec.CommandContext(ctx, dockerBinary, cmdArgs...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("unable to save %s: %w: %s", image, err, string(stdouterr))
	}
	return nil
}

func (e dockerEngine) BuildImage(ctx context.Context, image string, opts cli.ImageBuildOptions) (*cli.DockerOutput, error) {
	logger := logr.FromContextOrDiscard(ctx)

	cmdArgs := []string{"build"}
	if opts.NoCache {
		cmdArgs = append(cmdArgs, "--no-cache")
	}
	contextDir := opts.ContextDir
	if contextDir == "" {
		contextDir = "."
	}
	cmdArgs = append(cmdArgs, "--tag", image, contextDir)

	logger.V(log.TRC).Info("running docker with the following invocation", "args", cmdArgs)
	cmd := exec.CommandContext(ctx, dockerBinary, cmdArgs...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return &cli.DockerOutput{Stdout: stdout.String(), Stderr: stderr.String()}, err
	}
	return &cli.DockerOutput{Stdout: stdout.String(), Stderr: stderr.String()}, nil
}

func (e dockerEngine) RunContainer(ctx context.Context, image string, opts cli.ImageRunOptions) (*cli.DockerOutput, error) {
	logger := logr.FromContextOrDiscard(ctx)

	cmdArgs := []string{"run", "--rm"}
	if opts.HostDir != "" && opts.WorkDir != "" {
		cmdArgs = append(cmdArgs, "--volume", fmt.Sprintf("%s:%s", opts.HostDir, opts.WorkDir), "--workdir", opts.WorkDir)
	}
	cmdArgs = append(cmdArgs, image)
	cmdArgs = append(cmdArgs, opts.Command...)

	logger.V(log.TRC).Info("running docker with the following invocation", "args", cmdArgs)
	cmd := exec.CommandContext(ctx, dockerBinary, cmdArgs...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return &cli.DockerOutput{Stdout: stdout.String(), Stderr: stderr.String()}, err
	}
	return &cli.DockerOutput{Stdout: stdout.String(), Stderr: stderr.String()}, nil
}
