package engine

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"

	"github.com/go-logr/logr"

	"github.com/airoh-project/airoh/internal/cli"
	"github.com/airoh-project/airoh/internal/log"
)

const (
	pipBinary = "pip"
	gitBinary = "git"
)

func NewPipEngine() *cli.PipEngine {
	var e cli.PipEngine = pipEngine{}
	return &e
}

type pipEngine struct{}

func (e pipEngine) Available() error {
	if _, err := exec.LookPath(pipBinary); err != nil {
		return fmt.Errorf("%s executable not found in PATH: %w", pipBinary, err)
	}
	return nil
}

func (e pipEngine) run(ctx context.Context, cmdArgs []string) (*cli.PipOutput, error) {
	logger := logr.FromContextOrDiscard(ctx)

	logger.V(log.TRC).Info("running pip with the following invocation", "args", cmdArgs)
	cmd := exec.CommandContext(ctx, pipBinary, cmdArgs...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return &cli.PipOutput{Stdout: stdout.String(), Stderr: stderr.String()}, err
	}
	return &cli.PipOutput{Stdout: stdout.String(), Stderr: stderr.String()}, nil
}

func (e pipEngine) InstallRequirements(ctx context.Context, requirementsFile string) (*cli.PipOutput, error) {
	return e.run(ctx, []string{"install", "-r", requirementsFile})
}

func (e pipEngine) InstallEditable(ctx context.Context, path string) (*cli.PipOutput, error) {
	return e.run(ctx, []string{"install", "-e", path})
}

func NewGitEngine() *cli.GitEngine {
	var e cli.GitEngine = gitEngine{}
	return &e
}

type gitEngine struct{}

func (e gitEngine) Available() error {
	if _, err := exec.LookPath(gitBinary); err != nil {
		return fmt.Errorf("%s executable not found in PATH: %w", gitBinary, err)
	}
	return nil
}

func (e gitEngine) SubmoduleUpdate(ctx context.Context, path string, opts cli.SubmoduleUpdateOptions) (*cli.GitOutput, error) {
	logger := logr.FromContextOrDiscard(ctx)

	cmdArgs := []string{"submodule", "update"}
	if opts.Init {
		cmdArgs = append(cmdArgs, "--init")
	}
	if opts.Recursive {
		cmdArgs = append(cmdArgs, "--recursive")
	}
	if opts.Remote {
		cmdArgs = append(cmdArgs, "--remote")
	}
	cmdArgs = append(cmdArgs, path)

	logger.V(log.TRC).Info("running git with the following invocation", "args", cmdArgs)
	cmd := exec.CommandContext(ctx, gitBinary, cmdArgs...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return &cli.GitOutput{Stdout: stdout.String(), Stderr: stderr.String()}, err
	}
	return &cli.GitOutput{Stdout: stdout.String(), Stderr: stderr.String()}, nil
}
