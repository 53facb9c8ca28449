package engine

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/go-logr/logr"

	"github.com/airoh-project/airoh/internal/cli"
	"github.com/airoh-project/airoh/internal/log"
)

const jupyterBinary = "jupyter"

func NewNotebookEngine() *cli.NotebookEngine {
	var e cli.NotebookEngine = jupyterEngine{}
	return &e
}

type jupyterEngine struct{}

func (e jupyterEngine) Available() error {
	if _, err := exec.LookPath(jupyterBinary); err != nil {
		return fmt.Errorf("%s executable not found in PATH: %w", jupyterBinary, err)
	}
	return nil
}

func (e jupyterEngine) Execute(ctx context.Context, path string, env map[string]string) (*cli.NotebookOutput, error) {
	logger := logr.FromContextOrDiscard(ctx)
	cmdArgs := []string{"nbconvert", "--to", "notebook", "--execute", "--inplace", path}

	logger.V(log.TRC).Info("running jupyter with the following invocation", "args", cmdArgs)
	cmd := exec.CommandContext(ctx, jupyterBinary, cmdArgs...)
	if len(env) > 0 {
		environ := os.Environ()
		for k, v := range env {
			environ = append(environ, fmt.Sprintf("%s=%s", k, v))
		}
		cmd.Env = environ
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return &cli.NotebookOutput{Stdout: stdout.String(), Stderr: stderr.String()}, err
	}
	return &cli.NotebookOutput{Stdout: stdout.String(), Stderr: stderr.String()}, nil
}
