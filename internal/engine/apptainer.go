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

const apptainerBinary = "apptainer"

func NewApptainerEngine() *cli.ApptainerEngine {
	var e cli.ApptainerEngine = apptainerEngine{}
	return &e
}

type apptainerEngine struct{}

func (e apptainerEngine) Available() error {
	if _, err := exec.LookPath(apptainerBinary); err != nil {
		return fmt.Errorf("%s executable not found in PATH: %w", apptainerBinary, err)
	}
	return nil
}

func (e apptainerEngine) Build(ctx context.Context, sifPath string, dockerRef string) (*cli.ApptainerOutput, error) {
	logger := logr.FromContextOrDiscard(ctx)
	cmdArgs := []string{"build", sifPath, dockerRef}

	logger.V(log.TRC).Info("running apptainer with the following invocation", "args", cmdArgs)
	cmd := exec.CommandContext(ctx, apptainerBinary, cmdArgs...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return &cli.ApptainerOutput{Stdout: stdout.String(), Stderr: stderr.String()}, err
	}
	return &cli.ApptainerOutput{Stdout: stdout.String(), Stderr: stderr.String()}, nil
}

func (e apptainerEngine) Exec(ctx context.Context, sifPath string, opts cli.ApptainerExecOptions) (*cli.ApptainerOutput, error) {
	logger := logr.FromContextOrDiscard(ctx)

	cmdArgs := []string{"exec", "--cleanenv"}
	if opts.HostDir != "" && opts.WorkDir != "" {
		cmdArgs = append(cmdArgs, "--bind", fmt.Sprintf("%s:%s", opts.HostDir, opts.WorkDir))
	}
	cmdArgs = append(cmdArgs, sifPath)
	cmdArgs = append(cmdArgs, opts.Command...)

	logger.V(log.TRC).Info("running apptainer with the following invocation", "args", cmdArgs)
	cmd := exec.CommandContext(ctx, apptainerBinary, cmdArgs...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return &cli.ApptainerOutput{Stdout: stdout.String(), Stderr: stderr.String()}, err
	}
	return &cli.ApptainerOutput{Stdout: stdout.String(), Stderr: stderr.String()}, nil
}
