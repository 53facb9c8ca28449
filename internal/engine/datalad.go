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

const dataladBinary = "datalad"

func NewDataladEngine() *cli.DataladEngine {
	var e cli.DataladEngine = dataladEngine{}
	return &e
}

type dataladEngine struct{}

func (e dataladEngine) Available() error {
	if _, err := exec.LookPath(dataladBinary); err != nil {
		return fmt.Errorf("%s executable not found in PATH: %w", dataladBinary, err)
	}
	return nil
}

func (e dataladEngine) run(ctx context.Context, cmdArgs []string) (*cli.DataladOutput, error) {
	logger := logr.FromContextOrDiscard(ctx)

	logger.V(log.TRC).Info("running datalad with the following invocation", "args", cmdArgs)
	cmd := exec.CommandContext(ctx, dataladBinary, cmdArgs...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return &cli.DataladOutput{Stdout: stdout.String(), Stderr: stderr.String()}, err
	}
	return &cli.DataladOutput{Stdout: stdout.String(), Stderr: stderr.String()}, nil
}

func (e dataladEngine) Install(ctx context.Context, path string) (*cli.DataladOutput, error) {
	return e.run(ctx, []string{"install", "--recursive", path})
}

func (e dataladEngine) Get(ctx context.Context, path string) (*cli.DataladOutput, error) {
	return e.run(ctx, []string{"get", path})
}

func (e dataladEngine) DownloadURL(ctx context.Context, output string, url string) (*cli.DataladOutput, error) {
	return e.run(ctx, []string{"download-url", "-O", output, url})
}

func (e dataladEngine) AddArchiveContent(ctx context.Context, archivePath string, opts cli.AddArchiveContentOptions) (*cli.DataladOutput, error) {
	cmdArgs := []string{"add-archive-content", "--extract"}
	if opts.Delete {
		cmdArgs = append(cmdArgs, "--delete")
	}
	cmdArgs = append(cmdArgs, archivePath)
	if opts.TargetDir != "" {
		cmdArgs = append(cmdArgs, "-d", opts.TargetDir)
	}
	return e.run(ctx, cmdArgs)
}

func (e dataladEngine) Drop(ctx context.Context, path string) (*cli.DataladOutput, error) {
	return e.run(ctx, []string{"drop", path})
}
