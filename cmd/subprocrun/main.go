// Command subprocrun executes a child process described by a YAML job file,
// streaming its stdout and stderr to the terminal and exiting with the
// child's exit code.
//
// Usage:
//
//	subprocrun [flags] <job.yaml>
//
// A job file names the program, its arguments, environment overrides, a
// working directory and an optional file to feed to the child's stdin:
//
//	program: /bin/sh
//	args: ["-c", "tr a-z A-Z"]
//	env:
//	  LANG: C
//	stdin_file: input.txt
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	subproc "github.com/procwire/subproc-go"
	"github.com/procwire/subproc-go/internal/jobfile"
)

var (
	flagTimeout time.Duration
	flagVerbose bool
)

func main() {
	cmd := &cobra.Command{
		Use:          "subprocrun <job.yaml>",
		Short:        "Run a child process described by a YAML job file",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := run(args[0])
			if err != nil {
				return err
			}

			if code != 0 {
				os.Exit(code)
			}

			return nil
		},
	}

	cmd.Flags().DurationVar(&flagTimeout, "timeout", 0, "kill the child and fail after this duration (0 means no limit)")
	cmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "log process lifecycle to stderr")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// streamListener copies the child's output to the terminal as readiness
// events arrive and remembers asynchronous failures.
type streamListener struct {
	subproc.NopListener

	proc *subproc.Process
	errs []error
}

func (l *streamListener) StandardOutputAvailable() {
	l.drain(l.proc.ReadStandardOutput, os.Stdout)
}

func (l *streamListener) StandardErrorAvailable() {
	l.drain(l.proc.ReadStandardError, os.Stderr)
}

func (l *streamListener) drain(read func([]byte) int, dst *os.File) {
	buf := make([]byte, 32*1024)

	for {
		n := read(buf)
		if n == 0 {
			return
		}

		_, _ = dst.Write(buf[:n])
	}
}

func (l *streamListener) ErrorOccurred(err error) {
	l.errs = append(l.errs, err)
}

func run(jobPath string) (int, error) {
	job, err := jobfile.Load(jobPath)
	if err != nil {
		return 0, err
	}

	logger := subproc.NopLogger()
	if flagVerbose {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	ctx := context.Background()

	if flagTimeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, flagTimeout)
		defer cancel()
	}

	listener := &streamListener{}
	proc := subproc.New(
		subproc.WithProgram(job.Program),
		subproc.WithArguments(job.Args...),
		subproc.WithEnvironment(job.Environ()),
		subproc.WithWorkingDirectory(job.Dir),
		subproc.WithListener(listener),
		subproc.WithLogger(logger),
	)
	listener.proc = proc

	defer proc.Close()

	if err := proc.Start(); err != nil {
		return 0, err
	}

	if !proc.WaitForStarted(ctx) {
		if len(listener.errs) > 0 {
			return 0, listener.errs[0]
		}

		return 0, errors.New("child did not start in time")
	}

	if err := feedStdin(ctx, proc, job.StdinFile); err != nil {
		return 0, err
	}

	if !proc.WaitForFinished(ctx) {
		_ = proc.Kill()

		return 0, fmt.Errorf("child did not finish within %s", flagTimeout)
	}

	status, err := proc.ExitStatus()
	if err != nil {
		return 0, err
	}

	code, err := proc.ExitCode()
	if err != nil {
		return 0, err
	}

	if status == subproc.ExitCrash {
		return 0, fmt.Errorf("child crashed (code %d)", code)
	}

	return int(code), nil
}

// feedStdin writes the optional stdin file to the child, retrying short
// writes as the transport drains, then closes the stream so the child
// observes EOF.
func feedStdin(ctx context.Context, proc *subproc.Process, path string) error {
	defer proc.CloseStandardInput()

	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read stdin file: %w", err)
	}

	for len(data) > 0 {
		n := proc.WriteStandardInput(data)
		data = data[n:]

		if len(data) > 0 && !proc.WaitForStandardInputAvailable(ctx) {
			return errors.New("child stopped accepting input")
		}
	}

	return nil
}
