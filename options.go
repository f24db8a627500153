package subproc

import (
	"log/slog"
	"slices"
)

// Option configures a Process at construction using the functional options
// pattern. The same settings can be changed later through the Set* methods
// while the process is not running.
type Option func(*Process)

// WithProgram sets the path of the program to execute.
func WithProgram(program string) Option {
	return func(p *Process) {
		p.program = program
	}
}

// WithArguments sets the argument list passed to the program, not counting
// the program name itself.
func WithArguments(args ...string) Option {
	return func(p *Process) {
		p.args = slices.Clone(args)
	}
}

// WithEnvironment sets the child's environment as "KEY=VALUE" entries.
// If not set, the child inherits the parent environment.
func WithEnvironment(env []string) Option {
	return func(p *Process) {
		p.env = slices.Clone(env)
	}
}

// WithWorkingDirectory sets the child's working directory.
// If not set, the child inherits the parent's working directory.
func WithWorkingDirectory(dir string) Option {
	return func(p *Process) {
		p.dir = dir
	}
}

// WithListener sets the listener receiving lifecycle and readiness events.
// The caller keeps the listener alive for as long as the Process may
// dispatch to it.
func WithListener(l Listener) Option {
	return func(p *Process) {
		p.listener = l
	}
}

// WithLogger sets the logger for debug output.
// If not set, logging is disabled (silent operation).
func WithLogger(logger *slog.Logger) Option {
	return func(p *Process) {
		p.log = logger
	}
}

// WithStdinBufferSize bounds the bytes accepted ahead of the child reading
// them. A write beyond the bound returns a short count. Zero keeps the
// default of 64 KiB.
func WithStdinBufferSize(size int) Option {
	return func(p *Process) {
		p.stdinBufferSize = size
	}
}

// WithStdioBufferSize bounds each of the stdout and stderr buffers. A full
// buffer backpressures the child. Zero keeps the default of 1 MiB.
func WithStdioBufferSize(size int) Option {
	return func(p *Process) {
		p.stdioBufferSize = size
	}
}
