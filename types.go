package subproc

// Status is the lifecycle state of a Process.
type Status int

const (
	// StatusNotRunning means no child exists. It is both the initial state
	// and the terminal state of every run; a Process may be started again
	// after returning here.
	StatusNotRunning Status = iota

	// StatusStarting means a launch has been requested but the backend has
	// not yet confirmed the child exists.
	StatusStarting

	// StatusRunning means the child exists and its streams are serviced.
	StatusRunning
)

func (s Status) String() string {
	switch s {
	case StatusNotRunning:
		return "not_running"
	case StatusStarting:
		return "starting"
	case StatusRunning:
		return "running"
	default:
		return "unknown"
	}
}

// ExitStatus distinguishes a normal exit from an abnormal termination.
type ExitStatus int

const (
	// ExitNormal means the child exited on its own; the exit code is the
	// program's real exit code.
	ExitNormal ExitStatus = iota

	// ExitCrash means the child was terminated abnormally. The exit code
	// is platform-defined: the terminating signal number on POSIX, the
	// OS-reported exit code on Windows. Portable callers treat it as
	// opaque beyond the Normal/Crash distinction.
	ExitCrash
)

func (s ExitStatus) String() string {
	switch s {
	case ExitNormal:
		return "normal"
	case ExitCrash:
		return "crash"
	default:
		return "unknown"
	}
}
