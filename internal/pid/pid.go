package pid

import (
	"os"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/mqasimca/nvctl/internal/errors"
)

const lockFile = "nvctl-gui.lock"

// Path returns the advisory single-instance lock path: $XDG_CACHE_HOME
// (falling back to ~/.cache) joined with lockFile. Both Write and Remove
// use this so callers never need to know the exact location.
func Path() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}

	return filepath.Join(dir, lockFile)
}

// Write writes the current process ID to the lock file.
func Write() error {
	errFactory := errors.New()
	pid := os.Getpid()
	path := Path()

	if _, err := os.Stat(path); err == nil {
		// PID file exists, check if the process is running
		bytes, err := os.ReadFile(path)
		if err != nil {
			return errFactory.Wrap(errors.ErrInternal, err)
		}

		pid, err := strconv.Atoi(string(bytes))
		if err != nil {
			return errFactory.Wrap(errors.ErrInternal, err)
		}

		process, err := os.FindProcess(pid)
		if err != nil {
			return errFactory.Wrap(errors.ErrInternal, err)
		}

		err = process.Signal(syscall.Signal(0))
		if err == nil {
			return errFactory.New(errors.ErrAlreadyRunning)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errFactory.Wrap(errors.ErrInternal, err)
	}

	err := os.WriteFile(path, []byte(strconv.Itoa(pid)), 0o600)
	if err != nil {
		return errFactory.Wrap(errors.ErrInternal, err)
	}

	return nil
}

// Remove removes the lock file.
func Remove() error {
	errFactory := errors.New()
	path := Path()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	if err := os.Remove(path); err != nil {
		return errFactory.Wrap(errors.ErrInternal, err)
	}

	return nil
}
