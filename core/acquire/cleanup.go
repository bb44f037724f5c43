package acquire

import (
	"os"

	"Bt1QDL/logger"
)

// Cleanup removes a partial or failed artifact if it exists. Idempotent;
// filesystem errors are logged and swallowed so a cleanup failure never masks
// the pipeline error that triggered it.
func Cleanup(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logger.Warn("cleanup failed",
			logger.String("path", path),
			logger.ErrorField(err))
	}
}

// CleanupDir removes a session-scoped working directory. Same semantics as
// Cleanup.
func CleanupDir(dir string) {
	if dir == "" {
		return
	}
	if err := os.RemoveAll(dir); err != nil {
		logger.Warn("cleanup dir failed",
			logger.String("dir", dir),
			logger.ErrorField(err))
	}
}
