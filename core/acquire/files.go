package acquire

import (
	"os"
	"path/filepath"
	"time"

	"Bt1QDL/core/utils"
)

// cleanupGlob removes every leftover matching pattern, typically partial
// downloads from a failed attempt.
func cleanupGlob(pattern string) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return
	}
	for _, m := range matches {
		Cleanup(m)
	}
}

// snapshotAudioFiles lists the audio files currently present in dir, keyed by
// name. Used around resolver invocations whose output naming is
// non-deterministic.
func snapshotAudioFiles(dir string) map[string]time.Time {
	snapshot := make(map[string]time.Time)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return snapshot
	}
	for _, e := range entries {
		if e.IsDir() || !utils.IsAudioFile(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		snapshot[e.Name()] = info.ModTime()
	}
	return snapshot
}

// findNewAudioFile diffs two directory snapshots and returns the path of the
// file the resolver produced. When no file is unambiguously new, the most
// recently modified audio file is used as a heuristic.
func findNewAudioFile(dir string, before map[string]time.Time) string {
	after := snapshotAudioFiles(dir)

	var newest string
	var newestTime time.Time
	for name, mod := range after {
		if _, existed := before[name]; !existed {
			return filepath.Join(dir, name)
		}
		if newest == "" || mod.After(newestTime) {
			newest = name
			newestTime = mod
		}
	}
	if newest == "" {
		return ""
	}
	return filepath.Join(dir, newest)
}
