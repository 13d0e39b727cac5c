package services

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
)

// WorkspaceService owns the scratch directory used for the file-based
// exchange with the R runtime. File names embed the execution ID, so
// concurrent executions never collide and no locking is needed.
type WorkspaceService struct {
	baseDir string
}

func NewWorkspaceService(baseDir string) (*WorkspaceService, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}
	return &WorkspaceService{baseDir: baseDir}, nil
}

// Allocate returns the input/output file pair for an execution. The files
// are not created here; the executor writes the input, the runtime writes
// the output.
func (w *WorkspaceService) Allocate(executionID string) (inputPath, outputPath string) {
	inputPath = filepath.Join(w.baseDir, fmt.Sprintf("input_%s.json", executionID))
	outputPath = filepath.Join(w.baseDir, fmt.Sprintf("output_%s.json", executionID))
	return inputPath, outputPath
}

// Release deletes the given files. It is idempotent: already-gone files
// are fine, and other deletion errors are logged and swallowed. Cleanup
// must never fail a request.
func (w *WorkspaceService) Release(paths ...string) {
	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Printf("workspace: failed to remove %s: %v", path, err)
		}
	}
}

// PurgeOlderThan removes scratch files whose modification time is older
// than maxAge. Best effort: an execution crash between allocate and
// release leaves orphans that this sweep reclaims.
func (w *WorkspaceService) PurgeOlderThan(maxAge time.Duration) int {
	entries, err := os.ReadDir(w.baseDir)
	if err != nil {
		log.Printf("workspace: purge failed to read %s: %v", w.baseDir, err)
		return 0
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(w.baseDir, entry.Name())); err != nil {
				log.Printf("workspace: purge failed to remove %s: %v", entry.Name(), err)
				continue
			}
			removed++
		}
	}
	return removed
}
