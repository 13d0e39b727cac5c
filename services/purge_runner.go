package services

import (
	"log"
	"sync"
	"time"
)

// PurgeRunner sweeps the scratch directory for stale files on a fixed
// interval. Per-execution cleanup already runs inline; this reclaims
// orphans left by crashes.
type PurgeRunner struct {
	workspace *WorkspaceService
	interval  time.Duration
	maxAge    time.Duration
	stopCh    chan struct{}
	wg        sync.WaitGroup
}

func NewPurgeRunner(workspace *WorkspaceService, maxAge time.Duration) *PurgeRunner {
	return &PurgeRunner{
		workspace: workspace,
		interval:  time.Hour,
		maxAge:    maxAge,
		stopCh:    make(chan struct{}),
	}
}

func (r *PurgeRunner) Start() {
	// Sweep once at startup, then on the ticker.
	r.sweep()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				r.sweep()
			case <-r.stopCh:
				return
			}
		}
	}()
}

func (r *PurgeRunner) Stop() {
	close(r.stopCh)
	r.wg.Wait()
}

func (r *PurgeRunner) sweep() {
	if removed := r.workspace.PurgeOlderThan(r.maxAge); removed > 0 {
		log.Printf("purge: removed %d stale workspace files", removed)
	}
}
