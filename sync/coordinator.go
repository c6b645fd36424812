package sync

import (
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// Coordinator serializes the sync pipeline for a session. The app
// triggers it from asynchronous event handlers (start, unlock, manual
// action); a trigger while a cycle is in flight is a no-op, never a
// queued retry.
type Coordinator struct {
	manager *Manager

	wg sync.WaitGroup

	// Re-entrancy guard: one pipeline per session
	syncing atomic.Bool

	// Logging (silent errors)
	logger *log.Logger

	// Shutdown flag
	shutdown atomic.Bool
}

// NewCoordinator creates a coordinator over an existing manager
func NewCoordinator(manager *Manager) *Coordinator {
	return &Coordinator{
		manager: manager,
		logger:  log.New(os.Stderr, "[AutoSync] ", log.LstdFlags),
	}
}

// TriggerSync starts a background full sync cycle for the signed-in
// owner. Non-blocking; returns immediately. Returns true if a cycle was
// started, false if one was already running or nobody is signed in.
func (c *Coordinator) TriggerSync() bool {
	if c.shutdown.Load() {
		return false
	}

	ownerID, ok := c.manager.session.CurrentOwnerID()
	if !ok {
		return false
	}

	if !c.syncing.CompareAndSwap(false, true) {
		// Already syncing, skip
		return false
	}

	c.wg.Add(1)
	go c.doSync(ownerID)
	return true
}

// doSync performs the actual synchronization cycle
func (c *Coordinator) doSync(ownerID string) {
	defer c.wg.Done()
	defer c.syncing.Store(false)

	defer func() {
		if r := recover(); r != nil {
			c.logger.Printf("Panic in sync cycle: %v", r)
		}
	}()

	// Check if online (happens in background, doesn't block caller)
	if !c.isOnline() {
		c.logger.Printf("Skipping sync: offline")
		return
	}

	result, err := c.manager.SyncCycle(ownerID)
	if err != nil {
		c.logger.Printf("Sync cycle error: %v", err)
		return
	}

	if result.Provisioned > 0 || result.DeletionsPushed > 0 ||
		result.SyncedProgress > 0 || result.SyncedEvents > 0 || result.Pulled > 0 {
		c.logger.Printf("Background sync completed: %d provisioned, %d deleted, %d progress, %d events, %d pulled",
			result.Provisioned, result.DeletionsPushed, result.SyncedProgress, result.SyncedEvents, result.Pulled)
	}
}

// isOnline checks if the remote backend is reachable.
// Uses a short timeout (3 seconds) to avoid blocking.
func (c *Coordinator) isOnline() bool {
	done := make(chan bool, 1)

	go func() {
		done <- c.manager.Remote().Ping() == nil
	}()

	select {
	case online := <-done:
		return online
	case <-time.After(3 * time.Second):
		return false
	}
}

// Shutdown gracefully shuts down the coordinator, waiting for a pending cycle
func (c *Coordinator) Shutdown(timeout time.Duration) {
	c.shutdown.Store(true)

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		// Cycle completed
	case <-time.After(timeout):
		c.logger.Printf("Warning: Pending sync did not complete within %v", timeout)
	}
}
