package tablemerge

import (
	"sync"

	"github.com/agentstation/tablemerge/pkg/patch"
)

// Hook function types for patch events
type (
	// FileExportedHook is called after a rewritten file is written
	FileExportedHook func(family string, file patch.FileResult)

	// EditRejectedHook is called for every edit that could not be routed
	EditRejectedHook func(family string, failed patch.FailedEdit)
)

// Hooks registers event callbacks.
type Hooks interface {
	// OnFileExported registers a callback for written files
	OnFileExported(FileExportedHook)

	// OnEditRejected registers a callback for unroutable edits
	OnEditRejected(EditRejectedHook)
}

// hooks manages event callbacks for exports
type hooks struct {
	mu             sync.RWMutex
	onFileExported []FileExportedHook
	onEditRejected []EditRejectedHook
}

// newHooks creates a new hooks instance
func newHooks() *hooks {
	return &hooks{}
}

// OnFileExported registers a callback for written files
func (c *client) OnFileExported(fn FileExportedHook) {
	c.hooks.mu.Lock()
	defer c.hooks.mu.Unlock()
	c.hooks.onFileExported = append(c.hooks.onFileExported, fn)
}

// OnEditRejected registers a callback for unroutable edits
func (c *client) OnEditRejected(fn EditRejectedHook) {
	c.hooks.mu.Lock()
	defer c.hooks.mu.Unlock()
	c.hooks.onEditRejected = append(c.hooks.onEditRejected, fn)
}

// triggerExport fires hooks for an export result, in result order
func (h *hooks) triggerExport(result *patch.ExportResult) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, failed := range result.Impact.Failed {
		for _, hook := range h.onEditRejected {
			hook(result.Family, failed)
		}
	}
	for _, file := range result.Files {
		for _, hook := range h.onFileExported {
			hook(result.Family, file)
		}
	}
}
