package mcpserver

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/agentstation/tablemerge/pkg/merge"
)

// TableCache keeps merged tables for a short TTL so repeated reads of a
// family within one session do not rescan and reparse its files.
type TableCache struct {
	store *gocache.Cache
}

// NewTableCache creates a cache whose entries expire after ttl.
func NewTableCache(ttl time.Duration) *TableCache {
	return &TableCache{store: gocache.New(ttl, 2*ttl)}
}

// Get returns the cached merged table of family.
func (c *TableCache) Get(family string) (*merge.ResolvedTable, bool) {
	if c == nil {
		return nil, false
	}
	v, ok := c.store.Get(family)
	if !ok {
		return nil, false
	}
	rt, ok := v.(*merge.ResolvedTable)
	return rt, ok
}

// Set stores rt under its family name.
func (c *TableCache) Set(rt *merge.ResolvedTable) {
	if c == nil {
		return
	}
	c.store.SetDefault(rt.Family, rt)
}

// Clear drops every cached table.
func (c *TableCache) Clear() {
	if c == nil {
		return
	}
	c.store.Flush()
}

// Len returns the number of cached tables, including expired ones not yet evicted.
func (c *TableCache) Len() int {
	if c == nil {
		return 0
	}
	return c.store.ItemCount()
}
