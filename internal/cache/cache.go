// Package cache holds versioned, copy-on-read snapshots of the task list.
package cache

import (
	"sync"

	"optitask/internal/service"
)

// Key addresses one snapshot in the cache.
type Key string

// TaskListKey is the single logical key for the task list.
const TaskListKey Key = "tasks"

type entry struct {
	tasks   []service.Task
	version uint64
}

// Cache stores whole-list snapshots. Every read returns an independent copy and
// every write replaces the snapshot atomically, so callers can never mutate
// cached state in place.
type Cache struct {
	mu      sync.RWMutex
	entries map[Key]*entry
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{entries: make(map[Key]*entry)}
}

// Read returns a copy of the snapshot stored under key.
// An unknown key reads as an empty list.
func (c *Cache) Read(key Key) []service.Task {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok {
		return []service.Task{}
	}
	return service.Clone(e.tasks)
}

// Write replaces the snapshot under key with a copy of next.
func (c *Cache) Write(key Key, next []service.Task) {
	snapshot := service.Clone(next)
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		e = &entry{}
		c.entries[key] = e
	}
	e.tasks = snapshot
	e.version++
}

// Version returns the number of writes applied to key.
func (c *Cache) Version(key Key) uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if e, ok := c.entries[key]; ok {
		return e.version
	}
	return 0
}
