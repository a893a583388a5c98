// Andariego - Tourism Geo-Recommendation and Risk Analysis
// Copyright 2026 Andariego contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/andariego-ec/andariego

// Package cache provides a small thread-safe LRU with TTL support, used to
// memoize reference-image hashes so repeated identification requests do not
// re-decode the same catalog images.
package cache

import (
	"sync"
	"time"
)

// entry is a node in the doubly-linked LRU list.
type entry[V any] struct {
	key       string
	value     V
	prev      *entry[V]
	next      *entry[V]
	expiresAt time.Time
}

// LRU implements a thread-safe Least Recently Used cache with TTL.
// Get, Add, and eviction are all O(1): a doubly-linked list keeps access
// order and a map provides lookups.
type LRU[V any] struct {
	mu sync.RWMutex

	capacity int
	ttl      time.Duration

	items map[string]*entry[V]

	// head.next is most recently used, tail.prev is least recently used.
	head *entry[V]
	tail *entry[V]

	hits   int64
	misses int64
}

// NewLRU creates an LRU cache with the given capacity and TTL.
func NewLRU[V any](capacity int, ttl time.Duration) *LRU[V] {
	if capacity <= 0 {
		capacity = 1024
	}
	if ttl <= 0 {
		ttl = time.Hour
	}

	c := &LRU[V]{
		capacity: capacity,
		ttl:      ttl,
		items:    make(map[string]*entry[V], capacity),
		head:     &entry[V]{},
		tail:     &entry[V]{},
	}
	c.head.next = c.tail
	c.tail.prev = c.head
	return c
}

// Get retrieves a value. Found entries move to the front of the list.
func (c *LRU[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	e, ok := c.items[key]
	if !ok {
		c.misses++
		return zero, false
	}
	if time.Now().After(e.expiresAt) {
		c.removeEntry(e)
		c.misses++
		return zero, false
	}

	c.moveToFront(e)
	c.hits++
	return e.value, true
}

// Add inserts or updates an entry, evicting the least recently used entry
// when over capacity.
func (c *LRU[V]) Add(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := time.Now().Add(c.ttl)

	if e, ok := c.items[key]; ok {
		e.value = value
		e.expiresAt = expiresAt
		c.moveToFront(e)
		return
	}

	e := &entry[V]{key: key, value: value, expiresAt: expiresAt}
	c.addToFront(e)
	c.items[key] = e

	for len(c.items) > c.capacity {
		c.evictOldest()
	}
}

// Remove deletes an entry. Returns true if it was present.
func (c *LRU[V]) Remove(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	if !ok {
		return false
	}
	c.removeEntry(e)
	return true
}

// Len returns the current number of entries.
func (c *LRU[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Stats returns hit/miss counters and current size.
func (c *LRU[V]) Stats() (hits, misses int64, size int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses, len(c.items)
}

// Internal methods (must be called with lock held).

func (c *LRU[V]) addToFront(e *entry[V]) {
	e.prev = c.head
	e.next = c.head.next
	c.head.next.prev = e
	c.head.next = e
}

func (c *LRU[V]) moveToFront(e *entry[V]) {
	e.prev.next = e.next
	e.next.prev = e.prev
	c.addToFront(e)
}

func (c *LRU[V]) removeEntry(e *entry[V]) {
	e.prev.next = e.next
	e.next.prev = e.prev
	delete(c.items, e.key)
}

func (c *LRU[V]) evictOldest() {
	oldest := c.tail.prev
	if oldest == c.head {
		return
	}
	c.removeEntry(oldest)
}
