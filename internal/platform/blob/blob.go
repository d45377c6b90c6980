// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package blob holds in-memory page payloads behind dereferenceable handles.

A [Handle] plays the role of a browser object URL: it is allocated when a page
is extracted, served by the page endpoint while the comic is open, and must be
revoked exactly once when the comic is closed or replaced.

Core Responsibilities:

  - Allocation: [Registry.Create] stores a payload and returns a fresh handle.
  - Dereference: [Registry.Open] resolves a live handle to its payload.
  - Release: [Registry.Revoke] frees the payload; revoked handles never resolve again.
  - Accounting: [Registry.Stats] reports live handles and bytes for leak checks.
*/
package blob

import (
	"sync"

	"github.com/taibuivan/comicreader/pkg/uuid"
)

// Handle identifies a live payload in a [Registry].
type Handle string

// String implements [fmt.Stringer].
func (h Handle) String() string { return string(h) }

// Blob is a resolved payload.
type Blob struct {
	Data        []byte
	ContentType string
	ETag        string
}

// Stats is a point-in-time view of the registry's footprint.
type Stats struct {
	Handles int   `json:"handles"`
	Bytes   int64 `json:"bytes"`
}

// Registry is a concurrency-safe handle table.
type Registry struct {
	mu    sync.RWMutex
	blobs map[Handle]Blob
	bytes int64
}

// NewRegistry constructs an empty [Registry].
func NewRegistry() *Registry {
	return &Registry{blobs: make(map[Handle]Blob)}
}

// Create stores a payload and returns a newly allocated handle.
func (registry *Registry) Create(payload Blob) Handle {
	handle := Handle(uuid.New())

	registry.mu.Lock()
	registry.blobs[handle] = payload
	registry.bytes += int64(len(payload.Data))
	registry.mu.Unlock()

	return handle
}

// Open resolves a handle. It reports false for unknown or revoked handles.
func (registry *Registry) Open(handle Handle) (Blob, bool) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	payload, ok := registry.blobs[handle]
	return payload, ok
}

// Revoke releases a handle. It reports whether the handle was live.
func (registry *Registry) Revoke(handle Handle) bool {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	payload, ok := registry.blobs[handle]
	if !ok {
		return false
	}

	delete(registry.blobs, handle)
	registry.bytes -= int64(len(payload.Data))
	return true
}

// Stats returns the number of live handles and the bytes they hold.
func (registry *Registry) Stats() Stats {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	return Stats{Handles: len(registry.blobs), Bytes: registry.bytes}
}
