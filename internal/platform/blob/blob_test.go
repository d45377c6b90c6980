// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package blob_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/comicreader/internal/platform/blob"
)

/*
TestRegistry_Lifecycle verifies allocation, dereference and single release.
*/
func TestRegistry_Lifecycle(t *testing.T) {
	registry := blob.NewRegistry()

	handle := registry.Create(blob.Blob{Data: []byte("abc"), ContentType: "image/png"})
	assert.NotEmpty(t, handle.String())
	assert.Equal(t, blob.Stats{Handles: 1, Bytes: 3}, registry.Stats())

	payload, ok := registry.Open(handle)
	require.True(t, ok)
	assert.Equal(t, "image/png", payload.ContentType)

	// 1. First revoke releases
	assert.True(t, registry.Revoke(handle))

	// 2. Second revoke is a no-op and the handle no longer resolves
	assert.False(t, registry.Revoke(handle))
	_, ok = registry.Open(handle)
	assert.False(t, ok)
	assert.Equal(t, blob.Stats{}, registry.Stats())
}

/*
TestRegistry_DistinctHandles checks that every allocation gets its own handle.
*/
func TestRegistry_DistinctHandles(t *testing.T) {
	registry := blob.NewRegistry()

	first := registry.Create(blob.Blob{Data: []byte("x")})
	second := registry.Create(blob.Blob{Data: []byte("x")})

	assert.NotEqual(t, first, second)
	assert.Equal(t, 2, registry.Stats().Handles)
}
