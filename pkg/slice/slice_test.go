// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package slice_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/comicreader/pkg/slice"
)

func TestMap(t *testing.T) {
	assert.Nil(t, slice.Map[int, string](nil, func(int) string { return "" }))
	assert.Equal(t, []int{3, 5}, slice.Map([]string{"one", "three"}, func(s string) int { return len(s) }))
}

func TestFilter(t *testing.T) {
	names := []string{"a.cbz", "notes.txt", "b.zip"}
	archives := slice.Filter(names, func(s string) bool { return !strings.HasSuffix(s, ".txt") })
	assert.Equal(t, []string{"a.cbz", "b.zip"}, archives)
	assert.Nil(t, slice.Filter(names, func(string) bool { return false }))
}
