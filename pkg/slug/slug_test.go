// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package slug_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/comicreader/pkg/slug"
)

func TestFrom(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"One Piece", "one-piece"},
		{"  Vol. 01 -- Extras ", "vol-01-extras"},
		{"Pokémon Adventures", "pokemon-adventures"},
		{"__MACOSX", "macosx"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, slug.From(tt.in))
		})
	}
}

func TestSet_Claim(t *testing.T) {
	set := slug.Set{}

	assert.Equal(t, "one-piece", set.Claim(slug.From("One Piece")))
	assert.Equal(t, "one-piece-2", set.Claim(slug.From("one piece!")))
	assert.Equal(t, "one-piece-3", set.Claim("one-piece"))
	assert.Equal(t, slug.Fallback, set.Claim(slug.From("進撃の巨人")))
	assert.Equal(t, slug.Fallback+"-2", set.Claim(""))
}
