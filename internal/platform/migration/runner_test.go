// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package migration_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/comicreader/internal/platform/migration"
)

func TestToPgx5DSN(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"postgres://u:p@localhost:5432/reader", "pgx5://u:p@localhost:5432/reader"},
		{"postgresql://localhost/reader?sslmode=disable", "pgx5://localhost/reader?sslmode=disable"},
		{"pgx5://localhost/reader", "pgx5://localhost/reader"},
		{"host=localhost dbname=reader", "host=localhost dbname=reader"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, migration.ToPgx5DSN(tt.in))
		})
	}
}
