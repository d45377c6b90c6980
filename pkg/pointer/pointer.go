// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package pointer provides generic helpers for optional (pointer) fields such
// as a comic's last-read time.
package pointer

// To returns a pointer to the provided value.
func To[T any](v T) *T {
	return &v
}
