// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package natsort orders file names the way a human reads them.

A name is split into alternating runs of ASCII digits and non-digits. Digit runs
compare as unsigned integers of any length, so "page9" sorts before "page10".
Non-digit runs compare with locale-aware collation rather than byte order, so
"apple" sorts before "Banana".

Usage:

	natsort.Sort(names)
	slices.SortStableFunc(entries, func(a, b Entry) int {
	    return natsort.Compare(a.Name, b.Name)
	})
*/
package natsort

import (
	"slices"
	"strings"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// collators hands out per-goroutine collators. [collate.Collator] keeps
// internal buffers and must not be shared between concurrent callers.
var collators = sync.Pool{
	New: func() any {
		return collate.New(language.English)
	},
}

// Compare returns -1, 0 or +1 depending on whether a sorts before, equal to
// or after b. It returns 0 only for identical strings.
func Compare(a, b string) int {
	if a == b {
		return 0
	}

	partsA := split(a)
	partsB := split(b)

	collator := collators.Get().(*collate.Collator)
	defer collators.Put(collator)

	for i := 0; i < len(partsA) && i < len(partsB); i++ {
		var result int
		if isDigitRun(partsA[i]) && isDigitRun(partsB[i]) {
			result = compareNumeric(partsA[i], partsB[i])
		} else {
			result = collator.CompareString(partsA[i], partsB[i])
		}
		if result != 0 {
			return result
		}
	}

	// A strict prefix (in parts) sorts first.
	switch {
	case len(partsA) < len(partsB):
		return -1
	case len(partsA) > len(partsB):
		return 1
	}

	// "01" and "1" are numerically equal; fall back to bytes to keep the order total.
	return strings.Compare(a, b)
}

// Less reports whether a sorts strictly before b.
func Less(a, b string) bool {
	return Compare(a, b) < 0
}

// Sort sorts names in place in natural order. The sort is stable.
func Sort(names []string) {
	slices.SortStableFunc(names, Compare)
}

// # Internal Helpers

// split breaks s into maximal runs of digits and non-digits.
func split(s string) []string {
	if s == "" {
		return nil
	}

	parts := make([]string, 0, 4)
	start := 0
	digit := isDigit(s[0])

	for i := 1; i < len(s); i++ {
		if d := isDigit(s[i]); d != digit {
			parts = append(parts, s[start:i])
			start = i
			digit = d
		}
	}

	return append(parts, s[start:])
}

// compareNumeric compares two digit runs as unsigned integers without parsing,
// so arbitrarily long runs never overflow.
func compareNumeric(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")

	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}

	return strings.Compare(a, b)
}

func isDigitRun(s string) bool {
	return s != "" && isDigit(s[0])
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
