// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package reader

import "sort"

// ScrollObserver maps vertical scroll offsets to pages in continuous layout.
// Pages are stacked top to bottom in index order, with an optional gap.
type ScrollObserver struct {
	// offsets[i] is the top of page i; offsets[len] is the bottom of the last page.
	offsets []float64
}

// NewScrollObserver builds an observer from rendered page heights. Negative
// heights count as zero.
func NewScrollObserver(heights []float64, gap float64) *ScrollObserver {
	offsets := make([]float64, len(heights)+1)
	for i, height := range heights {
		offsets[i+1] = offsets[i] + max(height, 0)
		if i < len(heights)-1 {
			offsets[i+1] += max(gap, 0)
		}
	}
	return &ScrollObserver{offsets: offsets}
}

// Len returns the number of pages.
func (observer *ScrollObserver) Len() int {
	return len(observer.offsets) - 1
}

// PageAt returns the page whose vertical extent contains y. Offsets above the
// first page map to 0 and offsets below the last page map to the last index.
func (observer *ScrollObserver) PageAt(y float64) int {
	count := observer.Len()
	if count <= 0 {
		return 0
	}

	// First page whose bottom lies below y.
	index := sort.Search(count, func(i int) bool {
		return observer.offsets[i+1] > y
	})
	return min(index, count-1)
}

// OffsetOf returns the scroll offset that brings page index to the top.
func (observer *ScrollObserver) OffsetOf(index int) float64 {
	if index <= 0 || observer.Len() == 0 {
		return 0
	}
	return observer.offsets[min(index, observer.Len()-1)]
}

// Height returns the total scrollable height.
func (observer *ScrollObserver) Height() float64 {
	return observer.offsets[len(observer.offsets)-1]
}
