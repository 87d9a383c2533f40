// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"math"
	"sync/atomic"
)

// Statistics tracks hit/miss/set/eviction counts for one store. Counters
// are atomic so a store shared across goroutines stays accurate.
type Statistics struct {
	hits      atomic.Int64
	misses    atomic.Int64
	sets      atomic.Int64
	evictions atomic.Int64
}

func (s *Statistics) Hit()  { s.hits.Add(1) }
func (s *Statistics) Miss() { s.misses.Add(1) }
func (s *Statistics) Set()  { s.sets.Add(1) }

// Evict records n entries leaving the store before their natural read.
func (s *Statistics) Evict(n int64) {
	if n > 0 {
		s.evictions.Add(n)
	}
}

// HitRate returns the hit percentage rounded to two decimals, or 0 when
// nothing has been asked of the cache yet.
func (s *Statistics) HitRate() float64 {
	hits := s.hits.Load()
	total := hits + s.misses.Load()
	if total == 0 {
		return 0
	}
	return math.Round(float64(hits)/float64(total)*100*100) / 100
}

// Fill copies the counters into a Summary.
func (s *Statistics) Fill(sum *Summary) {
	sum.Hits = s.hits.Load()
	sum.Misses = s.misses.Load()
	sum.Sets = s.sets.Load()
	sum.Evictions = s.evictions.Load()
	sum.HitRate = s.HitRate()
}
