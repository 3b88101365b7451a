// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache

import "sync/atomic"

// Stats counts cache lookups.
type Stats struct {
	hit, miss atomic.Int64
	flag      atomic.Int32
}

func (cs *Stats) Hit() int64 { return cs.hit.Add(1) }

func (cs *Stats) Miss() int64 { return cs.miss.Add(1) }

// Stats returns the hits and misses so far. changed reports whether the
// hit rate, in thousandths, moved since the previous call.
func (cs *Stats) Stats() (changed bool, hit, miss int64) {
	hit = cs.hit.Load()
	miss = cs.miss.Load()

	var rate int32
	if lookups := hit + miss; lookups > 0 {
		rate = int32(hit * 1000 / lookups)
	}
	return cs.flag.Swap(rate) != rate, hit, miss
}
