// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"strconv"

	"github.com/vechain/stakepool/cache"
	"github.com/vechain/stakepool/metrics"
)

var (
	metricCalls          = metrics.LazyLoadCounterVec("pool_calls_count", []string{"op", "status"})
	metricStorageGas     = metrics.LazyLoadHistogramVec("pool_storage_gas", []string{"op"}, metrics.BucketGas)
	metricChunkItems     = metrics.LazyLoadHistogram("pool_chunk_items", metrics.BucketItems)
	metricPhase          = metrics.LazyLoadGauge("pool_global_op_phase")
	metricFundRecords    = metrics.LazyLoadGaugeVec("pool_fund_records", []string{"type"})
	metricCacheHitMiss   = metrics.LazyLoadGaugeVec("pool_cache_hit_miss_count", []string{"event"})
	metricUnsharedReward = metrics.LazyLoadCounter("pool_unshared_rewards_count")
)

func reportCacheStats(stats *cache.Stats) {
	if stats == nil {
		return
	}
	changed, hit, miss := stats.Stats()
	if changed {
		var rate float64
		if lookups := hit + miss; lookups > 0 {
			rate = float64(hit) / float64(lookups)
		}
		logger.Debug("ledger cache stats", "hit", hit, "miss", miss, "hitrate", strconv.FormatFloat(rate, 'f', 3, 64))
	}
	metricCacheHitMiss().SetWithLabel(hit, map[string]string{"event": "hit"})
	metricCacheHitMiss().SetWithLabel(miss, map[string]string{"event": "miss"})
}
