// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"fmt"

	"github.com/vechain/stakepool/cache"
	"github.com/vechain/stakepool/kv"
	"github.com/vechain/stakepool/stackedmap"
)

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// State is a revertable view of a kv store.
type State struct {
	store kv.Store
	cache *cache.LRU // committed values only
	sm    *stackedmap.StackedMap[string, []byte]
}

// New create state object. cacheSize is the capacity of the committed value
// cache, zero disables it.
func New(store kv.Store, cacheSize int) (*State, error) {
	s := &State{store: store}
	if cacheSize > 0 {
		c, err := cache.NewLRU(cacheSize)
		if err != nil {
			return nil, err
		}
		s.cache = c
	}
	s.reset()
	return s, nil
}

func (s *State) reset() {
	s.sm = stackedmap.New(s.load)
}

// load implements stackedmap.MapGetter.
func (s *State) load(key string) ([]byte, bool, error) {
	if s.cache == nil {
		v, err := s.loadStore(key)
		return v, true, err
	}
	v, err := s.cache.GetOrLoad(key, func(any) (any, error) {
		return s.loadStore(key)
	})
	if err != nil {
		return nil, false, err
	}
	return v.([]byte), true, nil
}

// loadStore reads key from the store, absent keys read as nil.
func (s *State) loadStore(key string) ([]byte, error) {
	v, err := s.store.Get([]byte(key))
	if err != nil {
		if s.store.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return v, nil
}

// Get returns the value stored under key, nil if absent.
// The returned slice must not be modified.
func (s *State) Get(key []byte) ([]byte, error) {
	v, _, err := s.sm.Get(string(key))
	if err != nil {
		return nil, &Error{err}
	}
	return v, nil
}

// Set sets the value for key. An empty value deletes the key.
func (s *State) Set(key, value []byte) {
	if len(value) == 0 {
		s.sm.Put(string(key), nil)
		return
	}
	s.sm.Put(string(key), append([]byte(nil), value...))
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo revert to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	s.sm.PopTo(revision)
}

// Changes returns the number of distinct keys written since last commit.
func (s *State) Changes() int {
	keys := make(map[string]struct{})
	s.sm.Journal(func(k string, _ []byte) bool {
		keys[k] = struct{}{}
		return true
	})
	return len(keys)
}

// Commit writes all changes into the underlying store in one batch.
// Checkpoints taken before are invalidated.
func (s *State) Commit() error {
	changes := make(map[string][]byte)
	var order []string
	s.sm.Journal(func(k string, v []byte) bool {
		if _, ok := changes[k]; !ok {
			order = append(order, k)
		}
		changes[k] = v
		return true
	})

	if len(order) > 0 {
		batch := s.store.NewBatch()
		for _, k := range order {
			var err error
			if v := changes[k]; len(v) == 0 {
				err = batch.Delete([]byte(k))
			} else {
				err = batch.Put([]byte(k), v)
			}
			if err != nil {
				return &Error{err}
			}
		}
		if err := batch.Write(); err != nil {
			// the store may hold part of the batch, drop cached values to reload them
			if s.cache != nil {
				s.cache.Purge()
			}
			return &Error{err}
		}
		if s.cache != nil {
			for _, k := range order {
				s.cache.Add(k, changes[k])
			}
		}
	}
	s.reset()
	return nil
}

// Discard drops all uncommitted changes.
func (s *State) Discard() {
	s.reset()
}

// CacheStats returns the lookup stats of the committed value cache, nil when it is disabled.
func (s *State) CacheStats() *cache.Stats {
	if s.cache == nil {
		return nil
	}
	return s.cache.Stats()
}
