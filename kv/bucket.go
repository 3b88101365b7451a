// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

import (
	"sync"
)

// Bucket provides logical bucket for kv store.
type Bucket string

func (b Bucket) withKey(key []byte, fn func(k []byte) error) error {
	buf := bufPool.Get().(*buf)
	defer bufPool.Put(buf)
	buf.k = append(append(buf.k[:0], b...), key...)
	return fn(buf.k)
}

// NewStore creates a bucket store from the source store.
func (b Bucket) NewStore(src Store) Store {
	return &bucketStore{bucket: b, src: src}
}

type bucketStore struct {
	bucket Bucket
	src    Store
}

func (s *bucketStore) Get(key []byte) (val []byte, err error) {
	err = s.bucket.withKey(key, func(k []byte) error {
		val, err = s.src.Get(k)
		return err
	})
	return
}

func (s *bucketStore) Has(key []byte) (has bool, err error) {
	err = s.bucket.withKey(key, func(k []byte) error {
		has, err = s.src.Has(k)
		return err
	})
	return
}

func (s *bucketStore) IsNotFound(err error) bool {
	return s.src.IsNotFound(err)
}

func (s *bucketStore) Put(key, val []byte) error {
	return s.bucket.withKey(key, func(k []byte) error {
		return s.src.Put(k, val)
	})
}

func (s *bucketStore) Delete(key []byte) error {
	return s.bucket.withKey(key, func(k []byte) error {
		return s.src.Delete(k)
	})
}

func (s *bucketStore) NewBatch() Batch {
	return &bucketBatch{bucket: s.bucket, batch: s.src.NewBatch()}
}

type bucketBatch struct {
	bucket Bucket
	batch  Batch
}

// the underlying batch may keep the key slice, so keys are copied here.
func (b *bucketBatch) Put(key, val []byte) error {
	return b.batch.Put(append([]byte(b.bucket), key...), val)
}

func (b *bucketBatch) Delete(key []byte) error {
	return b.batch.Delete(append([]byte(b.bucket), key...))
}

func (b *bucketBatch) Len() int     { return b.batch.Len() }
func (b *bucketBatch) Write() error { return b.batch.Write() }

type buf struct {
	k []byte
}

var bufPool = sync.Pool{
	New: func() any {
		return &buf{}
	},
}
