// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package lvldb stores pool state in goleveldb. Every pool call is persisted
// as one synced batch, single puts and deletes are left to the OS to flush.
package lvldb

import (
	"github.com/ethereum/go-ethereum/log"
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	dberrors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"

	"github.com/vechain/stakepool/kv"
)

var _ kv.StoreCloser = (*LevelDB)(nil)

const minCacheMiB = 16

// Options tunes a persistent database. Values below 16 are raised to 16.
type Options struct {
	CacheSize              int // MiB, split between block cache and write buffer
	OpenFilesCacheCapacity int
}

var (
	batchWriteOpt = opt.WriteOptions{Sync: true}
	writeOpt      = opt.WriteOptions{}
	readOpt       = opt.ReadOptions{}
)

// LevelDB is a kv.StoreCloser backed by goleveldb.
type LevelDB struct {
	db  *leveldb.DB
	stg storage.Storage // leveldb.DB does not release storage it did not open
}

// New opens the database at path, creating it when missing. A corrupted
// manifest is recovered once before giving up.
func New(path string, opts Options) (*LevelDB, error) {
	stg, err := storage.OpenFile(path, false)
	if err != nil {
		return nil, errors.Wrapf(err, "open pool database %s", path)
	}
	db, err := open(stg, opts)
	if err != nil {
		stg.Close()
		return nil, errors.Wrapf(err, "open pool database %s", path)
	}
	return db, nil
}

// NewMem opens an in-memory database.
func NewMem() (*LevelDB, error) {
	return open(storage.NewMemStorage(), Options{})
}

func open(stg storage.Storage, opts Options) (*LevelDB, error) {
	cache := max(opts.CacheSize, minCacheMiB)
	options := &opt.Options{
		OpenFilesCacheCapacity: max(opts.OpenFilesCacheCapacity, minCacheMiB),
		BlockCacheCapacity:     cache / 2 * opt.MiB,
		WriteBuffer:            cache / 4 * opt.MiB,
		Filter:                 filter.NewBloomFilter(10),
	}

	db, err := leveldb.Open(stg, options)
	var corrupted *dberrors.ErrCorrupted
	if errors.As(err, &corrupted) {
		log.Warn("pool database corrupted, recovering", "err", err)
		db, err = leveldb.Recover(stg, options)
	}
	if err != nil {
		return nil, err
	}
	return &LevelDB{db: db, stg: stg}, nil
}

// IsNotFound reports whether err is the missing-key error returned by Get.
func (l *LevelDB) IsNotFound(err error) bool {
	return errors.Is(err, leveldb.ErrNotFound)
}

func (l *LevelDB) Get(key []byte) ([]byte, error) { return l.db.Get(key, &readOpt) }
func (l *LevelDB) Has(key []byte) (bool, error)   { return l.db.Has(key, &readOpt) }
func (l *LevelDB) Put(key, value []byte) error    { return l.db.Put(key, value, &writeOpt) }
func (l *LevelDB) Delete(key []byte) error        { return l.db.Delete(key, &writeOpt) }

// Close releases the database and its file lock. Later calls fail.
func (l *LevelDB) Close() error {
	if err := l.db.Close(); err != nil {
		l.stg.Close()
		return err
	}
	return l.stg.Close()
}

// NewBatch starts a batch that is written atomically and synced to disk.
func (l *LevelDB) NewBatch() kv.Batch {
	return &batch{db: l.db, b: new(leveldb.Batch)}
}

type batch struct {
	db *leveldb.DB
	b  *leveldb.Batch
}

func (b *batch) Put(key, value []byte) error {
	b.b.Put(key, value)
	return nil
}

func (b *batch) Delete(key []byte) error {
	b.b.Delete(key)
	return nil
}

func (b *batch) Len() int { return b.b.Len() }

func (b *batch) Write() error {
	return b.db.Write(b.b, &batchWriteOpt)
}
