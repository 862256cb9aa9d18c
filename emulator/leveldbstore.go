package main

import (
	"github.com/syndtr/goleveldb/leveldb"
)

// LevelDBStore keeps the cycles of a census in a LevelDB database.
type LevelDBStore struct {
	*leveldb.DB
	n int
}

func (d *LevelDBStore) Add(cycle string) (bool, error) {
	key := []byte(cycle)
	ok, err := d.DB.Has(key, nil)
	if err != nil || ok {
		return false, err
	}
	if err := d.DB.Put(key, nil, nil); err != nil {
		return false, err
	}
	d.n++
	return true, nil
}

func (d *LevelDBStore) Len() int {
	return d.n
}

func NewLevelDBStore(path string) (*LevelDBStore, error) {
	handle, err := leveldb.OpenFile(path, nil)
	return &LevelDBStore{DB: handle}, err
}
