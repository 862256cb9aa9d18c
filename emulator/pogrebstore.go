package main

import (
	"time"

	"github.com/akrylysov/pogreb"
	"github.com/golang/snappy"
)

// PogrebStore keeps the cycles of a census in a pogreb database. Long cycles
// make long keys, so keys are stored snappy-compressed.
type PogrebStore struct {
	*pogreb.DB
}

func NewPogrebStore(path string) (*PogrebStore, error) {
	opts := &pogreb.Options{
		BackgroundCompactionInterval: time.Duration(30 * time.Second),
	}
	db, err := pogreb.Open(path, opts)
	return &PogrebStore{db}, err
}

func (p *PogrebStore) Add(cycle string) (bool, error) {
	compressedKey := snappy.Encode(nil, []byte(cycle))
	ok, err := p.DB.Has(compressedKey)
	if err != nil || ok {
		return false, err
	}
	return true, p.DB.Put(compressedKey, nil)
}

func (p *PogrebStore) Len() int {
	return int(p.DB.Count())
}
