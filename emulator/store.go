package main

import (
	"fmt"
	"os"

	"github.com/dispersed-ledger/cycletrace/trace"
)

// openCycleSet returns an empty cycle set of the given kind and a function
// that disposes of it. On-disk sets live in a fresh directory under tmpRoot.
func openCycleSet(kind, tmpRoot string) (trace.CycleSet, func() error, error) {
	if kind == "mem" {
		return trace.NewMemCycleSet(), func() error { return nil }, nil
	}
	dir, err := os.MkdirTemp(tmpRoot, "cycles-"+kind+"-")
	if err != nil {
		return nil, nil, err
	}
	var (
		set     trace.CycleSet
		closeDB func() error
	)
	switch kind {
	case "leveldb":
		db, err := NewLevelDBStore(dir)
		if err != nil {
			os.RemoveAll(dir)
			return nil, nil, err
		}
		set, closeDB = db, db.Close
	case "pogreb":
		db, err := NewPogrebStore(dir)
		if err != nil {
			os.RemoveAll(dir)
			return nil, nil, err
		}
		set, closeDB = db, db.Close
	default:
		os.RemoveAll(dir)
		return nil, nil, fmt.Errorf("unknown cycle store %q", kind)
	}
	release := func() error {
		err := closeDB()
		if rerr := os.RemoveAll(dir); err == nil {
			err = rerr
		}
		return err
	}
	return set, release, nil
}
