package catalog

import (
	"encoding/binary"
	"runtime"

	"github.com/2x3systems/multicurve/gomc"
	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
)

/***

Catalog database format:

	gCatalogStateKey => catalog format version (byte)

	PermPrefix, k (uint32 BE), n (uint32 BE)    => TwoSided (uvarint), OneSided (uvarint)
	...

	where PermPrefix := len(PermKey) (uvarint), PermKey

Keys for a given signed permutation share PermPrefix, and big-endian (k=m+n, n) makes a prefix scan
return tallies in the same order the enumerator produces them.

***/

var (
	gCatalogStateKey = []byte{0x00, 0x00, 0x01}
)

const kCatalogVersion = byte(1)

// catalog is a db wrapper for tallies of one signed permutation
type catalog struct {
	readOnly bool
	db       *badger.DB
	prefix   []byte
}

// OpenCatalog opens (or creates) a tally catalog for the signed permutation identified by opts.PermKey.
// An empty opts.DbPathName opens an in-memory catalog.
func OpenCatalog(opts gomc.CatalogOpts) (gomc.Catalog, error) {
	if len(opts.PermKey) == 0 {
		return nil, errors.Wrap(gomc.ErrBadCatalogParam, "PermKey must be specified")
	}

	cat := &catalog{
		readOnly: opts.ReadOnly,
	}
	cat.prefix = binary.AppendUvarint(cat.prefix, uint64(len(opts.PermKey)))
	cat.prefix = append(cat.prefix, opts.PermKey...)

	dbOpts := badger.DefaultOptions(opts.DbPathName)
	dbOpts.ReadOnly = opts.ReadOnly
	dbOpts.DetectConflicts = false // not needed so disable for performance
	dbOpts.Logger = nil
	dbOpts.MetricsEnabled = false

	// Badger for windows currently does not support read-only mode
	if runtime.GOOS == "windows" {
		dbOpts.ReadOnly = false
	}

	if len(opts.DbPathName) == 0 {
		if opts.ReadOnly {
			return nil, errors.Wrap(gomc.ErrBadCatalogParam, "DbPathName must be specified for read-only catalog")
		}
		dbOpts.InMemory = true
	}

	var err error
	cat.db, err = badger.Open(dbOpts)
	if err != nil {
		return nil, errors.Wrapf(err, "opening catalog %q", opts.DbPathName)
	}

	if err = cat.checkState(); err != nil {
		cat.db.Close()
		return nil, err
	}

	klog.V(2).Infof("opened catalog %q (read-only: %v)", opts.DbPathName, opts.ReadOnly)
	return cat, nil
}

func (cat *catalog) checkState() error {
	var version []byte
	err := cat.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(gCatalogStateKey)
		if err != nil {
			return err
		}
		version, err = item.ValueCopy(nil)
		return err
	})

	switch {
	case err == badger.ErrKeyNotFound:
		if cat.readOnly {
			return nil
		}
		return cat.db.Update(func(txn *badger.Txn) error {
			return txn.Set(gCatalogStateKey, []byte{kCatalogVersion})
		})
	case err != nil:
		return err
	case len(version) != 1 || version[0] != kCatalogVersion:
		return errors.New("catalog version is incompatible")
	}
	return nil
}

func (cat *catalog) IsReadOnly() bool {
	return cat.readOnly
}

func (cat *catalog) formKey(pair gomc.Pair) []byte {
	key := make([]byte, len(cat.prefix), len(cat.prefix)+8)
	copy(key, cat.prefix)
	key = binary.BigEndian.AppendUint32(key, uint32(pair.Complexity()))
	key = binary.BigEndian.AppendUint32(key, uint32(pair.N))
	return key
}

func decodeTally(val []byte) (gomc.Tally, error) {
	two, n1 := binary.Uvarint(val)
	if n1 <= 0 {
		return gomc.Tally{}, gomc.ErrUnmarshal
	}
	one, n2 := binary.Uvarint(val[n1:])
	if n2 <= 0 || n1+n2 != len(val) {
		return gomc.Tally{}, gomc.ErrUnmarshal
	}
	return gomc.Tally{TwoSided: int(two), OneSided: int(one)}, nil
}

func (cat *catalog) TryAddTally(PT gomc.PairTally) bool {
	if cat.readOnly {
		return false
	}

	key := cat.formKey(PT.Pair)
	added := false
	err := cat.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err == nil {
			return nil // no-op since the key is already in the db
		}
		if err != badger.ErrKeyNotFound {
			return err
		}
		val := binary.AppendUvarint(nil, uint64(PT.TwoSided))
		val = binary.AppendUvarint(val, uint64(PT.OneSided))
		added = true
		return txn.Set(key, val)
	})
	if err != nil {
		klog.Errorf("catalog: failed to add %v: %v", PT, err)
		return false
	}
	return added
}

func (cat *catalog) LookupTally(pair gomc.Pair) (gomc.Tally, bool) {
	var tally gomc.Tally
	err := cat.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(cat.formKey(pair))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			tally, err = decodeTally(val)
			return err
		})
	})
	if err != nil {
		if err != badger.ErrKeyNotFound {
			klog.Warningf("catalog: lookup %v: %v", pair, err)
		}
		return gomc.Tally{}, false
	}
	return tally, true
}

func (cat *catalog) NumTallies() int64 {
	count := int64(0)
	cat.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = cat.prefix
		itr := txn.NewIterator(opts)
		defer itr.Close()
		for itr.Rewind(); itr.Valid(); itr.Next() {
			count++
		}
		return nil
	})
	return count
}

func (cat *catalog) Select(orientableOnly bool, onHit gomc.OnTallyHit) {
	err := cat.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = cat.prefix
		itr := txn.NewIterator(opts)
		defer itr.Close()

		for itr.Rewind(); itr.Valid(); itr.Next() {
			item := itr.Item()
			key := item.Key()[len(cat.prefix):]
			if len(key) != 8 {
				return gomc.ErrUnmarshal
			}
			k := int(binary.BigEndian.Uint32(key[0:4]))
			n := int(binary.BigEndian.Uint32(key[4:8]))

			var tally gomc.Tally
			err := item.Value(func(val []byte) error {
				var err error
				tally, err = decodeTally(val)
				return err
			})
			if err != nil {
				return err
			}
			if orientableOnly && !tally.Orientable() {
				continue
			}
			onHit <- gomc.PairTally{
				Pair:  gomc.Pair{M: k - n, N: n},
				Tally: tally,
			}
		}
		return nil
	})
	if err != nil {
		klog.Errorf("catalog: select failed: %v", err)
	}
}

func (cat *catalog) Close() error {
	if cat.db == nil {
		return nil
	}
	err := cat.db.Close()
	cat.db = nil
	return err
}
