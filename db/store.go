package db

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"path/filepath"

	"github.com/cockroachdb/pebble"
	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("store resource not found")

// PebbleStore caches fetched records on disk. Completed records are
// immutable, so entries never need invalidation; repeated reports reuse them
// instead of re-querying the ledger.
type PebbleStore struct {
	db *pebble.DB
}

func NewPebbleStore(storeDir string) (*PebbleStore, error) {
	db, err := pebble.Open(filepath.Join(storeDir, "record-cache"), &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("opening pebble db: %v", err)
	}
	return &PebbleStore{db: db}, nil
}

func (ps *PebbleStore) SetRecord(chain, kind string, id uint64, record any) error {
	buffer := new(bytes.Buffer)
	if err := gob.NewEncoder(buffer).Encode(record); err != nil {
		return errors.Wrap(err, "encoding record")
	}
	err := ps.db.Set(recordKey(chain, kind, id), buffer.Bytes(), pebble.NoSync)
	if err != nil {
		return errors.Wrapf(err, "setting record [%s/%s/%d]", chain, kind, id)
	}
	return nil
}

func (ps *PebbleStore) GetRecord(chain, kind string, id uint64, record any) error {
	value, closer, err := ps.db.Get(recordKey(chain, kind, id))
	if errors.Is(err, pebble.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return errors.Wrapf(err, "getting record [%s/%s/%d]", chain, kind, id)
	}
	defer closer.Close()

	if err := gob.NewDecoder(bytes.NewBuffer(value)).Decode(record); err != nil {
		return errors.Wrap(err, "decoding record")
	}
	return nil
}

func recordKey(chain, kind string, id uint64) []byte {
	return []byte(fmt.Sprintf("%s/%s/%020d", chain, kind, id))
}

func (ps *PebbleStore) Close() error {
	return ps.db.Close()
}
