// Package journal persists a record of every submitted transaction so an
// undetermined outcome can be re-queried later with the recorded hash. It
// is the only state this core keeps on disk.
package journal

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/oklog/ulid"

	"github.com/ledgerwallet/wallet-engine/pkg/codec"
	"github.com/ledgerwallet/wallet-engine/pkg/collection"
)

var (
	// ErrEntryNotFound means the journal holds no entry under the key.
	ErrEntryNotFound = errors.New("journal entry was not found")

	prefixFlow = []byte("flow:")
	prefixHash = []byte("hash:")
)

// Entry is one submitted transaction.
type Entry struct {
	FlowID    string        `json:"flowID"`
	Hash      codec.Hex     `json:"hash"`
	TypeName  string        `json:"typeName"`
	Account   codec.Address `json:"account"`
	Blob      codec.Hex     `json:"blob"`
	Status    string        `json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// NewFlowID returns a sortable unique id for one lifecycle flow.
func NewFlowID() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}

// Journal is a pebble backed key-value store of entries, indexed by flow id
// and by transaction hash.
type Journal struct {
	mutex    sync.Mutex
	pebbleDB *pebble.DB
}

// Open opens or creates the journal at path.
func Open(path string) (*Journal, error) {
	pebbleDB, err := pebble.Open(path, &pebble.Options{
		ErrorIfExists: false,
	})
	if err != nil {
		return nil, err
	}
	return &Journal{pebbleDB: pebbleDB}, nil
}

func (j *Journal) Close() error {
	return j.pebbleDB.Close()
}

// Put writes an entry under its flow id and indexes its hash when present.
func (j *Journal) Put(entry *Entry) error {
	j.mutex.Lock()
	defer j.mutex.Unlock()
	if entry.FlowID == "" {
		return errors.New("entry requires a flow ID")
	}
	entry.UpdatedAt = time.Now().UTC()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = entry.UpdatedAt
	}
	encoded, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	batch := j.pebbleDB.NewBatch()
	defer batch.Close()
	if err := batch.Set(flowKey(entry.FlowID), encoded, nil); err != nil {
		return err
	}
	if len(entry.Hash) > 0 {
		if err := batch.Set(hashKey(entry.Hash), []byte(entry.FlowID), nil); err != nil {
			return err
		}
	}
	return batch.Commit(pebble.Sync)
}

// Get returns the entry for a flow id.
func (j *Journal) Get(flowID string) (*Entry, error) {
	return j.get(flowKey(flowID))
}

// GetByHash returns the entry recorded for a transaction hash.
func (j *Journal) GetByHash(hash codec.Hex) (*Entry, error) {
	flowID, closer, err := j.pebbleDB.Get(hashKey(hash))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}
	id := string(flowID)
	if err := closer.Close(); err != nil {
		return nil, err
	}
	return j.Get(id)
}

// UpdateStatus rewrites the status of an existing entry.
func (j *Journal) UpdateStatus(flowID, status string) error {
	entry, err := j.Get(flowID)
	if err != nil {
		return err
	}
	entry.Status = status
	return j.Put(entry)
}

// List returns all entries, newest first. Flow ids are ULIDs, so the key
// order is creation order.
func (j *Journal) List() ([]*Entry, error) {
	iter := j.pebbleDB.NewIter(prefixIterOptions(prefixFlow))
	defer iter.Close()
	entries := []*Entry{}
	for iter.First(); iter.Valid(); iter.Next() {
		entry := &Entry{}
		if err := json.Unmarshal(iter.Value(), entry); err != nil {
			return nil, fmt.Errorf("corrupt journal entry under %q: %w", iter.Key(), err)
		}
		entries = append(entries, entry)
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}
	return collection.Reverse(entries), nil
}

func (j *Journal) get(key []byte) (*Entry, error) {
	value, closer, err := j.pebbleDB.Get(key)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}
	entry := &Entry{}
	if err := json.Unmarshal(value, entry); err != nil {
		return nil, err
	}
	if err := closer.Close(); err != nil {
		return nil, err
	}
	return entry, nil
}

func flowKey(flowID string) []byte {
	return append(append([]byte{}, prefixFlow...), []byte(flowID)...)
}

func hashKey(hash codec.Hex) []byte {
	return append(append([]byte{}, prefixHash...), []byte(hash.String())...)
}

func prefixIterOptions(prefix []byte) *pebble.IterOptions {
	return &pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: upperBound(prefix),
	}
}

func upperBound(b []byte) []byte {
	end := make([]byte, len(b))
	copy(end, b)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil // no upper-bound
}
