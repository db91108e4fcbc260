package record

import (
	"encoding/json"
	"fmt"
	"net"

	bolt "go.etcd.io/bbolt"
)

// BoltStore is the optional built-in Source backend (spec §6 names SQL and
// INI as the expected external collaborators; BoltStore fills the same
// contract for deployments that want a built-in store rather than an
// external one). Grounded on the teacher's dbconfig.Store — same
// bucket-per-concern BoltDB layout and JSON-per-record encoding, stripped of
// the HA peer-sync and debounced onChange machinery that static per-MAC
// lookups have no use for.
type BoltStore struct {
	db *bolt.DB
}

var bucketDefinitions = []byte("definitions")

// OpenBoltStore opens (creating if absent) a BoltStore at path.
func OpenBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("opening bolt store %s: %w", path, err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketDefinitions)
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialising bolt store %s: %w", path, err)
	}
	return &BoltStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// LookupMAC implements Source. A clean miss returns (nil, nil).
func (s *BoltStore) LookupMAC(mac net.HardwareAddr) (*Definition, error) {
	var def *Definition
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketDefinitions).Get([]byte(mac.String()))
		if data == nil {
			return nil
		}
		def = &Definition{}
		return json.Unmarshal(data, def)
	})
	if err != nil {
		return nil, fmt.Errorf("looking up %s: %w", mac, err)
	}
	return def, nil
}

// Put writes or replaces the Definition for mac. Used by out-of-band
// provisioning tooling, not by the request path.
func (s *BoltStore) Put(mac net.HardwareAddr, def *Definition) error {
	data, err := json.Marshal(def)
	if err != nil {
		return fmt.Errorf("marshalling definition for %s: %w", mac, err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketDefinitions).Put([]byte(mac.String()), data)
	})
}

// Delete removes any Definition stored for mac.
func (s *BoltStore) Delete(mac net.HardwareAddr) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketDefinitions).Delete([]byte(mac.String()))
	})
}

// Reinitialise is a no-op: BoltStore has no process-local cache of its own,
// BoltDB reads are already consistent with the last committed write.
func (s *BoltStore) Reinitialise() error {
	return nil
}
