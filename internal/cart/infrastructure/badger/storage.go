package badger

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// Storage keeps cart slots in an embedded Badger database, for single node
// deployments that should not depend on Redis.
type Storage struct {
	db  *badger.DB
	ttl time.Duration
}

func Open(path string, ttl time.Duration) (*Storage, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Storage{db: db, ttl: ttl}, nil
}

func OpenInMemory() (*Storage, error) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		return nil, err
	}
	return &Storage{db: db}, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func key(sessionID, slot string) []byte {
	return []byte(sessionID + "/" + slot)
}

func (s *Storage) Get(_ context.Context, sessionID, slot string) (string, bool, error) {
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(sessionID, slot))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(value), true, nil
}

func (s *Storage) Set(_ context.Context, sessionID, slot, value string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(key(sessionID, slot), []byte(value))
		if s.ttl > 0 {
			e = e.WithTTL(s.ttl)
		}
		return txn.SetEntry(e)
	})
}
