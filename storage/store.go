// Package storage holds the platform state in an in-memory BadgerDB.
// Nothing is written to disk: the state lives as long as the process.
package storage

import (
	"flockr/errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
)

type Store struct {
	db  *badger.DB
	log *slog.Logger
}

// Open starts an empty in-memory store.
func Open(log *slog.Logger) (*Store, error) {
	options := badger.DefaultOptions("").
		WithInMemory(true).
		WithLoggingLevel(badger.ERROR)
	db, err := badger.Open(options)
	if err != nil {
		return nil, fmt.Errorf("opening in-memory badger failed: %w", err)
	}
	return &Store{db: db, log: log}, nil
}

func (s *Store) Close() error {
	s.log.Info("Closing in-memory store...")
	return s.db.Close()
}

// Reset drops every key, counters included.
func (s *Store) Reset() error {
	if err := s.db.DropAll(); err != nil {
		return fmt.Errorf("dropping store failed: %w", err)
	}
	return nil
}

// Update runs fn in a read-write transaction committed when fn returns nil.
func (s *Store) Update(fn func(tx *Tx) error) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return fn(&Tx{txn: txn})
	})
}

// View runs fn in a read-only transaction.
func (s *Store) View(fn func(tx *Tx) error) error {
	return s.db.View(func(txn *badger.Txn) error {
		return fn(&Tx{txn: txn})
	})
}

// Get is a single-key read transaction.
func (s *Store) Get(key string, v any) error {
	return s.View(func(tx *Tx) error {
		return tx.Get(key, v)
	})
}

// Set is a single-key write transaction.
func (s *Store) Set(key string, v any) error {
	return s.Update(func(tx *Tx) error {
		return tx.Set(key, v)
	})
}

type Tx struct {
	txn *badger.Txn
}

// Get decodes the value under key into v. A missing key yields
// errors.ErrNotFound.
func (t *Tx) Get(key string, v any) error {
	item, err := t.txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return errors.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("reading %q failed: %w", key, err)
	}
	return item.Value(func(val []byte) error {
		return Unmarshal(val, v)
	})
}

// Exists reports whether key is present.
func (t *Tx) Exists(key string) (bool, error) {
	_, err := t.txn.Get([]byte(key))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, badger.ErrKeyNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("reading %q failed: %w", key, err)
	}
}

func (t *Tx) Set(key string, v any) error {
	data, err := Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	return t.txn.Set([]byte(key), data)
}

func (t *Tx) Delete(key string) error {
	return t.txn.Delete([]byte(key))
}

// Scan calls fn with the raw value of every key under prefix, in key order.
// Use Unmarshal to decode the value.
func (t *Tx) Scan(prefix string, fn func(key string, value []byte) error) error {
	p := []byte(prefix)
	it := t.txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()

	for it.Seek(p); it.ValidForPrefix(p); it.Next() {
		item := it.Item()
		value, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		if err = fn(string(item.Key()), value); err != nil {
			return err
		}
	}
	return nil
}

// ScanReverse is Scan in descending key order.
func (t *Tx) ScanReverse(prefix string, fn func(key string, value []byte) error) error {
	p := []byte(prefix)
	options := badger.DefaultIteratorOptions
	options.Reverse = true
	it := t.txn.NewIterator(options)
	defer it.Close()

	// Seek past the last key of the prefix, then walk backwards
	for it.Seek(append([]byte(prefix), 0xff)); it.ValidForPrefix(p); it.Next() {
		item := it.Item()
		value, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		if err = fn(string(item.Key()), value); err != nil {
			return err
		}
	}
	return nil
}

// Count returns the number of keys under prefix.
func (t *Tx) Count(prefix string) (int, error) {
	options := badger.DefaultIteratorOptions
	options.PrefetchValues = false
	p := []byte(prefix)
	it := t.txn.NewIterator(options)
	defer it.Close()

	n := 0
	for it.Seek(p); it.ValidForPrefix(p); it.Next() {
		n++
	}
	return n, nil
}

// NextSequence returns the current value of the named counter and
// increments it. Counters start at 0 and restart after Reset.
func (t *Tx) NextSequence(name string) (int, error) {
	key := "seq:" + name
	var current int
	if err := t.Get(key, &current); err != nil && !errors.Is(err, errors.ErrNotFound) {
		return 0, err
	}
	if err := t.Set(key, current+1); err != nil {
		return 0, err
	}
	return current, nil
}

// Key joins a prefix and a numeric id, zero padded so keys sort numerically.
func Key(prefix string, id int) string {
	return fmt.Sprintf("%s%019d", prefix, id)
}
