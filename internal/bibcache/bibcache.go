// Package bibcache persists parsed bibliography entries in a bbolt file,
// keyed by the BLAKE3 digest of the source content.
package bibcache

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/zeebo/blake3"
	bolt "go.etcd.io/bbolt"

	"github.com/alnah/go-mdcite/internal/bibliography"
	"github.com/alnah/go-mdcite/internal/yamlutil"
)

var (
	ErrMissingPath = errors.New("bibcache: missing path")
	ErrClosed      = errors.New("bibcache: store closed")
)

var bEntries = []byte("entries")

// Store is a bbolt-backed bibliography.Cache.
type Store struct {
	db     *bolt.DB
	logger *slog.Logger
}

// Open creates or opens the cache database at path.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if path == "" {
		return nil, ErrMissingPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("bibcache: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{
		Timeout: 1 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("bibcache: open %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bEntries)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bibcache: init %s: %w", path, err)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{db: db, logger: logger}, nil
}

// Close releases the database file. Closing twice is harmless.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// schemaVersion names the parser output stored in the cache. Bump it when
// bibliography parsing or the stored record layout changes, so entries
// written by an older binary are never served.
const schemaVersion = "bib-2"

// Key returns the cache key for content parsed as format.
func Key(format bibliography.Format, data []byte) string {
	return keyWith(schemaVersion, format, data)
}

func keyWith(schema string, format bibliography.Format, data []byte) string {
	h := blake3.New()
	_, _ = h.Write([]byte(schema))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(format.String()))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Lookup returns the entries stored for data, if any. Undecodable
// records count as misses.
func (s *Store) Lookup(format bibliography.Format, data []byte) ([]*bibliography.Entry, bool) {
	if s == nil || s.db == nil {
		return nil, false
	}
	key := Key(format, data)
	var raw []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bEntries)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil || raw == nil {
		return nil, false
	}

	var entries []*bibliography.Entry
	if err := yamlutil.UnmarshalWithLimit(raw, &entries, len(raw)); err != nil {
		s.logger.Debug("discarding unreadable cache record", "key", key, "error", err)
		return nil, false
	}
	return entries, true
}

// Store records entries for data.
func (s *Store) Store(format bibliography.Format, data []byte, entries []*bibliography.Entry) error {
	if s == nil || s.db == nil {
		return ErrClosed
	}
	if entries == nil {
		entries = []*bibliography.Entry{}
	}
	raw, err := yamlutil.Marshal(entries)
	if err != nil {
		return fmt.Errorf("bibcache: encode: %w", err)
	}
	key := Key(format, data)
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bEntries)
		if err != nil {
			return err
		}
		return b.Put([]byte(key), raw)
	})
}

// Len reports the number of cached files.
func (s *Store) Len() int {
	if s == nil || s.db == nil {
		return 0
	}
	n := 0
	_ = s.db.View(func(tx *bolt.Tx) error {
		if b := tx.Bucket(bEntries); b != nil {
			n = b.Stats().KeyN
		}
		return nil
	})
	return n
}

var _ bibliography.Cache = (*Store)(nil)
