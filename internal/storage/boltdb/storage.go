package boltdb

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/iudanet/clipsync/internal/storage"
)

const schemaVersion uint64 = 1

// openTimeout ограничивает ожидание файловой блокировки: база открыта
// только одним процессом.
const openTimeout = 2 * time.Second

var (
	// BoltDB bucket names
	bucketState = []byte("state")
	bucketItems = []byte("items")
	bucketMeta  = []byte("meta")

	keySchemaVersion = []byte("schema_version")
)

// Storage represents BoltDB storage implementation for the sync engine
type Storage struct {
	db       *bbolt.DB
	maxItems int
}

var _ storage.Store = (*Storage)(nil)

// New opens (or creates) the database at dbPath.
// maxItems limits the number of stored items; 0 disables pruning.
func New(ctx context.Context, dbPath string, maxItems int) (*Storage, error) {
	// Открываем BoltDB
	db, err := bbolt.Open(dbPath, 0600, &bbolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open boltdb: %w", err)
	}

	s := &Storage{db: db, maxItems: maxItems}

	// Инициализируем buckets
	if err := s.initBuckets(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize buckets: %w", err)
	}

	return s, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// SetMaxItems changes the item history limit. Applied on the next PutItem.
func (s *Storage) SetMaxItems(n int) {
	s.maxItems = n
}

// initBuckets создает необходимые buckets и проверяет версию схемы
func (s *Storage) initBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketState, bucketItems} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("failed to create %s bucket: %w", name, err)
			}
		}

		meta, err := tx.CreateBucketIfNotExists(bucketMeta)
		if err != nil {
			return fmt.Errorf("failed to create meta bucket: %w", err)
		}

		raw := meta.Get(keySchemaVersion)
		if raw == nil {
			// Новая база - записываем текущую версию схемы
			buf := make([]byte, 8)
			binary.BigEndian.PutUint64(buf, schemaVersion)
			return meta.Put(keySchemaVersion, buf)
		}

		if v := binary.BigEndian.Uint64(raw); v != schemaVersion {
			return fmt.Errorf("%w: %d", storage.ErrSchemaVersion, v)
		}
		return nil
	})
}
