package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"

	"orbix_wallet/internal/app/port"
	"orbix_wallet/internal/domain/entity"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Key prefixes for the two kinds of data kept in the database.
const (
	StatePrefix   = "state_"
	PaymentPrefix = "payment_"
)

// LevelDBStore keeps client state flags and the payment ledger in LevelDB.
type LevelDBStore struct {
	db *leveldb.DB
	mu sync.RWMutex
}

var (
	_ port.StateStore    = (*LevelDBStore)(nil)
	_ port.PaymentLedger = (*LevelDBStore)(nil)
)

// NewLevelDBStore opens (or creates) the database at dbPath.
func NewLevelDBStore(dbPath string) (*LevelDBStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := leveldb.OpenFile(dbPath, &opt.Options{ErrorIfMissing: false})
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", dbPath, err)
	}
	return &LevelDBStore{db: db}, nil
}

// NewMemoryStore returns a store backed by in-memory LevelDB storage.
func NewMemoryStore() (*LevelDBStore, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}
	return &LevelDBStore{db: db}, nil
}

// Close closes the database.
func (s *LevelDBStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// Get returns the value stored under key.
func (s *LevelDBStore) Get(key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := s.db.Get([]byte(StatePrefix+key), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return string(data), true, nil
}

// Set stores value under key.
func (s *LevelDBStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.Put([]byte(StatePrefix+key), []byte(value), nil); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

// Delete removes keys in one batch. Missing keys are ignored.
func (s *LevelDBStore) Delete(keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	batch := new(leveldb.Batch)
	for _, k := range keys {
		batch.Delete([]byte(StatePrefix + k))
	}
	if err := s.db.Write(batch, nil); err != nil {
		return fmt.Errorf("failed to delete %v: %w", keys, err)
	}
	return nil
}

// Record appends rec to the ledger, filling in ID and CreatedAt when empty.
func (s *LevelDBStore) Record(ctx context.Context, rec entity.PaymentRecord) (entity.PaymentRecord, error) {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return rec, fmt.Errorf("failed to marshal payment record: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Zero-padded nanos keep keys in creation order.
	key := fmt.Sprintf("%s%020d_%s", PaymentPrefix, rec.CreatedAt.UnixNano(), rec.ID)
	if err := s.db.Put([]byte(key), data, nil); err != nil {
		return rec, fmt.Errorf("failed to save payment record: %w", err)
	}
	return rec, nil
}

// List returns matching records, newest first.
func (s *LevelDBStore) List(ctx context.Context, filter port.LedgerFilter) ([]entity.PaymentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	iter := s.db.NewIterator(util.BytesPrefix([]byte(PaymentPrefix)), nil)
	defer iter.Release()

	records := make([]entity.PaymentRecord, 0)
	for ok := iter.Last(); ok; ok = iter.Prev() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var rec entity.PaymentRecord
		if err := json.Unmarshal(iter.Value(), &rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal payment record %s: %w", iter.Key(), err)
		}
		if filter.Kind != "" && rec.Kind != filter.Kind {
			continue
		}
		if filter.Address != "" && !strings.EqualFold(rec.From, filter.Address) && !strings.EqualFold(rec.To, filter.Address) {
			continue
		}
		records = append(records, rec)
		if filter.Limit > 0 && len(records) >= filter.Limit {
			break
		}
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("failed to iterate payment records: %w", err)
	}
	return records, nil
}
