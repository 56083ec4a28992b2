package store

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/dgraph-io/badger/v3"
	"go.uber.org/zap"
)

// BadgerConfig configures a [BadgerStore].
type BadgerConfig struct {
	// Dir is the profile directory. Ignored when InMemory is set.
	Dir string `env:"DIR"`
	// Prefix namespaces keys inside the database.
	Prefix string `env:"PREFIX"`
	// InMemory keeps data in RAM only; used by tests.
	InMemory bool `env:"IN_MEMORY"`
	// SyncWrites fsyncs every commit.
	SyncWrites bool `env:"SYNC_WRITES"`
}

// BadgerStore persists session keys in an embedded Badger database so a profile
// outlives the process that wrote it.
type BadgerStore struct {
	db     *badger.DB
	prefix string
	closed atomic.Bool
}

// OpenBadgerStore opens (or creates) the database described by cfg.
func OpenBadgerStore(cfg BadgerConfig, logger *zap.Logger) (*BadgerStore, error) {
	if !cfg.InMemory && cfg.Dir == "" {
		return nil, errors.New("badger: dir is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := badger.DefaultOptions(cfg.Dir)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithLogger(&badgerLogger{logger: logger.Sugar()})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger: open db: %w", err)
	}

	logger.Debug("badger store opened",
		zap.String("dir", cfg.Dir),
		zap.Bool("in_memory", cfg.InMemory))

	return &BadgerStore{db: db, prefix: cfg.Prefix}, nil
}

func (s *BadgerStore) key(key string) []byte {
	if s.prefix == "" {
		return []byte(key)
	}
	return []byte(s.prefix + ":" + key)
}

// Get reads key.
func (s *BadgerStore) Get(_ context.Context, key string) (string, bool, error) {
	if err := checkKey(key); err != nil {
		return "", false, err
	}
	if s.closed.Load() {
		return "", false, ErrStoreClosed
	}

	var (
		value []byte
		found bool
	)
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(s.key(key))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			return err
		}
		found = true
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return "", false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return string(value), found, nil
}

// Set writes key.
func (s *BadgerStore) Set(ctx context.Context, key, value string) error {
	return s.SetMany(ctx, map[string]string{key: value})
}

// Remove deletes key.
func (s *BadgerStore) Remove(ctx context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	return s.RemoveMany(ctx, key)
}

// SetMany writes all values in one read-write transaction.
func (s *BadgerStore) SetMany(_ context.Context, values map[string]string) error {
	for key := range values {
		if err := checkKey(key); err != nil {
			return err
		}
	}
	if s.closed.Load() {
		return ErrStoreClosed
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		for key, value := range values {
			if err := txn.Set(s.key(key), []byte(value)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// RemoveMany deletes all keys in one read-write transaction.
func (s *BadgerStore) RemoveMany(_ context.Context, keys ...string) error {
	if s.closed.Load() {
		return ErrStoreClosed
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		for _, key := range keys {
			if key == "" {
				continue
			}
			if err := txn.Delete(s.key(key)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Close flushes and closes the database. Further calls return ErrStoreClosed.
func (s *BadgerStore) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.db.Close()
}

// badgerLogger routes Badger's internal logging into zap.
type badgerLogger struct {
	logger *zap.SugaredLogger
}

func (l *badgerLogger) Errorf(format string, args ...any) {
	l.logger.Errorf(format, args...)
}

func (l *badgerLogger) Warningf(format string, args ...any) {
	l.logger.Warnf(format, args...)
}

func (l *badgerLogger) Infof(format string, args ...any) {
	l.logger.Infof(format, args...)
}

func (l *badgerLogger) Debugf(format string, args ...any) {
	l.logger.Debugf(format, args...)
}
