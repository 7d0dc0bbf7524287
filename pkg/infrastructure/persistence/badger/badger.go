// Package badger persists the yard state in an embedded BadgerDB.
//
// Every record lives under "<collection>/<zero padded seq>" so a prefix scan
// returns a collection in insertion order.
package badger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"

	"github.com/vsinha/baleyard/pkg/domain/entities"
	"github.com/vsinha/baleyard/pkg/domain/repositories"
	"github.com/vsinha/baleyard/pkg/infrastructure/persistence"
)

// Config holds configuration for the Badger persister
type Config struct {
	// Path is the database directory. Ignored when InMemory is true.
	Path string
	// InMemory keeps everything in RAM; used by tests
	InMemory bool
	// SyncWrites fsyncs every commit
	SyncWrites bool
	Logger     *zap.Logger
}

// zapLogger adapts zap to Badger's logger interface
type zapLogger struct {
	s *zap.SugaredLogger
}

func (l zapLogger) Errorf(format string, args ...interface{})   { l.s.Errorf(format, args...) }
func (l zapLogger) Warningf(format string, args ...interface{}) { l.s.Warnf(format, args...) }
func (l zapLogger) Infof(format string, args ...interface{})    { l.s.Infof(format, args...) }
func (l zapLogger) Debugf(format string, args ...interface{})   { l.s.Debugf(format, args...) }

// Persister implements repositories.Persister on BadgerDB
type Persister struct {
	db     *badger.DB
	logger *zap.Logger
}

// Verify interface compliance
var _ repositories.Persister = (*Persister)(nil)

// Open opens or creates the database
func Open(cfg Config) (*Persister, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent database")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
		opts = opts.WithLogger(nil)
	} else {
		opts = opts.WithLogger(zapLogger{s: logger.Named("badger").Sugar()})
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}
	return &Persister{db: db, logger: logger}, nil
}

// OpenInMemory opens a throwaway in-memory database
func OpenInMemory() (*Persister, error) {
	return Open(Config{InMemory: true})
}

func recordKey(collection string, seq int) []byte {
	return []byte(fmt.Sprintf("%s/%012d", collection, seq))
}

func parseKey(key []byte) (string, int, error) {
	collection, seq, ok := strings.Cut(string(key), "/")
	if !ok {
		return "", 0, fmt.Errorf("malformed key %q", key)
	}
	n, err := strconv.Atoi(seq)
	if err != nil {
		return "", 0, fmt.Errorf("malformed key %q: %w", key, err)
	}
	return collection, n, nil
}

// Load reads every record back into a snapshot
func (p *Persister) Load(ctx context.Context) (*entities.Snapshot, error) {
	b := persistence.NewSnapshotBuilder()
	err := p.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			collection, _, err := parseKey(item.Key())
			if err != nil {
				return err
			}
			if err := item.Value(func(val []byte) error {
				return b.Add(collection, val)
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load badger state: %w", err)
	}
	return b.Snapshot(), nil
}

// Commit writes all changes in one Badger transaction
func (p *Persister) Commit(ctx context.Context, changes []repositories.Change) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := p.db.Update(func(txn *badger.Txn) error {
		for _, c := range changes {
			rec, err := persistence.Encode(c)
			if err != nil {
				return err
			}
			if err := txn.Set(recordKey(rec.Collection, rec.Seq), rec.Body); err != nil {
				return fmt.Errorf("set %s %s: %w", rec.Collection, rec.Key, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("commit badger transaction: %w", err)
	}
	p.logger.Debug("committed", zap.Int("records", len(changes)))
	return nil
}

// Close closes the database
func (p *Persister) Close() error {
	return p.db.Close()
}
