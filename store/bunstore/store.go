// Package bunstore persists session credentials in a local SQLite database,
// giving CLI and desktop consumers sessions that survive process restarts.
package bunstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// CredentialRecord is one persisted key/value pair.
type CredentialRecord struct {
	bun.BaseModel `bun:"table:credentials,alias:cred"`

	Key       string    `bun:"key,pk"`
	Value     string    `bun:"value,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

// Store implements session.CredentialStore over SQLite.
type Store struct {
	db  *bun.DB
	now func() time.Time
}

// New opens (or creates) the database at path and ensures the credentials
// table exists. Use ":memory:" for an ephemeral store.
func New(ctx context.Context, path string) (*Store, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, path)
	if err != nil {
		return nil, fmt.Errorf("bunstore: unable to open %q: %w", path, err)
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())

	store := &Store{db: db, now: time.Now}
	if err := store.init(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

func (s *Store) init(ctx context.Context) error {
	if _, err := s.db.NewCreateTable().
		Model((*CredentialRecord)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("bunstore: unable to create credentials table: %w", err)
	}
	return nil
}

// Get implements session.CredentialStore.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	record := new(CredentialRecord)

	err := s.db.NewSelect().
		Model(record).
		Where("key = ?", key).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("bunstore: unable to read %q: %w", key, err)
	}

	return record.Value, true, nil
}

// Set implements session.CredentialStore.
func (s *Store) Set(ctx context.Context, key, value string) error {
	record := &CredentialRecord{
		Key:       key,
		Value:     value,
		UpdatedAt: s.now(),
	}

	_, err := s.db.NewInsert().
		Model(record).
		On("CONFLICT (key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("bunstore: unable to write %q: %w", key, err)
	}

	return nil
}

// Remove implements session.CredentialStore. Removing a missing key is not
// an error.
func (s *Store) Remove(ctx context.Context, key string) error {
	_, err := s.db.NewDelete().
		Model((*CredentialRecord)(nil)).
		Where("key = ?", key).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("bunstore: unable to remove %q: %w", key, err)
	}

	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
