package store

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - Initial schema (pre-migration)
// 1 - Added index on collections.kind
// 2 - Collections must carry the storage format of their event header
const currentSchemaVersion = 2

var (
	// ErrEventMissing is returned when a collection is written for an
	// event stream that has no stored header.
	ErrEventMissing = errors.New("event header not stored")

	// ErrFormatMismatch is returned when a collection's storage format
	// differs from the format of its event header.
	ErrFormatMismatch = errors.New("collection format differs from event format")

	// ErrSchemaTooNew is returned when the database was written by a newer
	// collcopy schema than this build understands.
	ErrSchemaTooNew = errors.New("database schema is newer than supported")
)

// Store holds imported events and the collections copied into them.
// Uses SQLite with WAL mode so inspect can read while a run writes.
type Store struct {
	db *sql.DB
}

// Open creates or opens an event store at the given path.
// Applies required pragmas and migrations automatically.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement, so collections cannot outlive their event
//
// Returns ErrSchemaTooNew for a database migrated past currentSchemaVersion.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SchemaVersion returns the migration level of the open database.
func (s *Store) SchemaVersion() (int, error) {
	return schemaVersion(s.db)
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates tables if they don't exist and runs migrations.
func applySchema(db *sql.DB) error {
	version, err := schemaVersion(db)
	if err != nil {
		return err
	}
	if version > currentSchemaVersion {
		return fmt.Errorf("%w: version %d, supported %d", ErrSchemaTooNew, version, currentSchemaVersion)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	if err := runMigrations(db, version); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

func schemaVersion(db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("get user_version: %w", err)
	}
	return version, nil
}

// runMigrations applies incremental schema migrations above version.
func runMigrations(db *sql.DB, version int) error {
	migrations := []func(*sql.DB) error{migrateToV1, migrateToV2}
	for v := version; v < currentSchemaVersion; v++ {
		if err := migrations[v](db); err != nil {
			return err
		}
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	return nil
}

// migrateToV1 adds the kind index used by CountCollections.
func migrateToV1(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_collections_kind
		ON collections(kind)
	`)
	if err != nil {
		return fmt.Errorf("migrate to v1: %w", err)
	}
	return nil
}

// migrateToV2 pins every collection to the storage format of its event
// header. A run reads one format only, so a mixed event cannot be copied.
func migrateToV2(db *sql.DB) error {
	for _, op := range []string{"INSERT", "UPDATE"} {
		stmt := fmt.Sprintf(`
			CREATE TRIGGER IF NOT EXISTS trg_collections_format_%[1]s
			BEFORE %[2]s ON collections
			WHEN NEW.format IS NOT (
				SELECT format FROM events
				WHERE seq = NEW.event_seq AND stream = NEW.stream
			)
			AND EXISTS (
				SELECT 1 FROM events
				WHERE seq = NEW.event_seq AND stream = NEW.stream
			)
			BEGIN
				SELECT RAISE(ABORT, '%[3]s');
			END
		`, strings.ToLower(op), op, ErrFormatMismatch.Error())
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate to v2: %w", err)
		}
	}
	return nil
}

// constraintError maps SQLite constraint failures on collection writes to
// the store's sentinel errors.
func constraintError(err error) error {
	var se sqlite3.Error
	if !errors.As(err, &se) || se.Code != sqlite3.ErrConstraint {
		return err
	}
	switch se.ExtendedCode {
	case sqlite3.ErrConstraintForeignKey:
		return fmt.Errorf("%w: %v", ErrEventMissing, err)
	case sqlite3.ErrConstraintTrigger:
		return fmt.Errorf("%w: %v", ErrFormatMismatch, err)
	}
	return err
}
