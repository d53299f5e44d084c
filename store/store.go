// Package store persists the document registry and parsed content blocks
// in a SQLite database: which filename belongs to which CIS, which CIS
// codes are authorized, the CIS to ATC mapping, and the block trees
// produced by the parser.
package store

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store wraps the SQLite database for all registry persistence.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database at the given path and
// initialises the schema.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// LoadSpecDocs replaces the filename to CIS mapping from a CSV export
// with a header row and columns filename,cis. Returns the number of
// rows loaded.
func (s *Store) LoadSpecDocs(ctx context.Context, r io.Reader) (int, error) {
	return s.loadCSV(ctx, r, "spec_doc",
		"INSERT OR REPLACE INTO spec_doc (filename, cis) VALUES (?, ?)",
		func(record []string) []any {
			return []any{filepath.Base(strings.TrimSpace(record[0])), strings.TrimSpace(record[1])}
		})
}

// LoadSpecialites replaces the authorized specialites from a CSV export
// with a header row and columns cis,is_bdm. The flag column accepts
// "1" or "oui" (case-insensitive) as true.
func (s *Store) LoadSpecialites(ctx context.Context, r io.Reader) (int, error) {
	return s.loadCSV(ctx, r, "specialite",
		"INSERT OR REPLACE INTO specialite (cis, is_bdm) VALUES (?, ?)",
		func(record []string) []any {
			flag := 0
			v := strings.ToLower(strings.TrimSpace(record[1]))
			if v == "1" || v == "oui" {
				flag = 1
			}
			return []any{strings.TrimSpace(record[0]), flag}
		})
}

// LoadCISATC replaces the CIS to ATC mapping from a CSV export with a
// header row and columns cis,atc.
func (s *Store) LoadCISATC(ctx context.Context, r io.Reader) (int, error) {
	return s.loadCSV(ctx, r, "cis_atc",
		"INSERT OR REPLACE INTO cis_atc (cis, atc) VALUES (?, ?)",
		func(record []string) []any {
			return []any{strings.TrimSpace(record[0]), strings.TrimSpace(record[1])}
		})
}

// loadCSV streams a two-column CSV (header skipped) into the given
// table inside a single transaction. Short rows are skipped.
func (s *Store) loadCSV(ctx context.Context, r io.Reader, table, insert string, params func([]string) []any) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	if _, err := reader.Read(); err != nil {
		if err == io.EOF {
			return 0, fmt.Errorf("empty CSV for table %s", table)
		}
		return 0, fmt.Errorf("failed to read CSV header: %w", err)
	}

	count := 0
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, insert)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for {
			record, err := reader.Read()
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to read CSV record: %w", err)
			}
			if len(record) < 2 {
				continue
			}
			if _, err := stmt.ExecContext(ctx, params(record)...); err != nil {
				return err
			}
			count++
		}
	})
	if err != nil {
		return 0, fmt.Errorf("failed to load %s: %w", table, err)
	}
	return count, nil
}

// FilenameToCIS returns the document filename to CIS mapping, keyed by
// base filename.
func (s *Store) FilenameToCIS(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT filename, cis FROM spec_doc")
	if err != nil {
		return nil, fmt.Errorf("failed to query spec_doc: %w", err)
	}
	defer rows.Close()

	mapping := make(map[string]string)
	for rows.Next() {
		var filename, cis string
		if err := rows.Scan(&filename, &cis); err != nil {
			return nil, err
		}
		mapping[filepath.Base(filename)] = cis
	}
	return mapping, rows.Err()
}

// AuthorizedCIS returns the set of CIS codes flagged is_bdm.
func (s *Store) AuthorizedCIS(ctx context.Context) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT cis FROM specialite WHERE is_bdm = 1")
	if err != nil {
		return nil, fmt.Errorf("failed to query specialite: %w", err)
	}
	defer rows.Close()

	authorized := make(map[string]bool)
	for rows.Next() {
		var cis string
		if err := rows.Scan(&cis); err != nil {
			return nil, err
		}
		authorized[cis] = true
	}
	return authorized, rows.Err()
}

// ATCByCIS returns the CIS to ATC code mapping.
func (s *Store) ATCByCIS(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT cis, atc FROM cis_atc")
	if err != nil {
		return nil, fmt.Errorf("failed to query cis_atc: %w", err)
	}
	defer rows.Close()

	mapping := make(map[string]string)
	for rows.Next() {
		var cis, atc string
		if err := rows.Scan(&cis, &atc); err != nil {
			return nil, err
		}
		mapping[cis] = atc
	}
	return mapping, rows.Err()
}
