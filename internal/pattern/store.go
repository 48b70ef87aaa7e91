// Package pattern implements the embedding-based pattern engine: a small
// corpus of reference snippets indexed into SQLite and ranked by cosine
// similarity at query time.
package pattern

import (
	"bytes"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ostrander/smithy/internal/models"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS patterns (
	name        TEXT PRIMARY KEY,
	label       TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	category    TEXT NOT NULL DEFAULT 'custom',
	platform    TEXT NOT NULL DEFAULT 'flowise',
	version     TEXT NOT NULL DEFAULT '1.0',
	source      TEXT NOT NULL DEFAULT '',
	source_hash TEXT NOT NULL DEFAULT '',
	embedding   BLOB,
	position    INTEGER NOT NULL
);
`

// Store persists pattern documents and their embedding vectors.
type Store struct {
	conn *sql.DB
}

// OpenStore opens (or creates) the SQLite pattern store and applies the schema.
func OpenStore(dsn string) (*Store, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("pattern: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("pattern: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("pattern: apply schema: %w", err)
	}
	return &Store{conn: conn}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Replace swaps the entire document set in one transaction, so a search
// after Replace reflects exactly the given documents.
func (s *Store) Replace(docs []models.PatternDocument) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("pattern: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM patterns`); err != nil {
		return fmt.Errorf("pattern: clear: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO patterns
		(name, label, description, category, platform, version, source, source_hash, embedding, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("pattern: prepare: %w", err)
	}
	defer stmt.Close()

	for _, d := range docs {
		if _, err := stmt.Exec(d.Name, d.Label, d.Description, d.Category, d.Platform,
			d.Version, d.Source, d.SourceHash, encodeVector(d.Embedding), d.Position); err != nil {
			return fmt.Errorf("pattern: insert %s: %w", d.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("pattern: commit: %w", err)
	}
	return nil
}

// All returns every stored document ordered by insertion position.
func (s *Store) All() ([]models.PatternDocument, error) {
	rows, err := s.conn.Query(`SELECT name, label, description, category, platform,
		version, source, source_hash, embedding, position
		FROM patterns ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("pattern: query: %w", err)
	}
	defer rows.Close()

	var out []models.PatternDocument
	for rows.Next() {
		var d models.PatternDocument
		var blob []byte
		if err := rows.Scan(&d.Name, &d.Label, &d.Description, &d.Category, &d.Platform,
			&d.Version, &d.Source, &d.SourceHash, &blob, &d.Position); err != nil {
			return nil, fmt.Errorf("pattern: scan: %w", err)
		}
		d.Embedding = decodeVector(blob)
		out = append(out, d)
	}
	return out, rows.Err()
}

// GetByName returns a single document, or sql.ErrNoRows wrapped by the caller.
func (s *Store) GetByName(name string) (*models.PatternDocument, error) {
	row := s.conn.QueryRow(`SELECT name, label, description, category, platform,
		version, source, source_hash, embedding, position
		FROM patterns WHERE name = ?`, name)

	var d models.PatternDocument
	var blob []byte
	if err := row.Scan(&d.Name, &d.Label, &d.Description, &d.Category, &d.Platform,
		&d.Version, &d.Source, &d.SourceHash, &blob, &d.Position); err != nil {
		return nil, err
	}
	d.Embedding = decodeVector(blob)
	return &d, nil
}

// Count returns the number of stored documents.
func (s *Store) Count() (int, error) {
	var n int
	if err := s.conn.QueryRow(`SELECT COUNT(*) FROM patterns`).Scan(&n); err != nil {
		return 0, fmt.Errorf("pattern: count: %w", err)
	}
	return n, nil
}

// encodeVector packs a float32 slice as a little-endian blob.
func encodeVector(vec []float32) []byte {
	if len(vec) == 0 {
		return nil
	}
	buf := bytes.NewBuffer(make([]byte, 0, len(vec)*4))
	for _, v := range vec {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], math.Float32bits(v))
		buf.Write(b[:])
	}
	return buf.Bytes()
}

// decodeVector unpacks a little-endian blob into a float32 slice.
func decodeVector(blob []byte) []float32 {
	if len(blob) == 0 || len(blob)%4 != 0 {
		return nil
	}
	vec := make([]float32, len(blob)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}
	return vec
}
