package storage

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// PostgresStore keeps the seen-title keys in a single table. Useful when the
// job already has a database nearby; otherwise the gist or file backend does
// the same work with less machinery.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(connectionString string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &PostgresStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return store, nil
}

func (s *PostgresStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS pushed_titles (
		id SERIAL PRIMARY KEY,
		title_key TEXT NOT NULL UNIQUE,
		pushed_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`
	_, err := s.db.Exec(schema)
	return err
}

func (s *PostgresStore) Load() ([]string, error) {
	rows, err := s.db.Query(`SELECT title_key FROM pushed_titles ORDER BY pushed_at, id`)
	if err != nil {
		return nil, fmt.Errorf("query pushed titles: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan pushed title: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

func (s *PostgresStore) Save(keys []string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM pushed_titles`); err != nil {
		return fmt.Errorf("clear pushed titles: %w", err)
	}
	for _, key := range CapKeys(keys) {
		if _, err := tx.Exec(
			`INSERT INTO pushed_titles (title_key) VALUES ($1) ON CONFLICT (title_key) DO NOTHING`, key,
		); err != nil {
			return fmt.Errorf("insert pushed title: %w", err)
		}
	}
	return tx.Commit()
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
