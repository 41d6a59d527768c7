package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/heinwithsmile/social-media-platform-backend-api/internal/config"
	_ "github.com/lib/pq" // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3"
)

var (
	ErrNotFound   = errors.New("record not found")
	ErrEmailTaken = errors.New("email already taken")
)

// Store handles all database operations
type Store struct {
	db     *sql.DB
	dbType string
}

// Open connects to the configured database, applies migrations and returns
// a ready Store.
func Open(cfg *config.Config) (*Store, error) {
	var db *sql.DB
	var err error

	switch cfg.Database.Type {
	case "postgres":
		db, err = openPostgres(cfg)
	case "sqlite", "":
		db, err = openSQLite(cfg)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Database.Type)
	}
	if err != nil {
		return nil, err
	}

	s := &Store{db: db, dbType: cfg.Database.Type}
	if s.dbType == "" {
		s.dbType = "sqlite"
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Printf("Database initialized (type=%s)", s.dbType)
	return s, nil
}

func openSQLite(cfg *config.Config) (*sql.DB, error) {
	dataDir := filepath.Dir(cfg.Database.Path)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dsn := cfg.Database.Path + "?_foreign_keys=on"
	if cfg.Database.WALMode {
		dsn += "&_journal_mode=WAL"
	}

	// Retry the open; the database file may live on storage that attaches
	// after the process starts.
	var db *sql.DB
	var lastErr error
	for i := 0; i < cfg.Database.MaxRetries; i++ {
		var err error
		db, err = sql.Open("sqlite3", dsn)
		if err == nil {
			err = db.Ping()
		}
		if err == nil {
			lastErr = nil
			break
		}
		lastErr = err
		log.Printf("Attempt %d/%d failed: %v", i+1, cfg.Database.MaxRetries, err)
		time.Sleep(time.Duration(cfg.Database.RetryDelay) * time.Second)
	}
	if lastErr != nil {
		return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", cfg.Database.MaxRetries, lastErr)
	}

	// SQLite only supports one writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	return db, nil
}

func openPostgres(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.Database.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open PostgreSQL connection: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}
	return db, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// rebind rewrites ? placeholders to $n for PostgreSQL.
func (s *Store) rebind(query string) string {
	if s.dbType != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// insert executes an INSERT and returns the new row id. PostgreSQL has no
// LastInsertId, so the query gets a RETURNING clause there instead.
func (s *Store) insert(query string, args ...interface{}) (int64, error) {
	if s.dbType == "postgres" {
		var id int64
		err := s.db.QueryRow(s.rebind(query)+" RETURNING id", args...).Scan(&id)
		return id, err
	}
	result, err := s.db.Exec(query, args...)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}
