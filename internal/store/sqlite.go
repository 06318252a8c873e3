package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	maxOpenConns    = 25
	maxIdleConns    = 5
	connMaxLifetime = 5 * time.Minute
	pingTimeout     = 5 * time.Second
)

// sqliteStore is the structured backend, a GORM connection over SQLite.
type sqliteStore struct {
	db        *gorm.DB
	songs     *sqliteSongs
	playlists *sqlitePlaylists
	settings  *sqliteSettings
}

// OpenSQLite opens the structured backend and applies migrations.
// dbPath should be the path to the SQLite database file, e.g.
// "./data/strum.db". An empty migrationsPath skips migrations.
func OpenSQLite(dbPath, migrationsPath string) (Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// Configure SQLite with foreign keys and WAL mode
	dsn := fmt.Sprintf("%s?_foreign_keys=on&_journal_mode=WAL", dbPath)

	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		// Disable default transaction for better performance
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if migrationsPath != "" {
		if err := RunMigrations(sqlDB, migrationsPath); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	s := &sqliteStore{db: gormDB}
	s.songs = &sqliteSongs{db: gormDB}
	s.playlists = &sqlitePlaylists{db: gormDB}
	s.settings = &sqliteSettings{db: gormDB}
	return s, nil
}

func (s *sqliteStore) Songs() SongStore         { return s.songs }
func (s *sqliteStore) Playlists() PlaylistStore { return s.playlists }
func (s *sqliteStore) Settings() SettingStore   { return s.settings }

func (s *sqliteStore) Backend() string { return BackendSQLite }

// Health checks database connectivity
func (s *sqliteStore) Health(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}
