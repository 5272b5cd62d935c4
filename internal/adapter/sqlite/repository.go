package sqlite

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	"github.com/meryload/loadbot/internal/domain"
	_ "modernc.org/sqlite"
)

// search_cache is kept for compatibility with databases created by older
// bot versions; nothing writes it.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id    INTEGER UNIQUE,
    first_name TEXT,
    last_name  TEXT,
    chat_id    INTEGER
);
CREATE TABLE IF NOT EXISTS search_cache (
    query     TEXT PRIMARY KEY,
    results   TEXT,
    timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
);
`

// Repository implements domain.UserRepository using SQLite.
type Repository struct {
	db *sql.DB
}

// New creates a new SQLite repository, initializing the schema if needed.
func New(dbPath string) (*Repository, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	// Initialize schema
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	return &Repository{db: db}, nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// EnsureUser inserts the user if the user_id is not yet known and reports
// whether a new row was created.
func (r *Repository) EnsureUser(ctx context.Context, u domain.User) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO users (user_id, first_name, last_name, chat_id)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(user_id) DO NOTHING`,
		u.UserID, u.FirstName, u.LastName, u.ChatID,
	)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// CountUsers returns the number of registered users.
func (r *Repository) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}
