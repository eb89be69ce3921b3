package sqlite

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/calonsog/taskapi/internal/domain"
	"github.com/calonsog/taskapi/internal/repository/sqlite/migrations"
)

// DB bundles the sqlite connection with its repositories and implements
// domain.Database.
type DB struct {
	SqlDB *sqlx.DB

	users  *UserRepository
	tokens *TokenRepository
	tasks  *TaskRepository
}

// New opens a SQLite database at the given path and configures it for use.
// It enables WAL mode and foreign keys.
func New(dbPath string) (*DB, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	// Enable foreign key enforcement.
	if _, err := db.ExecContext(context.Background(), "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	// Set a reasonable connection pool for SQLite.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &DB{
		SqlDB:  db,
		users:  &UserRepository{db: db},
		tokens: &TokenRepository{db: db},
		tasks:  &TaskRepository{db: db},
	}, nil
}

// Migrate applies any unapplied schema migrations.
func (d *DB) Migrate(ctx context.Context) error {
	return migrations.Run(ctx, d.SqlDB.DB)
}

// Close closes the underlying connection.
func (d *DB) Close() error {
	return d.SqlDB.Close()
}

// Users returns the user repository.
func (d *DB) Users() domain.UserRepository { return d.users }

// Tokens returns the session token repository.
func (d *DB) Tokens() domain.TokenRepository { return d.tokens }

// Tasks returns the task repository.
func (d *DB) Tasks() domain.TaskRepository { return d.tasks }
