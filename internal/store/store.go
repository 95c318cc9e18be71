// Package store persists the interaction transcript: every question, the
// resolution it produced and the reply that went out. The transcript feeds
// session history in the chat frontend and offline evaluation of the
// extraction loop.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// DefaultDBPath is the default database location.
const DefaultDBPath = "~/.sellerchat/sellerchat.db"

// Interaction is one resolved question and its reply.
type Interaction struct {
	ID        int64
	RequestID string
	SessionID string

	Message         string
	InteractionType string

	Category   string
	DateStart  string
	DateEnd    string
	CompStart  string
	CompEnd    string
	ASIN       string
	Outcome    string
	IsValid    bool
	RetryCount int
	Feedback   string

	ResponseText string
	CreatedAt    time.Time
}

// ListOpts controls pagination for transcript queries.
type ListOpts struct {
	Limit  int
	Offset int
}

// Stats holds observability counts about the transcript.
type Stats struct {
	InteractionCount int64
	SessionCount     int64
	ForcedCount      int64
	DBSizeBytes      int64
}

// Store is the transcript storage interface.
type Store interface {
	AddInteraction(ctx context.Context, in *Interaction) (int64, error)
	GetInteraction(ctx context.Context, id int64) (*Interaction, error)
	ListSession(ctx context.Context, sessionID string, opts ListOpts) ([]*Interaction, error)
	Stats(ctx context.Context) (Stats, error)
	Close() error
}

// SQLiteStore implements Store on a single SQLite file.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewStore opens (and if necessary creates) the transcript database.
// Pass ":memory:" for in-memory databases (testing).
func NewStore(dbPath string) (Store, error) {
	if dbPath == "" {
		dbPath = expandPath(DefaultDBPath)
	}

	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting pragma %q: %w", p, err)
		}
	}

	s := &SQLiteStore{db: db, dbPath: dbPath}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS interactions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			request_id TEXT NOT NULL,
			session_id TEXT NOT NULL,
			message TEXT NOT NULL DEFAULT '',
			interaction_type TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL,
			date_start TEXT NOT NULL,
			date_end TEXT NOT NULL,
			comp_start TEXT NOT NULL DEFAULT '',
			comp_end TEXT NOT NULL DEFAULT '',
			asin TEXT NOT NULL DEFAULT '',
			outcome TEXT NOT NULL,
			is_valid INTEGER NOT NULL DEFAULT 1,
			retry_count INTEGER NOT NULL DEFAULT 0,
			feedback TEXT NOT NULL DEFAULT '',
			response_text TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL DEFAULT (datetime('now'))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_interactions_session ON interactions(session_id, id)`,
		`CREATE INDEX IF NOT EXISTS idx_interactions_outcome ON interactions(outcome)`,
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
		`INSERT OR IGNORE INTO meta (key, value) VALUES ('schema_version', '1')`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// AddInteraction appends to the transcript and returns the new row id.
func (s *SQLiteStore) AddInteraction(ctx context.Context, in *Interaction) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO interactions (
			request_id, session_id, message, interaction_type,
			category, date_start, date_end, comp_start, comp_end,
			asin, outcome, is_valid, retry_count, feedback, response_text
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.RequestID, in.SessionID, in.Message, in.InteractionType,
		in.Category, in.DateStart, in.DateEnd, in.CompStart, in.CompEnd,
		in.ASIN, in.Outcome, boolToInt(in.IsValid), in.RetryCount, in.Feedback, in.ResponseText,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting interaction: %w", err)
	}
	return res.LastInsertId()
}

// GetInteraction fetches one transcript row.
func (s *SQLiteStore) GetInteraction(ctx context.Context, id int64) (*Interaction, error) {
	row := s.db.QueryRowContext(ctx, selectCols+` WHERE id = ?`, id)
	in, err := scanInteraction(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("interaction %d not found", id)
	}
	return in, err
}

// ListSession returns a session's transcript, oldest first.
func (s *SQLiteStore) ListSession(ctx context.Context, sessionID string, opts ListOpts) ([]*Interaction, error) {
	if opts.Limit <= 0 {
		opts.Limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		selectCols+` WHERE session_id = ? ORDER BY id ASC LIMIT ? OFFSET ?`,
		sessionID, opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("listing session: %w", err)
	}
	defer rows.Close()

	var out []*Interaction
	for rows.Next() {
		in, err := scanInteraction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	return out, rows.Err()
}

// Stats reports transcript counts.
func (s *SQLiteStore) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM interactions`).Scan(&st.InteractionCount); err != nil {
		return st, err
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT session_id) FROM interactions`).Scan(&st.SessionCount); err != nil {
		return st, err
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM interactions WHERE outcome = 'forced_accept'`).Scan(&st.ForcedCount); err != nil {
		return st, err
	}
	var pageCount, pageSize int64
	s.db.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount)
	s.db.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize)
	st.DBSizeBytes = pageCount * pageSize
	return st, nil
}

const selectCols = `SELECT id, request_id, session_id, message, interaction_type,
	category, date_start, date_end, comp_start, comp_end,
	asin, outcome, is_valid, retry_count, feedback, response_text, created_at
	FROM interactions`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInteraction(row rowScanner) (*Interaction, error) {
	var in Interaction
	var isValid int
	var createdAt string
	err := row.Scan(
		&in.ID, &in.RequestID, &in.SessionID, &in.Message, &in.InteractionType,
		&in.Category, &in.DateStart, &in.DateEnd, &in.CompStart, &in.CompEnd,
		&in.ASIN, &in.Outcome, &isValid, &in.RetryCount, &in.Feedback, &in.ResponseText, &createdAt,
	)
	if err != nil {
		return nil, err
	}
	in.IsValid = isValid != 0
	if t, err := time.Parse("2006-01-02 15:04:05", createdAt); err == nil {
		in.CreatedAt = t
	}
	return &in, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// expandPath expands ~ to home directory.
func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[1:])
	}
	return path
}
