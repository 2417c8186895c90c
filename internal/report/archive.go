package report

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Archive stores finished-session reports in SQLite so they survive
// redis expiry and remain queryable after the session ends.
type Archive struct {
	db *sql.DB
	mu sync.Mutex // serializes writes to avoid SQLITE_BUSY
}

func NewArchive(dbPath string) (*Archive, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// WAL mode for concurrent readers.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	a := &Archive{db: db}
	if err := a.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return a, nil
}

func (a *Archive) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS reports (
		session_id TEXT PRIMARY KEY,
		scam_detected INTEGER NOT NULL,
		scam_type TEXT NOT NULL,
		messages INTEGER NOT NULL,
		report_json TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_reports_created ON reports(created_at);
	`
	if _, err := a.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Save upserts the report for a session.
func (a *Archive) Save(ctx context.Context, r Report) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode report %s: %w", r.SessionID, err)
	}

	query := `
	INSERT INTO reports (session_id, scam_detected, scam_type, messages, report_json, created_at)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(session_id) DO UPDATE SET
		scam_detected = excluded.scam_detected,
		scam_type = excluded.scam_type,
		messages = excluded.messages,
		report_json = excluded.report_json`

	scamDetected := 0
	if r.ScamDetected {
		scamDetected = 1
	}
	_, err = a.db.ExecContext(ctx, query,
		r.SessionID, scamDetected, r.ScamType,
		r.TotalMessagesExchanged, string(data), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("upsert report %s: %w", r.SessionID, err)
	}
	return nil
}

// Get returns the archived report for a session, or nil when absent.
func (a *Archive) Get(ctx context.Context, sessionID string) (*Report, error) {
	row := a.db.QueryRowContext(ctx,
		`SELECT report_json FROM reports WHERE session_id = ?`, sessionID)

	var raw string
	err := row.Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan report row: %w", err)
	}

	var r Report
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return nil, fmt.Errorf("decode report %s: %w", sessionID, err)
	}
	return &r, nil
}

func (a *Archive) Close() error {
	if err := a.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
