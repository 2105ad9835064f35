package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/thesavant42/adminboard/internal/models"
)

const timeLayout = time.RFC3339Nano

// Session event kinds
const (
	EventLogin   = "login"
	EventLogout  = "logout"
	EventExpired = "expired"
)

// SessionEvent is one entry of the login history
type SessionEvent struct {
	Kind       string
	Username   string
	OccurredAt time.Time
}

// SaveSession stores s as the current session, replacing any previous one
func (db *DB) SaveSession(s models.Session) error {
	// Tokens live in their own columns.
	user := s.User
	user.Token, user.AccessToken, user.RefreshToken = "", "", ""
	profile, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}

	var expires sql.NullString
	if !s.ExpiresAt.IsZero() {
		expires = sql.NullString{String: s.ExpiresAt.UTC().Format(timeLayout), Valid: true}
	}

	_, err = db.conn.Exec(upsertSession,
		s.User.ID,
		s.User.Username,
		string(profile),
		s.Token,
		s.User.RefreshToken,
		s.CreatedAt.UTC().Format(timeLayout),
		expires,
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// LoadSession returns the stored session, or nil if there is none
func (db *DB) LoadSession() (*models.Session, error) {
	var profile, token, refresh, created, expires string
	err := db.conn.QueryRow(selectSession).Scan(&profile, &token, &refresh, &created, &expires)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var s models.Session
	if err := json.Unmarshal([]byte(profile), &s.User); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	s.Token = token
	s.User.AccessToken = token
	if refresh != "" {
		s.User.RefreshToken = refresh
	}

	s.CreatedAt, err = time.Parse(timeLayout, created)
	if err != nil {
		return nil, fmt.Errorf("failed to parse session created_at: %w", err)
	}
	if expires != "" {
		s.ExpiresAt, err = time.Parse(timeLayout, expires)
		if err != nil {
			return nil, fmt.Errorf("failed to parse session expires_at: %w", err)
		}
	}
	return &s, nil
}

// DeleteSession removes the stored session. Deleting nothing is not an error.
func (db *DB) DeleteSession() error {
	if _, err := db.conn.Exec(deleteSession); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// RecordSessionEvent appends to the login history
func (db *DB) RecordSessionEvent(kind, username string, at time.Time) error {
	if _, err := db.conn.Exec(insertSessionEvent, kind, username, at.UTC().Format(timeLayout)); err != nil {
		return fmt.Errorf("failed to record session event: %w", err)
	}
	return nil
}

// RecentSessionEvents returns up to limit history entries, newest first
func (db *DB) RecentSessionEvents(limit int) ([]SessionEvent, error) {
	rows, err := db.conn.Query(selectRecentSessionEvents, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query session events: %w", err)
	}
	defer rows.Close()

	var events []SessionEvent
	for rows.Next() {
		var e SessionEvent
		var at string
		if err := rows.Scan(&e.Kind, &e.Username, &at); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		e.OccurredAt, err = time.Parse(timeLayout, at)
		if err != nil {
			return nil, fmt.Errorf("failed to parse event time: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read session events: %w", err)
	}
	return events, nil
}
