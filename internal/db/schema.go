package db

// The session table holds at most one row (id = 1): the signed-in operator.
const createSessionTable = `
CREATE TABLE IF NOT EXISTS session (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    user_id INTEGER NOT NULL,
    username TEXT NOT NULL,
    profile TEXT NOT NULL,
    token TEXT NOT NULL,
    refresh_token TEXT,
    created_at TEXT NOT NULL,
    expires_at TEXT
);
`

const createSessionEventsTable = `
CREATE TABLE IF NOT EXISTS session_events (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    kind TEXT NOT NULL,
    username TEXT NOT NULL,
    occurred_at TEXT NOT NULL
);
`

const upsertSession = `
INSERT OR REPLACE INTO session (
    id, user_id, username, profile, token, refresh_token, created_at, expires_at
) VALUES (1, ?, ?, ?, ?, ?, ?, ?)
`

const selectSession = `
SELECT profile, token, COALESCE(refresh_token, ''), created_at, COALESCE(expires_at, '')
FROM session
WHERE id = 1
`

const deleteSession = `DELETE FROM session WHERE id = 1`

const insertSessionEvent = `
INSERT INTO session_events (kind, username, occurred_at) VALUES (?, ?, ?)
`

const selectRecentSessionEvents = `
SELECT kind, username, occurred_at
FROM session_events
ORDER BY id DESC
LIMIT ?
`
