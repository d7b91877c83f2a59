package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS categorized_events (
    id                   INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id              TEXT NOT NULL DEFAULT '',
    session_id           TEXT NOT NULL DEFAULT '',
    timestamp            TEXT NOT NULL,
    app                  TEXT NOT NULL,
    title                TEXT NOT NULL,
    category             TEXT NOT NULL
                         CHECK (category IN ('meeting', 'work_related', 'distraction', 'browser', 'other')),
    duration_seconds     INTEGER NOT NULL,
    created_at           TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_events_session ON categorized_events(session_id);
CREATE INDEX IF NOT EXISTS idx_events_timestamp ON categorized_events(timestamp);
`
