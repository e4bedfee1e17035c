package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS todos (
	id           TEXT PRIMARY KEY,
	title        TEXT NOT NULL,
	description  TEXT NOT NULL DEFAULT '',
	status       TEXT NOT NULL DEFAULT 'open' CHECK(status IN ('open', 'in_progress', 'complete')),
	category     TEXT NOT NULL DEFAULT '',
	due_date     DATETIME,
	created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	completed_at DATETIME,
	updated_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_todos_status ON todos(status);
CREATE INDEX IF NOT EXISTS idx_todos_due_date ON todos(due_date);
CREATE INDEX IF NOT EXISTS idx_todos_updated_at ON todos(updated_at);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
ALTER TABLE todos ADD COLUMN reminder_enabled INTEGER NOT NULL DEFAULT 0 CHECK(reminder_enabled IN (0, 1));
ALTER TABLE todos ADD COLUMN reminder_at DATETIME;
ALTER TABLE todos ADD COLUMN reminder_relative INTEGER NOT NULL DEFAULT 0 CHECK(reminder_relative IN (0, 1));
ALTER TABLE todos ADD COLUMN notification_id TEXT NOT NULL DEFAULT '';

CREATE TABLE IF NOT EXISTS scheduled_notifications (
	id         TEXT PRIMARY KEY,
	channel_id TEXT NOT NULL DEFAULT '',
	title      TEXT NOT NULL,
	body       TEXT NOT NULL DEFAULT '',
	data       TEXT NOT NULL DEFAULT '{}',
	sound      INTEGER NOT NULL DEFAULT 0 CHECK(sound IN (0, 1)),
	fire_at    DATETIME NOT NULL,
	immediate  INTEGER NOT NULL DEFAULT 0 CHECK(immediate IN (0, 1)),
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_scheduled_notifications_fire_at ON scheduled_notifications(fire_at);

CREATE TABLE IF NOT EXISTS notification_channels (
	id           TEXT PRIMARY KEY,
	name         TEXT NOT NULL,
	description  TEXT NOT NULL DEFAULT '',
	importance   TEXT NOT NULL CHECK(importance IN ('high', 'default')),
	sound        INTEGER NOT NULL DEFAULT 0 CHECK(sound IN (0, 1)),
	vibration_ms TEXT NOT NULL DEFAULT '',
	light_color  TEXT NOT NULL DEFAULT '',
	updated_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS settings (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}
