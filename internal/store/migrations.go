package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// latestVersion is the schema version a writable store migrates to.
var latestVersion = migrations[len(migrations)-1].version

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS categories (
	id           TEXT PRIMARY KEY,
	name         TEXT NOT NULL,
	color_hex    TEXT NOT NULL DEFAULT '#007AFF',
	date_created DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS tasks (
	id            TEXT PRIMARY KEY,
	title         TEXT NOT NULL,
	description   TEXT NOT NULL DEFAULT '',
	due_date      DATETIME,
	priority      TEXT NOT NULL DEFAULT 'medium' CHECK(priority IN ('low', 'medium', 'high')),
	is_completed  INTEGER NOT NULL DEFAULT 0 CHECK(is_completed IN (0, 1)),
	category_id   TEXT REFERENCES categories(id) ON DELETE SET NULL,
	date_created  DATETIME NOT NULL,
	date_modified DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS notes (
	id            TEXT PRIMARY KEY,
	content       TEXT NOT NULL,
	date_created  DATETIME NOT NULL,
	date_modified DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_tasks_is_completed ON tasks(is_completed);
CREATE INDEX IF NOT EXISTS idx_tasks_priority ON tasks(priority);
CREATE INDEX IF NOT EXISTS idx_tasks_due_date ON tasks(due_date);
CREATE INDEX IF NOT EXISTS idx_tasks_category_id ON tasks(category_id);
CREATE INDEX IF NOT EXISTS idx_notes_date_modified ON notes(date_modified);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
ALTER TABLE tasks ADD COLUMN reminder_type TEXT NOT NULL DEFAULT 'none';
ALTER TABLE tasks ADD COLUMN custom_reminder_offset INTEGER NOT NULL DEFAULT 0;

CREATE INDEX IF NOT EXISTS idx_tasks_completed_due
	ON tasks(is_completed, due_date);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
	{
		version: 3,
		sql: `
CREATE TABLE IF NOT EXISTS notifications (
	id         TEXT PRIMARY KEY,
	task_id    TEXT NOT NULL,
	title      TEXT NOT NULL,
	body       TEXT NOT NULL DEFAULT '',
	fire_at    DATETIME NOT NULL,
	delivered  INTEGER NOT NULL DEFAULT 0 CHECK(delivered IN (0, 1)),
	created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_notifications_pending ON notifications(delivered, fire_at);
CREATE INDEX IF NOT EXISTS idx_notifications_task_id ON notifications(task_id);

CREATE TABLE IF NOT EXISTS settings (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

INSERT INTO schema_version (version) VALUES (3);
`,
	},
}
