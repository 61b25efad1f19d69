package sqlite

const schema = `
CREATE TABLE IF NOT EXISTS profiles (
	user_id TEXT PRIMARY KEY,
	day_end_local TEXT NOT NULL DEFAULT '21:30',
	streak_count INTEGER NOT NULL DEFAULT 0,
	shields_remaining INTEGER NOT NULL DEFAULT 2,
	last_shield_reset DATETIME,
	settings TEXT NOT NULL DEFAULT '{}'
);

CREATE TABLE IF NOT EXISTS missions (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	category TEXT NOT NULL,
	difficulty TEXT NOT NULL,
	duration_minutes INTEGER NOT NULL,
	reward INTEGER NOT NULL,
	meta TEXT NOT NULL DEFAULT '{}',
	system_generated INTEGER NOT NULL DEFAULT 1,
	date TEXT NOT NULL,
	created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS assignments (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	mission_id TEXT NOT NULL REFERENCES missions(id),
	date TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'pending',
	completed_at DATETIME,
	proof TEXT,
	used_streak_shield INTEGER NOT NULL DEFAULT 0,
	plan_run_id TEXT,
	created_at DATETIME NOT NULL,
	UNIQUE(user_id, mission_id)
);

CREATE INDEX IF NOT EXISTS idx_assignments_user_date
	ON assignments(user_id, date, status);

CREATE TABLE IF NOT EXISTS plan_runs (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	date TEXT NOT NULL,
	version INTEGER NOT NULL,
	source TEXT NOT NULL,
	kind TEXT NOT NULL,
	status TEXT NOT NULL,
	meta TEXT NOT NULL DEFAULT '{}',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	UNIQUE(user_id, date, kind, version)
);

CREATE INDEX IF NOT EXISTS idx_plan_runs_user_date
	ON plan_runs(user_id, date, kind, status);

CREATE TABLE IF NOT EXISTS rewards (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	category TEXT NOT NULL,
	amount INTEGER NOT NULL,
	assignment_id TEXT,
	date TEXT NOT NULL,
	created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_rewards_user_date
	ON rewards(user_id, date, category);

CREATE TABLE IF NOT EXISTS audit_events (
	id TEXT PRIMARY KEY,
	type TEXT NOT NULL,
	timestamp DATETIME NOT NULL,
	user_id TEXT NOT NULL,
	date TEXT,
	plan_run_id TEXT,
	assignment_id TEXT,
	message TEXT,
	data TEXT
);

CREATE INDEX IF NOT EXISTS idx_audit_events_user
	ON audit_events(user_id, timestamp);
`
