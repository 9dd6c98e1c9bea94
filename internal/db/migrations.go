// internal/db/migrations.go
package db

import "fmt"

// users is keyed by the Spotify user id. The row is created on first login
// and refreshed on every subsequent login.
const userSchema = `
CREATE TABLE IF NOT EXISTS users (
    id             TEXT PRIMARY KEY,
    spotify_id     TEXT UNIQUE NOT NULL,
    display_name   TEXT,
    profile_image  TEXT,
    created_at     TEXT DEFAULT (datetime('now')),
    updated_at     TEXT DEFAULT (datetime('now')),
    last_login_at  TEXT DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_users_spotify_id ON users(spotify_id);

CREATE TABLE IF NOT EXISTS user_preferences (
    id              TEXT PRIMARY KEY,
    user_id         TEXT UNIQUE NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    optimization    TEXT DEFAULT 'auto',
    bpm_weight      INTEGER DEFAULT 40,
    key_weight      INTEGER DEFAULT 35,
    energy_weight   INTEGER DEFAULT 25,
    theme           TEXT DEFAULT 'dark',
    compact_view    INTEGER DEFAULT 0,
    created_at      TEXT DEFAULT (datetime('now')),
    updated_at      TEXT DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_user_preferences_user_id ON user_preferences(user_id);
`

// RunMigrations applies the schema. Statements are idempotent so this is
// safe to run on every startup.
func (db *DB) RunMigrations() error {
	if _, err := db.Exec(userSchema); err != nil {
		return fmt.Errorf("failed to apply user schema: %w", err)
	}
	return nil
}
