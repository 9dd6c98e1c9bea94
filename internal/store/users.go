// Package store persists user records keyed by Spotify id.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/viberx/viberx/internal/db"
)

// ErrUserNotFound is returned when no user exists for the given id.
var ErrUserNotFound = errors.New("user not found")

// User is the durable user record. ID equals the Spotify user id and never
// changes; the subsystem never deletes rows.
type User struct {
	ID           string    `json:"id"`
	SpotifyID    string    `json:"spotifyId"`
	DisplayName  string    `json:"displayName"`
	ProfileImage string    `json:"profileImage"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	LastLoginAt  time.Time `json:"lastLoginAt"`
}

// Preferences holds per-user dashboard settings, created with defaults on
// first login.
type Preferences struct {
	ID           string `json:"id"`
	UserID       string `json:"userId"`
	Optimization string `json:"optimization"`
	BPMWeight    int    `json:"bpmWeight"`
	KeyWeight    int    `json:"keyWeight"`
	EnergyWeight int    `json:"energyWeight"`
	Theme        string `json:"theme"`
	CompactView  bool   `json:"compactView"`
}

// Users is the user store.
type Users struct {
	db *db.DB
}

// NewUsers creates a user store.
func NewUsers(database *db.DB) *Users {
	return &Users{db: database}
}

// Upsert creates or updates the user record for a Spotify profile. The
// update path refreshes display name, profile image and last login; the
// create path also seeds the id and default preferences. The operation is
// idempotent and keyed on the immutable Spotify id, so concurrent logins
// from the same user are safe.
func (u *Users) Upsert(spotifyID, displayName, profileImage string) error {
	now := time.Now().UTC().Format(time.RFC3339)

	res, err := u.db.Exec(`
		UPDATE users
		SET display_name = ?, profile_image = ?, last_login_at = ?, updated_at = ?
		WHERE id = ?`,
		displayName, profileImage, now, now, spotifyID)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows > 0 {
		return nil
	}

	if _, err := u.db.Exec(`
		INSERT INTO users (id, spotify_id, display_name, profile_image, created_at, updated_at, last_login_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		spotifyID, spotifyID, displayName, profileImage, now, now, now); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	if _, err := u.db.Exec(`
		INSERT INTO user_preferences (id, user_id) VALUES (?, ?)`,
		uuid.NewString(), spotifyID); err != nil {
		return fmt.Errorf("failed to seed preferences: %w", err)
	}

	return nil
}

// Get returns the user for the given id.
func (u *Users) Get(id string) (*User, error) {
	var user User
	var createdAt, updatedAt, lastLoginAt string
	var displayName, profileImage sql.NullString

	err := u.db.QueryRow(`
		SELECT id, spotify_id, display_name, profile_image, created_at, updated_at, last_login_at
		FROM users WHERE id = ?`, id).
		Scan(&user.ID, &user.SpotifyID, &displayName, &profileImage, &createdAt, &updatedAt, &lastLoginAt)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	user.DisplayName = displayName.String
	user.ProfileImage = profileImage.String
	user.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	user.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	user.LastLoginAt, _ = time.Parse(time.RFC3339, lastLoginAt)

	return &user, nil
}

// GetPreferences returns the preferences row for a user.
func (u *Users) GetPreferences(userID string) (*Preferences, error) {
	var p Preferences
	var compact int

	err := u.db.QueryRow(`
		SELECT id, user_id, optimization, bpm_weight, key_weight, energy_weight, theme, compact_view
		FROM user_preferences WHERE user_id = ?`, userID).
		Scan(&p.ID, &p.UserID, &p.Optimization, &p.BPMWeight, &p.KeyWeight, &p.EnergyWeight, &p.Theme, &compact)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	p.CompactView = compact != 0
	return &p, nil
}
