package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Repository holds the followed games and the alert-hour set. Both survive
// process restarts. Duplicate adds and missing removes are reported as a
// false result, not an error, so callers can pick the right reply.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new repository with SQLite
func NewRepository(dbPath string) (*Repository, error) {
	// Ensure directory exists
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	repo := &Repository{db: db}

	// Run migrations
	if err := repo.migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return repo, nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}

// migrate creates the database schema
func (r *Repository) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS subscriptions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			game_id INTEGER NOT NULL,
			channel_id VARCHAR(20) NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(game_id, channel_id)
		)`,
		`CREATE TABLE IF NOT EXISTS alerts (
			hours INTEGER PRIMARY KEY
		)`,
		`CREATE INDEX IF NOT EXISTS idx_subscriptions_channel ON subscriptions(channel_id)`,
	}

	for _, migration := range migrations {
		if _, err := r.db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}

// Subscription operations

// Follow starts tracking a game for a channel. Returns false if the pair is
// already followed.
func (r *Repository) Follow(gameID int, channelID string) (bool, error) {
	following, err := r.IsFollowing(gameID, channelID)
	if err != nil {
		return false, err
	}
	if following {
		return false, nil
	}

	_, err = r.db.Exec(
		`INSERT INTO subscriptions (game_id, channel_id) VALUES (?, ?)`,
		gameID, channelID,
	)
	if err != nil {
		return false, err
	}
	return true, nil
}

// Unfollow stops tracking a game for a channel. Returns false if the pair
// was not followed.
func (r *Repository) Unfollow(gameID int, channelID string) (bool, error) {
	result, err := r.db.Exec(
		`DELETE FROM subscriptions WHERE game_id = ? AND channel_id = ?`,
		gameID, channelID,
	)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// IsFollowing reports whether a (game, channel) pair is tracked.
func (r *Repository) IsFollowing(gameID int, channelID string) (bool, error) {
	var count int
	err := r.db.QueryRow(
		`SELECT COUNT(*) FROM subscriptions WHERE game_id = ? AND channel_id = ?`,
		gameID, channelID,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Subscriptions returns all tracked (game, channel) pairs in insertion order.
func (r *Repository) Subscriptions() ([]Subscription, error) {
	rows, err := r.db.Query(
		`SELECT id, game_id, channel_id, created_at FROM subscriptions ORDER BY id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []Subscription
	for rows.Next() {
		var sub Subscription
		if err := rows.Scan(&sub.ID, &sub.GameID, &sub.ChannelID, &sub.CreatedAt); err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}

	return subs, rows.Err()
}

// GamesByChannel returns the IDs of the games followed in a channel.
func (r *Repository) GamesByChannel(channelID string) ([]int, error) {
	rows, err := r.db.Query(
		`SELECT game_id FROM subscriptions WHERE channel_id = ? ORDER BY id`,
		channelID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var gameIDs []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		gameIDs = append(gameIDs, id)
	}

	return gameIDs, rows.Err()
}

// Alert operations

// AddAlert starts alerting the given number of hours before each deadline.
// Returns false if the alert already exists.
func (r *Repository) AddAlert(hours int) (bool, error) {
	alerting, err := r.HasAlert(hours)
	if err != nil {
		return false, err
	}
	if alerting {
		return false, nil
	}

	if _, err := r.db.Exec(`INSERT INTO alerts (hours) VALUES (?)`, hours); err != nil {
		return false, err
	}
	return true, nil
}

// RemoveAlert stops alerting the given number of hours before each deadline.
// Returns false if no such alert exists.
func (r *Repository) RemoveAlert(hours int) (bool, error) {
	result, err := r.db.Exec(`DELETE FROM alerts WHERE hours = ?`, hours)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// HasAlert reports whether an alert is configured for the given hours.
func (r *Repository) HasAlert(hours int) (bool, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM alerts WHERE hours = ?`, hours).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Alerts returns all configured alert hours in ascending order.
func (r *Repository) Alerts() ([]int, error) {
	rows, err := r.db.Query(`SELECT hours FROM alerts ORDER BY hours`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []int
	for rows.Next() {
		var hours int
		if err := rows.Scan(&hours); err != nil {
			return nil, err
		}
		alerts = append(alerts, hours)
	}

	return alerts, rows.Err()
}
