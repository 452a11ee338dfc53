// Package storage provides SQLite-based persistence for episode results.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Store manages the SQLite database connection for episode persistence.
type Store struct {
	db *sql.DB
}

// EpisodeRecord is the persisted outcome of one finished episode.
type EpisodeRecord struct {
	ID          int64
	GameID      string
	Steps       int
	TotalReward float64
	Terminated  bool // false means the episode was abandoned mid-run
	CreatedAt   time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}
	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS episodes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			game_id TEXT NOT NULL,
			steps INTEGER NOT NULL,
			total_reward REAL NOT NULL,
			terminated INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_episodes_game_id ON episodes(game_id);
		CREATE INDEX IF NOT EXISTS idx_episodes_top ON episodes(game_id, total_reward DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveEpisode records a finished episode.
// Returns the ID of the inserted record.
func (s *Store) SaveEpisode(rec EpisodeRecord) (int64, error) {
	result, err := s.db.Exec(
		"INSERT INTO episodes (game_id, steps, total_reward, terminated) VALUES (?, ?, ?, ?)",
		rec.GameID, rec.Steps, rec.TotalReward, rec.Terminated,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save episode: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}
	return id, nil
}

// TopEpisodes retrieves the best N episodes for the given game,
// ordered by total reward descending.
func (s *Store) TopEpisodes(gameID string, limit int) ([]EpisodeRecord, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(
		`SELECT id, game_id, steps, total_reward, terminated, created_at
		 FROM episodes
		 WHERE game_id = ?
		 ORDER BY total_reward DESC
		 LIMIT ?`,
		gameID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query episodes: %w", err)
	}
	defer rows.Close()

	return scanEpisodes(rows)
}

// AllEpisodes retrieves every episode for the given game (no limit).
func (s *Store) AllEpisodes(gameID string) ([]EpisodeRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, game_id, steps, total_reward, terminated, created_at
		 FROM episodes
		 WHERE game_id = ?
		 ORDER BY total_reward DESC`,
		gameID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query episodes: %w", err)
	}
	defer rows.Close()

	return scanEpisodes(rows)
}

func scanEpisodes(rows *sql.Rows) ([]EpisodeRecord, error) {
	var entries []EpisodeRecord
	for rows.Next() {
		var e EpisodeRecord
		var createdAt any
		if err := rows.Scan(&e.ID, &e.GameID, &e.Steps, &e.TotalReward, &e.Terminated, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		e.CreatedAt = parseTimestamp(createdAt)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return entries, nil
}

// parseTimestamp handles both time.Time and string column representations.
func parseTimestamp(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

// BestReward returns the highest total reward recorded for the given game.
// Returns 0 if no episodes exist.
func (s *Store) BestReward(gameID string) (float64, error) {
	var best sql.NullFloat64
	err := s.db.QueryRow(
		"SELECT MAX(total_reward) FROM episodes WHERE game_id = ?",
		gameID,
	).Scan(&best)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot query best reward: %w", err)
	}
	if !best.Valid {
		return 0, nil
	}
	return best.Float64, nil
}

// ClearEpisodes deletes all episodes for the given game.
func (s *Store) ClearEpisodes(gameID string) error {
	_, err := s.db.Exec("DELETE FROM episodes WHERE game_id = ?", gameID)
	if err != nil {
		return fmt.Errorf("storage: cannot clear episodes: %w", err)
	}
	return nil
}

// GameStats contains aggregated statistics for a game.
type GameStats struct {
	GameID      string
	Episodes    int
	BestReward  float64
	AvgReward   float64
	TotalReward float64
	LastPlayed  time.Time
}

// GetGameStats retrieves aggregated statistics for a specific game.
func (s *Store) GetGameStats(gameID string) (*GameStats, error) {
	stats := &GameStats{GameID: gameID}

	err := s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(MAX(total_reward), 0), COALESCE(AVG(total_reward), 0), COALESCE(SUM(total_reward), 0)
		 FROM episodes WHERE game_id = ?`,
		gameID,
	).Scan(&stats.Episodes, &stats.BestReward, &stats.AvgReward, &stats.TotalReward)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get game stats: %w", err)
	}

	var lastPlayed any
	err = s.db.QueryRow(
		`SELECT created_at FROM episodes WHERE game_id = ? ORDER BY created_at DESC LIMIT 1`,
		gameID,
	).Scan(&lastPlayed)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("storage: cannot get last played: %w", err)
	}
	if err == nil {
		stats.LastPlayed = parseTimestamp(lastPlayed)
	}

	return stats, nil
}
