package store

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// maxInputSize caps what is kept of a run's input. Diffs piped into
// `sinner commit` can be large and the history only needs enough to
// recognize the run.
const maxInputSize = 8 * 1024 // 8KB

// Generation is one successful command run.
type Generation struct {
	ID          string  `json:"id"`
	Command     string  `json:"command"`
	Input       string  `json:"input"`
	Output      string  `json:"output"`
	Provider    string  `json:"provider"`
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	DurationMs  int64   `json:"duration_ms"`
	CreatedAt   int64   `json:"created_at"` // unix millis
}

// Created returns CreatedAt as a time.Time.
func (g Generation) Created() time.Time {
	return time.UnixMilli(g.CreatedAt)
}

// AddGeneration records a run. ID and CreatedAt are filled in when empty.
func (db *DB) AddGeneration(g *Generation) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	if g.CreatedAt == 0 {
		g.CreatedAt = time.Now().UnixMilli()
	}
	input := truncateInput(g.Input)

	_, err := db.Exec(`
		INSERT INTO generations (id, command, input, output, provider, model, temperature, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, g.ID, g.Command, input, g.Output, g.Provider, g.Model, g.Temperature, g.DurationMs, g.CreatedAt)
	if err != nil {
		return fmt.Errorf("add generation: %w", err)
	}
	return nil
}

// truncateInput cuts s to at most maxInputSize bytes without splitting a
// UTF-8 sequence.
func truncateInput(s string) string {
	if len(s) <= maxInputSize {
		return s
	}
	cut := maxInputSize
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// RecentGenerations returns up to limit runs, newest first.
func (db *DB) RecentGenerations(limit int) ([]Generation, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := db.Query(`
		SELECT id, command, input, output, provider, model, temperature, duration_ms, created_at
		FROM generations ORDER BY created_at DESC, rowid DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent generations: %w", err)
	}
	defer rows.Close()

	gens := []Generation{}
	for rows.Next() {
		var g Generation
		if err := rows.Scan(&g.ID, &g.Command, &g.Input, &g.Output, &g.Provider, &g.Model,
			&g.Temperature, &g.DurationMs, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan generation: %w", err)
		}
		gens = append(gens, g)
	}
	return gens, rows.Err()
}

// CountGenerations returns the number of recorded runs.
func (db *DB) CountGenerations() (int, error) {
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM generations").Scan(&n); err != nil {
		return 0, fmt.Errorf("count generations: %w", err)
	}
	return n, nil
}

// ClearGenerations deletes every recorded run and returns how many there were.
func (db *DB) ClearGenerations() (int64, error) {
	res, err := db.Exec("DELETE FROM generations")
	if err != nil {
		return 0, fmt.Errorf("clear generations: %w", err)
	}
	return res.RowsAffected()
}

// Record stores a finished run. A nil DB means history is disabled and
// Record does nothing.
func (db *DB) Record(command, input, output, provider, model string, temperature float64, took time.Duration) error {
	if db == nil {
		return nil
	}
	return db.AddGeneration(&Generation{
		Command:     command,
		Input:       input,
		Output:      output,
		Provider:    provider,
		Model:       model,
		Temperature: temperature,
		DurationMs:  took.Milliseconds(),
	})
}
