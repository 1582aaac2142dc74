// Package store persists completed note pairs to Postgres. The archive is
// optional and best-effort: a deployment without a database URL simply runs
// without history, and archive failures never affect a live stream.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/notewire/pkg/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS note_archive (
	id          BIGSERIAL PRIMARY KEY,
	pr_id       TEXT NOT NULL,
	developer   TEXT NOT NULL,
	marketing   TEXT NOT NULL,
	tools       JSONB,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// ArchivedNote is one stored note pair.
type ArchivedNote struct {
	ID        int64             `json:"id"`
	PRID      string            `json:"prId"`
	Developer string            `json:"developer"`
	Marketing string            `json:"marketing"`
	Tools     *models.ToolsInfo `json:"tools,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
}

// Archive wraps the note_archive table.
type Archive struct {
	db *sql.DB
}

// Open connects to Postgres via the pgx driver and ensures the schema.
func Open(ctx context.Context, databaseURL string) (*Archive, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	return &Archive{db: db}, nil
}

// Close releases the connection pool.
func (a *Archive) Close() error {
	return a.db.Close()
}

// Save stores every completed note pair from a reconstruction state.
func (a *Archive) Save(ctx context.Context, state map[string]*models.NoteState) error {
	for prID, note := range state {
		var toolsJSON []byte
		if note.Tools != nil {
			encoded, err := json.Marshal(note.Tools)
			if err != nil {
				return fmt.Errorf("marshal tools for %s: %w", prID, err)
			}
			toolsJSON = encoded
		}

		_, err := a.db.ExecContext(ctx,
			`INSERT INTO note_archive (pr_id, developer, marketing, tools) VALUES ($1, $2, $3, $4)`,
			prID, note.Developer, note.Marketing, toolsJSON)
		if err != nil {
			return fmt.Errorf("insert note for %s: %w", prID, err)
		}
	}
	return nil
}

// List returns archived notes newest first with offset pagination.
func (a *Archive) List(ctx context.Context, offset, limit int) ([]ArchivedNote, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := a.db.QueryContext(ctx,
		`SELECT id, pr_id, developer, marketing, tools, created_at
		 FROM note_archive ORDER BY id DESC OFFSET $1 LIMIT $2`, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("query archive: %w", err)
	}
	defer rows.Close()

	notes := make([]ArchivedNote, 0, limit)
	for rows.Next() {
		var note ArchivedNote
		var toolsJSON []byte
		if err := rows.Scan(&note.ID, &note.PRID, &note.Developer, &note.Marketing, &toolsJSON, &note.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan archive row: %w", err)
		}
		if len(toolsJSON) > 0 {
			note.Tools = &models.ToolsInfo{}
			if err := json.Unmarshal(toolsJSON, note.Tools); err != nil {
				return nil, fmt.Errorf("decode tools for %s: %w", note.PRID, err)
			}
		}
		notes = append(notes, note)
	}
	return notes, rows.Err()
}
