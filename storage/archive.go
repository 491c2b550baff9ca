// Package storage keeps a local archive of completed exchanges so past
// answers survive server-side history pruning and stay searchable
// offline.
package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ArchivedStep is one reasoning step stored with an exchange.
type ArchivedStep struct {
	Thought     string `json:"thought,omitempty"`
	Action      string `json:"action"`
	ActionInput string `json:"action_input,omitempty"`
	Observation string `json:"observation,omitempty"`
}

// Exchange is one completed question/answer pair.
type Exchange struct {
	ID             string
	ConversationID string
	Title          string
	Model          string
	Question       string
	Answer         string
	Steps          []ArchivedStep
	Failed         bool
	CreatedAt      time.Time
}

// ExchangeMatch is one archive search hit.
type ExchangeMatch struct {
	Exchange
	Preview string
}

// Archive is the SQLite-backed exchange store.
type Archive struct {
	db *sql.DB
}

// OpenArchive opens (or creates) the archive database under dataDir.
func OpenArchive(dataDir string) (*Archive, error) {
	dbPath := filepath.Join(dataDir, "archive.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	a := &Archive{db: db}

	if err := a.initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return a, nil
}

func (a *Archive) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS exchanges (
		id TEXT PRIMARY KEY,
		conversation_id TEXT NOT NULL,
		title TEXT,
		model TEXT,
		question TEXT NOT NULL,
		answer TEXT NOT NULL,
		steps_json TEXT,
		failed INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_exchanges_conversation ON exchanges(conversation_id);
	CREATE INDEX IF NOT EXISTS idx_exchanges_created ON exchanges(created_at);
	`

	_, err := a.db.Exec(schema)
	return err
}

// Record stores one completed exchange. An empty ID is assigned.
func (a *Archive) Record(ex *Exchange) error {
	if ex.ID == "" {
		ex.ID = uuid.New().String()
	}
	if ex.CreatedAt.IsZero() {
		ex.CreatedAt = time.Now()
	}

	stepsJSON, err := json.Marshal(ex.Steps)
	if err != nil {
		return fmt.Errorf("failed to encode steps: %w", err)
	}

	_, err = a.db.Exec(`
		INSERT OR REPLACE INTO exchanges
		(id, conversation_id, title, model, question, answer, steps_json, failed, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ex.ID, ex.ConversationID, ex.Title, ex.Model,
		ex.Question, ex.Answer, string(stepsJSON), boolToInt(ex.Failed), ex.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record exchange: %w", err)
	}
	return nil
}

// Recent returns the newest exchanges, most recent first.
func (a *Archive) Recent(limit int) ([]Exchange, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := a.db.Query(`
		SELECT id, conversation_id, title, model, question, answer, steps_json, failed, created_at
		FROM exchanges ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query exchanges: %w", err)
	}
	defer rows.Close()

	return scanExchanges(rows)
}

// ByConversation returns all archived exchanges for one conversation,
// oldest first.
func (a *Archive) ByConversation(conversationID string) ([]Exchange, error) {
	rows, err := a.db.Query(`
		SELECT id, conversation_id, title, model, question, answer, steps_json, failed, created_at
		FROM exchanges WHERE conversation_id = ? ORDER BY created_at ASC`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query exchanges: %w", err)
	}
	defer rows.Close()

	return scanExchanges(rows)
}

// Search finds exchanges whose question or answer contains the query,
// case-insensitively, newest first.
func (a *Archive) Search(query string) ([]ExchangeMatch, error) {
	if strings.TrimSpace(query) == "" {
		return []ExchangeMatch{}, nil
	}

	pattern := "%" + escapeLike(query) + "%"
	rows, err := a.db.Query(`
		SELECT id, conversation_id, title, model, question, answer, steps_json, failed, created_at
		FROM exchanges
		WHERE question LIKE ? ESCAPE '\' OR answer LIKE ? ESCAPE '\'
		ORDER BY created_at DESC`, pattern, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to search exchanges: %w", err)
	}
	defer rows.Close()

	exchanges, err := scanExchanges(rows)
	if err != nil {
		return nil, err
	}

	matches := make([]ExchangeMatch, 0, len(exchanges))
	for _, ex := range exchanges {
		matches = append(matches, ExchangeMatch{
			Exchange: ex,
			Preview:  makePreview(ex, query),
		})
	}
	return matches, nil
}

// DeleteConversation removes all archived exchanges for a conversation,
// mirroring a server-side delete.
func (a *Archive) DeleteConversation(conversationID string) error {
	_, err := a.db.Exec(`DELETE FROM exchanges WHERE conversation_id = ?`, conversationID)
	if err != nil {
		return fmt.Errorf("failed to delete exchanges: %w", err)
	}
	return nil
}

// Count returns the number of archived exchanges.
func (a *Archive) Count() (int, error) {
	var n int
	if err := a.db.QueryRow(`SELECT COUNT(*) FROM exchanges`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count exchanges: %w", err)
	}
	return n, nil
}

// Close releases the database handle.
func (a *Archive) Close() error {
	return a.db.Close()
}

func scanExchanges(rows *sql.Rows) ([]Exchange, error) {
	var out []Exchange
	for rows.Next() {
		var ex Exchange
		var stepsJSON string
		var failed int
		if err := rows.Scan(&ex.ID, &ex.ConversationID, &ex.Title, &ex.Model,
			&ex.Question, &ex.Answer, &stepsJSON, &failed, &ex.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan exchange: %w", err)
		}
		if stepsJSON != "" {
			if err := json.Unmarshal([]byte(stepsJSON), &ex.Steps); err != nil {
				return nil, fmt.Errorf("failed to decode steps: %w", err)
			}
		}
		ex.Failed = failed != 0
		out = append(out, ex)
	}
	return out, rows.Err()
}

// makePreview returns a short window of the matched text around the first
// occurrence of the query.
func makePreview(ex Exchange, query string) string {
	source := ex.Answer
	lower := strings.ToLower(source)
	idx := strings.Index(lower, strings.ToLower(query))
	if idx < 0 {
		source = ex.Question
		lower = strings.ToLower(source)
		idx = strings.Index(lower, strings.ToLower(query))
	}
	if idx < 0 {
		idx = 0
	}

	runes := []rune(source)
	// Recompute the index in runes so the window never splits a character.
	runeIdx := len([]rune(source[:idx]))
	start := runeIdx - 30
	if start < 0 {
		start = 0
	}
	end := start + 100
	if end > len(runes) {
		end = len(runes)
	}

	preview := string(runes[start:end])
	if start > 0 {
		preview = "..." + preview
	}
	if end < len(runes) {
		preview += "..."
	}
	return preview
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
