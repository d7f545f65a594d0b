// Package index maintains a SQLite index of decoded messages so parsed
// conversations can be searched without re-reading the log files.
package index

import (
	"database/sql"
	"strings"
	"unicode/utf8"

	"github.com/Looking4OffSwitch/claude-conversation-analysis/internal"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS messages (
	uuid         TEXT NOT NULL,
	project      TEXT NOT NULL,
	session_id   TEXT,
	kind         TEXT NOT NULL,
	timestamp    TEXT,
	timestamp_ms INTEGER NOT NULL,
	tool_name    TEXT,
	content      TEXT,
	PRIMARY KEY (project, uuid)
);
CREATE INDEX IF NOT EXISTS idx_messages_content ON messages(content);
CREATE INDEX IF NOT EXISTS idx_messages_project ON messages(project);
`

// Hit is one search result.
type Hit struct {
	Project   string               `json:"project"`
	UUID      string               `json:"uuid"`
	SessionID string               `json:"session_id,omitempty"`
	Kind      internal.MessageKind `json:"kind"`
	Timestamp string               `json:"timestamp,omitempty"`
	Snippet   string               `json:"snippet"`
}

// Indexer builds and queries the message index database.
type Indexer struct {
	dbPath string
}

// NewIndexer creates an indexer for the database at dbPath.
func NewIndexer(dbPath string) *Indexer {
	return &Indexer{dbPath: dbPath}
}

// DBPath returns the index database path.
func (ix *Indexer) DBPath() string {
	return ix.dbPath
}

func (ix *Indexer) open() (*sql.DB, error) {
	db, err := sql.Open("sqlite", ix.dbPath)
	if err != nil {
		return nil, &internal.IndexError{Path: ix.dbPath, Op: "open", Err: err}
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, &internal.IndexError{Path: ix.dbPath, Op: "open", Err: err}
	}
	return db, nil
}

// Rebuild replaces a project's rows with the given messages and returns the
// number indexed. Only messages with text content are searchable; the rest
// are still stored so counts line up with the parse.
func (ix *Indexer) Rebuild(projectID string, messages []*internal.Message) (int, error) {
	db, err := ix.open()
	if err != nil {
		return 0, err
	}
	defer func() { _ = db.Close() }()

	tx, err := db.Begin()
	if err != nil {
		return 0, &internal.IndexError{Path: ix.dbPath, Op: "build", Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM messages WHERE project = ?", projectID); err != nil {
		return 0, &internal.IndexError{Path: ix.dbPath, Op: "build", Err: err}
	}

	stmt, err := tx.Prepare(`
		INSERT INTO messages (uuid, project, session_id, kind, timestamp, timestamp_ms, tool_name, content)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, &internal.IndexError{Path: ix.dbPath, Op: "build", Err: err}
	}
	defer func() { _ = stmt.Close() }()

	count := 0
	for _, msg := range messages {
		_, err := stmt.Exec(
			msg.UUID,
			projectID,
			msg.SessionID,
			string(msg.Kind),
			msg.Timestamp,
			msg.TimestampMillis,
			msg.ToolName,
			msg.ContentText(),
		)
		if err != nil {
			internal.LogWarn("Failed to index message %s: %v", msg.UUID, err)
			continue
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return 0, &internal.IndexError{Path: ix.dbPath, Op: "build", Err: err}
	}

	internal.LogInfo("Indexed %d messages for project %s", count, projectID)
	return count, nil
}

// Search returns up to limit messages whose content contains term,
// case-insensitively, newest first.
func (ix *Indexer) Search(term string, limit int) ([]Hit, error) {
	if limit <= 0 {
		limit = 50
	}

	db, err := ix.open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = db.Close() }()

	rows, err := db.Query(`
		SELECT project, uuid, session_id, kind, timestamp, content
		FROM messages
		WHERE content LIKE ? ESCAPE '\'
		ORDER BY timestamp_ms DESC
		LIMIT ?`,
		"%"+escapeLike(term)+"%", limit)
	if err != nil {
		return nil, &internal.IndexError{Path: ix.dbPath, Op: "query", Err: err}
	}
	defer func() { _ = rows.Close() }()

	var hits []Hit
	for rows.Next() {
		var hit Hit
		var sessionID, timestamp, content sql.NullString
		var kind string
		if err := rows.Scan(&hit.Project, &hit.UUID, &sessionID, &kind, &timestamp, &content); err != nil {
			internal.LogWarn("Failed to scan search row: %v", err)
			continue
		}
		hit.SessionID = sessionID.String
		hit.Timestamp = timestamp.String
		hit.Kind = internal.MessageKind(kind)
		hit.Snippet = snippet(content.String, term)
		hits = append(hits, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, &internal.IndexError{Path: ix.dbPath, Op: "query", Err: err}
	}

	return hits, nil
}

// Stats returns the total row count and distinct project count.
func (ix *Indexer) Stats() (messages, projects int, err error) {
	db, err := ix.open()
	if err != nil {
		return 0, 0, err
	}
	defer func() { _ = db.Close() }()

	if err := db.QueryRow("SELECT COUNT(*), COUNT(DISTINCT project) FROM messages").Scan(&messages, &projects); err != nil {
		return 0, 0, &internal.IndexError{Path: ix.dbPath, Op: "query", Err: err}
	}
	return messages, projects, nil
}

func escapeLike(term string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(term)
}

// snippet trims content to a short window around the first occurrence of
// term, for display in search results.
func snippet(content, term string) string {
	const window = 80

	idx := strings.Index(strings.ToLower(content), strings.ToLower(term))
	if idx < 0 {
		idx = 0
	}

	start := idx - window/2
	if start < 0 {
		start = 0
	}
	end := start + window + len(term)
	if end > len(content) {
		end = len(content)
	}

	// The window is in bytes; back off to rune boundaries so a multi-byte
	// character is never split.
	for start > 0 && !utf8.RuneStart(content[start]) {
		start--
	}
	for end < len(content) && !utf8.RuneStart(content[end]) {
		end++
	}

	out := strings.TrimSpace(content[start:end])
	out = strings.ReplaceAll(out, "\n", " ")
	if start > 0 {
		out = "…" + out
	}
	if end < len(content) {
		out += "…"
	}
	return out
}
