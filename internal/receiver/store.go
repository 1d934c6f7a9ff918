package receiver

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	logsnag "github.com/joshuawatkins04/logsnag_sdk"
)

// StoredLog is an event log as persisted by the receiver.
type StoredLog struct {
	ID         int64     `json:"id"`
	ReceivedAt time.Time `json:"received_at"`
	logsnag.Log
}

// StoredInsight is the latest value of an insight.
type StoredInsight struct {
	UpdatedAt time.Time `json:"updated_at"`
	logsnag.Insight
}

// Store persists received payloads in SQLite.
type Store struct {
	conn *sql.DB
	path string
}

// NewStore opens (or creates) the SQLite database at path.
func NewStore(path string) (*Store, error) {
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection serializes writers and keeps :memory: databases
	// shared across calls.
	conn.SetMaxOpenConns(1)

	s := &Store{conn: conn, path: path}
	if err := s.createTablesIfNotExist(); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) createTablesIfNotExist() error {
	query := `
	CREATE TABLE IF NOT EXISTS logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		received_at INTEGER NOT NULL,
		project TEXT NOT NULL,
		channel TEXT NOT NULL,
		event TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		icon TEXT NOT NULL DEFAULT '',
		notify INTEGER,
		tags TEXT
	);
	CREATE TABLE IF NOT EXISTS insights (
		project TEXT NOT NULL,
		title TEXT NOT NULL,
		value TEXT NOT NULL,
		icon TEXT NOT NULL DEFAULT '',
		updated_at INTEGER NOT NULL,
		PRIMARY KEY (project, title)
	);`

	if _, err := s.conn.Exec(query); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// InsertLog stores an event log and returns it with its assigned ID.
func (s *Store) InsertLog(ctx context.Context, log logsnag.Log, receivedAt time.Time) (StoredLog, error) {
	var notify sql.NullBool
	if log.Notify != nil {
		notify = sql.NullBool{Bool: *log.Notify, Valid: true}
	}

	var tags sql.NullString
	if !log.Tags.IsZero() {
		b, err := json.Marshal(log.Tags)
		if err != nil {
			return StoredLog{}, fmt.Errorf("encode tags: %w", err)
		}
		tags = sql.NullString{String: string(b), Valid: true}
	}

	res, err := s.conn.ExecContext(ctx,
		`INSERT INTO logs (received_at, project, channel, event, description, icon, notify, tags)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		receivedAt.UnixMilli(), log.Project, log.Channel, log.Event, log.Description, log.Icon, notify, tags)
	if err != nil {
		return StoredLog{}, fmt.Errorf("insert log: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return StoredLog{}, fmt.Errorf("insert log: %w", err)
	}

	return StoredLog{ID: id, ReceivedAt: time.UnixMilli(receivedAt.UnixMilli()).UTC(), Log: log}, nil
}

// ListLogs returns stored logs newest first, plus the total count.
func (s *Store) ListLogs(ctx context.Context, limit, offset int) ([]StoredLog, int, error) {
	var total int
	if err := s.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM logs`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count logs: %w", err)
	}

	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, received_at, project, channel, event, description, icon, notify, tags
		 FROM logs ORDER BY id DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("query logs: %w", err)
	}
	defer rows.Close()

	logs := make([]StoredLog, 0)
	for rows.Next() {
		var (
			l          StoredLog
			receivedAt int64
			notify     sql.NullBool
			tags       sql.NullString
		)
		if err := rows.Scan(&l.ID, &receivedAt, &l.Project, &l.Channel, &l.Event,
			&l.Description, &l.Icon, &notify, &tags); err != nil {
			return nil, 0, fmt.Errorf("scan log: %w", err)
		}
		l.ReceivedAt = time.UnixMilli(receivedAt).UTC()
		if notify.Valid {
			l.Notify = logsnag.Bool(notify.Bool)
		}
		if tags.Valid {
			if err := json.Unmarshal([]byte(tags.String), &l.Tags); err != nil {
				return nil, 0, fmt.Errorf("decode tags of log %d: %w", l.ID, err)
			}
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate logs: %w", err)
	}
	return logs, total, nil
}

// UpsertInsight stores the latest value of an insight, keyed by project and
// title.
func (s *Store) UpsertInsight(ctx context.Context, insight logsnag.Insight, updatedAt time.Time) (StoredInsight, error) {
	value, err := json.Marshal(insight.Value)
	if err != nil {
		return StoredInsight{}, fmt.Errorf("encode insight value: %w", err)
	}

	_, err = s.conn.ExecContext(ctx,
		`INSERT INTO insights (project, title, value, icon, updated_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(project, title) DO UPDATE SET value = excluded.value, icon = excluded.icon, updated_at = excluded.updated_at`,
		insight.Project, insight.Title, string(value), insight.Icon, updatedAt.UnixMilli())
	if err != nil {
		return StoredInsight{}, fmt.Errorf("upsert insight: %w", err)
	}

	return StoredInsight{UpdatedAt: time.UnixMilli(updatedAt.UnixMilli()).UTC(), Insight: insight}, nil
}

// ListInsights returns every stored insight ordered by project and title.
func (s *Store) ListInsights(ctx context.Context) ([]StoredInsight, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT project, title, value, icon, updated_at FROM insights ORDER BY project, title`)
	if err != nil {
		return nil, fmt.Errorf("query insights: %w", err)
	}
	defer rows.Close()

	insights := make([]StoredInsight, 0)
	for rows.Next() {
		var (
			in        StoredInsight
			value     string
			updatedAt int64
		)
		if err := rows.Scan(&in.Project, &in.Title, &value, &in.Icon, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan insight: %w", err)
		}
		if err := json.Unmarshal([]byte(value), &in.Value); err != nil {
			return nil, fmt.Errorf("decode insight %q: %w", in.Title, err)
		}
		in.UpdatedAt = time.UnixMilli(updatedAt).UTC()
		insights = append(insights, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate insights: %w", err)
	}
	return insights, nil
}
