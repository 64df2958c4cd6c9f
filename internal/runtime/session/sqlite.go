// Copyright 2026 fanjia1024
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package session

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore 单文件持久化，适合单实例部署
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore 打开（必要时创建）path 处的数据库并建表
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		path = "data/sessions.db"
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("打开 sqlite: %w", err)
	}
	// 写操作由 sqlite 串行化，单连接避免 SQLITE_BUSY
	db.SetMaxOpenConns(1)
	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("初始化 sqlite 表: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS session_messages (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		role       TEXT NOT NULL,
		content    TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_session_messages_session ON session_messages(session_id, id);
	`)
	return err
}

func (s *SQLiteStore) Messages(ctx context.Context, id string) ([]Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT role, content, created_at FROM session_messages WHERE session_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("读取会话 %s: %w", id, err)
	}
	defer rows.Close()
	var out []Message
	for rows.Next() {
		var m Message
		var at string
		if err := rows.Scan(&m.Role, &m.Content, &at); err != nil {
			return nil, err
		}
		m.Timestamp, _ = time.Parse(time.RFC3339Nano, at)
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Append(ctx context.Context, id string, msgs ...Message) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, m := range msgs {
		ts := m.Timestamp
		if ts.IsZero() {
			ts = time.Now()
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO session_messages (session_id, role, content, created_at) VALUES (?, ?, ?, ?)`,
			id, m.Role, m.Content, ts.UTC().Format(time.RFC3339Nano)); err != nil {
			return fmt.Errorf("写入会话 %s: %w", id, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM session_messages WHERE session_id = ?`, id)
	return err
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
