package session

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Storage keys mirror the keys the web client kept in localStorage.
const (
	keyToken  = "aley_token"
	keyUserID = "aley_user_id"
	keyEmail  = "aley_user_email"
	keyName   = "aley_user_name"
	keyAvatar = "aley_user_avatar"
)

// Identity is the persisted viewer identity. The token being present is
// what makes the viewer authenticated; everything else is best-effort
// profile data refreshed opportunistically.
type Identity struct {
	UserID      string
	Email       string
	DisplayName string
	AvatarURL   string
	Token       string
}

func (id Identity) Authenticated() bool {
	return id.Token != ""
}

// Store persists the viewer identity in a local sqlite file so it
// survives process restarts, the way the browser client survived reloads.
type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create session dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open session db: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS session (key TEXT PRIMARY KEY, value TEXT NOT NULL)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("init session db: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Viewer() (Identity, error) {
	rows, err := s.db.Query(`SELECT key, value FROM session`)
	if err != nil {
		return Identity{}, err
	}
	defer rows.Close()

	var id Identity
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return Identity{}, err
		}
		switch key {
		case keyToken:
			id.Token = value
		case keyUserID:
			id.UserID = value
		case keyEmail:
			id.Email = value
		case keyName:
			id.DisplayName = value
		case keyAvatar:
			id.AvatarURL = value
		}
	}
	return id, rows.Err()
}

// SetViewer merges the non-empty fields of partial into the stored
// identity. Each write is durable before SetViewer returns.
func (s *Store) SetViewer(partial Identity) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	pairs := []struct{ key, value string }{
		{keyToken, partial.Token},
		{keyUserID, partial.UserID},
		{keyEmail, partial.Email},
		{keyName, partial.DisplayName},
		{keyAvatar, partial.AvatarURL},
	}
	for _, p := range pairs {
		if p.value == "" {
			continue
		}
		if _, err := tx.Exec(`
			INSERT INTO session (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value
		`, p.key, p.value); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Clear removes every stored field. Used on logout and when any API call
// reports the token expired.
func (s *Store) Clear() error {
	_, err := s.db.Exec(`DELETE FROM session`)
	return err
}
