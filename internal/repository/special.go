package repository

import (
	"database/sql"
	"sort"
	"sync"

	"infobot/internal/entities"
)

// SpecialUsers is the allow-list of accounts exempt from charging. Entries
// persist in the special_users table and are cached in memory so the hot
// IsSpecial check in the charge path never touches the store.
type SpecialUsers struct {
	db *sql.DB

	mu    sync.RWMutex
	cache map[int64]string
}

func NewSpecialUsers(db *sql.DB) (*SpecialUsers, error) {
	s := &SpecialUsers{db: db, cache: make(map[int64]string)}

	rows, err := db.Query("SELECT user_id, COALESCE(label, '') FROM special_users")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		var label string
		if err := rows.Scan(&id, &label); err != nil {
			return nil, err
		}
		s.cache[id] = label
	}
	return s, rows.Err()
}

// Seed inserts configured entries if absent. Existing labels win over the
// config so runtime edits survive restarts.
func (s *SpecialUsers) Seed(users []entities.SpecialUser) error {
	for _, u := range users {
		if s.IsSpecial(u.ID) {
			continue
		}
		if _, err := s.Add(u.ID, u.Label); err != nil {
			return err
		}
	}
	return nil
}

// Add returns false if the user is already on the list.
func (s *SpecialUsers) Add(uid int64, label string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cache[uid]; ok {
		return false, nil
	}
	if _, err := s.db.Exec(
		"INSERT OR IGNORE INTO special_users (user_id, label) VALUES (?, ?)", uid, label); err != nil {
		return false, err
	}
	s.cache[uid] = label
	return true, nil
}

// Remove returns false if the user was not on the list.
func (s *SpecialUsers) Remove(uid int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cache[uid]; !ok {
		return false, nil
	}
	if _, err := s.db.Exec("DELETE FROM special_users WHERE user_id=?", uid); err != nil {
		return false, err
	}
	delete(s.cache, uid)
	return true, nil
}

func (s *SpecialUsers) IsSpecial(uid int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.cache[uid]
	return ok
}

func (s *SpecialUsers) List() []entities.SpecialUser {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]entities.SpecialUser, 0, len(s.cache))
	for id, label := range s.cache {
		out = append(out, entities.SpecialUser{ID: id, Label: label})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
