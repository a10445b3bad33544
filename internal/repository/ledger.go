package repository

import (
	"database/sql"
	"log/slog"
	"time"

	"infobot/internal/entities"
	"infobot/internal/lib/sl"
)

const sqliteTimeLayout = "2006-01-02 15:04:05"

// ChargeResult tells the caller why a charge was or was not taken. The
// ledger itself never talks to the transport; rendering the refusal is the
// handler's job.
type ChargeResult int

const (
	ChargeOK ChargeResult = iota
	ChargeBlocked
	ChargeNoCredits
	ChargeError
)

// CreditLedger is the single owner of users, history, daily_credits and
// blocked_users. Every feature handler gates through it.
type CreditLedger struct {
	db      *sql.DB
	special *SpecialUsers
	log     *slog.Logger
}

func NewCreditLedger(db *sql.DB, special *SpecialUsers, log *slog.Logger) *CreditLedger {
	return &CreditLedger{db: db, special: special, log: log}
}

// withRetry re-runs an operation once after a ping, covering the
// dropped-connection case. A second failure surfaces to the caller.
func (l *CreditLedger) withRetry(op func() error) error {
	err := op()
	if err == nil {
		return nil
	}
	l.log.Warn("store operation failed, retrying", sl.Err(err))
	if pingErr := l.db.Ping(); pingErr != nil {
		return err
	}
	return op()
}

// EnsureUser lazily creates the user row with the default balance. Safe to
// call on every interaction.
func (l *CreditLedger) EnsureUser(uid int64) error {
	return l.withRetry(func() error {
		_, err := l.db.Exec(
			"INSERT OR IGNORE INTO users (user_id, credits) VALUES (?, ?)",
			uid, entities.DefaultCredits)
		return err
	})
}

// GetBalance returns 0 for unknown users without creating them.
func (l *CreditLedger) GetBalance(uid int64) (int, error) {
	var credits int
	err := l.withRetry(func() error {
		err := l.db.QueryRow("SELECT credits FROM users WHERE user_id=?", uid).Scan(&credits)
		if err == sql.ErrNoRows {
			credits = 0
			return nil
		}
		return err
	})
	return credits, err
}

func (l *CreditLedger) SetBalance(uid int64, val int) error {
	return l.withRetry(func() error {
		_, err := l.db.Exec("UPDATE users SET credits=? WHERE user_id=?", val, uid)
		return err
	})
}

// AdjustBalance is the only increment/decrement primitive. The clamp to
// non-negative happens in the statement so concurrent adjustments cannot
// drive a balance below zero.
func (l *CreditLedger) AdjustBalance(uid int64, delta int) (int, error) {
	if err := l.EnsureUser(uid); err != nil {
		return 0, err
	}
	var credits int
	err := l.withRetry(func() error {
		if _, err := l.db.Exec(
			"UPDATE users SET credits = MAX(0, credits + ?) WHERE user_id=?",
			delta, uid); err != nil {
			return err
		}
		return l.db.QueryRow("SELECT credits FROM users WHERE user_id=?", uid).Scan(&credits)
	})
	return credits, err
}

// ChargeForLookup is the composite gate in front of every paid lookup:
// blocked users fail closed, special users pass free, everyone else pays one
// credit through a conditional decrement so concurrent charges for the same
// user cannot double-spend a single credit.
func (l *CreditLedger) ChargeForLookup(uid int64) ChargeResult {
	blocked, err := l.IsBlocked(uid)
	if err != nil {
		return ChargeError
	}
	if blocked {
		return ChargeBlocked
	}

	if err := l.EnsureUser(uid); err != nil {
		return ChargeError
	}

	if l.special.IsSpecial(uid) {
		return ChargeOK
	}

	var n int64
	err = l.withRetry(func() error {
		res, err := l.db.Exec(
			"UPDATE users SET credits = credits - 1 WHERE user_id=? AND credits > 0", uid)
		if err != nil {
			return err
		}
		n, err = res.RowsAffected()
		return err
	})
	if err != nil {
		l.log.Error("charge failed", slog.Int64("user_id", uid), sl.Err(err))
		return ChargeError
	}
	if n == 0 {
		return ChargeNoCredits
	}
	return ChargeOK
}

// Refund returns the single credit taken by ChargeForLookup. Handlers call
// it on every no-result path so a failed lookup nets out to zero.
func (l *CreditLedger) Refund(uid int64) error {
	if err := l.EnsureUser(uid); err != nil {
		return err
	}
	return l.withRetry(func() error {
		_, err := l.db.Exec("UPDATE users SET credits = credits + 1 WHERE user_id=?", uid)
		return err
	})
}

// GrantDailyBonusIfDue applies the once-per-calendar-day bonus. The check is
// "stored date != today", so it resets at local midnight.
func (l *CreditLedger) GrantDailyBonusIfDue(uid int64) (bool, error) {
	today := time.Now().Format("2006-01-02")

	var last sql.NullString
	err := l.withRetry(func() error {
		err := l.db.QueryRow(
			"SELECT last_credit_date FROM daily_credits WHERE user_id=?", uid).Scan(&last)
		if err == sql.ErrNoRows {
			last = sql.NullString{}
			return nil
		}
		return err
	})
	if err != nil {
		return false, err
	}
	if last.Valid && last.String == today {
		return false, nil
	}

	if _, err := l.AdjustBalance(uid, entities.DailyBonus); err != nil {
		return false, err
	}
	err = l.withRetry(func() error {
		_, err := l.db.Exec(
			"INSERT OR REPLACE INTO daily_credits (user_id, last_credit_date) VALUES (?, ?)",
			uid, today)
		return err
	})
	return err == nil, err
}

// LastGrantDate returns the stored grant date, or "" if the user never
// received one.
func (l *CreditLedger) LastGrantDate(uid int64) (string, error) {
	var last string
	err := l.withRetry(func() error {
		err := l.db.QueryRow(
			"SELECT last_credit_date FROM daily_credits WHERE user_id=?", uid).Scan(&last)
		if err == sql.ErrNoRows {
			last = ""
			return nil
		}
		return err
	})
	return last, err
}

// RecordHistory appends a log row. Best-effort: failures are logged and
// never block the lookup flow.
func (l *CreditLedger) RecordHistory(uid int64, query, category string) {
	err := l.withRetry(func() error {
		_, err := l.db.Exec(
			"INSERT INTO history (user_id, query, category) VALUES (?, ?, ?)",
			uid, query, category)
		return err
	})
	if err != nil {
		l.log.Error("record history failed", slog.Int64("user_id", uid), sl.Err(err))
	}
}

// History returns entries most-recent-first. limit <= 0 means all.
func (l *CreditLedger) History(uid int64, limit int) ([]entities.HistoryEntry, error) {
	if limit <= 0 {
		limit = -1
	}
	var out []entities.HistoryEntry
	err := l.withRetry(func() error {
		rows, err := l.db.Query(
			"SELECT query, category, ts FROM history WHERE user_id=? ORDER BY id DESC LIMIT ?",
			uid, limit)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = out[:0]
		for rows.Next() {
			var e entities.HistoryEntry
			var ts string
			if err := rows.Scan(&e.Query, &e.Category, &ts); err != nil {
				return err
			}
			e.UserID = uid
			e.At, _ = time.Parse(sqliteTimeLayout, ts)
			out = append(out, e)
		}
		return rows.Err()
	})
	return out, err
}

func (l *CreditLedger) IsBlocked(uid int64) (bool, error) {
	var blocked bool
	err := l.withRetry(func() error {
		var id int64
		err := l.db.QueryRow("SELECT user_id FROM blocked_users WHERE user_id=?", uid).Scan(&id)
		if err == sql.ErrNoRows {
			blocked = false
			return nil
		}
		if err != nil {
			return err
		}
		blocked = true
		return nil
	})
	return blocked, err
}

// Block inserts a block entry. Returns false if the user is already blocked;
// at most one active entry per user.
func (l *CreditLedger) Block(uid, byAdmin int64, reason string) (bool, error) {
	blocked, err := l.IsBlocked(uid)
	if err != nil || blocked {
		return false, err
	}
	err = l.withRetry(func() error {
		_, err := l.db.Exec(
			"INSERT INTO blocked_users (user_id, blocked_by, reason) VALUES (?, ?, ?)",
			uid, byAdmin, reason)
		return err
	})
	if err != nil {
		return false, err
	}
	l.log.Info("user blocked",
		slog.Int64("user_id", uid),
		slog.Int64("by", byAdmin),
		slog.String("reason", reason))
	return true, nil
}

// Unblock removes the entry. Returns false for a user that was never blocked.
func (l *CreditLedger) Unblock(uid int64) (bool, error) {
	blocked, err := l.IsBlocked(uid)
	if err != nil || !blocked {
		return false, err
	}
	err = l.withRetry(func() error {
		_, err := l.db.Exec("DELETE FROM blocked_users WHERE user_id=?", uid)
		return err
	})
	if err != nil {
		return false, err
	}
	l.log.Info("user unblocked", slog.Int64("user_id", uid))
	return true, nil
}

// ListBlocked returns block entries most-recently-blocked first, joined with
// the user's balance for display.
func (l *CreditLedger) ListBlocked() ([]entities.BlockedUser, error) {
	var out []entities.BlockedUser
	err := l.withRetry(func() error {
		rows, err := l.db.Query(`
			SELECT b.user_id, b.blocked_by, COALESCE(b.reason, ''), b.blocked_at, COALESCE(u.credits, 0)
			FROM blocked_users b
			LEFT JOIN users u ON b.user_id = u.user_id
			ORDER BY b.blocked_at DESC`)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = out[:0]
		for rows.Next() {
			var b entities.BlockedUser
			var at string
			if err := rows.Scan(&b.UserID, &b.BlockedBy, &b.Reason, &at, &b.Credits); err != nil {
				return err
			}
			b.BlockedAt, _ = time.Parse(sqliteTimeLayout, at)
			out = append(out, b)
		}
		return rows.Err()
	})
	return out, err
}

func (l *CreditLedger) ListUsers() ([]entities.User, error) {
	var out []entities.User
	err := l.withRetry(func() error {
		rows, err := l.db.Query("SELECT user_id, credits FROM users ORDER BY user_id")
		if err != nil {
			return err
		}
		defer rows.Close()

		out = out[:0]
		for rows.Next() {
			var u entities.User
			if err := rows.Scan(&u.ID, &u.Credits); err != nil {
				return err
			}
			out = append(out, u)
		}
		return rows.Err()
	})
	return out, err
}
