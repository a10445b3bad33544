package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"

	"infobot/internal/entities"
	"infobot/internal/lib/sl"
	"infobot/internal/repository"
)

// broadcastRate paces the fan-out below Telegram's flood limits.
const broadcastRate = rate.Limit(10)

// AdminService implements the admin panel operations. Authorization is the
// router's job; every method here assumes the caller is the admin.
type AdminService struct {
	ledger  *repository.CreditLedger
	special *repository.SpecialUsers
	msgr    Messenger
	log     *slog.Logger
}

func NewAdminService(ledger *repository.CreditLedger, special *repository.SpecialUsers, msgr Messenger, log *slog.Logger) *AdminService {
	return &AdminService{ledger: ledger, special: special, msgr: msgr, log: log}
}

// AdjustCredits adds (or, with remove, subtracts) credits and notifies both
// the admin and the target user. The notification to the user is
// best-effort; they may have never opened the bot.
func (s *AdminService) AdjustCredits(chatID, uid int64, amount int, remove bool) {
	if err := s.ledger.EnsureUser(uid); err != nil {
		s.msgr.Send(chatID, msgError)
		return
	}
	before, _ := s.ledger.GetBalance(uid)

	delta := amount
	verb := "added"
	prep := "to"
	if remove {
		delta = -amount
		verb = "removed"
		prep = "from"
	}

	after, err := s.ledger.AdjustBalance(uid, delta)
	if err != nil {
		s.msgr.Send(chatID, msgError)
		return
	}

	s.msgr.Send(chatID, fmt.Sprintf("✅ Successfully %s %d credits %s user %d.\nPrevious balance: %d\nNew balance: %d",
		verb, amount, prep, uid, before, after))

	var note string
	if remove {
		note = fmt.Sprintf("❌ %d credits have been removed from your account.\nYour current balance: %d", amount, after)
	} else {
		note = fmt.Sprintf("🎉 %d credits have been added to your account!\nYour current balance: %d", amount, after)
	}
	if err := s.msgr.Send(uid, note); err != nil {
		s.log.Warn("could not notify user", slog.Int64("user_id", uid), sl.Err(err))
	}
}

func (s *AdminService) AllUsers(chatID int64) {
	users, err := s.ledger.ListUsers()
	if err != nil {
		s.msgr.Send(chatID, msgError)
		return
	}
	if len(users) == 0 {
		s.msgr.Send(chatID, "❌ No users found.")
		return
	}

	specialCount := len(s.special.List())

	var sb strings.Builder
	fmt.Fprintf(&sb, `👥 <b>All Users</b>
━━━━━━━━━━━━━━━━━━
📊 <b>Total Users:</b> %d
🌟 <b>Special Users:</b> %d
👤 <b>Normal Users:</b> %d

📋 <b>User List:</b>
`, len(users), specialCount, len(users)-specialCount)

	// First 50 only; the rest is summarized.
	limit := len(users)
	if limit > 50 {
		limit = 50
	}
	for i := 0; i < limit; i++ {
		u := users[i]
		star := ""
		if s.special.IsSpecial(u.ID) {
			star = " 🌟"
		}
		fmt.Fprintf(&sb, "\n%d. <code>%d</code> - %d credits%s", i+1, u.ID, u.Credits, star)
	}
	if len(users) > limit {
		fmt.Fprintf(&sb, "\n\n... and %d more users.", len(users)-limit)
	}
	s.msgr.SendLong(chatID, sb.String())
}

func (s *AdminService) UserHistory(chatID, uid int64) {
	entries, err := s.ledger.History(uid, 50)
	if err != nil {
		s.msgr.Send(chatID, msgError)
		return
	}
	if len(entries) == 0 {
		s.msgr.Send(chatID, fmt.Sprintf("❌ No history found for user %d.", uid))
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📋 <b>User History for %d</b>\n━━━━━━━━━━━━━━━━━━\n", uid)
	for _, e := range entries {
		fmt.Fprintf(&sb, "\n[%s] (%s) %s", e.At.Format("2006-01-02 15:04:05"), e.Category, e.Query)
	}
	s.msgr.SendLong(chatID, sb.String())
}

// Broadcast fans a message out to every known user, paced by a rate limiter
// so Telegram's flood control never trips. Blocked users are skipped;
// individual failures are counted, not fatal.
func (s *AdminService) Broadcast(chatID int64, message string) {
	users, err := s.ledger.ListUsers()
	if err != nil {
		s.msgr.Send(chatID, msgError)
		return
	}
	if len(users) == 0 {
		s.msgr.Send(chatID, "❌ No users found.")
		return
	}

	progressID, _ := s.msgr.SendProgress(chatID, fmt.Sprintf("📢 Broadcasting message to %d users...", len(users)))

	limiter := rate.NewLimiter(broadcastRate, 1)
	var success, failed int
	for _, u := range users {
		blocked, err := s.ledger.IsBlocked(u.ID)
		if err != nil || blocked {
			failed++
			continue
		}
		limiter.Wait(context.Background())
		if err := s.msgr.Send(u.ID, "📢 <b>Broadcast Message</b>\n\n"+message); err != nil {
			s.log.Warn("broadcast send failed", slog.Int64("user_id", u.ID), sl.Err(err))
			failed++
			continue
		}
		success++
	}

	if progressID != 0 {
		s.msgr.Delete(chatID, progressID)
	}

	s.msgr.Send(chatID, fmt.Sprintf(`✅ <b>Broadcast Completed</b>
━━━━━━━━━━━━━━━━━━
📊 <b>Total Users:</b> %d
✅ <b>Successful:</b> %d
❌ <b>Failed:</b> %d`, len(users), success, failed))
}

func (s *AdminService) SpecialUsersMenu(chatID int64) {
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➕ Add Special User", "add_special"),
			tgbotapi.NewInlineKeyboardButtonData("➖ Remove Special User", "remove_special"),
		),
	)

	var sb strings.Builder
	sb.WriteString("🌟 <b>Special Users</b>\n━━━━━━━━━━━━━━━━━━\n")
	for _, u := range s.special.List() {
		fmt.Fprintf(&sb, "🆔 <code>%d</code> - %s\n", u.ID, u.Label)
	}
	s.msgr.SendKeyboard(chatID, sb.String(), kb)
}

// AddSpecial puts the user on the allow-list and pins their displayed
// balance to the unlimited sentinel.
func (s *AdminService) AddSpecial(chatID, uid int64, label string) {
	added, err := s.special.Add(uid, label)
	if err != nil {
		s.msgr.Send(chatID, msgError)
		return
	}
	if !added {
		s.msgr.Send(chatID, "❌ User is already a special user.")
		return
	}

	s.ledger.EnsureUser(uid)
	s.ledger.SetBalance(uid, entities.SpecialCredits)

	s.msgr.Send(chatID, fmt.Sprintf("✅ Successfully added %s (ID: %d) as a special user.", label, uid))
	if err := s.msgr.Send(uid, "🌟 You have been added as a special user with unlimited credits!"); err != nil {
		s.log.Warn("could not notify user", slog.Int64("user_id", uid), sl.Err(err))
	}
}

// RemoveSpecial takes the user off the allow-list and resets their balance
// to the normal default.
func (s *AdminService) RemoveSpecial(chatID, uid int64) {
	removed, err := s.special.Remove(uid)
	if err != nil {
		s.msgr.Send(chatID, msgError)
		return
	}
	if !removed {
		s.msgr.Send(chatID, "❌ User not found in special users list.")
		return
	}

	s.ledger.EnsureUser(uid)
	s.ledger.SetBalance(uid, entities.DefaultCredits)

	s.msgr.Send(chatID, fmt.Sprintf("✅ Successfully removed user %d from special users.", uid))
	if err := s.msgr.Send(uid, "❌ You have been removed from special users. Your credits have been reset to normal."); err != nil {
		s.log.Warn("could not notify user", slog.Int64("user_id", uid), sl.Err(err))
	}
}

// KnownUser reports whether a user row exists; the block flow refuses to
// block ids the bot has never seen.
func (s *AdminService) KnownUser(uid int64) bool {
	balance, err := s.ledger.GetBalance(uid)
	if err != nil {
		return false
	}
	if balance > 0 {
		return true
	}
	// Balance 0 is ambiguous: distinguish a real row from an unknown id.
	users, err := s.ledger.ListUsers()
	if err != nil {
		return false
	}
	for _, u := range users {
		if u.ID == uid {
			return true
		}
	}
	return false
}

func (s *AdminService) IsBlocked(uid int64) bool {
	blocked, err := s.ledger.IsBlocked(uid)
	return err == nil && blocked
}

func (s *AdminService) BlockUser(chatID, uid, byAdmin int64, reason string) {
	ok, err := s.ledger.Block(uid, byAdmin, reason)
	if err != nil || !ok {
		s.msgr.Send(chatID, "❌ Failed to block user.")
		return
	}
	s.msgr.Send(chatID, fmt.Sprintf("✅ User %d has been blocked successfully.\nReason: %s", uid, reason))
	if err := s.msgr.Send(uid, fmt.Sprintf("⚠️ Your account has been blocked by admin.\nReason: %s\n\nContact admin for more information.", reason)); err != nil {
		s.log.Warn("could not notify blocked user", slog.Int64("user_id", uid), sl.Err(err))
	}
}

func (s *AdminService) UnblockUser(chatID, uid int64) {
	ok, err := s.ledger.Unblock(uid)
	if err != nil || !ok {
		s.msgr.Send(chatID, "❌ Failed to unblock user.")
		return
	}
	s.msgr.Send(chatID, fmt.Sprintf("✅ User %d has been unblocked successfully.", uid))
	if err := s.msgr.Send(uid, "✅ Your account has been unblocked. You can now use the bot again."); err != nil {
		s.log.Warn("could not notify unblocked user", slog.Int64("user_id", uid), sl.Err(err))
	}
}

func (s *AdminService) BlockedUsers(chatID int64) {
	blocked, err := s.ledger.ListBlocked()
	if err != nil {
		s.msgr.Send(chatID, msgError)
		return
	}
	if len(blocked) == 0 {
		s.msgr.Send(chatID, "✅ No blocked users found.")
		return
	}

	var sb strings.Builder
	sb.WriteString("📋 <b>Blocked Users List:</b>\n\n")
	for _, b := range blocked {
		reason := b.Reason
		if reason == "" {
			reason = "No reason provided"
		}
		fmt.Fprintf(&sb, "🆔 <b>User ID:</b> %d\n", b.UserID)
		fmt.Fprintf(&sb, "👤 <b>Blocked By:</b> %d\n", b.BlockedBy)
		fmt.Fprintf(&sb, "📝 <b>Reason:</b> %s\n", reason)
		fmt.Fprintf(&sb, "📅 <b>Blocked At:</b> %s\n", b.BlockedAt.Format("2006-01-02 15:04:05"))
		sb.WriteString("━━━━━━━━━━━━━━━━━━\n")
	}
	s.msgr.SendLong(chatID, sb.String())
}
