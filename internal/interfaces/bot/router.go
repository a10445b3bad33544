package bot

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"infobot/internal/infrastructure"
	"infobot/internal/lib/sl"
	"infobot/internal/usecases"
)

// Router receives Telegram updates and dispatches them to the services.
// Every free-text message is either a menu press or the answer to a prompt
// armed in the user's session.
type Router struct {
	tg       *infrastructure.TelegramClient
	lookups  *usecases.LookupService
	account  *usecases.AccountService
	admin    *usecases.AdminService
	sessions *SessionManager
	adminID  int64
	log      *slog.Logger
}

func NewRouter(tg *infrastructure.TelegramClient, lookups *usecases.LookupService, account *usecases.AccountService, admin *usecases.AdminService, adminID int64, log *slog.Logger) *Router {
	return &Router{
		tg:       tg,
		lookups:  lookups,
		account:  account,
		admin:    admin,
		sessions: NewSessionManager(),
		adminID:  adminID,
		log:      log,
	}
}

// Run blocks on long polling until the updates channel closes.
func (r *Router) Run() error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30

	updates := r.tg.Bot.GetUpdatesChan(cfg)
	r.log.Info("bot polling started", slog.String("username", r.tg.Bot.Self.UserName))

	for update := range updates {
		go r.handle(update)
	}
	return errors.New("updates channel closed")
}

func (r *Router) handle(update tgbotapi.Update) {
	var chatID int64
	switch {
	case update.Message != nil:
		chatID = update.Message.Chat.ID
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil:
		chatID = update.CallbackQuery.Message.Chat.ID
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("handler panic", slog.Any("panic", rec))
			if chatID != 0 {
				r.tg.Send(chatID, "⚠️ An error occurred. Please try again later.")
			}
		}
	}()

	switch {
	case update.Message != nil:
		r.handleMessage(update.Message)
	case update.CallbackQuery != nil:
		r.handleCallback(update.CallbackQuery)
	}
}

func (r *Router) handleMessage(msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}
	uid := msg.From.ID
	chatID := msg.Chat.ID
	isAdmin := uid == r.adminID
	text := strings.TrimSpace(msg.Text)
	sess := r.sessions.GetOrCreate(uid)

	if text == "/start" {
		sess.Reset()
		r.account.Start(uid, chatID, isAdmin)
		return
	}

	// Known button labels beat a pending prompt so a stale prompt never
	// swallows a menu press.
	if r.routeButton(sess, uid, chatID, text, isAdmin) {
		return
	}

	state, provider, blockUID := sess.Take()
	if state == pendingNone {
		return
	}
	r.consume(sess, state, provider, blockUID, uid, chatID, text, isAdmin)
}

func (r *Router) routeButton(sess *UserSession, uid, chatID int64, text string, isAdmin bool) bool {
	if p := r.lookups.ByButton(text); p != nil {
		if !sess.AllowClick() {
			return true
		}
		sess.ExpectLookup(text)
		r.tg.Send(chatID, p.Prompt)
		return true
	}

	switch text {
	case "💳 My Credits":
		r.account.MyCredits(uid, chatID)
	case "💳 Buy Credits":
		r.account.BuyCredits(uid, chatID)
	case "🎁 Get Daily Credits":
		r.account.DailyCredits(uid, chatID)
	case "📜 My History":
		r.account.MyHistory(uid, chatID)
	case "📞 Contact Admin":
		r.account.ContactAdmin(chatID)
	case "🆔 My ID":
		r.account.MyID(uid, chatID)
	case "🔙 Back to Main Menu":
		sess.Reset()
		r.account.Start(uid, chatID, isAdmin)
	default:
		return r.routeAdminButton(sess, chatID, text, isAdmin)
	}
	return true
}

// routeAdminButton handles admin panel presses. Non-admins pressing these
// are silently ignored, matching the rest of the admin surface.
func (r *Router) routeAdminButton(sess *UserSession, chatID int64, text string, isAdmin bool) bool {
	switch text {
	case "⚙️ Admin Panel", "💳 Add Credits", "💸 Remove Credits", "👥 All Users",
		"📋 User History", "📢 Broadcast", "🌟 Special Users", "🚫 Block User",
		"✅ Unblock User", "📋 Blocked Users":
	default:
		return false
	}
	if !isAdmin {
		return true
	}

	switch text {
	case "⚙️ Admin Panel":
		r.tg.SendReplyKeyboard(chatID, "⚙️ <b>Admin Panel</b>\n\nChoose an option:", adminPanelKeyboard())
	case "💳 Add Credits":
		sess.Expect(pendingAddCredits)
		r.tg.Send(chatID, "💳 Send user ID and credits to add (format: user_id credits):")
	case "💸 Remove Credits":
		sess.Expect(pendingRemoveCredits)
		r.tg.Send(chatID, "💸 Send user ID and credits to remove (format: user_id credits):")
	case "👥 All Users":
		r.admin.AllUsers(chatID)
	case "📋 User History":
		sess.Expect(pendingUserHistory)
		r.tg.Send(chatID, "📋 Send user ID to view history:")
	case "📢 Broadcast":
		sess.Expect(pendingBroadcast)
		r.tg.Send(chatID, "📢 Send the message to broadcast to all users:")
	case "🌟 Special Users":
		r.admin.SpecialUsersMenu(chatID)
	case "🚫 Block User":
		sess.Expect(pendingBlockID)
		r.tg.Send(chatID, "🚫 Send user ID to block:")
	case "✅ Unblock User":
		sess.Expect(pendingUnblock)
		r.tg.Send(chatID, "✅ Send user ID to unblock:")
	case "📋 Blocked Users":
		r.admin.BlockedUsers(chatID)
	}
	return true
}

func (r *Router) consume(sess *UserSession, state pending, provider string, blockUID, uid, chatID int64, text string, isAdmin bool) {
	// Admin-armed states never fire for anybody else, but a session could
	// in principle be armed and the admin id reconfigured between restarts.
	if state != pendingLookup && !isAdmin {
		return
	}

	switch state {
	case pendingLookup:
		if p := r.lookups.ByButton(provider); p != nil {
			r.lookups.Run(uid, chatID, p, text)
		}

	case pendingAddCredits, pendingRemoveCredits:
		target, amount, ok := parseIDAmount(text)
		if !ok {
			r.tg.Send(chatID, "❌ Invalid format. Please use: user_id credits")
			return
		}
		if amount <= 0 {
			r.tg.Send(chatID, "❌ Credits must be a positive number.")
			return
		}
		r.admin.AdjustCredits(chatID, target, amount, state == pendingRemoveCredits)

	case pendingUserHistory:
		target, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			r.tg.Send(chatID, "❌ Invalid user ID.")
			return
		}
		r.admin.UserHistory(chatID, target)

	case pendingBroadcast:
		if text == "" {
			r.tg.Send(chatID, "❌ Message cannot be empty.")
			return
		}
		r.admin.Broadcast(chatID, text)

	case pendingAddSpecial:
		parts := strings.SplitN(text, " ", 2)
		if len(parts) < 2 {
			r.tg.Send(chatID, "❌ Invalid format. Please use: user_id name")
			return
		}
		target, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			r.tg.Send(chatID, "❌ Invalid user ID.")
			return
		}
		r.admin.AddSpecial(chatID, target, strings.TrimSpace(parts[1]))

	case pendingRemoveSpecial:
		target, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			r.tg.Send(chatID, "❌ Invalid user ID.")
			return
		}
		r.admin.RemoveSpecial(chatID, target)

	case pendingBlockID:
		target, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			r.tg.Send(chatID, "❌ Invalid user ID.")
			return
		}
		if !r.admin.KnownUser(target) {
			r.tg.Send(chatID, "❌ User not found in database.")
			return
		}
		if r.admin.IsBlocked(target) {
			r.tg.Send(chatID, "❌ User is already blocked.")
			return
		}
		sess.ExpectBlockReason(target)
		r.tg.Send(chatID, "🚫 Please provide a reason for blocking (optional):")

	case pendingBlockReason:
		r.admin.BlockUser(chatID, blockUID, uid, text)

	case pendingUnblock:
		target, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			r.tg.Send(chatID, "❌ Invalid user ID.")
			return
		}
		if !r.admin.IsBlocked(target) {
			r.tg.Send(chatID, "❌ User is not blocked.")
			return
		}
		r.admin.UnblockUser(chatID, target)
	}
}

func (r *Router) handleCallback(cq *tgbotapi.CallbackQuery) {
	if cq.From == nil || cq.Message == nil {
		return
	}
	uid := cq.From.ID
	chatID := cq.Message.Chat.ID

	if _, err := r.tg.Bot.Request(tgbotapi.NewCallback(cq.ID, "")); err != nil {
		r.log.Warn("answer callback failed", sl.Err(err))
	}

	switch {
	case cq.Data == "buy_credits":
		r.account.BuyCredits(uid, chatID)
	case strings.HasPrefix(cq.Data, "buy_"):
		r.account.PaymentInstructions(uid, chatID, cq.Data)
	case cq.Data == "add_special":
		if uid != r.adminID {
			return
		}
		r.sessions.GetOrCreate(uid).Expect(pendingAddSpecial)
		r.tg.Send(chatID, "➕ Send user ID and name to add as special user (format: user_id name):")
	case cq.Data == "remove_special":
		if uid != r.adminID {
			return
		}
		r.sessions.GetOrCreate(uid).Expect(pendingRemoveSpecial)
		r.tg.Send(chatID, "➖ Send user ID to remove from special users:")
	}
}

func adminPanelKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("💳 Add Credits"),
			tgbotapi.NewKeyboardButton("💸 Remove Credits"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("👥 All Users"),
			tgbotapi.NewKeyboardButton("📋 User History"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("📢 Broadcast"),
			tgbotapi.NewKeyboardButton("🌟 Special Users"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("🚫 Block User"),
			tgbotapi.NewKeyboardButton("✅ Unblock User"),
			tgbotapi.NewKeyboardButton("📋 Blocked Users"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("🔙 Back to Main Menu"),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

// parseIDAmount parses the "user_id credits" admin input format.
func parseIDAmount(text string) (int64, int, bool) {
	parts := strings.Fields(text)
	if len(parts) != 2 {
		return 0, 0, false
	}
	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, 0, false
	}
	amount, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false
	}
	return id, amount, true
}
