package usecases

import (
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	qrcode "github.com/skip2/go-qrcode"

	"infobot/internal/entities"
	"infobot/internal/lib/sl"
	"infobot/internal/repository"
)

// AccountService covers the user-facing non-lookup features: /start, credit
// balance, buying, the daily grant, history and contact info.
type AccountService struct {
	ledger  *repository.CreditLedger
	special *repository.SpecialUsers
	lookups *LookupService
	msgr    Messenger
	log     *slog.Logger

	adminID    int64
	upiAddress string
}

func NewAccountService(ledger *repository.CreditLedger, special *repository.SpecialUsers, lookups *LookupService, msgr Messenger, log *slog.Logger, adminID int64, upiAddress string) *AccountService {
	return &AccountService{
		ledger:     ledger,
		special:    special,
		lookups:    lookups,
		msgr:       msgr,
		log:        log,
		adminID:    adminID,
		upiAddress: upiAddress,
	}
}

// Start is the /start flow: lazy row creation, balance pinning for special
// users, the daily grant, then the main menu.
func (s *AccountService) Start(uid, chatID int64, isAdmin bool) {
	blocked, err := s.ledger.IsBlocked(uid)
	if err != nil {
		s.msgr.Send(chatID, msgError)
		return
	}
	if blocked {
		s.msgr.Send(chatID, msgBlocked)
		return
	}

	if err := s.ledger.EnsureUser(uid); err != nil {
		s.msgr.Send(chatID, msgError)
		return
	}

	if s.special.IsSpecial(uid) {
		s.ledger.SetBalance(uid, entities.SpecialCredits)
	} else {
		if _, err := s.ledger.GrantDailyBonusIfDue(uid); err != nil {
			s.log.Warn("daily grant on start failed", slog.Int64("user_id", uid), sl.Err(err))
		}
	}

	credits, _ := s.ledger.GetBalance(uid)

	var services strings.Builder
	for _, p := range s.lookups.Providers() {
		services.WriteString(p.Button)
		services.WriteString("\n")
	}

	text := fmt.Sprintf(`━━━━━━━━━━━━━━━━━━
🤖 <b>InfoBot</b>
<i>Your Digital Info Assistant 🚀</i>
━━━━━━━━━━━━━━━━━━

🔍 <b>Available Services:</b>
%s
💳 <b>Your Credits:</b> <code>%d</code>
🎁 <b>Daily Credits:</b> Get %d free credits every day!
💰 <b>Buy More:</b> Use "Buy Credits" button for special offers!

⚠️ Each search costs <b>1 credit</b>.
Credits are refunded if no results found.
For recharge, use "Buy Credits" button or contact admin.

✅ <b>Choose an option below to begin!</b>

━━━━━━━━━━━━━━━━━━
© InfoBot | All Rights Reserved
📞 <a href="tg://user?id=%d">Contact Admin</a>
━━━━━━━━━━━━━━━━━━`, services.String(), credits, entities.DailyBonus, s.adminID)

	s.msgr.SendReplyKeyboard(chatID, text, s.MainMenu(isAdmin))
}

// MainMenu builds the persistent reply keyboard: lookup buttons two per row,
// then the account row, plus the admin row when applicable.
func (s *AccountService) MainMenu(isAdmin bool) tgbotapi.ReplyKeyboardMarkup {
	var rows [][]tgbotapi.KeyboardButton
	var row []tgbotapi.KeyboardButton
	for _, p := range s.lookups.Providers() {
		row = append(row, tgbotapi.NewKeyboardButton(p.Button))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, tgbotapi.NewKeyboardButtonRow(
		tgbotapi.NewKeyboardButton("💳 My Credits"),
		tgbotapi.NewKeyboardButton("💳 Buy Credits"),
		tgbotapi.NewKeyboardButton("🎁 Get Daily Credits"),
	))
	rows = append(rows, tgbotapi.NewKeyboardButtonRow(
		tgbotapi.NewKeyboardButton("📜 My History"),
		tgbotapi.NewKeyboardButton("📞 Contact Admin"),
		tgbotapi.NewKeyboardButton("🆔 My ID"),
	))
	if isAdmin {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("⚙️ Admin Panel"),
		))
	}
	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	return kb
}

func (s *AccountService) MyCredits(uid, chatID int64) {
	credits, err := s.ledger.GetBalance(uid)
	if err != nil {
		s.msgr.Send(chatID, msgError)
		return
	}
	if s.special.IsSpecial(uid) {
		s.msgr.Send(chatID, fmt.Sprintf("💳 Your Credits: <b>%d</b>\n\n🌟 <i>You are a special user with unlimited searches!</i>", credits))
		return
	}
	s.msgr.Send(chatID, fmt.Sprintf("💳 Your Credits: <b>%d</b>", credits))
}

// BuyCredits shows the pricing tiers with a pack keyboard and a scannable
// UPI QR code for the payment address.
func (s *AccountService) BuyCredits(uid, chatID int64) {
	credits, _ := s.ledger.GetBalance(uid)

	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("💎 100 Credits - ₹200", "buy_100")),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("💎 200 Credits - ₹300", "buy_200")),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("💎 500 Credits - ₹500", "buy_500")),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🔄 Custom Amount", "buy_custom")),
	)

	text := fmt.Sprintf(`💳 <b>Credit Packs &amp; Pricing</b>
━━━━━━━━━━━━━━━━━━━━━━━

💎 <b>1 – 100 Credits</b>
👉 ₹2 per Credit

💎 <b>101 – 499 Credits</b>
👉 ₹1.5 per Credit

💎 <b>500+ Credits</b>
👉 ₹1 per Credit

━━━━━━━━━━━━━━━━━━━━━━━
📥 <b>Payment Method:</b>
UPI → <code>%s</code>

⚠️ After payment, send screenshot to admin for quick approval.

💳 <b>Your Current Credits:</b> %d`, s.upiAddress, credits)

	s.msgr.SendKeyboard(chatID, text, kb)

	png, err := qrcode.Encode("upi://pay?pa="+s.upiAddress+"&pn=InfoBot", qrcode.Medium, 256)
	if err != nil {
		s.log.Error("qr encode failed", sl.Err(err))
		return
	}
	if err := s.msgr.SendPhoto(chatID, png, "📲 Scan to pay via UPI"); err != nil {
		s.log.Warn("qr send failed", slog.Int64("chat_id", chatID), sl.Err(err))
	}
}

// PaymentInstructions answers a pack selection callback.
func (s *AccountService) PaymentInstructions(uid, chatID int64, pack string) {
	var amount string
	switch pack {
	case "buy_100":
		amount = "100 Credits for ₹200"
	case "buy_200":
		amount = "200 Credits for ₹300"
	case "buy_500":
		amount = "500 Credits for ₹500"
	default:
		s.msgr.Send(chatID, "Please contact admin directly for custom credit amounts.")
		return
	}

	s.msgr.Send(chatID, fmt.Sprintf(`💳 <b>Payment Instructions</b>
━━━━━━━━━━━━━━━━━━━━━━━

You've selected: %s

📥 <b>Payment Method:</b>
UPI → <code>%s</code>

⚠️ <b>Steps:</b>
1. Send payment of the selected amount
2. Take a screenshot of the payment confirmation
3. Send the screenshot to admin with your user ID: <code>%d</code>
4. Admin will add credits to your account after verification

Thank you for your purchase!`, amount, s.upiAddress, uid))
}

func (s *AccountService) DailyCredits(uid, chatID int64) {
	if err := s.ledger.EnsureUser(uid); err != nil {
		s.msgr.Send(chatID, msgError)
		return
	}

	if s.special.IsSpecial(uid) {
		s.msgr.Send(chatID, "🌟 You are a special user with unlimited credits!")
		return
	}

	granted, err := s.ledger.GrantDailyBonusIfDue(uid)
	if err != nil {
		s.msgr.Send(chatID, msgError)
		return
	}
	if granted {
		credits, _ := s.ledger.GetBalance(uid)
		s.msgr.Send(chatID, fmt.Sprintf("✅ You have received %d daily credits!\n💳 Your current balance: %d", entities.DailyBonus, credits))
		return
	}

	last, _ := s.ledger.LastGrantDate(uid)
	if last == "" {
		last = "Never"
	}
	s.msgr.Send(chatID, fmt.Sprintf("❌ You have already received your daily credits today.\n📅 Last credited: %s\n\nPlease try again tomorrow.", last))
}

func (s *AccountService) MyHistory(uid, chatID int64) {
	entries, err := s.ledger.History(uid, 0)
	if err != nil {
		s.msgr.Send(chatID, msgError)
		return
	}
	if len(entries) == 0 {
		s.msgr.Send(chatID, "❌ No search history found.")
		return
	}

	var sb strings.Builder
	sb.WriteString("📜 <b>Your Complete Search History:</b>\n\n")
	for _, e := range entries {
		fmt.Fprintf(&sb, "[%s] (%s) %s\n", e.At.Format("2006-01-02 15:04:05"), e.Category, e.Query)
	}
	s.msgr.SendLong(chatID, sb.String())
}

func (s *AccountService) MyID(uid, chatID int64) {
	s.msgr.Send(chatID, fmt.Sprintf("🆔 Your Telegram ID: <code>%d</code>", uid))
}

func (s *AccountService) ContactAdmin(chatID int64) {
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("📞 Contact Admin", fmt.Sprintf("tg://user?id=%d", s.adminID)),
		),
	)
	s.msgr.SendKeyboard(chatID, "Click below to contact admin 👇", kb)
}
