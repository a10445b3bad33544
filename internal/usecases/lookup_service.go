package usecases

import (
	"encoding/json"
	"log/slog"
	"regexp"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"infobot/internal/interfaces"
	"infobot/internal/repository"
)

const (
	msgBlocked = "⚠️ <b>Your account has been blocked.</b>\n\nPlease contact admin for more information."
	msgNoCred  = "❌ <b>No credits left.</b>\n\nYou can purchase more credits using the button below."
	msgError   = "An error occurred. Please try again later."
)

// JSONFetcher is what LookupService needs from the resilient fetcher.
type JSONFetcher interface {
	FetchJSON(url string, timeout time.Duration) (json.RawMessage, bool)
}

// Messenger extends the outbound port with a deletable progress line.
type Messenger interface {
	interfaces.Messenger
	SendProgress(chatID int64, text string) (int, error)
	SendReplyKeyboard(chatID int64, text string, kb tgbotapi.ReplyKeyboardMarkup) error
}

// Provider describes one lookup feature: how to validate the identifier,
// where to send it, and how to render the response.
type Provider struct {
	Button   string // reply-keyboard label that triggers it
	Category string // history tag
	Prompt   string // sent when asking for the identifier
	Progress string
	Empty    string // sent (after refund) when nothing was found

	Pattern   *regexp.Regexp
	Invalid   string
	Normalize func(string) string // optional, e.g. uppercase RC numbers

	URL     func(query string) string
	Timeout time.Duration

	// Format turns the raw payload into one or more HTML messages. The
	// second result is false when the payload carries no usable records;
	// the caller then refunds and sends Empty.
	Format func(raw json.RawMessage, query string) ([]string, bool)
}

// LookupService owns the charge → fetch → format → history flow shared by
// every lookup feature. The charge-implies-refund-on-failure pairing lives
// here and nowhere else.
type LookupService struct {
	ledger    *repository.CreditLedger
	fetcher   JSONFetcher
	msgr      Messenger
	log       *slog.Logger
	providers []*Provider
}

func NewLookupService(ledger *repository.CreditLedger, fetcher JSONFetcher, msgr Messenger, log *slog.Logger) *LookupService {
	return &LookupService{
		ledger:    ledger,
		fetcher:   fetcher,
		msgr:      msgr,
		log:       log,
		providers: lookupProviders(),
	}
}

// Providers returns the feature table in menu order.
func (s *LookupService) Providers() []*Provider {
	return s.providers
}

// ByButton finds the provider a reply-keyboard press refers to.
func (s *LookupService) ByButton(label string) *Provider {
	for _, p := range s.providers {
		if p.Button == label {
			return p
		}
	}
	return nil
}

// Run executes one lookup end to end. Validation happens before any charge,
// so rejected input costs nothing; every charged path that yields no data
// refunds before replying.
func (s *LookupService) Run(uid, chatID int64, p *Provider, input string) {
	query := input
	if p.Normalize != nil {
		query = p.Normalize(query)
	}
	if !p.Pattern.MatchString(query) {
		s.msgr.Send(chatID, p.Invalid)
		return
	}

	switch s.ledger.ChargeForLookup(uid) {
	case repository.ChargeBlocked:
		s.msgr.Send(chatID, msgBlocked)
		return
	case repository.ChargeNoCredits:
		kb := tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("💳 Buy Credits", "buy_credits"),
			),
		)
		s.msgr.SendKeyboard(chatID, msgNoCred, kb)
		return
	case repository.ChargeError:
		s.msgr.Send(chatID, msgError)
		return
	}

	progressID, _ := s.msgr.SendProgress(chatID, p.Progress)

	raw, ok := s.fetcher.FetchJSON(p.URL(query), p.Timeout)

	if progressID != 0 {
		s.msgr.Delete(chatID, progressID)
	}

	if !ok {
		s.refund(uid)
		s.msgr.Send(chatID, p.Empty)
		return
	}

	msgs, found := p.Format(raw, query)
	if !found {
		s.refund(uid)
		s.msgr.Send(chatID, p.Empty)
		return
	}

	for _, m := range msgs {
		s.msgr.SendLong(chatID, m)
	}
	s.ledger.RecordHistory(uid, query, p.Category)
}

func (s *LookupService) refund(uid int64) {
	if err := s.ledger.Refund(uid); err != nil {
		s.log.Error("refund failed", slog.Int64("user_id", uid))
	}
}
