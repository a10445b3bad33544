package infrastructure

import (
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"infobot/internal/lib/sl"
)

// Telegram caps messages at 4096 chars; stay under it.
const maxMessageLen = 4000

type TelegramClient struct {
	Bot *tgbotapi.BotAPI
	log *slog.Logger
}

func NewTelegramClient(token string, log *slog.Logger) (*TelegramClient, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &TelegramClient{Bot: bot, log: log}, nil
}

func (t *TelegramClient) Send(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	_, err := t.Bot.Send(msg)
	return err
}

func (t *TelegramClient) SendKeyboard(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = kb
	_, err := t.Bot.Send(msg)
	return err
}

func (t *TelegramClient) SendReplyKeyboard(chatID int64, text string, kb tgbotapi.ReplyKeyboardMarkup) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	msg.ReplyMarkup = kb
	_, err := t.Bot.Send(msg)
	return err
}

// SendLong splits oversized texts into chunks below the transport limit.
// Split points are rune boundaries, not tag boundaries, which matches what
// the bot always did; Telegram tolerates it.
func (t *TelegramClient) SendLong(chatID int64, text string) {
	runes := []rune(text)
	for len(runes) > 0 {
		n := maxMessageLen
		if len(runes) < n {
			n = len(runes)
		}
		if err := t.Send(chatID, string(runes[:n])); err != nil {
			t.log.Error("send_long failed", slog.Int64("chat_id", chatID), sl.Err(err))
			return
		}
		runes = runes[n:]
	}
}

func (t *TelegramClient) SendPhoto(chatID int64, png []byte, caption string) error {
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "qr.png", Bytes: png})
	photo.Caption = caption
	photo.ParseMode = tgbotapi.ModeHTML
	_, err := t.Bot.Send(photo)
	return err
}

// Delete is best-effort; progress messages may already be gone.
func (t *TelegramClient) Delete(chatID int64, messageID int) {
	t.Bot.Request(tgbotapi.NewDeleteMessage(chatID, messageID))
}

// SendProgress sends a transient status line and returns its message id so
// the caller can delete it once results arrive.
func (t *TelegramClient) SendProgress(chatID int64, text string) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	sent, err := t.Bot.Send(msg)
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}
