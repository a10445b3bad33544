package interfaces

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Messenger is the outbound side of the chat transport. Feature handlers
// depend on this instead of the concrete Telegram client so they can be
// tested without the network.
type Messenger interface {
	Send(chatID int64, text string) error
	SendKeyboard(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) error
	SendLong(chatID int64, text string)
	SendPhoto(chatID int64, png []byte, caption string) error
	Delete(chatID int64, messageID int)
}
