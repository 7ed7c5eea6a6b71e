// internal/infra/telegram/client.go
package telegram

import (
	"errors"
	"fmt"

	"gopkg.in/telebot.v3"
)

// ErrNotPrivateChat is returned for group and channel chat IDs. Stage messages
// carry health details and only go to the patient's own chat.
var ErrNotPrivateChat = errors.New("refusing to send patient message outside a private chat")

// TelebotAdapter implements app.Messenger using the gopkg.in/telebot.v3 library.
type TelebotAdapter struct {
	bot *telebot.Bot
}

func NewTelebotAdapter(b *telebot.Bot) *TelebotAdapter {
	return &TelebotAdapter{bot: b}
}

// SendMessage sends a plain-text message to the patient's private chat.
// Telegram user IDs are positive; groups and channels use negative chat IDs.
func (tba *TelebotAdapter) SendMessage(patientChatID int64, text string, options *telebot.SendOptions) error {
	if patientChatID <= 0 {
		return fmt.Errorf("%w: chat %d", ErrNotPrivateChat, patientChatID)
	}
	if options == nil {
		options = &telebot.SendOptions{DisableWebPagePreview: true}
	}

	_, err := tba.bot.Send(&telebot.User{ID: patientChatID}, text, options)
	if err != nil {
		return fmt.Errorf("failed to send message to patient chat %d: %w", patientChatID, err)
	}
	return nil
}
