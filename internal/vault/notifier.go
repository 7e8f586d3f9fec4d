package vault

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier delivers best-effort status messages to the originating chat.
// Implementations must be safe to call concurrently; failures never gate
// the pipeline.
type Notifier interface {
	// Send posts a new message and returns its transport-assigned id.
	Send(chatID int64, replyTo int, text string) (int, error)
	// Edit replaces the text of a previously sent message in place.
	Edit(chatID int64, messageID int, text string) error
}

type telegramNotifier struct {
	bot *tgbotapi.BotAPI
}

// NewTelegramNotifier wraps a Telegram bot as a Notifier. Status text is
// sent as Markdown.
func NewTelegramNotifier(bot *tgbotapi.BotAPI) Notifier {
	return &telegramNotifier{bot: bot}
}

func (n *telegramNotifier) Send(chatID int64, replyTo int, text string) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if replyTo > 0 {
		msg.ReplyToMessageID = replyTo
	}
	sent, err := n.bot.Send(msg)
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

func (n *telegramNotifier) Edit(chatID int64, messageID int, text string) error {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeMarkdown
	_, err := n.bot.Send(edit)
	return err
}
