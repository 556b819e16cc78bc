package telegram

import (
	"context"
	"fmt"

	"vantry/internal/config"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// Notifier pushes composed purchase orders to the configured manager
// chats.
type Notifier struct {
	bot     *tgbotapi.BotAPI
	chatIDs []int64
	logger  *zerolog.Logger
}

func NewNotifier(cfg config.TelegramConfig, logger *zerolog.Logger) (*Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	logger.Info().Str("bot", bot.Self.UserName).Int("chats", len(cfg.ChatIDs)).Msg("telegram notifier ready")
	return &Notifier{bot: bot, chatIDs: cfg.ChatIDs, logger: logger}, nil
}

// SendOrder delivers the order message to every configured chat. One
// failed chat fails the whole send so the task gets retried.
func (n *Notifier) SendOrder(ctx context.Context, message string) error {
	for _, chatID := range n.chatIDs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		msg := tgbotapi.NewMessage(chatID, message)
		if _, err := n.bot.Send(msg); err != nil {
			return fmt.Errorf("failed to send order to chat %d: %w", chatID, err)
		}
		n.logger.Debug().Int64("chat_id", chatID).Msg("order notification sent")
	}
	return nil
}
