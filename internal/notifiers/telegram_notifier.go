package notifiers

import (
	"context"
	"fmt"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/ilindan-dev/safeguard/internal/config"
	"github.com/ilindan-dev/safeguard/internal/domain/model"
	"github.com/rs/zerolog"
)

// botSender is the part of tgbotapi.BotAPI the notifier uses.
type botSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier mirrors alerts to an operator chat via a Telegram bot.
type TelegramNotifier struct {
	bot    botSender
	chatID int64
	logger zerolog.Logger
}

// NewTelegramNotifier creates a new instance of TelegramNotifier.
func NewTelegramNotifier(cfg config.TelegramConfig, logger *zerolog.Logger) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot api: %w", err)
	}
	return &TelegramNotifier{
		bot:    bot,
		chatID: cfg.ChatID,
		logger: logger.With().Str("component", "telegram_notifier").Logger(),
	}, nil
}

// Notify implements the Notifier interface for Telegram.
func (n *TelegramNotifier) Notify(_ context.Context, e *model.AlertEvent) error {
	msg := tgbotapi.NewMessage(n.chatID, Subject(e)+"\n\n"+Summary(e))
	msg.DisableWebPagePreview = true

	if _, err := n.bot.Send(msg); err != nil {
		n.logger.Error().Err(err).Stringer("alert_id", e.AlertID).Msg("failed to send telegram message")
		return err
	}

	n.logger.Info().Stringer("alert_id", e.AlertID).Int64("chat_id", n.chatID).Msg("telegram message sent successfully")
	return nil
}
