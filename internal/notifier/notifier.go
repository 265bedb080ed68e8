package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gopkg.in/telebot.v4"

	"github.com/Houeta/price-sentinel/internal/models"
)

// Telegram sends price alerts to one configured chat. Delivery is
// best-effort: callers log send failures and keep going.
type Telegram struct {
	bot  API
	chat telebot.Recipient
	log  *slog.Logger
}

func NewTelegram(log *slog.Logger, token string, chatID int64, timeout time.Duration) (*Telegram, error) {
	bot, err := telebot.NewBot(telebot.Settings{
		Token:  token,
		Poller: &telebot.LongPoller{Timeout: timeout},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Telegram bot: %w", err)
	}
	log.Info("Authorized on account", "account", bot.Me.Username)

	return &Telegram{bot: bot, chat: telebot.ChatID(chatID), log: log}, nil
}

// NotifyNewProduct announces the first recorded price of a product.
func (t *Telegram) NotifyNewProduct(ctx context.Context, product models.Product, price float64) error {
	message := fmt.Sprintf(
		"🆕 *Now Tracking: %s*\n\nInitial Price: RM %.2f\n\n[View Product](%s)",
		product.Name, price, product.URL,
	)

	return t.send(ctx, message)
}

// NotifyPriceChange announces a notable price move.
func (t *Telegram) NotifyPriceChange(ctx context.Context, change models.PriceChange) error {
	emoji := "📈"
	if change.Direction == models.DirectionDown {
		emoji = "📉"
	}

	signedPct := change.Pct * 100
	if change.Direction == models.DirectionDown {
		signedPct = -signedPct
	}

	message := fmt.Sprintf(
		"%s *Price Alert: %s*\n\nOld Price: RM %.2f\nNew Price: RM %.2f\nChange: %+.2f%%\n\n[View Product](%s)",
		emoji, change.Product.Name, *change.OldPrice, change.NewPrice, signedPct, change.Product.URL,
	)

	return t.send(ctx, message)
}

func (t *Telegram) send(ctx context.Context, message string) error {
	t.log.DebugContext(ctx, "Sending Telegram alert", "chat", t.chat.Recipient())

	if _, err := t.bot.Send(t.chat, message, telebot.ModeMarkdown); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}

	return nil
}
