// Package notify delivers training outcomes to chat operators.
package notify

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"StockX/internal/domain/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramPublisher posts a message for every finished training run.
// Prediction events are too frequent for chat and are ignored.
type TelegramPublisher struct {
	bot        sender
	chatID     int64
	maxRetries int
	retryDelay time.Duration
}

func NewTelegramPublisher(botToken, chatID string) (*TelegramPublisher, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return newTelegramPublisher(bot, chatID)
}

func newTelegramPublisher(bot sender, chatID string) (*TelegramPublisher, error) {
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid chat id: %w", err)
	}
	return &TelegramPublisher{bot: bot, chatID: id, maxRetries: 3, retryDelay: time.Second}, nil
}

func (p *TelegramPublisher) PublishTraining(ctx context.Context, ev models.TrainingEvent) error {
	return p.send(ctx, formatTraining(ev))
}

func (p *TelegramPublisher) PublishPrediction(context.Context, models.PredictionEvent) error {
	return nil
}

func (p *TelegramPublisher) Close() error { return nil }

func (p *TelegramPublisher) send(ctx context.Context, text string) error {
	msg := tgbotapi.NewMessage(p.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2

	var lastErr error
	for i := 0; i < p.maxRetries; i++ {
		if _, err := p.bot.Send(msg); err == nil {
			return nil
		} else {
			lastErr = err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.retryDelay * time.Duration(i+1)):
		}
	}
	return fmt.Errorf("telegram send failed after %d attempts: %w", p.maxRetries, lastErr)
}

func formatTraining(ev models.TrainingEvent) string {
	var b strings.Builder
	if ev.Status == models.StatusSuccess {
		fmt.Fprintf(&b, "✅ *%s model trained*\n", escapeMarkdownV2(ev.Symbol))
		fmt.Fprintf(&b, "epochs: %d, samples: %d\n", ev.Epochs, ev.Samples)
		b.WriteString(escapeMarkdownV2(fmt.Sprintf("loss: %.6f, val_loss: %.6f", ev.Loss, ev.ValLoss)))
	} else {
		fmt.Fprintf(&b, "⚠️ *%s training failed*\n", escapeMarkdownV2(ev.Symbol))
		fmt.Fprintf(&b, "`%s`", escapeMarkdownV2(ev.Error))
	}
	fmt.Fprintf(&b, "\nsource: %s, took %s", escapeMarkdownV2(ev.Source),
		escapeMarkdownV2((time.Duration(ev.DurationMs) * time.Millisecond).String()))
	return b.String()
}

var markdownV2Replacer = strings.NewReplacer(
	`\`, `\\`, "_", `\_`, "*", `\*`, "[", `\[`, "]", `\]`, "(", `\(`, ")", `\)`,
	"~", `\~`, "`", "\\`", ">", `\>`, "#", `\#`, "+", `\+`, "-", `\-`, "=", `\=`,
	"|", `\|`, "{", `\{`, "}", `\}`, ".", `\.`, "!", `\!`,
)

func escapeMarkdownV2(s string) string {
	return markdownV2Replacer.Replace(s)
}
