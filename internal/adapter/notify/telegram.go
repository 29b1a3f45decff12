package notify

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/semmidev/dbhook/internal/domain"
)

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram posts a short summary of every run to one chat.
type Telegram struct {
	bot    sender
	chatID int64
}

func NewTelegram(botToken, chatID string) (*Telegram, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(chatID), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid telegram chat id %q: %w", chatID, err)
	}

	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	return &Telegram{bot: bot, chatID: id}, nil
}

func (t *Telegram) Name() string {
	return "telegram"
}

func (t *Telegram) Report(ctx context.Context, outcome domain.Outcome) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(t.chatID, formatMessage(outcome))
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram notification: %w", err)
	}
	return nil
}

func formatMessage(o domain.Outcome) string {
	var b strings.Builder

	title := "Backup"
	if o.Action == domain.ActionRestore {
		title = "Restore"
	}

	if o.Succeeded() {
		fmt.Fprintf(&b, "✅ %s Completed\n\n", title)
	} else {
		fmt.Fprintf(&b, "❌ %s Failed\n\n", title)
	}

	if o.ApplicationName != "" {
		fmt.Fprintf(&b, "📦 Application: %s\n", o.ApplicationName)
	}
	if o.Key != "" {
		fmt.Fprintf(&b, "📁 Key: %s\n", o.Key)
	}
	if o.DeploymentID != "" {
		fmt.Fprintf(&b, "🚀 Deployment: %s\n", o.DeploymentID)
	}

	if o.Succeeded() {
		fmt.Fprintf(&b, "📊 Size: %s\n", humanize.IBytes(uint64(o.Stats.Bytes)))
		fmt.Fprintf(&b, "⏱ Duration: %s", o.Stats.Duration.Round(10*time.Millisecond))
	} else {
		fmt.Fprintf(&b, "⚠️ Error: %v", o.Err)
	}

	return b.String()
}
