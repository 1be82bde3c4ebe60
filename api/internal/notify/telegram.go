package notify

import (
	"context"
	"fmt"
	"strings"

	"persona-selfie/api/internal/selfie"
	"persona-selfie/api/internal/util"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// captionLimit: лимит подписи к фото в Telegram.
const captionLimit = 1024

// Sender is the part of *tgbotapi.BotAPI we use.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram posts generated selfies into a chat.
type Telegram struct {
	Bot    Sender
	ChatID int64
}

func NewTelegram(token string, chatID int64) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	bot.Debug = false
	return &Telegram{Bot: bot, ChatID: chatID}, nil
}

func (t *Telegram) Publish(ctx context.Context, p selfie.Publication) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name := "selfie" + util.ExtForMIME(util.SniffImageMIME(p.Image))
	msg := tgbotapi.NewPhoto(t.ChatID, tgbotapi.FileBytes{Name: name, Bytes: p.Image})
	msg.Caption = Caption(p)
	if _, err := t.Bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send photo: %w", err)
	}
	return nil
}

func Caption(p selfie.Publication) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s)\n", p.Name, p.BotID)
	if p.Email != "" {
		fmt.Fprintf(&b, "for: %s\n", p.Email)
	}
	fmt.Fprintf(&b, "emotion: %s\nlocation: %s\naction: %s", p.Context.Emotion, p.Context.Location, p.Context.Action)
	s := b.String()
	if r := []rune(s); len(r) > captionLimit {
		s = string(r[:captionLimit-1]) + "…"
	}
	return s
}
