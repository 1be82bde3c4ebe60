package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"persona-selfie/api/internal/scene"
	"persona-selfie/api/internal/selfie"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSender struct {
	sent []tgbotapi.Chattable
	err  error
}

func (m *mockSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	m.sent = append(m.sent, c)
	return tgbotapi.Message{}, m.err
}

var pub = selfie.Publication{
	BotID:   "goa_artist_female",
	Name:    "Goa Artist Female",
	Email:   "a@b.c",
	Image:   []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDRx"),
	Context: scene.Context{Emotion: "happy", Location: "a beach", Action: "painting"},
}

func TestPublish(t *testing.T) {
	s := &mockSender{}
	tg := &Telegram{Bot: s, ChatID: 42}

	require.NoError(t, tg.Publish(context.Background(), pub))
	require.Len(t, s.sent, 1)
	photo, ok := s.sent[0].(tgbotapi.PhotoConfig)
	require.True(t, ok)
	assert.Equal(t, int64(42), photo.ChatID)
	fb, ok := photo.File.(tgbotapi.FileBytes)
	require.True(t, ok)
	assert.Equal(t, "selfie.png", fb.Name)
	assert.Equal(t, pub.Image, fb.Bytes)
	assert.Equal(t, "Goa Artist Female (goa_artist_female)\nfor: a@b.c\nemotion: happy\nlocation: a beach\naction: painting", photo.Caption)
}

func TestPublish_Errors(t *testing.T) {
	tg := &Telegram{Bot: &mockSender{err: errors.New("forbidden")}, ChatID: 1}
	assert.ErrorContains(t, tg.Publish(context.Background(), pub), "forbidden")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := &mockSender{}
	assert.ErrorIs(t, (&Telegram{Bot: s}).Publish(ctx, pub), context.Canceled)
	assert.Empty(t, s.sent)
}

func TestCaption_Truncated(t *testing.T) {
	p := pub
	p.Context.Action = strings.Repeat("я", 2000)
	c := Caption(p)
	assert.Equal(t, captionLimit, utf8.RuneCountInString(c))
	assert.True(t, strings.HasSuffix(c, "…"))
}
