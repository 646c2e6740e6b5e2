package notify

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/alberto-moreno-sa/notion-blog/internal/buildlog"
)

// Notifier reports finished builds.
type Notifier interface {
	BuildFinished(ctx context.Context, e buildlog.Entry) error
}

// Nop discards every notification.
type Nop struct{}

func (Nop) BuildFinished(context.Context, buildlog.Entry) error { return nil }

// Telegram sends build reports to a single chat.
type Telegram struct {
	Bot    *tgbotapi.BotAPI
	ChatID int64
}

func NewTelegram(token, chatIDStr string) (*Telegram, error) {
	return newTelegram(token, chatIDStr, tgbotapi.APIEndpoint)
}

func newTelegram(token, chatIDStr, endpoint string) (*Telegram, error) {
	chatID, err := strconv.ParseInt(chatIDStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid chat id: %v", err)
	}

	bot, err := tgbotapi.NewBotAPIWithClient(token, endpoint, &http.Client{Timeout: 15 * time.Second})
	if err != nil {
		return nil, err
	}
	return &Telegram{Bot: bot, ChatID: chatID}, nil
}

// BuildFinished sends the build summary. The bot API takes no context, so
// the send keeps running in the background when ctx ends first; the HTTP
// client timeout bounds it.
func (t *Telegram) BuildFinished(ctx context.Context, e buildlog.Entry) error {
	msg := tgbotapi.NewMessage(t.ChatID, Message(e))
	msg.ParseMode = tgbotapi.ModeMarkdown

	errCh := make(chan error, 1)
	go func() {
		_, err := t.Bot.Send(msg)
		errCh <- err
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Message formats e as a Telegram Markdown message.
func Message(e buildlog.Entry) string {
	var b strings.Builder
	if e.Status == buildlog.StatusSuccess {
		fmt.Fprintf(&b, "*[%s]* build succeeded\n\n", escapeMarkdown(e.Service))
	} else {
		fmt.Fprintf(&b, "*[%s]* build failed\n\n", escapeMarkdown(e.Service))
	}
	fmt.Fprintf(&b, "Posts: %d\nPages: %d\nTriggered by: %s\nAt: %s",
		e.Posts, e.Pages, escapeMarkdown(e.TriggeredBy), e.Timestamp.UTC().Format("2006-01-02 15:04:05 UTC"))
	if e.Error != "" {
		fmt.Fprintf(&b, "\n\nError: %s", escapeMarkdown(e.Error))
	}
	return b.String()
}

// escapeMarkdown escapes the characters Telegram's legacy Markdown treats as markup.
func escapeMarkdown(text string) string {
	replacer := strings.NewReplacer(
		"_", "\\_",
		"*", "\\*",
		"[", "\\[",
		"`", "\\`",
	)
	return replacer.Replace(text)
}
