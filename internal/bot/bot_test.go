package bot

import (
	"context"
	"errors"
	"strings"
	"testing"

	tbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/j0lvera/kibo/internal/config"
	"github.com/rs/zerolog"
)

type fakeSender struct {
	messages []*tbot.SendMessageParams
	actions  []*tbot.SendChatActionParams
	err      error
}

func (f *fakeSender) SendMessage(ctx context.Context, params *tbot.SendMessageParams) (*models.Message, error) {
	f.messages = append(f.messages, params)
	if f.err != nil {
		return nil, f.err
	}
	return &models.Message{}, nil
}

func (f *fakeSender) SendChatAction(ctx context.Context, params *tbot.SendChatActionParams) (bool, error) {
	f.actions = append(f.actions, params)
	return true, nil
}

type fakeAnswerer struct {
	prompts []string
	reply   string
}

func (f *fakeAnswerer) Answer(ctx context.Context, prompt string) string {
	f.prompts = append(f.prompts, prompt)
	return f.reply
}

func textUpdate(chatID int64, text string) *models.Update {
	return &models.Update{
		Message: &models.Message{
			Text: text,
			Chat: models.Chat{
				ID:        chatID,
				FirstName: "Ada",
				LastName:  "Lovelace",
			},
		},
	}
}

// commandUpdate marks the leading command the way Telegram does.
func commandUpdate(chatID int64, text string) *models.Update {
	update := textUpdate(chatID, text)
	command, _, _ := strings.Cut(text, " ")
	update.Message.Entities = []models.MessageEntity{
		{Type: models.MessageEntityTypeBotCommand, Offset: 0, Length: len(command)},
	}
	return update
}

func TestHandleRelaysText(t *testing.T) {
	answerer := &fakeAnswerer{reply: "4"}
	sender := &fakeSender{}
	h := NewHandler(answerer, "hi", zerolog.Nop())

	h.Handle(context.Background(), sender, textUpdate(42, "What is 2+2?"))

	if len(answerer.prompts) != 1 || answerer.prompts[0] != "What is 2+2?" {
		t.Fatalf("unexpected prompts: %v", answerer.prompts)
	}
	if len(sender.actions) != 1 || sender.actions[0].Action != models.ChatActionTyping {
		t.Fatalf("expected typing action, got %v", sender.actions)
	}
	if len(sender.messages) != 1 {
		t.Fatalf("expected 1 reply, got %d", len(sender.messages))
	}
	if sender.messages[0].ChatID != int64(42) {
		t.Fatalf("reply sent to wrong chat: %v", sender.messages[0].ChatID)
	}
	if sender.messages[0].Text != "4" {
		t.Fatalf("unexpected reply: %q", sender.messages[0].Text)
	}
}

func TestHandleStartSendsGreeting(t *testing.T) {
	for _, text := range []string{"/start", "/start@kibo_bot", "/start ref123"} {
		t.Run(text, func(t *testing.T) {
			answerer := &fakeAnswerer{}
			sender := &fakeSender{}
			h := NewHandler(answerer, config.DefaultMessages.Greeting, zerolog.Nop())

			h.Handle(context.Background(), sender, commandUpdate(7, text))

			if len(answerer.prompts) != 0 {
				t.Fatalf("start must not be relayed, got %v", answerer.prompts)
			}
			if len(sender.messages) != 1 || sender.messages[0].Text != config.DefaultMessages.Greeting {
				t.Fatalf("expected greeting, got %v", sender.messages)
			}
		})
	}
}

func TestHandleIgnoresNonText(t *testing.T) {
	tests := []struct {
		name   string
		update *models.Update
	}{
		{name: "nil update", update: nil},
		{name: "no message", update: &models.Update{}},
		{name: "empty text", update: textUpdate(1, "")},
		{name: "other command", update: commandUpdate(1, "/help")},
		{name: "start lookalike", update: commandUpdate(1, "/startover")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			answerer := &fakeAnswerer{}
			sender := &fakeSender{}
			h := NewHandler(answerer, "hi", zerolog.Nop())

			h.Handle(context.Background(), sender, tt.update)

			if len(answerer.prompts) != 0 || len(sender.messages) != 0 {
				t.Fatalf("expected update to be ignored, prompts=%v messages=%v", answerer.prompts, sender.messages)
			}
		})
	}
}

func TestHandleRelaysSlashTextWithoutCommandEntity(t *testing.T) {
	for _, text := range []string{"/start", "/ not a command"} {
		t.Run(text, func(t *testing.T) {
			answerer := &fakeAnswerer{reply: "ok"}
			sender := &fakeSender{}
			h := NewHandler(answerer, "hi", zerolog.Nop())

			h.Handle(context.Background(), sender, textUpdate(3, text))

			if len(answerer.prompts) != 1 || answerer.prompts[0] != text {
				t.Fatalf("expected text to be relayed, got %v", answerer.prompts)
			}
		})
	}
}

func TestHandleCommandLaterInTextIsRelayed(t *testing.T) {
	answerer := &fakeAnswerer{reply: "ok"}
	sender := &fakeSender{}
	h := NewHandler(answerer, "hi", zerolog.Nop())

	update := textUpdate(3, "please run /start")
	update.Message.Entities = []models.MessageEntity{
		{Type: models.MessageEntityTypeBotCommand, Offset: 11, Length: 6},
	}
	h.Handle(context.Background(), sender, update)

	if len(answerer.prompts) != 1 {
		t.Fatalf("expected text to be relayed, got %v", answerer.prompts)
	}
	if len(sender.messages) != 1 || sender.messages[0].Text != "ok" {
		t.Fatalf("expected relayed reply, got %v", sender.messages)
	}
}

func TestHandleSendFailureIsLogged(t *testing.T) {
	answerer := &fakeAnswerer{reply: "ok"}
	sender := &fakeSender{err: errors.New("telegram down")}
	h := NewHandler(answerer, "hi", zerolog.Nop())

	h.Handle(context.Background(), sender, textUpdate(1, "hello"))

	if len(sender.messages) != 1 {
		t.Fatalf("expected one send attempt, got %d", len(sender.messages))
	}
}

func TestChatLabel(t *testing.T) {
	tests := []struct {
		name string
		chat models.Chat
		want string
	}{
		{name: "full name", chat: models.Chat{FirstName: "Ada", LastName: "Lovelace"}, want: "Ada Lovelace"},
		{name: "first name only", chat: models.Chat{FirstName: "Ada"}, want: "Ada"},
		{name: "group title", chat: models.Chat{Title: "Engineers"}, want: "Engineers"},
		{name: "username", chat: models.Chat{Username: "ada"}, want: "ada"},
		{name: "nothing", chat: models.Chat{}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := chatLabel(tt.chat); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestNewRequiresToken(t *testing.T) {
	_, err := New(nil, Params{Config: &config.Config{}}, zerolog.Nop())
	if !errors.Is(err, ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken, got %v", err)
	}
}
