package bot

import (
	"context"
	"strings"

	tbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Answerer turns a prompt into the reply text sent back to the chat
type Answerer interface {
	Answer(ctx context.Context, prompt string) string
}

// Sender is the part of the Telegram client the handlers use
type Sender interface {
	SendMessage(ctx context.Context, params *tbot.SendMessageParams) (*models.Message, error)
	SendChatAction(ctx context.Context, params *tbot.SendChatActionParams) (bool, error)
}

// Inbound is a text message received from a chat
type Inbound struct {
	ChatID      int64
	Text        string
	SenderLabel string
	Command     string // leading bot command such as "/start@kibo_bot", if any
}

// inboundFrom extracts the text message carried by update, if any.
func inboundFrom(update *models.Update) (Inbound, bool) {
	if update == nil || update.Message == nil || update.Message.Text == "" {
		return Inbound{}, false
	}

	return Inbound{
		ChatID:      update.Message.Chat.ID,
		Text:        update.Message.Text,
		SenderLabel: chatLabel(update.Message.Chat),
		Command:     leadingCommand(update.Message),
	}, true
}

// chatLabel returns the chat's full name, falling back to the title for
// groups and the username when no name is set.
func chatLabel(chat models.Chat) string {
	name := strings.TrimSpace(chat.FirstName + " " + chat.LastName)
	switch {
	case name != "":
		return name
	case chat.Title != "":
		return chat.Title
	default:
		return chat.Username
	}
}

// leadingCommand returns the bot command Telegram marked at the start of the
// message, or "" when the message does not open with one.
func leadingCommand(msg *models.Message) string {
	for _, entity := range msg.Entities {
		if entity.Type != models.MessageEntityTypeBotCommand || entity.Offset != 0 {
			continue
		}
		// Commands are ASCII, so UTF-16 length equals byte length.
		if entity.Length <= 0 || entity.Length > len(msg.Text) {
			return ""
		}
		return msg.Text[:entity.Length]
	}
	return ""
}
