package telegram

import (
	"strings"

	"totem-quiz-bot/internal/domain"
)

// Decode converts a Bot API update into the platform-neutral form.
// Updates the bot does not understand come back as domain.UpdateUnknown.
func Decode(u Update) domain.Update {
	out := domain.Update{ID: u.UpdateID}

	switch {
	case u.CallbackQuery != nil:
		cq := u.CallbackQuery
		out.Kind = domain.UpdateCallback
		out.Sender = sender(cq.From)
		out.ChatID = cq.From.ID
		if cq.Message != nil {
			out.ChatID = cq.Message.Chat.ID
			out.MessageID = cq.Message.MessageID
		}
		out.CallbackID = cq.ID
		out.CallbackData = cq.Data

	case u.Message != nil && u.Message.From != nil:
		msg := u.Message
		out.Sender = sender(*msg.From)
		out.ChatID = msg.Chat.ID
		out.MessageID = msg.MessageID
		if name, args, ok := command(msg); ok {
			out.Kind = domain.UpdateCommand
			out.Command = name
			out.Args = args
		} else if msg.Text != "" {
			out.Kind = domain.UpdateText
			out.Text = msg.Text
		}
	}
	return out
}

func sender(u User) domain.Sender {
	return domain.Sender{ID: u.ID, Username: u.Username, FirstName: u.FirstName, LastName: u.LastName}
}

// command extracts "/name@bot args" from a message starting with a bot_command entity.
func command(msg *Message) (string, string, bool) {
	for _, e := range msg.Entities {
		if e.Type != "bot_command" || e.Offset != 0 {
			continue
		}
		runes := []rune(msg.Text)
		if e.Length > len(runes) || e.Length < 2 {
			return "", "", false
		}
		name := string(runes[1:e.Length])
		name = strings.Split(name, "@")[0]
		args := strings.TrimSpace(string(runes[e.Length:]))
		return strings.ToLower(name), args, true
	}
	return "", "", false
}
