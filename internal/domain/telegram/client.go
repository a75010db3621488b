package telegram

import (
	"gopkg.in/telebot.v3"
)

// Client defines an interface for sending messages via a Telegram bot.
// This helps in decoupling the application logic from the specific bot library.
type Client interface {
	SendMessage(recipientChatID int64, text string, options *telebot.SendOptions) error
}

// Callback button uniques shared between the alert sender and the button
// handlers. Telebot splits pressed-button data into Callback.Unique and
// Callback.Data, so the notification id travels in the payload, not in the
// unique.
const (
	CallbackConfirmUnique = "ntf_done"
	CallbackDismissUnique = "ntf_skip"
)

// AlertOptions builds the send options for a kitchen alert: an inline
// keyboard with a Delivered and a Dismiss button bound to the notification.
func AlertOptions(notificationID string) *telebot.SendOptions {
	markup := &telebot.ReplyMarkup{ResizeKeyboard: true}
	btnDone := markup.Data("Delivered", CallbackConfirmUnique, notificationID)
	btnSkip := markup.Data("Dismiss", CallbackDismissUnique, notificationID)
	markup.Inline(markup.Row(btnDone, btnSkip))
	return &telebot.SendOptions{ReplyMarkup: markup, ParseMode: telebot.ModeDefault}
}
