// internal/infra/telegram/alert_handlers.go
package telegram

import (
	"context"
	"fmt"
	"strings"

	"kitchen_notification_bot/internal/app" // For NotificationService interface
	domainTelegram "kitchen_notification_bot/internal/domain/telegram"

	"gopkg.in/telebot.v3"
)

// RegisterAlertHandlers wires the inline buttons attached to kitchen alerts.
// "Delivered" confirms the line item with the order service; "Dismiss" drops
// the alert locally without any external call. Telebot has already split the
// pressed button's wire data by the time OnCallback fires: the button unique
// lands in Callback.Unique and the notification id in Callback.Data.
func RegisterAlertHandlers(ctx context.Context, b *telebot.Bot, notificationService app.NotificationService) {
	b.Handle(telebot.OnCallback, func(c telebot.Context) error {
		callback := c.Callback()
		notificationID := strings.TrimSpace(callback.Data)

		switch callback.Unique {
		case domainTelegram.CallbackConfirmUnique:
			if notificationID == "" {
				c.Bot().OnError(fmt.Errorf("empty notification id in confirm callback"), c)
				return c.Respond(&telebot.CallbackResponse{Text: "Could not process this alert."})
			}

			if err := notificationService.ConfirmDelivered(ctx, notificationID); err != nil {
				c.Bot().OnError(fmt.Errorf("error confirming delivery for notification %s: %w", notificationID, err), c)
				// The alert stays in the store; the button can be pressed again.
				return c.Respond(&telebot.CallbackResponse{Text: "Confirmation failed, please retry."})
			}
			return c.Respond(&telebot.CallbackResponse{Text: "Marked as delivered."})

		case domainTelegram.CallbackDismissUnique:
			if notificationID == "" {
				c.Bot().OnError(fmt.Errorf("empty notification id in dismiss callback"), c)
				return c.Respond(&telebot.CallbackResponse{Text: "Could not process this alert."})
			}

			notificationService.Dismiss(notificationID)
			return c.Respond(&telebot.CallbackResponse{Text: "Alert dismissed."})
		}

		// Fallback for unhandled callbacks by this specific handler.
		c.Bot().OnError(fmt.Errorf("unhandled callback unique by alert_handlers: %q", callback.Unique), c)
		return c.Respond(&telebot.CallbackResponse{Text: "Unknown action."})
	})
}
