// internal/infra/telegram/alert_handlers_test.go
package telegram

import (
	"context"
	"testing"

	"kitchen_notification_bot/internal/domain/notification"
	"kitchen_notification_bot/internal/domain/order"
	domainTelegram "kitchen_notification_bot/internal/domain/telegram"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/telebot.v3"
)

// recordingNotificationService captures the calls the callback handlers make.
type recordingNotificationService struct {
	confirmed  []string
	dismissed  []string
	confirmErr error
}

func (r *recordingNotificationService) ProcessSnapshot(context.Context, *order.Snapshot) {}

func (r *recordingNotificationService) Notifications() []notification.Notification { return nil }

func (r *recordingNotificationService) UnreadCount() int { return 0 }

func (r *recordingNotificationService) MarkRead(string) {}

func (r *recordingNotificationService) ConfirmDelivered(_ context.Context, id string) error {
	if r.confirmErr != nil {
		return r.confirmErr
	}
	r.confirmed = append(r.confirmed, id)
	return nil
}

func (r *recordingNotificationService) Dismiss(id string) { r.dismissed = append(r.dismissed, id) }

func (r *recordingNotificationService) Reset(context.Context) error { return nil }

func (r *recordingNotificationService) Close() {}

func newOfflineBot(t *testing.T) *telebot.Bot {
	t.Helper()
	b, err := telebot.NewBot(telebot.Settings{
		Offline: true,
		OnError: func(error, telebot.Context) {},
	})
	require.NoError(t, err)
	return b
}

// pressButton dispatches the callback update Telegram would send when the
// given inline button of a sent alert is pressed.
func pressButton(b *telebot.Bot, btn telebot.InlineButton) {
	data := "\f" + btn.Unique
	if btn.Data != "" {
		data += "|" + btn.Data
	}
	b.ProcessUpdate(telebot.Update{
		Callback: &telebot.Callback{
			ID:      "cb-1",
			Sender:  &telebot.User{ID: 1},
			Message: &telebot.Message{ID: 1, Chat: &telebot.Chat{ID: 1}},
			Data:    data,
		},
	})
}

func alertButtons(t *testing.T, notificationID string) (done, skip telebot.InlineButton) {
	t.Helper()
	markup := domainTelegram.AlertOptions(notificationID).ReplyMarkup
	require.Len(t, markup.InlineKeyboard, 1)
	require.Len(t, markup.InlineKeyboard[0], 2)
	return markup.InlineKeyboard[0][0], markup.InlineKeyboard[0][1]
}

func TestDeliveredButtonConfirmsNotification(t *testing.T) {
	b := newOfflineBot(t)
	service := &recordingNotificationService{}
	RegisterAlertHandlers(context.Background(), b, service)

	done, _ := alertButtons(t, "abc-123")
	pressButton(b, done)

	assert.Equal(t, []string{"abc-123"}, service.confirmed)
	assert.Empty(t, service.dismissed)
}

func TestDismissButtonDropsNotification(t *testing.T) {
	b := newOfflineBot(t)
	service := &recordingNotificationService{}
	RegisterAlertHandlers(context.Background(), b, service)

	_, skip := alertButtons(t, "abc-123")
	pressButton(b, skip)

	assert.Equal(t, []string{"abc-123"}, service.dismissed)
	assert.Empty(t, service.confirmed)
}

func TestUnknownCallbackTouchesNoState(t *testing.T) {
	b := newOfflineBot(t)
	service := &recordingNotificationService{}
	RegisterAlertHandlers(context.Background(), b, service)

	pressButton(b, telebot.InlineButton{Unique: "something_else", Data: "abc-123"})

	assert.Empty(t, service.confirmed)
	assert.Empty(t, service.dismissed)
}

func TestAlertButtonsCarryNotificationIDInPayload(t *testing.T) {
	done, skip := alertButtons(t, "abc-123")

	assert.Equal(t, domainTelegram.CallbackConfirmUnique, done.Unique)
	assert.Equal(t, "abc-123", done.Data)
	assert.Equal(t, domainTelegram.CallbackDismissUnique, skip.Unique)
	assert.Equal(t, "abc-123", skip.Data)
}
