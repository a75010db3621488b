package app

import (
	"testing"
	"time"

	"kitchen_notification_bot/internal/domain/notification"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storedNotification(id string) notification.Notification {
	return notification.Notification{
		ID:         id,
		LineItemID: "li-" + id,
		Message:    "test alert " + id,
		CreatedAt:  time.Now(),
	}
}

func TestNotificationStore_AddIsNewestFirstAndDedup(t *testing.T) {
	st := NewNotificationStore()

	require.True(t, st.Add(storedNotification("a")))
	require.True(t, st.Add(storedNotification("b")))
	require.False(t, st.Add(storedNotification("a")), "duplicate id must be a no-op")

	list := st.List()
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[0].ID)
	assert.Equal(t, "a", list[1].ID)
}

func TestNotificationStore_MarkReadIdempotent(t *testing.T) {
	st := NewNotificationStore()
	st.Add(storedNotification("a"))

	st.MarkRead("a")
	st.MarkRead("a")
	st.MarkRead("missing") // no-op, no panic

	n, ok := st.Get("a")
	require.True(t, ok)
	assert.True(t, n.Read)
	assert.Equal(t, 0, st.UnreadCount())
}

func TestNotificationStore_RemoveIdempotent(t *testing.T) {
	st := NewNotificationStore()
	st.Add(storedNotification("a"))

	assert.True(t, st.Remove("a"))
	assert.False(t, st.Remove("a"), "second remove must be a no-op")
	assert.Equal(t, 0, st.Len())
}

func TestNotificationStore_UnreadCountIsRecomputed(t *testing.T) {
	st := NewNotificationStore()
	st.Add(storedNotification("a"))
	st.Add(storedNotification("b"))
	st.Add(storedNotification("c"))

	assert.Equal(t, 3, st.UnreadCount())
	st.MarkRead("b")
	assert.Equal(t, 2, st.UnreadCount())
	st.Remove("a")
	assert.Equal(t, 1, st.UnreadCount())
	st.Clear()
	assert.Equal(t, 0, st.UnreadCount())
}

func TestNotificationStore_ListReturnsCopies(t *testing.T) {
	st := NewNotificationStore()
	st.Add(storedNotification("a"))

	list := st.List()
	list[0].Read = true

	n, ok := st.Get("a")
	require.True(t, ok)
	assert.False(t, n.Read, "mutating a listed copy must not touch the store")
}
