package app

import (
	"sync"

	"kitchen_notification_bot/internal/domain/notification"
)

// NotificationStore holds the ordered collection of live alerts. Newest
// notifications sit at the front; insertion order is otherwise preserved so
// confirm and dismiss always address a stable id. All operations are
// idempotent: acting on an absent id is a no-op, never an error.
type NotificationStore struct {
	mu    sync.RWMutex
	list  []*notification.Notification
	index map[string]*notification.Notification
}

func NewNotificationStore() *NotificationStore {
	return &NotificationStore{
		index: make(map[string]*notification.Notification),
	}
}

// Add prepends a notification. The insert is a no-op returning false if a
// notification with the same id is already present.
func (st *NotificationStore) Add(n notification.Notification) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, exists := st.index[n.ID]; exists {
		return false
	}
	stored := &n
	st.list = append([]*notification.Notification{stored}, st.list...)
	st.index[n.ID] = stored
	return true
}

// Contains reports whether a notification with the given id is live.
func (st *NotificationStore) Contains(id string) bool {
	st.mu.RLock()
	defer st.mu.RUnlock()
	_, ok := st.index[id]
	return ok
}

// Get returns a copy of the notification with the given id.
func (st *NotificationStore) Get(id string) (notification.Notification, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	n, ok := st.index[id]
	if !ok {
		return notification.Notification{}, false
	}
	return *n, true
}

// MarkRead sets the read flag. No-op if the id is absent.
func (st *NotificationStore) MarkRead(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if n, ok := st.index[id]; ok {
		n.Read = true
	}
}

// Remove deletes the notification and reports whether it was present.
func (st *NotificationStore) Remove(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.index[id]; !ok {
		return false
	}
	delete(st.index, id)
	for i, n := range st.list {
		if n.ID == id {
			st.list = append(st.list[:i], st.list[i+1:]...)
			break
		}
	}
	return true
}

// List returns copies of all live notifications, newest first.
func (st *NotificationStore) List() []notification.Notification {
	st.mu.RLock()
	defer st.mu.RUnlock()
	out := make([]notification.Notification, 0, len(st.list))
	for _, n := range st.list {
		out = append(out, *n)
	}
	return out
}

// UnreadCount recomputes the number of live unread notifications. Always
// derived from the live set, never cached.
func (st *NotificationStore) UnreadCount() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	count := 0
	for _, n := range st.list {
		if !n.Read {
			count++
		}
	}
	return count
}

// Len returns the number of live notifications.
func (st *NotificationStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.list)
}

// Clear drops every notification. Used on explicit session reset.
func (st *NotificationStore) Clear() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.list = nil
	st.index = make(map[string]*notification.Notification)
}
