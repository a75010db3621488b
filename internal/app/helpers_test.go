package app

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"kitchen_notification_bot/internal/domain/order"

	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func snapshotOf(orders ...order.Order) *order.Snapshot {
	return &order.Snapshot{TakenAt: time.Now(), Orders: orders}
}

func item(id, orderID, dishID, dishName string, qty int, status order.Status, staffID string) order.LineItem {
	return order.LineItem{
		ID:       id,
		OrderID:  orderID,
		DishID:   dishID,
		DishName: dishName,
		Quantity: qty,
		Status:   status,
		StaffID:  staffID,
	}
}

// fakeEnricher resolves dish names from a fixed table and can be told to
// fail a number of times per line item before succeeding.
type fakeEnricher struct {
	mu        sync.Mutex
	names     map[string]string
	failTimes map[string]int
	calls     map[string]int
}

func newFakeEnricher(names map[string]string) *fakeEnricher {
	return &fakeEnricher{
		names:     names,
		failTimes: make(map[string]int),
		calls:     make(map[string]int),
	}
}

func (f *fakeEnricher) DishName(_ context.Context, lineItemID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[lineItemID]++
	if f.failTimes[lineItemID] > 0 {
		f.failTimes[lineItemID]--
		return "", fmt.Errorf("enrichment unavailable")
	}
	name, ok := f.names[lineItemID]
	if !ok {
		return "", fmt.Errorf("unknown line item %s", lineItemID)
	}
	return name, nil
}

func (f *fakeEnricher) callCount(lineItemID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[lineItemID]
}

// fakeItemService records bulk transitions and delivered confirmations and
// can be switched into failure mode.
type fakeItemService struct {
	mu            sync.Mutex
	bulkCalls     [][]string
	bulkStatuses  []order.Status
	delivered     []string
	failBulk      bool
	failDelivered bool
}

func (f *fakeItemService) BulkUpdateStatus(_ context.Context, lineItemIDs []string, status order.Status) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failBulk {
		return fmt.Errorf("order service unavailable")
	}
	ids := append([]string(nil), lineItemIDs...)
	f.bulkCalls = append(f.bulkCalls, ids)
	f.bulkStatuses = append(f.bulkStatuses, status)
	return nil
}

func (f *fakeItemService) ConfirmDelivered(_ context.Context, lineItemID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDelivered {
		return fmt.Errorf("order service unavailable")
	}
	f.delivered = append(f.delivered, lineItemID)
	return nil
}
