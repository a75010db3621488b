// internal/app/batch_service.go
package app

import (
	"context"
	"fmt"
	"sync"

	"kitchen_notification_bot/internal/domain/order"

	"github.com/sirupsen/logrus"
)

// ErrBatchNotFound is returned when a bulk transition targets a dish that has
// no eligible batch group in the latest snapshot.
var ErrBatchNotFound = fmt.Errorf("batch group not found in the latest snapshot")

// BatchService derives cross-order cook batches from the latest snapshot and
// proxies bulk status transitions for them. It keeps no derived state: every
// Groups call re-aggregates from the most recent snapshot, so the view can
// never leak contributions from a superseded poll.
type BatchService struct {
	items  order.ItemService
	logger *logrus.Logger

	mu     sync.RWMutex
	latest *order.Snapshot
}

func NewBatchService(items order.ItemService, logger *logrus.Logger) *BatchService {
	return &BatchService{items: items, logger: logger}
}

// UpdateSnapshot replaces the snapshot batches are derived from.
func (s *BatchService) UpdateSnapshot(snap *order.Snapshot) {
	if snap == nil {
		return
	}
	s.mu.Lock()
	s.latest = snap
	s.mu.Unlock()
}

// Groups returns the current batch groups, freshly aggregated.
func (s *BatchService) Groups() []order.BatchGroup {
	s.mu.RLock()
	snap := s.latest
	s.mu.RUnlock()
	if snap == nil {
		return nil
	}
	return AggregateBatches(snap)
}

// StartBatch moves every line item contributing to the dish's batch group to
// IN_PROGRESS through one bulk call. No local state is mutated: if the call
// fails, or partially applies, the next snapshot simply shows the truth.
func (s *BatchService) StartBatch(ctx context.Context, dishID string) error {
	return s.transitionBatch(ctx, dishID, order.StatusInProgress)
}

// CompleteBatch moves every contributing line item to COMPLETED.
func (s *BatchService) CompleteBatch(ctx context.Context, dishID string) error {
	return s.transitionBatch(ctx, dishID, order.StatusCompleted)
}

func (s *BatchService) transitionBatch(ctx context.Context, dishID string, target order.Status) error {
	group, ok := s.findGroup(dishID)
	if !ok {
		return ErrBatchNotFound
	}
	ids := group.LineItemIDs()
	if err := s.items.BulkUpdateStatus(ctx, ids, target); err != nil {
		s.logger.Warnf("WARN: Bulk transition of %d line item(s) for dish %s to %s failed: %v", len(ids), dishID, target, err)
		return fmt.Errorf("bulk transition for dish %s failed: %w", dishID, err)
	}
	s.logger.Infof("INFO: Bulk transition issued: %d line item(s) of dish %s -> %s.", len(ids), dishID, target)
	return nil
}

func (s *BatchService) findGroup(dishID string) (*order.BatchGroup, bool) {
	groups := s.Groups()
	for i := range groups {
		if groups[i].DishID == dishID {
			return &groups[i], true
		}
	}
	return nil, false
}

// AggregateBatches groups every PENDING or IN_PROGRESS line item in the
// snapshot by dish identity. Groups with a single contribution are discarded:
// batching only matters when at least two orders need the same dish. The
// group status is the most advanced contributing status (IN_PROGRESS wins
// over PENDING), so a half-started batch reads as started.
func AggregateBatches(snap *order.Snapshot) []order.BatchGroup {
	byDish := make(map[string]*order.BatchGroup)
	var dishOrder []string

	for i := range snap.Orders {
		o := &snap.Orders[i]
		for _, item := range o.Items {
			if !item.Status.IsCookable() {
				continue
			}
			group, ok := byDish[item.DishID]
			if !ok {
				group = &order.BatchGroup{
					DishID:   item.DishID,
					DishName: item.DishName,
					Status:   item.Status,
				}
				byDish[item.DishID] = group
				dishOrder = append(dishOrder, item.DishID)
			}
			if group.DishName == "" {
				group.DishName = item.DishName
			}
			if item.Status == order.StatusInProgress {
				group.Status = order.StatusInProgress
			}
			group.TotalQuantity += item.Quantity
			group.Contributions = append(group.Contributions, order.BatchContribution{
				LineItemID:  item.ID,
				OrderID:     o.ID,
				TableLabels: o.TableLabels,
				Quantity:    item.Quantity,
				Status:      item.Status,
			})
		}
	}

	groups := make([]order.BatchGroup, 0, len(byDish))
	for _, dishID := range dishOrder {
		group := byDish[dishID]
		if len(group.Contributions) < 2 {
			continue
		}
		groups = append(groups, *group)
	}
	return groups
}
