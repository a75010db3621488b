// internal/app/notification_service.go
package app

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"kitchen_notification_bot/internal/domain/notification"
	"kitchen_notification_bot/internal/domain/order"
	domainTelegram "kitchen_notification_bot/internal/domain/telegram"

	"github.com/sirupsen/logrus"
)

// NotificationService turns observed line-item completions into at-most-once
// staff alerts and exposes the operations the display surface needs.
type NotificationService interface {
	// ProcessSnapshot runs one detection-enrichment-dedup pass over the
	// newest snapshot. It blocks until every enrichment spawned for this
	// pass has settled (succeeded, failed, or timed out).
	ProcessSnapshot(ctx context.Context, snap *order.Snapshot)
	// Notifications lists live alerts, newest first.
	Notifications() []notification.Notification
	// UnreadCount is the live number of unread alerts, recomputed per call.
	UnreadCount() int
	// MarkRead acknowledges an alert without removing it. Idempotent.
	MarkRead(id string)
	// ConfirmDelivered marks the underlying line item delivered with the
	// order service and then removes the alert. The alert stays if the
	// external call fails so the user can retry. Idempotent on absent ids.
	ConfirmDelivered(ctx context.Context, id string) error
	// Dismiss removes an alert without any external call. Idempotent.
	Dismiss(id string)
	// Reset clears the store, the pending queue and the processed set.
	Reset(ctx context.Context) error
	// Close tears the pipeline down; enrichment results arriving afterwards
	// are discarded without touching shared state.
	Close()
}

// enrichResult carries one settled enrichment call back to the single-writer
// consumer loop.
type enrichResult struct {
	pending  *PendingEnrichment
	dishName string
	err      error
}

// NotificationServiceImpl implements NotificationService. All mutation of
// the pending queue, the processed set and the store is funneled through one
// mutex so concurrently completing enrichments cannot lose updates.
type NotificationServiceImpl struct {
	enricher  order.DishEnricher
	items     order.ItemService
	processed notification.ProcessedRepository
	store     *NotificationStore
	telegram  domainTelegram.Client // nil when the Telegram channel is disabled
	logger    *logrus.Logger

	actorID              string
	includeAllStaff      bool
	renotifyOnCorrection bool
	retryCap             int
	enrichTimeout        time.Duration
	kitchenChatID        int64

	mu      sync.Mutex
	pending map[string]*PendingEnrichment
	closed  bool
}

// NotificationServiceConfig carries the tunable policy knobs.
type NotificationServiceConfig struct {
	ActorID              string
	IncludeAllStaff      bool
	RenotifyOnCorrection bool
	RetryCap             int
	EnrichTimeout        time.Duration
	KitchenChatID        int64
}

func NewNotificationService(
	enricher order.DishEnricher,
	items order.ItemService,
	processed notification.ProcessedRepository,
	store *NotificationStore,
	telegramClient domainTelegram.Client,
	logger *logrus.Logger,
	cfg NotificationServiceConfig,
) *NotificationServiceImpl {
	if cfg.RetryCap <= 0 {
		cfg.RetryCap = 5
	}
	if cfg.EnrichTimeout <= 0 {
		cfg.EnrichTimeout = 5 * time.Second
	}
	return &NotificationServiceImpl{
		enricher:             enricher,
		items:                items,
		processed:            processed,
		store:                store,
		telegram:             telegramClient,
		logger:               logger,
		actorID:              cfg.ActorID,
		includeAllStaff:      cfg.IncludeAllStaff,
		renotifyOnCorrection: cfg.RenotifyOnCorrection,
		retryCap:             cfg.RetryCap,
		enrichTimeout:        cfg.EnrichTimeout,
		kitchenChatID:        cfg.KitchenChatID,
		pending:              make(map[string]*PendingEnrichment),
	}
}

// ProcessSnapshot is the per-poll entry point of the alert pipeline.
func (s *NotificationServiceImpl) ProcessSnapshot(ctx context.Context, snap *order.Snapshot) {
	if snap == nil {
		return
	}

	// 1. Optionally un-mark items that regressed out of COMPLETED after
	// having been notified, so a later re-completion alerts again.
	if s.renotifyOnCorrection {
		s.sweepCorrections(ctx, snap)
	}

	// 2. Detect new completions and queue them behind any enrichments still
	// being retried from earlier polls.
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	queued := func(id string) bool {
		_, ok := s.pending[id]
		return ok
	}
	detected := DetectCompletedItems(ctx, s.logger, snap, s.actorID, s.includeAllStaff, s.processed, queued)
	for _, p := range detected {
		s.pending[p.LineItemID] = p
	}
	batch := make([]*PendingEnrichment, 0, len(s.pending))
	for _, p := range s.pending {
		batch = append(batch, p)
	}
	s.mu.Unlock()

	if len(detected) > 0 {
		s.logger.Infof("INFO: Detected %d newly completed line item(s); %d enrichment(s) pending in total.", len(detected), len(batch))
	}
	if len(batch) == 0 {
		return
	}

	// 3. Fan out one independent enrichment call per pending item and join
	// the results on a channel consumed by this goroutine alone.
	results := make(chan enrichResult, len(batch))
	for _, p := range batch {
		go func(p *PendingEnrichment) {
			callCtx, cancel := context.WithTimeout(ctx, s.enrichTimeout)
			defer cancel()
			name, err := s.enricher.DishName(callCtx, p.LineItemID)
			results <- enrichResult{pending: p, dishName: name, err: err}
		}(p)
	}
	for i := 0; i < len(batch); i++ {
		s.applyEnrichment(ctx, <-results)
	}
}

// sweepCorrections removes processed marks for line items the order service
// corrected back to a non-terminal status.
func (s *NotificationServiceImpl) sweepCorrections(ctx context.Context, snap *order.Snapshot) {
	for i := range snap.Orders {
		for _, item := range snap.Orders[i].Items {
			if item.Status == order.StatusCompleted {
				continue
			}
			seen, err := s.processed.Contains(ctx, item.ID)
			if err != nil || !seen {
				continue
			}
			if err := s.processed.Remove(ctx, item.ID); err != nil {
				s.logger.Warnf("WARN: Could not un-mark corrected line item %s: %v", item.ID, err)
				continue
			}
			s.logger.Infof("INFO: Line item %s regressed to %s after notification; it will re-notify when completed again.", item.ID, item.Status)
		}
	}
}

// applyEnrichment is the single-writer convergence point for enrichment
// results, which may arrive in any order.
func (s *NotificationServiceImpl) applyEnrichment(ctx context.Context, res enrichResult) {
	var alert *notification.Notification

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	p, stillPending := s.pending[res.pending.LineItemID]
	if !stillPending {
		// Dropped or reset while the call was in flight.
		s.mu.Unlock()
		return
	}

	if res.err != nil {
		p.Attempts++
		if p.Attempts >= s.retryCap {
			delete(s.pending, p.LineItemID)
			// Suppress the id so later polls do not re-queue it. The kitchen
			// event still happened; only this alert is lost.
			if markErr := s.processed.Add(ctx, p.LineItemID); markErr != nil {
				s.logger.Errorf("ERROR: Failed to suppress exhausted line item %s: %v", p.LineItemID, markErr)
			}
			s.logger.Warnf("WARN: Enrichment exhausted for line item %s after %d attempts; the completion alert is lost: %v", p.LineItemID, p.Attempts, res.err)
		} else {
			s.logger.Debugf("Enrichment attempt %d/%d failed for line item %s, will retry on a later poll: %v", p.Attempts, s.retryCap, p.LineItemID, res.err)
		}
		s.mu.Unlock()
		return
	}

	// Check-then-insert dedup against both the processed set and the live
	// notification ids. Only an accepted insert marks the item processed.
	id := notification.DeriveID(p.LineItemID)
	if s.store.Contains(id) {
		delete(s.pending, p.LineItemID)
		s.mu.Unlock()
		return
	}
	seen, err := s.processed.Contains(ctx, p.LineItemID)
	if err != nil {
		p.Attempts++
		if p.Attempts >= s.retryCap {
			delete(s.pending, p.LineItemID)
			s.logger.Warnf("WARN: Processed-set check kept failing for line item %s, dropping after %d attempts: %v", p.LineItemID, p.Attempts, err)
		}
		s.mu.Unlock()
		return
	}
	if seen {
		delete(s.pending, p.LineItemID)
		s.mu.Unlock()
		return
	}

	n := notification.Notification{
		ID:          id,
		LineItemID:  p.LineItemID,
		OrderID:     p.OrderID,
		TableLabels: p.TableLabels,
		Message:     buildAlertMessage(res.dishName, p.Quantity, p.TableLabels, p.OrderID),
		Priority:    p.StaffID == s.actorID,
		CreatedAt:   time.Now(),
	}
	s.store.Add(n)
	if err := s.processed.Add(ctx, p.LineItemID); err != nil {
		// The live store still suppresses duplicates for this session; only
		// durability of the mark is at risk.
		s.logger.Errorf("ERROR: Failed to persist processed mark for line item %s: %v", p.LineItemID, err)
	}
	delete(s.pending, p.LineItemID)
	alert = &n
	s.mu.Unlock()

	s.logger.Infof("INFO: Notification %s created for line item %s (%s).", n.ID, p.LineItemID, res.dishName)
	s.pushTelegramAlert(alert)
}

// buildAlertMessage renders the staff-facing alert text.
func buildAlertMessage(dishName string, quantity int, tables []string, orderID string) string {
	where := fmt.Sprintf("order %s", orderID)
	if len(tables) > 0 {
		where = fmt.Sprintf("table %s", strings.Join(tables, ", "))
	}
	return fmt.Sprintf("%s x%d is ready for %s", dishName, quantity, where)
}

// pushTelegramAlert forwards a freshly created alert to the staff chat.
// Failures are logged and swallowed: Telegram is an optional sink, not part
// of the pipeline's correctness.
func (s *NotificationServiceImpl) pushTelegramAlert(n *notification.Notification) {
	if n == nil || s.telegram == nil || s.kitchenChatID == 0 {
		return
	}
	opts := domainTelegram.AlertOptions(n.ID)
	if err := s.telegram.SendMessage(s.kitchenChatID, n.Message, opts); err != nil {
		s.logger.Warnf("WARN: Failed to push alert %s to the kitchen chat: %v", n.ID, err)
	}
}

func (s *NotificationServiceImpl) Notifications() []notification.Notification {
	return s.store.List()
}

func (s *NotificationServiceImpl) UnreadCount() int {
	return s.store.UnreadCount()
}

func (s *NotificationServiceImpl) MarkRead(id string) {
	s.store.MarkRead(id)
}

func (s *NotificationServiceImpl) ConfirmDelivered(ctx context.Context, id string) error {
	n, ok := s.store.Get(id)
	if !ok {
		// Already confirmed or dismissed; idempotent no-op.
		return nil
	}
	if err := s.items.ConfirmDelivered(ctx, n.LineItemID); err != nil {
		// Confirm is not optimistic: the alert stays for a retry.
		return fmt.Errorf("failed to confirm delivery of line item %s: %w", n.LineItemID, err)
	}
	s.store.Remove(id)
	s.logger.Infof("INFO: Notification %s confirmed delivered (line item %s).", id, n.LineItemID)
	return nil
}

func (s *NotificationServiceImpl) Dismiss(id string) {
	if s.store.Remove(id) {
		s.logger.Infof("INFO: Notification %s dismissed.", id)
	}
}

func (s *NotificationServiceImpl) Reset(ctx context.Context) error {
	s.mu.Lock()
	s.pending = make(map[string]*PendingEnrichment)
	s.mu.Unlock()
	s.store.Clear()
	if err := s.processed.Reset(ctx); err != nil {
		return fmt.Errorf("failed to reset processed set: %w", err)
	}
	s.logger.Info("INFO: Notification state fully reset.")
	return nil
}

func (s *NotificationServiceImpl) Close() {
	s.mu.Lock()
	s.closed = true
	s.pending = make(map[string]*PendingEnrichment)
	s.mu.Unlock()
}
