package app

import (
	"context"

	"kitchen_notification_bot/internal/domain/notification"
	"kitchen_notification_bot/internal/domain/order"

	"github.com/sirupsen/logrus"
)

// PendingEnrichment is a detected completion still waiting for its dish name.
// It exists only between detection and successful (or abandoned) enrichment.
type PendingEnrichment struct {
	LineItemID  string
	OrderID     string
	TableLabels []string
	Quantity    int
	StaffID     string
	Attempts    int
}

// DetectCompletedItems scans the newest snapshot and emits one
// PendingEnrichment per line item that newly reached COMPLETED: owned by the
// actor (unless includeAllStaff), not yet in the processed set, and not
// already queued for enrichment. It never mutates the processed set itself;
// marking happens only once a notification is actually materialized, so a
// transient enrichment failure cannot permanently suppress an alert.
func DetectCompletedItems(
	ctx context.Context,
	logger *logrus.Logger,
	snap *order.Snapshot,
	actorID string,
	includeAllStaff bool,
	processed notification.ProcessedRepository,
	alreadyQueued func(lineItemID string) bool,
) []*PendingEnrichment {
	var pendings []*PendingEnrichment
	for i := range snap.Orders {
		o := &snap.Orders[i]
		for _, item := range o.Items {
			if item.Status != order.StatusCompleted {
				continue
			}
			if !includeAllStaff && item.StaffID != actorID {
				continue
			}
			if alreadyQueued(item.ID) {
				continue
			}
			seen, err := processed.Contains(ctx, item.ID)
			if err != nil {
				// Unknown processed state: skip rather than risk a duplicate
				// alert. The item is re-examined on the next poll.
				logger.Warnf("WARN: Processed-set lookup failed for line item %s, skipping this poll: %v", item.ID, err)
				continue
			}
			if seen {
				continue
			}
			pendings = append(pendings, &PendingEnrichment{
				LineItemID:  item.ID,
				OrderID:     o.ID,
				TableLabels: o.TableLabels,
				Quantity:    item.Quantity,
				StaffID:     item.StaffID,
			})
		}
	}
	return pendings
}
