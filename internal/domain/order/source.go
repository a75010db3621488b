package order

import "context"

// SnapshotSource supplies the full current set of orders for the configured
// staff scope. There is no diff or event API: every poll returns a complete
// snapshot and the caller derives transitions by comparison.
type SnapshotSource interface {
	Snapshot(ctx context.Context) (*Snapshot, error)
}

// DishEnricher resolves the human-readable dish name behind a line item id.
// Each call is independent and may complete out of order or fail.
type DishEnricher interface {
	DishName(ctx context.Context, lineItemID string) (string, error)
}

// ItemService proxies line-item status writes to the external order service.
// This service never mutates statuses locally; the next snapshot is the only
// source of truth for whether a transition actually took effect.
type ItemService interface {
	// BulkUpdateStatus moves every given line item to the target status in a
	// single call. Best effort: the order service may partially apply it.
	BulkUpdateStatus(ctx context.Context, lineItemIDs []string, status Status) error
	// ConfirmDelivered marks a completed line item as handed to the guest.
	ConfirmDelivered(ctx context.Context, lineItemID string) error
}
