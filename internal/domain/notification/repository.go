// internal/domain/notification/repository.go
package notification

import "context"

// ProcessedRepository is the durable record of line item ids that already
// produced a notification. It only grows during normal operation (preventing
// duplicate alerts across repeated polls) and shrinks in exactly two cases:
// an explicit full Reset, or Remove when the re-notify-on-correction policy
// is enabled and an already-notified item regresses out of COMPLETED.
type ProcessedRepository interface {
	Contains(ctx context.Context, lineItemID string) (bool, error)
	Add(ctx context.Context, lineItemID string) error
	Remove(ctx context.Context, lineItemID string) error
	Reset(ctx context.Context) error
}
