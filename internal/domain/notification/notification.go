package notification

import (
	"time"

	"github.com/google/uuid"
)

// idNamespace is the fixed UUIDv5 namespace for deriving notification ids.
// Deriving the id from the line item id makes notification identity
// idempotent: detecting the same completion twice yields the same id.
var idNamespace = uuid.MustParse("8e2f6a54-3b1d-4f0e-9c47-5a9d21c0b6f3")

// DeriveID returns the stable notification id for a line item.
func DeriveID(lineItemID string) string {
	return uuid.NewSHA1(idNamespace, []byte(lineItemID)).String()
}

// Notification is a single dish-completion alert shown to staff.
// Created only by the deduplicating pipeline, mutated (read flag) by
// acknowledge, destroyed by confirm or dismiss.
type Notification struct {
	ID          string    `json:"id"`
	LineItemID  string    `json:"line_item_id"`
	OrderID     string    `json:"order_id"`
	TableLabels []string  `json:"table_labels"`
	Message     string    `json:"message"`
	Read        bool      `json:"read"`
	Priority    bool      `json:"priority"`
	CreatedAt   time.Time `json:"created_at"`
}
