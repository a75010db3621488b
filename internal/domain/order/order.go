package order

import (
	"fmt"
	"time"
)

// Status represents the kitchen state of a single line item.
// Transitions are owned by the external order service; this service only
// observes them (PENDING -> IN_PROGRESS -> COMPLETED in normal operation).
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
)

// ParseStatus validates a raw status value coming off the wire.
func ParseStatus(raw string) (Status, error) {
	switch Status(raw) {
	case StatusPending, StatusInProgress, StatusCompleted:
		return Status(raw), nil
	default:
		return "", fmt.Errorf("unknown line item status: %q", raw)
	}
}

// IsCookable reports whether the item still needs kitchen work and is
// therefore eligible for batch aggregation.
func (s Status) IsCookable() bool {
	return s == StatusPending || s == StatusInProgress
}

// LineItem is one orderable dish instance within an order. DishName is
// optional: the snapshot payload may omit it, in which case it is resolved
// later through the enrichment endpoint.
type LineItem struct {
	ID       string `json:"id"`
	OrderID  string `json:"order_id"`
	DishID   string `json:"dish_id"`
	DishName string `json:"dish_name,omitempty"`
	Quantity int    `json:"quantity"`
	Status   Status `json:"status"`
	StaffID  string `json:"staff_id"`
}

// Order groups the line items placed for one or more tables. Orders are
// created and destroyed entirely by the external order service; this service
// only ever holds them inside transient snapshots.
type Order struct {
	ID          string     `json:"id"`
	StaffID     string     `json:"staff_id"`
	TableLabels []string   `json:"table_labels"`
	Items       []LineItem `json:"items"`
}

// Snapshot is a complete, timestamped copy of every order visible to the
// current actor at poll time. A later snapshot fully supersedes an earlier
// one; snapshots are never merged or patched. Treat as immutable once built.
type Snapshot struct {
	TakenAt time.Time
	Orders  []Order
}

// TablesOf returns the table labels of the order owning the given line item.
func (s *Snapshot) TablesOf(orderID string) []string {
	for i := range s.Orders {
		if s.Orders[i].ID == orderID {
			return s.Orders[i].TableLabels
		}
	}
	return nil
}
