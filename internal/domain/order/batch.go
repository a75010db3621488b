package order

// BatchContribution is one line item's share of a cross-order batch group.
type BatchContribution struct {
	LineItemID  string   `json:"line_item_id"`
	OrderID     string   `json:"order_id"`
	TableLabels []string `json:"table_labels"`
	Quantity    int      `json:"quantity"`
	Status      Status   `json:"status"`
}

// BatchGroup aggregates same-dish line items across distinct orders so the
// kitchen can cook them in one go. A group only exists when at least two
// line items reference the same dish; it is recomputed from the latest
// snapshot on every poll, never patched incrementally.
type BatchGroup struct {
	DishID        string              `json:"dish_id"`
	DishName      string              `json:"dish_name"`
	TotalQuantity int                 `json:"total_quantity"`
	Status        Status              `json:"status"`
	Contributions []BatchContribution `json:"contributions"`
}

// LineItemIDs lists the underlying line items a bulk transition must target.
func (g *BatchGroup) LineItemIDs() []string {
	ids := make([]string, 0, len(g.Contributions))
	for _, c := range g.Contributions {
		ids = append(ids, c.LineItemID)
	}
	return ids
}
