// internal/app/batch_service_test.go
package app

import (
	"context"
	"testing"

	"kitchen_notification_bot/internal/domain/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func batchSnapshot() *order.Snapshot {
	return snapshotOf(
		order.Order{
			ID: "o1", StaffID: "staff-1", TableLabels: []string{"2"},
			Items: []order.LineItem{
				item("li-1", "o1", "d-ga", "Ga chien", 1, order.StatusPending, "staff-1"),
				item("li-4", "o1", "d-sup", "Sup", 1, order.StatusPending, "staff-1"),
			},
		},
		order.Order{
			ID: "o2", StaffID: "staff-2", TableLabels: []string{"7"},
			Items: []order.LineItem{
				item("li-2", "o2", "d-ga", "Ga chien", 2, order.StatusPending, "staff-2"),
			},
		},
		order.Order{
			ID: "o3", StaffID: "staff-1", TableLabels: nil,
			Items: []order.LineItem{
				item("li-3", "o3", "d-ga", "Ga chien", 1, order.StatusPending, "staff-1"),
			},
		},
	)
}

func TestAggregateBatches_GroupsSameDishAcrossOrders(t *testing.T) {
	groups := AggregateBatches(batchSnapshot())

	require.Len(t, groups, 1, "a single-contribution dish must not form a group")
	g := groups[0]
	assert.Equal(t, "d-ga", g.DishID)
	assert.Equal(t, "Ga chien", g.DishName)
	assert.Equal(t, 4, g.TotalQuantity)
	assert.Equal(t, order.StatusPending, g.Status)
	require.Len(t, g.Contributions, 3)
	assert.Equal(t, []string{"li-1", "li-2", "li-3"}, g.LineItemIDs())
}

func TestAggregateBatches_SkipsCompletedItems(t *testing.T) {
	snap := snapshotOf(
		order.Order{ID: "o1", Items: []order.LineItem{
			item("li-1", "o1", "d-ga", "Ga chien", 1, order.StatusCompleted, "staff-1"),
			item("li-2", "o1", "d-ga", "Ga chien", 1, order.StatusPending, "staff-1"),
		}},
		order.Order{ID: "o2", Items: []order.LineItem{
			item("li-3", "o2", "d-ga", "Ga chien", 2, order.StatusPending, "staff-2"),
		}},
	)

	groups := AggregateBatches(snap)
	require.Len(t, groups, 1)
	assert.Equal(t, 3, groups[0].TotalQuantity, "completed items do not contribute")
	assert.Len(t, groups[0].Contributions, 2)
}

func TestAggregateBatches_InProgressWinsStatusMerge(t *testing.T) {
	snap := snapshotOf(
		order.Order{ID: "o1", Items: []order.LineItem{
			item("li-1", "o1", "d-ga", "Ga chien", 1, order.StatusInProgress, "staff-1"),
		}},
		order.Order{ID: "o2", Items: []order.LineItem{
			item("li-2", "o2", "d-ga", "Ga chien", 1, order.StatusPending, "staff-2"),
		}},
	)

	groups := AggregateBatches(snap)
	require.Len(t, groups, 1)
	assert.Equal(t, order.StatusInProgress, groups[0].Status, "a half-started batch reads as started")
}

func TestGroups_ReflectOnlyLatestSnapshot(t *testing.T) {
	svc := NewBatchService(&fakeItemService{}, testLogger())
	assert.Nil(t, svc.Groups(), "no snapshot yet means no groups")

	svc.UpdateSnapshot(batchSnapshot())
	require.Len(t, svc.Groups(), 1)

	// The next poll shows one order delivered; the group shrinks below the
	// two-contribution bar and disappears entirely.
	svc.UpdateSnapshot(snapshotOf(
		order.Order{ID: "o1", Items: []order.LineItem{
			item("li-1", "o1", "d-ga", "Ga chien", 1, order.StatusPending, "staff-1"),
		}},
	))
	assert.Empty(t, svc.Groups(), "superseded snapshot must not leak contributions")
}

func TestStartBatch_BulkTransitionsAllContributions(t *testing.T) {
	items := &fakeItemService{}
	svc := NewBatchService(items, testLogger())
	svc.UpdateSnapshot(batchSnapshot())

	require.NoError(t, svc.StartBatch(context.Background(), "d-ga"))

	require.Len(t, items.bulkCalls, 1, "one batch means one bulk call, not one per item")
	assert.Equal(t, []string{"li-1", "li-2", "li-3"}, items.bulkCalls[0])
	assert.Equal(t, order.StatusInProgress, items.bulkStatuses[0])
}

func TestCompleteBatch_BulkTransitionsToCompleted(t *testing.T) {
	items := &fakeItemService{}
	svc := NewBatchService(items, testLogger())
	svc.UpdateSnapshot(batchSnapshot())

	require.NoError(t, svc.CompleteBatch(context.Background(), "d-ga"))
	require.Len(t, items.bulkCalls, 1)
	assert.Equal(t, order.StatusCompleted, items.bulkStatuses[0])
}

func TestTransitionBatch_UnknownDish(t *testing.T) {
	items := &fakeItemService{}
	svc := NewBatchService(items, testLogger())
	svc.UpdateSnapshot(batchSnapshot())

	err := svc.StartBatch(context.Background(), "d-sup")
	assert.ErrorIs(t, err, ErrBatchNotFound, "single-contribution dishes have no batch")
	assert.Empty(t, items.bulkCalls)
}

func TestTransitionBatch_PropagatesBulkFailure(t *testing.T) {
	items := &fakeItemService{failBulk: true}
	svc := NewBatchService(items, testLogger())
	svc.UpdateSnapshot(batchSnapshot())

	err := svc.StartBatch(context.Background(), "d-ga")
	require.Error(t, err)
	// No local state to roll back; the next snapshot shows the truth.
	require.Len(t, svc.Groups(), 1)
}
