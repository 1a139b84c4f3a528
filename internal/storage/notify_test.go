package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/zerobudget/internal/model"
	"github.com/Veraticus/zerobudget/internal/service"
)

func receive(t *testing.T, ch <-chan service.ChangeEvent) service.ChangeEvent {
	t.Helper()
	select {
	case event, ok := <-ch:
		require.True(t, ok, "channel closed")
		return event
	case <-time.After(time.Second):
		t.Fatal("no change event")
		return service.ChangeEvent{}
	}
}

func assertQuiet(t *testing.T, ch <-chan service.ChangeEvent) {
	t.Helper()
	select {
	case event := <-ch:
		t.Fatalf("unexpected change event %+v", event)
	default:
	}
}

func TestNotifier_CoalescesPendingEvents(t *testing.T) {
	n := newNotifier()
	ch, cancel := n.subscribe()
	defer cancel()

	n.publish(service.TableBudgets)
	n.publish(service.TableCategories)
	n.publish(service.TableBudgets)

	event := receive(t, ch)
	assert.Equal(t, uint64(3), event.Version)
	assert.Equal(t, []string{service.TableBudgets, service.TableCategories}, event.Tables)
	assertQuiet(t, ch)
}

func TestNotifier_CancelAndClose(t *testing.T) {
	n := newNotifier()
	ch, cancel := n.subscribe()
	cancel()
	cancel()

	_, ok := <-ch
	assert.False(t, ok)

	other, _ := n.subscribe()
	n.close()
	_, ok = <-other
	assert.False(t, ok)

	late, _ := n.subscribe()
	_, ok = <-late
	assert.False(t, ok)
}

func TestStore_PublishesOnWrite(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	_, ids := seedCategories(t, store, "Rent")

	events, cancel := store.Subscribe()
	defer cancel()

	september := model.NewMonth(2020, time.September)
	_, err := store.AddBudgets(ctx, model.Budget{CategoryID: ids[0], Month: september})
	require.NoError(t, err)

	event := receive(t, events)
	assert.Contains(t, event.Tables, service.TableBudgets)

	// Re-adding the same row inserts nothing and wakes nobody.
	_, err = store.AddBudgets(ctx, model.Budget{CategoryID: ids[0], Month: september})
	require.NoError(t, err)
	assertQuiet(t, events)
}

func TestRunInTx(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	groupID, ids := seedCategories(t, store, "Rent")
	events, cancel := store.Subscribe()
	defer cancel()

	t.Run("commits every write at once", func(t *testing.T) {
		err := store.RunInTx(ctx, func(tx service.Ledger) error {
			newIDs, err := tx.AddCategories(ctx, model.Category{Name: "Fun", GroupID: groupID, PositionInGroup: 1})
			if err != nil {
				return err
			}
			_, err = tx.AddBudgets(ctx, model.Budget{CategoryID: newIDs[0], Month: model.NewMonth(2020, time.September)})
			return err
		})
		require.NoError(t, err)

		event := receive(t, events)
		assert.Equal(t, []string{service.TableBudgets, service.TableCategories}, event.Tables)

		categories, err := store.AllCategories(ctx)
		require.NoError(t, err)
		assert.Len(t, categories, 2)
	})

	t.Run("rolls back on error", func(t *testing.T) {
		boom := errors.New("boom")
		err := store.RunInTx(ctx, func(tx service.Ledger) error {
			if err := tx.DeleteCategories(ctx, ids[0]); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assertQuiet(t, events)

		_, err = store.GetCategory(ctx, ids[0])
		assert.NoError(t, err)
	})
}
