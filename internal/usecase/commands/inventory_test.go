//go:build unit

package commands_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"order-checkout/internal/domain/inventory"
	"order-checkout/internal/infra"
	"order-checkout/internal/pkg/errs"
	"order-checkout/internal/pkg/metrics"
	"order-checkout/internal/usecase/commands"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeInventoryRepo is an in-memory stand-in with real compare-and-swap
// semantics, so the retry policy is exercised against genuine conflicts.
type fakeInventoryRepo struct {
	mu      sync.Mutex
	records map[uuid.UUID]*recordState

	// forceConflicts makes the next N UpdateCounters calls fail as conflicts
	// regardless of the version, to test retry exhaustion deterministically.
	forceConflicts int
}

type recordState struct {
	available int64
	reserved  int64
	version   int64
}

func newFakeInventoryRepo() *fakeInventoryRepo {
	return &fakeInventoryRepo{records: make(map[uuid.UUID]*recordState)}
}

func (f *fakeInventoryRepo) seed(productID uuid.UUID, available, reserved int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[productID] = &recordState{available: available, reserved: reserved, version: 1}
}

func (f *fakeInventoryRepo) Insert(_ context.Context, rec *inventory.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.records[rec.ProductID()]; ok {
		return infra.WrapRepoErr("duplicate product", nil, infra.KindDuplicateKey)
	}
	f.records[rec.ProductID()] = &recordState{available: rec.Available(), version: 1}
	return nil
}

func (f *fakeInventoryRepo) FindByProductID(_ context.Context, productID uuid.UUID) (*inventory.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	state, ok := f.records[productID]
	if !ok {
		return nil, infra.WrapRepoErr("record not found", nil, infra.KindNotFound)
	}
	now := time.Now()
	return inventory.ReconstructRecord(productID, state.available, state.reserved, state.version, now, now), nil
}

func (f *fakeInventoryRepo) UpdateCounters(_ context.Context, productID uuid.UUID, available, reserved, expectedVersion int64) (*inventory.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	state, ok := f.records[productID]
	if !ok {
		return nil, infra.WrapRepoErr("record not found", nil, infra.KindNotFound)
	}
	if f.forceConflicts > 0 {
		f.forceConflicts--
		return nil, infra.WrapRepoErr("version conflict", nil, infra.KindConflict)
	}
	if state.version != expectedVersion {
		return nil, infra.WrapRepoErr("version conflict", nil, infra.KindConflict)
	}
	state.available = available
	state.reserved = reserved
	state.version++
	now := time.Now()
	return inventory.ReconstructRecord(productID, state.available, state.reserved, state.version, now, now), nil
}

func newInventoryCommands(repo *fakeInventoryRepo) commands.InventoryCommands {
	return commands.NewInventoryCommands(repo, metrics.NewNop())
}

func TestInventoryCommandsProvision(t *testing.T) {
	ctx := context.Background()

	t.Run("creates the ledger record", func(t *testing.T) {
		repo := newFakeInventoryRepo()
		svc := newInventoryCommands(repo)
		productID := uuid.New()

		view, err := svc.Provision(ctx, productID, 50)
		require.NoError(t, err)
		assert.Equal(t, productID, view.ProductID)
		assert.Equal(t, int64(50), view.AvailableStock)
		assert.Equal(t, int64(0), view.ReservedStock)
	})

	t.Run("rejects double provisioning", func(t *testing.T) {
		repo := newFakeInventoryRepo()
		svc := newInventoryCommands(repo)
		productID := uuid.New()

		_, err := svc.Provision(ctx, productID, 10)
		require.NoError(t, err)

		_, err = svc.Provision(ctx, productID, 10)
		assert.ErrorIs(t, err, errs.ErrProductAlreadyExists)
	})

	t.Run("rejects negative initial stock", func(t *testing.T) {
		svc := newInventoryCommands(newFakeInventoryRepo())
		_, err := svc.Provision(ctx, uuid.New(), -5)
		assert.ErrorIs(t, err, errs.ErrDomainValidation)
	})
}

func TestInventoryCommandsReserve(t *testing.T) {
	ctx := context.Background()

	t.Run("moves stock and returns both counters", func(t *testing.T) {
		repo := newFakeInventoryRepo()
		svc := newInventoryCommands(repo)
		productID := uuid.New()
		repo.seed(productID, 10, 0)

		levels, err := svc.Reserve(ctx, productID, 4, uuid.New())
		require.NoError(t, err)

		want := &commands.StockLevels{ProductID: productID, Reserved: 4, Available: 6}
		if diff := cmp.Diff(want, levels); diff != "" {
			t.Errorf("stock levels mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("unknown product", func(t *testing.T) {
		svc := newInventoryCommands(newFakeInventoryRepo())
		_, err := svc.Reserve(ctx, uuid.New(), 1, uuid.New())
		assert.ErrorIs(t, err, errs.ErrProductNotFound)
	})

	t.Run("insufficient stock", func(t *testing.T) {
		repo := newFakeInventoryRepo()
		svc := newInventoryCommands(repo)
		productID := uuid.New()
		repo.seed(productID, 2, 0)

		_, err := svc.Reserve(ctx, productID, 3, uuid.New())
		assert.ErrorIs(t, err, errs.ErrInsufficientStock)
	})

	t.Run("invalid quantity", func(t *testing.T) {
		repo := newFakeInventoryRepo()
		svc := newInventoryCommands(repo)
		productID := uuid.New()
		repo.seed(productID, 10, 0)

		_, err := svc.Reserve(ctx, productID, 0, uuid.New())
		assert.ErrorIs(t, err, errs.ErrInvalidQuantity)
	})
}

func TestInventoryCommandsConflictRetry(t *testing.T) {
	ctx := context.Background()

	t.Run("retries through transient conflicts", func(t *testing.T) {
		repo := newFakeInventoryRepo()
		svc := newInventoryCommands(repo)
		productID := uuid.New()
		repo.seed(productID, 10, 0)
		repo.forceConflicts = 2

		levels, err := svc.Reserve(ctx, productID, 1, uuid.New())
		require.NoError(t, err)
		assert.Equal(t, int64(1), levels.Reserved)
	})

	t.Run("exhaustion surfaces as insufficient stock", func(t *testing.T) {
		repo := newFakeInventoryRepo()
		svc := newInventoryCommands(repo)
		productID := uuid.New()
		repo.seed(productID, 10, 0)
		repo.forceConflicts = 3

		_, err := svc.Reserve(ctx, productID, 1, uuid.New())
		assert.ErrorIs(t, err, errs.ErrInsufficientStock)

		// No write went through
		rec, findErr := repo.FindByProductID(ctx, productID)
		require.NoError(t, findErr)
		assert.Equal(t, int64(10), rec.Available())
		assert.Equal(t, int64(0), rec.Reserved())
	})
}

func TestInventoryCommandsReleaseAndDeduct(t *testing.T) {
	ctx := context.Background()

	t.Run("release returns units to available", func(t *testing.T) {
		repo := newFakeInventoryRepo()
		svc := newInventoryCommands(repo)
		productID := uuid.New()
		repo.seed(productID, 6, 4)

		levels, err := svc.Release(ctx, productID, 4, uuid.New())
		require.NoError(t, err)
		assert.Equal(t, int64(10), levels.Available)
		assert.Equal(t, int64(0), levels.Reserved)
	})

	t.Run("release underflow is rejected", func(t *testing.T) {
		repo := newFakeInventoryRepo()
		svc := newInventoryCommands(repo)
		productID := uuid.New()
		repo.seed(productID, 6, 1)

		_, err := svc.Release(ctx, productID, 2, uuid.New())
		assert.ErrorIs(t, err, errs.ErrInsufficientStock)
	})

	t.Run("deduct consumes reserved without touching available", func(t *testing.T) {
		repo := newFakeInventoryRepo()
		svc := newInventoryCommands(repo)
		productID := uuid.New()
		repo.seed(productID, 6, 4)

		levels, err := svc.Deduct(ctx, productID, 4, uuid.New())
		require.NoError(t, err)
		assert.Equal(t, int64(6), levels.Available)
		assert.Equal(t, int64(0), levels.Reserved)
	})
}

func TestInventoryCommandsAdjust(t *testing.T) {
	ctx := context.Background()

	t.Run("applies delta and clamps at zero", func(t *testing.T) {
		repo := newFakeInventoryRepo()
		svc := newInventoryCommands(repo)
		productID := uuid.New()
		repo.seed(productID, 5, 2)

		view, err := svc.Adjust(ctx, productID, -100, "shrinkage")
		require.NoError(t, err)
		assert.Equal(t, int64(0), view.AvailableStock)
		assert.Equal(t, int64(2), view.ReservedStock)
	})

	t.Run("unknown product", func(t *testing.T) {
		svc := newInventoryCommands(newFakeInventoryRepo())
		_, err := svc.Adjust(ctx, uuid.New(), 5, "recount")
		assert.ErrorIs(t, err, errs.ErrProductNotFound)
	})
}

// Concurrent reservations must never oversell: with 30 units and 50
// competitors each wanting one, at most 30 can win and the counters must
// stay conserved.
func TestInventoryCommandsNoOversell(t *testing.T) {
	ctx := context.Background()
	repo := newFakeInventoryRepo()
	svc := newInventoryCommands(repo)
	productID := uuid.New()

	const initialStock = 30
	const competitors = 50
	repo.seed(productID, initialStock, 0)

	var wg sync.WaitGroup
	results := make(chan error, competitors)
	for range competitors {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Reserve(ctx, productID, 1, uuid.New())
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var wins int
	for err := range results {
		if err == nil {
			wins++
		} else {
			// Losers see insufficient stock, whether from an empty pool or
			// retry exhaustion under contention
			assert.ErrorIs(t, err, errs.ErrInsufficientStock)
		}
	}

	rec, err := repo.FindByProductID(ctx, productID)
	require.NoError(t, err)

	assert.LessOrEqual(t, wins, initialStock)
	assert.Equal(t, int64(wins), rec.Reserved())
	assert.Equal(t, int64(initialStock-wins), rec.Available())
}
