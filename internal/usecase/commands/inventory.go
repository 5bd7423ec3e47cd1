package commands

import (
	"context"
	"errors"
	"log/slog"

	"order-checkout/internal/domain/inventory"
	"order-checkout/internal/infra"
	"order-checkout/internal/pkg/errs"
	"order-checkout/internal/pkg/metrics"
	"order-checkout/internal/usecase/queries"

	"github.com/google/uuid"
)

// maxConflictAttempts bounds the optimistic-lock retry loop. The operation is
// a single conditional read-modify-write, so no backoff is needed; exhaustion
// is reported as insufficient stock to keep the outward error taxonomy small.
const maxConflictAttempts = 3

// StockLevels is the counter pair returned by every ledger mutation.
type StockLevels struct {
	ProductID uuid.UUID
	Reserved  int64
	Available int64
}

type InventoryCommands interface {
	Provision(ctx context.Context, productID uuid.UUID, initialStock int64) (*queries.InventoryView, error)
	Reserve(ctx context.Context, productID uuid.UUID, quantity int64, referenceID uuid.UUID) (*StockLevels, error)
	Release(ctx context.Context, productID uuid.UUID, quantity int64, referenceID uuid.UUID) (*StockLevels, error)
	Deduct(ctx context.Context, productID uuid.UUID, quantity int64, orderID uuid.UUID) (*StockLevels, error)
	Adjust(ctx context.Context, productID uuid.UUID, delta int64, reason string) (*queries.InventoryView, error)
}

type inventoryCommandsImpl struct {
	repo    InventoryRepository
	metrics *metrics.Metrics
}

func NewInventoryCommands(repo InventoryRepository, m *metrics.Metrics) InventoryCommands {
	return &inventoryCommandsImpl{
		repo:    repo,
		metrics: m,
	}
}

func (s *inventoryCommandsImpl) Provision(ctx context.Context, productID uuid.UUID, initialStock int64) (*queries.InventoryView, error) {
	rec, err := inventory.NewRecord(productID, initialStock)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDomainValidation)
	}

	if err := s.repo.Insert(ctx, rec); err != nil {
		if infra.IsKind(err, infra.KindDuplicateKey) {
			return nil, errs.ErrProductAlreadyExists
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	created, err := s.repo.FindByProductID(ctx, productID)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return recordToView(created), nil
}

func (s *inventoryCommandsImpl) Reserve(ctx context.Context, productID uuid.UUID, quantity int64, referenceID uuid.UUID) (*StockLevels, error) {
	return s.mutate(ctx, productID, inventory.OperationReserve, referenceID, func(rec *inventory.Record) error {
		return rec.Reserve(quantity)
	})
}

func (s *inventoryCommandsImpl) Release(ctx context.Context, productID uuid.UUID, quantity int64, referenceID uuid.UUID) (*StockLevels, error) {
	return s.mutate(ctx, productID, inventory.OperationRelease, referenceID, func(rec *inventory.Record) error {
		return rec.Release(quantity)
	})
}

func (s *inventoryCommandsImpl) Deduct(ctx context.Context, productID uuid.UUID, quantity int64, orderID uuid.UUID) (*StockLevels, error) {
	return s.mutate(ctx, productID, inventory.OperationDeduct, orderID, func(rec *inventory.Record) error {
		return rec.Deduct(quantity)
	})
}

func (s *inventoryCommandsImpl) Adjust(ctx context.Context, productID uuid.UUID, delta int64, reason string) (*queries.InventoryView, error) {
	levels, err := s.mutate(ctx, productID, inventory.OperationAdjust, uuid.Nil, func(rec *inventory.Record) error {
		rec.Adjust(delta)
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("stock adjusted",
		"product_id", productID,
		"delta", delta,
		"reason", reason,
		"available", levels.Available,
	)

	rec, err := s.repo.FindByProductID(ctx, productID)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return recordToView(rec), nil
}

// mutate runs one ledger operation under the conflict-retry policy: read the
// record, apply the transition, write back conditioned on the version read.
// A concurrent writer makes the write fail as a conflict; the operation is
// retried from a fresh read. Callers never observe "conflict" as a distinct
// outcome.
func (s *inventoryCommandsImpl) mutate(
	ctx context.Context,
	productID uuid.UUID,
	op inventory.Operation,
	referenceID uuid.UUID,
	transition func(rec *inventory.Record) error,
) (*StockLevels, error) {
	for attempt := 1; attempt <= maxConflictAttempts; attempt++ {
		rec, err := s.repo.FindByProductID(ctx, productID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return nil, errs.ErrProductNotFound
			}
			return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}

		if err := transition(rec); err != nil {
			return nil, translateDomainErr(err)
		}

		updated, err := s.repo.UpdateCounters(ctx, productID, rec.Available(), rec.Reserved(), rec.Version())
		if err != nil {
			if infra.IsKind(err, infra.KindConflict) {
				s.metrics.StockConflictsTotal.Inc()
				slog.Debug("ledger write conflict, retrying",
					"operation", op.String(),
					"product_id", productID,
					"reference_id", referenceID,
					"attempt", attempt,
				)
				continue
			}
			return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}

		return &StockLevels{
			ProductID: updated.ProductID(),
			Reserved:  updated.Reserved(),
			Available: updated.Available(),
		}, nil
	}

	slog.Warn("ledger conflict retries exhausted",
		"product_id", productID,
		"reference_id", referenceID,
	)
	return nil, errs.ErrInsufficientStock
}

func translateDomainErr(err error) error {
	switch {
	case errors.Is(err, inventory.ErrInvalidQuantity):
		return errs.Mark(err, errs.ErrInvalidQuantity)
	case errors.Is(err, inventory.ErrInsufficientStock),
		errors.Is(err, inventory.ErrReservationUnderflow):
		// Underflow shares the outward taxonomy with insufficient stock
		return errs.Mark(err, errs.ErrInsufficientStock)
	default:
		return errs.Mark(err, errs.ErrDomainValidation)
	}
}

func recordToView(rec *inventory.Record) *queries.InventoryView {
	return &queries.InventoryView{
		ProductID:      rec.ProductID(),
		AvailableStock: rec.Available(),
		ReservedStock:  rec.Reserved(),
		Version:        rec.Version(),
		CreatedAt:      rec.CreatedAt(),
		UpdatedAt:      rec.UpdatedAt(),
	}
}
