package inventory

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidQuantity      = errors.New("quantity must be greater than zero")
	ErrInsufficientStock    = errors.New("insufficient available stock")
	ErrReservationUnderflow = errors.New("release exceeds reserved stock")
	ErrNegativeInitialStock = errors.New("initial stock cannot be negative")
)

// Record is the per-product stock ledger entry. Reservation moves units from
// available to reserved without double counting; deduction removes reserved
// units for good. The version is the optimistic-concurrency token the storage
// layer conditions its writes on.
type Record struct {
	productID uuid.UUID
	available int64
	reserved  int64
	version   int64
	createdAt time.Time
	updatedAt time.Time
}

func NewRecord(productID uuid.UUID, initialStock int64) (*Record, error) {
	if initialStock < 0 {
		return nil, ErrNegativeInitialStock
	}
	return &Record{
		productID: productID,
		available: initialStock,
	}, nil
}

func ReconstructRecord(
	productID uuid.UUID,
	available, reserved, version int64,
	createdAt, updatedAt time.Time,
) *Record {
	return &Record{
		productID: productID,
		available: available,
		reserved:  reserved,
		version:   version,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// Reserve holds quantity units against an in-flight checkout. No partial
// reservation: either the full quantity is available or nothing moves.
func (r *Record) Reserve(quantity int64) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if r.available < quantity {
		return ErrInsufficientStock
	}
	r.available -= quantity
	r.reserved += quantity
	return nil
}

// Release returns previously reserved units to available stock. Releasing
// more than is reserved indicates a caller bug (double release) and is
// rejected rather than clamped.
func (r *Record) Release(quantity int64) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if r.reserved < quantity {
		return ErrReservationUnderflow
	}
	r.reserved -= quantity
	r.available += quantity
	return nil
}

// Deduct converts reserved units into a permanent sale. Available stock is
// untouched; the units left the sellable pool when they were reserved.
func (r *Record) Deduct(quantity int64) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if r.reserved < quantity {
		return ErrReservationUnderflow
	}
	r.reserved -= quantity
	return nil
}

// Adjust applies an administrative correction to available stock, clamping at
// zero so a large negative adjustment cannot drive the counter negative.
func (r *Record) Adjust(delta int64) {
	r.available += delta
	if r.available < 0 {
		r.available = 0
	}
}

func (r *Record) HasSufficientStock(quantity int64) bool {
	return quantity > 0 && r.available >= quantity
}

func (r *Record) ProductID() uuid.UUID { return r.productID }
func (r *Record) Available() int64     { return r.available }
func (r *Record) Reserved() int64      { return r.reserved }
func (r *Record) Version() int64       { return r.version }
func (r *Record) CreatedAt() time.Time { return r.createdAt }
func (r *Record) UpdatedAt() time.Time { return r.updatedAt }
