package repository

import (
	"go.uber.org/zap"

	"github.com/oyvindfi/bjorkvang/pkg/database"
)

type Repository struct {
	Booking BookingRepository
}

// NewRepository wires the Postgres-backed document store.
func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		Booking: NewBookingRepository(db, log),
	}
}

// NewMemoryRepository wires the in-memory fallback used when no external
// store is configured (local development and tests).
func NewMemoryRepository(log *zap.Logger) *Repository {
	return &Repository{
		Booking: NewMemoryBookingRepository(log),
	}
}
