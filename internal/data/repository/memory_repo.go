package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/oyvindfi/bjorkvang/internal/data/entity"
	"github.com/oyvindfi/bjorkvang/internal/domain"
)

// memoryBookingRepository satisfies the same contract as the Postgres store
// without any external dependency. Used for local development and tests.
// All mutations happen under the lock, so a booking's status can never be
// torn between concurrent writers.
type memoryBookingRepository struct {
	mu       sync.RWMutex
	bookings map[string]*entity.Booking
	log      *zap.Logger
}

func NewMemoryBookingRepository(log *zap.Logger) BookingRepository {
	return &memoryBookingRepository{
		bookings: make(map[string]*entity.Booking),
		log:      log.With(zap.String("repository", "booking-memory")),
	}
}

func (r *memoryBookingRepository) Save(_ context.Context, booking *entity.Booking) error {
	if booking.ID == "" {
		return domain.StorageError{Op: "save", Err: fmt.Errorf("booking has no id")}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookings[booking.ID] = booking.Clone()
	return nil
}

func (r *memoryBookingRepository) Get(_ context.Context, id, partitionHint string) (*entity.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	booking, ok := r.bookings[id]
	if !ok {
		return nil, nil
	}
	// A stale hint behaves like the remote store: the point read misses
	if partitionHint != "" && booking.PartitionKey() != partitionHint {
		return nil, nil
	}
	return booking.Clone(), nil
}

func (r *memoryBookingRepository) UpdateStatus(_ context.Context, id, _ string, status entity.Status) (*entity.Booking, error) {
	if !status.Valid() {
		return nil, domain.ValidationError{Field: "status", Msg: fmt.Sprintf("invalid status %q", status)}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	booking, ok := r.bookings[id]
	if !ok {
		return nil, nil
	}
	booking.Status = status
	booking.UpdatedAt = time.Now().UTC()
	return booking.Clone(), nil
}

func (r *memoryBookingRepository) UpdateStatusIf(_ context.Context, id, _ string, from, to entity.Status) (*entity.Booking, bool, error) {
	if !to.Valid() {
		return nil, false, domain.ValidationError{Field: "status", Msg: fmt.Sprintf("invalid status %q", to)}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	booking, ok := r.bookings[id]
	if !ok {
		return nil, false, nil
	}
	if booking.Status != from {
		return booking.Clone(), false, nil
	}
	booking.Status = to
	booking.UpdatedAt = time.Now().UTC()
	return booking.Clone(), true, nil
}

func (r *memoryBookingRepository) AddSignature(_ context.Context, id, _ string, sig entity.Signature) (*entity.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	booking, ok := r.bookings[id]
	if !ok {
		return nil, nil
	}
	if booking.Contract == nil {
		booking.Contract = &entity.Contract{}
	}
	switch sig.Role {
	case entity.RoleLandlord:
		booking.Contract.Landlord = &sig
	default:
		booking.Contract.Requester = &sig
	}
	booking.UpdatedAt = time.Now().UTC()
	return booking.Clone(), nil
}

func (r *memoryBookingRepository) MarkPaid(_ context.Context, id, _, orderID string, paidAt time.Time) (*entity.Booking, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	booking, ok := r.bookings[id]
	if !ok {
		return nil, false, nil
	}
	if booking.PaymentStatus == entity.PaymentPaid {
		return booking.Clone(), false, nil
	}
	booking.PaymentStatus = entity.PaymentPaid
	booking.PaymentOrderID = orderID
	booking.PaidAt = &paidAt
	booking.UpdatedAt = time.Now().UTC()
	return booking.Clone(), true, nil
}

func (r *memoryBookingRepository) List(_ context.Context, filter ListFilter) ([]*entity.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var bookings []*entity.Booking
	for _, booking := range r.bookings {
		if filter.StartDate != "" && booking.Date < filter.StartDate {
			continue
		}
		if filter.EndDate != "" && booking.Date > filter.EndDate {
			continue
		}
		bookings = append(bookings, booking.Clone())
	}

	sort.Slice(bookings, func(i, j int) bool {
		if bookings[i].Date != bookings[j].Date {
			return bookings[i].Date < bookings[j].Date
		}
		return bookings[i].Time < bookings[j].Time
	})

	return bookings, nil
}

func (r *memoryBookingRepository) Delete(_ context.Context, id, _ string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.bookings[id]; !ok {
		return false, nil
	}
	delete(r.bookings, id)
	return true, nil
}
