package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/oyvindfi/bjorkvang/internal/data/entity"
	"github.com/oyvindfi/bjorkvang/internal/domain"
	"github.com/oyvindfi/bjorkvang/pkg/database"
)

// ListFilter narrows List to an inclusive date range. Zero values mean open.
type ListFilter struct {
	StartDate string
	EndDate   string
}

type BookingRepository interface {
	Save(ctx context.Context, booking *entity.Booking) error
	// Get returns nil, nil when the id is unknown. An empty partitionHint
	// falls back to a cross-partition lookup.
	Get(ctx context.Context, id, partitionHint string) (*entity.Booking, error)
	UpdateStatus(ctx context.Context, id, partitionHint string, status entity.Status) (*entity.Booking, error)
	// UpdateStatusIf performs a conditional update: the status only changes
	// when the stored status equals from. The bool result reports whether
	// the swap happened; when false the returned booking holds the current
	// state.
	UpdateStatusIf(ctx context.Context, id, partitionHint string, from, to entity.Status) (*entity.Booking, bool, error)
	AddSignature(ctx context.Context, id, partitionHint string, sig entity.Signature) (*entity.Booking, error)
	// MarkPaid is conditional like UpdateStatusIf: an already-paid booking is
	// left untouched and the bool result reports whether the transition
	// happened. Status polls and provider callbacks race for the same
	// capture, so only one caller may observe the unpaid -> paid flip.
	MarkPaid(ctx context.Context, id, partitionHint, orderID string, paidAt time.Time) (*entity.Booking, bool, error)
	List(ctx context.Context, filter ListFilter) ([]*entity.Booking, error)
	// Delete exists for test cleanup only; no documented flow removes bookings.
	Delete(ctx context.Context, id, partitionHint string) (bool, error)
}

// bookingRepository stores each booking as one jsonb document keyed by
// (id, partition_key), partition_key being the booking month. Point reads
// hit the composite key; hint-less lookups scan by id alone.
type bookingRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewBookingRepository(db database.PgxIface, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking")),
	}
}

func storageErr(op string, err error) error {
	code := ""
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		code = pgErr.Code
	}
	return domain.StorageError{Op: op, Code: code, Err: err}
}

func (r *bookingRepository) Save(ctx context.Context, booking *entity.Booking) error {
	doc, err := json.Marshal(booking)
	if err != nil {
		return storageErr("save", err)
	}

	query := `
		INSERT INTO bookings (id, partition_key, date, time, status, doc, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id, partition_key) DO UPDATE
		SET date = EXCLUDED.date, time = EXCLUDED.time, status = EXCLUDED.status,
		    doc = EXCLUDED.doc, updated_at = EXCLUDED.updated_at
	`

	_, err = r.db.Exec(ctx, query,
		booking.ID,
		booking.PartitionKey(),
		booking.Date,
		booking.Time,
		string(booking.Status),
		doc,
		booking.CreatedAt,
		booking.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to save booking",
			zap.Error(err),
			zap.String("booking_id", booking.ID),
		)
		return storageErr("save", err)
	}

	return nil
}

func (r *bookingRepository) Get(ctx context.Context, id, partitionHint string) (*entity.Booking, error) {
	var (
		doc []byte
		err error
	)

	if partitionHint != "" {
		// Point read on the composite key
		err = r.db.QueryRow(ctx,
			`SELECT doc FROM bookings WHERE id = $1 AND partition_key = $2`,
			id, partitionHint,
		).Scan(&doc)
	} else {
		// Cross-partition lookup: slower, still returns the single record
		err = r.db.QueryRow(ctx,
			`SELECT doc FROM bookings WHERE id = $1`,
			id,
		).Scan(&doc)
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to get booking",
			zap.Error(err),
			zap.String("booking_id", id),
			zap.String("partition_hint", partitionHint),
		)
		return nil, storageErr("get", err)
	}

	return decodeBooking(doc)
}

func decodeBooking(doc []byte) (*entity.Booking, error) {
	var booking entity.Booking
	if err := json.Unmarshal(doc, &booking); err != nil {
		return nil, storageErr("decode", err)
	}
	return &booking, nil
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, id, partitionHint string, status entity.Status) (*entity.Booking, error) {
	if !status.Valid() {
		return nil, domain.ValidationError{Field: "status", Msg: fmt.Sprintf("invalid status %q", status)}
	}

	existing, err := r.Get(ctx, id, partitionHint)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}

	existing.Status = status
	existing.UpdatedAt = time.Now().UTC()
	if err := r.Save(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (r *bookingRepository) UpdateStatusIf(ctx context.Context, id, partitionHint string, from, to entity.Status) (*entity.Booking, bool, error) {
	if !to.Valid() {
		return nil, false, domain.ValidationError{Field: "status", Msg: fmt.Sprintf("invalid status %q", to)}
	}

	now := time.Now().UTC()
	query := `
		UPDATE bookings
		SET status = $1,
		    doc = jsonb_set(jsonb_set(doc, '{status}', to_jsonb($1::text)), '{updatedAt}', to_jsonb($2::timestamptz)),
		    updated_at = $2
		WHERE id = $3 AND status = $4
	`
	args := []any{string(to), now, id, string(from)}
	if partitionHint != "" {
		query += ` AND partition_key = $5`
		args = append(args, partitionHint)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed conditional status update",
			zap.Error(err),
			zap.String("booking_id", id),
			zap.String("from", string(from)),
			zap.String("to", string(to)),
		)
		return nil, false, storageErr("update_status", err)
	}

	booking, getErr := r.Get(ctx, id, partitionHint)
	if getErr != nil {
		return nil, false, getErr
	}
	if booking == nil {
		return nil, false, nil
	}
	return booking, tag.RowsAffected() > 0, nil
}

func (r *bookingRepository) AddSignature(ctx context.Context, id, partitionHint string, sig entity.Signature) (*entity.Booking, error) {
	existing, err := r.Get(ctx, id, partitionHint)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}

	if existing.Contract == nil {
		existing.Contract = &entity.Contract{}
	}
	// One record per role; a repeat signature replaces the previous one
	switch sig.Role {
	case entity.RoleLandlord:
		existing.Contract.Landlord = &sig
	default:
		existing.Contract.Requester = &sig
	}
	existing.UpdatedAt = time.Now().UTC()

	if err := r.Save(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (r *bookingRepository) MarkPaid(ctx context.Context, id, partitionHint, orderID string, paidAt time.Time) (*entity.Booking, bool, error) {
	existing, err := r.Get(ctx, id, partitionHint)
	if err != nil {
		return nil, false, err
	}
	if existing == nil {
		return nil, false, nil
	}
	if existing.PaymentStatus == entity.PaymentPaid {
		// The first capture won; keep its order id and PaidAt
		return existing, false, nil
	}

	existing.PaymentStatus = entity.PaymentPaid
	existing.PaymentOrderID = orderID
	existing.PaidAt = &paidAt
	existing.UpdatedAt = time.Now().UTC()

	if err := r.Save(ctx, existing); err != nil {
		return nil, false, err
	}
	return existing, true, nil
}

func (r *bookingRepository) List(ctx context.Context, filter ListFilter) ([]*entity.Booking, error) {
	query := `SELECT doc FROM bookings`
	var args []any
	switch {
	case filter.StartDate != "" && filter.EndDate != "":
		query += ` WHERE date >= $1 AND date <= $2`
		args = append(args, filter.StartDate, filter.EndDate)
	case filter.StartDate != "":
		query += ` WHERE date >= $1`
		args = append(args, filter.StartDate)
	case filter.EndDate != "":
		query += ` WHERE date <= $1`
		args = append(args, filter.EndDate)
	}
	query += ` ORDER BY date ASC, time ASC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to list bookings", zap.Error(err))
		return nil, storageErr("list", err)
	}
	defer rows.Close()

	var bookings []*entity.Booking
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			r.log.Error("Failed to scan booking row", zap.Error(err))
			return nil, storageErr("list", err)
		}
		booking, err := decodeBooking(doc)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}

	return bookings, nil
}

func (r *bookingRepository) Delete(ctx context.Context, id, partitionHint string) (bool, error) {
	query := `DELETE FROM bookings WHERE id = $1`
	args := []any{id}
	if partitionHint != "" {
		query += ` AND partition_key = $2`
		args = append(args, partitionHint)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to delete booking",
			zap.Error(err),
			zap.String("booking_id", id),
		)
		return false, storageErr("delete", err)
	}

	return tag.RowsAffected() > 0, nil
}
