package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/repository"
)

type reservationRepository struct {
	db *sql.DB
}

func NewReservationRepository(db *sql.DB) repository.ReservationRepository {
	return &reservationRepository{db: db}
}

const reservationColumns = `id, equipment_id, member_id, period_start, period_end, status, authorization_id, rental_id, cancel_reason, created_at, confirmed_at, cancelled_at, fulfilled_at`

// Create inserts a reservation under the per-equipment lock, re-checking
// overlap against live holds so only one of two racing writers can take
// an overlapping window.
func (r *reservationRepository) Create(ctx context.Context, rv domain.Reservation) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := lockEquipment(ctx, tx, rv.EquipmentID); err != nil {
		return err
	}
	if rv.IsLive() {
		conflict, err := hasLiveOverlap(ctx, tx, rv.EquipmentID, rv.Period, uuid.Nil, uuid.Nil)
		if err != nil {
			return err
		}
		if conflict {
			return &domain.ConflictError{EquipmentID: rv.EquipmentID, Period: rv.Period, Reason: "equipment already held for an overlapping period"}
		}
	}

	query := `INSERT INTO reservations (` + reservationColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err = tx.ExecContext(ctx, query,
		rv.ID, rv.EquipmentID, rv.MemberID, rv.Period.Start(), rv.Period.End(), rv.Status,
		rv.AuthorizationID, rv.RentalID, rv.CancelReason, rv.CreatedAt, rv.ConfirmedAt, rv.CancelledAt, rv.FulfilledAt)
	if err != nil {
		return err
	}
	return tx.Commit()
}

func (r *reservationRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`
	rv, err := scanReservation(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Reservation{}, &domain.NotFoundError{Resource: "reservation", ID: id}
	}
	return rv, err
}

func (r *reservationRepository) Update(ctx context.Context, rv domain.Reservation) error {
	query := `UPDATE reservations
	          SET status=$1, authorization_id=$2, rental_id=$3, cancel_reason=$4, confirmed_at=$5, cancelled_at=$6, fulfilled_at=$7
	          WHERE id=$8`
	res, err := r.db.ExecContext(ctx, query,
		rv.Status, rv.AuthorizationID, rv.RentalID, rv.CancelReason, rv.ConfirmedAt, rv.CancelledAt, rv.FulfilledAt, rv.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return &domain.NotFoundError{Resource: "reservation", ID: rv.ID}
	}
	return nil
}

func (r *reservationRepository) ListByMember(ctx context.Context, memberID uuid.UUID, status domain.ReservationStatus, page, pageSize int) ([]domain.Reservation, int, error) {
	if page < 1 {
		page = 1
	}
	where := `WHERE member_id = $1`
	args := []any{memberID}
	if status != "" {
		where += ` AND status = $2`
		args = append(args, status)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM reservations `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM reservations %s ORDER BY period_start LIMIT $%d OFFSET $%d`,
		reservationColumns, where, len(args)+1, len(args)+2)
	args = append(args, pageSize, (page-1)*pageSize)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items, err := collectReservations(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *reservationRepository) ListLiveByEquipment(ctx context.Context, equipmentID uuid.UUID) ([]domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations
	          WHERE equipment_id = $1 AND status IN ('PENDING', 'CONFIRMED')
	          ORDER BY period_start`
	rows, err := r.db.QueryContext(ctx, query, equipmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReservations(rows)
}

func (r *reservationRepository) ListExpired(ctx context.Context, asOf time.Time) ([]domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations
	          WHERE status IN ('PENDING', 'CONFIRMED') AND period_end <= $1
	          ORDER BY period_end`
	rows, err := r.db.QueryContext(ctx, query, asOf)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReservations(rows)
}

func (r *reservationRepository) ListReadyToFulfill(ctx context.Context, asOf time.Time) ([]domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations
	          WHERE status = 'CONFIRMED' AND period_start <= $1 AND period_end > $1
	          ORDER BY period_start`
	rows, err := r.db.QueryContext(ctx, query, asOf)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReservations(rows)
}

func collectReservations(rows *sql.Rows) ([]domain.Reservation, error) {
	var items []domain.Reservation
	for rows.Next() {
		rv, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, rv)
	}
	return items, rows.Err()
}

func scanReservation(row rowScanner) (domain.Reservation, error) {
	var (
		rv         domain.Reservation
		start, end time.Time
	)
	err := row.Scan(&rv.ID, &rv.EquipmentID, &rv.MemberID, &start, &end, &rv.Status,
		&rv.AuthorizationID, &rv.RentalID, &rv.CancelReason, &rv.CreatedAt, &rv.ConfirmedAt, &rv.CancelledAt, &rv.FulfilledAt)
	if err != nil {
		return domain.Reservation{}, err
	}
	rv.Period, err = rangeFromColumns(start, end)
	if err != nil {
		return domain.Reservation{}, err
	}
	return rv, nil
}
