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

type rentalRepository struct {
	db *sql.DB
}

func NewRentalRepository(db *sql.DB) repository.RentalRepository {
	return &rentalRepository{db: db}
}

const rentalColumns = `id, equipment_id, member_id, reservation_id, period_start, period_end, status, base_cost_cents, late_fee_cents, damage_fee_cents, total_cost_cents, condition_at_start, condition_at_return, created_at, returned_at`

// Create inserts a rental inside a transaction that locks the equipment
// row first. All writers for one equipment unit serialize on that lock,
// so the overlap re-check below sees every committed live hold and at most
// one of two racing writers can win an overlapping window.
func (r *rentalRepository) Create(ctx context.Context, rt domain.Rental) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := lockEquipment(ctx, tx, rt.EquipmentID); err != nil {
		return err
	}
	if rt.IsLive() {
		// A rental fulfilling a reservation must not conflict with the
		// hold it is replacing.
		excludeReservation := uuid.Nil
		if rt.ReservationID != nil {
			excludeReservation = *rt.ReservationID
		}
		conflict, err := hasLiveOverlap(ctx, tx, rt.EquipmentID, rt.Period, uuid.Nil, excludeReservation)
		if err != nil {
			return err
		}
		if conflict {
			return &domain.ConflictError{EquipmentID: rt.EquipmentID, Period: rt.Period, Reason: "equipment already held for an overlapping period"}
		}
	}

	query := `INSERT INTO rentals (` + rentalColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err = tx.ExecContext(ctx, query,
		rt.ID, rt.EquipmentID, rt.MemberID, rt.ReservationID, rt.Period.Start(), rt.Period.End(), rt.Status,
		rt.BaseCost.Cents(), rt.LateFee.Cents(), rt.DamageFee.Cents(), rt.TotalCost.Cents(),
		rt.ConditionAtStart, rt.ConditionAtReturn, rt.CreatedAt, rt.ReturnedAt)
	if err != nil {
		return err
	}
	return tx.Commit()
}

func (r *rentalRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE id = $1`
	rt, err := scanRental(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Rental{}, &domain.NotFoundError{Resource: "rental", ID: id}
	}
	return rt, err
}

func (r *rentalRepository) Update(ctx context.Context, rt domain.Rental) error {
	query := `UPDATE rentals
	          SET period_start=$1, period_end=$2, status=$3, base_cost_cents=$4, late_fee_cents=$5,
	              damage_fee_cents=$6, total_cost_cents=$7, condition_at_return=$8, returned_at=$9
	          WHERE id=$10`
	res, err := r.db.ExecContext(ctx, query,
		rt.Period.Start(), rt.Period.End(), rt.Status, rt.BaseCost.Cents(), rt.LateFee.Cents(),
		rt.DamageFee.Cents(), rt.TotalCost.Cents(), rt.ConditionAtReturn, rt.ReturnedAt, rt.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return &domain.NotFoundError{Resource: "rental", ID: rt.ID}
	}
	return nil
}

func (r *rentalRepository) ListByMember(ctx context.Context, memberID uuid.UUID, status domain.RentalStatus, page, pageSize int) ([]domain.Rental, int, error) {
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
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM rentals `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM rentals %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		rentalColumns, where, len(args)+1, len(args)+2)
	args = append(args, pageSize, (page-1)*pageSize)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items, err := collectRentals(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *rentalRepository) ListLiveByEquipment(ctx context.Context, equipmentID uuid.UUID) ([]domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals
	          WHERE equipment_id = $1 AND status IN ('ACTIVE', 'OVERDUE')
	          ORDER BY period_start`
	rows, err := r.db.QueryContext(ctx, query, equipmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRentals(rows)
}

func (r *rentalRepository) ListOverdue(ctx context.Context, asOf time.Time) ([]domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals
	          WHERE status = 'ACTIVE' AND period_end <= $1
	          ORDER BY period_end`
	rows, err := r.db.QueryContext(ctx, query, asOf)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRentals(rows)
}

func collectRentals(rows *sql.Rows) ([]domain.Rental, error) {
	var items []domain.Rental
	for rows.Next() {
		rt, err := scanRental(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, rt)
	}
	return items, rows.Err()
}

func scanRental(row rowScanner) (domain.Rental, error) {
	var (
		rt                                       domain.Rental
		start, end                               time.Time
		baseCents, lateCents, dmgCents, totCents int64
	)
	err := row.Scan(&rt.ID, &rt.EquipmentID, &rt.MemberID, &rt.ReservationID, &start, &end, &rt.Status,
		&baseCents, &lateCents, &dmgCents, &totCents,
		&rt.ConditionAtStart, &rt.ConditionAtReturn, &rt.CreatedAt, &rt.ReturnedAt)
	if err != nil {
		return domain.Rental{}, err
	}
	rt.Period, err = rangeFromColumns(start, end)
	if err != nil {
		return domain.Rental{}, err
	}
	rt.BaseCost = moneyFromCents(baseCents)
	rt.LateFee = moneyFromCents(lateCents)
	rt.DamageFee = moneyFromCents(dmgCents)
	rt.TotalCost = moneyFromCents(totCents)
	return rt, nil
}

// lockEquipment takes the per-equipment write lock for the duration of
// the surrounding transaction.
func lockEquipment(ctx context.Context, tx *sql.Tx, equipmentID uuid.UUID) error {
	var id uuid.UUID
	err := tx.QueryRowContext(ctx, `SELECT id FROM equipment WHERE id = $1 FOR UPDATE`, equipmentID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return &domain.NotFoundError{Resource: "equipment", ID: equipmentID}
	}
	return err
}

// hasLiveOverlap checks, under the equipment lock, whether any live
// rental or live reservation overlaps the half-open period. Rows matching
// the exclusion ids are skipped so an aggregate does not conflict with
// itself.
func hasLiveOverlap(ctx context.Context, tx *sql.Tx, equipmentID uuid.UUID, period domain.DateRange, excludeRentalID, excludeReservationID uuid.UUID) (bool, error) {
	var conflict bool
	query := `SELECT EXISTS (
	            SELECT 1 FROM rentals
	            WHERE equipment_id = $1 AND id <> $2
	              AND status IN ('ACTIVE', 'OVERDUE')
	              AND period_start < $4 AND $3 < period_end
	          ) OR EXISTS (
	            SELECT 1 FROM reservations
	            WHERE equipment_id = $1 AND id <> $5
	              AND status IN ('PENDING', 'CONFIRMED')
	              AND period_start < $4 AND $3 < period_end
	          )`
	err := tx.QueryRowContext(ctx, query, equipmentID, excludeRentalID, period.Start(), period.End(), excludeReservationID).Scan(&conflict)
	return conflict, err
}
