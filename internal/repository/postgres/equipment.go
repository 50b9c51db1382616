package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/repository"
)

type equipmentRepository struct {
	db *sql.DB
}

func NewEquipmentRepository(db *sql.DB) repository.EquipmentRepository {
	return &equipmentRepository{db: db}
}

const equipmentColumns = `id, name, category, daily_rate_cents, condition, is_available, current_rental_id, purchase_date, last_maintenance_date, created_at, updated_at`

func (r *equipmentRepository) Create(ctx context.Context, e domain.Equipment) error {
	query := `INSERT INTO equipment (` + equipmentColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.db.ExecContext(ctx, query,
		e.ID, e.Name, e.Category, e.DailyRate.Cents(), e.Condition, e.IsAvailable,
		e.CurrentRentalID, e.PurchaseDate, e.LastMaintenanceDate, e.CreatedAt, e.UpdatedAt)
	return err
}

func (r *equipmentRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Equipment, error) {
	query := `SELECT ` + equipmentColumns + ` FROM equipment WHERE id = $1`
	e, err := scanEquipment(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Equipment{}, &domain.NotFoundError{Resource: "equipment", ID: id}
	}
	return e, err
}

func (r *equipmentRepository) Update(ctx context.Context, e domain.Equipment) error {
	query := `UPDATE equipment
	          SET name=$1, category=$2, daily_rate_cents=$3, condition=$4, is_available=$5,
	              current_rental_id=$6, last_maintenance_date=$7, updated_at=$8
	          WHERE id=$9`
	res, err := r.db.ExecContext(ctx, query,
		e.Name, e.Category, e.DailyRate.Cents(), e.Condition, e.IsAvailable,
		e.CurrentRentalID, e.LastMaintenanceDate, e.UpdatedAt, e.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return &domain.NotFoundError{Resource: "equipment", ID: e.ID}
	}
	return nil
}

func (r *equipmentRepository) List(ctx context.Context, page, pageSize int) ([]domain.Equipment, int, error) {
	return r.list(ctx, `SELECT `+equipmentColumns+` FROM equipment ORDER BY name LIMIT $1 OFFSET $2`,
		`SELECT count(*) FROM equipment`, page, pageSize)
}

func (r *equipmentRepository) ListAvailable(ctx context.Context, page, pageSize int) ([]domain.Equipment, int, error) {
	return r.list(ctx, `SELECT `+equipmentColumns+` FROM equipment WHERE is_available ORDER BY name LIMIT $1 OFFSET $2`,
		`SELECT count(*) FROM equipment WHERE is_available`, page, pageSize)
}

func (r *equipmentRepository) list(ctx context.Context, query, countQuery string, page, pageSize int) ([]domain.Equipment, int, error) {
	if page < 1 {
		page = 1
	}
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.db.QueryContext(ctx, query, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []domain.Equipment
	for rows.Next() {
		e, err := scanEquipment(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, e)
	}
	return items, total, rows.Err()
}

func (r *equipmentRepository) ListMaintenanceDue(ctx context.Context, servicedBefore time.Time) ([]domain.Equipment, error) {
	query := `SELECT ` + equipmentColumns + ` FROM equipment
	          WHERE COALESCE(last_maintenance_date, purchase_date) <= $1
	          ORDER BY COALESCE(last_maintenance_date, purchase_date)`
	rows, err := r.db.QueryContext(ctx, query, servicedBefore)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Equipment
	for rows.Next() {
		e, err := scanEquipment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

func (r *equipmentRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM equipment WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

func (r *equipmentRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM equipment`).Scan(&count)
	return count, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEquipment(row rowScanner) (domain.Equipment, error) {
	var (
		e         domain.Equipment
		rateCents int64
	)
	err := row.Scan(&e.ID, &e.Name, &e.Category, &rateCents, &e.Condition, &e.IsAvailable,
		&e.CurrentRentalID, &e.PurchaseDate, &e.LastMaintenanceDate, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return domain.Equipment{}, err
	}
	e.DailyRate = moneyFromCents(rateCents)
	return e, nil
}
