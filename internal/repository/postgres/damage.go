package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/repository"
)

type damageAssessmentRepository struct {
	db *sql.DB
}

func NewDamageAssessmentRepository(db *sql.DB) repository.DamageAssessmentRepository {
	return &damageAssessmentRepository{db: db}
}

const damageColumns = `id, rental_id, equipment_id, condition_before, condition_after, damage_fee_cents, notes, assessed_by, assessed_at`

func (r *damageAssessmentRepository) Create(ctx context.Context, a domain.DamageAssessment) error {
	query := `INSERT INTO damage_assessments (` + damageColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.db.ExecContext(ctx, query,
		a.ID, a.RentalID, a.EquipmentID, a.ConditionBefore, a.ConditionAfter,
		a.DamageFee.Cents(), a.Notes, a.AssessedBy, a.AssessedAt)
	return err
}

func (r *damageAssessmentRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.DamageAssessment, error) {
	query := `SELECT ` + damageColumns + ` FROM damage_assessments WHERE id = $1`
	a, err := scanDamageAssessment(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.DamageAssessment{}, &domain.NotFoundError{Resource: "damage assessment", ID: id}
	}
	return a, err
}

func (r *damageAssessmentRepository) ListByRental(ctx context.Context, rentalID uuid.UUID) ([]domain.DamageAssessment, error) {
	query := `SELECT ` + damageColumns + ` FROM damage_assessments WHERE rental_id = $1 ORDER BY assessed_at`
	rows, err := r.db.QueryContext(ctx, query, rentalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.DamageAssessment
	for rows.Next() {
		a, err := scanDamageAssessment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

func scanDamageAssessment(row rowScanner) (domain.DamageAssessment, error) {
	var (
		a        domain.DamageAssessment
		feeCents int64
	)
	err := row.Scan(&a.ID, &a.RentalID, &a.EquipmentID, &a.ConditionBefore, &a.ConditionAfter,
		&feeCents, &a.Notes, &a.AssessedBy, &a.AssessedAt)
	if err != nil {
		return domain.DamageAssessment{}, err
	}
	a.DamageFee = moneyFromCents(feeCents)
	return a, nil
}
