package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/repository"
)

type memberRepository struct {
	db *sql.DB
}

func NewMemberRepository(db *sql.DB) repository.MemberRepository {
	return &memberRepository{db: db}
}

const memberColumns = `id, name, email, password_hash, tier, active_rental_count, total_rentals, is_active, created_at, updated_at`

func (r *memberRepository) Create(ctx context.Context, m domain.Member) error {
	query := `INSERT INTO members (` + memberColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.db.ExecContext(ctx, query,
		m.ID, m.Name, m.Email, m.PasswordHash, m.Tier, m.ActiveRentalCount,
		m.TotalRentals, m.IsActive, m.CreatedAt, m.UpdatedAt)
	return err
}

func (r *memberRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE id = $1`
	m, err := scanMember(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Member{}, &domain.NotFoundError{Resource: "member", ID: id}
	}
	return m, err
}

func (r *memberRepository) GetByEmail(ctx context.Context, email string) (domain.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE email = $1`
	m, err := scanMember(r.db.QueryRowContext(ctx, query, email))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Member{}, &domain.NotFoundError{Resource: "member"}
	}
	return m, err
}

func (r *memberRepository) Update(ctx context.Context, m domain.Member) error {
	query := `UPDATE members
	          SET name=$1, email=$2, password_hash=$3, tier=$4, active_rental_count=$5,
	              total_rentals=$6, is_active=$7, updated_at=$8
	          WHERE id=$9`
	res, err := r.db.ExecContext(ctx, query,
		m.Name, m.Email, m.PasswordHash, m.Tier, m.ActiveRentalCount,
		m.TotalRentals, m.IsActive, m.UpdatedAt, m.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return &domain.NotFoundError{Resource: "member", ID: m.ID}
	}
	return nil
}

func (r *memberRepository) List(ctx context.Context, page, pageSize int) ([]domain.Member, int, error) {
	if page < 1 {
		page = 1
	}
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM members`).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := `SELECT ` + memberColumns + ` FROM members ORDER BY name LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, query, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []domain.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, m)
	}
	return items, total, rows.Err()
}

func (r *memberRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM members`).Scan(&count)
	return count, err
}

func scanMember(row rowScanner) (domain.Member, error) {
	var m domain.Member
	err := row.Scan(&m.ID, &m.Name, &m.Email, &m.PasswordHash, &m.Tier, &m.ActiveRentalCount,
		&m.TotalRentals, &m.IsActive, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return domain.Member{}, err
	}
	return m, nil
}
