package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/repository"
)

type paymentRecordRepository struct {
	db *sql.DB
}

func NewPaymentRecordRepository(db *sql.DB) repository.PaymentRecordRepository {
	return &paymentRecordRepository{db: db}
}

const paymentColumns = `id, member_id, rental_id, reservation_id, kind, amount_cents, transaction_id, description, created_at`

func (r *paymentRecordRepository) Create(ctx context.Context, p domain.PaymentRecord) error {
	query := `INSERT INTO payment_records (` + paymentColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.MemberID, p.RentalID, p.ReservationID, p.Kind,
		p.Amount.Cents(), p.TransactionID, p.Description, p.CreatedAt)
	return err
}

func (r *paymentRecordRepository) ListByMember(ctx context.Context, memberID uuid.UUID, page, pageSize int) ([]domain.PaymentRecord, int, error) {
	if page < 1 {
		page = 1
	}
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM payment_records WHERE member_id = $1`, memberID).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := `SELECT ` + paymentColumns + ` FROM payment_records
	          WHERE member_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, memberID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []domain.PaymentRecord
	for rows.Next() {
		p, err := scanPaymentRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}

func (r *paymentRecordRepository) FindByRental(ctx context.Context, rentalID uuid.UUID, kind domain.PaymentKind) (domain.PaymentRecord, error) {
	query := `SELECT ` + paymentColumns + ` FROM payment_records
	          WHERE rental_id = $1 AND kind = $2 ORDER BY created_at DESC LIMIT 1`
	p, err := scanPaymentRecord(r.db.QueryRowContext(ctx, query, rentalID, kind))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.PaymentRecord{}, &domain.NotFoundError{Resource: "payment record", ID: rentalID}
	}
	return p, err
}

func scanPaymentRecord(row rowScanner) (domain.PaymentRecord, error) {
	var (
		p           domain.PaymentRecord
		amountCents int64
	)
	err := row.Scan(&p.ID, &p.MemberID, &p.RentalID, &p.ReservationID, &p.Kind,
		&amountCents, &p.TransactionID, &p.Description, &p.CreatedAt)
	if err != nil {
		return domain.PaymentRecord{}, err
	}
	p.Amount = moneyFromCents(amountCents)
	return p, nil
}
