package postgres

import (
	"database/sql"

	_ "github.com/lib/pq"

	"equiprent-backend/internal/repository"
)

type Store struct {
	db *sql.DB
	repository.EquipmentRepository
	repository.MemberRepository
	repository.RentalRepository
	repository.ReservationRepository
	repository.DamageAssessmentRepository
	repository.PaymentRecordRepository
	repository.NotificationRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                         db,
		EquipmentRepository:        NewEquipmentRepository(db),
		MemberRepository:           NewMemberRepository(db),
		RentalRepository:           NewRentalRepository(db),
		ReservationRepository:      NewReservationRepository(db),
		DamageAssessmentRepository: NewDamageAssessmentRepository(db),
		PaymentRecordRepository:    NewPaymentRecordRepository(db),
		NotificationRepository:     NewNotificationRepository(db),
	}
}
