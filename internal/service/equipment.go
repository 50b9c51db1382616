package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/repository"
)

type equipmentService struct {
	equipmentRepo repository.EquipmentRepository
	now           func() time.Time
}

func NewEquipmentService(equipmentRepo repository.EquipmentRepository) EquipmentService {
	return &equipmentService{equipmentRepo: equipmentRepo, now: time.Now}
}

func (s *equipmentService) AddEquipment(ctx context.Context, name, category string, dailyRate domain.Money, condition domain.Condition, purchaseDate time.Time) (domain.Equipment, error) {
	equipment, err := domain.NewEquipment(name, category, dailyRate, condition, purchaseDate, s.now())
	if err != nil {
		return domain.Equipment{}, err
	}
	if err := s.equipmentRepo.Create(ctx, equipment); err != nil {
		return domain.Equipment{}, err
	}
	return equipment, nil
}

func (s *equipmentService) GetEquipment(ctx context.Context, id uuid.UUID) (domain.Equipment, error) {
	return s.equipmentRepo.GetByID(ctx, id)
}

func (s *equipmentService) UpdateCondition(ctx context.Context, id uuid.UUID, condition domain.Condition) (domain.Equipment, error) {
	equipment, err := s.equipmentRepo.GetByID(ctx, id)
	if err != nil {
		return domain.Equipment{}, err
	}
	updated, err := equipment.UpdateCondition(condition, s.now())
	if err != nil {
		return domain.Equipment{}, err
	}
	if err := s.equipmentRepo.Update(ctx, updated); err != nil {
		return domain.Equipment{}, err
	}
	return updated, nil
}

func (s *equipmentService) RecordMaintenance(ctx context.Context, id uuid.UUID, condition domain.Condition) (domain.Equipment, error) {
	equipment, err := s.equipmentRepo.GetByID(ctx, id)
	if err != nil {
		return domain.Equipment{}, err
	}
	maintained, err := equipment.RecordMaintenance(condition, s.now())
	if err != nil {
		return domain.Equipment{}, err
	}
	if err := s.equipmentRepo.Update(ctx, maintained); err != nil {
		return domain.Equipment{}, err
	}
	return maintained, nil
}

func (s *equipmentService) ListEquipment(ctx context.Context, availableOnly bool, page, pageSize int) ([]domain.Equipment, int, error) {
	if availableOnly {
		return s.equipmentRepo.ListAvailable(ctx, page, pageSize)
	}
	return s.equipmentRepo.List(ctx, page, pageSize)
}

func (s *equipmentService) ListMaintenanceDue(ctx context.Context) ([]domain.Equipment, error) {
	// The repository filters on the last service (or purchase) date, so
	// the cutoff is one full interval in the past.
	return s.equipmentRepo.ListMaintenanceDue(ctx, s.now().Add(-domain.MaintenanceInterval))
}
