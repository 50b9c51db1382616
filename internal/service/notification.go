package service

import (
	"context"

	"github.com/google/uuid"

	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/repository"
)

type notificationService struct {
	noteRepo repository.NotificationRepository
}

func NewNotificationService(noteRepo repository.NotificationRepository) NotificationService {
	return &notificationService{noteRepo: noteRepo}
}

func (s *notificationService) ListNotifications(ctx context.Context, memberID uuid.UUID, page, pageSize int) ([]domain.Notification, int, error) {
	if page < 1 {
		page = 1
	}
	return s.noteRepo.ListByMember(ctx, memberID, pageSize, (page-1)*pageSize)
}

func (s *notificationService) MarkAsRead(ctx context.Context, memberID, notificationID uuid.UUID) error {
	return s.noteRepo.MarkAsRead(ctx, notificationID, memberID)
}
