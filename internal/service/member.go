package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/repository"
)

type memberService struct {
	memberRepo  repository.MemberRepository
	paymentRepo repository.PaymentRecordRepository
	now         func() time.Time
}

func NewMemberService(memberRepo repository.MemberRepository, paymentRepo repository.PaymentRecordRepository) MemberService {
	return &memberService{memberRepo: memberRepo, paymentRepo: paymentRepo, now: time.Now}
}

func (s *memberService) GetMember(ctx context.Context, id uuid.UUID) (domain.Member, error) {
	return s.memberRepo.GetByID(ctx, id)
}

func (s *memberService) ListMembers(ctx context.Context, page, pageSize int) ([]domain.Member, int, error) {
	return s.memberRepo.List(ctx, page, pageSize)
}

func (s *memberService) ChangeTier(ctx context.Context, id uuid.UUID, tier domain.MembershipTier) (domain.Member, error) {
	member, err := s.memberRepo.GetByID(ctx, id)
	if err != nil {
		return domain.Member{}, err
	}
	changed, err := member.ChangeTier(tier, s.now())
	if err != nil {
		return domain.Member{}, err
	}
	if err := s.memberRepo.Update(ctx, changed); err != nil {
		return domain.Member{}, err
	}
	return changed, nil
}

func (s *memberService) DeactivateMember(ctx context.Context, id uuid.UUID) (domain.Member, error) {
	member, err := s.memberRepo.GetByID(ctx, id)
	if err != nil {
		return domain.Member{}, err
	}
	deactivated, err := member.Deactivate(s.now())
	if err != nil {
		return domain.Member{}, err
	}
	if err := s.memberRepo.Update(ctx, deactivated); err != nil {
		return domain.Member{}, err
	}
	return deactivated, nil
}

func (s *memberService) ListPayments(ctx context.Context, memberID uuid.UUID, page, pageSize int) ([]domain.PaymentRecord, int, error) {
	if _, err := s.memberRepo.GetByID(ctx, memberID); err != nil {
		return nil, 0, err
	}
	return s.paymentRepo.ListByMember(ctx, memberID, page, pageSize)
}
