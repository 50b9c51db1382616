package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/repository"
	"equiprent-backend/internal/security"
)

// ErrInvalidCredentials is deliberately indistinguishable between an
// unknown email and a wrong password.
var ErrInvalidCredentials = errors.New("invalid email or password")

type authService struct {
	memberRepo repository.MemberRepository
	tokens     security.TokenManager
	now        func() time.Time
}

func NewAuthService(memberRepo repository.MemberRepository, tokens security.TokenManager) AuthService {
	return &authService{memberRepo: memberRepo, tokens: tokens, now: time.Now}
}

func (s *authService) Signup(ctx context.Context, name, email, password string, tier domain.MembershipTier) (domain.Member, string, error) {
	if len(password) < 8 {
		return domain.Member{}, "", &domain.ValidationError{Field: "password", Reason: "password must be at least 8 characters"}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.Member{}, "", fmt.Errorf("hash password: %w", err)
	}

	member, err := domain.NewMember(name, email, string(hash), tier, s.now())
	if err != nil {
		return domain.Member{}, "", err
	}
	if _, err := s.memberRepo.GetByEmail(ctx, member.Email); err == nil {
		return domain.Member{}, "", &domain.ValidationError{Field: "email", Reason: "email is already registered"}
	}
	if err := s.memberRepo.Create(ctx, member); err != nil {
		return domain.Member{}, "", err
	}

	token, err := s.tokens.GenerateToken(member.ID, member.Email, string(member.Tier))
	if err != nil {
		return domain.Member{}, "", fmt.Errorf("generate token: %w", err)
	}
	return member, token, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (domain.Member, string, error) {
	member, err := s.memberRepo.GetByEmail(ctx, email)
	if err != nil {
		return domain.Member{}, "", ErrInvalidCredentials
	}
	if !member.IsActive {
		return domain.Member{}, "", &domain.EligibilityError{MemberID: member.ID, Reason: "member account is inactive"}
	}
	if err := bcrypt.CompareHashAndPassword([]byte(member.PasswordHash), []byte(password)); err != nil {
		return domain.Member{}, "", ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(member.ID, member.Email, string(member.Tier))
	if err != nil {
		return domain.Member{}, "", fmt.Errorf("generate token: %w", err)
	}
	return member, token, nil
}
