package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/security"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newAuthServiceForTest(t *testing.T) (*authService, *mockMemberRepo) {
	t.Helper()
	members := new(mockMemberRepo)
	svc := &authService{
		memberRepo: members,
		tokens:     security.NewTokenManager(testSecret, time.Hour),
		now:        func() time.Time { return date(2026, 3, 1) },
	}
	return svc, members
}

func TestAuthService_Signup(t *testing.T) {
	t.Run("Creates the member and issues a token", func(t *testing.T) {
		svc, members := newAuthServiceForTest(t)
		members.On("GetByEmail", mock.Anything, "pat@example.com").
			Return(domain.Member{}, &domain.NotFoundError{Resource: "member"})
		members.On("Create", mock.Anything, mock.MatchedBy(func(m domain.Member) bool {
			return m.Email == "pat@example.com" && m.Tier == domain.TierSilver
		})).Return(nil)

		member, token, err := svc.Signup(context.Background(), "Pat Doe", "Pat@Example.com", "s3cretpass", domain.TierSilver)
		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.NotEqual(t, "s3cretpass", member.PasswordHash)

		claims, err := security.NewTokenManager(testSecret, time.Hour).ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, member.ID, claims.MemberID)
	})

	t.Run("Rejects short passwords", func(t *testing.T) {
		svc, members := newAuthServiceForTest(t)

		_, _, err := svc.Signup(context.Background(), "Pat", "pat@example.com", "short", domain.TierBasic)
		var validation *domain.ValidationError
		require.ErrorAs(t, err, &validation)
		members.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Rejects duplicate email", func(t *testing.T) {
		svc, members := newAuthServiceForTest(t)
		existing := testMember(t, domain.TierBasic)
		members.On("GetByEmail", mock.Anything, existing.Email).Return(existing, nil)

		_, _, err := svc.Signup(context.Background(), "Pat", existing.Email, "s3cretpass", domain.TierBasic)
		var validation *domain.ValidationError
		require.ErrorAs(t, err, &validation)
		members.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestAuthService_Login(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cretpass"), bcrypt.MinCost)
	require.NoError(t, err)
	member := testMember(t, domain.TierBasic)
	member.PasswordHash = string(hash)

	t.Run("Valid credentials", func(t *testing.T) {
		svc, members := newAuthServiceForTest(t)
		members.On("GetByEmail", mock.Anything, member.Email).Return(member, nil)

		got, token, err := svc.Login(context.Background(), member.Email, "s3cretpass")
		require.NoError(t, err)
		assert.Equal(t, member.ID, got.ID)
		assert.NotEmpty(t, token)
	})

	t.Run("Wrong password", func(t *testing.T) {
		svc, members := newAuthServiceForTest(t)
		members.On("GetByEmail", mock.Anything, member.Email).Return(member, nil)

		_, _, err := svc.Login(context.Background(), member.Email, "wrongpass")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("Unknown email reads the same as wrong password", func(t *testing.T) {
		svc, members := newAuthServiceForTest(t)
		members.On("GetByEmail", mock.Anything, "nobody@example.com").
			Return(domain.Member{}, &domain.NotFoundError{Resource: "member"})

		_, _, err := svc.Login(context.Background(), "nobody@example.com", "s3cretpass")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("Inactive account", func(t *testing.T) {
		svc, members := newAuthServiceForTest(t)
		inactive := member
		inactive.IsActive = false
		members.On("GetByEmail", mock.Anything, inactive.Email).Return(inactive, nil)

		_, _, err := svc.Login(context.Background(), inactive.Email, "s3cretpass")
		var eligibility *domain.EligibilityError
		assert.ErrorAs(t, err, &eligibility)
	})
}
