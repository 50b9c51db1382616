package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// MemberClaims is the claim set issued to authenticated members.
type MemberClaims struct {
	MemberID uuid.UUID `json:"member_id"`
	Email    string    `json:"email,omitempty"`
	Tier     string    `json:"tier,omitempty"`
	jwt.RegisteredClaims
}

type TokenManager interface {
	GenerateToken(memberID uuid.UUID, email, tier string) (string, error)
	ValidateToken(tokenString string) (*MemberClaims, error)
}

type tokenManager struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenManager(secret string, ttl time.Duration) TokenManager {
	return &tokenManager{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

func (m *tokenManager) GenerateToken(memberID uuid.UUID, email, tier string) (string, error) {
	now := time.Now()
	claims := MemberClaims{
		MemberID: memberID,
		Email:    email,
		Tier:     tier,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   memberID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "equiprent",
			ID:        uuid.NewString(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *tokenManager) ValidateToken(tokenString string) (*MemberClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &MemberClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*MemberClaims); ok && token.Valid {
		// Recover the member id from Subject if the custom claim was lost.
		if claims.MemberID == uuid.Nil && claims.Subject != "" {
			if id, err := uuid.Parse(claims.Subject); err == nil {
				claims.MemberID = id
			}
		}
		return claims, nil
	}

	return nil, ErrInvalidToken
}
