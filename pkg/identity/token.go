package identity

import (
	"errors"
	"fmt"
	"time"

	"oracle-assistant-be/internal/entity"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const refreshTokenUse = "refresh"

var ErrInvalidToken = errors.New("invalid or expired token")

// Claims matches the access tokens GoTrue issues, so both providers verify the same way.
type Claims struct {
	Email    string `json:"email"`
	Role     string `json:"role,omitempty"`
	TokenUse string `json:"token_use,omitempty"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies HS256 tokens with the project JWT secret.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenService(secret string) *TokenService {
	return &TokenService{
		secret:     []byte(secret),
		accessTTL:  time.Hour,
		refreshTTL: 30 * 24 * time.Hour,
		now:        time.Now,
	}
}

// Issue mints an access/refresh pair for a confirmed user.
func (t *TokenService) Issue(user entity.AuthUser) (*entity.AuthSession, error) {
	now := t.now()
	expiresAt := now.Add(t.accessTTL)

	access, err := t.sign(Claims{
		Email: user.Email,
		Role:  "authenticated",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Id.String(),
			Audience:  jwt.ClaimStrings{"authenticated"},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})
	if err != nil {
		return nil, err
	}

	refresh, err := t.sign(Claims{
		Email:    user.Email,
		TokenUse: refreshTokenUse,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Id.String(),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.refreshTTL)),
		},
	})
	if err != nil {
		return nil, err
	}

	return &entity.AuthSession{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    expiresAt,
		User:         user,
	}, nil
}

func (t *TokenService) sign(claims Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify accepts access tokens only.
func (t *TokenService) Verify(tokenString string) (*entity.AuthUser, error) {
	claims, err := t.parse(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.TokenUse == refreshTokenUse {
		return nil, ErrInvalidToken
	}
	return claimsUser(claims)
}

// VerifyRefresh accepts refresh tokens minted by Issue only.
func (t *TokenService) VerifyRefresh(tokenString string) (*entity.AuthUser, error) {
	claims, err := t.parse(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.TokenUse != refreshTokenUse {
		return nil, ErrInvalidToken
	}
	return claimsUser(claims)
}

func (t *TokenService) parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func claimsUser(claims *Claims) (*entity.AuthUser, error) {
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return &entity.AuthUser{Id: id, Email: claims.Email}, nil
}
