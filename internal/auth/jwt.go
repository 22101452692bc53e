package auth

import (
	"errors"
	"fmt"
	"time"

	"ecobins/internal/model"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims mirrors the token issued by the backend on login
type Claims struct {
	UserID int64  `json:"id"`
	Email  string `json:"email"`
	Rol    string `json:"rol"`
	jwt.RegisteredClaims
}

// Verifier checks HS256 tokens signed with the shared backend secret
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Actor validates the token and returns who is calling
func (v *Verifier) Actor(tokenString string) (model.Actor, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return model.Actor{}, ErrInvalidToken
	}

	role, err := model.ParseRole(claims.Rol)
	if err != nil {
		return model.Actor{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.UserID <= 0 {
		return model.Actor{}, fmt.Errorf("%w: missing user id", ErrInvalidToken)
	}

	return model.Actor{
		UserID: claims.UserID,
		Email:  claims.Email,
		Role:   role,
		Token:  tokenString,
	}, nil
}

// Sign issues a token the same way the backend does
func (v *Verifier) Sign(userID int64, email string, role model.Role, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Email:  email,
		Rol:    string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}
