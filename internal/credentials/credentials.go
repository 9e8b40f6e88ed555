// Package credentials mints and verifies the self-service cancellation
// tokens embedded in confirmation messages. Tokens are self-contained,
// so validating one needs no server-side session.
package credentials

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid or expired cancellation token")

// Claims identifies the registration a cancellation token belongs to.
type Claims struct {
	EventID     uint
	PhoneNumber string
}

type Issuer struct {
	secret []byte
	ttl    time.Duration
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl}
}

func (i *Issuer) Mint(eventID uint, phoneNumber string) (string, error) {
	claims := jwt.MapClaims{
		"event_id": eventID,
		"phone":    phoneNumber,
		"exp":      time.Now().Add(i.ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// Parse validates the signature and expiry and returns the claims. Any
// failure collapses into ErrInvalidToken; callers do not need to know why
// a link stopped working.
func (i *Issuer) Parse(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	eventID, ok := claims["event_id"].(float64)
	if !ok || eventID <= 0 {
		return nil, ErrInvalidToken
	}
	phone, ok := claims["phone"].(string)
	if !ok || phone == "" {
		return nil, ErrInvalidToken
	}

	return &Claims{EventID: uint(eventID), PhoneNumber: phone}, nil
}
