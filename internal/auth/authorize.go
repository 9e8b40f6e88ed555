package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/schooldesk/reservations-api/internal/models"
	"github.com/schooldesk/reservations-api/internal/reservations"
)

// AuthInput is embedded in admin operation inputs to carry the session
// cookie.
type AuthInput struct {
	Cookie string `header:"Cookie" doc:"Session cookie"`
}

// Authorize resolves the acting admin from a request's Cookie header. It
// returns the tenant-scoped Actor the engine needs; the engine itself
// never authenticates.
func (h *AuthHandler) Authorize(ctx context.Context, cookieHeader string) (reservations.Actor, error) {
	header := http.Header{}
	header.Add("Cookie", cookieHeader)
	request := http.Request{Header: header}
	cookie, err := request.Cookie("auth_token")
	if err != nil {
		return reservations.Actor{}, fmt.Errorf("no auth token: %w", err)
	}

	token, err := jwt.Parse(cookie.Value, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(h.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return reservations.Actor{}, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return reservations.Actor{}, fmt.Errorf("invalid token claims")
	}

	adminID, ok := claims["admin_id"].(float64)
	if !ok || adminID <= 0 {
		return reservations.Actor{}, fmt.Errorf("invalid admin id claim")
	}
	schoolID, ok := claims["school_id"].(float64)
	if !ok || schoolID <= 0 {
		return reservations.Actor{}, fmt.Errorf("invalid school id claim")
	}
	role, _ := claims["role"].(string)

	return reservations.Actor{
		AdminID:  uint(adminID),
		SchoolID: uint(schoolID),
		Role:     role,
	}, nil
}

// AuthorizeAPIKey validates a service integration key, e.g. the payment
// gateway callback. Returns the owning admin's tenant scope.
func (h *AuthHandler) AuthorizeAPIKey(ctx context.Context, key string) (reservations.Actor, error) {
	if key == "" {
		return reservations.Actor{}, fmt.Errorf("missing API key")
	}

	var keyModel models.APIKey
	if err := h.db.WithContext(ctx).Preload("Admin").Where("key = ?", key).First(&keyModel).Error; err != nil {
		return reservations.Actor{}, fmt.Errorf("unknown API key")
	}
	if keyModel.ExpiresAt != nil && time.Now().After(*keyModel.ExpiresAt) {
		return reservations.Actor{}, fmt.Errorf("API key expired")
	}

	h.db.WithContext(ctx).Model(&keyModel).Update("last_used_at", time.Now())

	return reservations.Actor{
		AdminID:  keyModel.AdminID,
		SchoolID: keyModel.Admin.SchoolID,
		Role:     keyModel.Admin.Role,
	}, nil
}
