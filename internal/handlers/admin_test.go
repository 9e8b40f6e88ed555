package handlers

import (
	"context"
	"testing"

	"github.com/schooldesk/reservations-api/internal/models"
)

func TestHandleTransition_RequiresAuth(t *testing.T) {
	db, engine, authHandler := newTestStack(t)
	seedCapacityEvent(t, db, 2)

	handler := NewAdminHandler(engine, authHandler)

	req := TransitionRequest{ID: 1}
	req.Body.Status = models.RegistrationCancelled

	if _, err := handler.HandleTransition(context.Background(), &req); err == nil {
		t.Fatal("expected 401 without a session cookie, got nil")
	}
}

func TestHandleTransition_AdminCancel(t *testing.T) {
	db, engine, authHandler := newTestStack(t)
	event := seedCapacityEvent(t, db, 2)

	registrationHandler := NewRegistrationHandler(engine)
	adminHandler := NewAdminHandler(engine, authHandler)

	regReq := RegisterRequest{EventID: event.ID}
	regReq.Body.PartySize = 1
	regReq.Body.Name = "Jordan"
	regReq.Body.PhoneNumber = "+1-555-0100"
	if _, err := registrationHandler.HandleRegister(context.Background(), &regReq); err != nil {
		t.Fatalf("HandleRegister returned error: %v", err)
	}

	var reg models.Registration
	db.Where("event_id = ?", event.ID).First(&reg)

	token, err := authHandler.GenerateToken(1, event.SchoolID, "admin")
	if err != nil {
		t.Fatalf("GenerateToken returned error: %v", err)
	}

	req := TransitionRequest{ID: reg.ID}
	req.Cookie = "auth_token=" + token
	req.Body.Status = models.RegistrationCancelled
	req.Body.Reason = "duplicate"

	resp, err := adminHandler.HandleTransition(context.Background(), &req)
	if err != nil {
		t.Fatalf("HandleTransition returned error: %v", err)
	}
	if resp.Body.Registration.Status != models.RegistrationCancelled {
		t.Errorf("expected CANCELLED, got %s", resp.Body.Registration.Status)
	}
	if resp.Body.Registration.CancelledBy != models.CancelledByAdmin {
		t.Errorf("expected cancelled_by ADMIN, got %s", resp.Body.Registration.CancelledBy)
	}
}

func TestHandleWaitlist_ForeignSchoolHidden(t *testing.T) {
	db, engine, authHandler := newTestStack(t)
	event := seedCapacityEvent(t, db, 2)

	adminHandler := NewAdminHandler(engine, authHandler)

	token, err := authHandler.GenerateToken(9, event.SchoolID+1, "admin")
	if err != nil {
		t.Fatalf("GenerateToken returned error: %v", err)
	}

	req := WaitlistRequest{EventID: event.ID}
	req.Cookie = "auth_token=" + token

	if _, err := adminHandler.HandleWaitlist(context.Background(), &req); err == nil {
		t.Fatal("expected foreign-school waitlist query to fail, got nil")
	}
}

func TestHandlePaymentCallback_RequiresAPIKey(t *testing.T) {
	_, engine, authHandler := newTestStack(t)
	handler := NewPaymentHandler(engine, authHandler)

	req := PaymentCallbackRequest{}
	req.Body.OrderID = "some-order"
	req.Body.Success = true

	if _, err := handler.HandleCallback(context.Background(), &req); err == nil {
		t.Fatal("expected 401 without an API key, got nil")
	}
}
