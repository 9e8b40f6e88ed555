package handlers

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"github.com/schooldesk/reservations-api/internal/auth"
	"github.com/schooldesk/reservations-api/internal/models"
	"github.com/schooldesk/reservations-api/internal/reservations"
)

type PaymentHandler struct {
	engine      *reservations.Engine
	authHandler *auth.AuthHandler
}

func NewPaymentHandler(engine *reservations.Engine, authHandler *auth.AuthHandler) *PaymentHandler {
	return &PaymentHandler{engine: engine, authHandler: authHandler}
}

type CreateOrderRequest struct {
	EventID uint `path:"eventID"`
	Body    struct {
		PartySize   int    `json:"party_size" minimum:"1"`
		Name        string `json:"name"`
		PhoneNumber string `json:"phone_number"`
	}
}

type CreateOrderResponse struct {
	Body struct {
		OrderID          string                    `json:"order_id"`
		Status           models.RegistrationStatus `json:"status"`
		ConfirmationCode string                    `json:"confirmation_code"`
	}
}

func (h *PaymentHandler) HandleCreateOrder(ctx context.Context, input *CreateOrderRequest) (*CreateOrderResponse, error) {
	result, err := h.engine.CreateOrder(ctx, input.EventID, input.Body.PartySize, reservations.ContactInfo{
		Name:        input.Body.Name,
		PhoneNumber: input.Body.PhoneNumber,
	})
	if err != nil {
		return nil, mapEngineError(err)
	}

	res := &CreateOrderResponse{}
	res.Body.OrderID = result.OrderID
	res.Body.Status = result.Registration.Status
	res.Body.ConfirmationCode = result.Registration.ConfirmationCode
	return res, nil
}

type PaymentCallbackRequest struct {
	APIKey string `header:"X-API-KEY" doc:"Integration key of the payment gateway"`
	Body   struct {
		OrderID string `json:"order_id"`
		Success bool   `json:"success"`
	}
}

type PaymentCallbackResponse struct {
	Body struct {
		Status models.RegistrationStatus `json:"status"`
	}
}

// HandleCallback consumes the gateway's outcome for an order. The order id
// is the idempotency key: retried callbacks return the recorded outcome.
func (h *PaymentHandler) HandleCallback(ctx context.Context, input *PaymentCallbackRequest) (*PaymentCallbackResponse, error) {
	if _, err := h.authHandler.AuthorizeAPIKey(ctx, input.APIKey); err != nil {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	reg, err := h.engine.CompleteOrder(ctx, input.Body.OrderID, input.Body.Success)
	if err != nil {
		return nil, mapEngineError(err)
	}

	res := &PaymentCallbackResponse{}
	res.Body.Status = reg.Status
	return res, nil
}
