package handlers

import (
	"context"

	"github.com/schooldesk/reservations-api/internal/models"
	"github.com/schooldesk/reservations-api/internal/reservations"
)

type RegistrationHandler struct {
	engine *reservations.Engine
}

func NewRegistrationHandler(engine *reservations.Engine) *RegistrationHandler {
	return &RegistrationHandler{engine: engine}
}

type RegisterRequest struct {
	EventID uint `path:"eventID" doc:"Event to register for"`
	Body    struct {
		PartySize   int    `json:"party_size" minimum:"1" doc:"Requested spots (capacity events) or guests (table events)"`
		Name        string `json:"name" doc:"Registrant name"`
		PhoneNumber string `json:"phone_number" doc:"Contact phone number, required"`
	}
}

type AssignedTable struct {
	ID       uint `json:"id"`
	Capacity int  `json:"capacity"`
	MinOrder int  `json:"min_order"`
}

type RegisterResponse struct {
	Body struct {
		Status            models.RegistrationStatus `json:"status"`
		ConfirmationCode  string                    `json:"confirmation_code"`
		WaitlistPriority  int                       `json:"waitlist_priority,omitempty"`
		CancellationToken string                    `json:"cancellation_token"`
		AssignedTable     *AssignedTable            `json:"assigned_table,omitempty"`
	}
}

func (h *RegistrationHandler) HandleRegister(ctx context.Context, input *RegisterRequest) (*RegisterResponse, error) {
	result, err := h.engine.Register(ctx, input.EventID, input.Body.PartySize, reservations.ContactInfo{
		Name:        input.Body.Name,
		PhoneNumber: input.Body.PhoneNumber,
	})
	if err != nil {
		return nil, mapEngineError(err)
	}

	res := &RegisterResponse{}
	res.Body.Status = result.Registration.Status
	res.Body.ConfirmationCode = result.Registration.ConfirmationCode
	res.Body.WaitlistPriority = result.Registration.WaitlistPriority
	res.Body.CancellationToken = result.Registration.CancellationToken
	if result.AssignedTable != nil {
		res.Body.AssignedTable = &AssignedTable{
			ID:       result.AssignedTable.ID,
			Capacity: result.AssignedTable.Capacity,
			MinOrder: result.AssignedTable.MinOrder,
		}
	}
	return res, nil
}
