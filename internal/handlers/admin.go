package handlers

import (
	"context"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/schooldesk/reservations-api/internal/auth"
	"github.com/schooldesk/reservations-api/internal/models"
	"github.com/schooldesk/reservations-api/internal/reservations"
)

type AdminHandler struct {
	engine      *reservations.Engine
	authHandler *auth.AuthHandler
}

func NewAdminHandler(engine *reservations.Engine, authHandler *auth.AuthHandler) *AdminHandler {
	return &AdminHandler{engine: engine, authHandler: authHandler}
}

type TransitionRequest struct {
	auth.AuthInput
	ID   uint `path:"id"`
	Body struct {
		Status models.RegistrationStatus `json:"status" enum:"CONFIRMED,WAITLIST,CANCELLED"`
		Reason string                    `json:"reason,omitempty"`
	}
}

type TransitionResponse struct {
	Body struct {
		Registration  models.Registration `json:"registration"`
		AssignedTable *AssignedTable      `json:"assigned_table,omitempty"`
	}
}

func (h *AdminHandler) HandleTransition(ctx context.Context, input *TransitionRequest) (*TransitionResponse, error) {
	actor, err := h.authHandler.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	result, err := h.engine.Transition(ctx, input.ID, input.Body.Status, input.Body.Reason, actor)
	if err != nil {
		return nil, mapEngineError(err)
	}

	res := &TransitionResponse{}
	res.Body.Registration = result.Registration
	if result.AssignedTable != nil {
		res.Body.AssignedTable = &AssignedTable{
			ID:       result.AssignedTable.ID,
			Capacity: result.AssignedTable.Capacity,
			MinOrder: result.AssignedTable.MinOrder,
		}
	}
	return res, nil
}

type DeleteRegistrationRequest struct {
	auth.AuthInput
	ID uint `path:"id"`
}

func (h *AdminHandler) HandleDelete(ctx context.Context, input *DeleteRegistrationRequest) (*struct{}, error) {
	actor, err := h.authHandler.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	if err := h.engine.Delete(ctx, input.ID, actor); err != nil {
		return nil, mapEngineError(err)
	}
	return nil, nil
}

type WaitlistRequest struct {
	auth.AuthInput
	EventID uint `path:"eventID"`
}

type WaitlistResponse struct {
	Body struct {
		Registrations []models.Registration `json:"registrations"`
	}
}

func (h *AdminHandler) HandleWaitlist(ctx context.Context, input *WaitlistRequest) (*WaitlistResponse, error) {
	actor, err := h.authHandler.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	regs, err := h.engine.Waitlist(ctx, input.EventID, actor)
	if err != nil {
		return nil, mapEngineError(err)
	}

	res := &WaitlistResponse{}
	res.Body.Registrations = regs
	return res, nil
}

type ReconcileRequest struct {
	auth.AuthInput
	EventID uint `path:"eventID"`
}

type ReconcileResponse struct {
	Body struct {
		Before int `json:"before"`
		After  int `json:"after"`
	}
}

func (h *AdminHandler) HandleReconcile(ctx context.Context, input *ReconcileRequest) (*ReconcileResponse, error) {
	actor, err := h.authHandler.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	before, after, err := h.engine.Reconcile(ctx, input.EventID, actor)
	if err != nil {
		return nil, mapEngineError(err)
	}

	res := &ReconcileResponse{}
	res.Body.Before = before
	res.Body.After = after
	return res, nil
}

type CreateEventRequest struct {
	auth.AuthInput
	Body struct {
		Name                      string           `json:"name"`
		Type                      models.EventType `json:"type" enum:"CAPACITY_BASED,TABLE_BASED"`
		Capacity                  int              `json:"capacity,omitempty"`
		StartsAt                  time.Time        `json:"starts_at"`
		AllowCancellation         bool             `json:"allow_cancellation"`
		CancellationDeadlineHours int              `json:"cancellation_deadline_hours"`
		RequireCancellationReason bool             `json:"require_cancellation_reason"`
	}
}

type CreateEventResponse struct {
	Body models.Event
}

func (h *AdminHandler) HandleCreateEvent(ctx context.Context, input *CreateEventRequest) (*CreateEventResponse, error) {
	actor, err := h.authHandler.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	event, err := h.engine.CreateEvent(ctx, reservations.EventParams{
		Name:                      input.Body.Name,
		Type:                      input.Body.Type,
		Capacity:                  input.Body.Capacity,
		StartsAt:                  input.Body.StartsAt,
		AllowCancellation:         input.Body.AllowCancellation,
		CancellationDeadlineHours: input.Body.CancellationDeadlineHours,
		RequireCancellationReason: input.Body.RequireCancellationReason,
	}, actor)
	if err != nil {
		return nil, mapEngineError(err)
	}

	return &CreateEventResponse{Body: *event}, nil
}

type SetEventStatusRequest struct {
	auth.AuthInput
	EventID uint `path:"eventID"`
	Body    struct {
		Status models.EventStatus `json:"status" enum:"OPEN,PAUSED,CLOSED"`
	}
}

func (h *AdminHandler) HandleSetEventStatus(ctx context.Context, input *SetEventStatusRequest) (*struct{}, error) {
	actor, err := h.authHandler.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	if err := h.engine.SetEventStatus(ctx, input.EventID, input.Body.Status, actor); err != nil {
		return nil, mapEngineError(err)
	}
	return nil, nil
}

type AddTableRequest struct {
	auth.AuthInput
	EventID uint `path:"eventID"`
	Body    struct {
		Capacity int `json:"capacity" minimum:"1"`
		MinOrder int `json:"min_order" minimum:"0"`
	}
}

type AddTableResponse struct {
	Body models.Table
}

func (h *AdminHandler) HandleAddTable(ctx context.Context, input *AddTableRequest) (*AddTableResponse, error) {
	actor, err := h.authHandler.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	table, err := h.engine.AddTable(ctx, input.EventID, input.Body.Capacity, input.Body.MinOrder, actor)
	if err != nil {
		return nil, mapEngineError(err)
	}

	return &AddTableResponse{Body: *table}, nil
}
