package handlers

import (
	"context"

	"github.com/schooldesk/reservations-api/internal/reservations"
)

type CancellationHandler struct {
	engine *reservations.Engine
}

func NewCancellationHandler(engine *reservations.Engine) *CancellationHandler {
	return &CancellationHandler{engine: engine}
}

type CancelRequest struct {
	Body struct {
		Token  string `json:"token" doc:"Cancellation credential from the confirmation message"`
		Reason string `json:"reason,omitempty" doc:"Free-text reason; required when the event demands one"`
	}
}

type CancelResponse struct {
	Body struct {
		Success bool `json:"success"`
	}
}

func (h *CancellationHandler) HandleCancel(ctx context.Context, input *CancelRequest) (*CancelResponse, error) {
	if err := h.engine.CancelWithCredential(ctx, input.Body.Token, input.Body.Reason); err != nil {
		return nil, mapEngineError(err)
	}

	res := &CancelResponse{}
	res.Body.Success = true
	return res, nil
}

type CancellationLinkRequest struct {
	EventID uint `path:"eventID"`
	Body    struct {
		PhoneNumber string `json:"phone_number" doc:"Phone number used at registration"`
	}
}

type CancellationLinkResponse struct {
	Body struct {
		Token string `json:"token"`
	}
}

// HandleCancellationLink re-issues a cancellation credential. The token is
// returned to the messaging collaborator, which delivers the actual link.
func (h *CancellationHandler) HandleCancellationLink(ctx context.Context, input *CancellationLinkRequest) (*CancellationLinkResponse, error) {
	token, err := h.engine.MintCancellationToken(ctx, input.EventID, input.Body.PhoneNumber)
	if err != nil {
		return nil, mapEngineError(err)
	}

	res := &CancellationLinkResponse{}
	res.Body.Token = token
	return res, nil
}
