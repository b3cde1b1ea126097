package handlers

import (
	"context"
	"net/http"

	"github.com/goplaynow/playdate-api/internal/models"
	"github.com/goplaynow/playdate-api/internal/service"
)

type ProfileHandler struct {
	svc *service.Service
}

func NewProfileHandler(svc *service.Service) *ProfileHandler {
	return &ProfileHandler{svc: svc}
}

type UpdateProfileInput struct {
	Body service.ProfileInput
}

type ProfileOutput struct {
	Body *models.ParentProfile
}

type ChildrenOutput struct {
	Body []models.Child
}

type AddChildInput struct {
	Body service.ChildInput
}

type ChildOutput struct {
	Status int
	Body   *models.Child
}

type ChildIDInput struct {
	ID string `path:"id" doc:"Child ID"`
}

func (h *ProfileHandler) HandleUpdateMe(ctx context.Context, input *UpdateProfileInput) (*ProfileOutput, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	p, err := h.svc.SaveProfile(ctx, userID, input.Body)
	if err != nil {
		return nil, toHTTPError(err)
	}
	return &ProfileOutput{Body: p}, nil
}

func (h *ProfileHandler) HandleListChildren(ctx context.Context, input *struct{}) (*ChildrenOutput, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	children, err := h.svc.ListChildren(ctx, userID)
	if err != nil {
		return nil, toHTTPError(err)
	}
	if children == nil {
		children = []models.Child{}
	}
	return &ChildrenOutput{Body: children}, nil
}

func (h *ProfileHandler) HandleAddChild(ctx context.Context, input *AddChildInput) (*ChildOutput, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	c, err := h.svc.AddChild(ctx, userID, input.Body)
	if err != nil {
		return nil, toHTTPError(err)
	}
	return &ChildOutput{Status: http.StatusCreated, Body: c}, nil
}

func (h *ProfileHandler) HandleDeleteChild(ctx context.Context, input *ChildIDInput) (*struct{}, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := h.svc.DeleteChild(ctx, userID, input.ID); err != nil {
		return nil, toHTTPError(err)
	}
	return nil, nil
}
