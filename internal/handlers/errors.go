package handlers

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"github.com/goplaynow/playdate-api/internal/auth"
	"github.com/goplaynow/playdate-api/internal/service"
	"github.com/goplaynow/playdate-api/internal/store"
)

// toHTTPError maps service error kinds onto huma status errors.
func toHTTPError(err error) error {
	var opErr *service.OpError
	msg := err.Error()
	if errors.As(err, &opErr) && opErr.Err != nil {
		msg = opErr.Err.Error()
	}

	switch {
	case errors.Is(err, store.ErrConflict):
		return huma.Error409Conflict("The record was changed by someone else, reload and try again")
	case errors.Is(err, service.ErrNotFound):
		return huma.Error404NotFound("Not found")
	case errors.Is(err, service.ErrValidation):
		return huma.Error422UnprocessableEntity(msg)
	case errors.Is(err, service.ErrUnauthorized):
		return huma.Error403Forbidden(msg)
	default:
		return huma.Error500InternalServerError("Internal error")
	}
}

func requireUser(ctx context.Context) (string, error) {
	userID, ok := auth.UserID(ctx)
	if !ok {
		return "", huma.Error401Unauthorized("Unauthorized")
	}
	return userID, nil
}
