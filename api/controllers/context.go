package controllers

import (
	"context"

	"github.com/google/uuid"

	"github.com/cardbinder/cardbinder-backend/api/middleware"
	pkgerrors "github.com/cardbinder/cardbinder-backend/pkg/errors"
)

// callerID extracts the authenticated user id seeded by the auth
// middleware.
func callerID(ctx context.Context) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(ctx)
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	return id, nil
}
