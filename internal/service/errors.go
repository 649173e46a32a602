package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/hearthledger/internal/apperr"
	"github.com/mmynk/hearthledger/internal/middleware"
)

var errInternal = errors.New("internal error")

// toConnectError maps a domain error onto a Connect code. Internal failures are
// logged and replaced by a generic message so storage details never reach
// clients.
func toConnectError(ctx context.Context, op string, err error) error {
	var code connect.Code
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		code = connect.CodeInvalidArgument
	case apperr.KindNotFound:
		code = connect.CodeNotFound
	case apperr.KindPermission:
		code = connect.CodePermissionDenied
	case apperr.KindState:
		code = connect.CodeFailedPrecondition
	default:
		slog.Error(op+" failed", "error", err, "user_id", middleware.GetUserID(ctx))
		return connect.NewError(connect.CodeInternal, errInternal)
	}
	return connect.NewError(code, err)
}

// caller returns the authenticated user or CodeUnauthenticated.
func caller(ctx context.Context) (string, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, errors.New("authentication required"))
	}
	return userID, nil
}
