package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"
)

// householdScoped is implemented by requests that target one household.
type householdScoped interface {
	GetHouseholdID() string
}

// LoggingInterceptor returns a Connect interceptor that logs every RPC with the
// caller, the household it targets and the outcome. It must run inside
// RequireAuth to see the caller. A nil logger logs to slog.Default().
//
// Client mistakes (bad input, missing records, permission and state
// conflicts) are logged at WARN; anything else failing is an ERROR.
func LoggingInterceptor(logger *slog.Logger) connect.UnaryInterceptorFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()

			attrs := []any{
				"procedure", req.Spec().Procedure,
				"user_id", GetUserID(ctx),
			}
			if scoped, ok := req.Any().(householdScoped); ok && scoped.GetHouseholdID() != "" {
				attrs = append(attrs, "household_id", scoped.GetHouseholdID())
			}

			resp, err := next(ctx, req)

			attrs = append(attrs, "duration_ms", time.Since(start).Milliseconds())
			if err == nil {
				logger.InfoContext(ctx, "RPC ok", attrs...)
				return resp, nil
			}

			code := connect.CodeOf(err)
			attrs = append(attrs, "code", code.String())
			if clientError(code) {
				msg := err.Error()
				var connectErr *connect.Error
				if errors.As(err, &connectErr) {
					msg = connectErr.Message()
				}
				logger.WarnContext(ctx, "RPC rejected", append(attrs, "error", msg)...)
			} else {
				logger.ErrorContext(ctx, "RPC failed", append(attrs, "error", err)...)
			}
			return resp, err
		}
	}
}

// clientError reports whether code describes a request the caller can fix.
func clientError(code connect.Code) bool {
	switch code {
	case connect.CodeInvalidArgument, connect.CodeNotFound, connect.CodePermissionDenied,
		connect.CodeFailedPrecondition, connect.CodeUnauthenticated, connect.CodeAlreadyExists:
		return true
	}
	return false
}
