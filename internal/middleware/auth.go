package middleware

import (
	"context"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/tandas/internal/auth"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const actorKey contextKey = "actor"

// WithActor returns a context carrying actor.
func WithActor(ctx context.Context, actor *auth.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFrom extracts the verified actor from the context, or nil.
func ActorFrom(ctx context.Context) *auth.Actor {
	actor, _ := ctx.Value(actorKey).(*auth.Actor)
	return actor
}

// GetActorID returns the verified actor id, or empty string if there is none.
func GetActorID(ctx context.Context) string {
	if actor := ActorFrom(ctx); actor != nil {
		return actor.ID
	}
	return ""
}

// RequireActor validates the bearer token and puts the actor in the request
// context. Requests without a valid token are rejected. A nil manager disables
// verification and lets every request through anonymously.
func RequireActor(jwtManager *auth.JWTManager) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if jwtManager == nil {
				return next(ctx, req)
			}

			authHeader := req.Header().Get("Authorization")
			if authHeader == "" {
				return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
			}
			actor, err := actorFromHeader(jwtManager, authHeader)
			if err != nil {
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}
			return next(WithActor(ctx, actor), req)
		}
	}
}

// OptionalActor adds the actor to the context when a valid token is sent and
// otherwise lets the request through anonymously.
func OptionalActor(jwtManager *auth.JWTManager) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			authHeader := req.Header().Get("Authorization")
			if jwtManager != nil && authHeader != "" {
				if actor, err := actorFromHeader(jwtManager, authHeader); err == nil {
					ctx = WithActor(ctx, actor)
				}
			}
			return next(ctx, req)
		}
	}
}

func actorFromHeader(jwtManager *auth.JWTManager, header string) (*auth.Actor, error) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, auth.ErrInvalidToken
	}
	return jwtManager.Validate(parts[1])
}
