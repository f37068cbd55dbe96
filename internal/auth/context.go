package auth

import (
	"context"

	"github.com/fekuna/omnipos-stock-service/internal/model"
)

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID        string
	Role          model.Role
	StoreLocation string
}

type actorKey struct{}

func WithActor(ctx context.Context, a *Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// ActorFromContext returns the actor stored by the middleware, or nil.
func ActorFromContext(ctx context.Context) *Actor {
	if a, ok := ctx.Value(actorKey{}).(*Actor); ok {
		return a
	}
	return nil
}

// GetUserID returns the acting user's id or "".
func GetUserID(ctx context.Context) string {
	if a := ActorFromContext(ctx); a != nil {
		return a.UserID
	}
	return ""
}

func ActorFromUser(u *model.User) *Actor {
	a := &Actor{UserID: u.ID, Role: u.Role}
	if u.StoreLocation != nil {
		a.StoreLocation = *u.StoreLocation
	}
	return a
}
