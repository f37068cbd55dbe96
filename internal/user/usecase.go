package user

import (
	"context"

	"github.com/fekuna/omnipos-stock-service/internal/model"
	"github.com/fekuna/omnipos-stock-service/internal/user/dto"
)

type UseCase interface {
	CreateUser(ctx context.Context, input *dto.CreateUserInput) (*model.User, error)
	GetUser(ctx context.Context, id string) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	UpdateUser(ctx context.Context, id string, input *dto.UpdateUserInput) (*model.User, error)
	DeleteUser(ctx context.Context, id string) error

	// EnsureAdmin creates the first admin when the directory is empty.
	EnsureAdmin(ctx context.Context, input *dto.CreateUserInput) (*model.User, error)
}
