package usecase

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/fekuna/omnipos-stock-service/internal/model"
	"github.com/fekuna/omnipos-stock-service/internal/user"
	"github.com/fekuna/omnipos-stock-service/internal/user/dto"
	"github.com/fekuna/omnipos-stock-service/pkg/database"
	"github.com/fekuna/omnipos-stock-service/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const MinPasswordLength = 8

type userUseCase struct {
	repo   user.Repository
	tx     database.Transactor
	logger logger.ZapLogger
}

func NewUserUseCase(repo user.Repository, tx database.Transactor, log logger.ZapLogger) user.UseCase {
	return &userUseCase{
		repo:   repo,
		tx:     tx,
		logger: log,
	}
}

func (uc *userUseCase) CreateUser(ctx context.Context, input *dto.CreateUserInput) (*model.User, error) {
	u := &model.User{
		BaseModel: model.BaseModel{
			ID:        uuid.New().String(),
			CreatedAt: time.Now().UTC(),
		},
		Name:  strings.TrimSpace(input.Name),
		Email: normalizeEmail(input.Email),
		Role:  input.Role,
	}
	if loc := strings.TrimSpace(input.StoreLocation); loc != "" {
		u.StoreLocation = &loc
	}
	if err := validate(u); err != nil {
		return nil, err
	}

	if input.Password != "" {
		hash, err := hashPassword(input.Password)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = &hash
	}

	if err := uc.ensureEmailFree(ctx, u.Email, ""); err != nil {
		return nil, err
	}
	if err := uc.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	uc.logger.Info("user created", zap.String("user_id", u.ID), zap.String("role", string(u.Role)))
	return u, nil
}

func (uc *userUseCase) GetUser(ctx context.Context, id string) (*model.User, error) {
	u, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("%w: user %s", model.ErrNotFound, id)
	}
	return u, nil
}

func (uc *userUseCase) ListUsers(ctx context.Context) ([]model.User, error) {
	return uc.repo.FindAll(ctx)
}

func (uc *userUseCase) UpdateUser(ctx context.Context, id string, input *dto.UpdateUserInput) (*model.User, error) {
	u, err := uc.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		u.Name = strings.TrimSpace(*input.Name)
	}
	if input.Email != nil {
		email := normalizeEmail(*input.Email)
		if email != u.Email {
			if err := uc.ensureEmailFree(ctx, email, u.ID); err != nil {
				return nil, err
			}
		}
		u.Email = email
	}
	if input.Role != nil {
		u.Role = *input.Role
	}
	if input.StoreLocation != nil {
		if loc := strings.TrimSpace(*input.StoreLocation); loc != "" {
			u.StoreLocation = &loc
		} else {
			u.StoreLocation = nil
		}
	}
	if err := validate(u); err != nil {
		return nil, err
	}

	if input.Password != nil {
		hash, err := hashPassword(*input.Password)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = &hash
	}

	if err := uc.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	uc.logger.Info("user updated", zap.String("user_id", u.ID))
	return u, nil
}

// DeleteUser removes the user together with the requests they submitted and
// those requests' lines. Requests they processed keep their data but lose the
// processed_by reference.
func (uc *userUseCase) DeleteUser(ctx context.Context, id string) error {
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := uc.GetUser(ctx, id); err != nil {
			return err
		}
		if err := uc.repo.DeleteRequestsByUser(ctx, id); err != nil {
			return fmt.Errorf("delete user requests: %w", err)
		}
		if err := uc.repo.ClearProcessedBy(ctx, id); err != nil {
			return fmt.Errorf("clear processed_by: %w", err)
		}
		return uc.repo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	uc.logger.Info("user deleted", zap.String("user_id", id))
	return nil
}

func (uc *userUseCase) EnsureAdmin(ctx context.Context, input *dto.CreateUserInput) (*model.User, error) {
	count, err := uc.repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, nil
	}

	admin := *input
	admin.Role = model.RoleAdmin
	return uc.CreateUser(ctx, &admin)
}

func (uc *userUseCase) ensureEmailFree(ctx context.Context, email, selfID string) error {
	existing, err := uc.repo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != selfID {
		return fmt.Errorf("%w: email %s is already in use", model.ErrConflict, email)
	}
	return nil
}

func validate(u *model.User) error {
	if u.Name == "" {
		return fmt.Errorf("%w: name is required", model.ErrValidation)
	}
	if _, err := mail.ParseAddress(u.Email); err != nil {
		return fmt.Errorf("%w: invalid email %q", model.ErrValidation, u.Email)
	}
	if !u.Role.Valid() {
		return fmt.Errorf("%w: unknown role %q", model.ErrValidation, u.Role)
	}
	if u.Role == model.RoleStoreManager && u.StoreLocation == nil {
		return fmt.Errorf("%w: store managers need a store location", model.ErrValidation)
	}
	return nil
}

func hashPassword(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", fmt.Errorf("%w: password must be at least %d characters long", model.ErrValidation, MinPasswordLength)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
