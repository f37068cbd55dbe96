package dto

import "github.com/fekuna/omnipos-stock-service/internal/model"

type CreateUserInput struct {
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	Role          model.Role `json:"role"`
	StoreLocation string     `json:"storeLocation"`
	Password      string     `json:"password"`
}

// UpdateUserInput is a partial update. Nil fields are left unchanged.
type UpdateUserInput struct {
	Name          *string     `json:"name"`
	Email         *string     `json:"email"`
	Role          *model.Role `json:"role"`
	StoreLocation *string     `json:"storeLocation"`
	Password      *string     `json:"password"`
}

type UpdateUserRequest struct {
	UserID  string          `json:"userId"`
	Updates UpdateUserInput `json:"updates"`
}

type DeleteUserRequest struct {
	UserID string `json:"userId"`
}
