// FILE: internal/dto/auth_dto.go
package dto

import (
	"github.com/google/uuid"
)

// Staff accounts only: reviewers, curators, admins. Question askers never
// log in; they are client-key identified.

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	AccessToken string  `json:"access_token"`
	User        UserDTO `json:"user"`
}

type UserDTO struct {
	Id       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	FullName string    `json:"full_name"`
	Role     string    `json:"role"`
	Status   string    `json:"status"`
}

type CreateStaffRequest struct {
	FullName string `json:"full_name" validate:"required,min=3"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required,oneof=reviewer curator admin"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=NewPassword"`
}

// UpdateStaffStatusRequest blocks or reinstates a staff account. Blocked
// accounts cannot log in and stop receiving notifications.
type UpdateStaffStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active blocked"`
}
