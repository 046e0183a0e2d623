package dto

// UserResponseDTO is the caller-facing shape of an account. The password
// hash is never part of it.
type UserResponseDTO struct {
	UserID int64  `json:"userId"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// UpdateMeRequestDTO is the payload for self-service profile updates.
type UpdateMeRequestDTO struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}
