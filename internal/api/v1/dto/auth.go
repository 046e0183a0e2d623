package dto

// RegisterRequestDTO is the payload for creating an account.
type RegisterRequestDTO struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginRequestDTO is the payload for exchanging credentials for a token.
type LoginRequestDTO struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponseDTO carries the issued token and a user summary.
type LoginResponseDTO struct {
	AccessToken string          `json:"access_token"`
	User        UserResponseDTO `json:"user"`
}
