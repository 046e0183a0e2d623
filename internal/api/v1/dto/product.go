package dto

import "time"

// ProductResponseDTO is catalog metadata; the binary payload is only ever
// served through the download endpoint. Purchased is present on authenticated
// catalog listings.
type ProductResponseDTO struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	Price       float64   `json:"price"`
	Purchased   *bool     `json:"purchased,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// MessageResponseDTO is a plain outcome marker.
type MessageResponseDTO struct {
	Message string `json:"message"`
}
