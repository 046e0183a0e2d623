package dto

import "time"

// CreatePurchaseRequestDTO is the payload for buying a product. The buyer
// is taken from the verified token, never from the body.
type CreatePurchaseRequestDTO struct {
	ProductID int64 `json:"productId" validate:"required,gt=0"`
}

// PurchaseResponseDTO is a purchase record as returned to callers. The user
// payload is deliberately omitted.
type PurchaseResponseDTO struct {
	ID        int64               `json:"id"`
	Product   *ProductResponseDTO `json:"product,omitempty"`
	CreatedAt time.Time           `json:"createdAt"`
}
