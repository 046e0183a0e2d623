package model

import "time"

// Purchase records that a user bought a product. The (UserID, ProductID)
// pair is unique and the record is never mutated after creation.
type Purchase struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"userId"`
	ProductID int64     `db:"product_id" json:"productId"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`

	// Product is populated on reads that join the catalog row.
	Product *Product `db:"-" json:"product,omitempty"`
}
