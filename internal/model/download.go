package model

import "time"

// DefaultMaxDownloads is the per-purchase download cap applied when a
// download record is first created.
const DefaultMaxDownloads = 3

// Download tracks how many times a user has retrieved a purchased file.
// Count only ever grows and never exceeds MaxAllowed after a commit.
type Download struct {
	ID         int64     `db:"id" json:"id"`
	UserID     int64     `db:"user_id" json:"userId"`
	ProductID  int64     `db:"product_id" json:"productId"`
	Count      int       `db:"count" json:"count"`
	MaxAllowed int       `db:"max_allowed" json:"maxAllowed"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time `db:"updated_at" json:"updatedAt"`
}
