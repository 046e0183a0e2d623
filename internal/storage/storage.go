// Package storage holds product payloads as opaque bytes keyed by product id.
package storage

import "context"

// FileStore reads and writes the binary payload of a product.
type FileStore interface {
	Put(ctx context.Context, productID int64, data []byte) error
	Get(ctx context.Context, productID int64) ([]byte, error)
	Delete(ctx context.Context, productID int64) error
}
