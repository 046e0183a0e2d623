package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// s3Store keeps payloads on an S3-compatible endpoint, for deployments
// that do not want file blobs inside Postgres.
type s3Store struct {
	client *s3.Client
	bucket string
}

// NewS3Store returns a FileStore backed by the given bucket.
func NewS3Store(client *s3.Client, bucket string) FileStore {
	return &s3Store{client: client, bucket: bucket}
}

func objectKey(productID int64) string {
	return fmt.Sprintf("products/%d.pdf", productID)
}

func (s *s3Store) Put(ctx context.Context, productID int64, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(objectKey(productID)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/pdf"),
	})
	if err != nil {
		return fmt.Errorf("storing payload for product %d: %w", productID, err)
	}
	return nil
}

func (s *s3Store) Get(ctx context.Context, productID int64) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey(productID)),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, ErrPayloadNotFound
		}
		return nil, fmt.Errorf("loading payload for product %d: %w", productID, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("reading payload for product %d: %w", productID, err)
	}
	return data, nil
}

func (s *s3Store) Delete(ctx context.Context, productID int64) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey(productID)),
	})
	if err != nil {
		return fmt.Errorf("deleting payload for product %d: %w", productID, err)
	}
	return nil
}
