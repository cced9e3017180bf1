package receipt

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCS stores receipts as objects in a Google Cloud Storage bucket.
type GCS struct {
	bucket *storage.BucketHandle
}

// NewGCS builds a bucket-scoped client. credentialsFile may be empty
// to use ambient application-default credentials.
func NewGCS(ctx context.Context, bucketName, credentialsFile string) (*GCS, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating storage client: %w", err)
	}

	return &GCS{bucket: client.Bucket(bucketName)}, nil
}

func (g *GCS) Put(ctx context.Context, key string, r io.Reader, contentType string) error {
	w := g.bucket.Object(key).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return fmt.Errorf("writing receipt object: %w", err)
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("finalizing receipt object: %w", err)
	}

	return nil
}

func (g *GCS) Get(ctx context.Context, key string) (io.ReadCloser, string, error) {
	r, err := g.bucket.Object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, "", ErrNotFound
		}

		return nil, "", fmt.Errorf("opening receipt object: %w", err)
	}

	return r, r.Attrs.ContentType, nil
}

// Delete is idempotent: a missing object is not an error, so ledger
// deletions with no attached receipt stay quiet.
func (g *GCS) Delete(ctx context.Context, key string) error {
	if err := g.bucket.Object(key).Delete(ctx); err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil
		}

		return fmt.Errorf("deleting receipt object: %w", err)
	}

	return nil
}
