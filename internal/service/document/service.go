package document

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"

	"pdao-records/internal/domain"
)

// Store answers whether a proof reference points at an uploaded object.
type Store interface {
	Exists(ctx context.Context, ref string) (bool, error)
	PresignedURL(ctx context.Context, ref string, expiry time.Duration) (string, error)
}

// ObjectStat is the subset of the minio client the store needs.
type ObjectStat interface {
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	PresignedGetObject(ctx context.Context, bucketName, objectName string, expires time.Duration, reqParams url.Values) (*url.URL, error)
}

type minioStore struct {
	client ObjectStat
	bucket string
}

func NewMinIOStore(client ObjectStat, bucket string) Store {
	return &minioStore{client: client, bucket: bucket}
}

func (s *minioStore) Exists(ctx context.Context, ref string) (bool, error) {
	key, err := objectKey(ref)
	if err != nil {
		return false, err
	}

	_, err = s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}

	resp := minio.ToErrorResponse(err)
	if resp.Code == "NoSuchKey" || resp.StatusCode == 404 {
		return false, nil
	}
	return false, domain.StoreError("stat document", err)
}

func (s *minioStore) PresignedURL(ctx context.Context, ref string, expiry time.Duration) (string, error) {
	key, err := objectKey(ref)
	if err != nil {
		return "", err
	}

	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, expiry, nil)
	if err != nil {
		return "", domain.StoreError("presign document", err)
	}
	return u.String(), nil
}

// StaticStore accepts any well-formed reference. It backs deployments with no
// object store configured.
type StaticStore struct{}

func (StaticStore) Exists(ctx context.Context, ref string) (bool, error) {
	if _, err := objectKey(ref); err != nil {
		return false, err
	}
	return true, nil
}

func (StaticStore) PresignedURL(ctx context.Context, ref string, expiry time.Duration) (string, error) {
	key, err := objectKey(ref)
	if err != nil {
		return "", err
	}
	return key, nil
}

func objectKey(ref string) (string, error) {
	key := strings.TrimPrefix(strings.TrimSpace(ref), "/")
	if key == "" || strings.Contains(key, "..") {
		return "", fmt.Errorf("%w: invalid document reference %q", domain.ErrInvalidInput, ref)
	}
	return key, nil
}
