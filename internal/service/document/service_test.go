package document

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdao-records/internal/domain"
)

type fakeObjects struct {
	objects map[string]bool
	err     error
}

func (f *fakeObjects) StatObject(ctx context.Context, bucket, key string, opts minio.StatObjectOptions) (minio.ObjectInfo, error) {
	if f.err != nil {
		return minio.ObjectInfo{}, f.err
	}
	if !f.objects[key] {
		return minio.ObjectInfo{}, minio.ErrorResponse{Code: "NoSuchKey", StatusCode: 404}
	}
	return minio.ObjectInfo{Key: key}, nil
}

func (f *fakeObjects) PresignedGetObject(ctx context.Context, bucket, key string, expires time.Duration, params url.Values) (*url.URL, error) {
	return url.Parse("https://minio.test/" + bucket + "/" + key)
}

func TestMinIOStore_Exists(t *testing.T) {
	store := NewMinIOStore(&fakeObjects{objects: map[string]bool{"renewals/old-card.jpg": true}}, "docs")
	ctx := context.Background()

	ok, err := store.Exists(ctx, "renewals/old-card.jpg")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Exists(ctx, "/renewals/old-card.jpg")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Exists(ctx, "renewals/missing.jpg")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMinIOStore_ExistsStoreFailure(t *testing.T) {
	store := NewMinIOStore(&fakeObjects{err: errors.New("connection refused")}, "docs")

	_, err := store.Exists(context.Background(), "renewals/old-card.jpg")
	assert.ErrorIs(t, err, domain.ErrStoreFailure)
}

func TestObjectKey_RejectsInvalidRefs(t *testing.T) {
	for _, ref := range []string{"", "   ", "/", "../etc/passwd"} {
		_, err := StaticStore{}.Exists(context.Background(), ref)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, ref)
	}
}

func TestMinIOStore_PresignedURL(t *testing.T) {
	store := NewMinIOStore(&fakeObjects{}, "docs")

	u, err := store.PresignedURL(context.Background(), "renewals/cert.pdf", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "https://minio.test/docs/renewals/cert.pdf", u)
}
