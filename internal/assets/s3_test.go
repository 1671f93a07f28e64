package assets

import (
	"context"
	"errors"
	"portal/internal/structures"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDeleter struct {
	calls []*s3.DeleteObjectInput
	err   error
}

func (f *fakeDeleter) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.calls = append(f.calls, in)
	if f.err != nil {
		return nil, f.err
	}
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Store_DeleteAsset(t *testing.T) {
	fake := &fakeDeleter{}
	store := newS3Store(fake, "portal-uploads", "photos/")

	require.NoError(t, store.DeleteAsset(context.Background(), "img-42"))

	require.Len(t, fake.calls, 1)
	assert.Equal(t, "portal-uploads", aws.ToString(fake.calls[0].Bucket))
	assert.Equal(t, "photos/img-42", aws.ToString(fake.calls[0].Key))
}

func TestS3Store_EmptyPublicIDSkipsCall(t *testing.T) {
	fake := &fakeDeleter{}
	store := newS3Store(fake, "portal-uploads", "")

	require.NoError(t, store.DeleteAsset(context.Background(), ""))
	assert.Empty(t, fake.calls)
}

func TestS3Store_Error(t *testing.T) {
	boom := errors.New("access denied")
	store := newS3Store(&fakeDeleter{err: boom}, "portal-uploads", "")

	err := store.DeleteAsset(context.Background(), "img-1")
	assert.ErrorIs(t, err, boom)
}

func TestNewS3Store_StaticCredentials(t *testing.T) {
	store, err := NewS3Store(context.Background(), structures.AssetsConfig{
		Region:    "eu-central-1",
		Bucket:    "portal-uploads",
		Endpoint:  "http://localhost:9000",
		AccessKey: "minio",
		SecretKey: "minio123",
		KeyPrefix: "photos/",
	})
	require.NoError(t, err)
	assert.Equal(t, "portal-uploads", store.bucket)
	assert.Equal(t, "photos/", store.keyPrefix)
	_, ok := store.client.(*s3.Client)
	assert.True(t, ok)
}

func TestNoop(t *testing.T) {
	var s Store = Noop{}
	assert.NoError(t, s.DeleteAsset(context.Background(), "img-1"))
}
