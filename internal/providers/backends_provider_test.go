package providers

import (
	"portal/internal/assets"
	"portal/internal/identity"
	"portal/internal/structures"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIdentityProvider_NoDSN(t *testing.T) {
	p, cleanup, err := NewIdentityProvider(&structures.Config{}, &cacheTestLogger{})
	require.NoError(t, err)
	defer cleanup()

	_, ok := p.(identity.Noop)
	assert.True(t, ok)
}

func TestNewIdentityProvider_BadDSN(t *testing.T) {
	conf := &structures.Config{Identity: structures.IdentityConfig{DSN: "postgres://user:pass@%zz/portal"}}
	_, _, err := NewIdentityProvider(conf, &cacheTestLogger{})
	assert.Error(t, err)
}

func TestNewAssetStore_NoBucket(t *testing.T) {
	s, err := NewAssetStore(&structures.Config{}, &cacheTestLogger{})
	require.NoError(t, err)

	_, ok := s.(assets.Noop)
	assert.True(t, ok)
}

func TestNewAssetStore_S3(t *testing.T) {
	conf := &structures.Config{Assets: structures.AssetsConfig{
		Region:    "eu-central-1",
		Bucket:    "portal-uploads",
		AccessKey: "minio",
		SecretKey: "minio123",
		Endpoint:  "http://localhost:9000",
	}}
	s, err := NewAssetStore(conf, &cacheTestLogger{})
	require.NoError(t, err)

	_, ok := s.(*assets.S3Store)
	assert.True(t, ok)
}
