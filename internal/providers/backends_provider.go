package providers

import (
	"context"
	"portal/internal/assets"
	"portal/internal/identity"
	"portal/internal/structures"
	"time"
)

const backendConnectTimeout = 10 * time.Second

// NewIdentityProvider connects the Postgres account backend, running the
// embedded migrations first when identity.migrate is set. Without a DSN
// account cleanups are skipped.
func NewIdentityProvider(conf *structures.Config, logger Logger) (identity.Provider, func(), error) {
	if conf.Identity.DSN == "" {
		logger.Warnf(TypeApp, "Identity DSN is not set, account cleanups disabled")
		return identity.Noop{}, func() {}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), backendConnectTimeout)
	defer cancel()

	if conf.Identity.Migrate {
		if err := identity.Migrate(ctx, conf.Identity.DSN); err != nil {
			return nil, nil, err
		}
		logger.Infof(TypeApp, "Identity migrations applied")
	}

	pool, err := identity.Connect(ctx, conf.Identity.DSN)
	if err != nil {
		return nil, nil, err
	}
	provider := identity.NewPostgres(pool)
	logger.Infof(TypeApp, "Identity provider: postgres")
	return provider, provider.Close, nil
}

// NewAssetStore connects the S3 bucket holding uploads. Without a bucket
// asset cleanups are skipped.
func NewAssetStore(conf *structures.Config, logger Logger) (assets.Store, error) {
	if conf.Assets.Bucket == "" {
		logger.Warnf(TypeApp, "Asset bucket is not set, asset cleanups disabled")
		return assets.Noop{}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), backendConnectTimeout)
	defer cancel()

	store, err := assets.NewS3Store(ctx, conf.Assets)
	if err != nil {
		return nil, err
	}
	logger.Infof(TypeApp, "Asset store: s3 bucket %s", conf.Assets.Bucket)
	return store, nil
}
