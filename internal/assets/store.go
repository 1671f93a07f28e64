// Package assets deletes uploaded files that outlive their archive entry.
package assets

import "context"

type Store interface {
	DeleteAsset(ctx context.Context, publicID string) error
}

// Noop is used when no bucket is configured.
type Noop struct{}

func (Noop) DeleteAsset(_ context.Context, _ string) error { return nil }
