package cache

import (
	"context"
	"time"

	"mahotsav/backend/internal/domain"
)

// SettingsCache fronts the site settings document, which every public page
// load reads. Invalidate is called after an admin saves new settings.
type SettingsCache interface {
	Get(ctx context.Context, key string) (*domain.ExhibitionSettings, bool, error)
	Set(ctx context.Context, key string, value *domain.ExhibitionSettings, ttl time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

type NoopSettingsCache struct{}

func (NoopSettingsCache) Get(_ context.Context, _ string) (*domain.ExhibitionSettings, bool, error) {
	return nil, false, nil
}

func (NoopSettingsCache) Set(_ context.Context, _ string, _ *domain.ExhibitionSettings, _ time.Duration) error {
	return nil
}

func (NoopSettingsCache) Invalidate(_ context.Context, _ string) error {
	return nil
}
