package port

import (
	"context"
	"time"

	"chainfly/internal/domain"
)

// DiscomTariffClient fetches the current tariff of record from a discom's API.
type DiscomTariffClient interface {
	FetchTariff(ctx context.Context, discom *domain.Discom, req domain.TariffRequest) (*domain.TariffStructure, error)
}

// TariffCache stores DISCOM quotes between refreshes. Get returns nil, nil on a miss.
type TariffCache interface {
	Get(ctx context.Context, key string) (*domain.TariffStructure, error)
	Set(ctx context.Context, key string, structure *domain.TariffStructure, ttl time.Duration) error
}
