package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"chainfly/internal/domain"
	"chainfly/internal/service"
	"chainfly/mocks"
)

func TestTariffService_Resolve_DefaultsContractDate(t *testing.T) {
	resolver := new(mocks.MockTariffService)
	resolver.On("Resolve", mock.Anything, mock.MatchedBy(func(req domain.TariffRequest) bool {
		return req.ContractDate.Equal(fixedNow)
	})).Return(&domain.TariffResolution{Rate: 6.5, Source: domain.TariffSourceCalculated}, nil)

	svc := service.NewTariffService(resolver, new(mocks.MockTariffStructureRepo), zap.NewNop(), clock)
	res, err := svc.Resolve(context.Background(), domain.TariffRequest{DiscomID: uuid.New(), Category: "domestic", CustomerType: "residential"})

	require.NoError(t, err)
	assert.Equal(t, 6.5, res.Rate)
}

func TestTariffService_RecordOverride(t *testing.T) {
	repo := new(mocks.MockTariffStructureRepo)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(s *domain.TariffStructure) bool {
		return s.Source == domain.TariffSourceManualOverride && s.BaseRate == 6.1
	})).Return(nil)

	svc := service.NewTariffService(new(mocks.MockTariffService), repo, zap.NewNop(), clock)
	s, err := svc.RecordOverride(context.Background(), &service.OverrideInput{
		DiscomID:     uuid.New(),
		Category:     "ht_commercial",
		CustomerType: "commercial",
		BaseRate:     6.1,
		ValidFrom:    day(2024, time.April, 1),
		TOURates:     []domain.TOURate{{TimeRange: "18:00-22:00", Rate: 7.5}},
		Reference:    "KERC/2024/17",
	})

	require.NoError(t, err)
	assert.Equal(t, fixedNow, s.CreatedAt)
	repo.AssertExpectations(t)
}

func TestTariffService_RecordOverride_Invalid(t *testing.T) {
	repo := new(mocks.MockTariffStructureRepo)
	svc := service.NewTariffService(new(mocks.MockTariffService), repo, zap.NewNop(), clock)
	validTo := day(2024, time.March, 1)

	_, err := svc.RecordOverride(context.Background(), &service.OverrideInput{
		DiscomID: uuid.New(), Category: "c", CustomerType: "t", BaseRate: 5,
		ValidFrom: day(2024, time.April, 1), ValidTo: &validTo,
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.RecordOverride(context.Background(), &service.OverrideInput{
		DiscomID: uuid.New(), Category: "c", CustomerType: "t", BaseRate: 5,
		ValidFrom: day(2024, time.April, 1),
		TOURates:  []domain.TOURate{{TimeRange: "18:00-22:00", Rate: 7}, {TimeRange: "21:00-23:00", Rate: 8}},
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
