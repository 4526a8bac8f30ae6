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

func TestUsageService_Record(t *testing.T) {
	usageRepo := new(mocks.MockUsageRepo)
	contractRepo := new(mocks.MockContractRepo)
	c := &domain.Contract{ID: uuid.New(), StartDate: day(2024, time.January, 1), EndDate: day(2025, time.January, 1)}
	contractRepo.On("GetByID", mock.Anything, c.ID).Return(c, nil)
	usageRepo.On("Create", mock.Anything, mock.MatchedBy(func(r *domain.UsageReading) bool {
		return r.ContractID == c.ID && r.KWhUsed == 420
	})).Return(nil)

	svc := service.NewUsageService(usageRepo, contractRepo, zap.NewNop(), clock)
	r, err := svc.Record(context.Background(), c.ID, &service.UsageInput{KWhUsed: 420, ReadingDate: day(2024, time.February, 29)})

	require.NoError(t, err)
	assert.Equal(t, fixedNow, r.CreatedAt)
	usageRepo.AssertExpectations(t)
}

func TestUsageService_Record_Rejections(t *testing.T) {
	start := day(2024, time.February, 1)
	end := day(2024, time.February, 1).Add(-time.Hour)

	tests := []struct {
		name  string
		input service.UsageInput
		field string
	}{
		{"before term", service.UsageInput{KWhUsed: 1, ReadingDate: day(2023, time.December, 31)}, "reading_date"},
		{"at term end", service.UsageInput{KWhUsed: 1, ReadingDate: day(2025, time.January, 1)}, "reading_date"},
		{"half interval", service.UsageInput{KWhUsed: 1, ReadingDate: day(2024, time.March, 1), TimestampStart: &start}, "timestamp_end"},
		{"inverted interval", service.UsageInput{KWhUsed: 1, ReadingDate: day(2024, time.March, 1), TimestampStart: &start, TimestampEnd: &end}, "timestamp_end"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			usageRepo := new(mocks.MockUsageRepo)
			contractRepo := new(mocks.MockContractRepo)
			c := &domain.Contract{ID: uuid.New(), StartDate: day(2024, time.January, 1), EndDate: day(2025, time.January, 1)}
			contractRepo.On("GetByID", mock.Anything, c.ID).Return(c, nil)

			svc := service.NewUsageService(usageRepo, contractRepo, zap.NewNop(), clock)
			input := tt.input
			_, err := svc.Record(context.Background(), c.ID, &input)

			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			usageRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}
