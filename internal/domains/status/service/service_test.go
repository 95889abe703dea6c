package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"suitesync/config"
	"suitesync/infras/otel/mocks"
	customerMocks "suitesync/internal/domains/customer/mocks"
	offeringMocks "suitesync/internal/domains/offering/mocks"
	petMocks "suitesync/internal/domains/pet/mocks"
	reservationMocks "suitesync/internal/domains/reservation/mocks"
	reservationModel "suitesync/internal/domains/reservation/model"
	resourceMocks "suitesync/internal/domains/resource/mocks"
	resourceModel "suitesync/internal/domains/resource/model"
	statusService "suitesync/internal/domains/status/service"
	"suitesync/shared/cache"
	cacheMocks "suitesync/shared/cache/mocks"
)

const testTenant = "tenant-1"

func TestStatus_Summary(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockReservations := reservationMocks.NewMockReservation(ctrl)
	mockCustomers := customerMocks.NewMockCustomer(ctrl)
	mockPets := petMocks.NewMockPet(ctrl)
	mockOfferings := offeringMocks.NewMockOffering(ctrl)
	mockResources := resourceMocks.NewMockResource(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)

	cfg := &config.Config{}
	cfg.App.TenantID = testTenant

	svc := statusService.New(mockReservations, mockCustomers, mockPets, mockOfferings, mockResources, mockCache, cfg, mocks.NewOtel())

	mockCache.EXPECT().
		Get(gomock.Any(), "sync:last:tenant-1", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, value any) error {
			target, ok := value.(*string)
			require.True(t, ok)
			*target = "2026-03-01T06:00:00Z"

			return nil
		})

	mockCustomers.EXPECT().Count(gomock.Any(), gomock.Any()).Return(12, nil)
	mockPets.EXPECT().Count(gomock.Any(), gomock.Any()).Return(15, nil)
	mockOfferings.EXPECT().Count(gomock.Any(), gomock.Any()).Return(3, nil)
	mockResources.EXPECT().Count(gomock.Any(), gomock.Any()).Return(20, nil)

	mockReservations.EXPECT().StatusCounts(gomock.Any(), testTenant).Return([]reservationModel.StatusCount{
		{Status: reservationModel.StatusConfirmed, Total: 7},
		{Status: reservationModel.StatusCancelled, Total: 2},
	}, nil)
	mockReservations.EXPECT().CategoryCounts(gomock.Any(), testTenant).Return([]reservationModel.CategoryCount{
		{Category: resourceModel.CategoryPremium, Total: 3},
		{Category: resourceModel.CategoryStandard, Total: 4},
	}, nil)
	mockReservations.EXPECT().FindViolationPairs(gomock.Any(), testTenant).Return(nil, nil)

	summary, err := svc.Summary(context.Background())

	require.NoError(t, err)
	assert.Equal(t, testTenant, summary.TenantID)
	assert.Equal(t, "2026-03-01T06:00:00Z", summary.LastSyncAt)
	assert.Equal(t, 12, summary.Entities.Customers)
	assert.Equal(t, 15, summary.Entities.Pets)
	assert.Equal(t, 3, summary.Entities.Offerings)
	assert.Equal(t, 20, summary.Entities.Resources)
	assert.Len(t, summary.ByStatus, 2)
	assert.Len(t, summary.ByCategory, 2)
	assert.Zero(t, summary.Violations)
	assert.True(t, summary.Consistent)
}

func TestStatus_Summary_InconsistentStore(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockReservations := reservationMocks.NewMockReservation(ctrl)
	mockCustomers := customerMocks.NewMockCustomer(ctrl)
	mockPets := petMocks.NewMockPet(ctrl)
	mockOfferings := offeringMocks.NewMockOffering(ctrl)
	mockResources := resourceMocks.NewMockResource(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)

	cfg := &config.Config{}
	cfg.App.TenantID = testTenant

	svc := statusService.New(mockReservations, mockCustomers, mockPets, mockOfferings, mockResources, mockCache, cfg, mocks.NewOtel())

	mockCache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(cache.Nil)
	mockCustomers.EXPECT().Count(gomock.Any(), gomock.Any()).Return(0, nil)
	mockPets.EXPECT().Count(gomock.Any(), gomock.Any()).Return(0, nil)
	mockOfferings.EXPECT().Count(gomock.Any(), gomock.Any()).Return(0, nil)
	mockResources.EXPECT().Count(gomock.Any(), gomock.Any()).Return(0, nil)
	mockReservations.EXPECT().StatusCounts(gomock.Any(), testTenant).Return(nil, nil)
	mockReservations.EXPECT().CategoryCounts(gomock.Any(), testTenant).Return(nil, nil)
	mockReservations.EXPECT().FindViolationPairs(gomock.Any(), testTenant).Return([]reservationModel.ViolationPair{
		{ResourceID: "res-a", FirstID: "resv-1", SecondID: "resv-2"},
	}, nil)

	summary, err := svc.Summary(context.Background())

	require.NoError(t, err)
	assert.Empty(t, summary.LastSyncAt)
	assert.Equal(t, 1, summary.Violations)
	assert.False(t, summary.Consistent)
}

func TestStatus_Summary_CountErrorPropagates(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockReservations := reservationMocks.NewMockReservation(ctrl)
	mockCustomers := customerMocks.NewMockCustomer(ctrl)
	mockPets := petMocks.NewMockPet(ctrl)
	mockOfferings := offeringMocks.NewMockOffering(ctrl)
	mockResources := resourceMocks.NewMockResource(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)

	cfg := &config.Config{}
	cfg.App.TenantID = testTenant

	svc := statusService.New(mockReservations, mockCustomers, mockPets, mockOfferings, mockResources, mockCache, cfg, mocks.NewOtel())

	mockCache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(cache.Nil)
	mockCustomers.EXPECT().Count(gomock.Any(), gomock.Any()).Return(0, errors.New("database error"))

	_, err := svc.Summary(context.Background())

	assert.Error(t, err)
}
