package service

import (
	"context"
	"testing"

	"reimbursement-hub/internal/core/domain"
	"reimbursement-hub/internal/core/ports/mocks"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type queryTestDeps struct {
	svc      *QueryServiceImpl
	reqRepo  *mocks.MockRequestRepository
	fundRepo *mocks.MockFundRepository
	cache    *mocks.MockBalanceCache
	ctrl     *gomock.Controller
}

func setupQueryService(t *testing.T) *queryTestDeps {
	ctrl := gomock.NewController(t)
	d := &queryTestDeps{
		reqRepo:  mocks.NewMockRequestRepository(ctrl),
		fundRepo: mocks.NewMockFundRepository(ctrl),
		cache:    mocks.NewMockBalanceCache(ctrl),
		ctrl:     ctrl,
	}
	d.svc = NewQueryService(d.reqRepo, d.fundRepo, d.cache, zerolog.Nop())
	return d
}

func TestQueryService_MyHistory(t *testing.T) {
	d := setupQueryService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	ownerID := uuid.New()
	own := []domain.Request{
		{ID: uuid.New(), OwnerID: ownerID, Status: domain.RequestStatusWithdrawn},
		{ID: uuid.New(), OwnerID: ownerID, Status: domain.RequestStatusPending},
	}

	d.reqRepo.EXPECT().ListByOwner(ctx, ownerID).Return(own, nil)

	reqs, err := d.svc.MyHistory(ctx, ownerID)
	require.NoError(t, err)
	assert.Len(t, reqs, 2)
}

func TestQueryService_PendingQueue(t *testing.T) {
	d := setupQueryService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.reqRepo.EXPECT().ListPending(ctx).Return([]domain.Request{
		{ID: uuid.New(), Status: domain.RequestStatusPending},
	}, nil)

	reqs, err := d.svc.PendingQueue(ctx)
	require.NoError(t, err)
	assert.Len(t, reqs, 1)
}

func TestQueryService_RemainingFunds_CacheHit(t *testing.T) {
	d := setupQueryService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.cache.EXPECT().Get(ctx).Return([]byte("1234.50"), nil)

	balance, err := d.svc.RemainingFunds(ctx)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.RequireFromString("1234.50")))
}

func TestQueryService_RemainingFunds_CacheMissFillsCache(t *testing.T) {
	d := setupQueryService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.cache.EXPECT().Get(ctx).Return(nil, nil)
	d.fundRepo.EXPECT().GetBalance(ctx).Return(decimal.RequireFromString("-12.25"), nil)
	d.cache.EXPECT().Set(ctx, []byte("-12.25"), balanceTTL).Return(nil)

	balance, err := d.svc.RemainingFunds(ctx)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.RequireFromString("-12.25")))
}

func TestQueryService_RemainingFunds_CacheErrorFallsThrough(t *testing.T) {
	d := setupQueryService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.cache.EXPECT().Get(ctx).Return(nil, assert.AnError)
	d.fundRepo.EXPECT().GetBalance(ctx).Return(decimal.RequireFromString("800"), nil)
	d.cache.EXPECT().Set(ctx, gomock.Any(), balanceTTL).Return(nil)

	balance, err := d.svc.RemainingFunds(ctx)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(800)))
}
