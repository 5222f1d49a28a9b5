package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Aaditya88888/netwin-tournament-sub001/internal/models"
	"github.com/Aaditya88888/netwin-tournament-sub001/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MockReconciler struct{ mock.Mock }

func (m *MockReconciler) SyncTransactionStatus(ctx context.Context, kind models.FundingKind, requestID primitive.ObjectID) (services.SyncResult, error) {
	args := m.Called(ctx, kind, requestID)
	return args.Get(0).(services.SyncResult), args.Error(1)
}

func (m *MockReconciler) RepairUnsynced(ctx context.Context) (*services.RepairReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.RepairReport), args.Error(1)
}

func TestSchedulerRunsRepairRepeatedly(t *testing.T) {
	reconciler := &MockReconciler{}
	var calls int32
	reconciler.On("RepairUnsynced", mock.Anything).
		Run(func(mock.Arguments) { atomic.AddInt32(&calls, 1) }).
		Return(&services.RepairReport{}, nil)

	s, err := New(reconciler, 20*time.Millisecond)
	require.NoError(t, err)
	s.Start()

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&calls) >= 2
	}, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, s.Shutdown())
}

func TestSchedulerKeepsRunningAfterFailure(t *testing.T) {
	reconciler := &MockReconciler{}
	var calls int32
	reconciler.On("RepairUnsynced", mock.Anything).
		Run(func(mock.Arguments) { atomic.AddInt32(&calls, 1) }).
		Return(nil, errors.New("store unavailable"))

	s, err := New(reconciler, 20*time.Millisecond)
	require.NoError(t, err)
	s.Start()

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&calls) >= 2
	}, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, s.Shutdown())
}

func TestNewRejectsNonPositiveInterval(t *testing.T) {
	_, err := New(&MockReconciler{}, 0)
	assert.Error(t, err)
}
