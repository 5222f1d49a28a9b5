package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Aaditya88888/netwin-tournament-sub001/internal/middleware"
	"github.com/Aaditya88888/netwin-tournament-sub001/internal/models"
	"github.com/Aaditya88888/netwin-tournament-sub001/internal/services"
	"github.com/Aaditya88888/netwin-tournament-sub001/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func init() {
	gin.SetMode(gin.TestMode)
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		utils.RegisterDecimalType(v)
	}
}

type MockPrizeService struct{ mock.Mock }

func (m *MockPrizeService) GetPrizeDistribution(ctx context.Context, id primitive.ObjectID) (*models.PrizeDistributionPreview, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PrizeDistributionPreview), args.Error(1)
}

func (m *MockPrizeService) DistributePrizes(ctx context.Context, id primitive.ObjectID, adminID string) (*models.DistributionResult, error) {
	args := m.Called(ctx, id, adminID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DistributionResult), args.Error(1)
}

type MockFundingService struct{ mock.Mock }

func (m *MockFundingService) outcome(args mock.Arguments) (*models.FundingOutcome, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FundingOutcome), args.Error(1)
}

func (m *MockFundingService) ApproveDeposit(ctx context.Context, id primitive.ObjectID, adminID string) (*models.FundingOutcome, error) {
	return m.outcome(m.Called(ctx, id, adminID))
}

func (m *MockFundingService) RejectDeposit(ctx context.Context, id primitive.ObjectID, adminID, reason string) (*models.FundingOutcome, error) {
	return m.outcome(m.Called(ctx, id, adminID, reason))
}

func (m *MockFundingService) ApproveWithdrawal(ctx context.Context, id primitive.ObjectID, adminID string) (*models.FundingOutcome, error) {
	return m.outcome(m.Called(ctx, id, adminID))
}

func (m *MockFundingService) RejectWithdrawal(ctx context.Context, id primitive.ObjectID, adminID, reason string) (*models.FundingOutcome, error) {
	return m.outcome(m.Called(ctx, id, adminID, reason))
}

type MockWalletService struct{ mock.Mock }

func (m *MockWalletService) Credit(ctx context.Context, userID primitive.ObjectID, amount decimal.Decimal) (decimal.Decimal, error) {
	args := m.Called(ctx, userID, amount)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockWalletService) Debit(ctx context.Context, userID primitive.ObjectID, amount decimal.Decimal) (decimal.Decimal, error) {
	args := m.Called(ctx, userID, amount)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockWalletService) GetBalance(ctx context.Context, userID primitive.ObjectID) (decimal.Decimal, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockWalletService) GrantBonus(ctx context.Context, userID primitive.ObjectID, amount decimal.Decimal, description, adminID string) (*models.Transaction, decimal.Decimal, error) {
	args := m.Called(ctx, userID, amount, description, adminID)
	tx, _ := args.Get(0).(*models.Transaction)
	return tx, args.Get(1).(decimal.Decimal), args.Error(2)
}

type MockReconciler struct{ mock.Mock }

func (m *MockReconciler) SyncTransactionStatus(ctx context.Context, kind models.FundingKind, id primitive.ObjectID) (services.SyncResult, error) {
	args := m.Called(ctx, kind, id)
	return args.Get(0).(services.SyncResult), args.Error(1)
}

func (m *MockReconciler) RepairUnsynced(ctx context.Context) (*services.RepairReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.RepairReport), args.Error(1)
}

type MockSettingsService struct{ mock.Mock }

func (m *MockSettingsService) GetSettings(ctx context.Context) (*models.SettlementSettings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SettlementSettings), args.Error(1)
}

func (m *MockSettingsService) ActivePolicy(ctx context.Context) (models.SettlementPolicy, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.SettlementPolicy), args.Error(1)
}

func (m *MockSettingsService) UpdatePolicy(ctx context.Context, policy models.SettlementPolicy, updatedBy string) (*models.SettlementSettings, error) {
	args := m.Called(ctx, policy, updatedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SettlementSettings), args.Error(1)
}

// asAdmin stands in for the JWT middleware
func asAdmin(id string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if id != "" {
			c.Set(middleware.UserIDKey, id)
		}
		c.Next()
	}
}

func serve(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("tournament %w", services.ErrNotFound), http.StatusNotFound, CodeNotFound},
		{services.ErrNotPending, http.StatusBadRequest, CodeNotPending},
		{services.ErrAlreadyDistributed, http.StatusBadRequest, CodeAlreadyDistributed},
		{services.ErrTournamentNotCompleted, http.StatusBadRequest, CodePreconditionFailed},
		{services.ErrInsufficientFunds, http.StatusBadRequest, CodeInsufficientFunds},
		{fmt.Errorf("%w: wallet", services.ErrConflict), http.StatusConflict, CodeConflict},
		{fmt.Errorf("%w: boom", services.ErrStoreFailure), http.StatusInternalServerError, CodeStoreFailure},
		{errors.New("unexpected"), http.StatusInternalServerError, CodeStoreFailure},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			status, code := errorStatus(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code)
		})
	}
}

func prizeRouter(svc *MockPrizeService, admin string) *gin.Engine {
	h := NewPrizeHandler(svc)
	r := gin.New()
	r.Use(asAdmin(admin))
	r.GET("/tournaments/:id/prize-distribution", h.GetPrizeDistribution)
	r.POST("/tournaments/:id/distribute-prizes", h.DistributePrizes)
	return r
}

func TestGetPrizeDistribution(t *testing.T) {
	svc := &MockPrizeService{}
	id := primitive.NewObjectID()
	preview := &models.PrizeDistributionPreview{
		Tournament:    &models.Tournament{ID: id, Title: "Sunday Squads"},
		CanDistribute: true,
	}
	svc.On("GetPrizeDistribution", mock.Anything, id).Return(preview, nil)

	w := serve(prizeRouter(svc, "admin-1"), http.MethodGet, "/tournaments/"+id.Hex()+"/prize-distribution", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"canDistribute":true`)
	svc.AssertExpectations(t)
}

func TestGetPrizeDistributionInvalidID(t *testing.T) {
	w := serve(prizeRouter(&MockPrizeService{}, "admin-1"), http.MethodGet, "/tournaments/nope/prize-distribution", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDistributePrizes(t *testing.T) {
	id := primitive.NewObjectID()
	winner := primitive.NewObjectID()

	t.Run("success", func(t *testing.T) {
		svc := &MockPrizeService{}
		result := &models.DistributionResult{
			Distributions: []*models.PrizeDistribution{{TournamentID: id, UserID: winner, PrizeAmount: decimal.NewFromInt(540)}},
			Summary:       models.DistributionSummary{TotalDistributed: decimal.NewFromInt(900), FirstPlaceWinner: &winner, Recipients: 2},
		}
		svc.On("DistributePrizes", mock.Anything, id, "admin-1").Return(result, nil)

		w := serve(prizeRouter(svc, "admin-1"), http.MethodPost, "/tournaments/"+id.Hex()+"/distribute-prizes", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"totalDistributed":"900"`)
		assert.Contains(t, w.Body.String(), winner.Hex())
	})

	t.Run("already distributed", func(t *testing.T) {
		svc := &MockPrizeService{}
		svc.On("DistributePrizes", mock.Anything, id, "admin-1").Return(nil, services.ErrAlreadyDistributed)

		w := serve(prizeRouter(svc, "admin-1"), http.MethodPost, "/tournaments/"+id.Hex()+"/distribute-prizes", "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"success":false,"message":"precondition failed: prizes already distributed","code":"ALREADY_DISTRIBUTED"}`, w.Body.String())
	})

	t.Run("store failure hides detail", func(t *testing.T) {
		svc := &MockPrizeService{}
		svc.On("DistributePrizes", mock.Anything, id, "admin-1").
			Return(nil, fmt.Errorf("%w: commit: connection reset", services.ErrStoreFailure))

		w := serve(prizeRouter(svc, "admin-1"), http.MethodPost, "/tournaments/"+id.Hex()+"/distribute-prizes", "")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "connection reset")
	})

	t.Run("unauthenticated", func(t *testing.T) {
		svc := &MockPrizeService{}
		w := serve(prizeRouter(svc, ""), http.MethodPost, "/tournaments/"+id.Hex()+"/distribute-prizes", "")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		svc.AssertNotCalled(t, "DistributePrizes", mock.Anything, mock.Anything, mock.Anything)
	})
}

func fundingRouter(svc *MockFundingService) *gin.Engine {
	h := NewFundingHandler(svc)
	r := gin.New()
	r.Use(asAdmin("admin-1"))
	r.POST("/wallet/deposits/:id/approve", h.ApproveDeposit)
	r.POST("/wallet/deposits/:id/reject", h.RejectDeposit)
	r.POST("/wallet/withdrawals/:id/approve", h.ApproveWithdrawal)
	r.POST("/wallet/withdrawals/:id/reject", h.RejectWithdrawal)
	return r
}

func TestApproveDeposit(t *testing.T) {
	svc := &MockFundingService{}
	id := primitive.NewObjectID()
	balance := decimal.NewFromInt(150)
	svc.On("ApproveDeposit", mock.Anything, id, "admin-1").
		Return(&models.FundingOutcome{Success: true, NewBalance: &balance}, nil)

	w := serve(fundingRouter(svc), http.MethodPost, "/wallet/deposits/"+id.Hex()+"/approve", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"newBalance":"150"}`, w.Body.String())
}

func TestApproveWithdrawalInsufficientFunds(t *testing.T) {
	svc := &MockFundingService{}
	id := primitive.NewObjectID()
	svc.On("ApproveWithdrawal", mock.Anything, id, "admin-1").Return(nil, services.ErrInsufficientFunds)

	w := serve(fundingRouter(svc), http.MethodPost, "/wallet/withdrawals/"+id.Hex()+"/approve", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"INSUFFICIENT_FUNDS"`)
}

func TestRejectDeposit(t *testing.T) {
	id := primitive.NewObjectID()

	t.Run("with reason", func(t *testing.T) {
		svc := &MockFundingService{}
		svc.On("RejectDeposit", mock.Anything, id, "admin-1", "blurry receipt").
			Return(&models.FundingOutcome{Success: true}, nil)

		w := serve(fundingRouter(svc), http.MethodPost, "/wallet/deposits/"+id.Hex()+"/reject", `{"reason":"blurry receipt"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("without body", func(t *testing.T) {
		svc := &MockFundingService{}
		svc.On("RejectDeposit", mock.Anything, id, "admin-1", "").
			Return(&models.FundingOutcome{Success: true}, nil)

		w := serve(fundingRouter(svc), http.MethodPost, "/wallet/deposits/"+id.Hex()+"/reject", "")

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("not pending", func(t *testing.T) {
		svc := &MockFundingService{}
		svc.On("RejectDeposit", mock.Anything, id, "admin-1", "").Return(nil, services.ErrNotPending)

		w := serve(fundingRouter(svc), http.MethodPost, "/wallet/deposits/"+id.Hex()+"/reject", "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), `"code":"NOT_PENDING"`)
	})
}

func TestRejectWithdrawalMalformedBody(t *testing.T) {
	svc := &MockFundingService{}
	id := primitive.NewObjectID()

	w := serve(fundingRouter(svc), http.MethodPost, "/wallet/withdrawals/"+id.Hex()+"/reject", `{"reason":`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "RejectWithdrawal", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func walletRouter(wallet *MockWalletService, reconciler *MockReconciler) *gin.Engine {
	h := NewWalletHandler(wallet, reconciler)
	r := gin.New()
	r.Use(asAdmin("admin-1"))
	r.GET("/wallet/users/:id/balance", h.GetBalance)
	r.POST("/wallet/users/:id/bonus", h.GrantBonus)
	r.POST("/wallet/deposits/:id/sync", h.SyncDeposit)
	r.POST("/wallet/reconcile", h.Reconcile)
	return r
}

func TestGetBalance(t *testing.T) {
	wallet := &MockWalletService{}
	userID := primitive.NewObjectID()
	wallet.On("GetBalance", mock.Anything, userID).Return(decimal.RequireFromString("42.50"), nil)

	w := serve(walletRouter(wallet, &MockReconciler{}), http.MethodGet, "/wallet/users/"+userID.Hex()+"/balance", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"walletBalance":"42.5"`)
}

func TestGrantBonus(t *testing.T) {
	userID := primitive.NewObjectID()

	t.Run("credits the wallet", func(t *testing.T) {
		wallet := &MockWalletService{}
		tx := &models.Transaction{UserID: userID, Amount: decimal.NewFromInt(25), Type: models.TransactionTypeCredit}
		wallet.On("GrantBonus", mock.Anything, userID, mock.MatchedBy(func(d decimal.Decimal) bool {
			return d.Equal(decimal.NewFromInt(25))
		}), "welcome", "admin-1").Return(tx, decimal.NewFromInt(125), nil)

		w := serve(walletRouter(wallet, &MockReconciler{}), http.MethodPost, "/wallet/users/"+userID.Hex()+"/bonus", `{"amount":"25","description":"welcome"}`)

		require.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"newBalance":"125"`)
		wallet.AssertExpectations(t)
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		wallet := &MockWalletService{}

		w := serve(walletRouter(wallet, &MockReconciler{}), http.MethodPost, "/wallet/users/"+userID.Hex()+"/bonus", `{"amount":"-5"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		wallet.AssertNotCalled(t, "GrantBonus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing user", func(t *testing.T) {
		wallet := &MockWalletService{}
		wallet.On("GrantBonus", mock.Anything, userID, mock.Anything, "", "admin-1").
			Return(nil, decimal.Zero, fmt.Errorf("user %w", services.ErrNotFound))

		w := serve(walletRouter(wallet, &MockReconciler{}), http.MethodPost, "/wallet/users/"+userID.Hex()+"/bonus", `{"amount":10}`)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestSyncDeposit(t *testing.T) {
	reconciler := &MockReconciler{}
	id := primitive.NewObjectID()
	reconciler.On("SyncTransactionStatus", mock.Anything, models.FundingKindDeposit, id).Return(services.SyncUpdated, nil)

	w := serve(walletRouter(&MockWalletService{}, reconciler), http.MethodPost, "/wallet/deposits/"+id.Hex()+"/sync", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"result":"synced"}`, w.Body.String())
}

func TestReconcile(t *testing.T) {
	reconciler := &MockReconciler{}
	reconciler.On("RepairUnsynced", mock.Anything).Return(&services.RepairReport{Scanned: 3, Synced: 2, Created: 1}, nil)

	w := serve(walletRouter(&MockWalletService{}, reconciler), http.MethodPost, "/wallet/reconcile", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"scanned":3`)
	assert.Contains(t, w.Body.String(), `"created":1`)
}

func settingsRouter(svc *MockSettingsService) *gin.Engine {
	h := NewSettlementSettingsHandler(svc)
	r := gin.New()
	r.Use(asAdmin("admin-1"))
	r.GET("/settings/settlement", h.GetSettings)
	r.PUT("/settings/settlement", h.UpdateSettings)
	return r
}

func TestUpdateSettlementSettings(t *testing.T) {
	policy := models.SettlementPolicy{KillPool: models.KillPoolPercentage, PerKill: models.PerKillEliminations}

	t.Run("valid policy", func(t *testing.T) {
		svc := &MockSettingsService{}
		svc.On("UpdatePolicy", mock.Anything, policy, "admin-1").
			Return(&models.SettlementSettings{Policy: policy, UpdatedBy: "admin-1"}, nil)

		w := serve(settingsRouter(svc), http.MethodPut, "/settings/settlement", `{"killPoolPolicy":"percentage","perKillPolicy":"eliminations"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"killPoolPolicy":"percentage"`)
	})

	t.Run("unknown policy", func(t *testing.T) {
		svc := &MockSettingsService{}

		w := serve(settingsRouter(svc), http.MethodPut, "/settings/settlement", `{"killPoolPolicy":"split","perKillPolicy":"eliminations"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "UpdatePolicy", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestGetSettlementSettings(t *testing.T) {
	svc := &MockSettingsService{}
	svc.On("GetSettings", mock.Anything).
		Return(&models.SettlementSettings{Policy: models.DefaultSettlementPolicy, UpdatedBy: "config"}, nil)

	w := serve(settingsRouter(svc), http.MethodGet, "/settings/settlement", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"updatedBy":"config"`)
}
