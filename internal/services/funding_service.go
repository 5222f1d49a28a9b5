package services

import (
	"context"
	"errors"
	"time"

	"github.com/Aaditya88888/netwin-tournament-sub001/internal/lock"
	"github.com/Aaditya88888/netwin-tournament-sub001/internal/metrics"
	"github.com/Aaditya88888/netwin-tournament-sub001/internal/models"
	"github.com/Aaditya88888/netwin-tournament-sub001/internal/repositories"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slog"
)

// FundingServiceImpl implements FundingService
type FundingServiceImpl struct {
	deposits    repositories.FundingRequestRepository
	withdrawals repositories.FundingRequestRepository
	wallet      WalletService
	reconciler  ReconciliationService
	txManager   repositories.TxManager
	locker      lock.Locker
}

// NewFundingService creates a new FundingService
func NewFundingService(
	deposits, withdrawals repositories.FundingRequestRepository,
	wallet WalletService,
	reconciler ReconciliationService,
	txManager repositories.TxManager,
	locker lock.Locker,
) FundingService {
	return &FundingServiceImpl{
		deposits:    deposits,
		withdrawals: withdrawals,
		wallet:      wallet,
		reconciler:  reconciler,
		txManager:   txManager,
		locker:      locker,
	}
}

// ApproveDeposit credits the deposit amount and marks the request APPROVED
func (s *FundingServiceImpl) ApproveDeposit(ctx context.Context, requestID primitive.ObjectID, adminID string) (*models.FundingOutcome, error) {
	return s.approve(ctx, s.deposits, requestID, adminID)
}

// RejectDeposit marks the request REJECTED without touching the wallet
func (s *FundingServiceImpl) RejectDeposit(ctx context.Context, requestID primitive.ObjectID, adminID, reason string) (*models.FundingOutcome, error) {
	return s.reject(ctx, s.deposits, requestID, adminID, reason)
}

// ApproveWithdrawal debits the withdrawal amount and marks the request APPROVED.
// With too little balance the request stays PENDING.
func (s *FundingServiceImpl) ApproveWithdrawal(ctx context.Context, requestID primitive.ObjectID, adminID string) (*models.FundingOutcome, error) {
	return s.approve(ctx, s.withdrawals, requestID, adminID)
}

// RejectWithdrawal marks the request REJECTED without touching the wallet
func (s *FundingServiceImpl) RejectWithdrawal(ctx context.Context, requestID primitive.ObjectID, adminID, reason string) (*models.FundingOutcome, error) {
	return s.reject(ctx, s.withdrawals, requestID, adminID, reason)
}

// loadPending fetches a request and fails with ErrNotPending once it is terminal
func (s *FundingServiceImpl) loadPending(ctx context.Context, repo repositories.FundingRequestRepository, requestID primitive.ObjectID) (*models.FundingRequest, error) {
	request, err := repo.FindByID(ctx, requestID)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			slog.Error("Failed to load funding request", "error", err, "requestId", requestID.Hex(), "kind", repo.Kind())
		}
		return nil, classify(err, string(repo.Kind())+" request")
	}
	if request.Status != models.FundingStatusPending {
		slog.Warn("Funding request is not pending", "requestId", requestID.Hex(), "kind", repo.Kind(), "status", request.Status)
		return nil, ErrNotPending
	}
	return request, nil
}

func (s *FundingServiceImpl) approve(ctx context.Context, repo repositories.FundingRequestRepository, requestID primitive.ObjectID, adminID string) (*models.FundingOutcome, error) {
	kind := repo.Kind()

	// 1. Check the request before queueing behind other work on the same wallet
	request, err := s.loadPending(ctx, repo, requestID)
	if err != nil {
		return nil, err
	}

	// 2. Serialize with every other mutation of this user's wallet
	release, err := s.locker.Acquire(ctx, lock.WalletKey(request.UserID.Hex()))
	if err != nil {
		return nil, classify(err, "wallet "+request.UserID.Hex())
	}
	defer release()

	// 3. Claim the request and move the money together
	decision := models.FundingDecision{
		Status:    models.FundingStatusApproved,
		DecidedAt: time.Now(),
		DecidedBy: adminID,
	}
	var balance decimal.Decimal
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := repo.TransitionStatus(txCtx, requestID, models.FundingStatusPending, decision); err != nil {
			if errors.Is(err, repositories.ErrConditionFailed) {
				return ErrNotPending
			}
			return classify(err, string(kind)+" request")
		}

		var err error
		if kind == models.FundingKindWithdrawal {
			balance, err = s.wallet.Debit(txCtx, request.UserID, request.Amount)
		} else {
			balance, err = s.wallet.Credit(txCtx, request.UserID, request.Amount)
		}
		return err
	})

	direction := "credit"
	if kind == models.FundingKindWithdrawal {
		direction = "debit"
	}
	if err != nil {
		outcome := "failed"
		switch {
		case errors.Is(err, ErrInsufficientFunds):
			outcome = "insufficient_funds"
			slog.Warn("Withdrawal left pending: insufficient funds", "requestId", requestID.Hex(), "userId", request.UserID.Hex(), "amount", request.Amount)
		case errors.Is(err, ErrPreconditionFailed), errors.Is(err, ErrNotFound):
			outcome = "rejected_precondition"
		default:
			slog.Error("Failed to approve funding request", "error", err, "requestId", requestID.Hex(), "kind", kind)
		}
		metrics.RecordFundingDecision(string(kind), outcome)
		metrics.RecordWalletMutation(direction, outcome)
		return nil, err
	}
	metrics.RecordFundingDecision(string(kind), "approved")
	metrics.RecordWalletMutation(direction, "success")
	slog.Info("Funding request approved", "requestId", requestID.Hex(), "kind", kind, "userId", request.UserID.Hex(),
		"amount", request.Amount, "newBalance", balance, "approvedBy", adminID)

	// 4. Mirror the decision onto the ledger; the repair job retries what fails here
	s.syncInline(ctx, kind, requestID)

	return &models.FundingOutcome{
		Success:    true,
		NewBalance: &balance,
		Request:    s.reload(ctx, repo, request, decision),
	}, nil
}

func (s *FundingServiceImpl) reject(ctx context.Context, repo repositories.FundingRequestRepository, requestID primitive.ObjectID, adminID, reason string) (*models.FundingOutcome, error) {
	kind := repo.Kind()

	request, err := s.loadPending(ctx, repo, requestID)
	if err != nil {
		return nil, err
	}

	release, err := s.locker.Acquire(ctx, lock.WalletKey(request.UserID.Hex()))
	if err != nil {
		return nil, classify(err, "wallet "+request.UserID.Hex())
	}
	defer release()

	decision := models.FundingDecision{
		Status:          models.FundingStatusRejected,
		DecidedAt:       time.Now(),
		DecidedBy:       adminID,
		RejectionReason: reason,
	}
	if err := repo.TransitionStatus(ctx, requestID, models.FundingStatusPending, decision); err != nil {
		if errors.Is(err, repositories.ErrConditionFailed) {
			return nil, ErrNotPending
		}
		slog.Error("Failed to reject funding request", "error", err, "requestId", requestID.Hex(), "kind", kind)
		return nil, classify(err, string(kind)+" request")
	}
	metrics.RecordFundingDecision(string(kind), "rejected")
	slog.Info("Funding request rejected", "requestId", requestID.Hex(), "kind", kind, "rejectedBy", adminID, "reason", reason)

	s.syncInline(ctx, kind, requestID)

	return &models.FundingOutcome{
		Success: true,
		Request: s.reload(ctx, repo, request, decision),
	}, nil
}

func (s *FundingServiceImpl) syncInline(ctx context.Context, kind models.FundingKind, requestID primitive.ObjectID) {
	result, err := s.reconciler.SyncTransactionStatus(ctx, kind, requestID)
	if err != nil {
		slog.Warn("Inline ledger sync failed, leaving it to the repair job", "error", err, "requestId", requestID.Hex(), "kind", kind)
		return
	}
	if result != SyncUpdated {
		slog.Info("Inline ledger sync did not complete", "requestId", requestID.Hex(), "kind", kind, "result", result)
	}
}

// reload returns the stored request, falling back to the pre-decision copy with the decision applied
func (s *FundingServiceImpl) reload(ctx context.Context, repo repositories.FundingRequestRepository, request *models.FundingRequest, decision models.FundingDecision) *models.FundingRequest {
	if current, err := repo.FindByID(ctx, request.ID); err == nil {
		return current
	}
	request.Status = decision.Status
	request.VerifiedAt = &decision.DecidedAt
	request.VerifiedBy = decision.DecidedBy
	if decision.RejectionReason != "" {
		request.RejectionReason = decision.RejectionReason
	}
	return request
}
