package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Aaditya88888/netwin-tournament-sub001/internal/lock"
	"github.com/Aaditya88888/netwin-tournament-sub001/internal/metrics"
	"github.com/Aaditya88888/netwin-tournament-sub001/internal/models"
	"github.com/Aaditya88888/netwin-tournament-sub001/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slog"
)

// SyncResult describes what one reconciliation attempt did
type SyncResult string

const (
	SyncNotTerminal   SyncResult = "not_terminal"   // Request still PENDING, nothing to mirror
	SyncAlreadySynced SyncResult = "already_synced" // Flag was set by an earlier run
	SyncUpdated       SyncResult = "synced"
	SyncNoMatch       SyncResult = "no_match"
	SyncCreated       SyncResult = "created"  // Missing entry written by the repair job
	SyncConflict      SyncResult = "conflict" // Entry holds a different terminal status; left untouched
)

// maxMatchAttempts bounds how often a sync retries after losing a pending entry to a concurrent sync
const maxMatchAttempts = 3

// RepairReport summarizes one RepairUnsynced pass
type RepairReport struct {
	Scanned   int `json:"scanned"`
	Synced    int `json:"synced"`
	Created   int `json:"created"`
	NoMatch   int `json:"noMatch"`
	Conflicts int `json:"conflicts"`
	Failed    int `json:"failed"`
}

// ReconciliationServiceImpl implements ReconciliationService
type ReconciliationServiceImpl struct {
	deposits        repositories.FundingRequestRepository
	withdrawals     repositories.FundingRequestRepository
	transactionRepo repositories.TransactionRepository
	txManager       repositories.TxManager
	locker          lock.Locker
	gracePeriod     time.Duration
	batchSize       int
	now             func() time.Time
}

// NewReconciliationService creates a new ReconciliationService. A request left without a
// matching ledger entry for longer than gracePeriod gets one created by RepairUnsynced.
func NewReconciliationService(
	deposits, withdrawals repositories.FundingRequestRepository,
	transactionRepo repositories.TransactionRepository,
	txManager repositories.TxManager,
	locker lock.Locker,
	gracePeriod time.Duration,
	batchSize int,
) ReconciliationService {
	return &ReconciliationServiceImpl{
		deposits:        deposits,
		withdrawals:     withdrawals,
		transactionRepo: transactionRepo,
		txManager:       txManager,
		locker:          locker,
		gracePeriod:     gracePeriod,
		batchSize:       batchSize,
		now:             time.Now,
	}
}

func (s *ReconciliationServiceImpl) repoFor(kind models.FundingKind) (repositories.FundingRequestRepository, error) {
	switch kind {
	case models.FundingKindDeposit:
		return s.deposits, nil
	case models.FundingKindWithdrawal:
		return s.withdrawals, nil
	default:
		return nil, fmt.Errorf("%w: unknown funding kind %q", ErrInvalidInput, kind)
	}
}

// SyncTransactionStatus mirrors a terminal request's status onto its ledger entry.
// It never overwrites an entry that already reached a different terminal status.
func (s *ReconciliationServiceImpl) SyncTransactionStatus(ctx context.Context, kind models.FundingKind, requestID primitive.ObjectID) (SyncResult, error) {
	repo, err := s.repoFor(kind)
	if err != nil {
		return "", err
	}
	request, err := repo.FindByID(ctx, requestID)
	if err != nil {
		return "", classify(err, string(kind)+" request")
	}
	result, err := s.sync(ctx, repo, request)
	if err == nil {
		metrics.RecordReconciliation(string(kind), string(result))
	}
	return result, err
}

func (s *ReconciliationServiceImpl) sync(ctx context.Context, repo repositories.FundingRequestRepository, request *models.FundingRequest) (SyncResult, error) {
	if !request.Status.IsTerminal() {
		return SyncNotTerminal, nil
	}
	if request.TransactionSynced {
		return SyncAlreadySynced, nil
	}
	desired := request.Status.MirroredTransactionStatus()

	for attempt := 0; attempt < maxMatchAttempts; attempt++ {
		entry, err := s.findMirror(ctx, request)
		if errors.Is(err, repositories.ErrNotFound) {
			return SyncNoMatch, nil
		}
		if err != nil {
			return "", classify(err, "transaction")
		}

		switch {
		case entry.Status == desired:
			// Already transitioned by an earlier attempt that did not get to set the flag.
		case entry.Status != models.TransactionStatusPending:
			slog.Warn("SyncTransactionStatus: Ledger entry disagrees with request",
				"requestId", request.ID.Hex(), "kind", request.Kind, "transactionId", entry.ID.Hex(),
				"transactionStatus", entry.Status, "requestStatus", request.Status)
			return SyncConflict, nil
		default:
			err := s.transactionRepo.TransitionStatus(ctx, entry.ID, models.TransactionStatusPending, desired, request.ID)
			if errors.Is(err, repositories.ErrConditionFailed) {
				// Another sync moved this entry first; look again.
				continue
			}
			if err != nil {
				return "", classify(err, "transaction")
			}
		}

		if err := repo.MarkTransactionSynced(ctx, request.ID, &entry.ID); err != nil {
			return "", classify(err, string(request.Kind)+" request")
		}
		return SyncUpdated, nil
	}
	return "", fmt.Errorf("%w: ledger entry for request %s kept changing", ErrConflict, request.ID.Hex())
}

// findMirror locates the ledger entry for request: the linked id first, then an entry already
// claimed for this request, then the oldest unlinked PENDING entry with the same user and amount
func (s *ReconciliationServiceImpl) findMirror(ctx context.Context, request *models.FundingRequest) (*models.Transaction, error) {
	if request.TransactionID != nil {
		entry, err := s.transactionRepo.FindByID(ctx, *request.TransactionID)
		if !errors.Is(err, repositories.ErrNotFound) {
			return entry, err
		}
	}
	entry, err := s.transactionRepo.FindByRequestID(ctx, request.ID)
	if !errors.Is(err, repositories.ErrNotFound) {
		return entry, err
	}
	return s.transactionRepo.FindFirstPendingMatch(ctx, request.UserID, request.Kind.TransactionType(), request.Amount)
}

// RepairUnsynced reconciles terminal requests whose inline sync did not complete
func (s *ReconciliationServiceImpl) RepairUnsynced(ctx context.Context) (*RepairReport, error) {
	report := &RepairReport{}
	for _, repo := range []repositories.FundingRequestRepository{s.deposits, s.withdrawals} {
		requests, err := repo.FindUnsynced(ctx, s.batchSize)
		if err != nil {
			slog.Error("RepairUnsynced: Failed to list unsynced requests", "error", err, "kind", repo.Kind())
			return report, classify(err, string(repo.Kind())+" requests")
		}

		for _, request := range requests {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			report.Scanned++
			result, err := s.repairOne(ctx, repo, request)
			if err != nil || result == SyncNoMatch || result == SyncConflict {
				// Rotate it behind the rest of the backlog.
				if markErr := repo.MarkReconcileAttempted(ctx, request.ID, s.now()); markErr != nil {
					slog.Warn("RepairUnsynced: Failed to record attempt", "error", markErr, "requestId", request.ID.Hex(), "kind", repo.Kind())
				}
			}
			if err != nil {
				report.Failed++
				metrics.RecordReconciliation(string(repo.Kind()), "failed")
				slog.Error("RepairUnsynced: Failed to reconcile request", "error", err, "requestId", request.ID.Hex(), "kind", repo.Kind())
				continue
			}
			metrics.RecordReconciliation(string(repo.Kind()), string(result))
			switch result {
			case SyncUpdated:
				report.Synced++
			case SyncCreated:
				report.Created++
			case SyncNoMatch:
				report.NoMatch++
			case SyncConflict:
				report.Conflicts++
			}
		}
	}

	slog.Info("Reconciliation pass finished", "scanned", report.Scanned, "synced", report.Synced,
		"created", report.Created, "noMatch", report.NoMatch, "conflicts", report.Conflicts, "failed", report.Failed)
	return report, nil
}

func (s *ReconciliationServiceImpl) repairOne(ctx context.Context, repo repositories.FundingRequestRepository, request *models.FundingRequest) (SyncResult, error) {
	release, err := s.locker.Acquire(ctx, lock.WalletKey(request.UserID.Hex()))
	if err != nil {
		return "", classify(err, "wallet "+request.UserID.Hex())
	}
	defer release()

	// Re-read under the lock; an inline sync may have finished meanwhile.
	current, err := repo.FindByID(ctx, request.ID)
	if err != nil {
		return "", classify(err, string(repo.Kind())+" request")
	}
	result, err := s.sync(ctx, repo, current)
	if err != nil || result != SyncNoMatch {
		return result, err
	}

	decidedAt := current.UpdatedAt
	if current.VerifiedAt != nil {
		decidedAt = *current.VerifiedAt
	}
	if s.now().Sub(decidedAt) < s.gracePeriod {
		return SyncNoMatch, nil
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		entry := &models.Transaction{
			UserID:      current.UserID,
			Type:        current.Kind.TransactionType(),
			Amount:      current.Amount,
			Status:      current.Status.MirroredTransactionStatus(),
			RequestID:   &current.ID,
			Description: fmt.Sprintf("Reconciled %s request %s", current.Kind, current.ID.Hex()),
			CreatedAt:   decidedAt,
		}
		if err := s.transactionRepo.Create(txCtx, entry); err != nil {
			return classify(err, "transaction")
		}
		return classify(repo.MarkTransactionSynced(txCtx, current.ID, &entry.ID), string(current.Kind)+" request")
	})
	if err != nil {
		return "", err
	}
	slog.Warn("Created missing ledger entry", "requestId", current.ID.Hex(), "kind", current.Kind, "status", current.Status)
	return SyncCreated, nil
}
