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

// WalletServiceImpl implements WalletService on top of the store's atomic balance updates
type WalletServiceImpl struct {
	userRepo        repositories.UserRepository
	transactionRepo repositories.TransactionRepository
	txManager       repositories.TxManager
	locker          lock.Locker
}

// NewWalletService creates a new WalletService
func NewWalletService(
	userRepo repositories.UserRepository,
	transactionRepo repositories.TransactionRepository,
	txManager repositories.TxManager,
	locker lock.Locker,
) WalletService {
	return &WalletServiceImpl{
		userRepo:        userRepo,
		transactionRepo: transactionRepo,
		txManager:       txManager,
		locker:          locker,
	}
}

// Credit adds amount to the wallet
func (s *WalletServiceImpl) Credit(ctx context.Context, userID primitive.ObjectID, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	balance, err := s.userRepo.IncrementBalance(ctx, userID, amount)
	if err != nil {
		return decimal.Zero, classify(err, "user")
	}
	return balance, nil
}

// Debit subtracts amount from the wallet only if the balance covers it
func (s *WalletServiceImpl) Debit(ctx context.Context, userID primitive.ObjectID, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	balance, err := s.userRepo.DecrementBalanceIfSufficient(ctx, userID, amount)
	if errors.Is(err, repositories.ErrConditionFailed) {
		return decimal.Zero, ErrInsufficientFunds
	}
	if err != nil {
		return decimal.Zero, classify(err, "user")
	}
	return balance, nil
}

// GetBalance returns the user's wallet balance
func (s *WalletServiceImpl) GetBalance(ctx context.Context, userID primitive.ObjectID) (decimal.Decimal, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return decimal.Zero, classify(err, "user")
	}
	return user.WalletBalance, nil
}

// GrantBonus credits amount and appends a completed credit entry in one transaction
func (s *WalletServiceImpl) GrantBonus(ctx context.Context, userID primitive.ObjectID, amount decimal.Decimal, description, adminID string) (*models.Transaction, decimal.Decimal, error) {
	if !amount.IsPositive() {
		return nil, decimal.Zero, ErrInvalidAmount
	}
	if description == "" {
		description = "Bonus credit"
	}

	release, err := s.locker.Acquire(ctx, lock.WalletKey(userID.Hex()))
	if err != nil {
		return nil, decimal.Zero, classify(err, "wallet "+userID.Hex())
	}
	defer release()

	var entry *models.Transaction
	var balance decimal.Decimal
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		balance, err = s.Credit(txCtx, userID, amount)
		if err != nil {
			return err
		}
		entry = &models.Transaction{
			UserID:      userID,
			Type:        models.TransactionTypeCredit,
			Amount:      amount,
			Status:      models.TransactionStatusCompleted,
			Description: description,
			CreatedAt:   time.Now(),
		}
		if err := s.transactionRepo.Create(txCtx, entry); err != nil {
			return classify(err, "transaction")
		}
		return nil
	})
	if err != nil {
		slog.Error("GrantBonus: Failed to credit bonus", "error", err, "userId", userID.Hex(), "amount", amount)
		metrics.RecordWalletMutation("credit", "failed")
		return nil, decimal.Zero, err
	}

	metrics.RecordWalletMutation("credit", "success")
	slog.Info("Bonus granted", "userId", userID.Hex(), "amount", amount, "newBalance", balance, "grantedBy", adminID)
	return entry, balance, nil
}
