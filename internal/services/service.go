package services

import (
	"context"

	"github.com/Aaditya88888/netwin-tournament-sub001/internal/models"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PrizeDistributionService defines the interface for prize preview and payout operations
type PrizeDistributionService interface {
	// GetPrizeDistribution returns the calculated prize breakdown without changing anything
	GetPrizeDistribution(ctx context.Context, tournamentID primitive.ObjectID) (*models.PrizeDistributionPreview, error)

	// DistributePrizes pays every verified winner once and marks the tournament distributed
	DistributePrizes(ctx context.Context, tournamentID primitive.ObjectID, adminID string) (*models.DistributionResult, error)
}

// WalletService defines the wallet ledger primitives. Credit and Debit are the only writers of
// walletBalance; they join the store transaction carried by ctx when there is one.
type WalletService interface {
	// Credit adds amount and returns the new balance
	Credit(ctx context.Context, userID primitive.ObjectID, amount decimal.Decimal) (decimal.Decimal, error)

	// Debit subtracts amount, failing with ErrInsufficientFunds instead of going negative
	Debit(ctx context.Context, userID primitive.ObjectID, amount decimal.Decimal) (decimal.Decimal, error)

	// GetBalance returns the current wallet balance
	GetBalance(ctx context.Context, userID primitive.ObjectID) (decimal.Decimal, error)

	// GrantBonus credits a manual bonus and records it in the ledger
	GrantBonus(ctx context.Context, userID primitive.ObjectID, amount decimal.Decimal, description, adminID string) (*models.Transaction, decimal.Decimal, error)
}

// FundingService defines the deposit and withdrawal approval workflow
type FundingService interface {
	ApproveDeposit(ctx context.Context, requestID primitive.ObjectID, adminID string) (*models.FundingOutcome, error)
	RejectDeposit(ctx context.Context, requestID primitive.ObjectID, adminID, reason string) (*models.FundingOutcome, error)
	ApproveWithdrawal(ctx context.Context, requestID primitive.ObjectID, adminID string) (*models.FundingOutcome, error)
	RejectWithdrawal(ctx context.Context, requestID primitive.ObjectID, adminID, reason string) (*models.FundingOutcome, error)
}

// ReconciliationService keeps funding requests and their mirrored ledger entries in agreement
type ReconciliationService interface {
	// SyncTransactionStatus copies a terminal request's status onto its ledger entry. Safe to repeat.
	SyncTransactionStatus(ctx context.Context, kind models.FundingKind, requestID primitive.ObjectID) (SyncResult, error)

	// RepairUnsynced runs SyncTransactionStatus over every terminal request not yet reconciled
	RepairUnsynced(ctx context.Context) (*RepairReport, error)
}

// SettlementSettingsService defines the interface for the admin-selected prize formulas
type SettlementSettingsService interface {
	GetSettings(ctx context.Context) (*models.SettlementSettings, error)
	ActivePolicy(ctx context.Context) (models.SettlementPolicy, error)
	UpdatePolicy(ctx context.Context, policy models.SettlementPolicy, updatedBy string) (*models.SettlementSettings, error)
}

// ReceiptArchiver stores a copy of each completed distribution run outside the database
type ReceiptArchiver interface {
	ArchiveReceipt(ctx context.Context, receipt *models.DistributionReceipt) error
}
