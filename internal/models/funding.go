package models

import (
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FundingKind distinguishes deposits from withdrawals
type FundingKind string

const (
	FundingKindDeposit    FundingKind = "deposit"
	FundingKindWithdrawal FundingKind = "withdrawal"
)

// TransactionType returns the ledger entry type mirroring this kind of request
func (k FundingKind) TransactionType() TransactionType {
	if k == FundingKindWithdrawal {
		return TransactionTypeWithdrawal
	}
	return TransactionTypeDeposit
}

// FundingStatus represents the approval state of a deposit or withdrawal request
type FundingStatus string

const (
	FundingStatusPending  FundingStatus = "PENDING"
	FundingStatusApproved FundingStatus = "APPROVED"
	FundingStatusRejected FundingStatus = "REJECTED"
)

// IsTerminal reports whether no further transition is allowed
func (s FundingStatus) IsTerminal() bool {
	return s == FundingStatusApproved || s == FundingStatusRejected
}

// MirroredTransactionStatus returns the ledger status a request in this state should be mirrored with
func (s FundingStatus) MirroredTransactionStatus() TransactionStatus {
	switch s {
	case FundingStatusApproved:
		return TransactionStatusCompleted
	case FundingStatusRejected:
		return TransactionStatusRejected
	default:
		return TransactionStatusPending
	}
}

// FundingRequest is a pending deposit or withdrawal awaiting admin review.
// Deposits and withdrawals live in separate collections; Kind is set by the repository.
// ReconcileAttemptedAt is stamped when a repair pass could not sync the request.
type FundingRequest struct {
	ID                   primitive.ObjectID  `bson:"_id,omitempty" json:"id,omitempty"`
	Kind                 FundingKind         `bson:"-" json:"kind"`
	UserID               primitive.ObjectID  `bson:"userId" json:"userId"`
	Amount               decimal.Decimal     `bson:"amount" json:"amount"`
	Status               FundingStatus       `bson:"status" json:"status"`
	VerifiedAt           *time.Time          `bson:"verifiedAt,omitempty" json:"verifiedAt,omitempty"`
	VerifiedBy           string              `bson:"verifiedBy,omitempty" json:"verifiedBy,omitempty"`
	RejectionReason      string              `bson:"rejectionReason,omitempty" json:"rejectionReason,omitempty"`
	TransactionSynced    bool                `bson:"transactionSynced" json:"transactionSynced"`
	TransactionID        *primitive.ObjectID `bson:"transactionId,omitempty" json:"transactionId,omitempty"`
	ReconcileAttemptedAt *time.Time          `bson:"reconcileAttemptedAt,omitempty" json:"reconcileAttemptedAt,omitempty"`
	CreatedAt            time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt            time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// FundingDecision carries the fields written when a request leaves PENDING
type FundingDecision struct {
	Status          FundingStatus
	DecidedAt       time.Time
	DecidedBy       string
	RejectionReason string
}

// FundingOutcome is returned to the admin after an approve or reject action
type FundingOutcome struct {
	Success    bool             `json:"success"`
	NewBalance *decimal.Decimal `json:"newBalance,omitempty"`
	Request    *FundingRequest  `json:"request,omitempty"`
}
