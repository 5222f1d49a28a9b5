package models

import (
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TransactionType represents the kind of wallet-affecting event a ledger entry records
type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "deposit"
	TransactionTypeWithdrawal TransactionType = "withdrawal"
	TransactionTypePrizeMoney TransactionType = "prize_money"
	TransactionTypeCredit     TransactionType = "credit"
)

// TransactionStatus represents the state of a ledger entry
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusRejected  TransactionStatus = "rejected"
)

// Transaction is an append-style ledger record mirroring a wallet-affecting event
type Transaction struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id,omitempty"`
	UserID       primitive.ObjectID  `bson:"userId" json:"userId"`
	Type         TransactionType     `bson:"type" json:"type"`
	Amount       decimal.Decimal     `bson:"amount" json:"amount"`
	Status       TransactionStatus   `bson:"status" json:"status"`
	TournamentID *primitive.ObjectID `bson:"tournamentId,omitempty" json:"tournamentId,omitempty"`
	RequestID    *primitive.ObjectID `bson:"requestId,omitempty" json:"requestId,omitempty"` // Funding request this entry was reconciled with
	Description  string              `bson:"description" json:"description"`
	CreatedAt    time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time           `bson:"updatedAt" json:"updatedAt"`
}
