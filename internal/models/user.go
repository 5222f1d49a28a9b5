package models

import (
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a player account and its wallet
type User struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	DisplayName   string             `bson:"displayName" json:"displayName"`
	Email         string             `bson:"email,omitempty" json:"email,omitempty"`
	WalletBalance decimal.Decimal    `bson:"walletBalance" json:"walletBalance"` // Written only through the wallet ledger
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}
