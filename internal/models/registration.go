package models

import (
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Registration represents a player's entry into a tournament and their recorded result
type Registration struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	TournamentID     primitive.ObjectID `bson:"tournamentId" json:"tournamentId"`
	UserID           primitive.ObjectID `bson:"userId,omitempty" json:"userId,omitempty"`
	Position         *int               `bson:"position,omitempty" json:"position,omitempty"` // 1 = winner
	Kills            int                `bson:"kills" json:"kills"`
	ResultSubmitted  bool               `bson:"resultSubmitted" json:"resultSubmitted"`
	ResultVerified   bool               `bson:"resultVerified" json:"resultVerified"`
	Reward           decimal.Decimal    `bson:"reward" json:"reward"`
	PrizeDistributed bool               `bson:"prizeDistributed" json:"prizeDistributed"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// IsFirstPlace reports whether the registration finished in first position
func (r *Registration) IsFirstPlace() bool {
	return r.Position != nil && *r.Position == 1
}

// IsVerifiedWinner reports whether the registration qualifies for a payout
func (r *Registration) IsVerifiedWinner() bool {
	return r.ResultVerified && (r.IsFirstPlace() || r.Kills > 0)
}
