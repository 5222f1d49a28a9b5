package models

import (
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MatchType represents the team size a tournament is played in
type MatchType string

const (
	MatchTypeSolo  MatchType = "solo"
	MatchTypeDuo   MatchType = "duo"
	MatchTypeSquad MatchType = "squad"
)

// TournamentStatus represents the lifecycle state of a tournament
type TournamentStatus string

const (
	TournamentStatusUpcoming  TournamentStatus = "upcoming"
	TournamentStatusLive      TournamentStatus = "live"
	TournamentStatusCompleted TournamentStatus = "completed"
)

// Default prize split percentages applied when a tournament leaves them unset
var (
	DefaultCommissionPercentage    = decimal.NewFromInt(10)
	DefaultFirstPrizePercentage    = decimal.NewFromInt(40)
	DefaultPerKillRewardPercentage = decimal.NewFromInt(60)
)

// Tournament represents a paid-entry tournament and its settlement state
type Tournament struct {
	ID                          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Title                       string             `bson:"title" json:"title"`
	EntryFee                    decimal.Decimal    `bson:"entryFee" json:"entryFee"`
	TotalRegistrations          int                `bson:"totalRegistrations" json:"totalRegistrations"`
	CompanyCommissionPercentage *decimal.Decimal   `bson:"companyCommissionPercentage,omitempty" json:"companyCommissionPercentage,omitempty"`
	FirstPrizePercentage        *decimal.Decimal   `bson:"firstPrizePercentage,omitempty" json:"firstPrizePercentage,omitempty"`
	PerKillRewardPercentage     *decimal.Decimal   `bson:"perKillRewardPercentage,omitempty" json:"perKillRewardPercentage,omitempty"`
	MatchType                   MatchType          `bson:"matchType" json:"matchType"`
	Status                      TournamentStatus   `bson:"status" json:"status"`
	PrizePool                   *decimal.Decimal   `bson:"prizePool,omitempty" json:"prizePool,omitempty"` // Admin override of the computed pool
	PrizesDistributed           bool               `bson:"prizesDistributed" json:"prizesDistributed"`
	TotalDistributed            decimal.Decimal    `bson:"totalDistributed" json:"totalDistributed"`
	PrizesDistributedAt         *time.Time         `bson:"prizesDistributedAt,omitempty" json:"prizesDistributedAt,omitempty"`
	PrizesDistributedBy         string             `bson:"prizesDistributedBy,omitempty" json:"prizesDistributedBy,omitempty"`
	CreatedAt                   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt                   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// CommissionPercentage returns the configured commission or the platform default
func (t *Tournament) CommissionPercentage() decimal.Decimal {
	if t.CompanyCommissionPercentage == nil {
		return DefaultCommissionPercentage
	}
	return *t.CompanyCommissionPercentage
}

// FirstPrizeShare returns the configured first prize percentage or the platform default
func (t *Tournament) FirstPrizeShare() decimal.Decimal {
	if t.FirstPrizePercentage == nil {
		return DefaultFirstPrizePercentage
	}
	return *t.FirstPrizePercentage
}

// PerKillRewardShare returns the configured kill pool percentage or the platform default
func (t *Tournament) PerKillRewardShare() decimal.Decimal {
	if t.PerKillRewardPercentage == nil {
		return DefaultPerKillRewardPercentage
	}
	return *t.PerKillRewardPercentage
}

// CanDistribute reports whether prizes may be paid out for this tournament
func (t *Tournament) CanDistribute() bool {
	return t.Status == TournamentStatusCompleted && !t.PrizesDistributed
}
