package models

import (
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PrizeDistributionStatusCompleted is the only status a distribution record is written with
const PrizeDistributionStatusCompleted = "completed"

// Prize type labels recorded on distribution records
const (
	PrizeTypeFirstPlaceAndKills = "First Place + Kill Reward"
	PrizeTypeFirstPlace         = "First Place"
	PrizeTypeKillReward         = "Kill Reward"
)

// PrizeDistribution records one payout made to a registration. Never mutated after creation.
type PrizeDistribution struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	TournamentID   primitive.ObjectID `bson:"tournamentId" json:"tournamentId"`
	UserID         primitive.ObjectID `bson:"userId" json:"userId"`
	RegistrationID primitive.ObjectID `bson:"registrationId" json:"registrationId"`
	PrizeAmount    decimal.Decimal    `bson:"prizeAmount" json:"prizeAmount"`
	FirstPrize     decimal.Decimal    `bson:"firstPrize" json:"firstPrize"`
	KillReward     decimal.Decimal    `bson:"killReward" json:"killReward"`
	PrizeType      string             `bson:"prizeType" json:"prizeType"`
	Position       *int               `bson:"position,omitempty" json:"position,omitempty"`
	Kills          int                `bson:"kills" json:"kills"`
	Status         string             `bson:"status" json:"status"`
	DistributedBy  string             `bson:"distributedBy" json:"distributedBy"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
}

// DistributionSummary aggregates a completed distribution run
type DistributionSummary struct {
	TotalDistributed decimal.Decimal     `json:"totalDistributed"`
	FirstPlaceWinner *primitive.ObjectID `json:"firstPlaceWinner,omitempty"`
	TotalKillRewards decimal.Decimal     `json:"totalKillRewards"`
	Recipients       int                 `json:"recipients"`
}

// DistributionResult is returned by a successful distribution run
type DistributionResult struct {
	Distributions []*PrizeDistribution `json:"distributions"`
	Summary       DistributionSummary  `json:"summary"`
}

// DistributionReceipt is the archived record of a distribution run
type DistributionReceipt struct {
	TournamentID  primitive.ObjectID   `json:"tournamentId"`
	Title         string               `json:"title"`
	Calculation   PrizeCalculation     `json:"calculation"`
	Distributions []*PrizeDistribution `json:"distributions"`
	Summary       DistributionSummary  `json:"summary"`
	DistributedBy string               `json:"distributedBy"`
	DistributedAt time.Time            `json:"distributedAt"`
}
