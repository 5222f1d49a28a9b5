package models

import (
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PrizeCalculation is the breakdown of a tournament's prize pool under one settlement policy
type PrizeCalculation struct {
	Policy             SettlementPolicy `json:"policy"`
	TotalRegistrations int              `json:"totalRegistrations"`
	TotalEntryFees     decimal.Decimal  `json:"totalEntryFees"`
	CompanyCommission  decimal.Decimal  `json:"companyCommission"`
	ActualPrizePool    decimal.Decimal  `json:"actualPrizePool"`
	FirstPrize         decimal.Decimal  `json:"firstPrize"`
	KillPrizePool      decimal.Decimal  `json:"killPrizePool"`
	NumKills           int              `json:"numKills"`   // Eliminations possible in one match
	TotalKills         int              `json:"totalKills"` // Kills recorded by verified winners
	PerKillReward      decimal.Decimal  `json:"perKillReward"`
}

// PlayerPrize is one registration's projected reward in a prize preview
type PlayerPrize struct {
	RegistrationID   primitive.ObjectID `json:"registrationId"`
	UserID           primitive.ObjectID `json:"userId"`
	Position         *int               `json:"position,omitempty"`
	Kills            int                `json:"kills"`
	ResultVerified   bool               `json:"resultVerified"`
	Eligible         bool               `json:"eligible"`
	FirstPrize       decimal.Decimal    `json:"firstPrize"`
	KillReward       decimal.Decimal    `json:"killReward"`
	TotalReward      decimal.Decimal    `json:"totalReward"`
	PrizeDistributed bool               `json:"prizeDistributed"`
}

// PrizeDistributionPreview is the read-only view shown before a distribution run
type PrizeDistributionPreview struct {
	Tournament       *Tournament        `json:"tournament"`
	PrizeCalculation PrizeCalculation   `json:"prizeCalculation"`
	Players          []PlayerPrize      `json:"players"`
	CanDistribute    bool               `json:"canDistribute"`
	PolicyComparison []PrizeCalculation `json:"policyComparison"`
}
