package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// KillPoolPolicy selects how the kill prize pool is carved out of the prize pool
type KillPoolPolicy string

const (
	// KillPoolRemainder pays kills from whatever is left after the first prize
	KillPoolRemainder KillPoolPolicy = "remainder"
	// KillPoolPercentage pays kills from perKillRewardPercentage of the prize pool
	KillPoolPercentage KillPoolPolicy = "percentage"
)

// PerKillPolicy selects the divisor used to turn the kill pool into a per-kill reward
type PerKillPolicy string

const (
	// PerKillRecordedKills divides by the kills actually recorded by verified winners
	PerKillRecordedKills PerKillPolicy = "recorded_kills"
	// PerKillEliminations divides by the eliminations possible for the match type, floored
	PerKillEliminations PerKillPolicy = "eliminations"
)

// SettlementPolicy is the pair of formula choices applied to every prize calculation
type SettlementPolicy struct {
	KillPool KillPoolPolicy `bson:"killPoolPolicy" json:"killPoolPolicy"`
	PerKill  PerKillPolicy  `bson:"perKillPolicy" json:"perKillPolicy"`
}

// DefaultSettlementPolicy matches what the payout path has always paid
var DefaultSettlementPolicy = SettlementPolicy{KillPool: KillPoolRemainder, PerKill: PerKillRecordedKills}

// Validate checks that both policy values are known
func (p SettlementPolicy) Validate() error {
	switch p.KillPool {
	case KillPoolRemainder, KillPoolPercentage:
	default:
		return fmt.Errorf("unknown kill pool policy %q", p.KillPool)
	}
	switch p.PerKill {
	case PerKillRecordedKills, PerKillEliminations:
	default:
		return fmt.Errorf("unknown per-kill policy %q", p.PerKill)
	}
	return nil
}

// Alternate returns the opposite formula pair, used to show admins what the other choice would pay
func (p SettlementPolicy) Alternate() SettlementPolicy {
	alt := SettlementPolicy{KillPool: KillPoolRemainder, PerKill: PerKillRecordedKills}
	if p.KillPool == KillPoolRemainder {
		alt.KillPool = KillPoolPercentage
	}
	if p.PerKill == PerKillRecordedKills {
		alt.PerKill = PerKillEliminations
	}
	return alt
}

// SettlementSettings stores the admin's explicit choice of prize formulas
type SettlementSettings struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Policy    SettlementPolicy   `bson:"policy" json:"policy"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
	UpdatedBy string             `bson:"updatedBy" json:"updatedBy"`
}
