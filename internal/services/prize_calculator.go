package services

import (
	"fmt"

	"github.com/Aaditya88888/netwin-tournament-sub001/internal/models"
	"github.com/Aaditya88888/netwin-tournament-sub001/internal/utils"
	"github.com/shopspring/decimal"
)

var prizeValidator = utils.NewValidator()

// PrizeInput is the tournament configuration the prize formulas read
type PrizeInput struct {
	EntryFee                decimal.Decimal `validate:"gte=0"`
	TotalRegistrations      int             `validate:"gte=0"`
	CommissionPercentage    decimal.Decimal `validate:"gte=0,lte=100"`
	FirstPrizePercentage    decimal.Decimal `validate:"gte=0,lte=100"`
	PerKillRewardPercentage decimal.Decimal `validate:"gte=0,lte=100"`
	MatchType               models.MatchType
	PrizePoolOverride       *decimal.Decimal `validate:"omitempty,gte=0"`
}

// NewPrizeInput builds the calculator input for a tournament. The stored registration count
// wins when set; otherwise the number of loaded registrations is used.
func NewPrizeInput(t *models.Tournament, registrations int) PrizeInput {
	total := t.TotalRegistrations
	if total <= 0 {
		total = registrations
	}
	return PrizeInput{
		EntryFee:                t.EntryFee,
		TotalRegistrations:      total,
		CommissionPercentage:    t.CommissionPercentage(),
		FirstPrizePercentage:    t.FirstPrizeShare(),
		PerKillRewardPercentage: t.PerKillRewardShare(),
		MatchType:               t.MatchType,
		PrizePoolOverride:       t.PrizePool,
	}
}

// NumKills returns the eliminations possible in one match of the given type
func NumKills(players int, matchType models.MatchType) int {
	var n int
	switch matchType {
	case models.MatchTypeDuo:
		n = players - 2
	case models.MatchTypeSquad:
		n = players - 4
	default:
		n = players - 1
	}
	if n < 0 {
		return 0
	}
	return n
}

// VerifiedWinners filters registrations down to the ones that qualify for a payout
func VerifiedWinners(registrations []*models.Registration) []*models.Registration {
	winners := make([]*models.Registration, 0, len(registrations))
	for _, reg := range registrations {
		if reg.IsVerifiedWinner() {
			winners = append(winners, reg)
		}
	}
	return winners
}

// CalculatePrizePool computes the prize breakdown under policy. verified is the set of
// verified winners; it only matters for the recorded-kills divisor.
func CalculatePrizePool(input PrizeInput, verified []*models.Registration, policy models.SettlementPolicy) (models.PrizeCalculation, error) {
	if err := prizeValidator.Struct(input); err != nil {
		return models.PrizeCalculation{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := policy.Validate(); err != nil {
		return models.PrizeCalculation{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	totalKills := 0
	for _, reg := range verified {
		if reg.Kills < 0 {
			return models.PrizeCalculation{}, fmt.Errorf("%w: registration %s has negative kills", ErrInvalidInput, reg.ID.Hex())
		}
		totalKills += reg.Kills
	}

	calc := models.PrizeCalculation{
		Policy:             policy,
		TotalRegistrations: input.TotalRegistrations,
		TotalEntryFees:     input.EntryFee.Mul(decimal.NewFromInt(int64(input.TotalRegistrations))),
		NumKills:           NumKills(input.TotalRegistrations, input.MatchType),
		TotalKills:         totalKills,
	}
	calc.CompanyCommission = utils.Percentage(calc.TotalEntryFees, input.CommissionPercentage)
	if input.PrizePoolOverride != nil {
		calc.ActualPrizePool = *input.PrizePoolOverride
	} else {
		calc.ActualPrizePool = calc.TotalEntryFees.Sub(calc.CompanyCommission)
	}
	calc.FirstPrize = utils.Percentage(calc.ActualPrizePool, input.FirstPrizePercentage)

	switch policy.KillPool {
	case models.KillPoolPercentage:
		calc.KillPrizePool = utils.Percentage(calc.ActualPrizePool, input.PerKillRewardPercentage)
	default:
		calc.KillPrizePool = decimal.Max(calc.ActualPrizePool.Sub(calc.FirstPrize), decimal.Zero)
	}

	calc.PerKillReward = decimal.Zero
	switch policy.PerKill {
	case models.PerKillEliminations:
		if calc.NumKills > 0 {
			calc.PerKillReward = calc.KillPrizePool.Div(decimal.NewFromInt(int64(calc.NumKills))).Floor()
		}
	default:
		if calc.TotalKills > 0 {
			calc.PerKillReward = calc.KillPrizePool.Div(decimal.NewFromInt(int64(calc.TotalKills)))
		}
	}
	return calc, nil
}

// CalculateReward returns the first prize (for position 1) plus kills × perKillReward,
// rounded down to the currency minor unit
func CalculateReward(position *int, kills int, calc models.PrizeCalculation) (first, killReward, total decimal.Decimal) {
	first = decimal.Zero
	if position != nil && *position == 1 {
		first = utils.RoundDownToMinorUnit(calc.FirstPrize)
	}
	killReward = decimal.Zero
	if kills > 0 {
		killReward = utils.RoundDownToMinorUnit(calc.PerKillReward.Mul(decimal.NewFromInt(int64(kills))))
	}
	return first, killReward, first.Add(killReward)
}

// ComparePolicies returns the calculation under active followed by the alternate formulas
func ComparePolicies(input PrizeInput, verified []*models.Registration, active models.SettlementPolicy) ([]models.PrizeCalculation, error) {
	comparison := make([]models.PrizeCalculation, 0, 2)
	for _, policy := range []models.SettlementPolicy{active, active.Alternate()} {
		calc, err := CalculatePrizePool(input, verified, policy)
		if err != nil {
			return nil, err
		}
		comparison = append(comparison, calc)
	}
	return comparison, nil
}

// payout is one planned credit of a distribution run
type payout struct {
	registration *models.Registration
	firstPrize   decimal.Decimal
	killReward   decimal.Decimal
	amount       decimal.Decimal
}

func (p payout) prizeType() string {
	switch {
	case p.firstPrize.IsPositive() && p.killReward.IsPositive():
		return models.PrizeTypeFirstPlaceAndKills
	case p.firstPrize.IsPositive():
		return models.PrizeTypeFirstPlace
	default:
		return models.PrizeTypeKillReward
	}
}

// planDistribution decides who gets paid what. It fails with ErrPreconditionFailed when the
// payouts would add up to more than the prize pool.
func planDistribution(calc models.PrizeCalculation, verified []*models.Registration) ([]payout, decimal.Decimal, error) {
	var payouts []payout
	total := decimal.Zero
	for _, reg := range verified {
		if reg.UserID.IsZero() {
			continue
		}
		first, kills, amount := CalculateReward(reg.Position, reg.Kills, calc)
		if !amount.IsPositive() {
			continue
		}
		payouts = append(payouts, payout{registration: reg, firstPrize: first, killReward: kills, amount: amount})
		total = total.Add(amount)
	}
	if total.GreaterThan(calc.ActualPrizePool) {
		return nil, decimal.Zero, fmt.Errorf("%w: payouts %s exceed prize pool %s", ErrPreconditionFailed, total, calc.ActualPrizePool)
	}
	return payouts, total, nil
}
