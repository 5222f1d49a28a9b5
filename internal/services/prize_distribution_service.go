package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Aaditya88888/netwin-tournament-sub001/internal/lock"
	"github.com/Aaditya88888/netwin-tournament-sub001/internal/metrics"
	"github.com/Aaditya88888/netwin-tournament-sub001/internal/models"
	"github.com/Aaditya88888/netwin-tournament-sub001/internal/repositories"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slog"
)

// PrizeDistributionServiceImpl implements PrizeDistributionService
type PrizeDistributionServiceImpl struct {
	tournamentRepo   repositories.TournamentRepository
	registrationRepo repositories.RegistrationRepository
	distributionRepo repositories.PrizeDistributionRepository
	transactionRepo  repositories.TransactionRepository
	txManager        repositories.TxManager
	wallet           WalletService
	settings         SettlementSettingsService
	locker           lock.Locker
	archiver         ReceiptArchiver
}

// NewPrizeDistributionService creates a new PrizeDistributionService. archiver may be nil.
func NewPrizeDistributionService(
	repos *repositories.Repositories,
	wallet WalletService,
	settings SettlementSettingsService,
	locker lock.Locker,
	archiver ReceiptArchiver,
) PrizeDistributionService {
	return &PrizeDistributionServiceImpl{
		tournamentRepo:   repos.Tournaments,
		registrationRepo: repos.Registrations,
		distributionRepo: repos.PrizeDistributions,
		transactionRepo:  repos.Transactions,
		txManager:        repos.TxManager,
		wallet:           wallet,
		settings:         settings,
		locker:           locker,
		archiver:         archiver,
	}
}

// GetPrizeDistribution returns the prize breakdown for a tournament under the active policy,
// the alternate policy for comparison and each player's projected reward
func (s *PrizeDistributionServiceImpl) GetPrizeDistribution(ctx context.Context, tournamentID primitive.ObjectID) (*models.PrizeDistributionPreview, error) {
	tournament, err := s.tournamentRepo.FindByID(ctx, tournamentID)
	if err != nil {
		slog.Error("GetPrizeDistribution: Failed to find tournament", "error", err, "tournamentId", tournamentID.Hex())
		return nil, classify(err, "tournament")
	}
	registrations, err := s.registrationRepo.FindByTournament(ctx, tournamentID)
	if err != nil {
		slog.Error("GetPrizeDistribution: Failed to load registrations", "error", err, "tournamentId", tournamentID.Hex())
		return nil, classify(err, "registrations")
	}
	policy, err := s.settings.ActivePolicy(ctx)
	if err != nil {
		return nil, err
	}

	input := NewPrizeInput(tournament, len(registrations))
	verified := VerifiedWinners(registrations)
	comparison, err := ComparePolicies(input, verified, policy)
	if err != nil {
		return nil, err
	}
	calc := comparison[0]

	players := make([]models.PlayerPrize, 0, len(registrations))
	for _, reg := range registrations {
		player := models.PlayerPrize{
			RegistrationID:   reg.ID,
			UserID:           reg.UserID,
			Position:         reg.Position,
			Kills:            reg.Kills,
			ResultVerified:   reg.ResultVerified,
			FirstPrize:       decimal.Zero,
			KillReward:       decimal.Zero,
			TotalReward:      decimal.Zero,
			PrizeDistributed: reg.PrizeDistributed,
		}
		if reg.IsVerifiedWinner() {
			player.FirstPrize, player.KillReward, player.TotalReward = CalculateReward(reg.Position, reg.Kills, calc)
			player.Eligible = !reg.UserID.IsZero() && player.TotalReward.IsPositive()
		}
		players = append(players, player)
	}

	return &models.PrizeDistributionPreview{
		Tournament:       tournament,
		PrizeCalculation: calc,
		Players:          players,
		CanDistribute:    tournament.CanDistribute(),
		PolicyComparison: comparison,
	}, nil
}

// DistributePrizes pays out a completed tournament exactly once
func (s *PrizeDistributionServiceImpl) DistributePrizes(ctx context.Context, tournamentID primitive.ObjectID, adminID string) (*models.DistributionResult, error) {
	// 1. Preconditions, checked before waiting on the lock
	tournament, err := s.tournamentRepo.FindByID(ctx, tournamentID)
	if err != nil {
		slog.Error("DistributePrizes: Failed to find tournament", "error", err, "tournamentId", tournamentID.Hex())
		return nil, classify(err, "tournament")
	}
	if err := checkDistributable(tournament); err != nil {
		slog.Warn("DistributePrizes: Tournament cannot be distributed", "tournamentId", tournamentID.Hex(),
			"status", tournament.Status, "prizesDistributed", tournament.PrizesDistributed)
		metrics.RecordDistribution(distributionOutcome(err), 0, decimal.Zero)
		return nil, err
	}

	// 2. One run per tournament across all replicas
	release, err := s.locker.Acquire(ctx, lock.TournamentKey(tournamentID.Hex()))
	if err != nil {
		return nil, classify(err, "tournament "+tournamentID.Hex())
	}
	defer release()

	policy, err := s.settings.ActivePolicy(ctx)
	if err != nil {
		return nil, err
	}

	// 3. Claim the tournament and pay everyone in one transaction
	var calc models.PrizeCalculation
	var result *models.DistributionResult
	distributedAt := time.Now()
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		calc, result, err = s.distribute(txCtx, tournamentID, adminID, policy, distributedAt)
		return err
	})
	if err != nil {
		metrics.RecordDistribution(distributionOutcome(err), 0, decimal.Zero)
		if errors.Is(err, ErrPreconditionFailed) {
			slog.Warn("DistributePrizes: Distribution rejected", "error", err, "tournamentId", tournamentID.Hex())
		} else {
			slog.Error("DistributePrizes: Distribution aborted", "error", err, "tournamentId", tournamentID.Hex())
		}
		return nil, err
	}

	// 4. Side effects that must not run more than once
	metrics.RecordDistribution("success", len(result.Distributions), result.Summary.TotalDistributed)
	slog.Info("Prizes distributed", "tournamentId", tournamentID.Hex(), "recipients", result.Summary.Recipients,
		"totalDistributed", result.Summary.TotalDistributed, "distributedBy", adminID)

	if s.archiver != nil {
		receipt := &models.DistributionReceipt{
			TournamentID:  tournamentID,
			Title:         tournament.Title,
			Calculation:   calc,
			Distributions: result.Distributions,
			Summary:       result.Summary,
			DistributedBy: adminID,
			DistributedAt: distributedAt,
		}
		if err := s.archiver.ArchiveReceipt(ctx, receipt); err != nil {
			slog.Warn("DistributePrizes: Failed to archive receipt", "error", err, "tournamentId", tournamentID.Hex())
		}
	}

	return result, nil
}

// distribute runs inside the store transaction and may be retried, so it rebuilds everything
// from what it reads
func (s *PrizeDistributionServiceImpl) distribute(ctx context.Context, tournamentID primitive.ObjectID, adminID string, policy models.SettlementPolicy, at time.Time) (models.PrizeCalculation, *models.DistributionResult, error) {
	tournament, err := s.tournamentRepo.FindByID(ctx, tournamentID)
	if err != nil {
		return models.PrizeCalculation{}, nil, classify(err, "tournament")
	}
	if err := checkDistributable(tournament); err != nil {
		return models.PrizeCalculation{}, nil, err
	}

	registrations, err := s.registrationRepo.FindByTournament(ctx, tournamentID)
	if err != nil {
		return models.PrizeCalculation{}, nil, classify(err, "registrations")
	}
	verified := VerifiedWinners(registrations)
	calc, err := CalculatePrizePool(NewPrizeInput(tournament, len(registrations)), verified, policy)
	if err != nil {
		return models.PrizeCalculation{}, nil, err
	}
	payouts, total, err := planDistribution(calc, verified)
	if err != nil {
		return calc, nil, err
	}

	// The conditional flag write comes first so a concurrent run loses before paying anyone.
	if err := s.tournamentRepo.MarkPrizesDistributed(ctx, tournamentID, total, adminID, at); err != nil {
		if errors.Is(err, repositories.ErrConditionFailed) {
			return calc, nil, ErrAlreadyDistributed
		}
		return calc, nil, classify(err, "tournament")
	}

	result := &models.DistributionResult{
		Distributions: make([]*models.PrizeDistribution, 0, len(payouts)),
		Summary: models.DistributionSummary{
			TotalDistributed: total,
			TotalKillRewards: decimal.Zero,
		},
	}
	for _, p := range payouts {
		reg := p.registration
		distribution := &models.PrizeDistribution{
			TournamentID:   tournamentID,
			UserID:         reg.UserID,
			RegistrationID: reg.ID,
			PrizeAmount:    p.amount,
			FirstPrize:     p.firstPrize,
			KillReward:     p.killReward,
			PrizeType:      p.prizeType(),
			Position:       reg.Position,
			Kills:          reg.Kills,
			Status:         models.PrizeDistributionStatusCompleted,
			DistributedBy:  adminID,
			CreatedAt:      at,
		}
		if err := s.distributionRepo.Create(ctx, distribution); err != nil {
			return calc, nil, classify(err, "prize distribution")
		}

		if _, err := s.wallet.Credit(ctx, reg.UserID, p.amount); err != nil {
			return calc, nil, fmt.Errorf("failed to credit user %s: %w", reg.UserID.Hex(), err)
		}

		entry := &models.Transaction{
			UserID:       reg.UserID,
			Type:         models.TransactionTypePrizeMoney,
			Amount:       p.amount,
			Status:       models.TransactionStatusCompleted,
			TournamentID: &tournamentID,
			Description:  fmt.Sprintf("%s - %s", p.prizeType(), tournament.Title),
			CreatedAt:    at,
		}
		if err := s.transactionRepo.Create(ctx, entry); err != nil {
			return calc, nil, classify(err, "transaction")
		}

		if err := s.registrationRepo.MarkRewarded(ctx, reg.ID, p.amount); err != nil {
			return calc, nil, classify(err, "registration")
		}

		if p.firstPrize.IsPositive() {
			winner := reg.UserID
			result.Summary.FirstPlaceWinner = &winner
		}
		result.Summary.TotalKillRewards = result.Summary.TotalKillRewards.Add(p.killReward)
		result.Distributions = append(result.Distributions, distribution)
	}
	result.Summary.Recipients = len(result.Distributions)
	return calc, result, nil
}

func checkDistributable(t *models.Tournament) error {
	if t.PrizesDistributed {
		return ErrAlreadyDistributed
	}
	if t.Status != models.TournamentStatusCompleted {
		return ErrTournamentNotCompleted
	}
	return nil
}

func distributionOutcome(err error) string {
	switch {
	case errors.Is(err, ErrAlreadyDistributed):
		return "already_distributed"
	case errors.Is(err, ErrPreconditionFailed):
		return "precondition_failed"
	case errors.Is(err, ErrConflict):
		return "conflict"
	default:
		return "failed"
	}
}
