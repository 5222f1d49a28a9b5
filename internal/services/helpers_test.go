package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Aaditya88888/netwin-tournament-sub001/internal/lock"
	"github.com/Aaditya88888/netwin-tournament-sub001/internal/models"
	"github.com/Aaditya88888/netwin-tournament-sub001/internal/repositories"
	"github.com/Aaditya88888/netwin-tournament-sub001/internal/repositories/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MockArchiver records archived receipts
type MockArchiver struct{ mock.Mock }

func (m *MockArchiver) ArchiveReceipt(ctx context.Context, receipt *models.DistributionReceipt) error {
	return m.Called(ctx, receipt).Error(0)
}

// noLocker never blocks, leaving the store's conditional writes as the only guard
type noLocker struct{}

func (noLocker) Acquire(context.Context, string) (func(), error) {
	return func() {}, nil
}

// failingTransactions fails Create after the first okCreates calls
type failingTransactions struct {
	repositories.TransactionRepository
	okCreates int
	calls     int
}

func (f *failingTransactions) Create(ctx context.Context, tx *models.Transaction) error {
	f.calls++
	if f.calls > f.okCreates {
		return errStoreDown
	}
	return f.TransactionRepository.Create(ctx, tx)
}

var errStoreDown = errors.New("connection reset by peer")

type fixture struct {
	t            *testing.T
	ctx          context.Context
	repos        *repositories.Repositories
	locker       lock.Locker
	settings     SettlementSettingsService
	wallet       WalletService
	reconciler   ReconciliationService
	funding      FundingService
	distribution PrizeDistributionService
	archiver     *MockArchiver
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWith(t, memory.NewStore().Repositories(), lock.NewLocalLocker())
}

func newFixtureWith(t *testing.T, repos *repositories.Repositories, locker lock.Locker) *fixture {
	f := &fixture{t: t, ctx: context.Background(), repos: repos, locker: locker, archiver: &MockArchiver{}}
	f.settings = NewSettlementSettingsService(repos.SettlementSettings, models.DefaultSettlementPolicy)
	f.wallet = NewWalletService(repos.Users, repos.Transactions, repos.TxManager, locker)
	f.reconciler = NewReconciliationService(repos.Deposits, repos.Withdrawals, repos.Transactions, repos.TxManager, locker, time.Hour, 100)
	f.funding = NewFundingService(repos.Deposits, repos.Withdrawals, f.wallet, f.reconciler, repos.TxManager, locker)
	f.distribution = NewPrizeDistributionService(repos, f.wallet, f.settings, locker, f.archiver)
	return f
}

func (f *fixture) user(balance string) *models.User {
	user := &models.User{DisplayName: "player", WalletBalance: dec(balance)}
	require.NoError(f.t, f.repos.Users.Create(f.ctx, user))
	return user
}

func (f *fixture) balance(userID primitive.ObjectID) decimal.Decimal {
	user, err := f.repos.Users.FindByID(f.ctx, userID)
	require.NoError(f.t, err)
	return user.WalletBalance
}

func (f *fixture) fundingRequest(repo repositories.FundingRequestRepository, userID primitive.ObjectID, amount string) *models.FundingRequest {
	request := &models.FundingRequest{UserID: userID, Amount: dec(amount), Status: models.FundingStatusPending}
	require.NoError(f.t, repo.Create(f.ctx, request))
	return request
}

func (f *fixture) pendingEntry(userID primitive.ObjectID, txType models.TransactionType, amount string) *models.Transaction {
	entry := &models.Transaction{
		UserID: userID,
		Type:   txType,
		Amount: dec(amount),
		Status: models.TransactionStatusPending,
	}
	require.NoError(f.t, f.repos.Transactions.Create(f.ctx, entry))
	return entry
}

// squadTournament is a completed ten-player squad tournament with a winner on 3 kills,
// a runner-up on 6 kills and eight players without a verified result
func (f *fixture) squadTournament() (*models.Tournament, []*models.Registration) {
	tournament := &models.Tournament{
		Title:     "Sunday Squads",
		EntryFee:  dec("100"),
		MatchType: models.MatchTypeSquad,
		Status:    models.TournamentStatusCompleted,
	}
	require.NoError(f.t, f.repos.Tournaments.Create(f.ctx, tournament))

	var regs []*models.Registration
	for i := 1; i <= 10; i++ {
		user := f.user("0")
		reg := &models.Registration{
			TournamentID:    tournament.ID,
			UserID:          user.ID,
			Position:        intPtr(i),
			ResultSubmitted: true,
		}
		switch i {
		case 1:
			reg.Kills, reg.ResultVerified = 3, true
		case 2:
			reg.Kills, reg.ResultVerified = 6, true
		}
		require.NoError(f.t, f.repos.Registrations.Create(f.ctx, reg))
		regs = append(regs, reg)
	}
	return tournament, regs
}
