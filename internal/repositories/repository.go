package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/Aaditya88888/netwin-tournament-sub001/internal/models"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrNotFound is returned when the addressed document does not exist
	ErrNotFound = errors.New("document not found")
	// ErrConditionFailed is returned when a conditional update matched no document
	ErrConditionFailed = errors.New("conditional update matched no document")
)

// TournamentRepository defines the interface for tournament data access
type TournamentRepository interface {
	Create(ctx context.Context, tournament *models.Tournament) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Tournament, error)
	// MarkPrizesDistributed flips prizesDistributed from false to true.
	// Returns ErrConditionFailed when the flag is already set.
	MarkPrizesDistributed(ctx context.Context, id primitive.ObjectID, total decimal.Decimal, distributedBy string, at time.Time) error
}

// RegistrationRepository defines the interface for registration data access
type RegistrationRepository interface {
	Create(ctx context.Context, registration *models.Registration) error
	FindByTournament(ctx context.Context, tournamentID primitive.ObjectID) ([]*models.Registration, error)
	MarkRewarded(ctx context.Context, id primitive.ObjectID, reward decimal.Decimal) error
}

// UserRepository defines the interface for user and wallet balance data access
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	// IncrementBalance atomically adds delta and returns the new balance
	IncrementBalance(ctx context.Context, id primitive.ObjectID, delta decimal.Decimal) (decimal.Decimal, error)
	// DecrementBalanceIfSufficient atomically subtracts amount only when the balance covers it.
	// Returns ErrConditionFailed when it does not.
	DecrementBalanceIfSufficient(ctx context.Context, id primitive.ObjectID, amount decimal.Decimal) (decimal.Decimal, error)
}

// FundingRequestRepository defines the interface for one collection of deposit or withdrawal requests
type FundingRequestRepository interface {
	Kind() models.FundingKind
	Create(ctx context.Context, request *models.FundingRequest) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.FundingRequest, error)
	// TransitionStatus moves a request out of from. Returns ErrConditionFailed when its status is not from.
	TransitionStatus(ctx context.Context, id primitive.ObjectID, from models.FundingStatus, decision models.FundingDecision) error
	MarkTransactionSynced(ctx context.Context, id primitive.ObjectID, transactionID *primitive.ObjectID) error
	// MarkReconcileAttempted stamps a request a repair pass could not sync. It leaves updatedAt alone.
	MarkReconcileAttempted(ctx context.Context, id primitive.ObjectID, at time.Time) error
	// FindUnsynced returns terminal requests whose ledger mirror has not been reconciled.
	// Never-attempted requests come first, then the least recently attempted; ties go oldest first.
	FindUnsynced(ctx context.Context, limit int) ([]*models.FundingRequest, error)
}

// TransactionRepository defines the interface for ledger entry data access
type TransactionRepository interface {
	Create(ctx context.Context, transaction *models.Transaction) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Transaction, error)
	FindByRequestID(ctx context.Context, requestID primitive.ObjectID) (*models.Transaction, error)
	// FindFirstPendingMatch returns the oldest unlinked PENDING entry with the given user, type and amount
	FindFirstPendingMatch(ctx context.Context, userID primitive.ObjectID, txType models.TransactionType, amount decimal.Decimal) (*models.Transaction, error)
	// TransitionStatus moves an entry out of from and links it to requestID.
	// Returns ErrConditionFailed when its status is not from.
	TransitionStatus(ctx context.Context, id primitive.ObjectID, from, to models.TransactionStatus, requestID primitive.ObjectID) error
	FindByUser(ctx context.Context, userID primitive.ObjectID) ([]*models.Transaction, error)
}

// PrizeDistributionRepository defines the interface for prize distribution records
type PrizeDistributionRepository interface {
	Create(ctx context.Context, distribution *models.PrizeDistribution) error
	FindByTournament(ctx context.Context, tournamentID primitive.ObjectID) ([]*models.PrizeDistribution, error)
}

// SettlementSettingsRepository defines the interface for the settlement policy document
type SettlementSettingsRepository interface {
	// GetSettings returns ErrNotFound until an admin has saved a policy
	GetSettings(ctx context.Context) (*models.SettlementSettings, error)
	UpsertSettings(ctx context.Context, settings *models.SettlementSettings) error
}

// TxManager runs fn so that every repository write made with the ctx it receives commits or
// rolls back together. fn may be invoked more than once when the store retries a transient
// conflict, so it must not have side effects outside the store.
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Repositories groups every repository backed by one store
type Repositories struct {
	Tournaments        TournamentRepository
	Registrations      RegistrationRepository
	Users              UserRepository
	Deposits           FundingRequestRepository
	Withdrawals        FundingRequestRepository
	Transactions       TransactionRepository
	PrizeDistributions PrizeDistributionRepository
	SettlementSettings SettlementSettingsRepository
	TxManager          TxManager
}
