package mongodb

import (
	"context"
	"errors"

	"github.com/Aaditya88888/netwin-tournament-sub001/internal/models"
	"github.com/Aaditya88888/netwin-tournament-sub001/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names
const (
	TournamentsCollection        = "tournaments"
	RegistrationsCollection      = "registrations"
	UsersCollection              = "users"
	PendingDepositsCollection    = "pending_deposits"
	PendingWithdrawalsCollection = "pending_withdrawals"
	TransactionsCollection       = "transactions"
	PrizeDistributionsCollection = "prize_distributions"
	SettlementSettingsCollection = "settlement_settings"
)

// NewRepositories builds every MongoDB repository over db
func NewRepositories(client *mongo.Client, db *mongo.Database) *repositories.Repositories {
	return &repositories.Repositories{
		Tournaments:        NewTournamentRepository(db),
		Registrations:      NewRegistrationRepository(db),
		Users:              NewUserRepository(db),
		Deposits:           NewFundingRequestRepository(db, models.FundingKindDeposit),
		Withdrawals:        NewFundingRequestRepository(db, models.FundingKindWithdrawal),
		Transactions:       NewTransactionRepository(db),
		PrizeDistributions: NewPrizeDistributionRepository(db),
		SettlementSettings: NewSettlementSettingsRepository(db),
		TxManager:          NewTxManager(client),
	}
}

// EnsureIndexes creates the indexes the settlement queries rely on
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		RegistrationsCollection: {
			{Keys: bson.D{{Key: "tournamentId", Value: 1}}},
		},
		TransactionsCollection: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "type", Value: 1}, {Key: "status", Value: 1}, {Key: "createdAt", Value: 1}}},
			{Keys: bson.D{{Key: "requestId", Value: 1}}, Options: options.Index().SetSparse(true)},
		},
		PrizeDistributionsCollection: {
			{Keys: bson.D{{Key: "registrationId", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		PendingDepositsCollection: {
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "transactionSynced", Value: 1}, {Key: "reconcileAttemptedAt", Value: 1}, {Key: "updatedAt", Value: 1}}},
		},
		PendingWithdrawalsCollection: {
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "transactionSynced", Value: 1}, {Key: "reconcileAttemptedAt", Value: 1}, {Key: "updatedAt", Value: 1}}},
		},
	}
	for name, idx := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, idx); err != nil {
			return err
		}
	}
	return nil
}

// translate maps driver errors onto the repository sentinels
func translate(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return repositories.ErrNotFound
	}
	return err
}

// missingOrConditionFailed is called after a conditional update matched nothing
func missingOrConditionFailed(ctx context.Context, collection *mongo.Collection, id primitive.ObjectID) error {
	n, err := collection.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if n == 0 {
		return repositories.ErrNotFound
	}
	return repositories.ErrConditionFailed
}
