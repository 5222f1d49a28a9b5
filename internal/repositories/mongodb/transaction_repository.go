package mongodb

import (
	"context"
	"time"

	"github.com/Aaditya88888/netwin-tournament-sub001/internal/models"
	"github.com/Aaditya88888/netwin-tournament-sub001/internal/repositories"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var _ repositories.TransactionRepository = (*TransactionRepository)(nil)

// TransactionRepository handles MongoDB operations for ledger entries
type TransactionRepository struct {
	collection *mongo.Collection
}

// NewTransactionRepository creates a new TransactionRepository
func NewTransactionRepository(db *mongo.Database) *TransactionRepository {
	return &TransactionRepository{
		collection: db.Collection(TransactionsCollection),
	}
}

// Create appends a ledger entry
func (r *TransactionRepository) Create(ctx context.Context, transaction *models.Transaction) error {
	if transaction.ID.IsZero() {
		transaction.ID = primitive.NewObjectID()
	}
	now := time.Now()
	if transaction.CreatedAt.IsZero() {
		transaction.CreatedAt = now
	}
	transaction.UpdatedAt = now
	_, err := r.collection.InsertOne(ctx, transaction)
	return err
}

// FindByID finds a ledger entry by ID
func (r *TransactionRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Transaction, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// FindByRequestID finds the entry already linked to a funding request
func (r *TransactionRepository) FindByRequestID(ctx context.Context, requestID primitive.ObjectID) (*models.Transaction, error) {
	return r.findOne(ctx, bson.M{"requestId": requestID})
}

// FindFirstPendingMatch finds the oldest PENDING entry for this user, type and amount not yet claimed by another request
func (r *TransactionRepository) FindFirstPendingMatch(ctx context.Context, userID primitive.ObjectID, txType models.TransactionType, amount decimal.Decimal) (*models.Transaction, error) {
	filter := bson.M{
		"userId":    userID,
		"type":      txType,
		"amount":    amount,
		"status":    models.TransactionStatusPending,
		"requestId": bson.M{"$exists": false},
	}
	return r.findOne(ctx, filter, options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
}

// TransitionStatus moves an entry out of from and links it to the request it mirrors
func (r *TransactionRepository) TransitionStatus(ctx context.Context, id primitive.ObjectID, from, to models.TransactionStatus, requestID primitive.ObjectID) error {
	update := bson.M{
		"$set": bson.M{
			"status":    to,
			"requestId": requestID,
			"updatedAt": time.Now(),
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id, "status": from}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return missingOrConditionFailed(ctx, r.collection, id)
	}
	return nil
}

// FindByUser returns a user's ledger, newest first
func (r *TransactionRepository) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]*models.Transaction, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var transactions []*models.Transaction
	if err := cursor.All(ctx, &transactions); err != nil {
		return nil, err
	}
	if transactions == nil {
		transactions = []*models.Transaction{}
	}
	return transactions, nil
}

func (r *TransactionRepository) findOne(ctx context.Context, filter bson.M, opts ...*options.FindOneOptions) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := r.collection.FindOne(ctx, filter, opts...).Decode(&transaction); err != nil {
		return nil, translate(err)
	}
	return &transaction, nil
}
