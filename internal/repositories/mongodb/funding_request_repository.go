package mongodb

import (
	"context"
	"time"

	"github.com/Aaditya88888/netwin-tournament-sub001/internal/models"
	"github.com/Aaditya88888/netwin-tournament-sub001/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var _ repositories.FundingRequestRepository = (*FundingRequestRepository)(nil)

// FundingRequestRepository handles MongoDB operations for one kind of funding request
type FundingRequestRepository struct {
	collection *mongo.Collection
	kind       models.FundingKind
}

// NewFundingRequestRepository creates a repository over the pending deposits or pending withdrawals collection
func NewFundingRequestRepository(db *mongo.Database, kind models.FundingKind) *FundingRequestRepository {
	name := PendingDepositsCollection
	if kind == models.FundingKindWithdrawal {
		name = PendingWithdrawalsCollection
	}
	return &FundingRequestRepository{
		collection: db.Collection(name),
		kind:       kind,
	}
}

// Kind returns the kind of request this repository stores
func (r *FundingRequestRepository) Kind() models.FundingKind {
	return r.kind
}

// Create inserts a new request
func (r *FundingRequestRepository) Create(ctx context.Context, request *models.FundingRequest) error {
	if request.ID.IsZero() {
		request.ID = primitive.NewObjectID()
	}
	if request.Status == "" {
		request.Status = models.FundingStatusPending
	}
	request.Kind = r.kind
	request.CreatedAt = time.Now()
	request.UpdatedAt = request.CreatedAt
	_, err := r.collection.InsertOne(ctx, request)
	return err
}

// FindByID finds a request by ID
func (r *FundingRequestRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.FundingRequest, error) {
	var request models.FundingRequest
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&request); err != nil {
		return nil, translate(err)
	}
	request.Kind = r.kind
	return &request, nil
}

// TransitionStatus writes the decision only while the request is still in status from
func (r *FundingRequestRepository) TransitionStatus(ctx context.Context, id primitive.ObjectID, from models.FundingStatus, decision models.FundingDecision) error {
	set := bson.M{
		"status":     decision.Status,
		"verifiedAt": decision.DecidedAt,
		"verifiedBy": decision.DecidedBy,
		"updatedAt":  decision.DecidedAt,
	}
	if decision.RejectionReason != "" {
		set["rejectionReason"] = decision.RejectionReason
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id, "status": from}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return missingOrConditionFailed(ctx, r.collection, id)
	}
	return nil
}

// MarkTransactionSynced records that the mirrored ledger entry matches the request status
func (r *FundingRequestRepository) MarkTransactionSynced(ctx context.Context, id primitive.ObjectID, transactionID *primitive.ObjectID) error {
	set := bson.M{
		"transactionSynced": true,
		"updatedAt":         time.Now(),
	}
	if transactionID != nil {
		set["transactionId"] = *transactionID
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

// MarkReconcileAttempted records a repair attempt that left the request unsynced
func (r *FundingRequestRepository) MarkReconcileAttempted(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"reconcileAttemptedAt": at}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

// FindUnsynced returns approved or rejected requests still waiting for ledger reconciliation
func (r *FundingRequestRepository) FindUnsynced(ctx context.Context, limit int) ([]*models.FundingRequest, error) {
	filter := bson.M{
		"status":            bson.M{"$in": []models.FundingStatus{models.FundingStatusApproved, models.FundingStatusRejected}},
		"transactionSynced": bson.M{"$ne": true},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "reconcileAttemptedAt", Value: 1}, {Key: "updatedAt", Value: 1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var requests []*models.FundingRequest
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, err
	}
	for _, request := range requests {
		request.Kind = r.kind
	}
	return requests, nil
}
