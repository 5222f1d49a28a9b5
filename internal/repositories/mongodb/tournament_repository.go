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
)

var _ repositories.TournamentRepository = (*TournamentRepository)(nil)

// TournamentRepository handles MongoDB operations for Tournament
type TournamentRepository struct {
	collection *mongo.Collection
}

// NewTournamentRepository creates a new TournamentRepository
func NewTournamentRepository(db *mongo.Database) *TournamentRepository {
	return &TournamentRepository{
		collection: db.Collection(TournamentsCollection),
	}
}

// Create inserts a new tournament
func (r *TournamentRepository) Create(ctx context.Context, tournament *models.Tournament) error {
	if tournament.ID.IsZero() {
		tournament.ID = primitive.NewObjectID()
	}
	tournament.CreatedAt = time.Now()
	tournament.UpdatedAt = tournament.CreatedAt
	_, err := r.collection.InsertOne(ctx, tournament)
	return err
}

// FindByID finds a tournament by ID
func (r *TournamentRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Tournament, error) {
	var tournament models.Tournament
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&tournament); err != nil {
		return nil, translate(err)
	}
	return &tournament, nil
}

// MarkPrizesDistributed is the claim on a tournament's payout: the filter only matches while
// prizesDistributed is still unset, so at most one caller can ever flip it.
func (r *TournamentRepository) MarkPrizesDistributed(ctx context.Context, id primitive.ObjectID, total decimal.Decimal, distributedBy string, at time.Time) error {
	filter := bson.M{
		"_id":               id,
		"prizesDistributed": bson.M{"$ne": true},
	}
	update := bson.M{
		"$set": bson.M{
			"prizesDistributed":   true,
			"totalDistributed":    total,
			"prizesDistributedAt": at,
			"prizesDistributedBy": distributedBy,
			"updatedAt":           at,
		},
	}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return missingOrConditionFailed(ctx, r.collection, id)
	}
	return nil
}
