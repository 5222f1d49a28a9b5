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

var _ repositories.PrizeDistributionRepository = (*PrizeDistributionRepository)(nil)

// PrizeDistributionRepository handles MongoDB operations for prize distribution records
type PrizeDistributionRepository struct {
	collection *mongo.Collection
}

// NewPrizeDistributionRepository creates a new PrizeDistributionRepository
func NewPrizeDistributionRepository(db *mongo.Database) *PrizeDistributionRepository {
	return &PrizeDistributionRepository{
		collection: db.Collection(PrizeDistributionsCollection),
	}
}

// Create inserts a distribution record. The unique registrationId index rejects a second payout.
func (r *PrizeDistributionRepository) Create(ctx context.Context, distribution *models.PrizeDistribution) error {
	if distribution.ID.IsZero() {
		distribution.ID = primitive.NewObjectID()
	}
	if distribution.CreatedAt.IsZero() {
		distribution.CreatedAt = time.Now()
	}
	_, err := r.collection.InsertOne(ctx, distribution)
	return err
}

// FindByTournament returns the distribution records of a tournament
func (r *PrizeDistributionRepository) FindByTournament(ctx context.Context, tournamentID primitive.ObjectID) ([]*models.PrizeDistribution, error) {
	opts := options.Find().SetSort(bson.D{{Key: "prizeAmount", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"tournamentId": tournamentID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var distributions []*models.PrizeDistribution
	if err := cursor.All(ctx, &distributions); err != nil {
		return nil, err
	}
	if distributions == nil {
		distributions = []*models.PrizeDistribution{}
	}
	return distributions, nil
}
