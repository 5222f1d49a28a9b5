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

var _ repositories.RegistrationRepository = (*RegistrationRepository)(nil)

// RegistrationRepository handles MongoDB operations for Registration
type RegistrationRepository struct {
	collection *mongo.Collection
}

// NewRegistrationRepository creates a new RegistrationRepository
func NewRegistrationRepository(db *mongo.Database) *RegistrationRepository {
	return &RegistrationRepository{
		collection: db.Collection(RegistrationsCollection),
	}
}

// Create inserts a new registration
func (r *RegistrationRepository) Create(ctx context.Context, registration *models.Registration) error {
	if registration.ID.IsZero() {
		registration.ID = primitive.NewObjectID()
	}
	registration.CreatedAt = time.Now()
	registration.UpdatedAt = registration.CreatedAt
	_, err := r.collection.InsertOne(ctx, registration)
	return err
}

// FindByTournament returns every registration of a tournament in signup order
func (r *RegistrationRepository) FindByTournament(ctx context.Context, tournamentID primitive.ObjectID) ([]*models.Registration, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"tournamentId": tournamentID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var registrations []*models.Registration
	if err := cursor.All(ctx, &registrations); err != nil {
		return nil, err
	}
	if registrations == nil {
		registrations = []*models.Registration{}
	}
	return registrations, nil
}

// MarkRewarded records the amount paid to a registration
func (r *RegistrationRepository) MarkRewarded(ctx context.Context, id primitive.ObjectID, reward decimal.Decimal) error {
	update := bson.M{
		"$set": bson.M{
			"reward":           reward,
			"prizeDistributed": true,
			"updatedAt":        time.Now(),
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}
