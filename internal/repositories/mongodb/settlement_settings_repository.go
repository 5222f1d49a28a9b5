package mongodb

import (
	"context"
	"time"

	"github.com/Aaditya88888/netwin-tournament-sub001/internal/models"
	"github.com/Aaditya88888/netwin-tournament-sub001/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var _ repositories.SettlementSettingsRepository = (*SettlementSettingsRepository)(nil)

// SettlementSettingsRepository implements repositories.SettlementSettingsRepository
type SettlementSettingsRepository struct {
	collection *mongo.Collection
}

// NewSettlementSettingsRepository creates a new SettlementSettingsRepository
func NewSettlementSettingsRepository(db *mongo.Database) *SettlementSettingsRepository {
	return &SettlementSettingsRepository{
		collection: db.Collection(SettlementSettingsCollection),
	}
}

// GetSettings retrieves the saved settlement settings
func (r *SettlementSettingsRepository) GetSettings(ctx context.Context) (*models.SettlementSettings, error) {
	var settings models.SettlementSettings
	if err := r.collection.FindOne(ctx, bson.M{}).Decode(&settings); err != nil {
		return nil, translate(err)
	}
	return &settings, nil
}

// UpsertSettings saves the policy into the single settings document
func (r *SettlementSettingsRepository) UpsertSettings(ctx context.Context, settings *models.SettlementSettings) error {
	now := time.Now()
	settings.UpdatedAt = now
	update := bson.M{
		"$set": bson.M{
			"policy":    settings.Policy,
			"updatedAt": now,
			"updatedBy": settings.UpdatedBy,
		},
		"$setOnInsert": bson.M{"createdAt": now},
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{}, update, options.Update().SetUpsert(true))
	return err
}
