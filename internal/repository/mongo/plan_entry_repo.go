// internal/repository/mongo/plan_entry_repo.go
package mongo

import (
	"context"
	"errors"
	"log"
	"time"

	"ironplan/training-app/internal/domain"
	"ironplan/training-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const planEntryCollectionName = "plan_entries"

// mongoPlanEntryRepository implements repository.PlanEntryRepository
type mongoPlanEntryRepository struct {
	collection *mongo.Collection
}

// NewMongoPlanEntryRepository creates a new PlanEntry repository.
func NewMongoPlanEntryRepository(db *mongo.Database) repository.PlanEntryRepository {
	return &mongoPlanEntryRepository{
		collection: db.Collection(planEntryCollectionName),
	}
}

// Create inserts a new plan entry and returns its assigned ID.
func (r *mongoPlanEntryRepository) Create(ctx context.Context, entry *domain.PlanEntry) (primitive.ObjectID, error) {
	if entry.OwnerID == primitive.NilObjectID || entry.ExerciseID == primitive.NilObjectID || entry.PlanName == "" {
		return primitive.NilObjectID, errors.New("plan entry requires ownerId, exerciseId, and planName")
	}
	entry.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	entry.CreatedAt = now
	entry.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, entry)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted plan entry ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single plan entry by its ID.
func (r *mongoPlanEntryRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.PlanEntry, error) {
	var entry domain.PlanEntry
	filter := bson.M{"_id": id}
	err := r.collection.FindOne(ctx, filter).Decode(&entry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// ListByPlan retrieves all entries for one (owner, plan), ordered by the
// explicit order field with creation order (_id) as tie-break.
func (r *mongoPlanEntryRepository) ListByPlan(ctx context.Context, ownerID primitive.ObjectID, planName string) ([]domain.PlanEntry, error) {
	var entries []domain.PlanEntry
	filter := bson.M{
		"ownerId":  ownerID,
		"planName": planName,
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "order", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	// Return empty slice if no entries found (not an error)
	return entries, nil
}

// UpdateOrder sets the execution order of a single entry.
func (r *mongoPlanEntryRepository) UpdateOrder(ctx context.Context, id primitive.ObjectID, order int) error {
	filter := bson.M{"_id": id}
	update := bson.M{"$set": bson.M{"order": order, "updatedAt": time.Now().UTC()}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes one plan entry.
func (r *mongoPlanEntryRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeletePlan removes every entry of the (owner, plan).
func (r *mongoPlanEntryRepository) DeletePlan(ctx context.Context, ownerID primitive.ObjectID, planName string) (int64, error) {
	filter := bson.M{
		"ownerId":  ownerID,
		"planName": planName,
	}
	result, err := r.collection.DeleteMany(ctx, filter)
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// EnsurePlanEntryIndexes creates necessary indexes. Call during startup.
func EnsurePlanEntryIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// Compound index for the main query pattern: listing a plan slot
			Keys:    bson.D{{Key: "ownerId", Value: 1}, {Key: "planName", Value: 1}, {Key: "order", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "coachId", Value: 1}},
			Options: options.Index(),
		},
		{
			// Lookup by combo reference when validating deletes
			Keys:    bson.D{{Key: "comboWith", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
