package mongo

import (
	"context"
	"errors"
	"time"

	"coachapp/internal/domain"
	"coachapp/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const exerciseCollectionName = "exercises"

// mongoExerciseRepository implements repository.ExerciseRepository
type mongoExerciseRepository struct {
	collection *mongo.Collection
}

// NewMongoExerciseRepository creates a new Exercise repository backed by MongoDB.
func NewMongoExerciseRepository(db *mongo.Database) repository.ExerciseRepository {
	return &mongoExerciseRepository{
		collection: db.Collection(exerciseCollectionName),
	}
}

// Create inserts a new exercise into the library.
func (r *mongoExerciseRepository) Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error) {
	if exercise.Name == "" || exercise.CreatorID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("exercise name and creator ID are required")
	}

	exercise.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	exercise.CreatedAt = now
	exercise.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, exercise)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted exercise ID")
	}
	return insertedID, nil
}

// GetByID retrieves an exercise by its ID.
func (r *mongoExerciseRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	var exercise domain.Exercise
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&exercise)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &exercise, nil
}

// GetByCreatorID retrieves all exercises created by a specific user.
func (r *mongoExerciseRepository) GetByCreatorID(ctx context.Context, creatorID primitive.ObjectID) ([]domain.Exercise, error) {
	var exercises []domain.Exercise
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"creatorId": creatorID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &exercises); err != nil {
		return nil, err
	}
	return exercises, nil
}

// GetByIDs returns an indexed lookup of exercises for schedule/workout joins.
// IDs with no backing document are simply absent from the map; the caller
// skips those entries.
func (r *mongoExerciseRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]domain.Exercise, error) {
	byID := make(map[primitive.ObjectID]domain.Exercise, len(ids))
	if len(ids) == 0 {
		return byID, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var exercises []domain.Exercise
	if err = cursor.All(ctx, &exercises); err != nil {
		return nil, err
	}
	for _, ex := range exercises {
		byID[ex.ID] = ex
	}
	return byID, nil
}

// Update modifies an existing exercise. The CreatorID is never changed.
func (r *mongoExerciseRepository) Update(ctx context.Context, exercise *domain.Exercise) error {
	if exercise.ID == primitive.NilObjectID {
		return errors.New("exercise ID is required for update")
	}
	if exercise.Name == "" {
		return errors.New("exercise name cannot be empty")
	}

	update := bson.M{
		"$set": bson.M{
			"name":            exercise.Name,
			"description":     exercise.Description,
			"category":        exercise.Category,
			"difficulty":      exercise.Difficulty,
			"muscleGroups":    exercise.MuscleGroups,
			"equipment":       exercise.Equipment,
			"instructions":    exercise.Instructions,
			"videoUrl":        exercise.VideoURL,
			"videoObjectKey":  exercise.VideoObjectKey,
			"defaultWeight":   exercise.DefaultWeight,
			"defaultReps":     exercise.DefaultReps,
			"defaultSets":     exercise.DefaultSets,
			"weightIncrement": exercise.WeightIncrement,
			"restBetweenSets": exercise.RestBetweenSets,
			"updatedAt":       time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": exercise.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes an exercise, ensuring the creator owns it.
func (r *mongoExerciseRepository) Delete(ctx context.Context, id, creatorID primitive.ObjectID) error {
	if id == primitive.NilObjectID || creatorID == primitive.NilObjectID {
		return errors.New("exercise ID and creator ID are required for deletion")
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "creatorId": creatorID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		// Either the exercise didn't exist or it belongs to someone else.
		return repository.ErrNotFound
	}
	return nil
}

// AddAssignee records that an exercise was assigned to a user.
func (r *mongoExerciseRepository) AddAssignee(ctx context.Context, exerciseID, userID primitive.ObjectID) error {
	update := bson.M{
		"$addToSet": bson.M{"assignedTo": userID},
		"$set":      bson.M{"updatedAt": time.Now().UTC()},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": exerciseID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// RemoveAssignee removes a user from an exercise's assignee set.
func (r *mongoExerciseRepository) RemoveAssignee(ctx context.Context, exerciseID, userID primitive.ObjectID) error {
	update := bson.M{
		"$pull": bson.M{"assignedTo": userID},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": exerciseID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureExerciseIndexes creates necessary indexes. Call during startup.
func EnsureExerciseIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "creatorId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "category", Value: 1}},
			Options: options.Index(),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
