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

const (
	nutritionPlanCollectionName = "nutrition_plans"
	mealScheduleCollectionName  = "meal_schedule"
)

// mongoNutritionPlanRepository implements repository.NutritionPlanRepository.
// Meals are full content records in their own collection, unlike workout
// schedule rows which only reference catalog entries.
type mongoNutritionPlanRepository struct {
	plans *mongo.Collection
	meals *mongo.Collection
}

// NewMongoNutritionPlanRepository creates a new NutritionPlan repository.
func NewMongoNutritionPlanRepository(db *mongo.Database) repository.NutritionPlanRepository {
	return &mongoNutritionPlanRepository{
		plans: db.Collection(nutritionPlanCollectionName),
		meals: db.Collection(mealScheduleCollectionName),
	}
}

// Create inserts the plan header. Meals are persisted separately via
// InsertMeals; the two writes are not atomic.
func (r *mongoNutritionPlanRepository) Create(ctx context.Context, plan *domain.NutritionPlan) (primitive.ObjectID, error) {
	if plan.CoachID == primitive.NilObjectID || plan.Name == "" {
		return primitive.NilObjectID, errors.New("plan requires coachId and name")
	}
	if plan.Weeks < 1 {
		return primitive.NilObjectID, errors.New("plan requires at least one week")
	}

	plan.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	plan.CreatedAt = now
	plan.UpdatedAt = now

	result, err := r.plans.InsertOne(ctx, plan)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted plan ID")
	}
	return insertedID, nil
}

// InsertMeals bulk-inserts the meal rows for a plan, assigning fresh IDs.
func (r *mongoNutritionPlanRepository) InsertMeals(ctx context.Context, planID primitive.ObjectID, schedule []domain.MealWeek) error {
	var rows []interface{}
	for _, week := range schedule {
		for _, m := range week.Meals {
			m.ID = primitive.NewObjectID()
			m.NutritionPlanID = planID
			m.WeekNumber = week.WeekNumber
			rows = append(rows, m)
		}
	}
	if len(rows) == 0 {
		return nil
	}
	_, err := r.meals.InsertMany(ctx, rows)
	return err
}

// GetByID retrieves a plan with its meal schedule reassembled into week groups.
func (r *mongoNutritionPlanRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.NutritionPlan, error) {
	var plan domain.NutritionPlan
	err := r.plans.FindOne(ctx, bson.M{"_id": id}).Decode(&plan)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	byPlan, err := r.loadMeals(ctx, []primitive.ObjectID{id})
	if err != nil {
		return nil, err
	}
	plan.MealSchedule = byPlan[id]
	return &plan, nil
}

// GetByCoachID retrieves all plans owned by a coach, newest first.
func (r *mongoNutritionPlanRepository) GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.NutritionPlan, error) {
	return r.findMany(ctx, bson.M{"coachId": coachID})
}

// GetByAthleteID retrieves all plans assigned to an athlete, newest first.
func (r *mongoNutritionPlanRepository) GetByAthleteID(ctx context.Context, athleteID primitive.ObjectID) ([]domain.NutritionPlan, error) {
	return r.findMany(ctx, bson.M{"athleteId": athleteID})
}

func (r *mongoNutritionPlanRepository) findMany(ctx context.Context, filter bson.M) ([]domain.NutritionPlan, error) {
	var plans []domain.NutritionPlan
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.plans.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &plans); err != nil {
		return nil, err
	}
	if len(plans) == 0 {
		return plans, nil
	}

	ids := make([]primitive.ObjectID, len(plans))
	for i, p := range plans {
		ids[i] = p.ID
	}
	byPlan, err := r.loadMeals(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range plans {
		plans[i].MealSchedule = byPlan[plans[i].ID]
	}
	return plans, nil
}

func (r *mongoNutritionPlanRepository) loadMeals(ctx context.Context, planIDs []primitive.ObjectID) (map[primitive.ObjectID][]domain.MealWeek, error) {
	findOptions := options.Find().SetSort(bson.D{
		{Key: "weekNumber", Value: 1},
		{Key: "_id", Value: 1},
	})
	cursor, err := r.meals.Find(ctx, bson.M{"nutritionPlanId": bson.M{"$in": planIDs}}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var meals []domain.Meal
	if err = cursor.All(ctx, &meals); err != nil {
		return nil, err
	}

	grouped := make(map[primitive.ObjectID][]domain.MealWeek, len(planIDs))
	for _, meal := range meals {
		weeks := grouped[meal.NutritionPlanID]
		if n := len(weeks); n > 0 && weeks[n-1].WeekNumber == meal.WeekNumber {
			weeks[n-1].Meals = append(weeks[n-1].Meals, meal)
		} else {
			weeks = append(weeks, domain.MealWeek{
				WeekNumber: meal.WeekNumber,
				Meals:      []domain.Meal{meal},
			})
		}
		grouped[meal.NutritionPlanID] = weeks
	}
	return grouped, nil
}

// UpdateHeader modifies the plan header fields. CoachID and CreatedAt are
// never changed here.
func (r *mongoNutritionPlanRepository) UpdateHeader(ctx context.Context, plan *domain.NutritionPlan) error {
	if plan.ID == primitive.NilObjectID {
		return errors.New("nutrition plan ID is required for update")
	}

	update := bson.M{
		"$set": bson.M{
			"name":        plan.Name,
			"description": plan.Description,
			"weeks":       plan.Weeks,
			"startDate":   plan.StartDate,
			"athleteId":   plan.AthleteID,
			"updatedAt":   time.Now().UTC(),
		},
	}

	result, err := r.plans.UpdateOne(ctx, bson.M{"_id": plan.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ReplaceMeals swaps the plan's meal rows for the given set.
func (r *mongoNutritionPlanRepository) ReplaceMeals(ctx context.Context, planID primitive.ObjectID, schedule []domain.MealWeek) error {
	if _, err := r.meals.DeleteMany(ctx, bson.M{"nutritionPlanId": planID}); err != nil {
		return err
	}
	return r.InsertMeals(ctx, planID, schedule)
}

// Delete removes the meal rows first, then the plan header, ensuring the coach
// owns the plan.
func (r *mongoNutritionPlanRepository) Delete(ctx context.Context, planID, coachID primitive.ObjectID) error {
	if planID == primitive.NilObjectID || coachID == primitive.NilObjectID {
		return errors.New("plan ID and coach ID are required for deletion")
	}

	count, err := r.plans.CountDocuments(ctx, bson.M{"_id": planID, "coachId": coachID})
	if err != nil {
		return err
	}
	if count == 0 {
		return repository.ErrNotFound
	}

	if _, err := r.meals.DeleteMany(ctx, bson.M{"nutritionPlanId": planID}); err != nil {
		return err
	}
	result, err := r.plans.DeleteOne(ctx, bson.M{"_id": planID, "coachId": coachID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrDeleteFailed
	}
	return nil
}

// SetCompletion updates exactly one meal's completion flag and timestamp.
func (r *mongoNutritionPlanRepository) SetCompletion(ctx context.Context, planID primitive.ObjectID, weekNumber int, mealID primitive.ObjectID, completed bool, completedAt *time.Time) error {
	filter := bson.M{
		"_id":             mealID,
		"nutritionPlanId": planID,
		"weekNumber":      weekNumber,
	}
	update := bson.M{
		"$set": bson.M{
			"completed":   completed,
			"completedAt": completedAt,
		},
	}

	result, err := r.meals.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureNutritionPlanIndexes creates necessary indexes. Call during startup.
func EnsureNutritionPlanIndexes(ctx context.Context, plans, meals *mongo.Collection) {
	planIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "coachId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "athleteId", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	}
	_, _ = plans.Indexes().CreateMany(ctx, planIndexes)

	mealIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "nutritionPlanId", Value: 1},
				{Key: "weekNumber", Value: 1},
			},
			Options: options.Index(),
		},
	}
	_, _ = meals.Indexes().CreateMany(ctx, mealIndexes)
}
