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
	trainingPlanCollectionName    = "training_plans"
	workoutScheduleCollectionName = "workout_schedule"
)

// workoutScheduleRow is the persisted form of one scheduled workout, keyed by
// (trainingPlanId, weekNumber, workoutId).
type workoutScheduleRow struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	TrainingPlanID primitive.ObjectID `bson:"trainingPlanId"`
	WeekNumber     int                `bson:"weekNumber"`
	WorkoutID      primitive.ObjectID `bson:"workoutId"`
	DayOfWeek      int                `bson:"dayOfWeek"`
	Completed      bool               `bson:"completed"`
	CompletedAt    *time.Time         `bson:"completedAt,omitempty"`
}

// mongoTrainingPlanRepository implements repository.TrainingPlanRepository
type mongoTrainingPlanRepository struct {
	plans    *mongo.Collection
	schedule *mongo.Collection
}

// NewMongoTrainingPlanRepository creates a new TrainingPlan repository.
func NewMongoTrainingPlanRepository(db *mongo.Database) repository.TrainingPlanRepository {
	return &mongoTrainingPlanRepository{
		plans:    db.Collection(trainingPlanCollectionName),
		schedule: db.Collection(workoutScheduleCollectionName),
	}
}

// Create inserts the plan header. Schedule rows are persisted separately via
// InsertSchedule; the two writes are not atomic.
func (r *mongoTrainingPlanRepository) Create(ctx context.Context, plan *domain.TrainingPlan) (primitive.ObjectID, error) {
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

// InsertSchedule bulk-inserts the schedule rows for a plan.
func (r *mongoTrainingPlanRepository) InsertSchedule(ctx context.Context, planID primitive.ObjectID, schedule []domain.WeekSchedule) error {
	rows := flattenSchedule(planID, schedule)
	if len(rows) == 0 {
		return nil
	}
	_, err := r.schedule.InsertMany(ctx, rows)
	return err
}

func flattenSchedule(planID primitive.ObjectID, schedule []domain.WeekSchedule) []interface{} {
	var rows []interface{}
	for _, week := range schedule {
		for _, w := range week.Workouts {
			rows = append(rows, workoutScheduleRow{
				TrainingPlanID: planID,
				WeekNumber:     week.WeekNumber,
				WorkoutID:      w.WorkoutID,
				DayOfWeek:      w.DayOfWeek,
				Completed:      w.Completed,
				CompletedAt:    w.CompletedAt,
			})
		}
	}
	return rows
}

// GetByID retrieves a plan with its schedule reassembled into week groups.
func (r *mongoTrainingPlanRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.TrainingPlan, error) {
	var plan domain.TrainingPlan
	err := r.plans.FindOne(ctx, bson.M{"_id": id}).Decode(&plan)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	byPlan, err := r.loadSchedules(ctx, []primitive.ObjectID{id})
	if err != nil {
		return nil, err
	}
	plan.WorkoutSchedule = byPlan[id]
	return &plan, nil
}

// GetByCoachID retrieves all plans owned by a coach, newest first.
func (r *mongoTrainingPlanRepository) GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.TrainingPlan, error) {
	return r.findMany(ctx, bson.M{"coachId": coachID})
}

// GetByAthleteID retrieves all plans assigned to an athlete, newest first.
func (r *mongoTrainingPlanRepository) GetByAthleteID(ctx context.Context, athleteID primitive.ObjectID) ([]domain.TrainingPlan, error) {
	return r.findMany(ctx, bson.M{"athleteId": athleteID})
}

func (r *mongoTrainingPlanRepository) findMany(ctx context.Context, filter bson.M) ([]domain.TrainingPlan, error) {
	var plans []domain.TrainingPlan
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
	byPlan, err := r.loadSchedules(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range plans {
		plans[i].WorkoutSchedule = byPlan[plans[i].ID]
	}
	return plans, nil
}

// loadSchedules fetches schedule rows for the given plans and groups them into
// week schedules, ordered by ascending week number (insertion order within a
// week is preserved by the secondary _id sort).
func (r *mongoTrainingPlanRepository) loadSchedules(ctx context.Context, planIDs []primitive.ObjectID) (map[primitive.ObjectID][]domain.WeekSchedule, error) {
	findOptions := options.Find().SetSort(bson.D{
		{Key: "weekNumber", Value: 1},
		{Key: "_id", Value: 1},
	})
	cursor, err := r.schedule.Find(ctx, bson.M{"trainingPlanId": bson.M{"$in": planIDs}}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []workoutScheduleRow
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	grouped := make(map[primitive.ObjectID][]domain.WeekSchedule, len(planIDs))
	for _, row := range rows {
		weeks := grouped[row.TrainingPlanID]
		entry := domain.ScheduledWorkout{
			WorkoutID:   row.WorkoutID,
			DayOfWeek:   row.DayOfWeek,
			Completed:   row.Completed,
			CompletedAt: row.CompletedAt,
		}
		if n := len(weeks); n > 0 && weeks[n-1].WeekNumber == row.WeekNumber {
			weeks[n-1].Workouts = append(weeks[n-1].Workouts, entry)
		} else {
			weeks = append(weeks, domain.WeekSchedule{
				WeekNumber: row.WeekNumber,
				Workouts:   []domain.ScheduledWorkout{entry},
			})
		}
		grouped[row.TrainingPlanID] = weeks
	}
	return grouped, nil
}

// UpdateHeader modifies the plan header fields. CoachID and CreatedAt are
// never changed here.
func (r *mongoTrainingPlanRepository) UpdateHeader(ctx context.Context, plan *domain.TrainingPlan) error {
	if plan.ID == primitive.NilObjectID {
		return errors.New("training plan ID is required for update")
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

// ReplaceSchedule swaps the plan's schedule rows for the given set.
func (r *mongoTrainingPlanRepository) ReplaceSchedule(ctx context.Context, planID primitive.ObjectID, schedule []domain.WeekSchedule) error {
	if _, err := r.schedule.DeleteMany(ctx, bson.M{"trainingPlanId": planID}); err != nil {
		return err
	}
	return r.InsertSchedule(ctx, planID, schedule)
}

// Delete removes the schedule rows first, then the plan header, ensuring the
// coach owns the plan. The UI assumes schedule rows die with the plan.
func (r *mongoTrainingPlanRepository) Delete(ctx context.Context, planID, coachID primitive.ObjectID) error {
	if planID == primitive.NilObjectID || coachID == primitive.NilObjectID {
		return errors.New("plan ID and coach ID are required for deletion")
	}

	// Ownership check before touching child rows.
	count, err := r.plans.CountDocuments(ctx, bson.M{"_id": planID, "coachId": coachID})
	if err != nil {
		return err
	}
	if count == 0 {
		return repository.ErrNotFound
	}

	if _, err := r.schedule.DeleteMany(ctx, bson.M{"trainingPlanId": planID}); err != nil {
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

// SetCompletion updates exactly one schedule row's completion flag and
// timestamp. Sibling rows are untouched.
func (r *mongoTrainingPlanRepository) SetCompletion(ctx context.Context, planID primitive.ObjectID, weekNumber int, workoutID primitive.ObjectID, completed bool, completedAt *time.Time) error {
	filter := bson.M{
		"trainingPlanId": planID,
		"weekNumber":     weekNumber,
		"workoutId":      workoutID,
	}
	update := bson.M{
		"$set": bson.M{
			"completed":   completed,
			"completedAt": completedAt,
		},
	}

	result, err := r.schedule.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureTrainingPlanIndexes creates necessary indexes. Call during startup.
func EnsureTrainingPlanIndexes(ctx context.Context, plans, schedule *mongo.Collection) {
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

	scheduleIndexes := []mongo.IndexModel{
		{
			// Composite key per scheduled item.
			Keys: bson.D{
				{Key: "trainingPlanId", Value: 1},
				{Key: "weekNumber", Value: 1},
				{Key: "workoutId", Value: 1},
			},
			Options: options.Index(),
		},
	}
	_, _ = schedule.Indexes().CreateMany(ctx, scheduleIndexes)
}
