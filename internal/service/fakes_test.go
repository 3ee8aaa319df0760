package service

import (
	"context"
	"sort"
	"time"

	"coachapp/internal/domain"
	"coachapp/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repository fakes. They mirror the Mongo implementations closely
// enough to exercise the service layer: copies in, copies out, same error
// sentinels, schedule rows kept flat and reassembled on read.

// --- users ---

type fakeUserRepository struct {
	users map[primitive.ObjectID]domain.User
	calls int
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{users: make(map[primitive.ObjectID]domain.User)}
}

func (r *fakeUserRepository) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	r.calls++
	for _, u := range r.users {
		if u.Username == user.Username || u.Email == user.Email {
			return primitive.NilObjectID, repository.ErrDuplicateKey
		}
	}
	id := primitive.NewObjectID()
	stored := *user
	stored.ID = id
	stored.CreatedAt = time.Now().UTC()
	stored.UpdatedAt = stored.CreatedAt
	r.users[id] = stored
	return id, nil
}

func (r *fakeUserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	r.calls++
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := u
	return &copied, nil
}

func (r *fakeUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.calls++
	for _, u := range r.users {
		if u.Email == email {
			copied := u
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.calls++
	for _, u := range r.users {
		if u.Username == username {
			copied := u
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepository) List(ctx context.Context) ([]domain.User, error) {
	r.calls++
	users := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users, nil
}

func (r *fakeUserRepository) ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	r.calls++
	var users []domain.User
	for _, u := range r.users {
		if u.Role == role {
			users = append(users, u)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users, nil
}

func (r *fakeUserRepository) add(username string, role domain.Role) domain.User {
	id := primitive.NewObjectID()
	u := domain.User{ID: id, Username: username, Email: username + "@example.com", Role: role}
	r.users[id] = u
	return u
}

// --- exercises ---

type fakeExerciseRepository struct {
	exercises map[primitive.ObjectID]domain.Exercise
}

func newFakeExerciseRepository() *fakeExerciseRepository {
	return &fakeExerciseRepository{exercises: make(map[primitive.ObjectID]domain.Exercise)}
}

func (r *fakeExerciseRepository) Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	stored := *exercise
	stored.ID = id
	stored.CreatedAt = time.Now().UTC()
	stored.UpdatedAt = stored.CreatedAt
	r.exercises[id] = stored
	return id, nil
}

func (r *fakeExerciseRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	e, ok := r.exercises[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := e
	return &copied, nil
}

func (r *fakeExerciseRepository) GetByCreatorID(ctx context.Context, creatorID primitive.ObjectID) ([]domain.Exercise, error) {
	var out []domain.Exercise
	for _, e := range r.exercises {
		if e.CreatorID == creatorID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeExerciseRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]domain.Exercise, error) {
	out := make(map[primitive.ObjectID]domain.Exercise)
	for _, id := range ids {
		if e, ok := r.exercises[id]; ok {
			out[id] = e
		}
	}
	return out, nil
}

func (r *fakeExerciseRepository) Update(ctx context.Context, exercise *domain.Exercise) error {
	stored, ok := r.exercises[exercise.ID]
	if !ok {
		return repository.ErrNotFound
	}
	updated := *exercise
	updated.CreatedAt = stored.CreatedAt
	updated.UpdatedAt = time.Now().UTC()
	r.exercises[exercise.ID] = updated
	return nil
}

func (r *fakeExerciseRepository) Delete(ctx context.Context, id, creatorID primitive.ObjectID) error {
	e, ok := r.exercises[id]
	if !ok || e.CreatorID != creatorID {
		return repository.ErrNotFound
	}
	delete(r.exercises, id)
	return nil
}

func (r *fakeExerciseRepository) AddAssignee(ctx context.Context, exerciseID, userID primitive.ObjectID) error {
	e, ok := r.exercises[exerciseID]
	if !ok {
		return repository.ErrNotFound
	}
	for _, id := range e.AssignedTo {
		if id == userID {
			return nil
		}
	}
	e.AssignedTo = append(e.AssignedTo, userID)
	r.exercises[exerciseID] = e
	return nil
}

func (r *fakeExerciseRepository) RemoveAssignee(ctx context.Context, exerciseID, userID primitive.ObjectID) error {
	e, ok := r.exercises[exerciseID]
	if !ok {
		return repository.ErrNotFound
	}
	kept := e.AssignedTo[:0]
	for _, id := range e.AssignedTo {
		if id != userID {
			kept = append(kept, id)
		}
	}
	e.AssignedTo = kept
	r.exercises[exerciseID] = e
	return nil
}

// --- workouts ---

type fakeWorkoutRepository struct {
	workouts map[primitive.ObjectID]domain.Workout
}

func newFakeWorkoutRepository() *fakeWorkoutRepository {
	return &fakeWorkoutRepository{workouts: make(map[primitive.ObjectID]domain.Workout)}
}

func (r *fakeWorkoutRepository) Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	stored := *workout
	stored.ID = id
	stored.CreatedAt = time.Now().UTC()
	stored.UpdatedAt = stored.CreatedAt
	r.workouts[id] = stored
	return id, nil
}

func (r *fakeWorkoutRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error) {
	w, ok := r.workouts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := w
	return &copied, nil
}

func (r *fakeWorkoutRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]domain.Workout, error) {
	out := make(map[primitive.ObjectID]domain.Workout)
	for _, id := range ids {
		if w, ok := r.workouts[id]; ok {
			out[id] = w
		}
	}
	return out, nil
}

func (r *fakeWorkoutRepository) GetByCreatorID(ctx context.Context, creatorID primitive.ObjectID) ([]domain.Workout, error) {
	var out []domain.Workout
	for _, w := range r.workouts {
		if w.CreatorID == creatorID {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeWorkoutRepository) List(ctx context.Context) ([]domain.Workout, error) {
	out := make([]domain.Workout, 0, len(r.workouts))
	for _, w := range r.workouts {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeWorkoutRepository) Update(ctx context.Context, workout *domain.Workout) error {
	stored, ok := r.workouts[workout.ID]
	if !ok {
		return repository.ErrNotFound
	}
	updated := *workout
	updated.CreatedAt = stored.CreatedAt
	updated.UpdatedAt = time.Now().UTC()
	r.workouts[workout.ID] = updated
	return nil
}

func (r *fakeWorkoutRepository) Delete(ctx context.Context, id, creatorID primitive.ObjectID) error {
	w, ok := r.workouts[id]
	if !ok || w.CreatorID != creatorID {
		return repository.ErrNotFound
	}
	delete(r.workouts, id)
	return nil
}

// --- training plans ---

type scheduleRow struct {
	planID      primitive.ObjectID
	weekNumber  int
	workoutID   primitive.ObjectID
	dayOfWeek   int
	completed   bool
	completedAt *time.Time
	seq         int
}

type fakeTrainingPlanRepository struct {
	headers map[primitive.ObjectID]domain.TrainingPlan
	rows    []scheduleRow
	order   []primitive.ObjectID // insertion order, newest last
	nextSeq int
}

func newFakeTrainingPlanRepository() *fakeTrainingPlanRepository {
	return &fakeTrainingPlanRepository{headers: make(map[primitive.ObjectID]domain.TrainingPlan)}
}

func (r *fakeTrainingPlanRepository) Create(ctx context.Context, plan *domain.TrainingPlan) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	stored := *plan
	stored.ID = id
	stored.WorkoutSchedule = nil
	stored.CreatedAt = time.Now().UTC()
	stored.UpdatedAt = stored.CreatedAt
	r.headers[id] = stored
	r.order = append(r.order, id)
	return id, nil
}

func (r *fakeTrainingPlanRepository) InsertSchedule(ctx context.Context, planID primitive.ObjectID, schedule []domain.WeekSchedule) error {
	for _, week := range schedule {
		for _, w := range week.Workouts {
			r.rows = append(r.rows, scheduleRow{
				planID:      planID,
				weekNumber:  week.WeekNumber,
				workoutID:   w.WorkoutID,
				dayOfWeek:   w.DayOfWeek,
				completed:   w.Completed,
				completedAt: w.CompletedAt,
				seq:         r.nextSeq,
			})
			r.nextSeq++
		}
	}
	return nil
}

func (r *fakeTrainingPlanRepository) loadSchedule(planID primitive.ObjectID) []domain.WeekSchedule {
	var rows []scheduleRow
	for _, row := range r.rows {
		if row.planID == planID {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].weekNumber != rows[j].weekNumber {
			return rows[i].weekNumber < rows[j].weekNumber
		}
		return rows[i].seq < rows[j].seq
	})

	var schedule []domain.WeekSchedule
	for _, row := range rows {
		if len(schedule) == 0 || schedule[len(schedule)-1].WeekNumber != row.weekNumber {
			schedule = append(schedule, domain.WeekSchedule{WeekNumber: row.weekNumber})
		}
		week := &schedule[len(schedule)-1]
		week.Workouts = append(week.Workouts, domain.ScheduledWorkout{
			WorkoutID:   row.workoutID,
			DayOfWeek:   row.dayOfWeek,
			Completed:   row.completed,
			CompletedAt: row.completedAt,
		})
	}
	return schedule
}

func (r *fakeTrainingPlanRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.TrainingPlan, error) {
	p, ok := r.headers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := p
	copied.WorkoutSchedule = r.loadSchedule(id)
	return &copied, nil
}

func (r *fakeTrainingPlanRepository) listWhere(match func(domain.TrainingPlan) bool) []domain.TrainingPlan {
	var out []domain.TrainingPlan
	// Newest first, matching the Mongo sort on createdAt desc.
	for i := len(r.order) - 1; i >= 0; i-- {
		p, ok := r.headers[r.order[i]]
		if !ok || !match(p) {
			continue
		}
		copied := p
		copied.WorkoutSchedule = r.loadSchedule(p.ID)
		out = append(out, copied)
	}
	return out
}

func (r *fakeTrainingPlanRepository) GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.TrainingPlan, error) {
	return r.listWhere(func(p domain.TrainingPlan) bool { return p.CoachID == coachID }), nil
}

func (r *fakeTrainingPlanRepository) GetByAthleteID(ctx context.Context, athleteID primitive.ObjectID) ([]domain.TrainingPlan, error) {
	return r.listWhere(func(p domain.TrainingPlan) bool {
		return p.AthleteID != nil && *p.AthleteID == athleteID
	}), nil
}

func (r *fakeTrainingPlanRepository) UpdateHeader(ctx context.Context, plan *domain.TrainingPlan) error {
	stored, ok := r.headers[plan.ID]
	if !ok {
		return repository.ErrNotFound
	}
	updated := *plan
	updated.WorkoutSchedule = nil
	updated.CreatedAt = stored.CreatedAt
	updated.UpdatedAt = time.Now().UTC()
	r.headers[plan.ID] = updated
	return nil
}

func (r *fakeTrainingPlanRepository) ReplaceSchedule(ctx context.Context, planID primitive.ObjectID, schedule []domain.WeekSchedule) error {
	kept := r.rows[:0]
	for _, row := range r.rows {
		if row.planID != planID {
			kept = append(kept, row)
		}
	}
	r.rows = kept
	return r.InsertSchedule(ctx, planID, schedule)
}

func (r *fakeTrainingPlanRepository) Delete(ctx context.Context, planID, coachID primitive.ObjectID) error {
	p, ok := r.headers[planID]
	if !ok || p.CoachID != coachID {
		return repository.ErrNotFound
	}
	kept := r.rows[:0]
	for _, row := range r.rows {
		if row.planID != planID {
			kept = append(kept, row)
		}
	}
	r.rows = kept
	delete(r.headers, planID)
	return nil
}

func (r *fakeTrainingPlanRepository) SetCompletion(ctx context.Context, planID primitive.ObjectID, weekNumber int, workoutID primitive.ObjectID, completed bool, completedAt *time.Time) error {
	for i, row := range r.rows {
		if row.planID == planID && row.weekNumber == weekNumber && row.workoutID == workoutID {
			r.rows[i].completed = completed
			r.rows[i].completedAt = completedAt
			return nil
		}
	}
	return repository.ErrNotFound
}

// --- nutrition plans ---

type fakeNutritionPlanRepository struct {
	headers map[primitive.ObjectID]domain.NutritionPlan
	meals   []domain.Meal
	order   []primitive.ObjectID
	seqs    map[primitive.ObjectID]int
	nextSeq int
}

func newFakeNutritionPlanRepository() *fakeNutritionPlanRepository {
	return &fakeNutritionPlanRepository{
		headers: make(map[primitive.ObjectID]domain.NutritionPlan),
		seqs:    make(map[primitive.ObjectID]int),
	}
}

func (r *fakeNutritionPlanRepository) Create(ctx context.Context, plan *domain.NutritionPlan) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	stored := *plan
	stored.ID = id
	stored.MealSchedule = nil
	stored.CreatedAt = time.Now().UTC()
	stored.UpdatedAt = stored.CreatedAt
	r.headers[id] = stored
	r.order = append(r.order, id)
	return id, nil
}

func (r *fakeNutritionPlanRepository) InsertMeals(ctx context.Context, planID primitive.ObjectID, schedule []domain.MealWeek) error {
	for _, week := range schedule {
		for _, m := range week.Meals {
			stored := m
			stored.ID = primitive.NewObjectID()
			stored.NutritionPlanID = planID
			stored.WeekNumber = week.WeekNumber
			r.meals = append(r.meals, stored)
			r.seqs[stored.ID] = r.nextSeq
			r.nextSeq++
		}
	}
	return nil
}

func (r *fakeNutritionPlanRepository) loadMeals(planID primitive.ObjectID) []domain.MealWeek {
	var meals []domain.Meal
	for _, m := range r.meals {
		if m.NutritionPlanID == planID {
			meals = append(meals, m)
		}
	}
	sort.Slice(meals, func(i, j int) bool {
		if meals[i].WeekNumber != meals[j].WeekNumber {
			return meals[i].WeekNumber < meals[j].WeekNumber
		}
		return r.seqs[meals[i].ID] < r.seqs[meals[j].ID]
	})

	var schedule []domain.MealWeek
	for _, m := range meals {
		if len(schedule) == 0 || schedule[len(schedule)-1].WeekNumber != m.WeekNumber {
			schedule = append(schedule, domain.MealWeek{WeekNumber: m.WeekNumber})
		}
		week := &schedule[len(schedule)-1]
		week.Meals = append(week.Meals, m)
	}
	return schedule
}

func (r *fakeNutritionPlanRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.NutritionPlan, error) {
	p, ok := r.headers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := p
	copied.MealSchedule = r.loadMeals(id)
	return &copied, nil
}

func (r *fakeNutritionPlanRepository) listWhere(match func(domain.NutritionPlan) bool) []domain.NutritionPlan {
	var out []domain.NutritionPlan
	for i := len(r.order) - 1; i >= 0; i-- {
		p, ok := r.headers[r.order[i]]
		if !ok || !match(p) {
			continue
		}
		copied := p
		copied.MealSchedule = r.loadMeals(p.ID)
		out = append(out, copied)
	}
	return out
}

func (r *fakeNutritionPlanRepository) GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.NutritionPlan, error) {
	return r.listWhere(func(p domain.NutritionPlan) bool { return p.CoachID == coachID }), nil
}

func (r *fakeNutritionPlanRepository) GetByAthleteID(ctx context.Context, athleteID primitive.ObjectID) ([]domain.NutritionPlan, error) {
	return r.listWhere(func(p domain.NutritionPlan) bool {
		return p.AthleteID != nil && *p.AthleteID == athleteID
	}), nil
}

func (r *fakeNutritionPlanRepository) UpdateHeader(ctx context.Context, plan *domain.NutritionPlan) error {
	stored, ok := r.headers[plan.ID]
	if !ok {
		return repository.ErrNotFound
	}
	updated := *plan
	updated.MealSchedule = nil
	updated.CreatedAt = stored.CreatedAt
	updated.UpdatedAt = time.Now().UTC()
	r.headers[plan.ID] = updated
	return nil
}

func (r *fakeNutritionPlanRepository) ReplaceMeals(ctx context.Context, planID primitive.ObjectID, schedule []domain.MealWeek) error {
	kept := r.meals[:0]
	for _, m := range r.meals {
		if m.NutritionPlanID != planID {
			kept = append(kept, m)
		}
	}
	r.meals = kept
	return r.InsertMeals(ctx, planID, schedule)
}

func (r *fakeNutritionPlanRepository) Delete(ctx context.Context, planID, coachID primitive.ObjectID) error {
	p, ok := r.headers[planID]
	if !ok || p.CoachID != coachID {
		return repository.ErrNotFound
	}
	kept := r.meals[:0]
	for _, m := range r.meals {
		if m.NutritionPlanID != planID {
			kept = append(kept, m)
		}
	}
	r.meals = kept
	delete(r.headers, planID)
	return nil
}

func (r *fakeNutritionPlanRepository) SetCompletion(ctx context.Context, planID primitive.ObjectID, weekNumber int, mealID primitive.ObjectID, completed bool, completedAt *time.Time) error {
	for i, m := range r.meals {
		if m.ID == mealID && m.NutritionPlanID == planID && m.WeekNumber == weekNumber {
			r.meals[i].Completed = completed
			r.meals[i].CompletedAt = completedAt
			return nil
		}
	}
	return repository.ErrNotFound
}

// --- messages ---

type fakeMessageRepository struct {
	messages []domain.Message
	clock    time.Time
}

func newFakeMessageRepository() *fakeMessageRepository {
	return &fakeMessageRepository{clock: time.Now().UTC()}
}

func (r *fakeMessageRepository) Create(ctx context.Context, message *domain.Message) (primitive.ObjectID, error) {
	stored := *message
	stored.ID = primitive.NewObjectID()
	stored.Read = false
	r.clock = r.clock.Add(time.Millisecond)
	stored.CreatedAt = r.clock
	r.messages = append(r.messages, stored)
	return stored.ID, nil
}

func (r *fakeMessageRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.Message, error) {
	var out []domain.Message
	for _, m := range r.messages {
		if m.SenderID == userID || m.ReceiverID == userID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMessageRepository) MarkAllRead(ctx context.Context, viewerID, senderID primitive.ObjectID) error {
	for i, m := range r.messages {
		if m.ReceiverID == viewerID && m.SenderID == senderID && !m.Read {
			r.messages[i].Read = true
		}
	}
	return nil
}

func (r *fakeMessageRepository) CountUnread(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	var count int64
	for _, m := range r.messages {
		if m.ReceiverID == userID && !m.Read {
			count++
		}
	}
	return count, nil
}
