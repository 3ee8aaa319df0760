package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MealType slots a meal within a day.
type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealSnack     MealType = "snack"
)

// Meal is one (week, day, slot) entry of a nutrition plan. Unlike a scheduled
// workout it is a full content record local to its plan, not a reference into a
// shared catalog.
type Meal struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	NutritionPlanID primitive.ObjectID `bson:"nutritionPlanId" json:"nutritionPlanId"`
	WeekNumber      int                `bson:"weekNumber" json:"weekNumber"`
	DayOfWeek       int                `bson:"dayOfWeek" json:"dayOfWeek"` // 0 = Sunday .. 6 = Saturday
	MealType        MealType           `bson:"mealType" json:"mealType"`
	Name            string             `bson:"name" json:"name"`
	Description     string             `bson:"description,omitempty" json:"description,omitempty"`
	Calories        *int               `bson:"calories,omitempty" json:"calories,omitempty"`
	Protein         *int               `bson:"protein,omitempty" json:"protein,omitempty"` // grams
	Carbs           *int               `bson:"carbs,omitempty" json:"carbs,omitempty"`     // grams
	Fats            *int               `bson:"fats,omitempty" json:"fats,omitempty"`       // grams
	Completed       bool               `bson:"completed" json:"completed"`
	CompletedAt     *time.Time         `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
}

// MealWeek groups the meals of one plan week.
type MealWeek struct {
	WeekNumber int    `bson:"weekNumber" json:"weekNumber"` // >= 1
	Meals      []Meal `bson:"meals" json:"meals"`
}

// NutritionPlan is a multi-week meal program, structurally parallel to
// TrainingPlan: one owning coach, at most one assigned athlete.
type NutritionPlan struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	CoachID      primitive.ObjectID  `bson:"coachId" json:"coachId"`
	AthleteID    *primitive.ObjectID `bson:"athleteId,omitempty" json:"athleteId,omitempty"`
	Name         string              `bson:"name" json:"name"`
	Description  string              `bson:"description,omitempty" json:"description,omitempty"`
	Weeks        int                 `bson:"weeks" json:"weeks"` // >= 1
	StartDate    time.Time           `bson:"startDate" json:"startDate"`
	MealSchedule []MealWeek          `bson:"-" json:"mealSchedule"` // Stored in its own collection
	CreatedAt    time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// CurrentWeek returns the meal week matching the computed current week number,
// or nil when absent. Same week-number rule as training plans.
func (p *NutritionPlan) CurrentWeek(now time.Time) *MealWeek {
	want := CurrentWeekNumber(p.StartDate, now)
	for i := range p.MealSchedule {
		if p.MealSchedule[i].WeekNumber == want {
			return &p.MealSchedule[i]
		}
	}
	return nil
}

// Status derives upcoming/active/completed from the plan window.
func (p *NutritionPlan) Status(now time.Time) PlanStatus {
	return StatusAt(p.StartDate, p.Weeks, now)
}

// TotalMeals counts meals across all weeks.
func (p *NutritionPlan) TotalMeals() int {
	total := 0
	for _, week := range p.MealSchedule {
		total += len(week.Meals)
	}
	return total
}

// CompletedMeals counts meals marked complete.
func (p *NutritionPlan) CompletedMeals() int {
	done := 0
	for _, week := range p.MealSchedule {
		for _, m := range week.Meals {
			if m.Completed {
				done++
			}
		}
	}
	return done
}

// Progress is the completed fraction, for display only.
func (p *NutritionPlan) Progress() float64 {
	total := p.TotalMeals()
	if total == 0 {
		return 0
	}
	return float64(p.CompletedMeals()) / float64(total)
}

// CopyForDuplicate deep-copies the plan for duplication: no IDs yet, " (Copy)"
// name suffix, athlete assignment stripped, completion state reset, ordering
// preserved. Meal IDs are cleared so the repository assigns fresh ones.
func (p *NutritionPlan) CopyForDuplicate() *NutritionPlan {
	dup := *p
	dup.ID = primitive.NilObjectID
	dup.Name = p.Name + " (Copy)"
	dup.AthleteID = nil
	dup.MealSchedule = make([]MealWeek, len(p.MealSchedule))
	for i, week := range p.MealSchedule {
		meals := make([]Meal, len(week.Meals))
		for j, m := range week.Meals {
			meals[j] = m
			meals[j].ID = primitive.NilObjectID
			meals[j].NutritionPlanID = primitive.NilObjectID
			meals[j].Completed = false
			meals[j].CompletedAt = nil
		}
		dup.MealSchedule[i] = MealWeek{WeekNumber: week.WeekNumber, Meals: meals}
	}
	return &dup
}

// ValidateMealSchedule checks week numbers, day range and meal type on every
// entry of the schedule being edited.
func ValidateMealSchedule(schedule []MealWeek) error {
	for _, week := range schedule {
		if week.WeekNumber < 1 {
			return ErrInvalidWeekNumber
		}
		for _, m := range week.Meals {
			if m.DayOfWeek < 0 || m.DayOfWeek > 6 {
				return ErrInvalidDayOfWeek
			}
			switch m.MealType {
			case MealBreakfast, MealLunch, MealDinner, MealSnack:
			default:
				return ErrInvalidMealType
			}
		}
	}
	return nil
}
