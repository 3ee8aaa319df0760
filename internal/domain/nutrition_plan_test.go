package domain

import (
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestNutritionPlan() *NutritionPlan {
	now := time.Now().UTC()
	planID := primitive.NewObjectID()
	athleteID := primitive.NewObjectID()
	completedAt := now.Add(-time.Hour)
	calories := 450
	return &NutritionPlan{
		ID:        planID,
		CoachID:   primitive.NewObjectID(),
		AthleteID: &athleteID,
		Name:      "Cut Phase",
		Weeks:     2,
		StartDate: date(2024, time.May, 1),
		MealSchedule: []MealWeek{
			{WeekNumber: 1, Meals: []Meal{
				{
					ID:              primitive.NewObjectID(),
					NutritionPlanID: planID,
					WeekNumber:      1,
					DayOfWeek:       1,
					MealType:        MealBreakfast,
					Name:            "Oats",
					Calories:        &calories,
					Completed:       true,
					CompletedAt:     &completedAt,
				},
				{
					ID:              primitive.NewObjectID(),
					NutritionPlanID: planID,
					WeekNumber:      1,
					DayOfWeek:       1,
					MealType:        MealDinner,
					Name:            "Salmon",
				},
			}},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestNutritionPlanCounters(t *testing.T) {
	plan := newTestNutritionPlan()

	if got := plan.TotalMeals(); got != 2 {
		t.Errorf("TotalMeals() = %d, want 2", got)
	}
	if got := plan.CompletedMeals(); got != 1 {
		t.Errorf("CompletedMeals() = %d, want 1", got)
	}
	if got := plan.Progress(); got != 0.5 {
		t.Errorf("Progress() = %v, want 0.5", got)
	}
}

func TestNutritionPlanCopyForDuplicate(t *testing.T) {
	plan := newTestNutritionPlan()
	dup := plan.CopyForDuplicate()

	if dup.ID != primitive.NilObjectID {
		t.Errorf("dup.ID = %v, want nil ObjectID", dup.ID)
	}
	if dup.Name != "Cut Phase (Copy)" {
		t.Errorf("dup.Name = %q, want %q", dup.Name, "Cut Phase (Copy)")
	}
	if dup.AthleteID != nil {
		t.Errorf("dup.AthleteID = %v, want nil", dup.AthleteID)
	}

	for i, week := range dup.MealSchedule {
		for j, m := range week.Meals {
			orig := plan.MealSchedule[i].Meals[j]
			if m.ID != primitive.NilObjectID {
				t.Errorf("meal %d/%d keeps its ID; the repository must assign a fresh one", i, j)
			}
			if m.NutritionPlanID != primitive.NilObjectID {
				t.Errorf("meal %d/%d keeps its plan reference", i, j)
			}
			if m.Completed || m.CompletedAt != nil {
				t.Errorf("meal %d/%d completion not reset", i, j)
			}
			if m.Name != orig.Name || m.MealType != orig.MealType || m.DayOfWeek != orig.DayOfWeek {
				t.Errorf("meal %d/%d content changed", i, j)
			}
		}
	}
}

func TestValidateMealSchedule(t *testing.T) {
	tests := []struct {
		name     string
		schedule []MealWeek
		wantErr  error
	}{
		{
			name: "valid",
			schedule: []MealWeek{
				{WeekNumber: 1, Meals: []Meal{{DayOfWeek: 0, MealType: MealSnack, Name: "Nuts"}}},
			},
			wantErr: nil,
		},
		{
			name:     "negative week",
			schedule: []MealWeek{{WeekNumber: -1}},
			wantErr:  ErrInvalidWeekNumber,
		},
		{
			name: "negative day",
			schedule: []MealWeek{
				{WeekNumber: 1, Meals: []Meal{{DayOfWeek: -1, MealType: MealLunch}}},
			},
			wantErr: ErrInvalidDayOfWeek,
		},
		{
			name: "unknown meal type",
			schedule: []MealWeek{
				{WeekNumber: 1, Meals: []Meal{{DayOfWeek: 2, MealType: "brunch"}}},
			},
			wantErr: ErrInvalidMealType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMealSchedule(tt.schedule)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateMealSchedule() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
