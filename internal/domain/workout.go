package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkoutType classifies a workout session.
type WorkoutType string

const (
	WorkoutStrength WorkoutType = "strength"
	WorkoutCardio   WorkoutType = "cardio"
	WorkoutHybrid   WorkoutType = "hybrid"
	WorkoutRecovery WorkoutType = "recovery"
)

// WorkoutExercise references an Exercise from the library and overrides its
// performance parameters for this workout. It never copies the exercise content;
// the join is resolved at read time and a dangling reference is skipped.
type WorkoutExercise struct {
	ExerciseID      primitive.ObjectID `bson:"exerciseId" json:"exerciseId"`
	Sets            *int               `bson:"sets,omitempty" json:"sets,omitempty"`
	Reps            *int               `bson:"reps,omitempty" json:"reps,omitempty"`
	Weight          *float64           `bson:"weight,omitempty" json:"weight,omitempty"`
	RestBetweenSets *int               `bson:"restBetweenSets,omitempty" json:"restBetweenSets,omitempty"`
	Duration        *int               `bson:"duration,omitempty" json:"duration,omitempty"` // seconds, for timed exercises
}

// Workout is a named, ordered grouping of exercises in the catalog.
type Workout struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatorID   primitive.ObjectID `bson:"creatorId" json:"creatorId"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Exercises   []WorkoutExercise  `bson:"exercises" json:"exercises"`
	Duration    int                `bson:"duration" json:"duration"` // minutes
	Difficulty  Difficulty         `bson:"difficulty" json:"difficulty"`
	Type        WorkoutType        `bson:"type" json:"type"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
