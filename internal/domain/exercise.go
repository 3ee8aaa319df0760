package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ExerciseCategory classifies an exercise by training modality.
type ExerciseCategory string

const (
	CategoryStrength    ExerciseCategory = "strength"
	CategoryCardio      ExerciseCategory = "cardio"
	CategoryFlexibility ExerciseCategory = "flexibility"
	CategoryBalance     ExerciseCategory = "balance"
)

// Difficulty grades exercises and workouts.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// Exercise represents a single reusable exercise definition in the library,
// owned by the coach who created it. Performance defaults (weight/reps/sets/rest)
// can be overridden per workout via WorkoutExercise.
type Exercise struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatorID    primitive.ObjectID `bson:"creatorId" json:"creatorId"`
	Name         string             `bson:"name" json:"name"`
	Description  string             `bson:"description,omitempty" json:"description,omitempty"`
	Category     ExerciseCategory   `bson:"category" json:"category"`
	Difficulty   Difficulty         `bson:"difficulty" json:"difficulty"`
	MuscleGroups []string           `bson:"muscleGroups,omitempty" json:"muscleGroups,omitempty"`
	Equipment    []string           `bson:"equipment,omitempty" json:"equipment,omitempty"`
	Instructions []string           `bson:"instructions,omitempty" json:"instructions,omitempty"` // Ordered steps

	// External demo video (e.g. a YouTube link, resolved to an embed URL at read
	// time) or an uploaded object in S3, referenced by key.
	VideoURL       string `bson:"videoUrl,omitempty" json:"videoUrl,omitempty"`
	VideoObjectKey string `bson:"videoObjectKey,omitempty" json:"-"`

	// Performance defaults. Pointers so "not set" survives round-trips.
	DefaultWeight   *float64 `bson:"defaultWeight,omitempty" json:"defaultWeight,omitempty"` // kg
	DefaultReps     *int     `bson:"defaultReps,omitempty" json:"defaultReps,omitempty"`
	DefaultSets     *int     `bson:"defaultSets,omitempty" json:"defaultSets,omitempty"`
	WeightIncrement *float64 `bson:"weightIncrement,omitempty" json:"weightIncrement,omitempty"`
	RestBetweenSets *int     `bson:"restBetweenSets,omitempty" json:"restBetweenSets,omitempty"` // seconds

	AssignedTo []primitive.ObjectID `bson:"assignedTo,omitempty" json:"assignedTo,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// CopyForDuplicate returns a content copy of the exercise owned by actorID.
// The copy has no ID yet (the repository assigns one) and no assignees.
func (e *Exercise) CopyForDuplicate(actorID primitive.ObjectID) *Exercise {
	dup := *e
	dup.ID = primitive.NilObjectID
	dup.CreatorID = actorID
	dup.AssignedTo = nil
	dup.MuscleGroups = append([]string(nil), e.MuscleGroups...)
	dup.Equipment = append([]string(nil), e.Equipment...)
	dup.Instructions = append([]string(nil), e.Instructions...)
	return &dup
}
