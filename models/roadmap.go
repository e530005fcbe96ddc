package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RoadmapStep is one step of a learning roadmap
type RoadmapStep struct {
	StepID      string `json:"stepId" bson:"stepId"`
	Name        string `json:"name" bson:"name"`
	NSQFLevel   int    `json:"nsqfLevel" bson:"nsqfLevel"`
	Description string `json:"description" bson:"description"`
	Completed   bool   `json:"completed" bson:"completed"`
}

// Roadmap is a user's personal learning roadmap
type Roadmap struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID    primitive.ObjectID `json:"userId" bson:"userId"`
	Username  string             `json:"username" bson:"username"`
	Steps     []RoadmapStep      `json:"steps" bson:"steps"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// Progress records a completed roadmap step
type Progress struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	ProgressID  string             `json:"progressId" bson:"progressId"`
	UserID      primitive.ObjectID `json:"userId" bson:"userId"`
	RoadmapID   primitive.ObjectID `json:"roadmapId" bson:"roadmapId"`
	StepID      string             `json:"stepId" bson:"stepId"`
	Completed   bool               `json:"completed" bson:"completed"`
	CompletedAt time.Time          `json:"completedAt" bson:"completedAt"`
}

// CreateRoadmapRequest starts a roadmap for a user
type CreateRoadmapRequest struct {
	UserID   string `json:"userId" validate:"required"`
	Username string `json:"username" validate:"required"`
}

// ProgressRequest marks a roadmap step complete
type ProgressRequest struct {
	UserID    string `json:"userId" validate:"required"`
	RoadmapID string `json:"roadmapId" validate:"required"`
	StepID    string `json:"stepId" validate:"required"`
}
