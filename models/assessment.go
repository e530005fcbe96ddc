package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StarterAnswer is one answered question from the career-interest quiz
type StarterAnswer struct {
	QuestionText   string `json:"questionText" bson:"questionText" validate:"required"`
	SelectedOption string `json:"selectedOption" bson:"selectedOption" validate:"required,oneof=a b c d e f g"`
}

// CareerAssessment is a completed quiz submission
type CareerAssessment struct {
	ID             primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID         primitive.ObjectID `json:"userId" bson:"userId"`
	StarterAnswers []StarterAnswer    `json:"starterAnswers" bson:"starterAnswers"`
	CreatedAt      time.Time          `json:"createdAt" bson:"createdAt"`
}

// AssessmentRequest is the submit payload; exactly ten answers are required
type AssessmentRequest struct {
	StarterAnswers []StarterAnswer `json:"starterAnswers" validate:"required,len=10,dive"`
}
