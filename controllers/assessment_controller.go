package controllers

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/pathforge/pathforge_backend/config"
	"github.com/pathforge/pathforge_backend/middleware"
	"github.com/pathforge/pathforge_backend/models"
	"github.com/pathforge/pathforge_backend/services"
)

// AssessmentController handles the career-interest quiz submissions
type AssessmentController struct {
	DB     *mongo.Client
	agent  *services.AgentService
	logger *log.Logger
}

// NewAssessmentController creates a new assessment controller
func NewAssessmentController(db *mongo.Client, agent *services.AgentService) *AssessmentController {
	return &AssessmentController{
		DB:     db,
		agent:  agent,
		logger: log.New(os.Stdout, "[ASSESSMENT] ", log.LstdFlags),
	}
}

// SubmitAssessment stores a completed quiz and forwards it to the AI agent.
// Forwarding is best-effort; the stored assessment is the source of truth.
func (sc *AssessmentController) SubmitAssessment(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	userID := middleware.GetUserIDFromToken(c)
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Success: false,
			Message: "Authentication required",
		})
	}

	var req models.AssessmentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return validationResponse(c, err)
	}

	assessment := models.CareerAssessment{
		ID:             primitive.NewObjectID(),
		UserID:         objID,
		StarterAnswers: req.StarterAnswers,
		CreatedAt:      time.Now(),
	}

	collection := config.GetCollection(sc.DB, "career_assessments")
	if _, err := collection.InsertOne(ctx, assessment); err != nil {
		sc.logger.Printf("Failed to store assessment: %v", err)
		return serverError(c)
	}

	// The agent generates the roadmap asynchronously; losing this call only
	// delays roadmap generation, it never loses the assessment.
	go func(a models.CareerAssessment) {
		agentCtx, agentCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer agentCancel()
		if _, err := sc.agent.SubmitAssessment(agentCtx, &a); err != nil {
			sc.logger.Printf("Failed to send assessment to AI agent: %v", err)
		}
	}(assessment)

	return c.JSON(http.StatusCreated, models.Response{
		Success: true,
		Message: "Career assessment created successfully",
		Data:    assessment,
	})
}

// GetAssessmentStatus reports whether the caller has completed the quiz
func (sc *AssessmentController) GetAssessmentStatus(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	userID := middleware.GetUserIDFromToken(c)
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Success: false,
			Message: "Authentication required",
		})
	}

	collection := config.GetCollection(sc.DB, "career_assessments")
	count, err := collection.CountDocuments(ctx, bson.M{"userId": objID})
	if err != nil {
		sc.logger.Printf("Failed to check assessment status: %v", err)
		return serverError(c)
	}

	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Assessment status retrieved",
		Data: map[string]interface{}{
			"hasCompletedAssessment": count > 0,
		},
	})
}
