package controllers

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/pathforge/pathforge_backend/config"
	"github.com/pathforge/pathforge_backend/middleware"
	"github.com/pathforge/pathforge_backend/models"
)

// RoadmapController tracks per-user learning roadmaps and progress
type RoadmapController struct {
	DB     *mongo.Client
	logger *log.Logger
}

// NewRoadmapController creates a new roadmap controller
func NewRoadmapController(db *mongo.Client) *RoadmapController {
	return &RoadmapController{
		DB:     db,
		logger: log.New(os.Stdout, "[ROADMAP] ", log.LstdFlags),
	}
}

// GetRoadmap returns the roadmap of the user in the path; callers may only
// read their own roadmap
func (rc *RoadmapController) GetRoadmap(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	userID := c.Param("userId")
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Invalid user ID format",
		})
	}

	if middleware.GetUserIDFromToken(c) != userID {
		return c.JSON(http.StatusForbidden, models.Response{
			Success: false,
			Message: "Unauthorized access",
		})
	}

	collection := config.GetCollection(rc.DB, "roadmaps")

	var roadmap models.Roadmap
	if err := collection.FindOne(ctx, bson.M{"userId": objID}).Decode(&roadmap); err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Success: false,
				Message: "Roadmap not found",
			})
		}
		rc.logger.Printf("Failed to load roadmap: %v", err)
		return serverError(c)
	}

	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Roadmap retrieved",
		Data:    roadmap,
	})
}

// CreateRoadmap starts a roadmap with the starter steps
func (rc *RoadmapController) CreateRoadmap(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	var req models.CreateRoadmapRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return validationResponse(c, err)
	}

	objID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Invalid user ID format",
		})
	}

	if middleware.GetUserIDFromToken(c) != req.UserID {
		return c.JSON(http.StatusForbidden, models.Response{
			Success: false,
			Message: "Unauthorized access",
		})
	}

	collection := config.GetCollection(rc.DB, "roadmaps")

	count, err := collection.CountDocuments(ctx, bson.M{"userId": objID})
	if err != nil {
		rc.logger.Printf("Failed to check existing roadmap: %v", err)
		return serverError(c)
	}
	if count > 0 {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Roadmap already exists",
		})
	}

	now := time.Now()
	roadmap := models.Roadmap{
		ID:       primitive.NewObjectID(),
		UserID:   objID,
		Username: req.Username,
		Steps: []models.RoadmapStep{
			{StepID: "1", Name: "Step 1: Learn Basics", NSQFLevel: 1, Description: "Start with foundational skills", Completed: false},
			{StepID: "2", Name: "Step 2: Intermediate Skills", NSQFLevel: 2, Description: "Build intermediate skills", Completed: false},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := collection.InsertOne(ctx, roadmap); err != nil {
		rc.logger.Printf("Failed to create roadmap: %v", err)
		return serverError(c)
	}

	return c.JSON(http.StatusCreated, models.Response{
		Success: true,
		Message: "Roadmap created",
		Data:    roadmap,
	})
}

// CompleteStep marks a roadmap step as done and records a progress entry
func (rc *RoadmapController) CompleteStep(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	var req models.ProgressRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return validationResponse(c, err)
	}

	userObjID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Invalid user ID format",
		})
	}
	roadmapObjID, err := primitive.ObjectIDFromHex(req.RoadmapID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Invalid roadmap ID format",
		})
	}

	if middleware.GetUserIDFromToken(c) != req.UserID {
		return c.JSON(http.StatusForbidden, models.Response{
			Success: false,
			Message: "Unauthorized access",
		})
	}

	collection := config.GetCollection(rc.DB, "roadmaps")

	var roadmap models.Roadmap
	if err := collection.FindOne(ctx, bson.M{"_id": roadmapObjID, "userId": userObjID}).Decode(&roadmap); err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Success: false,
				Message: "Roadmap not found",
			})
		}
		rc.logger.Printf("Failed to load roadmap: %v", err)
		return serverError(c)
	}

	found := false
	for i := range roadmap.Steps {
		if roadmap.Steps[i].StepID == req.StepID {
			roadmap.Steps[i].Completed = true
			found = true
			break
		}
	}
	if !found {
		return c.JSON(http.StatusNotFound, models.Response{
			Success: false,
			Message: "Step not found",
		})
	}

	now := time.Now()
	roadmap.UpdatedAt = now
	update := bson.M{"$set": bson.M{
		"steps":     roadmap.Steps,
		"updatedAt": now,
	}}
	if _, err := collection.UpdateOne(ctx, bson.M{"_id": roadmapObjID}, update); err != nil {
		rc.logger.Printf("Failed to update roadmap: %v", err)
		return serverError(c)
	}

	progress := models.Progress{
		ID:          primitive.NewObjectID(),
		ProgressID:  uuid.NewString(),
		UserID:      userObjID,
		RoadmapID:   roadmapObjID,
		StepID:      req.StepID,
		Completed:   true,
		CompletedAt: now,
	}

	progressColl := config.GetCollection(rc.DB, "progress")
	if _, err := progressColl.InsertOne(ctx, progress); err != nil {
		// The roadmap itself is already updated; a lost progress record is
		// only an audit gap.
		rc.logger.Printf("Failed to record progress entry: %v", err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Progress updated",
		Data:    roadmap,
	})
}
