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
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pathforge/pathforge_backend/config"
	"github.com/pathforge/pathforge_backend/middleware"
	"github.com/pathforge/pathforge_backend/models"
)

// ChatController keeps the per-user AI conversation log
type ChatController struct {
	DB     *mongo.Client
	logger *log.Logger
}

// NewChatController creates a new chat controller
func NewChatController(db *mongo.Client) *ChatController {
	return &ChatController{
		DB:     db,
		logger: log.New(os.Stdout, "[CHAT] ", log.LstdFlags),
	}
}

// SaveMessage appends a message to the caller's conversation log,
// creating the log on first write
func (cc *ChatController) SaveMessage(c echo.Context) error {
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

	var req models.ChatMessageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return validationResponse(c, err)
	}

	collection := config.GetCollection(cc.DB, "ai_chats")

	now := time.Now()
	message := models.ChatMessage{
		Role:      req.Role,
		Content:   req.Content,
		Timestamp: now,
	}

	filter := bson.M{"userId": objID}
	update := bson.M{
		"$push": bson.M{"messages": message},
		"$set":  bson.M{"updatedAt": now},
		"$setOnInsert": bson.M{
			"userId":    objID,
			"createdAt": now,
		},
	}

	var chat models.AIChat
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	if err := collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&chat); err != nil {
		cc.logger.Printf("Failed to save chat message: %v", err)
		return serverError(c)
	}

	return c.JSON(http.StatusCreated, models.Response{
		Success: true,
		Message: "Chat message saved",
		Data:    chat,
	})
}

// GetHistory returns the caller's conversation log
func (cc *ChatController) GetHistory(c echo.Context) error {
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

	collection := config.GetCollection(cc.DB, "ai_chats")

	var chat models.AIChat
	if err := collection.FindOne(ctx, bson.M{"userId": objID}).Decode(&chat); err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Success: false,
				Message: "No chat history found",
			})
		}
		cc.logger.Printf("Failed to load chat history: %v", err)
		return serverError(c)
	}

	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Chat history retrieved",
		Data:    chat,
	})
}
