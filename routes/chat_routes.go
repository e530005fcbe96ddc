package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/pathforge/pathforge_backend/controllers"
	"github.com/pathforge/pathforge_backend/middleware"
)

// RegisterChatRoutes sets up the AI chat log routes
func RegisterChatRoutes(e *echo.Echo, db *mongo.Client) {
	chatController := controllers.NewChatController(db)

	e.POST("/api/ai-chat/message", chatController.SaveMessage, middleware.JWTMiddleware())
	e.GET("/api/ai-chat/history", chatController.GetHistory, middleware.JWTMiddleware())
}
