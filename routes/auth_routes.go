package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/pathforge/pathforge_backend/controllers"
	"github.com/pathforge/pathforge_backend/middleware"
)

// RegisterAuthRoutes sets up the registration and session routes
func RegisterAuthRoutes(e *echo.Echo, authController *controllers.AuthController) {
	// Public authentication routes
	e.POST("/api/auth/send-registration-otp", authController.SendRegistrationOTP)
	e.POST("/api/auth/verify-registration-otp", authController.VerifyRegistrationOTP)
	e.POST("/api/auth/resend-otp", authController.ResendOTP)
	e.POST("/api/auth/login", authController.Login)
	e.POST("/api/auth/logout", authController.Logout)

	// Authenticated routes
	e.GET("/api/auth/profile", authController.GetProfile, middleware.JWTMiddleware())
}
