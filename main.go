package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/pathforge/pathforge_backend/config"
	"github.com/pathforge/pathforge_backend/controllers"
	"github.com/pathforge/pathforge_backend/middleware"
	"github.com/pathforge/pathforge_backend/models"
	"github.com/pathforge/pathforge_backend/repositories"
	"github.com/pathforge/pathforge_backend/routes"
	"github.com/pathforge/pathforge_backend/utils"
)

// CustomValidator is a custom validator for Echo
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates the request body
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func main() {
	// Load .env file
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found")
	}

	// Connect to Redis (pending registration store)
	redisClient := config.ConnectRedis()

	// Connect to database
	client := config.ConnectDB()
	db := client.Database(config.DatabaseName())

	// Create a new Echo instance
	e := echo.New()

	// Initialize custom validator
	customValidator := &CustomValidator{validator: validator.New()}
	e.Validator = customValidator

	e.HTTPErrorHandler = httpErrorHandler

	// Initialize rate limiter
	rateLimiter := middleware.NewRateLimiter()

	// Middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(middleware.GlobalCORS())
	e.Use(middleware.SecurityHeaders())
	e.Use(rateLimiter.RateLimit())

	e.Match([]string{"GET", "HEAD"}, "/", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"status":  "OK",
			"message": "PathForge Backend is running",
			"version": "1.0",
		})
	})

	e.Match([]string{"GET", "HEAD"}, "/api/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"status":    "healthy",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	// The pending registration store prefers Redis so every instance sees
	// the same in-flight signups; memory is a single-instance dev fallback.
	var pendingStore repositories.PendingRegistrationStore
	if redisClient != nil {
		pendingStore = repositories.NewRedisPendingStore(redisClient)
	} else {
		pendingStore = repositories.NewMemoryPendingStore()
	}

	userRepo := repositories.NewMongoUserRepository(db)
	mailer := utils.NewSMTPEmailSender()

	authController := controllers.NewAuthController(userRepo, pendingStore, mailer, redisClient)

	routes.SetupRoutes(e, client, authController)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	e.Logger.Fatal(e.Start(":" + port))
}

// httpErrorHandler renders unhandled errors as the standard JSON envelope.
// Detail is only exposed outside production.
func httpErrorHandler(err error, c echo.Context) {
	code := http.StatusInternalServerError
	message := "Something went wrong!"

	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		if msg, ok := he.Message.(string); ok {
			message = msg
		}
	} else if os.Getenv("ENV") != "production" {
		message = err.Error()
	}

	if code == http.StatusNotFound {
		message = "Route not found"
	}

	if !c.Response().Committed {
		c.JSON(code, models.Response{
			Success: false,
			Message: message,
		})
	}
}
