package controllers

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/pathforge/pathforge_backend/middleware"
	"github.com/pathforge/pathforge_backend/models"
	"github.com/pathforge/pathforge_backend/repositories"
	"github.com/pathforge/pathforge_backend/utils"
)

// OTPExpiry is the validity window of a registration code, counted from
// issuance or last resend.
const OTPExpiry = 10 * time.Minute

// AuthController contains the registration and session logic
type AuthController struct {
	users   repositories.UserStore
	pending repositories.PendingRegistrationStore
	mailer  utils.EmailSender
	redis   *redis.Client
	logger  *log.Logger
}

// NewAuthController creates a new auth controller. The redis client is used
// for attempt throttling only and may be nil.
func NewAuthController(users repositories.UserStore, pending repositories.PendingRegistrationStore, mailer utils.EmailSender, rdb *redis.Client) *AuthController {
	return &AuthController{
		users:   users,
		pending: pending,
		mailer:  mailer,
		redis:   rdb,
		logger:  log.New(os.Stdout, "[AUTH] ", log.LstdFlags),
	}
}

// SendRegistrationOTP starts a registration: captures the payload, issues a
// 6-digit code and delivers it by email. Issuing again for the same email
// overwrites the prior pending record.
func (ac *AuthController) SendRegistrationOTP(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	var req models.RegistrationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Invalid request body",
		})
	}

	if err := c.Validate(&req); err != nil {
		return validationResponse(c, err)
	}

	email, err := utils.SanitizeEmail(req.Email)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Please enter a valid email address",
		})
	}

	// A verified account wins over any in-flight signup
	if _, err := ac.users.FindByEmail(ctx, email); err == nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Email already exists",
		})
	} else if err != repositories.ErrUserNotFound {
		ac.logger.Printf("Failed to check existing user: %v", err)
		return serverError(c)
	}

	// Hash immediately; the pending record never holds plaintext
	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		ac.logger.Printf("Failed to hash password: %v", err)
		return serverError(c)
	}

	code, err := utils.GenerateOTP(6)
	if err != nil {
		ac.logger.Printf("Failed to generate OTP: %v", err)
		return serverError(c)
	}

	now := time.Now()
	reg := &models.PendingRegistration{
		Email:        email,
		Code:         code,
		FullName:     utils.SanitizeInput(req.FullName),
		PasswordHash: passwordHash,
		Contact:      utils.SanitizeInput(req.Contact),
		IssuedAt:     now,
		ExpiresAt:    now.Add(OTPExpiry),
	}

	if err := ac.pending.Save(ctx, reg); err != nil {
		ac.logger.Printf("Failed to store pending registration: %v", err)
		return serverError(c)
	}

	// Delivery is best-effort and must not block or fail OTP issuance;
	// resend is the user-facing retry.
	go ac.deliverOTP(email, reg.FullName, code)

	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "OTP sent successfully",
	})
}

// VerifyRegistrationOTP completes a registration: checks the code, creates
// the durable user, consumes the pending record and issues the session.
func (ac *AuthController) VerifyRegistrationOTP(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	var req models.OTPVerificationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Invalid request body",
		})
	}

	if err := c.Validate(&req); err != nil {
		return validationResponse(c, err)
	}

	email, err := utils.SanitizeEmail(req.Email)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Please enter a valid email address",
		})
	}

	if ac.redis != nil {
		if err := utils.ValidateOTPAttempts(ctx, email, ac.redis); err != nil {
			if err == utils.ErrTooManyAttempts {
				return c.JSON(http.StatusTooManyRequests, models.Response{
					Success: false,
					Message: "Too many attempts. Please try again later.",
				})
			}
			ac.logger.Printf("Attempt throttling unavailable: %v", err)
		}
	}

	reg, err := ac.pending.Get(ctx, email)
	if err != nil {
		if err == repositories.ErrPendingNotFound {
			return c.JSON(http.StatusBadRequest, models.Response{
				Success: false,
				Message: "OTP not found or expired",
			})
		}
		ac.logger.Printf("Failed to load pending registration: %v", err)
		return serverError(c)
	}

	// Constant-time compare to close the timing side-channel. A mismatch or
	// an expired code leaves the record untouched; resend recovers it.
	if subtle.ConstantTimeCompare([]byte(reg.Code), []byte(req.OTP)) != 1 || reg.Expired(time.Now()) {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Invalid or expired OTP",
		})
	}

	// Atomic consume: of two racing verifications only one gets the record
	reg, err = ac.pending.Consume(ctx, email)
	if err != nil {
		if err == repositories.ErrPendingNotFound {
			return c.JSON(http.StatusBadRequest, models.Response{
				Success: false,
				Message: "OTP not found or expired",
			})
		}
		ac.logger.Printf("Failed to consume pending registration: %v", err)
		return serverError(c)
	}

	now := time.Now()
	user := &models.User{
		Email:           reg.Email,
		Password:        reg.PasswordHash,
		FullName:        reg.FullName,
		Contact:         reg.Contact,
		IsEmailVerified: true,
		EmailVerifiedAt: &now,
	}

	if err := ac.users.Create(ctx, user); err != nil {
		if err == repositories.ErrDuplicateEmail {
			return c.JSON(http.StatusBadRequest, models.Response{
				Success: false,
				Message: "Email already exists",
			})
		}
		ac.logger.Printf("Failed to create user: %v", err)
		return serverError(c)
	}

	token, err := middleware.GenerateToken(user)
	if err != nil {
		ac.logger.Printf("Failed to generate token: %v", err)
		return serverError(c)
	}

	setTokenCookie(c, token)

	public := user.Public()
	return c.JSON(http.StatusCreated, models.AuthResponse{
		Success: true,
		Message: "User registered successfully",
		User:    &public,
		Token:   token,
	})
}

// ResendOTP issues a fresh code for an existing pending registration,
// resetting the expiry window and preserving the captured payload.
func (ac *AuthController) ResendOTP(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	var req models.ResendOTPRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Invalid request body",
		})
	}

	if err := c.Validate(&req); err != nil {
		return validationResponse(c, err)
	}

	email, err := utils.SanitizeEmail(req.Email)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Please enter a valid email address",
		})
	}

	reg, err := ac.pending.Get(ctx, email)
	if err != nil {
		if err == repositories.ErrPendingNotFound {
			return c.JSON(http.StatusBadRequest, models.Response{
				Success: false,
				Message: "No OTP request found for this email",
			})
		}
		ac.logger.Printf("Failed to load pending registration: %v", err)
		return serverError(c)
	}

	code, err := utils.GenerateOTP(6)
	if err != nil {
		ac.logger.Printf("Failed to generate OTP: %v", err)
		return serverError(c)
	}

	now := time.Now()
	reg.Code = code
	reg.IssuedAt = now
	reg.ExpiresAt = now.Add(OTPExpiry)

	if err := ac.pending.Save(ctx, reg); err != nil {
		ac.logger.Printf("Failed to update pending registration: %v", err)
		return serverError(c)
	}

	go ac.deliverOTP(email, reg.FullName, code)

	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "New OTP sent successfully",
	})
}

// Login validates credentials and issues a session. Unknown email and wrong
// password are indistinguishable to the caller.
func (ac *AuthController) Login(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Invalid request body",
		})
	}

	if err := c.Validate(&req); err != nil {
		return validationResponse(c, err)
	}

	email, err := utils.SanitizeEmail(req.Email)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Please enter a valid email address",
		})
	}

	user, err := ac.users.FindByEmail(ctx, email)
	if err != nil {
		if err == repositories.ErrUserNotFound {
			return invalidCredentials(c)
		}
		ac.logger.Printf("Failed to find user: %v", err)
		return serverError(c)
	}

	if err := utils.CheckPassword(req.Password, user.Password); err != nil {
		return invalidCredentials(c)
	}

	token, err := middleware.GenerateToken(user)
	if err != nil {
		ac.logger.Printf("Failed to generate token: %v", err)
		return serverError(c)
	}

	setTokenCookie(c, token)

	public := user.Public()
	return c.JSON(http.StatusOK, models.AuthResponse{
		Success: true,
		Message: "Login successful",
		User:    &public,
		Token:   token,
	})
}

// Logout clears the session cookie
func (ac *AuthController) Logout(c echo.Context) error {
	clearTokenCookie(c)
	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Logged out successfully",
	})
}

// GetProfile returns the authenticated user's public fields
func (ac *AuthController) GetProfile(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	userID := middleware.GetUserIDFromToken(c)
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Success: false,
			Message: "Unauthorized: Invalid user",
		})
	}

	user, err := ac.users.FindByID(ctx, objID)
	if err != nil {
		if err == repositories.ErrUserNotFound {
			return c.JSON(http.StatusUnauthorized, models.Response{
				Success: false,
				Message: "Unauthorized: Invalid user",
			})
		}
		ac.logger.Printf("Failed to load user: %v", err)
		return serverError(c)
	}

	public := user.Public()
	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Profile retrieved",
		Data:    public,
	})
}

// deliverOTP sends the code from a goroutine; failures are logged only
func (ac *AuthController) deliverOTP(email, name, code string) {
	if err := ac.mailer.SendRegistrationOTP(email, name, code); err != nil {
		ac.logger.Printf("Failed to send OTP to %s: %v", utils.MaskEmail(email), err)
	}
}

func invalidCredentials(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, models.Response{
		Success: false,
		Message: "Invalid email or password",
	})
}

func serverError(c echo.Context) error {
	return c.JSON(http.StatusInternalServerError, models.Response{
		Success: false,
		Message: "Something went wrong!",
	})
}

// validationResponse renders validator failures with field-level messages
func validationResponse(c echo.Context, err error) error {
	var messages []string
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verrs {
			messages = append(messages, fieldMessage(fe))
		}
	}

	message := "Validation Error"
	if len(messages) > 0 {
		message = messages[0]
	}

	return c.JSON(http.StatusBadRequest, models.Response{
		Success: false,
		Message: message,
		Errors:  messages,
	})
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return "Please enter a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "len":
		return fmt.Sprintf("%s must be %s characters", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

// setTokenCookie attaches the session credential to the response. SameSite
// must be None in production because the SPA is served from another origin.
func setTokenCookie(c echo.Context, token string) {
	isProd := os.Getenv("ENV") == "production"

	sameSite := http.SameSiteLaxMode
	if isProd {
		sameSite = http.SameSiteNoneMode
	}

	c.SetCookie(&http.Cookie{
		Name:     middleware.TokenCookieName,
		Value:    token,
		HttpOnly: true,
		Secure:   isProd,
		SameSite: sameSite,
		Path:     "/",
		MaxAge:   int(middleware.TokenExpiry.Seconds()),
	})
}

func clearTokenCookie(c echo.Context) {
	isProd := os.Getenv("ENV") == "production"

	sameSite := http.SameSiteLaxMode
	if isProd {
		sameSite = http.SameSiteNoneMode
	}

	c.SetCookie(&http.Cookie{
		Name:     middleware.TokenCookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   isProd,
		SameSite: sameSite,
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})
}
