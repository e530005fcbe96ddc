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
	"github.com/pathforge/pathforge_backend/utils"
)

// CommunityController manages the public member directory
type CommunityController struct {
	DB     *mongo.Client
	logger *log.Logger
}

// NewCommunityController creates a new community controller
func NewCommunityController(db *mongo.Client) *CommunityController {
	return &CommunityController{
		DB:     db,
		logger: log.New(os.Stdout, "[COMMUNITY] ", log.LstdFlags),
	}
}

// AddMember creates the caller's community profile. One profile per account.
func (cc *CommunityController) AddMember(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	email := middleware.GetEmailFromToken(c)
	if email == "" {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Success: false,
			Message: "Authentication required",
		})
	}

	var req models.CommunityMemberRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return validationResponse(c, err)
	}

	collection := config.GetCollection(cc.DB, "community_members")

	count, err := collection.CountDocuments(ctx, bson.M{"email": email})
	if err != nil {
		cc.logger.Printf("Failed to check existing profile: %v", err)
		return serverError(c)
	}
	if count > 0 {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "You already have a community profile",
		})
	}

	now := time.Now()
	member := models.CommunityMember{
		ID:         primitive.NewObjectID(),
		Name:       utils.SanitizeInput(req.Name),
		Email:      email,
		About:      utils.SanitizeInput(req.About),
		LinkedIn:   utils.SanitizeInput(req.LinkedIn),
		GitHub:     utils.SanitizeInput(req.GitHub),
		ProfileImg: req.ProfileImg,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if _, err := collection.InsertOne(ctx, member); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return c.JSON(http.StatusBadRequest, models.Response{
				Success: false,
				Message: "You already have a community profile",
			})
		}
		cc.logger.Printf("Failed to create profile: %v", err)
		return serverError(c)
	}

	return c.JSON(http.StatusCreated, models.Response{
		Success: true,
		Message: "Community profile created",
		Data:    member,
	})
}

// GetMembers lists the newest community profiles
func (cc *CommunityController) GetMembers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	collection := config.GetCollection(cc.DB, "community_members")

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(10)
	cursor, err := collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		cc.logger.Printf("Failed to list members: %v", err)
		return serverError(c)
	}
	defer cursor.Close(ctx)

	members := []models.CommunityMember{}
	if err := cursor.All(ctx, &members); err != nil {
		cc.logger.Printf("Failed to decode members: %v", err)
		return serverError(c)
	}

	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Members retrieved",
		Data:    members,
	})
}

// GetMemberByID returns a single community profile
func (cc *CommunityController) GetMemberByID(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Invalid member ID",
		})
	}

	collection := config.GetCollection(cc.DB, "community_members")

	var member models.CommunityMember
	if err := collection.FindOne(ctx, bson.M{"_id": id}).Decode(&member); err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Success: false,
				Message: "Member not found",
			})
		}
		cc.logger.Printf("Failed to load member: %v", err)
		return serverError(c)
	}

	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Member retrieved",
		Data:    member,
	})
}

// UpdateMember edits a profile; only the creator may edit
func (cc *CommunityController) UpdateMember(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	email := middleware.GetEmailFromToken(c)
	if email == "" {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Success: false,
			Message: "Authentication required",
		})
	}

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Invalid member ID",
		})
	}

	var req models.CommunityMemberRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return validationResponse(c, err)
	}

	collection := config.GetCollection(cc.DB, "community_members")

	var existing models.CommunityMember
	if err := collection.FindOne(ctx, bson.M{"_id": id}).Decode(&existing); err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Success: false,
				Message: "Member not found",
			})
		}
		cc.logger.Printf("Failed to load member: %v", err)
		return serverError(c)
	}

	if existing.Email != email {
		return c.JSON(http.StatusForbidden, models.Response{
			Success: false,
			Message: "You can only edit your own profile",
		})
	}

	update := bson.M{"$set": bson.M{
		"name":      utils.SanitizeInput(req.Name),
		"about":     utils.SanitizeInput(req.About),
		"linkedin":  utils.SanitizeInput(req.LinkedIn),
		"github":    utils.SanitizeInput(req.GitHub),
		"updatedAt": time.Now(),
	}}
	if req.ProfileImg != "" {
		update["$set"].(bson.M)["profileImg"] = req.ProfileImg
	}

	var updated models.CommunityMember
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&updated); err != nil {
		cc.logger.Printf("Failed to update member: %v", err)
		return serverError(c)
	}

	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Profile updated",
		Data:    updated,
	})
}

// DeleteMember removes a profile; only the creator may delete
func (cc *CommunityController) DeleteMember(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	email := middleware.GetEmailFromToken(c)
	if email == "" {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Success: false,
			Message: "Authentication required",
		})
	}

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Invalid member ID",
		})
	}

	collection := config.GetCollection(cc.DB, "community_members")

	var existing models.CommunityMember
	if err := collection.FindOne(ctx, bson.M{"_id": id}).Decode(&existing); err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Success: false,
				Message: "Member not found",
			})
		}
		cc.logger.Printf("Failed to load member: %v", err)
		return serverError(c)
	}

	if existing.Email != email {
		return c.JSON(http.StatusForbidden, models.Response{
			Success: false,
			Message: "You can only delete your own profile",
		})
	}

	if _, err := collection.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		cc.logger.Printf("Failed to delete member: %v", err)
		return serverError(c)
	}

	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Profile deleted successfully",
	})
}
