package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CommunityMember is a public profile in the member directory.
// Ownership is tied to the creator's account email.
type CommunityMember struct {
	ID         primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Name       string             `json:"name" bson:"name"`
	Email      string             `json:"email" bson:"email"`
	About      string             `json:"about,omitempty" bson:"about,omitempty"`
	LinkedIn   string             `json:"linkedin,omitempty" bson:"linkedin,omitempty"`
	GitHub     string             `json:"github,omitempty" bson:"github,omitempty"`
	ProfileImg string             `json:"profileImg,omitempty" bson:"profileImg,omitempty"`
	CreatedAt  time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// CommunityMemberRequest is the create/update payload
type CommunityMemberRequest struct {
	Name       string `json:"name" validate:"required"`
	About      string `json:"about"`
	LinkedIn   string `json:"linkedin"`
	GitHub     string `json:"github"`
	ProfileImg string `json:"profileImg"`
}
