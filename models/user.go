// models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User model
type User struct {
	ID              primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Email           string             `json:"email" bson:"email"`
	Password        string             `json:"password,omitempty" bson:"password"`
	FullName        string             `json:"fullName" bson:"fullName"`
	Contact         string             `json:"contact" bson:"contact"`
	IsEmailVerified bool               `json:"isEmailVerified" bson:"isEmailVerified"`
	EmailVerifiedAt *time.Time         `json:"emailVerifiedAt,omitempty" bson:"emailVerifiedAt,omitempty"`
	CreatedAt       time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// Public returns the user without credential fields, as sent to clients.
func (u *User) Public() UserResponse {
	return UserResponse{
		ID:              u.ID.Hex(),
		FullName:        u.FullName,
		Email:           u.Email,
		Contact:         u.Contact,
		IsEmailVerified: u.IsEmailVerified,
		EmailVerifiedAt: u.EmailVerifiedAt,
	}
}

// UserResponse is the public projection of a user record
type UserResponse struct {
	ID              string     `json:"id"`
	FullName        string     `json:"fullName"`
	Email           string     `json:"email"`
	Contact         string     `json:"contact"`
	IsEmailVerified bool       `json:"isEmailVerified"`
	EmailVerifiedAt *time.Time `json:"emailVerifiedAt,omitempty"`
}
