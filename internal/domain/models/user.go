// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles a User can hold. Role is chosen at signup and is immutable
// afterwards except through the admin-only override.
const (
	RoleAdmin  = "admin"
	RoleBuyer  = "buyer"
	RoleWorker = "worker"
)

// IsValidRole reports whether role is one of the known user roles.
func IsValidRole(role string) bool {
	return role == RoleAdmin || role == RoleBuyer || role == RoleWorker
}

// User is the identity record. Non-admin users own exactly one role
// profile (Buyer or Worker), created in the same signup operation.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName     string             `bson:"full_name" json:"full_name"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	Role         string             `bson:"role" json:"role"` // admin | buyer | worker

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
